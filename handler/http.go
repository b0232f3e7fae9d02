package handler

import (
	"encoding/base64"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/aws/aws-lambda-go/events"
)

const maxRequestBytes = 1 << 20

// ServeHTTP adapts Handle to net/http for running outside Lambda.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	event := events.APIGatewayProxyRequest{
		HTTPMethod: r.Method,
		Path:       r.URL.Path,
		Headers:    map[string]string{},
	}
	for k := range r.Header {
		event.Headers[k] = r.Header.Get(k)
	}
	if r.Body != nil {
		raw, err := io.ReadAll(io.LimitReader(r.Body, maxRequestBytes))
		if err == nil {
			if utf8.Valid(raw) {
				event.Body = string(raw)
			} else {
				event.Body = base64.StdEncoding.EncodeToString(raw)
				event.IsBase64Encoded = true
			}
		}
	}

	resp, _ := h.Handle(r.Context(), event)

	for k, v := range resp.Headers {
		w.Header().Set(k, v)
	}
	w.WriteHeader(resp.StatusCode)
	if r.Method == http.MethodHead {
		return
	}
	body := []byte(resp.Body)
	if resp.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(resp.Body)
		if err == nil {
			body = decoded
		}
	}
	_, _ = w.Write(body)
}
