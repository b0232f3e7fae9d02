package handler

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"ev-voice-shop/internal/usecase"
)

const (
	voicePath         = "/api/voice"
	correlationHeader = "X-Correlation-Id"
)

type Relayer interface {
	Relay(ctx context.Context, in usecase.RelayInput) (usecase.RelayOutput, error)
}

type voiceRequest struct {
	Text json.RawMessage `json:"text"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Handler serves the voice relay route and, when assets are configured, the
// browser page.
type Handler struct {
	relayer Relayer
	assets  fs.FS
}

// NewHandler creates a Handler. assets may be nil, in which case only the
// API route is served.
func NewHandler(r Relayer, assets fs.FS) (*Handler, error) {
	if r == nil {
		return nil, errors.New("handler: relayer must not be nil")
	}
	return &Handler{relayer: r, assets: assets}, nil
}

// Handle is the API Gateway proxy entry point.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	start := time.Now()
	corrID := correlationID(event.Headers)

	resp := h.route(ctx, event)
	if resp.Headers == nil {
		resp.Headers = map[string]string{}
	}
	resp.Headers[correlationHeader] = corrID

	slog.InfoContext(ctx, "request handled",
		"method", event.HTTPMethod,
		"path", event.Path,
		"status", resp.StatusCode,
		"correlation_id", corrID,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (h *Handler) route(ctx context.Context, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	p := "/" + strings.Trim(event.Path, "/")
	if p == voicePath {
		if event.HTTPMethod != http.MethodPost {
			return jsonError(http.StatusMethodNotAllowed, "method not allowed")
		}
		return h.handleVoice(ctx, event)
	}
	if h.assets != nil && (event.HTTPMethod == http.MethodGet || event.HTTPMethod == http.MethodHead) {
		if resp, ok := h.serveAsset(p); ok {
			return resp
		}
	}
	return jsonError(http.StatusNotFound, "not found")
}

func (h *Handler) handleVoice(ctx context.Context, event events.APIGatewayProxyRequest) events.APIGatewayProxyResponse {
	text, err := decodeText(event)
	if err != nil {
		slog.WarnContext(ctx, "invalid request body", "err", err)
		return jsonError(http.StatusInternalServerError, err.Error())
	}

	out, err := h.relayer.Relay(ctx, usecase.RelayInput{Text: text})
	if err != nil {
		status, msg := mapError(err)
		if status >= http.StatusInternalServerError {
			slog.ErrorContext(ctx, "relay failed", "err", err)
		}
		return jsonError(status, msg)
	}

	body := out.Body
	if len(body) == 0 {
		body = json.RawMessage(`{}`)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: out.StatusCode,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

// decodeText extracts the text field. The body must be a JSON value other
// than null. A body that is not an object, or a text field that is missing,
// null, false, 0 or "", yields "". Any other non-string text is an error.
func decodeText(event events.APIGatewayProxyRequest) (string, error) {
	raw := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			return "", fmt.Errorf("decode base64 body: %w", err)
		}
		raw = decoded
	}

	var body json.RawMessage
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", fmt.Errorf("decode request body: %w", err)
	}
	body = bytes.TrimSpace(body)
	if string(body) == "null" {
		return "", errors.New("decode request body: body must not be null")
	}
	if body[0] != '{' {
		return "", nil
	}

	var req voiceRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return "", fmt.Errorf("decode request body: %w", err)
	}
	return textValue(req.Text)
}

func textValue(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", nil
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return "", fmt.Errorf("decode request body: %w", err)
	}
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case bool:
		if !t {
			return "", nil
		}
	case float64:
		if t == 0 {
			return "", nil
		}
	}
	return "", errors.New("decode request body: text must be a string")
}

func mapError(err error) (int, string) {
	var ucErr *usecase.Error
	if !errors.As(err, &ucErr) {
		msg := err.Error()
		if msg == "" {
			msg = usecase.MessageServerError
		}
		return http.StatusInternalServerError, msg
	}
	switch ucErr.Code {
	case usecase.ErrorInvalidInput:
		return http.StatusBadRequest, ucErr.PublicMessage()
	default:
		return http.StatusInternalServerError, ucErr.PublicMessage()
	}
}

func (h *Handler) serveAsset(p string) (events.APIGatewayProxyResponse, bool) {
	name := strings.TrimPrefix(p, "/")
	if name == "" {
		name = "index.html"
	}
	if !fs.ValidPath(name) {
		return events.APIGatewayProxyResponse{}, false
	}
	data, err := fs.ReadFile(h.assets, name)
	if err != nil {
		return events.APIGatewayProxyResponse{}, false
	}
	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: http.StatusOK,
		Headers:    map[string]string{"Content-Type": contentType},
		Body:       string(data),
	}, true
}

func jsonError(status int, msg string) events.APIGatewayProxyResponse {
	body, _ := json.Marshal(errorResponse{Error: msg})
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers:    map[string]string{"Content-Type": "application/json"},
		Body:       string(body),
	}
}

func correlationID(headers map[string]string) string {
	for k, v := range headers {
		if strings.EqualFold(k, correlationHeader) && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return uuid.NewString()
}
