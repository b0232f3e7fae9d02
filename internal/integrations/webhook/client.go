package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"ev-voice-shop/internal/domain"
)

// maxBodyBytes caps how much of the webhook answer is buffered for relay.
const maxBodyBytes = 8 << 20

// ErrBodyTooLarge is returned when the webhook answer exceeds maxBodyBytes.
var ErrBodyTooLarge = fmt.Errorf("webhook: response body exceeds %d bytes", maxBodyBytes)

// emptyObject is relayed in place of a body that is not valid JSON.
var emptyObject = json.RawMessage(`{}`)

// Response is the webhook answer as relayed to the caller.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// OK reports whether the webhook answered with a 2xx status.
func (r Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Client posts transcripts to an external workflow webhook.
type Client struct {
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout bounds each webhook call. Zero means no timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d <= 0 {
			return
		}
		hc := http.Client{}
		if c.httpClient != nil {
			hc = *c.httpClient
		}
		hc.Timeout = d
		c.httpClient = &hc
	}
}

// NewClient creates a Client. Without options the outbound call has no
// timeout of its own and is bounded only by the caller's context.
func NewClient(opts ...Option) *Client {
	c := &Client{httpClient: &http.Client{}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) resolvedHTTPClient() *http.Client {
	if c.httpClient != nil {
		return c.httpClient
	}
	return http.DefaultClient
}

// Post sends payload to url and returns the status and JSON body. A body that
// is empty, not JSON or unreadable is replaced with {}. Non-2xx statuses are
// not errors; a body over maxBodyBytes is.
func (c *Client) Post(ctx context.Context, url string, payload domain.WebhookRequest) (Response, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return Response{}, errors.New("webhook: url must not be empty")
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Response{}, fmt.Errorf("webhook: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Response{}, fmt.Errorf("webhook: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.resolvedHTTPClient().Do(req)
	if err != nil {
		return Response{}, fmt.Errorf("webhook: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, maxBodyBytes+1))
	if err != nil {
		slog.WarnContext(ctx, "webhook body unreadable, relaying empty object", "status", res.StatusCode, "err", err)
		return Response{StatusCode: res.StatusCode, Body: emptyObject}, nil
	}
	if len(raw) > maxBodyBytes {
		return Response{}, ErrBodyTooLarge
	}

	return Response{StatusCode: res.StatusCode, Body: relayBody(raw)}, nil
}

func relayBody(raw []byte) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || !json.Valid(trimmed) {
		return emptyObject
	}
	return json.RawMessage(trimmed)
}
