package presentation

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"ev-voice-shop/internal/domain"
)

// RelayClient calls the relay endpoint.
type RelayClient struct {
	baseURL    string
	httpClient *http.Client
}

func NewRelayClient(baseURL string, httpClient *http.Client) (*RelayClient, error) {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return nil, errors.New("presentation: relay base url must not be empty")
	}
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &RelayClient{baseURL: baseURL, httpClient: httpClient}, nil
}

func voiceURL(baseURL string) string {
	if strings.HasSuffix(baseURL, "/api/voice") {
		return baseURL
	}
	return baseURL + "/api/voice"
}

// Ask posts the transcript and decodes the answer. Any non-2xx response is
// an error, whatever its body says.
func (c *RelayClient) Ask(ctx context.Context, transcript string) (domain.QueryResult, error) {
	body, err := json.Marshal(map[string]string{"text": transcript})
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("presentation: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, voiceURL(c.baseURL), bytes.NewReader(body))
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("presentation: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return domain.QueryResult{}, fmt.Errorf("presentation: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, 4096))
		return domain.QueryResult{}, fmt.Errorf("presentation: network response was not ok: status %d", res.StatusCode)
	}

	var out domain.QueryResult
	if err := json.NewDecoder(io.LimitReader(res.Body, 8<<20)).Decode(&out); err != nil {
		return domain.QueryResult{}, fmt.Errorf("presentation: decode response: %w", err)
	}
	return out, nil
}
