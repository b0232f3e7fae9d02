package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"ev-voice-shop/internal/domain"
	"ev-voice-shop/internal/integrations/webhook"
)

type URLResolver interface {
	WebhookURL(ctx context.Context) (string, error)
}

type CatalogSource interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
}

type WebhookPoster interface {
	Post(ctx context.Context, url string, payload domain.WebhookRequest) (webhook.Response, error)
}

// RelayService forwards transcripts and the catalog to the workflow webhook.
type RelayService struct {
	urls    URLResolver
	catalog CatalogSource
	poster  WebhookPoster

	cacheMu       sync.RWMutex
	catalogLoaded bool
	products      []domain.Product
	webhookURL    string
}

type RelayInput struct {
	Text string
}

// RelayOutput is the webhook answer as it should be returned to the caller.
type RelayOutput struct {
	StatusCode int
	Body       json.RawMessage
}

func NewRelayService(urls URLResolver, catalog CatalogSource, poster WebhookPoster) (*RelayService, error) {
	if urls == nil {
		return nil, errors.New("usecase: url resolver must not be nil")
	}
	if catalog == nil {
		return nil, errors.New("usecase: catalog source must not be nil")
	}
	if poster == nil {
		return nil, errors.New("usecase: webhook poster must not be nil")
	}
	return &RelayService{
		urls:    urls,
		catalog: catalog,
		poster:  poster,
	}, nil
}

func (s *RelayService) Relay(ctx context.Context, in RelayInput) (RelayOutput, error) {
	transcript := strings.TrimSpace(in.Text)
	if transcript == "" {
		return RelayOutput{}, newMessageError(ErrorInvalidInput, "empty_text", MessageNoText)
	}

	url, err := s.resolveURL(ctx)
	if err != nil {
		return RelayOutput{}, newError(ErrorInternal, "webhook_url_error", err)
	}
	if url == "" {
		return RelayOutput{}, newMessageError(ErrorMisconfigured, "webhook_url_missing", MessageWebhookNotConfigured)
	}

	products, err := s.ensureCatalog(ctx)
	if err != nil {
		return RelayOutput{}, newError(ErrorInternal, "catalog_load_error", err)
	}

	resp, err := s.poster.Post(ctx, url, domain.WebhookRequest{
		Transcript: transcript,
		Products:   products,
		Lang:       domain.WebhookLang,
	})
	if err != nil {
		return RelayOutput{}, newError(ErrorUpstream, "webhook_error", err)
	}

	status := http.StatusOK
	if !resp.OK() {
		status = resp.StatusCode
		slog.WarnContext(ctx, "webhook returned non-success status", "status", resp.StatusCode)
	}
	return RelayOutput{StatusCode: status, Body: resp.Body}, nil
}

// resolveURL caches the first non-empty webhook URL. An unconfigured URL is
// looked up again on the next request.
func (s *RelayService) resolveURL(ctx context.Context) (string, error) {
	s.cacheMu.RLock()
	url := s.webhookURL
	s.cacheMu.RUnlock()
	if url != "" {
		return url, nil
	}

	url, err := s.urls.WebhookURL(ctx)
	if err != nil {
		return "", fmt.Errorf("usecase: resolve webhook url: %w", err)
	}
	url = strings.TrimSpace(url)
	if url != "" {
		s.cacheMu.Lock()
		s.webhookURL = url
		s.cacheMu.Unlock()
	}
	return url, nil
}

func (s *RelayService) ensureCatalog(ctx context.Context) ([]domain.Product, error) {
	s.cacheMu.RLock()
	if s.catalogLoaded {
		products := s.products
		s.cacheMu.RUnlock()
		return products, nil
	}
	s.cacheMu.RUnlock()

	s.cacheMu.Lock()
	defer s.cacheMu.Unlock()
	if s.catalogLoaded {
		return s.products, nil
	}

	products, err := s.catalog.ListProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("usecase: load catalog: %w", err)
	}
	if products == nil {
		products = []domain.Product{}
	}
	slog.InfoContext(ctx, "catalog loaded", "products", len(products))

	s.products = products
	s.catalogLoaded = true
	return products, nil
}
