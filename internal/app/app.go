// Package app wires the relay handler from configuration. The Lambda and the
// local server share it so both run the same stack.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"ev-voice-shop/handler"
	"ev-voice-shop/internal/catalog"
	"ev-voice-shop/internal/config"
	"ev-voice-shop/internal/integrations/paramstore"
	"ev-voice-shop/internal/integrations/webhook"
	"ev-voice-shop/internal/repository"
	"ev-voice-shop/internal/usecase"
	"ev-voice-shop/web"
)

// SetupLogger installs a JSON slog handler at the given level as default.
func SetupLogger(level string) {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn", "warning":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})))
}

// NewHandler builds the relay handler. AWS config is only loaded when an SSM
// parameter or a DynamoDB table is configured.
func NewHandler(ctx context.Context, cfg config.Config) (*handler.Handler, error) {
	var (
		ssmGetter paramstore.Getter
		source    catalog.Source
	)

	if cfg.NeedsAWS() {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("app: load AWS config: %w", err)
		}
		if cfg.WebhookURLParam != "" {
			c, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
			if err != nil {
				return nil, fmt.Errorf("app: create SSM client: %w", err)
			}
			ssmGetter = c
		}
		if cfg.CatalogTable != "" {
			repo, err := repository.New(awsdynamodb.NewFromConfig(awsCfg), cfg.CatalogTable)
			if err != nil {
				return nil, fmt.Errorf("app: create catalog repository: %w", err)
			}
			source = repo
		}
	}

	if source == nil {
		s, err := catalogSource(cfg.CatalogFile)
		if err != nil {
			return nil, err
		}
		source = s
	}

	urls := paramstore.NewURLResolver(cfg.WebhookURL, ssmGetter, cfg.WebhookURLParam)
	poster := webhook.NewClient(webhook.WithTimeout(cfg.WebhookTimeout))

	relay, err := usecase.NewRelayService(urls, source, poster)
	if err != nil {
		return nil, fmt.Errorf("app: create relay service: %w", err)
	}
	h, err := handler.NewHandler(relay, web.Assets)
	if err != nil {
		return nil, fmt.Errorf("app: create handler: %w", err)
	}
	return h, nil
}

func catalogSource(path string) (catalog.Source, error) {
	if path != "" {
		return catalog.File{Path: path}, nil
	}
	s, err := catalog.Embedded()
	if err != nil {
		return nil, fmt.Errorf("app: load embedded catalog: %w", err)
	}
	return s, nil
}
