package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/aws/aws-lambda-go/lambda"

	"ev-voice-shop/internal/app"
	"ev-voice-shop/internal/config"
)

func main() {
	ctx := context.Background()

	cfg := config.Load()
	app.SetupLogger(cfg.LogLevel)

	h, err := app.NewHandler(ctx, cfg)
	if err != nil {
		slog.Error("failed to create handler", "err", err)
		os.Exit(1)
	}

	lambda.Start(h.Handle)
}
