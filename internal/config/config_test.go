package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	for _, k := range []string{"N8N_WEBHOOK_URL", "WEBHOOK_URL_PARAM", "WEBHOOK_TIMEOUT", "CATALOG_FILE", "CATALOG_TABLE", "HTTP_ADDR", "IMAGES_DIR", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
	cfg := Load()
	require.Equal(t, Config{
		HTTPAddr:  ":3000",
		ImagesDir: "./public/images",
		LogLevel:  "info",
	}, cfg)
	require.False(t, cfg.NeedsAWS())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("N8N_WEBHOOK_URL", " https://n8n.example/webhook/ev ")
	t.Setenv("WEBHOOK_TIMEOUT", "15s")
	t.Setenv("CATALOG_TABLE", "ev-catalog")
	t.Setenv("HTTP_ADDR", ":9090")

	cfg := Load()
	require.Equal(t, "https://n8n.example/webhook/ev", cfg.WebhookURL)
	require.Equal(t, 15*time.Second, cfg.WebhookTimeout)
	require.Equal(t, "ev-catalog", cfg.CatalogTable)
	require.Equal(t, ":9090", cfg.HTTPAddr)
	require.True(t, cfg.NeedsAWS())
}

func TestLoad_InvalidDurationFallsBack(t *testing.T) {
	t.Setenv("WEBHOOK_TIMEOUT", "soon")
	require.Zero(t, Load().WebhookTimeout)

	t.Setenv("WEBHOOK_TIMEOUT", "-5s")
	require.Zero(t, Load().WebhookTimeout)
}

func TestLoadVoice(t *testing.T) {
	t.Setenv("VOICE_API_URL", "")
	t.Setenv("VOICE_STT_COMMAND", "whisper-listen")
	t.Setenv("VOICE_STT_ARGS", "--lang th  --once")
	t.Setenv("VOICE_TIMEOUT", "30s")

	cfg := LoadVoice()
	require.Equal(t, "http://localhost:3000", cfg.APIURL)
	require.Equal(t, "whisper-listen", cfg.STTCommand)
	require.Equal(t, []string{"--lang", "th", "--once"}, cfg.STTArgs)
	require.Equal(t, 30*time.Second, cfg.RelayTimeout)
}
