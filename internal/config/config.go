// Package config reads runtime configuration from the environment.
package config

import (
	"os"
	"strings"
	"time"
)

// Config holds the relay server settings. A missing webhook URL is not a
// startup error; the relay reports it per request.
type Config struct {
	WebhookURL      string
	WebhookURLParam string
	WebhookTimeout  time.Duration
	CatalogFile     string
	CatalogTable    string
	HTTPAddr        string
	ImagesDir       string
	LogLevel        string
}

// VoiceConfig holds the terminal voice client settings.
type VoiceConfig struct {
	APIURL       string
	STTCommand   string
	STTArgs      []string
	RelayTimeout time.Duration
	LogLevel     string
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// durenv parses a Go duration such as "30s". Invalid values fall back to def.
func durenv(key string, def time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil || d < 0 {
		return def
	}
	return d
}

// Load collects relay configuration from environment with defaults.
func Load() Config {
	return Config{
		WebhookURL:      getenv("N8N_WEBHOOK_URL", ""),
		WebhookURLParam: getenv("WEBHOOK_URL_PARAM", ""),
		WebhookTimeout:  durenv("WEBHOOK_TIMEOUT", 0),
		CatalogFile:     getenv("CATALOG_FILE", ""),
		CatalogTable:    getenv("CATALOG_TABLE", ""),
		HTTPAddr:        getenv("HTTP_ADDR", ":3000"),
		ImagesDir:       getenv("IMAGES_DIR", "./public/images"),
		LogLevel:        getenv("LOG_LEVEL", "info"),
	}
}

// NeedsAWS reports whether any configured source lives in AWS.
func (c Config) NeedsAWS() bool {
	return c.WebhookURLParam != "" || c.CatalogTable != ""
}

// LoadVoice collects terminal client configuration from environment.
func LoadVoice() VoiceConfig {
	return VoiceConfig{
		APIURL:       getenv("VOICE_API_URL", "http://localhost:3000"),
		STTCommand:   getenv("VOICE_STT_COMMAND", ""),
		STTArgs:      strings.Fields(getenv("VOICE_STT_ARGS", "")),
		RelayTimeout: durenv("VOICE_TIMEOUT", 0),
		LogLevel:     getenv("LOG_LEVEL", "warn"),
	}
}
