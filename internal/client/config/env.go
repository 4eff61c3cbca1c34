package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config with OBEX_* environment tags.
type envConfig struct {
	APIBaseURL     string        `env:"OBEX_API_BASE_URL"`
	APIAnonKey     string        `env:"OBEX_API_ANON_KEY"`
	AIBaseURL      string        `env:"OBEX_AI_BASE_URL"`
	AIAPIKey       string        `env:"OBEX_AI_API_KEY"`
	AIModel        string        `env:"OBEX_AI_MODEL"`
	DatabasePath   string        `env:"OBEX_DATABASE_PATH"`
	SyncInterval   time.Duration `env:"OBEX_SYNC_INTERVAL"`
	VoiceBucket    string        `env:"OBEX_VOICE_BUCKET"`
	VoiceRegion    string        `env:"OBEX_VOICE_REGION"`
	VoiceEndpoint  string        `env:"OBEX_VOICE_ENDPOINT"`
	VoiceAccessKey string        `env:"OBEX_VOICE_ACCESS_KEY"`
	VoiceSecretKey string        `env:"OBEX_VOICE_SECRET_KEY"`
}

// parseEnv overlays cfg with values from OBEX_* environment variables.
// Unset variables leave the earlier layers untouched; parse errors panic.
func parseEnv(cfg *Config) {
	var ec envConfig
	if err := env.Parse(&ec); err != nil {
		panic(err)
	}

	overlayString(&cfg.APIBaseURL, ec.APIBaseURL)
	overlayString(&cfg.APIAnonKey, ec.APIAnonKey)
	overlayString(&cfg.AIBaseURL, ec.AIBaseURL)
	overlayString(&cfg.AIAPIKey, ec.AIAPIKey)
	overlayString(&cfg.AIModel, ec.AIModel)
	overlayString(&cfg.DatabasePath, ec.DatabasePath)
	overlayString(&cfg.VoiceBucket, ec.VoiceBucket)
	overlayString(&cfg.VoiceRegion, ec.VoiceRegion)
	overlayString(&cfg.VoiceEndpoint, ec.VoiceEndpoint)
	overlayString(&cfg.VoiceAccessKey, ec.VoiceAccessKey)
	overlayString(&cfg.VoiceSecretKey, ec.VoiceSecretKey)
	if ec.SyncInterval != 0 {
		cfg.SyncInterval = ec.SyncInterval
	}
}
