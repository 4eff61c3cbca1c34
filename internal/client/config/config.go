package config

import "time"

// Config holds runtime settings for the Obex CLI.
type Config struct {
	// APIBaseURL and APIAnonKey locate the hosted backend (identity
	// provider and table store share the base URL).
	APIBaseURL string
	APIAnonKey string

	// AI analysis endpoint. Leaving AIAPIKey empty disables analysis.
	AIBaseURL string
	AIAPIKey  string
	AIModel   string

	// DatabasePath is the local SQLite file holding entries and the session.
	DatabasePath string

	// SyncInterval is how often the background watcher pushes pending entries.
	SyncInterval time.Duration

	// Voice-note object storage (S3 compatible). Optional; voice attachments
	// are unavailable until bucket and credentials are set.
	VoiceBucket    string
	VoiceRegion    string
	VoiceEndpoint  string
	VoiceAccessKey string
	VoiceSecretKey string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.APIBaseURL = "http://127.0.0.1:54321"
	c.AIBaseURL = "https://api.openai.com"
	c.AIModel = "gpt-4o-mini"
	c.DatabasePath = "obex.db"
	c.SyncInterval = 90 * time.Second
	c.VoiceRegion = "us-east-1"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), environment variables, and command-line flags. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseEnv(cfg)
	parseFlags(cfg)
	return cfg
}
