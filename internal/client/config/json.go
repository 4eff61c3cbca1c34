package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/obexhq/obex/internal/flagx"
	"github.com/obexhq/obex/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. It relies on
// timex.Duration so JSON can specify intervals either as strings like "90s"
// or as integer nanoseconds.
type JsonConfig struct {
	APIBaseURL     string         `json:"api_base_url"`
	APIAnonKey     string         `json:"api_anon_key"`
	AIBaseURL      string         `json:"ai_base_url"`
	AIAPIKey       string         `json:"ai_api_key"`
	AIModel        string         `json:"ai_model"`
	DatabasePath   string         `json:"database_path"`
	SyncInterval   timex.Duration `json:"sync_interval"`
	VoiceBucket    string         `json:"voice_bucket"`
	VoiceRegion    string         `json:"voice_region"`
	VoiceEndpoint  string         `json:"voice_endpoint"`
	VoiceAccessKey string         `json:"voice_access_key"`
	VoiceSecretKey string         `json:"voice_secret_key"`
}

// parseJson overlays cfg with values from the JSON file named by the
// -c/-config flag. Absent file path means no JSON is loaded; read or
// unmarshal errors panic (caller should recover if desired). Only fields
// present in the file override earlier layers.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	overlayString(&cfg.APIBaseURL, jc.APIBaseURL)
	overlayString(&cfg.APIAnonKey, jc.APIAnonKey)
	overlayString(&cfg.AIBaseURL, jc.AIBaseURL)
	overlayString(&cfg.AIAPIKey, jc.AIAPIKey)
	overlayString(&cfg.AIModel, jc.AIModel)
	overlayString(&cfg.DatabasePath, jc.DatabasePath)
	overlayString(&cfg.VoiceBucket, jc.VoiceBucket)
	overlayString(&cfg.VoiceRegion, jc.VoiceRegion)
	overlayString(&cfg.VoiceEndpoint, jc.VoiceEndpoint)
	overlayString(&cfg.VoiceAccessKey, jc.VoiceAccessKey)
	overlayString(&cfg.VoiceSecretKey, jc.VoiceSecretKey)
	if jc.SyncInterval.Duration != 0 {
		cfg.SyncInterval = time.Duration(jc.SyncInterval.Duration)
	}
}

func overlayString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
