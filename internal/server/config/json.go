package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/sitedir/internal/flagx"
	"github.com/dmitrijs2005/sitedir/internal/timex"
)

// JsonConfig is the JSON file shape. Durations accept "90s" strings or
// integer nanoseconds. Absent fields leave the current value untouched.
type JsonConfig struct {
	DatabaseDSN      *string         `json:"database_dsn"`
	HTTPAddr         *string         `json:"http_addr"`
	S3BaseEndpoint   *string         `json:"s3_base_endpoint"`
	S3UsePathStyle   *bool           `json:"s3_use_path_style"`
	SettingsCacheTTL *timex.Duration `json:"settings_cache_ttl"`
	UploadURLExpiry  *timex.Duration `json:"upload_url_expiry"`
	SignURLExpiry    *timex.Duration `json:"sign_url_expiry"`
	LogFormat        *string         `json:"log_format"`
	LogLevel         *string         `json:"log_level"`
}

// parseJson overlays values from the file given with -c/-config. With no
// flag nothing is loaded; an unreadable or invalid file panics.
func parseJson(config *Config, args []string) {
	path := flagx.ConfigFile(args)
	if path == "" {
		return
	}

	file, err := os.ReadFile(path)
	if err != nil {
		panic(err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		panic(err)
	}

	setIf(&config.DatabaseDSN, c.DatabaseDSN)
	setIf(&config.HTTPAddr, c.HTTPAddr)
	setIf(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setIf(&config.S3UsePathStyle, c.S3UsePathStyle)
	setIf(&config.LogFormat, c.LogFormat)
	setIf(&config.LogLevel, c.LogLevel)
	if c.SettingsCacheTTL != nil {
		config.SettingsCacheTTL = c.SettingsCacheTTL.Duration
	}
	if c.UploadURLExpiry != nil {
		config.UploadURLExpiry = c.UploadURLExpiry.Duration
	}
	if c.SignURLExpiry != nil {
		config.SignURLExpiry = c.SignURLExpiry.Duration
	}
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
