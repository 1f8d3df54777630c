package config

import (
	"flag"

	"github.com/dmitrijs2005/sitedir/internal/flagx"
)

// parseFlags populates Config fields from command-line flags.
//
//	-d string     PostgreSQL DSN of the settings store
//	-a string     ops HTTP bind address
//	-e string     S3 base endpoint (e.g. "http://127.0.0.1:9000")
//	-path-style   use path-style S3 addressing
//	-ttl duration settings cache TTL
//	-upload-expiry duration  URL lifetime returned by uploads
//	-sign-expiry duration    default URL lifetime for signing
//	-log-format string       json or text
//	-log-level string        debug, info, warn, error
func parseFlags(config *Config, args []string) {
	args = flagx.FilterArgs(args, []string{
		"-d", "-a", "-e", "-path-style", "-ttl", "-upload-expiry", "-sign-expiry", "-log-format", "-log-level",
	})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "settings database DSN")
	fs.StringVar(&config.HTTPAddr, "a", config.HTTPAddr, "ops HTTP address")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.BoolVar(&config.S3UsePathStyle, "path-style", config.S3UsePathStyle, "use path-style S3 addressing")
	fs.DurationVar(&config.SettingsCacheTTL, "ttl", config.SettingsCacheTTL, "settings cache TTL")
	fs.DurationVar(&config.UploadURLExpiry, "upload-expiry", config.UploadURLExpiry, "signed URL lifetime for uploads")
	fs.DurationVar(&config.SignURLExpiry, "sign-expiry", config.SignURLExpiry, "default signed URL lifetime")
	fs.StringVar(&config.LogFormat, "log-format", config.LogFormat, "log format: json or text")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
