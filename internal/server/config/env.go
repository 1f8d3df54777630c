package config

import (
	"errors"
	"io/fs"

	"github.com/dmitrijs2005/sitedir/internal/flagx"
	"github.com/joho/godotenv"
)

// loadEnvFile loads the dotenv file named by -env-file (default cfg.EnvFile)
// into the process environment. Variables that are already set win, and a
// missing file is not an error. Any other failure panics, like a broken JSON
// config does.
func loadEnvFile(cfg *Config, args []string) {
	if v := flagx.LookupString(args, "env-file"); v != "" {
		cfg.EnvFile = v
	}
	if cfg.EnvFile == "" {
		return
	}

	if err := LoadEnvFile(cfg.EnvFile); err != nil {
		panic(err)
	}
}

// LoadEnvFile loads a dotenv file into the process environment without
// overriding variables that are already set. A missing file is ignored.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
