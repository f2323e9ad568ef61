package config

import (
	"errors"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables that override file values.
const (
	EnvAPIBaseURL   = "PG_API_BASE_URL"
	EnvLogLevel     = "PG_LOG_LEVEL"
	EnvPollInterval = "PG_POLL_INTERVAL"
	EnvProfile      = "PG_PROFILE"
)

// LoadEnvFile loads KEY=VALUE pairs from a .env file into the process
// environment without overriding variables that are already set.
// A missing file is not an error.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// ApplyEnv overrides cfg with values from the environment.
func ApplyEnv(cfg *Config) error {
	if v := getEnv(EnvAPIBaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := getEnv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := getEnv(EnvPollInterval); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return err
		}
		cfg.PollInterval = Duration{d}
	}
	if v := getEnv(EnvProfile); v != "" {
		cfg.DefaultProfile = v
	}
	return nil
}

func getEnv(key string) string {
	v, _ := os.LookupEnv(key)
	return strings.TrimSpace(v)
}
