package app

import (
	"fmt"

	"github.com/penguingram/messenger/internal/config"
	"github.com/penguingram/messenger/internal/profile"
)

// LoadConfig reads the global config file, applies the optional .env file
// and environment overrides, and validates the result.
func LoadConfig() (*config.Config, error) {
	if err := config.LoadEnvFile(profile.EnvPath()); err != nil {
		return nil, fmt.Errorf("load env file: %w", err)
	}
	cfg, err := config.LoadOrDefault(profile.ConfigPath())
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := config.ApplyEnv(cfg); err != nil {
		return nil, fmt.Errorf("apply env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// ResolveProfile picks the profile name from the flag and config and
// validates it.
func ResolveProfile(flagOverride string, cfg *config.Config) (string, error) {
	name := profile.Resolve(flagOverride, cfg)
	if err := profile.ValidateName(name); err != nil {
		return "", err
	}
	return name, nil
}
