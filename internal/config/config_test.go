package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.DefaultProfile = "work"
	cfg.PollInterval = Duration{5 * time.Second}
	cfg.API.BaseURL = "https://example.test"
	if err := Save(path, cfg); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.DefaultProfile != "work" {
		t.Errorf("DefaultProfile = %q, want %q", loaded.DefaultProfile, "work")
	}
	if loaded.PollInterval.Duration != 5*time.Second {
		t.Errorf("PollInterval = %s, want 5s", loaded.PollInterval)
	}
	if loaded.API.BaseURL != "https://example.test" {
		t.Errorf("API.BaseURL = %q", loaded.API.BaseURL)
	}
}

func TestLoadKeepsDefaultsForMissingKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_profile = \"alt\"\n"), 0600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultProfile != "alt" {
		t.Errorf("DefaultProfile = %q, want alt", cfg.DefaultProfile)
	}
	if cfg.PollInterval.Duration != 3*time.Second {
		t.Errorf("PollInterval = %s, want default 3s", cfg.PollInterval)
	}
	if cfg.API.Messages != "/messages" {
		t.Errorf("API.Messages = %q, want default /messages", cfg.API.Messages)
	}
}

func TestLoadMissing(t *testing.T) {
	if _, err := Load("/nonexistent/config.toml"); err == nil {
		t.Error("Load() expected error for missing file")
	}
	cfg, err := LoadOrDefault("/nonexistent/config.toml")
	if err != nil {
		t.Fatalf("LoadOrDefault() error = %v", err)
	}
	if cfg.DefaultProfile != "main" {
		t.Errorf("DefaultProfile = %q, want main", cfg.DefaultProfile)
	}
}

func TestLoadInvalidDuration(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("poll_interval = \"soon\"\n"), 0600); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load() expected error for invalid duration")
	}
}

func TestSavePermissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if err := Save(path, Default()); err != nil {
		t.Fatal(err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file permission = %o, want 0600", perm)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"absolute endpoints without base", func(c *Config) {
			c.API = API{
				Auth: "https://f.test/a", Chats: "https://f.test/c", Messages: "https://f.test/m",
				Contacts: "https://f.test/ct", Favorites: "https://f.test/f", Calls: "https://f.test/cl",
			}
		}, false},
		{"zero poll interval", func(c *Config) { c.PollInterval = Duration{} }, true},
		{"no global channel", func(c *Config) { c.GlobalChannelID = "" }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			if err := cfg.Validate(); (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv(EnvAPIBaseURL, "https://env.test")
	t.Setenv(EnvPollInterval, "750ms")
	t.Setenv(EnvLogLevel, "debug")

	cfg := Default()
	if err := ApplyEnv(cfg); err != nil {
		t.Fatal(err)
	}
	if cfg.API.BaseURL != "https://env.test" {
		t.Errorf("API.BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.PollInterval.Duration != 750*time.Millisecond {
		t.Errorf("PollInterval = %s, want 750ms", cfg.PollInterval)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestApplyEnvBadInterval(t *testing.T) {
	t.Setenv(EnvPollInterval, "often")
	if err := ApplyEnv(Default()); err == nil {
		t.Error("ApplyEnv() expected error for bad interval")
	}
}

func TestLoadEnvFile(t *testing.T) {
	if err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing .env should be ignored, got %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte(EnvLogLevel+"=warn\n"), 0600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(EnvLogLevel, "")
	os.Unsetenv(EnvLogLevel)
	if err := LoadEnvFile(path); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv(EnvLogLevel) })
	if got := os.Getenv(EnvLogLevel); got != "warn" {
		t.Errorf("%s = %q, want warn", EnvLogLevel, got)
	}
}
