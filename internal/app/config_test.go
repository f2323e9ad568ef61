package app

import (
	"os"
	"testing"
	"time"

	"github.com/penguingram/messenger/internal/config"
	"github.com/penguingram/messenger/internal/profile"
)

func TestLoadConfigLayers(t *testing.T) {
	home := t.TempDir()
	t.Setenv("PG_HOME", home)
	// Registered for restore, then cleared so the .env file can set it.
	t.Setenv(config.EnvPollInterval, "")
	_ = os.Unsetenv(config.EnvPollInterval)
	t.Setenv(config.EnvAPIBaseURL, "")
	t.Setenv(config.EnvProfile, "")

	cfg := config.Default()
	cfg.API.BaseURL = "http://file.example"
	cfg.DefaultProfile = "work"
	if err := config.Save(profile.ConfigPath(), cfg); err != nil {
		t.Fatal(err)
	}
	env := "PG_POLL_INTERVAL=7s\n"
	if err := os.WriteFile(profile.EnvPath(), []byte(env), 0600); err != nil {
		t.Fatal(err)
	}

	got, err := LoadConfig()
	if err != nil {
		t.Fatal(err)
	}
	if got.API.BaseURL != "http://file.example" {
		t.Errorf("BaseURL = %q", got.API.BaseURL)
	}
	if got.PollInterval.Duration != 7*time.Second {
		t.Errorf("PollInterval = %s, want 7s", got.PollInterval)
	}

	name, err := ResolveProfile("", got)
	if err != nil || name != "work" {
		t.Errorf("ResolveProfile() = %q, %v", name, err)
	}
	if _, err := ResolveProfile("Bad Name", got); err == nil {
		t.Error("invalid profile name accepted")
	}
}
