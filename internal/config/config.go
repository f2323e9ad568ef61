package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the global ~/.penguingram/config.toml.
type Config struct {
	DefaultProfile  string   `toml:"default_profile"`
	LogLevel        string   `toml:"log_level"`
	PollInterval    Duration `toml:"poll_interval"`
	GlobalChannelID string   `toml:"global_channel_id"`
	AdminPhrase     string   `toml:"admin_phrase"`
	API             API      `toml:"api"`
	Capture         Capture  `toml:"capture"`
}

// API locates the backend functions. Endpoints may be absolute URLs or
// paths relative to BaseURL.
type API struct {
	BaseURL   string   `toml:"base_url"`
	Auth      string   `toml:"auth"`
	Chats     string   `toml:"chats"`
	Messages  string   `toml:"messages"`
	Contacts  string   `toml:"contacts"`
	Favorites string   `toml:"favorites"`
	Calls     string   `toml:"calls"`
	Timeout   Duration `toml:"timeout"`
}

// Capture configures the external recorder commands used as media devices.
// The command must write encoded media to stdout until killed.
type Capture struct {
	AudioCommand []string `toml:"audio_command"`
	AudioMime    string   `toml:"audio_mime"`
	VideoCommand []string `toml:"video_command"`
	VideoMime    string   `toml:"video_mime"`
}

// Duration is a time.Duration written as "3s" in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		DefaultProfile:  "main",
		LogLevel:        "info",
		PollInterval:    Duration{3 * time.Second},
		GlobalChannelID: "1",
		AdminPhrase:     "Пингвин 25963",
		API: API{
			BaseURL:   "http://localhost:8080",
			Auth:      "/auth",
			Chats:     "/chats",
			Messages:  "/messages",
			Contacts:  "/contacts",
			Favorites: "/favorites",
			Calls:     "/calls",
			Timeout:   Duration{15 * time.Second},
		},
		Capture: Capture{
			AudioCommand: []string{"ffmpeg", "-loglevel", "quiet", "-f", "pulse", "-i", "default", "-c:a", "libopus", "-f", "webm", "-"},
			AudioMime:    "audio/webm",
			VideoCommand: []string{"ffmpeg", "-loglevel", "quiet", "-f", "v4l2", "-i", "/dev/video0", "-f", "pulse", "-i", "default", "-f", "webm", "-"},
			VideoMime:    "video/webm",
		},
	}
}

// Load reads config from the given path on top of the defaults.
// Returns an error if the file is missing.
func Load(path string) (*Config, error) {
	cfg := Default()
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault is Load, except that a missing file yields the defaults.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Save writes config to the given path, creating parent dirs as needed.
func Save(path string, cfg *Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	encErr := toml.NewEncoder(f).Encode(cfg)
	if closeErr := f.Close(); closeErr != nil && encErr == nil {
		return closeErr
	}
	return encErr
}

// Validate checks the values the client cannot run without.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.API.BaseURL) == "" && !allAbsolute(c.API) {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.PollInterval.Duration <= 0 {
		return fmt.Errorf("poll_interval must be positive, got %s", c.PollInterval)
	}
	if c.GlobalChannelID == "" {
		return fmt.Errorf("global_channel_id must not be empty")
	}
	return nil
}

func allAbsolute(a API) bool {
	for _, ep := range []string{a.Auth, a.Chats, a.Messages, a.Contacts, a.Favorites, a.Calls} {
		if !strings.HasPrefix(ep, "http://") && !strings.HasPrefix(ep, "https://") {
			return false
		}
	}
	return true
}
