package api

import (
	"strings"
	"time"
)

// Endpoints names the backend function for each resource group. Each entry
// is either an absolute URL or a path joined to Config.BaseURL.
type Endpoints struct {
	Auth      string
	Chats     string
	Messages  string
	Contacts  string
	Favorites string
	Calls     string
}

// Config locates the backend.
type Config struct {
	BaseURL   string
	Endpoints Endpoints
	Timeout   time.Duration
}

// DefaultEndpoints returns the paths served by a single-host backend.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		Auth:      "/auth",
		Chats:     "/chats",
		Messages:  "/messages",
		Contacts:  "/contacts",
		Favorites: "/favorites",
		Calls:     "/calls",
	}
}

func (c Config) resolve(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	base := strings.TrimRight(c.BaseURL, "/")
	if endpoint == "" {
		return base
	}
	if !strings.HasPrefix(endpoint, "/") {
		endpoint = "/" + endpoint
	}
	return base + endpoint
}
