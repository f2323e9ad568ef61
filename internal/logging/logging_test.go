package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestNewWritesProfileField(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "pg.log")

	logger, err := New(path, "work", "info")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("hello")
	logger.Debug("hidden")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, `"profile":"work"`) {
		t.Errorf("log line missing profile field: %s", out)
	}
	if !strings.Contains(out, "hello") {
		t.Errorf("log missing info entry: %s", out)
	}
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written at info level: %s", out)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "pg.log"), "main", "loud"); err == nil {
		t.Error("New() expected error for unknown level")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Fatal("OrNop(nil) returned nil")
	}
}
