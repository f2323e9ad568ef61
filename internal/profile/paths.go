package profile

import (
	"os"
	"path/filepath"
)

// BaseDir returns ~/.penguingram, or $PG_HOME when set.
func BaseDir() string {
	if v := os.Getenv("PG_HOME"); v != "" {
		return v
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".penguingram")
}

// Dir returns the profile-specific directory.
func Dir(name string) string {
	return filepath.Join(BaseDir(), "profiles", name)
}

// SocketPath returns the control socket path for a profile.
func SocketPath(name string) string {
	return filepath.Join(Dir(name), "control.sock")
}

// DBPath returns the sqlite database holding the persisted session.
func DBPath(name string) string {
	return filepath.Join(Dir(name), "session.db")
}

// LogDir returns the log directory for a profile.
func LogDir(name string) string {
	return filepath.Join(Dir(name), "logs")
}

// LogPath returns the client log file path.
func LogPath(name string) string {
	return filepath.Join(LogDir(name), "pg.log")
}

// ConfigPath returns the global config file path.
func ConfigPath() string {
	return filepath.Join(BaseDir(), "config.toml")
}

// EnvPath returns the optional .env file next to the config.
func EnvPath() string {
	return filepath.Join(BaseDir(), ".env")
}

// EnsureDir creates the profile directory tree with owner-only permissions.
func EnsureDir(name string) error {
	for _, d := range []string{Dir(name), LogDir(name)} {
		if err := os.MkdirAll(d, 0700); err != nil {
			return err
		}
	}
	return nil
}
