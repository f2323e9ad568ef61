package lock

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"
)

const fileName = "LOCK"

// HeldError is returned when another client process owns the profile.
type HeldError struct {
	PID  int
	Mode string
	Path string
}

func (e *HeldError) Error() string {
	if e.Mode != "" {
		return fmt.Sprintf("profile is in use by PID %d (%s, %s)", e.PID, e.Mode, e.Path)
	}
	return fmt.Sprintf("profile is in use by PID %d (%s)", e.PID, e.Path)
}

// Lock is an acquired profile lock. Only one client process may use a
// profile's session store at a time.
type Lock struct {
	file *os.File
	path string
}

// Acquire takes an exclusive, non-blocking flock on <dir>/LOCK and records
// the owning PID and run mode in it.
func Acquire(dir, mode string) (*Lock, error) {
	lockPath := filepath.Join(dir, fileName)

	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create profile dir: %w", err)
	}

	f, err := os.OpenFile(lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return nil, fmt.Errorf("open lock file: %w", err)
	}

	if err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB); err != nil {
		data, _ := os.ReadFile(lockPath)
		_ = f.Close()
		held := parse(string(data))
		held.Path = lockPath
		return nil, held
	}

	if err := f.Truncate(0); err != nil {
		_ = f.Close()
		return nil, err
	}
	if _, err := f.Seek(0, 0); err != nil {
		_ = f.Close()
		return nil, err
	}
	content := fmt.Sprintf("pid=%d\nmode=%s\ntime=%s\n", os.Getpid(), mode, time.Now().UTC().Format(time.RFC3339))
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return nil, err
	}

	return &Lock{file: f, path: lockPath}, nil
}

// Path returns the lock file path.
func (l *Lock) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Release removes the lock file and drops the flock. Safe to call on a nil
// receiver and more than once.
func (l *Lock) Release() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = os.Remove(l.path)
	err := l.file.Close()
	l.file = nil
	return err
}

func parse(content string) *HeldError {
	held := &HeldError{}
	for _, line := range strings.Split(content, "\n") {
		key, value, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		switch key {
		case "pid":
			held.PID, _ = strconv.Atoi(value)
		case "mode":
			held.Mode = value
		}
	}
	return held
}
