package capture

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"
)

// ErrNoDevice is wrapped by PermissionError when no capture device exists.
var ErrNoDevice = errors.New("no capture device configured")

// Constraints selects the tracks to capture.
type Constraints struct {
	Audio bool
	Video bool
}

func (c Constraints) String() string {
	switch {
	case c.Audio && c.Video:
		return "microphone and camera"
	case c.Video:
		return "camera"
	default:
		return "microphone"
	}
}

// Stream is an open capture handle producing encoded media.
type Stream interface {
	io.Reader
	MimeType() string
	Close() error
}

// Device grants access to capture hardware.
type Device interface {
	Open(ctx context.Context, c Constraints) (Stream, error)
}

// PermissionError reports that hardware access was refused.
type PermissionError struct {
	Device string
	Err    error
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("access to %s denied: %v", e.Device, e.Err)
}

func (e *PermissionError) Unwrap() error { return e.Err }

// Unavailable is a Device that refuses every request.
type Unavailable struct{}

func (Unavailable) Open(_ context.Context, c Constraints) (Stream, error) {
	return nil, &PermissionError{Device: c.String(), Err: ErrNoDevice}
}

// CommandDevice captures by running an external recorder that writes
// encoded media to stdout until interrupted.
type CommandDevice struct {
	AudioCommand []string
	AudioMime    string
	VideoCommand []string
	VideoMime    string
}

const stopGrace = 2 * time.Second

// Open starts the recorder. A command that cannot be started is reported
// as a PermissionError.
func (d *CommandDevice) Open(_ context.Context, c Constraints) (Stream, error) {
	argv, mime := d.AudioCommand, d.AudioMime
	if c.Video {
		argv, mime = d.VideoCommand, d.VideoMime
	}
	if len(argv) == 0 {
		return nil, &PermissionError{Device: c.String(), Err: ErrNoDevice}
	}

	// The process outlives the request context; Close stops it.
	cmd := exec.Command(argv[0], argv[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &PermissionError{Device: c.String(), Err: err}
	}
	if err := cmd.Start(); err != nil {
		return nil, &PermissionError{Device: c.String(), Err: err}
	}
	return &commandStream{cmd: cmd, stdout: stdout, mime: mime, exited: make(chan struct{})}, nil
}

// commandStream reaps the recorder only after stdout reaches EOF, so
// whatever the recorder flushes on interrupt is still read.
type commandStream struct {
	cmd      *exec.Cmd
	stdout   io.Reader
	mime     string
	once     sync.Once
	reapOnce sync.Once
	exited   chan struct{}
	waitErr  error
}

func (s *commandStream) Read(p []byte) (int, error) {
	n, err := s.stdout.Read(p)
	if errors.Is(err, io.EOF) {
		s.reap()
	}
	return n, err
}

func (s *commandStream) reap() {
	s.reapOnce.Do(func() {
		s.waitErr = s.cmd.Wait()
		close(s.exited)
	})
}

func (s *commandStream) MimeType() string { return s.mime }

// Close interrupts the recorder and waits for its output to be drained.
// A recorder that does not finish within the grace period is killed and
// its remaining output dropped.
func (s *commandStream) Close() error {
	s.once.Do(func() {
		_ = s.cmd.Process.Signal(os.Interrupt)
		select {
		case <-s.exited:
		case <-time.After(stopGrace):
			_ = s.cmd.Process.Kill()
			s.reap()
		}
	})
	return nil
}
