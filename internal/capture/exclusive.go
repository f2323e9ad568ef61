package capture

import (
	"context"
	"errors"
	"sync"
)

// ErrDeviceBusy is returned while another recording or call holds the
// hardware.
var ErrDeviceBusy = errors.New("capture device is busy")

// Exclusive lets at most one stream be open on the wrapped device.
type Exclusive struct {
	device Device

	mu     sync.Mutex
	active int
}

// NewExclusive wraps d.
func NewExclusive(d Device) *Exclusive {
	return &Exclusive{device: d}
}

// Open opens a stream unless one is already open.
func (e *Exclusive) Open(ctx context.Context, c Constraints) (Stream, error) {
	e.mu.Lock()
	if e.active > 0 {
		e.mu.Unlock()
		return nil, ErrDeviceBusy
	}
	e.active++
	e.mu.Unlock()

	s, err := e.device.Open(ctx, c)
	if err != nil {
		e.release()
		return nil, err
	}
	return &guardedStream{Stream: s, release: e.release}, nil
}

// Active returns the number of open streams.
func (e *Exclusive) Active() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.active
}

func (e *Exclusive) release() {
	e.mu.Lock()
	e.active--
	e.mu.Unlock()
}

type guardedStream struct {
	Stream
	once    sync.Once
	release func()
}

func (g *guardedStream) Close() error {
	var err error
	g.once.Do(func() {
		err = g.Stream.Close()
		g.release()
	})
	return err
}
