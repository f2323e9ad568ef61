package capture

import (
	"context"

	"github.com/penguingram/messenger/internal/bus"
)

// Releaser frees capture hardware when the session ends.
type Releaser struct {
	recorder *Recorder
	caller   *Caller
	bus      *bus.Bus
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewReleaser creates a Releaser for rec and caller.
func NewReleaser(rec *Recorder, caller *Caller, b *bus.Bus) *Releaser {
	return &Releaser{recorder: rec, caller: caller, bus: b}
}

// Start releases everything on each session.logged_out event.
func (r *Releaser) Start(ctx context.Context) {
	ctx, r.cancel = context.WithCancel(ctx)
	r.done = make(chan struct{})
	ch, unsub := r.bus.Subscribe(bus.SessionLoggedOut, 4)

	go func() {
		defer close(r.done)
		defer unsub()
		for {
			select {
			case <-ch:
				r.ReleaseAll()
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop releases everything and stops listening.
func (r *Releaser) Stop() {
	if r.cancel != nil {
		r.cancel()
		<-r.done
	}
	r.ReleaseAll()
}

// ReleaseAll cancels any recording and ends any call.
func (r *Releaser) ReleaseAll() {
	r.recorder.Cancel()
	r.caller.Dismiss()
}
