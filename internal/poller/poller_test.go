package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/penguingram/messenger/internal/bus"
)

type countingRefresher struct {
	calls   atomic.Int32
	mu      sync.Mutex
	running int
	maxRun  int
	err     error
}

func (r *countingRefresher) RefreshMessages(context.Context) error {
	r.mu.Lock()
	r.running++
	if r.running > r.maxRun {
		r.maxRun = r.running
	}
	r.mu.Unlock()

	r.calls.Add(1)
	time.Sleep(time.Millisecond)

	r.mu.Lock()
	r.running--
	r.mu.Unlock()
	return r.err
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met")
}

func TestPollerFollowsSelection(t *testing.T) {
	b := bus.New()
	r := &countingRefresher{}
	p := New(r, b, 10*time.Millisecond, nil)
	p.Start(context.Background())
	defer p.Stop()

	if p.Target() != "" {
		t.Fatalf("Target() = %q before any selection", p.Target())
	}

	b.Emit(bus.ChannelSelected, "A")
	waitFor(t, func() bool { return p.Target() == "A" && r.calls.Load() >= 2 })

	b.Emit(bus.ChannelSelected, "B")
	waitFor(t, func() bool { return p.Target() == "B" })

	r.mu.Lock()
	maxRun := r.maxRun
	r.mu.Unlock()
	if maxRun > 1 {
		t.Errorf("%d refreshes ran at once, want at most 1", maxRun)
	}
}

func TestPollerStopsOnLogout(t *testing.T) {
	b := bus.New()
	r := &countingRefresher{}
	p := New(r, b, 10*time.Millisecond, nil)
	p.Start(context.Background())
	defer p.Stop()

	b.Emit(bus.ChannelSelected, "A")
	waitFor(t, func() bool { return r.calls.Load() >= 1 })

	b.Emit(bus.SessionLoggedOut, nil)
	waitFor(t, func() bool { return p.Target() == "" })

	before := r.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if after := r.calls.Load(); after != before {
		t.Errorf("refreshes continued after logout: %d -> %d", before, after)
	}
}

func TestPollerKeepsTickingOnErrors(t *testing.T) {
	b := bus.New()
	r := &countingRefresher{err: errors.New("network down")}
	p := New(r, b, 10*time.Millisecond, nil)
	p.Start(context.Background())
	defer p.Stop()

	b.Emit(bus.ChannelSelected, "A")
	waitFor(t, func() bool { return r.calls.Load() >= 3 })
}

func TestPollerStop(t *testing.T) {
	b := bus.New()
	r := &countingRefresher{}
	p := New(r, b, 10*time.Millisecond, nil)
	p.Start(context.Background())

	b.Emit(bus.ChannelSelected, "A")
	waitFor(t, func() bool { return r.calls.Load() >= 1 })

	p.Stop()
	if b.Subscribers() != 0 {
		t.Errorf("Subscribers() = %d after Stop, want 0", b.Subscribers())
	}
	if p.Target() != "" {
		t.Errorf("Target() = %q after Stop", p.Target())
	}
	before := r.calls.Load()
	time.Sleep(30 * time.Millisecond)
	if after := r.calls.Load(); after != before {
		t.Errorf("refreshes after Stop: %d -> %d", before, after)
	}
}

func TestDefaultInterval(t *testing.T) {
	p := New(&countingRefresher{}, bus.New(), 0, nil)
	if p.interval != DefaultInterval {
		t.Errorf("interval = %v, want %v", p.interval, DefaultInterval)
	}
}

func TestPollerAppliesEventsInPublishOrder(t *testing.T) {
	b := bus.New()
	p := New(&countingRefresher{}, b, time.Hour, nil)
	p.Start(context.Background())
	defer p.Stop()

	for i := 0; i < 20; i++ {
		b.Emit(bus.ChannelSelected, "A")
		b.Emit(bus.SessionLoggedOut, nil)
		b.Emit(bus.ChannelSelected, "B")
		waitFor(t, func() bool { return p.Target() == "B" })
		time.Sleep(5 * time.Millisecond)
		if got := p.Target(); got != "B" {
			t.Fatalf("round %d: Target() = %q after logout then select, want B", i, got)
		}

		b.Emit(bus.SessionLoggedOut, nil)
		waitFor(t, func() bool { return p.Target() == "" })
	}
}
