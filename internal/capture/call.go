package capture

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/logging"
	"github.com/penguingram/messenger/internal/model"
	"go.uber.org/zap"
)

// ErrCallInProgress is returned when a call is already active.
var ErrCallInProgress = errors.New("a call is already in progress")

// ErrNoCall is returned by End when no call is active.
var ErrNoCall = errors.New("no active call")

const dismissTimeout = 5 * time.Second

// Caller manages the local side of a call: the captured media and the
// signaling stubs. No media is sent to the peer.
type Caller struct {
	device   Device
	signaler Signaler
	reporter Reporter
	bus      *bus.Bus
	logger   *zap.Logger

	mu      sync.Mutex
	current *activeCall
}

type activeCall struct {
	call   model.Call
	stream Stream
}

// NewCaller creates a Caller. b may be nil.
func NewCaller(d Device, s Signaler, r Reporter, b *bus.Bus, logger *zap.Logger) *Caller {
	return &Caller{
		device:   d,
		signaler: s,
		reporter: r,
		bus:      b,
		logger:   logging.OrNop(logger).Named("caller"),
	}
}

func constraintsFor(t model.CallType) Constraints {
	return Constraints{Audio: true, Video: t == model.VideoCall}
}

// acquire opens the media for t and reserves the call slot.
func (c *Caller) acquire(ctx context.Context, t model.CallType) (Stream, error) {
	c.mu.Lock()
	busy := c.current != nil
	c.mu.Unlock()
	if busy {
		return nil, ErrCallInProgress
	}
	cons := constraintsFor(t)
	s, err := c.device.Open(ctx, cons)
	if err != nil {
		c.reporter.Error("Could not access the " + cons.String())
		return nil, err
	}
	return s, nil
}

func (c *Caller) install(call model.Call, s Stream) error {
	c.mu.Lock()
	if c.current != nil {
		c.mu.Unlock()
		_ = s.Close()
		return ErrCallInProgress
	}
	c.current = &activeCall{call: call, stream: s}
	c.mu.Unlock()
	c.emit(bus.CallStarted, call)
	return nil
}

// Start calls peer. The media is released if signaling fails.
func (c *Caller) Start(ctx context.Context, peer model.User, t model.CallType) error {
	s, err := c.acquire(ctx, t)
	if err != nil {
		return err
	}
	call, err := c.signaler.InitiateCall(ctx, peer, t)
	if err != nil {
		_ = s.Close()
		c.reporter.Error("Could not start the call")
		c.logger.Warn("initiate call", zap.Error(err))
		return err
	}
	call.Status = "active"
	return c.install(call, s)
}

// Accept answers callID. The media is released if signaling fails.
func (c *Caller) Accept(ctx context.Context, callID string, peer model.User, t model.CallType) error {
	s, err := c.acquire(ctx, t)
	if err != nil {
		return err
	}
	if err := c.signaler.AcceptCall(ctx, callID); err != nil {
		_ = s.Close()
		c.reporter.Error("Could not accept the call")
		c.logger.Warn("accept call", zap.Error(err))
		return err
	}
	return c.install(model.Call{ID: callID, Type: t, Peer: peer, Status: "active"}, s)
}

// End hangs up. The media is released before the backend is told.
func (c *Caller) End(ctx context.Context) error {
	c.mu.Lock()
	cur := c.current
	c.current = nil
	c.mu.Unlock()
	if cur == nil {
		return ErrNoCall
	}

	_ = cur.stream.Close()
	cur.call.Status = "ended"
	c.emit(bus.CallEnded, cur.call)

	if err := c.signaler.EndCall(ctx, cur.call.ID); err != nil {
		c.logger.Warn("end call", zap.String("call_id", cur.call.ID), zap.Error(err))
		return err
	}
	return nil
}

// Dismiss ends the call when its dialog is closed.
func (c *Caller) Dismiss() {
	ctx, cancel := context.WithTimeout(context.Background(), dismissTimeout)
	defer cancel()
	if err := c.End(ctx); err != nil && !errors.Is(err, ErrNoCall) {
		c.logger.Debug("dismiss call", zap.Error(err))
	}
}

// Current returns the active call.
func (c *Caller) Current() (model.Call, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return model.Call{}, false
	}
	return c.current.call, true
}

func (c *Caller) emit(kind string, payload any) {
	if c.bus != nil {
		c.bus.Emit(kind, payload)
	}
}
