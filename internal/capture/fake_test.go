package capture

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/penguingram/messenger/internal/model"
)

// memDevice hands out streams that yield chunks and then block until
// closed, like a live microphone.
type memDevice struct {
	mime   string
	chunks [][]byte
	deny   error

	mu      sync.Mutex
	opened  []Constraints
	streams []*memStream
}

func (d *memDevice) Open(_ context.Context, c Constraints) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.deny != nil {
		return nil, &PermissionError{Device: c.String(), Err: d.deny}
	}
	d.opened = append(d.opened, c)
	s := &memStream{mime: d.mime, pending: append([][]byte(nil), d.chunks...), closed: make(chan struct{})}
	d.streams = append(d.streams, s)
	return s, nil
}

type memStream struct {
	mime    string
	mu      sync.Mutex
	pending [][]byte
	closed  chan struct{}
	once    sync.Once
}

func (s *memStream) Read(p []byte) (int, error) {
	s.mu.Lock()
	if len(s.pending) > 0 {
		n := copy(p, s.pending[0])
		s.pending = s.pending[1:]
		s.mu.Unlock()
		return n, nil
	}
	s.mu.Unlock()
	<-s.closed
	return 0, io.EOF
}

func (s *memStream) MimeType() string { return s.mime }

func (s *memStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

type recordingDispatcher struct {
	mu     sync.Mutex
	drafts []model.Draft
	err    error
}

func (d *recordingDispatcher) SendDraft(_ context.Context, draft model.Draft) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.drafts = append(d.drafts, draft)
	return d.err
}

type recordingReporter struct {
	mu     sync.Mutex
	errors []string
}

func (r *recordingReporter) Error(desc string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, desc)
}

func (r *recordingReporter) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

type fakeSignaler struct {
	initErr   error
	acceptErr error
	ended     []string
}

func (f *fakeSignaler) InitiateCall(_ context.Context, peer model.User, t model.CallType) (model.Call, error) {
	if f.initErr != nil {
		return model.Call{}, f.initErr
	}
	return model.Call{ID: "c1", Type: t, Peer: peer, Status: "ringing"}, nil
}

func (f *fakeSignaler) AcceptCall(context.Context, string) error { return f.acceptErr }

func (f *fakeSignaler) EndCall(_ context.Context, id string) error {
	f.ended = append(f.ended, id)
	return nil
}

var errDenied = errors.New("denied by user")

// flushingStream yields body, then after Close yields tail once flush is
// released, like a recorder writing its trailer on interrupt.
type flushingStream struct {
	body, tail string
	closed     chan struct{}
	flush      chan struct{}
	once       sync.Once
	state      int
}

func newFlushingStream(body, tail string) *flushingStream {
	return &flushingStream{body: body, tail: tail, closed: make(chan struct{}), flush: make(chan struct{})}
}

func (s *flushingStream) Read(p []byte) (int, error) {
	switch s.state {
	case 0:
		s.state++
		return copy(p, s.body), nil
	case 1:
		s.state++
		<-s.closed
		<-s.flush
		return copy(p, s.tail), nil
	}
	return 0, io.EOF
}

func (s *flushingStream) MimeType() string { return "audio/ogg" }

func (s *flushingStream) Close() error {
	s.once.Do(func() { close(s.closed) })
	return nil
}

// queueDevice hands out the given streams in order.
type queueDevice struct {
	mu      sync.Mutex
	streams []Stream
}

func (d *queueDevice) Open(context.Context, Constraints) (Stream, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.streams[0]
	d.streams = d.streams[1:]
	return s, nil
}

// signalDevice reports the first bytes read from a stream on ready.
type signalDevice struct {
	Device
	ready chan struct{}
}

func (d *signalDevice) Open(ctx context.Context, c Constraints) (Stream, error) {
	s, err := d.Device.Open(ctx, c)
	if err != nil {
		return nil, err
	}
	return &signalStream{Stream: s, ready: d.ready}, nil
}

type signalStream struct {
	Stream
	ready chan struct{}
	once  sync.Once
}

func (s *signalStream) Read(p []byte) (int, error) {
	n, err := s.Stream.Read(p)
	if n > 0 {
		s.once.Do(func() { close(s.ready) })
	}
	return n, err
}
