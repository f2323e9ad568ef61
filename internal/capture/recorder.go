package capture

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/logging"
	"github.com/penguingram/messenger/internal/model"
	"go.uber.org/zap"
)

// ErrNotRecording is returned by Stop when no recording is in progress.
var ErrNotRecording = errors.New("not recording")

// ErrAlreadyRecording is returned by Start while a recording is running.
var ErrAlreadyRecording = errors.New("already recording")

const defaultAudioMime = "audio/webm"

// Recorder captures a voice message from the microphone.
type Recorder struct {
	device   Device
	dispatch Dispatcher
	reporter Reporter
	bus      *bus.Bus
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	stream  Stream
	started time.Time
	reading <-chan []byte
}

// NewRecorder creates a Recorder. b may be nil.
func NewRecorder(d Device, dispatch Dispatcher, r Reporter, b *bus.Bus, logger *zap.Logger) *Recorder {
	return &Recorder{
		device:   d,
		dispatch: dispatch,
		reporter: r,
		bus:      b,
		logger:   logging.OrNop(logger).Named("recorder"),
		now:      time.Now,
	}
}

// Start opens the microphone and begins buffering audio.
func (r *Recorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream != nil {
		return ErrAlreadyRecording
	}

	s, err := r.device.Open(ctx, Constraints{Audio: true})
	if err != nil {
		r.reporter.Error("Could not access the microphone")
		return err
	}
	r.stream = s
	r.started = r.now()
	reading := make(chan []byte, 1)
	r.reading = reading
	go r.read(s, reading)

	r.emit(bus.RecordingStarted, nil)
	r.logger.Debug("recording started")
	return nil
}

// read buffers one recording. The audio is handed over on done once the
// stream ends, so a recording started meanwhile never shares the buffer.
func (r *Recorder) read(s Stream, done chan<- []byte) {
	var data bytes.Buffer
	buf := make([]byte, 32<<10)
	for {
		n, err := s.Read(buf)
		data.Write(buf[:n])
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrClosedPipe) {
				r.logger.Debug("recording read", zap.Error(err))
			}
			done <- data.Bytes()
			return
		}
	}
}

// Stop ends the recording and sends it as a voice message. The
// microphone is released whether or not the send succeeds.
func (r *Recorder) Stop(ctx context.Context) error {
	r.mu.Lock()
	s, reading, started := r.stream, r.reading, r.started
	r.stream = nil
	r.mu.Unlock()
	if s == nil {
		return ErrNotRecording
	}

	duration := int(r.now().Sub(started).Round(time.Second) / time.Second)
	_ = s.Close()
	data := <-reading
	r.emit(bus.RecordingStopped, duration)

	mime := s.MimeType()
	if mime == "" {
		mime = defaultAudioMime
	}
	draft := model.Draft{
		IsVoice:       true,
		VoiceDuration: duration,
		MediaURL:      DataURI(mime, data),
		MediaType:     model.MediaAudio,
	}
	r.logger.Debug("recording stopped", zap.Int("seconds", duration), zap.Int("bytes", len(data)))
	return r.dispatch.SendDraft(ctx, draft)
}

// Cancel discards the recording and releases the microphone.
func (r *Recorder) Cancel() {
	r.mu.Lock()
	s, reading := r.stream, r.reading
	r.stream = nil
	r.mu.Unlock()
	if s == nil {
		return
	}
	_ = s.Close()
	<-reading
	r.emit(bus.RecordingStopped, 0)
}

// Active reports whether a recording is in progress.
func (r *Recorder) Active() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stream != nil
}

// Elapsed returns how long the current recording has run.
func (r *Recorder) Elapsed() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.stream == nil {
		return 0
	}
	return r.now().Sub(r.started)
}

func (r *Recorder) emit(kind string, payload any) {
	if r.bus != nil {
		r.bus.Emit(kind, payload)
	}
}
