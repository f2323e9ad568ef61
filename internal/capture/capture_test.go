package capture

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/model"
)

func TestRecorderDispatchesVoiceMessage(t *testing.T) {
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	dev := NewExclusive(&memDevice{mime: "audio/webm", chunks: [][]byte{[]byte("abc"), []byte("def")}})
	disp := &recordingDispatcher{}
	rec := NewRecorder(dev, disp, &recordingReporter{}, bus.New(), nil)
	rec.now = func() time.Time { return now }

	ctx := context.Background()
	if err := rec.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if !rec.Active() {
		t.Fatal("recorder should be active")
	}
	now = now.Add(4 * time.Second)
	if got := rec.Elapsed(); got != 4*time.Second {
		t.Errorf("Elapsed() = %v, want 4s", got)
	}
	if err := rec.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	if len(disp.drafts) != 1 {
		t.Fatalf("dispatched %d drafts, want 1", len(disp.drafts))
	}
	d := disp.drafts[0]
	if !d.IsVoice || d.VoiceDuration != 4 {
		t.Errorf("draft = %+v, want voice of 4s", d)
	}
	if !strings.HasPrefix(d.MediaURL, "data:audio/") {
		t.Errorf("MediaURL = %q, want data:audio/ prefix", d.MediaURL)
	}
	if d.MediaURL != DataURI("audio/webm", []byte("abcdef")) {
		t.Errorf("MediaURL = %q, chunks not concatenated", d.MediaURL)
	}
	if rec.Active() || dev.Active() != 0 {
		t.Errorf("Active()=%v handles=%d after Stop", rec.Active(), dev.Active())
	}
}

func TestRecorderReleasesWhenSendFails(t *testing.T) {
	dev := NewExclusive(&memDevice{mime: "audio/ogg"})
	disp := &recordingDispatcher{err: errors.New("offline")}
	rec := NewRecorder(dev, disp, &recordingReporter{}, nil, nil)

	if err := rec.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := rec.Stop(context.Background()); err == nil {
		t.Error("Stop() should surface the send error")
	}
	if dev.Active() != 0 {
		t.Errorf("%d handles open after failed send", dev.Active())
	}
}

func TestRecorderPermissionDenied(t *testing.T) {
	rep := &recordingReporter{}
	rec := NewRecorder(&memDevice{deny: errDenied}, &recordingDispatcher{}, rep, nil, nil)

	err := rec.Start(context.Background())
	var perr *PermissionError
	if !errors.As(err, &perr) {
		t.Fatalf("Start() error = %v, want PermissionError", err)
	}
	if rec.Active() {
		t.Error("recorder active after denial")
	}
	if rep.count() != 1 {
		t.Errorf("reported %d errors, want 1", rep.count())
	}
	if err := rec.Stop(context.Background()); !errors.Is(err, ErrNotRecording) {
		t.Errorf("Stop() = %v, want ErrNotRecording", err)
	}
}

func TestRecorderCancel(t *testing.T) {
	dev := NewExclusive(&memDevice{mime: "audio/webm", chunks: [][]byte{[]byte("x")}})
	disp := &recordingDispatcher{}
	rec := NewRecorder(dev, disp, &recordingReporter{}, nil, nil)

	if err := rec.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := rec.Start(context.Background()); !errors.Is(err, ErrAlreadyRecording) {
		t.Errorf("second Start() = %v, want ErrAlreadyRecording", err)
	}
	rec.Cancel()
	if len(disp.drafts) != 0 || dev.Active() != 0 {
		t.Errorf("drafts=%d handles=%d after Cancel", len(disp.drafts), dev.Active())
	}
}

func TestExclusiveRejectsSecondHandle(t *testing.T) {
	dev := NewExclusive(&memDevice{})
	s, err := dev.Open(context.Background(), Constraints{Audio: true})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := dev.Open(context.Background(), Constraints{Audio: true}); !errors.Is(err, ErrDeviceBusy) {
		t.Errorf("second Open() = %v, want ErrDeviceBusy", err)
	}
	_ = s.Close()
	_ = s.Close()
	if dev.Active() != 0 {
		t.Errorf("Active() = %d after double Close, want 0", dev.Active())
	}

	denied := NewExclusive(&memDevice{deny: errDenied})
	if _, err := denied.Open(context.Background(), Constraints{Audio: true}); err == nil {
		t.Fatal("expected denial")
	}
	if denied.Active() != 0 {
		t.Errorf("failed Open leaked a handle")
	}
}

func TestCallReleasesOnEveryExit(t *testing.T) {
	peer := model.User{ID: "7", Name: "Kim"}
	ctx := context.Background()

	t.Run("explicit end", func(t *testing.T) {
		dev := NewExclusive(&memDevice{})
		sig := &fakeSignaler{}
		c := NewCaller(dev, sig, &recordingReporter{}, nil, nil)
		if err := c.Start(ctx, peer, model.VoiceCall); err != nil {
			t.Fatal(err)
		}
		if dev.Active() != 1 {
			t.Fatalf("Active() = %d during call, want 1", dev.Active())
		}
		if err := c.End(ctx); err != nil {
			t.Fatal(err)
		}
		if dev.Active() != 0 {
			t.Errorf("Active() = %d after End", dev.Active())
		}
		if len(sig.ended) != 1 || sig.ended[0] != "c1" {
			t.Errorf("ended = %v", sig.ended)
		}
	})

	t.Run("dismissal", func(t *testing.T) {
		dev := NewExclusive(&memDevice{})
		c := NewCaller(dev, &fakeSignaler{}, &recordingReporter{}, nil, nil)
		if err := c.Start(ctx, peer, model.VideoCall); err != nil {
			t.Fatal(err)
		}
		c.Dismiss()
		if dev.Active() != 0 {
			t.Errorf("Active() = %d after Dismiss", dev.Active())
		}
		if _, ok := c.Current(); ok {
			t.Error("call still current after Dismiss")
		}
	})

	t.Run("initiate failure", func(t *testing.T) {
		dev := NewExclusive(&memDevice{})
		rep := &recordingReporter{}
		c := NewCaller(dev, &fakeSignaler{initErr: errors.New("busy")}, rep, nil, nil)
		if err := c.Start(ctx, peer, model.VoiceCall); err == nil {
			t.Fatal("expected error")
		}
		if dev.Active() != 0 || rep.count() != 1 {
			t.Errorf("handles=%d reports=%d", dev.Active(), rep.count())
		}
	})

	t.Run("accept failure", func(t *testing.T) {
		dev := NewExclusive(&memDevice{})
		c := NewCaller(dev, &fakeSignaler{acceptErr: errors.New("gone")}, &recordingReporter{}, nil, nil)
		if err := c.Accept(ctx, "c9", peer, model.VideoCall); err == nil {
			t.Fatal("expected error")
		}
		if dev.Active() != 0 {
			t.Errorf("Active() = %d after failed accept", dev.Active())
		}
	})
}

func TestCallConstraints(t *testing.T) {
	mem := &memDevice{}
	c := NewCaller(mem, &fakeSignaler{}, &recordingReporter{}, nil, nil)
	if err := c.Start(context.Background(), model.User{ID: "7"}, model.VideoCall); err != nil {
		t.Fatal(err)
	}
	if err := c.Start(context.Background(), model.User{ID: "8"}, model.VoiceCall); !errors.Is(err, ErrCallInProgress) {
		t.Errorf("second Start() = %v, want ErrCallInProgress", err)
	}
	if got := mem.opened[0]; !got.Audio || !got.Video {
		t.Errorf("video call opened %+v, want audio and video", got)
	}
	call, ok := c.Current()
	if !ok || call.ID != "c1" || call.Status != "active" {
		t.Errorf("Current() = %+v, %v", call, ok)
	}
	if err := c.End(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := c.End(context.Background()); !errors.Is(err, ErrNoCall) {
		t.Errorf("End() without call = %v, want ErrNoCall", err)
	}
}

func TestReleaserOnLogout(t *testing.T) {
	b := bus.New()
	dev := NewExclusive(&memDevice{})
	rec := NewRecorder(dev, &recordingDispatcher{}, &recordingReporter{}, b, nil)
	caller := NewCaller(NewExclusive(&memDevice{}), &fakeSignaler{}, &recordingReporter{}, b, nil)
	rel := NewReleaser(rec, caller, b)
	rel.Start(context.Background())
	defer rel.Stop()

	if err := rec.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	b.Emit(bus.SessionLoggedOut, nil)

	deadline := time.Now().Add(2 * time.Second)
	for rec.Active() && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if rec.Active() || dev.Active() != 0 {
		t.Error("recording not released on logout")
	}
}

func TestAttacherSendFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name string
		data []byte
		want model.MediaType
	}{
		{"photo.png", []byte("\x89PNG\r\n\x1a\n0000"), model.MediaImage},
		{"clip.mp4", []byte("\x00\x00\x00\x0cftypmp42"), model.MediaVideo},
		{"notes.pdf", []byte("%PDF-1.4"), model.MediaFile},
		{"blob", []byte("\x89PNG\r\n\x1a\n0000"), model.MediaImage},
		{"raw", []byte{0x00, 0x01, 0x02}, model.MediaFile},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, tt.name)
			if err := os.WriteFile(path, tt.data, 0600); err != nil {
				t.Fatal(err)
			}
			disp := &recordingDispatcher{}
			if err := NewAttacher(disp, &recordingReporter{}).SendFile(context.Background(), path); err != nil {
				t.Fatal(err)
			}
			d := disp.drafts[0]
			if d.Text != tt.name || d.MediaType != tt.want || d.IsVoice {
				t.Errorf("draft = {Text:%q MediaType:%q IsVoice:%v}", d.Text, d.MediaType, d.IsVoice)
			}
			if !strings.HasPrefix(d.MediaURL, "data:") || !strings.Contains(d.MediaURL, ";base64,") {
				t.Errorf("MediaURL = %q", d.MediaURL)
			}
		})
	}

	rep := &recordingReporter{}
	if err := NewAttacher(&recordingDispatcher{}, rep).SendFile(context.Background(), filepath.Join(dir, "missing")); err == nil {
		t.Error("expected error for missing file")
	}
	if rep.count() != 1 {
		t.Errorf("reported %d errors, want 1", rep.count())
	}
}

func TestCommandDevice(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	dev := &CommandDevice{
		AudioCommand: []string{"sh", "-c", "printf voice; exec sleep 30"},
		AudioMime:    "audio/ogg",
	}
	s, err := dev.Open(context.Background(), Constraints{Audio: true})
	if err != nil {
		t.Fatal(err)
	}
	buf := make([]byte, 5)
	if _, err := s.Read(buf); err != nil || string(buf) != "voice" {
		t.Errorf("Read() = %q, %v", buf, err)
	}
	if s.MimeType() != "audio/ogg" {
		t.Errorf("MimeType() = %q", s.MimeType())
	}
	drained := make(chan struct{})
	go func() {
		_, _ = io.Copy(io.Discard, s)
		close(drained)
	}()
	_ = s.Close()
	<-drained

	missing := &CommandDevice{AudioCommand: []string{"/nonexistent/recorder"}}
	var perr *PermissionError
	if _, err := missing.Open(context.Background(), Constraints{Audio: true}); !errors.As(err, &perr) {
		t.Errorf("Open() = %v, want PermissionError", err)
	}
	if _, err := (Unavailable{}).Open(context.Background(), Constraints{Video: true}); !errors.Is(err, ErrNoDevice) {
		t.Errorf("Unavailable.Open() = %v, want ErrNoDevice", err)
	}
}

func TestRecorderKeepsTrailerWrittenOnInterrupt(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
	const trailer = 400000
	script := "trap 'head -c 400000 /dev/zero; exit 0' INT; printf r; while :; do sleep 0.1; done"

	for i := 0; i < 5; i++ {
		dev := &signalDevice{
			Device: &CommandDevice{AudioCommand: []string{"sh", "-c", script}, AudioMime: "audio/ogg"},
			ready:  make(chan struct{}),
		}
		disp := &recordingDispatcher{}
		rec := NewRecorder(dev, disp, &recordingReporter{}, nil, nil)
		if err := rec.Start(context.Background()); err != nil {
			t.Fatal(err)
		}
		select {
		case <-dev.ready:
		case <-time.After(5 * time.Second):
			t.Fatal("recorder produced no output")
		}
		if err := rec.Stop(context.Background()); err != nil {
			t.Fatal(err)
		}
		want := DataURI("audio/ogg", append([]byte("r"), make([]byte, trailer)...))
		if got := disp.drafts[0].MediaURL; len(got) != len(want) {
			t.Fatalf("run %d: data URI has %d bytes, want %d", i, len(got), len(want))
		}
	}
}

func TestRecordingStartedDuringFlushKeepsItsOwnAudio(t *testing.T) {
	first := newFlushingStream("OLD", "-TAIL")
	second := newFlushingStream("NEW", "")
	close(second.flush)
	disp := &recordingDispatcher{}
	rec := NewRecorder(&queueDevice{streams: []Stream{first, second}}, disp, &recordingReporter{}, nil, nil)
	ctx := context.Background()

	if err := rec.Start(ctx); err != nil {
		t.Fatal(err)
	}
	stopped := make(chan error, 1)
	go func() { stopped <- rec.Stop(ctx) }()
	<-first.closed

	if err := rec.Start(ctx); err != nil {
		t.Fatal(err)
	}
	close(first.flush)
	if err := <-stopped; err != nil {
		t.Fatal(err)
	}
	if err := rec.Stop(ctx); err != nil {
		t.Fatal(err)
	}

	if len(disp.drafts) != 2 {
		t.Fatalf("dispatched %d drafts, want 2", len(disp.drafts))
	}
	if got, want := disp.drafts[0].MediaURL, DataURI("audio/ogg", []byte("OLD-TAIL")); got != want {
		t.Errorf("first recording = %q, want %q", got, want)
	}
	if got, want := disp.drafts[1].MediaURL, DataURI("audio/ogg", []byte("NEW")); got != want {
		t.Errorf("second recording = %q, want %q", got, want)
	}
}
