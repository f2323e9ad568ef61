package views

import (
	"strings"
	"testing"

	"github.com/penguingram/messenger/internal/model"
	"github.com/penguingram/messenger/internal/session"
	"github.com/penguingram/messenger/internal/tui/ui"
)

func TestSanitizeForTerminal(t *testing.T) {
	tests := []struct{ in, want string }{
		{"hello", "hello"},
		{"👍🏻", "👍"},
		{"👨\u200d👩\u200d👧", "👨👩👧"},
		{"❤\ufe0f", "❤"},
		{"🐧", "🐧"},
	}
	for _, tt := range tests {
		if got := sanitizeForTerminal(tt.in); got != tt.want {
			t.Errorf("sanitizeForTerminal(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestChatListFilter(t *testing.T) {
	cl := NewChatList(ui.DarkTheme())
	cl.Update([]model.Channel{
		{ID: "1", Name: "Global", IsGlobal: true, LastMessage: "welcome"},
		{ID: "7", User: &model.User{Name: "Kim"}, LastMessage: "see you"},
		{ID: "9", Name: "Team", IsGroup: true, LastMessage: "Kim joined"},
	}, "1")

	if got := cl.ChatByIndex(2); got != "7" {
		t.Errorf("ChatByIndex(2) = %q, want 7", got)
	}

	cl.SetFilter("kim")
	if got := cl.ChatByIndex(1); got != "7" {
		t.Errorf("filtered ChatByIndex(1) = %q, want 7", got)
	}
	if got := cl.ChatByIndex(2); got != "9" {
		t.Errorf("filtered ChatByIndex(2) = %q, want 9", got)
	}
	if got := cl.ChatByIndex(3); got != "" {
		t.Errorf("filtered ChatByIndex(3) = %q, want empty", got)
	}
	if !strings.Contains(cl.GetTitle(), "(2/3)") {
		t.Errorf("title = %q", cl.GetTitle())
	}

	cl.SetFilter("")
	if got := cl.ChatByIndex(3); got != "9" {
		t.Errorf("ChatByIndex(3) after clearing = %q", got)
	}
}

func TestDescribeBody(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		voice bool
		secs  int
		media model.MediaType
		want  string
	}{
		{"text", "hi", false, 0, model.MediaNone, "hi"},
		{"voice", "", true, 12, model.MediaNone, "🎤 voice message 0:12"},
		{"image", "", false, 0, model.MediaImage, "[image]"},
		{"captioned", "look", false, 0, model.MediaVideo, "[video] look"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := describeBody(tt.text, tt.voice, tt.secs, tt.media); got != tt.want {
				t.Errorf("describeBody() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestThreadMarksPendingMessages(t *testing.T) {
	mt := NewMessageThread(ui.DarkTheme())
	mt.Update([]model.Message{
		{ID: "1", SenderName: "Kim", Text: "hello"},
		{ID: "tmp-a", IsOwn: true, Text: "on its way", Status: model.Sending},
		{ID: "tmp-b", IsOwn: true, Text: "lost", Status: model.Failed},
	})
	text := mt.Messages().GetText(true)
	for _, want := range []string{"Kim", "You", "sending…", "failed, R to retry"} {
		if !strings.Contains(text, want) {
			t.Errorf("thread text missing %q:\n%s", want, text)
		}
	}
}

func TestProfileQR(t *testing.T) {
	u := model.User{ID: "42", Name: "Alex"}
	if got := ContactLink(u); got != "penguingram://user/42" {
		t.Errorf("ContactLink() = %q", got)
	}
	qr := renderQR(ContactLink(u))
	if !strings.ContainsAny(qr, "█▀▄") {
		t.Error("QR has no modules")
	}
	lines := strings.Split(strings.TrimRight(qr, "\n"), "\n")
	if len(lines) < 10 {
		t.Errorf("QR has %d lines", len(lines))
	}
}

func TestSettingsLoadDoesNotFire(t *testing.T) {
	sv := NewSettingsView(ui.DarkTheme())
	fired := 0
	sv.SetOnChange(func(session.Settings) { fired++ })
	sv.Load(session.Settings{DarkMode: true, Compact: true})
	if fired != 0 {
		t.Errorf("change callback fired %d times on Load", fired)
	}
	if got := sv.Settings(); !got.DarkMode || !got.Compact {
		t.Errorf("Settings() = %+v", got)
	}
}

func TestCallViewButtons(t *testing.T) {
	cv := NewCallView(ui.DarkTheme())
	var ended, dismissed int
	cv.SetOnEnd(func() { ended++ })
	cv.SetOnDismiss(func() { dismissed++ })
	cv.Update(model.Call{ID: "c1", Type: model.VideoCall, Peer: model.User{ID: "7", Name: "Kim"}, Status: "active"})

	if cv.Call().ID != "c1" {
		t.Errorf("Call() = %+v", cv.Call())
	}
	cv.done(0, endCallLabel)
	if ended != 1 || dismissed != 0 {
		t.Errorf("End button: ended=%d dismissed=%d", ended, dismissed)
	}
	cv.done(-1, "")
	if ended != 1 || dismissed != 1 {
		t.Errorf("Esc: ended=%d dismissed=%d", ended, dismissed)
	}
}
