package ui

import (
	"fmt"
	"time"

	"github.com/rivo/tview"
)

// SessionData holds the header summary of the running client.
type SessionData struct {
	Profile   string
	User      string
	Status    string
	Chats     int
	Messages  int
	Recording time.Duration // zero when not recording
	Call      string        // empty when no call
}

// SessionInfo displays session metadata in the header.
type SessionInfo struct {
	*tview.TextView
	theme *Theme
	data  SessionData
}

// NewSessionInfo creates a new session info panel.
func NewSessionInfo(theme *Theme) *SessionInfo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBorderPadding(0, 0, 1, 1)
	si := &SessionInfo{TextView: tv}
	si.ApplyTheme(theme)
	return si
}

// ApplyTheme implements Themed.
func (si *SessionInfo) ApplyTheme(t *Theme) {
	si.theme = t
	si.SetBackgroundColor(t.BgColor)
	si.Update(si.data)
}

// Update renders the session info.
func (si *SessionInfo) Update(data SessionData) {
	si.data = data
	si.Clear()

	fg, val := Color(si.theme.FgColor), Color(si.theme.CounterColor)
	row := func(label, value string) {
		_, _ = fmt.Fprintf(si, "[%s::b]%-8s[-:-:-] [%s]%s[-]\n", fg, label+":", val, tview.Escape(value))
	}

	user := data.User
	if user == "" {
		user = "-"
	}
	row("Profile", data.Profile)
	row("User", user)
	row("Status", data.Status)
	row("Chats", fmt.Sprint(data.Chats))
	row("Msgs", fmt.Sprint(data.Messages))
	if data.Recording > 0 {
		_, _ = fmt.Fprintf(si, "[%s::b]● REC %s[-:-:-]\n", Color(si.theme.FailedColor), FormatDuration(data.Recording))
	}
	if data.Call != "" {
		_, _ = fmt.Fprintf(si, "[%s::b]☎ %s[-:-:-]\n", Color(si.theme.OwnColor), tview.Escape(data.Call))
	}
}

// FormatDuration renders d as m:ss.
func FormatDuration(d time.Duration) string {
	s := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d", s/60, s%60)
}
