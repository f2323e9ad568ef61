package views

import (
	"fmt"
	"strings"

	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
)

// helpSections lists key and command references.
var helpSections = []struct {
	title   string
	entries [][2]string
}{
	{"Global", [][2]string{
		{":", "Command mode"}, {"/", "Filter chats"}, {"Esc", "Back"},
		{"?", "Help"}, {"p", "Profile"}, {"S", "Settings"}, {"Ctrl-C", "Quit"},
	}},
	{"Chats", [][2]string{
		{"Enter", "Open chat"}, {"1-9", "Jump to Nth chat"},
		{"c", "Contacts"}, {"f", "Favorites"}, {"g", "Global channel"},
	}},
	{"Thread", [][2]string{
		{"i", "Focus composer"}, {"r", "Start/stop voice recording"},
		{"s", "Star last message"}, {"R", "Retry last failed message"},
	}},
	{"Commands", [][2]string{
		{":attach <path>", "Send a file"},
		{":voice / :stop / :cancel", "Record, send or drop a voice message"},
		{":call [id] / :video [id]", "Call a contact or the open chat"},
		{":accept <call id> / :end", "Join or hang up"},
		{":chat <id>", "Open a direct chat"},
		{":group <name> <id,id>", "Create a group"},
		{":fav <id> / :unfav <id>", "Star or unstar a message"},
		{":retry", "Resend the last failed message"},
		{":admin <phrase>", "Unlock the admin overlay"},
		{":logout / :quit", "End the session or exit"},
	}},
}

// HelpView displays the key binding reference.
type HelpView struct {
	*tview.TextView
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	hv := &HelpView{TextView: tview.NewTextView().SetDynamicColors(true).SetScrollable(true)}
	hv.SetBorder(true).SetTitle(" Help ")
	hv.ApplyTheme(theme)
	return hv
}

// Name implements ui.Component.
func (hv *HelpView) Name() string { return "Help" }

// Hints implements ui.Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Back"}}
}

// ApplyTheme implements ui.Themed.
func (hv *HelpView) ApplyTheme(t *ui.Theme) {
	hv.SetBackgroundColor(t.BgColor)
	hv.SetBorderColor(t.BorderColor)
	hv.SetTitleColor(t.TitleColor)
	hv.SetTextColor(t.FgColor)

	kc := ui.Color(t.MenuKeyColor)
	var sb strings.Builder
	for _, s := range helpSections {
		fmt.Fprintf(&sb, "\n  [::b]%s[-:-:-]\n\n", s.title)
		for _, e := range s.entries {
			fmt.Fprintf(&sb, "  [%s]%-28s[-] %s\n", kc, tview.Escape(e[0]), e[1])
		}
	}
	hv.SetText(sb.String())
}
