package ui

import (
	"fmt"
	"time"

	"github.com/penguingram/messenger/internal/notify"
	"github.com/rivo/tview"
)

// FlashBar shows the current notification until it expires.
type FlashBar struct {
	*tview.TextView
	theme *Theme
	msg   notify.Notification
	shown bool
}

// NewFlashBar creates a new flash notification bar.
func NewFlashBar(theme *Theme) *FlashBar {
	fb := &FlashBar{TextView: tview.NewTextView().SetDynamicColors(true)}
	fb.ApplyTheme(theme)
	return fb
}

// ApplyTheme implements Themed.
func (fb *FlashBar) ApplyTheme(t *Theme) {
	fb.theme = t
	fb.SetBackgroundColor(t.BgColor)
	fb.render()
}

// Show displays n, replacing any previous notification.
func (fb *FlashBar) Show(n notify.Notification) {
	fb.msg, fb.shown = n, true
	fb.render()
}

// Expire clears the bar once the shown notification is past its expiry.
// It reports whether anything changed.
func (fb *FlashBar) Expire(now time.Time) bool {
	if !fb.shown || now.Before(fb.msg.Expires) {
		return false
	}
	fb.shown = false
	fb.render()
	return true
}

func (fb *FlashBar) render() {
	fb.Clear()
	if !fb.shown {
		return
	}
	color := fb.theme.FlashInfoColor
	if fb.msg.Level == notify.LevelError {
		color = fb.theme.FlashErrColor
	}
	_, _ = fmt.Fprintf(fb, " [%s::b]%s:[-:-:-] [%s]%s[-]",
		Color(color), tview.Escape(fb.msg.Title), Color(color), tview.Escape(fb.msg.Description))
}
