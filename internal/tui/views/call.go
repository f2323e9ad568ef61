package views

import (
	"fmt"

	"github.com/penguingram/messenger/internal/model"
	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
)

const endCallLabel = "End"

// CallView is the dialog shown while a call is active. Ending hangs up;
// closing it with Esc dismisses the call.
type CallView struct {
	*tview.Modal
	call      model.Call
	onEnd     func()
	onDismiss func()
}

// NewCallView creates the call dialog.
func NewCallView(theme *ui.Theme) *CallView {
	cv := &CallView{Modal: tview.NewModal().AddButtons([]string{endCallLabel})}
	cv.SetDoneFunc(cv.done)
	cv.ApplyTheme(theme)
	return cv
}

// done receives the pressed button, or index -1 when the dialog is
// cancelled.
func (cv *CallView) done(_ int, label string) {
	fn := cv.onDismiss
	if label == endCallLabel {
		fn = cv.onEnd
	}
	if fn != nil {
		fn()
	}
}

// Name implements ui.Component.
func (cv *CallView) Name() string { return "Call" }

// Hints implements ui.Component.
func (cv *CallView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "End call"},
		{Key: "Esc", Description: "Dismiss"},
	}
}

// ApplyTheme implements ui.Themed.
func (cv *CallView) ApplyTheme(t *ui.Theme) {
	cv.SetBackgroundColor(t.BgColor)
	cv.SetBorderColor(t.BorderColor)
	cv.SetTextColor(t.FgColor)
	cv.SetButtonBackgroundColor(t.TableCursorBg)
	cv.SetButtonTextColor(t.TableCursorFg)
}

// Update shows call.
func (cv *CallView) Update(call model.Call) {
	cv.call = call
	peer := call.Peer.Name
	if peer == "" {
		peer = "user " + call.Peer.ID
	}
	cv.SetText(fmt.Sprintf("%s call with %s\n%s", call.Type, sanitizeForTerminal(peer), call.Status))
}

// Call returns the call being shown.
func (cv *CallView) Call() model.Call { return cv.call }

// SetOnEnd sets the callback for the End button.
func (cv *CallView) SetOnEnd(fn func()) { cv.onEnd = fn }

// SetOnDismiss sets the callback for Esc.
func (cv *CallView) SetOnDismiss(fn func()) { cv.onDismiss = fn }
