package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Logo displays a compact ASCII art logo.
type Logo struct {
	*tview.TextView
}

// NewLogo creates a new logo component.
func NewLogo(theme *Theme) *Logo {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBorderPadding(0, 0, 1, 0)
	l := &Logo{TextView: tv}
	l.ApplyTheme(theme)
	return l
}

// ApplyTheme implements Themed.
func (l *Logo) ApplyTheme(t *Theme) {
	l.SetBackgroundColor(t.BgColor)
	l.Clear()
	title, fg := Color(t.TitleColor), Color(t.FgColor)
	_, _ = fmt.Fprintf(l,
		"[%s::b]   (o_[-:-:-]\n"+
			"[%s::b]   //\\[-:-:-]\n"+
			"[%s::b]   V_/_[-:-:-]\n"+
			"[%s]PenguinGram[-:-:-]",
		title, title, title, fg,
	)
}
