package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// Menu displays keyboard shortcut hints in a vertical list.
type Menu struct {
	*tview.TextView
	theme *Theme
	hints []MenuHint
}

// NewMenu creates a new menu hint panel.
func NewMenu(theme *Theme) *Menu {
	tv := tview.NewTextView().SetDynamicColors(true)
	tv.SetBorderPadding(0, 0, 2, 0)
	m := &Menu{TextView: tv}
	m.ApplyTheme(theme)
	return m
}

// ApplyTheme implements Themed.
func (m *Menu) ApplyTheme(t *Theme) {
	m.theme = t
	m.SetBackgroundColor(t.BgColor)
	m.Update(m.hints)
}

// Update renders menu hints, one per line.
func (m *Menu) Update(hints []MenuHint) {
	m.hints = hints
	m.Clear()
	kc, fg := Color(m.theme.MenuKeyColor), Color(m.theme.FgColor)
	for _, h := range hints {
		_, _ = fmt.Fprintf(m, "[%s::b]<%s>[-:-:-] [%s]%s[-]\n", kc, tview.Escape(h.Key), fg, h.Description)
	}
}
