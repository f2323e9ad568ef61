package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"
)

// Crumbs is a breadcrumb bar showing the current navigation path.
type Crumbs struct {
	*tview.TextView
	theme *Theme
	stack []string
}

// NewCrumbs creates a new breadcrumb bar.
func NewCrumbs(theme *Theme) *Crumbs {
	c := &Crumbs{TextView: tview.NewTextView().SetDynamicColors(true)}
	c.ApplyTheme(theme)
	return c
}

// ApplyTheme implements Themed.
func (c *Crumbs) ApplyTheme(t *Theme) {
	c.theme = t
	c.SetBackgroundColor(t.BgColor)
	c.Update(c.stack)
}

// Update renders the breadcrumb trail from the page stack.
func (c *Crumbs) Update(stack []string) {
	c.stack = stack
	c.Clear()
	parts := make([]string, 0, len(stack))
	for i, name := range stack {
		fg, bg, attr := c.theme.CrumbInactiveFg, c.theme.CrumbInactiveBg, ""
		if i == len(stack)-1 {
			fg, bg, attr = c.theme.CrumbActiveFg, c.theme.CrumbActiveBg, "b"
		}
		parts = append(parts, fmt.Sprintf("[%s:%s:%s] %s [-:-:-]", Color(fg), Color(bg), attr, tview.Escape(name)))
	}
	_, _ = fmt.Fprint(c, strings.Join(parts, " "))
}
