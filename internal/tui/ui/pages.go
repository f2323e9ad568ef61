package ui

import "github.com/rivo/tview"

// Pages is a stack-based page manager wrapping tview.Pages.
type Pages struct {
	*tview.Pages
	stack    []string
	onChange func(stack []string)
}

// NewPages creates an empty page stack.
func NewPages() *Pages {
	return &Pages{Pages: tview.NewPages()}
}

// SetOnChange sets a callback that fires when the stack changes.
func (p *Pages) SetOnChange(fn func(stack []string)) {
	p.onChange = fn
}

// Push shows name on top of the stack. Pushing the current page is a no-op.
func (p *Pages) Push(name string) {
	if p.Current() == name {
		return
	}
	if cur := p.Current(); cur != "" {
		p.HidePage(cur)
	}
	p.stack = append(p.stack, name)
	p.show(name)
}

// Pop removes the top page and shows the previous one. The root page is
// never popped. Returns the name of the popped page, or empty.
func (p *Pages) Pop() string {
	if len(p.stack) < 2 {
		return ""
	}
	top := p.stack[len(p.stack)-1]
	p.HidePage(top)
	p.stack = p.stack[:len(p.stack)-1]
	p.show(p.Current())
	return top
}

// Reset clears the stack and shows only name.
func (p *Pages) Reset(name string) {
	for _, n := range p.stack {
		p.HidePage(n)
	}
	p.stack = []string{name}
	p.show(name)
}

// Current returns the name of the top page.
func (p *Pages) Current() string {
	if len(p.stack) == 0 {
		return ""
	}
	return p.stack[len(p.stack)-1]
}

// Stack returns a copy of the page stack.
func (p *Pages) Stack() []string {
	return append([]string(nil), p.stack...)
}

func (p *Pages) show(name string) {
	p.ShowPage(name)
	p.SendToFront(name)
	if p.onChange != nil {
		p.onChange(p.Stack())
	}
}
