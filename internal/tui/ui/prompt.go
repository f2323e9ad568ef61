package ui

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// PromptMode indicates the type of prompt.
type PromptMode int

const (
	PromptCommand PromptMode = iota
	PromptFilter
)

// Prompt is a command/filter input bar.
type Prompt struct {
	*tview.InputField
	mode     PromptMode
	onSubmit func(mode PromptMode, text string)
	onCancel func()
}

// NewPrompt creates a new prompt input bar.
func NewPrompt(theme *Theme) *Prompt {
	p := &Prompt{InputField: tview.NewInputField()}
	p.SetBorder(true)
	p.ApplyTheme(theme)

	p.SetDoneFunc(func(key tcell.Key) {
		text := p.GetText()
		p.SetText("")
		switch key {
		case tcell.KeyEnter:
			if p.onSubmit != nil {
				p.onSubmit(p.mode, text)
			}
		case tcell.KeyEscape:
			if p.onCancel != nil {
				p.onCancel()
			}
		}
	})
	return p
}

// ApplyTheme implements Themed.
func (p *Prompt) ApplyTheme(t *Theme) {
	p.SetBorderColor(t.PromptBorderColor)
	p.SetBackgroundColor(t.BgColor)
	p.SetFieldBackgroundColor(t.BgColor)
	p.SetFieldTextColor(t.FgColor)
	p.SetLabelColor(t.MenuKeyColor)
}

// SetOnSubmit sets the callback for Enter. An empty submission is passed
// through so a filter can be cleared.
func (p *Prompt) SetOnSubmit(fn func(mode PromptMode, text string)) {
	p.onSubmit = fn
}

// SetOnCancel sets the callback for Esc.
func (p *Prompt) SetOnCancel(fn func()) {
	p.onCancel = fn
}

// Activate prepares the prompt for mode.
func (p *Prompt) Activate(mode PromptMode) {
	p.mode = mode
	p.SetText("")
	switch mode {
	case PromptCommand:
		p.SetLabel(":")
		p.SetTitle(" Command ")
	case PromptFilter:
		p.SetLabel("/")
		p.SetTitle(" Filter ")
	}
}

// Mode returns the current prompt mode.
func (p *Prompt) Mode() PromptMode {
	return p.mode
}
