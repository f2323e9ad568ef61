package ui

// MenuHint describes a keyboard shortcut for display in the menu bar.
type MenuHint struct {
	Key         string
	Description string
}

// Component is implemented by every page of the TUI.
type Component interface {
	Name() string
	Hints() []MenuHint
}

// Themed is implemented by components that repaint on theme changes.
type Themed interface {
	ApplyTheme(t *Theme)
}
