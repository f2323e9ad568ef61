package views

import (
	"github.com/penguingram/messenger/internal/session"
	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
)

// SettingsView edits the persisted display settings.
type SettingsView struct {
	*tview.Form
	dark     *tview.Checkbox
	compact  *tview.Checkbox
	onChange func(session.Settings)
}

// NewSettingsView creates the settings form.
func NewSettingsView(theme *ui.Theme) *SettingsView {
	sv := &SettingsView{
		Form:    tview.NewForm(),
		dark:    tview.NewCheckbox().SetLabel("Dark mode "),
		compact: tview.NewCheckbox().SetLabel("Compact   "),
	}
	changed := func(bool) {
		if sv.onChange != nil {
			sv.onChange(sv.Settings())
		}
	}
	sv.dark.SetChangedFunc(changed)
	sv.compact.SetChangedFunc(changed)
	sv.AddFormItem(sv.dark).AddFormItem(sv.compact)
	sv.SetBorder(true).SetTitle(" Settings ")
	sv.ApplyTheme(theme)
	return sv
}

// Name implements ui.Component.
func (sv *SettingsView) Name() string { return "Settings" }

// Hints implements ui.Component.
func (sv *SettingsView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Space", Description: "Toggle"},
		{Key: "Tab", Description: "Next"},
		{Key: "Esc", Description: "Back"},
	}
}

// ApplyTheme implements ui.Themed.
func (sv *SettingsView) ApplyTheme(t *ui.Theme) {
	sv.SetBackgroundColor(t.BgColor)
	sv.SetBorderColor(t.BorderColor)
	sv.SetTitleColor(t.TitleColor)
	sv.SetLabelColor(t.FgColor)
	sv.SetFieldBackgroundColor(t.TableHeaderBg)
	sv.SetFieldTextColor(t.FgColor)
}

// Load shows st without firing the change callback.
func (sv *SettingsView) Load(st session.Settings) {
	fn := sv.onChange
	sv.onChange = nil
	sv.dark.SetChecked(st.DarkMode)
	sv.compact.SetChecked(st.Compact)
	sv.onChange = fn
}

// Settings returns the values currently shown.
func (sv *SettingsView) Settings() session.Settings {
	return session.Settings{DarkMode: sv.dark.IsChecked(), Compact: sv.compact.IsChecked()}
}

// SetOnChange sets the callback fired on every toggle.
func (sv *SettingsView) SetOnChange(fn func(session.Settings)) { sv.onChange = fn }
