package views

import (
	"fmt"

	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
)

// LoginView collects credentials while no session exists.
type LoginView struct {
	*tview.Flex
	theme   *ui.Theme
	form    *tview.Form
	status  *tview.TextView
	onLogin func(phone, name string)
	onToken func(token string)
}

// NewLoginView creates the login form.
func NewLoginView(theme *ui.Theme) *LoginView {
	lv := &LoginView{
		form:   tview.NewForm(),
		status: tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter),
	}

	lv.form.
		AddInputField("Phone", "", 24, nil, nil).
		AddInputField("Name", "", 24, nil, nil).
		AddPasswordField("Google token", "", 24, '*', nil).
		AddButton("Log in", func() {
			if lv.onLogin != nil {
				lv.onLogin(lv.field("Phone"), lv.field("Name"))
			}
		}).
		AddButton("Google", func() {
			if lv.onToken != nil {
				lv.onToken(lv.field("Google token"))
			}
		})
	lv.form.SetBorder(true).SetTitle(" 🐧 PenguinGram ")

	lv.Flex = tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(lv.form, 11, 0, true).
			AddItem(lv.status, 2, 0, false).
			AddItem(nil, 0, 1, false), 48, 0, true).
		AddItem(nil, 0, 1, false)
	lv.ApplyTheme(theme)
	return lv
}

func (lv *LoginView) field(label string) string {
	if f, ok := lv.form.GetFormItemByLabel(label).(*tview.InputField); ok {
		return f.GetText()
	}
	return ""
}

// Name implements ui.Component.
func (lv *LoginView) Name() string { return "Login" }

// Hints implements ui.Component.
func (lv *LoginView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Tab", Description: "Next field"},
		{Key: "Enter", Description: "Submit"},
		{Key: "Ctrl-C", Description: "Quit"},
	}
}

// ApplyTheme implements ui.Themed.
func (lv *LoginView) ApplyTheme(t *ui.Theme) {
	lv.theme = t
	lv.SetBackgroundColor(t.BgColor)
	lv.form.SetBackgroundColor(t.BgColor)
	lv.form.SetBorderColor(t.BorderColor)
	lv.form.SetTitleColor(t.TitleColor)
	lv.form.SetLabelColor(t.FgColor)
	lv.form.SetFieldBackgroundColor(t.TableHeaderBg)
	lv.form.SetFieldTextColor(t.FgColor)
	lv.form.SetButtonBackgroundColor(t.TableCursorBg)
	lv.form.SetButtonTextColor(t.TableCursorFg)
	lv.status.SetBackgroundColor(t.BgColor)
}

// SetOnLogin sets the phone login callback.
func (lv *LoginView) SetOnLogin(fn func(phone, name string)) { lv.onLogin = fn }

// SetOnToken sets the Google login callback.
func (lv *LoginView) SetOnToken(fn func(token string)) { lv.onToken = fn }

// ShowMessage displays a status line under the form.
func (lv *LoginView) ShowMessage(msg string) {
	lv.status.Clear()
	_, _ = fmt.Fprintf(lv.status, "[%s]%s[-]", ui.Color(lv.theme.DimColor), tview.Escape(msg))
}

// Reset clears all fields.
func (lv *LoginView) Reset() {
	for i := 0; i < lv.form.GetFormItemCount(); i++ {
		if f, ok := lv.form.GetFormItem(i).(*tview.InputField); ok {
			f.SetText("")
		}
	}
	lv.status.Clear()
}

// Form returns the form for focus management.
func (lv *LoginView) Form() *tview.Form { return lv.form }
