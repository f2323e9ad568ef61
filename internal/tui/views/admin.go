package views

import (
	"fmt"

	"github.com/penguingram/messenger/internal/client"
	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
)

// AdminView is the hidden overlay unlocked by the admin phrase. It lists
// every known user with their ids.
type AdminView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewAdminView creates the admin overlay.
func NewAdminView(theme *ui.Theme) *AdminView {
	av := &AdminView{TextView: tview.NewTextView().SetDynamicColors(true).SetScrollable(true)}
	av.SetBorder(true).SetTitle(" Admin 🔐 ")
	av.ApplyTheme(theme)
	return av
}

// Name implements ui.Component.
func (av *AdminView) Name() string { return "Admin" }

// Hints implements ui.Component.
func (av *AdminView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Back"}}
}

// ApplyTheme implements ui.Themed.
func (av *AdminView) ApplyTheme(t *ui.Theme) {
	av.theme = t
	av.SetBackgroundColor(t.BgColor)
	av.SetBorderColor(t.FailedColor)
	av.SetTitleColor(t.TitleColor)
	av.SetTextColor(t.FgColor)
}

// Update renders st.
func (av *AdminView) Update(st client.State) {
	av.Clear()
	label, val := ui.Color(av.theme.FgColor), ui.Color(av.theme.CounterColor)
	_, _ = fmt.Fprintf(av, "\n [%s::b]State:[-:-:-] [%s]%s[-]   [%s::b]Active:[-:-:-] [%s]%s[-]\n",
		label, val, st.Status, label, val, tview.Escape(st.Active))
	_, _ = fmt.Fprintf(av, " [%s::b]Chats:[-:-:-] [%s]%d[-]   [%s::b]Messages:[-:-:-] [%s]%d[-]   [%s::b]Favorites:[-:-:-] [%s]%d[-]\n\n",
		label, val, len(st.Chats), label, val, len(st.Messages), label, val, len(st.Favorites))

	_, _ = fmt.Fprintf(av, " [%s::b]Users[-:-:-]\n", label)
	if st.User != nil {
		_, _ = fmt.Fprintf(av, "  %s %s [%s](you, id %s)[-]\n",
			clean(st.User.Avatar), clean(st.User.Name), ui.Color(av.theme.DimColor), tview.Escape(st.User.ID))
	}
	for _, u := range st.Contacts {
		_, _ = fmt.Fprintf(av, "  %s %s [%s](id %s)[-]\n",
			clean(u.Avatar), clean(u.Name), ui.Color(av.theme.DimColor), tview.Escape(u.ID))
	}
}
