package views

import (
	"fmt"

	"github.com/penguingram/messenger/internal/model"
	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
)

// ContactList shows the user's contacts.
type ContactList struct {
	*tview.Table
	theme    *ui.Theme
	contacts []model.User
}

// NewContactList creates the contacts table.
func NewContactList(theme *ui.Theme) *ContactList {
	return &ContactList{Table: newTable(theme, "Contacts"), theme: theme}
}

// Name implements ui.Component.
func (cl *ContactList) Name() string { return "Contacts" }

// Hints implements ui.Component.
func (cl *ContactList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Chat"},
		{Key: "v", Description: "Voice call"},
		{Key: "V", Description: "Video call"},
		{Key: "Esc", Description: "Back"},
	}
}

// ApplyTheme implements ui.Themed.
func (cl *ContactList) ApplyTheme(t *ui.Theme) {
	cl.theme = t
	styleTable(cl.Table, t)
	cl.Update(cl.contacts)
}

// Update replaces the contact list.
func (cl *ContactList) Update(contacts []model.User) {
	cl.contacts = contacts
	cl.Clear()
	setHeader(cl.Table, cl.theme, []column{
		{" ", 0, tview.AlignLeft},
		{" NAME", 1, tview.AlignLeft},
		{" ID", 0, tview.AlignLeft},
		{"STATUS ", 0, tview.AlignRight},
	})
	for i, u := range contacts {
		online := "offline"
		if u.Online {
			online = "online"
		}
		cl.SetCell(i+1, 0, cell(cl.theme, u.Avatar, 0))
		cl.SetCell(i+1, 1, cell(cl.theme, u.Name, 1))
		cl.SetCell(i+1, 2, cell(cl.theme, u.ID, 0))
		cl.SetCell(i+1, 3, cell(cl.theme, online, 0).SetAlign(tview.AlignRight))
	}
	cl.SetTitle(fmt.Sprintf(" Contacts (%d) ", len(contacts)))
}

// Selected returns the contact under the cursor.
func (cl *ContactList) Selected() (model.User, bool) {
	if i := selectedRow(cl.Table, len(cl.contacts)); i >= 0 {
		return cl.contacts[i], true
	}
	return model.User{}, false
}
