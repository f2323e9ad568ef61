package views

import (
	"fmt"

	"github.com/penguingram/messenger/internal/model"
	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
)

// ChatList is the main chat list view.
type ChatList struct {
	*tview.Table
	theme   *ui.Theme
	chats   []model.Channel
	visible []model.Channel
	active  string
	filter  string
}

// NewChatList creates a new chat list table.
func NewChatList(theme *ui.Theme) *ChatList {
	return &ChatList{Table: newTable(theme, "Chats"), theme: theme}
}

// Name implements ui.Component.
func (cl *ChatList) Name() string { return "Chats" }

// Hints implements ui.Component.
func (cl *ChatList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open"},
		{Key: "/", Description: "Filter"},
		{Key: "1-9", Description: "Jump"},
		{Key: "c", Description: "Contacts"},
		{Key: "f", Description: "Favorites"},
		{Key: "g", Description: "Global"},
		{Key: ":", Description: "Command"},
		{Key: "?", Description: "Help"},
	}
}

// ApplyTheme implements ui.Themed.
func (cl *ChatList) ApplyTheme(t *ui.Theme) {
	cl.theme = t
	styleTable(cl.Table, t)
	cl.render()
}

// Update replaces the chat list. active marks the open channel.
func (cl *ChatList) Update(chats []model.Channel, active string) {
	cl.chats, cl.active = chats, active
	cl.render()
}

// SetFilter narrows the list to chats whose title or preview contains
// filter. An empty filter shows everything.
func (cl *ChatList) SetFilter(filter string) {
	cl.filter = filter
	cl.render()
}

// Filter returns the active filter text.
func (cl *ChatList) Filter() string { return cl.filter }

func (cl *ChatList) render() {
	cl.Clear()
	setHeader(cl.Table, cl.theme, []column{
		{" NAME", 1, tview.AlignLeft},
		{" LAST MESSAGE", 2, tview.AlignLeft},
		{"TIME ", 0, tview.AlignRight},
		{"TYPE ", 0, tview.AlignRight},
	})

	cl.visible = cl.visible[:0]
	for _, ch := range cl.chats {
		if cl.filter != "" && !containsFold(ch.Title(), cl.filter) && !containsFold(ch.LastMessage, cl.filter) {
			continue
		}
		cl.visible = append(cl.visible, ch)
		row := len(cl.visible)

		name := ch.Title()
		if ch.User != nil && ch.User.Avatar != "" {
			name = ch.User.Avatar + " " + name
		}
		if ch.Unread > 0 {
			name = fmt.Sprintf("(%d) %s", ch.Unread, name)
		}
		nameCell := cell(cl.theme, name, 1)
		if ch.ID == cl.active {
			nameCell.SetTextColor(cl.theme.OwnColor)
		}
		cl.SetCell(row, 0, nameCell)
		cl.SetCell(row, 1, cell(cl.theme, ch.LastMessage, 2))
		cl.SetCell(row, 2, cell(cl.theme, ch.Time, 0).SetAlign(tview.AlignRight))
		cl.SetCell(row, 3, cell(cl.theme, chatType(ch), 0).SetAlign(tview.AlignRight))
	}

	if cl.filter != "" {
		cl.SetTitle(fmt.Sprintf(" Chats (%d/%d) filter: %s ", len(cl.visible), len(cl.chats), tview.Escape(cl.filter)))
	} else {
		cl.SetTitle(fmt.Sprintf(" Chats (%d) ", len(cl.chats)))
	}
}

func chatType(ch model.Channel) string {
	switch {
	case ch.IsGlobal:
		return "GLOBAL"
	case ch.IsGroup:
		return "GROUP"
	default:
		return "DM"
	}
}

// SelectedChat returns the id of the chat under the cursor.
func (cl *ChatList) SelectedChat() string {
	if i := selectedRow(cl.Table, len(cl.visible)); i >= 0 {
		return cl.visible[i].ID
	}
	return ""
}

// ChatByIndex returns the id of the Nth visible chat (1-based).
func (cl *ChatList) ChatByIndex(n int) string {
	if n < 1 || n > len(cl.visible) {
		return ""
	}
	return cl.visible[n-1].ID
}
