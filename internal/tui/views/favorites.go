package views

import (
	"fmt"

	"github.com/penguingram/messenger/internal/model"
	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
)

// FavoriteList shows starred messages across all chats.
type FavoriteList struct {
	*tview.Table
	theme *ui.Theme
	favs  []model.Favorite
}

// NewFavoriteList creates the favorites table.
func NewFavoriteList(theme *ui.Theme) *FavoriteList {
	return &FavoriteList{Table: newTable(theme, "Favorites"), theme: theme}
}

// Name implements ui.Component.
func (fl *FavoriteList) Name() string { return "Favorites" }

// Hints implements ui.Component.
func (fl *FavoriteList) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Open chat"},
		{Key: "x", Description: "Unstar"},
		{Key: "r", Description: "Reload"},
		{Key: "Esc", Description: "Back"},
	}
}

// ApplyTheme implements ui.Themed.
func (fl *FavoriteList) ApplyTheme(t *ui.Theme) {
	fl.theme = t
	styleTable(fl.Table, t)
	fl.Update(fl.favs)
}

// Update replaces the favorites.
func (fl *FavoriteList) Update(favs []model.Favorite) {
	fl.favs = favs
	fl.Clear()
	setHeader(fl.Table, fl.theme, []column{
		{" FROM", 0, tview.AlignLeft},
		{" MESSAGE", 1, tview.AlignLeft},
		{"SAVED ", 0, tview.AlignRight},
	})
	for i, f := range favs {
		fl.SetCell(i+1, 0, cell(fl.theme, f.SenderName, 0))
		fl.SetCell(i+1, 1, cell(fl.theme, favoriteText(f), 1))
		fl.SetCell(i+1, 2, cell(fl.theme, f.FavoritedAt, 0).SetAlign(tview.AlignRight))
	}
	fl.SetTitle(fmt.Sprintf(" Favorites (%d) ", len(favs)))
}

func favoriteText(f model.Favorite) string {
	return describeBody(f.Text, f.IsVoice, f.VoiceDuration, f.MediaType)
}

// Selected returns the favorite under the cursor.
func (fl *FavoriteList) Selected() (model.Favorite, bool) {
	if i := selectedRow(fl.Table, len(fl.favs)); i >= 0 {
		return fl.favs[i], true
	}
	return model.Favorite{}, false
}
