package views

import (
	"github.com/gdamore/tcell/v2"
	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
)

// column is a table header cell.
type column struct {
	title     string
	expansion int
	align     int
}

// newTable builds a selectable table with a fixed header row.
func newTable(theme *ui.Theme, title string) *tview.Table {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetBorders(false).
		SetFixed(1, 0)
	table.SetBorder(true)
	table.SetTitle(" " + title + " ")
	styleTable(table, theme)
	return table
}

func styleTable(table *tview.Table, theme *ui.Theme) {
	table.SetBorderColor(theme.BorderColor)
	table.SetBackgroundColor(theme.BgColor)
	table.SetTitleColor(theme.TitleColor)
	table.SetSelectedStyle(tcell.StyleDefault.
		Foreground(theme.TableCursorFg).
		Background(theme.TableCursorBg))
}

func setHeader(table *tview.Table, theme *ui.Theme, cols []column) {
	for i, c := range cols {
		table.SetCell(0, i, tview.NewTableCell(c.title).
			SetSelectable(false).
			SetTextColor(theme.TableHeaderFg).
			SetBackgroundColor(theme.TableHeaderBg).
			SetAttributes(tcell.AttrBold).
			SetExpansion(c.expansion).
			SetAlign(c.align))
	}
}

func cell(theme *ui.Theme, text string, expansion int) *tview.TableCell {
	return tview.NewTableCell(" " + clean(text)).
		SetExpansion(expansion).
		SetTextColor(theme.FgColor)
}

// selectedRow returns the zero-based data row under the cursor, or -1.
func selectedRow(table *tview.Table, rows int) int {
	row, _ := table.GetSelection()
	idx := row - 1
	if idx < 0 || idx >= rows {
		return -1
	}
	return idx
}
