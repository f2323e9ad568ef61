package views

import (
	"fmt"
	"strings"

	"github.com/penguingram/messenger/internal/model"
	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
	qrcode "github.com/skip2/go-qrcode"
)

// ContactLink is the payload encoded in a user's profile QR code.
func ContactLink(u model.User) string {
	return "penguingram://user/" + u.ID
}

// ProfileView shows the logged-in user and a scannable contact link.
type ProfileView struct {
	*tview.TextView
	theme *ui.Theme
	user  *model.User
}

// NewProfileView creates the profile view.
func NewProfileView(theme *ui.Theme) *ProfileView {
	pv := &ProfileView{TextView: tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignCenter)}
	pv.SetBorder(true).SetTitle(" Profile ")
	pv.ApplyTheme(theme)
	return pv
}

// Name implements ui.Component.
func (pv *ProfileView) Name() string { return "Profile" }

// Hints implements ui.Component.
func (pv *ProfileView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Back"}}
}

// ApplyTheme implements ui.Themed.
func (pv *ProfileView) ApplyTheme(t *ui.Theme) {
	pv.theme = t
	pv.SetBackgroundColor(t.BgColor)
	pv.SetBorderColor(t.BorderColor)
	pv.SetTitleColor(t.TitleColor)
	pv.SetTextColor(t.FgColor)
	pv.Update(pv.user)
}

// Update renders u, or a placeholder when logged out.
func (pv *ProfileView) Update(u *model.User) {
	pv.user = u
	pv.Clear()
	if u == nil {
		_, _ = fmt.Fprint(pv, "\n\nNot logged in")
		return
	}
	link := ContactLink(*u)
	_, _ = fmt.Fprintf(pv, "\n%s [::b]%s[-:-:-]\n[%s]id %s[-]\n\n%s\n[%s]%s[-]",
		clean(u.Avatar), clean(u.Name), ui.Color(pv.theme.DimColor), tview.Escape(u.ID),
		renderQR(link), ui.Color(pv.theme.DimColor), tview.Escape(link))
}

// renderQR converts content to a QR code drawn with Unicode half blocks.
// Two bitmap rows become one terminal line.
func renderQR(content string) string {
	qr, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return "(QR generation failed: " + err.Error() + ")"
	}
	bitmap := qr.Bitmap()

	var sb strings.Builder
	for y := 0; y < len(bitmap); y += 2 {
		for x := range bitmap[y] {
			top := bitmap[y][x]
			bot := y+1 < len(bitmap) && bitmap[y+1][x]
			switch {
			case top && bot:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bot:
				sb.WriteRune('▄')
			default:
				sb.WriteRune(' ')
			}
		}
		sb.WriteRune('\n')
	}
	return sb.String()
}
