package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/penguingram/messenger/internal/model"
	"github.com/penguingram/messenger/internal/tui/ui"
	"github.com/rivo/tview"
)

// MessageThread displays messages and a composer for a single chat.
type MessageThread struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	composer *tview.InputField
	title    string
	compact  bool
	last     []model.Message
	onSend   func(text string)
}

// NewMessageThread creates a new message thread view.
func NewMessageThread(theme *ui.Theme) *MessageThread {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetTitle(" Messages ")

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0)
	composer.SetBorder(true)
	composer.SetTitle(" Compose (i to focus, : for commands) ")

	mt := &MessageThread{
		Flex: tview.NewFlex().
			SetDirection(tview.FlexRow).
			AddItem(messages, 0, 1, true).
			AddItem(composer, 3, 0, false),
		messages: messages,
		composer: composer,
	}
	mt.ApplyTheme(theme)

	composer.SetDoneFunc(func(key tcell.Key) {
		if key != tcell.KeyEnter || mt.onSend == nil {
			return
		}
		if text := composer.GetText(); strings.TrimSpace(text) != "" {
			mt.onSend(text)
			composer.SetText("")
		}
	})
	return mt
}

// Name implements ui.Component.
func (mt *MessageThread) Name() string {
	if mt.title != "" {
		return mt.title
	}
	return "Messages"
}

// Hints implements ui.Component.
func (mt *MessageThread) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "i", Description: "Compose"},
		{Key: "r", Description: "Record voice"},
		{Key: "s", Description: "Star last"},
		{Key: "R", Description: "Retry failed"},
		{Key: "Esc", Description: "Back"},
		{Key: ":", Description: "Command"},
	}
}

// ApplyTheme implements ui.Themed.
func (mt *MessageThread) ApplyTheme(t *ui.Theme) {
	mt.theme = t
	mt.messages.SetBorderColor(t.BorderColor)
	mt.messages.SetBackgroundColor(t.BgColor)
	mt.messages.SetTextColor(t.FgColor)
	mt.messages.SetTitleColor(t.TitleColor)
	mt.composer.SetBorderColor(t.BorderColor)
	mt.composer.SetBackgroundColor(t.BgColor)
	mt.composer.SetFieldBackgroundColor(t.BgColor)
	mt.composer.SetFieldTextColor(t.FgColor)
	mt.composer.SetLabelColor(t.MenuKeyColor)
	mt.composer.SetTitleColor(t.TitleColor)
	mt.Update(mt.last)
}

// SetChatName updates the chat name shown above the messages.
func (mt *MessageThread) SetChatName(name string) {
	mt.title = name
	mt.messages.SetTitle(fmt.Sprintf(" %s ", tview.Escape(name)))
}

// SetCompact switches to one line per message.
func (mt *MessageThread) SetCompact(compact bool) {
	mt.compact = compact
	mt.Update(mt.last)
}

// SetOnSend sets the callback for a submitted composer line.
func (mt *MessageThread) SetOnSend(fn func(text string)) {
	mt.onSend = fn
}

// Update redraws the messages, oldest first.
func (mt *MessageThread) Update(msgs []model.Message) {
	mt.last = msgs
	mt.messages.Clear()
	for _, m := range msgs {
		_, _ = fmt.Fprint(mt.messages, mt.renderMessage(m))
	}
	mt.messages.ScrollToEnd()
}

func (mt *MessageThread) renderMessage(m model.Message) string {
	sender := m.SenderName
	if sender == "" {
		sender = m.SenderID
	}
	color := ui.Color(mt.theme.FgColor)
	if m.IsOwn {
		sender = "You"
		color = ui.Color(mt.theme.OwnColor)
	}
	if m.SenderAvatar != "" && !m.IsOwn {
		sender = m.SenderAvatar + " " + sender
	}

	var marker string
	switch m.Status {
	case model.Sending:
		marker = fmt.Sprintf(" [%s]sending…[-]", ui.Color(mt.theme.PendingColor))
	case model.Failed:
		marker = fmt.Sprintf(" [%s::b]failed, R to retry[-:-:-]", ui.Color(mt.theme.FailedColor))
	}

	body := clean(describeBody(m.Text, m.IsVoice, m.VoiceDuration, m.MediaType))
	dim := ui.Color(mt.theme.DimColor)
	if mt.compact {
		return fmt.Sprintf("[%s]%s[-] [%s::b]%s:[-:-:-] %s%s\n", dim, m.Time, color, clean(sender), body, marker)
	}
	return fmt.Sprintf("[%s::b]%s[-:-:-] [%s]%s #%s[-]%s\n%s\n\n",
		color, clean(sender), dim, m.Time, tview.Escape(m.ID), marker, body)
}

// describeBody renders the text, or a placeholder for voice and media.
func describeBody(text string, voice bool, seconds int, media model.MediaType) string {
	switch {
	case voice:
		return "🎤 voice message " + ui.FormatDuration(time.Duration(seconds)*time.Second)
	case media != model.MediaNone && text != "":
		return fmt.Sprintf("[%s] %s", media, text)
	case media != model.MediaNone:
		return fmt.Sprintf("[%s]", media)
	default:
		return text
	}
}

// Messages returns the messages text view (for focus management).
func (mt *MessageThread) Messages() *tview.TextView {
	return mt.messages
}

// Composer returns the composer input field (for focus management).
func (mt *MessageThread) Composer() *tview.InputField {
	return mt.composer
}
