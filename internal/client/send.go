package client

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/model"
	"go.uber.org/zap"
)

// TempIDPrefix marks ids of messages that exist only on this client.
const TempIDPrefix = "tmp-"

const sendAction = "Could not send the message"

// Send sends a text message to the active channel.
func (c *Client) Send(ctx context.Context, text string) error {
	return c.SendDraft(ctx, model.Draft{Text: text})
}

// SendDraft sends draft to the active channel. The message is appended
// locally before the request is issued. On success it is replaced by the
// server's copy; on failure it stays in the list marked failed.
func (c *Client) SendDraft(ctx context.Context, draft model.Draft) error {
	if strings.TrimSpace(draft.Text) == "" && !draft.HasPayload() {
		return c.fail(sendAction, &ValidationError{Field: "text", Reason: "message is empty"})
	}
	user, err := c.currentUser()
	if err != nil {
		return c.fail(sendAction, err)
	}

	c.mu.Lock()
	chatID := c.active
	if chatID == "" {
		c.mu.Unlock()
		return c.fail(sendAction, &ValidationError{Field: "channel", Reason: "no channel selected"})
	}
	local := model.Message{
		ID:            TempIDPrefix + uuid.NewString(),
		SenderID:      user.ID,
		SenderName:    user.Name,
		SenderAvatar:  user.Avatar,
		Text:          draft.Text,
		Time:          time.Now().Format("15:04"),
		IsOwn:         true,
		IsVoice:       draft.IsVoice,
		VoiceDuration: draft.VoiceDuration,
		MediaURL:      draft.MediaURL,
		MediaType:     draft.MediaType,
		Status:        model.Sending,
	}
	c.messages = append(c.messages, local)
	c.outgoing[local.ID] = outgoing{chatID: chatID, draft: draft}
	c.mu.Unlock()

	c.bus.Emit(bus.MessageAppended, local)
	return c.deliver(ctx, user.ID, local.ID)
}

// RetryFailed sends a failed message again under the same temporary id.
func (c *Client) RetryFailed(ctx context.Context, tempID string) error {
	user, err := c.currentUser()
	if err != nil {
		return c.fail(sendAction, err)
	}

	c.mu.Lock()
	_, known := c.outgoing[tempID]
	idx := c.indexLocked(tempID)
	if !known || idx < 0 || c.messages[idx].Status != model.Failed {
		c.mu.Unlock()
		return c.fail(sendAction, &ValidationError{Field: "message", Reason: "nothing to retry"})
	}
	c.messages[idx].Status = model.Sending
	c.mu.Unlock()

	return c.deliver(ctx, user.ID, tempID)
}

// LastFailed returns the id of the newest failed message in the active
// channel, or "".
func (c *Client) LastFailed() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := len(c.messages) - 1; i >= 0; i-- {
		if c.messages[i].Status == model.Failed {
			return c.messages[i].ID
		}
	}
	return ""
}

func (c *Client) deliver(ctx context.Context, userID, tempID string) error {
	c.mu.RLock()
	out := c.outgoing[tempID]
	c.mu.RUnlock()

	resp, err := c.api.SendMessage(ctx, userID, out.chatID, out.draft)
	if err == nil {
		switch {
		case resp.Error != "":
			err = remote("send message", resp.Error, "")
		case resp.Message == nil || resp.Message.ID == "":
			err = remote("send message", "", "response has no message")
		}
	}
	if err != nil {
		c.markFailed(tempID)
		c.bus.Emit(bus.MessageFailed, tempID)
		return c.fail(sendAction, err)
	}

	c.reconcile(tempID, *resp.Message)
	c.bus.Emit(bus.MessageSent, *resp.Message)
	c.log.Debug("message sent", zap.String("temp_id", tempID), zap.String("id", resp.Message.ID))
	c.spawn(func(ctx context.Context) { _ = c.LoadChats(ctx) })
	return nil
}

func (c *Client) indexLocked(id string) int {
	for i, m := range c.messages {
		if m.ID == id {
			return i
		}
	}
	return -1
}

func (c *Client) markFailed(tempID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexLocked(tempID); i >= 0 {
		c.messages[i].Status = model.Failed
	}
}

// reconcile replaces the temporary entry with the server's message. When
// a poll already delivered that message the temporary entry is dropped.
func (c *Client) reconcile(tempID string, msg model.Message) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.outgoing, tempID)

	msg.Status = model.Delivered
	tmp := c.indexLocked(tempID)
	existing := c.indexLocked(msg.ID)
	switch {
	case tmp >= 0 && existing >= 0:
		c.messages = append(c.messages[:tmp], c.messages[tmp+1:]...)
	case tmp >= 0:
		c.messages[tmp] = msg
	case existing >= 0:
		c.messages[existing] = msg
	}
}
