package client

import (
	"context"
	"errors"
	"strings"

	"github.com/penguingram/messenger/internal/api"
	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/model"
	"go.uber.org/zap"
)

// SelectChannel makes id the active channel. The message list is cleared
// at once and replaced by id's messages when they arrive.
func (c *Client) SelectChannel(ctx context.Context, id string) error {
	return c.selectChannel(ctx, id, false)
}

// selectChannel switches to id. With initial set it does nothing when a
// channel was already chosen.
func (c *Client) selectChannel(ctx context.Context, id string, initial bool) error {
	const action = "Could not load messages"
	if strings.TrimSpace(id) == "" {
		return c.fail(action, &ValidationError{Field: "channel", Reason: "no channel selected"})
	}
	c.mu.Lock()
	if c.session == nil {
		c.mu.Unlock()
		err := &ValidationError{Field: "session", Reason: "not logged in"}
		if initial {
			return err
		}
		return c.fail(action, err)
	}
	// Checked under the same lock as the switch: a selection never
	// outlives a Logout.
	userID := c.session.User.ID
	if initial && c.active != "" {
		c.mu.Unlock()
		return nil
	}
	c.gen++
	gen := c.gen
	c.active = id
	c.messages = nil
	c.bus.Emit(bus.ChannelSelected, id)
	c.mu.Unlock()

	c.log.Debug("channel selected", zap.String("channel", id))

	if err := c.fetchMessages(ctx, userID, id, gen); err != nil {
		if errors.Is(err, errStale) {
			return nil
		}
		return c.fail(action, err)
	}
	return nil
}

// RefreshMessages fetches the active channel's messages once. Errors are
// returned without a notification.
func (c *Client) RefreshMessages(ctx context.Context) error {
	c.mu.RLock()
	active, gen := c.active, c.gen
	var userID string
	if c.session != nil {
		userID = c.session.User.ID
	}
	c.mu.RUnlock()

	if userID == "" || active == "" {
		return nil
	}
	err := c.fetchMessages(ctx, userID, active, gen)
	if errors.Is(err, errStale) {
		return nil
	}
	return err
}

// fetchMessages loads chatID and installs the result unless the
// generation moved on while the request was in flight.
func (c *Client) fetchMessages(ctx context.Context, userID, chatID string, gen uint64) error {
	resp, err := c.api.GetMessages(ctx, userID, chatID)
	if err != nil {
		return err
	}
	if resp.Error != "" {
		return remote("get messages", resp.Error, "")
	}
	if resp.Messages == nil {
		return remote("get messages", "", "response has no messages")
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		c.log.Debug("discarding stale messages", zap.String("channel", chatID))
		return errStale
	}
	c.messages = c.mergeLocked(resp.Messages)
	count := len(c.messages)
	c.mu.Unlock()

	c.bus.Emit(bus.MessagesReplaced, MessagesReplaced{ChannelID: chatID, Count: count})
	return nil
}

// mergeLocked returns server followed by the local messages still waiting
// for confirmation. Everything else in the previous list is dropped.
func (c *Client) mergeLocked(server []model.Message) []model.Message {
	out := make([]model.Message, 0, len(server))
	seen := make(map[string]bool, len(server))
	for _, m := range server {
		out = append(out, m)
		seen[m.ID] = true
	}
	for _, m := range c.messages {
		if m.Pending() && !seen[m.ID] {
			out = append(out, m)
		}
	}
	return out
}

// MessagesReplaced is the payload of messages.replaced events.
type MessagesReplaced struct {
	ChannelID string
	Count     int
}

// LoadChats refreshes the chat list.
func (c *Client) LoadChats(ctx context.Context) error {
	const action = "Could not load chats"
	user, err := c.currentUser()
	if err != nil {
		return c.fail(action, err)
	}
	resp, err := c.api.GetChats(ctx, user.ID)
	if err == nil {
		err = checkList("get chats", resp.Error, resp.Chats == nil)
	}
	if err != nil {
		return c.fail(action, err)
	}

	c.mu.Lock()
	if !c.sameUserLocked(user.ID) {
		c.mu.Unlock()
		return nil
	}
	c.chats = resp.Chats
	c.mu.Unlock()
	c.bus.Emit(bus.ChatsLoaded, len(resp.Chats))
	return nil
}

// LoadContacts refreshes the contact list.
func (c *Client) LoadContacts(ctx context.Context) error {
	const action = "Could not load contacts"
	user, err := c.currentUser()
	if err != nil {
		return c.fail(action, err)
	}
	resp, err := c.api.GetContacts(ctx, user.ID)
	if err == nil {
		err = checkList("get contacts", resp.Error, resp.Contacts == nil)
	}
	if err != nil {
		return c.fail(action, err)
	}

	c.mu.Lock()
	if !c.sameUserLocked(user.ID) {
		c.mu.Unlock()
		return nil
	}
	c.contacts = resp.Contacts
	c.mu.Unlock()
	c.bus.Emit(bus.ContactsLoaded, len(resp.Contacts))
	return nil
}

// LoadFavorites refreshes the favorites list.
func (c *Client) LoadFavorites(ctx context.Context) error {
	const action = "Could not load favorites"
	user, err := c.currentUser()
	if err != nil {
		return c.fail(action, err)
	}
	resp, err := c.api.GetFavorites(ctx, user.ID)
	if err == nil {
		err = checkList("get favorites", resp.Error, resp.Favorites == nil)
	}
	if err != nil {
		return c.fail(action, err)
	}

	c.mu.Lock()
	if !c.sameUserLocked(user.ID) {
		c.mu.Unlock()
		return nil
	}
	c.favorites = resp.Favorites
	c.mu.Unlock()
	c.bus.Emit(bus.FavoritesLoaded, len(resp.Favorites))
	return nil
}

func checkList(op, errMsg string, missing bool) error {
	if errMsg != "" {
		return remote(op, errMsg, "")
	}
	if missing {
		return remote(op, "", "response has no list")
	}
	return nil
}

// AddFavorite stars messageID and reloads the favorites.
func (c *Client) AddFavorite(ctx context.Context, messageID string) error {
	return c.toggleFavorite(ctx, messageID, c.api.AddFavorite)
}

// RemoveFavorite unstars messageID and reloads the favorites.
func (c *Client) RemoveFavorite(ctx context.Context, messageID string) error {
	return c.toggleFavorite(ctx, messageID, c.api.RemoveFavorite)
}

func (c *Client) toggleFavorite(ctx context.Context, messageID string, call func(context.Context, string, string) (*api.AckResponse, error)) error {
	const action = "Could not update favorites"
	switch {
	case strings.TrimSpace(messageID) == "":
		return c.fail(action, &ValidationError{Field: "message", Reason: "no message chosen"})
	case strings.HasPrefix(messageID, TempIDPrefix):
		return c.fail(action, &ValidationError{Field: "message", Reason: "message is not delivered yet"})
	}
	user, err := c.currentUser()
	if err != nil {
		return c.fail(action, err)
	}
	resp, err := call(ctx, user.ID, messageID)
	if err == nil && (resp.Error != "" || !resp.Success) {
		err = remote("favorite", resp.Error, "request was not accepted")
	}
	if err != nil {
		return c.fail(action, err)
	}
	return c.LoadFavorites(ctx)
}

// CreateChat opens a direct chat with contactID and selects it.
func (c *Client) CreateChat(ctx context.Context, contactID string) (string, error) {
	const action = "Could not create the chat"
	if strings.TrimSpace(contactID) == "" {
		return "", c.fail(action, &ValidationError{Field: "contact", Reason: "no contact chosen"})
	}
	user, err := c.currentUser()
	if err != nil {
		return "", c.fail(action, err)
	}
	resp, err := c.api.CreateChat(ctx, user.ID, contactID)
	return c.openCreated(ctx, action, resp, err)
}

// CreateGroup creates a group with the given members and selects it.
func (c *Client) CreateGroup(ctx context.Context, name string, memberIDs []string) (string, error) {
	const action = "Could not create the group"
	name = strings.TrimSpace(name)
	if name == "" {
		return "", c.fail(action, &ValidationError{Field: "group name", Reason: "enter a group name"})
	}
	user, err := c.currentUser()
	if err != nil {
		return "", c.fail(action, err)
	}
	resp, err := c.api.CreateGroup(ctx, user.ID, name, memberIDs)
	var argErr *api.ArgumentError
	if errors.As(err, &argErr) {
		err = &ValidationError{Field: argErr.Field, Reason: argErr.Value + " is " + argErr.Reason}
	}
	return c.openCreated(ctx, action, resp, err)
}

func (c *Client) openCreated(ctx context.Context, action string, resp *api.CreateChatResponse, err error) (string, error) {
	if err == nil {
		switch {
		case resp.Error != "":
			err = remote("create chat", resp.Error, "")
		case resp.ChatID == "":
			err = remote("create chat", "", "response has no chat id")
		}
	}
	if err != nil {
		return "", c.fail(action, err)
	}
	_ = c.LoadChats(ctx)
	return resp.ChatID, c.SelectChannel(ctx, resp.ChatID)
}
