package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/penguingram/messenger/internal/model"
)

// Every response exposes the backend's {"error": "..."} payload. A
// non-empty Error, or a missing expected field, is an application failure
// the caller must detect.

// LoginResponse is returned by Login and LoginWithGoogle.
type LoginResponse struct {
	Token string
	User  *model.User
	Error string
}

// ChatsResponse is returned by GetChats.
type ChatsResponse struct {
	Chats []model.Channel
	Error string
}

// CreateChatResponse is returned by CreateChat and CreateGroup.
type CreateChatResponse struct {
	ChatID    string
	GroupName string
	Error     string
}

// MessagesResponse is returned by GetMessages.
type MessagesResponse struct {
	Messages []model.Message
	Error    string
}

// SendMessageResponse is returned by SendMessage.
type SendMessageResponse struct {
	Message *model.Message
	Error   string
}

// ContactsResponse is returned by GetContacts.
type ContactsResponse struct {
	Contacts []model.User
	Error    string
}

// FavoritesResponse is returned by GetFavorites.
type FavoritesResponse struct {
	Favorites []model.Favorite
	Error     string
}

// AckResponse is returned by mutations without a payload.
type AckResponse struct {
	Success bool
	Error   string
}

// CallResponse is returned by the call signaling stubs.
type CallResponse struct {
	Call  *model.Call
	Error string
}

type loginWire struct {
	Token string    `json:"token"`
	User  *wireUser `json:"user"`
	Error string    `json:"error"`
}

func (w loginWire) normalize() *LoginResponse {
	resp := &LoginResponse{Token: w.Token, Error: w.Error}
	if w.User != nil {
		u := normalizeUser(*w.User)
		resp.User = &u
	}
	return resp
}

// Login authenticates with a phone number and display name.
func (c *Client) Login(ctx context.Context, phone, name string) (*LoginResponse, error) {
	var w loginWire
	err := c.do(ctx, request{
		op:       "login",
		method:   http.MethodPost,
		endpoint: c.cfg.Endpoints.Auth,
		body:     map[string]string{"phone": phone, "name": name},
	}, &w)
	if err != nil {
		return nil, err
	}
	return w.normalize(), nil
}

// LoginWithGoogle authenticates with a Google identity token.
func (c *Client) LoginWithGoogle(ctx context.Context, googleToken string) (*LoginResponse, error) {
	var w loginWire
	err := c.do(ctx, request{
		op:       "login with google",
		method:   http.MethodPost,
		endpoint: c.cfg.Endpoints.Auth,
		body:     map[string]string{"google_token": googleToken},
	}, &w)
	if err != nil {
		return nil, err
	}
	return w.normalize(), nil
}

// GetChats lists the chats visible to userID.
func (c *Client) GetChats(ctx context.Context, userID string) (*ChatsResponse, error) {
	var w struct {
		Chats []wireChat `json:"chats"`
		Error string     `json:"error"`
	}
	err := c.do(ctx, request{
		op:       "get chats",
		method:   http.MethodGet,
		endpoint: c.cfg.Endpoints.Chats,
		userID:   userID,
	}, &w)
	if err != nil {
		return nil, err
	}
	resp := &ChatsResponse{Error: w.Error}
	if w.Chats != nil {
		resp.Chats = make([]model.Channel, 0, len(w.Chats))
		for _, ch := range w.Chats {
			resp.Chats = append(resp.Chats, normalizeChat(ch))
		}
	}
	return resp, nil
}

type createChatWire struct {
	ChatID    flexID `json:"chatId"`
	ChatIDAlt flexID `json:"chat_id"`
	GroupName string `json:"groupName"`
	Error     string `json:"error"`
}

func (w createChatWire) normalize() *CreateChatResponse {
	return &CreateChatResponse{
		ChatID:    first(string(w.ChatID), string(w.ChatIDAlt)),
		GroupName: w.GroupName,
		Error:     w.Error,
	}
}

// CreateChat opens (or reuses) a direct chat with contactID.
func (c *Client) CreateChat(ctx context.Context, userID, contactID string) (*CreateChatResponse, error) {
	var w createChatWire
	err := c.do(ctx, request{
		op:       "create chat",
		method:   http.MethodPost,
		endpoint: c.cfg.Endpoints.Chats,
		userID:   userID,
		body:     map[string]string{"contactId": contactID},
	}, &w)
	if err != nil {
		return nil, err
	}
	return w.normalize(), nil
}

// CreateGroup creates a group chat. Member ids are sent as numbers; a
// non-numeric id fails with *ArgumentError before any request is issued.
func (c *Client) CreateGroup(ctx context.Context, userID, name string, memberIDs []string) (*CreateChatResponse, error) {
	members := make([]int64, 0, len(memberIDs))
	for _, id := range memberIDs {
		n, err := strconv.ParseInt(strings.TrimSpace(id), 10, 64)
		if err != nil {
			return nil, &ArgumentError{Op: "create group", Field: "member id", Value: id, Reason: "not numeric"}
		}
		members = append(members, n)
	}

	var w createChatWire
	err := c.do(ctx, request{
		op:       "create group",
		method:   http.MethodPost,
		endpoint: c.cfg.Endpoints.Chats,
		userID:   userID,
		body: map[string]any{
			"isGroup":   true,
			"groupName": name,
			"memberIds": members,
		},
	}, &w)
	if err != nil {
		return nil, err
	}
	return w.normalize(), nil
}

// GetMessages lists the messages of chatID.
func (c *Client) GetMessages(ctx context.Context, userID, chatID string) (*MessagesResponse, error) {
	var w struct {
		Messages []wireMessage `json:"messages"`
		Error    string        `json:"error"`
	}
	err := c.do(ctx, request{
		op:       "get messages",
		method:   http.MethodGet,
		endpoint: c.cfg.Endpoints.Messages,
		userID:   userID,
		query:    url.Values{"chat_id": {chatID}},
	}, &w)
	if err != nil {
		return nil, err
	}
	resp := &MessagesResponse{Error: w.Error}
	if w.Messages != nil {
		resp.Messages = make([]model.Message, 0, len(w.Messages))
		for _, m := range w.Messages {
			resp.Messages = append(resp.Messages, normalizeMessage(m, userID))
		}
	}
	return resp, nil
}

type sendMessageBody struct {
	ChatID        string `json:"chatId"`
	Text          string `json:"text"`
	IsVoice       bool   `json:"isVoice"`
	VoiceDuration int    `json:"voiceDuration,omitempty"`
	MediaURL      string `json:"mediaUrl,omitempty"`
	MediaType     string `json:"mediaType,omitempty"`
}

// SendMessage posts draft to chatID.
func (c *Client) SendMessage(ctx context.Context, userID, chatID string, draft model.Draft) (*SendMessageResponse, error) {
	var w struct {
		Message *wireMessage `json:"message"`
		Error   string       `json:"error"`
	}
	err := c.do(ctx, request{
		op:       "send message",
		method:   http.MethodPost,
		endpoint: c.cfg.Endpoints.Messages,
		userID:   userID,
		body: sendMessageBody{
			ChatID:        chatID,
			Text:          draft.Text,
			IsVoice:       draft.IsVoice,
			VoiceDuration: draft.VoiceDuration,
			MediaURL:      draft.MediaURL,
			MediaType:     string(draft.MediaType),
		},
	}, &w)
	if err != nil {
		return nil, err
	}
	resp := &SendMessageResponse{Error: w.Error}
	if w.Message != nil {
		m := normalizeMessage(*w.Message, userID)
		resp.Message = &m
	}
	return resp, nil
}

// GetContacts lists every other user.
func (c *Client) GetContacts(ctx context.Context, userID string) (*ContactsResponse, error) {
	var w struct {
		Contacts []wireUser `json:"contacts"`
		Error    string     `json:"error"`
	}
	err := c.do(ctx, request{
		op:       "get contacts",
		method:   http.MethodGet,
		endpoint: c.cfg.Endpoints.Contacts,
		userID:   userID,
	}, &w)
	if err != nil {
		return nil, err
	}
	resp := &ContactsResponse{Error: w.Error}
	if w.Contacts != nil {
		resp.Contacts = normalizeUsers(w.Contacts)
	}
	return resp, nil
}

// GetFavorites lists the messages userID starred.
func (c *Client) GetFavorites(ctx context.Context, userID string) (*FavoritesResponse, error) {
	var w struct {
		Favorites []wireFavorite `json:"favorites"`
		Error     string         `json:"error"`
	}
	err := c.do(ctx, request{
		op:       "get favorites",
		method:   http.MethodGet,
		endpoint: c.cfg.Endpoints.Favorites,
		userID:   userID,
	}, &w)
	if err != nil {
		return nil, err
	}
	resp := &FavoritesResponse{Error: w.Error}
	if w.Favorites != nil {
		resp.Favorites = make([]model.Favorite, 0, len(w.Favorites))
		for _, f := range w.Favorites {
			resp.Favorites = append(resp.Favorites, normalizeFavorite(f))
		}
	}
	return resp, nil
}

type ackWire struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// AddFavorite stars messageID.
func (c *Client) AddFavorite(ctx context.Context, userID, messageID string) (*AckResponse, error) {
	var w ackWire
	err := c.do(ctx, request{
		op:       "add favorite",
		method:   http.MethodPost,
		endpoint: c.cfg.Endpoints.Favorites,
		userID:   userID,
		body:     map[string]string{"messageId": messageID},
	}, &w)
	if err != nil {
		return nil, err
	}
	return &AckResponse{Success: w.Success, Error: w.Error}, nil
}

// RemoveFavorite unstars messageID.
func (c *Client) RemoveFavorite(ctx context.Context, userID, messageID string) (*AckResponse, error) {
	var w ackWire
	err := c.do(ctx, request{
		op:       "remove favorite",
		method:   http.MethodDelete,
		endpoint: c.cfg.Endpoints.Favorites,
		userID:   userID,
		query:    url.Values{"message_id": {messageID}},
	}, &w)
	if err != nil {
		return nil, err
	}
	return &AckResponse{Success: w.Success, Error: w.Error}, nil
}

func (c *Client) call(ctx context.Context, op, suffix, userID string, body map[string]string) (*CallResponse, error) {
	var w struct {
		wireCall
		Call  *wireCall `json:"call"`
		Error string    `json:"error"`
	}
	err := c.do(ctx, request{
		op:       op,
		method:   http.MethodPost,
		endpoint: strings.TrimRight(c.cfg.Endpoints.Calls, "/") + suffix,
		userID:   userID,
		body:     body,
	}, &w)
	if err != nil {
		return nil, err
	}
	resp := &CallResponse{Error: w.Error}
	switch {
	case w.Call != nil:
		call := normalizeCall(*w.Call)
		resp.Call = &call
	case w.Error == "":
		call := normalizeCall(w.wireCall)
		resp.Call = &call
	}
	return resp, nil
}

// InitiateCall asks the backend to ring targetUserID. It only records
// the call; no media is exchanged.
func (c *Client) InitiateCall(ctx context.Context, userID, targetUserID string, callType model.CallType) (*CallResponse, error) {
	return c.call(ctx, "initiate call", "", userID, map[string]string{
		"targetUserId": targetUserID,
		"callType":     string(callType),
	})
}

// AcceptCall accepts callID.
func (c *Client) AcceptCall(ctx context.Context, userID, callID string) (*CallResponse, error) {
	return c.call(ctx, "accept call", "/accept", userID, map[string]string{"callId": callID})
}

// EndCall hangs up callID.
func (c *Client) EndCall(ctx context.Context, userID, callID string) (*CallResponse, error) {
	return c.call(ctx, "end call", "/end", userID, map[string]string{"callId": callID})
}
