package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/penguingram/messenger/internal/model"
)

// flexID accepts an identifier encoded as a JSON string or number.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*f = flexID(n.String())
	return nil
}

// flexInt accepts an integer encoded as a JSON number or numeric string.
type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = 0
		return nil
	}
	s := strings.Trim(string(data), `"`)
	if s == "" {
		*f = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("integer: %w", err)
	}
	*f = flexInt(math.Round(v))
	return nil
}

func first(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func firstBool(values ...*bool) bool {
	for _, v := range values {
		if v != nil {
			return *v
		}
	}
	return false
}

type wireUser struct {
	ID     flexID `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"`
	Online bool   `json:"online"`
}

func normalizeUser(w wireUser) model.User {
	return model.User{ID: string(w.ID), Name: w.Name, Avatar: w.Avatar, Online: w.Online}
}

func normalizeUsers(ws []wireUser) []model.User {
	out := make([]model.User, 0, len(ws))
	for _, w := range ws {
		out = append(out, normalizeUser(w))
	}
	return out
}

type wireChat struct {
	ID             flexID    `json:"id"`
	Name           string    `json:"name"`
	OtherUserName  string    `json:"other_user_name"`
	IsGroup        *bool     `json:"isGroup"`
	IsGroupAlt     *bool     `json:"is_group"`
	IsGlobal       *bool     `json:"isGlobal"`
	IsGlobalAlt    *bool     `json:"is_global"`
	User           *wireUser `json:"user"`
	LastMessage    string    `json:"lastMessage"`
	LastMessageAlt string    `json:"last_message"`
	Time           string    `json:"time"`
	Unread         flexInt   `json:"unread"`
}

func normalizeChat(w wireChat) model.Channel {
	ch := model.Channel{
		ID:          string(w.ID),
		Name:        first(w.Name, w.OtherUserName),
		IsGroup:     firstBool(w.IsGroup, w.IsGroupAlt),
		IsGlobal:    firstBool(w.IsGlobal, w.IsGlobalAlt),
		LastMessage: first(w.LastMessage, w.LastMessageAlt),
		Time:        w.Time,
		Unread:      int(w.Unread),
	}
	if w.User != nil {
		u := normalizeUser(*w.User)
		ch.User = &u
	}
	return ch
}

type wireMessage struct {
	ID               flexID  `json:"id"`
	SenderID         flexID  `json:"senderId"`
	SenderIDAlt      flexID  `json:"sender_id"`
	SenderName       string  `json:"senderName"`
	SenderNameAlt    string  `json:"sender_name"`
	SenderAvatar     string  `json:"senderAvatar"`
	SenderAvatarAlt  string  `json:"sender_avatar"`
	Text             string  `json:"text"`
	Time             string  `json:"time"`
	IsVoice          *bool   `json:"isVoice"`
	IsVoiceAlt       *bool   `json:"is_voice"`
	VoiceDuration    flexInt `json:"voiceDuration"`
	VoiceDurationAlt flexInt `json:"voice_duration"`
	MediaURL         string  `json:"mediaUrl"`
	MediaURLAlt      string  `json:"media_url"`
	MediaType        string  `json:"mediaType"`
	MediaTypeAlt     string  `json:"media_type"`
}

// normalizeMessage converts a wire message. IsOwn is derived from
// currentUserID and never taken from the payload.
func normalizeMessage(w wireMessage, currentUserID string) model.Message {
	sender := first(string(w.SenderID), string(w.SenderIDAlt))
	duration := w.VoiceDuration
	if duration == 0 {
		duration = w.VoiceDurationAlt
	}
	return model.Message{
		ID:            string(w.ID),
		SenderID:      sender,
		SenderName:    first(w.SenderName, w.SenderNameAlt),
		SenderAvatar:  first(w.SenderAvatar, w.SenderAvatarAlt),
		Text:          w.Text,
		Time:          w.Time,
		IsOwn:         sender != "" && sender == currentUserID,
		IsVoice:       firstBool(w.IsVoice, w.IsVoiceAlt),
		VoiceDuration: int(duration),
		MediaURL:      first(w.MediaURL, w.MediaURLAlt),
		MediaType:     normalizeMediaType(first(w.MediaType, w.MediaTypeAlt)),
	}
}

// normalizeMediaType maps both kind names and MIME types to a MediaType.
func normalizeMediaType(s string) model.MediaType {
	switch {
	case s == "":
		return model.MediaNone
	case s == "image" || strings.HasPrefix(s, "image/"):
		return model.MediaImage
	case s == "video" || strings.HasPrefix(s, "video/"):
		return model.MediaVideo
	case s == "audio" || strings.HasPrefix(s, "audio/"):
		return model.MediaAudio
	default:
		return model.MediaFile
	}
}

type wireFavorite struct {
	wireMessage
	ChatID         flexID `json:"chatId"`
	ChatIDAlt      flexID `json:"chat_id"`
	FavoritedAt    string `json:"favoritedAt"`
	FavoritedAtAlt string `json:"favorited_at"`
}

func normalizeFavorite(w wireFavorite) model.Favorite {
	m := normalizeMessage(w.wireMessage, "")
	return model.Favorite{
		ID:            m.ID,
		ChatID:        first(string(w.ChatID), string(w.ChatIDAlt)),
		SenderID:      m.SenderID,
		SenderName:    m.SenderName,
		SenderAvatar:  m.SenderAvatar,
		Text:          m.Text,
		MediaURL:      m.MediaURL,
		MediaType:     m.MediaType,
		IsVoice:       m.IsVoice,
		VoiceDuration: m.VoiceDuration,
		Time:          m.Time,
		FavoritedAt:   first(w.FavoritedAt, w.FavoritedAtAlt),
	}
}

type wireCall struct {
	ID          flexID    `json:"id"`
	CallID      flexID    `json:"callId"`
	CallIDAlt   flexID    `json:"call_id"`
	CallType    string    `json:"callType"`
	CallTypeAlt string    `json:"call_type"`
	Status      string    `json:"status"`
	Peer        *wireUser `json:"peer"`
}

func normalizeCall(w wireCall) model.Call {
	c := model.Call{
		ID:     first(string(w.CallID), string(w.CallIDAlt), string(w.ID)),
		Type:   model.CallType(first(w.CallType, w.CallTypeAlt)),
		Status: w.Status,
	}
	if w.Peer != nil {
		c.Peer = normalizeUser(*w.Peer)
	}
	return c
}
