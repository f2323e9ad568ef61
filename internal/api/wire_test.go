package api

import (
	"context"
	"testing"

	"github.com/penguingram/messenger/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetMessagesNormalizesSpellings(t *testing.T) {
	rec := &recorder{reply: `{"messages":[
		{"id":1,"senderId":5,"senderName":"Alex","text":"hi","time":"10:00","isOwn":false},
		{"id":"2","sender_id":"7","sender_name":"Kim","sender_avatar":"🐻","text":"yo","media_url":"data:image/png;base64,AA==","media_type":"image/png","time":"10:01","isOwn":true},
		{"id":3,"senderId":5,"text":"","isVoice":true,"voice_duration":"4","mediaUrl":"data:audio/webm;base64,AA==","mediaType":"audio"}
	]}`}
	resp, err := rec.client().GetMessages(context.Background(), "5", "1")
	require.NoError(t, err)
	require.Len(t, resp.Messages, 3)

	m1, m2, m3 := resp.Messages[0], resp.Messages[1], resp.Messages[2]
	assert.Equal(t, "1", m1.ID)
	assert.Equal(t, "5", m1.SenderID)
	assert.True(t, m1.IsOwn, "own message is derived from sender id")

	assert.Equal(t, "7", m2.SenderID)
	assert.Equal(t, "Kim", m2.SenderName)
	assert.Equal(t, "🐻", m2.SenderAvatar)
	assert.Equal(t, model.MediaImage, m2.MediaType)
	assert.False(t, m2.IsOwn, "server isOwn flag is ignored")

	assert.True(t, m3.IsVoice)
	assert.Equal(t, 4, m3.VoiceDuration)
	assert.Equal(t, model.MediaAudio, m3.MediaType)
}

func TestGetChatsNormalizes(t *testing.T) {
	rec := &recorder{reply: `{"chats":[
		{"id":1,"name":"Global","isGlobal":true,"isGroup":true,"lastMessage":"hey","time":"09:00","unread":0},
		{"id":"12","other_user_name":"Kim","is_group":false,"user":{"id":7,"name":"Kim","avatar":"🐻","online":true},"last_message":"ok","unread":"3"}
	]}`}
	resp, err := rec.client().GetChats(context.Background(), "5")
	require.NoError(t, err)
	require.Len(t, resp.Chats, 2)

	assert.Equal(t, model.Channel{ID: "1", Name: "Global", IsGroup: true, IsGlobal: true, LastMessage: "hey", Time: "09:00"}, resp.Chats[0])

	direct := resp.Chats[1]
	assert.Equal(t, "12", direct.ID)
	assert.Equal(t, "Kim", direct.Name)
	assert.Equal(t, "ok", direct.LastMessage)
	assert.Equal(t, 3, direct.Unread)
	require.NotNil(t, direct.User)
	assert.Equal(t, model.User{ID: "7", Name: "Kim", Avatar: "🐻", Online: true}, *direct.User)
}

func TestGetFavoritesNormalizes(t *testing.T) {
	rec := &recorder{reply: `{"favorites":[{"id":9,"chat_id":1,"senderId":7,"senderName":"Kim","text":"note","isVoice":false,"time":"10:00","favoritedAt":"01.02.2025 10:05"}]}`}
	resp, err := rec.client().GetFavorites(context.Background(), "5")
	require.NoError(t, err)
	require.Len(t, resp.Favorites, 1)
	f := resp.Favorites[0]
	assert.Equal(t, "9", f.ID)
	assert.Equal(t, "1", f.ChatID)
	assert.Equal(t, "7", f.SenderID)
	assert.Equal(t, "01.02.2025 10:05", f.FavoritedAt)
}

func TestCreateChatAndCallResponses(t *testing.T) {
	rec := &recorder{reply: `{"chatId":14,"groupName":"Team"}`}
	resp, err := rec.client().CreateGroup(context.Background(), "5", "Team", []string{"7"})
	require.NoError(t, err)
	assert.Equal(t, "14", resp.ChatID)
	assert.Equal(t, "Team", resp.GroupName)

	rec = &recorder{reply: `{"callId":"c1","callType":"video","status":"ringing"}`}
	call, err := rec.client().InitiateCall(context.Background(), "5", "7", model.VideoCall)
	require.NoError(t, err)
	require.NotNil(t, call.Call)
	assert.Equal(t, model.Call{ID: "c1", Type: model.VideoCall, Status: "ringing"}, *call.Call)

	rec = &recorder{reply: `{"call":{"id":"c2","status":"ended"}}`}
	call, err = rec.client().EndCall(context.Background(), "5", "c2")
	require.NoError(t, err)
	require.NotNil(t, call.Call)
	assert.Equal(t, "c2", call.Call.ID)
}

func TestFlexIDRejectsObjects(t *testing.T) {
	var id flexID
	assert.Error(t, id.UnmarshalJSON([]byte(`{"x":1}`)))
	require.NoError(t, id.UnmarshalJSON([]byte(`null`)))
	assert.Equal(t, flexID(""), id)
}

func TestNormalizeMediaType(t *testing.T) {
	tests := map[string]model.MediaType{
		"":                model.MediaNone,
		"image":           model.MediaImage,
		"image/jpeg":      model.MediaImage,
		"video/mp4":       model.MediaVideo,
		"audio/webm":      model.MediaAudio,
		"application/pdf": model.MediaFile,
		"file":            model.MediaFile,
	}
	for in, want := range tests {
		assert.Equal(t, want, normalizeMediaType(in), in)
	}
}
