package model

// User is a messenger account as seen by the client.
type User struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar"` // emoji or URL
	Online bool   `json:"online"`
}

// Session is the persisted identity restored on startup.
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Channel is one entry of the chat list: a direct chat, a group or the
// global broadcast channel.
type Channel struct {
	ID          string
	Name        string
	IsGroup     bool
	IsGlobal    bool
	User        *User // the other participant of a direct chat
	LastMessage string
	Time        string
	Unread      int
}

// Title returns the display name of the channel.
func (c Channel) Title() string {
	if c.Name != "" {
		return c.Name
	}
	if c.User != nil && c.User.Name != "" {
		return c.User.Name
	}
	return "Chat"
}

// MediaType classifies a message attachment.
type MediaType string

const (
	MediaNone  MediaType = ""
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaAudio MediaType = "audio"
	MediaFile  MediaType = "file"
)

// DeliveryStatus tracks locally created messages until the server confirms them.
type DeliveryStatus string

const (
	Delivered DeliveryStatus = ""
	Sending   DeliveryStatus = "sending"
	Failed    DeliveryStatus = "failed"
)

// Message is a single chat message.
type Message struct {
	ID            string
	SenderID      string
	SenderName    string
	SenderAvatar  string
	Text          string
	Time          string
	IsOwn         bool
	IsVoice       bool
	VoiceDuration int // seconds
	MediaURL      string
	MediaType     MediaType
	Status        DeliveryStatus
}

// Pending reports whether the message exists only on this client.
func (m Message) Pending() bool {
	return m.Status != Delivered
}

// Favorite is a read-only projection of a starred message.
type Favorite struct {
	ID            string
	ChatID        string
	SenderID      string
	SenderName    string
	SenderAvatar  string
	Text          string
	MediaURL      string
	MediaType     MediaType
	IsVoice       bool
	VoiceDuration int
	Time          string
	FavoritedAt   string
}

// Draft is an outgoing message payload.
type Draft struct {
	Text          string
	IsVoice       bool
	VoiceDuration int
	MediaURL      string
	MediaType     MediaType
}

// HasPayload reports whether the draft carries voice or media content.
func (d Draft) HasPayload() bool {
	return d.IsVoice || d.MediaURL != ""
}

// CallType is the kind of media a call uses.
type CallType string

const (
	VoiceCall CallType = "voice"
	VideoCall CallType = "video"
)

// Call is the client-local record of a call.
type Call struct {
	ID     string
	Type   CallType
	Peer   User
	Status string
}
