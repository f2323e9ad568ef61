package bus

import "time"

// Event is a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}

// Event kinds published by the client core.
const (
	SessionStateChanged = "session.state_changed"
	SessionLoggedIn     = "session.logged_in"
	SessionLoggedOut    = "session.logged_out"

	ChannelSelected = "channel.selected"

	ChatsLoaded      = "chats.loaded"
	ContactsLoaded   = "contacts.loaded"
	FavoritesLoaded  = "favorites.loaded"
	MessagesReplaced = "messages.replaced"
	MessageAppended  = "messages.appended"
	MessageSent      = "messages.sent"
	MessageFailed    = "messages.failed"

	RecordingStarted = "capture.recording_started"
	RecordingStopped = "capture.recording_stopped"
	CallStarted      = "call.started"
	CallEnded        = "call.ended"

	NotificationRaised = "notify.raised"
)
