package notify

import (
	"sync"
	"time"

	"github.com/penguingram/messenger/internal/bus"
)

// ErrorTitle is the title of every failure notification.
const ErrorTitle = "Error"

// DefaultTTL is how long a notification stays visible.
const DefaultTTL = 4 * time.Second

// Level is the severity of a notification.
type Level string

const (
	LevelInfo  Level = "info"
	LevelError Level = "error"
)

// Notification is a short-lived message for the user.
type Notification struct {
	Level       Level
	Title       string
	Description string
	At          time.Time
	Expires     time.Time
}

// Notifier holds the latest notification and announces new ones on the bus.
type Notifier struct {
	mu      sync.RWMutex
	current Notification
	ttl     time.Duration
	bus     *bus.Bus
	now     func() time.Time
}

// New creates a Notifier. b may be nil.
func New(b *bus.Bus, ttl time.Duration) *Notifier {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Notifier{bus: b, ttl: ttl, now: time.Now}
}

// Error raises a failure notification with the fixed "Error" title.
func (n *Notifier) Error(description string) {
	n.raise(LevelError, ErrorTitle, description)
}

// Info raises an informational notification.
func (n *Notifier) Info(title, description string) {
	n.raise(LevelInfo, title, description)
}

func (n *Notifier) raise(level Level, title, description string) {
	now := n.now()
	note := Notification{
		Level:       level,
		Title:       title,
		Description: description,
		At:          now,
		Expires:     now.Add(n.ttl),
	}
	n.mu.Lock()
	n.current = note
	n.mu.Unlock()

	if n.bus != nil {
		n.bus.Emit(bus.NotificationRaised, note)
	}
}

// Current returns the visible notification, if any has not expired.
func (n *Notifier) Current() (Notification, bool) {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.current.Title == "" || n.now().After(n.current.Expires) {
		return Notification{}, false
	}
	return n.current, true
}
