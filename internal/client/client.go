package client

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/penguingram/messenger/internal/api"
	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/logging"
	"github.com/penguingram/messenger/internal/model"
	"github.com/penguingram/messenger/internal/notify"
	"github.com/penguingram/messenger/internal/session"
	"github.com/penguingram/messenger/internal/status"
	"go.uber.org/zap"
)

// MinPhoneLength is the shortest phone number accepted at login.
const MinPhoneLength = 10

// Options configures a Client.
type Options struct {
	// GlobalChannelID is selected right after authentication.
	GlobalChannelID string
	// AdminPhrase unlocks the admin overlay. Empty disables it.
	AdminPhrase string
}

// Client is the in-memory application state and the operations that
// change it. It is safe for concurrent use.
type Client struct {
	api      API
	store    *session.Store
	machine  *status.Machine
	bus      *bus.Bus
	notifier *notify.Notifier
	opts     Options
	log      *zap.Logger

	mu        sync.RWMutex
	session   *model.Session
	chats     []model.Channel
	contacts  []model.User
	favorites []model.Favorite
	active    string
	messages  []model.Message
	outgoing  map[string]outgoing // temp id -> payload, until confirmed
	gen       uint64
	settings  session.Settings
	admin     bool

	bg     context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

type outgoing struct {
	chatID string
	draft  model.Draft
}

// New creates a logged-out Client.
func New(a API, store *session.Store, machine *status.Machine, b *bus.Bus, n *notify.Notifier, opts Options, log *zap.Logger) *Client {
	bg, cancel := context.WithCancel(context.Background())
	return &Client{
		api:      a,
		store:    store,
		machine:  machine,
		bus:      b,
		notifier: n,
		opts:     opts,
		log:      logging.OrNop(log).Named("client"),
		outgoing: make(map[string]outgoing),
		settings: store.LoadSettings(),
		bg:       bg,
		cancel:   cancel,
	}
}

// Wait blocks until background fetches started by the client finish.
func (c *Client) Wait() {
	c.wg.Wait()
}

// Close cancels background fetches and waits for them.
func (c *Client) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Client) spawn(fn func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(c.bg)
	}()
}

// fail raises an error notification for action and returns err.
func (c *Client) fail(action string, err error) error {
	c.log.Warn(action, zap.Error(err))
	c.notifier.Error(describe(action, err))
	return err
}

// Restore loads the persisted session. On success the client becomes
// authenticated and starts loading data.
func (c *Client) Restore(ctx context.Context) bool {
	sess, ok := c.store.Load()
	if !ok {
		return false
	}
	if err := c.establish(*sess, false); err != nil {
		c.log.Warn("restore session", zap.Error(err))
		return false
	}
	c.log.Info("session restored", zap.String("user_id", sess.User.ID))
	return true
}

// Login authenticates with phone and name.
func (c *Client) Login(ctx context.Context, phone, name string) error {
	const action = "Could not log in"
	phone, name = strings.TrimSpace(phone), strings.TrimSpace(name)
	switch {
	case name == "":
		return c.fail(action, &ValidationError{Field: "name", Reason: "enter your name"})
	case phone == "":
		return c.fail(action, &ValidationError{Field: "phone", Reason: "enter your phone number"})
	case utf8.RuneCountInString(phone) < MinPhoneLength:
		return c.fail(action, &ValidationError{Field: "phone", Reason: "phone number is too short"})
	}
	return c.authenticate(ctx, action, func(ctx context.Context) (*api.LoginResponse, error) {
		return c.api.Login(ctx, phone, name)
	})
}

// LoginWithGoogle authenticates with a Google identity token.
func (c *Client) LoginWithGoogle(ctx context.Context, token string) error {
	const action = "Could not log in with Google"
	token = strings.TrimSpace(token)
	if token == "" {
		return c.fail(action, &ValidationError{Field: "google token", Reason: "missing token"})
	}
	return c.authenticate(ctx, action, func(ctx context.Context) (*api.LoginResponse, error) {
		return c.api.LoginWithGoogle(ctx, token)
	})
}

func (c *Client) authenticate(ctx context.Context, action string, login func(context.Context) (*api.LoginResponse, error)) error {
	if err := c.machine.Transition(status.Authenticating); err != nil {
		return c.fail(action, &ValidationError{Field: "session", Reason: "already logged in"})
	}

	resp, err := login(ctx)
	if err == nil {
		switch {
		case resp.Error != "":
			err = remote("login", resp.Error, "")
		case resp.User == nil || resp.User.ID == "" || resp.Token == "":
			err = remote("login", "", "incomplete login response")
		}
	}
	if err != nil {
		_ = c.machine.Transition(status.LoggedOut)
		return c.fail(action, err)
	}

	sess := model.Session{Token: resp.Token, User: *resp.User}
	if err := c.establish(sess, true); err != nil {
		_ = c.machine.Transition(status.LoggedOut)
		return c.fail(action, err)
	}
	c.log.Info("logged in", zap.String("user_id", sess.User.ID))
	return nil
}

// establish installs sess as the current session and starts the
// bootstrap fetches.
func (c *Client) establish(sess model.Session, persist bool) error {
	if persist {
		c.store.Save(sess)
	}
	if err := c.machine.Transition(status.Authenticated); err != nil {
		return err
	}

	c.mu.Lock()
	c.session = &sess
	c.active = ""
	c.messages = nil
	c.gen++
	c.mu.Unlock()

	c.bus.Emit(bus.SessionLoggedIn, sess.User)
	c.bootstrap()
	return nil
}

// bootstrap starts three independent fetches: chats, contacts and the
// initial channel. None waits for another.
func (c *Client) bootstrap() {
	c.spawn(func(ctx context.Context) { _ = c.LoadChats(ctx) })
	c.spawn(func(ctx context.Context) { _ = c.LoadContacts(ctx) })
	if id := c.opts.GlobalChannelID; id != "" {
		c.spawn(func(ctx context.Context) { _ = c.selectChannel(ctx, id, true) })
	}
}

// Logout clears the stored session and all in-memory state.
func (c *Client) Logout(ctx context.Context) error {
	c.store.Clear()

	c.mu.Lock()
	c.session = nil
	c.chats, c.contacts, c.favorites, c.messages = nil, nil, nil, nil
	c.outgoing = make(map[string]outgoing)
	c.active = ""
	c.admin = false
	c.gen++
	c.mu.Unlock()

	if !c.machine.Is(status.LoggedOut) {
		if err := c.machine.Transition(status.LoggedOut); err != nil {
			return err
		}
	}
	c.bus.Emit(bus.SessionLoggedOut, nil)
	c.log.Info("logged out")
	return nil
}

// currentUser returns the logged-in user, or a ValidationError.
func (c *Client) currentUser() (model.User, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.session == nil {
		return model.User{}, &ValidationError{Field: "session", Reason: "not logged in"}
	}
	return c.session.User, nil
}

// sameUserLocked reports whether userID is still the logged-in user.
func (c *Client) sameUserLocked(userID string) bool {
	return c.session != nil && c.session.User.ID == userID
}

// Settings returns the client settings.
func (c *Client) Settings() session.Settings {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.settings
}

// UpdateSettings stores new settings.
func (c *Client) UpdateSettings(st session.Settings) {
	c.mu.Lock()
	c.settings = st
	c.mu.Unlock()
	c.store.SaveSettings(st)
}

// UnlockAdmin enables the admin overlay when phrase matches.
func (c *Client) UnlockAdmin(phrase string) bool {
	if c.opts.AdminPhrase == "" || strings.TrimSpace(phrase) != c.opts.AdminPhrase {
		return false
	}
	c.mu.Lock()
	c.admin = c.session != nil
	ok := c.admin
	c.mu.Unlock()
	return ok
}

// State is a copy of the client state for presentation.
type State struct {
	Status    status.State
	User      *model.User
	Chats     []model.Channel
	Contacts  []model.User
	Favorites []model.Favorite
	Active    string
	Messages  []model.Message
	Settings  session.Settings
	Admin     bool
}

// Snapshot returns a copy of the current state.
func (c *Client) Snapshot() State {
	c.mu.RLock()
	defer c.mu.RUnlock()
	st := State{
		Status:    c.machine.Current(),
		Chats:     append([]model.Channel(nil), c.chats...),
		Contacts:  append([]model.User(nil), c.contacts...),
		Favorites: append([]model.Favorite(nil), c.favorites...),
		Active:    c.active,
		Messages:  append([]model.Message(nil), c.messages...),
		Settings:  c.settings,
		Admin:     c.admin,
	}
	if c.session != nil {
		u := c.session.User
		st.User = &u
	}
	return st
}

// Messages returns a copy of the active channel's messages.
func (c *Client) Messages() []model.Message {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Message(nil), c.messages...)
}

// ActiveChannel returns the selected channel id, or "".
func (c *Client) ActiveChannel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.active
}

var errStale = errors.New("stale response")
