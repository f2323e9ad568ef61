package session

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/penguingram/messenger/internal/logging"
	"github.com/penguingram/messenger/internal/model"
	"go.uber.org/zap"
)

// Storage keys.
const (
	KeyToken    = "token"
	KeyUser     = "user"
	KeySettings = "settings"
)

// ErrMalformedSession is logged when persisted session data cannot be used.
var ErrMalformedSession = errors.New("malformed session")

// Settings are the user-adjustable client preferences.
type Settings struct {
	DarkMode bool `json:"darkMode"`
	Compact  bool `json:"compact"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{DarkMode: true}
}

// Store persists the logged-in session.
type Store struct {
	storage Storage
	log     *zap.Logger
}

// NewStore creates a Store over storage.
func NewStore(storage Storage, log *zap.Logger) *Store {
	return &Store{storage: storage, log: logging.OrNop(log)}
}

// Save writes the token and user. Failures are logged and swallowed.
func (s *Store) Save(sess model.Session) {
	user, err := json.Marshal(sess.User)
	if err != nil {
		s.log.Error("encode session user", zap.Error(err))
		return
	}

	if batch, ok := s.storage.(BatchStorage); ok {
		err = batch.SetMany(map[string]string{KeyToken: sess.Token, KeyUser: string(user)})
	} else {
		err = s.storage.Set(KeyToken, sess.Token)
		if err == nil {
			err = s.storage.Set(KeyUser, string(user))
			if err != nil {
				// A new token must not pair with the previous user.
				if rerr := s.storage.Remove(KeyToken); rerr != nil {
					s.log.Error("remove token after failed save", zap.Error(rerr))
				}
			}
		}
	}
	if err != nil {
		s.log.Error("save session", zap.Error(err))
	}
}

// Load returns the stored session. It reports false unless both entries
// exist, the token is non-empty and the user has an id.
func (s *Store) Load() (*model.Session, bool) {
	token, ok, err := s.storage.Get(KeyToken)
	if err != nil {
		s.log.Warn("read session token", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}
	raw, ok, err := s.storage.Get(KeyUser)
	if err != nil {
		s.log.Warn("read session user", zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	if strings.TrimSpace(token) == "" {
		s.log.Warn("discarding session", zap.Error(ErrMalformedSession), zap.String("reason", "empty token"))
		return nil, false
	}
	var user model.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		s.log.Warn("discarding session", zap.Error(ErrMalformedSession), zap.NamedError("decode", err))
		return nil, false
	}
	if user.ID == "" {
		s.log.Warn("discarding session", zap.Error(ErrMalformedSession), zap.String("reason", "user without id"))
		return nil, false
	}
	return &model.Session{Token: token, User: user}, true
}

// Clear removes the token and user. It is safe to call repeatedly.
func (s *Store) Clear() {
	var err error
	if batch, ok := s.storage.(BatchStorage); ok {
		err = batch.RemoveMany(KeyToken, KeyUser)
	} else {
		err = errors.Join(s.storage.Remove(KeyToken), s.storage.Remove(KeyUser))
	}
	if err != nil {
		s.log.Error("clear session", zap.Error(err))
	}
}

// SaveSettings persists settings.
func (s *Store) SaveSettings(st Settings) {
	data, err := json.Marshal(st)
	if err != nil {
		s.log.Error("encode settings", zap.Error(err))
		return
	}
	if err := s.storage.Set(KeySettings, string(data)); err != nil {
		s.log.Error("save settings", zap.Error(err))
	}
}

// LoadSettings returns the stored settings, or the defaults.
func (s *Store) LoadSettings() Settings {
	raw, ok, err := s.storage.Get(KeySettings)
	if err != nil || !ok {
		return DefaultSettings()
	}
	st := DefaultSettings()
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		s.log.Warn("discarding settings", zap.Error(err))
		return DefaultSettings()
	}
	return st
}
