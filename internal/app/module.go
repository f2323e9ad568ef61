package app

import (
	"context"
	"net/http"

	"github.com/penguingram/messenger/internal/api"
	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/capture"
	"github.com/penguingram/messenger/internal/client"
	"github.com/penguingram/messenger/internal/config"
	"github.com/penguingram/messenger/internal/control"
	"github.com/penguingram/messenger/internal/lock"
	"github.com/penguingram/messenger/internal/logging"
	"github.com/penguingram/messenger/internal/notify"
	"github.com/penguingram/messenger/internal/poller"
	"github.com/penguingram/messenger/internal/profile"
	"github.com/penguingram/messenger/internal/session"
	"github.com/penguingram/messenger/internal/status"
	"github.com/penguingram/messenger/internal/store"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Params holds the resolved profile configuration passed to the fx module.
type Params struct {
	Profile    string
	Mode       string // "tui" or "headless", recorded in the profile lock
	Config     *config.Config
	SocketPath string       // optional override for testing; empty = use default
	LogPath    string       // optional override for testing; empty = use default
	HTTPClient *http.Client // optional; nil builds one from Config.API.Timeout
}

// Module returns the fx module for a messenger client, composing all
// providers and lifecycle hooks.
func Module(p Params) fx.Option {
	if p.Config == nil {
		p.Config = config.Default()
	}
	return fx.Module("app",
		fx.Supply(p),
		fx.Provide(
			provideLogger,
			provideBus,
			provideStateMachine,
			provideLock,
			provideStore,
			provideSessionStore,
			provideAPI,
			provideNotifier,
			provideClient,
			providePoller,
			provideDevice,
			provideRecorder,
			provideAttacher,
			provideCaller,
			provideReleaser,
			provideControlService,
			provideControlServer,
		),
		fx.Invoke(registerLifecycle),
	)
}

func provideLogger(p Params) (*zap.Logger, error) {
	path := p.LogPath
	if path == "" {
		path = profile.LogPath(p.Profile)
	}
	return logging.New(path, p.Profile, p.Config.LogLevel)
}

func provideBus() *bus.Bus {
	return bus.New()
}

func provideStateMachine(b *bus.Bus) *status.Machine {
	return status.NewMachine(b)
}

func provideLock(p Params, logger *zap.Logger) (*lock.Lock, error) {
	if err := profile.EnsureDir(p.Profile); err != nil {
		return nil, err
	}
	logger.Info("acquiring profile lock", zap.String("profile", p.Profile), zap.String("mode", p.Mode))
	l, err := lock.Acquire(profile.Dir(p.Profile), p.Mode)
	if err != nil {
		return nil, err
	}
	logger.Info("profile lock acquired")
	return l, nil
}

// provideStore depends on the lock so the database is never opened by a
// second process.
func provideStore(p Params, _ *lock.Lock, logger *zap.Logger) (*store.DB, error) {
	dbPath := profile.DBPath(p.Profile)
	db, err := store.Open(dbPath)
	if err != nil {
		return nil, err
	}
	result, err := db.Migrate()
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	if result.Changed {
		logger.Info("migrations applied", zap.Uint("version", result.Version))
	} else {
		logger.Info("migrations up to date", zap.Uint("version", result.Version))
	}
	logger.Info("store initialized", zap.String("path", db.Path()))
	return db, nil
}

func provideSessionStore(db *store.DB, logger *zap.Logger) *session.Store {
	return session.NewStore(db, logger)
}

func provideAPI(p Params, logger *zap.Logger) *api.Client {
	c := p.Config.API
	return api.New(api.Config{
		BaseURL: c.BaseURL,
		Endpoints: api.Endpoints{
			Auth:      c.Auth,
			Chats:     c.Chats,
			Messages:  c.Messages,
			Contacts:  c.Contacts,
			Favorites: c.Favorites,
			Calls:     c.Calls,
		},
		Timeout: c.Timeout.Duration,
	}, p.HTTPClient, logger)
}

func provideNotifier(b *bus.Bus) *notify.Notifier {
	return notify.New(b, notify.DefaultTTL)
}

func provideClient(p Params, a *api.Client, s *session.Store, m *status.Machine, b *bus.Bus, n *notify.Notifier, logger *zap.Logger) *client.Client {
	return client.New(a, s, m, b, n, client.Options{
		GlobalChannelID: p.Config.GlobalChannelID,
		AdminPhrase:     p.Config.AdminPhrase,
	}, logger)
}

func providePoller(p Params, c *client.Client, b *bus.Bus, logger *zap.Logger) *poller.Poller {
	return poller.New(c, b, p.Config.PollInterval.Duration, logger)
}

// provideDevice returns the single guarded capture device shared by the
// recorder and the caller.
func provideDevice(p Params) *capture.Exclusive {
	c := p.Config.Capture
	if len(c.AudioCommand) == 0 && len(c.VideoCommand) == 0 {
		return capture.NewExclusive(capture.Unavailable{})
	}
	return capture.NewExclusive(&capture.CommandDevice{
		AudioCommand: c.AudioCommand,
		AudioMime:    c.AudioMime,
		VideoCommand: c.VideoCommand,
		VideoMime:    c.VideoMime,
	})
}

func provideRecorder(d *capture.Exclusive, c *client.Client, n *notify.Notifier, b *bus.Bus, logger *zap.Logger) *capture.Recorder {
	return capture.NewRecorder(d, c, n, b, logger)
}

func provideAttacher(c *client.Client, n *notify.Notifier) *capture.Attacher {
	return capture.NewAttacher(c, n)
}

func provideCaller(d *capture.Exclusive, c *client.Client, n *notify.Notifier, b *bus.Bus, logger *zap.Logger) *capture.Caller {
	return capture.NewCaller(d, c, n, b, logger)
}

func provideReleaser(r *capture.Recorder, c *capture.Caller, b *bus.Bus) *capture.Releaser {
	return capture.NewReleaser(r, c, b)
}

func provideControlService(p Params, c *client.Client, pl *poller.Poller) *control.Service {
	return control.NewService(p.Profile, c, pl)
}

func provideControlServer(p Params, svc *control.Service, logger *zap.Logger) (*control.Server, error) {
	socketPath := p.SocketPath
	if socketPath == "" {
		socketPath = profile.SocketPath(p.Profile)
	}
	return control.NewServer(socketPath, svc, logger)
}

func registerLifecycle(lc fx.Lifecycle, srv *control.Server, lk *lock.Lock, db *store.DB, c *client.Client, pl *poller.Poller, rel *capture.Releaser, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			// Poller and releaser subscribe before the session can change.
			pl.Start(context.Background())
			rel.Start(context.Background())

			go func() {
				if err := srv.Start(); err != nil {
					logger.Error("control server error", zap.Error(err))
				}
			}()

			if !c.Restore(context.Background()) {
				logger.Info("no stored session, login required")
			}
			return nil
		},
		OnStop: func(ctx context.Context) error {
			rel.Stop()
			pl.Stop()
			c.Close()
			srv.Stop(ctx)
			if err := db.Close(); err != nil {
				logger.Warn("error closing store", zap.Error(err))
			}
			if err := lk.Release(); err != nil {
				logger.Warn("error releasing lock", zap.Error(err))
			}
			logger.Info("client stopped")
			_ = logger.Sync()
			return nil
		},
	})
}
