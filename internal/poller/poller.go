package poller

import (
	"context"
	"sync"
	"time"

	"github.com/penguingram/messenger/internal/bus"
	"github.com/penguingram/messenger/internal/logging"
	"go.uber.org/zap"
)

// DefaultInterval is the refresh period when none is configured.
const DefaultInterval = 3 * time.Second

// Refresher re-fetches the active channel's messages.
type Refresher interface {
	RefreshMessages(ctx context.Context) error
}

// Poller keeps the active channel fresh. It follows channel selections on
// the bus and runs at most one ticker at a time.
type Poller struct {
	refresher Refresher
	bus       *bus.Bus
	interval  time.Duration
	logger    *zap.Logger
	cancel    context.CancelFunc
	done      chan struct{}

	mu       sync.Mutex
	target   string
	stopTick context.CancelFunc
	ticking  sync.WaitGroup
}

// New creates a Poller. A non-positive interval selects DefaultInterval.
func New(r Refresher, b *bus.Bus, interval time.Duration, logger *zap.Logger) *Poller {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Poller{
		refresher: r,
		bus:       b,
		interval:  interval,
		logger:    logging.OrNop(logger).Named("poller"),
	}
}

// Start subscribes to channel and session events.
func (p *Poller) Start(ctx context.Context) {
	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	// One subscription keeps a logout and a later selection in order.
	events, unsub := p.bus.SubscribeAny(16, bus.ChannelSelected, bus.SessionLoggedOut)

	go func() {
		defer close(p.done)
		defer unsub()
		for {
			select {
			case evt := <-events:
				switch evt.Kind {
				case bus.ChannelSelected:
					if id, ok := evt.Payload.(string); ok {
						p.follow(ctx, id)
					}
				case bus.SessionLoggedOut:
					p.follow(ctx, "")
				}
			case <-ctx.Done():
				p.follow(ctx, "")
				return
			}
		}
	}()
}

// Stop tears down the ticker and the subscriptions.
func (p *Poller) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()
	<-p.done
}

// Target returns the channel being polled, or "" when idle.
func (p *Poller) Target() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.target
}

// follow replaces the running ticker with one for target. An empty
// target only stops the ticker.
func (p *Poller) follow(ctx context.Context, target string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.stopTick != nil {
		p.stopTick()
		p.stopTick = nil
	}
	p.ticking.Wait()
	p.target = target
	if target == "" || ctx.Err() != nil {
		p.target = ""
		return
	}

	tickCtx, stop := context.WithCancel(ctx)
	p.stopTick = stop
	p.ticking.Add(1)
	go p.loop(tickCtx, target)
	p.logger.Debug("polling", zap.String("channel", target), zap.Duration("interval", p.interval))
}

func (p *Poller) loop(ctx context.Context, target string) {
	defer p.ticking.Done()
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := p.refresher.RefreshMessages(ctx); err != nil && ctx.Err() == nil {
				p.logger.Debug("refresh skipped", zap.String("channel", target), zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}
