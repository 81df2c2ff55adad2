package watchlistsync

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
)

// Poller refreshes a Store on a fixed interval.
type Poller struct {
	store    *Store
	interval time.Duration
	log      zerolog.Logger
}

// NewPoller creates a Poller that refreshes store every interval.
func NewPoller(store *Store, interval time.Duration, log zerolog.Logger) *Poller {
	return &Poller{store: store, interval: interval, log: log}
}

// Run refreshes until ctx is cancelled. A non-positive interval returns
// immediately. Failed refreshes are logged and retried on the next tick.
func (p *Poller) Run(ctx context.Context) {
	if p.interval <= 0 {
		return
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			err := p.store.Refresh(ctx)
			switch {
			case err == nil:
			case errors.Is(err, ErrNotAuthenticated):
				p.log.Debug().Msg("poll skipped: not authenticated")
			default:
				p.log.Warn().Err(err).Msg("poll refresh failed")
			}
		}
	}
}
