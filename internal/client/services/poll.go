package services

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// DefaultPollInterval is how often email verification is re-checked.
const DefaultPollInterval = 2 * time.Second

// poller runs a check on a fixed period until it reports done. Canceling the
// context stops it; the context is checked again right before every check so
// no call is made after cancellation.
type poller struct {
	clock    clockwork.Clock
	interval time.Duration
}

func (p poller) run(ctx context.Context, check func(ctx context.Context) bool) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.Chan():
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		if check(ctx) {
			return nil
		}
	}
}
