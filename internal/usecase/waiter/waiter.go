// Package waiter polls page state cooperatively until a condition holds.
package waiter

import (
	"context"
	"time"

	"checkin-agent/internal/application/port/output"
)

// Predicate reports whether the awaited page state has been reached. An
// error means the state could not be read right now (for example the page
// is mid-navigation) and is treated as "not yet".
type Predicate func(ctx context.Context) (bool, error)

const DefaultPollInterval = 250 * time.Millisecond

type PageWaiter struct {
	logger output.LoggerPort
}

func New(logger output.LoggerPort) *PageWaiter {
	return &PageWaiter{logger: logger}
}

// Until evaluates pred immediately and then every poll interval. It returns
// false when timeout elapses or ctx is done before pred holds.
func (w *PageWaiter) Until(ctx context.Context, pred Predicate, timeout, poll time.Duration) bool {
	if poll <= 0 {
		poll = DefaultPollInterval
	}

	deadline := time.NewTimer(timeout)
	defer deadline.Stop()

	ticker := time.NewTicker(poll)
	defer ticker.Stop()

	for {
		ok, err := pred(ctx)
		if err != nil {
			w.logger.Debug("Wait predicate not evaluable yet", "error", err)
		} else if ok {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-deadline.C:
			return false
		case <-ticker.C:
		}
	}
}

// Sleep pauses for d unless ctx is done first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}

	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
