// Package locator resolves logical page targets through ordered fallback
// queries.
package locator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/usecase/waiter"
)

type ElementLocator struct {
	waiter *waiter.PageWaiter
	logger output.LoggerPort
	poll   time.Duration
}

func New(w *waiter.PageWaiter, logger output.LoggerPort, poll time.Duration) *ElementLocator {
	if poll <= 0 {
		poll = waiter.DefaultPollInterval
	}
	return &ElementLocator{
		waiter: w,
		logger: logger,
		poll:   poll,
	}
}

// Resolve tries the candidates of spec in order. Each candidate may use at
// most timeout/len(candidates) before the next one is tried, so one stale
// selector cannot starve the rest. Only exhausting every candidate is an
// error.
func (l *ElementLocator) Resolve(ctx context.Context, finder output.ElementFinder, spec entity.LocatorSpec, timeout time.Duration) (output.ElementHandle, error) {
	if len(spec.Candidates) == 0 {
		return nil, fmt.Errorf("%w: %s has no candidates", entity.ErrNotFound, spec.Name)
	}

	share := timeout / time.Duration(len(spec.Candidates))

	for i, q := range spec.Candidates {
		var found output.ElementHandle
		ok := l.waiter.Until(ctx, func(ctx context.Context) (bool, error) {
			h, err := l.probe(ctx, finder, q, spec.Visible)
			if err != nil || h == nil {
				return false, err
			}
			found = h
			return true, nil
		}, share, l.poll)

		if ok {
			l.logger.Debug("Locator resolved", "target", spec.Name, "candidate", i, "query", q.String())
			return found, nil
		}
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("resolve %s: %w", spec.Name, err)
		}
		l.logger.Debug("Locator candidate missed", "target", spec.Name, "candidate", i, "query", q.String())
	}

	return nil, fmt.Errorf("%w: %s (%d candidates, %s)", entity.ErrNotFound, spec.Name, len(spec.Candidates), timeout)
}

// Present checks every candidate once, without waiting.
func (l *ElementLocator) Present(ctx context.Context, finder output.ElementFinder, spec entity.LocatorSpec) (output.ElementHandle, bool) {
	for _, q := range spec.Candidates {
		h, err := l.probe(ctx, finder, q, spec.Visible)
		if err == nil && h != nil {
			return h, true
		}
	}
	return nil, false
}

func (l *ElementLocator) probe(ctx context.Context, finder output.ElementFinder, q entity.Query, mustBeVisible bool) (output.ElementHandle, error) {
	h, err := finder.Find(ctx, q)
	if errors.Is(err, entity.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if mustBeVisible {
		visible, err := h.Visible(ctx)
		if err != nil {
			return nil, err
		}
		if !visible {
			return nil, nil
		}
	}

	return h, nil
}
