package session

import (
	"context"
	"fmt"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/usecase/classifier"
	"checkin-agent/internal/usecase/locator"
)

var _ classifier.Control = (*actionControl)(nil)

// actionControl re-locates the element when the page re-renders it after
// the click.
type actionControl struct {
	el      output.ElementHandle
	finder  output.ElementFinder
	locator *locator.ElementLocator
	spec    entity.LocatorSpec
}

func (c *actionControl) Observe(ctx context.Context) (entity.Observation, error) {
	obs, err := observe(ctx, c.el)
	if err == nil {
		return obs, nil
	}

	el, ok := c.locator.Present(ctx, c.finder, c.spec)
	if !ok {
		return entity.Observation{}, fmt.Errorf("action control gone: %w", err)
	}
	c.el = el
	return observe(ctx, el)
}

func (c *actionControl) Click(ctx context.Context) error {
	return c.el.DispatchClick(ctx)
}

func observe(ctx context.Context, el output.ElementHandle) (entity.Observation, error) {
	label, err := el.Text(ctx)
	if err != nil {
		return entity.Observation{}, fmt.Errorf("read label: %w", err)
	}
	disabled, err := el.Attribute(ctx, "disabled")
	if err != nil {
		return entity.Observation{}, fmt.Errorf("read disabled attribute: %w", err)
	}
	return entity.Observation{Label: label, Disabled: disabled != nil}, nil
}
