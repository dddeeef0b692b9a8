package rod

import (
	"context"
	"fmt"
	"time"

	"checkin-agent/internal/application/port/output"

	"github.com/go-rod/rod"
)

const setValueJS = `(v) => {
	this.focus();
	this.value = v;
	this.dispatchEvent(new Event('input', { bubbles: true }));
	this.dispatchEvent(new Event('change', { bubbles: true }));
}`

var _ output.ElementHandle = (*Element)(nil)

type Element struct {
	el      *rod.Element
	timeout time.Duration
}

func (e *Element) with(ctx context.Context) *rod.Element {
	return e.el.Context(ctx).Timeout(e.timeout)
}

func (e *Element) Text(ctx context.Context) (string, error) {
	text, err := e.with(ctx).Text()
	if err != nil {
		return "", fmt.Errorf("failed to read text: %w", err)
	}
	return text, nil
}

func (e *Element) Attribute(ctx context.Context, name string) (*string, error) {
	v, err := e.with(ctx).Attribute(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read attribute %s: %w", name, err)
	}
	return v, nil
}

func (e *Element) Visible(ctx context.Context) (bool, error) {
	return e.with(ctx).Visible()
}

// Fill types text like a user. Inputs that reject synthetic typing get the
// value assigned from script instead.
func (e *Element) Fill(ctx context.Context, text string) error {
	el := e.with(ctx)

	err := el.SelectAllText()
	if err == nil {
		err = el.Input(text)
	}
	if err == nil {
		return nil
	}

	if _, jsErr := e.with(ctx).Eval(setValueJS, text); jsErr != nil {
		return fmt.Errorf("input failed (%v) and script fallback failed: %w", err, jsErr)
	}
	return nil
}

func (e *Element) DispatchClick(ctx context.Context) error {
	if _, err := e.with(ctx).Eval(`() => this.click()`); err != nil {
		return fmt.Errorf("click failed: %w", err)
	}
	return nil
}
