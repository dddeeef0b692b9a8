package output

import (
	"context"

	"checkin-agent/internal/domain/entity"
)

// BrowserFactory opens isolated browsing sessions. Sessions never share
// cookies or history.
type BrowserFactory interface {
	NewSession(ctx context.Context) (BrowserPort, error)
	Close()
}

// ElementFinder probes the current page once, without waiting. A missing
// element is reported as entity.ErrNotFound.
type ElementFinder interface {
	Find(ctx context.Context, q entity.Query) (ElementHandle, error)
}

type BrowserPort interface {
	ElementFinder

	Navigate(ctx context.Context, url string) error
	CurrentURL(ctx context.Context) (string, error)
	ClickAt(ctx context.Context, x, y float64) error
	Eval(ctx context.Context, script string) (string, error)
	HTML(ctx context.Context) (string, error)
	Screenshot(ctx context.Context) (*entity.Screenshot, error)

	Close()
}

type ElementHandle interface {
	Text(ctx context.Context) (string, error)
	Attribute(ctx context.Context, name string) (*string, error)
	Visible(ctx context.Context) (bool, error)
	Fill(ctx context.Context, text string) error
	// DispatchClick fires a DOM click event on the element instead of
	// moving the mouse, so overlays cannot swallow it.
	DispatchClick(ctx context.Context) error
}
