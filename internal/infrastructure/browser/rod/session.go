package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"sync"
	"time"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/proto"
	"github.com/ysmood/gson"
)

const (
	idleWait           = 2 * time.Second
	maxScreenshotWidth = 1280
)

var ErrSessionClosed = errors.New("browser session closed")

var _ output.BrowserPort = (*Session)(nil)

// Session is one page in its own incognito browser context.
type Session struct {
	context *rod.Browser
	page    *rod.Page
	timeout time.Duration
	logger  output.LoggerPort

	mu     sync.Mutex
	closed bool
}

func (s *Session) p(ctx context.Context) (*rod.Page, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrSessionClosed
	}
	return s.page.Context(ctx).Timeout(s.timeout), nil
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	page, err := s.p(ctx)
	if err != nil {
		return err
	}
	if err := page.Navigate(url); err != nil {
		return fmt.Errorf("navigation to %s failed: %w", url, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("page %s did not load: %w", url, err)
	}
	// single-page apps keep fetching after load; settling is best effort
	_ = page.WaitIdle(idleWait)
	return nil
}

func (s *Session) CurrentURL(ctx context.Context) (string, error) {
	page, err := s.p(ctx)
	if err != nil {
		return "", err
	}
	info, err := page.Info()
	if err != nil {
		return "", fmt.Errorf("failed to read page info: %w", err)
	}
	return info.URL, nil
}

// Find probes the page once. Missing elements map to entity.ErrNotFound.
func (s *Session) Find(ctx context.Context, q entity.Query) (output.ElementHandle, error) {
	page, err := s.p(ctx)
	if err != nil {
		return nil, err
	}

	var (
		found bool
		el    *rod.Element
	)
	switch q.Kind {
	case entity.QueryCSS:
		found, el, err = page.Has(q.Value)
	case entity.QueryXPath:
		found, el, err = page.HasX(q.Value)
	case entity.QueryText:
		found, el, err = page.HasR(q.Value, q.Pattern)
	default:
		return nil, fmt.Errorf("unsupported query kind %q", q.Kind)
	}
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", q, err)
	}
	if !found {
		return nil, entity.ErrNotFound
	}
	return &Element{el: el, timeout: s.timeout}, nil
}

func (s *Session) ClickAt(ctx context.Context, x, y float64) error {
	page, err := s.p(ctx)
	if err != nil {
		return err
	}
	if err := page.Mouse.MoveTo(proto.Point{X: x, Y: y}); err != nil {
		return fmt.Errorf("mouse move failed: %w", err)
	}
	if err := page.Mouse.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("mouse click failed: %w", err)
	}
	return nil
}

func (s *Session) Eval(ctx context.Context, script string) (string, error) {
	page, err := s.p(ctx)
	if err != nil {
		return "", err
	}
	res, err := page.Eval(script)
	if err != nil {
		return "", fmt.Errorf("script failed: %w", err)
	}
	return res.Value.String(), nil
}

func (s *Session) HTML(ctx context.Context) (string, error) {
	page, err := s.p(ctx)
	if err != nil {
		return "", err
	}
	html, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("failed to get HTML: %w", err)
	}
	return html, nil
}

func (s *Session) Screenshot(ctx context.Context) (*entity.Screenshot, error) {
	page, err := s.p(ctx)
	if err != nil {
		return nil, err
	}

	imgBytes, err := page.Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > maxScreenshotWidth {
		img = imaging.Resize(img, maxScreenshotWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

// Close disposes the page and its incognito context. Safe to call twice.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true

	if err := s.page.Close(); err != nil {
		s.logger.Debug("Page close failed", "error", err)
	}
	if err := s.context.Close(); err != nil {
		s.logger.Debug("Browser context close failed", "error", err)
	}
}
