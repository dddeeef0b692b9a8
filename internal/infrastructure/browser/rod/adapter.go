package rod

import (
	"context"
	"fmt"
	"time"

	"checkin-agent/internal/application/port/output"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultUserAgent  = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	defaultWindowSize = "1920,1080"
)

var _ output.BrowserFactory = (*Factory)(nil)

// Factory owns one Chrome process. Every session it opens lives in a
// separate incognito context, so accounts never share cookies or storage.
type Factory struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      BrowserConfig
	logger   output.LoggerPort
}

type BrowserConfig struct {
	Headless   bool
	NoSandbox  bool
	Bin        string
	UserAgent  string
	Stealth    bool
	SlowMotion time.Duration
	// Timeout bounds a single navigation or page operation.
	Timeout time.Duration
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:  true,
		NoSandbox: true,
		UserAgent: defaultUserAgent,
		Stealth:   true,
		Timeout:   defaultTimeout,
	}
}

func NewFactory(ctx context.Context, cfg BrowserConfig, logger output.LoggerPort) (*Factory, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	l := launcher.New().
		Context(ctx).
		Headless(cfg.Headless).
		NoSandbox(cfg.NoSandbox).
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("disable-blink-features", "AutomationControlled").
		Set("window-size", defaultWindowSize)
	if cfg.Bin != "" {
		l = l.Bin(cfg.Bin)
	}
	if cfg.UserAgent != "" {
		l = l.Set("user-agent", cfg.UserAgent)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if cfg.SlowMotion > 0 {
		browser = browser.SlowMotion(cfg.SlowMotion)
	}
	if err := browser.Connect(); err != nil {
		l.Kill()
		l.Cleanup()
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	logger.Info("Browser launched", "headless", cfg.Headless, "stealth", cfg.Stealth)

	return &Factory{
		browser:  browser,
		launcher: l,
		cfg:      cfg,
		logger:   logger,
	}, nil
}

func (f *Factory) NewSession(ctx context.Context) (output.BrowserPort, error) {
	incognito, err := f.browser.Incognito()
	if err != nil {
		return nil, fmt.Errorf("failed to create incognito context: %w", err)
	}

	var page *rod.Page
	if f.cfg.Stealth {
		page, err = stealth.Page(incognito)
	} else {
		page, err = incognito.Page(proto.TargetCreateTarget{URL: "about:blank"})
	}
	if err != nil {
		_ = incognito.Close()
		return nil, fmt.Errorf("failed to open page: %w", err)
	}

	if f.cfg.UserAgent != "" {
		if err := page.SetUserAgent(&proto.NetworkSetUserAgentOverride{UserAgent: f.cfg.UserAgent}); err != nil {
			f.logger.Warn("User agent override failed", "error", err)
		}
	}

	return &Session{
		context: incognito,
		page:    page,
		timeout: f.cfg.Timeout,
		logger:  f.logger,
	}, nil
}

func (f *Factory) Close() {
	if f.browser != nil {
		_ = f.browser.Close()
	}
	if f.launcher != nil {
		f.launcher.Kill()
		f.launcher.Cleanup()
	}
}
