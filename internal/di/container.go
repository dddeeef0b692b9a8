package di

import (
	"context"
	"fmt"
	"time"

	"checkin-agent/internal/application/port/input"
	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/application/service"
	"checkin-agent/internal/infrastructure/browser/rod"
	"checkin-agent/internal/infrastructure/metrics"
	"checkin-agent/internal/infrastructure/notify/console"
	"checkin-agent/internal/infrastructure/notify/slack"
	"checkin-agent/internal/infrastructure/notify/telegram"
	"checkin-agent/internal/infrastructure/profile"
	"checkin-agent/internal/infrastructure/storage/sqlite"
	"checkin-agent/internal/usecase/orchestrator"
	"checkin-agent/internal/usecase/session"
)

type Container struct {
	Browser output.BrowserFactory
	Logger  output.LoggerPort
	Runner  input.CheckinRunner

	history *sqlite.DB
}

type Config struct {
	Profile *profile.Profile
	Browser rod.BrowserConfig

	TelegramToken  string
	TelegramChatID string
	SlackToken     string
	SlackChannel   string

	ArtifactsDir string
	HistoryDB    string
	MetricsFile  string
	// AccountPacing overrides the profile's pause between accounts when set.
	AccountPacing time.Duration
}

// NewContainer launches the browser and wires every collaborator. The
// logger is owned by the caller.
func NewContainer(ctx context.Context, cfg Config, log output.LoggerPort) (*Container, error) {
	browser, err := rod.NewFactory(ctx, cfg.Browser, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create browser: %w", err)
	}

	c := &Container{
		Browser: browser,
		Logger:  log,
	}

	var recorders []output.ReportRecorder
	if cfg.HistoryDB != "" {
		db, err := sqlite.Open(cfg.HistoryDB)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to open history db: %w", err)
		}
		c.history = db
		recorders = append(recorders, sqlite.NewHistoryRepo(db))
	}
	if cfg.MetricsFile != "" {
		recorders = append(recorders, metrics.NewTextfileRecorder(cfg.MetricsFile, cfg.Profile.Site))
	}

	agent := session.New(browser, cfg.Profile.SessionConfig(cfg.ArtifactsDir), log)

	pacing := cfg.Profile.Timings.AccountPacing.Std()
	if cfg.AccountPacing > 0 {
		pacing = cfg.AccountPacing
	}

	c.Runner = orchestrator.New(agent, newNotifiers(cfg, log), recorders, pacing, log)
	return c, nil
}

func newNotifiers(cfg Config, log output.LoggerPort) *service.NotifierRegistry {
	title := cfg.Profile.DisplayName()

	registry := service.NewNotifierRegistry(log)
	registry.Register(console.New(title))

	if cfg.TelegramToken != "" && cfg.TelegramChatID != "" {
		registry.Register(telegram.New(cfg.TelegramToken, cfg.TelegramChatID, title, log))
	} else {
		log.Info("Telegram not configured, skipping")
	}

	if cfg.SlackToken != "" && cfg.SlackChannel != "" {
		registry.Register(slack.New(cfg.SlackToken, cfg.SlackChannel, title, log))
	} else {
		log.Debug("Slack not configured, skipping")
	}

	return registry
}

func (c *Container) Close() {
	if c.Browser != nil {
		c.Browser.Close()
	}
	if c.history != nil {
		if err := c.history.Close(); err != nil {
			c.Logger.Warn("History db close failed", "error", err)
		}
	}
}
