package cli

import (
	"fmt"
	"time"

	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/infrastructure/browser/rod"
	"checkin-agent/internal/infrastructure/logger"

	"github.com/urfave/cli/v3"
)

// Accounts holds the raw credential configuration.
type Accounts struct {
	List     string
	Email    string
	Password string
}

func (a *Accounts) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "accounts",
			Usage:       "Accounts as id1:secret1,id2:secret2 (identifiers must not contain ':')",
			Category:    "Accounts",
			Sources:     cli.EnvVars("LEAFLOW_ACCOUNTS"),
			Destination: &a.List,
		},
		&cli.StringFlag{
			Name:        "email",
			Usage:       "Single account identifier, used when --accounts yields nothing",
			Category:    "Accounts",
			Sources:     cli.EnvVars("LEAFLOW_EMAIL"),
			Destination: &a.Email,
		},
		&cli.StringFlag{
			Name:        "password",
			Usage:       "Single account secret",
			Category:    "Accounts",
			Sources:     cli.EnvVars("LEAFLOW_PASSWORD"),
			Destination: &a.Password,
		},
	}
}

// Credentials resolves the account list. The multi-account form wins; the
// single pair is the fallback.
func (a *Accounts) Credentials() ([]entity.Credential, error) {
	if creds := entity.ParseCredentials(a.List); len(creds) > 0 {
		return creds, nil
	}

	if id, secret := trim(a.Email), trim(a.Password); id != "" && secret != "" {
		return []entity.Credential{{Identifier: id, Secret: secret}}, nil
	}

	return nil, fmt.Errorf("%w: no valid accounts, set LEAFLOW_ACCOUNTS or LEAFLOW_EMAIL and LEAFLOW_PASSWORD", entity.ErrConfiguration)
}

type Notify struct {
	TelegramToken  string
	TelegramChatID string
	SlackToken     string
	SlackChannel   string
}

func (n *Notify) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "telegram-bot-token",
			Usage:       "Telegram bot token",
			Category:    "Notification",
			Sources:     cli.EnvVars("TELEGRAM_BOT_TOKEN"),
			Destination: &n.TelegramToken,
		},
		&cli.StringFlag{
			Name:        "telegram-chat-id",
			Usage:       "Telegram chat receiving the report",
			Category:    "Notification",
			Sources:     cli.EnvVars("TELEGRAM_CHAT_ID"),
			Destination: &n.TelegramChatID,
		},
		&cli.StringFlag{
			Name:        "slack-bot-token",
			Usage:       "Slack bot token",
			Category:    "Notification",
			Sources:     cli.EnvVars("SLACK_BOT_TOKEN"),
			Destination: &n.SlackToken,
		},
		&cli.StringFlag{
			Name:        "slack-channel",
			Usage:       "Slack channel receiving the report",
			Category:    "Notification",
			Sources:     cli.EnvVars("SLACK_CHANNEL"),
			Destination: &n.SlackChannel,
		},
	}
}

type Browser struct {
	Headless  bool
	Stealth   bool
	Bin       string
	UserAgent string
}

func (b *Browser) Flags() []cli.Flag {
	def := rod.DefaultConfig()
	return []cli.Flag{
		&cli.BoolFlag{
			Name:        "headless",
			Usage:       "Run Chrome without a window",
			Category:    "Browser",
			Value:       def.Headless,
			Sources:     cli.EnvVars("CHECKIN_HEADLESS"),
			Destination: &b.Headless,
		},
		&cli.BoolFlag{
			Name:        "stealth",
			Usage:       "Hide common automation fingerprints",
			Category:    "Browser",
			Value:       def.Stealth,
			Sources:     cli.EnvVars("CHECKIN_STEALTH"),
			Destination: &b.Stealth,
		},
		&cli.StringFlag{
			Name:        "chrome-bin",
			Usage:       "Chrome binary; downloaded automatically when empty",
			Category:    "Browser",
			Sources:     cli.EnvVars("CHECKIN_CHROME_BIN"),
			Destination: &b.Bin,
		},
		&cli.StringFlag{
			Name:        "user-agent",
			Usage:       "User agent override",
			Category:    "Browser",
			Value:       def.UserAgent,
			Sources:     cli.EnvVars("CHECKIN_USER_AGENT"),
			Destination: &b.UserAgent,
		},
	}
}

func (b *Browser) Config() rod.BrowserConfig {
	cfg := rod.DefaultConfig()
	cfg.Headless = b.Headless
	cfg.Stealth = b.Stealth
	cfg.Bin = b.Bin
	cfg.UserAgent = b.UserAgent
	return cfg
}

type Batch struct {
	Profile       string
	ArtifactsDir  string
	HistoryDB     string
	MetricsFile   string
	Timeout       time.Duration
	AccountPacing time.Duration
}

func (r *Batch) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profile",
			Usage:       "Site profile YAML; the built-in Leaflow profile when empty",
			Category:    "Run",
			Sources:     cli.EnvVars("CHECKIN_PROFILE"),
			Destination: &r.Profile,
		},
		&cli.StringFlag{
			Name:        "artifacts-dir",
			Usage:       "Directory for failure screenshots; empty disables them",
			Category:    "Run",
			Value:       "artifacts",
			Sources:     cli.EnvVars("CHECKIN_ARTIFACTS_DIR"),
			Destination: &r.ArtifactsDir,
		},
		&cli.StringFlag{
			Name:        "history-db",
			Usage:       "SQLite file recording every run; empty disables history",
			Category:    "Run",
			Sources:     cli.EnvVars("CHECKIN_HISTORY_DB"),
			Destination: &r.HistoryDB,
		},
		&cli.StringFlag{
			Name:        "metrics-file",
			Usage:       "Prometheus textfile written after each run; empty disables it",
			Category:    "Run",
			Sources:     cli.EnvVars("CHECKIN_METRICS_FILE"),
			Destination: &r.MetricsFile,
		},
		&cli.DurationFlag{
			Name:        "run-timeout",
			Usage:       "Upper bound for the whole batch",
			Category:    "Run",
			Value:       30 * time.Minute,
			Sources:     cli.EnvVars("CHECKIN_RUN_TIMEOUT"),
			Destination: &r.Timeout,
		},
		&cli.DurationFlag{
			Name:        "account-pacing",
			Usage:       "Pause between accounts; the profile value when zero",
			Category:    "Run",
			Sources:     cli.EnvVars("CHECKIN_ACCOUNT_PACING"),
			Destination: &r.AccountPacing,
		},
	}
}

type Logging struct {
	Level  string
	Format string
	Dir    string
}

func (l *Logging) Flags() []cli.Flag {
	def := logger.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Category:    "Logging",
			Value:       def.Level,
			Sources:     cli.EnvVars("CHECKIN_LOG_LEVEL"),
			Destination: &l.Level,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Terminal log format (console, json)",
			Category:    "Logging",
			Value:       def.Format,
			Sources:     cli.EnvVars("CHECKIN_LOG_FORMAT"),
			Destination: &l.Format,
		},
		&cli.StringFlag{
			Name:        "log-dir",
			Usage:       "Directory for JSON log files; empty disables file logging",
			Category:    "Logging",
			Value:       def.Dir,
			Sources:     cli.EnvVars("CHECKIN_LOG_DIR"),
			Destination: &l.Dir,
		},
	}
}

func (l *Logging) Config(name string) logger.Config {
	return logger.Config{
		Level:  l.Level,
		Format: l.Format,
		Dir:    l.Dir,
		Name:   name,
	}
}

func joinFlags(groups ...[]cli.Flag) []cli.Flag {
	var out []cli.Flag
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}
