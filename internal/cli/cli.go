// Package cli defines the checkin command.
package cli

import (
	"context"
	"fmt"
	"strings"

	"checkin-agent/internal/di"
	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/infrastructure/env"
	"checkin-agent/internal/infrastructure/logger"
	"checkin-agent/internal/infrastructure/profile"

	"github.com/urfave/cli/v3"
)

const version = "1.0.0"

// Run parses args and executes one check-in batch. It returns an error only
// when the batch could not start; individual account failures are part of
// the report.
func Run(ctx context.Context, args []string, dotenv env.Result) error {
	var (
		accounts Accounts
		notify   Notify
		browser  Browser
		batch    Batch
		logging  Logging
	)

	cmd := &cli.Command{
		Name:    "checkin",
		Usage:   "Perform the daily check-in for every configured account",
		Version: version,
		Flags: joinFlags(
			accounts.Flags(),
			notify.Flags(),
			browser.Flags(),
			batch.Flags(),
			logging.Flags(),
		),
		Commands: []*cli.Command{
			historyCommand(&batch),
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			log, err := logger.NewLoggerAdapter(logging.Config(c.Name))
			if err != nil {
				return fmt.Errorf("%w: %w", entity.ErrConfiguration, err)
			}
			defer log.Close()

			log.Debug("Environment loaded", "app_env", dotenv.AppEnv, "files", dotenv.Loaded)

			p, err := profile.Load(batch.Profile)
			if err != nil {
				log.Error("Profile could not be loaded", "error", err)
				return err
			}

			creds, err := accounts.Credentials()
			if err != nil {
				log.Error("No accounts configured", "error", err)
				return err
			}
			log.Info("Accounts loaded", "count", len(creds), "site", p.Site)

			ctx, cancel := context.WithTimeout(ctx, batch.Timeout)
			defer cancel()

			container, err := di.NewContainer(ctx, di.Config{
				Profile:        p,
				Browser:        browser.Config(),
				TelegramToken:  notify.TelegramToken,
				TelegramChatID: notify.TelegramChatID,
				SlackToken:     notify.SlackToken,
				SlackChannel:   notify.SlackChannel,
				ArtifactsDir:   batch.ArtifactsDir,
				HistoryDB:      batch.HistoryDB,
				MetricsFile:    batch.MetricsFile,
				AccountPacing:  batch.AccountPacing,
			}, log)
			if err != nil {
				log.Error("Initialization failed", "error", err)
				return err
			}
			defer container.Close()

			report := container.Runner.RunAll(ctx, creds)
			log.Info("Batch complete", "summary", report.Summary())
			return nil
		},
	}

	return cmd.Run(ctx, args)
}

func trim(s string) string {
	return strings.TrimSpace(s)
}
