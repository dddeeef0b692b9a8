package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/infrastructure/notify"
	"checkin-agent/internal/infrastructure/notify/console"
	"checkin-agent/internal/infrastructure/profile"
	"checkin-agent/internal/infrastructure/storage/sqlite"

	"github.com/urfave/cli/v3"
)

// historyCommand prints the most recent runs recorded in the history
// database.
func historyCommand(batch *Batch) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recently recorded runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Number of runs to show",
				Value:   5,
			},
			&cli.StringFlag{
				Name:  "account",
				Usage: "Show only the last outcome of this masked account (e.g. ali***@example.com)",
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			if account := c.String("account"); account != "" {
				return printLastOutcome(ctx, os.Stdout, batch, account)
			}
			return printHistory(ctx, os.Stdout, batch, int(c.Int("limit")))
		},
	}
}

func openHistory(batch *Batch) (*sqlite.DB, error) {
	if batch.HistoryDB == "" {
		return nil, fmt.Errorf("%w: --history-db is not set", entity.ErrConfiguration)
	}
	return sqlite.Open(batch.HistoryDB)
}

func printHistory(ctx context.Context, w io.Writer, batch *Batch, limit int) error {
	p, err := profile.Load(batch.Profile)
	if err != nil {
		return err
	}

	db, err := openHistory(batch)
	if err != nil {
		return err
	}
	defer db.Close()

	reports, err := sqlite.NewHistoryRepo(db).Recent(ctx, limit)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		fmt.Fprintln(w, "No runs recorded yet.")
		return nil
	}

	out := console.NewWithWriter(w, p.DisplayName())
	for _, r := range reports {
		if err := out.Notify(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// printLastOutcome looks an account up by its masked identifier. Accounts
// that mask to the same string share one history.
func printLastOutcome(ctx context.Context, w io.Writer, batch *Batch, account string) error {
	db, err := openHistory(batch)
	if err != nil {
		return err
	}
	defer db.Close()

	o, err := sqlite.NewHistoryRepo(db).LastOutcome(ctx, account)
	if err != nil {
		return err
	}
	if o == nil {
		fmt.Fprintf(w, "No outcome recorded for %s.\n", account)
		return nil
	}

	fmt.Fprintf(w, "%s %s  %s\n", notify.StatusIcon(*o), o.Account, o.Message)
	fmt.Fprintf(w, "   balance: %s  kind: %s", o.Balance, o.Kind)
	if o.Reason != "" {
		fmt.Fprintf(w, "  reason: %s", o.Reason)
	}
	fmt.Fprintln(w)
	return nil
}
