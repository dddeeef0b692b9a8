// Package console prints the report to the terminal.
package console

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/infrastructure/notify"

	"github.com/fatih/color"
)

var _ output.Notifier = (*Notifier)(nil)

type Notifier struct {
	out   io.Writer
	title string
}

func New(title string) *Notifier {
	return NewWithWriter(os.Stdout, title)
}

func NewWithWriter(out io.Writer, title string) *Notifier {
	return &Notifier{out: out, title: title}
}

func (n *Notifier) Name() string { return "console" }

func (n *Notifier) Notify(_ context.Context, report *entity.Report) error {
	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	dim := color.New(color.Faint)

	cyan.Fprintf(n.out, "\n━━━ %s daily check-in: %s ━━━\n", n.title, report.Summary())

	for i, o := range report.Outcomes {
		line := green
		if !o.Succeeded {
			line = red
		}
		line.Fprintf(n.out, "%s %d. %s  %s\n", notify.StatusIcon(o), i+1, o.Account, o.Message)
		dim.Fprintf(n.out, "   balance: %s  took: %s", o.Balance, o.Duration.Round(time.Millisecond))
		if o.Reason != "" {
			dim.Fprintf(n.out, "  reason: %s", o.Reason)
		}
		fmt.Fprintln(n.out)
	}

	if !report.FinishedAt.IsZero() {
		dim.Fprintf(n.out, "Finished in %s\n", report.FinishedAt.Sub(report.StartedAt).Round(time.Second))
	}
	return nil
}
