// Package notify renders a finished report into the text delivered by the
// notification sinks.
package notify

import (
	"fmt"
	"strings"
	"time"

	"checkin-agent/internal/domain/entity"
)

const dateLayout = "2006/01/02"

// Render produces the plain-text summary shared by every sink. Accounts
// appear masked, in run order.
func Render(report *entity.Report, title string) string {
	var b strings.Builder

	date := report.FinishedAt
	if date.IsZero() {
		date = time.Now()
	}

	fmt.Fprintf(&b, "🎁 %s daily check-in\n", title)
	fmt.Fprintf(&b, "📊 Succeeded: %s\n", report.Summary())
	fmt.Fprintf(&b, "📅 Date: %s\n", date.Format(dateLayout))

	for _, o := range report.Outcomes {
		b.WriteString("\n")
		fmt.Fprintf(&b, "Account: %s\n", o.Account)
		fmt.Fprintf(&b, "%s %s\n", StatusIcon(o), o.Message)
		fmt.Fprintf(&b, "💰 Balance: %s\n", o.Balance)
	}

	return b.String()
}

func StatusIcon(o entity.ActionOutcome) string {
	if o.Succeeded {
		return "✅"
	}
	return "❌"
}
