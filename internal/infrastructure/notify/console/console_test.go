package console

import (
	"bytes"
	"context"
	"testing"
	"time"

	"checkin-agent/internal/domain/entity"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify(t *testing.T) {
	color.NoColor = true

	start := time.Date(2026, 1, 2, 8, 0, 0, 0, time.UTC)
	r := entity.NewReport(start, 2)
	done := entity.NewOutcome(entity.Credential{Identifier: "alice@example.com"}, entity.OutcomeJustCompleted, "completed", "5元")
	done.Duration = 1500 * time.Millisecond
	r.Add(done)
	r.Add(entity.FailedOutcome(entity.Credential{Identifier: "bob@example.com"}, entity.ErrClickHadNoEffect))
	r.FinishedAt = start.Add(42 * time.Second)

	var buf bytes.Buffer
	n := NewWithWriter(&buf, "Leaflow")

	require.NoError(t, n.Notify(context.Background(), r))

	out := buf.String()
	assert.Contains(t, out, "Leaflow daily check-in: 1/2")
	assert.Contains(t, out, "✅ 1. ali***@example.com  completed")
	assert.Contains(t, out, "balance: 5元  took: 1.5s")
	assert.Contains(t, out, "❌ 2. bob***@example.com  click had no effect")
	assert.Contains(t, out, "reason: click_had_no_effect")
	assert.Contains(t, out, "Finished in 42s")
	assert.Equal(t, "console", n.Name())
}
