package metrics

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"checkin-agent/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func report(outcomes ...entity.ActionOutcome) *entity.Report {
	start := time.Unix(1_800_000_000, 0)
	r := entity.NewReport(start, len(outcomes))
	for _, o := range outcomes {
		r.Add(o)
	}
	r.FinishedAt = start.Add(90 * time.Second)
	return r
}

func TestTextfileRecorder_Record(t *testing.T) {
	path := filepath.Join(t.TempDir(), "textfile", "checkin.prom")
	rec := NewTextfileRecorder(path, "leaflow")

	ok := entity.NewOutcome(entity.Credential{Identifier: "alice@example.com"}, entity.OutcomeAlreadyDone, "done", "1元")
	ok.Duration = 3 * time.Second
	failed := entity.FailedOutcome(entity.Credential{Identifier: "bob@example.com"}, entity.ErrLoginTimeout)

	require.NoError(t, rec.Record(context.Background(), report(ok, failed)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `checkin_accounts{site="leaflow"} 2`)
	assert.Contains(t, text, `checkin_accounts_succeeded{site="leaflow"} 1`)
	assert.Contains(t, text, `checkin_last_run_timestamp_seconds{site="leaflow"} 1.80000009e+09`)
	assert.Contains(t, text, `checkin_last_run_duration_seconds{site="leaflow"} 90`)
	assert.Contains(t, text, `checkin_account_success{account="ali***@example.com",outcome="already_done",position="1",site="leaflow"} 1`)
	assert.Contains(t, text, `checkin_account_success{account="bob***@example.com",outcome="failed",position="2",site="leaflow"} 0`)
	assert.Contains(t, text, `checkin_account_duration_seconds{account="ali***@example.com",position="1",site="leaflow"} 3`)
	assert.Contains(t, text, `checkin_failures{reason="login_timeout",site="leaflow"} 1`)
	assert.NotContains(t, text, "alice@")
}

func TestTextfileRecorder_ReplacesPreviousRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkin.prom")
	rec := NewTextfileRecorder(path, "leaflow")
	ctx := context.Background()

	first := entity.FailedOutcome(entity.Credential{Identifier: "bob@example.com"}, entity.ErrClickHadNoEffect)
	require.NoError(t, rec.Record(ctx, report(first)))

	second := entity.NewOutcome(entity.Credential{Identifier: "carol@example.com"}, entity.OutcomeJustCompleted, "completed", "2元")
	require.NoError(t, rec.Record(ctx, report(second)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.NotContains(t, text, "bob***")
	assert.NotContains(t, text, "click_had_no_effect")
	assert.Contains(t, text, `account="car***@example.com"`)
}

func TestTextfileRecorder_SameMaskedAccountKeptApart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "checkin.prom")
	rec := NewTextfileRecorder(path, "leaflow")

	first := entity.NewOutcome(entity.Credential{Identifier: "abc1@x.com"}, entity.OutcomeAlreadyDone, "done", "1元")
	second := entity.FailedOutcome(entity.Credential{Identifier: "abc2@x.com"}, entity.ErrLoginTimeout)
	require.Equal(t, first.Account, second.Account)

	require.NoError(t, rec.Record(context.Background(), report(first, second)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	text := string(data)

	assert.Contains(t, text, `checkin_account_success{account="abc***@x.com",outcome="already_done",position="1",site="leaflow"} 1`)
	assert.Contains(t, text, `checkin_account_success{account="abc***@x.com",outcome="failed",position="2",site="leaflow"} 0`)
}
