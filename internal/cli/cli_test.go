package cli

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/infrastructure/env"
	"checkin-agent/internal/infrastructure/storage/sqlite"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccounts_Credentials(t *testing.T) {
	tests := []struct {
		name    string
		in      Accounts
		want    []entity.Credential
		wantErr bool
	}{
		{
			name: "List wins",
			in:   Accounts{List: "a@x.com:p1,b@y.com:p2", Email: "c@z.com", Password: "p3"},
			want: []entity.Credential{{Identifier: "a@x.com", Secret: "p1"}, {Identifier: "b@y.com", Secret: "p2"}},
		},
		{
			name: "Fallback to single pair",
			in:   Accounts{List: "garbage", Email: " c@z.com ", Password: " p3 "},
			want: []entity.Credential{{Identifier: "c@z.com", Secret: "p3"}},
		},
		{
			name:    "Nothing usable",
			in:      Accounts{List: "nocolon", Email: "c@z.com"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.in.Credentials()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, entity.ErrConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func clearAccountEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"LEAFLOW_ACCOUNTS", "LEAFLOW_EMAIL", "LEAFLOW_PASSWORD", "CHECKIN_PROFILE"} {
		t.Setenv(k, "")
	}
}

func TestRun_NoAccountsIsConfigurationError(t *testing.T) {
	clearAccountEnv(t)

	err := Run(context.Background(), []string{"checkin", "--log-dir", ""}, env.Result{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrConfiguration))
}

func TestRun_UnreadableProfile(t *testing.T) {
	clearAccountEnv(t)

	err := Run(context.Background(), []string{
		"checkin",
		"--log-dir", "",
		"--accounts", "a@x.com:p1",
		"--profile", filepath.Join(t.TempDir(), "missing.yaml"),
	}, env.Result{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrConfiguration))
}

func TestRun_BadLogLevel(t *testing.T) {
	clearAccountEnv(t)

	err := Run(context.Background(), []string{"checkin", "--log-dir", "", "--log-level", "loud"}, env.Result{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, entity.ErrConfiguration))
}

func TestPrintHistory(t *testing.T) {
	ctx := context.Background()
	batch := &Batch{HistoryDB: filepath.Join(t.TempDir(), "history.db")}

	var buf bytes.Buffer
	require.NoError(t, printHistory(ctx, &buf, batch, 5))
	assert.Contains(t, buf.String(), "No runs recorded yet.")

	db, err := sqlite.Open(batch.HistoryDB)
	require.NoError(t, err)
	report := entity.NewReport(time.Now().Add(-time.Minute), 1)
	report.Add(entity.NewOutcome(entity.Credential{Identifier: "alice@example.com", Secret: "s"},
		entity.OutcomeAlreadyDone, "already done today", "3元"))
	report.FinishedAt = time.Now()
	require.NoError(t, sqlite.NewHistoryRepo(db).Record(ctx, report))
	require.NoError(t, db.Close())

	buf.Reset()
	require.NoError(t, printHistory(ctx, &buf, batch, 5))
	assert.Contains(t, buf.String(), "ali***@example.com")
	assert.Contains(t, buf.String(), "1/1")
	assert.NotContains(t, buf.String(), "alice")
}

func TestPrintHistory_RequiresDatabase(t *testing.T) {
	err := printHistory(context.Background(), &bytes.Buffer{}, &Batch{}, 5)
	assert.True(t, errors.Is(err, entity.ErrConfiguration))
}

func TestPrintLastOutcome(t *testing.T) {
	ctx := context.Background()
	batch := &Batch{HistoryDB: filepath.Join(t.TempDir(), "history.db")}

	var buf bytes.Buffer
	require.NoError(t, printLastOutcome(ctx, &buf, batch, "ali***@example.com"))
	assert.Contains(t, buf.String(), "No outcome recorded for ali***@example.com.")

	db, err := sqlite.Open(batch.HistoryDB)
	require.NoError(t, err)
	alice := entity.Credential{Identifier: "alice@example.com", Secret: "s"}
	report := entity.NewReport(time.Now(), 1)
	report.Add(entity.FailedOutcome(alice, entity.ErrLoginTimeout))
	report.FinishedAt = time.Now()
	require.NoError(t, sqlite.NewHistoryRepo(db).Record(ctx, report))
	require.NoError(t, db.Close())

	buf.Reset()
	require.NoError(t, printLastOutcome(ctx, &buf, batch, "ali***@example.com"))
	assert.Contains(t, buf.String(), "❌ ali***@example.com")
	assert.Contains(t, buf.String(), "reason: login_timeout")
}

func TestPrintLastOutcome_RequiresDatabase(t *testing.T) {
	err := printLastOutcome(context.Background(), &bytes.Buffer{}, &Batch{}, "a***")
	assert.True(t, errors.Is(err, entity.ErrConfiguration))
}
