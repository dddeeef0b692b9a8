package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
)

var _ output.ReportRecorder = (*HistoryRepo)(nil)

// HistoryRepo records every finished report. Only masked account
// identifiers are stored.
type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Record(ctx context.Context, report *entity.Report) error {
	tx, err := r.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	const insertRun = `
		INSERT INTO runs (started_at, finished_at, total, succeeded)
		VALUES (?, ?, ?, ?)
	`
	res, err := tx.ExecContext(ctx, insertRun,
		formatTime(report.StartedAt), formatTime(report.FinishedAt),
		report.Total(), report.Succeeded(),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	runID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read run id: %w", err)
	}

	const insertOutcome = `
		INSERT INTO outcomes (run_id, position, account, kind, succeeded, message, balance, reason, duration_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	for i, o := range report.Outcomes {
		if _, err := tx.ExecContext(ctx, insertOutcome,
			runID, i, o.Account, string(o.Kind), boolToInt(o.Succeeded),
			o.Message, o.Balance, o.Reason, o.Duration.Milliseconds(),
		); err != nil {
			return fmt.Errorf("insert outcome %d of run %d: %w", i, runID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit run %d: %w", runID, err)
	}
	return nil
}

// Recent returns up to limit reports, newest first, with their outcomes in
// run order.
func (r *HistoryRepo) Recent(ctx context.Context, limit int) ([]*entity.Report, error) {
	const query = `
		SELECT id, started_at, finished_at
		FROM runs
		ORDER BY id DESC
		LIMIT ?
	`
	rows, err := r.db.conn.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	type runRow struct {
		id     int64
		report *entity.Report
	}
	var runs []runRow
	for rows.Next() {
		var id int64
		var started, finished string
		if err := rows.Scan(&id, &started, &finished); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan run: %w", err)
		}
		report := &entity.Report{}
		if report.StartedAt, err = parseTime(started); err != nil {
			rows.Close()
			return nil, fmt.Errorf("parse started_at of run %d: %w", id, err)
		}
		if report.FinishedAt, err = parseTime(finished); err != nil {
			rows.Close()
			return nil, fmt.Errorf("parse finished_at of run %d: %w", id, err)
		}
		runs = append(runs, runRow{id: id, report: report})
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	rows.Close()

	reports := make([]*entity.Report, 0, len(runs))
	for _, run := range runs {
		outcomes, err := r.outcomes(ctx, run.id)
		if err != nil {
			return nil, err
		}
		run.report.Outcomes = outcomes
		reports = append(reports, run.report)
	}
	return reports, nil
}

// LastOutcome returns the most recent outcome recorded for a masked
// account, or nil when there is none. Only masked identifiers are stored,
// so two accounts that mask alike (abc1@x.com, abc2@x.com) are not told
// apart here.
func (r *HistoryRepo) LastOutcome(ctx context.Context, account string) (*entity.ActionOutcome, error) {
	const query = `
		SELECT account, kind, succeeded, message, balance, reason, duration_ms
		FROM outcomes
		WHERE account = ?
		ORDER BY run_id DESC, position DESC
		LIMIT 1
	`
	o, err := scanOutcome(r.db.conn.QueryRowContext(ctx, query, account))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query last outcome: %w", err)
	}
	return o, nil
}

func (r *HistoryRepo) outcomes(ctx context.Context, runID int64) ([]entity.ActionOutcome, error) {
	const query = `
		SELECT account, kind, succeeded, message, balance, reason, duration_ms
		FROM outcomes
		WHERE run_id = ?
		ORDER BY position
	`
	rows, err := r.db.conn.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query outcomes of run %d: %w", runID, err)
	}
	defer rows.Close()

	var out []entity.ActionOutcome
	for rows.Next() {
		o, err := scanOutcome(rows)
		if err != nil {
			return nil, fmt.Errorf("scan outcome: %w", err)
		}
		out = append(out, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate outcomes: %w", err)
	}
	return out, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOutcome(s scanner) (*entity.ActionOutcome, error) {
	var o entity.ActionOutcome
	var kind string
	var succeeded int
	var durationMS int64

	if err := s.Scan(&o.Account, &kind, &succeeded, &o.Message, &o.Balance, &o.Reason, &durationMS); err != nil {
		return nil, err
	}

	o.Kind = entity.OutcomeKind(kind)
	o.Succeeded = succeeded != 0
	o.Duration = time.Duration(durationMS) * time.Millisecond
	return &o, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
