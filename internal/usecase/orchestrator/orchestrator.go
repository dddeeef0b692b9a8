// Package orchestrator drives the per-account runner over every configured
// account and publishes the aggregated report.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"checkin-agent/internal/application/port/input"
	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/usecase/waiter"
)

var _ input.CheckinRunner = (*UseCase)(nil)

// PublishTimeout bounds report delivery. Publishing outlives the batch
// context so a timed-out or interrupted run is still reported.
const PublishTimeout = 30 * time.Second

type UseCase struct {
	runner    input.AccountRunner
	notifier  output.Notifier
	recorders []output.ReportRecorder
	pacing    time.Duration
	logger    output.LoggerPort
	now       func() time.Time
}

func New(
	runner input.AccountRunner,
	notifier output.Notifier,
	recorders []output.ReportRecorder,
	pacing time.Duration,
	logger output.LoggerPort,
) *UseCase {
	return &UseCase{
		runner:    runner,
		notifier:  notifier,
		recorders: recorders,
		pacing:    pacing,
		logger:    logger,
		now:       time.Now,
	}
}

// RunAll processes accounts strictly one after another, in order. A
// failure or panic in one account never prevents the next one from
// running. The notifier is called exactly once, after the last account.
func (uc *UseCase) RunAll(ctx context.Context, accounts []entity.Credential) *entity.Report {
	report := entity.NewReport(uc.now(), len(accounts))
	uc.logger.Info("Check-in run started", "accounts", len(accounts))

	for i, cred := range accounts {
		uc.logger.Info("Processing account", "index", i+1, "of", len(accounts), "account", cred.Masked())
		report.Add(uc.runOne(ctx, cred))

		if i < len(accounts)-1 {
			if err := waiter.Sleep(ctx, uc.pacing); err != nil {
				uc.logger.Warn("Pacing delay interrupted", "error", err)
			}
		}
	}

	report.FinishedAt = uc.now()
	uc.logger.Info("Check-in run finished", "succeeded", report.Succeeded(), "total", report.Total(),
		"elapsed", report.FinishedAt.Sub(report.StartedAt))

	uc.publish(ctx, report)
	return report
}

func (uc *UseCase) runOne(ctx context.Context, cred entity.Credential) (out entity.ActionOutcome) {
	start := uc.now()
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("account runner panicked: %v", r)
			uc.logger.Error("Account runner panicked", "account", cred.Masked(), "panic", r)
			out = entity.FailedOutcome(cred, err)
			out.Duration = uc.now().Sub(start)
		}
	}()

	out, err := uc.runner.Run(ctx, cred)
	if err != nil {
		duration := out.Duration
		out = entity.FailedOutcome(cred, err)
		out.Duration = duration
	}
	return out
}

// publish never fails the run; sinks only log their errors.
func (uc *UseCase) publish(ctx context.Context, report *entity.Report) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), PublishTimeout)
	defer cancel()

	if uc.notifier != nil {
		if err := uc.notifier.Notify(ctx, report); err != nil {
			uc.logger.Error("Report notification failed", "notifier", uc.notifier.Name(), "error", err)
		}
	}

	for _, rec := range uc.recorders {
		if err := rec.Record(ctx, report); err != nil {
			uc.logger.Error("Report recording failed", "error", err)
		}
	}
}
