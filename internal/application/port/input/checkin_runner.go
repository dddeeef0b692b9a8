package input

import (
	"context"

	"checkin-agent/internal/domain/entity"
)

// CheckinRunner runs the daily action for every configured account and
// always returns one outcome per account.
type CheckinRunner interface {
	RunAll(ctx context.Context, accounts []entity.Credential) *entity.Report
}

// AccountRunner processes a single account inside its own browser session.
type AccountRunner interface {
	Run(ctx context.Context, cred entity.Credential) (entity.ActionOutcome, error)
}
