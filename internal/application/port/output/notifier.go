package output

import (
	"context"

	"checkin-agent/internal/domain/entity"
)

type Notifier interface {
	Name() string
	Notify(ctx context.Context, report *entity.Report) error
}

// ReportRecorder persists or exports a finished report.
type ReportRecorder interface {
	Record(ctx context.Context, report *entity.Report) error
}
