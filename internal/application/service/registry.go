package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
)

var _ output.Notifier = (*NotifierRegistry)(nil)

// NotifierRegistry fans a report out to every registered sink. One sink
// failing does not stop delivery to the others.
type NotifierRegistry struct {
	notifiers []output.Notifier
	logger    output.LoggerPort
}

func NewNotifierRegistry(logger output.LoggerPort) *NotifierRegistry {
	return &NotifierRegistry{logger: logger}
}

func (r *NotifierRegistry) Register(n output.Notifier) {
	r.notifiers = append(r.notifiers, n)
}

func (r *NotifierRegistry) Name() string {
	names := make([]string, 0, len(r.notifiers))
	for _, n := range r.notifiers {
		names = append(names, n.Name())
	}
	return strings.Join(names, ",")
}

func (r *NotifierRegistry) Notify(ctx context.Context, report *entity.Report) error {
	var errs []error
	for _, n := range r.notifiers {
		if err := n.Notify(ctx, report); err != nil {
			r.logger.Warn("Notifier failed", "notifier", n.Name(), "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	if len(errs) == 0 {
		return nil
	}

	err := errors.Join(errs...)
	if !errors.Is(err, entity.ErrNotificationDelivery) {
		err = fmt.Errorf("%w: %w", entity.ErrNotificationDelivery, err)
	}
	return err
}
