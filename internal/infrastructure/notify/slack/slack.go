// Package slack posts reports to a Slack channel.
package slack

import (
	"context"
	"fmt"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/infrastructure/notify"

	"github.com/slack-go/slack"
)

var _ output.Notifier = (*Notifier)(nil)

type Notifier struct {
	client  *slack.Client
	channel string
	title   string
	logger  output.LoggerPort
}

func New(token, channel, title string, logger output.LoggerPort, opts ...slack.Option) *Notifier {
	return &Notifier{
		client:  slack.New(token, opts...),
		channel: channel,
		title:   title,
		logger:  logger,
	}
}

func (n *Notifier) Name() string { return "slack" }

func (n *Notifier) Notify(ctx context.Context, report *entity.Report) error {
	text := notify.Render(report, n.title)

	channel, ts, err := n.client.PostMessageContext(ctx, n.channel,
		slack.MsgOptionText(text, false),
		slack.MsgOptionDisableLinkUnfurl(),
	)
	if err != nil {
		return fmt.Errorf("%w: slack: %w", entity.ErrNotificationDelivery, err)
	}

	n.logger.Info("Slack notification sent", "channel", channel, "ts", ts)
	return nil
}
