// Package telegram delivers reports through the Telegram Bot API.
package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"
	"unicode/utf8"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/infrastructure/notify"
)

const (
	DefaultAPIBase = "https://api.telegram.org"
	// Telegram rejects messages over 4096 characters.
	maxMessageLen  = 4000
	requestTimeout = 10 * time.Second
)

var _ output.Notifier = (*Notifier)(nil)

type Notifier struct {
	token   string
	chatID  string
	title   string
	apiBase string
	client  *http.Client
	logger  output.LoggerPort
}

type Option func(*Notifier)

// WithAPIBase points the notifier at another Bot API host.
func WithAPIBase(base string) Option {
	return func(n *Notifier) { n.apiBase = base }
}

func WithHTTPClient(c *http.Client) Option {
	return func(n *Notifier) { n.client = c }
}

func New(token, chatID, title string, logger output.LoggerPort, opts ...Option) *Notifier {
	n := &Notifier{
		token:   token,
		chatID:  chatID,
		title:   title,
		apiBase: DefaultAPIBase,
		client:  &http.Client{Timeout: requestTimeout},
		logger:  logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

func (n *Notifier) Name() string { return "telegram" }

func (n *Notifier) Notify(ctx context.Context, report *entity.Report) error {
	// the limit counts characters after entity parsing, so cut before escaping
	plain := notify.Render(report, n.title)
	if count := utf8.RuneCountInString(plain); count > maxMessageLen {
		n.logger.Warn("Telegram message truncated", "length", count, "limit", maxMessageLen)
		plain = truncate(plain, maxMessageLen)
	}

	payload := map[string]any{
		"chat_id":    n.chatID,
		"text":       html.EscapeString(plain),
		"parse_mode": "HTML",
	}

	status, body, err := n.send(ctx, payload)
	if err != nil {
		return fmt.Errorf("%w: telegram: %w", entity.ErrNotificationDelivery, err)
	}
	if status == http.StatusOK {
		n.logger.Info("Telegram notification sent", "chat", n.chatID)
		return nil
	}

	if status == http.StatusBadRequest {
		n.logger.Warn("Telegram rejected HTML message, retrying as plain text", "body", body)
		delete(payload, "parse_mode")
		payload["text"] = plain

		status, body, err = n.send(ctx, payload)
		if err != nil {
			return fmt.Errorf("%w: telegram plain text retry: %w", entity.ErrNotificationDelivery, err)
		}
		if status == http.StatusOK {
			n.logger.Info("Telegram notification sent as plain text", "chat", n.chatID)
			return nil
		}
	}

	return fmt.Errorf("%w: telegram API error: %d %s", entity.ErrNotificationDelivery, status, body)
}

func (n *Notifier) send(ctx context.Context, payload map[string]any) (int, string, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return 0, "", fmt.Errorf("marshal payload: %w", err)
	}

	// the URL embeds the bot token; never log or wrap it
	url := fmt.Sprintf("%s/bot%s/sendMessage", n.apiBase, n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return 0, "", errors.New("build request failed")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return 0, "", fmt.Errorf("request failed: %w", redact(err))
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	return resp.StatusCode, string(body), nil
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "\n…"
}
