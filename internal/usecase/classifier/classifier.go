// Package classifier decides whether the daily action is already done,
// performs it at most once when it is not, and verifies the result.
package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/usecase/waiter"
)

type Verdict string

const (
	VerdictDone       Verdict = "done"
	VerdictActionable Verdict = "actionable"
)

// Classify is a pure function of the observed control state. Rules are
// checked in order: a "done" label, then the disabled attribute.
func Classify(obs entity.Observation, doneVocabulary []string) Verdict {
	label := strings.ToLower(strings.TrimSpace(obs.Label))
	for _, word := range doneVocabulary {
		word = strings.ToLower(strings.TrimSpace(word))
		if word != "" && strings.Contains(label, word) {
			return VerdictDone
		}
	}
	if obs.Disabled {
		return VerdictDone
	}
	return VerdictActionable
}

// Control is the daily-action element as seen by the classifier.
type Control interface {
	Observe(ctx context.Context) (entity.Observation, error)
	Click(ctx context.Context) error
}

// RewardReader reads an optional reward value shown after the action.
type RewardReader func(ctx context.Context) (string, bool)

type Config struct {
	DoneVocabulary []string
	// SettleDelay is waited after the click before the first re-observation.
	SettleDelay time.Duration
	// SettleWindow bounds how long re-observation keeps polling for "done".
	SettleWindow time.Duration
	PollInterval time.Duration
}

type Result struct {
	Kind    entity.OutcomeKind
	Message string
}

type Classifier struct {
	cfg    Config
	waiter *waiter.PageWaiter
	logger output.LoggerPort
}

func New(cfg Config, w *waiter.PageWaiter, logger output.LoggerPort) *Classifier {
	return &Classifier{
		cfg:    cfg,
		waiter: w,
		logger: logger,
	}
}

const (
	MessageAlreadyDone   = "already done today"
	MessageJustCompleted = "completed"
)

// Resolve classifies the control, clicks it once if actionable, and
// classifies it again. A control that is already done is never clicked.
func (c *Classifier) Resolve(ctx context.Context, ctrl Control, reward RewardReader) (Result, error) {
	before, err := ctrl.Observe(ctx)
	if err != nil {
		return Result{}, fmt.Errorf("observe action control: %w", err)
	}

	if Classify(before, c.cfg.DoneVocabulary) == VerdictDone {
		c.logger.Info("Action already done", "label", before.Label, "disabled", before.Disabled)
		return Result{Kind: entity.OutcomeAlreadyDone, Message: MessageAlreadyDone}, nil
	}

	c.logger.Info("Action control is actionable, clicking", "label", before.Label)
	if err := ctrl.Click(ctx); err != nil {
		return Result{}, fmt.Errorf("click action control: %w", err)
	}

	if err := waiter.Sleep(ctx, c.cfg.SettleDelay); err != nil {
		return Result{}, err
	}

	after := before
	done := c.waiter.Until(ctx, func(ctx context.Context) (bool, error) {
		obs, err := ctrl.Observe(ctx)
		if err != nil {
			return false, err
		}
		after = obs
		return Classify(obs, c.cfg.DoneVocabulary) == VerdictDone, nil
	}, c.cfg.SettleWindow, c.cfg.PollInterval)

	if !done {
		return Result{}, fmt.Errorf("%w: control still reads %q (disabled=%t) after clicking",
			entity.ErrClickHadNoEffect, after.Label, after.Disabled)
	}

	msg := MessageJustCompleted
	if reward != nil {
		if value, ok := reward(ctx); ok {
			msg = fmt.Sprintf("%s, reward %s", msg, value)
		}
	}

	c.logger.Info("Action completed", "label", after.Label)
	return Result{Kind: entity.OutcomeJustCompleted, Message: msg}, nil
}
