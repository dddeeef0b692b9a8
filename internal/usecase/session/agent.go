// Package session runs the login → daily action → balance flow for one
// account inside its own browser session.
package session

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"checkin-agent/internal/application/port/output"
	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/usecase/balance"
	"checkin-agent/internal/usecase/classifier"
	"checkin-agent/internal/usecase/locator"
	"checkin-agent/internal/usecase/pagedump"
	"checkin-agent/internal/usecase/waiter"
)

// artifactTimeout bounds failure artifact capture, which runs even when the
// session context is already done.
const artifactTimeout = 15 * time.Second

type Agent struct {
	browsers   output.BrowserFactory
	locator    *locator.ElementLocator
	waiter     *waiter.PageWaiter
	classifier *classifier.Classifier
	cfg        Config
	logger     output.LoggerPort
}

func New(browsers output.BrowserFactory, cfg Config, logger output.LoggerPort) *Agent {
	w := waiter.New(logger)
	return &Agent{
		browsers: browsers,
		locator:  locator.New(w, logger, cfg.Timings.PollInterval),
		waiter:   w,
		classifier: classifier.New(classifier.Config{
			DoneVocabulary: cfg.DoneVocabulary,
			SettleDelay:    cfg.Timings.SettleDelay,
			SettleWindow:   cfg.Timings.SettleWindow,
			PollInterval:   cfg.Timings.PollInterval,
		}, w, logger),
		cfg:    cfg,
		logger: logger,
	}
}

// run is the transient state of one account's session.
type run struct {
	*Agent

	cred          entity.Credential
	browser       output.BrowserPort
	state         State
	authenticated bool
	log           output.LoggerPort
}

// Run processes one account. The browser session is always closed before
// Run returns. On failure the returned outcome is already a failed outcome
// and err carries the cause.
func (a *Agent) Run(ctx context.Context, cred entity.Credential) (entity.ActionOutcome, error) {
	start := time.Now()
	log := a.logger.WithFields(map[string]any{"account": cred.Masked(), "site": a.cfg.Site})

	browser, err := a.browsers.NewSession(ctx)
	if err != nil {
		err = fmt.Errorf("open browser session: %w", err)
		log.Error("Session could not start", "error", err)
		out := entity.FailedOutcome(cred, err)
		out.Duration = time.Since(start)
		return out, err
	}
	defer browser.Close()

	r := &run{
		Agent:   a,
		cred:    cred,
		browser: browser,
		state:   StateFresh,
		log:     log,
	}

	out, err := r.execute(ctx)
	if err != nil {
		failedIn := r.state
		r.transition(StateFailed)
		log.Error("Account failed", "state", failedIn, "reason", entity.FailureReason(err), "error", err)
		r.saveArtifacts(ctx, failedIn)

		out = entity.FailedOutcome(cred, err)
		out.Duration = time.Since(start)
		return out, err
	}

	out.Duration = time.Since(start)
	log.Info("Account finished", "outcome", out.Kind, "balance", out.Balance, "duration", out.Duration)
	return out, nil
}

func (r *run) execute(ctx context.Context) (entity.ActionOutcome, error) {
	if err := r.openLoginSurface(ctx); err != nil {
		return entity.ActionOutcome{}, err
	}
	if err := r.authenticate(ctx); err != nil {
		return entity.ActionOutcome{}, err
	}

	res, err := r.attemptAction(ctx)
	if err != nil {
		return entity.ActionOutcome{}, err
	}

	amount := r.extractBalance(ctx)
	r.transition(StateReported)

	return entity.NewOutcome(r.cred, res.Kind, res.Message, amount), nil
}

func (r *run) transition(to State) {
	r.log.Debug("Session state changed", "from", r.state, "to", to)
	r.state = to
}

func (r *run) openLoginSurface(ctx context.Context) error {
	r.log.Info("Opening login page", "url", r.cfg.LoginURL)
	if err := r.browser.Navigate(ctx, r.cfg.LoginURL); err != nil {
		return fmt.Errorf("open login page: %w", err)
	}
	r.transition(StateAuthenticating)

	if err := r.dismissPopup(ctx); err != nil {
		r.log.Warn("Popup not dismissed, continuing", "error", err)
	}
	return nil
}

// dismissPopup is best effort; the interstitial is optional.
func (r *run) dismissPopup(ctx context.Context) error {
	if err := waiter.Sleep(ctx, r.cfg.Timings.PopupDelay); err != nil {
		return fmt.Errorf("%w: %w", entity.ErrPopupDismiss, err)
	}

	if len(r.cfg.Locators.PopupClose.Candidates) > 0 {
		if el, ok := r.locator.Present(ctx, r.browser, r.cfg.Locators.PopupClose); ok {
			if err := el.DispatchClick(ctx); err != nil {
				return fmt.Errorf("%w: close button: %w", entity.ErrPopupDismiss, err)
			}
			r.log.Debug("Popup closed via close button")
			return nil
		}
	}

	if !r.cfg.PopupCornerClick {
		return nil
	}
	if err := r.browser.ClickAt(ctx, 10, 10); err != nil {
		return fmt.Errorf("%w: corner click: %w", entity.ErrPopupDismiss, err)
	}
	r.log.Debug("Popup dismissed via corner click")
	return nil
}

func (r *run) authenticate(ctx context.Context) error {
	timeout := r.cfg.Timings.LocatorTimeout

	identifier, err := r.locator.Resolve(ctx, r.browser, r.cfg.Locators.Identifier, timeout)
	if err != nil {
		return fmt.Errorf("%w: identifier field: %w", entity.ErrLoginElementNotFound, err)
	}
	if err := identifier.Fill(ctx, r.cred.Identifier); err != nil {
		return fmt.Errorf("enter identifier: %w", err)
	}

	secret, err := r.locator.Resolve(ctx, r.browser, r.cfg.Locators.Secret, timeout)
	if err != nil {
		return fmt.Errorf("%w: secret field: %w", entity.ErrLoginElementNotFound, err)
	}
	if err := secret.Fill(ctx, r.cred.Secret); err != nil {
		// the underlying error never contains the typed text
		return fmt.Errorf("enter secret: %w", err)
	}

	submit, err := r.locator.Resolve(ctx, r.browser, r.cfg.Locators.Submit, timeout)
	if err != nil {
		return fmt.Errorf("%w: submit button: %w", entity.ErrLoginElementNotFound, err)
	}
	if err := submit.DispatchClick(ctx); err != nil {
		return fmt.Errorf("submit login form: %w", err)
	}
	r.log.Info("Login submitted")

	var lastURL string
	ok := r.waiter.Until(ctx, func(ctx context.Context) (bool, error) {
		u, err := r.browser.CurrentURL(ctx)
		if err != nil {
			return false, err
		}
		lastURL = u
		return r.leftLoginSurface(u), nil
	}, r.cfg.Timings.LoginTimeout, r.cfg.Timings.PollInterval)
	if !ok {
		return fmt.Errorf("%w: still on %q after %s", entity.ErrLoginTimeout, lastURL, r.cfg.Timings.LoginTimeout)
	}

	r.authenticated = true
	r.transition(StateAuthenticated)
	r.log.Info("Logged in", "url", lastURL)
	return nil
}

func (r *run) leftLoginSurface(currentURL string) bool {
	if !strings.HasPrefix(currentURL, "http") {
		return false
	}
	for _, marker := range r.cfg.LoginSuccessMarkers {
		if marker != "" && strings.Contains(currentURL, marker) {
			return true
		}
	}
	return r.cfg.LoginPageMarker != "" && !strings.Contains(currentURL, r.cfg.LoginPageMarker)
}

func (r *run) attemptAction(ctx context.Context) (classifier.Result, error) {
	if !r.authenticated {
		return classifier.Result{}, errors.New("action attempted without an authenticated session")
	}

	if err := r.awaitActionSurface(ctx); err != nil {
		return classifier.Result{}, err
	}

	el, err := r.locator.Resolve(ctx, r.browser, r.cfg.Locators.ActionControl, r.cfg.Timings.LocatorTimeout)
	if err != nil {
		return classifier.Result{}, fmt.Errorf("%w: action control: %w", entity.ErrActionSurfaceUnavailable, err)
	}
	r.transition(StateActionAttempted)

	ctrl := &actionControl{
		el:      el,
		finder:  r.browser,
		locator: r.locator,
		spec:    r.cfg.Locators.ActionControl,
	}
	return r.classifier.Resolve(ctx, ctrl, r.readReward)
}

// awaitActionSurface navigates to the action page and waits for the
// control to render, re-navigating up to SurfaceRetries times.
func (r *run) awaitActionSurface(ctx context.Context) error {
	attempts := r.cfg.Timings.SurfaceRetries
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		r.log.Info("Waiting for action page", "url", r.cfg.ActionURL, "attempt", attempt, "of", attempts)

		if err := r.browser.Navigate(ctx, r.cfg.ActionURL); err != nil {
			r.log.Warn("Action page navigation failed", "attempt", attempt, "error", err)
		} else if r.waiter.Until(ctx, func(ctx context.Context) (bool, error) {
			_, ok := r.locator.Present(ctx, r.browser, r.cfg.Locators.ActionIndicator)
			return ok, nil
		}, r.cfg.Timings.SurfaceWait, r.cfg.Timings.PollInterval) {
			return nil
		}

		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", entity.ErrActionSurfaceUnavailable, err)
		}
	}

	return fmt.Errorf("%w: %s showed no action control after %d attempts of %s",
		entity.ErrActionSurfaceUnavailable, r.cfg.ActionURL, attempts, r.cfg.Timings.SurfaceWait)
}

func (r *run) readReward(ctx context.Context) (string, bool) {
	if len(r.cfg.Locators.Reward.Candidates) == 0 {
		return "", false
	}
	el, ok := r.locator.Present(ctx, r.browser, r.cfg.Locators.Reward)
	if !ok {
		return "", false
	}
	text, err := el.Text(ctx)
	if err != nil {
		return "", false
	}
	text = strings.TrimSpace(text)
	return text, text != ""
}

// extractBalance never fails the account; it falls back to "unknown".
func (r *run) extractBalance(ctx context.Context) string {
	amount, err := r.scanBalance(ctx)
	if err != nil {
		r.log.Warn("Balance unavailable", "error", err)
		return entity.BalanceUnknown
	}
	if r.cfg.BalanceUnit != "" {
		amount += r.cfg.BalanceUnit
	}
	r.log.Info("Balance found", "balance", amount)
	return amount
}

func (r *run) scanBalance(ctx context.Context) (string, error) {
	if r.cfg.BalanceURL != "" {
		if err := r.browser.Navigate(ctx, r.cfg.BalanceURL); err != nil {
			return "", fmt.Errorf("%w: open balance page: %w", entity.ErrBalanceExtraction, err)
		}
	}

	var amount string
	var lastErr error
	ok := r.waiter.Until(ctx, func(ctx context.Context) (bool, error) {
		page, err := r.browser.HTML(ctx)
		if err != nil {
			return false, err
		}
		amount, lastErr = balance.Extract(page, r.cfg.Balance)
		return lastErr == nil, nil
	}, r.cfg.Timings.BalanceTimeout, r.cfg.Timings.PollInterval)
	if !ok {
		if lastErr == nil {
			lastErr = fmt.Errorf("%w: page never became readable", entity.ErrBalanceExtraction)
		}
		return "", lastErr
	}
	return amount, nil
}

// saveArtifacts writes a screenshot and a cleaned HTML snapshot of the page
// the session failed on. Both are best effort.
func (r *run) saveArtifacts(ctx context.Context, state State) {
	if r.cfg.ArtifactsDir == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), artifactTimeout)
	defer cancel()

	if err := os.MkdirAll(r.cfg.ArtifactsDir, 0755); err != nil {
		r.log.Warn("Artifacts dir not created", "error", err)
		return
	}

	base := filepath.Join(r.cfg.ArtifactsDir, fmt.Sprintf("%s_%s_%s",
		time.Now().Format("2006-01-02_15-04-05"), fileSafe(r.cred.Masked()), state))

	if shot, err := r.browser.Screenshot(ctx); err != nil {
		r.log.Warn("Failure screenshot not taken", "error", err)
	} else if err := os.WriteFile(base+"."+shot.Format, shot.Data, 0644); err != nil {
		r.log.Warn("Failure screenshot not written", "error", err)
	} else {
		r.log.Info("Failure screenshot saved", "path", base+"."+shot.Format)
	}

	raw, err := r.browser.HTML(ctx)
	if err != nil {
		r.log.Debug("Page snapshot not taken", "error", err)
		return
	}
	if err := os.WriteFile(base+".html", []byte(pagedump.Clean(raw, nil)), 0644); err != nil {
		r.log.Warn("Page snapshot not written", "error", err)
	}
}

func fileSafe(s string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			return r
		}
		return '_'
	}, s)
}
