// Package profile loads the site profile: the URLs, locators, vocabulary
// and timings that describe one check-in website.
package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/usecase/balance"
	"checkin-agent/internal/usecase/session"

	"gopkg.in/yaml.v3"
)

//go:embed leaflow.yaml
var defaultProfile []byte

// Duration accepts Go duration strings ("3s", "500ms") in YAML.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return fmt.Errorf("line %d: duration must be a string: %w", node.Line, err)
	}
	v, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(v)
	return nil
}

func (d Duration) Std() time.Duration { return time.Duration(d) }

type Profile struct {
	Site  string `yaml:"site"`
	Title string `yaml:"title"`

	URLs struct {
		Login   string `yaml:"login"`
		Action  string `yaml:"action"`
		Balance string `yaml:"balance"`
	} `yaml:"urls"`

	Login struct {
		SuccessMarkers []string `yaml:"success_markers"`
		PageMarker     string   `yaml:"page_marker"`
	} `yaml:"login"`

	Popup struct {
		CornerClick bool `yaml:"corner_click"`
	} `yaml:"popup"`

	Locators struct {
		PopupClose      entity.LocatorSpec `yaml:"popup_close"`
		Identifier      entity.LocatorSpec `yaml:"identifier"`
		Secret          entity.LocatorSpec `yaml:"secret"`
		Submit          entity.LocatorSpec `yaml:"submit"`
		ActionIndicator entity.LocatorSpec `yaml:"action_indicator"`
		ActionControl   entity.LocatorSpec `yaml:"action_control"`
		Reward          entity.LocatorSpec `yaml:"reward"`
	} `yaml:"locators"`

	DoneVocabulary []string `yaml:"done_vocabulary"`

	Balance struct {
		CurrencyMarkers []string `yaml:"currency_markers"`
		ClassHints      []string `yaml:"class_hints"`
		Unit            string   `yaml:"unit"`
	} `yaml:"balance"`

	Timings struct {
		PopupDelay     Duration `yaml:"popup_delay"`
		LocatorTimeout Duration `yaml:"locator_timeout"`
		LoginTimeout   Duration `yaml:"login_timeout"`
		SurfaceWait    Duration `yaml:"surface_wait"`
		SurfaceRetries int      `yaml:"surface_retries"`
		SettleDelay    Duration `yaml:"settle_delay"`
		SettleWindow   Duration `yaml:"settle_window"`
		BalanceTimeout Duration `yaml:"balance_timeout"`
		PollInterval   Duration `yaml:"poll_interval"`
		AccountPacing  Duration `yaml:"account_pacing"`
	} `yaml:"timings"`
}

// Default returns the embedded Leaflow profile.
func Default() (*Profile, error) {
	p, err := Parse(defaultProfile)
	if err != nil {
		return nil, fmt.Errorf("embedded profile: %w", err)
	}
	return p, nil
}

// Load reads a profile file, or the embedded default when path is empty.
func Load(path string) (*Profile, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read profile %s: %w", entity.ErrConfiguration, path, err)
	}

	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes and validates a profile. Unknown keys are rejected so a
// typo cannot silently disable a locator.
func Parse(data []byte) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		return nil, fmt.Errorf("%w: parse YAML: %w", entity.ErrConfiguration, err)
	}

	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", entity.ErrConfiguration, err)
	}
	return &p, nil
}

func (p *Profile) Validate() error {
	var errs []error

	if p.Site == "" {
		errs = append(errs, errors.New("site is required"))
	}
	if p.URLs.Login == "" {
		errs = append(errs, errors.New("urls.login is required"))
	}
	if p.URLs.Action == "" {
		errs = append(errs, errors.New("urls.action is required"))
	}
	if len(p.Login.SuccessMarkers) == 0 && p.Login.PageMarker == "" {
		errs = append(errs, errors.New("login needs success_markers or page_marker"))
	}
	if len(p.DoneVocabulary) == 0 {
		errs = append(errs, errors.New("done_vocabulary is required"))
	}

	required := map[string]entity.LocatorSpec{
		"identifier":       p.Locators.Identifier,
		"secret":           p.Locators.Secret,
		"submit":           p.Locators.Submit,
		"action_indicator": p.Locators.ActionIndicator,
		"action_control":   p.Locators.ActionControl,
	}
	for key, spec := range required {
		if err := spec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("locators.%s: %w", key, err))
		}
	}
	for key, spec := range map[string]entity.LocatorSpec{
		"popup_close": p.Locators.PopupClose,
		"reward":      p.Locators.Reward,
	} {
		if len(spec.Candidates) == 0 {
			continue
		}
		if err := spec.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("locators.%s: %w", key, err))
		}
	}

	t := p.Timings
	for key, d := range map[string]Duration{
		"locator_timeout": t.LocatorTimeout,
		"login_timeout":   t.LoginTimeout,
		"surface_wait":    t.SurfaceWait,
		"settle_window":   t.SettleWindow,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("timings.%s must be positive", key))
		}
	}
	if t.SurfaceRetries < 1 {
		errs = append(errs, errors.New("timings.surface_retries must be at least 1"))
	}

	return errors.Join(errs...)
}

// DisplayName is the title used in notifications.
func (p *Profile) DisplayName() string {
	if p.Title != "" {
		return p.Title
	}
	return p.Site
}

func (p *Profile) SessionConfig(artifactsDir string) session.Config {
	return session.Config{
		Site:                p.Site,
		LoginURL:            p.URLs.Login,
		ActionURL:           p.URLs.Action,
		BalanceURL:          p.URLs.Balance,
		LoginSuccessMarkers: p.Login.SuccessMarkers,
		LoginPageMarker:     p.Login.PageMarker,
		PopupCornerClick:    p.Popup.CornerClick,
		Locators: session.Locators{
			PopupClose:      p.Locators.PopupClose,
			Identifier:      p.Locators.Identifier,
			Secret:          p.Locators.Secret,
			Submit:          p.Locators.Submit,
			ActionIndicator: p.Locators.ActionIndicator,
			ActionControl:   p.Locators.ActionControl,
			Reward:          p.Locators.Reward,
		},
		DoneVocabulary: p.DoneVocabulary,
		Balance: balance.Config{
			CurrencyMarkers: p.Balance.CurrencyMarkers,
			ClassHints:      p.Balance.ClassHints,
		},
		BalanceUnit: p.Balance.Unit,
		Timings: session.Timings{
			PopupDelay:     p.Timings.PopupDelay.Std(),
			LocatorTimeout: p.Timings.LocatorTimeout.Std(),
			LoginTimeout:   p.Timings.LoginTimeout.Std(),
			SurfaceWait:    p.Timings.SurfaceWait.Std(),
			SurfaceRetries: p.Timings.SurfaceRetries,
			SettleDelay:    p.Timings.SettleDelay.Std(),
			SettleWindow:   p.Timings.SettleWindow.Std(),
			BalanceTimeout: p.Timings.BalanceTimeout.Std(),
			PollInterval:   p.Timings.PollInterval.Std(),
		},
		ArtifactsDir: artifactsDir,
	}
}
