package session

import (
	"time"

	"checkin-agent/internal/domain/entity"
	"checkin-agent/internal/usecase/balance"
)

type Locators struct {
	PopupClose      entity.LocatorSpec
	Identifier      entity.LocatorSpec
	Secret          entity.LocatorSpec
	Submit          entity.LocatorSpec
	ActionIndicator entity.LocatorSpec
	ActionControl   entity.LocatorSpec
	Reward          entity.LocatorSpec
}

type Timings struct {
	PopupDelay     time.Duration
	LocatorTimeout time.Duration
	LoginTimeout   time.Duration
	SurfaceWait    time.Duration
	SurfaceRetries int
	SettleDelay    time.Duration
	SettleWindow   time.Duration
	BalanceTimeout time.Duration
	PollInterval   time.Duration
}

type Config struct {
	Site string

	LoginURL   string
	ActionURL  string
	BalanceURL string

	// Login is confirmed when the URL contains any success marker or no
	// longer contains LoginPageMarker.
	LoginSuccessMarkers []string
	LoginPageMarker     string

	// PopupCornerClick clicks the page corner when no close button matches.
	PopupCornerClick bool

	Locators       Locators
	DoneVocabulary []string
	Balance        balance.Config
	BalanceUnit    string
	Timings        Timings

	// ArtifactsDir receives a screenshot and page snapshot of every failed
	// session. Empty disables both.
	ArtifactsDir string
}
