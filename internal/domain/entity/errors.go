package entity

import "errors"

var (
	ErrConfiguration            = errors.New("configuration error")
	ErrNotFound                 = errors.New("element not found")
	ErrPopupDismiss             = errors.New("popup dismiss failed")
	ErrLoginElementNotFound     = errors.New("login element not found")
	ErrLoginTimeout             = errors.New("login timeout")
	ErrActionSurfaceUnavailable = errors.New("action surface unavailable")
	ErrClickHadNoEffect         = errors.New("click had no effect")
	ErrBalanceExtraction        = errors.New("balance extraction failed")
	ErrNotificationDelivery     = errors.New("notification delivery failed")
)

// FailureReason maps an account failure to a stable code for reports,
// history rows and metric labels.
func FailureReason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrLoginTimeout):
		return "login_timeout"
	case errors.Is(err, ErrLoginElementNotFound):
		return "login_element_not_found"
	case errors.Is(err, ErrActionSurfaceUnavailable):
		return "action_surface_unavailable"
	case errors.Is(err, ErrClickHadNoEffect):
		return "click_had_no_effect"
	case errors.Is(err, ErrNotFound):
		return "element_not_found"
	default:
		return "internal"
	}
}
