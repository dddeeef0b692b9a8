package entity

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestReport_Summary(t *testing.T) {
	cred := Credential{Identifier: "a@x.com", Secret: "p"}
	r := NewReport(time.Now(), 3)

	r.Add(FailedOutcome(cred, fmt.Errorf("%w: still on login page", ErrLoginTimeout)))
	r.Add(NewOutcome(cred, OutcomeAlreadyDone, "already done", ""))
	r.Add(NewOutcome(cred, OutcomeJustCompleted, "done", "12.5"))

	assert.Equal(t, 3, r.Total())
	assert.Equal(t, 2, r.Succeeded())
	assert.Equal(t, "2/3", r.Summary())
}

func TestFailedOutcome(t *testing.T) {
	cred := Credential{Identifier: "alice@example.com", Secret: "p"}
	err := fmt.Errorf("%w: control never rendered", ErrActionSurfaceUnavailable)

	out := FailedOutcome(cred, err)

	assert.Equal(t, OutcomeFailed, out.Kind)
	assert.False(t, out.Succeeded)
	assert.Equal(t, BalanceUnknown, out.Balance)
	assert.Equal(t, "ali***@example.com", out.Account)
	assert.Equal(t, "action_surface_unavailable", out.Reason)
	assert.Contains(t, out.Message, "action surface unavailable")
}

func TestFailureReason(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{nil, ""},
		{fmt.Errorf("wrap: %w", ErrLoginTimeout), "login_timeout"},
		{fmt.Errorf("wrap: %w", ErrLoginElementNotFound), "login_element_not_found"},
		{fmt.Errorf("wrap: %w", ErrActionSurfaceUnavailable), "action_surface_unavailable"},
		{fmt.Errorf("wrap: %w", ErrClickHadNoEffect), "click_had_no_effect"},
		{ErrNotFound, "element_not_found"},
		{errors.New("boom"), "internal"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FailureReason(tt.err))
	}
}

func TestLocatorSpec_Validate(t *testing.T) {
	ok := LocatorSpec{Name: "submit", Candidates: []Query{
		{Kind: QueryXPath, Value: "//button[@type='submit']"},
		{Kind: QueryText, Value: "button", Pattern: "Login"},
	}}
	assert.NoError(t, ok.Validate())

	assert.Error(t, LocatorSpec{Name: "empty"}.Validate())
	assert.Error(t, LocatorSpec{Name: "bad", Candidates: []Query{{Kind: "id", Value: "x"}}}.Validate())
	assert.Error(t, LocatorSpec{Name: "nopattern", Candidates: []Query{{Kind: QueryText, Value: "button"}}}.Validate())
}
