package entity

import (
	"fmt"
	"time"
)

type OutcomeKind string

const (
	OutcomeAlreadyDone   OutcomeKind = "already_done"
	OutcomeJustCompleted OutcomeKind = "just_completed"
	OutcomeFailed        OutcomeKind = "failed"
)

func (k OutcomeKind) Succeeded() bool {
	return k == OutcomeAlreadyDone || k == OutcomeJustCompleted
}

const BalanceUnknown = "unknown"

// ActionOutcome is the per-account record fed into the Report.
type ActionOutcome struct {
	Account   string
	Kind      OutcomeKind
	Succeeded bool
	Message   string
	Balance   string
	Reason    string
	Duration  time.Duration
}

func NewOutcome(cred Credential, kind OutcomeKind, message, balance string) ActionOutcome {
	if balance == "" {
		balance = BalanceUnknown
	}
	return ActionOutcome{
		Account:   cred.Masked(),
		Kind:      kind,
		Succeeded: kind.Succeeded(),
		Message:   message,
		Balance:   balance,
	}
}

func FailedOutcome(cred Credential, err error) ActionOutcome {
	msg := "unknown failure"
	if err != nil {
		msg = err.Error()
	}
	out := NewOutcome(cred, OutcomeFailed, msg, BalanceUnknown)
	out.Reason = FailureReason(err)
	return out
}

type Report struct {
	StartedAt  time.Time
	FinishedAt time.Time
	Outcomes   []ActionOutcome
}

func NewReport(started time.Time, capacity int) *Report {
	return &Report{
		StartedAt: started,
		Outcomes:  make([]ActionOutcome, 0, capacity),
	}
}

func (r *Report) Add(o ActionOutcome) {
	r.Outcomes = append(r.Outcomes, o)
}

func (r *Report) Total() int {
	return len(r.Outcomes)
}

func (r *Report) Succeeded() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Succeeded {
			n++
		}
	}
	return n
}

func (r *Report) Summary() string {
	return fmt.Sprintf("%d/%d", r.Succeeded(), r.Total())
}
