package models

import (
	"time"

	id "coursehub/pkg/domain"
	dErrors "coursehub/pkg/domain-errors"
)

// Transition names a status change. Every status mutation goes through
// Application.Advance and the table below.
type Transition string

const (
	TransitionApply       Transition = "apply"
	TransitionEdit        Transition = "edit"
	TransitionResubmit    Transition = "resubmit"
	TransitionProfileEdit Transition = "profile_edit"
	TransitionSubmit      Transition = "submit"
	TransitionApprove     Transition = "approve"
	TransitionReject      Transition = "reject"
)

// Change carries the inputs a transition may record.
type Change struct {
	At       time.Time
	Reviewer *id.UserID
	Notes    *string
}

type rule struct {
	from   []Status
	to     Status
	guard  func(a *Application, c Change) error
	effect func(a *Application, c Change)
}

var transitions = map[Transition]rule{
	TransitionApply: {
		from: []Status{StatusNone},
		to:   StatusPending,
		effect: func(a *Application, _ Change) {
			a.SubmittedAt = nil
			a.clearReview()
		},
	},
	TransitionEdit: {
		from: []Status{StatusPending, StatusRejected},
		to:   StatusPending,
		effect: func(a *Application, _ Change) {
			if a.Status == StatusRejected {
				a.clearReview()
			}
		},
	},
	TransitionResubmit: {
		from: []Status{StatusRejected},
		to:   StatusPending,
		effect: func(a *Application, c Change) {
			at := c.At
			a.SubmittedAt = &at
			a.clearReview()
		},
	},
	TransitionProfileEdit: {
		from: []Status{StatusPending, StatusRejected, StatusApproved},
		to:   StatusPending,
		effect: func(a *Application, _ Change) {
			a.clearReview()
		},
	},
	TransitionSubmit: {
		from: []Status{StatusPending, StatusRejected},
		to:   StatusPending,
		guard: func(a *Application, _ Change) error {
			if a.IsSubmitted() {
				return dErrors.New(dErrors.CodeConflict, "application has already been submitted").
					WithReason(ReasonAlreadySubmitted)
			}
			return nil
		},
		effect: func(a *Application, c Change) {
			at := c.At
			a.SubmittedAt = &at
			a.clearReview()
		},
	},
	TransitionApprove: {
		from:   []Status{StatusPending},
		to:     StatusApproved,
		guard:  requireReview,
		effect: recordReview,
	},
	TransitionReject: {
		from:   []Status{StatusPending},
		to:     StatusRejected,
		guard:  requireReview,
		effect: recordReview,
	},
}

func requireReview(a *Application, c Change) error {
	if !a.IsSubmitted() {
		return invalidState(a.Status, "application has not been submitted for review")
	}
	if c.Reviewer == nil || c.Reviewer.IsNil() {
		return dErrors.New(dErrors.CodeInvariantViolation, "review requires a reviewer")
	}
	return nil
}

func recordReview(a *Application, c Change) {
	at := c.At
	reviewer := *c.Reviewer
	a.ReviewedAt = &at
	a.ReviewerID = &reviewer
	a.ReviewNotes = clonePtr(c.Notes)
}

// CanAdvance reports, without mutating, whether t is allowed from the
// current state. The error is the one Advance would return.
func (a *Application) CanAdvance(t Transition, c Change) error {
	r, ok := transitions[t]
	if !ok {
		return dErrors.New(dErrors.CodeInternal, "unknown transition "+string(t))
	}
	allowed := false
	for _, s := range r.from {
		if s == a.Status {
			allowed = true
			break
		}
	}
	if !allowed {
		return invalidState(a.Status, string(t)+" is not allowed").WithDetail("transition", string(t))
	}
	if r.guard != nil {
		return r.guard(a, c)
	}
	return nil
}

// Advance applies t: checks the source state and guard, runs the side
// effects, then moves to the target status.
func (a *Application) Advance(t Transition, c Change) error {
	if err := a.CanAdvance(t, c); err != nil {
		return err
	}
	r := transitions[t]
	if r.effect != nil {
		r.effect(a, c)
	}
	a.Status = r.to
	a.UpdatedAt = c.At
	return nil
}

func invalidState(current Status, msg string) *dErrors.Error {
	status := string(current)
	if current == StatusNone {
		status = "NONE"
	}
	return dErrors.New(dErrors.CodeConflict, msg+" while application is "+status).
		WithReason(ReasonInvalidState).
		WithDetail("status", status)
}
