package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrUnknownStatus     = errors.New("unknown action status")
	ErrActionNotFound    = errors.New("action not found")
)

type ActionStatus string

const (
	StatusPending   ActionStatus = "pending"
	StatusActive    ActionStatus = "active"
	StatusCompleted ActionStatus = "completed"
	StatusSkipped   ActionStatus = "skipped"
)

func (s ActionStatus) Validate() error {
	switch s {
	case StatusPending, StatusActive, StatusCompleted, StatusSkipped:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownStatus, s)
	}
}

// Terminal reports whether the status satisfies the session-complete
// condition. Both terminal states still allow reactivation.
func (s ActionStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusSkipped
}

// Action is one sub-task inside a focus session. Estimate and Confidence
// come from AI suggestion or user override; OriginalText keeps the
// AI-suggested wording after the user edits it.
type Action struct {
	ID            string       `json:"id"`
	Text          string       `json:"text"`
	EstimateMin   int          `json:"estimate_min"`
	HasEstimate   bool         `json:"has_estimate"`
	Confidence    Confidence   `json:"confidence,omitempty"`
	IsCustom      bool         `json:"is_custom"`
	OriginalText  string       `json:"original_text,omitempty"`
	OrderIndex    int          `json:"order_index"`
	Status        ActionStatus `json:"status"`
	CompletedAt   *time.Time   `json:"completed_at,omitempty"`
	SkippedAt     *time.Time   `json:"skipped_at,omitempty"`
	ActualMin     int          `json:"actual_min"`
	HasActual     bool         `json:"has_actual"`
	ExtensionsMin []int        `json:"extensions_min,omitempty"`
}

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// legalTransitions is the full edge set of the status machine. Completed and
// skipped both reopen: users can take back a mistaken tap.
var legalTransitions = map[ActionStatus][]ActionStatus{
	StatusPending:   {StatusActive, StatusSkipped},
	StatusActive:    {StatusCompleted, StatusSkipped, StatusPending},
	StatusCompleted: {StatusActive, StatusPending},
	StatusSkipped:   {StatusActive, StatusPending},
}

func CanTransition(from, to ActionStatus) bool {
	for _, allowed := range legalTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition returns a copy of action moved to next, keeping the completion
// and skip timestamps mutually exclusive. An illegal edge is a caller bug and
// fails with ErrInvalidTransition naming both states. actualMin applies only
// on the edge into completed; pass a negative value to leave it unset.
func Transition(action Action, next ActionStatus, now time.Time, actualMin int) (Action, error) {
	if err := next.Validate(); err != nil {
		return Action{}, err
	}
	if !CanTransition(action.Status, next) {
		return Action{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, action.Status, next)
	}
	out := cloneAction(action)
	out.Status = next
	switch next {
	case StatusCompleted:
		at := now
		out.CompletedAt = &at
		out.SkippedAt = nil
		if actualMin >= 0 {
			out.ActualMin = actualMin
			out.HasActual = true
		}
	case StatusSkipped:
		at := now
		out.SkippedAt = &at
		out.CompletedAt = nil
		// time already logged stays: skipping does not erase actuals
	case StatusActive, StatusPending:
		out.CompletedAt = nil
		out.SkippedAt = nil
	}
	return out, nil
}

// CompleteAction marks the action done, recording wall-clock minutes spent.
func CompleteAction(action Action, now time.Time, actualMin int) (Action, error) {
	return Transition(action, StatusCompleted, now, actualMin)
}

func SkipAction(action Action, now time.Time) (Action, error) {
	return Transition(action, StatusSkipped, now, -1)
}

// ReactivateAction reopens a finished or skipped action back to pending.
func ReactivateAction(action Action, now time.Time) (Action, error) {
	if !action.Status.Terminal() {
		return Action{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, action.Status, StatusPending)
	}
	return Transition(action, StatusPending, now, -1)
}

// ActivateAction moves a pending action into progress.
func ActivateAction(action Action, now time.Time) (Action, error) {
	if action.Status != StatusPending {
		return Action{}, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, action.Status, StatusActive)
	}
	return Transition(action, StatusActive, now, -1)
}

// AddExtension appends minutes to the action's append-only extension log.
// Bounds (1..60) are enforced at the input surface, not here.
func AddExtension(action Action, minutes int) Action {
	out := cloneAction(action)
	out.ExtensionsMin = append(out.ExtensionsMin, minutes)
	return out
}

func TotalExtension(action Action) int {
	total := 0
	for _, m := range action.ExtensionsMin {
		total += m
	}
	return total
}

// IsSessionComplete is true only for a non-empty collection whose members
// are all completed or skipped. An empty session is never complete.
func IsSessionComplete(actions []Action) bool {
	if len(actions) == 0 {
		return false
	}
	for _, a := range actions {
		if !a.Status.Terminal() {
			return false
		}
	}
	return true
}

// NextPendingAction returns the first pending action in order.
func NextPendingAction(actions []Action) (Action, bool) {
	for _, a := range actions {
		if a.Status == StatusPending {
			return a, true
		}
	}
	return Action{}, false
}

// CurrentActiveAction returns the first active action in order. The
// controller keeps at most one action active, so first match is the match.
func CurrentActiveAction(actions []Action) (Action, bool) {
	for _, a := range actions {
		if a.Status == StatusActive {
			return a, true
		}
	}
	return Action{}, false
}

func cloneAction(a Action) Action {
	out := a
	if a.CompletedAt != nil {
		at := *a.CompletedAt
		out.CompletedAt = &at
	}
	if a.SkippedAt != nil {
		at := *a.SkippedAt
		out.SkippedAt = &at
	}
	if a.ExtensionsMin != nil {
		out.ExtensionsMin = append([]int(nil), a.ExtensionsMin...)
	}
	return out
}
