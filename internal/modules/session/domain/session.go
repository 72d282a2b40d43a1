package domain

import "time"

type SessionStatus string

const (
	SessionActive    SessionStatus = "active"
	SessionPaused    SessionStatus = "paused"
	SessionCompleted SessionStatus = "completed"
)

func (s SessionStatus) Validate() error {
	switch s {
	case SessionActive, SessionPaused, SessionCompleted:
		return nil
	default:
		return ErrUnknownStatus
	}
}

// Session is the aggregate root for one goal's worth of actions. UserID is
// empty for anonymous usage. TotalEstimateMin is denormalized and must be
// recomputed whenever the action list changes.
type Session struct {
	ID               string        `json:"id"`
	UserID           string        `json:"user_id,omitempty"`
	Goal             string        `json:"goal"`
	Actions          []Action      `json:"actions"`
	TotalEstimateMin int           `json:"total_estimate_min"`
	ActualSpentMin   int           `json:"actual_spent_min"`
	Status           SessionStatus `json:"status"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
}

// TotalEstimate sums member estimates, treating a missing estimate as zero.
func TotalEstimate(actions []Action) int {
	total := 0
	for _, a := range actions {
		if a.HasEstimate {
			total += a.EstimateMin
		}
	}
	return total
}
