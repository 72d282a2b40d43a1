package domain

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

var ErrUnknownOpKind = errors.New("unknown pending op kind")

type OpKind string

const (
	OpCreateSession OpKind = "create_session"
	OpUpdateSession OpKind = "update_session"
	OpUpdateAction  OpKind = "update_action"
	OpCreateAction  OpKind = "create_action"
	OpDeleteAction  OpKind = "delete_action"
)

func (k OpKind) Validate() error {
	switch k {
	case OpCreateSession, OpUpdateSession, OpUpdateAction, OpCreateAction, OpDeleteAction:
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrUnknownOpKind, k)
	}
}

// PendingOp records one mutation that could not reach the remote store.
// Ops replay oldest-first; a successful replay removes the record, a failed
// one bumps Attempts and leaves it queued. Nothing else ever mutates it.
type PendingOp struct {
	ID        string          `json:"id"`
	Kind      OpKind          `json:"kind"`
	Payload   json.RawMessage `json:"payload"`
	CreatedAt time.Time       `json:"created_at"`
	Attempts  int             `json:"attempts"`
	LastError string          `json:"last_error,omitempty"`
}

func (op PendingOp) Validate() error {
	if op.ID == "" {
		return fmt.Errorf("pending op id is required")
	}
	if err := op.Kind.Validate(); err != nil {
		return err
	}
	if op.CreatedAt.IsZero() {
		return fmt.Errorf("pending op created_at is required")
	}
	return nil
}

// Payload shapes, one per op kind. Kept flat so replay needs no joins.

type CreateSessionPayload struct {
	Session Session `json:"session"`
}

type UpdateSessionPayload struct {
	SessionID      string         `json:"session_id"`
	ActualSpentMin *int           `json:"actual_spent_min,omitempty"`
	Status         *SessionStatus `json:"status,omitempty"`
}

type UpdateActionPayload struct {
	ActionID    string       `json:"action_id"`
	SessionID   string       `json:"session_id"`
	Status      ActionStatus `json:"status"`
	CompletedAt *time.Time   `json:"completed_at"`
	SkippedAt   *time.Time   `json:"skipped_at"`
	ActualMin   *int         `json:"actual_min,omitempty"`
}

type CreateActionPayload struct {
	SessionID string `json:"session_id"`
	Action    Action `json:"action"`
}

type DeleteActionPayload struct {
	SessionID string `json:"session_id"`
	ActionID  string `json:"action_id"`
}
