package dto

import (
	"time"

	"focusdo/internal/modules/session/domain"
)

// ActionInput seeds one action at session start or mid-session.
type ActionInput struct {
	Text         string
	EstimateMin  int
	HasEstimate  bool
	Confidence   domain.Confidence
	IsCustom     bool
	OriginalText string
}

type StartInput struct {
	Goal    string
	Actions []ActionInput
}

type StartOutput struct {
	SessionID string
	IsOffline bool
	CreatedAt time.Time
}

// Snapshot is the read-only state exposed to the UI layer. Everything in it
// is a copy; mutating a snapshot never touches controller state.
type Snapshot struct {
	SessionID       string
	Goal            string
	Actions         []domain.Action
	CompletedIDs    map[string]bool
	CurrentActionID string
	TotalEstimate   int
	ActualSpent     int
	Status          domain.SessionStatus
	Loading         bool
	Error           string
	PendingSync     int
	Stats           domain.CompletionStats
	SessionComplete bool
}

// Summary re-exports the session verdict so inbound adapters can stay on
// the dto surface.
type Summary = domain.Summary

type SyncOutput struct {
	Synced int
	Failed int
	Errors []string
}

// SessionDigest is the history-listing row: enough for a review screen
// without hauling the full action list across module boundaries.
type SessionDigest struct {
	ID               string
	Goal             string
	Status           domain.SessionStatus
	CreatedAt        time.Time
	TotalEstimate    int
	ActualSpent      int
	ActionsTotal     int
	ActionsCompleted int
	IsLocal          bool
}
