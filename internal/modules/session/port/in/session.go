package in

import (
	"context"

	"focusdo/internal/modules/session/domain"
	"focusdo/internal/modules/session/dto"
)

// Usecase is the session controller surface consumed by the CLI and TUI.
// Offline fallbacks are not errors: every operation resolves, and connectivity
// trouble only shows up in the snapshot's Error and PendingSync fields.
// At most one action is active at a time; SetCurrentAction enforces that by
// deactivating the previously active action.
type Usecase interface {
	StartSession(ctx context.Context, input dto.StartInput) (dto.StartOutput, error)
	LoadSession(ctx context.Context, sessionID string) error

	MarkCompleted(ctx context.Context, actionID string, actualMin int) error
	UnmarkCompleted(ctx context.Context, actionID string) error
	SkipAction(ctx context.Context, actionID string) error
	ReactivateAction(ctx context.Context, actionID string) error
	SetCurrentAction(ctx context.Context, actionID string) error

	AddAction(ctx context.Context, input dto.ActionInput) (string, error)
	RemoveAction(ctx context.Context, actionID string) error
	AddTimeExtension(ctx context.Context, actionID string, minutes int) error

	UpdateTimeSpent(ctx context.Context, minutes int) error
	CompleteSession(ctx context.Context) error

	Snapshot(ctx context.Context) dto.Snapshot
	SessionSummary(ctx context.Context) domain.Summary
	ListRecent(ctx context.Context, limit int) ([]dto.SessionDigest, error)
	SyncNow(ctx context.Context) (dto.SyncOutput, error)
}
