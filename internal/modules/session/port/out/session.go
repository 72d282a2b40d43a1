package out

import (
	"context"

	"focusdo/internal/modules/session/domain"
)

// RemoteStore is the narrow surface of the hosted CRUD service. Every
// implementation must be substitutable with an in-memory fake; the gateway
// depends on nothing beyond these operations.
type RemoteStore interface {
	CreateSession(ctx context.Context, session domain.Session) (domain.Session, error)
	InsertActions(ctx context.Context, sessionID string, actions []domain.Action) ([]domain.Action, error)
	UpdateAction(ctx context.Context, update domain.UpdateActionPayload) error
	UpdateSession(ctx context.Context, update domain.UpdateSessionPayload) error
	DeleteAction(ctx context.Context, sessionID, actionID string) error
	FetchSession(ctx context.Context, sessionID string) (domain.Session, error)
	ListSessions(ctx context.Context, userID string, limit int) ([]domain.Session, error)
}

// OfflineStore is the durable local substrate: whole-aggregate shadow copies
// plus the pending-operation queue. Writes are coarse-grained upserts.
type OfflineStore interface {
	SaveSession(ctx context.Context, session domain.Session) error
	LoadSession(ctx context.Context, sessionID string) (domain.Session, error)
	ListSessions(ctx context.Context, limit int) ([]domain.Session, error)
	DeleteSession(ctx context.Context, sessionID string) error

	AppendPending(ctx context.Context, op domain.PendingOp) error
	ListPending(ctx context.Context) ([]domain.PendingOp, error)
	RemovePending(ctx context.Context, opID string) error
	RecordFailure(ctx context.Context, opID, message string) error
	PendingCount(ctx context.Context) (int, error)
}

// Connectivity reports whether the client believes it is online. Subscribe
// delivers up/down transitions; the channel closes when the watcher stops.
type Connectivity interface {
	Online() bool
	Subscribe() <-chan bool
}
