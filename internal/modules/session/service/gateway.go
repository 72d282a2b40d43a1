package service

import (
	"context"
	"encoding/json"
	"fmt"

	"focusdo/internal/modules/session/domain"
	sessionout "focusdo/internal/modules/session/port/out"
	"focusdo/internal/platform/clock"
	apperrors "focusdo/internal/platform/errors"
	"focusdo/internal/platform/id"
)

// Result is the outcome of a gateway operation. Gateway operations always
// succeed from the caller's point of view: a connectivity or remote failure
// degrades to local queuing, surfaces as IsOffline, and keeps the flow
// moving. Err is diagnostic only and must never drive control flow.
type Result struct {
	IsOffline bool
	Err       string
}

// Gateway is the persistence seam between the controller and durability.
// It tries the remote store when the connectivity port says the client is
// online, and otherwise (or on any remote failure) writes an offline shadow
// copy plus a pending sync operation.
type Gateway struct {
	clock   clock.Clock
	ids     id.Generator
	remote  sessionout.RemoteStore
	offline sessionout.OfflineStore
	conn    sessionout.Connectivity
	userID  string
}

func NewGateway(clk clock.Clock, ids id.Generator, remote sessionout.RemoteStore, offline sessionout.OfflineStore, conn sessionout.Connectivity, userID string) *Gateway {
	return &Gateway{clock: clk, ids: ids, remote: remote, offline: offline, conn: conn, userID: userID}
}

// CreateSession persists a new session with its initial action list. Online,
// ids come back server-assigned; offline, the session and every action get
// local-prefixed ids and the whole aggregate is queued for replay.
func (g *Gateway) CreateSession(ctx context.Context, session domain.Session) (domain.Session, Result) {
	now := g.clock.Now()
	session.UserID = g.userID
	session.CreatedAt = now
	session.UpdatedAt = now
	session.TotalEstimateMin = domain.TotalEstimate(session.Actions)
	if session.Status == "" {
		session.Status = domain.SessionActive
	}

	if g.conn.Online() {
		created, err := g.remote.CreateSession(ctx, session)
		if err == nil {
			actions, insertErr := g.remote.InsertActions(ctx, created.ID, session.Actions)
			if insertErr == nil {
				created.Actions = actions
				if shadowErr := g.offline.SaveSession(ctx, created); shadowErr != nil {
					return created, Result{Err: shadowErr.Error()}
				}
				return created, Result{}
			}
			err = insertErr
		}
		return g.createOffline(ctx, session, err)
	}
	return g.createOffline(ctx, session, nil)
}

func (g *Gateway) createOffline(ctx context.Context, session domain.Session, cause error) (domain.Session, Result) {
	session.ID = g.ids.NewLocal()
	for i := range session.Actions {
		if session.Actions[i].ID == "" {
			session.Actions[i].ID = g.ids.NewLocal()
		}
	}
	result := Result{IsOffline: true}
	if cause != nil {
		result.Err = cause.Error()
	}
	if err := g.offline.SaveSession(ctx, session); err != nil {
		result.Err = err.Error()
		return session, result
	}
	payload := domain.CreateSessionPayload{Session: session}
	if err := g.queue(ctx, domain.OpCreateSession, payload); err != nil {
		result.Err = err.Error()
	}
	return session, result
}

// CompleteAction overwrites the remote action row with completed state.
// The session argument is the controller's post-transition aggregate; it is
// what gets shadowed when the call degrades offline.
func (g *Gateway) CompleteAction(ctx context.Context, session domain.Session, actionID string) Result {
	action, ok := findAction(session.Actions, actionID)
	if !ok {
		return Result{Err: fmt.Sprintf("action %s not in session %s", actionID, session.ID)}
	}
	actual := action.ActualMin
	update := domain.UpdateActionPayload{
		ActionID:    actionID,
		SessionID:   session.ID,
		Status:      domain.StatusCompleted,
		CompletedAt: action.CompletedAt,
	}
	if action.HasActual {
		update.ActualMin = &actual
	}
	return g.updateAction(ctx, session, update)
}

// UncompleteAction reverts the remote action row to pending with no
// completion provenance.
func (g *Gateway) UncompleteAction(ctx context.Context, session domain.Session, actionID string) Result {
	update := domain.UpdateActionPayload{
		ActionID:  actionID,
		SessionID: session.ID,
		Status:    domain.StatusPending,
	}
	return g.updateAction(ctx, session, update)
}

// UpdateAction pushes an arbitrary status overwrite, used for skip and
// reactivate so those survive a reload like completions do.
func (g *Gateway) UpdateAction(ctx context.Context, session domain.Session, actionID string) Result {
	action, ok := findAction(session.Actions, actionID)
	if !ok {
		return Result{Err: fmt.Sprintf("action %s not in session %s", actionID, session.ID)}
	}
	actual := action.ActualMin
	update := domain.UpdateActionPayload{
		ActionID:    actionID,
		SessionID:   session.ID,
		Status:      action.Status,
		CompletedAt: action.CompletedAt,
		SkippedAt:   action.SkippedAt,
	}
	if action.HasActual {
		update.ActualMin = &actual
	}
	return g.updateAction(ctx, session, update)
}

func (g *Gateway) updateAction(ctx context.Context, session domain.Session, update domain.UpdateActionPayload) Result {
	// a local-id session has never landed remotely; skip straight to queuing
	if g.conn.Online() && !id.IsLocal(session.ID) {
		err := g.remote.UpdateAction(ctx, update)
		if err == nil {
			if shadowErr := g.offline.SaveSession(ctx, session); shadowErr != nil {
				return Result{Err: shadowErr.Error()}
			}
			return Result{}
		}
		return g.fallback(ctx, session, domain.OpUpdateAction, update, err)
	}
	return g.fallback(ctx, session, domain.OpUpdateAction, update, nil)
}

// UpdateProgress pushes session-level actual time and status.
func (g *Gateway) UpdateProgress(ctx context.Context, session domain.Session, actualSpentMin *int, status *domain.SessionStatus) Result {
	update := domain.UpdateSessionPayload{
		SessionID:      session.ID,
		ActualSpentMin: actualSpentMin,
		Status:         status,
	}
	if g.conn.Online() && !id.IsLocal(session.ID) {
		err := g.remote.UpdateSession(ctx, update)
		if err == nil {
			if shadowErr := g.offline.SaveSession(ctx, session); shadowErr != nil {
				return Result{Err: shadowErr.Error()}
			}
			return Result{}
		}
		return g.fallback(ctx, session, domain.OpUpdateSession, update, err)
	}
	return g.fallback(ctx, session, domain.OpUpdateSession, update, nil)
}

// CreateAction appends one custom action to an existing session.
func (g *Gateway) CreateAction(ctx context.Context, session domain.Session, action domain.Action) (domain.Action, Result) {
	if g.conn.Online() && !id.IsLocal(session.ID) {
		inserted, err := g.remote.InsertActions(ctx, session.ID, []domain.Action{action})
		if err == nil && len(inserted) == 1 {
			action = inserted[0]
			for i := range session.Actions {
				if session.Actions[i].OrderIndex == action.OrderIndex {
					session.Actions[i].ID = action.ID
				}
			}
			if shadowErr := g.offline.SaveSession(ctx, session); shadowErr != nil {
				return action, Result{Err: shadowErr.Error()}
			}
			return action, Result{}
		}
		if err == nil {
			err = fmt.Errorf("insert-actions returned %d rows, want 1", len(inserted))
		}
		return g.createActionOffline(ctx, session, action, err)
	}
	return g.createActionOffline(ctx, session, action, nil)
}

func (g *Gateway) createActionOffline(ctx context.Context, session domain.Session, action domain.Action, cause error) (domain.Action, Result) {
	if action.ID == "" {
		action.ID = g.ids.NewLocal()
	}
	for i := range session.Actions {
		if session.Actions[i].OrderIndex == action.OrderIndex && session.Actions[i].ID == "" {
			session.Actions[i].ID = action.ID
		}
	}
	payload := domain.CreateActionPayload{SessionID: session.ID, Action: action}
	result := g.fallback(ctx, session, domain.OpCreateAction, payload, cause)
	return action, result
}

// DeleteAction removes an action entirely; this is the explicit user delete,
// not a status transition.
func (g *Gateway) DeleteAction(ctx context.Context, session domain.Session, actionID string) Result {
	if g.conn.Online() && !id.IsLocal(session.ID) && !id.IsLocal(actionID) {
		err := g.remote.DeleteAction(ctx, session.ID, actionID)
		if err == nil {
			if shadowErr := g.offline.SaveSession(ctx, session); shadowErr != nil {
				return Result{Err: shadowErr.Error()}
			}
			return Result{}
		}
		return g.fallback(ctx, session, domain.OpDeleteAction, domain.DeleteActionPayload{SessionID: session.ID, ActionID: actionID}, err)
	}
	return g.fallback(ctx, session, domain.OpDeleteAction, domain.DeleteActionPayload{SessionID: session.ID, ActionID: actionID}, nil)
}

// FetchSession prefers the remote copy, falling back to the offline shadow.
// Sessions with local ids only ever exist as shadows.
func (g *Gateway) FetchSession(ctx context.Context, sessionID string) (domain.Session, bool, error) {
	if g.conn.Online() && !id.IsLocal(sessionID) {
		session, err := g.remote.FetchSession(ctx, sessionID)
		if err == nil {
			return session, false, nil
		}
	}
	session, err := g.offline.LoadSession(ctx, sessionID)
	if err != nil {
		return domain.Session{}, true, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
	}
	return session, true, nil
}

// ListSessions prefers the remote history when online and owner-scoped;
// anonymous or offline clients see their local shadows instead.
func (g *Gateway) ListSessions(ctx context.Context, limit int) ([]domain.Session, bool, error) {
	if g.conn.Online() && g.userID != "" {
		sessions, err := g.remote.ListSessions(ctx, g.userID, limit)
		if err == nil {
			return sessions, false, nil
		}
	}
	sessions, err := g.offline.ListSessions(ctx, limit)
	if err != nil {
		return nil, true, fmt.Errorf("list offline sessions: %w", err)
	}
	return sessions, true, nil
}

func (g *Gateway) PendingCount(ctx context.Context) int {
	count, err := g.offline.PendingCount(ctx)
	if err != nil {
		return 0
	}
	return count
}

// fallback shadows the aggregate and queues the intent. Whether the trigger
// was "truly offline" or "online but the call failed" only shows up in Err.
func (g *Gateway) fallback(ctx context.Context, session domain.Session, kind domain.OpKind, payload any, cause error) Result {
	result := Result{IsOffline: true}
	if cause != nil {
		result.Err = cause.Error()
	}
	if err := g.offline.SaveSession(ctx, session); err != nil {
		result.Err = err.Error()
		return result
	}
	if err := g.queue(ctx, kind, payload); err != nil {
		result.Err = err.Error()
	}
	return result
}

func (g *Gateway) queue(ctx context.Context, kind domain.OpKind, payload any) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s payload: %w", kind, err)
	}
	op := domain.PendingOp{
		ID:        g.ids.New(),
		Kind:      kind,
		Payload:   raw,
		CreatedAt: g.clock.Now(),
	}
	if err := g.offline.AppendPending(ctx, op); err != nil {
		return fmt.Errorf("queue %s: %w", kind, err)
	}
	return nil
}

func findAction(actions []domain.Action, actionID string) (domain.Action, bool) {
	for _, a := range actions {
		if a.ID == actionID {
			return a, true
		}
	}
	return domain.Action{}, false
}
