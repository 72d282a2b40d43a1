package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"focusdo/internal/modules/session/domain"
	sessionout "focusdo/internal/modules/session/port/out"
	apperrors "focusdo/internal/platform/errors"
)

const (
	// wait for a fresh connection to settle before draining, so a link that
	// immediately drops again doesn't burn replay attempts
	onlineSettleDelay = 2 * time.Second
)

// SyncResult reports one drain run. Partial success is normal: failed ops
// stay queued with their attempt counters bumped.
type SyncResult struct {
	Synced int
	Failed int
	Errors []string
}

// SyncEngine drains the pending-operation queue against the remote store.
// It replays oldest-first through idempotent overwrites and never runs two
// drains concurrently.
type SyncEngine struct {
	remote      sessionout.RemoteStore
	offline     sessionout.OfflineStore
	conn        sessionout.Connectivity
	transitions <-chan bool

	mu       sync.Mutex
	draining bool
}

// NewSyncEngine subscribes to connectivity transitions immediately so an
// up-transition arriving before Run starts is buffered, not lost.
func NewSyncEngine(remote sessionout.RemoteStore, offline sessionout.OfflineStore, conn sessionout.Connectivity) *SyncEngine {
	return &SyncEngine{remote: remote, offline: offline, conn: conn, transitions: conn.Subscribe()}
}

// SyncNow drains the queue once. A no-op success when the queue is empty;
// ErrSyncInProgress when a drain is already running.
func (e *SyncEngine) SyncNow(ctx context.Context) (SyncResult, error) {
	e.mu.Lock()
	if e.draining {
		e.mu.Unlock()
		return SyncResult{}, apperrors.ErrSyncInProgress
	}
	e.draining = true
	e.mu.Unlock()
	defer func() {
		e.mu.Lock()
		e.draining = false
		e.mu.Unlock()
	}()

	if !e.conn.Online() {
		return SyncResult{}, nil
	}
	ops, err := e.offline.ListPending(ctx)
	if err != nil {
		return SyncResult{}, fmt.Errorf("load pending queue: %w", err)
	}
	if len(ops) == 0 {
		return SyncResult{}, nil
	}
	// replay in issue order: an update may assume an earlier create landed
	sort.SliceStable(ops, func(i, j int) bool {
		return ops[i].CreatedAt.Before(ops[j].CreatedAt)
	})

	result := SyncResult{}
	for _, op := range ops {
		if err := e.replay(ctx, op); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s %s: %v", op.Kind, op.ID, err))
			if recordErr := e.offline.RecordFailure(ctx, op.ID, err.Error()); recordErr != nil {
				result.Errors = append(result.Errors, fmt.Sprintf("record failure %s: %v", op.ID, recordErr))
			}
			continue
		}
		if err := e.offline.RemovePending(ctx, op.ID); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("dequeue %s: %v", op.ID, err))
			continue
		}
		result.Synced++
	}
	return result, nil
}

func (e *SyncEngine) replay(ctx context.Context, op domain.PendingOp) error {
	if err := op.Validate(); err != nil {
		return err
	}
	switch op.Kind {
	case domain.OpCreateSession:
		payload := domain.CreateSessionPayload{}
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return fmt.Errorf("decode create_session payload: %w", err)
		}
		created, err := e.remote.CreateSession(ctx, payload.Session)
		if err != nil {
			return err
		}
		actions, err := e.remote.InsertActions(ctx, created.ID, payload.Session.Actions)
		if err != nil {
			return err
		}
		// re-key the shadow to the server id; the local-id copy would
		// otherwise linger as a duplicate in every offline listing. The
		// create already landed remotely, so failing the op here would
		// replay it and duplicate the session: re-keying is best-effort.
		created.Actions = actions
		if err := e.offline.SaveSession(ctx, created); err == nil {
			_ = e.offline.DeleteSession(ctx, payload.Session.ID)
		}
		return nil
	case domain.OpUpdateSession:
		payload := domain.UpdateSessionPayload{}
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return fmt.Errorf("decode update_session payload: %w", err)
		}
		return e.remote.UpdateSession(ctx, payload)
	case domain.OpUpdateAction:
		payload := domain.UpdateActionPayload{}
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return fmt.Errorf("decode update_action payload: %w", err)
		}
		return e.remote.UpdateAction(ctx, payload)
	case domain.OpCreateAction:
		payload := domain.CreateActionPayload{}
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return fmt.Errorf("decode create_action payload: %w", err)
		}
		_, err := e.remote.InsertActions(ctx, payload.SessionID, []domain.Action{payload.Action})
		return err
	case domain.OpDeleteAction:
		payload := domain.DeleteActionPayload{}
		if err := json.Unmarshal(op.Payload, &payload); err != nil {
			return fmt.Errorf("decode delete_action payload: %w", err)
		}
		return e.remote.DeleteAction(ctx, payload.SessionID, payload.ActionID)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnknownOpKind, op.Kind)
	}
}

// Run keeps draining until ctx is done: once on every offline→online
// transition (after a settle delay) and on a ticker while the queue is
// non-empty. Failures are retried on the next trigger.
func (e *SyncEngine) Run(ctx context.Context, interval time.Duration) {
	transitions := e.transitions
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case online, ok := <-transitions:
			if !ok {
				transitions = nil
				continue
			}
			if !online {
				continue
			}
			select {
			case <-ctx.Done():
				return
			case <-time.After(onlineSettleDelay):
			}
			_, _ = e.SyncNow(ctx)
		case <-ticker.C:
			if !e.conn.Online() {
				continue
			}
			if count, err := e.offline.PendingCount(ctx); err != nil || count == 0 {
				continue
			}
			_, _ = e.SyncNow(ctx)
		}
	}
}
