package out

import (
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"focusdo/internal/modules/session/domain"
	apperrors "focusdo/internal/platform/errors"
)

func newTestStore(t *testing.T) *SQLiteOfflineStore {
	t.Helper()
	store, err := NewSQLiteOfflineStore(filepath.Join(t.TempDir(), "focusdo.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleSession(id string, at time.Time) domain.Session {
	completed := at.Add(10 * time.Minute)
	return domain.Session{
		ID:               id,
		UserID:           "user-1",
		Goal:             "Write report",
		TotalEstimateMin: 30,
		ActualSpentMin:   12,
		Status:           domain.SessionActive,
		CreatedAt:        at,
		UpdatedAt:        at,
		Actions: []domain.Action{
			{
				ID:          id + "-a1",
				Text:        "outline",
				EstimateMin: 10,
				HasEstimate: true,
				Confidence:  domain.ConfidenceHigh,
				OrderIndex:  0,
				Status:      domain.StatusCompleted,
				CompletedAt: &completed,
				ActualMin:   12,
				HasActual:   true,
			},
			{
				ID:            id + "-a2",
				Text:          "draft",
				IsCustom:      true,
				OrderIndex:    1,
				Status:        domain.StatusPending,
				ExtensionsMin: []int{5, 10},
			},
		},
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC)
	saved := sampleSession("s-1", at)

	if err := store.SaveSession(ctx, saved); err != nil {
		t.Fatalf("save: %v", err)
	}
	loaded, err := store.LoadSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded.Goal != saved.Goal || loaded.UserID != saved.UserID || loaded.ActualSpentMin != 12 {
		t.Fatalf("session fields lost: %+v", loaded)
	}
	if !loaded.CreatedAt.Equal(at) {
		t.Fatalf("created_at = %v, want %v", loaded.CreatedAt, at)
	}
	if len(loaded.Actions) != 2 {
		t.Fatalf("action count = %d, want 2", len(loaded.Actions))
	}
	first := loaded.Actions[0]
	if !first.HasEstimate || first.EstimateMin != 10 || !first.HasActual || first.ActualMin != 12 {
		t.Fatalf("estimate/actual lost: %+v", first)
	}
	if first.CompletedAt == nil || !first.CompletedAt.Equal(at.Add(10*time.Minute)) {
		t.Fatalf("completed_at lost: %+v", first.CompletedAt)
	}
	second := loaded.Actions[1]
	if second.HasEstimate || second.HasActual || second.CompletedAt != nil {
		t.Fatalf("absent fields must stay absent: %+v", second)
	}
	if !second.IsCustom || len(second.ExtensionsMin) != 2 || second.ExtensionsMin[1] != 10 {
		t.Fatalf("custom flag or extensions lost: %+v", second)
	}
}

func TestSaveReplacesActionSet(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	at := time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC)
	session := sampleSession("s-1", at)
	if err := store.SaveSession(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}

	session.Actions = session.Actions[:1]
	session.Actions[0].Status = domain.StatusSkipped
	skippedAt := at.Add(time.Hour)
	session.Actions[0].CompletedAt = nil
	session.Actions[0].SkippedAt = &skippedAt
	if err := store.SaveSession(ctx, session); err != nil {
		t.Fatalf("resave: %v", err)
	}

	loaded, err := store.LoadSession(ctx, "s-1")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded.Actions) != 1 {
		t.Fatalf("stale actions survived resave: %+v", loaded.Actions)
	}
	if loaded.Actions[0].Status != domain.StatusSkipped || loaded.Actions[0].SkippedAt == nil {
		t.Fatalf("skip state lost: %+v", loaded.Actions[0])
	}
}

func TestLoadMissingSession(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	if _, err := store.LoadSession(context.Background(), "nope"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestListSessionsNewestFirst(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC)
	for i, id := range []string{"s-old", "s-mid", "s-new"} {
		session := sampleSession(id, base.Add(time.Duration(i)*time.Hour))
		if err := store.SaveSession(ctx, session); err != nil {
			t.Fatalf("save %s: %v", id, err)
		}
	}

	sessions, err := store.ListSessions(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "s-new" || sessions[1].ID != "s-mid" {
		t.Fatalf("expected newest two, got %+v", sessions)
	}
	if len(sessions[0].Actions) != 2 {
		t.Fatalf("listed sessions must carry actions, got %d", len(sessions[0].Actions))
	}
}

func TestDeleteSessionRemovesActions(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	session := sampleSession("s-1", time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC))
	if err := store.SaveSession(ctx, session); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.DeleteSession(ctx, "s-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.LoadSession(ctx, "s-1"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestPendingQueue(t *testing.T) {
	t.Parallel()
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 8, 14, 9, 0, 0, 0, time.UTC)
	// appended newest-first; the list must come back oldest-first
	ops := []domain.PendingOp{
		{ID: "op-2", Kind: domain.OpUpdateAction, Payload: json.RawMessage(`{"action_id":"a-1"}`), CreatedAt: base.Add(time.Minute)},
		{ID: "op-1", Kind: domain.OpCreateSession, Payload: json.RawMessage(`{"session":{}}`), CreatedAt: base},
	}
	for _, op := range ops {
		if err := store.AppendPending(ctx, op); err != nil {
			t.Fatalf("append %s: %v", op.ID, err)
		}
	}

	listed, err := store.ListPending(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listed) != 2 || listed[0].ID != "op-1" || listed[1].ID != "op-2" {
		t.Fatalf("expected oldest-first order, got %+v", listed)
	}
	if string(listed[0].Payload) != `{"session":{}}` {
		t.Fatalf("payload lost: %s", listed[0].Payload)
	}
	if !listed[0].CreatedAt.Equal(base) {
		t.Fatalf("created_at = %v, want %v", listed[0].CreatedAt, base)
	}

	if err := store.RecordFailure(ctx, "op-1", "status 500"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	if err := store.RecordFailure(ctx, "op-1", "status 503"); err != nil {
		t.Fatalf("record failure: %v", err)
	}
	listed, _ = store.ListPending(ctx)
	if listed[0].Attempts != 2 || listed[0].LastError != "status 503" {
		t.Fatalf("failure bookkeeping wrong: %+v", listed[0])
	}

	if err := store.RemovePending(ctx, "op-1"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	count, err := store.PendingCount(ctx)
	if err != nil || count != 1 {
		t.Fatalf("count = %d (%v), want 1", count, err)
	}
}
