package domain

import (
	"errors"
	"testing"
	"time"
)

var testNow = time.Date(2026, 8, 14, 9, 30, 0, 0, time.UTC)

func TestTransitionLegality(t *testing.T) {
	t.Parallel()
	statuses := []ActionStatus{StatusPending, StatusActive, StatusCompleted, StatusSkipped}
	legal := map[ActionStatus]map[ActionStatus]bool{
		StatusPending:   {StatusActive: true, StatusSkipped: true},
		StatusActive:    {StatusCompleted: true, StatusSkipped: true, StatusPending: true},
		StatusCompleted: {StatusActive: true, StatusPending: true},
		StatusSkipped:   {StatusActive: true, StatusPending: true},
	}
	for _, from := range statuses {
		for _, to := range statuses {
			action := Action{ID: "a1", Text: "write intro", Status: from}
			got, err := Transition(action, to, testNow, -1)
			if legal[from][to] {
				if err != nil {
					t.Fatalf("%s -> %s should be legal: %v", from, to, err)
				}
				if got.Status != to {
					t.Fatalf("%s -> %s: status is %s", from, to, got.Status)
				}
				continue
			}
			if !errors.Is(err, ErrInvalidTransition) {
				t.Fatalf("%s -> %s should fail with ErrInvalidTransition, got %v", from, to, err)
			}
		}
	}
}

func TestTransitionDoesNotMutateInput(t *testing.T) {
	t.Parallel()
	action := Action{ID: "a1", Status: StatusActive, ExtensionsMin: []int{5}}
	got, err := CompleteAction(action, testNow, 12)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if action.Status != StatusActive || action.CompletedAt != nil || action.HasActual {
		t.Fatalf("input action mutated: %+v", action)
	}
	got.ExtensionsMin[0] = 99
	if action.ExtensionsMin[0] != 5 {
		t.Fatalf("extension log shared between copies")
	}
}

func TestTimestampExclusivity(t *testing.T) {
	t.Parallel()
	action := Action{ID: "a1", Status: StatusActive}
	completed, err := CompleteAction(action, testNow, 10)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if completed.CompletedAt == nil || completed.SkippedAt != nil {
		t.Fatalf("completed action must carry exactly the completion timestamp: %+v", completed)
	}
	reopened, err := Transition(completed, StatusActive, testNow, -1)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	skipped, err := SkipAction(reopened, testNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("skip: %v", err)
	}
	if skipped.SkippedAt == nil || skipped.CompletedAt != nil {
		t.Fatalf("skipped action must carry exactly the skip timestamp: %+v", skipped)
	}
	if !skipped.HasActual || skipped.ActualMin != 10 {
		t.Fatalf("skip must preserve already-logged actual minutes: %+v", skipped)
	}
}

func TestReactivationClearsProvenanceButNotActual(t *testing.T) {
	t.Parallel()
	action := Action{ID: "a1", Status: StatusActive}
	completed, err := CompleteAction(action, testNow, 10)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	reopened, err := ReactivateAction(completed, testNow.Add(time.Minute))
	if err != nil {
		t.Fatalf("reactivate: %v", err)
	}
	if reopened.Status != StatusPending {
		t.Fatalf("expected pending, got %s", reopened.Status)
	}
	if reopened.CompletedAt != nil || reopened.SkippedAt != nil {
		t.Fatalf("reactivation must clear both timestamps: %+v", reopened)
	}
	// the machine keeps the actual; clearing it is the controller's call
	if !reopened.HasActual || reopened.ActualMin != 10 {
		t.Fatalf("machine must not clear actual minutes: %+v", reopened)
	}
}

func TestNamedWrappersEnforcePreconditions(t *testing.T) {
	t.Parallel()
	if _, err := ReactivateAction(Action{Status: StatusActive}, testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("reactivate from active must fail, got %v", err)
	}
	if _, err := ActivateAction(Action{Status: StatusCompleted}, testNow); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("activate from completed must fail, got %v", err)
	}
	if _, err := ActivateAction(Action{Status: StatusPending}, testNow); err != nil {
		t.Fatalf("activate from pending: %v", err)
	}
}

func TestExtensionAccumulation(t *testing.T) {
	t.Parallel()
	action := Action{ID: "a1", Status: StatusActive}
	action = AddExtension(action, 5)
	action = AddExtension(action, 10)
	if len(action.ExtensionsMin) != 2 || action.ExtensionsMin[0] != 5 || action.ExtensionsMin[1] != 10 {
		t.Fatalf("expected extension log [5 10], got %v", action.ExtensionsMin)
	}
	if TotalExtension(action) != 15 {
		t.Fatalf("expected total extension 15, got %d", TotalExtension(action))
	}
	if action.Status != StatusActive {
		t.Fatalf("extension must not change status")
	}
}

func TestIsSessionComplete(t *testing.T) {
	t.Parallel()
	if IsSessionComplete(nil) {
		t.Fatalf("empty collection is never complete")
	}
	actions := []Action{
		{ID: "a1", Status: StatusCompleted},
		{ID: "a2", Status: StatusSkipped},
	}
	if !IsSessionComplete(actions) {
		t.Fatalf("completed+skipped should be session-complete")
	}
	actions = append(actions, Action{ID: "a3", Status: StatusPending})
	if IsSessionComplete(actions) {
		t.Fatalf("pending member should block session-complete")
	}
}

func TestOrderedScans(t *testing.T) {
	t.Parallel()
	actions := []Action{
		{ID: "a1", Status: StatusCompleted},
		{ID: "a2", Status: StatusPending},
		{ID: "a3", Status: StatusActive},
		{ID: "a4", Status: StatusPending},
	}
	next, ok := NextPendingAction(actions)
	if !ok || next.ID != "a2" {
		t.Fatalf("expected first pending a2, got %+v ok=%v", next, ok)
	}
	active, ok := CurrentActiveAction(actions)
	if !ok || active.ID != "a3" {
		t.Fatalf("expected active a3, got %+v ok=%v", active, ok)
	}
	if _, ok := NextPendingAction(nil); ok {
		t.Fatalf("empty scan must report no match")
	}
}

func TestPendingOpValidate(t *testing.T) {
	t.Parallel()
	op := PendingOp{ID: "op1", Kind: OpCreateSession, CreatedAt: testNow}
	if err := op.Validate(); err != nil {
		t.Fatalf("valid op rejected: %v", err)
	}
	if err := (PendingOp{ID: "op1", Kind: "rename_session", CreatedAt: testNow}).Validate(); !errors.Is(err, ErrUnknownOpKind) {
		t.Fatalf("unknown kind must fail, got %v", err)
	}
	if err := (PendingOp{Kind: OpCreateSession, CreatedAt: testNow}).Validate(); err == nil {
		t.Fatalf("missing id must fail")
	}
}
