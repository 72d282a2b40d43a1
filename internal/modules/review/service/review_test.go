package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"focusdo/internal/modules/review/domain"
	"focusdo/internal/modules/review/service"
)

type fakeDirectory struct {
	records []domain.Record
	err     error
}

func (f *fakeDirectory) Recent(_ context.Context, limit int) ([]domain.Record, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.records) > limit {
		return f.records[:limit], nil
	}
	return f.records, nil
}

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

func TestHistoryAggregates(t *testing.T) {
	t.Parallel()
	now := time.Date(2026, 8, 14, 18, 0, 0, 0, time.Local)
	directory := &fakeDirectory{records: []domain.Record{
		{ID: "s2", StartedAt: now.Add(-2 * time.Hour), EstimateMin: 30, ActualMin: 20, ActionsCompleted: 2},
		{ID: "s1", StartedAt: now.AddDate(0, 0, -1), EstimateMin: 40, ActualMin: 50, ActionsCompleted: 1},
	}}
	svc := service.NewReviewService(fixedClock{now: now}, directory)

	records, rollups, streak, err := svc.History(context.Background(), 10)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("record count = %d, want 2", len(records))
	}
	if len(rollups) != 2 || rollups[0].Day != "2026-08-14" {
		t.Fatalf("rollups wrong: %+v", rollups)
	}
	if streak != 2 {
		t.Fatalf("streak = %d, want 2", streak)
	}
}

func TestHistoryPropagatesDirectoryError(t *testing.T) {
	t.Parallel()
	boom := errors.New("directory offline")
	svc := service.NewReviewService(fixedClock{}, &fakeDirectory{err: boom})
	if _, _, _, err := svc.History(context.Background(), 10); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped directory error, got %v", err)
	}
}
