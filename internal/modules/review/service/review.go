package service

import (
	"context"
	"fmt"

	"focusdo/internal/modules/review/domain"
	reviewout "focusdo/internal/modules/review/port/out"
	"focusdo/internal/platform/clock"
)

type ReviewService struct {
	clock     clock.Clock
	directory reviewout.SessionDirectory
}

func NewReviewService(clk clock.Clock, directory reviewout.SessionDirectory) *ReviewService {
	return &ReviewService{clock: clk, directory: directory}
}

func (s *ReviewService) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	records, err := s.directory.Recent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("load session history: %w", err)
	}
	return records, nil
}

// History returns the recent records together with their per-day rollups
// and the current streak.
func (s *ReviewService) History(ctx context.Context, limit int) ([]domain.Record, []domain.DayRollup, int, error) {
	records, err := s.Recent(ctx, limit)
	if err != nil {
		return nil, nil, 0, err
	}
	return records, domain.RollupByDay(records), domain.Streak(records, s.clock.Now()), nil
}
