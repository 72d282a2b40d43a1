package usecase

import (
	"context"

	"focusdo/internal/modules/review/domain"
	"focusdo/internal/modules/review/dto"
	reviewin "focusdo/internal/modules/review/port/in"
	"focusdo/internal/modules/review/service"
)

type Interactor struct {
	service *service.ReviewService
}

func NewInteractor(svc *service.ReviewService) reviewin.Usecase {
	return &Interactor{service: svc}
}

func (i *Interactor) Recent(ctx context.Context, limit int) ([]dto.SessionView, error) {
	records, err := i.service.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}
	return toViews(records), nil
}

func (i *Interactor) History(ctx context.Context, limit int) (dto.HistoryOutput, error) {
	records, rollups, streak, err := i.service.History(ctx, limit)
	if err != nil {
		return dto.HistoryOutput{}, err
	}
	out := dto.HistoryOutput{Sessions: toViews(records), Streak: streak}
	out.Days = make([]dto.DayView, len(rollups))
	for idx, rollup := range rollups {
		out.Days[idx] = dto.DayView{
			Day:              rollup.Day,
			Sessions:         rollup.Sessions,
			ActionsCompleted: rollup.ActionsCompleted,
			EstimateMin:      rollup.EstimateMin,
			ActualMin:        rollup.ActualMin,
			TimeVariance:     rollup.TimeVariance,
		}
	}
	return out, nil
}

func toViews(records []domain.Record) []dto.SessionView {
	views := make([]dto.SessionView, len(records))
	for idx, r := range records {
		views[idx] = dto.SessionView{
			ID:               r.ID,
			Goal:             r.Goal,
			Status:           r.Status,
			StartedAt:        r.StartedAt,
			EstimateMin:      r.EstimateMin,
			ActualMin:        r.ActualMin,
			ActionsTotal:     r.ActionsTotal,
			ActionsCompleted: r.ActionsCompleted,
			Unsynced:         r.Unsynced,
		}
	}
	return views
}
