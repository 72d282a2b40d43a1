package in

import (
	"context"

	"focusdo/internal/modules/review/dto"
)

type Usecase interface {
	Recent(ctx context.Context, limit int) ([]dto.SessionView, error)
	History(ctx context.Context, limit int) (dto.HistoryOutput, error)
}
