package in

import (
	"context"

	reviewdto "focusdo/internal/modules/review/dto"
	reviewin "focusdo/internal/modules/review/port/in"
)

type CLIHandler struct {
	usecase reviewin.Usecase
}

func NewCLIHandler(usecase reviewin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Recent(ctx context.Context, limit int) ([]reviewdto.SessionView, error) {
	return h.usecase.Recent(ctx, limit)
}

func (h CLIHandler) History(ctx context.Context, limit int) (reviewdto.HistoryOutput, error) {
	return h.usecase.History(ctx, limit)
}
