package in

import (
	"context"

	"focusdo/internal/modules/notify/dto"
)

type Usecase interface {
	List(ctx context.Context) ([]dto.PluginInfo, error)
	Doctor(ctx context.Context) ([]dto.DoctorResult, error)
	Dispatch(ctx context.Context, event dto.EventInput) ([]dto.DispatchResult, error)
}
