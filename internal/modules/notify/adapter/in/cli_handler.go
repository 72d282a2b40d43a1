package in

import (
	"context"

	notifydto "focusdo/internal/modules/notify/dto"
	notifyin "focusdo/internal/modules/notify/port/in"
)

type CLIHandler struct {
	usecase notifyin.Usecase
}

func NewCLIHandler(usecase notifyin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) List(ctx context.Context) ([]notifydto.PluginInfo, error) {
	return h.usecase.List(ctx)
}

func (h CLIHandler) Doctor(ctx context.Context) ([]notifydto.DoctorResult, error) {
	return h.usecase.Doctor(ctx)
}

func (h CLIHandler) Dispatch(ctx context.Context, event notifydto.EventInput) ([]notifydto.DispatchResult, error) {
	return h.usecase.Dispatch(ctx, event)
}
