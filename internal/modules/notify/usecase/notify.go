package usecase

import (
	"context"

	"focusdo/internal/modules/notify/domain"
	"focusdo/internal/modules/notify/dto"
	notifyin "focusdo/internal/modules/notify/port/in"
	"focusdo/internal/modules/notify/service"
)

type Interactor struct {
	service *service.NotifyService
}

func NewInteractor(svc *service.NotifyService) notifyin.Usecase {
	return &Interactor{service: svc}
}

func (i *Interactor) List(ctx context.Context) ([]dto.PluginInfo, error) {
	return i.service.List(ctx)
}

func (i *Interactor) Doctor(ctx context.Context) ([]dto.DoctorResult, error) {
	return i.service.Doctor(ctx)
}

func (i *Interactor) Dispatch(ctx context.Context, event dto.EventInput) ([]dto.DispatchResult, error) {
	results, err := i.service.Dispatch(ctx, domain.Event{
		Kind:       domain.EventKind(event.Kind),
		Goal:       event.Goal,
		ActionText: event.ActionText,
		Minutes:    event.Minutes,
		At:         event.At,
	})
	if err != nil {
		return nil, err
	}
	out := make([]dto.DispatchResult, len(results))
	for idx, r := range results {
		out[idx] = dto.DispatchResult{Plugin: r.Plugin, Delivered: r.Delivered, Error: r.Error}
	}
	return out, nil
}
