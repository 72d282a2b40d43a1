package in

import (
	"context"

	sessiondto "focusdo/internal/modules/session/dto"
	sessionin "focusdo/internal/modules/session/port/in"
)

type CLIHandler struct {
	usecase sessionin.Usecase
}

func NewCLIHandler(usecase sessionin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Start(ctx context.Context, goal string, actions []sessiondto.ActionInput) (sessiondto.StartOutput, error) {
	return h.usecase.StartSession(ctx, sessiondto.StartInput{Goal: goal, Actions: actions})
}

func (h CLIHandler) Load(ctx context.Context, sessionID string) error {
	return h.usecase.LoadSession(ctx, sessionID)
}

func (h CLIHandler) Complete(ctx context.Context, actionID string, actualMin int) error {
	return h.usecase.MarkCompleted(ctx, actionID, actualMin)
}

func (h CLIHandler) Uncomplete(ctx context.Context, actionID string) error {
	return h.usecase.UnmarkCompleted(ctx, actionID)
}

func (h CLIHandler) Skip(ctx context.Context, actionID string) error {
	return h.usecase.SkipAction(ctx, actionID)
}

func (h CLIHandler) Reactivate(ctx context.Context, actionID string) error {
	return h.usecase.ReactivateAction(ctx, actionID)
}

func (h CLIHandler) Focus(ctx context.Context, actionID string) error {
	return h.usecase.SetCurrentAction(ctx, actionID)
}

func (h CLIHandler) Add(ctx context.Context, input sessiondto.ActionInput) (string, error) {
	return h.usecase.AddAction(ctx, input)
}

func (h CLIHandler) Remove(ctx context.Context, actionID string) error {
	return h.usecase.RemoveAction(ctx, actionID)
}

func (h CLIHandler) Extend(ctx context.Context, actionID string, minutes int) error {
	return h.usecase.AddTimeExtension(ctx, actionID, minutes)
}

func (h CLIHandler) LogTime(ctx context.Context, minutes int) error {
	return h.usecase.UpdateTimeSpent(ctx, minutes)
}

func (h CLIHandler) Finish(ctx context.Context) error {
	return h.usecase.CompleteSession(ctx)
}

func (h CLIHandler) Snapshot(ctx context.Context) sessiondto.Snapshot {
	return h.usecase.Snapshot(ctx)
}

func (h CLIHandler) Summary(ctx context.Context) sessiondto.Summary {
	return h.usecase.SessionSummary(ctx)
}

func (h CLIHandler) Recent(ctx context.Context, limit int) ([]sessiondto.SessionDigest, error) {
	return h.usecase.ListRecent(ctx, limit)
}

func (h CLIHandler) Sync(ctx context.Context) (sessiondto.SyncOutput, error) {
	return h.usecase.SyncNow(ctx)
}
