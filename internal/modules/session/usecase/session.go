package usecase

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"focusdo/internal/modules/session/domain"
	"focusdo/internal/modules/session/dto"
	sessionin "focusdo/internal/modules/session/port/in"
	"focusdo/internal/modules/session/service"
	"focusdo/internal/platform/clock"
	apperrors "focusdo/internal/platform/errors"
	"focusdo/internal/platform/id"
)

// Interactor is the single owner of in-memory session state. Every mutation
// funnels through here: domain transitions for the local transform, the
// gateway for durability, recompute for derived state. Offline fallbacks are
// committed as successes; only genuine gateway errors block the local
// transition and land in the state's Error field.
type Interactor struct {
	clock   clock.Clock
	gateway *service.Gateway
	engine  *service.SyncEngine

	mu              sync.RWMutex
	session         domain.Session
	currentActionID string
	loading         bool
	lastError       string
	stats           domain.CompletionStats
	sessionComplete bool
	hasSession      bool
}

func NewInteractor(clk clock.Clock, gateway *service.Gateway, engine *service.SyncEngine) sessionin.Usecase {
	return &Interactor{clock: clk, gateway: gateway, engine: engine}
}

func (i *Interactor) StartSession(ctx context.Context, input dto.StartInput) (dto.StartOutput, error) {
	if input.Goal == "" {
		return dto.StartOutput{}, fmt.Errorf("%w: goal is required", apperrors.ErrInvalidInput)
	}
	if len(input.Actions) == 0 {
		return dto.StartOutput{}, fmt.Errorf("%w: at least one action is required", apperrors.ErrInvalidInput)
	}
	actions := make([]domain.Action, 0, len(input.Actions))
	for idx, in := range input.Actions {
		if in.Text == "" || len(in.Text) > 500 {
			return dto.StartOutput{}, fmt.Errorf("%w: action text must be 1-500 characters", apperrors.ErrInvalidInput)
		}
		actions = append(actions, domain.Action{
			Text:         in.Text,
			EstimateMin:  in.EstimateMin,
			HasEstimate:  in.HasEstimate,
			Confidence:   in.Confidence,
			IsCustom:     in.IsCustom,
			OriginalText: in.OriginalText,
			OrderIndex:   idx,
			Status:       domain.StatusPending,
		})
	}
	session := domain.Session{Goal: input.Goal, Actions: actions, Status: domain.SessionActive}

	created, result := i.gateway.CreateSession(ctx, session)

	i.mu.Lock()
	defer i.mu.Unlock()
	i.session = created
	i.currentActionID = ""
	i.hasSession = true
	i.lastError = ""
	// creation always "succeeds" for the user: even on a genuine gateway
	// error we keep whatever session the offline path produced and just
	// surface the message
	if result.Err != "" && !result.IsOffline {
		i.lastError = result.Err
	}
	i.recompute()
	return dto.StartOutput{SessionID: created.ID, IsOffline: result.IsOffline, CreatedAt: created.CreatedAt}, nil
}

func (i *Interactor) MarkCompleted(ctx context.Context, actionID string, actualMin int) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasSession {
		return apperrors.ErrNoActiveSession
	}
	idx, err := i.actionIndex(actionID)
	if err != nil {
		return err
	}
	now := i.clock.Now()
	current := i.session.Actions[idx]
	// completed is only reachable from active; a one-tap complete on a
	// pending action composes both legal edges
	if current.Status == domain.StatusPending {
		current, err = domain.ActivateAction(current, now)
		if err != nil {
			i.lastError = err.Error()
			return err
		}
	}
	next, err := domain.CompleteAction(current, now, actualMin)
	if err != nil {
		i.lastError = err.Error()
		return err
	}
	candidate := i.withAction(idx, next)
	result := i.gateway.CompleteAction(ctx, candidate, actionID)
	if result.Err != "" && !result.IsOffline {
		// explicit remote rejection: do not let local state diverge
		i.lastError = result.Err
		return nil
	}
	i.session = candidate
	if i.currentActionID == actionID {
		i.currentActionID = ""
	}
	i.lastError = ""
	i.recompute()
	return nil
}

func (i *Interactor) UnmarkCompleted(ctx context.Context, actionID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasSession {
		return apperrors.ErrNoActiveSession
	}
	idx, err := i.actionIndex(actionID)
	if err != nil {
		return err
	}
	next, err := domain.ReactivateAction(i.session.Actions[idx], i.clock.Now())
	if err != nil {
		i.lastError = err.Error()
		return err
	}
	// reactivation clears the logged actual so stats never count time for a
	// not-completed action
	next.ActualMin = 0
	next.HasActual = false
	candidate := i.withAction(idx, next)
	result := i.gateway.UncompleteAction(ctx, candidate, actionID)
	if result.Err != "" && !result.IsOffline {
		i.lastError = result.Err
		return nil
	}
	i.session = candidate
	i.lastError = ""
	i.recompute()
	return nil
}

func (i *Interactor) SkipAction(ctx context.Context, actionID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasSession {
		return apperrors.ErrNoActiveSession
	}
	idx, err := i.actionIndex(actionID)
	if err != nil {
		return err
	}
	next, err := domain.SkipAction(i.session.Actions[idx], i.clock.Now())
	if err != nil {
		i.lastError = err.Error()
		return err
	}
	candidate := i.withAction(idx, next)
	// best-effort persist so skip state survives a reload; offline fallback
	// and even a genuine failure never block the local transform here
	result := i.gateway.UpdateAction(ctx, candidate, actionID)
	i.session = candidate
	if i.currentActionID == actionID {
		i.currentActionID = ""
	}
	if result.Err != "" && !result.IsOffline {
		i.lastError = result.Err
	} else {
		i.lastError = ""
	}
	i.recompute()
	return nil
}

func (i *Interactor) ReactivateAction(ctx context.Context, actionID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasSession {
		return apperrors.ErrNoActiveSession
	}
	idx, err := i.actionIndex(actionID)
	if err != nil {
		return err
	}
	next, err := domain.ReactivateAction(i.session.Actions[idx], i.clock.Now())
	if err != nil {
		i.lastError = err.Error()
		return err
	}
	next.ActualMin = 0
	next.HasActual = false
	candidate := i.withAction(idx, next)
	result := i.gateway.UpdateAction(ctx, candidate, actionID)
	i.session = candidate
	if result.Err != "" && !result.IsOffline {
		i.lastError = result.Err
	} else {
		i.lastError = ""
	}
	i.recompute()
	return nil
}

// SetCurrentAction activates the named action and deactivates whichever
// action was active before. At-most-one-active is this controller's policy,
// not the machine's.
func (i *Interactor) SetCurrentAction(ctx context.Context, actionID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasSession {
		return apperrors.ErrNoActiveSession
	}
	idx, err := i.actionIndex(actionID)
	if err != nil {
		return err
	}
	now := i.clock.Now()
	candidate := i.session
	candidate.Actions = append([]domain.Action(nil), i.session.Actions...)
	for j, a := range candidate.Actions {
		if a.Status != domain.StatusActive || a.ID == actionID {
			continue
		}
		demoted, err := domain.Transition(a, domain.StatusPending, now, -1)
		if err != nil {
			i.lastError = err.Error()
			return err
		}
		candidate.Actions[j] = demoted
	}
	activated, err := domain.ActivateAction(candidate.Actions[idx], now)
	if err != nil {
		i.lastError = err.Error()
		return err
	}
	candidate.Actions[idx] = activated
	i.session = candidate
	i.currentActionID = actionID
	i.lastError = ""
	i.recompute()
	return nil
}

func (i *Interactor) AddAction(ctx context.Context, input dto.ActionInput) (string, error) {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasSession {
		return "", apperrors.ErrNoActiveSession
	}
	if input.Text == "" || len(input.Text) > 500 {
		return "", fmt.Errorf("%w: action text must be 1-500 characters", apperrors.ErrInvalidInput)
	}
	action := domain.Action{
		Text:        input.Text,
		EstimateMin: input.EstimateMin,
		HasEstimate: input.HasEstimate,
		Confidence:  input.Confidence,
		IsCustom:    true,
		OrderIndex:  len(i.session.Actions),
		Status:      domain.StatusPending,
	}
	candidate := i.session
	candidate.Actions = append(append([]domain.Action(nil), i.session.Actions...), action)
	candidate.TotalEstimateMin = domain.TotalEstimate(candidate.Actions)
	created, result := i.gateway.CreateAction(ctx, candidate, action)
	candidate.Actions[len(candidate.Actions)-1] = created
	i.session = candidate
	if result.Err != "" && !result.IsOffline {
		i.lastError = result.Err
	} else {
		i.lastError = ""
	}
	i.recompute()
	return created.ID, nil
}

// RemoveAction is the explicit user delete: the action leaves the collection
// entirely rather than transitioning.
func (i *Interactor) RemoveAction(ctx context.Context, actionID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasSession {
		return apperrors.ErrNoActiveSession
	}
	idx, err := i.actionIndex(actionID)
	if err != nil {
		return err
	}
	candidate := i.session
	candidate.Actions = append([]domain.Action(nil), i.session.Actions...)
	candidate.Actions = append(candidate.Actions[:idx], candidate.Actions[idx+1:]...)
	candidate.TotalEstimateMin = domain.TotalEstimate(candidate.Actions)
	result := i.gateway.DeleteAction(ctx, candidate, actionID)
	i.session = candidate
	if i.currentActionID == actionID {
		i.currentActionID = ""
	}
	if result.Err != "" && !result.IsOffline {
		i.lastError = result.Err
	} else {
		i.lastError = ""
	}
	i.recompute()
	return nil
}

// AddTimeExtension appends to the action's extension log. Local-only: the
// extra minutes reach the remote store inside actual time at completion.
func (i *Interactor) AddTimeExtension(ctx context.Context, actionID string, minutes int) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasSession {
		return apperrors.ErrNoActiveSession
	}
	if minutes <= 0 {
		return fmt.Errorf("%w: extension minutes must be positive", apperrors.ErrInvalidInput)
	}
	idx, err := i.actionIndex(actionID)
	if err != nil {
		return err
	}
	i.session.Actions[idx] = domain.AddExtension(i.session.Actions[idx], minutes)
	i.recompute()
	return nil
}

func (i *Interactor) UpdateTimeSpent(ctx context.Context, minutes int) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasSession {
		return apperrors.ErrNoActiveSession
	}
	if minutes < 0 {
		return fmt.Errorf("%w: time spent cannot be negative", apperrors.ErrInvalidInput)
	}
	candidate := i.session
	candidate.ActualSpentMin = minutes
	result := i.gateway.UpdateProgress(ctx, candidate, &minutes, nil)
	if result.Err != "" && !result.IsOffline {
		i.lastError = result.Err
		return nil
	}
	i.session = candidate
	i.lastError = ""
	return nil
}

func (i *Interactor) CompleteSession(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if !i.hasSession {
		return apperrors.ErrNoActiveSession
	}
	status := domain.SessionCompleted
	candidate := i.session
	candidate.Status = status
	result := i.gateway.UpdateProgress(ctx, candidate, nil, &status)
	if result.Err != "" && !result.IsOffline {
		i.lastError = result.Err
		return nil
	}
	i.session = candidate
	i.lastError = ""
	i.recompute()
	return nil
}

// LoadSession replaces in-memory state wholesale with the stored session.
func (i *Interactor) LoadSession(ctx context.Context, sessionID string) error {
	session, _, err := i.gateway.FetchSession(ctx, sessionID)
	if err != nil {
		i.mu.Lock()
		i.lastError = err.Error()
		i.mu.Unlock()
		return err
	}
	i.mu.Lock()
	defer i.mu.Unlock()
	i.session = session
	i.hasSession = true
	i.lastError = ""
	if active, ok := domain.CurrentActiveAction(session.Actions); ok {
		i.currentActionID = active.ID
	} else {
		i.currentActionID = ""
	}
	i.recompute()
	return nil
}

func (i *Interactor) Snapshot(ctx context.Context) dto.Snapshot {
	i.mu.RLock()
	defer i.mu.RUnlock()
	snap := dto.Snapshot{
		SessionID:       i.session.ID,
		Goal:            i.session.Goal,
		Actions:         append([]domain.Action(nil), i.session.Actions...),
		CompletedIDs:    map[string]bool{},
		CurrentActionID: i.currentActionID,
		TotalEstimate:   i.session.TotalEstimateMin,
		ActualSpent:     i.session.ActualSpentMin,
		Status:          i.session.Status,
		Loading:         i.loading,
		Error:           i.lastError,
		PendingSync:     i.gateway.PendingCount(ctx),
		Stats:           i.stats,
		SessionComplete: i.sessionComplete,
	}
	for _, a := range i.session.Actions {
		if a.Status == domain.StatusCompleted {
			snap.CompletedIDs[a.ID] = true
		}
	}
	return snap
}

func (i *Interactor) SessionSummary(ctx context.Context) domain.Summary {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return domain.Summarize(i.stats)
}

// ListRecent returns session digests, most recent first.
func (i *Interactor) ListRecent(ctx context.Context, limit int) ([]dto.SessionDigest, error) {
	sessions, _, err := i.gateway.ListSessions(ctx, limit)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(sessions, func(a, b int) bool {
		return sessions[a].CreatedAt.After(sessions[b].CreatedAt)
	})
	if limit > 0 && len(sessions) > limit {
		sessions = sessions[:limit]
	}
	digests := make([]dto.SessionDigest, len(sessions))
	for idx, session := range sessions {
		completed := 0
		for _, a := range session.Actions {
			if a.Status == domain.StatusCompleted {
				completed++
			}
		}
		digests[idx] = dto.SessionDigest{
			ID:               session.ID,
			Goal:             session.Goal,
			Status:           session.Status,
			CreatedAt:        session.CreatedAt,
			TotalEstimate:    session.TotalEstimateMin,
			ActualSpent:      session.ActualSpentMin,
			ActionsTotal:     len(session.Actions),
			ActionsCompleted: completed,
			IsLocal:          id.IsLocal(session.ID),
		}
	}
	return digests, nil
}

func (i *Interactor) SyncNow(ctx context.Context) (dto.SyncOutput, error) {
	result, err := i.engine.SyncNow(ctx)
	if err != nil {
		return dto.SyncOutput{}, err
	}
	return dto.SyncOutput{Synced: result.Synced, Failed: result.Failed, Errors: result.Errors}, nil
}

// recompute refreshes every derived field; callers hold the write lock.
func (i *Interactor) recompute() {
	i.session.TotalEstimateMin = domain.TotalEstimate(i.session.Actions)
	i.stats = domain.ComputeStats(i.session.Actions)
	i.sessionComplete = domain.IsSessionComplete(i.session.Actions)
}

func (i *Interactor) actionIndex(actionID string) (int, error) {
	for idx, a := range i.session.Actions {
		if a.ID == actionID {
			return idx, nil
		}
	}
	err := fmt.Errorf("%w: %s", domain.ErrActionNotFound, actionID)
	i.lastError = err.Error()
	return 0, err
}

func (i *Interactor) withAction(idx int, action domain.Action) domain.Session {
	candidate := i.session
	candidate.Actions = append([]domain.Action(nil), i.session.Actions...)
	candidate.Actions[idx] = action
	return candidate
}
