package out

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"focusdo/internal/modules/session/domain"
	sessionout "focusdo/internal/modules/session/port/out"
	apperrors "focusdo/internal/platform/errors"
)

const requestTimeout = 15 * time.Second

// HTTPRemoteStore talks to the hosted session API. Every write is an
// idempotent overwrite keyed by id, which is what lets the sync engine
// replay queued operations without dedup bookkeeping.
type HTTPRemoteStore struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewHTTPRemoteStore(baseURL, apiKey string) sessionout.RemoteStore {
	return &HTTPRemoteStore{
		baseURL:    baseURL,
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: requestTimeout},
	}
}

type apiAction struct {
	ID           string     `json:"id,omitempty"`
	SessionID    string     `json:"session_id,omitempty"`
	Text         string     `json:"text"`
	EstimateMin  *int       `json:"estimated_minutes,omitempty"`
	Confidence   string     `json:"confidence,omitempty"`
	IsCustom     bool       `json:"is_custom"`
	OriginalText string     `json:"original_text,omitempty"`
	OrderIndex   int        `json:"order_index"`
	Status       string     `json:"status"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	SkippedAt    *time.Time `json:"skipped_at,omitempty"`
	ActualMin    *int       `json:"actual_minutes,omitempty"`
}

type apiSession struct {
	ID               string      `json:"id,omitempty"`
	UserID           string      `json:"user_id"`
	Goal             string      `json:"goal"`
	TotalEstimateMin int         `json:"total_estimated_minutes"`
	ActualSpentMin   *int        `json:"actual_minutes_spent,omitempty"`
	Status           string      `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
	Actions          []apiAction `json:"actions,omitempty"`
}

func (s *HTTPRemoteStore) CreateSession(ctx context.Context, session domain.Session) (domain.Session, error) {
	created := apiSession{}
	if err := s.do(ctx, http.MethodPost, "/sessions", toAPISession(session), &created); err != nil {
		return domain.Session{}, fmt.Errorf("create session: %w", err)
	}
	out := fromAPISession(created)
	// the server echoes the session row only; actions land via InsertActions
	out.Actions = session.Actions
	return out, nil
}

func (s *HTTPRemoteStore) InsertActions(ctx context.Context, sessionID string, actions []domain.Action) ([]domain.Action, error) {
	payload := make([]apiAction, len(actions))
	for i, a := range actions {
		payload[i] = toAPIAction(a)
		payload[i].SessionID = sessionID
	}
	inserted := []apiAction{}
	if err := s.do(ctx, http.MethodPost, "/sessions/"+url.PathEscape(sessionID)+"/actions", payload, &inserted); err != nil {
		return nil, fmt.Errorf("insert actions: %w", err)
	}
	out := make([]domain.Action, len(inserted))
	for i, a := range inserted {
		out[i] = fromAPIAction(a)
	}
	return out, nil
}

func (s *HTTPRemoteStore) UpdateAction(ctx context.Context, update domain.UpdateActionPayload) error {
	body := apiAction{
		SessionID:   update.SessionID,
		Status:      string(update.Status),
		CompletedAt: update.CompletedAt,
		SkippedAt:   update.SkippedAt,
		ActualMin:   update.ActualMin,
	}
	if err := s.do(ctx, http.MethodPatch, "/actions/"+url.PathEscape(update.ActionID), body, nil); err != nil {
		return fmt.Errorf("update action %s: %w", update.ActionID, err)
	}
	return nil
}

func (s *HTTPRemoteStore) UpdateSession(ctx context.Context, update domain.UpdateSessionPayload) error {
	body := struct {
		ActualSpentMin *int    `json:"actual_minutes_spent,omitempty"`
		Status         *string `json:"status,omitempty"`
	}{ActualSpentMin: update.ActualSpentMin}
	if update.Status != nil {
		status := string(*update.Status)
		body.Status = &status
	}
	if err := s.do(ctx, http.MethodPatch, "/sessions/"+url.PathEscape(update.SessionID), body, nil); err != nil {
		return fmt.Errorf("update session %s: %w", update.SessionID, err)
	}
	return nil
}

func (s *HTTPRemoteStore) DeleteAction(ctx context.Context, sessionID, actionID string) error {
	path := "/sessions/" + url.PathEscape(sessionID) + "/actions/" + url.PathEscape(actionID)
	if err := s.do(ctx, http.MethodDelete, path, nil, nil); err != nil {
		return fmt.Errorf("delete action %s: %w", actionID, err)
	}
	return nil
}

func (s *HTTPRemoteStore) FetchSession(ctx context.Context, sessionID string) (domain.Session, error) {
	fetched := apiSession{}
	if err := s.do(ctx, http.MethodGet, "/sessions/"+url.PathEscape(sessionID), nil, &fetched); err != nil {
		return domain.Session{}, fmt.Errorf("fetch session %s: %w", sessionID, err)
	}
	return fromAPISession(fetched), nil
}

func (s *HTTPRemoteStore) ListSessions(ctx context.Context, userID string, limit int) ([]domain.Session, error) {
	query := url.Values{}
	query.Set("user_id", userID)
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	listed := []apiSession{}
	if err := s.do(ctx, http.MethodGet, "/sessions?"+query.Encode(), nil, &listed); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	out := make([]domain.Session, len(listed))
	for i, session := range listed {
		out[i] = fromAPISession(session)
	}
	return out, nil
}

func (s *HTTPRemoteStore) do(ctx context.Context, method, path string, body, into any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "focusdo/1.0")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return apperrors.ErrNotFound
	}
	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("status %d: %s", resp.StatusCode, string(raw))
	}
	if into == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func toAPIAction(a domain.Action) apiAction {
	out := apiAction{
		ID:           a.ID,
		Text:         a.Text,
		Confidence:   string(a.Confidence),
		IsCustom:     a.IsCustom,
		OriginalText: a.OriginalText,
		OrderIndex:   a.OrderIndex,
		Status:       string(a.Status),
		CompletedAt:  a.CompletedAt,
		SkippedAt:    a.SkippedAt,
	}
	if a.HasEstimate {
		estimate := a.EstimateMin
		out.EstimateMin = &estimate
	}
	if a.HasActual {
		actual := a.ActualMin
		out.ActualMin = &actual
	}
	return out
}

func fromAPIAction(a apiAction) domain.Action {
	out := domain.Action{
		ID:           a.ID,
		Text:         a.Text,
		Confidence:   domain.Confidence(a.Confidence),
		IsCustom:     a.IsCustom,
		OriginalText: a.OriginalText,
		OrderIndex:   a.OrderIndex,
		Status:       domain.ActionStatus(a.Status),
		CompletedAt:  a.CompletedAt,
		SkippedAt:    a.SkippedAt,
	}
	if a.EstimateMin != nil {
		out.EstimateMin = *a.EstimateMin
		out.HasEstimate = true
	}
	if a.ActualMin != nil {
		out.ActualMin = *a.ActualMin
		out.HasActual = true
	}
	return out
}

func toAPISession(session domain.Session) apiSession {
	out := apiSession{
		ID:               session.ID,
		UserID:           session.UserID,
		Goal:             session.Goal,
		TotalEstimateMin: session.TotalEstimateMin,
		Status:           string(session.Status),
		CreatedAt:        session.CreatedAt,
		UpdatedAt:        session.UpdatedAt,
	}
	if session.ActualSpentMin > 0 {
		spent := session.ActualSpentMin
		out.ActualSpentMin = &spent
	}
	return out
}

func fromAPISession(session apiSession) domain.Session {
	out := domain.Session{
		ID:               session.ID,
		UserID:           session.UserID,
		Goal:             session.Goal,
		TotalEstimateMin: session.TotalEstimateMin,
		Status:           domain.SessionStatus(session.Status),
		CreatedAt:        session.CreatedAt,
		UpdatedAt:        session.UpdatedAt,
	}
	if session.ActualSpentMin != nil {
		out.ActualSpentMin = *session.ActualSpentMin
	}
	actions := make([]domain.Action, len(session.Actions))
	for i, a := range session.Actions {
		actions[i] = fromAPIAction(a)
	}
	out.Actions = actions
	return out
}
