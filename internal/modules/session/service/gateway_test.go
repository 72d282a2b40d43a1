package service_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"focusdo/internal/modules/session/domain"
)

// fakeRemote records every call in order and can be told to fail.
type fakeRemote struct {
	mu        sync.Mutex
	calls     []string
	failAll   bool
	failKinds map[string]bool
	sessions  map[string]domain.Session
	nextID    int

	// onUpdateAction, when set, runs before the call is recorded; used to
	// hold a drain open mid-flight
	onUpdateAction func()
}

func newFakeRemote() *fakeRemote {
	return &fakeRemote{failKinds: map[string]bool{}, sessions: map[string]domain.Session{}}
}

func (f *fakeRemote) record(call string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call)
	if f.failAll || f.failKinds[call] {
		return fmt.Errorf("remote unavailable: %s", call)
	}
	return nil
}

func (f *fakeRemote) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeRemote) CreateSession(_ context.Context, session domain.Session) (domain.Session, error) {
	if err := f.record("create_session"); err != nil {
		return domain.Session{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	session.ID = fmt.Sprintf("srv-%d", f.nextID)
	f.sessions[session.ID] = session
	return session, nil
}

func (f *fakeRemote) InsertActions(_ context.Context, sessionID string, actions []domain.Action) ([]domain.Action, error) {
	if err := f.record("insert_actions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Action, len(actions))
	for i, a := range actions {
		f.nextID++
		a.ID = fmt.Sprintf("srv-a%d", f.nextID)
		out[i] = a
	}
	session := f.sessions[sessionID]
	session.Actions = append(session.Actions, out...)
	f.sessions[sessionID] = session
	return out, nil
}

func (f *fakeRemote) UpdateAction(_ context.Context, update domain.UpdateActionPayload) error {
	if f.onUpdateAction != nil {
		f.onUpdateAction()
	}
	return f.record("update_action:" + update.ActionID)
}

func (f *fakeRemote) UpdateSession(_ context.Context, update domain.UpdateSessionPayload) error {
	return f.record("update_session:" + update.SessionID)
}

func (f *fakeRemote) DeleteAction(_ context.Context, sessionID, actionID string) error {
	return f.record("delete_action:" + actionID)
}

func (f *fakeRemote) FetchSession(_ context.Context, sessionID string) (domain.Session, error) {
	if err := f.record("fetch_session"); err != nil {
		return domain.Session{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return domain.Session{}, errors.New("no such session")
	}
	return session, nil
}

func (f *fakeRemote) ListSessions(_ context.Context, userID string, limit int) ([]domain.Session, error) {
	if err := f.record("list_sessions"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

// fakeOffline is a map-backed offline store.
type fakeOffline struct {
	mu       sync.Mutex
	sessions map[string]domain.Session
	pending  []domain.PendingOp
	failing  bool
}

func newFakeOffline() *fakeOffline {
	return &fakeOffline{sessions: map[string]domain.Session{}}
}

func (f *fakeOffline) SaveSession(_ context.Context, session domain.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("disk full")
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeOffline) LoadSession(_ context.Context, sessionID string) (domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	session, ok := f.sessions[sessionID]
	if !ok {
		return domain.Session{}, errors.New("no shadow copy")
	}
	return session, nil
}

func (f *fakeOffline) ListSessions(_ context.Context, limit int) ([]domain.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Session, 0, len(f.sessions))
	for _, s := range f.sessions {
		out = append(out, s)
	}
	return out, nil
}

func (f *fakeOffline) DeleteSession(_ context.Context, sessionID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, sessionID)
	return nil
}

func (f *fakeOffline) AppendPending(_ context.Context, op domain.PendingOp) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("disk full")
	}
	f.pending = append(f.pending, op)
	return nil
}

func (f *fakeOffline) ListPending(_ context.Context) ([]domain.PendingOp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PendingOp(nil), f.pending...), nil
}

func (f *fakeOffline) RemovePending(_ context.Context, opID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, op := range f.pending {
		if op.ID == opID {
			f.pending = append(f.pending[:i], f.pending[i+1:]...)
			return nil
		}
	}
	return nil
}

func (f *fakeOffline) RecordFailure(_ context.Context, opID, message string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.pending {
		if f.pending[i].ID == opID {
			f.pending[i].Attempts++
			f.pending[i].LastError = message
		}
	}
	return nil
}

func (f *fakeOffline) PendingCount(_ context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.pending), nil
}

type fakeConn struct {
	mu     sync.Mutex
	online bool
	subs   []chan bool
}

func (f *fakeConn) Online() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.online
}

func (f *fakeConn) Subscribe() <-chan bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := make(chan bool, 4)
	f.subs = append(f.subs, ch)
	return ch
}

func (f *fakeConn) set(online bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.online = online
	for _, ch := range f.subs {
		ch <- online
	}
}

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(time.Second)
	return f.now
}

type seqID struct {
	mu sync.Mutex
	n  int
}

func (s *seqID) New() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("id-%d", s.n)
}

func (s *seqID) NewLocal() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.n++
	return fmt.Sprintf("local-%d", s.n)
}
