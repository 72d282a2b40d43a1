package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"focusdo/internal/modules/session/domain"
	sessionout "focusdo/internal/modules/session/port/out"
	apperrors "focusdo/internal/platform/errors"

	_ "modernc.org/sqlite"
)

const timeFormat = "2006-01-02T15:04:05.000Z07:00"

// SQLiteOfflineStore keeps the shadow copies and the pending-operation
// queue in one local database so a session survives restarts and network
// loss together with the writes that still owe the server.
type SQLiteOfflineStore struct {
	db *sql.DB
}

func NewSQLiteOfflineStore(dbPath string) (*SQLiteOfflineStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	store := &SQLiteOfflineStore{db: db}
	if err := store.ensureSchema(context.Background()); err != nil {
		return nil, err
	}
	return store, nil
}

var _ sessionout.OfflineStore = (*SQLiteOfflineStore)(nil)

func (s *SQLiteOfflineStore) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS offline_sessions (
  id TEXT PRIMARY KEY,
  user_id TEXT,
  goal TEXT NOT NULL,
  total_estimate_min INTEGER NOT NULL,
  actual_spent_min INTEGER NOT NULL,
  status TEXT NOT NULL,
  created_at TEXT NOT NULL,
  updated_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS offline_actions (
  id TEXT PRIMARY KEY,
  session_id TEXT NOT NULL,
  text TEXT NOT NULL,
  estimate_min INTEGER,
  confidence TEXT,
  is_custom INTEGER NOT NULL,
  original_text TEXT,
  order_index INTEGER NOT NULL,
  status TEXT NOT NULL,
  completed_at TEXT,
  skipped_at TEXT,
  actual_min INTEGER,
  extensions TEXT
);
CREATE INDEX IF NOT EXISTS idx_offline_actions_session ON offline_actions(session_id);
CREATE TABLE IF NOT EXISTS pending_ops (
  id TEXT PRIMARY KEY,
  kind TEXT NOT NULL,
  payload TEXT NOT NULL,
  created_at TEXT NOT NULL,
  attempts INTEGER NOT NULL DEFAULT 0,
  last_error TEXT
);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create offline schema: %w", err)
	}
	return nil
}

func (s *SQLiteOfflineStore) Close() error {
	return s.db.Close()
}

// SaveSession overwrites the whole aggregate: session row plus every
// action row. Replacing the action set wholesale keeps deletes simple.
func (s *SQLiteOfflineStore) SaveSession(ctx context.Context, session domain.Session) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save: %w", err)
	}
	defer tx.Rollback()

	const upsertSession = `
INSERT INTO offline_sessions (id, user_id, goal, total_estimate_min, actual_spent_min, status, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
  user_id=excluded.user_id,
  goal=excluded.goal,
  total_estimate_min=excluded.total_estimate_min,
  actual_spent_min=excluded.actual_spent_min,
  status=excluded.status,
  updated_at=excluded.updated_at;
`
	_, err = tx.ExecContext(ctx, upsertSession,
		session.ID,
		session.UserID,
		session.Goal,
		session.TotalEstimateMin,
		session.ActualSpentMin,
		string(session.Status),
		session.CreatedAt.UTC().Format(timeFormat),
		session.UpdatedAt.UTC().Format(timeFormat),
	)
	if err != nil {
		return fmt.Errorf("upsert session %s: %w", session.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM offline_actions WHERE session_id = ?`, session.ID); err != nil {
		return fmt.Errorf("clear actions for %s: %w", session.ID, err)
	}

	const insertAction = `
INSERT INTO offline_actions (id, session_id, text, estimate_min, confidence, is_custom, original_text, order_index, status, completed_at, skipped_at, actual_min, extensions)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
`
	for _, a := range session.Actions {
		extensions, err := json.Marshal(a.ExtensionsMin)
		if err != nil {
			return fmt.Errorf("encode extensions for %s: %w", a.ID, err)
		}
		_, err = tx.ExecContext(ctx, insertAction,
			a.ID,
			session.ID,
			a.Text,
			nullableInt(a.EstimateMin, a.HasEstimate),
			string(a.Confidence),
			boolToInt(a.IsCustom),
			a.OriginalText,
			a.OrderIndex,
			string(a.Status),
			nullableTime(a.CompletedAt),
			nullableTime(a.SkippedAt),
			nullableInt(a.ActualMin, a.HasActual),
			string(extensions),
		)
		if err != nil {
			return fmt.Errorf("insert action %s: %w", a.ID, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save: %w", err)
	}
	return nil
}

func (s *SQLiteOfflineStore) LoadSession(ctx context.Context, sessionID string) (domain.Session, error) {
	const query = `
SELECT id, user_id, goal, total_estimate_min, actual_spent_min, status, created_at, updated_at
FROM offline_sessions WHERE id = ?;
`
	session, err := scanSession(s.db.QueryRowContext(ctx, query, sessionID))
	if err != nil {
		if err == sql.ErrNoRows {
			return domain.Session{}, fmt.Errorf("session %s: %w", sessionID, apperrors.ErrNotFound)
		}
		return domain.Session{}, fmt.Errorf("load session %s: %w", sessionID, err)
	}
	actions, err := s.loadActions(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	session.Actions = actions
	return session, nil
}

func (s *SQLiteOfflineStore) ListSessions(ctx context.Context, limit int) ([]domain.Session, error) {
	query := `
SELECT id, user_id, goal, total_estimate_min, actual_spent_min, status, created_at, updated_at
FROM offline_sessions ORDER BY updated_at DESC
`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	defer rows.Close()

	sessions := []domain.Session{}
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list sessions: %w", err)
	}
	for i := range sessions {
		actions, err := s.loadActions(ctx, sessions[i].ID)
		if err != nil {
			return nil, err
		}
		sessions[i].Actions = actions
	}
	return sessions, nil
}

func (s *SQLiteOfflineStore) DeleteSession(ctx context.Context, sessionID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete: %w", err)
	}
	defer tx.Rollback()
	if _, err := tx.ExecContext(ctx, `DELETE FROM offline_actions WHERE session_id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete actions for %s: %w", sessionID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM offline_sessions WHERE id = ?`, sessionID); err != nil {
		return fmt.Errorf("delete session %s: %w", sessionID, err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete: %w", err)
	}
	return nil
}

func (s *SQLiteOfflineStore) AppendPending(ctx context.Context, op domain.PendingOp) error {
	const stmt = `
INSERT INTO pending_ops (id, kind, payload, created_at, attempts, last_error)
VALUES (?, ?, ?, ?, ?, ?);
`
	_, err := s.db.ExecContext(ctx, stmt,
		op.ID,
		string(op.Kind),
		string(op.Payload),
		op.CreatedAt.UTC().Format(timeFormat),
		op.Attempts,
		op.LastError,
	)
	if err != nil {
		return fmt.Errorf("append pending %s: %w", op.ID, err)
	}
	return nil
}

func (s *SQLiteOfflineStore) ListPending(ctx context.Context) ([]domain.PendingOp, error) {
	const query = `
SELECT id, kind, payload, created_at, attempts, last_error
FROM pending_ops ORDER BY created_at ASC;
`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	defer rows.Close()

	ops := []domain.PendingOp{}
	for rows.Next() {
		var (
			op        domain.PendingOp
			kind      string
			payload   string
			createdAt string
			lastError sql.NullString
		)
		if err := rows.Scan(&op.ID, &kind, &payload, &createdAt, &op.Attempts, &lastError); err != nil {
			return nil, fmt.Errorf("scan pending op: %w", err)
		}
		op.Kind = domain.OpKind(kind)
		op.Payload = json.RawMessage(payload)
		op.CreatedAt, err = time.Parse(timeFormat, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse pending op %s created_at: %w", op.ID, err)
		}
		op.LastError = lastError.String
		ops = append(ops, op)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list pending: %w", err)
	}
	return ops, nil
}

func (s *SQLiteOfflineStore) RemovePending(ctx context.Context, opID string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM pending_ops WHERE id = ?`, opID); err != nil {
		return fmt.Errorf("remove pending %s: %w", opID, err)
	}
	return nil
}

func (s *SQLiteOfflineStore) RecordFailure(ctx context.Context, opID, message string) error {
	const stmt = `UPDATE pending_ops SET attempts = attempts + 1, last_error = ? WHERE id = ?`
	if _, err := s.db.ExecContext(ctx, stmt, message, opID); err != nil {
		return fmt.Errorf("record failure for %s: %w", opID, err)
	}
	return nil
}

func (s *SQLiteOfflineStore) PendingCount(ctx context.Context) (int, error) {
	count := 0
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pending_ops`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count pending: %w", err)
	}
	return count, nil
}

func (s *SQLiteOfflineStore) loadActions(ctx context.Context, sessionID string) ([]domain.Action, error) {
	const query = `
SELECT id, text, estimate_min, confidence, is_custom, original_text, order_index, status, completed_at, skipped_at, actual_min, extensions
FROM offline_actions WHERE session_id = ? ORDER BY order_index ASC;
`
	rows, err := s.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load actions for %s: %w", sessionID, err)
	}
	defer rows.Close()

	actions := []domain.Action{}
	for rows.Next() {
		var (
			a            domain.Action
			estimate     sql.NullInt64
			confidence   sql.NullString
			isCustom     int
			originalText sql.NullString
			status       string
			completedAt  sql.NullString
			skippedAt    sql.NullString
			actual       sql.NullInt64
			extensions   sql.NullString
		)
		err := rows.Scan(&a.ID, &a.Text, &estimate, &confidence, &isCustom, &originalText, &a.OrderIndex, &status, &completedAt, &skippedAt, &actual, &extensions)
		if err != nil {
			return nil, fmt.Errorf("scan action: %w", err)
		}
		if estimate.Valid {
			a.EstimateMin = int(estimate.Int64)
			a.HasEstimate = true
		}
		a.Confidence = domain.Confidence(confidence.String)
		a.IsCustom = isCustom != 0
		a.OriginalText = originalText.String
		a.Status = domain.ActionStatus(status)
		if a.CompletedAt, err = parseNullableTime(completedAt); err != nil {
			return nil, fmt.Errorf("parse completed_at for %s: %w", a.ID, err)
		}
		if a.SkippedAt, err = parseNullableTime(skippedAt); err != nil {
			return nil, fmt.Errorf("parse skipped_at for %s: %w", a.ID, err)
		}
		if actual.Valid {
			a.ActualMin = int(actual.Int64)
			a.HasActual = true
		}
		if extensions.Valid && extensions.String != "" && extensions.String != "null" {
			if err := json.Unmarshal([]byte(extensions.String), &a.ExtensionsMin); err != nil {
				return nil, fmt.Errorf("decode extensions for %s: %w", a.ID, err)
			}
		}
		actions = append(actions, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load actions for %s: %w", sessionID, err)
	}
	return actions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row rowScanner) (domain.Session, error) {
	var (
		session   domain.Session
		userID    sql.NullString
		status    string
		createdAt string
		updatedAt string
	)
	err := row.Scan(&session.ID, &userID, &session.Goal, &session.TotalEstimateMin, &session.ActualSpentMin, &status, &createdAt, &updatedAt)
	if err != nil {
		return domain.Session{}, err
	}
	session.UserID = userID.String
	session.Status = domain.SessionStatus(status)
	if session.CreatedAt, err = time.Parse(timeFormat, createdAt); err != nil {
		return domain.Session{}, fmt.Errorf("parse created_at: %w", err)
	}
	if session.UpdatedAt, err = time.Parse(timeFormat, updatedAt); err != nil {
		return domain.Session{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return session, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func nullableInt(value int, ok bool) any {
	if !ok {
		return nil
	}
	return value
}

func nullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(timeFormat)
}

func parseNullableTime(value sql.NullString) (*time.Time, error) {
	if !value.Valid || value.String == "" {
		return nil, nil
	}
	t, err := time.Parse(timeFormat, value.String)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
