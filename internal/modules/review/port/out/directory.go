package out

import (
	"context"

	"focusdo/internal/modules/review/domain"
)

// SessionDirectory supplies historical session records, most recent
// first. Implementations decide whether those come from the hosted API or
// local shadow copies.
type SessionDirectory interface {
	Recent(ctx context.Context, limit int) ([]domain.Record, error)
}
