package out

import (
	"context"
	"fmt"

	"focusdo/internal/modules/review/domain"
	reviewout "focusdo/internal/modules/review/port/out"
	sessionin "focusdo/internal/modules/session/port/in"
)

// SessionModuleDirectory sources review records through the session
// module's inbound port, so the review module inherits its online/offline
// fallback without knowing about stores.
type SessionModuleDirectory struct {
	sessions sessionin.Usecase
}

func NewSessionModuleDirectory(sessions sessionin.Usecase) reviewout.SessionDirectory {
	return &SessionModuleDirectory{sessions: sessions}
}

func (d *SessionModuleDirectory) Recent(ctx context.Context, limit int) ([]domain.Record, error) {
	digests, err := d.sessions.ListRecent(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent sessions: %w", err)
	}
	records := make([]domain.Record, len(digests))
	for i, digest := range digests {
		records[i] = domain.Record{
			ID:               digest.ID,
			Goal:             digest.Goal,
			Status:           string(digest.Status),
			StartedAt:        digest.CreatedAt,
			EstimateMin:      digest.TotalEstimate,
			ActualMin:        digest.ActualSpent,
			ActionsTotal:     digest.ActionsTotal,
			ActionsCompleted: digest.ActionsCompleted,
			Unsynced:         digest.IsLocal,
		}
	}
	return records, nil
}
