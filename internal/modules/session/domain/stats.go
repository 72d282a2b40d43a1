package domain

import "math"

// CompletionStats is a derived view over an action collection. It is
// recomputed from scratch on every change and never persisted, so it cannot
// drift from the actions it summarizes.
type CompletionStats struct {
	TotalActions     int     `json:"total_actions"`
	CompletedActions int     `json:"completed_actions"`
	SkippedActions   int     `json:"skipped_actions"`
	PendingActions   int     `json:"pending_actions"`
	ActiveActions    int     `json:"active_actions"`
	CompletionRate   float64 `json:"completion_rate"`
	TotalEstimateMin int     `json:"total_estimate_min"`
	TotalActualMin   int     `json:"total_actual_min"`
	TimeVariance     float64 `json:"time_variance"`
	AverageAccuracy  float64 `json:"average_accuracy"`
}

func ComputeStats(actions []Action) CompletionStats {
	stats := CompletionStats{TotalActions: len(actions)}
	accuracySum := 0.0
	accuracyCount := 0
	for _, a := range actions {
		switch a.Status {
		case StatusCompleted:
			stats.CompletedActions++
		case StatusSkipped:
			stats.SkippedActions++
		case StatusActive:
			stats.ActiveActions++
		default:
			stats.PendingActions++
		}
		if a.HasEstimate {
			stats.TotalEstimateMin += a.EstimateMin
		}
		if a.Status == StatusCompleted && a.HasActual {
			stats.TotalActualMin += a.ActualMin
			if a.HasEstimate && a.EstimateMin > 0 {
				ratio := float64(a.ActualMin) / float64(a.EstimateMin)
				accuracySum += 100 - math.Abs(1-ratio)*100
				accuracyCount++
			}
		}
	}
	if stats.TotalActions > 0 {
		stats.CompletionRate = float64(stats.CompletedActions) / float64(stats.TotalActions) * 100
	}
	if stats.TotalEstimateMin > 0 {
		stats.TimeVariance = float64(stats.TotalActualMin-stats.TotalEstimateMin) / float64(stats.TotalEstimateMin) * 100
	}
	if accuracyCount > 0 {
		// no floor: a wildly blown estimate reads as negative accuracy
		stats.AverageAccuracy = accuracySum / float64(accuracyCount)
	}
	return stats
}

type SummaryCategory string

const (
	SummarySuccess    SummaryCategory = "success"
	SummaryPartial    SummaryCategory = "partial"
	SummaryIncomplete SummaryCategory = "incomplete"
)

type Summary struct {
	Title    string          `json:"title"`
	Message  string          `json:"message"`
	Category SummaryCategory `json:"category"`
}

// Summarize maps completion rate onto a human-readable session verdict using
// fixed thresholds. Deterministic over stats, no markup.
func Summarize(stats CompletionStats) Summary {
	switch {
	case stats.TotalActions > 0 && stats.CompletedActions == stats.TotalActions:
		return Summary{
			Title:    "Session complete!",
			Message:  "You finished every action. That focus paid off.",
			Category: SummarySuccess,
		}
	case stats.CompletionRate >= 70:
		return Summary{
			Title:    "Strong session",
			Message:  "Most of your actions are done. Close out the stragglers whenever you're ready.",
			Category: SummaryPartial,
		}
	case stats.CompletedActions > 0:
		return Summary{
			Title:    "Progress made",
			Message:  "Some actions are done and that counts. Momentum beats perfection.",
			Category: SummaryPartial,
		}
	default:
		return Summary{
			Title:    "Session logged",
			Message:  "Nothing checked off this time. Tomorrow is a fresh start.",
			Category: SummaryIncomplete,
		}
	}
}
