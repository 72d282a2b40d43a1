package domain

import (
	"sort"
	"time"
)

// Record is one historical session as the review screens see it: counts
// and minutes only, no action detail.
type Record struct {
	ID               string
	Goal             string
	Status           string
	StartedAt        time.Time
	EstimateMin      int
	ActualMin        int
	ActionsTotal     int
	ActionsCompleted int
	Unsynced         bool
}

// DayRollup aggregates every session started on one calendar day.
type DayRollup struct {
	Day              string
	Sessions         int
	ActionsCompleted int
	EstimateMin      int
	ActualMin        int
	TimeVariance     float64
}

const dayFormat = "2006-01-02"

// RollupByDay groups records by local calendar day, newest day first.
// Variance follows the session stats convention: zero when nothing was
// estimated that day.
func RollupByDay(records []Record) []DayRollup {
	byDay := map[string]*DayRollup{}
	for _, r := range records {
		day := r.StartedAt.Local().Format(dayFormat)
		rollup, ok := byDay[day]
		if !ok {
			rollup = &DayRollup{Day: day}
			byDay[day] = rollup
		}
		rollup.Sessions++
		rollup.ActionsCompleted += r.ActionsCompleted
		rollup.EstimateMin += r.EstimateMin
		rollup.ActualMin += r.ActualMin
	}
	rollups := make([]DayRollup, 0, len(byDay))
	for _, rollup := range byDay {
		if rollup.EstimateMin > 0 {
			rollup.TimeVariance = float64(rollup.ActualMin-rollup.EstimateMin) / float64(rollup.EstimateMin) * 100
		}
		rollups = append(rollups, *rollup)
	}
	sort.Slice(rollups, func(i, j int) bool {
		return rollups[i].Day > rollups[j].Day
	})
	return rollups
}

// Streak counts consecutive calendar days, ending today, with at least one
// session. Days are compared in local time.
func Streak(records []Record, today time.Time) int {
	seen := map[string]bool{}
	for _, r := range records {
		seen[r.StartedAt.Local().Format(dayFormat)] = true
	}
	streak := 0
	for day := today.Local(); seen[day.Format(dayFormat)]; day = day.AddDate(0, 0, -1) {
		streak++
	}
	return streak
}
