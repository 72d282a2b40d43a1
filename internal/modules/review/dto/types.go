package dto

import "time"

type SessionView struct {
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

type DayView struct {
	Day              string
	Sessions         int
	ActionsCompleted int
	EstimateMin      int
	ActualMin        int
	TimeVariance     float64
}

type HistoryOutput struct {
	Sessions []SessionView
	Days     []DayView
	Streak   int
}
