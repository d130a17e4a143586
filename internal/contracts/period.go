package contracts

import (
	"fmt"
	"time"
)

// PeriodStatus is the lifecycle state of a competition period.
type PeriodStatus string

const (
	StatusPlanning  PeriodStatus = "PLANNING"
	StatusActive    PeriodStatus = "ACTIVE"
	StatusPreClosed PeriodStatus = "PRE_CLOSED"
	StatusClosed    PeriodStatus = "CLOSED"
)

// nextStatus maps each status to the only status it may advance to.
// CLOSED is terminal; there are no backward transitions.
var nextStatus = map[PeriodStatus]PeriodStatus{
	StatusPlanning:  StatusActive,
	StatusActive:    StatusPreClosed,
	StatusPreClosed: StatusClosed,
}

// CanTransitionTo reports whether s may advance directly to target.
func (s PeriodStatus) CanTransitionTo(target PeriodStatus) bool {
	next, ok := nextStatus[s]
	return ok && next == target
}

// Valid reports whether s is a known period status.
func (s PeriodStatus) Valid() bool {
	switch s {
	case StatusPlanning, StatusActive, StatusPreClosed, StatusClosed:
		return true
	}
	return false
}

// CompetitionPeriod represents one monthly competition cycle.
// Mutated only by the lifecycle controller and the transition scheduler;
// never deleted.
type CompetitionPeriod struct {
	ID              int64        `json:"id"`
	MonthKey        string       `json:"month_key"` // "2006-01"
	StartDate       time.Time    `json:"start_date"`
	EndDate         time.Time    `json:"end_date"`
	Status          PeriodStatus `json:"status"`
	WinningSectorID *int64       `json:"winning_sector_id,omitempty"`
	OfficializedBy  *string      `json:"officialized_by,omitempty"`
	OfficializedAt  *time.Time   `json:"officialized_at,omitempty"`
	TieResolution   *string      `json:"tie_resolution,omitempty"`
}

// IsClosed reports whether the period reached its terminal state.
func (p *CompetitionPeriod) IsClosed() bool {
	return p.Status == StatusClosed
}

const monthKeyLayout = "2006-01"

// MonthKeyOf returns the month key for a point in time.
func MonthKeyOf(t time.Time) string {
	return t.Format(monthKeyLayout)
}

// ParseMonthKey validates a "YYYY-MM" month key.
func ParseMonthKey(key string) (time.Time, error) {
	t, err := time.Parse(monthKeyLayout, key)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid month key %q: %w", key, err)
	}
	return t, nil
}

// NextMonthKey returns the month key following key.
func NextMonthKey(key string) (string, error) {
	t, err := ParseMonthKey(key)
	if err != nil {
		return "", err
	}
	return t.AddDate(0, 1, 0).Format(monthKeyLayout), nil
}

// MonthBounds returns the first and last day of the keyed month, at
// midnight UTC. The last day is the evaluation date for that month's
// ranking.
func MonthBounds(key string) (start, end time.Time, err error) {
	t, err := ParseMonthKey(key)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start = time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	end = start.AddDate(0, 1, -1)
	return start, end, nil
}
