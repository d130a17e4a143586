package contracts

import (
	"context"
	"time"
)

// SectorRepository reads competing sectors.
type SectorRepository interface {
	ListActive(ctx context.Context) ([]*Sector, error)
}

// CriterionRepository reads performance criteria.
type CriterionRepository interface {
	ListActive(ctx context.Context) ([]*Criterion, error)
}

// PerformanceRepository reads realized performance values.
type PerformanceRepository interface {
	GetForDate(ctx context.Context, date time.Time) ([]*PerformanceRecord, error)
}

// TargetRepository reads target values.
type TargetRepository interface {
	GetInEffect(ctx context.Context, date time.Time) ([]*TargetValue, error)
}

// ClosePeriodParams carries the fields committed together when a period
// is officialized. The update is conditional on status=PRE_CLOSED.
type ClosePeriodParams struct {
	PeriodID        int64
	WinningSectorID int64
	OfficializedBy  string
	OfficializedAt  time.Time
	TieResolution   string // empty when the win was uncontested
}

// PeriodRepository persists competition periods. MarkPreClosed and
// CloseOfficial are conditional updates: they return ErrStatusConflict
// when the expected status no longer holds.
type PeriodRepository interface {
	GetByID(ctx context.Context, id int64) (*CompetitionPeriod, error)
	GetByMonthKey(ctx context.Context, monthKey string) (*CompetitionPeriod, error)
	ListByStatus(ctx context.Context, status PeriodStatus) ([]*CompetitionPeriod, error)
	ListActiveEndedBy(ctx context.Context, t time.Time) ([]*CompetitionPeriod, error)
	Create(ctx context.Context, period *CompetitionPeriod) error
	MarkPreClosed(ctx context.Context, id int64) error
	CloseOfficial(ctx context.Context, params ClosePeriodParams) error
}

// TransitionRunRecord is the structured audit entry for one scheduler run.
type TransitionRunRecord struct {
	RunAt             time.Time     `json:"run_at"`
	Trigger           string        `json:"trigger"` // "automatic" or "manual"
	TriggeredBy       string        `json:"triggered_by"`
	PeriodsPreClosed  int           `json:"periods_pre_closed"`
	SuccessorsCreated int           `json:"successors_created"`
	Errors            []string      `json:"errors"`
	Attempts          int           `json:"attempts"`
	Elapsed           time.Duration `json:"elapsed"`
	Success           bool          `json:"success"`
	LastError         string        `json:"last_error,omitempty"`
}

// OfficializationRecord is the audit entry for a period closure.
type OfficializationRecord struct {
	PeriodID        int64     `json:"period_id"`
	MonthKey        string    `json:"month_key"`
	WinningSectorID int64     `json:"winning_sector_id"`
	OfficializedBy  string    `json:"officialized_by"`
	OfficializedAt  time.Time `json:"officialized_at"`
	TieResolution   string    `json:"tie_resolution,omitempty"`
	Justification   string    `json:"justification,omitempty"`
}

// AuditSink accepts structured audit events.
type AuditSink interface {
	RecordTransitionRun(ctx context.Context, rec *TransitionRunRecord) error
	RecordOfficialization(ctx context.Context, rec *OfficializationRecord) error
}

// Authorizer is the external access-control boundary. The engine only
// asks the question; the policy lives with the collaborator.
type Authorizer interface {
	CanOfficialize(p Principal) bool
}

// Clock abstracts wall-clock reads so period transitions and
// officialization timestamps are deterministic under test.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the real wall clock.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
