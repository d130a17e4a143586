package scheduler

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/copa/internal/contracts"
	"github.com/wonny/copa/pkg/logger"
)

// Transitioner performs one pass of automatic period transitions: every
// ACTIVE period whose end date has passed is advanced to PRE_CLOSED and
// a successor PLANNING period is created for the following month.
//
// Each call re-reads period status from the repository, so a retried
// pass never acts on stale data and an already-transitioned period is
// simply not found again.
type Transitioner struct {
	periods contracts.PeriodRepository
	clock   contracts.Clock
	logger  *logger.Logger
}

// NewTransitioner creates a transitioner.
func NewTransitioner(periods contracts.PeriodRepository, clock contracts.Clock, log *logger.Logger) *Transitioner {
	return &Transitioner{periods: periods, clock: clock, logger: log}
}

// RunReport summarizes one transition pass. Errors holds per-period
// failures that completed the pass with a non-empty error list; they do
// not trigger retries.
type RunReport struct {
	PeriodsPreClosed  int
	SuccessorsCreated int
	Errors            []string
}

// Run executes one transition pass. A non-nil error means the pass
// could not read the source of truth and is worth retrying; per-period
// failures land in the report instead.
func (t *Transitioner) Run(ctx context.Context) (*RunReport, error) {
	now := t.clock.Now()

	due, err := t.periods.ListActiveEndedBy(ctx, now)
	if err != nil {
		return nil, fmt.Errorf("list ended active periods: %w", err)
	}

	report := &RunReport{Errors: []string{}}

	for _, period := range due {
		if err := t.periods.MarkPreClosed(ctx, period.ID); err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("pre-close period %s: %v", period.MonthKey, err))
			continue
		}
		report.PeriodsPreClosed++

		t.logger.WithFields(map[string]interface{}{
			"period_id": period.ID,
			"month":     period.MonthKey,
		}).Info("Period pre-closed")

		if err := t.ensureSuccessor(ctx, period, report); err != nil {
			report.Errors = append(report.Errors,
				fmt.Sprintf("create successor for %s: %v", period.MonthKey, err))
		}
	}

	return report, nil
}

// ensureSuccessor creates the next month's PLANNING period unless one
// already exists for that month.
func (t *Transitioner) ensureSuccessor(ctx context.Context, period *contracts.CompetitionPeriod, report *RunReport) error {
	nextKey, err := contracts.NextMonthKey(period.MonthKey)
	if err != nil {
		return err
	}

	_, err = t.periods.GetByMonthKey(ctx, nextKey)
	if err == nil {
		t.logger.WithField("month", nextKey).Debug("Successor period already exists")
		return nil
	}
	if !errors.Is(err, contracts.ErrNotFound) {
		return err
	}

	start, end, err := contracts.MonthBounds(nextKey)
	if err != nil {
		return err
	}

	successor := &contracts.CompetitionPeriod{
		MonthKey:  nextKey,
		StartDate: start,
		EndDate:   end,
		Status:    contracts.StatusPlanning,
	}
	if err := t.periods.Create(ctx, successor); err != nil {
		return err
	}
	report.SuccessorsCreated++

	t.logger.WithFields(map[string]interface{}{
		"period_id": successor.ID,
		"month":     nextKey,
	}).Info("Successor period created")

	return nil
}
