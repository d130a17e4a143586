package audit

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/copa/internal/contracts"
)

// Repository persists audit events in PostgreSQL. It implements
// contracts.AuditSink for the scheduler and the lifecycle controller.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an audit repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// RecordTransitionRun stores the structured summary of one scheduler run.
func (r *Repository) RecordTransitionRun(ctx context.Context, rec *contracts.TransitionRunRecord) error {
	errorsJSON, err := json.Marshal(rec.Errors)
	if err != nil {
		return fmt.Errorf("marshal run errors: %w", err)
	}

	query := `
		INSERT INTO audit.transition_runs (
			run_at, trigger, triggered_by, periods_pre_closed,
			successors_created, errors, attempts, elapsed_ms, success, last_error
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NULLIF($10, ''))
	`
	_, err = r.pool.Exec(ctx, query,
		rec.RunAt, rec.Trigger, rec.TriggeredBy, rec.PeriodsPreClosed,
		rec.SuccessorsCreated, errorsJSON, rec.Attempts,
		rec.Elapsed.Milliseconds(), rec.Success, rec.LastError,
	)
	if err != nil {
		return fmt.Errorf("insert transition run: %w", err)
	}
	return nil
}

// RecordOfficialization stores the audit trail of a period closure.
func (r *Repository) RecordOfficialization(ctx context.Context, rec *contracts.OfficializationRecord) error {
	query := `
		INSERT INTO audit.officializations (
			period_id, month_key, winning_sector_id, officialized_by,
			officialized_at, tie_resolution, justification
		) VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), NULLIF($7, ''))
	`
	_, err := r.pool.Exec(ctx, query,
		rec.PeriodID, rec.MonthKey, rec.WinningSectorID, rec.OfficializedBy,
		rec.OfficializedAt, rec.TieResolution, rec.Justification,
	)
	if err != nil {
		return fmt.Errorf("insert officialization: %w", err)
	}
	return nil
}
