package period

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/copa/internal/contracts"
)

// Repository persists competition periods in PostgreSQL. The officialize
// and pre-close commits are conditional updates so concurrent writers
// cannot both succeed.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a period repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const periodColumns = `
	id, month_key, start_date, end_date, status,
	winning_sector_id, officialized_by, officialized_at, tie_resolution
`

func scanPeriod(row pgx.Row) (*contracts.CompetitionPeriod, error) {
	var p contracts.CompetitionPeriod
	err := row.Scan(
		&p.ID, &p.MonthKey, &p.StartDate, &p.EndDate, &p.Status,
		&p.WinningSectorID, &p.OfficializedBy, &p.OfficializedAt, &p.TieResolution,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan period: %w", err)
	}
	return &p, nil
}

// GetByID retrieves a period by id.
func (r *Repository) GetByID(ctx context.Context, id int64) (*contracts.CompetitionPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM competition.periods WHERE id = $1`
	return scanPeriod(r.pool.QueryRow(ctx, query, id))
}

// GetByMonthKey retrieves the period for a month.
func (r *Repository) GetByMonthKey(ctx context.Context, monthKey string) (*contracts.CompetitionPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM competition.periods WHERE month_key = $1`
	return scanPeriod(r.pool.QueryRow(ctx, query, monthKey))
}

// ListByStatus lists periods in a status, oldest month first.
func (r *Repository) ListByStatus(ctx context.Context, status contracts.PeriodStatus) ([]*contracts.CompetitionPeriod, error) {
	query := `SELECT ` + periodColumns + ` FROM competition.periods WHERE status = $1 ORDER BY month_key`
	return r.list(ctx, query, string(status))
}

// ListActiveEndedBy lists ACTIVE periods whose end date is at or before t.
func (r *Repository) ListActiveEndedBy(ctx context.Context, t time.Time) ([]*contracts.CompetitionPeriod, error) {
	query := `SELECT ` + periodColumns + `
		FROM competition.periods
		WHERE status = $1 AND end_date <= $2
		ORDER BY end_date`
	return r.list(ctx, query, string(contracts.StatusActive), t)
}

func (r *Repository) list(ctx context.Context, query string, args ...interface{}) ([]*contracts.CompetitionPeriod, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	periods := make([]*contracts.CompetitionPeriod, 0)
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return periods, nil
}

// Create inserts a new period and fills in its generated id.
func (r *Repository) Create(ctx context.Context, period *contracts.CompetitionPeriod) error {
	query := `
		INSERT INTO competition.periods (month_key, start_date, end_date, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`
	err := r.pool.QueryRow(ctx, query,
		period.MonthKey, period.StartDate, period.EndDate, string(period.Status),
	).Scan(&period.ID)
	if err != nil {
		return fmt.Errorf("insert period %s: %w", period.MonthKey, err)
	}
	return nil
}

// MarkPreClosed advances an ACTIVE period to PRE_CLOSED. Returns
// ErrStatusConflict when the period is no longer ACTIVE.
func (r *Repository) MarkPreClosed(ctx context.Context, id int64) error {
	query := `
		UPDATE competition.periods
		SET status = $2
		WHERE id = $1 AND status = $3
	`
	tag, err := r.pool.Exec(ctx, query, id,
		string(contracts.StatusPreClosed), string(contracts.StatusActive))
	if err != nil {
		return fmt.Errorf("pre-close period %d: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrStatusConflict
	}
	return nil
}

// CloseOfficial commits the officialization fields together with the
// CLOSED status, conditional on the period still being PRE_CLOSED.
// All-or-nothing: either every field lands or none does.
func (r *Repository) CloseOfficial(ctx context.Context, params contracts.ClosePeriodParams) error {
	query := `
		UPDATE competition.periods
		SET status = $2,
		    winning_sector_id = $3,
		    officialized_by = $4,
		    officialized_at = $5,
		    tie_resolution = NULLIF($6, '')
		WHERE id = $1 AND status = $7
	`
	tag, err := r.pool.Exec(ctx, query,
		params.PeriodID,
		string(contracts.StatusClosed),
		params.WinningSectorID,
		params.OfficializedBy,
		params.OfficializedAt,
		params.TieResolution,
		string(contracts.StatusPreClosed),
	)
	if err != nil {
		return fmt.Errorf("close period %d: %w", params.PeriodID, err)
	}
	if tag.RowsAffected() == 0 {
		return contracts.ErrStatusConflict
	}
	return nil
}
