package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/copa/internal/contracts"
)

// TargetRepository reads target values. Targets are maintained by the
// planning module; the engine only reads those in effect for a date.
type TargetRepository struct {
	pool *pgxpool.Pool
}

// NewTargetRepository creates a target repository.
func NewTargetRepository(pool *pgxpool.Pool) *TargetRepository {
	return &TargetRepository{pool: pool}
}

// GetInEffect returns every target whose effective window covers date.
func (r *TargetRepository) GetInEffect(ctx context.Context, date time.Time) ([]*contracts.TargetValue, error) {
	query := `
		SELECT criterion_id, sector_id, value, effective_from, effective_to
		FROM competition.target_values
		WHERE effective_from <= $1
		  AND (effective_to IS NULL OR effective_to >= $1)
		ORDER BY criterion_id, effective_from
	`
	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query target values: %w", err)
	}
	defer rows.Close()

	targets := make([]*contracts.TargetValue, 0)
	for rows.Next() {
		var t contracts.TargetValue
		if err := rows.Scan(&t.CriterionID, &t.SectorID, &t.Value, &t.EffectiveFrom, &t.EffectiveTo); err != nil {
			return nil, fmt.Errorf("scan target value: %w", err)
		}
		targets = append(targets, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate target values: %w", err)
	}
	return targets, nil
}
