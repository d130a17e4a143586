package data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/copa/internal/contracts"
)

// CriterionRepository reads performance criteria from PostgreSQL.
type CriterionRepository struct {
	pool *pgxpool.Pool
}

// NewCriterionRepository creates a criterion repository.
func NewCriterionRepository(pool *pgxpool.Pool) *CriterionRepository {
	return &CriterionRepository{pool: pool}
}

// ListActive returns active criteria ordered by their fixed ordinal.
func (r *CriterionRepository) ListActive(ctx context.Context) ([]*contracts.Criterion, error) {
	query := `
		SELECT id, name, active, ordinal, better_direction
		FROM competition.criteria
		WHERE active
		ORDER BY ordinal
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query criteria: %w", err)
	}
	defer rows.Close()

	criteria := make([]*contracts.Criterion, 0)
	for rows.Next() {
		var c contracts.Criterion
		if err := rows.Scan(&c.ID, &c.Name, &c.Active, &c.Ordinal, &c.BetterDirection); err != nil {
			return nil, fmt.Errorf("scan criterion: %w", err)
		}
		criteria = append(criteria, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate criteria: %w", err)
	}
	return criteria, nil
}
