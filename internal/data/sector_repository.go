package data

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/copa/internal/contracts"
)

// SectorRepository reads sectors from PostgreSQL. Sector lifecycle is
// owned by the admin module; the engine only lists active competitors.
type SectorRepository struct {
	pool *pgxpool.Pool
}

// NewSectorRepository creates a sector repository.
func NewSectorRepository(pool *pgxpool.Pool) *SectorRepository {
	return &SectorRepository{pool: pool}
}

// ListActive returns active sectors ordered by name.
func (r *SectorRepository) ListActive(ctx context.Context) ([]*contracts.Sector, error) {
	query := `
		SELECT id, name, active
		FROM competition.sectors
		WHERE active
		ORDER BY name
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query sectors: %w", err)
	}
	defer rows.Close()

	sectors := make([]*contracts.Sector, 0)
	for rows.Next() {
		var s contracts.Sector
		if err := rows.Scan(&s.ID, &s.Name, &s.Active); err != nil {
			return nil, fmt.Errorf("scan sector: %w", err)
		}
		sectors = append(sectors, &s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sectors: %w", err)
	}
	return sectors, nil
}
