package data

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/copa/internal/contracts"
)

// PerformanceRepository reads realized performance values. Records are
// produced by external ingestion and are read-only to the engine; a
// missing row means the value is unknown for that pair.
type PerformanceRepository struct {
	pool *pgxpool.Pool
}

// NewPerformanceRepository creates a performance repository.
func NewPerformanceRepository(pool *pgxpool.Pool) *PerformanceRepository {
	return &PerformanceRepository{pool: pool}
}

// GetForDate returns all performance records for an evaluation date.
func (r *PerformanceRepository) GetForDate(ctx context.Context, date time.Time) ([]*contracts.PerformanceRecord, error) {
	query := `
		SELECT sector_id, criterion_id, metric_date, value
		FROM competition.performance_records
		WHERE metric_date = $1
	`
	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("query performance records: %w", err)
	}
	defer rows.Close()

	records := make([]*contracts.PerformanceRecord, 0)
	for rows.Next() {
		var rec contracts.PerformanceRecord
		if err := rows.Scan(&rec.SectorID, &rec.CriterionID, &rec.MetricDate, &rec.Value); err != nil {
			return nil, fmt.Errorf("scan performance record: %w", err)
		}
		records = append(records, &rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate performance records: %w", err)
	}
	return records, nil
}
