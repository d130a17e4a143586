package ranking

import (
	"sort"

	"github.com/wonny/copa/internal/contracts"
	"github.com/wonny/copa/pkg/logger"
)

// Aggregator builds the final period ranking from per-criterion scored
// results. Pure apart from logging; safe for concurrent use.
type Aggregator struct {
	logger *logger.Logger
}

// NewAggregator creates a new aggregator.
func NewAggregator(log *logger.Logger) *Aggregator {
	return &Aggregator{logger: log}
}

// Aggregate sums points per sector across all criteria and returns the
// ranking ordered ascending by total score (lower is better). A result
// with no points contributes zero. Empty inputs yield an empty ranking.
func (a *Aggregator) Aggregate(sectors []*contracts.Sector, results []*contracts.ScoredResult) []*contracts.RankingEntry {
	if len(sectors) == 0 || len(results) == 0 {
		return []*contracts.RankingEntry{}
	}

	totals := make(map[int64]float64, len(sectors))
	for _, sector := range sectors {
		totals[sector.ID] = 0
	}

	for _, result := range results {
		if result.Points == nil {
			continue
		}
		if _, ok := totals[result.SectorID]; !ok {
			continue
		}
		totals[result.SectorID] += *result.Points
	}

	entries := make([]*contracts.RankingEntry, 0, len(sectors))
	for _, sector := range sectors {
		entries = append(entries, &contracts.RankingEntry{
			SectorID:   sector.ID,
			SectorName: sector.Name,
			TotalScore: totals[sector.ID],
		})
	}

	// Ordering is a pure function of (sectorID, totalScore): equal
	// scores fall back to sector id so the output is input-order
	// independent.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore < entries[j].TotalScore
		}
		return entries[i].SectorID < entries[j].SectorID
	})

	for i := range entries {
		entries[i].Rank = i + 1
	}

	a.logger.WithFields(map[string]interface{}{
		"sectors": len(entries),
		"results": len(results),
	}).Debug("Ranking aggregated")

	return entries
}
