package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/copa/internal/contracts"
	"github.com/wonny/copa/pkg/logger"
)

func points(v float64) *float64 { return &v }

func scored(sectorID, criterionID int64, pts *float64) *contracts.ScoredResult {
	return &contracts.ScoredResult{
		SectorID:    sectorID,
		CriterionID: criterionID,
		Points:      pts,
	}
}

func TestAggregator_SumsPointsAcrossCriteria(t *testing.T) {
	agg := NewAggregator(logger.Nop())

	sectors := []*contracts.Sector{
		{ID: 1, Name: "North"},
		{ID: 2, Name: "South"},
		{ID: 3, Name: "West"},
	}
	results := []*contracts.ScoredResult{
		scored(1, 10, points(1.0)),
		scored(2, 10, points(2.0)),
		scored(3, 10, points(2.5)),
		scored(1, 20, points(2.5)),
		scored(2, 20, points(1.0)),
		scored(3, 20, points(1.5)),
	}

	entries := agg.Aggregate(sectors, results)
	require.Len(t, entries, 3)

	// Totals: North 3.5, South 3.0, West 4.0. Lower wins.
	assert.Equal(t, int64(2), entries[0].SectorID)
	assert.Equal(t, 3.0, entries[0].TotalScore)
	assert.Equal(t, 1, entries[0].Rank)

	assert.Equal(t, int64(1), entries[1].SectorID)
	assert.Equal(t, 3.5, entries[1].TotalScore)
	assert.Equal(t, 2, entries[1].Rank)

	assert.Equal(t, int64(3), entries[2].SectorID)
	assert.Equal(t, 4.0, entries[2].TotalScore)
	assert.Equal(t, 3, entries[2].Rank)
}

func TestAggregator_NilPointsContributeZero(t *testing.T) {
	agg := NewAggregator(logger.Nop())

	sectors := []*contracts.Sector{
		{ID: 1, Name: "North"},
		{ID: 2, Name: "South"},
	}
	results := []*contracts.ScoredResult{
		scored(1, 10, points(1.0)),
		scored(2, 10, nil), // ranked 5th or worse on this criterion
		scored(1, 20, points(2.0)),
		scored(2, 20, points(1.0)),
	}

	entries := agg.Aggregate(sectors, results)
	require.Len(t, entries, 2)

	assert.Equal(t, int64(2), entries[0].SectorID)
	assert.Equal(t, 1.0, entries[0].TotalScore)
	assert.Equal(t, int64(1), entries[1].SectorID)
	assert.Equal(t, 3.0, entries[1].TotalScore)
}

func TestAggregator_OrderIsInputOrderIndependent(t *testing.T) {
	agg := NewAggregator(logger.Nop())

	results := []*contracts.ScoredResult{
		scored(1, 10, points(2.0)),
		scored(2, 10, points(2.0)),
		scored(3, 10, points(1.0)),
	}

	forward := []*contracts.Sector{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}, {ID: 3, Name: "C"}}
	backward := []*contracts.Sector{{ID: 3, Name: "C"}, {ID: 2, Name: "B"}, {ID: 1, Name: "A"}}

	a := agg.Aggregate(forward, results)
	b := agg.Aggregate(backward, results)

	require.Len(t, a, 3)
	require.Len(t, b, 3)
	for i := range a {
		assert.Equal(t, a[i].SectorID, b[i].SectorID, "position %d", i)
		assert.Equal(t, a[i].Rank, b[i].Rank, "position %d", i)
	}

	// Equal scores fall back to sector id ascending.
	assert.Equal(t, int64(3), a[0].SectorID)
	assert.Equal(t, int64(1), a[1].SectorID)
	assert.Equal(t, int64(2), a[2].SectorID)
}

func TestAggregator_ResultsForUnknownSectorsAreSkipped(t *testing.T) {
	agg := NewAggregator(logger.Nop())

	sectors := []*contracts.Sector{{ID: 1, Name: "North"}}
	results := []*contracts.ScoredResult{
		scored(1, 10, points(1.5)),
		scored(99, 10, points(1.0)), // deactivated mid-month
	}

	entries := agg.Aggregate(sectors, results)
	require.Len(t, entries, 1)
	assert.Equal(t, int64(1), entries[0].SectorID)
	assert.Equal(t, 1.5, entries[0].TotalScore)
}

func TestAggregator_EmptyInputs(t *testing.T) {
	agg := NewAggregator(logger.Nop())

	assert.Empty(t, agg.Aggregate(nil, nil))
	assert.Empty(t, agg.Aggregate([]*contracts.Sector{{ID: 1}}, nil))
	assert.Empty(t, agg.Aggregate(nil, []*contracts.ScoredResult{scored(1, 10, points(1))}))
}
