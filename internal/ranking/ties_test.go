package ranking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/copa/internal/contracts"
)

func entry(rank int, sectorID int64, name string, score float64) *contracts.RankingEntry {
	return &contracts.RankingEntry{
		Rank:       rank,
		SectorID:   sectorID,
		SectorName: name,
		TotalScore: score,
	}
}

func TestTieAnalyzer_ContestedWinner(t *testing.T) {
	analyzer := NewTieAnalyzer()

	entries := []*contracts.RankingEntry{
		entry(1, 1, "A", 4.0),
		entry(2, 2, "B", 4.0),
		entry(3, 3, "C", 6.0),
	}

	analysis := analyzer.Analyze(entries)

	assert.True(t, analysis.HasGlobalTies)
	require.Len(t, analysis.TiedGroups, 1)

	require.NotNil(t, analysis.WinnerTieGroup)
	assert.Equal(t, 4.0, analysis.WinnerTieGroup.Score)
	require.Len(t, analysis.WinnerTieGroup.Sectors, 2)
	assert.True(t, analysis.WinnerTieGroup.Contains(1))
	assert.True(t, analysis.WinnerTieGroup.Contains(2))
	assert.False(t, analysis.WinnerTieGroup.Contains(3))
}

func TestTieAnalyzer_TieBelowTheWinner(t *testing.T) {
	analyzer := NewTieAnalyzer()

	entries := []*contracts.RankingEntry{
		entry(1, 1, "A", 3.0),
		entry(2, 2, "B", 5.0),
		entry(3, 3, "C", 5.0),
	}

	analysis := analyzer.Analyze(entries)

	assert.True(t, analysis.HasGlobalTies)
	assert.Nil(t, analysis.WinnerTieGroup)
	require.Len(t, analysis.TiedGroups, 1)
	assert.Equal(t, 5.0, analysis.TiedGroups[0].Score)
}

func TestTieAnalyzer_NoTies(t *testing.T) {
	analyzer := NewTieAnalyzer()

	entries := []*contracts.RankingEntry{
		entry(1, 1, "A", 3.0),
		entry(2, 2, "B", 4.5),
		entry(3, 3, "C", 6.0),
	}

	analysis := analyzer.Analyze(entries)

	assert.False(t, analysis.HasGlobalTies)
	assert.Nil(t, analysis.WinnerTieGroup)
	assert.Empty(t, analysis.TiedGroups)
}

func TestTieAnalyzer_RoundingMergesFloatNoise(t *testing.T) {
	analyzer := NewTieAnalyzer()

	// 1.0+1.5+2.0 accumulated in different orders can differ by an ulp;
	// the comparison rounds to two decimals so those still tie.
	entries := []*contracts.RankingEntry{
		entry(1, 1, "A", 4.499999999999999),
		entry(2, 2, "B", 4.500000000000001),
	}

	analysis := analyzer.Analyze(entries)

	assert.True(t, analysis.HasGlobalTies)
	require.NotNil(t, analysis.WinnerTieGroup)
	assert.Equal(t, 4.5, analysis.WinnerTieGroup.Score)
}

func TestTieAnalyzer_Empty(t *testing.T) {
	analysis := NewTieAnalyzer().Analyze(nil)

	assert.False(t, analysis.HasGlobalTies)
	assert.Nil(t, analysis.WinnerTieGroup)
	assert.NotNil(t, analysis.TiedGroups)
	assert.Empty(t, analysis.TiedGroups)
}

func TestRoundScore(t *testing.T) {
	assert.Equal(t, 4.5, RoundScore(4.499999999999999))
	assert.Equal(t, 4.13, RoundScore(4.125000000000001))
	assert.Equal(t, 0.0, RoundScore(0))
}
