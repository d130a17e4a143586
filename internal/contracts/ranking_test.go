package contracts

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRatio_JSONInfinities(t *testing.T) {
	tests := []struct {
		name string
		in   Ratio
		want string
	}{
		{"finite", Ratio(1.25), "1.25"},
		{"plus infinity", Ratio(math.Inf(1)), `"+Inf"`},
		{"minus infinity", Ratio(math.Inf(-1)), `"-Inf"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(data))

			var back Ratio
			require.NoError(t, json.Unmarshal(data, &back))
			if math.IsInf(float64(tt.in), 0) {
				assert.True(t, math.IsInf(float64(back), int(math.Copysign(1, float64(tt.in)))))
			} else {
				assert.Equal(t, tt.in, back)
			}
		})
	}
}

func TestRatio_UnmarshalRejectsGarbage(t *testing.T) {
	var r Ratio
	assert.Error(t, json.Unmarshal([]byte(`"huge"`), &r))
}

func TestScoredResult_JSONSurvivesInfiniteRatio(t *testing.T) {
	inf := Ratio(math.Inf(1))
	result := &ScoredResult{
		SectorID:    1,
		SectorName:  "North",
		CriterionID: 10,
		Ratio:       &inf,
		Rank:        1,
	}

	data, err := json.Marshal(result)
	require.NoError(t, err)

	var back ScoredResult
	require.NoError(t, json.Unmarshal(data, &back))
	require.NotNil(t, back.Ratio)
	assert.True(t, math.IsInf(float64(*back.Ratio), 1))
}

func TestRankingAnalysis_TopGroupContains(t *testing.T) {
	entries := []*RankingEntry{
		{Rank: 1, SectorID: 1, TotalScore: 3.0},
		{Rank: 2, SectorID: 2, TotalScore: 4.0},
	}

	t.Run("uncontested winner", func(t *testing.T) {
		a := &RankingAnalysis{Entries: entries, Ties: &TieAnalysis{}}
		assert.True(t, a.TopGroupContains(1))
		assert.False(t, a.TopGroupContains(2))
	})

	t.Run("contested winner checks the tie group", func(t *testing.T) {
		a := &RankingAnalysis{
			Entries: entries,
			Ties: &TieAnalysis{
				HasGlobalTies: true,
				WinnerTieGroup: &TieGroup{
					Score:   3.0,
					Sectors: []*RankingEntry{entries[0], entries[1]},
				},
			},
		}
		assert.True(t, a.TopGroupContains(1))
		assert.True(t, a.TopGroupContains(2))
		assert.False(t, a.TopGroupContains(3))
	})

	t.Run("empty ranking contains nobody", func(t *testing.T) {
		a := &RankingAnalysis{Entries: []*RankingEntry{}, Ties: &TieAnalysis{}}
		assert.False(t, a.TopGroupContains(1))
	})
}
