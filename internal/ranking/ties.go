package ranking

import (
	"math"

	"github.com/wonny/copa/internal/contracts"
)

// scorePrecision is the number of decimal places used when comparing
// total scores for equality. Point values are multiples of 0.5, so two
// decimals absorbs float accumulation error without merging real
// differences.
const scorePrecision = 2

// RoundScore rounds a total score to the tie-comparison precision.
func RoundScore(v float64) float64 {
	shift := math.Pow(10, scorePrecision)
	return math.Round(v*shift) / shift
}

// TieAnalyzer detects groups of sectors sharing a total score in a
// final ranking.
type TieAnalyzer struct{}

// NewTieAnalyzer creates a new tie analyzer.
func NewTieAnalyzer() *TieAnalyzer {
	return &TieAnalyzer{}
}

// Analyze groups the ranking by rounded total score. Groups with two or
// more members are tied; the group holding rank 1 becomes the winner
// tie group when contested.
func (t *TieAnalyzer) Analyze(entries []*contracts.RankingEntry) *contracts.TieAnalysis {
	analysis := &contracts.TieAnalysis{
		TiedGroups: []*contracts.TieGroup{},
	}
	if len(entries) == 0 {
		return analysis
	}

	// Entries arrive ordered by score, so equal scores are adjacent.
	var groups []*contracts.TieGroup
	current := &contracts.TieGroup{
		Score:   RoundScore(entries[0].TotalScore),
		Sectors: []*contracts.RankingEntry{entries[0]},
	}
	for _, entry := range entries[1:] {
		score := RoundScore(entry.TotalScore)
		if score == current.Score {
			current.Sectors = append(current.Sectors, entry)
			continue
		}
		groups = append(groups, current)
		current = &contracts.TieGroup{
			Score:   score,
			Sectors: []*contracts.RankingEntry{entry},
		}
	}
	groups = append(groups, current)

	for i, group := range groups {
		if len(group.Sectors) < 2 {
			continue
		}
		analysis.HasGlobalTies = true
		analysis.TiedGroups = append(analysis.TiedGroups, group)
		if i == 0 {
			analysis.WinnerTieGroup = group
		}
	}

	return analysis
}
