package contracts

import (
	"encoding/json"
	"fmt"
	"math"
	"time"
)

// Ratio is realized/target for one (sector, criterion) pair. It may be
// ±Inf when the target is zero, so it serializes infinities as strings
// instead of failing JSON encoding.
type Ratio float64

// MarshalJSON encodes infinities as "+Inf"/"-Inf".
func (r Ratio) MarshalJSON() ([]byte, error) {
	v := float64(r)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"+Inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-Inf"`), nil
	}
	return json.Marshal(v)
}

// UnmarshalJSON decodes the string forms produced by MarshalJSON.
func (r *Ratio) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"+Inf"`:
		*r = Ratio(math.Inf(1))
		return nil
	case `"-Inf"`:
		*r = Ratio(math.Inf(-1))
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("invalid ratio %s: %w", data, err)
	}
	*r = Ratio(v)
	return nil
}

// ScoredResult is the outcome of scoring one sector on one criterion.
// Nil Ratio means the ratio could not be computed (missing realized
// value or target). Nil Points means the rank is outside the point
// scale (rank 5 and beyond).
type ScoredResult struct {
	SectorID    int64    `json:"sector_id"`
	SectorName  string   `json:"sector_name"`
	CriterionID int64    `json:"criterion_id"`
	Realized    *float64 `json:"realized,omitempty"`
	Target      *float64 `json:"target,omitempty"`
	Ratio       *Ratio   `json:"ratio,omitempty"`
	Rank        int      `json:"rank"`
	Points      *float64 `json:"points,omitempty"`
}

// RankingEntry is one row of the final period ranking.
// Lower total score is the better overall standing.
type RankingEntry struct {
	Rank       int     `json:"rank"`
	SectorID   int64   `json:"sector_id"`
	SectorName string  `json:"sector_name"`
	TotalScore float64 `json:"total_score"`
}

// TieGroup is a set of ranking entries sharing the same total score.
type TieGroup struct {
	Score   float64         `json:"score"`
	Sectors []*RankingEntry `json:"sectors"`
}

// Contains reports whether the group includes the given sector.
func (g *TieGroup) Contains(sectorID int64) bool {
	for _, e := range g.Sectors {
		if e.SectorID == sectorID {
			return true
		}
	}
	return false
}

// TieAnalysis describes score ties in a final ranking. WinnerTieGroup is
// set only when the top score is shared by two or more sectors, in which
// case officialization requires a director decision.
type TieAnalysis struct {
	HasGlobalTies  bool        `json:"has_global_ties"`
	WinnerTieGroup *TieGroup   `json:"winner_tie_group,omitempty"`
	TiedGroups     []*TieGroup `json:"tied_groups"`
}

// RankingAnalysis is the full ranking computation output for one month.
type RankingAnalysis struct {
	MonthKey                 string          `json:"month_key"`
	EvaluationDate           time.Time       `json:"evaluation_date"`
	GeneratedAt              time.Time       `json:"generated_at"`
	Entries                  []*RankingEntry `json:"entries"`
	Results                  []*ScoredResult `json:"results"`
	Ties                     *TieAnalysis    `json:"ties"`
	RequiresDirectorDecision bool            `json:"requires_director_decision"`
}

// TopGroupContains reports whether sectorID belongs to the winning score
// group: the winner tie group when the top score is contested, otherwise
// the single rank-1 sector.
func (a *RankingAnalysis) TopGroupContains(sectorID int64) bool {
	if a.Ties != nil && a.Ties.WinnerTieGroup != nil {
		return a.Ties.WinnerTieGroup.Contains(sectorID)
	}
	return len(a.Entries) > 0 && a.Entries[0].SectorID == sectorID
}
