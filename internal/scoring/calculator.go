package scoring

import (
	"math"
	"sort"
	"time"

	"github.com/wonny/copa/internal/contracts"
	"github.com/wonny/copa/pkg/logger"
)

// Calculator scores all sectors on a single criterion: it computes the
// realized/target ratio per sector, orders sectors by desirability and
// assigns rank plus point value. Pure apart from logging; safe for
// concurrent use.
type Calculator struct {
	logger *logger.Logger
}

// NewCalculator creates a new calculator.
func NewCalculator(log *logger.Logger) *Calculator {
	return &Calculator{logger: log}
}

// RealizedValues maps sector id to the realized value for one criterion.
// A missing key means the value is unknown.
type RealizedValues map[int64]float64

// Score produces one ScoredResult per sector for the criterion, ranked
// and pointed. Sectors with an unknown ratio rank behind every sector
// with a known one.
func (c *Calculator) Score(criterion *contracts.Criterion, sectors []*contracts.Sector, realized RealizedValues, targets []*contracts.TargetValue, date time.Time) []*contracts.ScoredResult {
	results := make([]*contracts.ScoredResult, 0, len(sectors))

	for _, sector := range sectors {
		var realizedValue *float64
		if v, ok := realized[sector.ID]; ok {
			value := v
			realizedValue = &value
		}

		target := ResolveTarget(criterion.ID, sector.ID, targets, date)

		results = append(results, &contracts.ScoredResult{
			SectorID:    sector.ID,
			SectorName:  sector.Name,
			CriterionID: criterion.ID,
			Realized:    realizedValue,
			Target:      target,
			Ratio:       computeRatio(realizedValue, target, criterion.BetterDirection),
		})
	}

	// Most desirable first. Stable so equal ratios keep input order.
	sort.SliceStable(results, func(i, j int) bool {
		return moreDesirable(results[i].Ratio, results[j].Ratio, criterion.BetterDirection)
	})

	kind := ScaleKindFor(criterion)
	for i, result := range results {
		result.Rank = i + 1
		result.Points = PointsFor(kind, result.Rank)
	}

	c.logger.WithFields(map[string]interface{}{
		"criterion": criterion.Name,
		"scale":     kind,
		"sectors":   len(results),
	}).Debug("Criterion scored")

	return results
}

// ResolveTarget picks the target in effect for a (criterion, sector)
// pair: a sector-specific target wins over a general one, and among
// several in effect the most recently effective wins.
func ResolveTarget(criterionID, sectorID int64, targets []*contracts.TargetValue, date time.Time) *float64 {
	var specific, general *contracts.TargetValue

	for _, t := range targets {
		if t.CriterionID != criterionID || !t.InEffect(date) {
			continue
		}
		switch {
		case t.SectorID != nil && *t.SectorID == sectorID:
			if specific == nil || t.EffectiveFrom.After(specific.EffectiveFrom) {
				specific = t
			}
		case t.SectorID == nil:
			if general == nil || t.EffectiveFrom.After(general.EffectiveFrom) {
				general = t
			}
		}
	}

	chosen := specific
	if chosen == nil {
		chosen = general
	}
	if chosen == nil {
		return nil
	}
	value := chosen.Value
	return &value
}

// computeRatio applies the numeric edge-case rules:
//   - unknown realized value or target -> nil (no ratio)
//   - zero target -> +Inf when exceeding it is good, -Inf when it is bad
//   - otherwise realized/target
func computeRatio(realized, target *float64, direction contracts.Direction) *contracts.Ratio {
	if realized == nil || target == nil {
		return nil
	}

	var ratio contracts.Ratio
	if *target == 0 {
		if direction == contracts.DirectionHigher {
			ratio = contracts.Ratio(math.Inf(1))
		} else {
			ratio = contracts.Ratio(math.Inf(-1))
		}
		return &ratio
	}

	ratio = contracts.Ratio(*realized / *target)
	return &ratio
}

// moreDesirable reports whether ratio a strictly beats ratio b for the
// criterion direction. A nil ratio loses to every non-nil ratio. The
// sign of an infinite ratio encodes absolute goodness: +Inf beats
// everything and -Inf loses to everything, regardless of direction.
func moreDesirable(a, b *contracts.Ratio, direction contracts.Direction) bool {
	if a == nil {
		return false
	}
	if b == nil {
		return true
	}

	av, bv := float64(*a), float64(*b)
	switch {
	case math.IsInf(av, 1):
		return !math.IsInf(bv, 1)
	case math.IsInf(av, -1):
		return false
	case math.IsInf(bv, 1):
		return false
	case math.IsInf(bv, -1):
		return true
	}

	if direction == contracts.DirectionHigher {
		return av > bv
	}
	return av < bv
}
