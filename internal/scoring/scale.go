package scoring

import "github.com/wonny/copa/internal/contracts"

// ScaleKind selects one of the two fixed point scales.
type ScaleKind string

const (
	ScaleStandard ScaleKind = "STANDARD"
	ScaleInverted ScaleKind = "INVERTED"
)

// Criterion ordinals reserved for the inverted scale. These criteria are
// measured so that the best ratio rank takes the highest point value,
// which keeps the "lower total score wins" convention uniform across all
// criteria.
const (
	invertedOrdinalAbsence  = 5
	invertedOrdinalTurnover = 6
)

// scaleSlots is the number of ranks that earn points on a criterion.
// Rank 5 and beyond score nothing.
const scaleSlots = 4

// pointsByRank maps rank 1..4 (index 0..3) to points for each scale kind.
var pointsByRank = map[ScaleKind][scaleSlots]float64{
	ScaleStandard: {1.0, 1.5, 2.0, 2.5},
	ScaleInverted: {2.5, 2.0, 1.5, 1.0},
}

// ScaleKindFor resolves the point scale for a criterion.
func ScaleKindFor(c *contracts.Criterion) ScaleKind {
	switch c.Ordinal {
	case invertedOrdinalAbsence, invertedOrdinalTurnover:
		return ScaleInverted
	}
	return ScaleStandard
}

// PointsFor returns the point value for a 1-based rank on the given
// scale, or nil when the rank is outside the scale.
func PointsFor(kind ScaleKind, rank int) *float64 {
	if rank < 1 || rank > scaleSlots {
		return nil
	}
	scale, ok := pointsByRank[kind]
	if !ok {
		return nil
	}
	v := scale[rank-1]
	return &v
}
