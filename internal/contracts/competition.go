package contracts

import "time"

// Direction indicates whether a larger realized value is good for a criterion.
type Direction string

const (
	DirectionHigher Direction = "HIGHER"
	DirectionLower  Direction = "LOWER"
)

// Sector represents a competing organizational unit.
// Sector lifecycle is owned by the admin module; the engine treats it as
// immutable during a period computation.
type Sector struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

// Criterion represents a measured performance dimension.
type Criterion struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
	// Ordinal is the fixed display/scale position of the criterion.
	// Two reserved ordinals select the inverted point scale.
	Ordinal         int       `json:"ordinal"`
	BetterDirection Direction `json:"better_direction"`
}

// PerformanceRecord is one realized measurement for a (sector, criterion)
// pair on a date. Absence of a record means the value is unknown.
type PerformanceRecord struct {
	SectorID    int64     `json:"sector_id"`
	CriterionID int64     `json:"criterion_id"`
	MetricDate  time.Time `json:"metric_date"`
	Value       float64   `json:"value"`
}

// TargetValue is a target for a criterion, either sector-specific
// (SectorID set) or general (SectorID nil). A sector-specific target in
// effect overrides a general one for the same criterion.
type TargetValue struct {
	CriterionID   int64      `json:"criterion_id"`
	SectorID      *int64     `json:"sector_id,omitempty"`
	Value         float64    `json:"value"`
	EffectiveFrom time.Time  `json:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`
}

// InEffect reports whether the target applies on the given date.
func (t *TargetValue) InEffect(date time.Time) bool {
	if date.Before(t.EffectiveFrom) {
		return false
	}
	return t.EffectiveTo == nil || !date.After(*t.EffectiveTo)
}
