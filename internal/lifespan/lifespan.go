// Package lifespan estimates when home systems reach replacement age and
// how likely they are to fail within the next twelve months.
package lifespan

import (
	"math"

	"github.com/hearthline/hearth/internal/models"
)

// Model maps remaining years until likely replacement to a 12-month
// failure probability for a given system type. The scoring engine treats
// the model as opaque.
type Model interface {
	FailureProbability(remainingYears float64, systemKey string) float64
}

// RemainingYears converts a likely replacement year into fractional years
// from the current year. Returns nil when the replacement year is unknown.
func RemainingYears(likelyReplacementYear *int, currentYear int) *float64 {
	if likelyReplacementYear == nil {
		return nil
	}
	years := float64(*likelyReplacementYear - currentYear)
	return &years
}

// typicalLifespanYears is the reference service life per system type,
// used when a record carries no explicit likely replacement year.
var typicalLifespanYears = map[string]int{
	"hvac":         15,
	"roof":         25,
	"water_heater": 10,
	"electrical":   40,
}

const defaultLifespanYears = 20

// EstimateReplacementYear derives a likely replacement year for a record.
// An explicit LikelyReplacementYear wins; otherwise the typical lifespan
// for the system type is added to the install year (preferred) or the
// manufacture year. Returns nil when the record carries no age evidence.
func EstimateReplacementYear(rec models.SystemRecord) *int {
	if rec.LikelyReplacementYear != nil {
		year := *rec.LikelyReplacementYear
		return &year
	}
	span := defaultLifespanYears
	if s, ok := typicalLifespanYears[models.BaseKey(rec.SystemKey)]; ok {
		span = s
	}
	if rec.InstallDate != nil {
		year := rec.InstallDate.Year() + span
		return &year
	}
	if rec.ManufactureYear != nil {
		year := *rec.ManufactureYear + span
		return &year
	}
	return nil
}

// steepness tunes how fast the failure probability rises as a system
// approaches its replacement year. Short-lived equipment ages into
// failure faster than long-lived structures.
var steepness = map[string]float64{
	"hvac":         0.55,
	"water_heater": 0.70,
	"roof":         0.35,
	"electrical":   0.25,
}

const (
	defaultSteepness = 0.45
	probabilityFloor = 0.02
	probabilityCeil  = 0.97
)

// CurveModel is the built-in failure model: a logistic curve centered on
// the likely replacement year. At the replacement year the 12-month
// probability is 0.5, falling toward the floor for systems years away
// and rising toward the ceiling for systems past due.
type CurveModel struct{}

func (CurveModel) FailureProbability(remainingYears float64, systemKey string) float64 {
	k := defaultSteepness
	if s, ok := steepness[models.BaseKey(systemKey)]; ok {
		k = s
	}
	p := 1.0 / (1.0 + math.Exp(k*remainingYears))
	return clamp(p, probabilityFloor, probabilityCeil)
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
