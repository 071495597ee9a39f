package models

import (
	"strings"
	"time"
)

// CriticalSystems is the fixed set of system types whose documentation
// level drives the confidence bucket and the baseline coverage ratio.
var CriticalSystems = []string{"electrical", "hvac", "roof", "water_heater"}

// compoundKeys lists the known multi-word base keys. BaseKey matches
// these before falling back to the first underscore segment, because a
// plain prefix split would turn "water_heater_rheem" into "water".
var compoundKeys = []string{"water_heater"}

// StoredConfidence carries a confidence value previously computed and
// stored alongside a record by the enrichment layer.
type StoredConfidence struct {
	Overall *float64 `json:"overall,omitempty"`
}

// SystemRecord describes one tracked home system as supplied by the
// inventory provider. The advisory core treats records as read-only.
type SystemRecord struct {
	SystemKey             string            `json:"system_key"`
	Name                  string            `json:"name,omitempty"`
	InstallDate           *time.Time        `json:"install_date,omitempty"`
	ManufactureYear       *int              `json:"manufacture_year,omitempty"`
	LikelyReplacementYear *int              `json:"likely_replacement_year,omitempty"`
	DataSources           []string          `json:"data_sources,omitempty"`
	Confidence            *StoredConfidence `json:"confidence_scores,omitempty"`
	DeviationDetected     bool              `json:"deviation_detected,omitempty"`
	LastUpdated           time.Time         `json:"last_updated,omitempty"`
}

// Dated reports whether the record carries an install date or a
// manufacture year.
func (r SystemRecord) Dated() bool {
	return r.InstallDate != nil || r.ManufactureYear != nil
}

// HasDataSource reports whether any provenance tag contains one of the
// given substrings, case-insensitively.
func (r SystemRecord) HasDataSource(substrings ...string) bool {
	for _, src := range r.DataSources {
		lower := strings.ToLower(src)
		for _, sub := range substrings {
			if strings.Contains(lower, sub) {
				return true
			}
		}
	}
	return false
}

// BaseKey returns the canonical system-type key for a record identifier,
// e.g. "hvac_carrier_abc123" resolves to "hvac" and
// "water_heater_rheem_50g" to "water_heater".
func BaseKey(systemKey string) string {
	key := strings.ToLower(strings.TrimSpace(systemKey))
	for _, compound := range compoundKeys {
		if key == compound || strings.HasPrefix(key, compound+"_") {
			return compound
		}
	}
	if i := strings.Index(key, "_"); i >= 0 {
		return key[:i]
	}
	return key
}

// IsCritical reports whether a system key resolves to one of the fixed
// critical system types.
func IsCritical(systemKey string) bool {
	base := BaseKey(systemKey)
	for _, critical := range CriticalSystems {
		if base == critical {
			return true
		}
	}
	return false
}

// ClimateZone tags the home's climate risk profile for urgency scoring.
type ClimateZone string

const (
	ClimateTemperate ClimateZone = "temperate"
	ClimateHurricane ClimateZone = "hurricane"
	ClimateFreeze    ClimateZone = "freeze"
)

// ParseClimateZone maps a config or query value to a known zone, falling
// back to temperate for anything unrecognized.
func ParseClimateZone(s string) ClimateZone {
	switch ClimateZone(strings.ToLower(strings.TrimSpace(s))) {
	case ClimateHurricane:
		return ClimateHurricane
	case ClimateFreeze:
		return ClimateFreeze
	default:
		return ClimateTemperate
	}
}

// Season is the meteorological season used by the urgency table.
type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonFall   Season = "fall"
	SeasonWinter Season = "winter"
)

// SeasonOf buckets a timestamp by calendar month: Mar-May spring,
// Jun-Aug summer, Sep-Nov fall, Dec-Feb winter.
func SeasonOf(t time.Time) Season {
	switch t.Month() {
	case time.March, time.April, time.May:
		return SeasonSpring
	case time.June, time.July, time.August:
		return SeasonSummer
	case time.September, time.October, time.November:
		return SeasonFall
	default:
		return SeasonWinter
	}
}
