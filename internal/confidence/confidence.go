// Package confidence derives how well documented a home's systems are
// from the provenance of their inventory records.
package confidence

import "github.com/hearthline/hearth/internal/models"

// Bucket summarizes the documentation level of a home's critical systems.
type Bucket string

const (
	BucketEarly    Bucket = "Early"
	BucketModerate Bucket = "Moderate"
	BucketHigh     Bucket = "High"
)

// Per-record scoring weights. Bonuses are additive and the total is
// clamped to 1.0.
const (
	baseScore            = 0.10
	installDateBonus     = 0.30
	manufactureYearBonus = 0.25
	permitBonus          = 0.25
	userSourceBonus      = 0.20
)

// Bucket cutoffs over the critical-system average. ModerateFloor doubles
// as the per-system low-confidence line.
const (
	ModerateFloor = 0.40
	HighFloor     = 0.70
)

// ScoreRecord computes the documentation confidence for one record. A
// stored overall value can only raise the result, never lower it.
func ScoreRecord(rec models.SystemRecord) float64 {
	score := baseScore
	if rec.InstallDate != nil {
		score += installDateBonus
	}
	if rec.ManufactureYear != nil {
		score += manufactureYearBonus
	}
	if rec.HasDataSource("permit") {
		score += permitBonus
	}
	if rec.HasDataSource("user", "manual", "owner") {
		score += userSourceBonus
	}
	if rec.Confidence != nil && rec.Confidence.Overall != nil && *rec.Confidence.Overall > score {
		score = *rec.Confidence.Overall
	}
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// DeriveBucket averages the scores of the critical-system records and
// maps the mean to a bucket. A home with no critical records is Early.
func DeriveBucket(records []models.SystemRecord) Bucket {
	var sum float64
	var n int
	for _, rec := range records {
		if !models.IsCritical(rec.SystemKey) {
			continue
		}
		sum += ScoreRecord(rec)
		n++
	}
	if n == 0 {
		return BucketEarly
	}
	avg := sum / float64(n)
	switch {
	case avg >= HighFloor:
		return BucketHigh
	case avg >= ModerateFloor:
		return BucketModerate
	default:
		return BucketEarly
	}
}

// CriticalCoverage is the fraction of the fixed critical set with at
// least one dated record. Duplicate records for one base key count once.
func CriticalCoverage(records []models.SystemRecord) float64 {
	dated := make(map[string]bool)
	for _, rec := range records {
		base := models.BaseKey(rec.SystemKey)
		if !models.IsCritical(base) || !rec.Dated() {
			continue
		}
		dated[base] = true
	}
	return float64(len(dated)) / float64(len(models.CriticalSystems))
}

// HasUserConfirmed reports whether any record carries an owner-reported
// provenance tag.
func HasUserConfirmed(records []models.SystemRecord) bool {
	for _, rec := range records {
		if rec.HasDataSource("user", "manual", "owner") {
			return true
		}
	}
	return false
}

// HasPermitData reports whether any record is backed by permit data.
func HasPermitData(records []models.SystemRecord) bool {
	for _, rec := range records {
		if rec.HasDataSource("permit") {
			return true
		}
	}
	return false
}

// LowConfidenceSystems lists the system keys scoring below the Moderate
// cutoff, preserving input order.
func LowConfidenceSystems(records []models.SystemRecord) []string {
	keys := make([]string, 0)
	for _, rec := range records {
		if ScoreRecord(rec) < ModerateFloor {
			keys = append(keys, rec.SystemKey)
		}
	}
	return keys
}

// Summary bundles every confidence-derived signal consumed by the mode
// selector and the dashboard.
type Summary struct {
	Bucket               Bucket   `json:"bucket"`
	CriticalCoverage     float64  `json:"criticalCoverage"`
	UserConfirmed        bool     `json:"userConfirmed"`
	PermitsFound         bool     `json:"permitsFound"`
	LowConfidenceSystems []string `json:"lowConfidenceSystems"`
}

// Summarize derives all confidence signals for a record set in one pass.
func Summarize(records []models.SystemRecord) Summary {
	return Summary{
		Bucket:               DeriveBucket(records),
		CriticalCoverage:     CriticalCoverage(records),
		UserConfirmed:        HasUserConfirmed(records),
		PermitsFound:         HasPermitData(records),
		LowConfidenceSystems: LowConfidenceSystems(records),
	}
}
