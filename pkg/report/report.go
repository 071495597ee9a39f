// Package report renders advisory snapshots as downloadable PDF
// documents.
package report

import "time"

// SystemRow is one scored system in the report table.
type SystemRow struct {
	SystemKey          string
	Name               string
	FailureProbability float64
	ReplacementCost    float64
	UrgencyMultiplier  float64
	Score              float64
}

// ReportData is everything the generator needs to render a report. It is
// deliberately decoupled from the engine's types so callers can assemble
// it from any snapshot source.
type ReportData struct {
	HomeLabel          string
	GeneratedAt        time.Time
	ClimateZone        string
	Season             string
	Mode               string
	ConfidenceBucket   string
	CriticalCoverage   float64
	PrimaryKey         string
	PrimaryScore       float64
	PrimaryExplanation string
	Systems            []SystemRow
}

// Generator handles PDF report generation.
type Generator struct{}

// NewGenerator creates a new report generator.
func NewGenerator() *Generator {
	return &Generator{}
}
