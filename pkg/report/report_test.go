package report

import (
	"testing"
	"time"
)

func createTestReportData() *ReportData {
	return &ReportData{
		HomeLabel:          "12 Alder Court",
		GeneratedAt:        time.Date(2025, 7, 15, 9, 30, 0, 0, time.UTC),
		ClimateZone:        "temperate",
		Season:             "summer",
		Mode:               "planning_window_advisory",
		ConfidenceBucket:   "High",
		CriticalCoverage:   1.0,
		PrimaryKey:         "hvac_carrier",
		PrimaryScore:       3412,
		PrimaryExplanation: "hvac_carrier is 11 years into a 15 year typical lifespan and summer raises its load.",
		Systems: []SystemRow{
			{SystemKey: "hvac_carrier", Name: "Carrier Infinity", FailureProbability: 0.31, ReplacementCost: 9000, UrgencyMultiplier: 1.25, Score: 3412},
			{SystemKey: "roof_asphalt", Name: "Asphalt Shingle Roof", FailureProbability: 0.12, ReplacementCost: 16500, UrgencyMultiplier: 1.0, Score: 1980},
			{SystemKey: "water_heater_rheem", Name: "Rheem 50gal", FailureProbability: 0.08, ReplacementCost: 2350, UrgencyMultiplier: 1.0, Score: 188},
		},
	}
}

func TestGenerator_Generate(t *testing.T) {
	data := createTestReportData()

	gen := NewGenerator()
	result, err := gen.Generate(data)
	if err != nil {
		t.Fatalf("PDF generation failed: %v", err)
	}

	// Check PDF magic bytes
	if len(result) < 4 {
		t.Fatal("PDF too short")
	}
	if string(result[:4]) != "%PDF" {
		t.Error("Missing PDF magic bytes")
	}

	// Check reasonable size (should be at least a few KB)
	if len(result) < 1000 {
		t.Errorf("PDF seems too small: %d bytes", len(result))
	}
}

func TestGenerator_EmptyData(t *testing.T) {
	data := &ReportData{
		HomeLabel:        "Empty Home",
		GeneratedAt:      time.Now(),
		ClimateZone:      "temperate",
		Season:           "winter",
		Mode:             "baseline_establishment",
		ConfidenceBucket: "Early",
	}

	gen := NewGenerator()
	result, err := gen.Generate(data)
	if err != nil {
		t.Fatalf("PDF generation failed for empty data: %v", err)
	}

	if string(result[:4]) != "%PDF" {
		t.Error("Missing PDF magic bytes for empty report")
	}
}

func TestGenerator_ManyRowsPaginate(t *testing.T) {
	data := createTestReportData()
	for i := 0; i < 60; i++ {
		data.Systems = append(data.Systems, SystemRow{
			SystemKey:          "windows_unit",
			Name:               "Double Pane Windows",
			FailureProbability: 0.05,
			ReplacementCost:    11500,
			UrgencyMultiplier:  1.0,
			Score:              575,
		})
	}

	gen := NewGenerator()
	result, err := gen.Generate(data)
	if err != nil {
		t.Fatalf("PDF generation failed: %v", err)
	}
	if string(result[:4]) != "%PDF" {
		t.Error("Missing PDF magic bytes")
	}
}

func TestModeDisplay(t *testing.T) {
	tests := []struct {
		mode  string
		label string
		color [3]int
	}{
		{"silent_steward", "SILENT STEWARD", colorAccent},
		{"elevated_attention", "ELEVATED ATTENTION", colorDanger},
		{"planning_window_advisory", "PLANNING WINDOW", colorWarning},
		{"baseline_establishment", "BASELINE NEEDED", colorSecondary},
		{"interpretive", "INTERPRETIVE", colorSecondary},
		{"some_future_mode", "SOME FUTURE MODE", colorTextMuted},
	}

	for _, tt := range tests {
		label, _, color := modeDisplay(tt.mode)
		if label != tt.label {
			t.Errorf("modeDisplay(%q) label = %q, want %q", tt.mode, label, tt.label)
		}
		if color != tt.color {
			t.Errorf("modeDisplay(%q) color = %v, want %v", tt.mode, color, tt.color)
		}
	}
}

func TestFormatDollars(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0"},
		{42, "$42"},
		{999, "$999"},
		{1000, "$1,000"},
		{16500, "$16,500"},
		{3412.6, "$3,413"},
		{1234567, "$1,234,567"},
	}

	for _, tt := range tests {
		if got := formatDollars(tt.in); got != tt.want {
			t.Errorf("formatDollars(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTitleCase(t *testing.T) {
	if got := titleCase("temperate"); got != "Temperate" {
		t.Errorf("titleCase = %q", got)
	}
	if got := titleCase(""); got != "" {
		t.Errorf("titleCase of empty = %q", got)
	}
}
