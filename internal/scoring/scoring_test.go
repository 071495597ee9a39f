package scoring

import (
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/hearthline/hearth/internal/lifespan"
	"github.com/hearthline/hearth/internal/models"
)

// fixedModel returns one probability for every system and counts calls.
type fixedModel struct {
	prob  float64
	calls int
}

func (m *fixedModel) FailureProbability(remainingYears float64, systemKey string) float64 {
	m.calls++
	return m.prob
}

func intPtr(v int) *int { return &v }

func julyClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.July, 10, 9, 0, 0, 0, time.UTC)
	}
}

func aprilClock() func() time.Time {
	return func() time.Time {
		return time.Date(2025, time.April, 10, 9, 0, 0, 0, time.UTC)
	}
}

func TestSelectPrimaryEmptyInput(t *testing.T) {
	engine := NewEngineAt(&fixedModel{prob: 0.5}, julyClock())
	result := engine.SelectPrimary(nil, models.ClimateTemperate)
	if result.Primary != nil {
		t.Fatalf("primary for empty input = %v, want nil", result.Primary)
	}
	if result.Scored == nil || len(result.Scored) != 0 {
		t.Fatalf("scored for empty input = %v, want empty slice", result.Scored)
	}
}

func TestSelectPrimaryDeterministic(t *testing.T) {
	records := []models.SystemRecord{
		{SystemKey: "roof_gaf", LikelyReplacementYear: intPtr(2027)},
		{SystemKey: "hvac_carrier", LikelyReplacementYear: intPtr(2026)},
		{SystemKey: "water_heater_rheem", LikelyReplacementYear: intPtr(2031)},
		{SystemKey: "deck"},
	}
	engine := NewEngineAt(lifespan.CurveModel{}, julyClock())
	first := engine.SelectPrimary(records, models.ClimateHurricane)
	second := engine.SelectPrimary(records, models.ClimateHurricane)
	if !reflect.DeepEqual(first, second) {
		t.Fatal("identical inputs must yield identical results")
	}
}

func TestTieBreakBySystemKey(t *testing.T) {
	// Same unknown type, no dates: equal score, cost, and probability.
	records := []models.SystemRecord{
		{SystemKey: "fence_west"},
		{SystemKey: "fence_east"},
	}
	engine := NewEngineAt(&fixedModel{prob: 0.3}, aprilClock())
	result := engine.SelectPrimary(records, models.ClimateTemperate)
	if result.Scored[0].System.SystemKey != "fence_east" {
		t.Fatalf("tie-break should favor the lexicographically smaller key, got %q first",
			result.Scored[0].System.SystemKey)
	}
	if result.Primary.System.SystemKey != "fence_east" {
		t.Fatalf("primary = %q, want fence_east", result.Primary.System.SystemKey)
	}
}

func TestComparatorOrder(t *testing.T) {
	base := ScoredSystem{Score: 100, ReplacementCost: 5000, FailureProbability: 0.2,
		System: models.SystemRecord{SystemKey: "b"}}

	higherScore := base
	higherScore.Score = 200
	if !rankedBefore(higherScore, base) {
		t.Error("higher score must rank first")
	}

	higherCost := base
	higherCost.ReplacementCost = 9000
	if !rankedBefore(higherCost, base) {
		t.Error("equal score: higher cost must rank first")
	}

	higherProb := base
	higherProb.FailureProbability = 0.4
	if !rankedBefore(higherProb, base) {
		t.Error("equal score and cost: higher probability must rank first")
	}

	smallerKey := base
	smallerKey.System.SystemKey = "a"
	if !rankedBefore(smallerKey, base) || rankedBefore(base, smallerKey) {
		t.Error("full tie: smaller system key must rank first")
	}
}

func TestFallbackProbabilitySkipsModel(t *testing.T) {
	model := &fixedModel{prob: 0.9}
	engine := NewEngineAt(model, aprilClock())
	result := engine.SelectPrimary([]models.SystemRecord{{SystemKey: "deck"}}, models.ClimateTemperate)
	if model.calls != 0 {
		t.Fatalf("model consulted %d times for a dateless record, want 0", model.calls)
	}
	if got := result.Scored[0].FailureProbability; got != 0.1 {
		t.Fatalf("dateless record probability = %v, want 0.1", got)
	}
}

func TestCostMidpoints(t *testing.T) {
	cases := []struct {
		key  string
		want float64
	}{
		{"hvac_carrier", 9000},
		{"roof", 16500},
		{"water_heater_rheem_50g", 2350},
		{"electrical_panel", 3500},
		{"sauna", 5000},
	}
	for _, tc := range cases {
		if got := CostMidpoint(tc.key); got != tc.want {
			t.Errorf("CostMidpoint(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
}

func TestUrgencyMultipliers(t *testing.T) {
	cases := []struct {
		base   string
		season models.Season
		zone   models.ClimateZone
		want   float64
	}{
		{"hvac", models.SeasonSummer, models.ClimateTemperate, 1.25},
		{"hvac", models.SeasonWinter, models.ClimateTemperate, 1.25},
		{"hvac", models.SeasonSpring, models.ClimateTemperate, 1.0},
		{"hvac", models.SeasonFall, models.ClimateHurricane, 1.0},
		{"roof", models.SeasonSpring, models.ClimateHurricane, 1.35},
		{"roof", models.SeasonSummer, models.ClimateFreeze, 1.15},
		{"roof", models.SeasonWinter, models.ClimateTemperate, 1.0},
		{"water_heater", models.SeasonSummer, models.ClimateHurricane, 1.0},
	}
	for _, tc := range cases {
		got, _ := urgency(tc.base, tc.season, tc.zone)
		if got != tc.want {
			t.Errorf("urgency(%q, %q, %q) = %v, want %v", tc.base, tc.season, tc.zone, got, tc.want)
		}
	}
}

func TestExplanationBands(t *testing.T) {
	rec := models.SystemRecord{SystemKey: "hvac"}
	if got := explain(rec, 0.6, 1.0, ""); !strings.Contains(got, "typical replacement window") {
		t.Errorf("high band explanation = %q", got)
	}
	if got := explain(rec, 0.3, 1.25, "heading into peak cooling season"); !strings.Contains(got, "peak cooling season") {
		t.Errorf("mid band with multiplier should name the reason, got %q", got)
	}
	if got := explain(rec, 0.3, 1.0, ""); !strings.Contains(got, "approaching typical replacement age") {
		t.Errorf("mid band without multiplier = %q", got)
	}
	if got := explain(rec, 0.1, 1.0, ""); !strings.Contains(got, "worth monitoring") {
		t.Errorf("low band explanation = %q", got)
	}
}

// A hot HVAC one year from replacement must outrank a roof eight years
// out, with the summer multiplier applied.
func TestSummerAgingHVACOutranksDistantRoof(t *testing.T) {
	records := []models.SystemRecord{
		{SystemKey: "hvac", LikelyReplacementYear: intPtr(2026)},
		{SystemKey: "roof", LikelyReplacementYear: intPtr(2033)},
	}
	engine := NewEngineAt(lifespan.CurveModel{}, julyClock())
	result := engine.SelectPrimary(records, models.ClimateTemperate)

	if result.Primary == nil || result.Primary.System.SystemKey != "hvac" {
		t.Fatalf("primary = %+v, want hvac", result.Primary)
	}
	if result.Primary.UrgencyMultiplier != 1.25 {
		t.Fatalf("hvac summer multiplier = %v, want 1.25", result.Primary.UrgencyMultiplier)
	}
	var roof ScoredSystem
	for _, s := range result.Scored {
		if s.System.SystemKey == "roof" {
			roof = s
		}
	}
	if result.Primary.Score <= roof.Score {
		t.Fatalf("hvac score %v should exceed roof score %v", result.Primary.Score, roof.Score)
	}
}
