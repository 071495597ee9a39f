// Package scoring ranks home systems by expected 12-month replacement
// exposure and selects the single primary focus for advisory copy.
package scoring

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hearthline/hearth/internal/lifespan"
	"github.com/hearthline/hearth/internal/models"
)

// ScoredSystem is one ranked entry from a scoring pass. Recomputed on
// every evaluation, never persisted.
type ScoredSystem struct {
	System             models.SystemRecord `json:"system"`
	Score              float64             `json:"score"`
	UrgencyMultiplier  float64             `json:"urgencyMultiplier"`
	FailureProbability float64             `json:"failureProbability"`
	ReplacementCost    float64             `json:"replacementCost"`
	Explanation        string              `json:"explanation"`
}

// Result is the output of one scoring pass over a home's systems.
type Result struct {
	Primary *ScoredSystem  `json:"primary"`
	Scored  []ScoredSystem `json:"scored"`
}

// replacementCostMidpoints is the fixed cost table in dollars, keyed by
// base system type.
var replacementCostMidpoints = map[string]float64{
	"hvac":         9000,
	"roof":         16500,
	"water_heater": 2350,
	"electrical":   3500,
	"plumbing":     8000,
	"windows":      11500,
	"siding":       13000,
	"deck":         8000,
}

const defaultCostMidpoint = 5000

// fallbackProbability stands in when remaining years cannot be computed;
// the failure model is not consulted in that case.
const fallbackProbability = 0.1

// Explanation bands over the failure probability.
const (
	replacementWindowFloor = 0.5
	approachingFloor       = 0.2
)

// Engine scores systems with the frozen formula
// score = failureProbability12mo * replacementCostMidpoint * urgencyMultiplier.
type Engine struct {
	model lifespan.Model
	now   func() time.Time
}

// NewEngine builds a scoring engine over the given failure model.
func NewEngine(model lifespan.Model) *Engine {
	return &Engine{model: model, now: time.Now}
}

// NewEngineAt pins the engine clock so the season, and with it every
// score, is deterministic. Used by tests and report generation.
func NewEngineAt(model lifespan.Model, now func() time.Time) *Engine {
	return &Engine{model: model, now: now}
}

// SelectPrimary scores every system and picks the primary focus. An
// empty input yields a nil primary and an empty slice, never an error.
func (e *Engine) SelectPrimary(records []models.SystemRecord, zone models.ClimateZone) Result {
	now := e.now()
	season := models.SeasonOf(now)
	scored := make([]ScoredSystem, 0, len(records))
	for _, rec := range records {
		scored = append(scored, e.scoreSystem(rec, zone, season, now))
	}
	sort.SliceStable(scored, func(i, j int) bool { return rankedBefore(scored[i], scored[j]) })
	result := Result{Scored: scored}
	if len(scored) > 0 {
		primary := scored[0]
		result.Primary = &primary
	}
	return result
}

// rankedBefore orders by score, then replacement cost, then failure
// probability, all descending, with the system key ascending as the
// final tie-break so identical inputs always yield identical orderings.
func rankedBefore(a, b ScoredSystem) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.ReplacementCost != b.ReplacementCost {
		return a.ReplacementCost > b.ReplacementCost
	}
	if a.FailureProbability != b.FailureProbability {
		return a.FailureProbability > b.FailureProbability
	}
	return a.System.SystemKey < b.System.SystemKey
}

func (e *Engine) scoreSystem(rec models.SystemRecord, zone models.ClimateZone, season models.Season, now time.Time) ScoredSystem {
	probability := fallbackProbability
	if remaining := lifespan.RemainingYears(lifespan.EstimateReplacementYear(rec), now.Year()); remaining != nil {
		probability = e.model.FailureProbability(*remaining, rec.SystemKey)
	}
	cost := CostMidpoint(rec.SystemKey)
	multiplier, reason := urgency(models.BaseKey(rec.SystemKey), season, zone)
	return ScoredSystem{
		System:             rec,
		Score:              probability * cost * multiplier,
		UrgencyMultiplier:  multiplier,
		FailureProbability: probability,
		ReplacementCost:    cost,
		Explanation:        explain(rec, probability, multiplier, reason),
	}
}

// CostMidpoint returns the replacement cost midpoint for a system,
// falling back to a generic figure for unknown types.
func CostMidpoint(systemKey string) float64 {
	if cost, ok := replacementCostMidpoints[models.BaseKey(systemKey)]; ok {
		return cost
	}
	return defaultCostMidpoint
}

// urgency returns the seasonal or climate multiplier for a system type,
// plus a clause naming the reason for explanation copy. HVAC carries
// load in summer and winter; roofs carry climate exposure.
func urgency(baseKey string, season models.Season, zone models.ClimateZone) (float64, string) {
	switch baseKey {
	case "hvac":
		switch season {
		case models.SeasonSummer:
			return 1.25, "heading into peak cooling season"
		case models.SeasonWinter:
			return 1.25, "heading into peak heating season"
		}
	case "roof":
		switch zone {
		case models.ClimateHurricane:
			return 1.35, "in a hurricane-exposed climate"
		case models.ClimateFreeze:
			return 1.15, "in a freeze-prone climate"
		}
	}
	return 1.0, ""
}

func explain(rec models.SystemRecord, probability, multiplier float64, reason string) string {
	name := displayName(rec)
	switch {
	case probability >= replacementWindowFloor:
		return fmt.Sprintf("%s is in its typical replacement window", name)
	case probability >= approachingFloor && multiplier > 1.0:
		return fmt.Sprintf("%s is approaching replacement age %s", name, reason)
	case probability >= approachingFloor:
		return fmt.Sprintf("%s is approaching typical replacement age", name)
	default:
		return fmt.Sprintf("%s is worth monitoring as the next system to plan for", name)
	}
}

func displayName(rec models.SystemRecord) string {
	if rec.Name != "" {
		return rec.Name
	}
	return strings.ReplaceAll(models.BaseKey(rec.SystemKey), "_", " ")
}
