// Package chat selects how directive the home assistant may be and
// governs the cadence of its autonomous messages. The mode selector
// decides what the assistant would say; the governance state machine
// decides whether it is allowed to say it now.
package chat

import (
	"time"

	"github.com/hearthline/hearth/internal/confidence"
	"github.com/hearthline/hearth/internal/lifespan"
	"github.com/hearthline/hearth/internal/models"
)

// Mode is the conversational posture of the assistant.
type Mode string

const (
	// ModeElevatedAttention - a system shows a deviation backed by enough
	// record confidence to trust it
	ModeElevatedAttention Mode = "elevated_attention"

	// ModeBaselineEstablishment - critical systems are too thinly
	// documented to advise; collect data before speaking with authority
	ModeBaselineEstablishment Mode = "baseline_establishment"

	// ModePlanningWindowAdvisory - a system is aging into its replacement
	// window on time alone, no deviation required
	ModePlanningWindowAdvisory Mode = "planning_window_advisory"

	// ModeInterpretive - one-shot explanation mode entered only on
	// explicit user why/how intent, never by background evaluation
	ModeInterpretive Mode = "interpretive"

	// ModeSilentSteward - default: everything stable, wait for the user
	ModeSilentSteward Mode = "silent_steward"
)

// InitialMode is the posture of a fresh session.
const InitialMode = ModeSilentSteward

// Selector thresholds. These are deliberately distinct from the
// 0.40/0.70 confidence bucket cutoffs.
const (
	// DeviationConfidenceFloor gates elevated_attention: a deviation only
	// counts when the system's own record scores at least this well, so
	// sparse data cannot raise the alarm.
	DeviationConfidenceFloor = 0.50

	// BaselineCompleteCoverage is the critical coverage below which the
	// selector holds the advisory modes back and asks for data instead.
	BaselineCompleteCoverage = 0.75

	// PlanningWindowYears is how close a system must be to its likely
	// replacement year to count as inside its planning window.
	PlanningWindowYears = 2.0
)

// Signals carries everything the rule table may inspect for one
// evaluation pass.
type Signals struct {
	Records []models.SystemRecord
	Summary confidence.Summary
	Now     time.Time
}

// NewSignals derives the selector inputs for a record set.
func NewSignals(records []models.SystemRecord, now time.Time) Signals {
	return Signals{Records: records, Summary: confidence.Summarize(records), Now: now}
}

// ConfidentDeviations returns the systems whose deviation flag is backed
// by a record confidence of at least DeviationConfidenceFloor.
func (sig Signals) ConfidentDeviations() []string {
	var keys []string
	for _, rec := range sig.Records {
		if rec.DeviationDetected && confidence.ScoreRecord(rec) >= DeviationConfidenceFloor {
			keys = append(keys, rec.SystemKey)
		}
	}
	return keys
}

// PlanningWindowSystems returns the systems within PlanningWindowYears
// of their likely replacement year, including systems already past it.
func (sig Signals) PlanningWindowSystems() []string {
	var keys []string
	for _, rec := range sig.Records {
		remaining := lifespan.RemainingYears(lifespan.EstimateReplacementYear(rec), sig.Now.Year())
		if remaining != nil && *remaining <= PlanningWindowYears {
			keys = append(keys, rec.SystemKey)
		}
	}
	return keys
}

// IsBaselineComplete reports whether critical coverage has reached the
// level where advisory modes are allowed to speak.
func (sig Signals) IsBaselineComplete() bool {
	return sig.Summary.CriticalCoverage >= BaselineCompleteCoverage
}

// Rule pairs a mode with the condition that activates it.
type Rule struct {
	Mode Mode
	// Reason is a short operator-facing description of the condition.
	Reason string
	// When reports whether the mode applies to the current signals.
	When func(sig Signals) bool
}

// Rules is the mode precedence table, evaluated top to bottom with the
// first match winning. Reordering this slice is the only way to change
// precedence. ModeInterpretive never appears here: it is entered only on
// explicit user intent (see DetectInterpretiveIntent).
var Rules = []Rule{
	{
		Mode:   ModeElevatedAttention,
		Reason: "confident deviation on a tracked system",
		When: func(sig Signals) bool {
			return len(sig.ConfidentDeviations()) > 0
		},
	},
	{
		Mode:   ModeBaselineEstablishment,
		Reason: "critical systems below baseline coverage",
		When: func(sig Signals) bool {
			return !sig.IsBaselineComplete()
		},
	},
	{
		Mode:   ModePlanningWindowAdvisory,
		Reason: "a system is aging into its replacement window",
		When: func(sig Signals) bool {
			return len(sig.PlanningWindowSystems()) > 0
		},
	},
	{
		Mode:   ModeSilentSteward,
		Reason: "all systems stable",
		When:   func(Signals) bool { return true },
	},
}

// SelectMode walks the precedence table and returns the first matching
// mode.
func SelectMode(sig Signals) Mode {
	for _, rule := range Rules {
		if rule.When(sig) {
			return rule.Mode
		}
	}
	return ModeSilentSteward
}

// Context is handed to the message-composition layer so opening copy and
// allowed suggestions match the selected mode. Recomputed per
// evaluation; PreviousMode is set only across an interpretive excursion.
type Context struct {
	Mode                     Mode              `json:"mode"`
	SystemConfidence         confidence.Bucket `json:"systemConfidence"`
	PermitsFound             bool              `json:"permitsFound"`
	CriticalSystemsCoverage  float64           `json:"criticalSystemsCoverage"`
	UserConfirmedSystems     bool              `json:"userConfirmedSystems"`
	SystemsWithLowConfidence []string          `json:"systemsWithLowConfidence"`
	PreviousMode             Mode              `json:"previousMode,omitempty"`
	IsBaselineComplete       bool              `json:"isBaselineComplete"`
}

// BuildContext assembles the mode context for one evaluation.
func BuildContext(sig Signals, mode Mode, previous Mode) Context {
	return Context{
		Mode:                     mode,
		SystemConfidence:         sig.Summary.Bucket,
		PermitsFound:             sig.Summary.PermitsFound,
		CriticalSystemsCoverage:  sig.Summary.CriticalCoverage,
		UserConfirmedSystems:     sig.Summary.UserConfirmed,
		SystemsWithLowConfidence: sig.Summary.LowConfidenceSystems,
		PreviousMode:             previous,
		IsBaselineComplete:       sig.IsBaselineComplete(),
	}
}
