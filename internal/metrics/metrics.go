// Package metrics exposes Prometheus instrumentation for the advisory
// engine and the chat governance fences.
package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Advisory engine metrics
	AdvisoryEvaluationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hearth_advisory_evaluations_total",
			Help: "Total advisory evaluations run",
		},
	)

	AdvisoryPrimaryScore = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hearth_advisory_primary_score",
			Help: "Priority score of the current primary focus system",
		},
	)

	AdvisoryPrimaryChangedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hearth_advisory_primary_changed_total",
			Help: "Total times the primary focus system changed between evaluations",
		},
	)

	// Chat mode and governance metrics
	ChatModeSelectedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hearth_chat_mode_selected_total",
			Help: "Total mode selections by resulting mode",
		},
		[]string{"mode"},
	)

	ChatAgentMessagesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hearth_chat_agent_messages_total",
			Help: "Total assistant messages allowed through governance",
		},
	)

	ChatAgentMessagesBlockedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hearth_chat_agent_messages_blocked_total",
			Help: "Total assistant messages refused by the consecutive-turn cap",
		},
	)

	ChatAutoOpensTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hearth_chat_auto_opens_total",
			Help: "Total auto-opened conversations",
		},
	)

	ChatAutoOpenBlockedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "hearth_chat_auto_open_blocked_total",
			Help: "Total auto-opens refused, by fence",
		},
		[]string{"reason"}, // muted, session_cap, cooldown, initiation_cap
	)

	ChatInterpretiveExitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hearth_chat_interpretive_exits_total",
			Help: "Total interpretive excursions ended by the one-answer ceiling",
		},
	)
)

// maxLabelLen caps label values so a malformed trigger key cannot blow
// up cardinality.
const maxLabelLen = 64

// SanitizeLabel makes a value safe for use as a Prometheus label.
func SanitizeLabel(s string) string {
	if s == "" {
		return "unknown"
	}
	s = strings.ReplaceAll(s, " ", "_")
	if len(s) > maxLabelLen {
		s = s[:maxLabelLen]
	}
	return s
}
