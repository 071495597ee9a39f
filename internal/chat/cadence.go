package chat

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	wildcard "github.com/IGLOU-EU/go-wildcard/v2"
	"github.com/rs/zerolog/log"

	"github.com/hearthline/hearth/internal/storage"
)

// Persisted key layout. Values are JSON blobs or plain strings so any
// store backend can hold them.
const (
	triggerHistoryKey = "chat:trigger_history"
	planningAcksKey   = "chat:planning_acks"
)

func sessionAutoOpenKey(sessionID string) string {
	return "chat:session:" + sessionID + ":auto_opens"
}

// Cadence limits persisted across evaluations.
const (
	// TriggerCooldown - one auto-open per trigger key per day.
	TriggerCooldown = 24 * time.Hour

	// MaxSessionAutoOpens - at most two auto-opened conversations per
	// session, whatever the triggers.
	MaxSessionAutoOpens = 2
)

// Block reasons reported by CanAutoOpen, also used as metric labels.
const (
	BlockReasonMuted      = "muted"
	BlockReasonSessionCap = "session_cap"
	BlockReasonCooldown   = "cooldown"
)

// TriggerRecord is one persisted auto-open, pruned once it is older than
// TriggerCooldown.
type TriggerRecord struct {
	Key       string    `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

// storagePolicy owns every storage-fault decision in this package. The
// cadence fences fail open: a broken store degrades to "no history",
// which only ever makes the assistant more willing to speak. The
// elevated_attention confidence gate never reads the store, so safety
// gating cannot be loosened this way. A future fail-closed mode changes
// these methods, nothing else.
type storagePolicy struct{}

func (storagePolicy) onReadFault(key string, err error) {
	log.Warn().Err(err).Str("key", key).Msg("Store read failed, treating as empty")
}

func (storagePolicy) onDecodeFault(key string, err error) {
	log.Warn().Err(err).Str("key", key).Msg("Store value corrupt, treating as empty")
}

func (storagePolicy) onWriteFault(key string, err error) {
	log.Warn().Err(err).Str("key", key).Msg("Store write failed, cadence state not persisted")
}

// Gate enforces the persisted cadence limits: the 24-hour per-trigger
// cooldown, the per-session auto-open cap, and operator-muted trigger
// patterns.
type Gate struct {
	store  storage.Store
	muted  []string
	policy storagePolicy
	now    func() time.Time
}

// NewGate builds a cadence gate over the given store. Muted patterns use
// wildcard syntax, e.g. "planning:hvac_*".
func NewGate(store storage.Store, mutedPatterns []string) *Gate {
	return NewGateAt(store, mutedPatterns, time.Now)
}

// NewGateAt pins the gate clock. Tests use it to step through the
// cooldown window.
func NewGateAt(store storage.Store, mutedPatterns []string, now func() time.Time) *Gate {
	return &Gate{store: store, muted: mutedPatterns, now: now}
}

// CanAutoOpen reports whether an auto-open for the trigger is allowed
// now, and the block reason when it is not.
func (g *Gate) CanAutoOpen(sessionID, triggerKey string) (bool, string) {
	for _, pattern := range g.muted {
		if wildcard.Match(pattern, triggerKey) {
			return false, BlockReasonMuted
		}
	}
	if g.sessionAutoOpens(sessionID) >= MaxSessionAutoOpens {
		return false, BlockReasonSessionCap
	}
	for _, rec := range g.history() {
		if rec.Key == triggerKey {
			return false, BlockReasonCooldown
		}
	}
	return true, ""
}

// RecordAutoOpen appends the trigger to the persisted history and bumps
// the session counter. Write faults are logged and otherwise ignored.
func (g *Gate) RecordAutoOpen(sessionID, triggerKey string) {
	records := append(g.history(), TriggerRecord{Key: triggerKey, Timestamp: g.now()})
	if data, err := json.Marshal(records); err == nil {
		if err := g.store.Set(triggerHistoryKey, string(data)); err != nil {
			g.policy.onWriteFault(triggerHistoryKey, err)
		}
	}

	key := sessionAutoOpenKey(sessionID)
	count := g.sessionAutoOpens(sessionID) + 1
	if err := g.store.Set(key, strconv.Itoa(count)); err != nil {
		g.policy.onWriteFault(key, err)
	}
}

// history returns the surviving trigger records, dropping entries older
// than TriggerCooldown. Faults degrade to an empty history.
func (g *Gate) history() []TriggerRecord {
	raw, ok, err := g.store.Get(triggerHistoryKey)
	if err != nil {
		g.policy.onReadFault(triggerHistoryKey, err)
		return nil
	}
	if !ok {
		return nil
	}
	var records []TriggerRecord
	if err := json.Unmarshal([]byte(raw), &records); err != nil {
		g.policy.onDecodeFault(triggerHistoryKey, err)
		return nil
	}
	cutoff := g.now().Add(-TriggerCooldown)
	kept := records[:0]
	for _, rec := range records {
		if rec.Timestamp.After(cutoff) {
			kept = append(kept, rec)
		}
	}
	return kept
}

func (g *Gate) sessionAutoOpens(sessionID string) int {
	key := sessionAutoOpenKey(sessionID)
	raw, ok, err := g.store.Get(key)
	if err != nil {
		g.policy.onReadFault(key, err)
		return 0
	}
	if !ok {
		return 0
	}
	count, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		g.policy.onDecodeFault(key, err)
		return 0
	}
	return count
}
