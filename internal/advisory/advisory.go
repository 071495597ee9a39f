// Package advisory composes inventory, scoring, confidence, and mode
// selection into the snapshot the dashboard and chat layers consume.
package advisory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/hearthline/hearth/internal/chat"
	"github.com/hearthline/hearth/internal/confidence"
	"github.com/hearthline/hearth/internal/events"
	"github.com/hearthline/hearth/internal/inventory"
	"github.com/hearthline/hearth/internal/lifespan"
	"github.com/hearthline/hearth/internal/metrics"
	"github.com/hearthline/hearth/internal/models"
	"github.com/hearthline/hearth/internal/scoring"
)

// Broadcaster pushes snapshots to connected dashboards.
type Broadcaster interface {
	BroadcastAdvisory(snapshot interface{})
}

// Snapshot is the output of one full advisory evaluation.
type Snapshot struct {
	GeneratedAt time.Time             `json:"generatedAt"`
	ClimateZone models.ClimateZone    `json:"climateZone"`
	Season      models.Season         `json:"season"`
	Systems     []models.SystemRecord `json:"systems"`
	Confidence  confidence.Summary    `json:"confidence"`
	Scoring     scoring.Result        `json:"scoring"`
	ModeContext chat.Context          `json:"modeContext"`
}

// PrimaryKey returns the system key of the primary focus, or "".
func (s *Snapshot) PrimaryKey() string {
	if s == nil || s.Scoring.Primary == nil {
		return ""
	}
	return s.Scoring.Primary.System.SystemKey
}

// Options configures an advisory engine.
type Options struct {
	Provider inventory.Provider
	Model    lifespan.Model
	EventLog *events.Log
	Hub      Broadcaster
	Zone     models.ClimateZone
	Interval time.Duration
	Now      func() time.Time
}

// Engine runs evaluations and caches the latest snapshot.
type Engine struct {
	provider inventory.Provider
	scorer   *scoring.Engine
	eventLog *events.Log
	hub      Broadcaster
	interval time.Duration
	now      func() time.Time

	mu       sync.RWMutex
	zone     models.ClimateZone
	snapshot *Snapshot
	mode     chat.Mode

	kick chan struct{}
}

// New builds an engine. Zero options get working defaults: the logistic
// failure model, the temperate zone, and an hourly evaluation cycle.
func New(opts Options) *Engine {
	if opts.Model == nil {
		opts.Model = lifespan.CurveModel{}
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Hour
	}
	if opts.Zone == "" {
		opts.Zone = models.ClimateTemperate
	}
	return &Engine{
		provider: opts.Provider,
		scorer:   scoring.NewEngineAt(opts.Model, opts.Now),
		eventLog: opts.EventLog,
		hub:      opts.Hub,
		interval: opts.Interval,
		now:      opts.Now,
		zone:     opts.Zone,
		kick:     make(chan struct{}, 1),
	}
}

// Evaluate runs one full pass: read inventory, score, derive confidence
// and mode, cache the snapshot, and fan out events and metrics.
func (e *Engine) Evaluate() (*Snapshot, error) {
	records, err := e.provider.Systems()
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}

	e.mu.Lock()
	snap := e.compute(records, e.zone)
	prev := e.snapshot
	prevMode := e.mode
	e.snapshot = snap
	e.mode = snap.ModeContext.Mode
	e.mu.Unlock()

	metrics.AdvisoryEvaluationsTotal.Inc()
	metrics.ChatModeSelectedTotal.WithLabelValues(metrics.SanitizeLabel(string(snap.ModeContext.Mode))).Inc()
	if snap.Scoring.Primary != nil {
		metrics.AdvisoryPrimaryScore.Set(snap.Scoring.Primary.Score)
	} else {
		metrics.AdvisoryPrimaryScore.Set(0)
	}

	e.noteChanges(prev, prevMode, snap)

	if e.hub != nil {
		e.hub.BroadcastAdvisory(snap)
	}
	return snap, nil
}

// Preview computes a snapshot for an alternate climate zone without
// touching the cache, events, or metrics.
func (e *Engine) Preview(zone models.ClimateZone) (*Snapshot, error) {
	records, err := e.provider.Systems()
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory: %w", err)
	}
	return e.compute(records, zone), nil
}

// Snapshot returns the latest cached snapshot, or nil before the first
// evaluation completes.
func (e *Engine) Snapshot() *Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.snapshot
}

// Mode returns the current ambient advisory mode. Chat sessions read
// this on every render.
func (e *Engine) Mode() chat.Mode {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.mode == "" {
		return chat.InitialMode
	}
	return e.mode
}

// SetZone updates the climate zone and schedules a re-evaluation.
func (e *Engine) SetZone(zone models.ClimateZone) {
	e.mu.Lock()
	changed := e.zone != zone
	e.zone = zone
	e.mu.Unlock()
	if changed {
		e.Kick()
	}
}

// Kick schedules an immediate re-evaluation on the Run loop. Safe to
// call from any goroutine; coalesces while one is already pending.
func (e *Engine) Kick() {
	select {
	case e.kick <- struct{}{}:
	default:
	}
}

// Run evaluates immediately, then on every tick and kick until ctx ends.
func (e *Engine) Run(ctx context.Context) error {
	if _, err := e.Evaluate(); err != nil {
		log.Error().Err(err).Msg("Initial advisory evaluation failed")
	}

	ticker := time.NewTicker(e.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if _, err := e.Evaluate(); err != nil {
				log.Error().Err(err).Msg("Scheduled advisory evaluation failed")
			}
		case <-e.kick:
			if _, err := e.Evaluate(); err != nil {
				log.Error().Err(err).Msg("Triggered advisory evaluation failed")
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (e *Engine) compute(records []models.SystemRecord, zone models.ClimateZone) *Snapshot {
	now := e.now()
	sig := chat.NewSignals(records, now)
	mode := chat.SelectMode(sig)
	return &Snapshot{
		GeneratedAt: now,
		ClimateZone: zone,
		Season:      models.SeasonOf(now),
		Systems:     records,
		Confidence:  sig.Summary,
		Scoring:     e.scorer.SelectPrimary(records, zone),
		ModeContext: chat.BuildContext(sig, mode, ""),
	}
}

// noteChanges records primary and mode transitions. The first evaluation
// establishes a baseline and emits nothing.
func (e *Engine) noteChanges(prev *Snapshot, prevMode chat.Mode, snap *Snapshot) {
	if prev == nil {
		log.Info().
			Str("primary", snap.PrimaryKey()).
			Str("mode", string(snap.ModeContext.Mode)).
			Msg("Advisory baseline established")
		return
	}

	if prevKey, newKey := prev.PrimaryKey(), snap.PrimaryKey(); prevKey != newKey {
		metrics.AdvisoryPrimaryChangedTotal.Inc()
		log.Info().Str("from", prevKey).Str("to", newKey).Msg("Primary focus changed")
		if e.eventLog != nil {
			e.eventLog.Append(events.Event{
				Type:      events.TypePrimaryChanged,
				SystemKey: newKey,
				Detail:    primaryChangeDetail(prevKey, newKey),
			})
		}
	}

	if newMode := snap.ModeContext.Mode; prevMode != "" && prevMode != newMode {
		log.Info().Str("from", string(prevMode)).Str("to", string(newMode)).Msg("Advisory mode changed")
		if e.eventLog != nil {
			e.eventLog.Append(events.Event{
				Type:   events.TypeModeChanged,
				Mode:   string(newMode),
				Detail: fmt.Sprintf("was %s", prevMode),
			})
		}
	}
}

func primaryChangeDetail(prevKey, newKey string) string {
	switch {
	case newKey == "":
		return fmt.Sprintf("was %s, now none", prevKey)
	case prevKey == "":
		return "first primary focus"
	default:
		return fmt.Sprintf("was %s", prevKey)
	}
}
