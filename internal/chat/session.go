package chat

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/hearthline/hearth/internal/metrics"
)

// ErrSessionNotFound is returned for unknown session IDs.
var ErrSessionNotFound = errors.New("session not found")

// session is one live conversation with its governance counters. The
// mutex keeps updates in strict event order: a user message is fully
// applied before the next agent message is evaluated.
type session struct {
	mu           sync.Mutex
	id           string
	createdAt    time.Time
	updatedAt    time.Time
	state        State
	interpretive bool
}

// Guards reports the governance predicates for a session so the UI can
// grey out what the engine would refuse anyway.
type Guards struct {
	CanAutoInitiate        bool `json:"canAutoInitiate"`
	CanSendAgentMessage    bool `json:"canSendAgentMessage"`
	ShouldExitInterpretive bool `json:"shouldExitInterpretive"`
}

// SessionView is the API-facing snapshot of a session.
type SessionView struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
	Mode      Mode      `json:"mode"`
	State     State     `json:"state"`
	Guards    Guards    `json:"guards"`
}

// Manager owns the chat sessions and applies governance to every event.
// Sessions outside an interpretive excursion report the ambient mode;
// the excursion itself is the only session-local mode state.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*session
	gate     *Gate
	acks     *AckStore
	ambient  func() Mode
	now      func() time.Time
}

// NewManager builds a session manager. ambient supplies the current
// background mode; nil means always silent_steward.
func NewManager(gate *Gate, acks *AckStore, ambient func() Mode) *Manager {
	if ambient == nil {
		ambient = func() Mode { return InitialMode }
	}
	return &Manager{
		sessions: make(map[string]*session),
		gate:     gate,
		acks:     acks,
		ambient:  ambient,
		now:      time.Now,
	}
}

// Acks exposes the planning acknowledgment store.
func (m *Manager) Acks() *AckStore {
	return m.acks
}

// Create opens a new session with fresh governance counters.
func (m *Manager) Create() SessionView {
	now := m.now()
	s := &session{
		id:        uuid.New().String(),
		createdAt: now,
		updatedAt: now,
		state:     NewState(),
	}
	m.mu.Lock()
	m.sessions[s.id] = s
	m.mu.Unlock()

	log.Debug().Str("session", s.id).Msg("Chat session created")
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.viewLocked(s)
}

// Get returns a snapshot of one session.
func (m *Manager) Get(id string) (SessionView, error) {
	s, err := m.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return m.viewLocked(s), nil
}

// List returns snapshots of all sessions, newest activity first.
func (m *Manager) List() []SessionView {
	m.mu.RLock()
	sessions := make([]*session, 0, len(m.sessions))
	for _, s := range m.sessions {
		sessions = append(sessions, s)
	}
	m.mu.RUnlock()

	views := make([]SessionView, 0, len(sessions))
	for _, s := range sessions {
		s.mu.Lock()
		views = append(views, m.viewLocked(s))
		s.mu.Unlock()
	}
	sort.Slice(views, func(i, j int) bool {
		return views[i].UpdatedAt.After(views[j].UpdatedAt)
	})
	return views
}

// UserMessage applies a user turn: the agent streak resets, and explicit
// why/how intent enters an interpretive excursion.
func (m *Manager) UserMessage(id, content string) (SessionView, error) {
	s, err := m.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.state = s.state.RecordUserMessage()
	if !s.interpretive && DetectInterpretiveIntent(content) {
		s.state = s.state.EnterInterpretive(m.ambient())
		s.interpretive = true
		metrics.ChatModeSelectedTotal.WithLabelValues(string(ModeInterpretive)).Inc()
		log.Debug().Str("session", s.id).Msg("Entered interpretive mode on user intent")
	}
	s.updatedAt = m.now()
	return m.viewLocked(s), nil
}

// AgentMessage applies an assistant turn if the streak cap allows it. In
// an interpretive excursion the turn spends the single allowed answer
// and the session snaps back to the previous mode.
func (m *Manager) AgentMessage(id string) (SessionView, error) {
	s, err := m.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanSendAgentMessage() {
		metrics.ChatAgentMessagesBlockedTotal.Inc()
		return m.viewLocked(s), &BlockedError{
			Guard:  "can_send_agent_message",
			Reason: "three assistant turns in a row, waiting for the user",
		}
	}

	s.state = s.state.RecordAgentMessage()
	metrics.ChatAgentMessagesTotal.Inc()

	if s.interpretive && s.state.ShouldExitInterpretive() {
		returnTo := s.state.ReturnMode()
		s.state = s.state.ExitInterpretive()
		s.interpretive = false
		metrics.ChatInterpretiveExitsTotal.Inc()
		log.Debug().
			Str("session", s.id).
			Str("mode", string(returnTo)).
			Msg("Interpretive excursion ended after one answer")
	}
	s.updatedAt = m.now()
	return m.viewLocked(s), nil
}

// AutoOpen runs every fence in order: the session's one-initiation
// guard, then the persisted cadence gate. On success both the in-memory
// counters and the persisted history advance.
func (m *Manager) AutoOpen(id, triggerKey string) (SessionView, error) {
	s, err := m.lookup(id)
	if err != nil {
		return SessionView{}, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.state.CanAutoInitiate() {
		metrics.ChatAutoOpenBlockedTotal.WithLabelValues("initiation_cap").Inc()
		return m.viewLocked(s), &BlockedError{
			Guard:  "can_auto_initiate",
			Reason: "this session already used its autonomous conversation start",
		}
	}
	if ok, reason := m.gate.CanAutoOpen(s.id, triggerKey); !ok {
		metrics.ChatAutoOpenBlockedTotal.WithLabelValues(metrics.SanitizeLabel(reason)).Inc()
		return m.viewLocked(s), &BlockedError{Guard: "auto_open_gate", Reason: reason}
	}

	now := m.now()
	s.state = s.state.RecordAutoInitiation(now)
	m.gate.RecordAutoOpen(s.id, triggerKey)
	metrics.ChatAutoOpensTotal.Inc()
	s.updatedAt = now
	log.Info().Str("session", s.id).Str("trigger", triggerKey).Msg("Auto-opened conversation")
	return m.viewLocked(s), nil
}

func (m *Manager) lookup(id string) (*session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// viewLocked snapshots a session; the caller holds s.mu.
func (m *Manager) viewLocked(s *session) SessionView {
	mode := m.ambient()
	if s.interpretive {
		mode = ModeInterpretive
	}
	return SessionView{
		ID:        s.id,
		CreatedAt: s.createdAt,
		UpdatedAt: s.updatedAt,
		Mode:      mode,
		State:     s.state,
		Guards: Guards{
			CanAutoInitiate:        s.state.CanAutoInitiate(),
			CanSendAgentMessage:    s.state.CanSendAgentMessage(),
			ShouldExitInterpretive: s.interpretive && s.state.ShouldExitInterpretive(),
		},
	}
}
