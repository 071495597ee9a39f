package chat

import (
	"fmt"
	"time"
)

// Governance caps. These hold whatever mode is selected; they exist to
// prevent message fatigue, not to rank advice.
const (
	// MaxAutoInitiations - exactly one autonomous conversation start per
	// session, ever.
	MaxAutoInitiations = 1

	// MaxConsecutiveAgentMessages - no more than three assistant turns in
	// a row without a user reply.
	MaxConsecutiveAgentMessages = 3

	// MaxInterpretiveMessages - interpretive mode answers once, then
	// snaps back to the previous mode. A hard ceiling, not advisory.
	MaxInterpretiveMessages = 1
)

// State holds the session-scoped governance counters. Every transition
// takes and returns a State value; nothing mutates in place, so a caller
// can evaluate a step and discard it.
type State struct {
	AutoInitiations          int       `json:"autoInitiations"`
	ConsecutiveAgentMessages int       `json:"consecutiveAgentMessages"`
	InterpretiveMessages     int       `json:"interpretiveMessages"`
	PreviousMode             Mode      `json:"previousMode,omitempty"`
	LastAutoMessageAt        time.Time `json:"lastAutoMessageAt,omitempty"`
}

// NewState returns the counters of a fresh session.
func NewState() State { return State{} }

// RecordAutoInitiation counts an autonomous conversation start.
func (s State) RecordAutoInitiation(now time.Time) State {
	s.AutoInitiations++
	s.LastAutoMessageAt = now
	return s
}

// RecordAgentMessage counts one assistant turn. The interpretive counter
// advances together with the streak counter so the one-answer ceiling
// holds.
func (s State) RecordAgentMessage() State {
	s.ConsecutiveAgentMessages++
	s.InterpretiveMessages++
	return s
}

// RecordUserMessage breaks the assistant streak. A user turn always
// resets the consecutive count, whatever it was.
func (s State) RecordUserMessage() State {
	s.ConsecutiveAgentMessages = 0
	return s
}

// EnterInterpretive stores the mode to return to and arms the one-answer
// ceiling.
func (s State) EnterInterpretive(previous Mode) State {
	s.PreviousMode = previous
	s.InterpretiveMessages = 0
	return s
}

// ExitInterpretive clears the excursion. Calling it when no excursion is
// active is a harmless no-op.
func (s State) ExitInterpretive() State {
	s.PreviousMode = ""
	s.InterpretiveMessages = 0
	return s
}

// CanAutoInitiate reports whether the assistant may still open a
// conversation on its own this session.
func (s State) CanAutoInitiate() bool {
	return s.AutoInitiations < MaxAutoInitiations
}

// CanSendAgentMessage reports whether another assistant turn is allowed
// before the user replies.
func (s State) CanSendAgentMessage() bool {
	return s.ConsecutiveAgentMessages < MaxConsecutiveAgentMessages
}

// ShouldExitInterpretive reports whether the interpretive excursion has
// used up its single answer.
func (s State) ShouldExitInterpretive() bool {
	return s.InterpretiveMessages >= MaxInterpretiveMessages
}

// ReturnMode is where an interpretive excursion lands when it exits.
func (s State) ReturnMode() Mode {
	if s.PreviousMode != "" {
		return s.PreviousMode
	}
	return ModeSilentSteward
}

// BlockedError reports a governance guard or cadence fence refusing an
// action.
type BlockedError struct {
	Guard  string
	Reason string
}

func (e *BlockedError) Error() string {
	return fmt.Sprintf("governance blocked by %s: %s", e.Guard, e.Reason)
}

// Code returns the stable error code for API responses.
func (e *BlockedError) Code() string {
	return "GOVERNANCE_BLOCKED"
}
