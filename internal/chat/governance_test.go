package chat

import (
	"testing"
	"time"
)

func TestGovernance_FreshState(t *testing.T) {
	state := NewState()
	if !state.CanAutoInitiate() {
		t.Error("fresh session should allow one auto-initiation")
	}
	if !state.CanSendAgentMessage() {
		t.Error("fresh session should allow agent messages")
	}
	if state.ShouldExitInterpretive() {
		t.Error("fresh session has no interpretive answer to spend")
	}
}

func TestGovernance_AutoInitiationIsOncePerSession(t *testing.T) {
	state := NewState()
	now := time.Date(2025, time.March, 3, 8, 0, 0, 0, time.UTC)

	state = state.RecordAutoInitiation(now)
	if state.CanAutoInitiate() {
		t.Error("auto-initiation must be spent after one use")
	}
	if state.AutoInitiations != 1 {
		t.Errorf("AutoInitiations = %d, want 1", state.AutoInitiations)
	}
	if !state.LastAutoMessageAt.Equal(now) {
		t.Errorf("LastAutoMessageAt = %v, want %v", state.LastAutoMessageAt, now)
	}
}

func TestGovernance_ConsecutiveAgentMessageCap(t *testing.T) {
	state := NewState()
	for i := 0; i < 3; i++ {
		if !state.CanSendAgentMessage() {
			t.Fatalf("message %d should be allowed", i+1)
		}
		state = state.RecordAgentMessage()
	}
	if state.CanSendAgentMessage() {
		t.Error("fourth consecutive agent message must be blocked")
	}

	state = state.RecordUserMessage()
	if state.ConsecutiveAgentMessages != 0 {
		t.Errorf("ConsecutiveAgentMessages = %d after user turn, want 0", state.ConsecutiveAgentMessages)
	}
	if !state.CanSendAgentMessage() {
		t.Error("a user turn must reopen the agent message window")
	}
}

func TestGovernance_UserMessageAlwaysResetsStreak(t *testing.T) {
	state := NewState()
	for i := 0; i < 7; i++ {
		state = state.RecordAgentMessage()
	}
	state = state.RecordUserMessage()
	if state.ConsecutiveAgentMessages != 0 {
		t.Errorf("ConsecutiveAgentMessages = %d, want 0 regardless of prior value", state.ConsecutiveAgentMessages)
	}
}

func TestGovernance_InterpretiveOneAnswerCeiling(t *testing.T) {
	state := NewState().EnterInterpretive(ModePlanningWindowAdvisory)
	if state.ShouldExitInterpretive() {
		t.Error("entering interpretive must arm a fresh counter")
	}

	state = state.RecordAgentMessage()
	if !state.ShouldExitInterpretive() {
		t.Error("one answer after entry must force the exit")
	}
	if state.ReturnMode() != ModePlanningWindowAdvisory {
		t.Errorf("ReturnMode = %q, want the stored previous mode", state.ReturnMode())
	}

	state = state.ExitInterpretive()
	if state.PreviousMode != "" {
		t.Errorf("PreviousMode = %q after exit, want empty", state.PreviousMode)
	}
	if state.InterpretiveMessages != 0 {
		t.Errorf("InterpretiveMessages = %d after exit, want 0", state.InterpretiveMessages)
	}
}

func TestGovernance_ExitWithoutEntryIsNoOp(t *testing.T) {
	state := NewState().ExitInterpretive()
	if state != NewState() {
		t.Errorf("exit on a fresh state should change nothing, got %+v", state)
	}
}

func TestGovernance_ReturnModeDefaultsToSilentSteward(t *testing.T) {
	if got := NewState().ReturnMode(); got != ModeSilentSteward {
		t.Errorf("ReturnMode with no previous mode = %q, want silent_steward", got)
	}
}

func TestGovernance_TransitionsDoNotMutateReceiver(t *testing.T) {
	original := NewState()
	original.RecordAgentMessage()
	original.RecordAutoInitiation(time.Now())
	original.EnterInterpretive(ModeElevatedAttention)
	if original != NewState() {
		t.Errorf("transitions must return new values, receiver changed to %+v", original)
	}
}

func TestGovernance_AgentMessageFeedsBothCounters(t *testing.T) {
	state := NewState().RecordAgentMessage()
	if state.ConsecutiveAgentMessages != 1 || state.InterpretiveMessages != 1 {
		t.Errorf("both counters should advance together, got %+v", state)
	}
}
