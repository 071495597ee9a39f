package chat

import (
	"errors"
	"testing"
	"time"

	"github.com/hearthline/hearth/internal/storage"
)

// faultyStore fails every operation, standing in for a broken backend.
type faultyStore struct{}

func (faultyStore) Get(string) (string, bool, error) { return "", false, errors.New("backend down") }
func (faultyStore) Set(string, string) error         { return errors.New("backend down") }
func (faultyStore) Delete(string) error              { return errors.New("backend down") }
func (faultyStore) Close() error                     { return nil }

type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2025, time.May, 1, 10, 0, 0, 0, time.UTC)}
}

func (c *testClock) now() time.Time { return c.current }

func (c *testClock) advance(d time.Duration) { c.current = c.current.Add(d) }

func TestGate_FreshStoreAllows(t *testing.T) {
	gate := NewGate(storage.NewMemoryStore(), nil)
	ok, reason := gate.CanAutoOpen("s1", "planning:roof")
	if !ok || reason != "" {
		t.Fatalf("fresh gate should allow, got ok=%v reason=%q", ok, reason)
	}
}

func TestGate_TriggerCooldown(t *testing.T) {
	clock := newTestClock()
	gate := NewGateAt(storage.NewMemoryStore(), nil, clock.now)

	gate.RecordAutoOpen("s1", "planning:roof")

	if ok, reason := gate.CanAutoOpen("s2", "planning:roof"); ok || reason != BlockReasonCooldown {
		t.Fatalf("same trigger within 24h should block with cooldown, got ok=%v reason=%q", ok, reason)
	}
	if ok, _ := gate.CanAutoOpen("s2", "deviation:hvac"); !ok {
		t.Fatal("a different trigger key should not share the cooldown")
	}

	clock.advance(23 * time.Hour)
	if ok, _ := gate.CanAutoOpen("s2", "planning:roof"); ok {
		t.Fatal("cooldown should still hold at 23h")
	}

	clock.advance(2 * time.Hour)
	if ok, reason := gate.CanAutoOpen("s2", "planning:roof"); !ok {
		t.Fatalf("cooldown should expire after 24h, got reason=%q", reason)
	}
}

func TestGate_SessionAutoOpenCap(t *testing.T) {
	clock := newTestClock()
	gate := NewGateAt(storage.NewMemoryStore(), nil, clock.now)

	gate.RecordAutoOpen("s1", "planning:roof")
	gate.RecordAutoOpen("s1", "deviation:hvac")

	if ok, reason := gate.CanAutoOpen("s1", "planning:water_heater"); ok || reason != BlockReasonSessionCap {
		t.Fatalf("third auto-open in a session should block with session_cap, got ok=%v reason=%q", ok, reason)
	}
	// The cap is per session; a new session only inherits the cooldowns.
	if ok, _ := gate.CanAutoOpen("s2", "planning:water_heater"); !ok {
		t.Fatal("a fresh session should be allowed its own auto-opens")
	}
}

func TestGate_MutedPatterns(t *testing.T) {
	gate := NewGate(storage.NewMemoryStore(), []string{"planning:hvac_*"})

	if ok, reason := gate.CanAutoOpen("s1", "planning:hvac_carrier"); ok || reason != BlockReasonMuted {
		t.Fatalf("muted pattern should block, got ok=%v reason=%q", ok, reason)
	}
	if ok, _ := gate.CanAutoOpen("s1", "planning:roof"); !ok {
		t.Fatal("non-matching trigger should pass the mute filter")
	}
}

func TestGate_FailsOpenOnStorageFault(t *testing.T) {
	gate := NewGate(faultyStore{}, nil)

	ok, reason := gate.CanAutoOpen("s1", "planning:roof")
	if !ok {
		t.Fatalf("a broken store must fail open, got reason=%q", reason)
	}
	// Recording against a broken store must not panic or error out.
	gate.RecordAutoOpen("s1", "planning:roof")
}

func TestGate_FailsOpenOnCorruptHistory(t *testing.T) {
	store := storage.NewMemoryStore()
	if err := store.Set(triggerHistoryKey, "{not json"); err != nil {
		t.Fatal(err)
	}
	gate := NewGate(store, nil)
	if ok, _ := gate.CanAutoOpen("s1", "planning:roof"); !ok {
		t.Fatal("corrupt history must degrade to empty, not block")
	}
}

func TestGate_RecordPrunesExpiredEntries(t *testing.T) {
	clock := newTestClock()
	store := storage.NewMemoryStore()
	gate := NewGateAt(store, nil, clock.now)

	gate.RecordAutoOpen("s1", "planning:roof")
	clock.advance(25 * time.Hour)
	gate.RecordAutoOpen("s2", "deviation:hvac")

	// The roof entry aged out, so only the hvac entry survives.
	if got := len(gate.history()); got != 1 {
		t.Fatalf("history length = %d, want 1 after pruning", got)
	}
	if ok, _ := gate.CanAutoOpen("s3", "planning:roof"); !ok {
		t.Fatal("expired trigger should be allowed again")
	}
}
