package chat

import (
	"encoding/json"
	"time"

	"github.com/hearthline/hearth/internal/storage"
)

// Acknowledgment marks that the user has seen a system's planning-window
// advisory. Persisted beyond the session, one entry per system key.
type Acknowledgment struct {
	SystemKey       string    `json:"system_key"`
	AcknowledgedAt  time.Time `json:"acknowledged_at"`
	WindowEnteredAt time.Time `json:"window_entered_at"`
}

// AckStore reads and writes planning acknowledgments. Reads fail open to
// an empty list like the rest of the cadence state.
type AckStore struct {
	store  storage.Store
	policy storagePolicy
	now    func() time.Time
}

func NewAckStore(store storage.Store) *AckStore {
	return NewAckStoreAt(store, time.Now)
}

func NewAckStoreAt(store storage.Store, now func() time.Time) *AckStore {
	return &AckStore{store: store, now: now}
}

// Acknowledge upserts the entry for a system: replace if one exists,
// append otherwise, with both timestamps set to now.
func (a *AckStore) Acknowledge(systemKey string) Acknowledgment {
	now := a.now()
	entry := Acknowledgment{SystemKey: systemKey, AcknowledgedAt: now, WindowEnteredAt: now}

	entries := a.list()
	replaced := false
	for i := range entries {
		if entries[i].SystemKey == systemKey {
			entries[i] = entry
			replaced = true
			break
		}
	}
	if !replaced {
		entries = append(entries, entry)
	}
	a.save(entries)
	return entry
}

// IsAcknowledged reports whether any entry exists for the system.
func (a *AckStore) IsAcknowledged(systemKey string) bool {
	for _, entry := range a.list() {
		if entry.SystemKey == systemKey {
			return true
		}
	}
	return false
}

// Clear removes the entry for one system, if present.
func (a *AckStore) Clear(systemKey string) {
	entries := a.list()
	kept := entries[:0]
	for _, entry := range entries {
		if entry.SystemKey != systemKey {
			kept = append(kept, entry)
		}
	}
	a.save(kept)
}

// ClearAll removes every acknowledgment.
func (a *AckStore) ClearAll() {
	if err := a.store.Delete(planningAcksKey); err != nil {
		a.policy.onWriteFault(planningAcksKey, err)
	}
}

// All returns the stored acknowledgments for the API layer.
func (a *AckStore) All() []Acknowledgment {
	return a.list()
}

func (a *AckStore) list() []Acknowledgment {
	raw, ok, err := a.store.Get(planningAcksKey)
	if err != nil {
		a.policy.onReadFault(planningAcksKey, err)
		return nil
	}
	if !ok {
		return nil
	}
	var entries []Acknowledgment
	if err := json.Unmarshal([]byte(raw), &entries); err != nil {
		a.policy.onDecodeFault(planningAcksKey, err)
		return nil
	}
	return entries
}

func (a *AckStore) save(entries []Acknowledgment) {
	data, err := json.Marshal(entries)
	if err != nil {
		return
	}
	if err := a.store.Set(planningAcksKey, string(data)); err != nil {
		a.policy.onWriteFault(planningAcksKey, err)
	}
}
