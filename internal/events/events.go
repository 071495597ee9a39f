// Package events keeps an append-only log of advisory decisions so the
// dashboard can show why the engine changed its mind.
package events

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog/log"
)

// Type classifies an advisory event.
type Type string

const (
	TypePrimaryChanged Type = "primary_changed"
	TypeModeChanged    Type = "mode_changed"
	TypeAutoOpen       Type = "auto_open"
	TypeAcknowledged   Type = "acknowledged"
	TypeSessionStarted Type = "session_started"
)

// Event is a single advisory decision worth remembering.
type Event struct {
	ID         string    `json:"id"`
	Timestamp  time.Time `json:"timestamp"`
	Type       Type      `json:"type"`
	SystemKey  string    `json:"system_key,omitempty"`
	Mode       string    `json:"mode,omitempty"`
	TriggerKey string    `json:"trigger_key,omitempty"`
	Detail     string    `json:"detail,omitempty"`
}

// Log stores events in a JSONL file with an in-memory cache of the most
// recent entries.
type Log struct {
	mu       sync.RWMutex
	logPath  string
	cache    []Event
	maxCache int
}

// NewLog opens (or creates) the event log under dataDir.
func NewLog(dataDir string) (*Log, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	l := &Log{
		logPath:  filepath.Join(dataDir, "advisory-events.jsonl"),
		cache:    make([]Event, 0, 200),
		maxCache: 200,
	}
	if err := l.loadCache(); err != nil {
		log.Warn().Err(err).Msg("Failed to load advisory event cache")
	}
	return l, nil
}

// Append records an event, assigning an ID and timestamp when absent.
// Persistence is best-effort: a write fault is logged and the event
// still lands in the cache.
func (l *Log) Append(event Event) Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	if event.ID == "" {
		event.ID = ulid.Make().String()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	if err := l.appendToFile(event); err != nil {
		log.Warn().Err(err).Str("type", string(event.Type)).Msg("Failed to persist advisory event")
	}

	l.cache = append(l.cache, event)
	if len(l.cache) > l.maxCache {
		l.cache = l.cache[len(l.cache)-l.maxCache:]
	}
	return event
}

// Recent returns up to limit events, newest first. limit <= 0 returns
// everything cached.
func (l *Log) Recent(limit int) []Event {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.cache) {
		limit = len(l.cache)
	}
	result := make([]Event, 0, limit)
	for i := len(l.cache) - 1; i >= 0 && len(result) < limit; i-- {
		result = append(result, l.cache[i])
	}
	return result
}

func (l *Log) loadCache() error {
	file, err := os.Open(l.logPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	entries := make([]Event, 0)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			log.Warn().Err(err).Str("line", line).Msg("Failed to parse advisory event")
			continue
		}
		entries = append(entries, event)
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if len(entries) > l.maxCache {
		entries = entries[len(entries)-l.maxCache:]
	}
	l.cache = entries
	return nil
}

func (l *Log) appendToFile(event Event) error {
	file, err := os.OpenFile(l.logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer file.Close()

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := file.Write(append(data, '\n')); err != nil {
		return err
	}
	return file.Sync()
}
