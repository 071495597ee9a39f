// Package inventory supplies the home's system records. The remote
// property database stays out of scope; the file provider reads a local
// systems.json kept current by the enrichment pipeline.
package inventory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"

	"github.com/hearthline/hearth/internal/models"
)

// Provider returns the current system records for the home.
type Provider interface {
	Systems() ([]models.SystemRecord, error)
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc func() ([]models.SystemRecord, error)

func (f ProviderFunc) Systems() ([]models.SystemRecord, error) { return f() }

// FileProvider reads records from a JSON array file and reloads when it
// changes on disk.
type FileProvider struct {
	mu       sync.RWMutex
	path     string
	records  []models.SystemRecord
	onChange func()
	watcher  *fsnotify.Watcher
	stopChan chan struct{}
}

// NewFileProvider loads the initial records from path. A missing file is
// an empty inventory, not an error.
func NewFileProvider(path string) (*FileProvider, error) {
	p := &FileProvider{path: path, stopChan: make(chan struct{})}
	if err := p.reload(); err != nil {
		return nil, err
	}
	return p, nil
}

// Systems returns a copy of the current records.
func (p *FileProvider) Systems() ([]models.SystemRecord, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	records := make([]models.SystemRecord, len(p.records))
	copy(records, p.records)
	return records, nil
}

// OnChange registers a callback fired after each successful reload.
func (p *FileProvider) OnChange(fn func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onChange = fn
}

// Watch starts watching the inventory file. Call Stop to end it.
func (p *FileProvider) Watch() error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	p.watcher = watcher

	// Watch the directory: editors and atomic writers replace the file.
	dir := filepath.Dir(p.path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return fmt.Errorf("failed to watch inventory directory: %w", err)
	}

	go p.watchForChanges()
	log.Info().Str("path", p.path).Msg("Watching inventory file for changes")
	return nil
}

// Stop ends the watcher.
func (p *FileProvider) Stop() {
	select {
	case <-p.stopChan:
	default:
		close(p.stopChan)
	}
	if p.watcher != nil {
		p.watcher.Close()
	}
}

func (p *FileProvider) watchForChanges() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filepath.Base(p.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce - wait for the write to complete
			time.Sleep(100 * time.Millisecond)
			if err := p.reload(); err != nil {
				log.Warn().Err(err).Msg("Inventory reload failed, keeping previous records")
			}
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Inventory watcher error")
		case <-p.stopChan:
			return
		}
	}
}

// reload reads the file and swaps the record set. Malformed entries are
// skipped with a warning; they must never take the inventory down.
func (p *FileProvider) reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if os.IsNotExist(err) {
			p.mu.Lock()
			p.records = nil
			p.mu.Unlock()
			return nil
		}
		return fmt.Errorf("failed to read inventory file: %w", err)
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse inventory file: %w", err)
	}

	records := make([]models.SystemRecord, 0, len(raw))
	for i, blob := range raw {
		var rec models.SystemRecord
		if err := json.Unmarshal(blob, &rec); err != nil {
			log.Warn().Err(err).Int("index", i).Msg("Skipping malformed system record")
			continue
		}
		if rec.SystemKey == "" {
			log.Warn().Int("index", i).Msg("Skipping system record without a key")
			continue
		}
		records = append(records, rec)
	}

	p.mu.Lock()
	p.records = records
	onChange := p.onChange
	p.mu.Unlock()

	log.Debug().Int("count", len(records)).Str("path", p.path).Msg("Inventory loaded")
	if onChange != nil {
		onChange()
	}
	return nil
}
