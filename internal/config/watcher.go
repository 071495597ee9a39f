package config

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

// Watcher monitors the .env file and rebuilds the config when it changes.
type Watcher struct {
	configDir   string
	envPath     string
	watcher     *fsnotify.Watcher
	stopChan    chan struct{}
	mu          sync.Mutex
	lastModTime time.Time
	onReload    func(*Config)
}

// NewWatcher creates a watcher for configDir/.env. onReload receives the
// freshly built config after each successful reload.
func NewWatcher(configDir string, onReload func(*Config)) (*Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		configDir: configDir,
		envPath:   filepath.Join(configDir, ".env"),
		watcher:   watcher,
		stopChan:  make(chan struct{}),
		onReload:  onReload,
	}

	if stat, err := os.Stat(w.envPath); err == nil {
		w.lastModTime = stat.ModTime()
	}
	return w, nil
}

// Start begins watching the config directory, falling back to polling if
// the directory cannot be watched.
func (w *Watcher) Start() error {
	if err := w.watcher.Add(w.configDir); err != nil {
		log.Warn().Err(err).Str("dir", w.configDir).Msg("Failed to watch config directory, falling back to polling")
		go w.pollForChanges()
		return nil
	}

	go w.watchForChanges()
	log.Info().Str("file", w.envPath).Msg("Watching config file for changes")
	return nil
}

// Stop ends the watcher.
func (w *Watcher) Stop() {
	select {
	case <-w.stopChan:
		return
	default:
		close(w.stopChan)
	}
	w.watcher.Close()
}

// ReloadNow triggers a reload outside the file-change path, e.g. on SIGHUP.
func (w *Watcher) ReloadNow() {
	w.reload()
}

func (w *Watcher) watchForChanges() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != ".env" {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce - wait for the write to complete
			time.Sleep(100 * time.Millisecond)
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Error().Err(err).Msg("Config watcher error")
		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) pollForChanges() {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			stat, err := os.Stat(w.envPath)
			if err != nil {
				continue
			}
			w.mu.Lock()
			changed := stat.ModTime().After(w.lastModTime)
			w.mu.Unlock()
			if changed {
				w.reload()
			}
		case <-w.stopChan:
			return
		}
	}
}

func (w *Watcher) reload() {
	cfg, err := Reload(w.configDir)
	if err != nil {
		log.Warn().Err(err).Msg("Config reload failed, keeping previous configuration")
		return
	}

	w.mu.Lock()
	if stat, err := os.Stat(w.envPath); err == nil {
		w.lastModTime = stat.ModTime()
	}
	onReload := w.onReload
	w.mu.Unlock()

	log.Info().Msg("Configuration reloaded")
	if onReload != nil {
		onReload(cfg)
	}
}
