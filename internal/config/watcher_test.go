package config

import (
	"testing"
	"time"
)

func TestWatcherReloadNow(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeEnvFile(t, dir, "HEARTH_HOME_LABEL=Alpha\n")

	reloaded := make(chan *Config, 1)
	w, err := NewWatcher(dir, func(cfg *Config) {
		select {
		case reloaded <- cfg:
		default:
		}
	})
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	w.ReloadNow()

	select {
	case cfg := <-reloaded:
		if cfg.HomeLabel != "Alpha" {
			t.Errorf("HomeLabel = %q, want Alpha", cfg.HomeLabel)
		}
	case <-time.After(time.Second):
		t.Fatal("reload callback never fired")
	}
}

func TestWatcherDetectsFileWrite(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	writeEnvFile(t, dir, "HEARTH_HOME_LABEL=Alpha\n")

	reloaded := make(chan *Config, 4)
	w, err := NewWatcher(dir, func(cfg *Config) { reloaded <- cfg })
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	defer w.Stop()

	if err := w.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}

	writeEnvFile(t, dir, "HEARTH_HOME_LABEL=Beta\n")

	deadline := time.After(3 * time.Second)
	for {
		select {
		case cfg := <-reloaded:
			if cfg.HomeLabel == "Beta" {
				return
			}
		case <-deadline:
			t.Fatal("watcher never picked up the .env change")
		}
	}
}

func TestWatcherStopIsIdempotent(t *testing.T) {
	w, err := NewWatcher(t.TempDir(), nil)
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	w.Stop()
	w.Stop()
}
