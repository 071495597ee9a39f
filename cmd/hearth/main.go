package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/hearthline/hearth/internal/advisory"
	"github.com/hearthline/hearth/internal/api"
	"github.com/hearthline/hearth/internal/chat"
	"github.com/hearthline/hearth/internal/config"
	"github.com/hearthline/hearth/internal/events"
	"github.com/hearthline/hearth/internal/inventory"
	"github.com/hearthline/hearth/internal/logging"
	"github.com/hearthline/hearth/internal/storage"
	"github.com/hearthline/hearth/internal/websocket"
	"github.com/hearthline/hearth/pkg/report"
)

// Version information (set at build time with -ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "hearth",
	Short:   "Hearth - home systems advisory engine",
	Long:    `Hearth watches a home's major systems, scores what deserves attention next, and serves the advisory to the dashboard`,
	Version: Version,
	Run: func(cmd *cobra.Command, args []string) {
		runServer()
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("Hearth %s\n", Version)
		if BuildTime != "unknown" {
			fmt.Printf("Built: %s\n", BuildTime)
		}
		if GitCommit != "unknown" {
			fmt.Printf("Commit: %s\n", GitCommit)
		}
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runServer() {
	// Baseline logger for early startup logs
	logging.Init(logging.Config{
		Format:    "auto",
		Level:     "info",
		Component: "hearth",
	})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Re-initialize logging with configuration-driven settings
	logging.Init(logging.Config{
		Format:    cfg.LogFormat,
		Level:     cfg.LogLevel,
		Component: "hearth",
	})

	log.Info().Str("version", Version).Msg("Starting Hearth advisory server")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.MetricsPort > 0 {
		startMetricsServer(ctx, fmt.Sprintf("%s:%d", cfg.Host, cfg.MetricsPort))
	}

	store, err := storage.Open(cfg.StoreBackend, cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.StoreBackend).Msg("Failed to open store")
	}
	defer store.Close()

	eventLog, err := events.NewLog(cfg.DataDir)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open advisory event log")
	}

	var provider inventory.Provider
	var fileProvider *inventory.FileProvider
	if cfg.DemoMode {
		provider = inventory.NewDemoProvider(time.Now())
		log.Info().Msg("Demo mode enabled, serving a generated sample home")
	} else {
		fileProvider, err = inventory.NewFileProvider(cfg.InventoryPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.InventoryPath).Msg("Failed to load system inventory")
		}
		provider = fileProvider
	}

	// The hub and engine reference each other: the hub replays the latest
	// snapshot to new dashboard connections, the engine broadcasts fresh
	// ones. Both sides start serving only after wiring completes.
	var engine *advisory.Engine
	wsHub := websocket.NewHub(func() interface{} {
		if engine == nil {
			return nil
		}
		return engine.Snapshot()
	}, cfg.AllowedOrigins)

	engine = advisory.New(advisory.Options{
		Provider: provider,
		EventLog: eventLog,
		Hub:      wsHub,
		Zone:     cfg.ClimateZone,
		Interval: cfg.EvalInterval,
	})

	if fileProvider != nil {
		fileProvider.OnChange(engine.Kick)
		if err := fileProvider.Watch(); err != nil {
			log.Warn().Err(err).Msg("Inventory watch unavailable, file edits need a restart")
		}
		defer fileProvider.Stop()
	}

	gate := chat.NewGate(store, cfg.MutedTriggers)
	acks := chat.NewAckStore(store)
	sessions := chat.NewManager(gate, acks, engine.Mode)

	handler := api.NewRouter(api.Deps{
		Engine:    engine,
		Sessions:  sessions,
		EventLog:  eventLog,
		Hub:       wsHub,
		Reports:   report.NewGenerator(),
		Version:   Version,
		HomeLabel: cfg.HomeLabel,
	})

	// ReadHeaderTimeout instead of ReadTimeout: a read deadline on the
	// connection would outlive the WebSocket upgrade and kill idle
	// dashboard sockets.
	srv := &http.Server{
		Addr:              cfg.ListenAddr(),
		Handler:           handler,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	configWatcher, err := config.NewWatcher(cfg.ConfigDir, func(newCfg *config.Config) {
		logging.Init(logging.Config{
			Format:    newCfg.LogFormat,
			Level:     newCfg.LogLevel,
			Component: "hearth",
		})
		engine.SetZone(newCfg.ClimateZone)
		log.Info().Msg("Runtime configuration reloaded")
	})
	if err != nil {
		log.Warn().Err(err).Msg("Failed to create config watcher, .env changes need a restart")
	} else {
		if err := configWatcher.Start(); err != nil {
			log.Warn().Err(err).Msg("Failed to start config watcher")
		}
		defer configWatcher.Stop()
	}

	// SIGHUP forces a config reload without waiting for the watcher.
	reloadChan := make(chan os.Signal, 1)
	signal.Notify(reloadChan, syscall.SIGHUP)
	go func() {
		for range reloadChan {
			log.Info().Msg("Received SIGHUP, reloading configuration")
			if configWatcher != nil {
				configWatcher.ReloadNow()
			}
		}
	}()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return wsHub.Run(gctx) })
	g.Go(func() error { return engine.Run(gctx) })
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server shutdown error")
		}
		return nil
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}

	log.Info().Msg("Server stopped")
}
