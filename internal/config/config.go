// Package config loads Hearth configuration from the environment and an
// optional .env file in the config directory.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/hearthline/hearth/internal/models"
)

const (
	defaultConfigDir = "/etc/hearth"
	defaultDataDir   = "/var/lib/hearth"
)

// Config holds all application configuration.
type Config struct {
	// Server settings
	Host        string
	Port        int
	MetricsPort int

	// Paths
	ConfigDir     string
	DataDir       string
	InventoryPath string

	// Logging
	LogLevel  string
	LogFormat string

	// Advisory settings
	ClimateZone  models.ClimateZone
	HomeLabel    string
	EvalInterval time.Duration

	// DemoMode serves a generated sample home instead of the inventory
	// file, so the dashboard can be explored before any data exists.
	DemoMode bool

	// Storage
	StoreBackend string

	// Chat governance
	MutedTriggers []string

	// Dashboard
	AllowedOrigins []string
}

// Load reads configuration, layering .env under any real environment.
func Load() (*Config, error) {
	configDir := defaultConfigDir
	if dir := os.Getenv("HEARTH_CONFIG_DIR"); dir != "" {
		configDir = dir
	}

	envFile := filepath.Join(configDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Load(envFile); err != nil {
			log.Warn().Err(err).Str("file", envFile).Msg("Failed to load .env file")
		} else {
			log.Info().Str("file", envFile).Msg("Loaded .env file")
		}
	}

	// Also try the current directory for development.
	if err := godotenv.Load(); err == nil {
		log.Info().Msg("Loaded configuration from .env in current directory")
	}

	cfg := defaults(configDir)
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Reload re-reads the .env file, letting the file win over values a
// previous load exported, then rebuilds the config.
func Reload(configDir string) (*Config, error) {
	envFile := filepath.Join(configDir, ".env")
	if _, err := os.Stat(envFile); err == nil {
		if err := godotenv.Overload(envFile); err != nil {
			log.Warn().Err(err).Str("file", envFile).Msg("Failed to reload .env file")
		}
	}

	cfg := defaults(configDir)
	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults(configDir string) *Config {
	return &Config{
		Host:          "0.0.0.0",
		Port:          7677,
		MetricsPort:   9101,
		ConfigDir:     configDir,
		DataDir:       defaultDataDir,
		InventoryPath: "",
		LogLevel:      "info",
		LogFormat:     "auto",
		ClimateZone:   models.ClimateTemperate,
		HomeLabel:     "My Home",
		EvalInterval:  time.Hour,
		StoreBackend:  "sqlite",
	}
}

func (c *Config) applyEnv() {
	envString("HEARTH_HOST", &c.Host)
	envInt("HEARTH_PORT", &c.Port)
	envInt("HEARTH_METRICS_PORT", &c.MetricsPort)
	envString("HEARTH_DATA_DIR", &c.DataDir)
	envString("HEARTH_INVENTORY_PATH", &c.InventoryPath)
	envString("HEARTH_LOG_LEVEL", &c.LogLevel)
	envString("HEARTH_LOG_FORMAT", &c.LogFormat)
	envString("HEARTH_HOME_LABEL", &c.HomeLabel)
	envString("HEARTH_STORE_BACKEND", &c.StoreBackend)
	envDuration("HEARTH_EVAL_INTERVAL", &c.EvalInterval)
	envBool("HEARTH_DEMO_MODE", &c.DemoMode)

	if zone := os.Getenv("HEARTH_CLIMATE_ZONE"); zone != "" {
		c.ClimateZone = models.ParseClimateZone(zone)
	}
	if muted := os.Getenv("HEARTH_MUTED_TRIGGERS"); muted != "" {
		c.MutedTriggers = splitList(muted)
	}
	if origins := os.Getenv("HEARTH_ALLOWED_ORIGINS"); origins != "" {
		c.AllowedOrigins = splitList(origins)
	}

	if c.InventoryPath == "" {
		c.InventoryPath = filepath.Join(c.DataDir, "systems.json")
	}
}

// Validate rejects configurations the server cannot start with.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.MetricsPort < 0 || c.MetricsPort > 65535 {
		return fmt.Errorf("invalid metrics port %d", c.MetricsPort)
	}
	if c.Port == c.MetricsPort {
		return fmt.Errorf("port and metrics port both set to %d", c.Port)
	}
	if c.EvalInterval <= 0 {
		return fmt.Errorf("evaluation interval must be positive, got %s", c.EvalInterval)
	}
	switch c.StoreBackend {
	case "sqlite", "file", "memory":
	default:
		return fmt.Errorf("unknown store backend %q", c.StoreBackend)
	}
	return nil
}

// ListenAddr returns the host:port the API server binds to.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-numeric env value")
		return
	}
	*dst = n
}

func envBool(key string, dst *bool) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring non-boolean env value")
		return
	}
	*dst = b
}

func envDuration(key string, dst *time.Duration) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Warn().Str("key", key).Str("value", v).Msg("Ignoring unparseable duration env value")
		return
	}
	*dst = d
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
