// Package config loads the ticket-system configuration surface from the
// environment, generalizing the teacher services' os.Getenv-based
// LoadConfig into a single viper-backed loader shared by both binaries.
package config

import (
	"fmt"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/viper"
)

// DeploymentMode is the tagged value from spec.md §3: read once at startup,
// immutable thereafter, determines the Vacancy Client variant.
type DeploymentMode string

const (
	ModeCoLocated DeploymentMode = "co-located"
	ModeSplit     DeploymentMode = "split"
)

// Config is the full recognized configuration surface (spec.md §6) plus the
// ambient knobs SPEC_FULL.md §6 adds.
type Config struct {
	DeploymentMode DeploymentMode

	InitialStock int
	CacheTTL     time.Duration

	VacancyURL     string
	VacancyTimeout time.Duration

	HTTPMaxConnections         int
	HTTPKeepaliveConnections   int

	PurchasePort  string
	InventoryPort string
	CombinedPort  string

	CircuitMaxFailures    int
	CircuitTimeoutSeconds time.Duration

	LogLevel     string
	OTLPEndpoint string
	ServiceName  string

	EngineReplicas       int
	ExternalCoordinator  string
}

// Load reads the configuration surface from the environment (and an
// optional .env file, auto-loaded by godotenv), applying the defaults
// spec.md §5 and §6 specify.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("")
	v.AutomaticEnv()

	v.SetDefault("DEPLOYMENT_MODE", string(ModeCoLocated))
	v.SetDefault("INITIAL_STOCK", 100)
	v.SetDefault("CACHE_TTL_MS", 1000)
	v.SetDefault("VACANCY_URL", "http://localhost:5002")
	v.SetDefault("VACANCY_TIMEOUT_MS", 2000)
	v.SetDefault("HTTP_MAX_CONNECTIONS", 100)
	v.SetDefault("HTTP_KEEPALIVE_CONNECTIONS", 20)
	v.SetDefault("PURCHASE_PORT", "5001")
	v.SetDefault("INVENTORY_PORT", "5002")
	v.SetDefault("COMBINED_PORT", "5000")
	v.SetDefault("CIRCUIT_MAX_FAILURES", 5)
	v.SetDefault("CIRCUIT_TIMEOUT_SECONDS", 30)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	v.SetDefault("SERVICE_NAME", "")
	v.SetDefault("ENGINE_REPLICAS", 1)
	v.SetDefault("EXTERNAL_COORDINATOR", "")

	mode := DeploymentMode(v.GetString("DEPLOYMENT_MODE"))
	if mode != ModeCoLocated && mode != ModeSplit {
		return nil, fmt.Errorf("config: deployment_mode must be %q or %q, got %q", ModeCoLocated, ModeSplit, mode)
	}

	cfg := &Config{
		DeploymentMode:           mode,
		InitialStock:             v.GetInt("INITIAL_STOCK"),
		CacheTTL:                 time.Duration(v.GetInt("CACHE_TTL_MS")) * time.Millisecond,
		VacancyURL:               v.GetString("VACANCY_URL"),
		VacancyTimeout:           time.Duration(v.GetInt("VACANCY_TIMEOUT_MS")) * time.Millisecond,
		HTTPMaxConnections:       v.GetInt("HTTP_MAX_CONNECTIONS"),
		HTTPKeepaliveConnections: v.GetInt("HTTP_KEEPALIVE_CONNECTIONS"),
		PurchasePort:             v.GetString("PURCHASE_PORT"),
		InventoryPort:            v.GetString("INVENTORY_PORT"),
		CombinedPort:             v.GetString("COMBINED_PORT"),
		CircuitMaxFailures:       v.GetInt("CIRCUIT_MAX_FAILURES"),
		CircuitTimeoutSeconds:    time.Duration(v.GetInt("CIRCUIT_TIMEOUT_SECONDS")) * time.Second,
		LogLevel:                 v.GetString("LOG_LEVEL"),
		OTLPEndpoint:             v.GetString("OTEL_EXPORTER_OTLP_ENDPOINT"),
		ServiceName:              v.GetString("SERVICE_NAME"),
		EngineReplicas:           v.GetInt("ENGINE_REPLICAS"),
		ExternalCoordinator:      v.GetString("EXTERNAL_COORDINATOR"),
	}

	if cfg.InitialStock < 0 {
		return nil, fmt.Errorf("config: initial_stock must be >= 0, got %d", cfg.InitialStock)
	}

	return cfg, nil
}

// RequireSingleReplica implements the replica-count guard from SPEC_FULL.md:
// the Engine refuses to start as more than one replica without an external
// coordinator configured, since the core algorithm assumes a single
// in-process counter (spec.md §9, open question).
func (c *Config) RequireSingleReplica() error {
	if c.EngineReplicas > 1 && c.ExternalCoordinator == "" {
		return fmt.Errorf(
			"config: engine_replicas=%d with no external_coordinator configured; "+
				"each replica would own an independent counter and the service would oversell — "+
				"set external_coordinator or run a single replica",
			c.EngineReplicas,
		)
	}
	return nil
}
