// Package config defines service configuration and its loading from
// defaults, an optional YAML file, a dotenv file and the environment.
package config

import (
	"fmt"
	"runtime"
	"strings"
)

// Storage drivers.
const (
	StorageMemory = "memory"
	StorageSQLite = "sqlite"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
	// LogFormat selects text or json records.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory game ingestion queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ingestion workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many game ids are remembered for duplicate detection.
	DedupeSize int `koanf:"dedupe_size"`

	// MaxLeaderboardLimit caps GET /leaderboard?limit.
	MaxLeaderboardLimit int `koanf:"max_leaderboard_limit"`

	StorageDriver string `koanf:"storage_driver"`
	SQLitePath    string `koanf:"sqlite_path"`

	// BalanceTrials is the number of random-restart trials per seed pass.
	BalanceTrials int `koanf:"balance_trials"`
	// BalanceMaxIterations caps local-search swaps.
	BalanceMaxIterations int `koanf:"balance_max_iterations"`
	// BalanceSeed fixes the random source when non-zero.
	BalanceSeed int64 `koanf:"balance_seed"`

	RiotAPIKey            string  `koanf:"riot_api_key"`
	RiotPlatformURL       string  `koanf:"riot_platform_url"`
	RiotRegionalURL       string  `koanf:"riot_regional_url"`
	RiotRequestsPerSecond float64 `koanf:"riot_requests_per_second"`
	RiotTimeoutMS         int     `koanf:"riot_timeout_ms"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:              "info",
		LogFormat:             "text",
		Addr:                  ":9080",
		QueueSize:             10_000,
		WorkerCount:           runtime.NumCPU(),
		DedupeSize:            50_000,
		MaxLeaderboardLimit:   100,
		StorageDriver:         StorageMemory,
		SQLitePath:            "data/riftbalance.db",
		BalanceTrials:         50,
		BalanceMaxIterations:  100,
		RiotPlatformURL:       "https://jp1.api.riotgames.com",
		RiotRegionalURL:       "https://asia.api.riotgames.com",
		RiotRequestsPerSecond: 20,
		RiotTimeoutMS:         5000,
	}
}

// Validate reports the first invalid setting wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case strings.TrimSpace(c.Addr) == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.LogFormat != "text" && c.LogFormat != "json":
		return fmt.Errorf("%w: log_format must be text or json", ErrInvalidConfig)
	case c.QueueSize < 1:
		return fmt.Errorf("%w: queue_size must be positive", ErrInvalidConfig)
	case c.WorkerCount < 1:
		return fmt.Errorf("%w: worker_count must be positive", ErrInvalidConfig)
	case c.DedupeSize < 0:
		return fmt.Errorf("%w: dedupe_size must not be negative", ErrInvalidConfig)
	case c.MaxLeaderboardLimit < 1:
		return fmt.Errorf("%w: max_leaderboard_limit must be positive", ErrInvalidConfig)
	case c.BalanceTrials < 1:
		return fmt.Errorf("%w: balance_trials must be positive", ErrInvalidConfig)
	case c.BalanceMaxIterations < 0:
		return fmt.Errorf("%w: balance_max_iterations must not be negative", ErrInvalidConfig)
	case c.RiotRequestsPerSecond <= 0:
		return fmt.Errorf("%w: riot_requests_per_second must be positive", ErrInvalidConfig)
	case c.RiotTimeoutMS < 1:
		return fmt.Errorf("%w: riot_timeout_ms must be positive", ErrInvalidConfig)
	}
	switch c.StorageDriver {
	case StorageMemory:
	case StorageSQLite:
		if strings.TrimSpace(c.SQLitePath) == "" {
			return fmt.Errorf("%w: sqlite_path must be set for the sqlite driver", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown storage_driver %q", ErrInvalidConfig, c.StorageDriver)
	}
	return nil
}
