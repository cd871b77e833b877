package simulate

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/okian/riftbalance/internal/domain/balance"
	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/pkg/logger"
)

const percentageMultiplier = 100

// Validate checks that cfg describes a runnable simulation.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("%w: base url is required", ErrInvalidConfig)
	case c.Players < balance.PlayerCount:
		return fmt.Errorf("%w: need at least %d players, got %d", ErrInvalidConfig, balance.PlayerCount, c.Players)
	case c.Games < 0 || c.Balances < 0:
		return fmt.Errorf("%w: games and balances must not be negative", ErrInvalidConfig)
	case c.Workers < 1:
		return fmt.Errorf("%w: workers must be positive", ErrInvalidConfig)
	}
	return nil
}

// Run registers a synthetic roster, submits a game log, waits for it to be
// recorded and then verifies balance results in every mode.
func Run(ctx context.Context, cfg *Config) (*Stats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.ProcessWait <= 0 {
		cfg.ProcessWait = time.Minute
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = 250 * time.Millisecond
	}

	log := logger.Get().Named("simulate")
	stats := &Stats{StartTime: time.Now()}

	log.Info(ctx, "starting riftbalance simulation",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("players", cfg.Players),
		logger.Int("games", cfg.Games),
		logger.Int("balances", cfg.Balances),
		logger.Int("workers", cfg.Workers),
		logger.Duration("timeout", cfg.Timeout),
		logger.Any("seed", cfg.Seed))

	client := newHTTPClient(cfg.BaseURL, cfg.Timeout)

	// Step 1: Check service health
	if _, err := client.do(ctx, http.MethodGet, "/healthz", nil, nil); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Register the roster
	gen := newGenerator(cfg.Seed)
	roster := gen.roster(cfg.Players)
	if err := createPlayers(ctx, client, roster, stats); err != nil {
		return stats, err
	}

	// Step 3: Generate and submit games concurrently
	start := time.Now().UTC().Add(-time.Duration(cfg.Games) * gameSpacing)
	games := make([]model.Game, cfg.Games)
	for i := range games {
		games[i] = gen.game(i, roster, start)
	}
	stats.GamesGenerated = len(games)
	submitGames(ctx, client, cfg, games, stats)

	// Step 4: Wait for processing
	if err := waitForRecording(ctx, client, cfg, stats.GamesAccepted); err != nil {
		return stats, err
	}

	// Step 5: Balance and verify in every mode
	for _, mode := range []balance.Mode{balance.ModeBasic, balance.ModeLanes, balance.ModeRank} {
		for i := 0; i < cfg.Balances; i++ {
			picked := gen.pick(roster)
			stats.BalancesRequested++
			res, err := requestBalance(ctx, client, mode, picked)
			if err != nil {
				return stats, fmt.Errorf("balance %s: %w", mode, err)
			}
			if err := verifyResult(mode, picked, res); err != nil {
				return stats, err
			}
			stats.BalancesVerified++
			if cfg.Verbose {
				log.Info(ctx, "balance verified",
					logger.String("mode", string(mode)),
					logger.String("strategy", res.Strategy),
					logger.Float64("difference", res.Metrics.Difference),
					logger.Float64("quality", res.Metrics.BalanceQuality),
					logger.Int("swaps", res.Swaps))
			}
		}
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	return stats, nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var acceptRate, gamesPerSecond float64
	if stats.GamesSubmitted > 0 {
		acceptRate = float64(stats.GamesAccepted) / float64(stats.GamesSubmitted) * percentageMultiplier
	}
	if stats.Duration > 0 {
		gamesPerSecond = float64(stats.GamesSubmitted) / stats.Duration.Seconds()
	}

	logger.Get().Info(ctx, "final statistics",
		logger.Int("playersCreated", stats.PlayersCreated),
		logger.Int("gamesGenerated", stats.GamesGenerated),
		logger.Int("gamesSubmitted", stats.GamesSubmitted),
		logger.Int("gamesAccepted", stats.GamesAccepted),
		logger.Int("gamesDuplicate", stats.GamesDuplicate),
		logger.Int("gamesFailed", stats.GamesFailed),
		logger.Int("balancesRequested", stats.BalancesRequested),
		logger.Int("balancesVerified", stats.BalancesVerified),
		logger.Duration("duration", stats.Duration),
		logger.Float64("acceptRate", acceptRate),
		logger.Float64("gamesPerSecond", gamesPerSecond))
}
