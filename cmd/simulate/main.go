package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/riftbalance/internal/simulate"
	"github.com/okian/riftbalance/pkg/logger"
)

// Default configuration constants.
const (
	defaultPlayers  = 40
	defaultGames    = 500
	defaultBalances = 20
	defaultWorkers  = 2 // multiplier for runtime.NumCPU()
	defaultTimeout  = 30 * time.Second
	defaultWait     = time.Minute
	defaultRunLimit = 10 * time.Minute
)

func main() {
	var (
		baseURL  = flag.String("url", "http://localhost:9080", "Base URL of the service")
		players  = flag.Int("players", defaultPlayers, "Roster size, at least 10")
		games    = flag.Int("games", defaultGames, "Number of games to generate and submit")
		balances = flag.Int("balances", defaultBalances, "Balance requests per mode")
		workers  = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		seed     = flag.Int64("seed", time.Now().UnixNano(), "Seed for the generated data")
		timeout  = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait     = flag.Duration("wait", defaultWait, "How long to wait for games to be recorded")
		verbose  = flag.Bool("verbose", false, "Log every balance result")
		help     = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		simulate.ShowHelp()
		return
	}

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultRunLimit)
	defer cancel()

	cfg := &simulate.Config{
		BaseURL:     *baseURL,
		Players:     *players,
		Games:       *games,
		Balances:    *balances,
		Workers:     *workers,
		Timeout:     *timeout,
		Seed:        *seed,
		ProcessWait: *wait,
		Verbose:     *verbose,
	}

	if _, err := simulate.Run(ctx, cfg); err != nil {
		logger.Get().Error(ctx, "simulation failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}
