package simulate

import "os"

// ShowHelp prints usage information for the simulation tool.
func ShowHelp() {
	_, _ = os.Stdout.WriteString(`riftbalance simulator
=====================

Registers a synthetic roster against a running riftbalance server, submits a
generated game log, then requests balances in basic, lane and rank mode and
verifies every response.

Usage:
  go run ./cmd/simulate [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -players int
        Roster size, at least 10 (default 40)
  -games int
        Number of games to generate and submit (default 500)
  -balances int
        Balance requests per mode (default 20)
  -workers int
        Number of concurrent submitters (default CPU cores * 2)
  -seed int
        Seed for the generated data (default: current time)
  -timeout duration
        HTTP request timeout (default 30s)
  -wait duration
        How long to wait for games to be recorded (default 1m)
  -verbose
        Log every balance result
  -help
        Show this help message

Examples:
  go run ./cmd/simulate -players 100 -games 5000 -workers 16
  go run ./cmd/simulate -seed 42 -verbose
`)
}
