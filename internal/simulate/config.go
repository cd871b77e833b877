package simulate

import (
	"time"

	"github.com/okian/riftbalance/internal/domain/model"
)

// Config holds configuration for a simulation run.
type Config struct {
	BaseURL      string        // Base URL of the service
	Players      int           // Roster size, at least ten
	Games        int           // Number of games to generate and submit
	Balances     int           // Balance requests per mode
	Workers      int           // Number of concurrent submitters
	Timeout      time.Duration // HTTP request timeout
	Seed         int64         // Seed for the synthetic roster and games
	ProcessWait  time.Duration // How long to wait for the workers to record games
	PollInterval time.Duration // Interval between /stats polls while waiting
	Verbose      bool          // Log every balance result
}

// Player is a generated roster entry. Skill is hidden from the service and
// decides game outcomes; Lanes orders the player's lanes best first.
type Player struct {
	ID    string
	Name  string
	Skill float64
	Lanes [5]model.Lane
}

// AckResponse represents the response from game submission.
type AckResponse struct {
	Status    string `json:"status"`
	GameID    string `json:"gameId"`
	Duplicate bool   `json:"duplicate"`
}

// Stats holds run statistics.
type Stats struct {
	PlayersCreated    int
	GamesGenerated    int
	GamesSubmitted    int
	GamesAccepted     int
	GamesDuplicate    int
	GamesFailed       int
	BalancesRequested int
	BalancesVerified  int
	StartTime         time.Time
	EndTime           time.Time
	Duration          time.Duration
}
