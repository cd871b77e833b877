// Package repository persists players and the game log.
package repository

import (
	"context"

	"github.com/okian/riftbalance/internal/domain/model"
)

// Store provides read/write access to players and games. Implementations
// return copies; mutating a returned player does not change the store.
type Store interface {
	// CreatePlayer stores p, assigning an id when empty.
	// Returns ErrPlayerExists if the name is taken.
	CreatePlayer(ctx context.Context, p *model.Player) error
	// GetPlayer returns ErrPlayerNotFound if the id is unknown.
	GetPlayer(ctx context.Context, id string) (*model.Player, error)
	GetPlayerByName(ctx context.Context, name string) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	// FindPlayers returns the players in the order of ids, failing with
	// ErrPlayerNotFound on the first unknown id.
	FindPlayers(ctx context.Context, ids []string) ([]*model.Player, error)
	DeletePlayer(ctx context.Context, id string) error
	// UpdateRiot stores the Riot account link and solo rank of a player.
	UpdateRiot(ctx context.Context, id string, acct model.RiotAccount, rank *model.SoloRank) (*model.Player, error)

	// RecordGame stores g and folds it into its participants' stats in one
	// step. Returns ErrGameExists for a known id.
	RecordGame(ctx context.Context, g model.Game) error
	// ListGames returns the game log ordered by play time.
	ListGames(ctx context.Context) ([]model.Game, error)
	// Recalculate rebuilds every player's stats from the game log in one
	// step, so a concurrent RecordGame lands either before or after it.
	// Returns the number of players rebuilt.
	Recalculate(ctx context.Context) (int, error)

	// Count returns the number of players.
	Count(ctx context.Context) int
	Close() error
}

// clonePlayer deep-copies p.
func clonePlayer(p *model.Player) *model.Player {
	c := *p
	c.StatsByLane = make(map[model.Lane]model.LaneStats, len(p.StatsByLane))
	for k, v := range p.StatsByLane {
		c.StatsByLane[k] = v
	}
	c.StatsByChampion = make(map[string]model.ChampionStats, len(p.StatsByChampion))
	for k, v := range p.StatsByChampion {
		c.StatsByChampion[k] = v
	}
	if p.SoloRank != nil {
		r := *p.SoloRank
		c.SoloRank = &r
	}
	return &c
}

func cloneGame(g model.Game) model.Game {
	g.Participants = append([]model.Participant(nil), g.Participants...)
	return g
}
