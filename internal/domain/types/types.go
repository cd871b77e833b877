// Package types contains read shapes shared by the service and the API.
package types

import (
	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/internal/domain/stats"
)

// Entry is one row of the win-rate leaderboard.
type Entry struct {
	Rank        int     `json:"rank"`
	PlayerID    string  `json:"player_id"`
	Name        string  `json:"name"`
	WinRate     float64 `json:"win_rate"`
	GamesPlayed int     `json:"games_played"`
	KDA         float64 `json:"kda"`
}

// NewEntry builds the leaderboard row for p at position rank.
func NewEntry(rank int, p *model.Player) Entry {
	return Entry{
		Rank:        rank,
		PlayerID:    p.ID,
		Name:        p.Name,
		WinRate:     p.WinRate,
		GamesPlayed: p.GamesPlayed,
		KDA:         stats.KDA(p.Kills, p.Deaths, p.Assists),
	}
}

// Ahead reports whether a ranks above b: higher win rate, then more games,
// then name.
func Ahead(a, b *model.Player) bool {
	if a.WinRate != b.WinRate {
		return a.WinRate > b.WinRate
	}
	if a.GamesPlayed != b.GamesPlayed {
		return a.GamesPlayed > b.GamesPlayed
	}
	return a.Name < b.Name
}
