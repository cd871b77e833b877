// Package stats derives player aggregates from recorded games.
package stats

import (
	"sort"

	"github.com/okian/riftbalance/internal/domain/model"
)

// Apply folds one participant line of g into p.
func Apply(p *model.Player, g *model.Game, part model.Participant) {
	if p.StatsByLane == nil {
		p.StatsByLane = make(map[model.Lane]model.LaneStats)
	}
	if p.StatsByChampion == nil {
		p.StatsByChampion = make(map[string]model.ChampionStats)
	}
	won := g.Won(part)

	p.GamesPlayed++
	p.Kills += part.Kills
	p.Deaths += part.Deaths
	p.Assists += part.Assists
	if won {
		p.Wins++
	}
	p.WinRate = rate(p.Wins, p.GamesPlayed)

	if part.Lane.IsValid() {
		p.StatsByLane[part.Lane] = add(p.StatsByLane[part.Lane], part, won)
	}
	if part.Champion != "" {
		p.StatsByChampion[part.Champion] = add(p.StatsByChampion[part.Champion], part, won)
	}
	if g.PlayedAt.After(p.UpdatedAt) {
		p.UpdatedAt = g.PlayedAt
	}
}

func add(s model.LaneStats, part model.Participant, won bool) model.LaneStats {
	s.GamesPlayed++
	s.Kills += part.Kills
	s.Deaths += part.Deaths
	s.Assists += part.Assists
	if won {
		s.Wins++
	}
	s.WinRate = rate(s.Wins, s.GamesPlayed)
	return s
}

func rate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games)
}

// KDA is (kills+assists)/deaths, with deaths floored at one.
func KDA(kills, deaths, assists int) float64 {
	if deaths < 1 {
		deaths = 1
	}
	return float64(kills+assists) / float64(deaths)
}

// Recalculate rebuilds the aggregates of players from games. Players are
// modified in place; participants referring to unknown players are skipped.
func Recalculate(players []*model.Player, games []model.Game) {
	byID := make(map[string]*model.Player, len(players))
	for _, p := range players {
		p.ResetStats()
		byID[p.ID] = p
	}
	ordered := append([]model.Game(nil), games...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].PlayedAt.Before(ordered[j].PlayedAt)
	})
	for i := range ordered {
		g := &ordered[i]
		for _, part := range g.Participants {
			if p, ok := byID[part.PlayerID]; ok {
				Apply(p, g, part)
			}
		}
	}
}

// Affinity is a player's record with or against another player.
type Affinity struct {
	PlayerID string  `json:"playerId"`
	Games    int     `json:"games"`
	Wins     int     `json:"wins"`
	WinRate  float64 `json:"winRate"`
}

// Synergy is a player's record per teammate and per opponent.
type Synergy struct {
	PlayerID  string     `json:"playerId"`
	Teammates []Affinity `json:"teammates"`
	Opponents []Affinity `json:"opponents"`
}

// ComputeSynergy walks games containing playerID and tallies results with
// every teammate and against every opponent. Lists are ordered by games
// together, then win rate, then id.
func ComputeSynergy(playerID string, games []model.Game) Synergy {
	with := map[string]*Affinity{}
	against := map[string]*Affinity{}
	for i := range games {
		g := &games[i]
		self, ok := find(g, playerID)
		if !ok {
			continue
		}
		won := g.Won(self)
		for _, other := range g.Participants {
			if other.PlayerID == playerID {
				continue
			}
			bucket := against
			if other.Side == self.Side {
				bucket = with
			}
			a := bucket[other.PlayerID]
			if a == nil {
				a = &Affinity{PlayerID: other.PlayerID}
				bucket[other.PlayerID] = a
			}
			a.Games++
			if won {
				a.Wins++
			}
		}
	}
	return Synergy{
		PlayerID:  playerID,
		Teammates: flatten(with),
		Opponents: flatten(against),
	}
}

func find(g *model.Game, playerID string) (model.Participant, bool) {
	for _, p := range g.Participants {
		if p.PlayerID == playerID {
			return p, true
		}
	}
	return model.Participant{}, false
}

func flatten(m map[string]*Affinity) []Affinity {
	out := make([]Affinity, 0, len(m))
	for _, a := range m {
		a.WinRate = rate(a.Wins, a.Games)
		out = append(out, *a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Games != out[j].Games {
			return out[i].Games > out[j].Games
		}
		if out[i].WinRate != out[j].WinRate {
			return out[i].WinRate > out[j].WinRate
		}
		return out[i].PlayerID < out[j].PlayerID
	})
	return out
}
