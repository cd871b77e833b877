package model

import "time"

// LaneStats aggregates a player's results on one lane.
type LaneStats struct {
	GamesPlayed int     `json:"gamesPlayed"`
	Kills       int     `json:"kills"`
	Deaths      int     `json:"deaths"`
	Assists     int     `json:"assists"`
	Wins        int     `json:"wins"`
	WinRate     float64 `json:"winRate"`
}

// ChampionStats aggregates a player's results on one champion.
type ChampionStats = LaneStats

// RiotAccount links a player to a Riot ID.
type RiotAccount struct {
	GameName string `json:"gameName,omitempty"`
	TagLine  string `json:"tagLine,omitempty"`
	PUUID    string `json:"puuid,omitempty"`
}

// Player is the persisted aggregate of a player's history.
type Player struct {
	ID              string                   `json:"id"`
	Name            string                   `json:"name"`
	Riot            RiotAccount              `json:"riot"`
	GamesPlayed     int                      `json:"gamesPlayed"`
	Kills           int                      `json:"kills"`
	Deaths          int                      `json:"deaths"`
	Assists         int                      `json:"assists"`
	Wins            int                      `json:"wins"`
	WinRate         float64                  `json:"winRate"`
	StatsByLane     map[Lane]LaneStats       `json:"statsByLane"`
	StatsByChampion map[string]ChampionStats `json:"statsByChampion"`
	SoloRank        *SoloRank                `json:"soloRank,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
	UpdatedAt       time.Time                `json:"updatedAt"`
}

// ResetStats clears every aggregate derived from games.
func (p *Player) ResetStats() {
	p.GamesPlayed, p.Kills, p.Deaths, p.Assists, p.Wins = 0, 0, 0, 0, 0
	p.WinRate = 0
	p.StatsByLane = make(map[Lane]LaneStats)
	p.StatsByChampion = make(map[string]ChampionStats)
}

// Candidate is one of the ten players handed to the balancer.
type Candidate struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	WinRate       float64            `json:"winRate"`
	StatsByLane   map[Lane]LaneStats `json:"statsByLane,omitempty"`
	PrimaryRole   Lane               `json:"primaryRole,omitempty"`
	SecondaryRole Lane               `json:"secondaryRole,omitempty"`
	SoloRank      *SoloRank          `json:"soloRank,omitempty"`
}

// Candidate projects p into balancer input with the given role preferences.
func (p *Player) Candidate(primary, secondary Lane) Candidate {
	lanes := make(map[Lane]LaneStats, len(p.StatsByLane))
	for l, s := range p.StatsByLane {
		lanes[l] = s
	}
	var rank *SoloRank
	if p.SoloRank != nil {
		r := *p.SoloRank
		rank = &r
	}
	return Candidate{
		ID:            p.ID,
		Name:          p.Name,
		WinRate:       p.WinRate,
		StatsByLane:   lanes,
		PrimaryRole:   primary,
		SecondaryRole: secondary,
		SoloRank:      rank,
	}
}

// Lane returns the stats recorded for lane l; the zero value means no data.
func (c Candidate) Lane(l Lane) LaneStats {
	return c.StatsByLane[l]
}
