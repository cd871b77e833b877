package balance

import (
	"math"

	"github.com/okian/riftbalance/internal/domain/model"
)

// Quality scales: a difference of one scale unit drives quality to zero.
const (
	winRateScale   = 1.0
	laneScoreScale = 100.0
	mmrScale       = 1000.0
)

// Member is one player in a produced team.
type Member struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	WinRate float64 `json:"winRate"`
	// Score is the metric value the member was balanced on.
	Score       float64         `json:"score"`
	Lane        model.Lane      `json:"lane,omitempty"`
	LaneWinRate float64         `json:"laneWinRate,omitempty"`
	LaneGames   int             `json:"laneGames,omitempty"`
	RoleMatch   model.RoleMatch `json:"roleMatch,omitempty"`
	MMR         int             `json:"mmr,omitempty"`
	Rank        *model.SoloRank `json:"rankInfo,omitempty"`
}

// Team is one side of a result.
type Team []Member

// SideStats describes how a metric is distributed over both sides.
type SideStats struct {
	BlueTotal         float64 `json:"blueTotal"`
	RedTotal          float64 `json:"redTotal"`
	BlueAverage       float64 `json:"blueAverage"`
	RedAverage        float64 `json:"redAverage"`
	Difference        float64 `json:"difference"`
	AverageDifference float64 `json:"averageDifference"`
	BlueStdDev        float64 `json:"blueStdDev"`
	RedStdDev         float64 `json:"redStdDev"`
}

// RoleMetrics counts role provenance per side.
type RoleMetrics struct {
	Blue map[model.RoleMatch]int `json:"blue"`
	Red  map[model.RoleMatch]int `json:"red"`
}

// RankMetrics summarises ranked records per side.
type RankMetrics struct {
	BlueWins    int            `json:"blueWins"`
	BlueLosses  int            `json:"blueLosses"`
	RedWins     int            `json:"redWins"`
	RedLosses   int            `json:"redLosses"`
	BlueHighest *Member        `json:"blueHighest,omitempty"`
	RedHighest  *Member        `json:"redHighest,omitempty"`
	BlueTiers   map[string]int `json:"blueTiers"`
	RedTiers    map[string]int `json:"redTiers"`
}

// Metrics is the read-only summary of a result. The embedded SideStats
// describe the metric the mode balanced on.
type Metrics struct {
	Metric string `json:"metric"`
	SideStats
	BalanceQuality float64      `json:"balanceQuality"`
	WinRate        *SideStats   `json:"winRate,omitempty"`
	Roles          *RoleMetrics `json:"roles,omitempty"`
	Rank           *RankMetrics `json:"rank,omitempty"`
}

// Report computes the metrics of a finished split. It only reads the teams,
// so calling it again on the same result yields the same metrics.
func Report(mode Mode, blue, red Team) Metrics {
	score := func(m Member) float64 { return m.Score }
	m := Metrics{SideStats: sideStats(blue, red, score)}

	switch mode {
	case ModeLanes:
		m.Metric = "laneScore"
		m.BalanceQuality = quality(m.Difference, laneScoreScale)
		wr := sideStats(blue, red, func(m Member) float64 { return m.WinRate })
		m.WinRate = &wr
		m.Roles = &RoleMetrics{Blue: roleCounts(blue), Red: roleCounts(red)}
	case ModeRank:
		m.Metric = "mmr"
		m.BalanceQuality = quality(m.Difference, mmrScale)
		wr := sideStats(blue, red, func(m Member) float64 { return m.WinRate })
		m.WinRate = &wr
		m.Rank = rankMetrics(blue, red)
	default:
		m.Metric = "winRate"
		m.BalanceQuality = quality(m.Difference, winRateScale)
	}
	return m
}

func quality(diff, scale float64) float64 {
	return math.Max(0, 100-100*diff/scale)
}

func sideStats(blue, red Team, value func(Member) float64) SideStats {
	bt, ba, bs := describe(blue, value)
	rt, ra, rs := describe(red, value)
	return SideStats{
		BlueTotal:         bt,
		RedTotal:          rt,
		BlueAverage:       ba,
		RedAverage:        ra,
		Difference:        math.Abs(bt - rt),
		AverageDifference: math.Abs(ba - ra),
		BlueStdDev:        bs,
		RedStdDev:         rs,
	}
}

// describe returns the total, mean and population standard deviation.
func describe(t Team, value func(Member) float64) (total, mean, stddev float64) {
	if len(t) == 0 {
		return 0, 0, 0
	}
	for _, m := range t {
		total += value(m)
	}
	mean = total / float64(len(t))
	var sq float64
	for _, m := range t {
		d := value(m) - mean
		sq += d * d
	}
	return total, mean, math.Sqrt(sq / float64(len(t)))
}

func roleCounts(t Team) map[model.RoleMatch]int {
	counts := make(map[model.RoleMatch]int, len(model.AllRoleMatches))
	for _, rm := range model.AllRoleMatches {
		counts[rm] = 0
	}
	for _, m := range t {
		counts[m.RoleMatch]++
	}
	return counts
}

func rankMetrics(blue, red Team) *RankMetrics {
	rm := &RankMetrics{}
	rm.BlueWins, rm.BlueLosses, rm.BlueHighest, rm.BlueTiers = rankSummary(blue)
	rm.RedWins, rm.RedLosses, rm.RedHighest, rm.RedTiers = rankSummary(red)
	return rm
}

func rankSummary(t Team) (wins, losses int, highest *Member, tiers map[string]int) {
	tiers = make(map[string]int)
	for i := range t {
		m := t[i]
		if m.Rank == nil {
			tiers["UNRANKED"]++
			continue
		}
		wins += m.Rank.Wins
		losses += m.Rank.Losses
		tiers[string(m.Rank.Tier)]++
		if highest == nil || highest.Rank.Less(*m.Rank) {
			h := m
			highest = &h
		}
	}
	return wins, losses, highest, tiers
}
