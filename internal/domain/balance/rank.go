package balance

import (
	"math/rand"

	"github.com/okian/riftbalance/internal/domain/model"
)

// UnrankedMMR is the rating assumed for players without a solo rank.
const UnrankedMMR = 800

var tierBase = map[model.Tier]int{
	model.TierIron:        0,
	model.TierBronze:      400,
	model.TierSilver:      800,
	model.TierGold:        1200,
	model.TierPlatinum:    1600,
	model.TierEmerald:     2000,
	model.TierDiamond:     2400,
	model.TierMaster:      2800,
	model.TierGrandmaster: 3100,
	model.TierChallenger:  3400,
}

var divisionBonus = map[model.Division]int{
	model.DivisionIV:  0,
	model.DivisionIII: 75,
	model.DivisionII:  150,
	model.DivisionI:   225,
}

// MMR estimates a matchmaking rating from a solo rank.
func MMR(r *model.SoloRank) int {
	if r == nil {
		return UnrankedMMR
	}
	base, ok := tierBase[r.Tier]
	if !ok {
		return UnrankedMMR
	}
	if r.Tier.IsApex() {
		return base + r.LeaguePoints
	}
	return base + divisionBonus[r.Rank] + r.LeaguePoints
}

// Snake sorts by metric and deals players in a 1-2-2-2-2-1 pattern, so blue
// receives sorted positions 0, 3, 4, 7 and 8.
type Snake struct{}

func (Snake) Name() string        { return "snake" }
func (Snake) Deterministic() bool { return true }

func (Snake) Seed(players []model.Candidate, metric Metric, _ *rand.Rand) Split {
	sorted := sortDescending(players, metric)
	s := Split{
		Blue: make([]model.Candidate, 0, len(sorted)/2),
		Red:  make([]model.Candidate, 0, len(sorted)/2),
	}
	for i, c := range sorted {
		if i%4 == 0 || i%4 == 3 {
			s.Blue = append(s.Blue, c)
		} else {
			s.Red = append(s.Red, c)
		}
	}
	return s
}
