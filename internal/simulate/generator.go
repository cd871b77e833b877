package simulate

import (
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/okian/riftbalance/internal/domain/model"
)

var lanes = [5]model.Lane{model.LaneTop, model.LaneJungle, model.LaneMid, model.LaneADC, model.LaneSupport}

// Ranges of the generated games.
const (
	skillMin       = 0.2
	skillRange     = 0.6
	laneBonus      = 0.15
	outcomeNoise   = 0.35
	maxKills       = 15
	maxDeaths      = 12
	maxAssists     = 20
	championsCount = 40
	gameSpacing    = 40 * time.Minute
)

// generator produces a deterministic roster and game log from one seed.
// Names and game ids carry the seed so runs with different seeds do not
// collide on one server.
type generator struct {
	rng    *rand.Rand
	prefix string
}

func newGenerator(seed int64) *generator {
	return &generator{
		rng:    rand.New(rand.NewSource(seed)), //nolint:gosec // synthetic data
		prefix: fmt.Sprintf("sim%x", uint64(seed)),
	}
}

// roster creates n players with a hidden skill and a lane preference order.
func (g *generator) roster(n int) []Player {
	out := make([]Player, n)
	for i := range out {
		order := lanes
		g.rng.Shuffle(len(order), func(a, b int) { order[a], order[b] = order[b], order[a] })
		out[i] = Player{
			Name:  fmt.Sprintf("%s-%03d", g.prefix, i),
			Skill: skillMin + g.rng.Float64()*skillRange,
			Lanes: order,
		}
	}
	return out
}

// game picks ten players, seats them and decides the winner by lane-adjusted
// skill plus noise.
func (g *generator) game(index int, roster []Player, start time.Time) model.Game {
	picked := g.rng.Perm(len(roster))[:10]
	game := model.Game{
		ID:       fmt.Sprintf("%s-game-%05d", g.prefix, index),
		PlayedAt: start.Add(time.Duration(index) * gameSpacing),
	}

	var blue, red float64
	for seat, idx := range picked {
		p := roster[idx]
		side := model.SideBlue
		if seat >= 5 {
			side = model.SideRed
		}
		lane := lanes[seat%5]
		strength := p.Skill + laneBonus*laneAffinity(p, lane)
		if side == model.SideBlue {
			blue += strength
		} else {
			red += strength
		}
		game.Participants = append(game.Participants, model.Participant{
			PlayerID: p.ID,
			Side:     side,
			Lane:     lane,
			Champion: fmt.Sprintf("champion-%02d", g.rng.Intn(championsCount)),
			Kills:    g.rng.Intn(maxKills),
			Deaths:   g.rng.Intn(maxDeaths),
			Assists:  g.rng.Intn(maxAssists),
		})
	}

	game.WinningSide = model.SideRed
	if blue+(g.rng.Float64()-0.5)*outcomeNoise > red {
		game.WinningSide = model.SideBlue
	}
	return game
}

// pick chooses ten distinct players for a balance request, with the first two
// lanes of their preference order as stated roles.
func (g *generator) pick(roster []Player) []Player {
	idx := g.rng.Perm(len(roster))[:10]
	sort.Ints(idx)
	out := make([]Player, len(idx))
	for i, j := range idx {
		out[i] = roster[j]
	}
	return out
}

// laneAffinity is 1 for the preferred lane down to 0 for the least liked.
func laneAffinity(p Player, lane model.Lane) float64 {
	for i, l := range p.Lanes {
		if l == lane {
			return float64(len(p.Lanes)-1-i) / float64(len(p.Lanes)-1)
		}
	}
	return 0
}
