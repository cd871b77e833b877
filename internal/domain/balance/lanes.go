package balance

import (
	"math/rand"
	"sort"

	"github.com/okian/riftbalance/internal/domain/model"
)

// minStatsGames is the lane experience required by the statistics phase.
const minStatsGames = 2

// LaneScore rates a player on a lane. Players without games on the lane are
// rated from their global win rate on the same scale.
func LaneScore(c model.Candidate, l model.Lane) float64 {
	s := c.Lane(l)
	if s.GamesPlayed > 0 {
		return s.WinRate*100*(1+float64(s.GamesPlayed)/20) + 1
	}
	return c.WinRate*100 + 1
}

// Assignment places one player in a lane on a side.
type Assignment struct {
	Candidate model.Candidate
	Side      model.Side
	Lane      model.Lane
	Score     float64
	RoleMatch model.RoleMatch
}

// laneBuilder is the mutable state of one lane assignment run.
type laneBuilder struct {
	players  []model.Candidate
	assigned []bool
	slots    map[model.Side]map[model.Lane]bool
	totals   map[model.Side]float64
	out      []Assignment
	rng      *rand.Rand
}

func newLaneBuilder(players []model.Candidate, rng *rand.Rand) *laneBuilder {
	return &laneBuilder{
		players:  players,
		assigned: make([]bool, len(players)),
		slots: map[model.Side]map[model.Lane]bool{
			model.SideBlue: {},
			model.SideRed:  {},
		},
		totals: map[model.Side]float64{},
		out:    make([]Assignment, 0, len(players)),
		rng:    rng,
	}
}

// AssignLanes gives every player a side and a lane. Players are placed by
// declared primary role, then secondary role, then lane experience, then
// whoever is left, and finally at random.
func AssignLanes(players []model.Candidate, rng *rand.Rand) []Assignment {
	b := newLaneBuilder(players, rng)

	for _, lane := range model.AllLanes {
		b.fill(lane, b.pool(lane, func(c model.Candidate) bool { return c.PrimaryRole == lane }), model.RoleMatchPrimary)
	}
	for _, lane := range model.AllLanes {
		if b.needs(lane) {
			b.fill(lane, b.pool(lane, func(c model.Candidate) bool { return c.SecondaryRole == lane }), model.RoleMatchSecondary)
		}
	}
	for _, lane := range model.AllLanes {
		if b.needs(lane) {
			b.fill(lane, b.pool(lane, func(c model.Candidate) bool { return c.Lane(lane).GamesPlayed >= minStatsGames }), model.RoleMatchStats)
		}
	}
	b.fallback()
	b.random()
	return b.out
}

func (b *laneBuilder) open(side model.Side, lane model.Lane) bool {
	return !b.slots[side][lane]
}

func (b *laneBuilder) needs(lane model.Lane) bool {
	return b.open(model.SideBlue, lane) || b.open(model.SideRed, lane)
}

func (b *laneBuilder) size(side model.Side) int {
	return len(b.slots[side])
}

// lowerSide returns the side with the smaller running score, blue on ties.
func (b *laneBuilder) lowerSide() model.Side {
	if b.totals[model.SideRed] < b.totals[model.SideBlue] {
		return model.SideRed
	}
	return model.SideBlue
}

// pool lists unassigned players matching keep, best lane score first.
func (b *laneBuilder) pool(lane model.Lane, keep func(model.Candidate) bool) []int {
	var idx []int
	for i, c := range b.players {
		if !b.assigned[i] && keep(c) {
			idx = append(idx, i)
		}
	}
	sort.SliceStable(idx, func(x, y int) bool {
		return LaneScore(b.players[idx[x]], lane) > LaneScore(b.players[idx[y]], lane)
	})
	return idx
}

func (b *laneBuilder) place(i int, side model.Side, lane model.Lane, tag model.RoleMatch) {
	c := b.players[i]
	score := LaneScore(c, lane)
	b.assigned[i] = true
	b.slots[side][lane] = true
	b.totals[side] += score
	b.out = append(b.out, Assignment{
		Candidate: c,
		Side:      side,
		Lane:      lane,
		Score:     score,
		RoleMatch: tag,
	})
}

// fill assigns up to two players from pool to the open slots of lane. When
// both sides need the lane the best player goes to the weaker side.
func (b *laneBuilder) fill(lane model.Lane, pool []int, tag model.RoleMatch) {
	if len(pool) == 0 {
		return
	}
	blue, red := b.open(model.SideBlue, lane), b.open(model.SideRed, lane)
	switch {
	case blue && red:
		first := b.lowerSide()
		b.place(pool[0], first, lane, tag)
		if len(pool) > 1 {
			b.place(pool[1], first.Opposite(), lane, tag)
		}
	case blue:
		b.place(pool[0], model.SideBlue, lane, tag)
	case red:
		b.place(pool[0], model.SideRed, lane, tag)
	}
}

// fallback fills every empty slot, blue first, preferring players with any
// experience on the lane.
func (b *laneBuilder) fallback() {
	for _, side := range []model.Side{model.SideBlue, model.SideRed} {
		for _, lane := range model.AllLanes {
			if !b.open(side, lane) {
				continue
			}
			pool := b.pool(lane, func(c model.Candidate) bool { return c.Lane(lane).GamesPlayed > 0 })
			if len(pool) == 0 {
				pool = b.pool(lane, func(model.Candidate) bool { return true })
			}
			if len(pool) == 0 {
				return
			}
			b.place(pool[0], side, lane, model.RoleMatchFallback)
		}
	}
}

// random places leftovers on the smaller side with a random open lane.
// Fallback seats ten players completely, so this only runs when a pool
// leaves slots that fallback could not fill.
func (b *laneBuilder) random() {
	for i := range b.players {
		if b.assigned[i] {
			continue
		}
		side := model.SideBlue
		if b.size(model.SideRed) < b.size(model.SideBlue) {
			side = model.SideRed
		}
		if b.size(side) >= len(model.AllLanes) {
			return
		}
		var free []model.Lane
		for _, lane := range model.AllLanes {
			if b.open(side, lane) {
				free = append(free, lane)
			}
		}
		b.place(i, side, free[b.rng.Intn(len(free))], model.RoleMatchRandom)
	}
}

// refineLanes exchanges same-lane opponents while that lowers the lane
// score difference, so lane completeness is preserved. Swapped assignments
// take the side of the slice they end up in.
func refineLanes(blue, red []Assignment, opts RefineOptions) int {
	swaps := refine(blue, red,
		func(a Assignment) float64 { return a.Score },
		func(x, y Assignment) bool { return x.Lane == y.Lane },
		opts,
	)
	for i := range blue {
		blue[i].Side = model.SideBlue
	}
	for i := range red {
		red[i].Side = model.SideRed
	}
	return swaps
}
