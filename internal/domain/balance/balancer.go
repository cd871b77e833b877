package balance

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/pkg/logger"
)

// Match size.
const (
	TeamSize    = 5
	PlayerCount = 2 * TeamSize
)

// Mode selects the balancing pipeline.
type Mode string

const (
	ModeBasic Mode = "basic"
	ModeLanes Mode = "lanes"
	ModeRank  Mode = "rank"
)

// ParseMode accepts a mode name; empty selects ModeBasic.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "", ModeBasic:
		return ModeBasic, nil
	case ModeLanes, "withlanes":
		return ModeLanes, nil
	case ModeRank, "withrank":
		return ModeRank, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidMode, s)
}

// Result is a balanced pair of teams.
type Result struct {
	ID        string    `json:"id"`
	Mode      Mode      `json:"mode"`
	CreatedAt time.Time `json:"createdAt"`
	BlueTeam  Team      `json:"blueTeam"`
	RedTeam   Team      `json:"redTeam"`
	Metrics   Metrics   `json:"metrics"`
	// Strategy names the seed the result was refined from.
	Strategy string `json:"strategy"`
	// Swaps counts the exchanges applied by refinement.
	Swaps int `json:"swaps"`
	// Seed reproduces the run's random choices when passed to WithSeed.
	Seed int64 `json:"seed"`
}

// Balancer runs the balancing pipelines. It holds configuration only and is
// safe for concurrent use; each call owns its own random generator.
type Balancer struct {
	trials        int
	maxIterations int
	laneRefine    bool
	seed          *int64
	counter       atomic.Int64
	logger        logger.Logger
}

// New constructs a Balancer.
func New(opts ...Option) *Balancer {
	b := &Balancer{
		trials:        defaultTrials,
		maxIterations: DefaultMaxIterations,
		laneRefine:    true,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Validate checks the preconditions shared by every mode.
func Validate(players []model.Candidate) error {
	if len(players) != PlayerCount {
		return fmt.Errorf("%w: got %d", ErrInvalidPlayerCount, len(players))
	}
	seen := make(map[string]struct{}, len(players))
	for _, p := range players {
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicatePlayer, p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

// Balance dispatches to the pipeline selected by mode.
func (b *Balancer) Balance(ctx context.Context, mode Mode, players []model.Candidate) (Result, error) {
	var (
		res Result
		err error
	)
	switch mode {
	case ModeBasic, "":
		res, err = b.Basic(players)
	case ModeLanes:
		res, err = b.WithLanes(players)
	case ModeRank:
		res, err = b.WithRank(players)
	default:
		return Result{}, fmt.Errorf("%w: %q", ErrInvalidMode, mode)
	}
	if err != nil {
		return Result{}, err
	}
	if b.logger != nil {
		b.logger.Debug(ctx, "teams balanced",
			logger.String("id", res.ID),
			logger.String("mode", string(res.Mode)),
			logger.String("strategy", res.Strategy),
			logger.Int("swaps", res.Swaps),
			logger.Float64("difference", res.Metrics.Difference),
		)
	}
	return res, nil
}

// Basic balances on global win rate: every seed strategy runs, the best split
// is refined, and the refined split is reported.
func (b *Balancer) Basic(players []model.Candidate) (Result, error) {
	if err := Validate(players); err != nil {
		return Result{}, err
	}
	seed, rng := b.newRand()
	split, st := BestSeed(players, WinRateMetric, rng, DefaultStrategies(b.trials)...)
	split, swaps := Refine(split, WinRateMetric, RefineOptions{
		Threshold:     WinRateThreshold,
		MaxIterations: b.maxIterations,
	})
	blue := candidateTeam(split.Blue, WinRateMetric)
	red := candidateTeam(split.Red, WinRateMetric)
	return b.result(ModeBasic, blue, red, st.Name(), swaps, seed), nil
}

// WithLanes assigns every player a lane so each side fields all five lanes,
// then exchanges same-lane opponents to even out lane scores.
func (b *Balancer) WithLanes(players []model.Candidate) (Result, error) {
	if err := Validate(players); err != nil {
		return Result{}, err
	}
	seed, rng := b.newRand()
	var blue, red []Assignment
	for _, a := range AssignLanes(players, rng) {
		if a.Side == model.SideBlue {
			blue = append(blue, a)
		} else {
			red = append(red, a)
		}
	}
	swaps := 0
	if b.laneRefine {
		swaps = refineLanes(blue, red, RefineOptions{
			Threshold:     WinRateThreshold,
			MaxIterations: b.maxIterations,
		})
	}
	return b.result(ModeLanes, laneTeam(blue), laneTeam(red), "role_priority", swaps, seed), nil
}

// WithRank balances on the rating estimated from solo ranks. The snake seed
// is refined only when it leaves a large gap.
func (b *Balancer) WithRank(players []model.Candidate) (Result, error) {
	if err := Validate(players); err != nil {
		return Result{}, err
	}
	seed, _ := b.newRand()
	split := Snake{}.Seed(players, MMRMetric, nil)
	swaps := 0
	if split.Imbalance(MMRMetric) > RankRefineAbove {
		split, swaps = Refine(split, MMRMetric, RefineOptions{
			Threshold:     MMRThreshold,
			MaxIterations: b.maxIterations,
		})
	}
	return b.result(ModeRank, rankTeam(split.Blue), rankTeam(split.Red), Snake{}.Name(), swaps, seed), nil
}

func (b *Balancer) result(mode Mode, blue, red Team, strategy string, swaps int, seed int64) Result {
	return Result{
		ID:        uuid.NewString(),
		Mode:      mode,
		CreatedAt: time.Now().UTC(),
		BlueTeam:  blue,
		RedTeam:   red,
		Metrics:   Report(mode, blue, red),
		Strategy:  strategy,
		Swaps:     swaps,
		Seed:      seed,
	}
}

// newRand returns a generator owned by a single call.
func (b *Balancer) newRand() (int64, *rand.Rand) {
	seed := time.Now().UnixNano() + b.counter.Add(1)
	if b.seed != nil {
		seed = *b.seed
	}
	return seed, rand.New(rand.NewSource(seed)) //nolint:gosec // team shuffles are not security sensitive
}

func candidateTeam(cs []model.Candidate, metric Metric) Team {
	t := make(Team, 0, len(cs))
	for _, c := range cs {
		t = append(t, Member{
			ID:      c.ID,
			Name:    c.Name,
			WinRate: c.WinRate,
			Score:   metric(c),
		})
	}
	return t
}

func laneTeam(as []Assignment) Team {
	t := make(Team, 0, len(as))
	for _, a := range as {
		ls := a.Candidate.Lane(a.Lane)
		t = append(t, Member{
			ID:          a.Candidate.ID,
			Name:        a.Candidate.Name,
			WinRate:     a.Candidate.WinRate,
			Score:       a.Score,
			Lane:        a.Lane,
			LaneWinRate: ls.WinRate,
			LaneGames:   ls.GamesPlayed,
			RoleMatch:   a.RoleMatch,
		})
	}
	return t
}

func rankTeam(cs []model.Candidate) Team {
	t := make(Team, 0, len(cs))
	for _, c := range cs {
		mmr := MMR(c.SoloRank)
		t = append(t, Member{
			ID:      c.ID,
			Name:    c.Name,
			WinRate: c.WinRate,
			Score:   float64(mmr),
			MMR:     mmr,
			Rank:    c.SoloRank,
		})
	}
	return t
}
