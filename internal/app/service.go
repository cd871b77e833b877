// Package service wires the store, the balancer, game ingestion and the
// Riot client into the operations the HTTP API exposes.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	eventqueue "github.com/okian/riftbalance/internal/adapters/mq/queue"
	workerpool "github.com/okian/riftbalance/internal/adapters/mq/worker"
	"github.com/okian/riftbalance/internal/adapters/repository"
	"github.com/okian/riftbalance/internal/domain/balance"
	"github.com/okian/riftbalance/internal/domain/dedupe"
	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/internal/domain/stats"
	"github.com/okian/riftbalance/internal/domain/types"
	"github.com/okian/riftbalance/pkg/logger"
	"github.com/okian/riftbalance/pkg/metrics"
)

// RiotClient resolves Riot IDs to accounts and solo ranks.
type RiotClient interface {
	Configured() bool
	Lookup(ctx context.Context, gameName, tagLine string) (model.RiotAccount, *model.SoloRank, error)
}

// PlayerRef names one of the ten players of a balance request.
type PlayerRef struct {
	ID            string
	PrimaryRole   model.Lane
	SecondaryRole model.Lane
}

// Service implements the API dependencies.
type Service struct {
	mu sync.RWMutex

	store    repository.Store
	balancer *balance.Balancer
	riot     RiotClient
	deduper  dedupe.Deduper
	queue    *eventqueue.InMemoryQueue
	pool     *workerpool.Pool

	workerCount int
	queueSize   int
	dedupeSize  int

	started   bool
	startedAt time.Time

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount: runtime.NumCPU(),
		queueSize:   10_000,
		dedupeSize:  50_000,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start creates the ingestion pipeline and starts the workers. Game ids
// already stored are loaded into the deduper.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}
	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithLogger(s.logger.Named("store")))
	}
	if s.balancer == nil {
		s.balancer = balance.New(balance.WithLogger(s.logger.Named("balance")))
	}

	s.logger.Info(ctx, "starting riftbalance service...")

	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	games, err := s.store.ListGames(ctx)
	if err != nil {
		return fmt.Errorf("load game log: %w", err)
	}
	for _, g := range games {
		s.deduper.SeenAndRecord(ctx, g.ID)
	}

	s.queue = eventqueue.NewInMemoryQueue(eventqueue.WithCapacity(s.queueSize))
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.store,
		workerpool.WithLogger(s.logger.Named("worker")),
		workerpool.WithFailureHandler(s.onRecordFailure))
	s.pool.Start(context.WithoutCancel(ctx))

	s.started = true
	s.startedAt = time.Now()
	metrics.UpdateTotalPlayers(s.store.Count(ctx))
	s.logger.Info(ctx, "riftbalance service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.Int("knownGames", len(games)),
		logger.Bool("riotEnabled", s.riot != nil && s.riot.Configured()),
	)
	return nil
}

// Stop drains the ingestion queue and closes the store.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping riftbalance service...")

	if err := s.pool.Shutdown(ctx); err != nil {
		s.logger.Warn(ctx, "worker pool shutdown", logger.Error(err))
	}
	if err := s.store.Close(); err != nil {
		s.logger.Warn(ctx, "close store", logger.Error(err))
	}

	s.started = false
	s.logger.Info(ctx, "riftbalance service stopped")
}

// onRecordFailure releases the game id so a corrected resubmission is
// accepted. Store-level duplicates keep their id.
func (s *Service) onRecordFailure(ctx context.Context, g model.Game, err error) {
	if errors.Is(err, repository.ErrGameExists) {
		return
	}
	s.deduper.Unrecord(ctx, g.ID)
	s.logger.Warn(ctx, "game dropped", logger.GameID(g.ID), logger.Error(err))
}

// Balance resolves ten player references and balances them with mode.
func (s *Service) Balance(ctx context.Context, mode balance.Mode, refs []PlayerRef) (balance.Result, error) {
	start := time.Now()
	res, err := s.balance(ctx, mode, refs)
	if err != nil {
		metrics.RecordBalanceError(string(mode), errorReason(err))
		return balance.Result{}, err
	}
	metrics.RecordBalance(string(res.Mode), res.Strategy,
		float64(time.Since(start).Microseconds())/1000,
		res.Metrics.Difference, res.Metrics.BalanceQuality, res.Swaps)
	return res, nil
}

func (s *Service) balance(ctx context.Context, mode balance.Mode, refs []PlayerRef) (balance.Result, error) {
	if len(refs) != balance.PlayerCount {
		return balance.Result{}, fmt.Errorf("%w: got %d", balance.ErrInvalidPlayerCount, len(refs))
	}
	ids := make([]string, len(refs))
	seen := make(map[string]struct{}, len(refs))
	for i, r := range refs {
		if _, dup := seen[r.ID]; dup {
			return balance.Result{}, fmt.Errorf("%w: %s", balance.ErrDuplicatePlayer, r.ID)
		}
		seen[r.ID] = struct{}{}
		ids[i] = r.ID
	}

	players, err := s.store.FindPlayers(ctx, ids)
	if err != nil {
		if errors.Is(err, repository.ErrPlayerNotFound) {
			return balance.Result{}, fmt.Errorf("%w: %w", balance.ErrUnresolvedPlayer, err)
		}
		return balance.Result{}, fmt.Errorf("resolve players: %w", err)
	}

	candidates := make([]model.Candidate, len(players))
	for i, p := range players {
		candidates[i] = p.Candidate(refs[i].PrimaryRole, refs[i].SecondaryRole)
	}
	return s.balancer.Balance(ctx, mode, candidates)
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, balance.ErrInvalidPlayerCount):
		return "invalid_player_count"
	case errors.Is(err, balance.ErrDuplicatePlayer):
		return "duplicate_player"
	case errors.Is(err, balance.ErrUnresolvedPlayer):
		return "unresolved_player"
	case errors.Is(err, balance.ErrInvalidMode):
		return "invalid_mode"
	default:
		return "internal"
	}
}

// CreatePlayer registers a new player, optionally linked to a Riot ID.
func (s *Service) CreatePlayer(ctx context.Context, name, gameName, tagLine string) (*model.Player, error) {
	p := &model.Player{
		Name: name,
		Riot: model.RiotAccount{GameName: strings.TrimSpace(gameName), TagLine: strings.TrimSpace(tagLine)},
	}
	if err := s.store.CreatePlayer(ctx, p); err != nil {
		return nil, err
	}
	metrics.UpdateTotalPlayers(s.store.Count(ctx))
	s.logger.Info(ctx, "player created", logger.PlayerID(p.ID), logger.String("name", p.Name))
	return p, nil
}

func (s *Service) GetPlayer(ctx context.Context, id string) (*model.Player, error) {
	return s.store.GetPlayer(ctx, id)
}

// PlayerByName looks a player up by name, ignoring case.
func (s *Service) PlayerByName(ctx context.Context, name string) (*model.Player, error) {
	return s.store.GetPlayerByName(ctx, name)
}

func (s *Service) ListPlayers(ctx context.Context) ([]*model.Player, error) {
	return s.store.ListPlayers(ctx)
}

// ListGames returns the recorded game log ordered by play time.
func (s *Service) ListGames(ctx context.Context) ([]model.Game, error) {
	games, err := s.store.ListGames(ctx)
	if err != nil {
		return nil, fmt.Errorf("load game log: %w", err)
	}
	return games, nil
}

// DeletePlayer removes a player. Stored games keep their participants.
func (s *Service) DeletePlayer(ctx context.Context, id string) error {
	if err := s.store.DeletePlayer(ctx, id); err != nil {
		return err
	}
	metrics.UpdateTotalPlayers(s.store.Count(ctx))
	return nil
}

// Synergy computes teammate and opponent affinity for a player.
func (s *Service) Synergy(ctx context.Context, id string) (stats.Synergy, error) {
	if _, err := s.store.GetPlayer(ctx, id); err != nil {
		return stats.Synergy{}, err
	}
	games, err := s.store.ListGames(ctx)
	if err != nil {
		return stats.Synergy{}, fmt.Errorf("load game log: %w", err)
	}
	return stats.ComputeSynergy(id, games), nil
}

// Recalculate rebuilds every player's stats from the game log and returns
// the number of players updated. The store runs the rebuild atomically with
// respect to games recorded by the workers.
func (s *Service) Recalculate(ctx context.Context) (int, error) {
	n, err := s.store.Recalculate(ctx)
	if err != nil {
		return 0, fmt.Errorf("recalculate stats: %w", err)
	}
	s.logger.Info(ctx, "stats recalculated", logger.Int("players", n))
	return n, nil
}

// SyncRiot looks up the player's Riot ID and stores the account and solo
// rank. Non-empty gameName and tagLine replace the stored Riot ID.
func (s *Service) SyncRiot(ctx context.Context, id, gameName, tagLine string) (*model.Player, error) {
	p, err := s.store.GetPlayer(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(gameName) != "" && strings.TrimSpace(tagLine) != "" {
		p.Riot.GameName, p.Riot.TagLine = strings.TrimSpace(gameName), strings.TrimSpace(tagLine)
	}
	if p.Riot.GameName == "" || p.Riot.TagLine == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingRiotID, id)
	}
	if s.riot == nil || !s.riot.Configured() {
		return nil, fmt.Errorf("riot sync: %w", ErrRiotDisabled)
	}

	acct, rank, err := s.riot.Lookup(ctx, p.Riot.GameName, p.Riot.TagLine)
	if err != nil {
		s.logger.Warn(ctx, "riot lookup failed", logger.PlayerID(id), logger.Error(err))
		return nil, fmt.Errorf("riot sync %s#%s: %w", p.Riot.GameName, p.Riot.TagLine, err)
	}
	return s.store.UpdateRiot(ctx, id, acct, rank)
}

// ValidateGame checks a submitted game before it is queued: shape, and
// that every participant is a registered player.
func (s *Service) ValidateGame(ctx context.Context, g *model.Game) error {
	if g.PlayedAt.IsZero() {
		g.PlayedAt = time.Now().UTC()
	}
	if err := g.Validate(); err != nil {
		return err
	}
	ids := make([]string, len(g.Participants))
	for i, p := range g.Participants {
		ids[i] = p.PlayerID
	}
	if _, err := s.store.FindPlayers(ctx, ids); err != nil {
		return err
	}
	return nil
}

// SeenAndRecord atomically checks if a game id was seen and records it if not.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordGameDuplicate()
	}
	return seen
}

// Unrecord removes a game id from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// Size returns the number of remembered game ids.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

// Enqueue submits a game for asynchronous recording.
func (s *Service) Enqueue(ctx context.Context, g model.Game) error {
	if s.queue == nil {
		return ErrNotStarted
	}
	if err := s.queue.Enqueue(ctx, g); err != nil {
		if errors.Is(err, eventqueue.ErrFull) || errors.Is(err, eventqueue.ErrClosed) {
			return fmt.Errorf("%w: %w", ErrBackpressure, err)
		}
		return err
	}
	metrics.RecordGameAccepted()
	s.logger.Debug(ctx, "game queued", logger.GameID(g.ID), logger.Int("queueLength", s.queue.Len()))
	return nil
}

// TopN returns the n best players by win rate.
func (s *Service) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, n)
	}
	ranked, err := s.ranked(ctx)
	if err != nil {
		return nil, err
	}
	if n > len(ranked) {
		n = len(ranked)
	}
	out := make([]types.Entry, n)
	for i := 0; i < n; i++ {
		out[i] = types.NewEntry(i+1, ranked[i])
	}
	return out, nil
}

// Rank returns the leaderboard row of one player.
func (s *Service) Rank(ctx context.Context, id string) (types.Entry, error) {
	ranked, err := s.ranked(ctx)
	if err != nil {
		return types.Entry{}, err
	}
	for i, p := range ranked {
		if p.ID == id {
			return types.NewEntry(i+1, p), nil
		}
	}
	return types.Entry{}, fmt.Errorf("%w: %s", repository.ErrPlayerNotFound, id)
}

func (s *Service) ranked(ctx context.Context) ([]*model.Player, error) {
	players, err := s.store.ListPlayers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load players: %w", err)
	}
	sort.SliceStable(players, func(i, j int) bool { return types.Ahead(players[i], players[j]) })
	return players, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := map[string]interface{}{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
		"riotEnabled": s.riot != nil && s.riot.Configured(),
	}
	if s.started {
		ctx := context.Background()
		players := s.store.Count(ctx)
		out["uptimeSeconds"] = int64(time.Since(s.startedAt).Seconds())
		out["queueLength"] = s.queue.Len()
		out["totalPlayers"] = players
		out["knownGameIds"] = s.deduper.Size()
		out["gamesRecorded"] = s.pool.Processed()
		out["gamesFailed"] = s.pool.Failed()
		metrics.UpdateTotalPlayers(players)
	}
	return out
}
