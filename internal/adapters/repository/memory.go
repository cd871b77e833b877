package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/internal/domain/stats"
	"github.com/okian/riftbalance/pkg/metrics"
)

// MemoryStore keeps players and games in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	players map[string]*model.Player
	names   map[string]string // lowercased name -> id
	games   []model.Game
	gameIDs map[string]struct{}
	opts    options
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	return &MemoryStore{
		players: make(map[string]*model.Player),
		names:   make(map[string]string),
		gameIDs: make(map[string]struct{}),
		opts:    newOptions(opts),
	}
}

func (s *MemoryStore) CreatePlayer(_ context.Context, p *model.Player) error {
	defer observeUpdate(time.Now())
	name := strings.TrimSpace(p.Name)
	if name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidPlayer)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := strings.ToLower(name)
	if _, ok := s.names[key]; ok {
		return fmt.Errorf("%w: %s", ErrPlayerExists, name)
	}
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if _, ok := s.players[p.ID]; ok {
		return fmt.Errorf("%w: %s", ErrPlayerExists, p.ID)
	}
	now := s.opts.now()
	p.Name = name
	p.CreatedAt, p.UpdatedAt = now, now
	if p.StatsByLane == nil || p.StatsByChampion == nil {
		c := clonePlayer(p)
		p.StatsByLane, p.StatsByChampion = c.StatsByLane, c.StatsByChampion
	}
	s.players[p.ID] = clonePlayer(p)
	s.names[key] = p.ID
	return nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, id string) (*model.Player, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	return clonePlayer(p), nil
}

func (s *MemoryStore) GetPlayerByName(ctx context.Context, name string) (*model.Player, error) {
	s.mu.RLock()
	id, ok := s.names[strings.ToLower(strings.TrimSpace(name))]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, name)
	}
	return s.GetPlayer(ctx, id)
}

func (s *MemoryStore) ListPlayers(_ context.Context) ([]*model.Player, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		out = append(out, clonePlayer(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *MemoryStore) FindPlayers(_ context.Context, ids []string) ([]*model.Player, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.Player, 0, len(ids))
	for _, id := range ids {
		p, ok := s.players[id]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
		}
		out = append(out, clonePlayer(p))
	}
	return out, nil
}

func (s *MemoryStore) DeletePlayer(_ context.Context, id string) error {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	delete(s.names, strings.ToLower(p.Name))
	delete(s.players, id)
	return nil
}

func (s *MemoryStore) UpdateRiot(_ context.Context, id string, acct model.RiotAccount, rank *model.SoloRank) (*model.Player, error) {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.players[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	p.Riot = acct
	p.SoloRank = nil
	if rank != nil {
		r := *rank
		p.SoloRank = &r
	}
	p.UpdatedAt = s.opts.now()
	return clonePlayer(p), nil
}

func (s *MemoryStore) RecordGame(_ context.Context, g model.Game) error {
	defer observeUpdate(time.Now())
	if err := g.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.gameIDs[g.ID]; ok {
		return fmt.Errorf("%w: %s", ErrGameExists, g.ID)
	}
	updated := make([]*model.Player, 0, len(g.Participants))
	for _, part := range g.Participants {
		p, ok := s.players[part.PlayerID]
		if !ok {
			return fmt.Errorf("%w: %s", ErrPlayerNotFound, part.PlayerID)
		}
		c := clonePlayer(p)
		stats.Apply(c, &g, part)
		updated = append(updated, c)
	}
	for _, p := range updated {
		s.players[p.ID] = p
	}
	g = cloneGame(g)
	s.games = append(s.games, g)
	s.gameIDs[g.ID] = struct{}{}
	return nil
}

func (s *MemoryStore) ListGames(_ context.Context) ([]model.Game, error) {
	defer observeQuery(time.Now())
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Game, len(s.games))
	for i, g := range s.games {
		out[i] = cloneGame(g)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].PlayedAt.Before(out[j].PlayedAt) })
	return out, nil
}

func (s *MemoryStore) Recalculate(_ context.Context) (int, error) {
	defer observeUpdate(time.Now())
	s.mu.Lock()
	defer s.mu.Unlock()

	players := make([]*model.Player, 0, len(s.players))
	for _, p := range s.players {
		players = append(players, clonePlayer(p))
	}
	stats.Recalculate(players, s.games)
	now := s.opts.now()
	for _, p := range players {
		p.UpdatedAt = now
		s.players[p.ID] = p
	}
	return len(players), nil
}

func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

func (s *MemoryStore) Close() error { return nil }

func observeUpdate(start time.Time) {
	metrics.RecordRepositoryUpdateLatency(float64(time.Since(start).Microseconds()) / 1000)
}

func observeQuery(start time.Time) {
	metrics.RecordRepositoryQueryLatency(float64(time.Since(start).Microseconds()) / 1000)
}
