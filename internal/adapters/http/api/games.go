package api

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/okian/riftbalance/internal/domain/dedupe"
	"github.com/okian/riftbalance/internal/domain/model"
)

// GameDependencies defines the interface for game ingestion.
type GameDependencies interface {
	dedupe.Deduper
	ValidateGame(ctx context.Context, g *model.Game) error
	Enqueue(ctx context.Context, g model.Game) error
	ListGames(ctx context.Context) ([]model.Game, error)
}

// GamesHandler handles game submissions.
type GamesHandler struct {
	deps GameDependencies
}

// NewGamesHandler creates a new games handler.
func NewGamesHandler(deps GameDependencies) *GamesHandler {
	return &GamesHandler{deps: deps}
}

type ackResponse struct {
	Status    string `json:"status"`
	GameID    string `json:"gameId"`
	Duplicate bool   `json:"duplicate"`
}

// HandlePostGame handles POST /games requests. A game without an id gets a
// generated one and can therefore not be deduplicated on retry.
func (h *GamesHandler) HandlePostGame(w http.ResponseWriter, r *http.Request) {
	const op = "api.post_game"
	var g model.Game
	if err := json.NewDecoder(r.Body).Decode(&g); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	g.ID = strings.TrimSpace(g.ID)
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if err := h.deps.ValidateGame(r.Context(), &g); err != nil {
		writeServiceError(w, op, err)
		return
	}

	// Idempotency check - mark as seen first
	if h.deps.SeenAndRecord(r.Context(), g.ID) {
		writeJSON(w, http.StatusOK, ackResponse{Status: "duplicate", GameID: g.ID, Duplicate: true})
		return
	}

	if err := h.deps.Enqueue(r.Context(), g); err != nil {
		// Rollback the "seen" status since enqueue failed
		h.deps.Unrecord(r.Context(), g.ID)
		writeError(w, http.StatusTooManyRequests, "backpressure", WrapKind(op, ErrBackpressure, err))
		return
	}
	writeJSON(w, http.StatusAccepted, ackResponse{Status: "accepted", GameID: g.ID})
}

// HandleListGames handles GET /games, returning the recorded log oldest
// first.
func (h *GamesHandler) HandleListGames(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_games"
	games, err := h.deps.ListGames(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if games == nil {
		games = []model.Game{}
	}
	writeJSON(w, http.StatusOK, games)
}
