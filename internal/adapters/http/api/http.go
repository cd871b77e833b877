// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/okian/riftbalance/internal/adapters/repository"
	"github.com/okian/riftbalance/internal/adapters/riot"
	service "github.com/okian/riftbalance/internal/app"
	"github.com/okian/riftbalance/internal/domain/balance"
	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	BalanceDependencies
	PlayerDependencies
	GameDependencies
	LeaderboardDependencies
	RankDependencies
}

// Entry mirrors the read shape returned by leaderboard queries.
type Entry = types.Entry

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	balanceHandler     *BalanceHandler
	playersHandler     *PlayersHandler
	gamesHandler       *GamesHandler
	leaderboardHandler *LeaderboardHandler
	rankHandler        *RankHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider, maxLeaderboardLimit int) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		balanceHandler:     NewBalanceHandler(deps),
		playersHandler:     NewPlayersHandler(deps),
		gamesHandler:       NewGamesHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, maxLeaderboardLimit),
		rankHandler:        NewRankHandler(deps),
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(_ context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	mux.HandleFunc("POST /balance", MetricsMiddleware(s.balanceHandler.HandleBalance(""), "balance"))
	mux.HandleFunc("POST /balance/lanes", MetricsMiddleware(s.balanceHandler.HandleBalance(balance.ModeLanes), "balance_lanes"))
	mux.HandleFunc("POST /balance/rank", MetricsMiddleware(s.balanceHandler.HandleBalance(balance.ModeRank), "balance_rank"))

	mux.HandleFunc("GET /players", MetricsMiddleware(s.playersHandler.HandleList, "players"))
	mux.HandleFunc("POST /players", MetricsMiddleware(s.playersHandler.HandleCreate, "players"))
	mux.HandleFunc("POST /players/recalculate", MetricsMiddleware(s.playersHandler.HandleRecalculate, "players_recalculate"))
	mux.HandleFunc("GET /players/{id}", MetricsMiddleware(s.playersHandler.HandleGet, "player"))
	mux.HandleFunc("DELETE /players/{id}", MetricsMiddleware(s.playersHandler.HandleDelete, "player"))
	mux.HandleFunc("GET /players/{name}/stats", MetricsMiddleware(s.playersHandler.HandleStatsByName, "player_stats"))
	mux.HandleFunc("GET /players/{id}/synergy", MetricsMiddleware(s.playersHandler.HandleSynergy, "player_synergy"))
	mux.HandleFunc("POST /players/{id}/sync-riot", MetricsMiddleware(s.playersHandler.HandleSyncRiot, "player_sync_riot"))

	mux.HandleFunc("GET /games", MetricsMiddleware(s.gamesHandler.HandleListGames, "games"))
	mux.HandleFunc("POST /games", MetricsMiddleware(s.gamesHandler.HandlePostGame, "games"))
	mux.HandleFunc("GET /leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
	mux.HandleFunc("GET /rank/{id}", MetricsMiddleware(s.rankHandler.HandleGetRank, "rank"))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	noteErrorCode(w, code)
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError maps domain and adapter errors to a status and code.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	status, code := classify(err)
	writeError(w, status, code, Wrap(op, err))
}

func classify(err error) (int, string) {
	switch {
	case errors.Is(err, balance.ErrInvalidPlayerCount):
		return http.StatusBadRequest, "invalid_player_count"
	case errors.Is(err, balance.ErrDuplicatePlayer):
		return http.StatusBadRequest, "duplicate_player"
	case errors.Is(err, balance.ErrUnresolvedPlayer),
		errors.Is(err, repository.ErrPlayerNotFound):
		return http.StatusNotFound, "player_not_found"
	case errors.Is(err, balance.ErrInvalidMode),
		errors.Is(err, ErrBadRequest),
		errors.Is(err, repository.ErrInvalidPlayer),
		errors.Is(err, service.ErrInvalidLimit),
		errors.Is(err, service.ErrMissingRiotID),
		errors.Is(err, model.ErrInvalidGame),
		errors.Is(err, model.ErrInvalidSide),
		errors.Is(err, model.ErrInvalidLane),
		errors.Is(err, model.ErrInvalidTier),
		errors.Is(err, model.ErrInvalidDivision):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, repository.ErrPlayerExists):
		return http.StatusConflict, "player_exists"
	case errors.Is(err, ErrNotFound), errors.Is(err, riot.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, ErrBackpressure), errors.Is(err, service.ErrBackpressure):
		return http.StatusTooManyRequests, "backpressure"
	case errors.Is(err, service.ErrRiotDisabled), errors.Is(err, riot.ErrNoAPIKey):
		return http.StatusServiceUnavailable, "riot_disabled"
	case errors.Is(err, riot.ErrRateLimited), errors.Is(err, riot.ErrUpstream):
		return http.StatusBadGateway, "riot_unavailable"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}
