package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/okian/riftbalance/internal/domain/model"
	"github.com/okian/riftbalance/internal/domain/stats"
)

// PlayerDependencies defines the interface for roster operations.
type PlayerDependencies interface {
	CreatePlayer(ctx context.Context, name, gameName, tagLine string) (*model.Player, error)
	GetPlayer(ctx context.Context, id string) (*model.Player, error)
	PlayerByName(ctx context.Context, name string) (*model.Player, error)
	ListPlayers(ctx context.Context) ([]*model.Player, error)
	DeletePlayer(ctx context.Context, id string) error
	Synergy(ctx context.Context, id string) (stats.Synergy, error)
	SyncRiot(ctx context.Context, id, gameName, tagLine string) (*model.Player, error)
	Recalculate(ctx context.Context) (int, error)
}

// PlayersHandler handles /players requests.
type PlayersHandler struct {
	deps PlayerDependencies
}

// NewPlayersHandler creates a new players handler.
func NewPlayersHandler(deps PlayerDependencies) *PlayersHandler {
	return &PlayersHandler{deps: deps}
}

type createPlayerRequest struct {
	Name     string `json:"name"`
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

func (c createPlayerRequest) validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return errors.New("missing name")
	}
	if (strings.TrimSpace(c.GameName) == "") != (strings.TrimSpace(c.TagLine) == "") {
		return errors.New("gameName and tagLine must be set together")
	}
	return nil
}

type riotIDRequest struct {
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
}

type recalculateResponse struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
}

// HandleList handles GET /players.
func (h *PlayersHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	const op = "api.list_players"
	players, err := h.deps.ListPlayers(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, players)
}

// HandleCreate handles POST /players.
func (h *PlayersHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	const op = "api.create_player"
	var req createPlayerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := req.validate(); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.CreatePlayer(r.Context(), req.Name, req.GameName, req.TagLine)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleGet handles GET /players/{id}.
func (h *PlayersHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_player"
	p, err := h.deps.GetPlayer(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleStatsByName handles GET /players/{name}/stats. Names match
// case-insensitively.
func (h *PlayersHandler) HandleStatsByName(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_stats"
	p, err := h.deps.PlayerByName(r.Context(), r.PathValue("name"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleDelete handles DELETE /players/{id}.
func (h *PlayersHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	const op = "api.delete_player"
	if err := h.deps.DeletePlayer(r.Context(), r.PathValue("id")); err != nil {
		writeServiceError(w, op, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleSynergy handles GET /players/{id}/synergy.
func (h *PlayersHandler) HandleSynergy(w http.ResponseWriter, r *http.Request) {
	const op = "api.player_synergy"
	s, err := h.deps.Synergy(r.Context(), r.PathValue("id"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, s)
}

// HandleSyncRiot handles POST /players/{id}/sync-riot. The body is optional
// and replaces the stored Riot ID when present.
func (h *PlayersHandler) HandleSyncRiot(w http.ResponseWriter, r *http.Request) {
	const op = "api.sync_riot"
	var req riotIDRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	p, err := h.deps.SyncRiot(r.Context(), r.PathValue("id"), req.GameName, req.TagLine)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// HandleRecalculate handles POST /players/recalculate.
func (h *PlayersHandler) HandleRecalculate(w http.ResponseWriter, r *http.Request) {
	const op = "api.recalculate"
	n, err := h.deps.Recalculate(r.Context())
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, recalculateResponse{Status: "recalculated", Players: n})
}
