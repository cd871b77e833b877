package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	service "github.com/okian/riftbalance/internal/app"
	"github.com/okian/riftbalance/internal/domain/balance"
	"github.com/okian/riftbalance/internal/domain/model"
)

// BalanceDependencies defines the interface for team balancing.
type BalanceDependencies interface {
	Balance(ctx context.Context, mode balance.Mode, refs []service.PlayerRef) (balance.Result, error)
}

// BalanceHandler handles balance requests.
type BalanceHandler struct {
	deps BalanceDependencies
}

// NewBalanceHandler creates a new balance handler.
func NewBalanceHandler(deps BalanceDependencies) *BalanceHandler {
	return &BalanceHandler{deps: deps}
}

// balanceRequest mirrors the OpenAPI schema for POST /balance.
type balanceRequest struct {
	Mode    string          `json:"mode"`
	Players []playerRequest `json:"players"`
}

type playerRequest struct {
	ID            string `json:"id"`
	PrimaryRole   string `json:"primaryRole"`
	SecondaryRole string `json:"secondaryRole"`
}

func (b balanceRequest) refs() ([]service.PlayerRef, error) {
	out := make([]service.PlayerRef, len(b.Players))
	for i, p := range b.Players {
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return nil, fmt.Errorf("players[%d]: missing id", i)
		}
		primary, err := model.ParseLane(p.PrimaryRole)
		if err != nil {
			return nil, fmt.Errorf("players[%d].primaryRole: %w", i, err)
		}
		secondary, err := model.ParseLane(p.SecondaryRole)
		if err != nil {
			return nil, fmt.Errorf("players[%d].secondaryRole: %w", i, err)
		}
		out[i] = service.PlayerRef{ID: id, PrimaryRole: primary, SecondaryRole: secondary}
	}
	return out, nil
}

// HandleBalance returns a handler for POST /balance. A non-empty mode is
// fixed by the route and overrides the body.
func (h *BalanceHandler) HandleBalance(mode balance.Mode) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		const op = "api.balance"
		var req balanceRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		m := mode
		if m == "" {
			parsed, err := balance.ParseMode(req.Mode)
			if err != nil {
				writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
				return
			}
			m = parsed
		}
		refs, err := req.refs()
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
			return
		}
		res, err := h.deps.Balance(r.Context(), m, refs)
		if err != nil {
			writeServiceError(w, op, err)
			return
		}
		writeJSON(w, http.StatusOK, res)
	}
}
