package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartsplit/expense-splitter/internal/api/httpx"
	"github.com/smartsplit/expense-splitter/internal/middleware"
	"github.com/smartsplit/expense-splitter/internal/services"
)

type BalanceHandler struct {
	Balances *services.BalanceService
	Groups   *services.GroupService
}

func NewBalanceHandler(bs *services.BalanceService, gs *services.GroupService) *BalanceHandler {
	return &BalanceHandler{Balances: bs, Groups: gs}
}

// ListForGroup serves the group's outstanding debts. Reads go through the
// cache; every mutation elsewhere invalidates it.
func (h *BalanceHandler) ListForGroup(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	groupID := chi.URLParam(r, "id")
	if err := h.Groups.RequireMemberOrOwner(r.Context(), groupID, actor); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	entries, err := h.Balances.ListForGroupCached(r.Context(), groupID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

// ListMine returns every entry the acting user appears in, either side.
func (h *BalanceHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	limit, offset := pagination(r)
	entries, err := h.Balances.ListForUser(r.Context(), actor, limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, entries)
}

// Optimize rewrites the group's debt graph into the minimal transfer set.
func (h *BalanceHandler) Optimize(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	groupID := chi.URLParam(r, "id")
	if err := h.Groups.RequireMemberOrOwner(r.Context(), groupID, actor); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	txs, err := h.Balances.OptimizeDebts(r.Context(), groupID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}
