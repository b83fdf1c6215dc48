package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/smartsplit/expense-splitter/internal/api/httpx"
	"github.com/smartsplit/expense-splitter/internal/api/validate"
	"github.com/smartsplit/expense-splitter/internal/middleware"
	"github.com/smartsplit/expense-splitter/internal/services"
)

type SettlementHandler struct {
	Settlements *services.SettlementService
	Groups      *services.GroupService
}

func NewSettlementHandler(ss *services.SettlementService, gs *services.GroupService) *SettlementHandler {
	return &SettlementHandler{Settlements: ss, Groups: gs}
}

type settlementReq struct {
	GroupID string          `json:"group_id"`
	PayeeID string          `json:"payee_id"`
	Amount  decimal.Decimal `json:"amount"`
}

// Create records that the acting user paid the payee, reducing the debt the
// actor owes them in this group.
func (h *SettlementHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	var req settlementReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	if err := validate.Collect(
		validate.Required("group_id", req.GroupID),
		validate.Required("payee_id", req.PayeeID),
		validate.Positive("amount", req.Amount),
	); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation", err.Error(), err)
		return
	}
	if err := h.Groups.RequireMemberOrOwner(r.Context(), req.GroupID, actor); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	s, err := h.Settlements.Create(r.Context(), actor, req.GroupID, req.PayeeID, req.Amount)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, s)
}

func (h *SettlementHandler) Undo(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	if err := h.Settlements.Undo(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SettlementHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	limit, offset := pagination(r)
	list, err := h.Settlements.ListForUser(r.Context(), actor, limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
