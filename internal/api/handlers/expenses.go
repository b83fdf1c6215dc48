package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/smartsplit/expense-splitter/internal/api/httpx"
	"github.com/smartsplit/expense-splitter/internal/api/validate"
	"github.com/smartsplit/expense-splitter/internal/middleware"
	"github.com/smartsplit/expense-splitter/internal/models"
	"github.com/smartsplit/expense-splitter/internal/services"
)

type ExpenseHandler struct {
	Expenses *services.ExpenseService
	Groups   *services.GroupService
}

func NewExpenseHandler(es *services.ExpenseService, gs *services.GroupService) *ExpenseHandler {
	return &ExpenseHandler{Expenses: es, Groups: gs}
}

type expenseReq struct {
	GroupID        string          `json:"group_id"`
	PayerID        string          `json:"payer_id,omitempty"`
	Description    string          `json:"description"`
	Amount         decimal.Decimal `json:"amount"`
	Type           string          `json:"type,omitempty"`
	ParticipantIDs []string        `json:"participant_ids"`
}

func (h *ExpenseHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	var req expenseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	if req.PayerID == "" {
		req.PayerID = actor
	}
	if err := validate.Collect(
		validate.Required("group_id", req.GroupID),
		validate.Positive("amount", req.Amount),
		validate.NonEmptyList("participant_ids", len(req.ParticipantIDs)),
	); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation", err.Error(), err)
		return
	}
	if err := h.Groups.RequireMemberOrOwner(r.Context(), req.GroupID, actor); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	typ := models.ExpenseType(req.Type)
	if typ == "" {
		typ = models.ExpenseOther
	}
	e, err := h.Expenses.Create(r.Context(), models.Expense{
		GroupID:        req.GroupID,
		PayerID:        req.PayerID,
		Description:    req.Description,
		Amount:         req.Amount,
		Type:           typ,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, e)
}

func (h *ExpenseHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	e, err := h.Expenses.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	if err := h.Groups.RequireMemberOrOwner(r.Context(), e.GroupID, actor); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, e)
}

func (h *ExpenseHandler) Update(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	expenseID := chi.URLParam(r, "id")

	existing, err := h.Expenses.Get(r.Context(), expenseID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	if err := h.Groups.RequireMemberOrOwner(r.Context(), existing.GroupID, actor); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}

	var req expenseReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	if err := validate.Collect(
		validate.Positive("amount", req.Amount),
		validate.NonEmptyList("participant_ids", len(req.ParticipantIDs)),
	); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation", err.Error(), err)
		return
	}
	typ := models.ExpenseType(req.Type)
	if typ == "" {
		typ = existing.Type
	}
	e, err := h.Expenses.Update(r.Context(), models.Expense{
		ID:             expenseID,
		Description:    req.Description,
		Amount:         req.Amount,
		Type:           typ,
		ParticipantIDs: req.ParticipantIDs,
	})
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, e)
}

func (h *ExpenseHandler) Delete(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	expenseID := chi.URLParam(r, "id")

	existing, err := h.Expenses.Get(r.Context(), expenseID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	if err := h.Groups.RequireMemberOrOwner(r.Context(), existing.GroupID, actor); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	if err := h.Expenses.Delete(r.Context(), expenseID); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ExpenseHandler) ListByGroup(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	groupID := chi.URLParam(r, "id")
	if err := h.Groups.RequireMemberOrOwner(r.Context(), groupID, actor); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	limit, offset := pagination(r)
	list, err := h.Expenses.ListByGroup(r.Context(), groupID, limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}

// ListMine returns the expenses the acting user paid for across groups.
func (h *ExpenseHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	limit, offset := pagination(r)
	list, err := h.Expenses.ListByPayer(r.Context(), actor, limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, list)
}
