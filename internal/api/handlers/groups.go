package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/smartsplit/expense-splitter/internal/api/httpx"
	"github.com/smartsplit/expense-splitter/internal/api/validate"
	"github.com/smartsplit/expense-splitter/internal/ledger"
	"github.com/smartsplit/expense-splitter/internal/middleware"
	"github.com/smartsplit/expense-splitter/internal/services"
)

type GroupHandler struct {
	Groups *services.GroupService
}

func NewGroupHandler(gs *services.GroupService) *GroupHandler {
	return &GroupHandler{Groups: gs}
}

type groupReq struct {
	Name string `json:"name"`
}

func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	var req groupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	if err := validate.Collect(validate.Required("name", req.Name)); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation", err.Error(), err)
		return
	}
	g, err := h.Groups.Create(r.Context(), actor, req.Name)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, g)
}

func (h *GroupHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	groupID := chi.URLParam(r, "id")
	if err := h.Groups.RequireMemberOrOwner(r.Context(), groupID, actor); err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	g, err := h.Groups.Get(r.Context(), groupID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) Rename(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	groupID := chi.URLParam(r, "id")
	var req groupReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid body", nil)
		return
	}
	// Only the owner may rename.
	g, err := h.Groups.Get(r.Context(), groupID)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	if g.OwnerID != actor {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "only the group owner can rename", nil)
		return
	}
	g, err = h.Groups.Rename(r.Context(), groupID, req.Name)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}

func (h *GroupHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	limit, offset := pagination(r)
	groups, err := h.Groups.ListForUser(r.Context(), actor, limit, offset)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, groups)
}

func (h *GroupHandler) Join(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	groupID := chi.URLParam(r, "id")
	g, err := h.Groups.Join(r.Context(), actor, groupID)
	if err != nil {
		if errors.Is(err, ledger.ErrGroupNotFound) {
			httpx.WriteServiceError(w, err)
			return
		}
		httpx.WriteError(w, http.StatusConflict, "conflict", err.Error(), nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, g)
}
