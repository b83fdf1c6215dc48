package handlers

import (
	"net/http"

	"github.com/smartsplit/expense-splitter/internal/api/httpx"
	"github.com/smartsplit/expense-splitter/internal/middleware"
	"github.com/smartsplit/expense-splitter/internal/services"
)

type UserHandler struct {
	Users *services.UserService
}

func NewUserHandler(us *services.UserService) *UserHandler {
	return &UserHandler{Users: us}
}

func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	actor, _ := middleware.UserID(r.Context())
	u, err := h.Users.Get(r.Context(), actor)
	if err != nil {
		httpx.WriteServiceError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}
