package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/smartsplit/expense-splitter/internal/ledger"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteServiceError maps the service error taxonomy onto HTTP statuses:
// not-found sentinels become 404, precondition failures 400, authorization
// failures 403, everything else an opaque 500.
func WriteServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrGroupNotFound),
		errors.Is(err, ledger.ErrUserNotFound),
		errors.Is(err, ledger.ErrExpenseNotFound),
		errors.Is(err, ledger.ErrSettlementNotFound):
		WriteError(w, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, ledger.ErrInvalidAmount),
		errors.Is(err, ledger.ErrNoOutstandingBalance),
		errors.Is(err, ledger.ErrAmountExceedsBalance),
		errors.Is(err, ledger.ErrSelfSettlement),
		errors.Is(err, ledger.ErrNoParticipants):
		WriteError(w, http.StatusBadRequest, "invalid_argument", err.Error(), nil)
	case errors.Is(err, ledger.ErrNotGroupMember):
		WriteError(w, http.StatusForbidden, "forbidden", err.Error(), nil)
	default:
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}
