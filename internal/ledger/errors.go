// Package ledger holds the debt bookkeeping core: net-position aggregation,
// expense share math and the greedy debt simplifier. Everything here is pure;
// persistence lives behind the repository interfaces.
package ledger

import "errors"

var (
	ErrInvalidAmount        = errors.New("amount must be greater than zero")
	ErrNoOutstandingBalance = errors.New("no outstanding balance with the specified user in this group")
	ErrAmountExceedsBalance = errors.New("settlement amount exceeds the owed amount")

	ErrGroupNotFound      = errors.New("group not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrExpenseNotFound    = errors.New("expense not found")
	ErrSettlementNotFound = errors.New("settlement not found")

	ErrNotGroupMember = errors.New("user is not a member or owner of the group")
	ErrSelfSettlement = errors.New("cannot settle with yourself")
	ErrNoParticipants = errors.New("expense needs at least one participant")
)
