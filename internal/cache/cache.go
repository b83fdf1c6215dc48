// Package cache provides a read-side cache for group balance summaries.
// It only ever serves the balance listing endpoint; every mutating or
// optimizing operation goes straight to the store and invalidates the
// group's cached summary on the way out.
package cache

import (
	"context"

	"github.com/smartsplit/expense-splitter/internal/models"
)

type Cache interface {
	// GetGroupBalances returns the cached summary for a group, if any.
	GetGroupBalances(ctx context.Context, groupID string) ([]models.BalanceEntry, bool)
	SetGroupBalances(ctx context.Context, groupID string, entries []models.BalanceEntry)
	Invalidate(ctx context.Context, groupID string)
}
