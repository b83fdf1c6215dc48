package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/smartsplit/expense-splitter/internal/cache"
	"github.com/smartsplit/expense-splitter/internal/ledger"
	"github.com/smartsplit/expense-splitter/internal/metrics"
	"github.com/smartsplit/expense-splitter/internal/models"
	repo "github.com/smartsplit/expense-splitter/internal/repository"
	"github.com/smartsplit/expense-splitter/internal/worker"
)

// Delta is one directed debt adjustment. A plain delta accumulates onto the
// (debtor, creditor) edge; a compensating delta reverses a previously applied
// one: it reduces that edge and spills any excess onto the reverse edge.
type Delta struct {
	DebtorID     string
	CreditorID   string
	Amount       decimal.Decimal
	Compensating bool
}

// BalanceService is the single source of truth for who owes whom inside a
// group. All mutations run inside serializable store transactions with the
// touched rows locked, so concurrent deltas on the same edge serialize.
type BalanceService struct {
	balances repo.Balances
	groups   repo.Groups
	users    repo.Users
	audit    repo.AuditLogs
	wp       *worker.Pool
	cache    cache.Cache
}

func NewBalanceService(b repo.Balances, g repo.Groups, u repo.Users, a repo.AuditLogs, wp *worker.Pool, c cache.Cache) *BalanceService {
	if c == nil {
		c = cache.NewInMemoryCache()
	}
	return &BalanceService{balances: b, groups: g, users: u, audit: a, wp: wp, cache: c}
}

// ApplyDelta adds amount to the debt debtor owes creditor in the group,
// creating the entry when absent. It deliberately does not net against the
// opposite edge; both directions may coexist until OptimizeDebts runs.
func (s *BalanceService) ApplyDelta(ctx context.Context, groupID, debtorID, creditorID string, amount decimal.Decimal) error {
	return s.ApplyDeltas(ctx, groupID, []Delta{{DebtorID: debtorID, CreditorID: creditorID, Amount: amount}})
}

// ApplyDeltas applies a batch of deltas as one atomic unit. Expense creation,
// update and delete funnel all of their per-participant adjustments through a
// single call so the ledger is never observed with half an expense applied.
func (s *BalanceService) ApplyDeltas(ctx context.Context, groupID string, deltas []Delta) error {
	for _, d := range deltas {
		if d.Amount.Sign() <= 0 {
			return ledger.ErrInvalidAmount
		}
	}
	err := s.balances.WithTx(ctx, func(btx repo.BalanceTx) error {
		for _, d := range deltas {
			if err := s.applyOne(ctx, btx, groupID, d); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.cache.Invalidate(ctx, groupID)
	return nil
}

func (s *BalanceService) applyOne(ctx context.Context, btx repo.BalanceTx, groupID string, d Delta) error {
	if d.Compensating {
		return s.compensateOne(ctx, btx, groupID, d)
	}

	entry, found, err := btx.Get(ctx, groupID, d.DebtorID, d.CreditorID)
	if err != nil {
		return err
	}
	if found {
		entry.Amount = entry.Amount.Add(d.Amount)
		return btx.Upsert(ctx, entry)
	}

	// New edge: make sure group and both users exist before writing.
	if err := s.ensureGroup(ctx, groupID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, d.DebtorID); err != nil {
		return err
	}
	if err := s.ensureUser(ctx, d.CreditorID); err != nil {
		return err
	}
	return btx.Upsert(ctx, models.BalanceEntry{
		GroupID:    groupID,
		DebtorID:   d.DebtorID,
		CreditorID: d.CreditorID,
		Amount:     d.Amount,
	})
}

// compensateOne undoes a previously applied debt of debtor->creditor. The
// original edge is reduced first; anything left over lands on the reverse
// edge so net positions come out right even after partial settlements.
func (s *BalanceService) compensateOne(ctx context.Context, btx repo.BalanceTx, groupID string, d Delta) error {
	entry, found, err := btx.Get(ctx, groupID, d.DebtorID, d.CreditorID)
	if err != nil {
		return err
	}
	remaining := d.Amount
	if found {
		switch entry.Amount.Cmp(remaining) {
		case 1:
			entry.Amount = entry.Amount.Sub(remaining)
			return btx.Upsert(ctx, entry)
		case 0:
			return btx.Delete(ctx, groupID, d.DebtorID, d.CreditorID)
		case -1:
			remaining = remaining.Sub(entry.Amount)
			if err := btx.Delete(ctx, groupID, d.DebtorID, d.CreditorID); err != nil {
				return err
			}
		}
	}
	// Spill onto the reverse edge.
	return s.applyOne(ctx, btx, groupID, Delta{
		DebtorID:   d.CreditorID,
		CreditorID: d.DebtorID,
		Amount:     remaining,
	})
}

// Settle records a real payment against the exact (debtor, creditor) edge and
// returns the entry as it stood before the payment. Paying the entry down to
// zero removes it.
func (s *BalanceService) Settle(ctx context.Context, groupID, debtorID, creditorID string, amount decimal.Decimal) (models.BalanceEntry, error) {
	if amount.Sign() <= 0 {
		return models.BalanceEntry{}, ledger.ErrInvalidAmount
	}

	var preImage models.BalanceEntry
	err := s.balances.WithTx(ctx, func(btx repo.BalanceTx) error {
		entry, found, err := btx.Get(ctx, groupID, debtorID, creditorID)
		if err != nil {
			return err
		}
		if !found {
			return ledger.ErrNoOutstandingBalance
		}
		if amount.Cmp(entry.Amount) > 0 {
			return ledger.ErrAmountExceedsBalance
		}
		preImage = entry

		rest := entry.Amount.Sub(amount)
		if rest.Sign() == 0 {
			return btx.Delete(ctx, groupID, debtorID, creditorID)
		}
		entry.Amount = rest
		return btx.Upsert(ctx, entry)
	})
	if err != nil {
		return models.BalanceEntry{}, err
	}

	s.cache.Invalidate(ctx, groupID)
	s.auditAsync("balance", groupID, "settled", map[string]any{
		"debtor": debtorID, "creditor": creditorID, "amount": amount.String(),
	})
	return preImage, nil
}

// ListForGroup returns all ledger entries for a group, straight from the
// store, unordered.
func (s *BalanceService) ListForGroup(ctx context.Context, groupID string) ([]models.BalanceEntry, error) {
	if err := s.ensureGroup(ctx, groupID); err != nil {
		return nil, err
	}
	return s.balances.ListForGroup(ctx, groupID)
}

// ListForGroupCached serves the read-only balance summary endpoint. Mutating
// paths never consult the cache; they invalidate it.
func (s *BalanceService) ListForGroupCached(ctx context.Context, groupID string) ([]models.BalanceEntry, error) {
	if entries, ok := s.cache.GetGroupBalances(ctx, groupID); ok {
		return entries, nil
	}
	entries, err := s.ListForGroup(ctx, groupID)
	if err != nil {
		return nil, err
	}
	s.cache.SetGroupBalances(ctx, groupID, entries)
	return entries, nil
}

// ListForUser returns entries in which the user is debtor or creditor,
// newest first.
func (s *BalanceService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.BalanceEntry, error) {
	return s.balances.ListForUser(ctx, userID, limit, offset)
}

// OptimizeDebts replaces the group's debt graph with the simplified
// transaction set that preserves every user's net position. The dump,
// netting, simplification and full rewrite all happen inside one
// serializable transaction: a failure anywhere rolls the whole rewrite back
// and the pre-optimization ledger stays intact.
func (s *BalanceService) OptimizeDebts(ctx context.Context, groupID string) ([]ledger.Transaction, error) {
	var simplified []ledger.Transaction
	err := s.balances.WithTx(ctx, func(btx repo.BalanceTx) error {
		entries, err := btx.ListForGroup(ctx, groupID)
		if err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}

		simplified = ledger.Simplify(ledger.NetPositions(entries))

		if err := btx.DeleteGroup(ctx, groupID); err != nil {
			return err
		}
		for _, tx := range simplified {
			if err := btx.Upsert(ctx, models.BalanceEntry{
				GroupID:    groupID,
				DebtorID:   tx.FromUser,
				CreditorID: tx.ToUser,
				Amount:     tx.Amount,
			}); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		metrics.LedgerRewriteFailures.Inc()
		return nil, fmt.Errorf("optimize debts: %w", err)
	}

	metrics.DebtOptimizationsTotal.Inc()
	s.cache.Invalidate(ctx, groupID)
	s.auditAsync("group", groupID, "debts_optimized", map[string]any{
		"transactions": len(simplified),
	})
	return simplified, nil
}

func (s *BalanceService) ensureGroup(ctx context.Context, groupID string) error {
	ok, err := s.groups.Exists(ctx, groupID)
	if err != nil {
		return err
	}
	if !ok {
		return ledger.ErrGroupNotFound
	}
	return nil
}

func (s *BalanceService) ensureUser(ctx context.Context, userID string) error {
	ok, err := s.users.Exists(ctx, userID)
	if err != nil {
		return err
	}
	if !ok {
		return ledger.ErrUserNotFound
	}
	return nil
}

func (s *BalanceService) auditAsync(entityType, entityID, action string, details map[string]any) {
	if s.wp == nil || s.audit == nil {
		return
	}
	id := entityID
	s.wp.Submit(func() {
		_ = s.audit.Create(context.Background(), models.AuditLog{
			EntityType: entityType,
			EntityID:   &id,
			Action:     action,
			Details:    details,
		})
	})
}
