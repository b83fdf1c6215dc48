package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/smartsplit/expense-splitter/internal/ledger"
	"github.com/smartsplit/expense-splitter/internal/metrics"
	"github.com/smartsplit/expense-splitter/internal/models"
	repo "github.com/smartsplit/expense-splitter/internal/repository"
	"github.com/smartsplit/expense-splitter/internal/worker"
)

type ExpenseService struct {
	expenses repo.Expenses
	groups   repo.Groups
	users    repo.Users
	balances *BalanceService
	audit    repo.AuditLogs
	wp       *worker.Pool
}

func NewExpenseService(e repo.Expenses, g repo.Groups, u repo.Users, b *BalanceService, a repo.AuditLogs, wp *worker.Pool) *ExpenseService {
	return &ExpenseService{expenses: e, groups: g, users: u, balances: b, audit: a, wp: wp}
}

// Create records an expense and applies the per-participant ledger deltas:
// every participant other than the payer ends up owing the payer one share.
// Shares are rounded half-up to the cent, so the applied total may drift from
// the expense amount by up to (participants-1) cents; that drift is accepted,
// not corrected.
func (s *ExpenseService) Create(ctx context.Context, e models.Expense) (models.Expense, error) {
	if e.Amount.Sign() <= 0 {
		return models.Expense{}, ledger.ErrInvalidAmount
	}
	if len(e.ParticipantIDs) == 0 {
		return models.Expense{}, ledger.ErrNoParticipants
	}
	group, err := s.groups.GetByID(ctx, e.GroupID)
	if err != nil {
		return models.Expense{}, err
	}
	if !group.IsMemberOrOwner(e.PayerID) {
		return models.Expense{}, ledger.ErrNotGroupMember
	}
	for _, userID := range e.ParticipantIDs {
		ok, err := s.users.Exists(ctx, userID)
		if err != nil {
			return models.Expense{}, err
		}
		if !ok {
			return models.Expense{}, ledger.ErrUserNotFound
		}
	}

	deltas, err := expenseDeltas(e, false)
	if err != nil {
		return models.Expense{}, err
	}

	created, err := s.expenses.Create(ctx, e)
	if err != nil {
		return models.Expense{}, fmt.Errorf("create expense: %w", err)
	}
	if err := s.balances.ApplyDeltas(ctx, e.GroupID, deltas); err != nil {
		// The ledger rejected the whole batch atomically; drop the orphaned
		// expense row so the two stay consistent.
		if delErr := s.expenses.Delete(ctx, created.ID); delErr != nil {
			slog.Error("rollback expense after ledger failure", "expense_id", created.ID, "err", delErr)
		}
		return models.Expense{}, err
	}

	metrics.ExpensesTotal.Inc()
	s.auditAsync(created.ID, "created", map[string]any{
		"group": e.GroupID, "amount": e.Amount.String(),
	})
	return created, nil
}

// Update replaces an expense and keeps the ledger consistent: the old shares
// are compensated and the new ones applied in one atomic batch.
func (s *ExpenseService) Update(ctx context.Context, e models.Expense) (models.Expense, error) {
	if e.Amount.Sign() <= 0 {
		return models.Expense{}, ledger.ErrInvalidAmount
	}
	if len(e.ParticipantIDs) == 0 {
		return models.Expense{}, ledger.ErrNoParticipants
	}
	existing, err := s.expenses.GetByID(ctx, e.ID)
	if err != nil {
		return models.Expense{}, err
	}
	// Group and payer are fixed at creation.
	e.GroupID = existing.GroupID
	e.PayerID = existing.PayerID

	undo, err := expenseDeltas(existing, true)
	if err != nil {
		return models.Expense{}, err
	}
	apply, err := expenseDeltas(e, false)
	if err != nil {
		return models.Expense{}, err
	}

	// Row first, ledger second, like Create: the delta batch either commits
	// whole or leaves the ledger untouched, so on its failure the previous
	// row can simply be put back.
	if err := s.expenses.Update(ctx, e); err != nil {
		return models.Expense{}, fmt.Errorf("update expense: %w", err)
	}
	if err := s.balances.ApplyDeltas(ctx, e.GroupID, append(undo, apply...)); err != nil {
		if restoreErr := s.expenses.Update(ctx, existing); restoreErr != nil {
			slog.Error("restore expense after ledger failure", "expense_id", e.ID, "err", restoreErr)
		}
		return models.Expense{}, err
	}

	s.auditAsync(e.ID, "updated", map[string]any{
		"group": e.GroupID, "amount": e.Amount.String(),
	})
	return s.expenses.GetByID(ctx, e.ID)
}

// Delete removes an expense and compensates its ledger deltas.
func (s *ExpenseService) Delete(ctx context.Context, expenseID string) error {
	existing, err := s.expenses.GetByID(ctx, expenseID)
	if err != nil {
		return err
	}
	undo, err := expenseDeltas(existing, true)
	if err != nil {
		return err
	}
	if err := s.expenses.Delete(ctx, expenseID); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if err := s.balances.ApplyDeltas(ctx, existing.GroupID, undo); err != nil {
		if _, restoreErr := s.expenses.Create(ctx, existing); restoreErr != nil {
			slog.Error("restore expense after ledger failure", "expense_id", expenseID, "err", restoreErr)
		}
		return err
	}
	s.auditAsync(expenseID, "deleted", map[string]any{"group": existing.GroupID})
	return nil
}

func (s *ExpenseService) Get(ctx context.Context, expenseID string) (models.Expense, error) {
	return s.expenses.GetByID(ctx, expenseID)
}

func (s *ExpenseService) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]models.Expense, error) {
	ok, err := s.groups.Exists(ctx, groupID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ledger.ErrGroupNotFound
	}
	return s.expenses.ListByGroup(ctx, groupID, limit, offset)
}

func (s *ExpenseService) ListByPayer(ctx context.Context, payerID string, limit, offset int) ([]models.Expense, error) {
	return s.expenses.ListByPayer(ctx, payerID, limit, offset)
}

// expenseDeltas turns an expense into its ledger deltas. Shares too small to
// register at cent precision produce no delta.
func expenseDeltas(e models.Expense, compensating bool) ([]Delta, error) {
	share, err := ledger.Shares(e.Amount, len(e.ParticipantIDs))
	if err != nil {
		return nil, err
	}
	if share.Sign() == 0 {
		return nil, nil
	}
	var deltas []Delta
	for _, userID := range e.ParticipantIDs {
		if userID == e.PayerID {
			continue
		}
		deltas = append(deltas, Delta{
			DebtorID:     userID,
			CreditorID:   e.PayerID,
			Amount:       share,
			Compensating: compensating,
		})
	}
	return deltas, nil
}

func (s *ExpenseService) auditAsync(expenseID, action string, details map[string]any) {
	if s.wp == nil || s.audit == nil {
		return
	}
	id := expenseID
	s.wp.Submit(func() {
		_ = s.audit.Create(context.Background(), models.AuditLog{
			EntityType: "expense",
			EntityID:   &id,
			Action:     action,
			Details:    details,
		})
	})
}
