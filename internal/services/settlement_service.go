package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/smartsplit/expense-splitter/internal/ledger"
	"github.com/smartsplit/expense-splitter/internal/metrics"
	"github.com/smartsplit/expense-splitter/internal/models"
	repo "github.com/smartsplit/expense-splitter/internal/repository"
	"github.com/smartsplit/expense-splitter/internal/worker"
)

type SettlementService struct {
	settlements repo.Settlements
	users       repo.Users
	balances    *BalanceService
	audit       repo.AuditLogs
	wp          *worker.Pool
}

func NewSettlementService(s repo.Settlements, u repo.Users, b *BalanceService, a repo.AuditLogs, wp *worker.Pool) *SettlementService {
	return &SettlementService{settlements: s, users: u, balances: b, audit: a, wp: wp}
}

// Create records that payer handed payee real money, reducing the
// payer->payee ledger edge by the same amount. The payer is the acting user,
// passed in explicitly by the caller. Fails when there is no outstanding
// edge or the payment exceeds it; the settlement row is only written after
// the ledger accepted the reduction.
func (s *SettlementService) Create(ctx context.Context, payerID string, groupID, payeeID string, amount decimal.Decimal) (models.Settlement, error) {
	if payerID == payeeID {
		return models.Settlement{}, ledger.ErrSelfSettlement
	}
	ok, err := s.users.Exists(ctx, payeeID)
	if err != nil {
		return models.Settlement{}, err
	}
	if !ok {
		return models.Settlement{}, ledger.ErrUserNotFound
	}

	if _, err := s.balances.Settle(ctx, groupID, payerID, payeeID, amount); err != nil {
		return models.Settlement{}, err
	}

	created, err := s.settlements.Create(ctx, models.Settlement{
		GroupID: groupID,
		PayerID: payerID,
		PayeeID: payeeID,
		Amount:  amount,
	})
	if err != nil {
		return models.Settlement{}, fmt.Errorf("record settlement: %w", err)
	}

	metrics.SettlementsTotal.Inc()
	s.auditAsync(created.ID, "created", map[string]any{
		"group": groupID, "payee": payeeID, "amount": amount.String(),
	})
	return created, nil
}

// Undo deletes a settlement the actor took part in and restores the debt it
// had cleared, so the ledger does not silently drift. Only the payer or the
// payee of the settlement may undo it.
func (s *SettlementService) Undo(ctx context.Context, actorID, settlementID string) error {
	settlement, err := s.settlements.GetByID(ctx, settlementID)
	if err != nil {
		return err
	}
	if settlement.PayerID != actorID && settlement.PayeeID != actorID {
		return ledger.ErrNotGroupMember
	}

	if err := s.settlements.Delete(ctx, settlementID); err != nil {
		return fmt.Errorf("delete settlement: %w", err)
	}
	if err := s.balances.ApplyDelta(ctx, settlement.GroupID, settlement.PayerID, settlement.PayeeID, settlement.Amount); err != nil {
		if _, restoreErr := s.settlements.Create(ctx, settlement); restoreErr != nil {
			slog.Error("restore settlement after ledger failure", "settlement_id", settlementID, "err", restoreErr)
		}
		return err
	}
	s.auditAsync(settlementID, "undone", map[string]any{"group": settlement.GroupID})
	return nil
}

func (s *SettlementService) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.Settlement, error) {
	return s.settlements.ListByUser(ctx, userID, limit, offset)
}

func (s *SettlementService) auditAsync(settlementID, action string, details map[string]any) {
	if s.wp == nil || s.audit == nil {
		return
	}
	id := settlementID
	s.wp.Submit(func() {
		_ = s.audit.Create(context.Background(), models.AuditLog{
			EntityType: "settlement",
			EntityID:   &id,
			Action:     action,
			Details:    details,
		})
	})
}
