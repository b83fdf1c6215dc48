// Package repository defines the persistence interfaces the services consume.
// Implementations live in the postgres subpackage; tests substitute in-memory
// fakes.
package repository

import (
	"context"

	"github.com/smartsplit/expense-splitter/internal/models"
)

type Users interface {
	Create(ctx context.Context, username, email, passwordHash string) (models.User, error)
	GetByID(ctx context.Context, id string) (models.User, error)
	GetByEmail(ctx context.Context, email string) (models.User, error)
	Exists(ctx context.Context, id string) (bool, error)
}

type Groups interface {
	Create(ctx context.Context, g models.Group) (models.Group, error)
	GetByID(ctx context.Context, id string) (models.Group, error)
	Update(ctx context.Context, g models.Group) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Group, error)
	AddMember(ctx context.Context, groupID, userID string) error
	Exists(ctx context.Context, id string) (bool, error)
}

type Expenses interface {
	Create(ctx context.Context, e models.Expense) (models.Expense, error)
	GetByID(ctx context.Context, id string) (models.Expense, error)
	Update(ctx context.Context, e models.Expense) error
	Delete(ctx context.Context, id string) error
	ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]models.Expense, error)
	ListByPayer(ctx context.Context, payerID string, limit, offset int) ([]models.Expense, error)
}

type Settlements interface {
	Create(ctx context.Context, s models.Settlement) (models.Settlement, error)
	GetByID(ctx context.Context, id string) (models.Settlement, error)
	Delete(ctx context.Context, id string) error
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Settlement, error)
}

// BalanceTx is a row-locked view of the balance ledger inside one store
// transaction. Get and ListForGroup take row locks so read-modify-write
// sequences on the same (group, debtor, creditor) key serialize; every
// mutation made through a BalanceTx commits or rolls back as one unit.
type BalanceTx interface {
	// Get returns the entry for the exact ordered (debtor, creditor) pair.
	// found is false when no such entry exists; that is not an error.
	Get(ctx context.Context, groupID, debtorID, creditorID string) (e models.BalanceEntry, found bool, err error)
	Upsert(ctx context.Context, e models.BalanceEntry) error
	Delete(ctx context.Context, groupID, debtorID, creditorID string) error
	ListForGroup(ctx context.Context, groupID string) ([]models.BalanceEntry, error)
	DeleteGroup(ctx context.Context, groupID string) error
}

type Balances interface {
	ListForGroup(ctx context.Context, groupID string) ([]models.BalanceEntry, error)
	ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.BalanceEntry, error)

	// WithTx runs fn against a BalanceTx inside a single serializable store
	// transaction. Any error from fn rolls the whole unit back.
	WithTx(ctx context.Context, fn func(BalanceTx) error) error
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}
