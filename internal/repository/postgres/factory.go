// Package postgres implements the repository interfaces on top of a pgx
// connection pool.
package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/smartsplit/expense-splitter/internal/repository"
)

type Repositories struct {
	Users       repo.Users
	Groups      repo.Groups
	Expenses    repo.Expenses
	Settlements repo.Settlements
	Balances    repo.Balances
	AuditLogs   repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Users:       &usersRepo{pool},
		Groups:      &groupsRepo{pool},
		Expenses:    &expensesRepo{pool},
		Settlements: &settlementsRepo{pool},
		Balances:    &balancesRepo{pool},
		AuditLogs:   &auditLogsRepo{pool},
	}
}
