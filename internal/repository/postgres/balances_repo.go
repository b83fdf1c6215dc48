package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartsplit/expense-splitter/internal/models"
	repo "github.com/smartsplit/expense-splitter/internal/repository"
)

type balancesRepo struct{ pool *pgxpool.Pool }

func (r *balancesRepo) ListForGroup(ctx context.Context, groupID string) ([]models.BalanceEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT group_id, debtor_id, creditor_id, amount, updated_at
		   FROM balances
		  WHERE group_id=$1`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (r *balancesRepo) ListForUser(ctx context.Context, userID string, limit, offset int) ([]models.BalanceEntry, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT group_id, debtor_id, creditor_id, amount, updated_at
		   FROM balances
		  WHERE debtor_id=$1 OR creditor_id=$1
		  ORDER BY updated_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

// WithTx runs fn inside a serializable transaction so the delete-then-recreate
// rewrite in OptimizeDebts is never observed half-done.
func (r *balancesRepo) WithTx(ctx context.Context, fn func(repo.BalanceTx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(&balanceTx{tx}); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

type balanceTx struct{ tx pgx.Tx }

func (b *balanceTx) Get(ctx context.Context, groupID, debtorID, creditorID string) (models.BalanceEntry, bool, error) {
	var e models.BalanceEntry
	err := b.tx.QueryRow(ctx,
		`SELECT group_id, debtor_id, creditor_id, amount, updated_at
		   FROM balances
		  WHERE group_id=$1 AND debtor_id=$2 AND creditor_id=$3
		  FOR UPDATE`,
		groupID, debtorID, creditorID,
	).Scan(&e.GroupID, &e.DebtorID, &e.CreditorID, &e.Amount, &e.UpdatedAt)
	if err == pgx.ErrNoRows {
		return models.BalanceEntry{}, false, nil
	}
	if err != nil {
		return models.BalanceEntry{}, false, err
	}
	return e, true, nil
}

func (b *balanceTx) Upsert(ctx context.Context, e models.BalanceEntry) error {
	_, err := b.tx.Exec(ctx,
		`INSERT INTO balances(group_id, debtor_id, creditor_id, amount, updated_at)
		 VALUES($1,$2,$3,$4, now())
		 ON CONFLICT (group_id, debtor_id, creditor_id)
		 DO UPDATE SET amount=EXCLUDED.amount, updated_at=now()`,
		e.GroupID, e.DebtorID, e.CreditorID, e.Amount,
	)
	return err
}

func (b *balanceTx) Delete(ctx context.Context, groupID, debtorID, creditorID string) error {
	_, err := b.tx.Exec(ctx,
		`DELETE FROM balances WHERE group_id=$1 AND debtor_id=$2 AND creditor_id=$3`,
		groupID, debtorID, creditorID,
	)
	return err
}

func (b *balanceTx) ListForGroup(ctx context.Context, groupID string) ([]models.BalanceEntry, error) {
	rows, err := b.tx.Query(ctx,
		`SELECT group_id, debtor_id, creditor_id, amount, updated_at
		   FROM balances
		  WHERE group_id=$1
		  FOR UPDATE`,
		groupID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanEntries(rows)
}

func (b *balanceTx) DeleteGroup(ctx context.Context, groupID string) error {
	_, err := b.tx.Exec(ctx, `DELETE FROM balances WHERE group_id=$1`, groupID)
	return err
}

func scanEntries(rows pgx.Rows) ([]models.BalanceEntry, error) {
	var out []models.BalanceEntry
	for rows.Next() {
		var e models.BalanceEntry
		if err := rows.Scan(&e.GroupID, &e.DebtorID, &e.CreditorID, &e.Amount, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
