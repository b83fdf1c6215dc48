package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartsplit/expense-splitter/internal/ledger"
	"github.com/smartsplit/expense-splitter/internal/models"
)

type expensesRepo struct{ pool *pgxpool.Pool }

func (r *expensesRepo) Create(ctx context.Context, e models.Expense) (models.Expense, error) {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Expense{}, err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO expenses(id, group_id, payer_id, description, amount, expense_type)
		 VALUES($1,$2,$3,$4,$5,$6)`,
		e.ID, e.GroupID, e.PayerID, e.Description, e.Amount, e.Type,
	)
	if err != nil {
		return models.Expense{}, err
	}
	for _, userID := range e.ParticipantIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO expense_participants(expense_id, user_id) VALUES($1,$2)`,
			e.ID, userID,
		); err != nil {
			return models.Expense{}, err
		}
	}
	if err := tx.Commit(ctx); err != nil {
		return models.Expense{}, err
	}
	return r.GetByID(ctx, e.ID)
}

func (r *expensesRepo) GetByID(ctx context.Context, id string) (models.Expense, error) {
	var e models.Expense
	err := r.pool.QueryRow(ctx,
		`SELECT id, group_id, payer_id, description, amount, expense_type, created_at, updated_at
		   FROM expenses WHERE id=$1`, id,
	).Scan(&e.ID, &e.GroupID, &e.PayerID, &e.Description, &e.Amount, &e.Type, &e.CreatedAt, &e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Expense{}, ledger.ErrExpenseNotFound
	}
	if err != nil {
		return models.Expense{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM expense_participants WHERE expense_id=$1 ORDER BY user_id`, id)
	if err != nil {
		return models.Expense{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return models.Expense{}, err
		}
		e.ParticipantIDs = append(e.ParticipantIDs, userID)
	}
	return e, rows.Err()
}

func (r *expensesRepo) Update(ctx context.Context, e models.Expense) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`UPDATE expenses
		    SET description=$2, amount=$3, expense_type=$4, updated_at=now()
		  WHERE id=$1`,
		e.ID, e.Description, e.Amount, e.Type,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrExpenseNotFound
	}

	if _, err := tx.Exec(ctx, `DELETE FROM expense_participants WHERE expense_id=$1`, e.ID); err != nil {
		return err
	}
	for _, userID := range e.ParticipantIDs {
		if _, err := tx.Exec(ctx,
			`INSERT INTO expense_participants(expense_id, user_id) VALUES($1,$2)`,
			e.ID, userID,
		); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (r *expensesRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM expenses WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrExpenseNotFound
	}
	return nil
}

func (r *expensesRepo) ListByGroup(ctx context.Context, groupID string, limit, offset int) ([]models.Expense, error) {
	return r.list(ctx,
		`SELECT id, group_id, payer_id, description, amount, expense_type, created_at, updated_at
		   FROM expenses
		  WHERE group_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		groupID, limit, offset)
}

func (r *expensesRepo) ListByPayer(ctx context.Context, payerID string, limit, offset int) ([]models.Expense, error) {
	return r.list(ctx,
		`SELECT id, group_id, payer_id, description, amount, expense_type, created_at, updated_at
		   FROM expenses
		  WHERE payer_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		payerID, limit, offset)
}

func (r *expensesRepo) list(ctx context.Context, query string, args ...any) ([]models.Expense, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Expense
	for rows.Next() {
		var e models.Expense
		if err := rows.Scan(&e.ID, &e.GroupID, &e.PayerID, &e.Description, &e.Amount, &e.Type, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
