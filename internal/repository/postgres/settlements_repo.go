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

type settlementsRepo struct{ pool *pgxpool.Pool }

func (r *settlementsRepo) Create(ctx context.Context, s models.Settlement) (models.Settlement, error) {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO settlements(id, group_id, payer_id, payee_id, amount)
		 VALUES($1,$2,$3,$4,$5)
		 RETURNING id, group_id, payer_id, payee_id, amount, created_at`,
		s.ID, s.GroupID, s.PayerID, s.PayeeID, s.Amount,
	).Scan(&s.ID, &s.GroupID, &s.PayerID, &s.PayeeID, &s.Amount, &s.CreatedAt)
	return s, err
}

func (r *settlementsRepo) GetByID(ctx context.Context, id string) (models.Settlement, error) {
	var s models.Settlement
	err := r.pool.QueryRow(ctx,
		`SELECT id, group_id, payer_id, payee_id, amount, created_at FROM settlements WHERE id=$1`, id,
	).Scan(&s.ID, &s.GroupID, &s.PayerID, &s.PayeeID, &s.Amount, &s.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Settlement{}, ledger.ErrSettlementNotFound
	}
	return s, err
}

func (r *settlementsRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM settlements WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrSettlementNotFound
	}
	return nil
}

func (r *settlementsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Settlement, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, group_id, payer_id, payee_id, amount, created_at
		   FROM settlements
		  WHERE payer_id=$1 OR payee_id=$1
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Settlement
	for rows.Next() {
		var s models.Settlement
		if err := rows.Scan(&s.ID, &s.GroupID, &s.PayerID, &s.PayeeID, &s.Amount, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
