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

type groupsRepo struct{ pool *pgxpool.Pool }

func (r *groupsRepo) Create(ctx context.Context, g models.Group) (models.Group, error) {
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx,
		`INSERT INTO groups(id, name, owner_id) VALUES($1,$2,$3)`,
		g.ID, g.Name, g.OwnerID,
	)
	if err != nil {
		return models.Group{}, err
	}
	return r.GetByID(ctx, g.ID)
}

func (r *groupsRepo) GetByID(ctx context.Context, id string) (models.Group, error) {
	var g models.Group
	err := r.pool.QueryRow(ctx,
		`SELECT id, name, owner_id, created_at, updated_at FROM groups WHERE id=$1`, id,
	).Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Group{}, ledger.ErrGroupNotFound
	}
	if err != nil {
		return models.Group{}, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT user_id FROM group_members WHERE group_id=$1 ORDER BY user_id`, id)
	if err != nil {
		return models.Group{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var userID string
		if err := rows.Scan(&userID); err != nil {
			return models.Group{}, err
		}
		g.MemberIDs = append(g.MemberIDs, userID)
	}
	return g, rows.Err()
}

func (r *groupsRepo) Update(ctx context.Context, g models.Group) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE groups SET name=$2, updated_at=now() WHERE id=$1`,
		g.ID, g.Name,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ledger.ErrGroupNotFound
	}
	return nil
}

func (r *groupsRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]models.Group, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT DISTINCT g.id, g.name, g.owner_id, g.created_at, g.updated_at
		   FROM groups g
		   LEFT JOIN group_members m ON m.group_id = g.id
		  WHERE g.owner_id=$1 OR m.user_id=$1
		  ORDER BY g.created_at DESC
		  LIMIT $2 OFFSET $3`,
		userID, limit, offset,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Group
	for rows.Next() {
		var g models.Group
		if err := rows.Scan(&g.ID, &g.Name, &g.OwnerID, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (r *groupsRepo) AddMember(ctx context.Context, groupID, userID string) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO group_members(group_id, user_id) VALUES($1,$2) ON CONFLICT DO NOTHING`,
		groupID, userID,
	)
	return err
}

func (r *groupsRepo) Exists(ctx context.Context, id string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM groups WHERE id=$1)`, id).Scan(&exists)
	return exists, err
}
