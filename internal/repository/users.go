package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"shapechat/internal/domain"
)

const userColumns = "id, first_name, username, api_key, selected_shape_id, created_at, updated_at"

type Users struct {
	pool *pgxpool.Pool
}

func NewUsers(pool *pgxpool.Pool) *Users {
	return &Users{pool: pool}
}

// Upsert creates the user on first contact and refreshes the profile
// fields afterwards.
func (r *Users) Upsert(ctx context.Context, id int64, firstName, username string) (*domain.User, error) {
	const q = `
		INSERT INTO users (id, first_name, username)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET first_name = EXCLUDED.first_name,
		    username = EXCLUDED.username,
		    updated_at = now()
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, id, firstName, username))
}

func (r *Users) Get(ctx context.Context, id int64) (*domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(r.pool.QueryRow(ctx, q, id))
}

func (r *Users) SetAPIKey(ctx context.Context, id int64, apiKey string) error {
	const q = `UPDATE users SET api_key = $2, updated_at = now() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, apiKey); err != nil {
		return fmt.Errorf("set api key: %w", err)
	}
	return nil
}

func (r *Users) SetSelectedShape(ctx context.Context, id int64, shapeID *uuid.UUID) error {
	const q = `UPDATE users SET selected_shape_id = $2, updated_at = now() WHERE id = $1`
	if _, err := r.pool.Exec(ctx, q, id, shapeID); err != nil {
		return fmt.Errorf("set selected shape: %w", err)
	}
	return nil
}

func scanUser(row pgx.Row) (*domain.User, error) {
	var u domain.User
	err := row.Scan(&u.ID, &u.FirstName, &u.Username, &u.APIKey, &u.SelectedShapeID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &u, nil
}
