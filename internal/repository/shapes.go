package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"shapechat/internal/domain"
)

const shapeColumns = "id, owner_id, name, reference_url, created_at"

type Shapes struct {
	pool *pgxpool.Pool
}

func NewShapes(pool *pgxpool.Pool) *Shapes {
	return &Shapes{pool: pool}
}

func (r *Shapes) Create(ctx context.Context, shape domain.Shape) error {
	const q = `
		INSERT INTO shapes (id, owner_id, name, reference_url)
		VALUES ($1, $2, $3, $4)`
	if _, err := r.pool.Exec(ctx, q, shape.ID, shape.OwnerID, shape.Name, shape.ReferenceURL); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domain.ErrShapeExists
		}
		return fmt.Errorf("create shape: %w", err)
	}
	return nil
}

func (r *Shapes) Get(ctx context.Context, id uuid.UUID) (*domain.Shape, error) {
	const q = `SELECT ` + shapeColumns + ` FROM shapes WHERE id = $1`
	return scanShape(r.pool.QueryRow(ctx, q, id))
}

func (r *Shapes) ListByOwner(ctx context.Context, ownerID int64) ([]domain.Shape, error) {
	const q = `SELECT ` + shapeColumns + ` FROM shapes WHERE owner_id = $1 ORDER BY created_at`
	rows, err := r.pool.Query(ctx, q, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list shapes: %w", err)
	}
	defer rows.Close()

	var shapes []domain.Shape
	for rows.Next() {
		var s domain.Shape
		if err := rows.Scan(&s.ID, &s.OwnerID, &s.Name, &s.ReferenceURL, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan shape: %w", err)
		}
		shapes = append(shapes, s)
	}
	return shapes, rows.Err()
}

func (r *Shapes) CountByOwner(ctx context.Context, ownerID int64) (int64, error) {
	const q = `SELECT count(*) FROM shapes WHERE owner_id = $1`
	var count int64
	if err := r.pool.QueryRow(ctx, q, ownerID).Scan(&count); err != nil {
		return 0, fmt.Errorf("count shapes: %w", err)
	}
	return count, nil
}

func (r *Shapes) Delete(ctx context.Context, ownerID int64, id uuid.UUID) error {
	const q = `DELETE FROM shapes WHERE id = $1 AND owner_id = $2`
	tag, err := r.pool.Exec(ctx, q, id, ownerID)
	if err != nil {
		return fmt.Errorf("delete shape: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrShapeNotFound
	}
	return nil
}

func scanShape(row pgx.Row) (*domain.Shape, error) {
	var s domain.Shape
	err := row.Scan(&s.ID, &s.OwnerID, &s.Name, &s.ReferenceURL, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrShapeNotFound
		}
		return nil, fmt.Errorf("scan shape: %w", err)
	}
	return &s, nil
}
