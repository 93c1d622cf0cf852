package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// BranchRepository implements domain.BranchRepository using PostgreSQL
type BranchRepository struct {
	pool *pgxpool.Pool
}

// NewBranchRepository creates a new BranchRepository
func NewBranchRepository(pool *pgxpool.Pool) *BranchRepository {
	return &BranchRepository{pool: pool}
}

// GetByID retrieves a branch by its ID
func (r *BranchRepository) GetByID(ctx context.Context, id int64) (*domain.Branch, error) {
	var b domain.Branch
	err := getQuerier(ctx, r.pool).QueryRow(ctx,
		`SELECT id, name, address, created_at FROM branches WHERE id = $1`, id,
	).Scan(&b.ID, &b.Name, &b.Address, &b.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrBranchNotFound
		}
		return nil, fmt.Errorf("get branch: %w", err)
	}
	return &b, nil
}
