package domain

import (
	"context"
	"time"
)

// Branch is a physical business location and the unit of access control.
type Branch struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"createdAt"`
}

type BranchRepository interface {
	GetByID(ctx context.Context, id int64) (*Branch, error)
}
