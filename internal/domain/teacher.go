package domain

import (
	"context"
	"strings"
	"time"
)

type Teacher struct {
	ID          int64     `json:"id"`
	FirstName   string    `json:"firstName"`
	LastName    string    `json:"lastName"`
	PhoneNumber string    `json:"phoneNumber"`
	Email       string    `json:"email"`
	BranchID    int64     `json:"branchId"`
	CreatedAt   time.Time `json:"createdAt"`
}

// FullName returns "first last".
func (t *Teacher) FullName() string {
	return strings.TrimSpace(t.FirstName + " " + t.LastName)
}

type TeacherRepository interface {
	GetByID(ctx context.Context, id int64) (*Teacher, error)
	ListByBranch(ctx context.Context, branchID int64) ([]*Teacher, error)
}
