package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const teacherColumns = `id, first_name, last_name, phone_number, email, branch_id, created_at`

// TeacherRepository implements domain.TeacherRepository using PostgreSQL
type TeacherRepository struct {
	pool *pgxpool.Pool
}

// NewTeacherRepository creates a new TeacherRepository
func NewTeacherRepository(pool *pgxpool.Pool) *TeacherRepository {
	return &TeacherRepository{pool: pool}
}

func scanTeacher(row pgx.Row) (*domain.Teacher, error) {
	var t domain.Teacher
	if err := row.Scan(&t.ID, &t.FirstName, &t.LastName, &t.PhoneNumber, &t.Email, &t.BranchID, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

// GetByID retrieves a teacher by its ID
func (r *TeacherRepository) GetByID(ctx context.Context, id int64) (*domain.Teacher, error) {
	row := getQuerier(ctx, r.pool).QueryRow(ctx, `SELECT `+teacherColumns+` FROM teachers WHERE id = $1`, id)
	t, err := scanTeacher(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTeacherNotFound
		}
		return nil, fmt.Errorf("get teacher: %w", err)
	}
	return t, nil
}

// ListByBranch retrieves all teachers of a branch, newest first
func (r *TeacherRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Teacher, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx,
		`SELECT `+teacherColumns+` FROM teachers WHERE branch_id = $1 ORDER BY created_at DESC, id DESC`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list teachers: %w", err)
	}
	return collect(rows, scanTeacher)
}
