package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const groupSelect = `SELECT g.id, g.name, g.description, g.price, g.teacher_salary_per_student,
	g.teacher_id, COALESCE(t.first_name || ' ' || t.last_name, ''), g.branch_id,
	g.start_time, g.end_time, g.days_of_week,
	(SELECT COUNT(*) FROM group_memberships gm JOIN students s ON s.id = gm.student_id
	  WHERE gm.group_id = g.id AND s.state = 'ACTIVE'),
	g.created_at
FROM study_groups g
LEFT JOIN teachers t ON t.id = g.teacher_id`

// GroupRepository implements domain.GroupRepository using PostgreSQL
type GroupRepository struct {
	pool *pgxpool.Pool
}

// NewGroupRepository creates a new GroupRepository
func NewGroupRepository(pool *pgxpool.Pool) *GroupRepository {
	return &GroupRepository{pool: pool}
}

func scanGroup(row pgx.Row) (*domain.Group, error) {
	var g domain.Group
	var count int64
	if err := row.Scan(&g.ID, &g.Name, &g.Description, &g.Price, &g.TeacherSalaryPerStudent,
		&g.TeacherID, &g.TeacherName, &g.BranchID, &g.StartTime, &g.EndTime, &g.DaysOfWeek,
		&count, &g.CreatedAt); err != nil {
		return nil, err
	}
	g.StudentCount = int(count)
	return &g, nil
}

// GetByID retrieves a group by its ID
func (r *GroupRepository) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	g, err := scanGroup(getQuerier(ctx, r.pool).QueryRow(ctx, groupSelect+` WHERE g.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrGroupNotFound
		}
		return nil, fmt.Errorf("get group: %w", err)
	}
	return g, nil
}

// ListByBranch retrieves the groups of a branch, newest first
func (r *GroupRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Group, error) {
	return r.list(ctx, groupSelect+` WHERE g.branch_id = $1 ORDER BY g.created_at DESC, g.id DESC`, branchID)
}

// ListByTeacher retrieves the groups taught by a teacher, newest first
func (r *GroupRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*domain.Group, error) {
	return r.list(ctx, groupSelect+` WHERE g.teacher_id = $1 ORDER BY g.created_at DESC, g.id DESC`, teacherID)
}

// ListByStudent retrieves the groups a student is enrolled in, newest first
func (r *GroupRepository) ListByStudent(ctx context.Context, studentID int64) ([]*domain.Group, error) {
	return r.list(ctx, groupSelect+`
		JOIN group_memberships m ON m.group_id = g.id
		WHERE m.student_id = $1 ORDER BY g.created_at DESC, g.id DESC`, studentID)
}

func (r *GroupRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Group, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list groups: %w", err)
	}
	return collect(rows, scanGroup)
}
