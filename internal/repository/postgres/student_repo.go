package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const studentColumns = `s.id, s.first_name, s.last_name, s.phone_number, s.parent_phone_number,
	s.branch_id, s.payment_day_of_month, s.state, s.created_at`

// StudentRepository implements domain.StudentRepository using PostgreSQL
type StudentRepository struct {
	pool *pgxpool.Pool
}

// NewStudentRepository creates a new StudentRepository
func NewStudentRepository(pool *pgxpool.Pool) *StudentRepository {
	return &StudentRepository{pool: pool}
}

func scanStudent(row pgx.Row) (*domain.Student, error) {
	var s domain.Student
	var payDay *int16
	var state string
	if err := row.Scan(&s.ID, &s.FirstName, &s.LastName, &s.PhoneNumber, &s.ParentPhoneNumber,
		&s.BranchID, &payDay, &state, &s.CreatedAt); err != nil {
		return nil, err
	}
	if payDay != nil {
		d := int(*payDay)
		s.PaymentDayOfMonth = &d
	}
	s.State = domain.StudentState(state)
	return &s, nil
}

// stateFilter renders the visibility as a SQL predicate on alias s.
func stateFilter(vis domain.Visibility) string {
	if vis == domain.IncludeDeleted {
		return "TRUE"
	}
	return "s.state = 'ACTIVE'"
}

func payDayParam(day *int) *int16 {
	if day == nil {
		return nil
	}
	d := int16(*day)
	return &d
}

// GetByID retrieves a student by its ID
func (r *StudentRepository) GetByID(ctx context.Context, id int64, vis domain.Visibility) (*domain.Student, error) {
	row := getQuerier(ctx, r.pool).QueryRow(ctx,
		`SELECT `+studentColumns+` FROM students s WHERE s.id = $1 AND `+stateFilter(vis), id)
	s, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("get student: %w", err)
	}
	return s, nil
}

// ListByBranch retrieves the students of a branch, newest first
func (r *StudentRepository) ListByBranch(ctx context.Context, branchID int64, vis domain.Visibility) ([]*domain.Student, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx,
		`SELECT `+studentColumns+` FROM students s
		WHERE s.branch_id = $1 AND `+stateFilter(vis)+`
		ORDER BY s.created_at DESC, s.id DESC`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list students: %w", err)
	}
	return collect(rows, scanStudent)
}

// ListByGroup retrieves the enrolled students of a group, newest first
func (r *StudentRepository) ListByGroup(ctx context.Context, groupID int64, vis domain.Visibility) ([]*domain.Student, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx,
		`SELECT `+studentColumns+` FROM students s
		JOIN group_memberships gm ON gm.student_id = s.id
		WHERE gm.group_id = $1 AND `+stateFilter(vis)+`
		ORDER BY s.created_at DESC, s.id DESC`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group students: %w", err)
	}
	return collect(rows, scanStudent)
}

// SearchByName finds active students whose "first last" name contains name, case-insensitively
func (r *StudentRepository) SearchByName(ctx context.Context, branchID int64, name string) ([]*domain.Student, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx,
		`SELECT `+studentColumns+` FROM students s
		WHERE s.branch_id = $1 AND s.state = 'ACTIVE'
		  AND (s.first_name || ' ' || s.last_name) ILIKE '%' || $2 || '%'
		ORDER BY s.created_at DESC, s.id DESC`, branchID, name)
	if err != nil {
		return nil, fmt.Errorf("search students: %w", err)
	}
	return collect(rows, scanStudent)
}

// ListRecent retrieves the most recently created active students
func (r *StudentRepository) ListRecent(ctx context.Context, branchID int64, limit int) ([]*domain.Student, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx,
		`SELECT `+studentColumns+` FROM students s
		WHERE s.branch_id = $1 AND s.state = 'ACTIVE'
		ORDER BY s.created_at DESC, s.id DESC
		LIMIT $2`, branchID, limit)
	if err != nil {
		return nil, fmt.Errorf("list recent students: %w", err)
	}
	return collect(rows, scanStudent)
}

// Create inserts an active student
func (r *StudentRepository) Create(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	row := getQuerier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO students AS s (first_name, last_name, phone_number, parent_phone_number, branch_id, payment_day_of_month, state)
		VALUES ($1, $2, $3, $4, $5, $6, 'ACTIVE')
		RETURNING `+studentColumns,
		student.FirstName, student.LastName, student.PhoneNumber, student.ParentPhoneNumber,
		student.BranchID, payDayParam(student.PaymentDayOfMonth))
	created, err := scanStudent(row)
	if err != nil {
		return nil, fmt.Errorf("create student: %w", err)
	}
	return created, nil
}

// Update overwrites the profile fields of an active student
func (r *StudentRepository) Update(ctx context.Context, student *domain.Student) (*domain.Student, error) {
	row := getQuerier(ctx, r.pool).QueryRow(ctx,
		`UPDATE students AS s SET first_name = $2, last_name = $3, phone_number = $4,
			parent_phone_number = $5, branch_id = $6, payment_day_of_month = $7
		WHERE s.id = $1 AND s.state = 'ACTIVE'
		RETURNING `+studentColumns,
		student.ID, student.FirstName, student.LastName, student.PhoneNumber,
		student.ParentPhoneNumber, student.BranchID, payDayParam(student.PaymentDayOfMonth))
	updated, err := scanStudent(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrStudentNotFound
		}
		return nil, fmt.Errorf("update student: %w", err)
	}
	return updated, nil
}

// SoftDelete marks a student DELETED; the row and its payments remain
func (r *StudentRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := getQuerier(ctx, r.pool).Exec(ctx,
		`UPDATE students SET state = 'DELETED' WHERE id = $1 AND state = 'ACTIVE'`, id)
	if err != nil {
		return fmt.Errorf("delete student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrStudentNotFound
	}
	return nil
}
