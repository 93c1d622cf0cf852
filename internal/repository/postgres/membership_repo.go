package postgres

import (
	"context"
	"fmt"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// MembershipRepository implements domain.MembershipRepository on the group_memberships join table
type MembershipRepository struct {
	pool *pgxpool.Pool
}

// NewMembershipRepository creates a new MembershipRepository
func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

func scanMembership(row pgx.Row) (*domain.GroupMembership, error) {
	var m domain.GroupMembership
	if err := row.Scan(&m.GroupID, &m.StudentID, &m.CreatedAt); err != nil {
		return nil, err
	}
	return &m, nil
}

// ListByBranch retrieves memberships of active students in the branch's groups
func (r *MembershipRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.GroupMembership, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx,
		`SELECT gm.group_id, gm.student_id, gm.created_at
		FROM group_memberships gm
		JOIN study_groups g ON g.id = gm.group_id
		JOIN students s ON s.id = gm.student_id
		WHERE g.branch_id = $1 AND s.state = 'ACTIVE'
		ORDER BY gm.created_at, gm.group_id, gm.student_id`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list branch memberships: %w", err)
	}
	return collect(rows, scanMembership)
}

// ListByGroup retrieves memberships of active students in one group
func (r *MembershipRepository) ListByGroup(ctx context.Context, groupID int64) ([]*domain.GroupMembership, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx,
		`SELECT gm.group_id, gm.student_id, gm.created_at
		FROM group_memberships gm
		JOIN students s ON s.id = gm.student_id
		WHERE gm.group_id = $1 AND s.state = 'ACTIVE'
		ORDER BY gm.created_at, gm.student_id`, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group memberships: %w", err)
	}
	return collect(rows, scanMembership)
}

// ListGroupIDs retrieves the ids of the groups a student belongs to
func (r *MembershipRepository) ListGroupIDs(ctx context.Context, studentID int64) ([]int64, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx,
		`SELECT group_id FROM group_memberships WHERE student_id = $1 ORDER BY created_at, group_id`, studentID)
	if err != nil {
		return nil, fmt.Errorf("list student group ids: %w", err)
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[int64])
	if err != nil {
		return nil, fmt.Errorf("list student group ids: %w", err)
	}
	return ids, nil
}

// IsMember reports whether the student is enrolled in the group
func (r *MembershipRepository) IsMember(ctx context.Context, groupID, studentID int64) (bool, error) {
	var exists bool
	err := getQuerier(ctx, r.pool).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM group_memberships WHERE group_id = $1 AND student_id = $2)`,
		groupID, studentID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check membership: %w", err)
	}
	return exists, nil
}

// Add enrolls a student; adding an existing membership is a no-op
func (r *MembershipRepository) Add(ctx context.Context, groupID, studentID int64) error {
	_, err := getQuerier(ctx, r.pool).Exec(ctx,
		`INSERT INTO group_memberships (group_id, student_id) VALUES ($1, $2)
		ON CONFLICT (group_id, student_id) DO NOTHING`, groupID, studentID)
	if err != nil {
		return fmt.Errorf("add membership: %w", err)
	}
	return nil
}

// Remove unenrolls a student from a group
func (r *MembershipRepository) Remove(ctx context.Context, groupID, studentID int64) error {
	_, err := getQuerier(ctx, r.pool).Exec(ctx,
		`DELETE FROM group_memberships WHERE group_id = $1 AND student_id = $2`, groupID, studentID)
	if err != nil {
		return fmt.Errorf("remove membership: %w", err)
	}
	return nil
}

// RemoveAllForStudent unenrolls a student from every group
func (r *MembershipRepository) RemoveAllForStudent(ctx context.Context, studentID int64) error {
	_, err := getQuerier(ctx, r.pool).Exec(ctx,
		`DELETE FROM group_memberships WHERE student_id = $1`, studentID)
	if err != nil {
		return fmt.Errorf("remove student memberships: %w", err)
	}
	return nil
}
