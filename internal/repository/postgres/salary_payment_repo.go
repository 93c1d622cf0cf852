package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const salaryPaymentSelect = `SELECT sp.id, sp.teacher_id, COALESCE(t.first_name || ' ' || t.last_name, ''),
	sp.year, sp.month, sp.amount, sp.description, sp.branch_id, COALESCE(b.name, ''), sp.created_at
FROM teacher_salary_payments sp
LEFT JOIN teachers t ON t.id = sp.teacher_id
LEFT JOIN branches b ON b.id = sp.branch_id`

const salaryPaymentOrder = ` ORDER BY sp.created_at DESC, sp.id DESC`

// SalaryPaymentRepository implements domain.SalaryPaymentRepository using PostgreSQL
type SalaryPaymentRepository struct {
	pool *pgxpool.Pool
}

// NewSalaryPaymentRepository creates a new SalaryPaymentRepository
func NewSalaryPaymentRepository(pool *pgxpool.Pool) *SalaryPaymentRepository {
	return &SalaryPaymentRepository{pool: pool}
}

func scanSalaryPayment(row pgx.Row) (*domain.SalaryPayment, error) {
	var p domain.SalaryPayment
	if err := row.Scan(&p.ID, &p.TeacherID, &p.TeacherName, &p.Year, &p.Month, &p.Amount,
		&p.Description, &p.BranchID, &p.BranchName, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// Create records a salary disbursement
func (r *SalaryPaymentRepository) Create(ctx context.Context, payment *domain.SalaryPayment) (*domain.SalaryPayment, error) {
	var id int64
	err := getQuerier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO teacher_salary_payments (teacher_id, year, month, amount, description, branch_id)
		VALUES ($1, $2, $3, $4, $5, $6) RETURNING id`,
		payment.TeacherID, payment.Year, payment.Month, payment.Amount, payment.Description, payment.BranchID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create salary payment: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *SalaryPaymentRepository) GetByID(ctx context.Context, id int64) (*domain.SalaryPayment, error) {
	p, err := scanSalaryPayment(getQuerier(ctx, r.pool).QueryRow(ctx, salaryPaymentSelect+` WHERE sp.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrSalaryPaymentNotFound
		}
		return nil, fmt.Errorf("get salary payment: %w", err)
	}
	return p, nil
}

func (r *SalaryPaymentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := getQuerier(ctx, r.pool).Exec(ctx, `DELETE FROM teacher_salary_payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete salary payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSalaryPaymentNotFound
	}
	return nil
}

func (r *SalaryPaymentRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.SalaryPayment, error) {
	return r.list(ctx, salaryPaymentSelect+` WHERE sp.branch_id = $1`+salaryPaymentOrder, branchID)
}

func (r *SalaryPaymentRepository) ListByTeacher(ctx context.Context, teacherID int64) ([]*domain.SalaryPayment, error) {
	return r.list(ctx, salaryPaymentSelect+` WHERE sp.teacher_id = $1`+salaryPaymentOrder, teacherID)
}

func (r *SalaryPaymentRepository) ListByTeacherAndPeriod(ctx context.Context, teacherID int64, year, month int) ([]*domain.SalaryPayment, error) {
	return r.list(ctx, salaryPaymentSelect+`
		WHERE sp.teacher_id = $1 AND sp.year = $2 AND sp.month = $3`+salaryPaymentOrder, teacherID, year, month)
}

func (r *SalaryPaymentRepository) list(ctx context.Context, query string, args ...any) ([]*domain.SalaryPayment, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list salary payments: %w", err)
	}
	return collect(rows, scanSalaryPayment)
}

// SumByTeacherAndPeriod totals what was disbursed to a teacher for a period
func (r *SalaryPaymentRepository) SumByTeacherAndPeriod(ctx context.Context, teacherID int64, year, month int) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(amount) FROM teacher_salary_payments WHERE teacher_id = $1 AND year = $2 AND month = $3`,
		teacherID, year, month)
}

// PeriodStats returns total, last payment time and count of a teacher's disbursements for a period
func (r *SalaryPaymentRepository) PeriodStats(ctx context.Context, teacherID int64, year, month int) (*domain.SalaryPeriodStats, error) {
	var stats domain.SalaryPeriodStats
	var count int64
	err := getQuerier(ctx, r.pool).QueryRow(ctx,
		`SELECT SUM(amount), MAX(created_at), COUNT(*) FROM teacher_salary_payments
		WHERE teacher_id = $1 AND year = $2 AND month = $3`,
		teacherID, year, month,
	).Scan(&stats.Total, &stats.LastPaymentDate, &count)
	if err != nil {
		return nil, fmt.Errorf("salary period stats: %w", err)
	}
	stats.Count = int(count)
	return &stats, nil
}

// DistinctPeriods lists every period with at least one disbursement, newest first
func (r *SalaryPaymentRepository) DistinctPeriods(ctx context.Context, teacherID int64) ([]domain.Period, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx,
		`SELECT DISTINCT year, month FROM teacher_salary_payments
		WHERE teacher_id = $1 ORDER BY year DESC, month DESC`, teacherID)
	if err != nil {
		return nil, fmt.Errorf("distinct salary periods: %w", err)
	}
	periods, err := pgx.CollectRows(rows, pgx.RowToStructByPos[domain.Period])
	if err != nil {
		return nil, fmt.Errorf("distinct salary periods: %w", err)
	}
	return periods, nil
}

// SumByBranchAndPeriod totals salary disbursed for a billing period
func (r *SalaryPaymentRepository) SumByBranchAndPeriod(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(amount) FROM teacher_salary_payments WHERE branch_id = $1 AND year = $2 AND month = $3`,
		branchID, year, month)
}

// SumByBranchAndDateRange totals salary disbursements recorded within [from, to]
func (r *SalaryPaymentRepository) SumByBranchAndDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(amount) FROM teacher_salary_payments WHERE branch_id = $1 AND created_at BETWEEN $2 AND $3`,
		branchID, from, to)
}

func (r *SalaryPaymentRepository) SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool), `SELECT SUM(amount) FROM teacher_salary_payments WHERE branch_id = $1`, branchID)
}
