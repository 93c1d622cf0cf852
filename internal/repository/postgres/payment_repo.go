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

const paymentSelect = `SELECT p.id, p.student_id, COALESCE(s.first_name || ' ' || s.last_name, ''),
	p.group_id, COALESCE(g.name, ''), p.amount, p.description, p.category, p.status,
	p.branch_id, COALESCE(b.name, ''), p.payment_year, p.payment_month, p.due_date, p.created_at
FROM payments p
LEFT JOIN students s ON s.id = p.student_id
LEFT JOIN study_groups g ON g.id = p.group_id
LEFT JOIN branches b ON b.id = p.branch_id`

const paymentOrder = ` ORDER BY p.created_at DESC, p.id DESC`

// PaymentRepository implements domain.PaymentRepository using PostgreSQL
type PaymentRepository struct {
	pool *pgxpool.Pool
}

// NewPaymentRepository creates a new PaymentRepository
func NewPaymentRepository(pool *pgxpool.Pool) *PaymentRepository {
	return &PaymentRepository{pool: pool}
}

func scanPayment(row pgx.Row) (*domain.Payment, error) {
	var p domain.Payment
	var category, status string
	if err := row.Scan(&p.ID, &p.StudentID, &p.StudentName, &p.GroupID, &p.GroupName, &p.Amount,
		&p.Description, &category, &status, &p.BranchID, &p.BranchName,
		&p.PaymentYear, &p.PaymentMonth, &p.DueDate, &p.CreatedAt); err != nil {
		return nil, err
	}
	p.Category = domain.PaymentCategory(category)
	p.Status = domain.PaymentRecordStatus(status)
	return &p, nil
}

// Create inserts a payment and returns it with names resolved
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.Payment) (*domain.Payment, error) {
	status := payment.Status
	if status == "" {
		status = domain.PaymentRecordCompleted
	}

	var id int64
	err := getQuerier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO payments (student_id, group_id, amount, description, category, status,
			branch_id, payment_year, payment_month, due_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id`,
		payment.StudentID, payment.GroupID, payment.Amount, payment.Description, string(payment.Category),
		string(status), payment.BranchID, payment.PaymentYear, payment.PaymentMonth, payment.DueDate,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create payment: %w", err)
	}
	return r.GetByID(ctx, id)
}

// GetByID retrieves a payment by its ID
func (r *PaymentRepository) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	p, err := scanPayment(getQuerier(ctx, r.pool).QueryRow(ctx, paymentSelect+` WHERE p.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrPaymentNotFound
		}
		return nil, fmt.Errorf("get payment: %w", err)
	}
	return p, nil
}

// UpdateAmount changes only the amount; the due date is historical and stays
func (r *PaymentRepository) UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) (*domain.Payment, error) {
	tag, err := getQuerier(ctx, r.pool).Exec(ctx, `UPDATE payments SET amount = $2 WHERE id = $1`, id, amount)
	if err != nil {
		return nil, fmt.Errorf("update payment amount: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrPaymentNotFound
	}
	return r.GetByID(ctx, id)
}

// Delete removes a payment
func (r *PaymentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := getQuerier(ctx, r.pool).Exec(ctx, `DELETE FROM payments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrPaymentNotFound
	}
	return nil
}

func (r *PaymentRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Payment, error) {
	return r.list(ctx, paymentSelect+` WHERE p.branch_id = $1`+paymentOrder, branchID)
}

func (r *PaymentRepository) ListByCategory(ctx context.Context, branchID int64, category domain.PaymentCategory) ([]*domain.Payment, error) {
	return r.list(ctx, paymentSelect+` WHERE p.branch_id = $1 AND p.category = $2`+paymentOrder, branchID, string(category))
}

func (r *PaymentRepository) ListByCategoryAndPeriod(ctx context.Context, branchID int64, category domain.PaymentCategory, year, month int) ([]*domain.Payment, error) {
	return r.list(ctx, paymentSelect+`
		WHERE p.branch_id = $1 AND p.category = $2 AND p.payment_year = $3 AND p.payment_month = $4`+paymentOrder,
		branchID, string(category), year, month)
}

func (r *PaymentRepository) ListByStudent(ctx context.Context, studentID int64) ([]*domain.Payment, error) {
	return r.list(ctx, paymentSelect+` WHERE p.student_id = $1`+paymentOrder, studentID)
}

// ListByDateRange retrieves payments created within [from, to]
func (r *PaymentRepository) ListByDateRange(ctx context.Context, branchID int64, from, to time.Time) ([]*domain.Payment, error) {
	return r.list(ctx, paymentSelect+`
		WHERE p.branch_id = $1 AND p.created_at BETWEEN $2 AND $3`+paymentOrder, branchID, from, to)
}

// ListByPeriod retrieves payments for a billing period
func (r *PaymentRepository) ListByPeriod(ctx context.Context, branchID int64, year, month int) ([]*domain.Payment, error) {
	return r.list(ctx, paymentSelect+`
		WHERE p.branch_id = $1 AND p.payment_year = $2 AND p.payment_month = $3`+paymentOrder, branchID, year, month)
}

// SearchByStudentName matches payments whose student's "first last" contains name, case-insensitively
func (r *PaymentRepository) SearchByStudentName(ctx context.Context, branchID int64, name string) ([]*domain.Payment, error) {
	return r.list(ctx, paymentSelect+`
		WHERE p.branch_id = $1 AND s.id IS NOT NULL
		  AND (s.first_name || ' ' || s.last_name) ILIKE '%' || $2 || '%'`+paymentOrder, branchID, name)
}

func (r *PaymentRepository) ListRecent(ctx context.Context, branchID int64, limit int) ([]*domain.Payment, error) {
	return r.list(ctx, paymentSelect+` WHERE p.branch_id = $1`+paymentOrder+` LIMIT $2`, branchID, limit)
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]*domain.Payment, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	return collect(rows, scanPayment)
}

// SumByStudentAndPeriod totals a student's payments across all groups for a billing period
func (r *PaymentRepository) SumByStudentAndPeriod(ctx context.Context, studentID int64, year, month int) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(amount) FROM payments WHERE student_id = $1 AND payment_year = $2 AND payment_month = $3`,
		studentID, year, month)
}

// SumByStudentGroupAndPeriod totals a student's payments to one group for a billing period
func (r *PaymentRepository) SumByStudentGroupAndPeriod(ctx context.Context, studentID, groupID int64, year, month int) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(amount) FROM payments
		WHERE student_id = $1 AND group_id = $2 AND payment_year = $3 AND payment_month = $4`,
		studentID, groupID, year, month)
}

// SumByStudentAndGroup totals every payment a student ever made to one group
func (r *PaymentRepository) SumByStudentAndGroup(ctx context.Context, studentID, groupID int64) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(amount) FROM payments WHERE student_id = $1 AND group_id = $2`, studentID, groupID)
}

// SumByBranchAndPeriod totals tuition for a billing period
func (r *PaymentRepository) SumByBranchAndPeriod(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(amount) FROM payments WHERE branch_id = $1 AND payment_year = $2 AND payment_month = $3`,
		branchID, year, month)
}

// SumByBranchAndDateRange totals tuition recorded within [from, to]
func (r *PaymentRepository) SumByBranchAndDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(amount) FROM payments WHERE branch_id = $1 AND created_at BETWEEN $2 AND $3`,
		branchID, from, to)
}

func (r *PaymentRepository) SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool), `SELECT SUM(amount) FROM payments WHERE branch_id = $1`, branchID)
}

// LastPaymentDate returns when the student last paid, or nil if never
func (r *PaymentRepository) LastPaymentDate(ctx context.Context, studentID int64) (*time.Time, error) {
	var last *time.Time
	err := getQuerier(ctx, r.pool).QueryRow(ctx,
		`SELECT MAX(created_at) FROM payments WHERE student_id = $1`, studentID).Scan(&last)
	if err != nil {
		return nil, fmt.Errorf("last payment date: %w", err)
	}
	return last, nil
}

// sum runs a single-value SUM query. No matching rows yields an invalid NullDecimal.
func sum(ctx context.Context, q Querier, query string, args ...any) (decimal.NullDecimal, error) {
	var total decimal.NullDecimal
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return decimal.NullDecimal{}, fmt.Errorf("sum query: %w", err)
	}
	return total, nil
}
