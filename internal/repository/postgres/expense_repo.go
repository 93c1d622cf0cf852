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

const expenseColumns = `id, description, amount, category, branch_id, created_at`

// ExpenseRepository implements domain.ExpenseRepository using PostgreSQL
type ExpenseRepository struct {
	pool *pgxpool.Pool
}

// NewExpenseRepository creates a new ExpenseRepository
func NewExpenseRepository(pool *pgxpool.Pool) *ExpenseRepository {
	return &ExpenseRepository{pool: pool}
}

func scanExpense(row pgx.Row) (*domain.Expense, error) {
	var e domain.Expense
	var category string
	if err := row.Scan(&e.ID, &e.Description, &e.Amount, &category, &e.BranchID, &e.CreatedAt); err != nil {
		return nil, err
	}
	e.Category = domain.ExpenseCategory(category)
	return &e, nil
}

func (r *ExpenseRepository) Create(ctx context.Context, expense *domain.Expense) (*domain.Expense, error) {
	created, err := scanExpense(getQuerier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO expenses (description, amount, category, branch_id)
		VALUES ($1, $2, $3, $4) RETURNING `+expenseColumns,
		expense.Description, expense.Amount, string(expense.Category), expense.BranchID))
	if err != nil {
		return nil, fmt.Errorf("create expense: %w", err)
	}
	return created, nil
}

func (r *ExpenseRepository) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	e, err := scanExpense(getQuerier(ctx, r.pool).QueryRow(ctx, `SELECT `+expenseColumns+` FROM expenses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrExpenseNotFound
		}
		return nil, fmt.Errorf("get expense: %w", err)
	}
	return e, nil
}

func (r *ExpenseRepository) Delete(ctx context.Context, id int64) error {
	tag, err := getQuerier(ctx, r.pool).Exec(ctx, `DELETE FROM expenses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrExpenseNotFound
	}
	return nil
}

func (r *ExpenseRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Expense, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx,
		`SELECT `+expenseColumns+` FROM expenses WHERE branch_id = $1 ORDER BY created_at DESC, id DESC`, branchID)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	return collect(rows, scanExpense)
}

// SumByMonth totals expenses created in a calendar month
func (r *ExpenseRepository) SumByMonth(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(amount) FROM expenses
		WHERE branch_id = $1 AND EXTRACT(YEAR FROM created_at) = $2 AND EXTRACT(MONTH FROM created_at) = $3`,
		branchID, year, month)
}

func (r *ExpenseRepository) SumByDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(amount) FROM expenses WHERE branch_id = $1 AND created_at BETWEEN $2 AND $3`,
		branchID, from, to)
}

func (r *ExpenseRepository) SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool), `SELECT SUM(amount) FROM expenses WHERE branch_id = $1`, branchID)
}
