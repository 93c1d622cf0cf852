package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ExpenseCategory string

const (
	ExpenseCategoryRent        ExpenseCategory = "RENT"
	ExpenseCategoryUtilities   ExpenseCategory = "UTILITIES"
	ExpenseCategorySupplies    ExpenseCategory = "SUPPLIES"
	ExpenseCategoryMarketing   ExpenseCategory = "MARKETING"
	ExpenseCategoryMaintenance ExpenseCategory = "MAINTENANCE"
	ExpenseCategoryOther       ExpenseCategory = "OTHER"
)

func ParseExpenseCategory(s string) (ExpenseCategory, error) {
	switch c := ExpenseCategory(strings.ToUpper(strings.TrimSpace(s))); c {
	case ExpenseCategoryRent, ExpenseCategoryUtilities, ExpenseCategorySupplies,
		ExpenseCategoryMarketing, ExpenseCategoryMaintenance, ExpenseCategoryOther:
		return c, nil
	}
	return "", ErrCategoryInvalid
}

// Expense is a regular operational expense of a branch.
type Expense struct {
	ID          int64           `json:"id"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Category    ExpenseCategory `json:"category"`
	BranchID    int64           `json:"branchId"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (e *Expense) Validate() error {
	if e.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountInvalid
	}
	if _, err := ParseExpenseCategory(string(e.Category)); err != nil {
		return err
	}
	return nil
}

type ExpenseRepository interface {
	Create(ctx context.Context, expense *Expense) (*Expense, error)
	GetByID(ctx context.Context, id int64) (*Expense, error)
	Delete(ctx context.Context, id int64) error
	ListByBranch(ctx context.Context, branchID int64) ([]*Expense, error)

	SumByMonth(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error)
	SumByDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error)
	SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error)
}

type ExpenseInput struct {
	Description string
	Amount      decimal.Decimal
	Category    string
	BranchID    int64
}
