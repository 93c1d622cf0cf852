package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentCategory string

const (
	PaymentCategoryCash     PaymentCategory = "CASH"
	PaymentCategoryCard     PaymentCategory = "CARD"
	PaymentCategoryTransfer PaymentCategory = "TRANSFER"
)

// ParsePaymentCategory accepts any letter case.
func ParsePaymentCategory(s string) (PaymentCategory, error) {
	switch c := PaymentCategory(strings.ToUpper(strings.TrimSpace(s))); c {
	case PaymentCategoryCash, PaymentCategoryCard, PaymentCategoryTransfer:
		return c, nil
	}
	return "", ErrCategoryInvalid
}

// PaymentRecordStatus is the stored state of a payment row. Only COMPLETED is written today.
type PaymentRecordStatus string

const (
	PaymentRecordCompleted PaymentRecordStatus = "COMPLETED"
	PaymentRecordCancelled PaymentRecordStatus = "CANCELLED"
)

// Payment is a tuition payment for one group and one billing period.
// DueDate is fixed at creation and never recomputed.
type Payment struct {
	ID           int64               `json:"id"`
	StudentID    *int64              `json:"studentId,omitempty"`
	StudentName  string              `json:"studentName,omitempty"`
	GroupID      int64               `json:"groupId"`
	GroupName    string              `json:"groupName,omitempty"`
	Amount       decimal.Decimal     `json:"amount"`
	Description  string              `json:"description"`
	Category     PaymentCategory     `json:"category"`
	Status       PaymentRecordStatus `json:"status"`
	BranchID     int64               `json:"branchId"`
	BranchName   string              `json:"branchName,omitempty"`
	PaymentYear  int                 `json:"paymentYear"`
	PaymentMonth int                 `json:"paymentMonth"`
	DueDate      time.Time           `json:"dueDate"`
	CreatedAt    time.Time           `json:"createdAt"`
}

func (p *Payment) Validate() error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountInvalid
	}
	if p.PaymentMonth < 1 || p.PaymentMonth > 12 {
		return ErrPeriodInvalid
	}
	if _, err := ParsePaymentCategory(string(p.Category)); err != nil {
		return err
	}
	return nil
}

// PaymentInput is the caller-supplied part of a new payment.
type PaymentInput struct {
	StudentID    int64
	GroupID      int64
	BranchID     int64
	Amount       decimal.Decimal
	Description  string
	Category     string
	PaymentYear  int
	PaymentMonth int
}

// PaymentRepository stores tuition payments. Lists are ordered by creation time, newest first,
// with student, group and branch names resolved. Sums return an invalid NullDecimal when no rows match.
type PaymentRepository interface {
	Create(ctx context.Context, payment *Payment) (*Payment, error)
	GetByID(ctx context.Context, id int64) (*Payment, error)
	UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) (*Payment, error)
	Delete(ctx context.Context, id int64) error

	ListByBranch(ctx context.Context, branchID int64) ([]*Payment, error)
	ListByCategory(ctx context.Context, branchID int64, category PaymentCategory) ([]*Payment, error)
	ListByCategoryAndPeriod(ctx context.Context, branchID int64, category PaymentCategory, year, month int) ([]*Payment, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*Payment, error)
	ListByDateRange(ctx context.Context, branchID int64, from, to time.Time) ([]*Payment, error)
	ListByPeriod(ctx context.Context, branchID int64, year, month int) ([]*Payment, error)
	SearchByStudentName(ctx context.Context, branchID int64, name string) ([]*Payment, error)
	ListRecent(ctx context.Context, branchID int64, limit int) ([]*Payment, error)

	SumByStudentAndPeriod(ctx context.Context, studentID int64, year, month int) (decimal.NullDecimal, error)
	SumByStudentGroupAndPeriod(ctx context.Context, studentID, groupID int64, year, month int) (decimal.NullDecimal, error)
	SumByStudentAndGroup(ctx context.Context, studentID, groupID int64) (decimal.NullDecimal, error)
	SumByBranchAndPeriod(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error)
	SumByBranchAndDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error)
	SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error)
	LastPaymentDate(ctx context.Context, studentID int64) (*time.Time, error)
}
