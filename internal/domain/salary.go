package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// SalaryPayment is an actual disbursement to a teacher for a period,
// independent of the amount the calculator says is owed.
type SalaryPayment struct {
	ID          int64           `json:"id"`
	TeacherID   int64           `json:"teacherId"`
	TeacherName string          `json:"teacherName,omitempty"`
	Year        int             `json:"year"`
	Month       int             `json:"month"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
	BranchID    int64           `json:"branchId"`
	BranchName  string          `json:"branchName,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

func (p *SalaryPayment) Validate() error {
	if p.Amount.LessThanOrEqual(decimal.Zero) {
		return ErrAmountInvalid
	}
	if p.Month < 1 || p.Month > 12 {
		return ErrPeriodInvalid
	}
	return nil
}

type SalaryPaymentInput struct {
	TeacherID   int64
	BranchID    int64
	Year        int
	Month       int
	Amount      decimal.Decimal
	Description string
}

// Period is a billing (year, month) pair.
type Period struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// SalaryPeriodStats aggregates the disbursements of one teacher in one period.
type SalaryPeriodStats struct {
	Total           decimal.NullDecimal
	LastPaymentDate *time.Time
	Count           int
}

// GroupSalary is one group's contribution to a teacher's salary.
type GroupSalary struct {
	GroupID           int64           `json:"groupId"`
	GroupName         string          `json:"groupName"`
	PaidStudentCount  int             `json:"paidStudentCount"`
	SalaryAmount      decimal.Decimal `json:"salaryAmount"`
	TotalStudentCount int             `json:"totalStudentCount"`
	GroupPrice        decimal.Decimal `json:"groupPrice"`
}

// SalaryCalculation is the amount owed to a teacher for a period.
type SalaryCalculation struct {
	TeacherID         int64           `json:"teacherId"`
	TeacherName       string          `json:"teacherName"`
	BranchID          int64           `json:"branchId"`
	Year              int             `json:"year"`
	Month             int             `json:"month"`
	TotalSalary       decimal.Decimal `json:"totalSalary"`
	TotalPaidStudents int             `json:"totalPaidStudents"`
	AlreadyPaid       decimal.Decimal `json:"alreadyPaid"`
	RemainingAmount   decimal.Decimal `json:"remainingAmount"`
	Groups            []GroupSalary   `json:"groups"`
}

// SalaryHistoryEntry compares owed and disbursed salary for one period.
type SalaryHistoryEntry struct {
	TeacherID       int64           `json:"teacherId"`
	TeacherName     string          `json:"teacherName"`
	Year            int             `json:"year"`
	Month           int             `json:"month"`
	TotalSalary     decimal.Decimal `json:"totalSalary"`
	AmountPaid      decimal.Decimal `json:"amountPaid"`
	RemainingAmount decimal.Decimal `json:"remainingAmount"`
	FullySettled    bool            `json:"fullySettled"`
	LastPaymentDate *time.Time      `json:"lastPaymentDate,omitempty"`
	PaymentCount    int             `json:"paymentCount"`
}

// SalaryPaymentRepository stores teacher salary disbursements. Lists are newest first.
type SalaryPaymentRepository interface {
	Create(ctx context.Context, payment *SalaryPayment) (*SalaryPayment, error)
	GetByID(ctx context.Context, id int64) (*SalaryPayment, error)
	Delete(ctx context.Context, id int64) error

	ListByBranch(ctx context.Context, branchID int64) ([]*SalaryPayment, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]*SalaryPayment, error)
	ListByTeacherAndPeriod(ctx context.Context, teacherID int64, year, month int) ([]*SalaryPayment, error)

	SumByTeacherAndPeriod(ctx context.Context, teacherID int64, year, month int) (decimal.NullDecimal, error)
	PeriodStats(ctx context.Context, teacherID int64, year, month int) (*SalaryPeriodStats, error)
	DistinctPeriods(ctx context.Context, teacherID int64) ([]Period, error)

	SumByBranchAndPeriod(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error)
	SumByBranchAndDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error)
	SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error)
}
