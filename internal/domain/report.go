package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type ReportType string

const (
	ReportDailyIncome             ReportType = "DAILY_PAYMENT"
	ReportMonthlyIncome           ReportType = "MONTHLY_PAYMENT"
	ReportRangeIncome             ReportType = "RANGE_PAYMENT"
	ReportDailyExpense            ReportType = "DAILY_EXPENSE"
	ReportMonthlyExpense          ReportType = "MONTHLY_EXPENSE"
	ReportRangeExpense            ReportType = "RANGE_EXPENSE"
	ReportAllTimeExpense          ReportType = "ALL_TIME_EXPENSE"
	ReportFinancialSummary        ReportType = "FINANCIAL_SUMMARY"
	ReportFinancialSummaryRange   ReportType = "FINANCIAL_SUMMARY_RANGE"
	ReportFinancialSummaryAllTime ReportType = "ALL_TIME_FINANCIAL_SUMMARY"
)

// ReportWindow echoes the scope a report was computed for.
// Exactly one of Date, Year/Month or StartDate/EndDate is set, or none for all-time reports.
type ReportWindow struct {
	Type      ReportType
	BranchID  int64
	Date      *time.Time
	Year      *int
	Month     *int
	StartDate *time.Time
	EndDate   *time.Time
}

type IncomeReport struct {
	ReportWindow
	StudentPayments decimal.Decimal
	ProductSales    decimal.Decimal
	TotalIncome     decimal.Decimal
}

type ExpenseReport struct {
	ReportWindow
	RegularExpenses decimal.Decimal
	SalaryExpenses  decimal.Decimal
	TotalExpenses   decimal.Decimal
}

// FinancialSummary combines both sides. NetProfit may be negative.
type FinancialSummary struct {
	ReportWindow
	StudentPayments decimal.Decimal
	ProductSales    decimal.Decimal
	TotalIncome     decimal.Decimal
	RegularExpenses decimal.Decimal
	SalaryPayments  decimal.Decimal
	TotalExpenses   decimal.Decimal
	NetProfit       decimal.Decimal
}

// SalesSummary is the product revenue of a branch, optionally for one month.
type SalesSummary struct {
	BranchID     int64
	Year         *int
	Month        *int
	TotalRevenue decimal.Decimal
}

// ArchivedReport points at an exported report document.
type ArchivedReport struct {
	Key       string    `json:"key"`
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// ReportArchive stores exported report documents.
type ReportArchive interface {
	Put(ctx context.Context, key string, body []byte, contentType string) error
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
}
