package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedLedger adds sales, expenses and salary disbursements on top of seedBranch.
// Tuition for March totals 190000 and for February 60000.
func seedLedger() *testutil.Repos {
	r := seedBranch()
	r.Sales.AddSale(&domain.ProductSale{ProductName: "Workbook", Quantity: 3, UnitPrice: dec("15000"), TotalAmount: dec("45000"), Category: domain.ProductCategoryBook, BranchID: 1, CreatedAt: at(2024, 3, 12, 9)})
	r.Sales.AddSale(&domain.ProductSale{ProductName: "T-shirt", Quantity: 1, UnitPrice: dec("20000"), TotalAmount: dec("20000"), Category: domain.ProductCategoryUniform, BranchID: 1, CreatedAt: at(2024, 2, 28, 9)})
	r.Expenses.AddExpense(&domain.Expense{Description: "Rent", Amount: dec("300000"), Category: domain.ExpenseCategoryRent, BranchID: 1, CreatedAt: at(2024, 3, 1, 10)})
	r.Salaries.AddSalaryPayment(&domain.SalaryPayment{TeacherID: 1, BranchID: 1, Year: 2024, Month: 3, Amount: dec("15000"), CreatedAt: at(2024, 3, 15, 10)})
	// February salary disbursed in March
	r.Salaries.AddSalaryPayment(&domain.SalaryPayment{TeacherID: 1, BranchID: 1, Year: 2024, Month: 2, Amount: dec("20000"), CreatedAt: at(2024, 3, 2, 10)})
	return r
}

func newReportService(r *testutil.Repos) *ReportService {
	svc := NewReportService(r.Payments, r.Sales, r.Expenses, r.Salaries)
	svc.SetNowFunc(fixedNow)
	return svc
}

func assertAmount(t *testing.T, want string, got interface{ String() string }, field string) {
	t.Helper()
	assert.Equal(t, dec(want).String(), got.String(), field)
}

func TestReportService_MonthlyIncome(t *testing.T) {
	svc := newReportService(seedLedger())

	report, err := svc.MonthlyIncome(context.Background(), 1, 2024, 3)
	require.NoError(t, err)

	assert.Equal(t, domain.ReportMonthlyIncome, report.Type)
	assert.Equal(t, 2024, *report.Year)
	assert.Equal(t, 3, *report.Month)
	assertAmount(t, "190000", report.StudentPayments, "studentPayments")
	assertAmount(t, "45000", report.ProductSales, "productSales")
	assertAmount(t, "235000", report.TotalIncome, "totalIncome")

	_, err = svc.MonthlyIncome(context.Background(), 1, 2024, 0)
	assert.ErrorIs(t, err, domain.ErrPeriodInvalid)
}

func TestReportService_MonthlyExpenses_UsesPeriodForSalaries(t *testing.T) {
	svc := newReportService(seedLedger())
	ctx := context.Background()

	march, err := svc.MonthlyExpenses(ctx, 1, 2024, 3)
	require.NoError(t, err)
	assertAmount(t, "300000", march.RegularExpenses, "regularExpenses")
	assertAmount(t, "15000", march.SalaryExpenses, "salaryExpenses")
	assertAmount(t, "315000", march.TotalExpenses, "totalExpenses")

	// no regular expenses in February: the total is the salary sum alone
	feb, err := svc.MonthlyExpenses(ctx, 1, 2024, 2)
	require.NoError(t, err)
	assert.True(t, feb.RegularExpenses.IsZero())
	assertAmount(t, "20000", feb.TotalExpenses, "totalExpenses")
}

func TestReportService_FinancialSummary(t *testing.T) {
	svc := newReportService(seedLedger())
	ctx := context.Background()

	march, err := svc.FinancialSummary(ctx, 1, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportFinancialSummary, march.Type)
	assertAmount(t, "235000", march.TotalIncome, "totalIncome")
	assertAmount(t, "15000", march.SalaryPayments, "salaryPayments")
	assertAmount(t, "315000", march.TotalExpenses, "totalExpenses")
	assertAmount(t, "-80000", march.NetProfit, "netProfit")

	feb, err := svc.FinancialSummary(ctx, 1, 2024, 2)
	require.NoError(t, err)
	assertAmount(t, "80000", feb.TotalIncome, "totalIncome")
	assertAmount(t, "20000", feb.TotalExpenses, "totalExpenses")
	assertAmount(t, "60000", feb.NetProfit, "netProfit")
}

func TestReportService_Daily(t *testing.T) {
	svc := newReportService(seedLedger())
	ctx := context.Background()

	income, err := svc.DailyIncome(ctx, 1, at(2024, 3, 12, 18))
	require.NoError(t, err)
	assert.Equal(t, domain.ReportDailyIncome, income.Type)
	require.NotNil(t, income.Date)
	assert.Equal(t, at(2024, 3, 12, 0), *income.Date)
	assertAmount(t, "40000", income.StudentPayments, "studentPayments")
	assertAmount(t, "45000", income.ProductSales, "productSales")
	assertAmount(t, "85000", income.TotalIncome, "totalIncome")

	expenses, err := svc.DailyExpenses(ctx, 1, at(2024, 3, 15, 0))
	require.NoError(t, err)
	assert.True(t, expenses.RegularExpenses.IsZero())
	assertAmount(t, "15000", expenses.TotalExpenses, "totalExpenses")
}

func TestReportService_Range(t *testing.T) {
	svc := newReportService(seedLedger())
	ctx := context.Background()

	// range windows use creation time, so the February salary paid on March 2 counts
	expenses, err := svc.RangeExpenses(ctx, 1, at(2024, 3, 1, 0), at(2024, 3, 2, 0))
	require.NoError(t, err)
	assert.Equal(t, domain.ReportRangeExpense, expenses.Type)
	assertAmount(t, "300000", expenses.RegularExpenses, "regularExpenses")
	assertAmount(t, "20000", expenses.SalaryExpenses, "salaryExpenses")
	assertAmount(t, "320000", expenses.TotalExpenses, "totalExpenses")

	income, err := svc.RangeIncome(ctx, 1, at(2024, 3, 1, 0), at(2024, 3, 2, 0))
	require.NoError(t, err)
	assert.True(t, income.TotalIncome.IsZero())

	summary, err := svc.FinancialSummaryRange(ctx, 1, at(2024, 2, 1, 0), at(2024, 3, 31, 0))
	require.NoError(t, err)
	assertAmount(t, "315000", summary.TotalIncome, "totalIncome")
	assertAmount(t, "335000", summary.TotalExpenses, "totalExpenses")
	assertAmount(t, "-20000", summary.NetProfit, "netProfit")
	assert.Equal(t, at(2024, 2, 1, 0), *summary.StartDate)
	assert.Equal(t, at(2024, 3, 31, 0), *summary.EndDate)

	_, err = svc.RangeIncome(ctx, 1, at(2024, 3, 2, 0), at(2024, 3, 1, 0))
	assert.ErrorIs(t, err, domain.ErrDateRangeInvalid)
	_, err = svc.RangeExpenses(ctx, 1, at(2024, 3, 2, 0), at(2024, 3, 1, 0))
	assert.ErrorIs(t, err, domain.ErrDateRangeInvalid)
	_, err = svc.FinancialSummaryRange(ctx, 1, at(2024, 3, 2, 0), at(2024, 3, 1, 0))
	assert.ErrorIs(t, err, domain.ErrDateRangeInvalid)
}

func TestReportService_AllTime(t *testing.T) {
	svc := newReportService(seedLedger())
	ctx := context.Background()

	summary, err := svc.AllTimeFinancialSummary(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.ReportFinancialSummaryAllTime, summary.Type)
	assert.Nil(t, summary.Year)
	assert.Nil(t, summary.StartDate)
	assertAmount(t, "250000", summary.StudentPayments, "studentPayments")
	assertAmount(t, "65000", summary.ProductSales, "productSales")
	assertAmount(t, "335000", summary.TotalExpenses, "totalExpenses")
	assertAmount(t, "-20000", summary.NetProfit, "netProfit")

	expenses, err := svc.AllTimeExpenses(ctx, 1)
	require.NoError(t, err)
	assertAmount(t, "335000", expenses.TotalExpenses, "totalExpenses")
}

func TestReportService_EmptyBranchIsZeroNotError(t *testing.T) {
	svc := newReportService(seedLedger())

	summary, err := svc.FinancialSummary(context.Background(), 2, 2024, 3)
	require.NoError(t, err)
	assert.True(t, summary.TotalIncome.IsZero())
	assert.True(t, summary.TotalExpenses.IsZero())
	assert.True(t, summary.NetProfit.IsZero())
}

func TestReportService_StoreErrorPropagates(t *testing.T) {
	r := seedLedger()
	r.Payments.SumErr = errors.New("database is down")
	svc := newReportService(r)

	_, err := svc.FinancialSummary(context.Background(), 1, 2024, 3)
	assert.EqualError(t, err, "database is down")
}

func TestReportService_ExportFinancialSummary_Disabled(t *testing.T) {
	svc := newReportService(seedLedger())

	_, err := svc.ExportFinancialSummary(context.Background(), 1, 2024, 3)
	assert.ErrorIs(t, err, domain.ErrReportArchiveDisabled)
}

func TestReportService_ExportFinancialSummary(t *testing.T) {
	r := seedLedger()
	svc := newReportService(r)
	svc.SetArchive(r.Archive, "reports", 15*time.Minute)

	archived, err := svc.ExportFinancialSummary(context.Background(), 1, 2024, 3)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(archived.Key, "reports/branch-1/2024-03/financial-summary-"), archived.Key)
	assert.True(t, strings.HasSuffix(archived.Key, ".json"), archived.Key)
	assert.Equal(t, "https://archive.test/"+archived.Key+"?ttl=900", archived.URL)
	assert.Equal(t, today.Add(15*time.Minute), archived.ExpiresAt)
	assert.Equal(t, "application/json", r.Archive.ContentTypes[archived.Key])

	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(r.Archive.Objects[archived.Key], &doc))
	assert.Equal(t, "FINANCIAL_SUMMARY", doc["type"])
	assert.Equal(t, "235000.00", doc["totalIncome"])
	assert.Equal(t, "-80000.00", doc["netProfit"])
}

func TestReportService_ExportFinancialSummary_UploadFails(t *testing.T) {
	r := seedLedger()
	r.Archive.PutErr = errors.New("access denied")
	svc := newReportService(r)
	svc.SetArchive(r.Archive, "reports", time.Minute)

	_, err := svc.ExportFinancialSummary(context.Background(), 1, 2024, 3)
	assert.EqualError(t, err, "access denied")
	assert.Empty(t, r.Archive.Objects)
}
