package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// ReportService aggregates income and expense sums of a branch over day, month, range and all-time windows
type ReportService struct {
	paymentRepo domain.PaymentRepository
	saleRepo    domain.ProductSaleRepository
	expenseRepo domain.ExpenseRepository
	salaryRepo  domain.SalaryPaymentRepository

	archive       domain.ReportArchive
	archivePrefix string
	archiveTTL    time.Duration
	now           func() time.Time
}

// NewReportService creates a new ReportService
func NewReportService(
	paymentRepo domain.PaymentRepository,
	saleRepo domain.ProductSaleRepository,
	expenseRepo domain.ExpenseRepository,
	salaryRepo domain.SalaryPaymentRepository,
) *ReportService {
	return &ReportService{
		paymentRepo: paymentRepo,
		saleRepo:    saleRepo,
		expenseRepo: expenseRepo,
		salaryRepo:  salaryRepo,
		now:         time.Now,
	}
}

// SetArchive enables report export. Keys are written below prefix and
// presigned URLs stay valid for ttl.
func (s *ReportService) SetArchive(archive domain.ReportArchive, prefix string, ttl time.Duration) {
	s.archive = archive
	s.archivePrefix = prefix
	s.archiveTTL = ttl
}

// SetNowFunc replaces the clock used to stamp exported reports
func (s *ReportService) SetNowFunc(now func() time.Time) {
	s.now = now
}

// sums holds the four independent sources of a window
type sums struct {
	payments decimal.NullDecimal
	sales    decimal.NullDecimal
	expenses decimal.NullDecimal
	salaries decimal.NullDecimal
}

func (s *ReportService) monthSums(ctx context.Context, branchID int64, year, month int) (sums, error) {
	var out sums
	var err error
	if out.payments, err = s.paymentRepo.SumByBranchAndPeriod(ctx, branchID, year, month); err != nil {
		return out, err
	}
	if out.sales, err = s.saleRepo.SumByMonth(ctx, branchID, year, month); err != nil {
		return out, err
	}
	if out.expenses, err = s.expenseRepo.SumByMonth(ctx, branchID, year, month); err != nil {
		return out, err
	}
	if out.salaries, err = s.salaryRepo.SumByBranchAndPeriod(ctx, branchID, year, month); err != nil {
		return out, err
	}
	return out, nil
}

func (s *ReportService) rangeSums(ctx context.Context, branchID int64, from, to time.Time) (sums, error) {
	var out sums
	var err error
	if out.payments, err = s.paymentRepo.SumByBranchAndDateRange(ctx, branchID, from, to); err != nil {
		return out, err
	}
	if out.sales, err = s.saleRepo.SumByDateRange(ctx, branchID, from, to); err != nil {
		return out, err
	}
	if out.expenses, err = s.expenseRepo.SumByDateRange(ctx, branchID, from, to); err != nil {
		return out, err
	}
	if out.salaries, err = s.salaryRepo.SumByBranchAndDateRange(ctx, branchID, from, to); err != nil {
		return out, err
	}
	return out, nil
}

func (s *ReportService) allTimeSums(ctx context.Context, branchID int64) (sums, error) {
	var out sums
	var err error
	if out.payments, err = s.paymentRepo.SumByBranch(ctx, branchID); err != nil {
		return out, err
	}
	if out.sales, err = s.saleRepo.SumByBranch(ctx, branchID); err != nil {
		return out, err
	}
	if out.expenses, err = s.expenseRepo.SumByBranch(ctx, branchID); err != nil {
		return out, err
	}
	if out.salaries, err = s.salaryRepo.SumByBranch(ctx, branchID); err != nil {
		return out, err
	}
	return out, nil
}

func (x sums) income(w domain.ReportWindow) *domain.IncomeReport {
	return &domain.IncomeReport{
		ReportWindow:    w,
		StudentPayments: util.OrZero(x.payments),
		ProductSales:    util.OrZero(x.sales),
		TotalIncome:     util.SumOrZero(x.payments, x.sales),
	}
}

func (x sums) expense(w domain.ReportWindow) *domain.ExpenseReport {
	return &domain.ExpenseReport{
		ReportWindow:    w,
		RegularExpenses: util.OrZero(x.expenses),
		SalaryExpenses:  util.OrZero(x.salaries),
		TotalExpenses:   util.SumOrZero(x.expenses, x.salaries),
	}
}

func (x sums) summary(w domain.ReportWindow) *domain.FinancialSummary {
	income := util.SumOrZero(x.payments, x.sales)
	expenses := util.SumOrZero(x.expenses, x.salaries)
	return &domain.FinancialSummary{
		ReportWindow:    w,
		StudentPayments: util.OrZero(x.payments),
		ProductSales:    util.OrZero(x.sales),
		TotalIncome:     income,
		RegularExpenses: util.OrZero(x.expenses),
		SalaryPayments:  util.OrZero(x.salaries),
		TotalExpenses:   expenses,
		NetProfit:       income.Sub(expenses),
	}
}

func dayWindow(t domain.ReportType, branchID int64, date time.Time) domain.ReportWindow {
	d := util.DateOf(date)
	return domain.ReportWindow{Type: t, BranchID: branchID, Date: &d}
}

func monthWindow(t domain.ReportType, branchID int64, year, month int) domain.ReportWindow {
	return domain.ReportWindow{Type: t, BranchID: branchID, Year: &year, Month: &month}
}

func rangeWindow(t domain.ReportType, branchID int64, start, end time.Time) domain.ReportWindow {
	from, to := util.DateOf(start), util.DateOf(end)
	return domain.ReportWindow{Type: t, BranchID: branchID, StartDate: &from, EndDate: &to}
}

func validRange(start, end time.Time) error {
	if util.DateOf(start).After(util.DateOf(end)) {
		return domain.ErrDateRangeInvalid
	}
	return nil
}

func validMonth(month int) error {
	if month < 1 || month > 12 {
		return domain.ErrPeriodInvalid
	}
	return nil
}

// DailyIncome sums tuition and product sales created on date
func (s *ReportService) DailyIncome(ctx context.Context, branchID int64, date time.Time) (*domain.IncomeReport, error) {
	from, to := util.DayBounds(date)
	x, err := s.rangeSums(ctx, branchID, from, to)
	if err != nil {
		return nil, err
	}
	return x.income(dayWindow(domain.ReportDailyIncome, branchID, date)), nil
}

// MonthlyIncome sums tuition of the billing period and product sales created in that month
func (s *ReportService) MonthlyIncome(ctx context.Context, branchID int64, year, month int) (*domain.IncomeReport, error) {
	if err := validMonth(month); err != nil {
		return nil, err
	}
	x, err := s.monthSums(ctx, branchID, year, month)
	if err != nil {
		return nil, err
	}
	return x.income(monthWindow(domain.ReportMonthlyIncome, branchID, year, month)), nil
}

func (s *ReportService) RangeIncome(ctx context.Context, branchID int64, start, end time.Time) (*domain.IncomeReport, error) {
	if err := validRange(start, end); err != nil {
		return nil, err
	}
	from, to := util.RangeBounds(start, end)
	x, err := s.rangeSums(ctx, branchID, from, to)
	if err != nil {
		return nil, err
	}
	return x.income(rangeWindow(domain.ReportRangeIncome, branchID, start, end)), nil
}

func (s *ReportService) DailyExpenses(ctx context.Context, branchID int64, date time.Time) (*domain.ExpenseReport, error) {
	from, to := util.DayBounds(date)
	x, err := s.rangeSums(ctx, branchID, from, to)
	if err != nil {
		return nil, err
	}
	return x.expense(dayWindow(domain.ReportDailyExpense, branchID, date)), nil
}

// MonthlyExpenses sums expenses created in the month and salaries disbursed for the billing period
func (s *ReportService) MonthlyExpenses(ctx context.Context, branchID int64, year, month int) (*domain.ExpenseReport, error) {
	if err := validMonth(month); err != nil {
		return nil, err
	}
	x, err := s.monthSums(ctx, branchID, year, month)
	if err != nil {
		return nil, err
	}
	return x.expense(monthWindow(domain.ReportMonthlyExpense, branchID, year, month)), nil
}

func (s *ReportService) RangeExpenses(ctx context.Context, branchID int64, start, end time.Time) (*domain.ExpenseReport, error) {
	if err := validRange(start, end); err != nil {
		return nil, err
	}
	from, to := util.RangeBounds(start, end)
	x, err := s.rangeSums(ctx, branchID, from, to)
	if err != nil {
		return nil, err
	}
	return x.expense(rangeWindow(domain.ReportRangeExpense, branchID, start, end)), nil
}

func (s *ReportService) AllTimeExpenses(ctx context.Context, branchID int64) (*domain.ExpenseReport, error) {
	x, err := s.allTimeSums(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return x.expense(domain.ReportWindow{Type: domain.ReportAllTimeExpense, BranchID: branchID}), nil
}

// FinancialSummary combines income and expenses of one month. Net profit may be negative.
func (s *ReportService) FinancialSummary(ctx context.Context, branchID int64, year, month int) (*domain.FinancialSummary, error) {
	if err := validMonth(month); err != nil {
		return nil, err
	}
	x, err := s.monthSums(ctx, branchID, year, month)
	if err != nil {
		log.Error().Err(err).Int64("branch_id", branchID).Int("year", year).Int("month", month).Msg("Failed to build financial summary")
		return nil, err
	}
	return x.summary(monthWindow(domain.ReportFinancialSummary, branchID, year, month)), nil
}

func (s *ReportService) FinancialSummaryRange(ctx context.Context, branchID int64, start, end time.Time) (*domain.FinancialSummary, error) {
	if err := validRange(start, end); err != nil {
		return nil, err
	}
	from, to := util.RangeBounds(start, end)
	x, err := s.rangeSums(ctx, branchID, from, to)
	if err != nil {
		return nil, err
	}
	return x.summary(rangeWindow(domain.ReportFinancialSummaryRange, branchID, start, end)), nil
}

func (s *ReportService) AllTimeFinancialSummary(ctx context.Context, branchID int64) (*domain.FinancialSummary, error) {
	x, err := s.allTimeSums(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return x.summary(domain.ReportWindow{Type: domain.ReportFinancialSummaryAllTime, BranchID: branchID}), nil
}

// exportedSummary is the archived document layout
type exportedSummary struct {
	Type            domain.ReportType `json:"type"`
	BranchID        int64             `json:"branchId"`
	Year            int               `json:"year"`
	Month           int               `json:"month"`
	StudentPayments string            `json:"studentPayments"`
	ProductSales    string            `json:"productSales"`
	TotalIncome     string            `json:"totalIncome"`
	RegularExpenses string            `json:"regularExpenses"`
	SalaryPayments  string            `json:"salaryPayments"`
	TotalExpenses   string            `json:"totalExpenses"`
	NetProfit       string            `json:"netProfit"`
	GeneratedAt     time.Time         `json:"generatedAt"`
}

// ExportFinancialSummary stores the monthly summary as a JSON document in the
// report archive and returns a temporary download link
func (s *ReportService) ExportFinancialSummary(ctx context.Context, branchID int64, year, month int) (*domain.ArchivedReport, error) {
	if s.archive == nil {
		return nil, domain.ErrReportArchiveDisabled
	}

	summary, err := s.FinancialSummary(ctx, branchID, year, month)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	body, err := json.Marshal(exportedSummary{
		Type:            summary.Type,
		BranchID:        branchID,
		Year:            year,
		Month:           month,
		StudentPayments: summary.StudentPayments.StringFixed(2),
		ProductSales:    summary.ProductSales.StringFixed(2),
		TotalIncome:     summary.TotalIncome.StringFixed(2),
		RegularExpenses: summary.RegularExpenses.StringFixed(2),
		SalaryPayments:  summary.SalaryPayments.StringFixed(2),
		TotalExpenses:   summary.TotalExpenses.StringFixed(2),
		NetProfit:       summary.NetProfit.StringFixed(2),
		GeneratedAt:     now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	key := fmt.Sprintf("%s/branch-%d/%04d-%02d/financial-summary-%s.json", s.archivePrefix, branchID, year, month, uuid.New().String())
	if err := s.archive.Put(ctx, key, body, "application/json"); err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to archive report")
		return nil, err
	}
	url, err := s.archive.PresignedURL(ctx, key, s.archiveTTL)
	if err != nil {
		log.Error().Err(err).Str("key", key).Msg("Failed to presign report URL")
		return nil, err
	}

	log.Info().Int64("branch_id", branchID).Str("key", key).Msg("Financial summary exported")
	return &domain.ArchivedReport{Key: key, URL: url, ExpiresAt: now.Add(s.archiveTTL)}, nil
}
