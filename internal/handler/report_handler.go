package handler

import (
	"net/http"

	"github.com/edudesk/edudesk-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ReportHandler handles financial report HTTP requests. Every report is scoped by branchId.
type ReportHandler struct {
	reports *service.ReportService
	gate    BranchGate
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(reports *service.ReportService, gate BranchGate) *ReportHandler {
	return &ReportHandler{reports: reports, gate: gate}
}

// DailyIncome handles GET /api/v1/reports/income/daily?branchId=&date=
// @Summary Get daily income
// @Description Sums tuition payments and product sales created on one day
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param date query string true "Day, YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/income/daily [get]
func (h *ReportHandler) DailyIncome(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	date, perr := queryDate(c, "date")
	if perr != nil {
		return perr.respond(c)
	}

	report, err := h.reports.DailyIncome(c.Request().Context(), branchID, date)
	if err != nil {
		return serviceError(c, err, "Failed to build income report")
	}
	return c.JSON(http.StatusOK, incomeBody(report))
}

// MonthlyIncome handles GET /api/v1/reports/income/monthly?branchId=&year=&month=
// @Summary Get monthly income
// @Description Sums tuition payments of the billing period and product sales of the calendar month
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/income/monthly [get]
func (h *ReportHandler) MonthlyIncome(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	year, month, perr := queryPeriod(c)
	if perr != nil {
		return perr.respond(c)
	}

	report, err := h.reports.MonthlyIncome(c.Request().Context(), branchID, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to build income report")
	}
	return c.JSON(http.StatusOK, incomeBody(report))
}

// RangeIncome handles GET /api/v1/reports/income/range?branchId=&startDate=&endDate=
// @Summary Get income in date range
// @Description Sums tuition payments and product sales created between startDate and endDate
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param startDate query string true "First day, YYYY-MM-DD"
// @Param endDate query string true "Last day, YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/income/range [get]
func (h *ReportHandler) RangeIncome(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	start, end, perr := queryRange(c)
	if perr != nil {
		return perr.respond(c)
	}

	report, err := h.reports.RangeIncome(c.Request().Context(), branchID, start, end)
	if err != nil {
		return serviceError(c, err, "Failed to build income report")
	}
	return c.JSON(http.StatusOK, incomeBody(report))
}

// DailyExpenses handles GET /api/v1/reports/expenses/daily?branchId=&date=
// @Summary Get daily expenses
// @Description Sums regular expenses and salary payments created on one day
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param date query string true "Day, YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/expenses/daily [get]
func (h *ReportHandler) DailyExpenses(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	date, perr := queryDate(c, "date")
	if perr != nil {
		return perr.respond(c)
	}

	report, err := h.reports.DailyExpenses(c.Request().Context(), branchID, date)
	if err != nil {
		return serviceError(c, err, "Failed to build expense report")
	}
	return c.JSON(http.StatusOK, expenseBody(report))
}

// MonthlyExpenses handles GET /api/v1/reports/expenses/monthly?branchId=&year=&month=
// @Summary Get monthly expenses
// @Description Sums regular expenses of the calendar month and salary payments of the salary period
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/expenses/monthly [get]
func (h *ReportHandler) MonthlyExpenses(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	year, month, perr := queryPeriod(c)
	if perr != nil {
		return perr.respond(c)
	}

	report, err := h.reports.MonthlyExpenses(c.Request().Context(), branchID, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to build expense report")
	}
	return c.JSON(http.StatusOK, expenseBody(report))
}

// RangeExpenses handles GET /api/v1/reports/expenses/range?branchId=&startDate=&endDate=
// @Summary Get expenses in date range
// @Description Sums regular expenses and salary payments created between startDate and endDate
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param startDate query string true "First day, YYYY-MM-DD"
// @Param endDate query string true "Last day, YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/expenses/range [get]
func (h *ReportHandler) RangeExpenses(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	start, end, perr := queryRange(c)
	if perr != nil {
		return perr.respond(c)
	}

	report, err := h.reports.RangeExpenses(c.Request().Context(), branchID, start, end)
	if err != nil {
		return serviceError(c, err, "Failed to build expense report")
	}
	return c.JSON(http.StatusOK, expenseBody(report))
}

// AllTimeExpenses handles GET /api/v1/reports/expenses/all-time?branchId=
// @Summary Get all-time expenses
// @Description Sums every regular expense and salary payment of the branch
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/expenses/all-time [get]
func (h *ReportHandler) AllTimeExpenses(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}

	report, err := h.reports.AllTimeExpenses(c.Request().Context(), branchID)
	if err != nil {
		return serviceError(c, err, "Failed to build expense report")
	}
	return c.JSON(http.StatusOK, expenseBody(report))
}

// FinancialSummary handles GET /api/v1/reports/financial-summary?branchId=&year=&month=
// @Summary Get monthly financial summary
// @Description Returns income, expenses and net profit of a month
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/financial-summary [get]
func (h *ReportHandler) FinancialSummary(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	year, month, perr := queryPeriod(c)
	if perr != nil {
		return perr.respond(c)
	}

	summary, err := h.reports.FinancialSummary(c.Request().Context(), branchID, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to build financial summary")
	}
	return c.JSON(http.StatusOK, summaryBody(summary))
}

// FinancialSummaryRange handles GET /api/v1/reports/financial-summary/range?branchId=&startDate=&endDate=
// @Summary Get financial summary for date range
// @Description Returns income, expenses and net profit between startDate and endDate
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param startDate query string true "First day, YYYY-MM-DD"
// @Param endDate query string true "Last day, YYYY-MM-DD"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/financial-summary/range [get]
func (h *ReportHandler) FinancialSummaryRange(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	start, end, perr := queryRange(c)
	if perr != nil {
		return perr.respond(c)
	}

	summary, err := h.reports.FinancialSummaryRange(c.Request().Context(), branchID, start, end)
	if err != nil {
		return serviceError(c, err, "Failed to build financial summary")
	}
	return c.JSON(http.StatusOK, summaryBody(summary))
}

// AllTimeFinancialSummary handles GET /api/v1/reports/financial-summary/all-time?branchId=
// @Summary Get all-time financial summary
// @Description Returns income, expenses and net profit over the whole history of the branch
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/financial-summary/all-time [get]
func (h *ReportHandler) AllTimeFinancialSummary(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}

	summary, err := h.reports.AllTimeFinancialSummary(c.Request().Context(), branchID)
	if err != nil {
		return serviceError(c, err, "Failed to build financial summary")
	}
	return c.JSON(http.StatusOK, summaryBody(summary))
}

// ExportFinancialSummary handles POST /api/v1/reports/financial-summary/export?branchId=&year=&month=
// @Summary Export monthly financial summary
// @Description Stores the monthly financial summary in the report archive and returns a temporary download link
// @Tags reports
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 201 {object} map[string]string
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /reports/financial-summary/export [post]
func (h *ReportHandler) ExportFinancialSummary(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	year, month, perr := queryPeriod(c)
	if perr != nil {
		return perr.respond(c)
	}

	archived, err := h.reports.ExportFinancialSummary(c.Request().Context(), branchID, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to export financial summary")
	}
	return c.JSON(http.StatusCreated, map[string]string{
		"key":       archived.Key,
		"url":       archived.URL,
		"expiresAt": formatTimestamp(archived.ExpiresAt),
	})
}
