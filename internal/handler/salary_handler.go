package handler

import (
	"net/http"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// SalaryHandler handles teacher salary HTTP requests
type SalaryHandler struct {
	salaries *service.SalaryService
	gate     BranchGate
}

// NewSalaryHandler creates a new SalaryHandler
func NewSalaryHandler(salaries *service.SalaryService, gate BranchGate) *SalaryHandler {
	return &SalaryHandler{salaries: salaries, gate: gate}
}

// CreateSalaryPaymentRequest represents the record salary payment request body
type CreateSalaryPaymentRequest struct {
	TeacherID   int64  `json:"teacherId" validate:"required,gt=0"`
	BranchID    int64  `json:"branchId" validate:"required,gt=0"`
	Year        int    `json:"year" validate:"required,min=2000,max=2100"`
	Month       int    `json:"month" validate:"required,min=1,max=12"`
	Amount      string `json:"amount" validate:"required,decimal"`
	Description string `json:"description" validate:"max=500"`
}

func (h *SalaryHandler) teacherInScope(c echo.Context, id int64) (*domain.Teacher, error) {
	teacher, err := h.salaries.GetTeacher(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if err := h.gate.Check(c, teacher.BranchID); err != nil {
		return nil, err
	}
	return teacher, nil
}

// Calculate handles GET /api/v1/teacher-salaries/teachers/:teacherId/calculate?year=&month=
// @Summary Calculate teacher salary
// @Description Calculates the salary owed to a teacher for a month, broken down per group
// @Tags teacher-salaries
// @Produce json
// @Security BearerAuth
// @Param teacherId path int true "Teacher ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} SalaryCalculationResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /teacher-salaries/teachers/{teacherId}/calculate [get]
func (h *SalaryHandler) Calculate(c echo.Context) error {
	teacherID, perr := pathID(c, "teacherId")
	if perr != nil {
		return perr.respond(c)
	}
	year, month, perr := queryPeriod(c)
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.teacherInScope(c, teacherID); err != nil {
		return serviceError(c, err, "Failed to calculate salary")
	}

	calc, err := h.salaries.Calculate(c.Request().Context(), teacherID, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to calculate salary")
	}
	return c.JSON(http.StatusOK, toSalaryCalculationResponse(calc))
}

// CalculateForBranch handles GET /api/v1/teacher-salaries/calculate?branchId=&year=&month=
// @Summary Calculate branch salaries
// @Description Calculates the salary owed to every teacher of a branch for a month
// @Tags teacher-salaries
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {array} SalaryCalculationResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /teacher-salaries/calculate [get]
func (h *SalaryHandler) CalculateForBranch(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	year, month, perr := queryPeriod(c)
	if perr != nil {
		return perr.respond(c)
	}

	calcs, err := h.salaries.CalculateForBranch(c.Request().Context(), branchID, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to calculate branch salaries")
	}

	response := make([]SalaryCalculationResponse, len(calcs))
	for i, calc := range calcs {
		response[i] = toSalaryCalculationResponse(calc)
	}
	return c.JSON(http.StatusOK, response)
}

// History handles GET /api/v1/teacher-salaries/teachers/:teacherId/history
// @Summary Get salary history
// @Description Returns one entry per month in which the teacher received a salary payment, newest first
// @Tags teacher-salaries
// @Produce json
// @Security BearerAuth
// @Param teacherId path int true "Teacher ID"
// @Success 200 {array} SalaryHistoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /teacher-salaries/teachers/{teacherId}/history [get]
func (h *SalaryHandler) History(c echo.Context) error {
	teacherID, perr := pathID(c, "teacherId")
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.teacherInScope(c, teacherID); err != nil {
		return serviceError(c, err, "Failed to get salary history")
	}

	entries, err := h.salaries.History(c.Request().Context(), teacherID)
	if err != nil {
		return serviceError(c, err, "Failed to get salary history")
	}
	return c.JSON(http.StatusOK, toSalaryHistoryResponses(entries))
}

// Remaining handles GET /api/v1/teacher-salaries/teachers/:teacherId/remaining?year=&month=
// @Summary Get remaining salary
// @Description Returns what is still owed to the teacher for a month
// @Tags teacher-salaries
// @Produce json
// @Security BearerAuth
// @Param teacherId path int true "Teacher ID"
// @Param year query int true "Year"
// @Param month query int true "Month (1-12)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /teacher-salaries/teachers/{teacherId}/remaining [get]
func (h *SalaryHandler) Remaining(c echo.Context) error {
	teacherID, perr := pathID(c, "teacherId")
	if perr != nil {
		return perr.respond(c)
	}
	year, month, perr := queryPeriod(c)
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.teacherInScope(c, teacherID); err != nil {
		return serviceError(c, err, "Failed to get remaining salary")
	}

	remaining, err := h.salaries.Remaining(c.Request().Context(), teacherID, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to get remaining salary")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"teacherId":       teacherID,
		"year":            year,
		"month":           month,
		"remainingAmount": money(remaining),
	})
}

// TeacherPayments handles GET /api/v1/teacher-salaries/teachers/:teacherId/payments?year=&month=
// @Summary List teacher salary payments
// @Description Returns the salary payments of a teacher, optionally limited to one month
// @Tags teacher-salaries
// @Produce json
// @Security BearerAuth
// @Param teacherId path int true "Teacher ID"
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Success 200 {array} SalaryPaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /teacher-salaries/teachers/{teacherId}/payments [get]
func (h *SalaryHandler) TeacherPayments(c echo.Context) error {
	teacherID, perr := pathID(c, "teacherId")
	if perr != nil {
		return perr.respond(c)
	}
	year, perr := optionalInt(c, "year")
	if perr != nil {
		return perr.respond(c)
	}
	month, perr := optionalInt(c, "month")
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.teacherInScope(c, teacherID); err != nil {
		return serviceError(c, err, "Failed to list salary payments")
	}

	ctx := c.Request().Context()
	var payments []*domain.SalaryPayment
	var err error
	if year != nil && month != nil {
		payments, err = h.salaries.ListPaymentsByTeacherAndPeriod(ctx, teacherID, *year, *month)
	} else {
		payments, err = h.salaries.ListPaymentsByTeacher(ctx, teacherID)
	}
	if err != nil {
		return serviceError(c, err, "Failed to list salary payments")
	}
	return c.JSON(http.StatusOK, toSalaryPaymentResponses(payments))
}

// ListPayments handles GET /api/v1/teacher-salaries/payments?branchId=
// @Summary List salary payments
// @Description Returns the salary payments of a branch
// @Tags teacher-salaries
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Success 200 {array} SalaryPaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /teacher-salaries/payments [get]
func (h *SalaryHandler) ListPayments(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}

	payments, err := h.salaries.ListPaymentsByBranch(c.Request().Context(), branchID)
	if err != nil {
		return serviceError(c, err, "Failed to list salary payments")
	}
	return c.JSON(http.StatusOK, toSalaryPaymentResponses(payments))
}

// CreatePayment handles POST /api/v1/teacher-salaries/payments
// @Summary Record salary payment
// @Description Records a salary payment to a teacher for a month
// @Tags teacher-salaries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateSalaryPaymentRequest true "Salary payment to record"
// @Success 201 {object} SalaryPaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /teacher-salaries/payments [post]
func (h *SalaryHandler) CreatePayment(c echo.Context) error {
	var req CreateSalaryPaymentRequest
	if bad := bindAndValidate(c, &req); bad != nil {
		return bad.respond(c)
	}
	if err := h.gate.Check(c, req.BranchID); err != nil {
		return serviceError(c, err, "Failed to record salary payment")
	}

	payment, err := h.salaries.CreatePayment(c.Request().Context(), domain.SalaryPaymentInput{
		TeacherID:   req.TeacherID,
		BranchID:    req.BranchID,
		Year:        req.Year,
		Month:       req.Month,
		Amount:      amountOf(req.Amount),
		Description: req.Description,
	})
	if err != nil {
		return serviceError(c, err, "Failed to record salary payment")
	}
	return c.JSON(http.StatusCreated, toSalaryPaymentResponse(payment))
}

// GetPayment handles GET /api/v1/teacher-salaries/payments/:id
// @Summary Get salary payment
// @Description Returns one salary payment
// @Tags teacher-salaries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Salary payment ID"
// @Success 200 {object} SalaryPaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /teacher-salaries/payments/{id} [get]
func (h *SalaryHandler) GetPayment(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}

	payment, err := h.salaries.GetPayment(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to get salary payment")
	}
	if err := h.gate.Check(c, payment.BranchID); err != nil {
		return serviceError(c, err, "Failed to get salary payment")
	}
	return c.JSON(http.StatusOK, toSalaryPaymentResponse(payment))
}

// DeletePayment handles DELETE /api/v1/teacher-salaries/payments/:id
// @Summary Delete salary payment
// @Description Deletes a salary payment
// @Tags teacher-salaries
// @Produce json
// @Security BearerAuth
// @Param id path int true "Salary payment ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /teacher-salaries/payments/{id} [delete]
func (h *SalaryHandler) DeletePayment(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}

	payment, err := h.salaries.GetPayment(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to delete salary payment")
	}
	if err := h.gate.Check(c, payment.BranchID); err != nil {
		return serviceError(c, err, "Failed to delete salary payment")
	}

	if err := h.salaries.DeletePayment(c.Request().Context(), id); err != nil {
		return serviceError(c, err, "Failed to delete salary payment")
	}
	return c.NoContent(http.StatusNoContent)
}
