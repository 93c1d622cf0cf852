package handler

import (
	"net/http"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// PaymentHandler handles tuition payment HTTP requests
type PaymentHandler struct {
	payments *service.PaymentService
	students *service.StudentService
	gate     BranchGate
}

// NewPaymentHandler creates a new PaymentHandler
func NewPaymentHandler(payments *service.PaymentService, students *service.StudentService, gate BranchGate) *PaymentHandler {
	return &PaymentHandler{payments: payments, students: students, gate: gate}
}

// CreatePaymentRequest represents the create payment request body
type CreatePaymentRequest struct {
	StudentID    int64  `json:"studentId" validate:"required,gt=0"`
	GroupID      int64  `json:"groupId" validate:"required,gt=0"`
	BranchID     int64  `json:"branchId" validate:"required,gt=0"`
	Amount       string `json:"amount" validate:"required,decimal"`
	Description  string `json:"description" validate:"max=500"`
	Category     string `json:"category" validate:"required"`
	PaymentYear  int    `json:"paymentYear" validate:"required,min=2000,max=2100"`
	PaymentMonth int    `json:"paymentMonth" validate:"required,min=1,max=12"`
}

// UpdateAmountRequest represents the update payment amount request body
type UpdateAmountRequest struct {
	Amount string `json:"amount" validate:"required,decimal"`
}

func (h *PaymentHandler) paymentInScope(c echo.Context, id int64) (*domain.Payment, error) {
	payment, err := h.payments.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if err := h.gate.Check(c, payment.BranchID); err != nil {
		return nil, err
	}
	return payment, nil
}

// CreatePayment handles POST /api/v1/payments
// @Summary Record payment
// @Description Records a tuition payment of a student for one group and billing period. The due date is fixed at creation
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePaymentRequest true "Payment to record"
// @Success 201 {object} PaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /payments [post]
func (h *PaymentHandler) CreatePayment(c echo.Context) error {
	var req CreatePaymentRequest
	if bad := bindAndValidate(c, &req); bad != nil {
		return bad.respond(c)
	}
	if err := h.gate.Check(c, req.BranchID); err != nil {
		return serviceError(c, err, "Failed to create payment")
	}

	payment, err := h.payments.Create(c.Request().Context(), domain.PaymentInput{
		StudentID:    req.StudentID,
		GroupID:      req.GroupID,
		BranchID:     req.BranchID,
		Amount:       amountOf(req.Amount),
		Description:  req.Description,
		Category:     req.Category,
		PaymentYear:  req.PaymentYear,
		PaymentMonth: req.PaymentMonth,
	})
	if err != nil {
		return serviceError(c, err, "Failed to create payment")
	}
	return c.JSON(http.StatusCreated, toPaymentResponse(payment))
}

// ListPayments handles GET /api/v1/payments?branchId=&category=&year=&month=
// A category, a period or both narrow the listing.
// @Summary List payments
// @Description Returns the tuition payments of a branch, optionally filtered by category and billing period
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param category query string false "CASH, CARD or TRANSFER"
// @Param year query int false "Billing year"
// @Param month query int false "Billing month (1-12)"
// @Success 200 {array} PaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /payments [get]
func (h *PaymentHandler) ListPayments(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	year, perr := optionalInt(c, "year")
	if perr != nil {
		return perr.respond(c)
	}
	month, perr := optionalInt(c, "month")
	if perr != nil {
		return perr.respond(c)
	}
	category := c.QueryParam("category")
	hasPeriod := year != nil && month != nil

	ctx := c.Request().Context()
	var payments []*domain.Payment
	switch {
	case category != "" && hasPeriod:
		payments, err = h.payments.ListByCategoryAndPeriod(ctx, branchID, category, *year, *month)
	case category != "":
		payments, err = h.payments.ListByCategory(ctx, branchID, category)
	case hasPeriod:
		payments, err = h.payments.ListByPeriod(ctx, branchID, *year, *month)
	default:
		payments, err = h.payments.ListByBranch(ctx, branchID)
	}
	if err != nil {
		return serviceError(c, err, "Failed to list payments")
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}

// PaymentsInRange handles GET /api/v1/payments/range?branchId=&startDate=&endDate=
// @Summary List payments in date range
// @Description Returns payments created between startDate and endDate, both days included
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param startDate query string true "First day, YYYY-MM-DD"
// @Param endDate query string true "Last day, YYYY-MM-DD"
// @Success 200 {array} PaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /payments/range [get]
func (h *PaymentHandler) PaymentsInRange(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	start, end, perr := queryRange(c)
	if perr != nil {
		return perr.respond(c)
	}

	payments, err := h.payments.ListByDateRange(c.Request().Context(), branchID, start, end)
	if err != nil {
		return serviceError(c, err, "Failed to list payments")
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}

// SearchPayments handles GET /api/v1/payments/search?branchId=&name=
// @Summary Search payments by student name
// @Description Returns payments whose student name contains the search text
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param name query string false "Case-insensitive part of the student name"
// @Success 200 {array} PaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /payments/search [get]
func (h *PaymentHandler) SearchPayments(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}

	payments, err := h.payments.SearchByStudentName(c.Request().Context(), branchID, c.QueryParam("name"))
	if err != nil {
		return serviceError(c, err, "Failed to search payments")
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}

// RecentPayments handles GET /api/v1/payments/recent?branchId=&limit=
// @Summary List recent payments
// @Description Returns the newest payments of a branch
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param limit query int false "Maximum number of rows (default 10, max 100)"
// @Success 200 {array} PaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /payments/recent [get]
func (h *PaymentHandler) RecentPayments(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	limit, perr := optionalInt(c, "limit")
	if perr != nil {
		return perr.respond(c)
	}
	n := 0
	if limit != nil {
		n = *limit
	}

	payments, err := h.payments.Recent(c.Request().Context(), branchID, n)
	if err != nil {
		return serviceError(c, err, "Failed to list recent payments")
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}

// StudentPayments handles GET /api/v1/payments/student/:studentId
// @Summary List payments of a student
// @Description Returns every tuition payment of the student, newest first
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param studentId path int true "Student ID"
// @Success 200 {array} PaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /payments/student/{studentId} [get]
func (h *PaymentHandler) StudentPayments(c echo.Context) error {
	studentID, perr := pathID(c, "studentId")
	if perr != nil {
		return perr.respond(c)
	}
	student, err := h.students.Lookup(c.Request().Context(), studentID)
	if err != nil {
		return serviceError(c, err, "Failed to list student payments")
	}
	if err := h.gate.Check(c, student.BranchID); err != nil {
		return serviceError(c, err, "Failed to list student payments")
	}

	payments, err := h.payments.ListByStudent(c.Request().Context(), studentID)
	if err != nil {
		return serviceError(c, err, "Failed to list student payments")
	}
	return c.JSON(http.StatusOK, toPaymentResponses(payments))
}

// GetPayment handles GET /api/v1/payments/:id
// @Summary Get payment
// @Description Returns one tuition payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 200 {object} PaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /payments/{id} [get]
func (h *PaymentHandler) GetPayment(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}

	payment, err := h.paymentInScope(c, id)
	if err != nil {
		return serviceError(c, err, "Failed to get payment")
	}
	return c.JSON(http.StatusOK, toPaymentResponse(payment))
}

// UpdatePaymentAmount handles PATCH /api/v1/payments/:id
// @Summary Correct payment amount
// @Description Changes the amount of a payment. The due date is left untouched
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Param request body UpdateAmountRequest true "New amount"
// @Success 200 {object} PaymentResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /payments/{id} [patch]
func (h *PaymentHandler) UpdatePaymentAmount(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	var req UpdateAmountRequest
	if bad := bindAndValidate(c, &req); bad != nil {
		return bad.respond(c)
	}
	if _, err := h.paymentInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to update payment")
	}

	payment, err := h.payments.UpdateAmount(c.Request().Context(), id, amountOf(req.Amount))
	if err != nil {
		return serviceError(c, err, "Failed to update payment")
	}
	return c.JSON(http.StatusOK, toPaymentResponse(payment))
}

// DeletePayment handles DELETE /api/v1/payments/:id
// @Summary Delete payment
// @Description Deletes a tuition payment
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param id path int true "Payment ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /payments/{id} [delete]
func (h *PaymentHandler) DeletePayment(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.paymentInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to delete payment")
	}

	if err := h.payments.Delete(c.Request().Context(), id); err != nil {
		return serviceError(c, err, "Failed to delete payment")
	}
	return c.NoContent(http.StatusNoContent)
}
