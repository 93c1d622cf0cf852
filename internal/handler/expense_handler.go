package handler

import (
	"net/http"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ExpenseHandler handles operational expense HTTP requests
type ExpenseHandler struct {
	expenses *service.ExpenseService
	gate     BranchGate
}

// NewExpenseHandler creates a new ExpenseHandler
func NewExpenseHandler(expenses *service.ExpenseService, gate BranchGate) *ExpenseHandler {
	return &ExpenseHandler{expenses: expenses, gate: gate}
}

// CreateExpenseRequest represents the create expense request body
type CreateExpenseRequest struct {
	Description string `json:"description" validate:"max=500"`
	Amount      string `json:"amount" validate:"required,decimal"`
	Category    string `json:"category" validate:"required"`
	BranchID    int64  `json:"branchId" validate:"required,gt=0"`
}

// CreateExpense handles POST /api/v1/expenses
// @Summary Record expense
// @Description Records an operational expense
// @Tags expenses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateExpenseRequest true "Expense to record"
// @Success 201 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /expenses [post]
func (h *ExpenseHandler) CreateExpense(c echo.Context) error {
	var req CreateExpenseRequest
	if bad := bindAndValidate(c, &req); bad != nil {
		return bad.respond(c)
	}
	if err := h.gate.Check(c, req.BranchID); err != nil {
		return serviceError(c, err, "Failed to create expense")
	}

	expense, err := h.expenses.Create(c.Request().Context(), domain.ExpenseInput{
		Description: req.Description,
		Amount:      amountOf(req.Amount),
		Category:    req.Category,
		BranchID:    req.BranchID,
	})
	if err != nil {
		return serviceError(c, err, "Failed to create expense")
	}
	return c.JSON(http.StatusCreated, toExpenseResponse(expense))
}

// ListExpenses handles GET /api/v1/expenses?branchId=
// @Summary List expenses
// @Description Returns the operational expenses of a branch
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Success 200 {array} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /expenses [get]
func (h *ExpenseHandler) ListExpenses(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}

	expenses, err := h.expenses.ListByBranch(c.Request().Context(), branchID)
	if err != nil {
		return serviceError(c, err, "Failed to list expenses")
	}
	return c.JSON(http.StatusOK, toExpenseResponses(expenses))
}

// GetExpense handles GET /api/v1/expenses/:id
// @Summary Get expense
// @Description Returns one expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 200 {object} ExpenseResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /expenses/{id} [get]
func (h *ExpenseHandler) GetExpense(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}

	expense, err := h.expenses.GetByID(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to get expense")
	}
	if err := h.gate.Check(c, expense.BranchID); err != nil {
		return serviceError(c, err, "Failed to get expense")
	}
	return c.JSON(http.StatusOK, toExpenseResponse(expense))
}

// DeleteExpense handles DELETE /api/v1/expenses/:id
// @Summary Delete expense
// @Description Deletes an expense
// @Tags expenses
// @Produce json
// @Security BearerAuth
// @Param id path int true "Expense ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /expenses/{id} [delete]
func (h *ExpenseHandler) DeleteExpense(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}

	expense, err := h.expenses.GetByID(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err, "Failed to delete expense")
	}
	if err := h.gate.Check(c, expense.BranchID); err != nil {
		return serviceError(c, err, "Failed to delete expense")
	}

	if err := h.expenses.Delete(c.Request().Context(), id); err != nil {
		return serviceError(c, err, "Failed to delete expense")
	}
	return c.NoContent(http.StatusNoContent)
}
