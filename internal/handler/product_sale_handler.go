package handler

import (
	"net/http"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/service"
	"github.com/labstack/echo/v4"
)

// ProductSaleHandler handles merchandise sale HTTP requests
type ProductSaleHandler struct {
	sales *service.ProductSaleService
	gate  BranchGate
}

// NewProductSaleHandler creates a new ProductSaleHandler
func NewProductSaleHandler(sales *service.ProductSaleService, gate BranchGate) *ProductSaleHandler {
	return &ProductSaleHandler{sales: sales, gate: gate}
}

// ProductSaleRequest represents the create and update product sale request body
type ProductSaleRequest struct {
	ProductName string `json:"productName" validate:"required,max=200"`
	Description string `json:"description" validate:"max=500"`
	Quantity    int    `json:"quantity" validate:"required,min=1"`
	UnitPrice   string `json:"unitPrice" validate:"required,decimal"`
	Category    string `json:"category" validate:"required"`
	BranchID    int64  `json:"branchId" validate:"required,gt=0"`
	StudentID   *int64 `json:"studentId" validate:"omitempty,gt=0"`
}

func (r ProductSaleRequest) input() domain.ProductSaleInput {
	return domain.ProductSaleInput{
		ProductName: r.ProductName,
		Description: r.Description,
		Quantity:    r.Quantity,
		UnitPrice:   amountOf(r.UnitPrice),
		Category:    r.Category,
		BranchID:    r.BranchID,
		StudentID:   r.StudentID,
	}
}

func (h *ProductSaleHandler) saleInScope(c echo.Context, id int64) (*domain.ProductSale, error) {
	sale, err := h.sales.GetByID(c.Request().Context(), id)
	if err != nil {
		return nil, err
	}
	if err := h.gate.Check(c, sale.BranchID); err != nil {
		return nil, err
	}
	return sale, nil
}

// CreateSale handles POST /api/v1/product-sales
// @Summary Record product sale
// @Description Records a sale. The total is unit price times quantity
// @Tags product-sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body ProductSaleRequest true "Sale to record"
// @Success 201 {object} ProductSaleResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /product-sales [post]
func (h *ProductSaleHandler) CreateSale(c echo.Context) error {
	var req ProductSaleRequest
	if bad := bindAndValidate(c, &req); bad != nil {
		return bad.respond(c)
	}
	if err := h.gate.Check(c, req.BranchID); err != nil {
		return serviceError(c, err, "Failed to create product sale")
	}

	sale, err := h.sales.Create(c.Request().Context(), req.input())
	if err != nil {
		return serviceError(c, err, "Failed to create product sale")
	}
	return c.JSON(http.StatusCreated, toProductSaleResponse(sale))
}

// ListSales handles GET /api/v1/product-sales?branchId=&category=
// @Summary List product sales
// @Description Returns the product sales of a branch, optionally filtered by category
// @Tags product-sales
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param category query string false "BOOK, UNIFORM, STATIONERY, MERCHANDISE or OTHER"
// @Success 200 {array} ProductSaleResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /product-sales [get]
func (h *ProductSaleHandler) ListSales(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}

	var sales []*domain.ProductSale
	if category := c.QueryParam("category"); category != "" {
		sales, err = h.sales.ListByCategory(c.Request().Context(), branchID, category)
	} else {
		sales, err = h.sales.ListByBranch(c.Request().Context(), branchID)
	}
	if err != nil {
		return serviceError(c, err, "Failed to list product sales")
	}
	return c.JSON(http.StatusOK, toProductSaleResponses(sales))
}

// SalesInRange handles GET /api/v1/product-sales/range?branchId=&startDate=&endDate=
// @Summary List product sales in date range
// @Description Returns sales created between startDate and endDate, both days included
// @Tags product-sales
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param startDate query string true "First day, YYYY-MM-DD"
// @Param endDate query string true "Last day, YYYY-MM-DD"
// @Success 200 {array} ProductSaleResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /product-sales/range [get]
func (h *ProductSaleHandler) SalesInRange(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}
	start, end, perr := queryRange(c)
	if perr != nil {
		return perr.respond(c)
	}

	sales, err := h.sales.ListByDateRange(c.Request().Context(), branchID, start, end)
	if err != nil {
		return serviceError(c, err, "Failed to list product sales")
	}
	return c.JSON(http.StatusOK, toProductSaleResponses(sales))
}

// Summary handles GET /api/v1/product-sales/summary?branchId=&year=&month=
// @Summary Get sales revenue
// @Description Returns total sales revenue, for one calendar month when year and month are given
// @Tags product-sales
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Param year query int false "Year"
// @Param month query int false "Month (1-12)"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /product-sales/summary [get]
func (h *ProductSaleHandler) Summary(c echo.Context) error {
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

	summary, err := h.sales.Summary(c.Request().Context(), branchID, year, month)
	if err != nil {
		return serviceError(c, err, "Failed to summarise product sales")
	}

	body := map[string]interface{}{
		"branchId":     summary.BranchID,
		"totalRevenue": money(summary.TotalRevenue),
	}
	if summary.Year != nil && summary.Month != nil {
		body["year"] = *summary.Year
		body["month"] = *summary.Month
	}
	return c.JSON(http.StatusOK, body)
}

// CategorySummary handles GET /api/v1/product-sales/categories?branchId=
// @Summary Get revenue per category
// @Description Returns the revenue of every product category, zero when nothing was sold
// @Tags product-sales
// @Produce json
// @Security BearerAuth
// @Param branchId query int true "Branch ID"
// @Success 200 {array} map[string]string
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /product-sales/categories [get]
func (h *ProductSaleHandler) CategorySummary(c echo.Context) error {
	branchID, err := scopedBranch(c, h.gate)
	if err != nil {
		return respondScopeError(c, err)
	}

	categories, err := h.sales.CategorySummary(c.Request().Context(), branchID)
	if err != nil {
		return serviceError(c, err, "Failed to summarise product sales")
	}

	response := make([]map[string]string, len(categories))
	for i, cat := range categories {
		response[i] = map[string]string{
			"category": string(cat.Category),
			"revenue":  money(cat.Revenue),
		}
	}
	return c.JSON(http.StatusOK, response)
}

// GetSale handles GET /api/v1/product-sales/:id
// @Summary Get product sale
// @Description Returns one product sale
// @Tags product-sales
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product sale ID"
// @Success 200 {object} ProductSaleResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /product-sales/{id} [get]
func (h *ProductSaleHandler) GetSale(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}

	sale, err := h.saleInScope(c, id)
	if err != nil {
		return serviceError(c, err, "Failed to get product sale")
	}
	return c.JSON(http.StatusOK, toProductSaleResponse(sale))
}

// UpdateSale handles PUT /api/v1/product-sales/:id
// @Summary Update product sale
// @Description Replaces the sale details and recomputes the total. Omitting studentId unlinks the buyer
// @Tags product-sales
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product sale ID"
// @Param request body ProductSaleRequest true "Sale details"
// @Success 200 {object} ProductSaleResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /product-sales/{id} [put]
func (h *ProductSaleHandler) UpdateSale(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	var req ProductSaleRequest
	if bad := bindAndValidate(c, &req); bad != nil {
		return bad.respond(c)
	}

	existing, err := h.saleInScope(c, id)
	if err != nil {
		return serviceError(c, err, "Failed to update product sale")
	}
	if req.BranchID != existing.BranchID {
		if err := h.gate.Check(c, req.BranchID); err != nil {
			return serviceError(c, err, "Failed to update product sale")
		}
	}

	sale, err := h.sales.Update(c.Request().Context(), id, req.input())
	if err != nil {
		return serviceError(c, err, "Failed to update product sale")
	}
	return c.JSON(http.StatusOK, toProductSaleResponse(sale))
}

// DeleteSale handles DELETE /api/v1/product-sales/:id
// @Summary Delete product sale
// @Description Deletes a product sale
// @Tags product-sales
// @Produce json
// @Security BearerAuth
// @Param id path int true "Product sale ID"
// @Success 204 "No Content"
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Failure 403 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Failure 500 {object} ProblemDetails
// @Router /product-sales/{id} [delete]
func (h *ProductSaleHandler) DeleteSale(c echo.Context) error {
	id, perr := pathID(c, "id")
	if perr != nil {
		return perr.respond(c)
	}
	if _, err := h.saleInScope(c, id); err != nil {
		return serviceError(c, err, "Failed to delete product sale")
	}

	if err := h.sales.Delete(c.Request().Context(), id); err != nil {
		return serviceError(c, err, "Failed to delete product sale")
	}
	return c.NoContent(http.StatusNoContent)
}
