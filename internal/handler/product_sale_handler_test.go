package handler

import (
	"errors"
	"net/http"
	"testing"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSale(t *testing.T) {
	env := newTestEnv()

	body := `{"productName":" Notebook ","quantity":4,"unitPrice":"2500.50","category":"stationery","branchId":1,"studentId":2}`
	rec := env.do(env.h.ProductSales.CreateSale, http.MethodPost, "/api/v1/product-sales", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	sale := decodeObject(t, rec)
	assert.Equal(t, "Notebook", sale["productName"])
	assert.Equal(t, "2500.50", sale["unitPrice"])
	assert.Equal(t, "10002.00", sale["totalAmount"])
	assert.Equal(t, "STATIONERY", sale["category"])
	assert.Equal(t, "Dilnoza Yusupova", sale["studentName"])
	assert.Equal(t, []string{"product_sale.created"}, env.pub.Types())
}

func TestCreateSale_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		status int
		field  string
	}{
		{"missing name", `{"quantity":1,"unitPrice":"10","category":"BOOK","branchId":1}`, http.StatusBadRequest, "productName"},
		{"zero quantity", `{"productName":"Pen","quantity":0,"unitPrice":"10","category":"BOOK","branchId":1}`, http.StatusBadRequest, "quantity"},
		{"negative price", `{"productName":"Pen","quantity":1,"unitPrice":"-1","category":"BOOK","branchId":1}`, http.StatusBadRequest, "amount"},
		{"unknown category", `{"productName":"Pen","quantity":1,"unitPrice":"10","category":"FOOD","branchId":1}`, http.StatusBadRequest, "category"},
		{"unknown buyer", `{"productName":"Pen","quantity":1,"unitPrice":"10","category":"BOOK","branchId":1,"studentId":99}`, http.StatusNotFound, ""},
		{"other branch", `{"productName":"Pen","quantity":1,"unitPrice":"10","category":"BOOK","branchId":2}`, http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv()

			rec := env.do(env.h.ProductSales.CreateSale, http.MethodPost, "/api/v1/product-sales", tt.body)
			require.Equal(t, tt.status, rec.Code, rec.Body.String())
			if tt.field != "" {
				assert.Equal(t, tt.field, decodeProblem(t, rec).Errors[0].Field)
			}
			assert.Len(t, env.repos.Sales.Sales, 2)
		})
	}
}

func TestCreateSale_BranchLookupFailure(t *testing.T) {
	env := newTestEnv()
	env.repos.Branches.GetByIDFn = func(id int64) (*domain.Branch, error) {
		return nil, errors.New("pool exhausted")
	}

	body := `{"productName":"Pen","quantity":1,"unitPrice":"10","category":"BOOK","branchId":1}`
	rec := env.do(env.h.ProductSales.CreateSale, http.MethodPost, "/api/v1/product-sales", body)
	require.Equal(t, http.StatusInternalServerError, rec.Code)

	problem := decodeProblem(t, rec)
	assert.Equal(t, ErrorTypeInternal, problem.Type)
	assert.Equal(t, "Failed to create product sale", problem.Detail)
}

func TestListSales(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.ProductSales.ListSales, http.MethodGet, "/api/v1/product-sales?branchId=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	sales := decodeList(t, rec)
	require.Len(t, sales, 2)
	assert.Equal(t, "Workbook", sales[0]["productName"])

	rec = env.do(env.h.ProductSales.ListSales, http.MethodGet, "/api/v1/product-sales?branchId=1&category=uniform", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = env.do(env.h.ProductSales.SalesInRange, http.MethodGet, "/api/v1/product-sales/range?branchId=1&startDate=2024-03-01&endDate=2024-03-31", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeList(t, rec), 1)

	rec = env.do(env.h.ProductSales.ListSales, http.MethodGet, "/api/v1/product-sales?branchId=2", "")
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestSalesSummary(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.ProductSales.Summary, http.MethodGet, "/api/v1/product-sales/summary?branchId=1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary := decodeObject(t, rec)
	assert.Equal(t, "65000.00", summary["totalRevenue"])
	assert.NotContains(t, summary, "month")

	rec = env.do(env.h.ProductSales.Summary, http.MethodGet, "/api/v1/product-sales/summary?branchId=1&year=2024&month=3", "")
	require.Equal(t, http.StatusOK, rec.Code)
	summary = decodeObject(t, rec)
	assert.Equal(t, "45000.00", summary["totalRevenue"])
	assert.Equal(t, float64(3), summary["month"])

	rec = env.do(env.h.ProductSales.Summary, http.MethodGet, "/api/v1/product-sales/summary?branchId=1&year=2024&month=13", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "month", decodeProblem(t, rec).Errors[0].Field)
}

func TestSalesCategorySummary(t *testing.T) {
	env := newTestEnv()

	rec := env.do(env.h.ProductSales.CategorySummary, http.MethodGet, "/api/v1/product-sales/categories?branchId=1", "")
	require.Equal(t, http.StatusOK, rec.Code)

	categories := decodeList(t, rec)
	require.Len(t, categories, len(domain.ProductCategories))
	revenue := make(map[string]interface{})
	for _, c := range categories {
		revenue[c["category"].(string)] = c["revenue"]
	}
	assert.Equal(t, "45000.00", revenue["BOOK"])
	assert.Equal(t, "20000.00", revenue["UNIFORM"])
	assert.Equal(t, "0.00", revenue["OTHER"])
}

func TestUpdateSale(t *testing.T) {
	env := newTestEnv()

	body := `{"productName":"Workbook","quantity":2,"unitPrice":"15000","category":"BOOK","branchId":1}`
	rec := env.do(env.h.ProductSales.UpdateSale, http.MethodPut, "/api/v1/product-sales/1", body, "id", "1")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	sale := decodeObject(t, rec)
	assert.Equal(t, "30000.00", sale["totalAmount"])
	assert.NotContains(t, sale, "studentId")
	assert.Equal(t, "2024-03-12T09:00:00Z", sale["createdAt"])
	assert.Equal(t, []string{"product_sale.updated"}, env.pub.Types())

	// moving the sale to a branch the caller does not administer
	body = `{"productName":"Workbook","quantity":2,"unitPrice":"15000","category":"BOOK","branchId":2}`
	rec = env.do(env.h.ProductSales.UpdateSale, http.MethodPut, "/api/v1/product-sales/1", body, "id", "1")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, int64(1), env.repos.Sales.Sales[1].BranchID)
}

func TestGetAndDeleteSale(t *testing.T) {
	env := newTestEnv()
	env.repos.Sales.AddSale(&domain.ProductSale{ID: 3, ProductName: "Paint set", Quantity: 1, UnitPrice: dec("12000"), TotalAmount: dec("12000"), Category: domain.ProductCategoryOther, BranchID: 2, CreatedAt: at(2024, 3, 2, 9)})

	rec := env.do(env.h.ProductSales.GetSale, http.MethodGet, "/api/v1/product-sales/2", "", "id", "2")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "T-shirt", decodeObject(t, rec)["productName"])

	rec = env.do(env.h.ProductSales.GetSale, http.MethodGet, "/api/v1/product-sales/3", "", "id", "3")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = env.do(env.h.ProductSales.DeleteSale, http.MethodDelete, "/api/v1/product-sales/3", "", "id", "3")
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, env.repos.Sales.Sales, int64(3))

	rec = env.do(env.h.ProductSales.DeleteSale, http.MethodDelete, "/api/v1/product-sales/2", "", "id", "2")
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotContains(t, env.repos.Sales.Sales, int64(2))

	rec = env.do(env.h.ProductSales.GetSale, http.MethodGet, "/api/v1/product-sales/2", "", "id", "2")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
