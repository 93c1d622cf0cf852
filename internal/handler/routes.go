package handler

import (
	"github.com/edudesk/edudesk-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// Handlers groups the API handlers mounted under /api/v1
type Handlers struct {
	Students     *StudentHandler
	Groups       *GroupHandler
	Payments     *PaymentHandler
	Salaries     *SalaryHandler
	ProductSales *ProductSaleHandler
	Expenses     *ExpenseHandler
	Reports      *ReportHandler
}

// RegisterRoutes sets up all API routes. Every /api/v1 route is authenticated and rate limited.
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, h Handlers) {
	// API version 1
	api := e.Group("/api/v1")
	api.Use(authMiddleware.Authenticate())
	api.Use(middleware.RateLimitMiddleware(rateLimiter))

	// Student routes
	students := api.Group("/students")
	students.GET("", h.Students.ListStudents)
	students.POST("", h.Students.CreateStudent)
	students.GET("/search", h.Students.SearchStudents)
	students.GET("/recent", h.Students.RecentStudents)
	students.GET("/unpaid", h.Students.UnpaidStudents)
	students.GET("/statistics", h.Students.Statistics)
	students.GET("/:id", h.Students.GetStudent)
	students.PUT("/:id", h.Students.UpdateStudent)
	students.DELETE("/:id", h.Students.DeleteStudent)
	students.GET("/:id/payments", h.Students.StudentPayments)
	students.GET("/:id/groups", h.Students.StudentGroups)
	students.GET("/:id/product-sales", h.Students.StudentProductSales)

	// Group routes
	groups := api.Group("/groups")
	groups.GET("", h.Groups.ListGroups)
	groups.GET("/:id", h.Groups.GetGroup)
	groups.GET("/:id/students", h.Groups.GroupStudents)
	groups.POST("/:id/students", h.Groups.AddStudent)
	groups.DELETE("/:id/students/:studentId", h.Groups.RemoveStudent)

	// Payment routes
	payments := api.Group("/payments")
	payments.GET("", h.Payments.ListPayments)
	payments.POST("", h.Payments.CreatePayment)
	payments.GET("/range", h.Payments.PaymentsInRange)
	payments.GET("/search", h.Payments.SearchPayments)
	payments.GET("/recent", h.Payments.RecentPayments)
	payments.GET("/student/:studentId", h.Payments.StudentPayments)
	payments.GET("/:id", h.Payments.GetPayment)
	payments.PATCH("/:id", h.Payments.UpdatePaymentAmount)
	payments.DELETE("/:id", h.Payments.DeletePayment)

	// Teacher salary routes
	salaries := api.Group("/teacher-salaries")
	salaries.GET("/calculate", h.Salaries.CalculateForBranch)
	salaries.GET("/teachers/:teacherId/calculate", h.Salaries.Calculate)
	salaries.GET("/teachers/:teacherId/history", h.Salaries.History)
	salaries.GET("/teachers/:teacherId/remaining", h.Salaries.Remaining)
	salaries.GET("/teachers/:teacherId/payments", h.Salaries.TeacherPayments)
	salaries.GET("/payments", h.Salaries.ListPayments)
	salaries.POST("/payments", h.Salaries.CreatePayment)
	salaries.GET("/payments/:id", h.Salaries.GetPayment)
	salaries.DELETE("/payments/:id", h.Salaries.DeletePayment)

	// Product sale routes
	sales := api.Group("/product-sales")
	sales.GET("", h.ProductSales.ListSales)
	sales.POST("", h.ProductSales.CreateSale)
	sales.GET("/range", h.ProductSales.SalesInRange)
	sales.GET("/summary", h.ProductSales.Summary)
	sales.GET("/categories", h.ProductSales.CategorySummary)
	sales.GET("/:id", h.ProductSales.GetSale)
	sales.PUT("/:id", h.ProductSales.UpdateSale)
	sales.DELETE("/:id", h.ProductSales.DeleteSale)

	// Expense routes
	expenses := api.Group("/expenses")
	expenses.GET("", h.Expenses.ListExpenses)
	expenses.POST("", h.Expenses.CreateExpense)
	expenses.GET("/:id", h.Expenses.GetExpense)
	expenses.DELETE("/:id", h.Expenses.DeleteExpense)

	// Report routes
	reports := api.Group("/reports")
	reports.GET("/income/daily", h.Reports.DailyIncome)
	reports.GET("/income/monthly", h.Reports.MonthlyIncome)
	reports.GET("/income/range", h.Reports.RangeIncome)
	reports.GET("/expenses/daily", h.Reports.DailyExpenses)
	reports.GET("/expenses/monthly", h.Reports.MonthlyExpenses)
	reports.GET("/expenses/range", h.Reports.RangeExpenses)
	reports.GET("/expenses/all-time", h.Reports.AllTimeExpenses)
	reports.GET("/financial-summary", h.Reports.FinancialSummary)
	reports.GET("/financial-summary/range", h.Reports.FinancialSummaryRange)
	reports.GET("/financial-summary/all-time", h.Reports.AllTimeFinancialSummary)
	reports.POST("/financial-summary/export", h.Reports.ExportFinancialSummary)
}
