package handler

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/middleware"
	"github.com/edudesk/edudesk-backend/internal/service"
	"github.com/edudesk/edudesk-backend/internal/testutil"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var today = time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return today }

func int64Ptr(v int64) *int64 { return &v }
func intPtr(v int) *int       { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

// branchAdmin may use branch 1 only
var branchAdmin = &domain.Principal{Subject: "auth0|admin-central", Role: domain.RoleAdmin, BranchIDs: []int64{1}}

// testEnv wires real services over in-memory repositories and the claims-backed branch gate
type testEnv struct {
	repos     *testutil.Repos
	pub       *testutil.RecordingPublisher
	e         *echo.Echo
	principal *domain.Principal
	reports   *service.ReportService
	h         Handlers
}

// newTestEnv seeds two branches. Branch 1 has:
//
//	group 10 "Math A"    price 100000, teacher 1, 20000 per paid student; students 1, 2, 3
//	group 11 "English B" price  50000; students 1, 4
//	group 12 "Physics"   price  80000, teacher 1, 30000 per paid student; student 5
//
// Student 1 paid March in full, student 2 paid 40000 of March and all of February.
// Branch 2 has group 20, student 6 and teacher 2.
func newTestEnv() *testEnv {
	r := testutil.NewMockRepos()
	r.SetClock(fixedNow)

	r.Branches.AddBranch(&domain.Branch{ID: 1, Name: "Central"})
	r.Branches.AddBranch(&domain.Branch{ID: 2, Name: "North"})
	r.Teachers.AddTeacher(&domain.Teacher{ID: 1, FirstName: "Nodira", LastName: "Karimova", BranchID: 1})
	r.Teachers.AddTeacher(&domain.Teacher{ID: 2, FirstName: "Bekzod", LastName: "Umarov", BranchID: 2})

	r.Groups.AddGroup(&domain.Group{ID: 10, Name: "Math A", Price: dec("100000"), TeacherSalaryPerStudent: dec("20000"), TeacherID: int64Ptr(1), BranchID: 1, DaysOfWeek: "MON, WED", CreatedAt: at(2023, 9, 1, 9)})
	r.Groups.AddGroup(&domain.Group{ID: 11, Name: "English B", Price: dec("50000"), TeacherSalaryPerStudent: dec("10000"), BranchID: 1, CreatedAt: at(2023, 9, 2, 9)})
	r.Groups.AddGroup(&domain.Group{ID: 12, Name: "Physics", Price: dec("80000"), TeacherSalaryPerStudent: dec("30000"), TeacherID: int64Ptr(1), BranchID: 1, CreatedAt: at(2023, 9, 3, 9)})
	r.Groups.AddGroup(&domain.Group{ID: 20, Name: "North Art", Price: dec("70000"), TeacherID: int64Ptr(2), BranchID: 2, CreatedAt: at(2023, 9, 4, 9)})

	r.Students.AddStudent(&domain.Student{ID: 1, FirstName: "Aziz", LastName: "Rahimov", BranchID: 1, PaymentDayOfMonth: intPtr(10), CreatedAt: at(2024, 1, 1, 9)})
	r.Students.AddStudent(&domain.Student{ID: 2, FirstName: "Dilnoza", LastName: "Yusupova", BranchID: 1, PaymentDayOfMonth: intPtr(10), CreatedAt: at(2024, 1, 2, 9)})
	r.Students.AddStudent(&domain.Student{ID: 3, FirstName: "Sardor", LastName: "Aliev", BranchID: 1, CreatedAt: at(2024, 1, 3, 9)})
	r.Students.AddStudent(&domain.Student{ID: 4, FirstName: "Malika", LastName: "Tosheva", BranchID: 1, PaymentDayOfMonth: intPtr(25), CreatedAt: at(2024, 1, 4, 9)})
	r.Students.AddStudent(&domain.Student{ID: 5, FirstName: "Jasur", LastName: "Nazarov", BranchID: 1, PaymentDayOfMonth: intPtr(10), CreatedAt: at(2024, 1, 5, 9)})
	r.Students.AddStudent(&domain.Student{ID: 6, FirstName: "Kamola", LastName: "Ergasheva", BranchID: 2, PaymentDayOfMonth: intPtr(5), CreatedAt: at(2024, 1, 6, 9)})

	r.Memberships.Enroll(10, 1)
	r.Memberships.Enroll(11, 1)
	r.Memberships.Enroll(10, 2)
	r.Memberships.Enroll(10, 3)
	r.Memberships.Enroll(11, 4)
	r.Memberships.Enroll(12, 5)
	r.Memberships.Enroll(20, 6)

	r.Payments.AddPayment(&domain.Payment{ID: 1, StudentID: int64Ptr(1), GroupID: 10, BranchID: 1, Amount: dec("100000"), Category: domain.PaymentCategoryCash, PaymentYear: 2024, PaymentMonth: 3, DueDate: at(2024, 3, 10, 0), CreatedAt: at(2024, 3, 8, 10)})
	r.Payments.AddPayment(&domain.Payment{ID: 2, StudentID: int64Ptr(1), GroupID: 11, BranchID: 1, Amount: dec("50000"), Category: domain.PaymentCategoryCard, PaymentYear: 2024, PaymentMonth: 3, DueDate: at(2024, 3, 10, 0), CreatedAt: at(2024, 3, 9, 11)})
	r.Payments.AddPayment(&domain.Payment{ID: 3, StudentID: int64Ptr(2), GroupID: 10, BranchID: 1, Amount: dec("40000"), Category: domain.PaymentCategoryCash, PaymentYear: 2024, PaymentMonth: 3, DueDate: at(2024, 3, 10, 0), CreatedAt: at(2024, 3, 12, 16)})
	r.Payments.AddPayment(&domain.Payment{ID: 4, StudentID: int64Ptr(2), GroupID: 10, BranchID: 1, Amount: dec("60000"), Category: domain.PaymentCategoryTransfer, PaymentYear: 2024, PaymentMonth: 2, DueDate: at(2024, 2, 10, 0), CreatedAt: at(2024, 2, 10, 12)})
	r.Payments.AddPayment(&domain.Payment{ID: 5, StudentID: int64Ptr(6), GroupID: 20, BranchID: 2, Amount: dec("70000"), Category: domain.PaymentCategoryCash, PaymentYear: 2024, PaymentMonth: 3, DueDate: at(2024, 3, 5, 0), CreatedAt: at(2024, 3, 4, 10)})

	r.Sales.AddSale(&domain.ProductSale{ID: 1, ProductName: "Workbook", Quantity: 3, UnitPrice: dec("15000"), TotalAmount: dec("45000"), Category: domain.ProductCategoryBook, BranchID: 1, StudentID: int64Ptr(1), CreatedAt: at(2024, 3, 12, 9)})
	r.Sales.AddSale(&domain.ProductSale{ID: 2, ProductName: "T-shirt", Quantity: 1, UnitPrice: dec("20000"), TotalAmount: dec("20000"), Category: domain.ProductCategoryUniform, BranchID: 1, CreatedAt: at(2024, 2, 28, 9)})
	r.Expenses.AddExpense(&domain.Expense{ID: 1, Description: "Rent", Amount: dec("300000"), Category: domain.ExpenseCategoryRent, BranchID: 1, CreatedAt: at(2024, 3, 1, 10)})
	r.Expenses.AddExpense(&domain.Expense{ID: 2, Description: "Heating", Amount: dec("90000"), Category: domain.ExpenseCategoryUtilities, BranchID: 2, CreatedAt: at(2024, 3, 3, 10)})
	r.Salaries.AddSalaryPayment(&domain.SalaryPayment{ID: 1, TeacherID: 1, BranchID: 1, Year: 2024, Month: 3, Amount: dec("15000"), CreatedAt: at(2024, 3, 15, 10)})
	r.Salaries.AddSalaryPayment(&domain.SalaryPayment{ID: 2, TeacherID: 2, BranchID: 2, Year: 2024, Month: 3, Amount: dec("5000"), CreatedAt: at(2024, 3, 16, 10)})

	pub := &testutil.RecordingPublisher{}

	students := service.NewStudentService(r.Students, r.Groups, r.Memberships, r.Payments, r.Branches, r.Tx)
	students.SetNowFunc(fixedNow)
	students.SetEventPublisher(pub)
	groups := service.NewGroupService(r.Groups, r.Students, r.Memberships, r.Tx)
	groups.SetEventPublisher(pub)
	payments := service.NewPaymentService(r.Payments, r.Students, r.Groups, r.Memberships, r.Branches, r.Tx)
	payments.SetEventPublisher(pub)
	salaries := service.NewSalaryService(r.Teachers, r.Groups, r.Memberships, r.Payments, r.Salaries, r.Branches)
	salaries.SetEventPublisher(pub)
	sales := service.NewProductSaleService(r.Sales, r.Students, r.Branches, r.Tx)
	sales.SetEventPublisher(pub)
	expenses := service.NewExpenseService(r.Expenses, r.Branches)
	expenses.SetEventPublisher(pub)
	reports := service.NewReportService(r.Payments, r.Sales, r.Expenses, r.Salaries)
	reports.SetNowFunc(fixedNow)

	gate := middleware.NewBranchAccess()

	e := echo.New()
	e.Validator = NewRequestValidator()

	return &testEnv{
		repos:     r,
		pub:       pub,
		e:         e,
		principal: branchAdmin,
		reports:   reports,
		h: Handlers{
			Students:     NewStudentHandler(students, sales, gate),
			Groups:       NewGroupHandler(groups, students, gate),
			Payments:     NewPaymentHandler(payments, students, gate),
			Salaries:     NewSalaryHandler(salaries, gate),
			ProductSales: NewProductSaleHandler(sales, gate),
			Expenses:     NewExpenseHandler(expenses, gate),
			Reports:      NewReportHandler(reports, gate),
		},
	}
}

// do calls fn directly with the env principal in the request context.
// params are path parameter name and value pairs.
func (env *testEnv) do(fn echo.HandlerFunc, method, target, body string, params ...string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if env.principal != nil {
		req = req.WithContext(middleware.WithPrincipal(req.Context(), env.principal))
	}

	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	if err := fn(c); err != nil {
		env.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func decodeObject(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var body []map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body), rec.Body.String())
	return body
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var problem ProblemDetails
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem), rec.Body.String())
	return problem
}
