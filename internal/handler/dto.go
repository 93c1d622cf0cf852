package handler

import (
	"github.com/edudesk/edudesk-backend/internal/domain"
)

// GroupInfoResponse is the short group form shown next to a student
type GroupInfoResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Price       string `json:"price"`
	TeacherName string `json:"teacherName,omitempty"`
}

// StudentResponse represents a student with its period projection
type StudentResponse struct {
	ID                int64               `json:"id"`
	FirstName         string              `json:"firstName"`
	LastName          string              `json:"lastName"`
	PhoneNumber       string              `json:"phoneNumber"`
	ParentPhoneNumber string              `json:"parentPhoneNumber"`
	BranchID          int64               `json:"branchId"`
	BranchName        string              `json:"branchName"`
	PaymentDayOfMonth *int                `json:"paymentDayOfMonth,omitempty"`
	CreatedAt         string              `json:"createdAt"`
	Groups            []GroupInfoResponse `json:"groups"`

	Year             int     `json:"year"`
	Month            int     `json:"month"`
	HasPaidInMonth   bool    `json:"hasPaidInMonth"`
	TotalPaidInMonth string  `json:"totalPaidInMonth"`
	ExpectedAmount   string  `json:"expectedAmount"`
	RemainingAmount  string  `json:"remainingAmount"`
	PaymentStatus    string  `json:"paymentStatus"`
	NextDueDate      *string `json:"nextDueDate,omitempty"`
	LastPaymentDate  *string `json:"lastPaymentDate,omitempty"`
}

func toStudentResponse(v *domain.StudentView) StudentResponse {
	groups := make([]GroupInfoResponse, len(v.Groups))
	for i, g := range v.Groups {
		groups[i] = GroupInfoResponse{ID: g.ID, Name: g.Name, Price: money(g.Price), TeacherName: g.TeacherName}
	}

	p := v.Projection
	return StudentResponse{
		ID:                v.Student.ID,
		FirstName:         v.Student.FirstName,
		LastName:          v.Student.LastName,
		PhoneNumber:       v.Student.PhoneNumber,
		ParentPhoneNumber: v.Student.ParentPhoneNumber,
		BranchID:          v.Student.BranchID,
		BranchName:        v.BranchName,
		PaymentDayOfMonth: v.Student.PaymentDayOfMonth,
		CreatedAt:         formatTimestamp(v.Student.CreatedAt),
		Groups:            groups,
		Year:              p.Year,
		Month:             p.Month,
		HasPaidInMonth:    p.HasPaidInMonth,
		TotalPaidInMonth:  money(p.TotalPaidInMonth),
		ExpectedAmount:    money(p.ExpectedAmount),
		RemainingAmount:   money(p.RemainingAmount),
		PaymentStatus:     string(p.PaymentStatus),
		NextDueDate:       formatDatePtr(p.NextDueDate),
		LastPaymentDate:   formatDatePtr(p.LastPaymentDate),
	}
}

func toStudentResponses(views []*domain.StudentView) []StudentResponse {
	out := make([]StudentResponse, len(views))
	for i, v := range views {
		out[i] = toStudentResponse(v)
	}
	return out
}

// UnpaidStudentResponse is one row of the collections worklist
type UnpaidStudentResponse struct {
	StudentID         int64  `json:"studentId"`
	FirstName         string `json:"firstName"`
	LastName          string `json:"lastName"`
	PhoneNumber       string `json:"phoneNumber"`
	ParentPhoneNumber string `json:"parentPhoneNumber"`
	RemainingAmount   string `json:"remainingAmount"`
	GroupID           int64  `json:"groupId"`
	GroupName         string `json:"groupName"`
}

func toUnpaidResponses(entries []domain.UnpaidEntry) []UnpaidStudentResponse {
	out := make([]UnpaidStudentResponse, len(entries))
	for i, e := range entries {
		out[i] = UnpaidStudentResponse{
			StudentID:         e.StudentID,
			FirstName:         e.FirstName,
			LastName:          e.LastName,
			PhoneNumber:       e.PhoneNumber,
			ParentPhoneNumber: e.ParentPhoneNumber,
			RemainingAmount:   money(e.RemainingAmount),
			GroupID:           e.GroupID,
			GroupName:         e.GroupName,
		}
	}
	return out
}

// GroupResponse represents a group in API responses
type GroupResponse struct {
	ID                      int64    `json:"id"`
	Name                    string   `json:"name"`
	Description             string   `json:"description"`
	Price                   string   `json:"price"`
	TeacherSalaryPerStudent string   `json:"teacherSalaryPerStudent"`
	TeacherID               *int64   `json:"teacherId,omitempty"`
	TeacherName             string   `json:"teacherName,omitempty"`
	BranchID                int64    `json:"branchId"`
	StartTime               string   `json:"startTime"`
	EndTime                 string   `json:"endTime"`
	DaysOfWeek              []string `json:"daysOfWeek"`
	StudentCount            int      `json:"studentCount"`
	CreatedAt               string   `json:"createdAt"`
}

func toGroupResponse(g *domain.Group) GroupResponse {
	return GroupResponse{
		ID:                      g.ID,
		Name:                    g.Name,
		Description:             g.Description,
		Price:                   money(g.Price),
		TeacherSalaryPerStudent: money(g.TeacherSalaryPerStudent),
		TeacherID:               g.TeacherID,
		TeacherName:             g.TeacherName,
		BranchID:                g.BranchID,
		StartTime:               g.StartTime,
		EndTime:                 g.EndTime,
		DaysOfWeek:              g.Days(),
		StudentCount:            g.StudentCount,
		CreatedAt:               formatTimestamp(g.CreatedAt),
	}
}

func toGroupResponses(groups []*domain.Group) []GroupResponse {
	out := make([]GroupResponse, len(groups))
	for i, g := range groups {
		out[i] = toGroupResponse(g)
	}
	return out
}

// PaymentResponse represents a tuition payment in API responses
type PaymentResponse struct {
	ID           int64  `json:"id"`
	StudentID    *int64 `json:"studentId,omitempty"`
	StudentName  string `json:"studentName,omitempty"`
	GroupID      int64  `json:"groupId"`
	GroupName    string `json:"groupName,omitempty"`
	Amount       string `json:"amount"`
	Description  string `json:"description"`
	Category     string `json:"category"`
	Status       string `json:"status"`
	BranchID     int64  `json:"branchId"`
	BranchName   string `json:"branchName,omitempty"`
	PaymentYear  int    `json:"paymentYear"`
	PaymentMonth int    `json:"paymentMonth"`
	DueDate      string `json:"dueDate"`
	CreatedAt    string `json:"createdAt"`
}

func toPaymentResponse(p *domain.Payment) PaymentResponse {
	return PaymentResponse{
		ID:           p.ID,
		StudentID:    p.StudentID,
		StudentName:  p.StudentName,
		GroupID:      p.GroupID,
		GroupName:    p.GroupName,
		Amount:       money(p.Amount),
		Description:  p.Description,
		Category:     string(p.Category),
		Status:       string(p.Status),
		BranchID:     p.BranchID,
		BranchName:   p.BranchName,
		PaymentYear:  p.PaymentYear,
		PaymentMonth: p.PaymentMonth,
		DueDate:      formatDate(p.DueDate),
		CreatedAt:    formatTimestamp(p.CreatedAt),
	}
}

func toPaymentResponses(payments []*domain.Payment) []PaymentResponse {
	out := make([]PaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toPaymentResponse(p)
	}
	return out
}

// SalaryPaymentResponse represents a salary disbursement in API responses
type SalaryPaymentResponse struct {
	ID          int64  `json:"id"`
	TeacherID   int64  `json:"teacherId"`
	TeacherName string `json:"teacherName,omitempty"`
	Year        int    `json:"year"`
	Month       int    `json:"month"`
	Amount      string `json:"amount"`
	Description string `json:"description"`
	BranchID    int64  `json:"branchId"`
	BranchName  string `json:"branchName,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func toSalaryPaymentResponse(p *domain.SalaryPayment) SalaryPaymentResponse {
	return SalaryPaymentResponse{
		ID:          p.ID,
		TeacherID:   p.TeacherID,
		TeacherName: p.TeacherName,
		Year:        p.Year,
		Month:       p.Month,
		Amount:      money(p.Amount),
		Description: p.Description,
		BranchID:    p.BranchID,
		BranchName:  p.BranchName,
		CreatedAt:   formatTimestamp(p.CreatedAt),
	}
}

func toSalaryPaymentResponses(payments []*domain.SalaryPayment) []SalaryPaymentResponse {
	out := make([]SalaryPaymentResponse, len(payments))
	for i, p := range payments {
		out[i] = toSalaryPaymentResponse(p)
	}
	return out
}

// GroupSalaryResponse is one group's share of a salary calculation
type GroupSalaryResponse struct {
	GroupID           int64  `json:"groupId"`
	GroupName         string `json:"groupName"`
	PaidStudentCount  int    `json:"paidStudentCount"`
	TotalStudentCount int    `json:"totalStudentCount"`
	GroupPrice        string `json:"groupPrice"`
	SalaryAmount      string `json:"salaryAmount"`
}

// SalaryCalculationResponse is the salary owed to a teacher for a period
type SalaryCalculationResponse struct {
	TeacherID         int64                 `json:"teacherId"`
	TeacherName       string                `json:"teacherName"`
	BranchID          int64                 `json:"branchId"`
	Year              int                   `json:"year"`
	Month             int                   `json:"month"`
	TotalSalary       string                `json:"totalSalary"`
	TotalPaidStudents int                   `json:"totalPaidStudents"`
	AlreadyPaid       string                `json:"alreadyPaid"`
	RemainingAmount   string                `json:"remainingAmount"`
	Groups            []GroupSalaryResponse `json:"groups"`
}

func toSalaryCalculationResponse(calc *domain.SalaryCalculation) SalaryCalculationResponse {
	groups := make([]GroupSalaryResponse, len(calc.Groups))
	for i, g := range calc.Groups {
		groups[i] = GroupSalaryResponse{
			GroupID:           g.GroupID,
			GroupName:         g.GroupName,
			PaidStudentCount:  g.PaidStudentCount,
			TotalStudentCount: g.TotalStudentCount,
			GroupPrice:        money(g.GroupPrice),
			SalaryAmount:      money(g.SalaryAmount),
		}
	}
	return SalaryCalculationResponse{
		TeacherID:         calc.TeacherID,
		TeacherName:       calc.TeacherName,
		BranchID:          calc.BranchID,
		Year:              calc.Year,
		Month:             calc.Month,
		TotalSalary:       money(calc.TotalSalary),
		TotalPaidStudents: calc.TotalPaidStudents,
		AlreadyPaid:       money(calc.AlreadyPaid),
		RemainingAmount:   money(calc.RemainingAmount),
		Groups:            groups,
	}
}

// SalaryHistoryResponse compares owed and disbursed salary for one period
type SalaryHistoryResponse struct {
	TeacherID       int64   `json:"teacherId"`
	TeacherName     string  `json:"teacherName"`
	Year            int     `json:"year"`
	Month           int     `json:"month"`
	TotalSalary     string  `json:"totalSalary"`
	AmountPaid      string  `json:"amountPaid"`
	RemainingAmount string  `json:"remainingAmount"`
	FullySettled    bool    `json:"fullySettled"`
	LastPaymentDate *string `json:"lastPaymentDate,omitempty"`
	PaymentCount    int     `json:"paymentCount"`
}

func toSalaryHistoryResponses(entries []*domain.SalaryHistoryEntry) []SalaryHistoryResponse {
	out := make([]SalaryHistoryResponse, len(entries))
	for i, e := range entries {
		var last *string
		if e.LastPaymentDate != nil {
			ts := formatTimestamp(*e.LastPaymentDate)
			last = &ts
		}
		out[i] = SalaryHistoryResponse{
			TeacherID:       e.TeacherID,
			TeacherName:     e.TeacherName,
			Year:            e.Year,
			Month:           e.Month,
			TotalSalary:     money(e.TotalSalary),
			AmountPaid:      money(e.AmountPaid),
			RemainingAmount: money(e.RemainingAmount),
			FullySettled:    e.FullySettled,
			LastPaymentDate: last,
			PaymentCount:    e.PaymentCount,
		}
	}
	return out
}

// ProductSaleResponse represents a product sale in API responses
type ProductSaleResponse struct {
	ID          int64  `json:"id"`
	ProductName string `json:"productName"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	UnitPrice   string `json:"unitPrice"`
	TotalAmount string `json:"totalAmount"`
	Category    string `json:"category"`
	BranchID    int64  `json:"branchId"`
	BranchName  string `json:"branchName,omitempty"`
	StudentID   *int64 `json:"studentId,omitempty"`
	StudentName string `json:"studentName,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

func toProductSaleResponse(s *domain.ProductSale) ProductSaleResponse {
	return ProductSaleResponse{
		ID:          s.ID,
		ProductName: s.ProductName,
		Description: s.Description,
		Quantity:    s.Quantity,
		UnitPrice:   money(s.UnitPrice),
		TotalAmount: money(s.TotalAmount),
		Category:    string(s.Category),
		BranchID:    s.BranchID,
		BranchName:  s.BranchName,
		StudentID:   s.StudentID,
		StudentName: s.StudentName,
		CreatedAt:   formatTimestamp(s.CreatedAt),
	}
}

func toProductSaleResponses(sales []*domain.ProductSale) []ProductSaleResponse {
	out := make([]ProductSaleResponse, len(sales))
	for i, s := range sales {
		out[i] = toProductSaleResponse(s)
	}
	return out
}

// ExpenseResponse represents an operational expense in API responses
type ExpenseResponse struct {
	ID          int64  `json:"id"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Category    string `json:"category"`
	BranchID    int64  `json:"branchId"`
	CreatedAt   string `json:"createdAt"`
}

func toExpenseResponse(e *domain.Expense) ExpenseResponse {
	return ExpenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      money(e.Amount),
		Category:    string(e.Category),
		BranchID:    e.BranchID,
		CreatedAt:   formatTimestamp(e.CreatedAt),
	}
}

func toExpenseResponses(expenses []*domain.Expense) []ExpenseResponse {
	out := make([]ExpenseResponse, len(expenses))
	for i, e := range expenses {
		out[i] = toExpenseResponse(e)
	}
	return out
}

// reportBody renders a report as a map keyed by field name, echoing the window it covers
func reportBody(w domain.ReportWindow) map[string]interface{} {
	body := map[string]interface{}{
		"type":     string(w.Type),
		"branchId": w.BranchID,
	}
	if w.Date != nil {
		body["date"] = formatDate(*w.Date)
	}
	if w.Year != nil {
		body["year"] = *w.Year
	}
	if w.Month != nil {
		body["month"] = *w.Month
	}
	if w.StartDate != nil {
		body["startDate"] = formatDate(*w.StartDate)
	}
	if w.EndDate != nil {
		body["endDate"] = formatDate(*w.EndDate)
	}
	return body
}

func incomeBody(r *domain.IncomeReport) map[string]interface{} {
	body := reportBody(r.ReportWindow)
	body["studentPayments"] = money(r.StudentPayments)
	body["productSales"] = money(r.ProductSales)
	body["totalIncome"] = money(r.TotalIncome)
	return body
}

func expenseBody(r *domain.ExpenseReport) map[string]interface{} {
	body := reportBody(r.ReportWindow)
	body["regularExpenses"] = money(r.RegularExpenses)
	body["salaryExpenses"] = money(r.SalaryExpenses)
	body["totalExpenses"] = money(r.TotalExpenses)
	return body
}

func summaryBody(r *domain.FinancialSummary) map[string]interface{} {
	body := reportBody(r.ReportWindow)
	body["studentPayments"] = money(r.StudentPayments)
	body["productSales"] = money(r.ProductSales)
	body["totalIncome"] = money(r.TotalIncome)
	body["regularExpenses"] = money(r.RegularExpenses)
	body["salaryPayments"] = money(r.SalaryPayments)
	body["totalExpenses"] = money(r.TotalExpenses)
	body["netProfit"] = money(r.NetProfit)
	return body
}
