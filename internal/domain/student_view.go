package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// GroupInfo is the short form of a group shown next to a student.
type GroupInfo struct {
	ID          int64           `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	TeacherName string          `json:"teacherName,omitempty"`
}

// StudentProjection holds values computed on read for one billing period.
// Nothing here is persisted.
type StudentProjection struct {
	Year             int             `json:"year"`
	Month            int             `json:"month"`
	HasPaidInMonth   bool            `json:"hasPaidInMonth"`
	TotalPaidInMonth decimal.Decimal `json:"totalPaidInMonth"`
	ExpectedAmount   decimal.Decimal `json:"expectedAmount"`
	RemainingAmount  decimal.Decimal `json:"remainingAmount"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	NextDueDate      *time.Time      `json:"nextDueDate,omitempty"`
	LastPaymentDate  *time.Time      `json:"lastPaymentDate,omitempty"`
}

// StudentView pairs the stored student with its period projection.
type StudentView struct {
	Student    *Student          `json:"student"`
	BranchName string            `json:"branchName"`
	Groups     []GroupInfo       `json:"groups"`
	Projection StudentProjection `json:"projection"`
}

// UnpaidEntry is one (student, group) row of the collections worklist.
type UnpaidEntry struct {
	StudentID         int64           `json:"studentId"`
	FirstName         string          `json:"firstName"`
	LastName          string          `json:"lastName"`
	PhoneNumber       string          `json:"phoneNumber"`
	ParentPhoneNumber string          `json:"parentPhoneNumber"`
	RemainingAmount   decimal.Decimal `json:"remainingAmount"`
	GroupID           int64           `json:"groupId"`
	GroupName         string          `json:"groupName"`
}

// StudentStatistics counts students per status for the current payment period.
// PARTIAL and UNPAID students are both counted as unpaid.
type StudentStatistics struct {
	TotalStudents    int     `json:"totalStudents"`
	PaidStudents     int     `json:"paidStudents"`
	UnpaidStudents   int     `json:"unpaidStudents"`
	UpcomingStudents int     `json:"upcomingStudents"`
	OverdueStudents  int     `json:"overdueStudents"`
	PaymentRate      float64 `json:"paymentRate"`
}
