package service

import (
	"time"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/testutil"
	"github.com/shopspring/decimal"
)

// today is 2024-03-20, which falls in the March 2024 payment period
var today = time.Date(2024, 3, 20, 14, 30, 0, 0, time.UTC)

func fixedNow() time.Time { return today }

func intPtr(v int) *int       { return &v }
func int64Ptr(v int64) *int64 { return &v }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func at(y int, m time.Month, d, hour int) time.Time {
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}

// seedBranch builds a small branch:
//
//	group 10 "Math A"    price 100000, teacher 1, 20000 per paid student
//	group 11 "English B" price  50000, no teacher
//	group 12 "Physics"   price  80000, teacher 1, 30000 per paid student
//	group 20 "North Art" in branch 2
//
//	student 1 pays on the 10th, attends 10 and 11, fully paid for March
//	student 2 pays on the 10th, attends 10, paid 40000 for March and 60000 for February
//	student 3 has no pay day, attends 10, never paid
//	student 4 pays on the 25th, attends 11, never paid
//	student 5 pays on the 10th, attends 12, never paid
func seedBranch() *testutil.Repos {
	r := testutil.NewMockRepos()
	r.SetClock(fixedNow)

	r.Branches.AddBranch(&domain.Branch{ID: 1, Name: "Central"})
	r.Branches.AddBranch(&domain.Branch{ID: 2, Name: "North"})
	r.Teachers.AddTeacher(&domain.Teacher{ID: 1, FirstName: "Nodira", LastName: "Karimova", BranchID: 1})

	r.Groups.AddGroup(&domain.Group{ID: 10, Name: "Math A", Price: dec("100000"), TeacherSalaryPerStudent: dec("20000"), TeacherID: int64Ptr(1), BranchID: 1, CreatedAt: at(2023, 9, 1, 9)})
	r.Groups.AddGroup(&domain.Group{ID: 11, Name: "English B", Price: dec("50000"), TeacherSalaryPerStudent: dec("10000"), BranchID: 1, CreatedAt: at(2023, 9, 2, 9)})
	r.Groups.AddGroup(&domain.Group{ID: 12, Name: "Physics", Price: dec("80000"), TeacherSalaryPerStudent: dec("30000"), TeacherID: int64Ptr(1), BranchID: 1, CreatedAt: at(2023, 9, 3, 9)})
	r.Groups.AddGroup(&domain.Group{ID: 20, Name: "North Art", Price: dec("70000"), BranchID: 2, CreatedAt: at(2023, 9, 4, 9)})

	r.Students.AddStudent(&domain.Student{ID: 1, FirstName: "Aziz", LastName: "Rahimov", BranchID: 1, PaymentDayOfMonth: intPtr(10), CreatedAt: at(2024, 1, 1, 9)})
	r.Students.AddStudent(&domain.Student{ID: 2, FirstName: "Dilnoza", LastName: "Yusupova", BranchID: 1, PaymentDayOfMonth: intPtr(10), CreatedAt: at(2024, 1, 2, 9)})
	r.Students.AddStudent(&domain.Student{ID: 3, FirstName: "Sardor", LastName: "Aliev", BranchID: 1, CreatedAt: at(2024, 1, 3, 9)})
	r.Students.AddStudent(&domain.Student{ID: 4, FirstName: "Malika", LastName: "Tosheva", BranchID: 1, PaymentDayOfMonth: intPtr(25), CreatedAt: at(2024, 1, 4, 9)})
	r.Students.AddStudent(&domain.Student{ID: 5, FirstName: "Jasur", LastName: "Nazarov", BranchID: 1, PaymentDayOfMonth: intPtr(10), CreatedAt: at(2024, 1, 5, 9)})

	r.Memberships.Enroll(10, 1)
	r.Memberships.Enroll(11, 1)
	r.Memberships.Enroll(10, 2)
	r.Memberships.Enroll(10, 3)
	r.Memberships.Enroll(11, 4)
	r.Memberships.Enroll(12, 5)

	r.Payments.AddPayment(&domain.Payment{ID: 1, StudentID: int64Ptr(1), GroupID: 10, BranchID: 1, Amount: dec("100000"), Category: domain.PaymentCategoryCash, PaymentYear: 2024, PaymentMonth: 3, DueDate: at(2024, 3, 10, 0), CreatedAt: at(2024, 3, 8, 10)})
	r.Payments.AddPayment(&domain.Payment{ID: 2, StudentID: int64Ptr(1), GroupID: 11, BranchID: 1, Amount: dec("50000"), Category: domain.PaymentCategoryCard, PaymentYear: 2024, PaymentMonth: 3, DueDate: at(2024, 3, 10, 0), CreatedAt: at(2024, 3, 9, 11)})
	r.Payments.AddPayment(&domain.Payment{ID: 3, StudentID: int64Ptr(2), GroupID: 10, BranchID: 1, Amount: dec("40000"), Category: domain.PaymentCategoryCash, PaymentYear: 2024, PaymentMonth: 3, DueDate: at(2024, 3, 10, 0), CreatedAt: at(2024, 3, 12, 16)})
	r.Payments.AddPayment(&domain.Payment{ID: 4, StudentID: int64Ptr(2), GroupID: 10, BranchID: 1, Amount: dec("60000"), Category: domain.PaymentCategoryTransfer, PaymentYear: 2024, PaymentMonth: 2, DueDate: at(2024, 2, 10, 0), CreatedAt: at(2024, 2, 10, 12)})

	return r
}
