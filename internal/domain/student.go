package domain

import (
	"context"
	"strings"
	"time"
)

// StudentState is the lifecycle state of a student record.
// Deleted students keep their rows so payment history stays attributable.
type StudentState string

const (
	StudentActive  StudentState = "ACTIVE"
	StudentDeleted StudentState = "DELETED"
)

// Visibility selects which population of students a query reads.
type Visibility int

const (
	VisibleOnly Visibility = iota
	IncludeDeleted
)

// Admits reports whether a student in the given state belongs to this population.
func (v Visibility) Admits(state StudentState) bool {
	switch v {
	case IncludeDeleted:
		return true
	default:
		return state == StudentActive
	}
}

const (
	MinPayDay = 1
	MaxPayDay = 31
)

type Student struct {
	ID                int64        `json:"id"`
	FirstName         string       `json:"firstName"`
	LastName          string       `json:"lastName"`
	PhoneNumber       string       `json:"phoneNumber"`
	ParentPhoneNumber string       `json:"parentPhoneNumber"`
	BranchID          int64        `json:"branchId"`
	PaymentDayOfMonth *int         `json:"paymentDayOfMonth,omitempty"`
	State             StudentState `json:"state"`
	CreatedAt         time.Time    `json:"createdAt"`
}

// FullName returns "first last".
func (s *Student) FullName() string {
	return strings.TrimSpace(s.FirstName + " " + s.LastName)
}

func (s *Student) Validate() error {
	if strings.TrimSpace(s.FirstName) == "" || strings.TrimSpace(s.LastName) == "" {
		return ErrNameRequired
	}
	if s.PaymentDayOfMonth != nil && (*s.PaymentDayOfMonth < MinPayDay || *s.PaymentDayOfMonth > MaxPayDay) {
		return ErrPayDayInvalid
	}
	return nil
}

// StudentRepository reads and writes students. Lists are ordered by creation time, newest first.
type StudentRepository interface {
	GetByID(ctx context.Context, id int64, vis Visibility) (*Student, error)
	ListByBranch(ctx context.Context, branchID int64, vis Visibility) ([]*Student, error)
	ListByGroup(ctx context.Context, groupID int64, vis Visibility) ([]*Student, error)
	SearchByName(ctx context.Context, branchID int64, name string) ([]*Student, error)
	ListRecent(ctx context.Context, branchID int64, limit int) ([]*Student, error)
	Create(ctx context.Context, student *Student) (*Student, error)
	Update(ctx context.Context, student *Student) (*Student, error)
	SoftDelete(ctx context.Context, id int64) error
}

// StudentInput carries the writable fields of a student plus its desired group set.
type StudentInput struct {
	FirstName         string
	LastName          string
	PhoneNumber       string
	ParentPhoneNumber string
	BranchID          int64
	PaymentDayOfMonth *int
	GroupIDs          []int64
}
