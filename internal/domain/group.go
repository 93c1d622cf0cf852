package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Group struct {
	ID                      int64           `json:"id"`
	Name                    string          `json:"name"`
	Description             string          `json:"description"`
	Price                   decimal.Decimal `json:"price"`
	TeacherSalaryPerStudent decimal.Decimal `json:"teacherSalaryPerStudent"`
	TeacherID               *int64          `json:"teacherId,omitempty"`
	TeacherName             string          `json:"teacherName,omitempty"`
	BranchID                int64           `json:"branchId"`
	StartTime               string          `json:"startTime"`
	EndTime                 string          `json:"endTime"`
	DaysOfWeek              string          `json:"daysOfWeek"`
	StudentCount            int             `json:"studentCount"`
	CreatedAt               time.Time       `json:"createdAt"`
}

// Days splits the stored comma list of schedule days.
func (g *Group) Days() []string {
	if strings.TrimSpace(g.DaysOfWeek) == "" {
		return []string{}
	}
	parts := strings.Split(g.DaysOfWeek, ",")
	days := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			days = append(days, p)
		}
	}
	return days
}

// GroupRepository reads groups. TeacherName and StudentCount are resolved by the store.
type GroupRepository interface {
	GetByID(ctx context.Context, id int64) (*Group, error)
	ListByBranch(ctx context.Context, branchID int64) ([]*Group, error)
	ListByTeacher(ctx context.Context, teacherID int64) ([]*Group, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*Group, error)
}
