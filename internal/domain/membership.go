package domain

import (
	"context"
	"time"
)

// GroupMembership is the join between a group and an enrolled student.
// It is the only source of expected tuition for a student.
type GroupMembership struct {
	GroupID   int64     `json:"groupId"`
	StudentID int64     `json:"studentId"`
	CreatedAt time.Time `json:"createdAt"`
}

type MembershipRepository interface {
	// ListByBranch returns memberships of active students in groups of the branch.
	ListByBranch(ctx context.Context, branchID int64) ([]*GroupMembership, error)
	ListByGroup(ctx context.Context, groupID int64) ([]*GroupMembership, error)
	ListGroupIDs(ctx context.Context, studentID int64) ([]int64, error)
	IsMember(ctx context.Context, groupID, studentID int64) (bool, error)
	Add(ctx context.Context, groupID, studentID int64) error
	Remove(ctx context.Context, groupID, studentID int64) error
	RemoveAllForStudent(ctx context.Context, studentID int64) error
}

// Roster indexes a set of groups and their memberships so one request can
// resolve "groups of a student" and "students of a group" without re-reading the store.
type Roster struct {
	groups          map[int64]*Group
	order           []int64
	studentsByGroup map[int64][]int64
	groupsByStudent map[int64][]int64
}

// NewRoster builds a roster. Memberships referencing unknown groups are ignored.
func NewRoster(groups []*Group, memberships []*GroupMembership) *Roster {
	r := &Roster{
		groups:          make(map[int64]*Group, len(groups)),
		order:           make([]int64, 0, len(groups)),
		studentsByGroup: make(map[int64][]int64),
		groupsByStudent: make(map[int64][]int64),
	}
	for _, g := range groups {
		r.groups[g.ID] = g
		r.order = append(r.order, g.ID)
	}
	for _, m := range memberships {
		if _, ok := r.groups[m.GroupID]; !ok {
			continue
		}
		r.studentsByGroup[m.GroupID] = append(r.studentsByGroup[m.GroupID], m.StudentID)
		r.groupsByStudent[m.StudentID] = append(r.groupsByStudent[m.StudentID], m.GroupID)
	}
	return r
}

// Groups returns every group in the roster in load order.
func (r *Roster) Groups() []*Group {
	out := make([]*Group, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.groups[id])
	}
	return out
}

func (r *Roster) Group(id int64) (*Group, bool) {
	g, ok := r.groups[id]
	return g, ok
}

// StudentIDs returns the enrolled student ids of a group.
func (r *Roster) StudentIDs(groupID int64) []int64 {
	return r.studentsByGroup[groupID]
}

// GroupsOf returns the groups a student is enrolled in, in membership order.
func (r *Roster) GroupsOf(studentID int64) []*Group {
	ids := r.groupsByStudent[studentID]
	out := make([]*Group, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.groups[id])
	}
	return out
}
