package service

import (
	"context"
	"testing"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newGroupService(r *testutil.Repos) (*GroupService, *testutil.RecordingPublisher) {
	svc := NewGroupService(r.Groups, r.Students, r.Memberships, r.Tx)
	pub := &testutil.RecordingPublisher{}
	svc.SetEventPublisher(pub)
	return svc, pub
}

func TestGroupService_ListAndGet(t *testing.T) {
	svc, _ := newGroupService(seedBranch())
	ctx := context.Background()

	groups, err := svc.ListByBranch(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, groups, 3)

	math, err := svc.GetByID(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, math.StudentCount)
	assert.Equal(t, "Nodira Karimova", math.TeacherName)

	_, err = svc.GetByID(ctx, 404)
	assert.ErrorIs(t, err, domain.ErrGroupNotFound)
}

func TestGroupService_AddStudent(t *testing.T) {
	r := seedBranch()
	svc, pub := newGroupService(r)

	group, err := svc.AddStudent(context.Background(), 12, 4)
	require.NoError(t, err)

	assert.Equal(t, 2, group.StudentCount)
	member, _ := r.Memberships.IsMember(context.Background(), 12, 4)
	assert.True(t, member)
	assert.Equal(t, 1, r.Tx.Calls)
	require.Len(t, pub.Events, 1)
	assert.Equal(t, "membership.updated", pub.Events[0].Type)
	assert.Equal(t, int64(1), pub.Events[0].BranchID)
}

func TestGroupService_AddStudent_Rejections(t *testing.T) {
	tests := []struct {
		name      string
		groupID   int64
		studentID int64
		want      error
	}{
		{"unknown group", 404, 1, domain.ErrGroupNotFound},
		{"unknown student", 10, 404, domain.ErrStudentNotFound},
		{"other branch", 20, 1, domain.ErrGroupBranchMismatch},
		{"already enrolled", 10, 1, domain.ErrStudentAlreadyInGroup},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := seedBranch()
			svc, pub := newGroupService(r)
			before := len(r.Memberships.Memberships)

			_, err := svc.AddStudent(context.Background(), tt.groupID, tt.studentID)
			assert.ErrorIs(t, err, tt.want)
			assert.Len(t, r.Memberships.Memberships, before)
			assert.Empty(t, pub.Events)
		})
	}
}

func TestGroupService_RemoveStudent(t *testing.T) {
	r := seedBranch()
	svc, pub := newGroupService(r)
	ctx := context.Background()

	group, err := svc.RemoveStudent(ctx, 10, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, group.StudentCount)
	assert.Equal(t, []string{"membership.updated"}, pub.Types())

	_, err = svc.RemoveStudent(ctx, 10, 3)
	assert.ErrorIs(t, err, domain.ErrStudentNotInGroup)
}
