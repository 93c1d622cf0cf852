package service

import (
	"context"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// GroupService reads groups and edits their rosters
type GroupService struct {
	groupRepo      domain.GroupRepository
	studentRepo    domain.StudentRepository
	membershipRepo domain.MembershipRepository
	tx             domain.Transactor
	eventPublisher websocket.EventPublisher
}

// NewGroupService creates a new GroupService
func NewGroupService(
	groupRepo domain.GroupRepository,
	studentRepo domain.StudentRepository,
	membershipRepo domain.MembershipRepository,
	tx domain.Transactor,
) *GroupService {
	return &GroupService{
		groupRepo:      groupRepo,
		studentRepo:    studentRepo,
		membershipRepo: membershipRepo,
		tx:             tx,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *GroupService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *GroupService) publishEvent(branchID int64, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(branchID, event)
	}
}

func (s *GroupService) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Group, error) {
	return s.groupRepo.ListByBranch(ctx, branchID)
}

func (s *GroupService) GetByID(ctx context.Context, id int64) (*domain.Group, error) {
	return s.groupRepo.GetByID(ctx, id)
}

type membershipChange struct {
	GroupID   int64  `json:"groupId"`
	StudentID int64  `json:"studentId"`
	Action    string `json:"action"`
}

// AddStudent enrolls an active student in a group of the same branch
func (s *GroupService) AddStudent(ctx context.Context, groupID, studentID int64) (*domain.Group, error) {
	var group *domain.Group
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		group, err = s.groupRepo.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		student, err := s.studentRepo.GetByID(ctx, studentID, domain.VisibleOnly)
		if err != nil {
			return err
		}
		if student.BranchID != group.BranchID {
			return domain.ErrGroupBranchMismatch
		}

		member, err := s.membershipRepo.IsMember(ctx, groupID, studentID)
		if err != nil {
			return err
		}
		if member {
			return domain.ErrStudentAlreadyInGroup
		}
		return s.membershipRepo.Add(ctx, groupID, studentID)
	})
	if err != nil {
		if !domain.IsClientError(err) {
			log.Error().Err(err).Int64("group_id", groupID).Int64("student_id", studentID).Msg("Failed to add student to group")
		}
		return nil, err
	}

	log.Info().Int64("group_id", groupID).Int64("student_id", studentID).Msg("Student added to group")
	s.publishEvent(group.BranchID, websocket.MembershipChanged(membershipChange{GroupID: groupID, StudentID: studentID, Action: "added"}))
	return s.groupRepo.GetByID(ctx, groupID)
}

// RemoveStudent drops a student from a group
func (s *GroupService) RemoveStudent(ctx context.Context, groupID, studentID int64) (*domain.Group, error) {
	var group *domain.Group
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		group, err = s.groupRepo.GetByID(ctx, groupID)
		if err != nil {
			return err
		}
		member, err := s.membershipRepo.IsMember(ctx, groupID, studentID)
		if err != nil {
			return err
		}
		if !member {
			return domain.ErrStudentNotInGroup
		}
		return s.membershipRepo.Remove(ctx, groupID, studentID)
	})
	if err != nil {
		return nil, err
	}

	log.Info().Int64("group_id", groupID).Int64("student_id", studentID).Msg("Student removed from group")
	s.publishEvent(group.BranchID, websocket.MembershipChanged(membershipChange{GroupID: groupID, StudentID: studentID, Action: "removed"}))
	return s.groupRepo.GetByID(ctx, groupID)
}
