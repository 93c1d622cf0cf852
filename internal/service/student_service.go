package service

import (
	"context"
	"strings"
	"time"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/util"
	"github.com/edudesk/edudesk-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	defaultRecentLimit = 10
	maxRecentLimit     = 100
)

// StudentService assembles student views with their payment projection and manages enrollment
type StudentService struct {
	studentRepo    domain.StudentRepository
	groupRepo      domain.GroupRepository
	membershipRepo domain.MembershipRepository
	paymentRepo    domain.PaymentRepository
	branchRepo     domain.BranchRepository
	tx             domain.Transactor
	eventPublisher websocket.EventPublisher
	now            func() time.Time
}

// NewStudentService creates a new StudentService
func NewStudentService(
	studentRepo domain.StudentRepository,
	groupRepo domain.GroupRepository,
	membershipRepo domain.MembershipRepository,
	paymentRepo domain.PaymentRepository,
	branchRepo domain.BranchRepository,
	tx domain.Transactor,
) *StudentService {
	return &StudentService{
		studentRepo:    studentRepo,
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		paymentRepo:    paymentRepo,
		branchRepo:     branchRepo,
		tx:             tx,
		now:            time.Now,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *StudentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// SetNowFunc replaces the clock used to resolve periods and due dates
func (s *StudentService) SetNowFunc(now func() time.Time) {
	s.now = now
}

func (s *StudentService) publishEvent(branchID int64, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(branchID, event)
	}
}

// branchRoster loads the groups and memberships of a branch once for the whole request
func (s *StudentService) branchRoster(ctx context.Context, branchID int64) (*domain.Roster, error) {
	groups, err := s.groupRepo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.membershipRepo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return domain.NewRoster(groups, memberships), nil
}

// project computes the period projection of one student from the groups they attend
func (s *StudentService) project(ctx context.Context, student *domain.Student, groups []*domain.Group, year, month int, today time.Time) (domain.StudentProjection, error) {
	paidSum, err := s.paymentRepo.SumByStudentAndPeriod(ctx, student.ID, year, month)
	if err != nil {
		return domain.StudentProjection{}, err
	}
	lastPayment, err := s.paymentRepo.LastPaymentDate(ctx, student.ID)
	if err != nil {
		return domain.StudentProjection{}, err
	}

	paid := util.OrZero(paidSum)
	expected := decimal.Zero
	for _, g := range groups {
		expected = expected.Add(g.Price)
	}
	nextDue := util.NextDueDate(student.PaymentDayOfMonth, year, month, today)

	return domain.StudentProjection{
		Year:             year,
		Month:            month,
		HasPaidInMonth:   paid.IsPositive(),
		TotalPaidInMonth: paid,
		ExpectedAmount:   expected,
		RemainingAmount:  util.FloorZero(expected.Sub(paid)),
		PaymentStatus:    domain.ClassifyPaymentStatus(paid, expected, nextDue, today),
		NextDueDate:      nextDue,
		LastPaymentDate:  lastPayment,
	}, nil
}

func (s *StudentService) view(ctx context.Context, student *domain.Student, branchName string, groups []*domain.Group, year, month int, today time.Time) (*domain.StudentView, error) {
	projection, err := s.project(ctx, student, groups, year, month, today)
	if err != nil {
		return nil, err
	}
	infos := make([]domain.GroupInfo, 0, len(groups))
	for _, g := range groups {
		infos = append(infos, domain.GroupInfo{ID: g.ID, Name: g.Name, Price: g.Price, TeacherName: g.TeacherName})
	}
	return &domain.StudentView{
		Student:    student,
		BranchName: branchName,
		Groups:     infos,
		Projection: projection,
	}, nil
}

// views projects a list of students of one branch against a shared roster
func (s *StudentService) views(ctx context.Context, branchID int64, students []*domain.Student, year, month *int) ([]*domain.StudentView, error) {
	today := s.now()
	y, m := util.ResolvePeriod(year, month, today)
	if m < 1 || m > 12 {
		return nil, domain.ErrPeriodInvalid
	}

	branch, err := s.branchRepo.GetByID(ctx, branchID)
	if err != nil {
		return nil, err
	}
	roster, err := s.branchRoster(ctx, branchID)
	if err != nil {
		return nil, err
	}

	out := make([]*domain.StudentView, 0, len(students))
	for _, st := range students {
		v, err := s.view(ctx, st, branch.Name, roster.GroupsOf(st.ID), y, m, today)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// ListByBranch returns the active students of a branch projected onto a period.
// A nil year or month falls back to the current payment period.
func (s *StudentService) ListByBranch(ctx context.Context, branchID int64, year, month *int) ([]*domain.StudentView, error) {
	students, err := s.studentRepo.ListByBranch(ctx, branchID, domain.VisibleOnly)
	if err != nil {
		log.Error().Err(err).Int64("branch_id", branchID).Msg("Failed to list students")
		return nil, err
	}
	return s.views(ctx, branchID, students, year, month)
}

// ListByGroup returns the active members of a group projected onto a period
func (s *StudentService) ListByGroup(ctx context.Context, groupID int64, year, month *int) ([]*domain.StudentView, error) {
	group, err := s.groupRepo.GetByID(ctx, groupID)
	if err != nil {
		return nil, err
	}
	students, err := s.studentRepo.ListByGroup(ctx, groupID, domain.VisibleOnly)
	if err != nil {
		return nil, err
	}
	return s.views(ctx, group.BranchID, students, year, month)
}

// GetByID returns one active student projected onto a period
func (s *StudentService) GetByID(ctx context.Context, id int64, year, month *int) (*domain.StudentView, error) {
	student, err := s.studentRepo.GetByID(ctx, id, domain.VisibleOnly)
	if err != nil {
		return nil, err
	}
	views, err := s.views(ctx, student.BranchID, []*domain.Student{student}, year, month)
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

// Lookup returns the stored student, deleted or not, without a projection
func (s *StudentService) Lookup(ctx context.Context, id int64) (*domain.Student, error) {
	return s.studentRepo.GetByID(ctx, id, domain.IncludeDeleted)
}

// Search matches active students of a branch by "first last", case-insensitively
func (s *StudentService) Search(ctx context.Context, branchID int64, name string) ([]*domain.StudentView, error) {
	students, err := s.studentRepo.SearchByName(ctx, branchID, strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	return s.views(ctx, branchID, students, nil, nil)
}

// Recent returns the newest active students of a branch
func (s *StudentService) Recent(ctx context.Context, branchID int64, limit int) ([]*domain.StudentView, error) {
	students, err := s.studentRepo.ListRecent(ctx, branchID, clampLimit(limit))
	if err != nil {
		return nil, err
	}
	return s.views(ctx, branchID, students, nil, nil)
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultRecentLimit
	}
	if limit > maxRecentLimit {
		return maxRecentLimit
	}
	return limit
}

// FindUnpaid builds the collections worklist: one row per (student, group) with an
// open balance whose due date has passed. When year or month is missing the balance
// is measured against all-time payments for the pair rather than one period.
func (s *StudentService) FindUnpaid(ctx context.Context, branchID int64, year, month *int) ([]domain.UnpaidEntry, error) {
	today := s.now()
	allTime := year == nil || month == nil
	targetYear, targetMonth := util.ResolvePeriod(year, month, today)

	roster, err := s.branchRoster(ctx, branchID)
	if err != nil {
		return nil, err
	}
	students, err := s.studentRepo.ListByBranch(ctx, branchID, domain.VisibleOnly)
	if err != nil {
		return nil, err
	}
	byID := make(map[int64]*domain.Student, len(students))
	for _, st := range students {
		byID[st.ID] = st
	}

	entries := make([]domain.UnpaidEntry, 0)
	for _, group := range roster.Groups() {
		for _, studentID := range roster.StudentIDs(group.ID) {
			student, ok := byID[studentID]
			if !ok {
				continue
			}

			var paid decimal.NullDecimal
			if allTime {
				paid, err = s.paymentRepo.SumByStudentAndGroup(ctx, studentID, group.ID)
			} else {
				paid, err = s.paymentRepo.SumByStudentGroupAndPeriod(ctx, studentID, group.ID, targetYear, targetMonth)
			}
			if err != nil {
				return nil, err
			}

			remaining := group.Price.Sub(util.OrZero(paid))
			if !remaining.IsPositive() || !util.IsPastDue(student.PaymentDayOfMonth, targetYear, targetMonth, today) {
				continue
			}

			entries = append(entries, domain.UnpaidEntry{
				StudentID:         student.ID,
				FirstName:         student.FirstName,
				LastName:          student.LastName,
				PhoneNumber:       student.PhoneNumber,
				ParentPhoneNumber: student.ParentPhoneNumber,
				RemainingAmount:   remaining,
				GroupID:           group.ID,
				GroupName:         group.Name,
			})
		}
	}
	return entries, nil
}

// Statistics counts the active students of a branch per status for the current payment period
func (s *StudentService) Statistics(ctx context.Context, branchID int64) (*domain.StudentStatistics, error) {
	views, err := s.ListByBranch(ctx, branchID, nil, nil)
	if err != nil {
		return nil, err
	}

	stats := &domain.StudentStatistics{TotalStudents: len(views)}
	for _, v := range views {
		switch v.Projection.PaymentStatus {
		case domain.PaymentStatusPaid:
			stats.PaidStudents++
		case domain.PaymentStatusPartial, domain.PaymentStatusUnpaid:
			stats.UnpaidStudents++
		case domain.PaymentStatusUpcoming:
			stats.UpcomingStudents++
		case domain.PaymentStatusOverdue:
			stats.OverdueStudents++
		}
	}
	if stats.TotalStudents > 0 {
		stats.PaymentRate = float64(stats.PaidStudents) / float64(stats.TotalStudents) * 100
	}
	return stats, nil
}

// PaymentHistory lists every payment of a student, including deleted students
func (s *StudentService) PaymentHistory(ctx context.Context, studentID int64) ([]*domain.Payment, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID, domain.IncludeDeleted); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByStudent(ctx, studentID)
}

// Groups lists the groups a student attends
func (s *StudentService) Groups(ctx context.Context, studentID int64) ([]*domain.Group, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID, domain.VisibleOnly); err != nil {
		return nil, err
	}
	return s.groupRepo.ListByStudent(ctx, studentID)
}

// resolveGroups loads the requested groups once each and checks they belong to the branch
func (s *StudentService) resolveGroups(ctx context.Context, branchID int64, ids []int64) ([]int64, error) {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		group, err := s.groupRepo.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		if group.BranchID != branchID {
			return nil, domain.ErrGroupBranchMismatch
		}
		out = append(out, id)
	}
	return out, nil
}

func studentFromInput(input domain.StudentInput) *domain.Student {
	return &domain.Student{
		FirstName:         strings.TrimSpace(input.FirstName),
		LastName:          strings.TrimSpace(input.LastName),
		PhoneNumber:       strings.TrimSpace(input.PhoneNumber),
		ParentPhoneNumber: strings.TrimSpace(input.ParentPhoneNumber),
		BranchID:          input.BranchID,
		PaymentDayOfMonth: input.PaymentDayOfMonth,
	}
}

// Create enrolls a new student in the requested groups in one transaction
func (s *StudentService) Create(ctx context.Context, input domain.StudentInput) (*domain.StudentView, error) {
	student := studentFromInput(input)
	if err := student.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Student
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.branchRepo.GetByID(ctx, input.BranchID); err != nil {
			return err
		}
		groupIDs, err := s.resolveGroups(ctx, input.BranchID, input.GroupIDs)
		if err != nil {
			return err
		}

		created, err = s.studentRepo.Create(ctx, student)
		if err != nil {
			return err
		}
		for _, groupID := range groupIDs {
			if err := s.membershipRepo.Add(ctx, groupID, created.ID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !domain.IsClientError(err) {
			log.Error().Err(err).Int64("branch_id", input.BranchID).Msg("Failed to create student")
		}
		return nil, err
	}

	log.Info().Int64("student_id", created.ID).Int64("branch_id", created.BranchID).Msg("Student created")
	s.publishEvent(created.BranchID, websocket.StudentCreated(created))

	return s.GetByID(ctx, created.ID, nil, nil)
}

// Update overwrites the student's profile and replaces their group memberships
func (s *StudentService) Update(ctx context.Context, id int64, input domain.StudentInput) (*domain.StudentView, error) {
	student := studentFromInput(input)
	student.ID = id
	if err := student.Validate(); err != nil {
		return nil, err
	}

	var updated *domain.Student
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.studentRepo.GetByID(ctx, id, domain.VisibleOnly); err != nil {
			return err
		}
		if _, err := s.branchRepo.GetByID(ctx, input.BranchID); err != nil {
			return err
		}
		groupIDs, err := s.resolveGroups(ctx, input.BranchID, input.GroupIDs)
		if err != nil {
			return err
		}

		updated, err = s.studentRepo.Update(ctx, student)
		if err != nil {
			return err
		}
		if err := s.membershipRepo.RemoveAllForStudent(ctx, id); err != nil {
			return err
		}
		for _, groupID := range groupIDs {
			if err := s.membershipRepo.Add(ctx, groupID, id); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if !domain.IsClientError(err) {
			log.Error().Err(err).Int64("student_id", id).Msg("Failed to update student")
		}
		return nil, err
	}

	log.Info().Int64("student_id", id).Msg("Student updated")
	s.publishEvent(updated.BranchID, websocket.StudentUpdated(updated))

	return s.GetByID(ctx, id, nil, nil)
}

// Delete drops the student's memberships and marks the student DELETED.
// Payments keep pointing at the row.
func (s *StudentService) Delete(ctx context.Context, id int64) error {
	var branchID int64
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		student, err := s.studentRepo.GetByID(ctx, id, domain.VisibleOnly)
		if err != nil {
			return err
		}
		branchID = student.BranchID

		if err := s.membershipRepo.RemoveAllForStudent(ctx, id); err != nil {
			return err
		}
		return s.studentRepo.SoftDelete(ctx, id)
	})
	if err != nil {
		return err
	}

	log.Info().Int64("student_id", id).Msg("Student deleted")
	s.publishEvent(branchID, websocket.StudentDeleted(map[string]int64{"id": id}))
	return nil
}
