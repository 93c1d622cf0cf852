package service

import (
	"context"
	"slices"
	"strings"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/util"
	"github.com/edudesk/edudesk-backend/internal/websocket"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// SalaryService computes teacher salary owed and records salary disbursements
type SalaryService struct {
	teacherRepo    domain.TeacherRepository
	groupRepo      domain.GroupRepository
	membershipRepo domain.MembershipRepository
	paymentRepo    domain.PaymentRepository
	salaryRepo     domain.SalaryPaymentRepository
	branchRepo     domain.BranchRepository
	eventPublisher websocket.EventPublisher
}

// NewSalaryService creates a new SalaryService
func NewSalaryService(
	teacherRepo domain.TeacherRepository,
	groupRepo domain.GroupRepository,
	membershipRepo domain.MembershipRepository,
	paymentRepo domain.PaymentRepository,
	salaryRepo domain.SalaryPaymentRepository,
	branchRepo domain.BranchRepository,
) *SalaryService {
	return &SalaryService{
		teacherRepo:    teacherRepo,
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		paymentRepo:    paymentRepo,
		salaryRepo:     salaryRepo,
		branchRepo:     branchRepo,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *SalaryService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *SalaryService) publishEvent(branchID int64, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(branchID, event)
	}
}

// teacherRoster loads the groups of one teacher with their enrolled students
func (s *SalaryService) teacherRoster(ctx context.Context, teacherID int64) (*domain.Roster, error) {
	groups, err := s.groupRepo.ListByTeacher(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	memberships := make([]*domain.GroupMembership, 0)
	for _, g := range groups {
		ms, err := s.membershipRepo.ListByGroup(ctx, g.ID)
		if err != nil {
			return nil, err
		}
		memberships = append(memberships, ms...)
	}
	return domain.NewRoster(groups, memberships), nil
}

// owed sums the flat per-student rate over every student with a non-zero
// tuition payment for the group in the period
func (s *SalaryService) owed(ctx context.Context, teacher *domain.Teacher, roster *domain.Roster, year, month int) (*domain.SalaryCalculation, error) {
	calc := &domain.SalaryCalculation{
		TeacherID:   teacher.ID,
		TeacherName: teacher.FullName(),
		BranchID:    teacher.BranchID,
		Year:        year,
		Month:       month,
		TotalSalary: decimal.Zero,
		Groups:      make([]domain.GroupSalary, 0),
	}

	for _, group := range roster.Groups() {
		if group.TeacherID == nil || *group.TeacherID != teacher.ID {
			continue
		}

		studentIDs := roster.StudentIDs(group.ID)
		paidCount := 0
		for _, studentID := range studentIDs {
			paid, err := s.paymentRepo.SumByStudentGroupAndPeriod(ctx, studentID, group.ID, year, month)
			if err != nil {
				return nil, err
			}
			if util.OrZero(paid).IsPositive() {
				paidCount++
			}
		}

		contribution := group.TeacherSalaryPerStudent.Mul(decimal.NewFromInt(int64(paidCount)))
		calc.Groups = append(calc.Groups, domain.GroupSalary{
			GroupID:           group.ID,
			GroupName:         group.Name,
			PaidStudentCount:  paidCount,
			SalaryAmount:      contribution,
			TotalStudentCount: len(studentIDs),
			GroupPrice:        group.Price,
		})
		calc.TotalSalary = calc.TotalSalary.Add(contribution)
		calc.TotalPaidStudents += paidCount
	}
	return calc, nil
}

func (s *SalaryService) settle(ctx context.Context, calc *domain.SalaryCalculation) error {
	alreadyPaid, err := s.salaryRepo.SumByTeacherAndPeriod(ctx, calc.TeacherID, calc.Year, calc.Month)
	if err != nil {
		return err
	}
	calc.AlreadyPaid = util.OrZero(alreadyPaid)
	calc.RemainingAmount = util.FloorZero(calc.TotalSalary.Sub(calc.AlreadyPaid))
	return nil
}

// Calculate returns the salary a teacher is owed for a period and what is still outstanding
func (s *SalaryService) Calculate(ctx context.Context, teacherID int64, year, month int) (*domain.SalaryCalculation, error) {
	if month < 1 || month > 12 {
		return nil, domain.ErrPeriodInvalid
	}
	teacher, err := s.teacherRepo.GetByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	roster, err := s.teacherRoster(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	calc, err := s.owed(ctx, teacher, roster, year, month)
	if err != nil {
		log.Error().Err(err).Int64("teacher_id", teacherID).Msg("Failed to calculate salary")
		return nil, err
	}
	if err := s.settle(ctx, calc); err != nil {
		return nil, err
	}
	return calc, nil
}

// CalculateForBranch calculates the period salary of every teacher in a branch
// against one shared branch roster
func (s *SalaryService) CalculateForBranch(ctx context.Context, branchID int64, year, month int) ([]*domain.SalaryCalculation, error) {
	if month < 1 || month > 12 {
		return nil, domain.ErrPeriodInvalid
	}
	teachers, err := s.teacherRepo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	groups, err := s.groupRepo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	memberships, err := s.membershipRepo.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	roster := domain.NewRoster(groups, memberships)

	out := make([]*domain.SalaryCalculation, 0, len(teachers))
	for _, teacher := range teachers {
		calc, err := s.owed(ctx, teacher, roster, year, month)
		if err != nil {
			return nil, err
		}
		if err := s.settle(ctx, calc); err != nil {
			return nil, err
		}
		out = append(out, calc)
	}
	return out, nil
}

// History compares owed and disbursed salary for every period a teacher received a payment,
// most recent period first
func (s *SalaryService) History(ctx context.Context, teacherID int64) ([]*domain.SalaryHistoryEntry, error) {
	teacher, err := s.teacherRepo.GetByID(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	periods, err := s.salaryRepo.DistinctPeriods(ctx, teacherID)
	if err != nil {
		return nil, err
	}
	roster, err := s.teacherRoster(ctx, teacherID)
	if err != nil {
		return nil, err
	}

	entries := make([]*domain.SalaryHistoryEntry, 0, len(periods))
	for _, p := range periods {
		calc, err := s.owed(ctx, teacher, roster, p.Year, p.Month)
		if err != nil {
			return nil, err
		}
		stats, err := s.salaryRepo.PeriodStats(ctx, teacherID, p.Year, p.Month)
		if err != nil {
			return nil, err
		}

		paid := util.OrZero(stats.Total)
		remaining := util.FloorZero(calc.TotalSalary.Sub(paid))
		entries = append(entries, &domain.SalaryHistoryEntry{
			TeacherID:       teacher.ID,
			TeacherName:     teacher.FullName(),
			Year:            p.Year,
			Month:           p.Month,
			TotalSalary:     calc.TotalSalary,
			AmountPaid:      paid,
			RemainingAmount: remaining,
			FullySettled:    remaining.IsZero(),
			LastPaymentDate: stats.LastPaymentDate,
			PaymentCount:    stats.Count,
		})
	}

	slices.SortStableFunc(entries, func(a, b *domain.SalaryHistoryEntry) int {
		if a.Year != b.Year {
			return b.Year - a.Year
		}
		return b.Month - a.Month
	})
	return entries, nil
}

// Remaining returns the outstanding salary of a teacher for a period
func (s *SalaryService) Remaining(ctx context.Context, teacherID int64, year, month int) (decimal.Decimal, error) {
	calc, err := s.Calculate(ctx, teacherID, year, month)
	if err != nil {
		return decimal.Zero, err
	}
	return calc.RemainingAmount, nil
}

// CreatePayment records a salary disbursement
func (s *SalaryService) CreatePayment(ctx context.Context, input domain.SalaryPaymentInput) (*domain.SalaryPayment, error) {
	payment := &domain.SalaryPayment{
		TeacherID:   input.TeacherID,
		Year:        input.Year,
		Month:       input.Month,
		Amount:      input.Amount,
		Description: strings.TrimSpace(input.Description),
		BranchID:    input.BranchID,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.teacherRepo.GetByID(ctx, input.TeacherID); err != nil {
		return nil, err
	}
	if _, err := s.branchRepo.GetByID(ctx, input.BranchID); err != nil {
		return nil, err
	}

	created, err := s.salaryRepo.Create(ctx, payment)
	if err != nil {
		log.Error().Err(err).Int64("teacher_id", input.TeacherID).Msg("Failed to create salary payment")
		return nil, err
	}

	log.Info().
		Int64("salary_payment_id", created.ID).
		Int64("teacher_id", created.TeacherID).
		Str("amount", created.Amount.StringFixed(2)).
		Msg("Salary payment recorded")
	s.publishEvent(created.BranchID, websocket.SalaryPaymentCreated(created))
	return created, nil
}

// DeletePayment removes a salary disbursement
func (s *SalaryService) DeletePayment(ctx context.Context, id int64) error {
	existing, err := s.salaryRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.salaryRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("salary_payment_id", id).Msg("Salary payment deleted")
	s.publishEvent(existing.BranchID, websocket.SalaryPaymentDeleted(map[string]int64{"id": id}))
	return nil
}

func (s *SalaryService) GetPayment(ctx context.Context, id int64) (*domain.SalaryPayment, error) {
	return s.salaryRepo.GetByID(ctx, id)
}

// GetTeacher returns a teacher, used to gate teacher-keyed requests by branch
func (s *SalaryService) GetTeacher(ctx context.Context, id int64) (*domain.Teacher, error) {
	return s.teacherRepo.GetByID(ctx, id)
}

func (s *SalaryService) ListPaymentsByBranch(ctx context.Context, branchID int64) ([]*domain.SalaryPayment, error) {
	return s.salaryRepo.ListByBranch(ctx, branchID)
}

func (s *SalaryService) ListPaymentsByTeacher(ctx context.Context, teacherID int64) ([]*domain.SalaryPayment, error) {
	return s.salaryRepo.ListByTeacher(ctx, teacherID)
}

func (s *SalaryService) ListPaymentsByTeacherAndPeriod(ctx context.Context, teacherID int64, year, month int) ([]*domain.SalaryPayment, error) {
	if month < 1 || month > 12 {
		return nil, domain.ErrPeriodInvalid
	}
	return s.salaryRepo.ListByTeacherAndPeriod(ctx, teacherID, year, month)
}
