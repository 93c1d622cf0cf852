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

// PaymentService records tuition payments and answers payment listings
type PaymentService struct {
	paymentRepo    domain.PaymentRepository
	studentRepo    domain.StudentRepository
	groupRepo      domain.GroupRepository
	membershipRepo domain.MembershipRepository
	branchRepo     domain.BranchRepository
	tx             domain.Transactor
	eventPublisher websocket.EventPublisher
}

// NewPaymentService creates a new PaymentService
func NewPaymentService(
	paymentRepo domain.PaymentRepository,
	studentRepo domain.StudentRepository,
	groupRepo domain.GroupRepository,
	membershipRepo domain.MembershipRepository,
	branchRepo domain.BranchRepository,
	tx domain.Transactor,
) *PaymentService {
	return &PaymentService{
		paymentRepo:    paymentRepo,
		studentRepo:    studentRepo,
		groupRepo:      groupRepo,
		membershipRepo: membershipRepo,
		branchRepo:     branchRepo,
		tx:             tx,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *PaymentService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *PaymentService) publishEvent(branchID int64, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(branchID, event)
	}
}

// Create records a tuition payment of a student for one group and billing period.
// The due date is derived from the student's pay day once and stored with the row.
func (s *PaymentService) Create(ctx context.Context, input domain.PaymentInput) (*domain.Payment, error) {
	// 1. Validate input
	category, err := domain.ParsePaymentCategory(input.Category)
	if err != nil {
		return nil, err
	}
	payment := &domain.Payment{
		StudentID:    &input.StudentID,
		GroupID:      input.GroupID,
		Amount:       input.Amount,
		Description:  strings.TrimSpace(input.Description),
		Category:     category,
		Status:       domain.PaymentRecordCompleted,
		BranchID:     input.BranchID,
		PaymentYear:  input.PaymentYear,
		PaymentMonth: input.PaymentMonth,
	}
	if err := payment.Validate(); err != nil {
		return nil, err
	}

	var created *domain.Payment
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// 2. Resolve the references
		student, err := s.studentRepo.GetByID(ctx, input.StudentID, domain.VisibleOnly)
		if err != nil {
			return err
		}
		if _, err := s.groupRepo.GetByID(ctx, input.GroupID); err != nil {
			return err
		}
		if _, err := s.branchRepo.GetByID(ctx, input.BranchID); err != nil {
			return err
		}

		// 3. The student must attend the group being paid for
		member, err := s.membershipRepo.IsMember(ctx, input.GroupID, input.StudentID)
		if err != nil {
			return err
		}
		if !member {
			return domain.ErrStudentNotInGroup
		}

		// 4. Fix the due date and persist
		payment.DueDate = util.DueDate(student.PaymentDayOfMonth, input.PaymentYear, input.PaymentMonth)
		created, err = s.paymentRepo.Create(ctx, payment)
		return err
	})
	if err != nil {
		if !domain.IsClientError(err) {
			log.Error().Err(err).Int64("student_id", input.StudentID).Int64("group_id", input.GroupID).Msg("Failed to create payment")
		}
		return nil, err
	}

	log.Info().
		Int64("payment_id", created.ID).
		Int64("student_id", input.StudentID).
		Str("amount", created.Amount.StringFixed(2)).
		Int("year", created.PaymentYear).
		Int("month", created.PaymentMonth).
		Msg("Payment recorded")
	s.publishEvent(created.BranchID, websocket.PaymentCreated(created))

	return created, nil
}

// UpdateAmount corrects the amount of an existing payment
func (s *PaymentService) UpdateAmount(ctx context.Context, id int64, amount decimal.Decimal) (*domain.Payment, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrAmountInvalid
	}

	updated, err := s.paymentRepo.UpdateAmount(ctx, id, amount)
	if err != nil {
		return nil, err
	}

	log.Info().Int64("payment_id", id).Str("amount", amount.StringFixed(2)).Msg("Payment amount updated")
	s.publishEvent(updated.BranchID, websocket.PaymentUpdated(updated))
	return updated, nil
}

// Delete removes a payment
func (s *PaymentService) Delete(ctx context.Context, id int64) error {
	existing, err := s.paymentRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.paymentRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("payment_id", id).Msg("Payment deleted")
	s.publishEvent(existing.BranchID, websocket.PaymentDeleted(map[string]int64{"id": id}))
	return nil
}

func (s *PaymentService) GetByID(ctx context.Context, id int64) (*domain.Payment, error) {
	return s.paymentRepo.GetByID(ctx, id)
}

func (s *PaymentService) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Payment, error) {
	return s.paymentRepo.ListByBranch(ctx, branchID)
}

// ListByCategory filters the branch's payments by method
func (s *PaymentService) ListByCategory(ctx context.Context, branchID int64, category string) ([]*domain.Payment, error) {
	c, err := domain.ParsePaymentCategory(category)
	if err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByCategory(ctx, branchID, c)
}

// ListByCategoryAndPeriod filters the branch's payments by method and billing period
func (s *PaymentService) ListByCategoryAndPeriod(ctx context.Context, branchID int64, category string, year, month int) ([]*domain.Payment, error) {
	c, err := domain.ParsePaymentCategory(category)
	if err != nil {
		return nil, err
	}
	if month < 1 || month > 12 {
		return nil, domain.ErrPeriodInvalid
	}
	return s.paymentRepo.ListByCategoryAndPeriod(ctx, branchID, c, year, month)
}

// ListByStudent returns a student's payments, including those of deleted students
func (s *PaymentService) ListByStudent(ctx context.Context, studentID int64) ([]*domain.Payment, error) {
	if _, err := s.studentRepo.GetByID(ctx, studentID, domain.IncludeDeleted); err != nil {
		return nil, err
	}
	return s.paymentRepo.ListByStudent(ctx, studentID)
}

// ListByDateRange returns payments created between the start of start's day and the end of end's day
func (s *PaymentService) ListByDateRange(ctx context.Context, branchID int64, start, end time.Time) ([]*domain.Payment, error) {
	if util.DateOf(start).After(util.DateOf(end)) {
		return nil, domain.ErrDateRangeInvalid
	}
	from, to := util.RangeBounds(start, end)
	return s.paymentRepo.ListByDateRange(ctx, branchID, from, to)
}

// ListByPeriod returns payments recorded against one billing period
func (s *PaymentService) ListByPeriod(ctx context.Context, branchID int64, year, month int) ([]*domain.Payment, error) {
	if month < 1 || month > 12 {
		return nil, domain.ErrPeriodInvalid
	}
	return s.paymentRepo.ListByPeriod(ctx, branchID, year, month)
}

func (s *PaymentService) SearchByStudentName(ctx context.Context, branchID int64, name string) ([]*domain.Payment, error) {
	return s.paymentRepo.SearchByStudentName(ctx, branchID, strings.TrimSpace(name))
}

// Recent returns the newest payments of a branch
func (s *PaymentService) Recent(ctx context.Context, branchID int64, limit int) ([]*domain.Payment, error) {
	return s.paymentRepo.ListRecent(ctx, branchID, clampLimit(limit))
}
