package service

import (
	"context"
	"strings"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// ExpenseService records regular operational expenses
type ExpenseService struct {
	expenseRepo    domain.ExpenseRepository
	branchRepo     domain.BranchRepository
	eventPublisher websocket.EventPublisher
}

// NewExpenseService creates a new ExpenseService
func NewExpenseService(expenseRepo domain.ExpenseRepository, branchRepo domain.BranchRepository) *ExpenseService {
	return &ExpenseService{expenseRepo: expenseRepo, branchRepo: branchRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ExpenseService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ExpenseService) publishEvent(branchID int64, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(branchID, event)
	}
}

func (s *ExpenseService) Create(ctx context.Context, input domain.ExpenseInput) (*domain.Expense, error) {
	category, err := domain.ParseExpenseCategory(input.Category)
	if err != nil {
		return nil, err
	}
	expense := &domain.Expense{
		Description: strings.TrimSpace(input.Description),
		Amount:      input.Amount,
		Category:    category,
		BranchID:    input.BranchID,
	}
	if err := expense.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.branchRepo.GetByID(ctx, input.BranchID); err != nil {
		return nil, err
	}

	created, err := s.expenseRepo.Create(ctx, expense)
	if err != nil {
		log.Error().Err(err).Int64("branch_id", input.BranchID).Msg("Failed to create expense")
		return nil, err
	}

	log.Info().Int64("expense_id", created.ID).Str("amount", created.Amount.StringFixed(2)).Msg("Expense recorded")
	s.publishEvent(created.BranchID, websocket.ExpenseCreated(created))
	return created, nil
}

func (s *ExpenseService) ListByBranch(ctx context.Context, branchID int64) ([]*domain.Expense, error) {
	return s.expenseRepo.ListByBranch(ctx, branchID)
}

func (s *ExpenseService) GetByID(ctx context.Context, id int64) (*domain.Expense, error) {
	return s.expenseRepo.GetByID(ctx, id)
}

func (s *ExpenseService) Delete(ctx context.Context, id int64) error {
	existing, err := s.expenseRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.expenseRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("expense_id", id).Msg("Expense deleted")
	s.publishEvent(existing.BranchID, websocket.ExpenseDeleted(map[string]int64{"id": id}))
	return nil
}
