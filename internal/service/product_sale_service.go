package service

import (
	"context"
	"strings"
	"time"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/util"
	"github.com/edudesk/edudesk-backend/internal/websocket"
	"github.com/rs/zerolog/log"
)

// ProductSaleService records merchandise sales and their revenue summaries
type ProductSaleService struct {
	saleRepo       domain.ProductSaleRepository
	studentRepo    domain.StudentRepository
	branchRepo     domain.BranchRepository
	tx             domain.Transactor
	eventPublisher websocket.EventPublisher
}

// NewProductSaleService creates a new ProductSaleService
func NewProductSaleService(
	saleRepo domain.ProductSaleRepository,
	studentRepo domain.StudentRepository,
	branchRepo domain.BranchRepository,
	tx domain.Transactor,
) *ProductSaleService {
	return &ProductSaleService{
		saleRepo:    saleRepo,
		studentRepo: studentRepo,
		branchRepo:  branchRepo,
		tx:          tx,
	}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *ProductSaleService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *ProductSaleService) publishEvent(branchID int64, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(branchID, event)
	}
}

func (s *ProductSaleService) saleFromInput(input domain.ProductSaleInput) (*domain.ProductSale, error) {
	category, err := domain.ParseProductCategory(input.Category)
	if err != nil {
		return nil, err
	}
	sale := &domain.ProductSale{
		ProductName: strings.TrimSpace(input.ProductName),
		Description: strings.TrimSpace(input.Description),
		Quantity:    input.Quantity,
		UnitPrice:   input.UnitPrice,
		Category:    category,
		BranchID:    input.BranchID,
		StudentID:   input.StudentID,
	}
	if err := sale.Validate(); err != nil {
		return nil, err
	}
	sale.RecomputeTotal()
	return sale, nil
}

// checkRefs makes sure the branch and the optional buyer exist
func (s *ProductSaleService) checkRefs(ctx context.Context, sale *domain.ProductSale) error {
	if _, err := s.branchRepo.GetByID(ctx, sale.BranchID); err != nil {
		return err
	}
	if sale.StudentID != nil {
		if _, err := s.studentRepo.GetByID(ctx, *sale.StudentID, domain.VisibleOnly); err != nil {
			return err
		}
	}
	return nil
}

// Create records a sale with its total fixed at unit price times quantity
func (s *ProductSaleService) Create(ctx context.Context, input domain.ProductSaleInput) (*domain.ProductSale, error) {
	sale, err := s.saleFromInput(input)
	if err != nil {
		return nil, err
	}

	var created *domain.ProductSale
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.checkRefs(ctx, sale); err != nil {
			return err
		}
		created, err = s.saleRepo.Create(ctx, sale)
		return err
	})
	if err != nil {
		if !domain.IsClientError(err) {
			log.Error().Err(err).Int64("branch_id", input.BranchID).Msg("Failed to create product sale")
		}
		return nil, err
	}

	log.Info().Int64("sale_id", created.ID).Str("total", created.TotalAmount.StringFixed(2)).Msg("Product sale recorded")
	s.publishEvent(created.BranchID, websocket.ProductSaleCreated(created))
	return created, nil
}

// Update overwrites a sale and recomputes its total. A nil student clears the buyer link.
func (s *ProductSaleService) Update(ctx context.Context, id int64, input domain.ProductSaleInput) (*domain.ProductSale, error) {
	sale, err := s.saleFromInput(input)
	if err != nil {
		return nil, err
	}
	sale.ID = id

	var updated *domain.ProductSale
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.saleRepo.GetByID(ctx, id); err != nil {
			return err
		}
		if err := s.checkRefs(ctx, sale); err != nil {
			return err
		}
		updated, err = s.saleRepo.Update(ctx, sale)
		return err
	})
	if err != nil {
		if !domain.IsClientError(err) {
			log.Error().Err(err).Int64("sale_id", id).Msg("Failed to update product sale")
		}
		return nil, err
	}

	log.Info().Int64("sale_id", id).Msg("Product sale updated")
	s.publishEvent(updated.BranchID, websocket.ProductSaleUpdated(updated))
	return updated, nil
}

func (s *ProductSaleService) Delete(ctx context.Context, id int64) error {
	existing, err := s.saleRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.saleRepo.Delete(ctx, id); err != nil {
		return err
	}

	log.Info().Int64("sale_id", id).Msg("Product sale deleted")
	s.publishEvent(existing.BranchID, websocket.ProductSaleDeleted(map[string]int64{"id": id}))
	return nil
}

func (s *ProductSaleService) GetByID(ctx context.Context, id int64) (*domain.ProductSale, error) {
	return s.saleRepo.GetByID(ctx, id)
}

func (s *ProductSaleService) ListByBranch(ctx context.Context, branchID int64) ([]*domain.ProductSale, error) {
	return s.saleRepo.ListByBranch(ctx, branchID)
}

func (s *ProductSaleService) ListByCategory(ctx context.Context, branchID int64, category string) ([]*domain.ProductSale, error) {
	c, err := domain.ParseProductCategory(category)
	if err != nil {
		return nil, err
	}
	return s.saleRepo.ListByCategory(ctx, branchID, c)
}

func (s *ProductSaleService) ListByStudent(ctx context.Context, studentID int64) ([]*domain.ProductSale, error) {
	return s.saleRepo.ListByStudent(ctx, studentID)
}

// ListByDateRange returns sales created between the start of start's day and the end of end's day
func (s *ProductSaleService) ListByDateRange(ctx context.Context, branchID int64, start, end time.Time) ([]*domain.ProductSale, error) {
	if err := validRange(start, end); err != nil {
		return nil, err
	}
	from, to := util.RangeBounds(start, end)
	return s.saleRepo.ListByDateRange(ctx, branchID, from, to)
}

// Summary returns the revenue of one calendar month when both year and month are
// given, otherwise the branch's all-time revenue
func (s *ProductSaleService) Summary(ctx context.Context, branchID int64, year, month *int) (*domain.SalesSummary, error) {
	summary := &domain.SalesSummary{BranchID: branchID}
	if year != nil && month != nil {
		if err := validMonth(*month); err != nil {
			return nil, err
		}
		total, err := s.saleRepo.SumByMonth(ctx, branchID, *year, *month)
		if err != nil {
			return nil, err
		}
		summary.Year, summary.Month = year, month
		summary.TotalRevenue = util.OrZero(total)
		return summary, nil
	}

	total, err := s.saleRepo.SumByBranch(ctx, branchID)
	if err != nil {
		return nil, err
	}
	summary.TotalRevenue = util.OrZero(total)
	return summary, nil
}

// CategorySummary returns the revenue of every category, zero for categories without sales
func (s *ProductSaleService) CategorySummary(ctx context.Context, branchID int64) ([]domain.CategoryRevenue, error) {
	out := make([]domain.CategoryRevenue, 0, len(domain.ProductCategories))
	for _, c := range domain.ProductCategories {
		total, err := s.saleRepo.SumByCategory(ctx, branchID, c)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.CategoryRevenue{Category: c, Revenue: util.OrZero(total)})
	}
	return out, nil
}
