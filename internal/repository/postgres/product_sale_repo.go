package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const productSaleSelect = `SELECT ps.id, ps.product_name, ps.description, ps.quantity, ps.unit_price, ps.total_amount,
	ps.category, ps.branch_id, COALESCE(b.name, ''), ps.student_id,
	COALESCE(s.first_name || ' ' || s.last_name, ''), ps.created_at
FROM product_sales ps
LEFT JOIN branches b ON b.id = ps.branch_id
LEFT JOIN students s ON s.id = ps.student_id`

const productSaleOrder = ` ORDER BY ps.created_at DESC, ps.id DESC`

// ProductSaleRepository implements domain.ProductSaleRepository using PostgreSQL
type ProductSaleRepository struct {
	pool *pgxpool.Pool
}

// NewProductSaleRepository creates a new ProductSaleRepository
func NewProductSaleRepository(pool *pgxpool.Pool) *ProductSaleRepository {
	return &ProductSaleRepository{pool: pool}
}

func scanProductSale(row pgx.Row) (*domain.ProductSale, error) {
	var s domain.ProductSale
	var category string
	if err := row.Scan(&s.ID, &s.ProductName, &s.Description, &s.Quantity, &s.UnitPrice, &s.TotalAmount,
		&category, &s.BranchID, &s.BranchName, &s.StudentID, &s.StudentName, &s.CreatedAt); err != nil {
		return nil, err
	}
	s.Category = domain.ProductCategory(category)
	return &s, nil
}

// Create inserts a sale; TotalAmount must already be computed
func (r *ProductSaleRepository) Create(ctx context.Context, sale *domain.ProductSale) (*domain.ProductSale, error) {
	var id int64
	err := getQuerier(ctx, r.pool).QueryRow(ctx,
		`INSERT INTO product_sales (product_name, description, quantity, unit_price, total_amount, category, branch_id, student_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id`,
		sale.ProductName, sale.Description, sale.Quantity, sale.UnitPrice, sale.TotalAmount,
		string(sale.Category), sale.BranchID, sale.StudentID,
	).Scan(&id)
	if err != nil {
		return nil, fmt.Errorf("create product sale: %w", err)
	}
	return r.GetByID(ctx, id)
}

func (r *ProductSaleRepository) GetByID(ctx context.Context, id int64) (*domain.ProductSale, error) {
	s, err := scanProductSale(getQuerier(ctx, r.pool).QueryRow(ctx, productSaleSelect+` WHERE ps.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrProductSaleNotFound
		}
		return nil, fmt.Errorf("get product sale: %w", err)
	}
	return s, nil
}

// Update overwrites every writable field, including clearing the student link
func (r *ProductSaleRepository) Update(ctx context.Context, sale *domain.ProductSale) (*domain.ProductSale, error) {
	tag, err := getQuerier(ctx, r.pool).Exec(ctx,
		`UPDATE product_sales SET product_name = $2, description = $3, quantity = $4, unit_price = $5,
			total_amount = $6, category = $7, branch_id = $8, student_id = $9
		WHERE id = $1`,
		sale.ID, sale.ProductName, sale.Description, sale.Quantity, sale.UnitPrice, sale.TotalAmount,
		string(sale.Category), sale.BranchID, sale.StudentID)
	if err != nil {
		return nil, fmt.Errorf("update product sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrProductSaleNotFound
	}
	return r.GetByID(ctx, sale.ID)
}

func (r *ProductSaleRepository) Delete(ctx context.Context, id int64) error {
	tag, err := getQuerier(ctx, r.pool).Exec(ctx, `DELETE FROM product_sales WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product sale: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrProductSaleNotFound
	}
	return nil
}

func (r *ProductSaleRepository) ListByBranch(ctx context.Context, branchID int64) ([]*domain.ProductSale, error) {
	return r.list(ctx, productSaleSelect+` WHERE ps.branch_id = $1`+productSaleOrder, branchID)
}

func (r *ProductSaleRepository) ListByCategory(ctx context.Context, branchID int64, category domain.ProductCategory) ([]*domain.ProductSale, error) {
	return r.list(ctx, productSaleSelect+` WHERE ps.branch_id = $1 AND ps.category = $2`+productSaleOrder, branchID, string(category))
}

func (r *ProductSaleRepository) ListByStudent(ctx context.Context, studentID int64) ([]*domain.ProductSale, error) {
	return r.list(ctx, productSaleSelect+` WHERE ps.student_id = $1`+productSaleOrder, studentID)
}

func (r *ProductSaleRepository) ListByDateRange(ctx context.Context, branchID int64, from, to time.Time) ([]*domain.ProductSale, error) {
	return r.list(ctx, productSaleSelect+`
		WHERE ps.branch_id = $1 AND ps.created_at BETWEEN $2 AND $3`+productSaleOrder, branchID, from, to)
}

func (r *ProductSaleRepository) list(ctx context.Context, query string, args ...any) ([]*domain.ProductSale, error) {
	rows, err := getQuerier(ctx, r.pool).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list product sales: %w", err)
	}
	return collect(rows, scanProductSale)
}

func (r *ProductSaleRepository) SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool), `SELECT SUM(total_amount) FROM product_sales WHERE branch_id = $1`, branchID)
}

// SumByMonth totals sales created in a calendar month
func (r *ProductSaleRepository) SumByMonth(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(total_amount) FROM product_sales
		WHERE branch_id = $1 AND EXTRACT(YEAR FROM created_at) = $2 AND EXTRACT(MONTH FROM created_at) = $3`,
		branchID, year, month)
}

func (r *ProductSaleRepository) SumByDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(total_amount) FROM product_sales WHERE branch_id = $1 AND created_at BETWEEN $2 AND $3`,
		branchID, from, to)
}

func (r *ProductSaleRepository) SumByCategory(ctx context.Context, branchID int64, category domain.ProductCategory) (decimal.NullDecimal, error) {
	return sum(ctx, getQuerier(ctx, r.pool),
		`SELECT SUM(total_amount) FROM product_sales WHERE branch_id = $1 AND category = $2`,
		branchID, string(category))
}
