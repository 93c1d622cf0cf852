package domain

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type ProductCategory string

const (
	ProductCategoryBook        ProductCategory = "BOOK"
	ProductCategoryUniform     ProductCategory = "UNIFORM"
	ProductCategoryStationery  ProductCategory = "STATIONERY"
	ProductCategoryMerchandise ProductCategory = "MERCHANDISE"
	ProductCategoryOther       ProductCategory = "OTHER"
)

// ProductCategories lists every category in display order.
var ProductCategories = []ProductCategory{
	ProductCategoryBook,
	ProductCategoryUniform,
	ProductCategoryStationery,
	ProductCategoryMerchandise,
	ProductCategoryOther,
}

func ParseProductCategory(s string) (ProductCategory, error) {
	c := ProductCategory(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range ProductCategories {
		if c == known {
			return c, nil
		}
	}
	return "", ErrCategoryInvalid
}

// ProductSale is a merchandise sale. TotalAmount is stored, not derived on read.
type ProductSale struct {
	ID          int64           `json:"id"`
	ProductName string          `json:"productName"`
	Description string          `json:"description"`
	Quantity    int             `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Category    ProductCategory `json:"category"`
	BranchID    int64           `json:"branchId"`
	BranchName  string          `json:"branchName,omitempty"`
	StudentID   *int64          `json:"studentId,omitempty"`
	StudentName string          `json:"studentName,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

// RecomputeTotal sets TotalAmount to UnitPrice x Quantity. Call it on every write.
func (s *ProductSale) RecomputeTotal() {
	s.TotalAmount = s.UnitPrice.Mul(decimal.NewFromInt(int64(s.Quantity)))
}

func (s *ProductSale) Validate() error {
	if strings.TrimSpace(s.ProductName) == "" {
		return ErrNameRequired
	}
	if s.Quantity < 1 {
		return ErrQuantityInvalid
	}
	if s.UnitPrice.LessThanOrEqual(decimal.Zero) {
		return ErrAmountInvalid
	}
	if _, err := ParseProductCategory(string(s.Category)); err != nil {
		return err
	}
	return nil
}

type ProductSaleInput struct {
	ProductName string
	Description string
	Quantity    int
	UnitPrice   decimal.Decimal
	Category    string
	BranchID    int64
	StudentID   *int64
}

// CategoryRevenue is the sales total of one category.
type CategoryRevenue struct {
	Category ProductCategory `json:"category"`
	Revenue  decimal.Decimal `json:"revenue"`
}

// ProductSaleRepository stores sales. Lists are newest first with branch and student names resolved.
type ProductSaleRepository interface {
	Create(ctx context.Context, sale *ProductSale) (*ProductSale, error)
	GetByID(ctx context.Context, id int64) (*ProductSale, error)
	Update(ctx context.Context, sale *ProductSale) (*ProductSale, error)
	Delete(ctx context.Context, id int64) error

	ListByBranch(ctx context.Context, branchID int64) ([]*ProductSale, error)
	ListByCategory(ctx context.Context, branchID int64, category ProductCategory) ([]*ProductSale, error)
	ListByStudent(ctx context.Context, studentID int64) ([]*ProductSale, error)
	ListByDateRange(ctx context.Context, branchID int64, from, to time.Time) ([]*ProductSale, error)

	SumByBranch(ctx context.Context, branchID int64) (decimal.NullDecimal, error)
	SumByMonth(ctx context.Context, branchID int64, year, month int) (decimal.NullDecimal, error)
	SumByDateRange(ctx context.Context, branchID int64, from, to time.Time) (decimal.NullDecimal, error)
	SumByCategory(ctx context.Context, branchID int64, category ProductCategory) (decimal.NullDecimal, error)
}
