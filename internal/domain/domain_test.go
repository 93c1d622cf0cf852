package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductSale_RecomputeTotal(t *testing.T) {
	sale := &ProductSale{ProductName: "Notebook", Quantity: 3, UnitPrice: decimal.NewFromInt(20000)}
	sale.RecomputeTotal()
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(60000)))

	sale.Quantity = 5
	sale.RecomputeTotal()
	assert.True(t, sale.TotalAmount.Equal(decimal.NewFromInt(100000)))

	sale.UnitPrice = decimal.RequireFromString("12.50")
	sale.RecomputeTotal()
	assert.Equal(t, "62.5", sale.TotalAmount.String())
}

func TestProductSale_Validate(t *testing.T) {
	valid := ProductSale{ProductName: "Uniform", Quantity: 1, UnitPrice: decimal.NewFromInt(10), Category: ProductCategoryUniform}
	require.NoError(t, valid.Validate())

	noName := valid
	noName.ProductName = "  "
	assert.ErrorIs(t, noName.Validate(), ErrNameRequired)

	zeroQty := valid
	zeroQty.Quantity = 0
	assert.ErrorIs(t, zeroQty.Validate(), ErrQuantityInvalid)

	freePrice := valid
	freePrice.UnitPrice = decimal.Zero
	assert.ErrorIs(t, freePrice.Validate(), ErrAmountInvalid)

	badCategory := valid
	badCategory.Category = "FOOD"
	assert.ErrorIs(t, badCategory.Validate(), ErrCategoryInvalid)
}

func TestErrorKinds(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind error
	}{
		{"student not found", ErrStudentNotFound, ErrNotFound},
		{"payment not found", ErrPaymentNotFound, ErrNotFound},
		{"amount invalid", ErrAmountInvalid, ErrInvalidInput},
		{"not in group", ErrStudentNotInGroup, ErrInvalidInput},
		{"branch mismatch", ErrGroupBranchMismatch, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, errors.Is(tt.err, tt.kind))
			assert.True(t, IsClientError(tt.err))
		})
	}

	assert.False(t, errors.Is(ErrStudentNotFound, ErrInvalidInput))
	assert.False(t, IsClientError(errors.New("connection reset")))
	assert.Equal(t, "student not found", ErrStudentNotFound.Error())
}

func TestParseCategories(t *testing.T) {
	c, err := ParsePaymentCategory("card")
	require.NoError(t, err)
	assert.Equal(t, PaymentCategoryCard, c)

	_, err = ParsePaymentCategory("cheque")
	assert.ErrorIs(t, err, ErrInvalidInput)

	pc, err := ParseProductCategory(" book ")
	require.NoError(t, err)
	assert.Equal(t, ProductCategoryBook, pc)

	ec, err := ParseExpenseCategory("Rent")
	require.NoError(t, err)
	assert.Equal(t, ExpenseCategoryRent, ec)
}

func TestStudent_Validate(t *testing.T) {
	day := 31
	s := Student{FirstName: "Ali", LastName: "Valiyev", PaymentDayOfMonth: &day}
	require.NoError(t, s.Validate())

	bad := 32
	s.PaymentDayOfMonth = &bad
	assert.ErrorIs(t, s.Validate(), ErrPayDayInvalid)

	s.PaymentDayOfMonth = nil
	s.LastName = ""
	assert.ErrorIs(t, s.Validate(), ErrNameRequired)
}

func TestVisibility_Admits(t *testing.T) {
	assert.True(t, VisibleOnly.Admits(StudentActive))
	assert.False(t, VisibleOnly.Admits(StudentDeleted))
	assert.True(t, IncludeDeleted.Admits(StudentDeleted))
}

func TestRoster(t *testing.T) {
	math := &Group{ID: 1, Name: "Math"}
	english := &Group{ID: 2, Name: "English"}
	roster := NewRoster([]*Group{math, english}, []*GroupMembership{
		{GroupID: 1, StudentID: 10},
		{GroupID: 1, StudentID: 11},
		{GroupID: 2, StudentID: 10},
		{GroupID: 99, StudentID: 10},
	})

	assert.Equal(t, []int64{10, 11}, roster.StudentIDs(1))
	assert.Empty(t, roster.StudentIDs(3))
	assert.Equal(t, []*Group{math, english}, roster.GroupsOf(10))
	assert.Equal(t, []*Group{math}, roster.GroupsOf(11))
	assert.Len(t, roster.Groups(), 2)

	g, ok := roster.Group(2)
	require.True(t, ok)
	assert.Equal(t, "English", g.Name)
}

func TestGroup_Days(t *testing.T) {
	g := Group{DaysOfWeek: "MONDAY, WEDNESDAY,,FRIDAY"}
	assert.Equal(t, []string{"MONDAY", "WEDNESDAY", "FRIDAY"}, g.Days())

	empty := Group{}
	assert.Equal(t, []string{}, empty.Days())
}
