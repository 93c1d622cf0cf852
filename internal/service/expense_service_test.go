package service

import (
	"context"
	"testing"

	"github.com/edudesk/edudesk-backend/internal/domain"
	"github.com/edudesk/edudesk-backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseService_Create(t *testing.T) {
	r := seedBranch()
	svc := NewExpenseService(r.Expenses, r.Branches)
	pub := &testutil.RecordingPublisher{}
	svc.SetEventPublisher(pub)

	expense, err := svc.Create(context.Background(), domain.ExpenseInput{
		Description: " Electricity ",
		Amount:      dec("120000"),
		Category:    "utilities",
		BranchID:    1,
	})
	require.NoError(t, err)

	assert.Equal(t, "Electricity", expense.Description)
	assert.Equal(t, domain.ExpenseCategoryUtilities, expense.Category)
	assert.Equal(t, today, expense.CreatedAt)
	assert.Equal(t, []string{"expense.created"}, pub.Types())
}

func TestExpenseService_Create_Rejections(t *testing.T) {
	tests := []struct {
		name  string
		input domain.ExpenseInput
		want  error
	}{
		{"zero amount", domain.ExpenseInput{Amount: dec("0"), Category: "RENT", BranchID: 1}, domain.ErrAmountInvalid},
		{"unknown category", domain.ExpenseInput{Amount: dec("1"), Category: "travel", BranchID: 1}, domain.ErrCategoryInvalid},
		{"unknown branch", domain.ExpenseInput{Amount: dec("1"), Category: "RENT", BranchID: 9}, domain.ErrBranchNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := seedBranch()
			svc := NewExpenseService(r.Expenses, r.Branches)

			_, err := svc.Create(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, r.Expenses.Expenses)
		})
	}
}

func TestExpenseService_ListAndDelete(t *testing.T) {
	r := seedLedger()
	r.Expenses.AddExpense(&domain.Expense{Description: "Markers", Amount: dec("8000"), Category: domain.ExpenseCategorySupplies, BranchID: 1, CreatedAt: at(2024, 3, 5, 10)})
	svc := NewExpenseService(r.Expenses, r.Branches)
	pub := &testutil.RecordingPublisher{}
	svc.SetEventPublisher(pub)
	ctx := context.Background()

	expenses, err := svc.ListByBranch(ctx, 1)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
	assert.Equal(t, "Markers", expenses[0].Description)

	require.NoError(t, svc.Delete(ctx, expenses[0].ID))
	assert.Equal(t, []string{"expense.deleted"}, pub.Types())

	_, err = svc.GetByID(ctx, expenses[0].ID)
	assert.ErrorIs(t, err, domain.ErrExpenseNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, expenses[0].ID), domain.ErrExpenseNotFound)
}
