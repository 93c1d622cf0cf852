package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func datePtr(y int, m time.Month, d int) *time.Time {
	t := date(y, m, d)
	return &t
}

func TestClassifyPaymentStatus(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	tests := []struct {
		name     string
		paid     decimal.Decimal
		expected decimal.Decimal
		due      *time.Time
		today    time.Time
		want     PaymentStatus
	}{
		{"fully paid after due date", hundred, hundred, datePtr(2024, 3, 15), date(2024, 3, 20), PaymentStatusPaid},
		{"nothing paid ten days late", decimal.Zero, hundred, datePtr(2024, 3, 15), date(2024, 3, 25), PaymentStatusOverdue},
		{"half paid three days late", decimal.NewFromInt(50), hundred, datePtr(2024, 3, 15), date(2024, 3, 18), PaymentStatusPartial},
		{"nothing paid before due date", decimal.Zero, hundred, datePtr(2024, 3, 15), date(2024, 3, 10), PaymentStatusUpcoming},
		{"overpaid", decimal.NewFromInt(150), hundred, datePtr(2024, 3, 15), date(2024, 3, 10), PaymentStatusPaid},
		{"zero expected is trivially paid", decimal.Zero, decimal.Zero, nil, date(2024, 3, 10), PaymentStatusPaid},
		{"no due date nothing paid", decimal.Zero, hundred, nil, date(2024, 3, 10), PaymentStatusUnpaid},
		{"no due date partial", decimal.NewFromInt(10), hundred, nil, date(2024, 3, 10), PaymentStatusPartial},
		{"partial before due date", decimal.NewFromInt(10), hundred, datePtr(2024, 3, 15), date(2024, 3, 14), PaymentStatusPartial},
		{"due today nothing paid", decimal.Zero, hundred, datePtr(2024, 3, 15), date(2024, 3, 15), PaymentStatusUnpaid},
		{"six days late nothing paid", decimal.Zero, hundred, datePtr(2024, 3, 15), date(2024, 3, 21), PaymentStatusUnpaid},
		{"exactly seven days late", decimal.Zero, hundred, datePtr(2024, 3, 15), date(2024, 3, 22), PaymentStatusOverdue},
		{"partial but a week late", decimal.NewFromInt(99), hundred, datePtr(2024, 3, 15), date(2024, 3, 22), PaymentStatusOverdue},
		{"late across a month boundary", decimal.Zero, hundred, datePtr(2024, 2, 28), date(2024, 3, 6), PaymentStatusOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClassifyPaymentStatus(tt.paid, tt.expected, tt.due, tt.today)
			if got != tt.want {
				t.Errorf("ClassifyPaymentStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestClassifyPaymentStatus_IgnoresTimeOfDay(t *testing.T) {
	due := date(2024, 3, 15)
	late := time.Date(2024, 3, 22, 0, 30, 0, 0, time.UTC)
	early := time.Date(2024, 3, 21, 23, 59, 0, 0, time.UTC)

	if got := ClassifyPaymentStatus(decimal.Zero, decimal.NewFromInt(1), &due, late); got != PaymentStatusOverdue {
		t.Errorf("got %s, want OVERDUE", got)
	}
	if got := ClassifyPaymentStatus(decimal.Zero, decimal.NewFromInt(1), &due, early); got != PaymentStatusUnpaid {
		t.Errorf("got %s, want UNPAID", got)
	}
}

func TestClassifyPaymentStatus_Deterministic(t *testing.T) {
	due := date(2024, 3, 15)
	today := date(2024, 3, 18)
	first := ClassifyPaymentStatus(decimal.NewFromInt(50), decimal.NewFromInt(100), &due, today)
	for i := 0; i < 10; i++ {
		if got := ClassifyPaymentStatus(decimal.NewFromInt(50), decimal.NewFromInt(100), &due, today); got != first {
			t.Fatalf("run %d returned %s, first run returned %s", i, got, first)
		}
	}
}
