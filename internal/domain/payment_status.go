package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus is the derived collection state of a student for a billing period.
type PaymentStatus string

const (
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusPartial  PaymentStatus = "PARTIAL"
	PaymentStatusUnpaid   PaymentStatus = "UNPAID"
	PaymentStatusUpcoming PaymentStatus = "UPCOMING"
	PaymentStatusOverdue  PaymentStatus = "OVERDUE"
)

// OverdueGraceDays is how many days past the due date a balance may stay open
// before it is reported as OVERDUE.
const OverdueGraceDays = 7

// ClassifyPaymentStatus derives the status of a period from what was paid, what was
// expected and the due date. Dates are compared as calendar days; the first matching rule wins.
func ClassifyPaymentStatus(totalPaid, expected decimal.Decimal, dueDate *time.Time, today time.Time) PaymentStatus {
	if totalPaid.GreaterThanOrEqual(expected) {
		return PaymentStatusPaid
	}

	paidSomething := totalPaid.GreaterThan(decimal.Zero)
	openStatus := PaymentStatusUnpaid
	if paidSomething {
		openStatus = PaymentStatusPartial
	}

	if dueDate == nil {
		return openStatus
	}

	due := calendarDay(*dueDate)
	day := calendarDay(today)
	if day.Before(due) {
		if paidSomething {
			return PaymentStatusPartial
		}
		return PaymentStatusUpcoming
	}

	daysOverdue := int(day.Sub(due).Hours() / 24)
	if daysOverdue >= OverdueGraceDays {
		return PaymentStatusOverdue
	}
	return openStatus
}

func calendarDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
