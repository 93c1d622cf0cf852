package util

import "time"

// PaymentPeriodGraceDays is the number of leading days of a month that still
// belong to the previous billing period.
const PaymentPeriodGraceDays = 5

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// NextMonth returns the year and month for the following month
func NextMonth(year, month int) (int, int) {
	if month == 12 {
		return year + 1, 1
	}
	return year, month + 1
}

// CalculateActualDate returns the actual date for a target day in a given month,
// handling months with fewer days (e.g., day 31 in February returns Feb 28/29)
func CalculateActualDate(year int, month time.Month, targetDay int) time.Time {
	// Get last day of month by going to day 0 of next month
	lastDay := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()

	actualDay := targetDay
	if actualDay > lastDay {
		actualDay = lastDay
	}
	if actualDay < 1 {
		actualDay = 1
	}

	return time.Date(year, month, actualDay, 0, 0, 0, 0, time.UTC)
}

// DueDate returns the tuition due date of a billing period. Without a configured
// pay day the first of the month is used.
func DueDate(payDay *int, year, month int) time.Time {
	if payDay == nil {
		return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	}
	return CalculateActualDate(year, time.Month(month), *payDay)
}

// NextDueDate returns the due date of the period, or of the following period when
// the period's own due date is already behind today. Nil when no pay day is configured.
func NextDueDate(payDay *int, year, month int, today time.Time) *time.Time {
	if payDay == nil {
		return nil
	}

	due := DueDate(payDay, year, month)
	if due.Before(DateOf(today)) {
		nextYear, nextMonth := NextMonth(year, month)
		due = CalculateActualDate(nextYear, time.Month(nextMonth), *payDay)
	}
	return &due
}

// IsPastDue reports whether today is strictly after the period's due date.
// A student without a pay day is never past due.
func IsPastDue(payDay *int, year, month int, today time.Time) bool {
	if payDay == nil {
		return false
	}
	return DateOf(today).After(DueDate(payDay, year, month))
}

// CurrentPaymentPeriod returns the billing period that today falls into. The first
// days of a month are still reported against the previous month.
func CurrentPaymentPeriod(today time.Time) (int, int) {
	if today.Day() < PaymentPeriodGraceDays {
		return PreviousMonth(today.Year(), int(today.Month()))
	}
	return today.Year(), int(today.Month())
}

// ResolvePeriod fills a missing year or month from the current payment period.
func ResolvePeriod(year, month *int, today time.Time) (int, int) {
	y, m := CurrentPaymentPeriod(today)
	if year != nil {
		y = *year
	}
	if month != nil {
		m = *month
	}
	return y, m
}

// DateOf truncates t to its calendar date at UTC midnight.
func DateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayBounds returns the first and last instant of the calendar day of t.
func DayBounds(t time.Time) (time.Time, time.Time) {
	start := DateOf(t)
	return start, start.Add(24*time.Hour - time.Nanosecond)
}

// RangeBounds returns the first instant of start's day and the last instant of end's day.
func RangeBounds(start, end time.Time) (time.Time, time.Time) {
	from, _ := DayBounds(start)
	_, to := DayBounds(end)
	return from, to
}
