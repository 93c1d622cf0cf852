package util

import (
	"testing"
	"time"
)

func intPtr(v int) *int { return &v }

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestPreviousMonth_SameYear(t *testing.T) {
	tests := []struct {
		year      int
		month     int
		wantYear  int
		wantMonth int
	}{
		{2026, 6, 2026, 5},   // June -> May
		{2026, 12, 2026, 11}, // Dec -> Nov
		{2026, 2, 2026, 1},   // Feb -> Jan
	}

	for _, tt := range tests {
		gotYear, gotMonth := PreviousMonth(tt.year, tt.month)
		if gotYear != tt.wantYear || gotMonth != tt.wantMonth {
			t.Errorf("PreviousMonth(%d, %d) = (%d, %d), want (%d, %d)",
				tt.year, tt.month, gotYear, gotMonth, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestPreviousMonth_YearBoundary(t *testing.T) {
	gotYear, gotMonth := PreviousMonth(2026, 1)
	if gotYear != 2025 || gotMonth != 12 {
		t.Errorf("PreviousMonth(2026, 1) = (%d, %d), want (2025, 12)", gotYear, gotMonth)
	}
}

func TestNextMonth(t *testing.T) {
	if y, m := NextMonth(2025, 12); y != 2026 || m != 1 {
		t.Errorf("NextMonth(2025, 12) = (%d, %d), want (2026, 1)", y, m)
	}
	if y, m := NextMonth(2025, 4); y != 2025 || m != 5 {
		t.Errorf("NextMonth(2025, 4) = (%d, %d), want (2025, 5)", y, m)
	}
}

func TestDueDate_ClampsToLastDay(t *testing.T) {
	tests := []struct {
		name   string
		payDay int
		year   int
		month  int
		want   time.Time
	}{
		{"31st in April", 31, 2024, 4, day(2024, 4, 30)},
		{"31st in June", 31, 2024, 6, day(2024, 6, 30)},
		{"31st in September", 31, 2024, 9, day(2024, 9, 30)},
		{"31st in November", 31, 2024, 11, day(2024, 11, 30)},
		{"30th in leap February", 30, 2024, 2, day(2024, 2, 29)},
		{"29th in common February", 29, 2023, 2, day(2023, 2, 28)},
		{"31st in January is kept", 31, 2024, 1, day(2024, 1, 31)},
		{"15th is kept", 15, 2024, 3, day(2024, 3, 15)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueDate(intPtr(tt.payDay), tt.year, tt.month)
			if !got.Equal(tt.want) {
				t.Errorf("DueDate(%d, %d, %d) = %s, want %s", tt.payDay, tt.year, tt.month, got, tt.want)
			}
		})
	}
}

func TestDueDate_NoPayDayIsFirstOfMonth(t *testing.T) {
	for month := 1; month <= 12; month++ {
		got := DueDate(nil, 2025, month)
		want := day(2025, time.Month(month), 1)
		if !got.Equal(want) {
			t.Errorf("DueDate(nil, 2025, %d) = %s, want %s", month, got, want)
		}
	}
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name   string
		payDay *int
		year   int
		month  int
		today  time.Time
		want   *time.Time
	}{
		{"no pay day", nil, 2024, 3, day(2024, 3, 10), nil},
		{"due date still ahead", intPtr(15), 2024, 3, day(2024, 3, 10), ptr(day(2024, 3, 15))},
		{"due date is today", intPtr(15), 2024, 3, day(2024, 3, 15), ptr(day(2024, 3, 15))},
		{"due date passed rolls forward", intPtr(15), 2024, 3, day(2024, 3, 16), ptr(day(2024, 4, 15))},
		{"rolls into shorter month and clamps", intPtr(31), 2024, 1, day(2024, 2, 2), ptr(day(2024, 2, 29))},
		{"rolls over the year", intPtr(10), 2024, 12, day(2024, 12, 20), ptr(day(2025, 1, 10))},
		{"clamped date still ahead", intPtr(31), 2024, 4, day(2024, 4, 29), ptr(day(2024, 4, 30))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(tt.payDay, tt.year, tt.month, tt.today)
			if tt.want == nil {
				if got != nil {
					t.Errorf("NextDueDate() = %s, want nil", got)
				}
				return
			}
			if got == nil || !got.Equal(*tt.want) {
				t.Errorf("NextDueDate() = %v, want %s", got, tt.want)
			}
			if got != nil && got.Before(DateOf(tt.today)) {
				t.Errorf("NextDueDate() = %s is before today %s", got, tt.today)
			}
		})
	}
}

func TestNextDueDate_OldPeriodRollsOnce(t *testing.T) {
	// a period two months back only advances to the following month,
	// so the result can still lie before today
	got := NextDueDate(intPtr(10), 2024, 1, day(2024, 3, 20))
	if got == nil || !got.Equal(day(2024, 2, 10)) {
		t.Errorf("NextDueDate() = %v, want 2024-02-10", got)
	}
	if !IsPastDue(intPtr(10), 2024, 1, day(2024, 3, 20)) {
		t.Error("old period must stay past due")
	}
}

func TestNextDueDate_IgnoresTimeOfDay(t *testing.T) {
	afternoon := time.Date(2024, 3, 15, 17, 45, 0, 0, time.UTC)
	got := NextDueDate(intPtr(15), 2024, 3, afternoon)
	if got == nil || !got.Equal(day(2024, 3, 15)) {
		t.Errorf("NextDueDate() = %v, want 2024-03-15", got)
	}
}

func TestIsPastDue(t *testing.T) {
	if IsPastDue(nil, 2024, 3, day(2025, 1, 1)) {
		t.Error("student without pay day must never be past due")
	}
	if IsPastDue(intPtr(15), 2024, 3, day(2024, 3, 15)) {
		t.Error("due date itself is not past due")
	}
	if !IsPastDue(intPtr(15), 2024, 3, day(2024, 3, 16)) {
		t.Error("day after due date is past due")
	}
	if !IsPastDue(intPtr(31), 2024, 2, day(2024, 3, 1)) {
		t.Error("clamped due date 2024-02-29 is past on 2024-03-01")
	}
}

func TestCurrentPaymentPeriod(t *testing.T) {
	tests := []struct {
		today     time.Time
		wantYear  int
		wantMonth int
	}{
		{day(2024, 3, 1), 2024, 2},
		{day(2024, 3, 4), 2024, 2},
		{day(2024, 3, 5), 2024, 3},
		{day(2024, 3, 31), 2024, 3},
		{day(2024, 1, 2), 2023, 12},
	}

	for _, tt := range tests {
		y, m := CurrentPaymentPeriod(tt.today)
		if y != tt.wantYear || m != tt.wantMonth {
			t.Errorf("CurrentPaymentPeriod(%s) = (%d, %d), want (%d, %d)",
				tt.today.Format("2006-01-02"), y, m, tt.wantYear, tt.wantMonth)
		}
	}
}

func TestResolvePeriod(t *testing.T) {
	today := day(2024, 3, 20)
	if y, m := ResolvePeriod(nil, nil, today); y != 2024 || m != 3 {
		t.Errorf("ResolvePeriod(nil, nil) = (%d, %d)", y, m)
	}
	if y, m := ResolvePeriod(intPtr(2023), nil, today); y != 2023 || m != 3 {
		t.Errorf("ResolvePeriod(2023, nil) = (%d, %d)", y, m)
	}
	if y, m := ResolvePeriod(nil, intPtr(7), today); y != 2024 || m != 7 {
		t.Errorf("ResolvePeriod(nil, 7) = (%d, %d)", y, m)
	}
}

func TestRangeBounds(t *testing.T) {
	from, to := RangeBounds(time.Date(2024, 3, 1, 13, 0, 0, 0, time.UTC), day(2024, 3, 31))
	if !from.Equal(day(2024, 3, 1)) {
		t.Errorf("from = %s", from)
	}
	if !to.Equal(day(2024, 4, 1).Add(-time.Nanosecond)) {
		t.Errorf("to = %s", to)
	}
}

func ptr(t time.Time) *time.Time { return &t }
