package util

import (
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
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

func TestMonthBounds(t *testing.T) {
	tests := []struct {
		name      string
		year      int
		month     time.Month
		wantFirst time.Time
		wantLast  time.Time
	}{
		{"31-day month", 2024, time.March, date(2024, 3, 1), date(2024, 3, 31)},
		{"leap february", 2024, time.February, date(2024, 2, 1), date(2024, 2, 29)},
		{"non-leap february", 2025, time.February, date(2025, 2, 1), date(2025, 2, 28)},
		{"december", 2025, time.December, date(2025, 12, 1), date(2025, 12, 31)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first, last := MonthBounds(tt.year, tt.month)
			if !first.Equal(tt.wantFirst) || !last.Equal(tt.wantLast) {
				t.Errorf("MonthBounds(%d, %s) = (%s, %s), want (%s, %s)",
					tt.year, tt.month, first, last, tt.wantFirst, tt.wantLast)
			}
		})
	}
}

func TestWeekBounds(t *testing.T) {
	tests := []struct {
		name string
		day  time.Time
		mon  time.Time
		sun  time.Time
	}{
		{"monday is its own start", date(2024, 3, 11), date(2024, 3, 11), date(2024, 3, 17)},
		{"wednesday", date(2024, 3, 13), date(2024, 3, 11), date(2024, 3, 17)},
		{"sunday belongs to preceding monday", date(2024, 3, 17), date(2024, 3, 11), date(2024, 3, 17)},
		{"crosses month boundary", date(2024, 3, 1), date(2024, 2, 26), date(2024, 3, 3)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mon, sun := WeekBounds(tt.day)
			if !mon.Equal(tt.mon) || !sun.Equal(tt.sun) {
				t.Errorf("WeekBounds(%s) = (%s, %s), want (%s, %s)", tt.day, mon, sun, tt.mon, tt.sun)
			}
			if mon.Weekday() != time.Monday || sun.Weekday() != time.Sunday {
				t.Errorf("WeekBounds(%s) weekdays = (%s, %s)", tt.day, mon.Weekday(), sun.Weekday())
			}
		})
	}
}

func TestYearBounds(t *testing.T) {
	start, end := YearBounds(2024)
	if !start.Equal(date(2024, 1, 1)) || !end.Equal(date(2024, 12, 31)) {
		t.Errorf("YearBounds(2024) = (%s, %s)", start, end)
	}
}

func TestTrailingMonths(t *testing.T) {
	start, end := TrailingMonths(date(2024, 3, 15), 6)
	if !start.Equal(date(2023, 10, 1)) {
		t.Errorf("start = %s, want 2023-10-01", start)
	}
	if !end.Equal(date(2024, 3, 31)) {
		t.Errorf("end = %s, want 2024-03-31", end)
	}

	start, end = TrailingMonths(date(2024, 7, 31), 1)
	if !start.Equal(date(2024, 7, 1)) || !end.Equal(date(2024, 7, 31)) {
		t.Errorf("single month = (%s, %s)", start, end)
	}
}

func TestParseDate(t *testing.T) {
	got, ok := ParseDate(" 2024-02-29 ")
	if !ok || !got.Equal(date(2024, 2, 29)) {
		t.Errorf("ParseDate leap day = (%s, %v)", got, ok)
	}

	for _, in := range []string{"", "2024-02-30", "03/01/2024", "2024-3-1"} {
		if _, ok := ParseDate(in); ok {
			t.Errorf("ParseDate(%q) should fail", in)
		}
	}
}

func TestParseMonth(t *testing.T) {
	got, ok := ParseMonth("2024-02")
	if !ok || !got.Equal(date(2024, 2, 1)) {
		t.Errorf("ParseMonth = (%s, %v)", got, ok)
	}
	if _, ok := ParseMonth("2024-13"); ok {
		t.Error("ParseMonth(2024-13) should fail")
	}
}

func TestMonthStart(t *testing.T) {
	got := MonthStart(time.Date(2024, 5, 17, 13, 45, 0, 0, time.UTC))
	if !got.Equal(date(2024, 5, 1)) {
		t.Errorf("MonthStart = %s", got)
	}
}
