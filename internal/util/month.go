package util

import (
	"strings"
	"time"
)

// DateOnly truncates t to midnight UTC of its calendar date in t's location
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// PreviousMonth returns the year and month for the previous month
func PreviousMonth(year, month int) (int, int) {
	if month == 1 {
		return year - 1, 12
	}
	return year, month - 1
}

// MonthBounds returns the first and last calendar day of the given month
func MonthBounds(year int, month time.Month) (time.Time, time.Time) {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month is the last day of this one
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC)
	return first, last
}

// WeekBounds returns Monday through Sunday of the week containing day
func WeekBounds(day time.Time) (time.Time, time.Time) {
	d := DateOnly(day)
	// time.Sunday is 0; shift so Monday is 0
	offset := (int(d.Weekday()) + 6) % 7
	monday := d.AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 6)
}

// YearBounds returns Jan 1 and Dec 31 of year
func YearBounds(year int) (time.Time, time.Time) {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// TrailingMonths returns the first day of the month n-1 months before day
// and the last day of day's month, spanning n calendar months.
func TrailingMonths(day time.Time, n int) (time.Time, time.Time) {
	year, month := day.Year(), int(day.Month())
	for i := 1; i < n; i++ {
		year, month = PreviousMonth(year, month)
	}
	start, _ := MonthBounds(year, time.Month(month))
	_, end := MonthBounds(day.Year(), day.Month())
	return start, end
}

// ParseDate parses a YYYY-MM-DD calendar date
func ParseDate(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// ParseMonth parses a YYYY-MM year-month into the first day of that month
func ParseMonth(s string) (time.Time, bool) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// MonthStart returns the first day of t's month
func MonthStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
}
