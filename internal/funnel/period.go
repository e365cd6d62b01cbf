package funnel

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Period is an inclusive range of calendar days, both ends at UTC midnight.
type Period struct {
	Start time.Time
	End   time.Time
}

// MonthPeriod returns the first through the last day of the month.
func MonthPeriod(year int, month time.Month) Period {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return Period{Start: start, End: start.AddDate(0, 1, -1)}
}

var monthKeyPattern = regexp.MustCompile(`^(\d{4})[_\-](\d{1,2})$`)

// ParseMonthKey accepts "2026_01" (staging format) or "2026-01".
func ParseMonthKey(key string) (Period, error) {
	m := monthKeyPattern.FindStringSubmatch(key)
	if m == nil {
		return Period{}, fmt.Errorf("invalid month %q: want YYYY_MM", key)
	}
	year, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	if month < 1 || month > 12 {
		return Period{}, fmt.Errorf("invalid month %q: month out of range", key)
	}
	return MonthPeriod(year, time.Month(month)), nil
}

// Contains reports whether the day of t falls within the period.
func (p Period) Contains(t time.Time) bool {
	if t.IsZero() {
		return false
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return !day.Before(p.Start) && !day.After(p.End)
}

// MonthKey renders the staging key of the month the period starts in.
func (p Period) MonthKey() string {
	return fmt.Sprintf("%04d_%02d", p.Start.Year(), int(p.Start.Month()))
}

// YearMonth renders the period start as "2026-01".
func (p Period) YearMonth() string {
	return fmt.Sprintf("%04d-%02d", p.Start.Year(), int(p.Start.Month()))
}
