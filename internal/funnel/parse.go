package funnel

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/width"
)

// DefaultRolloverMonth closes the fiscal year: April to March.
const DefaultRolloverMonth = time.March

// FiscalYear resolves year-less M/D dates. Months up to and including
// RolloverMonth belong to StartYear+1; later months belong to StartYear.
// The zero value disables inference.
type FiscalYear struct {
	StartYear     int
	RolloverMonth time.Month
}

// FiscalYearOf returns the fiscal year that contains the given day.
func FiscalYearOf(day time.Time, rollover time.Month) FiscalYear {
	start := day.Year()
	if day.Month() <= rollover {
		start--
	}
	return FiscalYear{StartYear: start, RolloverMonth: rollover}
}

func (fy FiscalYear) enabled() bool {
	return fy.StartYear > 0 && fy.RolloverMonth >= time.January && fy.RolloverMonth <= time.December
}

func (fy FiscalYear) yearFor(month int) int {
	if time.Month(month) <= fy.RolloverMonth {
		return fy.StartYear + 1
	}
	return fy.StartYear
}

var (
	isoLikeDate  = regexp.MustCompile(`^(\d{4})[/\-.](\d{1,2})[/\-.](\d{1,2})`)
	kanjiDate    = regexp.MustCompile(`^(\d{4})年(\d{1,2})月(\d{1,2})日?`)
	monthDayDate = regexp.MustCompile(`^(\d{1,2})/(\d{1,2})$`)
	serialDate   = regexp.MustCompile(`^\d+(\.\d+)?$`)
)

// Spreadsheet serial days count from 1899-12-30.
var spreadsheetEpoch = time.Date(1899, time.December, 30, 0, 0, 0, 0, time.UTC)

// ParseFlexibleDate parses the date forms found on the monthly sheets and
// returns a UTC midnight. Full-width digits and separators are accepted.
// It reports false for blank, malformed or impossible dates, and for M/D
// when fy is the zero value.
func ParseFlexibleDate(s string, fy FiscalYear) (time.Time, bool) {
	s = strings.TrimSpace(width.Narrow.String(s))
	if s == "" {
		return time.Time{}, false
	}

	if m := isoLikeDate.FindStringSubmatch(s); m != nil {
		return civilDate(m[1], m[2], m[3])
	}
	if m := kanjiDate.FindStringSubmatch(s); m != nil {
		return civilDate(m[1], m[2], m[3])
	}
	if m := monthDayDate.FindStringSubmatch(s); m != nil {
		if !fy.enabled() {
			return time.Time{}, false
		}
		month, _ := strconv.Atoi(m[1])
		return civilDate(strconv.Itoa(fy.yearFor(month)), m[1], m[2])
	}
	if serialDate.MatchString(s) {
		return fromSerial(s)
	}
	return time.Time{}, false
}

func civilDate(year, month, day string) (time.Time, bool) {
	y, err := strconv.Atoi(year)
	if err != nil {
		return time.Time{}, false
	}
	m, err := strconv.Atoi(month)
	if err != nil {
		return time.Time{}, false
	}
	d, err := strconv.Atoi(day)
	if err != nil {
		return time.Time{}, false
	}
	if m < 1 || m > 12 || d < 1 || d > 31 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
	// time.Date normalises 2026-02-30 to March; reject instead.
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func fromSerial(s string) (time.Time, bool) {
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n <= 10000 || n >= 1000000 {
		return time.Time{}, false
	}
	return spreadsheetEpoch.AddDate(0, 0, int(n)), true
}

// ParseBooleanFlag reports whether v spells TRUE, 1 or YES (case-insensitive,
// trimmed). Booleans pass through; nil and everything else is false.
func ParseBooleanFlag(v any) bool {
	switch typed := v.(type) {
	case nil:
		return false
	case bool:
		return typed
	case *string:
		if typed == nil {
			return false
		}
		return ParseBooleanFlag(*typed)
	case string:
		switch strings.ToUpper(strings.TrimSpace(width.Narrow.String(typed))) {
		case "TRUE", "1", "YES":
			return true
		}
		return false
	default:
		return ParseBooleanFlag(fmt.Sprint(typed))
	}
}

// ParseMoney keeps only the digits of s (full-width digits included) and
// parses them. It returns 0 when no digits remain or the number does not fit
// in an int64.
func ParseMoney(s string) int64 {
	var b strings.Builder
	for _, r := range width.Narrow.String(s) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0
	}
	n, err := strconv.ParseInt(b.String(), 10, 64)
	if err != nil {
		return 0
	}
	return n
}

// Grade is the probability grade ("yomi") a consultant assigns to a deal.
type Grade int

const (
	GradeNone Grade = iota
	GradeA
	GradeB
	GradeC
	GradeD
)

// ParseGrade accepts A, B, C or D in any case. Everything else is GradeNone.
func ParseGrade(s string) Grade {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "A":
		return GradeA
	case "B":
		return GradeB
	case "C":
		return GradeC
	case "D":
		return GradeD
	default:
		return GradeNone
	}
}

func (g Grade) String() string {
	switch g {
	case GradeA:
		return "A"
	case GradeB:
		return "B"
	case GradeC:
		return "C"
	case GradeD:
		return "D"
	default:
		return ""
	}
}

// Probability returns the closing probability the grade stands for.
func (g Grade) Probability() float64 {
	switch g {
	case GradeA:
		return 0.8
	case GradeB:
		return 0.5
	case GradeC:
		return 0.3
	case GradeD:
		return 0.1
	default:
		return 0
	}
}

// Label renders the grade as shown on the interview card, e.g. "Aヨミ(80%)".
func (g Grade) Label() string {
	if g == GradeNone {
		return ""
	}
	return fmt.Sprintf("%sヨミ(%d%%)", g, int(g.Probability()*100+0.5))
}
