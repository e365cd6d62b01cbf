package funnel

import (
	"testing"
	"time"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestParseFlexibleDate(t *testing.T) {
	fy2025 := FiscalYear{StartYear: 2025, RolloverMonth: time.March}

	cases := []struct {
		name  string
		input string
		fy    FiscalYear
		want  time.Time
		ok    bool
	}{
		{"iso", "2026-01-05", FiscalYear{}, day(2026, 1, 5), true},
		{"slash without zero padding", "2026/1/5", FiscalYear{}, day(2026, 1, 5), true},
		{"slash with padding", "2026/01/31", FiscalYear{}, day(2026, 1, 31), true},
		{"dotted", "2026.2.3", FiscalYear{}, day(2026, 2, 3), true},
		{"kanji", "2026年1月5日", FiscalYear{}, day(2026, 1, 5), true},
		{"kanji without day suffix", "2026年12月5", FiscalYear{}, day(2026, 12, 5), true},
		{"trailing time ignored", "2026/01/05 10:30:00", FiscalYear{}, day(2026, 1, 5), true},
		{"surrounding space", "  2026-01-05  ", FiscalYear{}, day(2026, 1, 5), true},
		{"full-width", "２０２６／１／５", FiscalYear{}, day(2026, 1, 5), true},
		{"full-width month-day", "１／５", fy2025, day(2026, 1, 5), true},
		{"spreadsheet serial", "46027", FiscalYear{}, day(2026, 1, 5), true},
		{"spreadsheet serial with fraction", "45658.75", FiscalYear{}, day(2025, 1, 1), true},
		{"month-day before rollover goes to next year", "1/5", fy2025, day(2026, 1, 5), true},
		{"month-day at rollover goes to next year", "3/31", fy2025, day(2026, 3, 31), true},
		{"month-day after rollover stays", "4/1", fy2025, day(2025, 4, 1), true},
		{"month-day without fiscal year", "1/5", FiscalYear{}, time.Time{}, false},
		{"month 13", "2026-13-01", FiscalYear{}, time.Time{}, false},
		{"february 30", "2026/2/30", FiscalYear{}, time.Time{}, false},
		{"day zero", "2026-01-00", FiscalYear{}, time.Time{}, false},
		{"month-day invalid", "2/30", fy2025, time.Time{}, false},
		{"small number is not a serial", "42", FiscalYear{}, time.Time{}, false},
		{"huge number is not a serial", "20260105", FiscalYear{}, time.Time{}, false},
		{"empty", "", FiscalYear{}, time.Time{}, false},
		{"garbage", "next week", FiscalYear{}, time.Time{}, false},
		{"placeholder", "#N/A", FiscalYear{}, time.Time{}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseFlexibleDate(tc.input, tc.fy)
			if ok != tc.ok {
				t.Fatalf("ParseFlexibleDate(%q) ok = %v, want %v", tc.input, ok, tc.ok)
			}
			if !got.Equal(tc.want) {
				t.Fatalf("ParseFlexibleDate(%q) = %v, want %v", tc.input, got, tc.want)
			}
		})
	}
}

func TestFiscalYearOf(t *testing.T) {
	if fy := FiscalYearOf(day(2026, 1, 15), time.March); fy.StartYear != 2025 {
		t.Fatalf("expected fiscal year 2025 for January 2026, got %d", fy.StartYear)
	}
	if fy := FiscalYearOf(day(2026, 4, 1), time.March); fy.StartYear != 2026 {
		t.Fatalf("expected fiscal year 2026 for April 2026, got %d", fy.StartYear)
	}
	if fy := FiscalYearOf(day(2026, 3, 31), time.March); fy.StartYear != 2025 || fy.RolloverMonth != time.March {
		t.Fatalf("unexpected fiscal year %+v", fy)
	}
}

func TestParseBooleanFlag(t *testing.T) {
	truthy := []any{"true", " TRUE ", "1", "yes", "Yes", "ＴＲＵＥ", true, 1}
	for _, v := range truthy {
		if !ParseBooleanFlag(v) {
			t.Errorf("ParseBooleanFlag(%#v) = false, want true", v)
		}
	}

	falsy := []any{"FALSE", nil, "", "0", "no", "y", "TRUE!", false, 2, (*string)(nil)}
	for _, v := range falsy {
		if ParseBooleanFlag(v) {
			t.Errorf("ParseBooleanFlag(%#v) = true, want false", v)
		}
	}

	flag := " yes"
	if !ParseBooleanFlag(&flag) {
		t.Fatal("expected pointer to truthy string to be true")
	}
}

func TestParseMoney(t *testing.T) {
	cases := []struct {
		input string
		want  int64
	}{
		{"1,237,800", 1237800},
		{"", 0},
		{"¥600,000円", 600000},
		{"-500", 500},
		{"abc", 0},
		{"1 000", 1000},
		{"１２０，０００円", 120000},
		{"99999999999999999999999", 0},
	}
	for _, tc := range cases {
		if got := ParseMoney(tc.input); got != tc.want {
			t.Errorf("ParseMoney(%q) = %d, want %d", tc.input, got, tc.want)
		}
	}
}

func TestParseGrade(t *testing.T) {
	cases := []struct {
		input string
		grade Grade
		label string
	}{
		{"A", GradeA, "Aヨミ(80%)"},
		{"b", GradeB, "Bヨミ(50%)"},
		{" C ", GradeC, "Cヨミ(30%)"},
		{"d", GradeD, "Dヨミ(10%)"},
		{"E", GradeNone, ""},
		{"", GradeNone, ""},
	}
	for _, tc := range cases {
		got := ParseGrade(tc.input)
		if got != tc.grade {
			t.Errorf("ParseGrade(%q) = %v, want %v", tc.input, got, tc.grade)
		}
		if got.Label() != tc.label {
			t.Errorf("ParseGrade(%q).Label() = %q, want %q", tc.input, got.Label(), tc.label)
		}
	}
}
