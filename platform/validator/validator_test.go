package validator

import "testing"

type targetInput struct {
	YearMonth string  `json:"yearMonth" validate:"required,yearmonth"`
	Rate      float64 `json:"rate" validate:"gte=0,lte=1"`
}

func TestCustomTags(t *testing.T) {
	v := New()

	for _, ok := range []string{"2026-01", "1999-12"} {
		if err := v.Var(ok, "yearmonth"); err != nil {
			t.Errorf("yearmonth %q rejected: %v", ok, err)
		}
	}
	for _, bad := range []string{"2026-13", "2026-1", "2026_01", ""} {
		if err := v.Var(bad, "yearmonth"); err == nil {
			t.Errorf("yearmonth %q accepted", bad)
		}
	}
	if err := v.Var("2026_01", "monthkey"); err != nil {
		t.Errorf("monthkey rejected: %v", err)
	}
	if err := v.Var("2026-01", "monthkey"); err == nil {
		t.Error("monthkey accepted a dash")
	}
}

func TestFieldErrors(t *testing.T) {
	err := New().Struct(targetInput{YearMonth: "2026/01", Rate: 1.5})
	fields := FieldErrors(err)
	if fields["YearMonth"] != "yearmonth" || fields["Rate"] != "lte" {
		t.Fatalf("unexpected field errors %v", fields)
	}
	if FieldErrors(nil) != nil {
		t.Fatal("expected nil for nil error")
	}
}
