package funnel

import "testing"

func TestRatesZeroDenominator(t *testing.T) {
	cases := []struct {
		name string
		f    ConsultantFunnel
		want Rates
	}{
		{"all zero", ConsultantFunnel{}, Rates{}},
		{"no first contact", ConsultantFunnel{Assigned: 3, Interview: 2}, Rates{}},
		{"no interview", ConsultantFunnel{Assigned: 4, FirstContact: 2, Closed: 1}, Rates{FirstContact: 0.5}},
		{"full funnel", ConsultantFunnel{Assigned: 4, FirstContact: 2, Interview: 1, Closed: 1}, Rates{FirstContact: 0.5, Interview: 0.5, Closed: 1}},
		{"interview above first contact is capped", ConsultantFunnel{Assigned: 2, FirstContact: 1, Interview: 3}, Rates{FirstContact: 0.5, Interview: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := WithRates(tc.f)
			if got.FirstContactRate != tc.want.FirstContact || got.InterviewRate != tc.want.Interview || got.ClosedRate != tc.want.Closed {
				t.Fatalf("WithRates(%+v) = %+v, want %+v", tc.f, got, tc.want)
			}
		})
	}
}

func TestSummarizeUsesCountsNotAverages(t *testing.T) {
	totals := Summarize([]ConsultantFunnel{
		{Assigned: 1, FirstContact: 1, FirstContactRaw: 1, Interview: 1, Closed: 1},
		{Assigned: 3, FirstContact: 0, FirstContactRaw: 0},
	})

	if totals != (Totals{Assigned: 4, FirstContact: 1, FirstContactRaw: 1, Interview: 1, Closed: 1}) {
		t.Fatalf("unexpected totals %+v", totals)
	}
	if r := totals.Rates(); r.FirstContact != 0.25 || r.Interview != 1 || r.Closed != 1 {
		t.Fatalf("unexpected total rates %+v", r)
	}
}
