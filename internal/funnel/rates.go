package funnel

// Totals sums raw counts across consultants.
type Totals struct {
	Assigned        int `json:"assigned"`
	FirstContact    int `json:"firstContact"`
	FirstContactRaw int `json:"firstContactRaw"`
	Interview       int `json:"interview"`
	Closed          int `json:"closed"`
}

// Rates are stage-to-stage conversion fractions in [0, 1].
type Rates struct {
	FirstContact float64 `json:"firstContactRate"`
	Interview    float64 `json:"interviewRate"`
	Closed       float64 `json:"closedRate"`
}

// ratio returns num/den capped to [0, 1], or 0 when den is not positive.
func ratio(num, den int) float64 {
	if den <= 0 || num <= 0 {
		return 0
	}
	r := float64(num) / float64(den)
	if r > 1 {
		return 1
	}
	return r
}

func rates(assigned, firstContact, interview, closed int) Rates {
	return Rates{
		FirstContact: ratio(firstContact, assigned),
		Interview:    ratio(interview, firstContact),
		Closed:       ratio(closed, interview),
	}
}

// WithRates returns f with its three conversion rates filled in.
func WithRates(f ConsultantFunnel) ConsultantFunnel {
	r := rates(f.Assigned, f.FirstContact, f.Interview, f.Closed)
	f.FirstContactRate = r.FirstContact
	f.InterviewRate = r.Interview
	f.ClosedRate = r.Closed
	return f
}

// Summarize adds up the counts of every funnel. Rates are not averaged.
func Summarize(funnels []ConsultantFunnel) Totals {
	var t Totals
	for _, f := range funnels {
		t.Assigned += f.Assigned
		t.FirstContact += f.FirstContact
		t.FirstContactRaw += f.FirstContactRaw
		t.Interview += f.Interview
		t.Closed += f.Closed
	}
	return t
}

// Rates derives conversion rates from the summed counts.
func (t Totals) Rates() Rates {
	return rates(t.Assigned, t.FirstContact, t.Interview, t.Closed)
}
