package funnel

import "sort"

// ConsultantFunnel is one consultant's funnel for one month.
// FirstContact never exceeds Assigned; FirstContactRaw is the count before
// that guard. Interview is deliberately not bounded by Assigned.
type ConsultantFunnel struct {
	Consultant       string  `json:"consultant"`
	Assigned         int     `json:"assigned"`
	FirstContact     int     `json:"firstContact"`
	FirstContactRaw  int     `json:"firstContactRaw"`
	Interview        int     `json:"interview"`
	Closed           int     `json:"closed"`
	FirstContactRate float64 `json:"firstContactRate"`
	InterviewRate    float64 `json:"interviewRate"`
	ClosedRate       float64 `json:"closedRate"`
}

// ClampEvent records a consultant whose first-contact count was capped.
type ClampEvent struct {
	Consultant string `json:"consultant"`
	Raw        int    `json:"raw"`
	Reported   int    `json:"reported"`
}

// ClosedDiscrepancy lists closed candidates missing from the interview set.
type ClosedDiscrepancy struct {
	Consultant   string   `json:"consultant"`
	CandidateIDs []string `json:"candidateIds"`
}

// Diagnostics surfaces everything the aggregation corrected or noticed.
type Diagnostics struct {
	Records                      int                 `json:"records"`
	InterviewFlagged             int                 `json:"interviewFlagged"`
	Unmapped                     map[string]int      `json:"unmapped"`
	Clamped                      []ClampEvent        `json:"clamped"`
	ClosedOutsideInterview       []ClosedDiscrepancy `json:"closedOutsideInterview"`
	InterviewExceedsFirstContact []string            `json:"interviewExceedsFirstContact"`
}

// Result is the outcome of one aggregation.
type Result struct {
	Period      Period             `json:"-"`
	Funnels     []ConsultantFunnel `json:"funnels"`
	Totals      Totals             `json:"totals"`
	Diagnostics Diagnostics        `json:"diagnostics"`
}

// candidateSet keeps distinct candidate ids in first-seen order.
type candidateSet struct {
	seen  map[string]struct{}
	order []string
}

func newCandidateSet() *candidateSet {
	return &candidateSet{seen: make(map[string]struct{})}
}

func (s *candidateSet) add(id string) {
	if _, ok := s.seen[id]; ok {
		return
	}
	s.seen[id] = struct{}{}
	s.order = append(s.order, id)
}

func (s *candidateSet) has(id string) bool {
	_, ok := s.seen[id]
	return ok
}

func (s *candidateSet) len() int {
	return len(s.order)
}

// groupByConsultant partitions records by consultant in encounter order.
// Records without a consultant name are dropped.
func groupByConsultant(records []Record) ([]string, map[string][]Record) {
	var names []string
	groups := make(map[string][]Record)
	for _, rec := range records {
		if rec.Consultant == "" {
			continue
		}
		if _, ok := groups[rec.Consultant]; !ok {
			names = append(names, rec.Consultant)
		}
		groups[rec.Consultant] = append(groups[rec.Consultant], rec)
	}
	return names, groups
}

// Aggregate computes per-consultant funnels over records that belong to a
// single month partition. Consultants are ordered by Assigned descending,
// ties keeping encounter order. An empty batch yields an empty Result.
func Aggregate(records []Record, period Period) Result {
	result := Result{
		Period:  period,
		Funnels: []ConsultantFunnel{},
		Diagnostics: Diagnostics{
			Records:  len(records),
			Unmapped: map[string]int{},
		},
	}

	for _, rec := range records {
		if rec.Interview {
			result.Diagnostics.InterviewFlagged++
		}
		if rec.Unmapped() {
			result.Diagnostics.Unmapped[rec.RawStatus]++
		}
	}

	names, groups := groupByConsultant(records)
	for _, name := range names {
		f, closedOutside := aggregateConsultant(name, groups[name], period)
		if f.FirstContactRaw != f.FirstContact {
			result.Diagnostics.Clamped = append(result.Diagnostics.Clamped, ClampEvent{
				Consultant: name,
				Raw:        f.FirstContactRaw,
				Reported:   f.FirstContact,
			})
		}
		if len(closedOutside) > 0 {
			result.Diagnostics.ClosedOutsideInterview = append(result.Diagnostics.ClosedOutsideInterview, ClosedDiscrepancy{
				Consultant:   name,
				CandidateIDs: closedOutside,
			})
		}
		if f.Interview > f.FirstContact {
			result.Diagnostics.InterviewExceedsFirstContact = append(result.Diagnostics.InterviewExceedsFirstContact, name)
		}
		result.Funnels = append(result.Funnels, WithRates(f))
	}

	sort.SliceStable(result.Funnels, func(i, j int) bool {
		return result.Funnels[i].Assigned > result.Funnels[j].Assigned
	})

	result.Totals = Summarize(result.Funnels)
	return result
}

// aggregateConsultant counts one consultant's stages. Unclassified records
// take part in no stage, assignment included.
func aggregateConsultant(name string, records []Record, period Period) (ConsultantFunnel, []string) {
	assigned := newCandidateSet()
	for _, rec := range records {
		if rec.Status != StatusUnclassified && period.Contains(rec.AssignedDate) {
			assigned.add(rec.CandidateID)
		}
	}

	firstContact := newCandidateSet()
	interview := newCandidateSet()
	closed := newCandidateSet()
	for _, rec := range records {
		if rec.Status == StatusUnclassified {
			continue
		}
		if period.Contains(rec.AssignedDate) && assigned.has(rec.CandidateID) &&
			IsInStage(rec.Status, StageFirstContactReached) {
			firstContact.add(rec.CandidateID)
		}
		if rec.Interview && IsInStage(rec.Status, StageInterviewSet) {
			interview.add(rec.CandidateID)
		}
		if rec.Interview && rec.Status.IsClosedWon() {
			closed.add(rec.CandidateID)
		}
	}

	var closedOutside []string
	for _, id := range closed.order {
		if !interview.has(id) {
			closedOutside = append(closedOutside, id)
		}
	}

	raw := firstContact.len()
	return ConsultantFunnel{
		Consultant:      name,
		Assigned:        assigned.len(),
		FirstContact:    min(raw, assigned.len()),
		FirstContactRaw: raw,
		Interview:       interview.len(),
		Closed:          closed.len(),
	}, closedOutside
}

// Compute normalizes rows and aggregates them in one step.
func Compute(rows []RawActivityRow, n Normalizer, period Period) Result {
	return Aggregate(n.NormalizeBatch(rows), period)
}
