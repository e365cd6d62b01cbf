package funnel

import "strings"

// Case is one candidate shown on the interview status card.
type Case struct {
	CandidateID string `json:"candidateId"`
	Name        string `json:"name"`
	Yomi        string `json:"yomi"`
	Amount      int64  `json:"amount"`
}

// ConsultantCases groups a consultant's interview-flagged candidates by category.
type ConsultantCases struct {
	Consultant      string `json:"consultant"`
	Adjusting       []Case `json:"adjusting"`
	BeforeInterview []Case `json:"beforeInterview"`
	WaitingResult   []Case `json:"waitingResult"`
	WaitingReply    []Case `json:"waitingReply"`
}

func (c *ConsultantCases) bucket(cat InterviewCategory) *[]Case {
	switch cat {
	case CategoryAdjusting:
		return &c.Adjusting
	case CategoryBeforeInterview:
		return &c.BeforeInterview
	case CategoryWaitingResult:
		return &c.WaitingResult
	case CategoryWaitingReply:
		return &c.WaitingReply
	default:
		return nil
	}
}

// Count returns the number of cases across all categories.
func (c ConsultantCases) Count() int {
	return len(c.Adjusting) + len(c.BeforeInterview) + len(c.WaitingResult) + len(c.WaitingReply)
}

// BuildCaseLists lists interview-flagged candidates per consultant. Every
// consultant in the batch appears, in encounter order, even with no cases.
// A candidate appears at most once per category.
func BuildCaseLists(records []Record) []ConsultantCases {
	names, groups := groupByConsultant(records)
	out := make([]ConsultantCases, 0, len(names))
	for _, name := range names {
		cc := ConsultantCases{
			Consultant:      name,
			Adjusting:       []Case{},
			BeforeInterview: []Case{},
			WaitingResult:   []Case{},
			WaitingReply:    []Case{},
		}
		seen := make(map[InterviewCategory]map[string]struct{})
		for _, rec := range groups[name] {
			if !rec.Interview || rec.CandidateName == "" {
				continue
			}
			cat := rec.Status.InterviewCategory()
			dst := cc.bucket(cat)
			if dst == nil {
				continue
			}
			if seen[cat] == nil {
				seen[cat] = make(map[string]struct{})
			}
			if _, dup := seen[cat][rec.CandidateID]; dup {
				continue
			}
			seen[cat][rec.CandidateID] = struct{}{}
			*dst = append(*dst, Case{
				CandidateID: rec.CandidateID,
				Name:        FamilyName(rec.CandidateName),
				Yomi:        rec.Grade.Label(),
				Amount:      rec.ExpectedAmount,
			})
		}
		out = append(out, cc)
	}
	return out
}

// FamilyName returns the text before the first ASCII or ideographic space.
func FamilyName(fullName string) string {
	fields := strings.FieldsFunc(fullName, func(r rune) bool {
		return r == ' ' || r == '　' || r == '\t'
	})
	if len(fields) == 0 {
		return strings.TrimSpace(fullName)
	}
	return fields[0]
}
