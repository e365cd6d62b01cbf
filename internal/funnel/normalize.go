package funnel

import (
	"strings"
	"time"
)

// RawActivityRow is one line of the monthly merge sheet as stored in staging:
// one candidate per consultant per month, every field free text.
// Rows are treated as read-only input.
type RawActivityRow struct {
	MonthKey             string
	ConsultantName       string
	CandidateID          string
	AssignedDate         string
	CandidateName        string
	LeadSource           string
	Category             string
	Status               string
	ExpectedAmount       string
	ProbabilityGrade     string
	ProbabilityGradeNext string
	ContractAmount       string
	// InterviewFlag is usually text but some sources deliver booleans.
	InterviewFlag any
}

// Record is the typed form of a RawActivityRow.
type Record struct {
	CandidateID    string
	CandidateName  string
	Consultant     string
	Status         Status
	RawStatus      string
	AssignedDate   time.Time // zero when absent or unparseable
	Interview      bool
	ExpectedAmount int64
	Grade          Grade
}

// HasAssignedDate reports whether an assignment date was parsed.
func (r Record) HasAssignedDate() bool {
	return !r.AssignedDate.IsZero()
}

// Unmapped reports a non-blank raw status the taxonomy does not know.
func (r Record) Unmapped() bool {
	return r.Status == StatusUnclassified && strings.TrimSpace(r.RawStatus) != ""
}

// Normalizer converts raw rows into records.
type Normalizer struct {
	Taxonomy   *Taxonomy
	FiscalYear FiscalYear
}

// NewNormalizer returns a normalizer using the given taxonomy and fiscal year.
func NewNormalizer(taxonomy *Taxonomy, fy FiscalYear) Normalizer {
	return Normalizer{Taxonomy: taxonomy, FiscalYear: fy}
}

// Normalize maps one row. It never fails; bad fields degrade to neutral values.
func (n Normalizer) Normalize(row RawActivityRow) Record {
	assigned, _ := ParseFlexibleDate(row.AssignedDate, n.FiscalYear)
	return Record{
		CandidateID:    strings.TrimSpace(row.CandidateID),
		CandidateName:  strings.TrimSpace(row.CandidateName),
		Consultant:     strings.TrimSpace(row.ConsultantName),
		Status:         n.Taxonomy.Canonicalize(row.Status),
		RawStatus:      strings.TrimSpace(row.Status),
		AssignedDate:   assigned,
		Interview:      ParseBooleanFlag(row.InterviewFlag),
		ExpectedAmount: ParseMoney(row.ExpectedAmount),
		Grade:          ParseGrade(row.ProbabilityGrade),
	}
}

// NormalizeBatch normalizes rows in order, dropping rows without a candidate id.
func (n Normalizer) NormalizeBatch(rows []RawActivityRow) []Record {
	records := make([]Record, 0, len(rows))
	for _, row := range rows {
		if strings.TrimSpace(row.CandidateID) == "" {
			continue
		}
		records = append(records, n.Normalize(row))
	}
	return records
}
