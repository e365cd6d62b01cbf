// Package sheet reads the monthly merge sheet exported from the
// consultants' spreadsheets. Values stay raw text; typing them is the
// normalizer's job.
package sheet

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"recruit_portal_backend/internal/funnel"
)

// ColumnCount is the number of positional columns of the merge sheet.
const ColumnCount = 13

// Columns are the staging column names in sheet order.
var Columns = []string{
	"month_text",
	"member_name",
	"candidate_id",
	"assigned_date",
	"candidate_name",
	"lead_source",
	"category",
	"status",
	"expected_amount",
	"prob_current",
	"prob_next",
	"contract_amount",
	"interview_flag",
}

// placeholders are spreadsheet fillers that mean "no value".
var placeholders = map[string]struct{}{
	"#N/A":  {},
	"N/A":   {},
	"#REF!": {},
	"-":     {},
	"なし":    {},
}

// Row is one line of the merge sheet.
type Row struct {
	Month          string
	Member         string
	CandidateID    string
	AssignedDate   string
	CandidateName  string
	LeadSource     string
	Category       string
	Status         string
	ExpectedAmount string
	ProbCurrent    string
	ProbNext       string
	ContractAmount string
	InterviewFlag  string
}

// Format is a supported sheet file format.
type Format int

const (
	FormatCSV Format = iota
	FormatXLSX
)

func (f Format) String() string {
	if f == FormatXLSX {
		return "xlsx"
	}
	return "csv"
}

// FormatFor picks the reader from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx":
		return FormatXLSX, nil
	default:
		return 0, fmt.Errorf("unsupported sheet format %q: want .xlsx or .csv", filepath.Ext(path))
	}
}

// Options select what to read.
type Options struct {
	// Sheet is the xlsx worksheet; the first one when empty.
	Sheet string
	// Month keeps only rows of this month key. Empty keeps every row.
	Month string
}

// Result is the outcome of reading one file.
type Result struct {
	Rows []Row
	// OtherMonth counts rows dropped by the month filter.
	OtherMonth int
	// Blank counts rows without any value.
	Blank int
}

// ReadFile reads a sheet from disk.
func ReadFile(path string, opts Options) (Result, []byte, error) {
	format, err := FormatFor(path)
	if err != nil {
		return Result{}, nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Result{}, nil, fmt.Errorf("read sheet: %w", err)
	}
	res, err := Read(bytes.NewReader(data), format, opts)
	return res, data, err
}

// Read parses a sheet. The first row is the header and is skipped.
func Read(r io.Reader, format Format, opts Options) (Result, error) {
	var (
		records [][]string
		err     error
	)
	switch format {
	case FormatXLSX:
		records, err = readXLSX(r, opts.Sheet)
	default:
		records, err = readCSV(r)
	}
	if err != nil {
		return Result{}, err
	}

	month, err := normalizeMonth(opts.Month)
	if err != nil {
		return Result{}, err
	}

	res := Result{Rows: []Row{}}
	for i, cells := range records {
		if i == 0 {
			continue
		}
		row, ok := rowFromCells(cells)
		if !ok {
			res.Blank++
			continue
		}
		if month != "" {
			rowMonth, err := normalizeMonth(row.Month)
			if err != nil || rowMonth != month {
				res.OtherMonth++
				continue
			}
			row.Month = rowMonth
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func normalizeMonth(month string) (string, error) {
	if month == "" {
		return "", nil
	}
	period, err := funnel.ParseMonthKey(month)
	if err != nil {
		return "", err
	}
	return period.MonthKey(), nil
}

// CleanCell normalizes ideographic spaces, trims, and blanks placeholders.
func CleanCell(v string) string {
	v = strings.TrimSpace(strings.ReplaceAll(v, "\u3000", " "))
	if _, ok := placeholders[v]; ok {
		return ""
	}
	return v
}

// rowFromCells pads short records and ignores extra columns. It reports
// false for rows without any value.
func rowFromCells(cells []string) (Row, bool) {
	var c [ColumnCount]string
	blank := true
	for i := 0; i < ColumnCount && i < len(cells); i++ {
		c[i] = CleanCell(cells[i])
		if c[i] != "" {
			blank = false
		}
	}
	if blank {
		return Row{}, false
	}
	return Row{
		Month:          c[0],
		Member:         c[1],
		CandidateID:    c[2],
		AssignedDate:   c[3],
		CandidateName:  c[4],
		LeadSource:     c[5],
		Category:       c[6],
		Status:         c[7],
		ExpectedAmount: c[8],
		ProbCurrent:    c[9],
		ProbNext:       c[10],
		ContractAmount: c[11],
		InterviewFlag:  c[12],
	}, true
}

// Values returns the row in Columns order for COPY. Empty cells become NULL.
func (r Row) Values() []any {
	cells := []string{
		r.Month, r.Member, r.CandidateID, r.AssignedDate, r.CandidateName,
		r.LeadSource, r.Category, r.Status, r.ExpectedAmount, r.ProbCurrent,
		r.ProbNext, r.ContractAmount, r.InterviewFlag,
	}
	values := make([]any, len(cells))
	for i, v := range cells {
		if v != "" {
			values[i] = v
		}
	}
	return values
}

// Raw converts the row into the engine input, as the staging table would
// return it.
func (r Row) Raw() funnel.RawActivityRow {
	return funnel.RawActivityRow{
		MonthKey:             r.Month,
		ConsultantName:       r.Member,
		CandidateID:          r.CandidateID,
		AssignedDate:         r.AssignedDate,
		CandidateName:        r.CandidateName,
		LeadSource:           r.LeadSource,
		Category:             r.Category,
		Status:               r.Status,
		ExpectedAmount:       r.ExpectedAmount,
		ProbabilityGrade:     r.ProbCurrent,
		ProbabilityGradeNext: r.ProbNext,
		ContractAmount:       r.ContractAmount,
		InterviewFlag:        r.InterviewFlag,
	}
}

// RawRows converts rows for the engine.
func RawRows(rows []Row) []funnel.RawActivityRow {
	out := make([]funnel.RawActivityRow, len(rows))
	for i, r := range rows {
		out[i] = r.Raw()
	}
	return out
}
