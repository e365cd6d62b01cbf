package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"recruit_portal_backend/internal/funnel"
)

// Repository reads the monthly staging table.
type Repository interface {
	// ListMonthlyRows returns the rows of one month in import order,
	// optionally restricted to one consultant. NULL columns read as "".
	ListMonthlyRows(ctx context.Context, monthKey, consultant string) ([]funnel.RawActivityRow, error)
	// ListMonths returns the distinct month keys, newest first.
	ListMonths(ctx context.Context) ([]string, error)
}

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new staging reader.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// ListMonthlyRows reads one month of stg_member_monthly.
func (r *Repo) ListMonthlyRows(ctx context.Context, monthKey, consultant string) ([]funnel.RawActivityRow, error) {
	query := `
		SELECT month_text,
			COALESCE(member_name, ''), COALESCE(candidate_id, ''), COALESCE(assigned_date, ''),
			COALESCE(candidate_name, ''), COALESCE(lead_source, ''), COALESCE(category, ''),
			COALESCE(status, ''), COALESCE(expected_amount, ''), COALESCE(prob_current, ''),
			COALESCE(prob_next, ''), COALESCE(contract_amount, ''), COALESCE(interview_flag, '')
		FROM stg_member_monthly
		WHERE month_text = $1
			AND ($2 = '' OR member_name = $2)
		ORDER BY id ASC`

	rows, err := r.pool.Query(ctx, query, monthKey, consultant)
	if err != nil {
		return nil, fmt.Errorf("list monthly rows: %w", err)
	}
	defer rows.Close()

	result, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (funnel.RawActivityRow, error) {
		var (
			raw       funnel.RawActivityRow
			interview string
		)
		err := row.Scan(
			&raw.MonthKey, &raw.ConsultantName, &raw.CandidateID, &raw.AssignedDate,
			&raw.CandidateName, &raw.LeadSource, &raw.Category,
			&raw.Status, &raw.ExpectedAmount, &raw.ProbabilityGrade,
			&raw.ProbabilityGradeNext, &raw.ContractAmount, &interview,
		)
		raw.InterviewFlag = interview
		return raw, err
	})
	if err != nil {
		return nil, fmt.Errorf("scan monthly rows: %w", err)
	}
	return result, nil
}

// ListMonths lists the months present in staging.
func (r *Repo) ListMonths(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT DISTINCT month_text FROM stg_member_monthly ORDER BY month_text DESC`)
	if err != nil {
		return nil, fmt.Errorf("list months: %w", err)
	}
	months, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("scan months: %w", err)
	}
	return months, nil
}
