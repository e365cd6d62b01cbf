package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"recruit_portal_backend/platform/apperr"
)

const targetNotFoundMessage = "monthly target not found"

const selectTargetColumns = `
	SELECT year_month, total_sales_budget, registration_to_first_contact_rate,
		first_contact_to_interview_rate, interview_to_closed_rate, closed_unit_price,
		interview_target, updated_by, updated_at
	FROM monthly_targets`

// Repo implements the Repository interface with PostgreSQL.
type Repo struct {
	pool *pgxpool.Pool
}

// New creates a new monthly targets repository.
func New(pool *pgxpool.Pool) *Repo {
	return &Repo{pool: pool}
}

// Compile-time check that Repo implements Repository.
var _ Repository = (*Repo)(nil)

// Get retrieves the target of one month.
func (r *Repo) Get(ctx context.Context, yearMonth string) (MonthlyTarget, error) {
	row := r.pool.QueryRow(ctx, selectTargetColumns+` WHERE year_month = $1`, yearMonth)
	target, err := scanTarget(row)
	if err != nil {
		return MonthlyTarget{}, wrapNotFound(err, "get monthly target")
	}
	return target, nil
}

// Latest retrieves the target with the greatest year_month.
func (r *Repo) Latest(ctx context.Context) (MonthlyTarget, error) {
	row := r.pool.QueryRow(ctx, selectTargetColumns+` ORDER BY year_month DESC LIMIT 1`)
	target, err := scanTarget(row)
	if err != nil {
		return MonthlyTarget{}, wrapNotFound(err, "get latest monthly target")
	}
	return target, nil
}

// Upsert inserts or replaces the target of target.YearMonth.
func (r *Repo) Upsert(ctx context.Context, target MonthlyTarget) (MonthlyTarget, error) {
	query := `
		INSERT INTO monthly_targets (
			year_month, total_sales_budget, registration_to_first_contact_rate,
			first_contact_to_interview_rate, interview_to_closed_rate, closed_unit_price,
			interview_target, updated_by, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, now())
		ON CONFLICT (year_month) DO UPDATE SET
			total_sales_budget = EXCLUDED.total_sales_budget,
			registration_to_first_contact_rate = EXCLUDED.registration_to_first_contact_rate,
			first_contact_to_interview_rate = EXCLUDED.first_contact_to_interview_rate,
			interview_to_closed_rate = EXCLUDED.interview_to_closed_rate,
			closed_unit_price = EXCLUDED.closed_unit_price,
			interview_target = EXCLUDED.interview_target,
			updated_by = EXCLUDED.updated_by,
			updated_at = now()
		RETURNING year_month, total_sales_budget, registration_to_first_contact_rate,
			first_contact_to_interview_rate, interview_to_closed_rate, closed_unit_price,
			interview_target, updated_by, updated_at`

	row := r.pool.QueryRow(ctx, query,
		target.YearMonth, target.TotalSalesBudget, target.RegistrationToFirstContactRate,
		target.FirstContactToInterviewRate, target.InterviewToClosedRate, target.ClosedUnitPrice,
		target.InterviewTarget, target.UpdatedBy,
	)
	saved, err := scanTarget(row)
	if err != nil {
		return MonthlyTarget{}, fmt.Errorf("upsert monthly target: %w", err)
	}
	return saved, nil
}

func scanTarget(row pgx.Row) (MonthlyTarget, error) {
	var t MonthlyTarget
	err := row.Scan(
		&t.YearMonth, &t.TotalSalesBudget, &t.RegistrationToFirstContactRate,
		&t.FirstContactToInterviewRate, &t.InterviewToClosedRate, &t.ClosedUnitPrice,
		&t.InterviewTarget, &t.UpdatedBy, &t.UpdatedAt,
	)
	return t, err
}

func wrapNotFound(err error, op string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return apperr.NotFound(targetNotFoundMessage)
	}
	return fmt.Errorf("%s: %w", op, err)
}
