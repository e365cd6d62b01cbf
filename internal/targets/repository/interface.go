package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// MonthlyTarget is one month's sales plan.
type MonthlyTarget struct {
	YearMonth                      string     `db:"year_month"`
	TotalSalesBudget               int64      `db:"total_sales_budget"`
	RegistrationToFirstContactRate float64    `db:"registration_to_first_contact_rate"`
	FirstContactToInterviewRate    float64    `db:"first_contact_to_interview_rate"`
	InterviewToClosedRate          float64    `db:"interview_to_closed_rate"`
	ClosedUnitPrice                int64      `db:"closed_unit_price"`
	InterviewTarget                int        `db:"interview_target"`
	UpdatedBy                      *uuid.UUID `db:"updated_by"`
	UpdatedAt                      time.Time  `db:"updated_at"`
}

// TargetReader provides read operations for monthly targets.
type TargetReader interface {
	// Get returns the target of yearMonth or apperr.NotFound.
	Get(ctx context.Context, yearMonth string) (MonthlyTarget, error)
	// Latest returns the most recent target or apperr.NotFound.
	Latest(ctx context.Context) (MonthlyTarget, error)
}

// TargetWriter provides write operations for monthly targets.
type TargetWriter interface {
	Upsert(ctx context.Context, target MonthlyTarget) (MonthlyTarget, error)
}

// Repository combines reads and writes.
type Repository interface {
	TargetReader
	TargetWriter
}
