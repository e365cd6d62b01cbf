package transport

import (
	"time"

	"github.com/google/uuid"
)

// GetTargetRequest selects a month. Without one the latest target is returned.
type GetTargetRequest struct {
	YearMonth string `form:"year_month" validate:"omitempty,yearmonth"`
}

// UpsertTargetRequest contains a month's sales plan. Rates are fractions.
type UpsertTargetRequest struct {
	YearMonth                      string  `json:"yearMonth" validate:"required,yearmonth"`
	TotalSalesBudget               int64   `json:"totalSalesBudget" validate:"gte=0"`
	RegistrationToFirstContactRate float64 `json:"registrationToFirstContactRate" validate:"gte=0,lte=1"`
	FirstContactToInterviewRate    float64 `json:"firstContactToInterviewRate" validate:"gte=0,lte=1"`
	InterviewToClosedRate          float64 `json:"interviewToClosedRate" validate:"gte=0,lte=1"`
	ClosedUnitPrice                int64   `json:"closedUnitPrice" validate:"gte=0"`
	InterviewTarget                int     `json:"interviewTarget" validate:"gte=0"`
}

// Plan is the funnel the budget requires, worked backwards from closings.
type Plan struct {
	Closed        int `json:"closed"`
	Interviews    int `json:"interviews"`
	FirstContacts int `json:"firstContacts"`
	Registrations int `json:"registrations"`
}

// TargetResponse represents a monthly target in API responses.
type TargetResponse struct {
	YearMonth                      string     `json:"yearMonth"`
	TotalSalesBudget               int64      `json:"totalSalesBudget"`
	RegistrationToFirstContactRate float64    `json:"registrationToFirstContactRate"`
	FirstContactToInterviewRate    float64    `json:"firstContactToInterviewRate"`
	InterviewToClosedRate          float64    `json:"interviewToClosedRate"`
	ClosedUnitPrice                int64      `json:"closedUnitPrice"`
	InterviewTarget                int        `json:"interviewTarget"`
	Plan                           Plan       `json:"plan"`
	UpdatedBy                      *uuid.UUID `json:"updatedBy,omitempty"`
	UpdatedAt                      time.Time  `json:"updatedAt"`
}

// TargetEnvelope wraps a possibly absent target.
type TargetEnvelope struct {
	Data *TargetResponse `json:"data"`
}
