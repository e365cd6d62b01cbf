package transport

import (
	"recruit_portal_backend/internal/funnel"
	targets "recruit_portal_backend/internal/targets/transport"
)

// FunnelQuery selects a month and optionally one consultant.
// Month accepts 2026_01 or 2026-01 and defaults to the current month.
type FunnelQuery struct {
	Month      string `form:"month" validate:"omitempty,max=7"`
	Consultant string `form:"consultant" validate:"omitempty,max=100"`
}

// MonthQuery selects a month.
type MonthQuery struct {
	Month string `form:"month" validate:"omitempty,max=7"`
}

// FunnelResponse is the monthly funnel report.
type FunnelResponse struct {
	Month       string                    `json:"month"`
	YearMonth   string                    `json:"yearMonth"`
	Consultant  string                    `json:"consultant,omitempty"`
	Consultants []funnel.ConsultantFunnel `json:"consultants"`
	Totals      funnel.Totals             `json:"totals"`
	TotalRates  funnel.Rates              `json:"totalRates"`
	Target      *targets.TargetResponse   `json:"target"`
	Diagnostics *funnel.Diagnostics       `json:"diagnostics,omitempty"`
	Message     string                    `json:"message,omitempty"`
}

// InterviewStatusResponse lists interview-stage candidates per consultant.
type InterviewStatusResponse struct {
	Month       string                   `json:"month"`
	Consultants []funnel.ConsultantCases `json:"consultants"`
	Total       int                      `json:"total"`
}

// MonthsResponse lists the months with staged data, newest first.
type MonthsResponse struct {
	Months []string `json:"months"`
}
