// Package reports provides the funnel reports bounded context module.
// Reports are computed from the monthly staging table on demand and
// cached per month until the month is re-imported or its target changes.
package reports

import (
	"context"

	"recruit_portal_backend/internal/events"
	apphttp "recruit_portal_backend/internal/http"
	"recruit_portal_backend/internal/reports/handler"
	"recruit_portal_backend/internal/reports/repository"
	"recruit_portal_backend/internal/reports/service"
	"recruit_portal_backend/platform/logger"
	"recruit_portal_backend/platform/metrics"
	"recruit_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the reports bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the reports module with all its dependencies.
func NewModule(
	pool *pgxpool.Pool,
	targets service.TargetProvider,
	reportCache service.Cache,
	reg *metrics.Registry,
	val *validator.Validator,
	log *logger.Logger,
	opts service.Options,
) *Module {
	svc := service.New(repository.New(pool), targets, reportCache, reg, log, opts)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "reports"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts report routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/reports")
	group.GET("/funnel", m.handler.Funnel)
	group.GET("/funnel.csv", m.handler.FunnelCSV)
	group.GET("/interview-status", m.handler.InterviewStatus)
	group.GET("/months", m.handler.Months)
}

// RegisterHandlers subscribes to imports and target changes.
func (m *Module) RegisterHandlers(bus events.Bus) {
	bus.Subscribe(events.MonthlySheetImported{}.EventName(), m)
	bus.Subscribe(events.MonthlyTargetUpdated{}.EventName(), m)
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.MonthlySheetImported:
		return m.service.Refresh(ctx, e.MonthKey)
	case events.MonthlyTargetUpdated:
		return m.service.Invalidate(ctx, e.YearMonth)
	default:
		return nil
	}
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
