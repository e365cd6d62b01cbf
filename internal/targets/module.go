// Package targets provides the monthly targets bounded context module.
// Targets hold the sales budget and planned conversion rates per month.
package targets

import (
	"recruit_portal_backend/internal/events"
	apphttp "recruit_portal_backend/internal/http"
	"recruit_portal_backend/internal/targets/handler"
	"recruit_portal_backend/internal/targets/repository"
	"recruit_portal_backend/internal/targets/service"
	"recruit_portal_backend/platform/logger"
	"recruit_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the targets bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
}

// NewModule creates and initializes the targets module with all its dependencies.
func NewModule(pool *pgxpool.Pool, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "targets"
}

// Service returns the service layer for external use.
func (m *Module) Service() *service.Service {
	return m.service
}

// RegisterRoutes mounts target routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.Protected.GET("/targets", m.handler.Get)
	ctx.Admin.PUT("/targets", m.handler.Upsert)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
