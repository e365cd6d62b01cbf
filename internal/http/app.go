// Package http provides HTTP server infrastructure including module registration.
package http

import (
	"context"

	"recruit_portal_backend/internal/events"
	"recruit_portal_backend/platform/config"
	"recruit_portal_backend/platform/logger"
	"recruit_portal_backend/platform/metrics"
)

// RouterConfig combines the config interfaces needed by the HTTP router.
type RouterConfig interface {
	config.HTTPConfig
	config.JWTConfig
}

// HealthChecker exposes minimal functionality for readiness checks.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// App holds the fully initialized application dependencies.
// This is populated by main.go (the composition root) and passed to the router.
type App struct {
	// Config holds the router configuration (HTTP and JWT settings only).
	Config RouterConfig
	// Logger is the structured logger.
	Logger *logger.Logger
	// Metrics is the Prometheus registry served on /metrics.
	Metrics *metrics.Registry
	// Health lists the dependencies checked by /api/ready, keyed by name.
	Health map[string]HealthChecker
	// EventBus is the domain event bus for cross-module communication.
	EventBus events.Bus
	// Modules contains all HTTP-facing domain modules.
	Modules []Module
}
