// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"recruit_portal_backend/platform/events"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
)

// Re-export platform functions
var NewBaseEvent = events.NewBaseEvent

// =============================================================================
// Import Domain Events
// =============================================================================

// MonthlySheetImported is published when a month's staging rows were replaced.
// Reports drop and rebuild their cached funnel for the month.
type MonthlySheetImported struct {
	BaseEvent
	MonthKey string `json:"monthKey"`
	Rows     int    `json:"rows"`
	Source   string `json:"source"`
}

func (e MonthlySheetImported) EventName() string { return "imports.monthly_sheet.imported" }

// =============================================================================
// Target Domain Events
// =============================================================================

// MonthlyTargetUpdated is published after an admin changes a month's targets.
type MonthlyTargetUpdated struct {
	BaseEvent
	YearMonth string    `json:"yearMonth"`
	UpdatedBy uuid.UUID `json:"updatedBy"`
}

func (e MonthlyTargetUpdated) EventName() string { return "targets.monthly_target.updated" }
