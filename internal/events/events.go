// Package events provides domain event definitions for decoupled,
// event-driven communication between modules.
// Infrastructure (Bus, Handler) is in platform/events.
package events

import (
	"lieux_backend/platform/events"
	"lieux_backend/platform/logger"

	"github.com/google/uuid"
)

// Re-export platform types for convenience
type (
	Event       = events.Event
	Bus         = events.Bus
	Handler     = events.Handler
	HandlerFunc = events.HandlerFunc
	BaseEvent   = events.BaseEvent
	InMemoryBus = events.InMemoryBus
)

// Re-export platform functions
var (
	NewBaseEvent   = events.NewBaseEvent
	NewInMemoryBus = func(log *logger.Logger) *InMemoryBus { return events.NewInMemoryBus(log) }
)

// =============================================================================
// Leads Domain Events
// =============================================================================

// LeadReceived is published after a contact-form lead has been durably saved.
// Subscribers (operator email notification) run outside the intake response path.
type LeadReceived struct {
	BaseEvent
	LeadID      uuid.UUID `json:"leadId"`
	Kind        string    `json:"kind"` // "b2b" | "mariage"
	ContactName string    `json:"contactName"`
	Email       string    `json:"email"`
	Company     string    `json:"company,omitempty"`
	EventDate   string    `json:"eventDate,omitempty"`
}

func (e LeadReceived) EventName() string { return "leads.received" }

// LeadSyncedToCRM is published when a lead has been pushed to the external CRM.
type LeadSyncedToCRM struct {
	BaseEvent
	LeadID uuid.UUID `json:"leadId"`
	OdooID int64     `json:"odooId"`
}

func (e LeadSyncedToCRM) EventName() string { return "leads.crm.synced" }

// LeadStatusChanged is published when an operator updates a lead's status.
type LeadStatusChanged struct {
	BaseEvent
	LeadID    uuid.UUID `json:"leadId"`
	OldStatus string    `json:"oldStatus"`
	NewStatus string    `json:"newStatus"`
}

func (e LeadStatusChanged) EventName() string { return "leads.status.changed" }

// =============================================================================
// Venues Domain Events
// =============================================================================

// VenuePublished is published when a venue becomes publicly visible.
type VenuePublished struct {
	BaseEvent
	VenueID uuid.UUID `json:"venueId"`
	Slug    string    `json:"slug"`
}

func (e VenuePublished) EventName() string { return "venues.published" }
