// Package transport defines the wire-level request and response shapes for
// the leads module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// Submission kinds accepted on the public contact form.
const (
	KindB2B     = "b2b"
	KindWedding = "mariage"
)

// HoneypotField is the hidden form field. Humans leave it empty; anything
// else is treated as automated abuse.
const HoneypotField = "website"

// B2BSubmission is a corporate event inquiry after normalization.
type B2BSubmission struct {
	Type         string   `json:"type" validate:"required,eq=b2b"`
	FirstName    string   `json:"firstName" validate:"required,min=2,max=100"`
	LastName     string   `json:"lastName" validate:"required,min=2,max=100"`
	Email        string   `json:"email" validate:"required,email,max=254"`
	Phone        string   `json:"phone" validate:"required,min=6,max=30,frphone"`
	Company      string   `json:"company" validate:"required,min=2,max=200"`
	Position     *string  `json:"position,omitempty" validate:"omitempty,max=100"`
	EventType    string   `json:"eventType" validate:"required,min=2,max=100"`
	EventDate    *string  `json:"eventDate,omitempty" validate:"omitempty,max=50"`
	GuestCount   string   `json:"guestCount" validate:"required,max=10"`
	Budget       *string  `json:"budget,omitempty" validate:"omitempty,max=100"`
	Message      *string  `json:"message,omitempty" validate:"omitempty,max=5000"`
	Requirements *string  `json:"requirements,omitempty" validate:"omitempty,max=5000"`
	Venues       []string `json:"venues,omitempty" validate:"omitempty,max=20,dive,min=1,max=200"`
}

// NameParts is a nested first/last name pair (bride or groom).
type NameParts struct {
	FirstName string `json:"firstName" validate:"omitempty,max=100"`
	LastName  string `json:"lastName" validate:"omitempty,max=100"`
}

// WeddingSubmission is a wedding inquiry after normalization. The top-level
// contact name may be omitted when a bride sub-record carries it instead.
type WeddingSubmission struct {
	Type        string     `json:"type" validate:"required,eq=mariage"`
	FirstName   string     `json:"firstName" validate:"required_without=Bride,omitempty,min=2,max=100"`
	LastName    string     `json:"lastName" validate:"required_without=Bride,omitempty,min=2,max=100"`
	Email       string     `json:"email" validate:"required,email,max=254"`
	Phone       string     `json:"phone" validate:"required,min=6,max=30,frphone"`
	WeddingDate *string    `json:"weddingDate,omitempty" validate:"omitempty,max=50"`
	GuestCount  *string    `json:"guestCount,omitempty" validate:"omitempty,max=10"`
	Message     *string    `json:"message,omitempty" validate:"omitempty,max=5000"`
	Bride       *NameParts `json:"bride,omitempty"`
	Groom       *NameParts `json:"groom,omitempty"`
	Venues      []string   `json:"venues,omitempty" validate:"omitempty,max=20,dive,min=1,max=200"`
}

// FieldError is a structured per-field validation issue. It is returned in
// the 400 payload for diagnostics; the display message stays generic.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// RateLimitDetails carries quota information for 429 responses.
type RateLimitDetails struct {
	RetryAfterSeconds int `json:"retryAfter"`
	Limit             int `json:"limit"`
}

// SubmitResponse is the success payload of the public contact endpoint.
type SubmitResponse struct {
	Success bool      `json:"success"`
	Message string    `json:"message"`
	LeadID  uuid.UUID `json:"leadId"`
}

// =============================================================================
// Admin DTOs
// =============================================================================

// ListLeadsRequest filters the admin lead listing.
type ListLeadsRequest struct {
	Status    string `form:"status" validate:"omitempty,oneof=new contacted qualified won lost"`
	Kind      string `form:"kind" validate:"omitempty,oneof=b2b mariage"`
	Search    string `form:"search" validate:"max=100"`
	Synced    string `form:"synced" validate:"omitempty,oneof=true false"`
	Page      int    `form:"page" validate:"omitempty,min=1"`
	PageSize  int    `form:"pageSize" validate:"omitempty,min=1,max=100"`
	SortBy    string `form:"sortBy" validate:"omitempty,oneof=createdAt updatedAt lastName status"`
	SortOrder string `form:"sortOrder" validate:"omitempty,oneof=asc desc"`
}

// UpdateLeadStatusRequest changes a lead's pipeline status.
type UpdateLeadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new contacted qualified won lost"`
}

// LeadResponse is the admin-facing lead representation.
type LeadResponse struct {
	ID             uuid.UUID `json:"id"`
	Kind           string    `json:"kind"`
	Status         string    `json:"status"`
	Source         string    `json:"source"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone"`
	Company        *string   `json:"company,omitempty"`
	Position       *string   `json:"position,omitempty"`
	EventType      *string   `json:"eventType,omitempty"`
	EventDate      *string   `json:"eventDate,omitempty"`
	GuestCount     int       `json:"guestCount"`
	Budget         *string   `json:"budget,omitempty"`
	WeddingDate    *string   `json:"weddingDate,omitempty"`
	BrideFirstName *string   `json:"brideFirstName,omitempty"`
	BrideLastName  *string   `json:"brideLastName,omitempty"`
	GroomFirstName *string   `json:"groomFirstName,omitempty"`
	GroomLastName  *string   `json:"groomLastName,omitempty"`
	Message        *string   `json:"message,omitempty"`
	Requirements   *string   `json:"requirements,omitempty"`
	Venues         []string  `json:"venues,omitempty"`
	SyncedToOdoo   bool      `json:"syncedToOdoo"`
	OdooID         *int64    `json:"odooId,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
}

// LeadListResponse is a paginated lead listing.
type LeadListResponse struct {
	Items      []LeadResponse `json:"items"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"pageSize"`
	TotalPages int            `json:"totalPages"`
}
