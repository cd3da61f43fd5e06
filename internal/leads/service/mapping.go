package service

import (
	"strconv"
	"strings"

	"lieux_backend/internal/leads/repository"
	"lieux_backend/internal/odoo"
)

// ParseGuestCount converts the free-text guest count from the form into a
// number. Anything that does not parse cleanly counts as 0.
func ParseGuestCount(raw string) int {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// B2BLeadPayload builds the CRM payload for a corporate lead. The message
// falls back to the requirements field when no message was given.
func B2BLeadPayload(lead repository.Lead) odoo.B2BLead {
	message := deref(lead.Message)
	if message == "" {
		message = deref(lead.Requirements)
	}
	return odoo.B2BLead{
		FirstName:  lead.FirstName,
		LastName:   lead.LastName,
		Email:      lead.Email,
		Phone:      lead.Phone,
		Company:    deref(lead.Company),
		Position:   deref(lead.Position),
		EventType:  deref(lead.EventType),
		EventDate:  deref(lead.EventDate),
		GuestCount: lead.GuestCount,
		Budget:     deref(lead.Budget),
		Message:    message,
		Venues:     lead.Venues,
	}
}

// WeddingLeadPayload builds the CRM payload for a wedding lead. The contact
// identity prefers the top-level name and falls back to the bride's when the
// form only carried the nested couple records.
func WeddingLeadPayload(lead repository.Lead) odoo.WeddingLead {
	firstName, lastName := lead.FirstName, lead.LastName
	if firstName == "" && lastName == "" {
		firstName = deref(lead.BrideFirstName)
		lastName = deref(lead.BrideLastName)
	}
	return odoo.WeddingLead{
		FirstName:      firstName,
		LastName:       lastName,
		Email:          lead.Email,
		Phone:          lead.Phone,
		WeddingDate:    deref(lead.WeddingDate),
		GuestCount:     lead.GuestCount,
		Message:        deref(lead.Message),
		GroomFirstName: deref(lead.GroomFirstName),
		GroomLastName:  deref(lead.GroomLastName),
		Venues:         lead.Venues,
	}
}

// ContactName returns the display name used in notifications, applying the
// same bride fallback as the CRM mapping.
func ContactName(lead repository.Lead) string {
	firstName, lastName := lead.FirstName, lead.LastName
	if firstName == "" && lastName == "" {
		firstName = deref(lead.BrideFirstName)
		lastName = deref(lead.BrideLastName)
	}
	return strings.TrimSpace(firstName + " " + lastName)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func ptr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
