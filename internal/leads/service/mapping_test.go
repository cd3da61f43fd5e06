package service

import (
	"testing"

	"lieux_backend/internal/leads/repository"
)

func TestParseGuestCount(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"40", 40},
		{" 12 ", 12},
		{"", 0},
		{"beaucoup", 0},
		{"40-50", 0},
		{"-5", 0},
	}
	for _, tc := range cases {
		if got := ParseGuestCount(tc.in); got != tc.want {
			t.Errorf("ParseGuestCount(%q) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestB2BLeadPayload_MessageFallsBackToRequirements(t *testing.T) {
	reqs := "Scène et sono"
	lead := repository.Lead{
		FirstName:    "Jo",
		LastName:     "Bloom",
		Requirements: &reqs,
	}

	payload := B2BLeadPayload(lead)
	if payload.Message != "Scène et sono" {
		t.Errorf("message = %q, want requirements fallback", payload.Message)
	}

	msg := "Bonjour"
	lead.Message = &msg
	payload = B2BLeadPayload(lead)
	if payload.Message != "Bonjour" {
		t.Errorf("message = %q, explicit message must win", payload.Message)
	}
}

func TestWeddingLeadPayload_BrideFallback(t *testing.T) {
	bf, bl := "Amélie", "Rousseau"
	lead := repository.Lead{
		BrideFirstName: &bf,
		BrideLastName:  &bl,
		Email:          "amelie@example.fr",
	}

	payload := WeddingLeadPayload(lead)
	if payload.FirstName != "Amélie" || payload.LastName != "Rousseau" {
		t.Errorf("expected bride fallback, got %q %q", payload.FirstName, payload.LastName)
	}
}

func TestWeddingLeadPayload_TopLevelNameWins(t *testing.T) {
	bf := "Amélie"
	lead := repository.Lead{
		FirstName:      "Claire",
		LastName:       "Moreau",
		BrideFirstName: &bf,
	}

	payload := WeddingLeadPayload(lead)
	if payload.FirstName != "Claire" || payload.LastName != "Moreau" {
		t.Errorf("top-level identity must win, got %q %q", payload.FirstName, payload.LastName)
	}
}

func TestContactName(t *testing.T) {
	bf, bl := "Amélie", "Rousseau"
	cases := []struct {
		name string
		lead repository.Lead
		want string
	}{
		{"top level", repository.Lead{FirstName: "Jo", LastName: "Bloom"}, "Jo Bloom"},
		{"bride fallback", repository.Lead{BrideFirstName: &bf, BrideLastName: &bl}, "Amélie Rousseau"},
		{"first only", repository.Lead{FirstName: "Jo"}, "Jo"},
	}
	for _, tc := range cases {
		if got := ContactName(tc.lead); got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.name, got, tc.want)
		}
	}
}
