package service

import (
	"context"
	"strings"

	"lieux_backend/internal/leads/repository"
	"lieux_backend/internal/leads/transport"
)

// notifyDevices fans the new lead out to registered admin devices. Strictly
// best effort: failures are logged and never surface to the submitter.
func (s *Service) notifyDevices(ctx context.Context, lead repository.Lead) {
	tokens, err := s.tokens.ListActiveTokens(ctx)
	if err != nil {
		s.log.DatabaseError("push.list_tokens", err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	title := "Nouvelle demande B2B"
	if lead.Kind == transport.KindWedding {
		title = "Nouvelle demande mariage"
	}

	if err := s.notifier.SendBatch(ctx, tokens, title, leadSummary(lead), map[string]string{
		"leadId": lead.ID.String(),
		"kind":   lead.Kind,
	}); err != nil {
		s.log.Error("push notification failed",
			"lead_id", lead.ID.String(),
			"error", err.Error(),
		)
		return
	}
	s.log.LeadEvent("lead_notified", lead.ID.String(), lead.Kind)
}

// leadSummary builds the one-line notification body: contact name, company
// for B2B, event date when present, and the email address.
func leadSummary(lead repository.Lead) string {
	parts := []string{ContactName(lead)}
	if lead.Kind == transport.KindB2B {
		if company := derefOr(lead.Company, ""); company != "" {
			parts = append(parts, company)
		}
	}
	if date := eventDateOf(lead); date != "" {
		parts = append(parts, date)
	}
	parts = append(parts, lead.Email)
	return strings.Join(parts, " · ")
}
