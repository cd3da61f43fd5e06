// Package email delivers operator notification emails, either through the
// Brevo transactional API or a plain SMTP server.
package email

import (
	"context"

	"lieux_backend/platform/config"
)

// NewLeadEmailData carries the lead details shown in the operator email.
type NewLeadEmailData struct {
	LeadID       string
	Kind         string // "b2b" | "mariage"
	ContactName  string
	Email        string
	Phone        string
	Company      string
	EventDate    string
	GuestCount   int
	Message      string
	DashboardURL string
}

// Sender delivers application emails.
type Sender interface {
	SendNewLeadEmail(ctx context.Context, toEmail string, data NewLeadEmailData) error
	SendCustomEmail(ctx context.Context, toEmail, subject, htmlContent string) error
}

// NoopSender is used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendNewLeadEmail(context.Context, string, NewLeadEmailData) error {
	return nil
}

func (NoopSender) SendCustomEmail(context.Context, string, string, string) error {
	return nil
}

// NewSender selects the delivery backend from configuration: Brevo when an
// API key is present, the configured SMTP server otherwise, a no-op when
// email is disabled.
func NewSender(cfg config.EmailConfig) Sender {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}
	}
	if cfg.GetBrevoAPIKey() != "" {
		return NewBrevoSender(cfg)
	}
	if cfg.GetSMTPHost() != "" {
		return NewSMTPSender(
			cfg.GetSMTPHost(), cfg.GetSMTPPort(),
			cfg.GetSMTPUsername(), cfg.GetSMTPPassword(),
			cfg.GetEmailFromAddress(), cfg.GetEmailFromName(),
		)
	}
	return NoopSender{}
}
