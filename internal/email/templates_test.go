package email

import (
	"strings"
	"testing"
)

func TestNewLeadContent(t *testing.T) {
	subject, html, err := newLeadContent(NewLeadEmailData{
		Kind:         "b2b",
		ContactName:  "Jo Bloom",
		Email:        "jo@acme.example",
		Phone:        "+33612345678",
		Company:      "Acme",
		EventDate:    "2026-09-01",
		GuestCount:   40,
		Message:      "Bonjour",
		DashboardURL: "https://admin.example/leads",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if subject != "Nouvelle demande B2B - Jo Bloom" {
		t.Errorf("subject = %q", subject)
	}
	for _, want := range []string{"Jo Bloom", "jo@acme.example", "Acme", "2026-09-01", "https://admin.example/leads"} {
		if !strings.Contains(html, want) {
			t.Errorf("html missing %q", want)
		}
	}
}

func TestNewLeadContent_WeddingOmitsCompanyRow(t *testing.T) {
	_, html, err := newLeadContent(NewLeadEmailData{
		Kind:        "mariage",
		ContactName: "Amélie Rousseau",
		Email:       "amelie@example.fr",
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if strings.Contains(html, "Société") {
		t.Error("company row should be omitted when empty")
	}
	if !strings.Contains(html, "mariage") {
		t.Error("kind label missing")
	}
}

func TestNewSenderSelection(t *testing.T) {
	if _, ok := interface{}(NewSender(senderCfg{})).(NoopSender); !ok {
		t.Error("disabled email must yield NoopSender")
	}
	if _, ok := interface{}(NewSender(senderCfg{enabled: true, brevoKey: "k"})).(*BrevoSender); !ok {
		t.Error("brevo key must yield BrevoSender")
	}
	if _, ok := interface{}(NewSender(senderCfg{enabled: true, smtpHost: "mail.local"})).(*SMTPSender); !ok {
		t.Error("smtp host must yield SMTPSender")
	}
}

type senderCfg struct {
	enabled  bool
	brevoKey string
	smtpHost string
}

func (c senderCfg) GetEmailEnabled() bool       { return c.enabled }
func (c senderCfg) GetBrevoAPIKey() string      { return c.brevoKey }
func (c senderCfg) GetEmailFromName() string    { return "Lieux d'Exception" }
func (c senderCfg) GetEmailFromAddress() string { return "contact@lieux-exception.fr" }
func (c senderCfg) GetSMTPHost() string         { return c.smtpHost }
func (c senderCfg) GetSMTPPort() int            { return 587 }
func (c senderCfg) GetSMTPUsername() string     { return "" }
func (c senderCfg) GetSMTPPassword() string     { return "" }
