package notification

import (
	"context"
	"errors"
	"strings"
	"testing"

	"lieux_backend/internal/email"
	"lieux_backend/internal/events"
	"lieux_backend/internal/leads/transport"
	"lieux_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeSender struct {
	sent []email.NewLeadEmailData
	to   string
	err  error
}

func (f *fakeSender) SendNewLeadEmail(_ context.Context, toEmail string, data email.NewLeadEmailData) error {
	f.to = toEmail
	f.sent = append(f.sent, data)
	return f.err
}

func (f *fakeSender) SendCustomEmail(context.Context, string, string, string) error {
	return nil
}

type fakeLeadReader struct {
	lead transport.LeadResponse
	err  error
}

func (f *fakeLeadReader) Get(context.Context, uuid.UUID) (transport.LeadResponse, error) {
	return f.lead, f.err
}

type notifyCfg struct {
	adminEmail string
}

func (c notifyCfg) GetAppBaseURL() string       { return "https://admin.example" }
func (c notifyCfg) GetAdminNotifyEmail() string { return c.adminEmail }

func TestOnLeadReceived_SendsEnrichedEmail(t *testing.T) {
	msg := "Bonjour"
	sender := &fakeSender{}
	reader := &fakeLeadReader{lead: transport.LeadResponse{Phone: "+33612345678", GuestCount: 40, Message: &msg}}
	n := New(sender, reader, notifyCfg{adminEmail: "ops@lieux-exception.fr"}, logger.New("development"))

	leadID := uuid.New()
	err := n.onLeadReceived(context.Background(), events.LeadReceived{
		BaseEvent:   events.NewBaseEvent(),
		LeadID:      leadID,
		Kind:        "b2b",
		ContactName: "Jo Bloom",
		Email:       "jo@acme.example",
		Company:     "Acme",
	})
	if err != nil {
		t.Fatal(err)
	}

	if sender.to != "ops@lieux-exception.fr" {
		t.Errorf("sent to %q", sender.to)
	}
	if len(sender.sent) != 1 {
		t.Fatalf("expected 1 email, got %d", len(sender.sent))
	}
	data := sender.sent[0]
	if data.Phone != "+33612345678" || data.GuestCount != 40 || data.Message != "Bonjour" {
		t.Errorf("email not enriched from stored lead: %+v", data)
	}
	if !strings.HasSuffix(data.DashboardURL, "/admin/leads/"+leadID.String()) {
		t.Errorf("dashboard URL = %q", data.DashboardURL)
	}
}

func TestOnLeadReceived_NoRecipientConfigured(t *testing.T) {
	sender := &fakeSender{}
	n := New(sender, &fakeLeadReader{}, notifyCfg{}, logger.New("development"))

	err := n.onLeadReceived(context.Background(), events.LeadReceived{BaseEvent: events.NewBaseEvent(), LeadID: uuid.New()})
	if err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 0 {
		t.Error("no recipient configured, nothing should be sent")
	}
}

func TestOnLeadReceived_LeadLookupFailureStillSends(t *testing.T) {
	sender := &fakeSender{}
	reader := &fakeLeadReader{err: errors.New("gone")}
	n := New(sender, reader, notifyCfg{adminEmail: "ops@lieux-exception.fr"}, logger.New("development"))

	err := n.onLeadReceived(context.Background(), events.LeadReceived{
		BaseEvent: events.NewBaseEvent(), LeadID: uuid.New(), Kind: "mariage", ContactName: "Amélie",
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(sender.sent) != 1 {
		t.Fatal("email should still be sent from event fields alone")
	}
}
