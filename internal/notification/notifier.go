// Package notification turns domain events into operator emails. It runs off
// the event bus, outside the intake response path.
package notification

import (
	"context"
	"fmt"

	"lieux_backend/internal/email"
	"lieux_backend/internal/events"
	"lieux_backend/internal/leads/transport"
	"lieux_backend/platform/config"
	"lieux_backend/platform/logger"

	"github.com/google/uuid"
)

// LeadReader loads a lead for the notification email body.
type LeadReader interface {
	Get(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error)
}

// Notifier emails operators when leads arrive.
type Notifier struct {
	sender email.Sender
	leads  LeadReader
	cfg    config.NotificationConfig
	log    *logger.Logger
}

// New creates the notifier.
func New(sender email.Sender, leads LeadReader, cfg config.NotificationConfig, log *logger.Logger) *Notifier {
	return &Notifier{sender: sender, leads: leads, cfg: cfg, log: log}
}

// Subscribe registers the notifier's event handlers on the bus.
func (n *Notifier) Subscribe(bus events.Bus) {
	bus.Subscribe(events.LeadReceived{}.EventName(), events.HandlerFunc(n.onLeadReceived))
}

func (n *Notifier) onLeadReceived(ctx context.Context, event events.Event) error {
	received, ok := event.(events.LeadReceived)
	if !ok {
		return fmt.Errorf("unexpected event type %T", event)
	}

	toEmail := n.cfg.GetAdminNotifyEmail()
	if toEmail == "" {
		return nil
	}

	data := email.NewLeadEmailData{
		LeadID:       received.LeadID.String(),
		Kind:         received.Kind,
		ContactName:  received.ContactName,
		Email:        received.Email,
		Company:      received.Company,
		EventDate:    received.EventDate,
		DashboardURL: fmt.Sprintf("%s/admin/leads/%s", n.cfg.GetAppBaseURL(), received.LeadID),
	}

	// Enrich from the stored lead when possible; the event carries only the
	// summary fields.
	if lead, err := n.leads.Get(ctx, received.LeadID); err == nil {
		data.Phone = lead.Phone
		data.GuestCount = lead.GuestCount
		if lead.Message != nil {
			data.Message = *lead.Message
		}
	}

	if err := n.sender.SendNewLeadEmail(ctx, toEmail, data); err != nil {
		n.log.Error("operator email failed", "lead_id", data.LeadID, "error", err.Error())
		return err
	}
	n.log.LeadEvent("operator_emailed", data.LeadID, data.Kind)
	return nil
}
