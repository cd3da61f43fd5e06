package service

import (
	"context"
	"fmt"
	"time"

	"lieux_backend/internal/events"
	"lieux_backend/internal/leads/repository"
	"lieux_backend/internal/leads/transport"
	"lieux_backend/platform/apperr"

	"github.com/google/uuid"
)

// syncToCRM exports a freshly saved lead and waits at most the configured
// timeout. The export call itself is never cancelled: when the timer wins,
// the in-flight request keeps running but its result is discarded, so a slow
// CRM cannot hold the caller and a lost export is recoverable via resync.
func (s *Service) syncToCRM(ctx context.Context, lead repository.Lead) {
	if !s.crm.IsConfigured() {
		s.log.Debug("crm sync skipped, connector not configured", "lead_id", lead.ID.String())
		return
	}

	type outcome struct {
		odooID int64
		err    error
	}
	done := make(chan outcome, 1)

	callCtx := context.WithoutCancel(ctx)
	go func() {
		id, err := s.exportLead(callCtx, lead)
		done <- outcome{odooID: id, err: err}
	}()

	timer := time.NewTimer(s.cfg.GetCRMSyncTimeout())
	defer timer.Stop()

	select {
	case out := <-done:
		if out.err != nil {
			s.log.CRMSyncFailed(lead.ID.String(), lead.Kind, out.err)
			return
		}
		s.recordSynced(callCtx, lead, out.odooID)
	case <-timer.C:
		s.log.CRMSyncFailed(lead.ID.String(), lead.Kind,
			fmt.Errorf("timed out after %s", s.cfg.GetCRMSyncTimeout()))
	}
}

func (s *Service) exportLead(ctx context.Context, lead repository.Lead) (int64, error) {
	if lead.Kind == transport.KindWedding {
		return s.crm.CreateWeddingLead(ctx, WeddingLeadPayload(lead))
	}
	return s.crm.CreateB2BLead(ctx, B2BLeadPayload(lead))
}

func (s *Service) recordSynced(ctx context.Context, lead repository.Lead, odooID int64) {
	if err := s.repo.MarkSynced(ctx, lead.ID, odooID); err != nil {
		s.log.DatabaseError("leads.mark_synced", err)
		return
	}
	s.bus.Publish(ctx, events.LeadSyncedToCRM{
		BaseEvent: events.NewBaseEvent(),
		LeadID:    lead.ID,
		OdooID:    odooID,
	})
	s.log.LeadEvent("lead_synced", lead.ID.String(), lead.Kind)
}

// ResyncLead re-exports a lead to the CRM synchronously. Used by the resync
// worker and by operators for leads whose original export failed or timed out.
func (s *Service) ResyncLead(ctx context.Context, id uuid.UUID) error {
	if !s.crm.IsConfigured() {
		return apperr.Conflict("CRM connector is not configured")
	}

	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrNotFound {
			return apperr.NotFound("lead not found")
		}
		return apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	if lead.SyncedToOdoo {
		return nil
	}

	odooID, err := s.exportLead(ctx, lead)
	if err != nil {
		s.log.CRMSyncFailed(lead.ID.String(), lead.Kind, err)
		return apperr.Wrap(apperr.KindInternal, "crm export failed", err)
	}
	s.recordSynced(ctx, lead, odooID)
	return nil
}
