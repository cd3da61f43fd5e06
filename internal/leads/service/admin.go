package service

import (
	"context"
	"errors"

	"lieux_backend/internal/events"
	"lieux_backend/internal/leads/repository"
	"lieux_backend/internal/leads/transport"
	"lieux_backend/platform/apperr"

	"github.com/google/uuid"
)

// List returns a filtered page of leads for the admin dashboard.
func (s *Service) List(ctx context.Context, req transport.ListLeadsRequest) (transport.LeadListResponse, error) {
	if err := s.val.Struct(req); err != nil {
		return transport.LeadListResponse{}, validationError(err)
	}

	page := req.Page
	if page < 1 {
		page = 1
	}
	pageSize := req.PageSize
	if pageSize < 1 {
		pageSize = 20
	}

	params := repository.ListLeadsParams{
		Status:    req.Status,
		Kind:      req.Kind,
		Search:    req.Search,
		Page:      page,
		PageSize:  pageSize,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	switch req.Synced {
	case "true":
		t := true
		params.Synced = &t
	case "false":
		f := false
		params.Synced = &f
	}

	leads, total, err := s.repo.List(ctx, params)
	if err != nil {
		s.log.DatabaseError("leads.list", err)
		return transport.LeadListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list leads", err)
	}

	items := make([]transport.LeadResponse, 0, len(leads))
	for _, lead := range leads {
		items = append(items, toLeadResponse(lead))
	}

	totalPages := (total + pageSize - 1) / pageSize
	return transport.LeadListResponse{
		Items:      items,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Get returns a single lead.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.LeadResponse, error) {
	lead, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		s.log.DatabaseError("leads.get", err)
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}
	return toLeadResponse(lead), nil
}

// UpdateStatus moves a lead through the pipeline and publishes the change.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, req transport.UpdateLeadStatusRequest) (transport.LeadResponse, error) {
	if err := s.val.Struct(req); err != nil {
		return transport.LeadResponse{}, validationError(err)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		s.log.DatabaseError("leads.get", err)
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load lead", err)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, req.Status)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.LeadResponse{}, apperr.NotFound("lead not found")
		}
		s.log.DatabaseError("leads.update_status", err)
		return transport.LeadResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update lead", err)
	}

	if current.Status != updated.Status {
		s.bus.Publish(ctx, events.LeadStatusChanged{
			BaseEvent: events.NewBaseEvent(),
			LeadID:    updated.ID,
			OldStatus: current.Status,
			NewStatus: updated.Status,
		})
	}

	return toLeadResponse(updated), nil
}

// Delete removes a lead permanently.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("lead not found")
		}
		s.log.DatabaseError("leads.delete", err)
		return apperr.Wrap(apperr.KindInternal, "failed to delete lead", err)
	}
	return nil
}

func toLeadResponse(lead repository.Lead) transport.LeadResponse {
	return transport.LeadResponse{
		ID:             lead.ID,
		Kind:           lead.Kind,
		Status:         lead.Status,
		Source:         lead.Source,
		FirstName:      lead.FirstName,
		LastName:       lead.LastName,
		Email:          lead.Email,
		Phone:          lead.Phone,
		Company:        lead.Company,
		Position:       lead.Position,
		EventType:      lead.EventType,
		EventDate:      lead.EventDate,
		GuestCount:     lead.GuestCount,
		Budget:         lead.Budget,
		WeddingDate:    lead.WeddingDate,
		BrideFirstName: lead.BrideFirstName,
		BrideLastName:  lead.BrideLastName,
		GroomFirstName: lead.GroomFirstName,
		GroomLastName:  lead.GroomLastName,
		Message:        lead.Message,
		Requirements:   lead.Requirements,
		Venues:         lead.Venues,
		SyncedToOdoo:   lead.SyncedToOdoo,
		OdooID:         lead.OdooID,
		CreatedAt:      lead.CreatedAt,
		UpdatedAt:      lead.UpdatedAt,
	}
}
