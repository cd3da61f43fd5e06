// Package service implements the venue catalog.
package service

import (
	"context"
	"errors"
	"strings"

	"lieux_backend/internal/adapters/storage"
	"lieux_backend/internal/events"
	"lieux_backend/internal/venues/repository"
	"lieux_backend/internal/venues/transport"
	"lieux_backend/platform/apperr"
	"lieux_backend/platform/logger"
	"lieux_backend/platform/sanitize"
	"lieux_backend/platform/validator"

	gpvalidator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// Service manages the venue catalog and its media.
type Service struct {
	repo   repository.VenuesRepository
	store  storage.ObjectStore // nil when MinIO is not configured
	bucket string
	bus    events.Bus
	val    *validator.Validator
	log    *logger.Logger
}

// New creates the venues service. store may be nil; image operations then
// return a conflict error and listings omit image URLs.
func New(
	repo repository.VenuesRepository,
	store storage.ObjectStore,
	bucket string,
	bus events.Bus,
	val *validator.Validator,
	log *logger.Logger,
) *Service {
	return &Service{repo: repo, store: store, bucket: bucket, bus: bus, val: val, log: log}
}

// =============================================================================
// Public catalog
// =============================================================================

// ListPublished returns the published catalog for the marketing site.
func (s *Service) ListPublished(ctx context.Context, req transport.ListVenuesRequest) (transport.VenueListResponse, error) {
	if err := s.val.Struct(req); err != nil {
		return transport.VenueListResponse{}, validationError(err)
	}

	venues, err := s.repo.List(ctx, repository.ListVenuesParams{
		PublishedOnly: true,
		Type:          req.Type,
		Region:        req.Region,
		MinCapacity:   req.MinCapacity,
	})
	if err != nil {
		s.log.DatabaseError("venues.list", err)
		return transport.VenueListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list venues", err)
	}

	items := make([]transport.VenueResponse, 0, len(venues))
	for _, venue := range venues {
		items = append(items, s.toResponse(ctx, venue))
	}
	return transport.VenueListResponse{Items: items, Total: len(items)}, nil
}

// GetPublishedBySlug returns one published venue. Unpublished venues look
// identical to missing ones from the public site.
func (s *Service) GetPublishedBySlug(ctx context.Context, slug string) (transport.VenueResponse, error) {
	venue, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.VenueResponse{}, apperr.NotFound("venue not found")
		}
		s.log.DatabaseError("venues.get_by_slug", err)
		return transport.VenueResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load venue", err)
	}
	if !venue.Published {
		return transport.VenueResponse{}, apperr.NotFound("venue not found")
	}
	return s.toResponse(ctx, venue), nil
}

// =============================================================================
// Admin CRUD
// =============================================================================

// ListAll returns every venue, published or not.
func (s *Service) ListAll(ctx context.Context) (transport.VenueListResponse, error) {
	venues, err := s.repo.List(ctx, repository.ListVenuesParams{})
	if err != nil {
		s.log.DatabaseError("venues.list", err)
		return transport.VenueListResponse{}, apperr.Wrap(apperr.KindInternal, "failed to list venues", err)
	}
	items := make([]transport.VenueResponse, 0, len(venues))
	for _, venue := range venues {
		items = append(items, s.toResponse(ctx, venue))
	}
	return transport.VenueListResponse{Items: items, Total: len(items)}, nil
}

// Get returns one venue by id for the admin dashboard.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.VenueResponse, error) {
	venue, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.VenueResponse{}, apperr.NotFound("venue not found")
		}
		s.log.DatabaseError("venues.get", err)
		return transport.VenueResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load venue", err)
	}
	return s.toResponse(ctx, venue), nil
}

// Create adds a venue to the catalog.
func (s *Service) Create(ctx context.Context, req transport.CreateVenueRequest) (transport.VenueResponse, error) {
	if err := s.val.Struct(req); err != nil {
		return transport.VenueResponse{}, validationError(err)
	}

	slug := req.Slug
	if slug == "" {
		slug = Slugify(sanitize.Text(req.Name))
	}

	venue, err := s.repo.Create(ctx, repository.CreateVenueParams{
		Slug:        slug,
		Name:        sanitize.Text(req.Name),
		Type:        sanitize.Text(req.Type),
		Region:      sanitize.Text(req.Region),
		Description: sanitize.Text(req.Description),
		Capacity:    req.Capacity,
		Features:    sanitizeFeatures(req.Features),
		Published:   req.Published,
	})
	if err != nil {
		if errors.Is(err, repository.ErrSlugTaken) {
			return transport.VenueResponse{}, apperr.Conflict("a venue with this slug already exists")
		}
		s.log.DatabaseError("venues.create", err)
		return transport.VenueResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create venue", err)
	}

	if venue.Published {
		s.publishEvent(ctx, venue)
	}
	return s.toResponse(ctx, venue), nil
}

// Update applies a partial update and publishes an event when a venue goes
// from draft to published.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateVenueRequest) (transport.VenueResponse, error) {
	if err := s.val.Struct(req); err != nil {
		return transport.VenueResponse{}, validationError(err)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.VenueResponse{}, apperr.NotFound("venue not found")
		}
		s.log.DatabaseError("venues.get", err)
		return transport.VenueResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load venue", err)
	}

	params := repository.UpdateVenueParams{
		Capacity:  req.Capacity,
		Published: req.Published,
	}
	if req.Name != nil {
		params.Name = ptr(sanitize.Text(*req.Name))
	}
	if req.Type != nil {
		params.Type = ptr(sanitize.Text(*req.Type))
	}
	if req.Region != nil {
		params.Region = ptr(sanitize.Text(*req.Region))
	}
	if req.Description != nil {
		params.Description = ptr(sanitize.Text(*req.Description))
	}
	if req.Features != nil {
		features := sanitizeFeatures(*req.Features)
		params.Features = &features
	}

	venue, err := s.repo.Update(ctx, id, params)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.VenueResponse{}, apperr.NotFound("venue not found")
		}
		s.log.DatabaseError("venues.update", err)
		return transport.VenueResponse{}, apperr.Wrap(apperr.KindInternal, "failed to update venue", err)
	}

	if !current.Published && venue.Published {
		s.publishEvent(ctx, venue)
	}
	return s.toResponse(ctx, venue), nil
}

// Delete removes a venue and best-effort deletes its stored media.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	images, err := s.repo.ListImages(ctx, id)
	if err != nil {
		s.log.DatabaseError("venues.list_images", err)
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("venue not found")
		}
		s.log.DatabaseError("venues.delete", err)
		return apperr.Wrap(apperr.KindInternal, "failed to delete venue", err)
	}

	if s.store != nil {
		for _, img := range images {
			if err := s.store.DeleteObject(ctx, s.bucket, img.FileKey); err != nil {
				s.log.Warn("orphaned venue image object", "file_key", img.FileKey, "error", err.Error())
			}
		}
	}
	return nil
}

func (s *Service) publishEvent(ctx context.Context, venue repository.Venue) {
	s.bus.Publish(ctx, events.VenuePublished{
		BaseEvent: events.NewBaseEvent(),
		VenueID:   venue.ID,
		Slug:      venue.Slug,
	})
}

func (s *Service) toResponse(ctx context.Context, venue repository.Venue) transport.VenueResponse {
	resp := transport.VenueResponse{
		ID:          venue.ID,
		Slug:        venue.Slug,
		Name:        venue.Name,
		Type:        venue.Type,
		Region:      venue.Region,
		Description: venue.Description,
		Capacity:    venue.Capacity,
		Features:    venue.Features,
		Published:   venue.Published,
		Images:      []transport.ImageResponse{},
		CreatedAt:   venue.CreatedAt,
		UpdatedAt:   venue.UpdatedAt,
	}

	images, err := s.repo.ListImages(ctx, venue.ID)
	if err != nil {
		s.log.DatabaseError("venues.list_images", err)
		return resp
	}
	for _, img := range images {
		item := transport.ImageResponse{ID: img.ID, Alt: img.Alt, Position: img.Position}
		if s.store != nil {
			if presigned, err := s.store.GenerateDownloadURL(ctx, s.bucket, img.FileKey); err == nil {
				item.URL = presigned.URL
			}
		}
		resp.Images = append(resp.Images, item)
	}
	return resp
}

func validationError(err error) error {
	var ves gpvalidator.ValidationErrors
	if !errors.As(err, &ves) {
		return apperr.Validation("validation failed")
	}
	fields := make([]string, 0, len(ves))
	for _, ve := range ves {
		fields = append(fields, ve.Field()+":"+ve.Tag())
	}
	return apperr.Validation("validation failed").WithDetails(fields)
}

func sanitizeFeatures(features []string) []string {
	if len(features) == 0 {
		return nil
	}
	out := make([]string, 0, len(features))
	for _, f := range features {
		if cleaned := sanitize.Text(f); cleaned != "" {
			out = append(out, cleaned)
		}
	}
	return out
}

func ptr[T any](v T) *T {
	return &v
}

// Slugify turns a venue name into a URL-safe slug. Common French accents are
// transliterated before non-alphanumerics collapse into hyphens.
func Slugify(name string) string {
	replacer := strings.NewReplacer(
		"à", "a", "â", "a", "ä", "a",
		"é", "e", "è", "e", "ê", "e", "ë", "e",
		"î", "i", "ï", "i",
		"ô", "o", "ö", "o",
		"ù", "u", "û", "u", "ü", "u",
		"ç", "c", "œ", "oe", "æ", "ae",
		"'", "-", "’", "-",
	)
	normalized := replacer.Replace(strings.ToLower(strings.TrimSpace(name)))

	var b strings.Builder
	lastHyphen := true
	for _, r := range normalized {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
