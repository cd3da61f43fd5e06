package service

import (
	"context"
	"errors"

	"lieux_backend/internal/venues/repository"
	"lieux_backend/internal/venues/transport"
	"lieux_backend/platform/apperr"
	"lieux_backend/platform/sanitize"

	"github.com/google/uuid"
)

// RequestImageUpload returns a presigned PUT URL for a new venue image.
func (s *Service) RequestImageUpload(ctx context.Context, venueID uuid.UUID, req transport.RequestImageUploadRequest) (transport.UploadURLResponse, error) {
	if s.store == nil {
		return transport.UploadURLResponse{}, apperr.Conflict("object storage is not configured")
	}
	if err := s.val.Struct(req); err != nil {
		return transport.UploadURLResponse{}, validationError(err)
	}

	venue, err := s.repo.GetByID(ctx, venueID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.UploadURLResponse{}, apperr.NotFound("venue not found")
		}
		s.log.DatabaseError("venues.get", err)
		return transport.UploadURLResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load venue", err)
	}

	presigned, err := s.store.GenerateUploadURL(ctx, s.bucket, venue.Slug, req.FileName, req.ContentType, req.SizeBytes)
	if err != nil {
		return transport.UploadURLResponse{}, apperr.Wrap(apperr.KindBadRequest, err.Error(), err)
	}

	return transport.UploadURLResponse{
		URL:       presigned.URL,
		FileKey:   presigned.FileKey,
		ExpiresAt: presigned.ExpiresAt,
	}, nil
}

// ConfirmImage registers an uploaded object as a venue image.
func (s *Service) ConfirmImage(ctx context.Context, venueID uuid.UUID, req transport.ConfirmImageRequest) (transport.ImageResponse, error) {
	if err := s.val.Struct(req); err != nil {
		return transport.ImageResponse{}, validationError(err)
	}

	if _, err := s.repo.GetByID(ctx, venueID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return transport.ImageResponse{}, apperr.NotFound("venue not found")
		}
		s.log.DatabaseError("venues.get", err)
		return transport.ImageResponse{}, apperr.Wrap(apperr.KindInternal, "failed to load venue", err)
	}

	img, err := s.repo.AddImage(ctx, venueID, req.FileKey, sanitize.Text(req.Alt), req.Position)
	if err != nil {
		s.log.DatabaseError("venues.add_image", err)
		return transport.ImageResponse{}, apperr.Wrap(apperr.KindInternal, "failed to register image", err)
	}

	resp := transport.ImageResponse{ID: img.ID, Alt: img.Alt, Position: img.Position}
	if s.store != nil {
		if presigned, err := s.store.GenerateDownloadURL(ctx, s.bucket, img.FileKey); err == nil {
			resp.URL = presigned.URL
		}
	}
	return resp, nil
}

// DeleteImage removes an image row and best-effort deletes the stored object.
func (s *Service) DeleteImage(ctx context.Context, venueID, imageID uuid.UUID) error {
	img, err := s.repo.GetImage(ctx, venueID, imageID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("image not found")
		}
		s.log.DatabaseError("venues.get_image", err)
		return apperr.Wrap(apperr.KindInternal, "failed to load image", err)
	}

	if err := s.repo.DeleteImage(ctx, venueID, imageID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.NotFound("image not found")
		}
		s.log.DatabaseError("venues.delete_image", err)
		return apperr.Wrap(apperr.KindInternal, "failed to delete image", err)
	}

	if s.store != nil {
		if err := s.store.DeleteObject(ctx, s.bucket, img.FileKey); err != nil {
			s.log.Warn("orphaned venue image object", "file_key", img.FileKey, "error", err.Error())
		}
	}
	return nil
}
