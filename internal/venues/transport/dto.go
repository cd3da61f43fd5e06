// Package transport defines the wire-level shapes of the venues module.
package transport

import (
	"time"

	"github.com/google/uuid"
)

// ListVenuesRequest filters the public catalog listing.
type ListVenuesRequest struct {
	Type        string `form:"type" validate:"omitempty,max=50"`
	Region      string `form:"region" validate:"omitempty,max=100"`
	MinCapacity int    `form:"minCapacity" validate:"omitempty,min=1"`
}

// CreateVenueRequest creates a venue from the admin dashboard.
type CreateVenueRequest struct {
	Name        string   `json:"name" validate:"required,min=2,max=200"`
	Slug        string   `json:"slug" validate:"omitempty,max=200,lowercase"`
	Type        string   `json:"type" validate:"required,max=50"`
	Region      string   `json:"region" validate:"required,max=100"`
	Description string   `json:"description" validate:"omitempty,max=10000"`
	Capacity    int      `json:"capacity" validate:"required,min=1,max=100000"`
	Features    []string `json:"features" validate:"omitempty,max=50,dive,min=1,max=100"`
	Published   bool     `json:"published"`
}

// UpdateVenueRequest partially updates a venue. Nil fields are untouched.
type UpdateVenueRequest struct {
	Name        *string   `json:"name,omitempty" validate:"omitempty,min=2,max=200"`
	Type        *string   `json:"type,omitempty" validate:"omitempty,max=50"`
	Region      *string   `json:"region,omitempty" validate:"omitempty,max=100"`
	Description *string   `json:"description,omitempty" validate:"omitempty,max=10000"`
	Capacity    *int      `json:"capacity,omitempty" validate:"omitempty,min=1,max=100000"`
	Features    *[]string `json:"features,omitempty" validate:"omitempty,max=50,dive,min=1,max=100"`
	Published   *bool     `json:"published,omitempty"`
}

// RequestImageUploadRequest asks for a presigned upload URL.
type RequestImageUploadRequest struct {
	FileName    string `json:"fileName" validate:"required,max=255"`
	ContentType string `json:"contentType" validate:"required,max=100"`
	SizeBytes   int64  `json:"sizeBytes" validate:"required,min=1"`
}

// ConfirmImageRequest registers an uploaded object as a venue image.
type ConfirmImageRequest struct {
	FileKey  string `json:"fileKey" validate:"required,max=512"`
	Alt      string `json:"alt" validate:"omitempty,max=300"`
	Position int    `json:"position" validate:"omitempty,min=0,max=100"`
}

// ImageResponse is one venue image with a short-lived display URL.
type ImageResponse struct {
	ID       uuid.UUID `json:"id"`
	Alt      string    `json:"alt,omitempty"`
	Position int       `json:"position"`
	URL      string    `json:"url,omitempty"`
}

// VenueResponse is the public venue representation.
type VenueResponse struct {
	ID          uuid.UUID       `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Type        string          `json:"type"`
	Region      string          `json:"region"`
	Description string          `json:"description,omitempty"`
	Capacity    int             `json:"capacity"`
	Features    []string        `json:"features,omitempty"`
	Published   bool            `json:"published"`
	Images      []ImageResponse `json:"images"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// VenueListResponse is the catalog listing.
type VenueListResponse struct {
	Items []VenueResponse `json:"items"`
	Total int             `json:"total"`
}

// UploadURLResponse returns the presigned PUT target.
type UploadURLResponse struct {
	URL       string    `json:"url"`
	FileKey   string    `json:"fileKey"`
	ExpiresAt time.Time `json:"expiresAt"`
}
