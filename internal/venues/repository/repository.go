// Package repository persists venues and their images in PostgreSQL.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrNotFound is returned when a venue or image does not exist.
	ErrNotFound = errors.New("venue not found")
	// ErrSlugTaken is returned when a slug collides with an existing venue.
	ErrSlugTaken = errors.New("slug already in use")
)

// Venue is a rentable location on the marketing site.
type Venue struct {
	ID          uuid.UUID
	Slug        string
	Name        string
	Type        string
	Region      string
	Description string
	Capacity    int
	Features    []string
	Published   bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Image is one photo or document attached to a venue.
type Image struct {
	ID        uuid.UUID
	VenueID   uuid.UUID
	FileKey   string
	Alt       string
	Position  int
	CreatedAt time.Time
}

// CreateVenueParams carries the fields of a new venue.
type CreateVenueParams struct {
	Slug        string
	Name        string
	Type        string
	Region      string
	Description string
	Capacity    int
	Features    []string
	Published   bool
}

// UpdateVenueParams carries a partial update. Nil fields keep their value.
type UpdateVenueParams struct {
	Name        *string
	Type        *string
	Region      *string
	Description *string
	Capacity    *int
	Features    *[]string
	Published   *bool
}

// ListVenuesParams filters the catalog.
type ListVenuesParams struct {
	PublishedOnly bool
	Type          string
	Region        string
	MinCapacity   int
}

// VenuesRepository is the persistence boundary of the venues module.
type VenuesRepository interface {
	Create(ctx context.Context, params CreateVenueParams) (Venue, error)
	GetByID(ctx context.Context, id uuid.UUID) (Venue, error)
	GetBySlug(ctx context.Context, slug string) (Venue, error)
	List(ctx context.Context, params ListVenuesParams) ([]Venue, error)
	Update(ctx context.Context, id uuid.UUID, params UpdateVenueParams) (Venue, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddImage(ctx context.Context, venueID uuid.UUID, fileKey, alt string, position int) (Image, error)
	ListImages(ctx context.Context, venueID uuid.UUID) ([]Image, error)
	GetImage(ctx context.Context, venueID, imageID uuid.UUID) (Image, error)
	DeleteImage(ctx context.Context, venueID, imageID uuid.UUID) error
}

// Repository is the pgx-backed implementation of VenuesRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a venues repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const venueColumns = `
	id, slug, name, type, region, description, capacity, features, published, created_at, updated_at`

func scanVenue(row pgx.Row) (Venue, error) {
	var v Venue
	err := row.Scan(
		&v.ID, &v.Slug, &v.Name, &v.Type, &v.Region, &v.Description,
		&v.Capacity, &v.Features, &v.Published, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Venue{}, ErrNotFound
		}
		return Venue{}, err
	}
	return v, nil
}

// Create inserts a new venue.
func (r *Repository) Create(ctx context.Context, params CreateVenueParams) (Venue, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO venues (slug, name, type, region, description, capacity, features, published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING`+venueColumns,
		params.Slug, params.Name, params.Type, params.Region,
		params.Description, params.Capacity, params.Features, params.Published,
	)
	venue, err := scanVenue(row)
	if err != nil && strings.Contains(err.Error(), "venues_slug_key") {
		return Venue{}, ErrSlugTaken
	}
	return venue, err
}

// GetByID fetches a venue.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Venue, error) {
	return scanVenue(r.pool.QueryRow(ctx, `SELECT`+venueColumns+` FROM venues WHERE id = $1`, id))
}

// GetBySlug fetches a venue by its public slug.
func (r *Repository) GetBySlug(ctx context.Context, slug string) (Venue, error) {
	return scanVenue(r.pool.QueryRow(ctx, `SELECT`+venueColumns+` FROM venues WHERE slug = $1`, slug))
}

// List returns venues matching the filters, most recent first.
func (r *Repository) List(ctx context.Context, params ListVenuesParams) ([]Venue, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if params.PublishedOnly {
		where = append(where, "published = true")
	}
	if params.Type != "" {
		args = append(args, params.Type)
		where = append(where, fmt.Sprintf("type = $%d", len(args)))
	}
	if params.Region != "" {
		args = append(args, params.Region)
		where = append(where, fmt.Sprintf("region = $%d", len(args)))
	}
	if params.MinCapacity > 0 {
		args = append(args, params.MinCapacity)
		where = append(where, fmt.Sprintf("capacity >= $%d", len(args)))
	}

	query := "SELECT" + venueColumns + " FROM venues"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	venues := make([]Venue, 0)
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		venues = append(venues, v)
	}
	return venues, rows.Err()
}

// Update applies a partial update and returns the updated venue.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateVenueParams) (Venue, error) {
	set := make([]string, 0, 7)
	args := []interface{}{id}

	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if params.Name != nil {
		add("name", *params.Name)
	}
	if params.Type != nil {
		add("type", *params.Type)
	}
	if params.Region != nil {
		add("region", *params.Region)
	}
	if params.Description != nil {
		add("description", *params.Description)
	}
	if params.Capacity != nil {
		add("capacity", *params.Capacity)
	}
	if params.Features != nil {
		add("features", *params.Features)
	}
	if params.Published != nil {
		add("published", *params.Published)
	}

	if len(set) == 0 {
		return r.GetByID(ctx, id)
	}
	set = append(set, "updated_at = now()")

	query := fmt.Sprintf("UPDATE venues SET %s WHERE id = $1 RETURNING%s", strings.Join(set, ", "), venueColumns)
	return scanVenue(r.pool.QueryRow(ctx, query, args...))
}

// Delete removes a venue and, via FK cascade, its image rows.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM venues WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddImage registers an uploaded object as a venue image.
func (r *Repository) AddImage(ctx context.Context, venueID uuid.UUID, fileKey, alt string, position int) (Image, error) {
	var img Image
	err := r.pool.QueryRow(ctx, `
		INSERT INTO venue_images (venue_id, file_key, alt, position)
		VALUES ($1, $2, $3, $4)
		RETURNING id, venue_id, file_key, alt, position, created_at
	`, venueID, fileKey, alt, position).Scan(&img.ID, &img.VenueID, &img.FileKey, &img.Alt, &img.Position, &img.CreatedAt)
	return img, err
}

// ListImages returns a venue's images ordered for display.
func (r *Repository) ListImages(ctx context.Context, venueID uuid.UUID) ([]Image, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, venue_id, file_key, alt, position, created_at
		FROM venue_images WHERE venue_id = $1
		ORDER BY position ASC, created_at ASC
	`, venueID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	images := make([]Image, 0)
	for rows.Next() {
		var img Image
		if err := rows.Scan(&img.ID, &img.VenueID, &img.FileKey, &img.Alt, &img.Position, &img.CreatedAt); err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return images, rows.Err()
}

// GetImage fetches one image scoped to its venue.
func (r *Repository) GetImage(ctx context.Context, venueID, imageID uuid.UUID) (Image, error) {
	var img Image
	err := r.pool.QueryRow(ctx, `
		SELECT id, venue_id, file_key, alt, position, created_at
		FROM venue_images WHERE id = $1 AND venue_id = $2
	`, imageID, venueID).Scan(&img.ID, &img.VenueID, &img.FileKey, &img.Alt, &img.Position, &img.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Image{}, ErrNotFound
		}
		return Image{}, err
	}
	return img, nil
}

// DeleteImage removes an image row.
func (r *Repository) DeleteImage(ctx context.Context, venueID, imageID uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM venue_images WHERE id = $1 AND venue_id = $2`, imageID, venueID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Compile-time check
var _ VenuesRepository = (*Repository)(nil)
