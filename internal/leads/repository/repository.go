// Package repository persists leads in PostgreSQL.
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

// ErrNotFound is returned when a lead does not exist.
var ErrNotFound = errors.New("lead not found")

// Lead statuses in the sales pipeline.
const (
	StatusNew       = "new"
	StatusContacted = "contacted"
	StatusQualified = "qualified"
	StatusWon       = "won"
	StatusLost      = "lost"
)

// Lead is a persisted inquiry. Kind-specific columns stay nil for the other
// kind.
type Lead struct {
	ID             uuid.UUID
	Kind           string
	Status         string
	Source         string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Company        *string
	Position       *string
	EventType      *string
	EventDate      *string
	GuestCount     int
	Budget         *string
	WeddingDate    *string
	BrideFirstName *string
	BrideLastName  *string
	GroomFirstName *string
	GroomLastName  *string
	Message        *string
	Requirements   *string
	Venues         []string
	SyncedToOdoo   bool
	OdooID         *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// CreateLeadParams carries the fields of a new lead.
type CreateLeadParams struct {
	Kind           string
	Source         string
	FirstName      string
	LastName       string
	Email          string
	Phone          string
	Company        *string
	Position       *string
	EventType      *string
	EventDate      *string
	GuestCount     int
	Budget         *string
	WeddingDate    *string
	BrideFirstName *string
	BrideLastName  *string
	GroomFirstName *string
	GroomLastName  *string
	Message        *string
	Requirements   *string
	Venues         []string
}

// ListLeadsParams filters and pages the admin listing.
type ListLeadsParams struct {
	Status    string
	Kind      string
	Search    string
	Synced    *bool
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// LeadsRepository is the persistence boundary of the leads module.
type LeadsRepository interface {
	Create(ctx context.Context, params CreateLeadParams) (Lead, error)
	GetByID(ctx context.Context, id uuid.UUID) (Lead, error)
	ListByEmailSince(ctx context.Context, email string, since time.Time) ([]Lead, error)
	MarkSynced(ctx context.Context, id uuid.UUID, odooID int64) error
	List(ctx context.Context, params ListLeadsParams) ([]Lead, int, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Lead, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Repository is the pgx-backed implementation of LeadsRepository.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a leads repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const leadColumns = `
	id, kind, status, source, first_name, last_name, email, phone,
	company, position, event_type, event_date, guest_count, budget,
	wedding_date, bride_first_name, bride_last_name, groom_first_name, groom_last_name,
	message, requirements, venues, synced_to_odoo, odoo_id, created_at, updated_at`

func scanLead(row pgx.Row) (Lead, error) {
	var l Lead
	err := row.Scan(
		&l.ID, &l.Kind, &l.Status, &l.Source, &l.FirstName, &l.LastName, &l.Email, &l.Phone,
		&l.Company, &l.Position, &l.EventType, &l.EventDate, &l.GuestCount, &l.Budget,
		&l.WeddingDate, &l.BrideFirstName, &l.BrideLastName, &l.GroomFirstName, &l.GroomLastName,
		&l.Message, &l.Requirements, &l.Venues, &l.SyncedToOdoo, &l.OdooID, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Lead{}, ErrNotFound
		}
		return Lead{}, err
	}
	return l, nil
}

// Create inserts a new lead with status "new".
func (r *Repository) Create(ctx context.Context, params CreateLeadParams) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO leads (
			kind, source, first_name, last_name, email, phone,
			company, position, event_type, event_date, guest_count, budget,
			wedding_date, bride_first_name, bride_last_name, groom_first_name, groom_last_name,
			message, requirements, venues
		) VALUES (
			$1, $2, $3, $4, $5, $6,
			$7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17,
			$18, $19, $20
		)
		RETURNING`+leadColumns,
		params.Kind, params.Source, params.FirstName, params.LastName, params.Email, params.Phone,
		params.Company, params.Position, params.EventType, params.EventDate, params.GuestCount, params.Budget,
		params.WeddingDate, params.BrideFirstName, params.BrideLastName, params.GroomFirstName, params.GroomLastName,
		params.Message, params.Requirements, params.Venues,
	)
	return scanLead(row)
}

// GetByID fetches a single lead.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Lead, error) {
	row := r.pool.QueryRow(ctx, `SELECT`+leadColumns+` FROM leads WHERE id = $1`, id)
	return scanLead(row)
}

// ListByEmailSince returns leads submitted with the given email address at or
// after the cutoff. Used by the intake dedup check; the comparison is
// case-insensitive.
func (r *Repository) ListByEmailSince(ctx context.Context, email string, since time.Time) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT`+leadColumns+`
		FROM leads
		WHERE lower(email) = lower($1) AND created_at >= $2
		ORDER BY created_at DESC
	`, email, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectLeads(rows)
}

// MarkSynced records a successful CRM export.
func (r *Repository) MarkSynced(ctx context.Context, id uuid.UUID, odooID int64) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET synced_to_odoo = true, odoo_id = $2, updated_at = now() WHERE id = $1
	`, id, odooID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

var sortColumns = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"lastName":  "last_name",
	"status":    "status",
}

// List returns a filtered page of leads plus the total match count.
func (r *Repository) List(ctx context.Context, params ListLeadsParams) ([]Lead, int, error) {
	where := make([]string, 0, 4)
	args := make([]interface{}, 0, 4)

	if params.Status != "" {
		args = append(args, params.Status)
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if params.Kind != "" {
		args = append(args, params.Kind)
		where = append(where, fmt.Sprintf("kind = $%d", len(args)))
	}
	if params.Synced != nil {
		args = append(args, *params.Synced)
		where = append(where, fmt.Sprintf("synced_to_odoo = $%d", len(args)))
	}
	if params.Search != "" {
		args = append(args, "%"+params.Search+"%")
		n := len(args)
		where = append(where, fmt.Sprintf(
			"(first_name ILIKE $%d OR last_name ILIKE $%d OR email ILIKE $%d OR company ILIKE $%d)", n, n, n, n))
	}

	whereClause := ""
	if len(where) > 0 {
		whereClause = " WHERE " + strings.Join(where, " AND ")
	}

	var total int
	if err := r.pool.QueryRow(ctx, "SELECT count(*) FROM leads"+whereClause, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sortBy, ok := sortColumns[params.SortBy]
	if !ok {
		sortBy = "created_at"
	}
	order := "DESC"
	if strings.EqualFold(params.SortOrder, "asc") {
		order = "ASC"
	}

	args = append(args, params.PageSize, (params.Page-1)*params.PageSize)
	query := fmt.Sprintf("SELECT%s FROM leads%s ORDER BY %s %s LIMIT $%d OFFSET $%d",
		leadColumns, whereClause, sortBy, order, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	leads, err := collectLeads(rows)
	if err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

// UpdateStatus moves a lead to a new pipeline status and returns the updated
// row.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (Lead, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE leads SET status = $2, updated_at = now() WHERE id = $1
		RETURNING`+leadColumns, id, status)
	return scanLead(row)
}

// Delete removes a lead permanently.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM leads WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func collectLeads(rows pgx.Rows) ([]Lead, error) {
	leads := make([]Lead, 0)
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// Compile-time check
var _ LeadsRepository = (*Repository)(nil)
