package push

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DeviceToken is a registered admin device.
type DeviceToken struct {
	ID        uuid.UUID
	Token     string
	Platform  string
	Active    bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenStore exposes the device-token registry to the intake pipeline.
type TokenStore interface {
	ListActiveTokens(ctx context.Context) ([]string, error)
}

// Repository persists device tokens.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a device-token repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Register stores or reactivates a device token.
func (r *Repository) Register(ctx context.Context, token, platform string) (DeviceToken, error) {
	var dt DeviceToken
	err := r.pool.QueryRow(ctx, `
		INSERT INTO device_tokens (token, platform, active)
		VALUES ($1, $2, true)
		ON CONFLICT (token) DO UPDATE SET platform = $2, active = true, updated_at = now()
		RETURNING id, token, platform, active, created_at, updated_at
	`, token, platform).Scan(&dt.ID, &dt.Token, &dt.Platform, &dt.Active, &dt.CreatedAt, &dt.UpdatedAt)
	if err != nil {
		return DeviceToken{}, err
	}
	return dt, nil
}

// Deactivate marks a token inactive; it no longer receives notifications.
func (r *Repository) Deactivate(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE device_tokens SET active = false, updated_at = now() WHERE token = $1
	`, token)
	return err
}

// ListActiveTokens returns the token strings of all active devices.
func (r *Repository) ListActiveTokens(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT token FROM device_tokens WHERE active = true ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]string, 0)
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}

	return tokens, rows.Err()
}
