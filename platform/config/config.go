// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// RedisConfig provides Redis connection settings (rate limiting + scheduler).
type RedisConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	RedisConfig
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// AuthConfig provides settings needed by the admin auth service.
type AuthConfig interface {
	JWTConfig
	GetAccessTokenTTL() time.Duration
	GetAdminEmail() string
	GetAdminPasswordHash() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// IntakeConfig provides settings for the contact-form intake pipeline.
type IntakeConfig interface {
	GetContactRateLimit() int
	GetContactRateWindow() time.Duration
	GetDedupWindow() time.Duration
	GetCRMSyncTimeout() time.Duration
}

// OdooConfig provides settings for the Odoo CRM connector.
type OdooConfig interface {
	GetOdooURL() string
	GetOdooDatabase() string
	GetOdooUsername() string
	GetOdooAPIKey() string
	IsOdooEnabled() bool
}

// PushConfig provides settings for the push notification gateway.
type PushConfig interface {
	GetPushGatewayURL() string
	GetPushServerKey() string
	IsPushEnabled() bool
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetBrevoAPIKey() string
	GetEmailFromName() string
	GetEmailFromAddress() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
}

// NotificationConfig provides settings for the notification module.
type NotificationConfig interface {
	GetAppBaseURL() string
	GetAdminNotifyEmail() string
}

// MinIOConfig provides settings for MinIO S3-compatible storage.
type MinIOConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketVenueImages() string
	IsMinIOEnabled() bool
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	JWTAccessSecret       string
	AccessTokenTTL        time.Duration
	AdminEmail            string
	AdminPasswordHash     string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	AppBaseURL            string
	ContactRateLimit      int
	ContactRateWindow     time.Duration
	DedupWindow           time.Duration
	CRMSyncTimeout        time.Duration
	OdooURL               string
	OdooDatabase          string
	OdooUsername          string
	OdooAPIKey            string
	PushGatewayURL        string
	PushServerKey         string
	EmailEnabled          bool
	BrevoAPIKey           string
	EmailFromName         string
	EmailFromAddress      string
	AdminNotifyEmail      string
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinIOMaxFileSize      int64
	MinioBucketVenueImage string
}

func (c *Config) GetDatabaseURL() string      { return c.DatabaseURL }
func (c *Config) GetRedisURL() string         { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool   { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string   { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int    { return c.AsynqConcurrency }
func (c *Config) GetJWTAccessSecret() string  { return c.JWTAccessSecret }
func (c *Config) GetAccessTokenTTL() time.Duration { return c.AccessTokenTTL }
func (c *Config) GetAdminEmail() string       { return c.AdminEmail }
func (c *Config) GetAdminPasswordHash() string { return c.AdminPasswordHash }
func (c *Config) GetHTTPAddr() string         { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool       { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string    { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool     { return c.CORSAllowCreds }
func (c *Config) GetAppBaseURL() string       { return c.AppBaseURL }
func (c *Config) GetAdminNotifyEmail() string { return c.AdminNotifyEmail }

func (c *Config) GetContactRateLimit() int            { return c.ContactRateLimit }
func (c *Config) GetContactRateWindow() time.Duration { return c.ContactRateWindow }
func (c *Config) GetDedupWindow() time.Duration       { return c.DedupWindow }
func (c *Config) GetCRMSyncTimeout() time.Duration    { return c.CRMSyncTimeout }

func (c *Config) GetOdooURL() string      { return c.OdooURL }
func (c *Config) GetOdooDatabase() string { return c.OdooDatabase }
func (c *Config) GetOdooUsername() string { return c.OdooUsername }
func (c *Config) GetOdooAPIKey() string   { return c.OdooAPIKey }
func (c *Config) IsOdooEnabled() bool {
	return c.OdooURL != "" && c.OdooDatabase != "" && c.OdooUsername != "" && c.OdooAPIKey != ""
}

func (c *Config) GetPushGatewayURL() string { return c.PushGatewayURL }
func (c *Config) GetPushServerKey() string  { return c.PushServerKey }
func (c *Config) IsPushEnabled() bool       { return c.PushGatewayURL != "" && c.PushServerKey != "" }

func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetBrevoAPIKey() string      { return c.BrevoAPIKey }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }

func (c *Config) GetMinIOEndpoint() string          { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string         { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string         { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool              { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64        { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketVenueImages() string { return c.MinioBucketVenueImage }
func (c *Config) IsMinIOEnabled() bool {
	return c.MinIOEndpoint != "" && c.MinIOAccessKey != "" && c.MinIOSecretKey != ""
}

// Load reads configuration from the environment, with .env as a fallback
// for local development.
func Load() (*Config, error) {
	// Ignore error: .env is optional and absent in production.
	_ = godotenv.Load()

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           os.Getenv("DATABASE_URL"),
		RedisURL:              os.Getenv("REDIS_URL"),
		RedisTLSInsecure:      getEnvBool("REDIS_TLS_INSECURE", false),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:      getEnvInt("ASYNQ_CONCURRENCY", 10),
		JWTAccessSecret:       os.Getenv("JWT_ACCESS_SECRET"),
		AccessTokenTTL:        getEnvDuration("ACCESS_TOKEN_TTL", 15*time.Minute),
		AdminEmail:            os.Getenv("ADMIN_EMAIL"),
		AdminPasswordHash:     os.Getenv("ADMIN_PASSWORD_HASH"),
		CORSAllowAll:          getEnvBool("CORS_ALLOW_ALL", false),
		CORSOrigins:           splitAndTrim(getEnv("CORS_ORIGINS", "")),
		CORSAllowCreds:        getEnvBool("CORS_ALLOW_CREDENTIALS", true),
		AppBaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		ContactRateLimit:      getEnvInt("CONTACT_RATE_LIMIT", 3),
		ContactRateWindow:     getEnvDuration("CONTACT_RATE_WINDOW", time.Minute),
		DedupWindow:           getEnvDuration("LEAD_DEDUP_WINDOW", 24*time.Hour),
		CRMSyncTimeout:        getEnvDuration("CRM_SYNC_TIMEOUT", 8*time.Second),
		OdooURL:               os.Getenv("ODOO_URL"),
		OdooDatabase:          os.Getenv("ODOO_DB"),
		OdooUsername:          os.Getenv("ODOO_USERNAME"),
		OdooAPIKey:            os.Getenv("ODOO_API_KEY"),
		PushGatewayURL:        os.Getenv("PUSH_GATEWAY_URL"),
		PushServerKey:         os.Getenv("PUSH_SERVER_KEY"),
		EmailEnabled:          getEnvBool("EMAIL_ENABLED", false),
		BrevoAPIKey:           os.Getenv("BREVO_API_KEY"),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "Lieux d'Exception"),
		EmailFromAddress:      getEnv("EMAIL_FROM_ADDRESS", "contact@lieux-exception.fr"),
		AdminNotifyEmail:      os.Getenv("ADMIN_NOTIFY_EMAIL"),
		SMTPHost:              os.Getenv("SMTP_HOST"),
		SMTPPort:              getEnvInt("SMTP_PORT", 587),
		SMTPUsername:          os.Getenv("SMTP_USERNAME"),
		SMTPPassword:          os.Getenv("SMTP_PASSWORD"),
		MinIOEndpoint:         os.Getenv("MINIO_ENDPOINT"),
		MinIOAccessKey:        os.Getenv("MINIO_ACCESS_KEY"),
		MinIOSecretKey:        os.Getenv("MINIO_SECRET_KEY"),
		MinIOUseSSL:           getEnvBool("MINIO_USE_SSL", false),
		MinIOMaxFileSize:      getEnvInt64("MINIO_MAX_FILE_SIZE", 10*1024*1024),
		MinioBucketVenueImage: getEnv("MINIO_BUCKET_VENUE_IMAGES", "venue-images"),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	if c.JWTAccessSecret == "" {
		return fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if !strings.EqualFold(c.Env, "development") {
		if len(c.JWTAccessSecret) < 32 {
			return fmt.Errorf("JWT_ACCESS_SECRET must be at least 32 characters outside development")
		}
		if c.AdminPasswordHash == "" {
			return fmt.Errorf("ADMIN_PASSWORD_HASH is required outside development")
		}
	}
	if c.EmailEnabled && c.BrevoAPIKey == "" && c.SMTPHost == "" {
		return fmt.Errorf("EMAIL_ENABLED requires BREVO_API_KEY or SMTP_HOST")
	}
	if c.ContactRateLimit < 1 {
		return fmt.Errorf("CONTACT_RATE_LIMIT must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvInt64(key string, fallback int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return parsed
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fallback
	}
	return parsed
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
