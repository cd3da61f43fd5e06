// Package auth implements admin authentication. There is a single operator
// account configured from the environment; no user table, no self-service.
package auth

import (
	"context"
	"crypto/subtle"
	"strings"
	"time"

	"lieux_backend/platform/apperr"
	"lieux_backend/platform/config"
	"lieux_backend/platform/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const msgInvalidCredentials = "invalid email or password"

// Service validates admin credentials and issues access tokens.
type Service struct {
	cfg config.AuthConfig
	log *logger.Logger
	now func() time.Time
}

// NewService creates the auth service.
func NewService(cfg config.AuthConfig, log *logger.Logger) *Service {
	return &Service{cfg: cfg, log: log, now: time.Now}
}

// TokenPair is the login result.
type TokenPair struct {
	AccessToken string    `json:"accessToken"`
	ExpiresAt   time.Time `json:"expiresAt"`
}

// Login checks the credentials against the configured admin account and
// returns a signed access token. Both failure modes return the same error so
// probing cannot distinguish a wrong email from a wrong password.
func (s *Service) Login(ctx context.Context, email, password string) (TokenPair, error) {
	adminEmail := s.cfg.GetAdminEmail()
	passwordHash := s.cfg.GetAdminPasswordHash()
	if adminEmail == "" || passwordHash == "" {
		s.log.Warn("admin login attempted but no admin account is configured")
		return TokenPair{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	emailMatches := subtle.ConstantTimeCompare(
		[]byte(strings.ToLower(strings.TrimSpace(email))),
		[]byte(strings.ToLower(adminEmail)),
	) == 1

	// Run the bcrypt comparison even for a wrong email to keep timing flat.
	passwordErr := bcrypt.CompareHashAndPassword([]byte(passwordHash), []byte(password))

	if !emailMatches || passwordErr != nil {
		s.log.Warn("admin login failed", "email", email)
		return TokenPair{}, apperr.Unauthorized(msgInvalidCredentials)
	}

	return s.issueToken(adminEmail)
}

func (s *Service) issueToken(email string) (TokenPair, error) {
	ttl := s.cfg.GetAccessTokenTTL()
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	expiresAt := s.now().Add(ttl)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  email,
		"type": "access",
		"iat":  s.now().Unix(),
		"exp":  expiresAt.Unix(),
	})

	signed, err := token.SignedString([]byte(s.cfg.GetJWTAccessSecret()))
	if err != nil {
		return TokenPair{}, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}

	return TokenPair{AccessToken: signed, ExpiresAt: expiresAt}, nil
}
