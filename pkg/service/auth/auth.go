// Package auth provides admin token minting and parsing for the admin API.
// Authorization decisions themselves (who may trigger a payout) are the
// access-control layer's responsibility, not the lifecycle core's; this
// package only answers "which admin is the caller".
package auth

import (
	"errors"
	"log/slog"
	"time"

	"github.com/elmoushy/makanezm-backend/pkg/config"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when a token's claims cannot be read.
var ErrInvalidToken = errors.New("invalid token claims")

// Service mints and reads HS256 admin tokens.
type Service struct {
	cfg    config.JwtConfig
	logger *slog.Logger
}

// New creates an auth Service for the given JWT configuration.
func New(cfg config.JwtConfig, logger *slog.Logger) *Service {
	return &Service{cfg: cfg, logger: logger}
}

// GenerateToken mints a signed token carrying the admin's id.
func (s *Service) GenerateToken(adminID uuid.UUID) (string, error) {
	token := jwt.New(jwt.SigningMethodHS256)
	claims := token.Claims.(jwt.MapClaims)
	claims["admin_id"] = adminID.String()
	claims["exp"] = time.Now().Add(s.cfg.Expiry).Unix()
	signed, err := token.SignedString([]byte(s.cfg.Secret))
	if err != nil {
		s.logger.Error("GenerateToken failed", "adminID", adminID, "error", err)
		return "", err
	}
	return signed, nil
}

// GetCurrentAdminID extracts the admin id from a verified token.
func (s *Service) GetCurrentAdminID(token *jwt.Token) (uuid.UUID, error) {
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	raw, ok := claims["admin_id"].(string)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}
	adminID, err := uuid.Parse(raw)
	if err != nil {
		s.logger.Error("GetCurrentAdminID failed", "error", err)
		return uuid.Nil, ErrInvalidToken
	}
	return adminID, nil
}
