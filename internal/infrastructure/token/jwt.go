// Package token issues and verifies HS256 session tokens.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/ports"
	"github.com/ersonp/watlas/internal/infrastructure/config"
)

const issuer = "watlas"

// claims is the JWT payload. The role is not carried; it is read from the
// store on every check so role changes apply immediately.
type claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Manager implements ports.TokenIssuer.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewManager creates a token manager from the server config.
func NewManager(cfg config.ServerConfig) (*Manager, error) {
	if len(cfg.JWTSecret) < config.MinJWTSecretLength {
		return nil, fmt.Errorf("jwt secret must be at least %d characters", config.MinJWTSecretLength)
	}
	ttl := cfg.TokenTTL
	if ttl <= 0 {
		ttl = config.Default().Server.TokenTTL
	}
	return &Manager{
		secret: []byte(cfg.JWTSecret),
		ttl:    ttl,
		now:    time.Now,
	}, nil
}

// Issue signs a token for the user.
func (m *Manager) Issue(userID, email string) (string, time.Time, error) {
	now := m.now()
	expiresAt := now.Add(m.ttl)

	c := claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			Issuer:    issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("signing token: %w", err)
	}
	return signed, expiresAt, nil
}

// Parse verifies a token. Every failure wraps entities.ErrUnauthenticated.
func (m *Manager) Parse(tokenString string) (*ports.TokenClaims, error) {
	c := &claims{}
	tok, err := jwt.ParseWithClaims(tokenString, c, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return m.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("session expired: %w", entities.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("invalid token: %w", entities.ErrUnauthenticated)
	}
	if !tok.Valid || c.Subject == "" {
		return nil, fmt.Errorf("invalid token: %w", entities.ErrUnauthenticated)
	}

	return &ports.TokenClaims{
		UserID:    c.Subject,
		Email:     c.Email,
		ExpiresAt: c.ExpiresAt.Time,
	}, nil
}
