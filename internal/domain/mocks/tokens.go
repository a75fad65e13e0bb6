package mocks

import (
	"fmt"
	"strings"
	"time"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/ports"
)

// TokenIssuer is a mock implementation of ports.TokenIssuer.
// Tokens have the form "token:<user id>:<email>".
type TokenIssuer struct {
	Err error
}

// Issue returns a readable token for the user.
func (m *TokenIssuer) Issue(userID, email string) (string, time.Time, error) {
	if m.Err != nil {
		return "", time.Time{}, m.Err
	}
	return "token:" + userID + ":" + email, time.Now().Add(time.Hour), nil
}

// Parse reverses Issue.
func (m *TokenIssuer) Parse(token string) (*ports.TokenClaims, error) {
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 || parts[0] != "token" {
		return nil, fmt.Errorf("parsing token: %w", entities.ErrUnauthenticated)
	}
	return &ports.TokenClaims{UserID: parts[1], Email: parts[2], ExpiresAt: time.Now().Add(time.Hour)}, nil
}
