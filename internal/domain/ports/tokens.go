package ports

import "time"

// TokenClaims identify the user behind a session token.
type TokenClaims struct {
	UserID    string
	Email     string
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies session tokens.
type TokenIssuer interface {
	Issue(userID, email string) (token string, expiresAt time.Time, err error)
	Parse(token string) (*TokenClaims, error)
}
