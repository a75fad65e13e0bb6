package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/ports"
)

const (
	bcryptCost        = 12
	minPasswordLength = 8
	maxPasswordLength = 72 // bcrypt input limit
)

// Credentials are the sign-up and sign-in inputs.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements validation.Validatable.
func (c Credentials) Validate() error {
	err := validation.ValidateStruct(&c,
		validation.Field(&c.Email, validation.Required, is.EmailFormat),
		validation.Field(&c.Password, validation.Required, validation.Length(minPasswordLength, maxPasswordLength)),
	)
	return entities.FromValidation(err)
}

// SignInResult is a freshly issued session.
type SignInResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Session   Session   `json:"session"`
}

// AuthService manages accounts and sessions.
type AuthService struct {
	relationalDB ports.RelationalDB
	tokens       ports.TokenIssuer
	authorizer   *Authorizer
}

// NewAuthService creates a new AuthService.
func NewAuthService(relationalDB ports.RelationalDB, tokens ports.TokenIssuer, authorizer *Authorizer) *AuthService {
	return &AuthService{
		relationalDB: relationalDB,
		tokens:       tokens,
		authorizer:   authorizer,
	}
}

// SignUp registers a new profile. The first profile ever created is an admin;
// everyone after starts as a viewer.
func (s *AuthService) SignUp(ctx context.Context, creds Credentials) (*entities.Profile, error) {
	creds.Email = entities.NormalizeEmail(creds.Email)
	if err := creds.Validate(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(creds.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	profile := &entities.Profile{
		ID:           uuid.New().String(),
		Email:        creds.Email,
		PasswordHash: string(hash),
		Role:         entities.RoleViewer,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.relationalDB.InsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("saving profile: %w", err)
	}

	// Every sign-up runs the promotion after its insert, so exactly one
	// profile ends up as the bootstrap admin however sign-ups interleave.
	if _, err := s.relationalDB.PromoteFirstProfile(ctx); err != nil {
		return nil, fmt.Errorf("assigning first admin: %w", err)
	}
	stored, err := s.relationalDB.FindProfileByID(ctx, profile.ID)
	if err != nil {
		return nil, fmt.Errorf("reloading profile: %w", err)
	}

	recordAudit(ctx, s.relationalDB, entities.ActionUserSignUp, stored.ID, stored.ID, map[string]any{"role": string(stored.Role)})
	return stored, nil
}

// SignIn checks the credentials and issues a session token.
func (s *AuthService) SignIn(ctx context.Context, creds Credentials) (*SignInResult, error) {
	email := entities.NormalizeEmail(creds.Email)
	profile, err := s.relationalDB.FindProfileByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, fmt.Errorf("invalid email or password: %w", entities.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("looking up profile: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(profile.PasswordHash), []byte(creds.Password)); err != nil {
		return nil, fmt.Errorf("invalid email or password: %w", entities.ErrUnauthenticated)
	}

	token, expiresAt, err := s.tokens.Issue(profile.ID, profile.Email)
	if err != nil {
		return nil, fmt.Errorf("issuing token: %w", err)
	}

	return &SignInResult{
		Token:     token,
		ExpiresAt: expiresAt,
		Session:   Session{UserID: profile.ID, Email: profile.Email, Role: profile.Role},
	}, nil
}

// Session resolves a token to the caller's current session.
func (s *AuthService) Session(ctx context.Context, token string) (*Session, error) {
	if token == "" {
		return nil, fmt.Errorf("no session: %w", entities.ErrUnauthenticated)
	}
	claims, err := s.tokens.Parse(token)
	if err != nil {
		return nil, err
	}

	profile, err := s.relationalDB.FindProfileByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, fmt.Errorf("profile no longer exists: %w", entities.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("looking up profile: %w", err)
	}

	return &Session{UserID: profile.ID, Email: profile.Email, Role: profile.Role}, nil
}

// SignOut records the end of a session. Tokens are discarded by the client.
func (s *AuthService) SignOut(ctx context.Context, sess *Session) error {
	if sess == nil {
		return fmt.Errorf("no session: %w", entities.ErrUnauthenticated)
	}
	recordAudit(ctx, s.relationalDB, entities.ActionUserSignOut, sess.UserID, sess.UserID, nil)
	return nil
}

// ListUsers lists every profile.
func (s *AuthService) ListUsers(ctx context.Context, sess *Session) ([]entities.Profile, error) {
	if _, err := s.authorizer.Authorize(ctx, sess, PermUserList); err != nil {
		return nil, err
	}
	return s.relationalDB.ListProfiles(ctx)
}

// SetRole changes the role of another user. Admins cannot demote themselves.
func (s *AuthService) SetRole(ctx context.Context, sess *Session, userID string, role entities.Role) (*entities.Profile, error) {
	actor, err := s.authorizer.Authorize(ctx, sess, PermUserRole)
	if err != nil {
		return nil, err
	}
	role, err = entities.ParseRole(string(role))
	if err != nil {
		return nil, entities.NewValidationError("role", err.Error())
	}
	if actor.ID == userID && role != entities.RoleAdmin {
		return nil, fmt.Errorf("admins cannot demote themselves: %w", entities.ErrForbidden)
	}

	target, err := s.relationalDB.FindProfileByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.relationalDB.UpdateRole(ctx, userID, role); err != nil {
		return nil, fmt.Errorf("updating role: %w", err)
	}

	recordAudit(ctx, s.relationalDB, entities.ActionUserRole, actor.ID, userID, map[string]any{
		"from": string(target.Role),
		"to":   string(role),
	})
	target.Role = role
	return target, nil
}
