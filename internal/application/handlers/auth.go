package handlers

import (
	"context"
	"fmt"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
)

// AuthHandler handles sign-up, sign-in and user administration.
type AuthHandler struct {
	service *services.AuthService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(service *services.AuthService) *AuthHandler {
	return &AuthHandler{service: service}
}

// HandleSignUp registers a user and signs them in.
func (h *AuthHandler) HandleSignUp(ctx context.Context, creds services.Credentials) (*services.SignInResult, error) {
	if _, err := h.service.SignUp(ctx, creds); err != nil {
		return nil, err
	}
	return h.service.SignIn(ctx, creds)
}

// HandleSignIn checks credentials and returns a session token.
func (h *AuthHandler) HandleSignIn(ctx context.Context, creds services.Credentials) (*services.SignInResult, error) {
	return h.service.SignIn(ctx, creds)
}

// HandleSession resolves a token into the current session.
func (h *AuthHandler) HandleSession(ctx context.Context, token string) (*services.Session, error) {
	return h.service.Session(ctx, token)
}

// HandleSignOut ends a session.
func (h *AuthHandler) HandleSignOut(ctx context.Context, sess *services.Session) error {
	return h.service.SignOut(ctx, sess)
}

// HandleListUsers lists registered users.
func (h *AuthHandler) HandleListUsers(ctx context.Context, sess *services.Session) ([]entities.Profile, error) {
	return h.service.ListUsers(ctx, sess)
}

// HandleSetRole changes the role of a user. The role name is validated here.
func (h *AuthHandler) HandleSetRole(ctx context.Context, sess *services.Session, userID, role string) (*entities.Profile, error) {
	r, err := entities.ParseRole(role)
	if err != nil {
		return nil, entities.NewValidationError("role", fmt.Sprintf("unknown role %q (valid: viewer, editor, admin)", role))
	}
	return h.service.SetRole(ctx, sess, userID, r)
}
