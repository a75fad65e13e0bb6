package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/ports"
)

// Permission names an operation gated by a minimum role.
type Permission string

// Gated operations.
const (
	PermPageCreate    Permission = "page.create"
	PermPageUpdate    Permission = "page.update"
	PermPageDelete    Permission = "page.delete"
	PermPageRelate    Permission = "page.relate"
	PermPageImage     Permission = "page.image"
	PermCommentPost   Permission = "comment.post"
	PermCommentDelete Permission = "comment.delete"
	PermBackupCreate  Permission = "backup.create"
	PermBackupList    Permission = "backup.list"
	PermBackupRead    Permission = "backup.read"
	PermBackupDelete  Permission = "backup.delete"
	PermBackupRestore Permission = "backup.restore"
	PermImport        Permission = "page.import"
	PermUserList      Permission = "user.list"
	PermUserRole      Permission = "user.role"
	PermSearchReindex Permission = "search.reindex"
	PermAuditRead     Permission = "audit.read"
)

var policy = map[Permission]entities.Role{
	PermPageCreate:    entities.RoleEditor,
	PermPageUpdate:    entities.RoleEditor,
	PermPageDelete:    entities.RoleEditor,
	PermPageRelate:    entities.RoleEditor,
	PermPageImage:     entities.RoleEditor,
	PermCommentPost:   entities.RoleViewer,
	PermCommentDelete: entities.RoleAdmin,
	PermBackupCreate:  entities.RoleEditor,
	PermBackupList:    entities.RoleEditor,
	PermBackupRead:    entities.RoleEditor,
	PermBackupDelete:  entities.RoleEditor,
	PermBackupRestore: entities.RoleAdmin,
	PermImport:        entities.RoleAdmin,
	PermUserList:      entities.RoleAdmin,
	PermUserRole:      entities.RoleAdmin,
	PermSearchReindex: entities.RoleEditor,
	PermAuditRead:     entities.RoleAdmin,
}

// RequiredRole returns the minimum role for perm.
func RequiredRole(perm Permission) (entities.Role, bool) {
	r, ok := policy[perm]
	return r, ok
}

// Session identifies the signed-in caller. A nil *Session is anonymous.
type Session struct {
	UserID string        `json:"user_id"`
	Email  string        `json:"email"`
	Role   entities.Role `json:"role"`
}

// Authorizer checks every mutating operation against the role policy.
type Authorizer struct {
	relationalDB ports.RelationalDB
}

// NewAuthorizer creates a new Authorizer.
func NewAuthorizer(relationalDB ports.RelationalDB) *Authorizer {
	return &Authorizer{relationalDB: relationalDB}
}

// Authorize returns the caller's current profile if they may perform perm.
// The role is read from the store, not from the session.
func (a *Authorizer) Authorize(ctx context.Context, sess *Session, perm Permission) (*entities.Profile, error) {
	required, ok := policy[perm]
	if !ok {
		return nil, fmt.Errorf("unknown permission %q: %w", perm, entities.ErrForbidden)
	}
	if sess == nil || sess.UserID == "" {
		return nil, fmt.Errorf("%s: %w", perm, entities.ErrUnauthenticated)
	}

	profile, err := a.relationalDB.FindProfileByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, entities.ErrNotFound) {
			return nil, fmt.Errorf("%s: %w", perm, entities.ErrUnauthenticated)
		}
		return nil, fmt.Errorf("looking up profile: %w", err)
	}

	if !profile.Role.AtLeast(required) {
		return nil, fmt.Errorf("%s requires role %s: %w", perm, required, entities.ErrForbidden)
	}
	return profile, nil
}
