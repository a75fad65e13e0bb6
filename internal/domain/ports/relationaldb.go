package ports

import (
	"context"

	"github.com/ersonp/watlas/internal/domain/entities"
)

// RelationalDB is the entity store plus the tables that surround it
// (profiles, comments, backups, audit log).
//
// Point lookups return an error wrapping entities.ErrNotFound when nothing
// matches. Any other error is a store failure.
type RelationalDB interface {
	// EnsureSchema creates the database schema if it doesn't exist.
	EnsureSchema(ctx context.Context) error

	// Close closes the database connection.
	Close() error

	// Page operations

	// ListPages returns every page ordered by name. No pagination.
	ListPages(ctx context.Context) ([]entities.Page, error)

	// FindPage looks a page up by its composite (id, kind) key.
	FindPage(ctx context.Context, id string, kind entities.Kind) (*entities.Page, error)

	// FindPageByID looks a page up by id alone.
	FindPageByID(ctx context.Context, id string) (*entities.Page, error)

	// FindPageBySlug looks a page up by its slug.
	FindPageBySlug(ctx context.Context, slug string) (*entities.Page, error)

	// InsertPage creates a page. Fails with entities.ErrConflict if the id exists.
	InsertPage(ctx context.Context, page *entities.Page) error

	// UpsertPage replaces the page with the same id, or creates it.
	UpsertPage(ctx context.Context, page *entities.Page) error

	// DeletePage deletes the page matching both id and kind.
	DeletePage(ctx context.Context, id string, kind entities.Kind) error

	// CountPages returns the total number of pages.
	CountPages(ctx context.Context) (int, error)

	// Profile operations

	// InsertProfile creates a profile. Fails with entities.ErrConflict on a taken email.
	InsertProfile(ctx context.Context, profile *entities.Profile) error

	// FindProfileByID finds a profile by user id.
	FindProfileByID(ctx context.Context, id string) (*entities.Profile, error)

	// FindProfileByEmail finds a profile by normalized email.
	FindProfileByEmail(ctx context.Context, email string) (*entities.Profile, error)

	// ListProfiles lists profiles ordered by email.
	ListProfiles(ctx context.Context) ([]entities.Profile, error)

	// UpdateRole changes the role of a profile.
	UpdateRole(ctx context.Context, id string, role entities.Role) error

	// PromoteFirstProfile atomically makes the oldest profile an admin when
	// no admin exists. It returns the promoted id, or "" when an admin
	// already exists.
	PromoteFirstProfile(ctx context.Context) (string, error)

	// Comment operations

	// InsertComment stores a new comment.
	InsertComment(ctx context.Context, comment *entities.Comment) error

	// ListComments lists comments, newest first.
	ListComments(ctx context.Context) ([]entities.Comment, error)

	// DeleteComment deletes a comment by id.
	DeleteComment(ctx context.Context, id string) error

	// Backup operations

	// InsertBackup stores a snapshot.
	InsertBackup(ctx context.Context, backup *entities.Backup) error

	// ListBackups lists backups, newest first.
	ListBackups(ctx context.Context) ([]entities.Backup, error)

	// FindBackup finds a backup by id.
	FindBackup(ctx context.Context, id string) (*entities.Backup, error)

	// DeleteBackup deletes a backup by id.
	DeleteBackup(ctx context.Context, id string) error

	// Audit log

	// LogAction records an action in the audit log.
	LogAction(ctx context.Context, entry entities.AuditEntry) error

	// FindAuditLog finds audit entries about a target, newest first.
	FindAuditLog(ctx context.Context, targetID string) ([]entities.AuditEntry, error)

	// FindAuditLogByAction finds audit entries by action, newest first.
	FindAuditLogByAction(ctx context.Context, action string, limit int) ([]entities.AuditEntry, error)
}
