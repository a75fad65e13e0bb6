package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ersonp/watlas/internal/domain/entities"
)

const profileColumns = `id, email, password_hash, role, created_at`

func scanProfile(row rowScanner) (*entities.Profile, error) {
	var profile entities.Profile
	var role string
	if err := row.Scan(
		&profile.ID,
		&profile.Email,
		&profile.PasswordHash,
		&role,
		&profile.CreatedAt,
	); err != nil {
		return nil, err
	}
	profile.Role = entities.Role(role)
	return &profile, nil
}

// InsertProfile creates a profile. Fails with ErrConflict on a taken email.
func (r *Repository) InsertProfile(ctx context.Context, profile *entities.Profile) error {
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = timeNow()
	}
	query := `INSERT INTO profiles (id, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		profile.ID,
		entities.NormalizeEmail(profile.Email),
		profile.PasswordHash,
		string(profile.Role),
		profile.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("profile %s: %w", profile.Email, entities.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("inserting profile: %w", err)
	}
	return nil
}

// FindProfileByID finds a profile by user id.
func (r *Repository) FindProfileByID(ctx context.Context, id string) (*entities.Profile, error) {
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE id = ?`
	return r.findProfile(ctx, "profile "+id, query, id)
}

// FindProfileByEmail finds a profile by normalized email.
func (r *Repository) FindProfileByEmail(ctx context.Context, email string) (*entities.Profile, error) {
	email = entities.NormalizeEmail(email)
	query := `SELECT ` + profileColumns + ` FROM profiles WHERE email = ?`
	return r.findProfile(ctx, "profile "+email, query, email)
}

func (r *Repository) findProfile(ctx context.Context, what, query string, args ...any) (*entities.Profile, error) {
	profile, err := scanProfile(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning profile: %w", err)
	}
	return profile, nil
}

// ListProfiles lists profiles ordered by email.
func (r *Repository) ListProfiles(ctx context.Context) ([]entities.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+profileColumns+` FROM profiles ORDER BY email ASC`)
	if err != nil {
		return nil, fmt.Errorf("querying profiles: %w", err)
	}
	defer rows.Close()

	result := []entities.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning profile: %w", err)
		}
		result = append(result, *profile)
	}
	return result, rows.Err()
}

// UpdateRole changes the role of a profile.
func (r *Repository) UpdateRole(ctx context.Context, id string, role entities.Role) error {
	res, err := r.db.ExecContext(ctx, `UPDATE profiles SET role = ? WHERE id = ?`, string(role), id)
	if err != nil {
		return fmt.Errorf("updating role: %w", err)
	}
	return checkAffected(res, "profile", id)
}

// PromoteFirstProfile makes the oldest profile an admin when no admin
// exists. The check and the update run as one statement, so concurrent
// sign-ups cannot produce two admins.
func (r *Repository) PromoteFirstProfile(ctx context.Context) (string, error) {
	query := `
		UPDATE profiles SET role = ?
		WHERE rowid = (SELECT MIN(rowid) FROM profiles)
		  AND NOT EXISTS (SELECT 1 FROM profiles WHERE role = ?)
		RETURNING id
	`
	var id string
	err := r.db.QueryRowContext(ctx, query, string(entities.RoleAdmin), string(entities.RoleAdmin)).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("promoting first profile: %w", err)
	}
	return id, nil
}
