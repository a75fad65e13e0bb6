package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/ersonp/watlas/internal/domain/entities"
)

const pageColumns = `id, kind, slug, name, canonical, universe, relations, sections, image_url, created_at, updated_at`

// rowScanner is satisfied by *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanPage decodes a pages row. JSON columns are validated here so core
// logic never sees a malformed record.
func scanPage(row rowScanner) (*entities.Page, error) {
	var (
		page                entities.Page
		kind                string
		slug, imageURL      sql.NullString
		relations, sections string
	)
	if err := row.Scan(
		&page.ID,
		&kind,
		&slug,
		&page.Name,
		&page.Canonical,
		&page.Universe,
		&relations,
		&sections,
		&imageURL,
		&page.CreatedAt,
		&page.UpdatedAt,
	); err != nil {
		return nil, err
	}

	page.Kind = entities.Kind(kind)
	page.Slug = slug.String
	page.ImageURL = imageURL.String

	if err := json.Unmarshal([]byte(relations), &page.Relations); err != nil {
		return nil, fmt.Errorf("decoding relations of page %s: %w", page.ID, err)
	}
	if err := json.Unmarshal([]byte(sections), &page.Sections); err != nil {
		return nil, fmt.Errorf("decoding sections of page %s: %w", page.ID, err)
	}
	page.Normalize()
	return &page, nil
}

func encodePage(page *entities.Page) (relations, sections string, err error) {
	rel := page.Relations
	if rel == nil {
		rel = []string{}
	}
	sec := page.Sections
	if sec == nil {
		sec = []entities.Section{}
	}
	relJSON, err := json.Marshal(rel)
	if err != nil {
		return "", "", fmt.Errorf("encoding relations: %w", err)
	}
	secJSON, err := json.Marshal(sec)
	if err != nil {
		return "", "", fmt.Errorf("encoding sections: %w", err)
	}
	return string(relJSON), string(secJSON), nil
}

// ListPages returns every page ordered by name.
func (r *Repository) ListPages(ctx context.Context) ([]entities.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages ORDER BY name ASC, id ASC`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying pages: %w", err)
	}
	defer rows.Close()

	result := []entities.Page{}
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning page: %w", err)
		}
		result = append(result, *page)
	}
	return result, rows.Err()
}

// FindPage looks a page up by its composite (id, kind) key.
func (r *Repository) FindPage(ctx context.Context, id string, kind entities.Kind) (*entities.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = ? AND kind = ?`
	return r.findPage(ctx, fmt.Sprintf("page %s/%s", kind, id), query, id, string(kind))
}

// FindPageByID looks a page up by id alone.
func (r *Repository) FindPageByID(ctx context.Context, id string) (*entities.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE id = ?`
	return r.findPage(ctx, "page "+id, query, id)
}

// FindPageBySlug looks a page up by its slug.
func (r *Repository) FindPageBySlug(ctx context.Context, slug string) (*entities.Page, error) {
	query := `SELECT ` + pageColumns + ` FROM pages WHERE slug = ?`
	return r.findPage(ctx, fmt.Sprintf("page %q", slug), query, slug)
}

func (r *Repository) findPage(ctx context.Context, what, query string, args ...any) (*entities.Page, error) {
	page, err := scanPage(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", what, entities.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("scanning page: %w", err)
	}
	return page, nil
}

// InsertPage creates a page. Fails with ErrConflict if the id or slug exists.
func (r *Repository) InsertPage(ctx context.Context, page *entities.Page) error {
	relations, sections, err := encodePage(page)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pages (id, kind, slug, name, canonical, universe, relations, sections, image_url, schema_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		page.ID,
		string(page.Kind),
		nullString(page.Slug),
		page.Name,
		page.Canonical,
		page.Universe,
		relations,
		sections,
		nullString(page.ImageURL),
		entities.CurrentSchemaVersion,
		page.CreatedAt,
		page.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("page %s: %w", page.ID, entities.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("inserting page: %w", err)
	}
	return nil
}

// UpsertPage replaces the page with the same id, or creates it.
func (r *Repository) UpsertPage(ctx context.Context, page *entities.Page) error {
	relations, sections, err := encodePage(page)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO pages (id, kind, slug, name, canonical, universe, relations, sections, image_url, schema_version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind,
			slug = excluded.slug,
			name = excluded.name,
			canonical = excluded.canonical,
			universe = excluded.universe,
			relations = excluded.relations,
			sections = excluded.sections,
			image_url = excluded.image_url,
			schema_version = excluded.schema_version,
			updated_at = excluded.updated_at
	`
	_, err = r.db.ExecContext(ctx, query,
		page.ID,
		string(page.Kind),
		nullString(page.Slug),
		page.Name,
		page.Canonical,
		page.Universe,
		relations,
		sections,
		nullString(page.ImageURL),
		entities.CurrentSchemaVersion,
		page.CreatedAt,
		page.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("slug %q: %w", page.Slug, entities.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("saving page: %w", err)
	}
	return nil
}

// DeletePage deletes the page matching both id and kind.
func (r *Repository) DeletePage(ctx context.Context, id string, kind entities.Kind) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM pages WHERE id = ? AND kind = ?`, id, string(kind))
	if err != nil {
		return fmt.Errorf("deleting page: %w", err)
	}
	return checkAffected(res, "page", string(kind)+"/"+id)
}

// CountPages returns the total number of pages.
func (r *Repository) CountPages(ctx context.Context) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM pages`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("counting pages: %w", err)
	}
	return count, nil
}
