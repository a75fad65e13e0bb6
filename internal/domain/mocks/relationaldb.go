package mocks

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/ersonp/watlas/internal/domain/entities"
)

// RelationalDB is an in-memory mock implementation of ports.RelationalDB.
// Methods are safe for concurrent use; fields are not.
type RelationalDB struct {
	mu sync.Mutex

	Pages    map[string]*entities.Page
	Profiles map[string]*entities.Profile
	Comments map[string]*entities.Comment
	Backups  map[string]*entities.Backup
	Audit    []entities.AuditEntry
	Err      error

	// Fine-grained errors
	ListPagesErr  error
	UpsertPageErr error
	LogActionErr  error

	// Call tracking
	UpsertPageCallCount int
	DeletePageCallCount int
}

// NewRelationalDB creates a new mock RelationalDB.
func NewRelationalDB() *RelationalDB {
	return &RelationalDB{
		Pages:    make(map[string]*entities.Page),
		Profiles: make(map[string]*entities.Profile),
		Comments: make(map[string]*entities.Comment),
		Backups:  make(map[string]*entities.Backup),
	}
}

// EnsureSchema creates the database schema if it doesn't exist.
func (m *RelationalDB) EnsureSchema(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Err
}

// Close closes the database connection.
func (m *RelationalDB) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return nil
}

// Page methods.

// ListPages returns every page ordered by name.
func (m *RelationalDB) ListPages(_ context.Context) ([]entities.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.ListPagesErr != nil {
		return nil, m.ListPagesErr
	}
	result := make([]entities.Page, 0, len(m.Pages))
	for _, p := range m.Pages {
		result = append(result, p.Clone())
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// FindPage looks a page up by id and kind.
func (m *RelationalDB) FindPage(_ context.Context, id string, kind entities.Kind) (*entities.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Pages[id]
	if !ok || p.Kind != kind {
		return nil, fmt.Errorf("page %s/%s: %w", kind, id, entities.ErrNotFound)
	}
	c := p.Clone()
	return &c, nil
}

// FindPageByID looks a page up by id.
func (m *RelationalDB) FindPageByID(_ context.Context, id string) (*entities.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Pages[id]
	if !ok {
		return nil, fmt.Errorf("page %s: %w", id, entities.ErrNotFound)
	}
	c := p.Clone()
	return &c, nil
}

// FindPageBySlug looks a page up by slug.
func (m *RelationalDB) FindPageBySlug(_ context.Context, slug string) (*entities.Page, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Pages {
		if p.Slug == slug {
			c := p.Clone()
			return &c, nil
		}
	}
	return nil, fmt.Errorf("page %q: %w", slug, entities.ErrNotFound)
}

// InsertPage creates a page.
func (m *RelationalDB) InsertPage(_ context.Context, page *entities.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Pages[page.ID]; ok {
		return fmt.Errorf("page %s: %w", page.ID, entities.ErrConflict)
	}
	if page.Slug != "" {
		for _, p := range m.Pages {
			if p.Slug == page.Slug {
				return fmt.Errorf("slug %q: %w", page.Slug, entities.ErrConflict)
			}
		}
	}
	c := page.Clone()
	m.Pages[page.ID] = &c
	return nil
}

// UpsertPage replaces or creates a page.
func (m *RelationalDB) UpsertPage(_ context.Context, page *entities.Page) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpsertPageCallCount++
	if m.Err != nil {
		return m.Err
	}
	if m.UpsertPageErr != nil {
		return m.UpsertPageErr
	}
	c := page.Clone()
	m.Pages[page.ID] = &c
	return nil
}

// DeletePage deletes the page matching id and kind.
func (m *RelationalDB) DeletePage(_ context.Context, id string, kind entities.Kind) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.DeletePageCallCount++
	if m.Err != nil {
		return m.Err
	}
	p, ok := m.Pages[id]
	if !ok || p.Kind != kind {
		return fmt.Errorf("page %s/%s: %w", kind, id, entities.ErrNotFound)
	}
	delete(m.Pages, id)
	return nil
}

// CountPages returns the number of pages.
func (m *RelationalDB) CountPages(_ context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return len(m.Pages), nil
}

// Profile methods.

// InsertProfile creates a profile.
func (m *RelationalDB) InsertProfile(_ context.Context, profile *entities.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	for _, p := range m.Profiles {
		if p.Email == profile.Email {
			return fmt.Errorf("email %q: %w", profile.Email, entities.ErrConflict)
		}
	}
	c := *profile
	m.Profiles[profile.ID] = &c
	return nil
}

// FindProfileByID finds a profile by id.
func (m *RelationalDB) FindProfileByID(_ context.Context, id string) (*entities.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	p, ok := m.Profiles[id]
	if !ok {
		return nil, fmt.Errorf("profile %s: %w", id, entities.ErrNotFound)
	}
	c := *p
	return &c, nil
}

// FindProfileByEmail finds a profile by email.
func (m *RelationalDB) FindProfileByEmail(_ context.Context, email string) (*entities.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Profiles {
		if p.Email == email {
			c := *p
			return &c, nil
		}
	}
	return nil, fmt.Errorf("profile %q: %w", email, entities.ErrNotFound)
}

// ListProfiles lists profiles ordered by email.
func (m *RelationalDB) ListProfiles(_ context.Context) ([]entities.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.Profile, 0, len(m.Profiles))
	for _, p := range m.Profiles {
		result = append(result, *p)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Email < result[j].Email
	})
	return result, nil
}

// UpdateRole changes the role of a profile.
func (m *RelationalDB) UpdateRole(_ context.Context, id string, role entities.Role) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	p, ok := m.Profiles[id]
	if !ok {
		return fmt.Errorf("profile %s: %w", id, entities.ErrNotFound)
	}
	p.Role = role
	return nil
}

// PromoteFirstProfile makes the oldest profile an admin when there is no admin.
func (m *RelationalDB) PromoteFirstProfile(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return "", m.Err
	}
	var first *entities.Profile
	for _, p := range m.Profiles {
		if p.Role == entities.RoleAdmin {
			return "", nil
		}
		if first == nil || p.CreatedAt.Before(first.CreatedAt) ||
			(p.CreatedAt.Equal(first.CreatedAt) && p.ID < first.ID) {
			first = p
		}
	}
	if first == nil {
		return "", nil
	}
	first.Role = entities.RoleAdmin
	return first.ID, nil
}

// Comment methods.

// InsertComment stores a comment.
func (m *RelationalDB) InsertComment(_ context.Context, comment *entities.Comment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	c := *comment
	m.Comments[comment.ID] = &c
	return nil
}

// ListComments lists comments, newest first.
func (m *RelationalDB) ListComments(_ context.Context) ([]entities.Comment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.Comment, 0, len(m.Comments))
	for _, c := range m.Comments {
		result = append(result, *c)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// DeleteComment deletes a comment.
func (m *RelationalDB) DeleteComment(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Comments[id]; !ok {
		return fmt.Errorf("comment %s: %w", id, entities.ErrNotFound)
	}
	delete(m.Comments, id)
	return nil
}

// Backup methods.

// InsertBackup stores a backup.
func (m *RelationalDB) InsertBackup(_ context.Context, backup *entities.Backup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	c := *backup
	m.Backups[backup.ID] = &c
	return nil
}

// ListBackups lists backups, newest first.
func (m *RelationalDB) ListBackups(_ context.Context) ([]entities.Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	result := make([]entities.Backup, 0, len(m.Backups))
	for _, b := range m.Backups {
		result = append(result, *b)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	return result, nil
}

// FindBackup finds a backup by id.
func (m *RelationalDB) FindBackup(_ context.Context, id string) (*entities.Backup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	b, ok := m.Backups[id]
	if !ok {
		return nil, fmt.Errorf("backup %s: %w", id, entities.ErrNotFound)
	}
	c := *b
	return &c, nil
}

// DeleteBackup deletes a backup.
func (m *RelationalDB) DeleteBackup(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	if _, ok := m.Backups[id]; !ok {
		return fmt.Errorf("backup %s: %w", id, entities.ErrNotFound)
	}
	delete(m.Backups, id)
	return nil
}

// Audit methods.

// LogAction records an audit entry.
func (m *RelationalDB) LogAction(_ context.Context, entry entities.AuditEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LogActionErr != nil {
		return m.LogActionErr
	}
	entry.ID = int64(len(m.Audit) + 1)
	m.Audit = append(m.Audit, entry)
	return nil
}

// FindAuditLog finds audit entries about a target, newest first.
func (m *RelationalDB) FindAuditLog(_ context.Context, targetID string) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0; i-- {
		if m.Audit[i].TargetID == targetID {
			result = append(result, m.Audit[i])
		}
	}
	return result, nil
}

// FindAuditLogByAction finds audit entries by action, newest first.
func (m *RelationalDB) FindAuditLogByAction(_ context.Context, action string, limit int) ([]entities.AuditEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var result []entities.AuditEntry
	for i := len(m.Audit) - 1; i >= 0; i-- {
		if m.Audit[i].Action == action {
			result = append(result, m.Audit[i])
			if limit > 0 && len(result) == limit {
				break
			}
		}
	}
	return result, nil
}

// Actions returns the recorded audit actions in order.
func (m *RelationalDB) Actions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.Audit))
	for i := range m.Audit {
		out[i] = m.Audit[i].Action
	}
	return out
}
