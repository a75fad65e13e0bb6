package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/mocks"
)

// fixture wires services over an in-memory mock store with one user per role.
type fixture struct {
	db         *mocks.RelationalDB
	authorizer *Authorizer
	viewer     *Session
	editor     *Session
	admin      *Session
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := mocks.NewRelationalDB()
	f := &fixture{db: db, authorizer: NewAuthorizer(db)}
	f.viewer = f.addUser(t, "viewer-1", "viewer@example.com", entities.RoleViewer)
	f.editor = f.addUser(t, "editor-1", "editor@example.com", entities.RoleEditor)
	f.admin = f.addUser(t, "admin-1", "admin@example.com", entities.RoleAdmin)
	return f
}

func (f *fixture) addUser(t *testing.T, id, email string, role entities.Role) *Session {
	t.Helper()
	err := f.db.InsertProfile(context.Background(), &entities.Profile{
		ID:        id,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return &Session{UserID: id, Email: email, Role: role}
}

func (f *fixture) addPage(t *testing.T, p entities.Page) {
	t.Helper()
	p.Normalize()
	require.NoError(t, f.db.UpsertPage(context.Background(), &p))
}

func newPage(id, name string, kind entities.Kind, canonical bool, universe string, relations ...string) entities.Page {
	return entities.Page{
		ID:        id,
		Slug:      id,
		Name:      name,
		Kind:      kind,
		Canonical: canonical,
		Universe:  universe,
		Relations: relations,
	}
}

func strPtr(s string) *string { return &s }

// recordingIndexer is a PageIndexer that remembers calls.
type recordingIndexer struct {
	indexed []string
	removed []string
}

func (r *recordingIndexer) Index(_ context.Context, page *entities.Page) {
	r.indexed = append(r.indexed, page.ID)
}

func (r *recordingIndexer) Remove(_ context.Context, pageID string) {
	r.removed = append(r.removed, pageID)
}
