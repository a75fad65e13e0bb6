package handlers

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/mocks"
	"github.com/ersonp/watlas/internal/domain/services"
)

// testEnv wires an App over mocks with one signed-in user per role.
type testEnv struct {
	app         *App
	db          *mocks.RelationalDB
	vectors     *mocks.VectorDB
	embedder    *mocks.Embedder
	collections *mocks.CollectionManager
	images      *mocks.ImageStore
	viewer      *services.Session
	editor      *services.Session
	admin       *services.Session
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		db:          mocks.NewRelationalDB(),
		vectors:     mocks.NewVectorDB(),
		embedder:    &mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2, 0.3}},
		collections: &mocks.CollectionManager{},
		images:      mocks.NewImageStore(),
	}
	env.app = NewApp(Ports{
		RelationalDB: env.db,
		Tokens:       &mocks.TokenIssuer{},
		Images:       env.images,
		Embedder:     env.embedder,
		VectorDB:     env.vectors,
		Collections:  env.collections,
		VectorSize:   3,
	})
	env.viewer = env.addUser(t, "viewer-1", "viewer@example.com", entities.RoleViewer)
	env.editor = env.addUser(t, "editor-1", "editor@example.com", entities.RoleEditor)
	env.admin = env.addUser(t, "admin-1", "admin@example.com", entities.RoleAdmin)
	return env
}

func (e *testEnv) addUser(t *testing.T, id, email string, role entities.Role) *services.Session {
	t.Helper()
	err := e.db.InsertProfile(context.Background(), &entities.Profile{
		ID:        id,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return &services.Session{UserID: id, Email: email, Role: role}
}

func (e *testEnv) addPage(t *testing.T, id, name string, kind entities.Kind, universe string, relations ...string) {
	t.Helper()
	p := entities.Page{
		ID:        id,
		Slug:      entities.Slugify(name),
		Name:      name,
		Kind:      kind,
		Canonical: true,
		Universe:  universe,
		Relations: relations,
	}
	p.Normalize()
	require.NoError(t, e.db.UpsertPage(context.Background(), &p))
}

func allUniverses() graph.Scope {
	return graph.NewScope(true, graph.AllUniverses)
}

func boolPtr(b bool) *bool { return &b }
