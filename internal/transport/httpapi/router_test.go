package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/watlas/internal/application/handlers"
	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/graph"
	"github.com/ersonp/watlas/internal/domain/mocks"
)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *Error          `json:"error"`
}

type testServer struct {
	srv    *Server
	db     *mocks.RelationalDB
	images *mocks.ImageStore
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := mocks.NewRelationalDB()
	images := mocks.NewImageStore()
	app := handlers.NewApp(handlers.Ports{
		RelationalDB: db,
		Tokens:       &mocks.TokenIssuer{},
		Images:       images,
	})
	srv := NewServer(app, Options{
		Mode:         gin.TestMode,
		DefaultScope: graph.Scope{Canonical: true},
		Universes:    func() []string { return []string{"Registered"} },
	})
	return &testServer{srv: srv, db: db, images: images}
}

// user inserts a profile and returns its bearer token.
func (ts *testServer) user(t *testing.T, id string, role entities.Role) string {
	t.Helper()
	email := id + "@example.com"
	err := ts.db.InsertProfile(context.Background(), &entities.Profile{
		ID:        id,
		Email:     email,
		Role:      role,
		CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	return "token:" + id + ":" + email
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return ts.send(t, req, token)
}

func (ts *testServer) upload(t *testing.T, path, token, field, filename string, content []byte) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return ts.send(t, req, token)
}

func (ts *testServer) send(t *testing.T, req *http.Request, token string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	ts.srv.Handler().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (ts *testServer) createPage(t *testing.T, token string, in handlers.PageInput) entities.Page {
	t.Helper()
	rec, env := ts.do(t, http.MethodPost, "/api/v1/pages", token, in)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var page entities.Page
	require.NoError(t, json.Unmarshal(env.Data, &page))
	return page
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/health", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
	assert.JSONEq(t, `{"status":"ok","search":false,"pages":0}`, string(env.Data))

	ts.createPage(t, ts.user(t, "ed", entities.RoleEditor), handlers.PageInput{Name: "Alice", Kind: "character"})
	_, env = ts.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.JSONEq(t, `{"status":"ok","search":false,"pages":1}`, string(env.Data))
}

func TestAuthRoutes(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/auth/signup", "", map[string]string{
		"email":    "First@Example.com",
		"password": "correct horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var signIn struct {
		Token   string `json:"token"`
		Session struct {
			Email string        `json:"email"`
			Role  entities.Role `json:"role"`
		} `json:"session"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &signIn))
	assert.Equal(t, "first@example.com", signIn.Session.Email)
	assert.Equal(t, entities.RoleAdmin, signIn.Session.Role)

	rec, env = ts.do(t, http.MethodGet, "/api/v1/auth/session", signIn.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "first@example.com")

	rec, env = ts.do(t, http.MethodPost, "/api/v1/auth/signin", "", map[string]string{
		"email":    "first@example.com",
		"password": "wrong password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, CodeUnauthenticated, env.Error.Code)

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/auth/signout", signIn.Token, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthenticate(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"anonymous", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", http.StatusUnauthorized},
		{"bad token", "Bearer nonsense", http.StatusUnauthorized},
		{"unknown user", "Bearer token:ghost:ghost@example.com", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/session", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec, env := ts.send(t, req, "")
			assert.Equal(t, tt.want, rec.Code)
			assert.False(t, env.Success)
		})
	}
}

func TestPageRoutes(t *testing.T) {
	ts := newTestServer(t)
	editor := ts.user(t, "editor-1", entities.RoleEditor)
	viewer := ts.user(t, "viewer-1", entities.RoleViewer)

	alice := ts.createPage(t, editor, handlers.PageInput{Name: "Alice", Kind: "character", Universe: "Prime"})
	castle := ts.createPage(t, editor, handlers.PageInput{Name: "Castle", Kind: "lieu", Universe: "Prime"})
	assert.Equal(t, entities.KindPlace, castle.Kind)
	assert.True(t, alice.Canonical)

	t.Run("list without universe is unselected", func(t *testing.T) {
		rec, env := ts.do(t, http.MethodGet, "/api/v1/pages", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var result handlers.PageListResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.False(t, result.Selected)
		assert.Empty(t, result.Pages)
	})

	t.Run("list in universe", func(t *testing.T) {
		rec, env := ts.do(t, http.MethodGet, "/api/v1/pages?universe=Prime&kind=character", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var result handlers.PageListResult
		require.NoError(t, json.Unmarshal(env.Data, &result))
		assert.True(t, result.Selected)
		require.Len(t, result.Pages, 1)
		assert.Equal(t, "Alice", result.Pages[0].Name)
	})

	t.Run("relate then show", func(t *testing.T) {
		rec, _ := ts.do(t, http.MethodPost, "/api/v1/pages/character/"+alice.ID+"/relations?universe=Prime", editor,
			map[string]string{"target": "castle"})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		rec, env := ts.do(t, http.MethodGet, "/api/v1/pages/place/"+castle.ID+"?universe=Prime", "", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var detail struct {
			Inbound []entities.Page `json:"inbound"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &detail))
		require.Len(t, detail.Inbound, 1)
		assert.Equal(t, alice.ID, detail.Inbound[0].ID)
	})

	t.Run("update", func(t *testing.T) {
		rec, env := ts.do(t, http.MethodPut, "/api/v1/pages/character/"+alice.ID, editor,
			handlers.PageInput{Name: "Alice Liddell", Universe: "Prime", Canonical: boolPtr(false)})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var page entities.Page
		require.NoError(t, json.Unmarshal(env.Data, &page))
		assert.Equal(t, "Alice Liddell", page.Name)
		assert.False(t, page.Canonical)
	})

	t.Run("errors", func(t *testing.T) {
		rec, env := ts.do(t, http.MethodPost, "/api/v1/pages", editor, handlers.PageInput{Name: "X", Kind: "robot"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeValidation, env.Error.Code)
		assert.Contains(t, string(mustJSON(t, env.Error.Details)), "kind")

		rec, _ = ts.do(t, http.MethodPost, "/api/v1/pages", "", handlers.PageInput{Name: "X", Kind: "object"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		rec, _ = ts.do(t, http.MethodPost, "/api/v1/pages", viewer, handlers.PageInput{Name: "X", Kind: "object"})
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec, _ = ts.do(t, http.MethodGet, "/api/v1/pages/character/missing?universe=Prime", "", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec, _ = ts.do(t, http.MethodPut, "/api/v1/pages/place/"+alice.ID, editor,
			handlers.PageInput{Name: "Wonderland", Kind: "place"})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec, _ = ts.do(t, http.MethodPut, "/api/v1/pages/character/client-chosen", editor,
			handlers.PageInput{Name: "Bob"})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec, _ = ts.do(t, http.MethodGet, "/api/v1/pages?canonical=maybe", "", nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/pages", strings.NewReader("{broken"))
		req.Header.Set("Content-Type", "application/json")
		rec, env = ts.send(t, req, editor)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, CodeBadRequest, env.Error.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rec, _ := ts.do(t, http.MethodDelete, "/api/v1/pages/place/"+castle.ID, editor, nil)
		assert.Equal(t, http.StatusOK, rec.Code)

		rec, _ = ts.do(t, http.MethodDelete, "/api/v1/pages/place/"+castle.ID, editor, nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestImageUpload(t *testing.T) {
	ts := newTestServer(t)
	editor := ts.user(t, "editor-1", entities.RoleEditor)
	page := ts.createPage(t, editor, handlers.PageInput{Name: "Alice", Kind: "character"})

	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	rec, env := ts.upload(t, "/api/v1/pages/character/"+page.ID+"/image", editor, "image", "alice.png", png)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var updated entities.Page
	require.NoError(t, json.Unmarshal(env.Data, &updated))
	assert.Equal(t, "http://images.test/"+page.ID+".png", updated.ImageURL)

	rec, _ = ts.upload(t, "/api/v1/pages/character/"+page.ID+"/image", editor, "image", "notes.txt", []byte("hello"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = ts.upload(t, "/api/v1/pages/character/"+page.ID+"/image", editor, "other", "alice.png", png)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReferenceRoutes(t *testing.T) {
	ts := newTestServer(t)
	editor := ts.user(t, "editor-1", entities.RoleEditor)
	ts.createPage(t, editor, handlers.PageInput{Name: "Alice", Kind: "character", Universe: "Prime"})

	rec, env := ts.do(t, http.MethodGet, "/api/v1/universes", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `["Prime","Registered"]`, string(env.Data))

	rec, env = ts.do(t, http.MethodGet, "/api/v1/section-titles", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var titles []string
	require.NoError(t, json.Unmarshal(env.Data, &titles))
	assert.Equal(t, entities.SectionTitleSuggestions, titles)

	rec, env = ts.do(t, http.MethodGet, "/api/v1/timeline?all=true", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), `"selected":true`)
}

func TestCommentRoutes(t *testing.T) {
	ts := newTestServer(t)
	viewer := ts.user(t, "viewer-1", entities.RoleViewer)
	admin := ts.user(t, "admin-1", entities.RoleAdmin)

	rec, env := ts.do(t, http.MethodPost, "/api/v1/comments", viewer, map[string]string{"content": "Lovely wiki"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var comment entities.Comment
	require.NoError(t, json.Unmarshal(env.Data, &comment))

	rec, env = ts.do(t, http.MethodGet, "/api/v1/comments", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(env.Data), "Lovely wiki")

	rec, _ = ts.do(t, http.MethodDelete, "/api/v1/comments/"+comment.ID, viewer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec, _ = ts.do(t, http.MethodDelete, "/api/v1/comments/"+comment.ID, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestBackupRoutes(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.user(t, "admin-1", entities.RoleAdmin)
	ts.createPage(t, admin, handlers.PageInput{Name: "Alice", Kind: "character", Universe: "Prime"})

	rec, env := ts.do(t, http.MethodPost, "/api/v1/backups", admin, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var info handlers.BackupInfo
	require.NoError(t, json.Unmarshal(env.Data, &info))
	assert.Equal(t, 1, info.Pages)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/backups/"+info.ID+"/download", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	assert.Contains(t, rec.Body.String(), "Alice")

	rec, env = ts.do(t, http.MethodPost, "/api/v1/backups/"+info.ID+"/restore?on_conflict=bogus", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, CodeValidation, env.Error.Code)

	rec, _ = ts.do(t, http.MethodPost, "/api/v1/backups/"+info.ID+"/restore?on_conflict=overwrite", admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(t, http.MethodDelete, "/api/v1/backups/"+info.ID, admin, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/backups", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutes(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.user(t, "admin-1", entities.RoleAdmin)
	ts.user(t, "viewer-1", entities.RoleViewer)

	rec, env := ts.do(t, http.MethodPut, "/api/v1/admin/users/viewer-1/role", admin, map[string]string{"role": "editor"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, string(env.Data), `"editor"`)

	rec, _ = ts.do(t, http.MethodPut, "/api/v1/admin/users/viewer-1/role", admin, map[string]string{"role": "king"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env = ts.do(t, http.MethodGet, "/api/v1/admin/users", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var users []entities.Profile
	require.NoError(t, json.Unmarshal(env.Data, &users))
	assert.Len(t, users, 2)

	rec, env = ts.do(t, http.MethodGet, "/api/v1/admin/audit?target=viewer-1", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var history handlers.AuditResult
	require.NoError(t, json.Unmarshal(env.Data, &history))
	require.Equal(t, 1, history.Total)
	assert.Equal(t, entities.ActionUserRole, history.Entries[0].Action)
	assert.Equal(t, "admin-1", history.Entries[0].ActorID)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/admin/audit", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/admin/audit?action=user.role&limit=x", admin, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	viewer := "token:viewer-1:viewer-1@example.com"
	rec, _ = ts.do(t, http.MethodGet, "/api/v1/admin/audit?target=viewer-1", viewer, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestExportImportRoutes(t *testing.T) {
	ts := newTestServer(t)
	admin := ts.user(t, "admin-1", entities.RoleAdmin)
	ts.createPage(t, admin, handlers.PageInput{Name: "Alice", Kind: "character", Universe: "Prime"})

	rec, _ := ts.do(t, http.MethodGet, "/api/v1/export?format=csv", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "text/csv"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "id,slug,name,kind"))

	rec, _ = ts.do(t, http.MethodGet, "/api/v1/export?format=xml", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, env := ts.upload(t, "/api/v1/import?dry_run=true", admin, "file", "pages.json",
		[]byte(`[{"name": "Sword", "kind": "object"}]`))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var result handlers.ImportResult
	require.NoError(t, json.Unmarshal(env.Data, &result))
	assert.True(t, result.DryRun)
	assert.Equal(t, 1, result.Imported)

	rec, _ = ts.upload(t, "/api/v1/import", admin, "file", "pages.txt", []byte("x"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSearchDisabled(t *testing.T) {
	ts := newTestServer(t)

	rec, env := ts.do(t, http.MethodGet, "/api/v1/search?q=hero&universe=Prime", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, CodeSearchDisabled, env.Error.Code)
}

func TestSearch(t *testing.T) {
	db := mocks.NewRelationalDB()
	vectors := mocks.NewVectorDB()
	app := handlers.NewApp(handlers.Ports{
		RelationalDB: db,
		Tokens:       &mocks.TokenIssuer{},
		Embedder:     &mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2, 0.3}},
		VectorDB:     vectors,
		VectorSize:   3,
	})
	srv := NewServer(app, Options{Mode: gin.TestMode})

	page := entities.Page{ID: "p1", Slug: "alice", Name: "Alice", Kind: entities.KindCharacter, Canonical: true, Universe: "Prime"}
	require.NoError(t, db.UpsertPage(context.Background(), &page))
	vectors.Hits = nil

	req := httptest.NewRequest(http.MethodGet, "/api/v1/search?q=hero&universe=Prime&limit=abc", nil)
	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/search?q=hero&universe=Prime", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"selected":true`)

	require.NoError(t, db.InsertProfile(context.Background(), &entities.Profile{
		ID: "ed", Email: "ed@example.com", Role: entities.RoleEditor, CreatedAt: time.Now(),
	}))
	reindex := func(query string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/search/reindex"+query, nil)
		req.Header.Set("Authorization", "Bearer token:ed:ed@example.com")
		rec := httptest.NewRecorder()
		srv.Handler().ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusBadRequest, reindex("?recreate=maybe").Code)
	// No collection manager is configured, so there is nothing to recreate.
	assert.Equal(t, http.StatusBadRequest, reindex("?recreate=true").Code)

	rec = reindex("")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"pages":1`)
	assert.Contains(t, rec.Body.String(), `"indexed":1`)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/health", nil)
	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, req)
	assert.Contains(t, rec.Body.String(), `"search":true`)
	assert.Contains(t, rec.Body.String(), `"indexed":1`)
}

func mustJSON(t *testing.T, v any) []byte {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return data
}

func boolPtr(b bool) *bool { return &b }
