package services

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/mocks"
)

func newAuthService() (*AuthService, *mocks.RelationalDB) {
	db := mocks.NewRelationalDB()
	return NewAuthService(db, &mocks.TokenIssuer{}, NewAuthorizer(db)), db
}

func TestAuthService_SignUp_FirstUserIsAdmin(t *testing.T) {
	svc, db := newAuthService()
	ctx := context.Background()

	first, err := svc.SignUp(ctx, Credentials{Email: " Owner@Example.com ", Password: "correct horse"})
	require.NoError(t, err)
	assert.Equal(t, entities.RoleAdmin, first.Role)
	assert.Equal(t, "owner@example.com", first.Email)
	assert.NotEqual(t, "correct horse", first.PasswordHash)

	second, err := svc.SignUp(ctx, Credentials{Email: "reader@example.com", Password: "battery staple"})
	require.NoError(t, err)
	assert.Equal(t, entities.RoleViewer, second.Role)

	assert.Equal(t, []string{entities.ActionUserSignUp, entities.ActionUserSignUp}, db.Actions())
}

func TestAuthService_SignUp_ConcurrentFirstUsers(t *testing.T) {
	svc, db := newAuthService()
	ctx := context.Background()

	const n = 6
	results := make([]*entities.Profile, n)
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			creds := Credentials{Email: fmt.Sprintf("user%d@example.com", i), Password: "longenough"}
			results[i], errs[i] = svc.SignUp(ctx, creds)
		}(i)
	}
	wg.Wait()

	admins := 0
	for i := 0; i < n; i++ {
		require.NoError(t, errs[i])
		stored, err := db.FindProfileByID(ctx, results[i].ID)
		require.NoError(t, err)
		assert.Equal(t, stored.Role, results[i].Role, "returned role for %s", results[i].Email)
		if stored.Role == entities.RoleAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)
	assert.Len(t, db.Actions(), n)
}

func TestAuthService_SignUp_Validation(t *testing.T) {
	svc, _ := newAuthService()

	tests := []struct {
		name  string
		creds Credentials
		field string
	}{
		{"missing email", Credentials{Password: "longenough"}, "email"},
		{"bad email", Credentials{Email: "nope", Password: "longenough"}, "email"},
		{"short password", Credentials{Email: "a@example.com", Password: "short"}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(context.Background(), tt.creds)
			require.ErrorIs(t, err, entities.ErrValidation)
			var verr *entities.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, verr.Fields, tt.field)
		})
	}
}

func TestAuthService_SignUp_DuplicateEmail(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, Credentials{Email: "a@example.com", Password: "longenough"})
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, Credentials{Email: "A@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, entities.ErrConflict)
}

func TestAuthService_SignInAndSession(t *testing.T) {
	svc, _ := newAuthService()
	ctx := context.Background()

	profile, err := svc.SignUp(ctx, Credentials{Email: "a@example.com", Password: "longenough"})
	require.NoError(t, err)

	_, err = svc.SignIn(ctx, Credentials{Email: "a@example.com", Password: "wrong-password"})
	assert.ErrorIs(t, err, entities.ErrUnauthenticated)

	_, err = svc.SignIn(ctx, Credentials{Email: "nobody@example.com", Password: "longenough"})
	assert.ErrorIs(t, err, entities.ErrUnauthenticated)

	res, err := svc.SignIn(ctx, Credentials{Email: "A@Example.com", Password: "longenough"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)
	assert.Equal(t, profile.ID, res.Session.UserID)

	sess, err := svc.Session(ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, profile.ID, sess.UserID)
	assert.Equal(t, entities.RoleAdmin, sess.Role)

	_, err = svc.Session(ctx, "")
	assert.ErrorIs(t, err, entities.ErrUnauthenticated)
	_, err = svc.Session(ctx, "garbage")
	assert.ErrorIs(t, err, entities.ErrUnauthenticated)
}

func TestAuthService_Session_ReflectsRoleChanges(t *testing.T) {
	svc, db := newAuthService()
	ctx := context.Background()

	db.Profiles["u1"] = &entities.Profile{ID: "u1", Email: "u1@example.com", Role: entities.RoleViewer}
	token, _, err := (&mocks.TokenIssuer{}).Issue("u1", "u1@example.com")
	require.NoError(t, err)

	require.NoError(t, db.UpdateRole(ctx, "u1", entities.RoleEditor))
	sess, err := svc.Session(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleEditor, sess.Role)

	delete(db.Profiles, "u1")
	_, err = svc.Session(ctx, token)
	assert.ErrorIs(t, err, entities.ErrUnauthenticated)
}

func TestAuthService_SignOut(t *testing.T) {
	svc, db := newAuthService()

	assert.ErrorIs(t, svc.SignOut(context.Background(), nil), entities.ErrUnauthenticated)
	require.NoError(t, svc.SignOut(context.Background(), &Session{UserID: "u1"}))
	assert.Equal(t, []string{entities.ActionUserSignOut}, db.Actions())
}

func TestAuthService_SetRole(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.db, &mocks.TokenIssuer{}, f.authorizer)
	ctx := context.Background()

	t.Run("editor cannot change roles", func(t *testing.T) {
		_, err := svc.SetRole(ctx, f.editor, f.viewer.UserID, entities.RoleEditor)
		assert.ErrorIs(t, err, entities.ErrForbidden)
	})

	t.Run("admin promotes viewer", func(t *testing.T) {
		updated, err := svc.SetRole(ctx, f.admin, f.viewer.UserID, entities.RoleEditor)
		require.NoError(t, err)
		assert.Equal(t, entities.RoleEditor, updated.Role)
		assert.Equal(t, entities.RoleEditor, f.db.Profiles[f.viewer.UserID].Role)

		entries, err := f.db.FindAuditLog(ctx, f.viewer.UserID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "viewer", entries[0].Details["from"])
	})

	t.Run("admin cannot demote self", func(t *testing.T) {
		_, err := svc.SetRole(ctx, f.admin, f.admin.UserID, entities.RoleViewer)
		assert.ErrorIs(t, err, entities.ErrForbidden)
		assert.Equal(t, entities.RoleAdmin, f.db.Profiles[f.admin.UserID].Role)
	})

	t.Run("role name is normalized before storing", func(t *testing.T) {
		updated, err := svc.SetRole(ctx, f.admin, f.editor.UserID, entities.Role(" Viewer "))
		require.NoError(t, err)
		assert.Equal(t, entities.RoleViewer, updated.Role)
		assert.Equal(t, entities.RoleViewer, f.db.Profiles[f.editor.UserID].Role)

		entries, err := f.db.FindAuditLog(ctx, f.editor.UserID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, "viewer", entries[0].Details["to"])
	})

	t.Run("admin keeps admin with mixed case", func(t *testing.T) {
		updated, err := svc.SetRole(ctx, f.admin, f.admin.UserID, entities.Role("ADMIN"))
		require.NoError(t, err)
		assert.Equal(t, entities.RoleAdmin, updated.Role)
		assert.Equal(t, entities.RoleAdmin, f.db.Profiles[f.admin.UserID].Role)
	})

	t.Run("invalid role", func(t *testing.T) {
		_, err := svc.SetRole(ctx, f.admin, f.viewer.UserID, entities.Role("owner"))
		assert.ErrorIs(t, err, entities.ErrValidation)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := svc.SetRole(ctx, f.admin, "missing", entities.RoleEditor)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}

func TestAuthService_ListUsers(t *testing.T) {
	f := newFixture(t)
	svc := NewAuthService(f.db, &mocks.TokenIssuer{}, f.authorizer)

	_, err := svc.ListUsers(context.Background(), f.editor)
	assert.ErrorIs(t, err, entities.ErrForbidden)

	users, err := svc.ListUsers(context.Background(), f.admin)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "admin@example.com", users[0].Email)
}
