package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/watlas/internal/domain/entities"
)

func TestCommentService_Post(t *testing.T) {
	f := newFixture(t)
	svc := NewCommentService(f.db, f.authorizer)
	ctx := context.Background()

	tests := []struct {
		name    string
		session *Session
		content string
		wantErr error
	}{
		{"anonymous", nil, "hello", entities.ErrUnauthenticated},
		{"empty", f.viewer, "   ", entities.ErrValidation},
		{"too long", f.viewer, strings.Repeat("é", MaxCommentLength+1), entities.ErrValidation},
		{"viewer posts", f.viewer, "  great wiki  ", nil},
		{"at limit", f.editor, strings.Repeat("é", MaxCommentLength), nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			comment, err := svc.Post(ctx, tt.session, tt.content)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, strings.TrimSpace(tt.content), comment.Content)
			assert.Equal(t, tt.session.UserID, comment.AuthorID)
		})
	}
}

func TestCommentService_ListNewestFirst(t *testing.T) {
	f := newFixture(t)
	svc := NewCommentService(f.db, f.authorizer)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	f.db.Comments["old"] = &entities.Comment{ID: "old", Content: "first", CreatedAt: base}
	f.db.Comments["new"] = &entities.Comment{ID: "new", Content: "second", CreatedAt: base.Add(time.Hour)}

	comments, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "new", comments[0].ID)
}

func TestCommentService_Delete(t *testing.T) {
	f := newFixture(t)
	svc := NewCommentService(f.db, f.authorizer)
	ctx := context.Background()
	f.db.Comments["c1"] = &entities.Comment{ID: "c1", Content: "spam"}

	assert.ErrorIs(t, svc.Delete(ctx, f.editor, "c1"), entities.ErrForbidden)
	require.NoError(t, svc.Delete(ctx, f.admin, "c1"))
	assert.Empty(t, f.db.Comments)
	assert.ErrorIs(t, svc.Delete(ctx, f.admin, "c1"), entities.ErrNotFound)
}
