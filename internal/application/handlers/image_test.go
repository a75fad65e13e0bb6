package handlers

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/watlas/internal/domain/entities"
	"github.com/ersonp/watlas/internal/domain/services"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func TestImageHandler_HandleUpload(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addPage(t, "Page One", "Alice", entities.KindCharacter, "")

	page, err := env.app.Images.HandleUpload(ctx, env.editor, "Page One", "character", "portrait.PNG", bytes.NewReader(pngBytes))
	require.NoError(t, err)
	assert.Equal(t, "http://images.test/page-one.png", page.ImageURL)
	assert.Equal(t, "page-one.png", env.images.UploadLastKey)
	assert.Equal(t, "image/png", env.images.UploadLastContentType)
}

func TestImageHandler_HandleUpload_Errors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.addPage(t, "p1", "Alice", entities.KindCharacter, "")

	tooLarge := bytes.NewReader(append(append([]byte{}, pngBytes...), make([]byte, services.MaxImageSize)...))

	tests := []struct {
		name     string
		sess     *services.Session
		kind     string
		filename string
		data     *bytes.Reader
		wantErr  error
	}{
		{name: "viewer", sess: env.viewer, kind: "character", filename: "a.png", data: bytes.NewReader(pngBytes), wantErr: entities.ErrForbidden},
		{name: "bad kind", sess: env.editor, kind: "robot", filename: "a.png", data: bytes.NewReader(pngBytes), wantErr: entities.ErrValidation},
		{name: "bad extension", sess: env.editor, kind: "character", filename: "a.bmp", data: bytes.NewReader(pngBytes), wantErr: entities.ErrValidation},
		{name: "not an image", sess: env.editor, kind: "character", filename: "a.png", data: bytes.NewReader([]byte("plain text")), wantErr: entities.ErrValidation},
		{name: "too large", sess: env.editor, kind: "character", filename: "a.png", data: tooLarge, wantErr: entities.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.app.Images.HandleUpload(ctx, tt.sess, "p1", tt.kind, tt.filename, tt.data)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestImageHandler_HandleUploadFile(t *testing.T) {
	env := newTestEnv(t)
	env.addPage(t, "p1", "Alice", entities.KindCharacter, "")

	path := filepath.Join(t.TempDir(), "alice.png")
	require.NoError(t, os.WriteFile(path, pngBytes, 0644))

	page, err := env.app.Images.HandleUploadFile(context.Background(), env.editor, "p1", "character", path)
	require.NoError(t, err)
	assert.Equal(t, "http://images.test/p1.png", page.ImageURL)

	_, err = env.app.Images.HandleUploadFile(context.Background(), env.editor, "p1", "character", filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
}
