package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/watlas/internal/infrastructure/config"
)

func TestStore_UploadAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "images")
	store, err := NewStore(config.StorageConfig{Dir: dir})
	require.NoError(t, err)
	ctx := context.Background()

	url, err := store.Upload(ctx, "alice.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/images/alice.png", url)

	data, err := os.ReadFile(filepath.Join(dir, "alice.png"))
	require.NoError(t, err)
	assert.Equal(t, "png", string(data))

	// Same key overwrites.
	_, err = store.Upload(ctx, "alice.png", []byte("new"), "image/png")
	require.NoError(t, err)
	data, err = os.ReadFile(filepath.Join(dir, "alice.png"))
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))

	require.NoError(t, store.Delete(ctx, "alice.png"))
	_, err = os.Stat(filepath.Join(dir, "alice.png"))
	assert.True(t, os.IsNotExist(err))

	// Deleting again is a no-op.
	require.NoError(t, store.Delete(ctx, "alice.png"))
}

func TestStore_PublicURL(t *testing.T) {
	store, err := NewStore(config.StorageConfig{Dir: t.TempDir(), PublicURL: "https://wiki.example.com/img/"})
	require.NoError(t, err)

	url, err := store.Upload(context.Background(), "castle.jpg", []byte("jpg"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "https://wiki.example.com/img/castle.jpg", url)
}

func TestStore_RejectsPathKeys(t *testing.T) {
	store, err := NewStore(config.StorageConfig{Dir: t.TempDir()})
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../escape.png", "a/b.png"} {
		_, err := store.Upload(context.Background(), key, []byte("x"), "image/png")
		assert.Error(t, err, "key %q", key)
	}
}

func TestNewStore_RequiresDir(t *testing.T) {
	_, err := NewStore(config.StorageConfig{})
	assert.Error(t, err)
}
