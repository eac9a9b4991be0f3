package filesystem

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlobStore_PutAndDelete(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewBlobStore(dir, "http://localhost:5000/")
	require.NoError(t, err)

	require.NoError(t, store.Put(ctx, "abc", []byte("png-bytes"), "image/png"))
	data, err := os.ReadFile(filepath.Join(dir, "abc"))
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))

	require.NoError(t, store.Delete(ctx, "abc"))
	_, err = os.Stat(filepath.Join(dir, "abc"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, store.Delete(ctx, "abc"), "deleting a missing blob is not an error")
}

func TestBlobStore_URL(t *testing.T) {
	store, err := NewBlobStore(t.TempDir(), "http://localhost:5000/")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/uploads/abc", store.URL("abc"))
	assert.Equal(t, store.basePath, store.BasePath())
}

func TestBlobStore_RejectsPathKeys(t *testing.T) {
	ctx := context.Background()
	store, err := NewBlobStore(t.TempDir(), "http://localhost:5000")
	require.NoError(t, err)

	for _, key := range []string{"", "..", "../escape", "a/b"} {
		assert.Error(t, store.Put(ctx, key, []byte("x"), "image/png"), key)
	}
}
