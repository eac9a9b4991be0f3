package media

import (
	"context"
	"drawshare/core"
	"drawshare/stores/memory"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

type failingBlobs struct {
	*memory.BlobStore
	err error
}

func (f failingBlobs) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return f.err
}

func (f failingBlobs) Delete(ctx context.Context, key string) error {
	return f.err
}

func TestNewKey(t *testing.T) {
	a, err := NewKey()
	require.NoError(t, err)
	b, err := NewKey()
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)
}

func TestKeyFromURL(t *testing.T) {
	assert.Equal(t, "abc", KeyFromURL("http://localhost:5000/uploads/abc"))
	assert.Equal(t, "abc", KeyFromURL("https://bucket.s3.eu-west-1.amazonaws.com/abc?x=1"))
	assert.Equal(t, "abc", KeyFromURL("uploads/abc"))
	assert.Empty(t, KeyFromURL(""))
}

func TestUpload(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewBlobStore("http://localhost:5000")
	c := NewCoordinator(blobs)

	url, err := c.Upload(ctx, &core.Image{Data: pngHeader, Filename: "pig.png"})
	require.NoError(t, err)

	key := KeyFromURL(url)
	assert.Equal(t, "http://localhost:5000/uploads/"+key, url)
	data, contentType, ok := blobs.Get(key)
	require.True(t, ok)
	assert.Equal(t, pngHeader, data)
	assert.Equal(t, "image/png", contentType)
}

func TestUpload_Rejects(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewBlobStore("http://localhost:5000")
	c := NewCoordinator(blobs)

	_, err := c.Upload(ctx, nil)
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = c.Upload(ctx, &core.Image{})
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = c.Upload(ctx, &core.Image{Data: []byte("plain text, not a picture")})
	assert.ErrorIs(t, err, core.ErrValidation)
	assert.Equal(t, 0, blobs.Len())
}

func TestUpload_StoreFailure(t *testing.T) {
	boom := errors.New("bucket unavailable")
	c := NewCoordinator(failingBlobs{BlobStore: memory.NewBlobStore(""), err: boom})

	_, err := c.Upload(context.Background(), &core.Image{Data: pngHeader})
	assert.ErrorIs(t, err, core.ErrUpstream)
	assert.ErrorIs(t, err, boom)
}

func TestDiscard(t *testing.T) {
	ctx := context.Background()
	blobs := memory.NewBlobStore("http://localhost:5000")
	c := NewCoordinator(blobs)

	url, err := c.Upload(ctx, &core.Image{Data: pngHeader})
	require.NoError(t, err)
	require.NoError(t, c.Discard(ctx, url))
	assert.Equal(t, 0, blobs.Len())

	assert.NoError(t, c.Discard(ctx, ""))

	failing := NewCoordinator(failingBlobs{BlobStore: blobs, err: errors.New("boom")})
	assert.ErrorIs(t, failing.Discard(ctx, url), core.ErrUpstream)
}
