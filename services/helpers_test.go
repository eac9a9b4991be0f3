package services

import (
	"context"
	"drawshare/core"
	"drawshare/media"
	"drawshare/stores/memory"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var (
	pngImage = &core.Image{Data: []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR"), Filename: "pig.png"}
	errBoom  = errors.New("write failed")
)

// failingStore runs transactions against a repository whose Save calls
// fail once okSaves successful saves have been spent, so the later writes
// of a dual-write fail after the earlier ones went through.
type failingStore struct {
	core.Store
	okSaves int
}

type failingRepo struct {
	core.Repository
	okSaves *int
}

func (r failingRepo) spend() bool {
	if *r.okSaves > 0 {
		*r.okSaves--
		return true
	}
	return false
}

func (r failingRepo) SaveUser(ctx context.Context, user *core.User) error {
	if r.spend() {
		return r.Repository.SaveUser(ctx, user)
	}
	return errBoom
}

func (r failingRepo) SaveDrawing(ctx context.Context, drawing *core.Drawing) error {
	if r.spend() {
		return r.Repository.SaveDrawing(ctx, drawing)
	}
	return errBoom
}

func (s failingStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx core.Repository) error) error {
	okSaves := s.okSaves
	return s.Store.WithTransaction(ctx, func(ctx context.Context, tx core.Repository) error {
		return fn(ctx, failingRepo{Repository: tx, okSaves: &okSaves})
	})
}

// failingPuts is a blob store whose Put always fails.
type failingPuts struct {
	*memory.BlobStore
}

func (failingPuts) Put(ctx context.Context, key string, data []byte, contentType string) error {
	return errBoom
}

// failingDeletes is a blob store whose Delete always fails.
type failingDeletes struct {
	*memory.BlobStore
}

func (failingDeletes) Delete(ctx context.Context, key string) error { return errBoom }

type fixture struct {
	store core.Store
	blobs *memory.BlobStore
	svc   *Services
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewDocumentStore()
	blobs := memory.NewBlobStore("http://localhost:5000")
	return &fixture{
		store: store,
		blobs: blobs,
		svc:   New(store, media.NewCoordinator(blobs)),
	}
}

func (f *fixture) signup(t *testing.T, name string) *core.User {
	t.Helper()
	u, err := f.svc.Users.Signup(context.Background(), SignupInput{
		Username: name,
		Email:    name + "@x.com",
		Password: "secret1",
	})
	require.NoError(t, err)
	return u
}

func (f *fixture) user(t *testing.T, id string) *core.User {
	t.Helper()
	u, err := f.store.FindUserByID(context.Background(), id)
	require.NoError(t, err)
	return u
}
