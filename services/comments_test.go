package services

import (
	"context"
	"drawshare/core"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	d := f.draw(t, a, "pig")

	c, err := f.svc.Comments.Create(ctx, a, "nice", d.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, c.AuthorID)
	assert.Equal(t, d.ID, c.DrawingID)

	got, err := f.store.FindDrawingByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, got.Comments)

	_, err = f.svc.Comments.Create(ctx, a, "", d.ID)
	assert.ErrorIs(t, err, core.ErrValidation)
	_, err = f.svc.Comments.Create(ctx, a, "nice", "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestCreateComment_RollsBackOnSecondWriteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	d := f.draw(t, a, "pig")

	comments := &Comments{store: failingStore{Store: f.store}}
	_, err := comments.Create(ctx, a, "nice", d.ID)
	assert.ErrorIs(t, err, core.ErrUpstream)

	list, err := f.store.ListComments(ctx, core.CommentFilter{DrawingID: d.ID})
	require.NoError(t, err)
	assert.Empty(t, list)
	got, err := f.store.FindDrawingByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)
}

func TestListCommentsByDrawing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	b := f.signup(t, "b")
	d := f.draw(t, a, "pig")
	other := f.draw(t, a, "cow")

	_, err := f.svc.Comments.Create(ctx, b, "first", d.ID)
	require.NoError(t, err)
	_, err = f.svc.Comments.Create(ctx, a, "second", d.ID)
	require.NoError(t, err)
	_, err = f.svc.Comments.Create(ctx, a, "elsewhere", other.ID)
	require.NoError(t, err)

	list, err := f.svc.Comments.ListByDrawing(ctx, d.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "first", list[0].Body)
	assert.Equal(t, b.ID, list[0].Author.ID)
	assert.Equal(t, "second", list[1].Body)

	_, err = f.svc.Comments.ListByDrawing(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestDeleteComment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	b := f.signup(t, "b")
	d := f.draw(t, a, "pig")
	c, err := f.svc.Comments.Create(ctx, b, "nice", d.ID)
	require.NoError(t, err)

	assert.ErrorIs(t, f.svc.Comments.Delete(ctx, a, c.ID), core.ErrForbidden, "drawing owner is not the author")
	_, err = f.store.FindCommentByID(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, f.svc.Comments.Delete(ctx, b, c.ID))
	_, err = f.store.FindCommentByID(ctx, c.ID)
	assert.ErrorIs(t, err, core.ErrNotFound)
	got, err := f.store.FindDrawingByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Comments)

	assert.ErrorIs(t, f.svc.Comments.Delete(ctx, b, c.ID), core.ErrNotFound)
}

func TestDeleteComment_RollsBackOnSecondWriteFailure(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.signup(t, "a")
	d := f.draw(t, a, "pig")
	c, err := f.svc.Comments.Create(ctx, a, "nice", d.ID)
	require.NoError(t, err)

	comments := &Comments{store: failingStore{Store: f.store}}
	assert.ErrorIs(t, comments.Delete(ctx, a, c.ID), core.ErrUpstream)

	_, err = f.store.FindCommentByID(ctx, c.ID)
	assert.NoError(t, err)
	got, err := f.store.FindDrawingByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{c.ID}, got.Comments)
}

func TestAssertOwner(t *testing.T) {
	d := &core.Drawing{ArtistID: "u1"}
	assert.NoError(t, AssertOwner(d, &core.User{ID: "u1"}, "no"))
	assert.ErrorIs(t, AssertOwner(d, &core.User{ID: "u2"}, "no"), core.ErrForbidden)
	assert.ErrorIs(t, AssertOwner(d, nil, "no"), core.ErrForbidden)
	assert.ErrorIs(t, AssertOwner(&core.Comment{}, &core.User{}, "no"), core.ErrForbidden)
}
