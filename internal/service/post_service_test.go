package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/slugblog/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostService_CreateThenGet(t *testing.T) {
	_, blog := setupBlog(t, Options{})
	ctx := context.Background()

	published := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	created, err := blog.Posts.Create(ctx, PostInput{
		Title:     "Hello",
		Subtitle:  strPtr("world"),
		Content:   "body",
		Published: published,
	})
	require.NoError(t, err)

	got, err := blog.Posts.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Hello", got.Title)
	require.NotNil(t, got.Subtitle)
	assert.Equal(t, "world", *got.Subtitle)
	assert.Equal(t, "body", got.Content)
	assert.True(t, published.Equal(got.Published))
	assert.False(t, got.Draft)
}

func TestPostService_CreateValidates(t *testing.T) {
	_, blog := setupBlog(t, Options{})
	ctx := context.Background()

	tests := []struct {
		name  string
		input PostInput
		want  error
	}{
		{name: "empty title", input: PostInput{Title: "", Content: "c"}, want: ErrTitleRequired},
		{name: "blank title", input: PostInput{Title: " \t", Content: "c"}, want: ErrTitleRequired},
		{name: "empty content", input: PostInput{Title: "t", Content: ""}, want: ErrContentRequired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := blog.Posts.Create(ctx, tt.input)
			require.ErrorIs(t, err, tt.want)
			assert.ErrorIs(t, err, ErrValidation)
		})
	}
}

func TestPostService_CreateDropsBlankSubtitle(t *testing.T) {
	_, blog := setupBlog(t, Options{})

	post, err := blog.Posts.Create(context.Background(), PostInput{Title: "t", Subtitle: strPtr("  "), Content: "c"})
	require.NoError(t, err)
	assert.Nil(t, post.Subtitle)
}

func TestPostService_GetMissing(t *testing.T) {
	_, blog := setupBlog(t, Options{})

	_, err := blog.Posts.Get(context.Background(), db.NewPostID())
	require.ErrorIs(t, err, ErrPostNotFound)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPostService_UpdateArchivesPreviousContent(t *testing.T) {
	_, blog := setupBlog(t, Options{})
	ctx := context.Background()
	post := mustCreatePost(t, blog, "title", "first")

	updated, err := blog.Posts.Update(ctx, post.ID, func(p *db.Post) error {
		p.Content = "second"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "second", updated.Content)

	got, err := blog.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "second", got.Content)

	history, err := blog.Archive.History(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)

	snapshot, err := history[len(history)-1].Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "first", snapshot.Content)
	assert.Equal(t, "title", snapshot.Title)
}

func TestPostService_UpdateWithoutContentChangeSkipsArchive(t *testing.T) {
	_, blog := setupBlog(t, Options{})
	ctx := context.Background()
	post := mustCreatePost(t, blog, "title", "body")

	_, err := blog.Posts.Update(ctx, post.ID, func(p *db.Post) error {
		p.Title = "renamed"
		return nil
	})
	require.NoError(t, err)

	history, err := blog.Archive.History(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, history)

	got, err := blog.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "renamed", got.Title)
}

func TestPostService_UpdateRejectsInvalidChangesAtomically(t *testing.T) {
	_, blog := setupBlog(t, Options{})
	ctx := context.Background()
	post := mustCreatePost(t, blog, "title", "body")

	_, err := blog.Posts.Update(ctx, post.ID, func(p *db.Post) error {
		p.Content = ""
		return nil
	})
	require.ErrorIs(t, err, ErrContentRequired)

	_, err = blog.Posts.Update(ctx, post.ID, func(p *db.Post) error {
		p.ID = db.NewPostID()
		p.Content = "other"
		return nil
	})
	require.ErrorIs(t, err, ErrIDImmutable)

	boom := errors.New("boom")
	_, err = blog.Posts.Update(ctx, post.ID, func(p *db.Post) error {
		p.Content = "changed"
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := blog.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "body", got.Content)

	history, err := blog.Archive.History(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, history)
}

func TestPostService_UpdateRejectsZeroPublished(t *testing.T) {
	_, blog := setupBlog(t, Options{})
	ctx := context.Background()
	post := mustCreatePost(t, blog, "title", "body")

	_, err := blog.Posts.Update(ctx, post.ID, func(p *db.Post) error {
		p.Published = time.Time{}
		return nil
	})
	require.ErrorIs(t, err, ErrPublishedZero)
	assert.ErrorIs(t, err, ErrValidation)

	stored, err := blog.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, stored.Published.IsZero())
}

func TestPostService_UpdateMissing(t *testing.T) {
	_, blog := setupBlog(t, Options{})

	_, err := blog.Posts.Update(context.Background(), db.NewPostID(), func(p *db.Post) error { return nil })
	require.ErrorIs(t, err, ErrPostNotFound)
}

func TestPostService_SetDraftKeepsContent(t *testing.T) {
	_, blog := setupBlog(t, Options{})
	ctx := context.Background()
	post := mustCreatePost(t, blog, "title", "body")

	require.NoError(t, blog.Posts.SetDraft(ctx, post.ID, true))

	got, err := blog.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, got.Draft)
	assert.Equal(t, "body", got.Content)
	assert.True(t, post.Published.Equal(got.Published))

	require.NoError(t, blog.Posts.SetDraft(ctx, post.ID, false))
	got, err = blog.Posts.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.False(t, got.Draft)

	assert.ErrorIs(t, blog.Posts.SetDraft(ctx, db.NewPostID(), true), ErrPostNotFound)
}

func TestPostService_DeleteKeepsArchiveAndSlugs(t *testing.T) {
	_, blog := setupBlog(t, Options{})
	ctx := context.Background()
	post := mustCreatePost(t, blog, "title", "v1")
	mustBind(t, blog, "title", post.ID)

	_, err := blog.Posts.Update(ctx, post.ID, func(p *db.Post) error {
		p.Content = "v2"
		return nil
	})
	require.NoError(t, err)

	require.NoError(t, blog.Posts.Delete(ctx, post.ID))

	_, err = blog.Posts.Get(ctx, post.ID)
	require.ErrorIs(t, err, ErrPostNotFound)

	history, err := blog.Archive.History(ctx, post.ID)
	require.NoError(t, err)
	assert.Len(t, history, 1)

	record, err := blog.Slugs.Lookup(ctx, "title")
	require.NoError(t, err)
	assert.Equal(t, post.ID, record.PostID)

	assert.ErrorIs(t, blog.Posts.Delete(ctx, post.ID), ErrPostNotFound)
}
