package blog_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-blog-server/blog"
	fakepostrepo "github.com/jrsteele09/go-blog-server/blog/repofake"
	"github.com/jrsteele09/go-blog-server/search/indexerfakes"
)

const (
	authorID      = "user-1"
	otherAuthorID = "user-2"
)

func setupBlogService(t *testing.T) (*blog.Service, *fakepostrepo.FakePostRepo, *indexerfakes.FakeIndexer) {
	t.Helper()

	repo := fakepostrepo.NewFakePostRepo()
	indexer := indexerfakes.NewFakeIndexer()
	service, err := blog.NewService(repo, indexer)
	require.NoError(t, err)
	return service, repo, indexer
}

func TestCreateSanitisesContentAndIndexes(t *testing.T) {
	service, _, indexer := setupBlogService(t)
	ctx := context.Background()

	post, err := service.Create(ctx, blog.CreateParams{
		Title:   "Hello World",
		Content: `<h1>Hi</h1><script>alert("xss")</script><img src="a.png" alt="a">`,
		Tags:    []string{"intro"},
	}, authorID)
	require.NoError(t, err)

	require.Equal(t, "hello-world", post.Slug)
	require.Equal(t, authorID, post.AuthorID)
	require.NotContains(t, post.Content, "<script>")
	require.Contains(t, post.Content, "<h1>Hi</h1>")
	require.Contains(t, post.Content, "img")
	require.True(t, indexer.Indexed(post.ID))
}

func TestCreateRejectsDuplicateSlug(t *testing.T) {
	service, _, _ := setupBlogService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, blog.CreateParams{Title: "Hello World", Content: "first"}, authorID)
	require.NoError(t, err)

	_, err = service.Create(ctx, blog.CreateParams{Title: "Hello, World!", Content: "second"}, otherAuthorID)
	require.ErrorIs(t, err, blog.DuplicateSlugErr)
}

func TestCreateSucceedsWhenIndexerDown(t *testing.T) {
	service, _, indexer := setupBlogService(t)
	indexer.IndexErr = errors.New("index unreachable")

	post, err := service.Create(context.Background(), blog.CreateParams{Title: "Resilient", Content: "body"}, authorID)
	require.NoError(t, err)
	require.False(t, indexer.Indexed(post.ID))
}

func TestGetBySlug(t *testing.T) {
	service, _, _ := setupBlogService(t)
	ctx := context.Background()

	created, err := service.Create(ctx, blog.CreateParams{Title: "Findable", Content: "body"}, authorID)
	require.NoError(t, err)

	found, err := service.GetBySlug(ctx, created.Slug)
	require.NoError(t, err)
	require.Equal(t, created.ID, found.ID)

	_, err = service.GetBySlug(ctx, "missing")
	require.ErrorIs(t, err, blog.PostNotFoundErr)
}

func TestUpdateEnforcesOwnership(t *testing.T) {
	service, _, _ := setupBlogService(t)
	ctx := context.Background()

	post, err := service.Create(ctx, blog.CreateParams{Title: "Mine", Content: "body"}, authorID)
	require.NoError(t, err)

	title := "Stolen"
	_, err = service.Update(ctx, post.ID, blog.UpdateParams{Title: &title}, otherAuthorID)
	require.ErrorIs(t, err, blog.NotPostAuthorErr)

	content := `updated <script>bad()</script> body`
	updated, err := service.Update(ctx, post.ID, blog.UpdateParams{Content: &content}, authorID)
	require.NoError(t, err)
	require.NotContains(t, updated.Content, "<script>")
	require.Contains(t, updated.Content, "updated")
}

func TestDeleteEnforcesOwnershipAndRemovesFromIndex(t *testing.T) {
	service, _, indexer := setupBlogService(t)
	ctx := context.Background()

	post, err := service.Create(ctx, blog.CreateParams{Title: "Doomed", Content: "body"}, authorID)
	require.NoError(t, err)
	require.True(t, indexer.Indexed(post.ID))

	require.ErrorIs(t, service.Delete(ctx, post.ID, otherAuthorID), blog.NotPostAuthorErr)

	require.NoError(t, service.Delete(ctx, post.ID, authorID))
	require.False(t, indexer.Indexed(post.ID))

	require.ErrorIs(t, service.Delete(ctx, post.ID, authorID), blog.PostNotFoundErr)
}

func TestListPaginates(t *testing.T) {
	service, _, _ := setupBlogService(t)
	ctx := context.Background()

	for _, title := range []string{"One", "Two", "Three"} {
		_, err := service.Create(ctx, blog.CreateParams{Title: title, Content: "body"}, authorID)
		require.NoError(t, err)
	}

	first, cursor, err := service.List(ctx, "", 2)
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, cursor)

	second, cursor, err := service.List(ctx, cursor, 2)
	require.NoError(t, err)
	require.Len(t, second, 1)
	require.Empty(t, cursor)
}

func TestSearch(t *testing.T) {
	service, _, _ := setupBlogService(t)
	ctx := context.Background()

	_, err := service.Create(ctx, blog.CreateParams{Title: "Go Concurrency Patterns", Content: "channels"}, authorID)
	require.NoError(t, err)
	_, err = service.Create(ctx, blog.CreateParams{Title: "Gardening", Content: "tomatoes"}, authorID)
	require.NoError(t, err)

	docs, err := service.Search(ctx, "concurrency", 10)
	require.NoError(t, err)
	require.Len(t, docs, 1)
	require.Equal(t, "Go Concurrency Patterns", docs[0].Title)
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Hello World":        "hello-world",
		"  Spaces  Around  ": "spaces-around",
		"Go 1.24 Released!":  "go-1-24-released",
		"already-a-slug":     "already-a-slug",
	}
	for title, want := range tests {
		require.Equal(t, want, blog.Slugify(title), "title %q", title)
	}
}
