package blog

import (
	"context"
	"errors"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-blog-server/search"
)

const defaultListLimit = 10

// Service provides blog post CRUD with HTML sanitisation, author-ownership
// checks and search-index mirroring. Indexing is best effort: an unreachable
// index never fails the write, it is logged and the post stays authoritative
// in the document store.
type Service struct {
	repo      PostRepo
	indexer   search.Indexer
	sanitizer *bluemonday.Policy
	log       zerolog.Logger
}

// ServiceOption defines a function type to modify the Service instance.
type ServiceOption func(*Service)

// WithLogger sets the structured logger used by the service.
func WithLogger(log zerolog.Logger) ServiceOption {
	return func(s *Service) {
		s.log = log
	}
}

// NewService initializes a new blog Service.
func NewService(repo PostRepo, indexer search.Indexer, options ...ServiceOption) (*Service, error) {
	if repo == nil {
		return nil, errors.New("[blog.NewService] post repo is required")
	}
	if indexer == nil {
		return nil, errors.New("[blog.NewService] indexer is required")
	}

	// UGC policy plus the image and heading tags post content legitimately uses
	sanitizer := bluemonday.UGCPolicy()
	sanitizer.AllowAttrs("class", "style").Globally()
	sanitizer.AllowAttrs("src", "srcset", "alt", "title", "width", "height", "loading").OnElements("img")

	service := &Service{
		repo:      repo,
		indexer:   indexer,
		sanitizer: sanitizer,
		log:       zerolog.Nop(),
	}

	for _, opt := range options {
		opt(service)
	}

	return service, nil
}

// CreateParams holds the caller-supplied fields of a new post.
type CreateParams struct {
	Title   string
	Slug    string // derived from Title when empty
	Content string
	Tags    []string
}

// Create sanitises and stores a new post authored by authorID.
func (s *Service) Create(ctx context.Context, params CreateParams, authorID string) (*Post, error) {
	slug := params.Slug
	if slug == "" {
		slug = Slugify(params.Title)
	}

	existing, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("[blog.Service.Create] GetBySlug: %w", err)
	}
	if existing != nil {
		return nil, DuplicateSlugErr
	}

	post, err := s.repo.Create(ctx, &Post{
		Title:    params.Title,
		Slug:     slug,
		Content:  s.sanitizer.Sanitize(params.Content),
		AuthorID: authorID,
		Tags:     params.Tags,
	})
	if err != nil {
		return nil, fmt.Errorf("[blog.Service.Create] create post: %w", err)
	}

	s.indexPost(ctx, post)
	return post, nil
}

// List returns a page of posts and the cursor for the next page.
func (s *Service) List(ctx context.Context, cursor string, limit int) ([]*Post, string, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	posts, nextCursor, err := s.repo.List(ctx, cursor, limit)
	if err != nil {
		return nil, "", fmt.Errorf("[blog.Service.List] list posts: %w", err)
	}
	return posts, nextCursor, nil
}

// GetBySlug returns the post with the given slug or PostNotFoundErr.
func (s *Service) GetBySlug(ctx context.Context, slug string) (*Post, error) {
	post, err := s.repo.GetBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("[blog.Service.GetBySlug] GetBySlug: %w", err)
	}
	if post == nil {
		return nil, PostNotFoundErr
	}
	return post, nil
}

// UpdateParams holds the updatable fields of a post. Nil fields are left
// unchanged.
type UpdateParams struct {
	Title   *string
	Content *string
	Tags    []string
}

// Update applies params to the post, provided authorID owns it.
func (s *Service) Update(ctx context.Context, id string, params UpdateParams, authorID string) (*Post, error) {
	post, err := s.ownedPost(ctx, id, authorID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		post.Title = *params.Title
	}
	if params.Content != nil {
		post.Content = s.sanitizer.Sanitize(*params.Content)
	}
	if params.Tags != nil {
		post.Tags = params.Tags
	}

	updated, err := s.repo.Update(ctx, post)
	if err != nil {
		return nil, fmt.Errorf("[blog.Service.Update] update post: %w", err)
	}
	if updated == nil {
		return nil, PostNotFoundErr
	}

	s.indexPost(ctx, updated)
	return updated, nil
}

// Delete removes the post, provided authorID owns it.
func (s *Service) Delete(ctx context.Context, id, authorID string) error {
	post, err := s.ownedPost(ctx, id, authorID)
	if err != nil {
		return err
	}

	if err := s.repo.Delete(ctx, post.ID); err != nil {
		return fmt.Errorf("[blog.Service.Delete] delete post: %w", err)
	}

	if err := s.indexer.RemovePost(ctx, post.ID); err != nil {
		s.log.Warn().Err(err).Str("post_id", post.ID).Msg("failed to remove post from search index")
	}
	return nil
}

// Search queries the search index.
func (s *Service) Search(ctx context.Context, query string, limit int) ([]search.Document, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	docs, err := s.indexer.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("[blog.Service.Search] search: %w", err)
	}
	return docs, nil
}

func (s *Service) ownedPost(ctx context.Context, id, authorID string) (*Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("[blog.Service] GetByID: %w", err)
	}
	if post == nil {
		return nil, PostNotFoundErr
	}
	if post.AuthorID != authorID {
		return nil, NotPostAuthorErr
	}
	return post, nil
}

func (s *Service) indexPost(ctx context.Context, post *Post) {
	err := s.indexer.IndexPost(ctx, search.Document{
		ID:      post.ID,
		Title:   post.Title,
		Slug:    post.Slug,
		Content: post.Content,
		Tags:    post.Tags,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("post_id", post.ID).Msg("failed to index post")
	}
}
