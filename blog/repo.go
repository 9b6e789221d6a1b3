package blog

import "context"

// PostRepo is the document store for blog posts. Lookups return (nil, nil)
// when no post matches.
type PostRepo interface {
	Create(ctx context.Context, post *Post) (*Post, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	GetBySlug(ctx context.Context, slug string) (*Post, error)

	// List returns up to limit posts ordered by id, starting after cursor
	// (exclusive). The returned cursor is "" when no further page exists.
	List(ctx context.Context, cursor string, limit int) (posts []*Post, nextCursor string, err error)

	Update(ctx context.Context, post *Post) (*Post, error)
	Delete(ctx context.Context, id string) error
}
