// Package search defines the post search-index collaborator. Writes to the
// blog are mirrored into the index; reads power the public search endpoint.
package search

import "context"

// Document is the indexed projection of a blog post.
type Document struct {
	ID      string   `json:"id"`
	Title   string   `json:"title"`
	Slug    string   `json:"slug"`
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
}

// Indexer maintains and queries the post search index.
type Indexer interface {
	IndexPost(ctx context.Context, doc Document) error
	RemovePost(ctx context.Context, id string) error
	Search(ctx context.Context, query string, limit int) ([]Document, error)
}
