// Package indexerfakes provides an in-memory search.Indexer for tests.
package indexerfakes

import (
	"context"
	"strings"
	"sync"

	"github.com/jrsteele09/go-blog-server/search"
)

var _ search.Indexer = (*FakeIndexer)(nil)

type FakeIndexer struct {
	lock sync.RWMutex
	docs map[string]search.Document

	// IndexErr, when set, is returned by IndexPost to simulate an
	// unreachable index.
	IndexErr error
}

func NewFakeIndexer() *FakeIndexer {
	return &FakeIndexer{docs: make(map[string]search.Document)}
}

func (ix *FakeIndexer) IndexPost(_ context.Context, doc search.Document) error {
	if ix.IndexErr != nil {
		return ix.IndexErr
	}
	ix.lock.Lock()
	defer ix.lock.Unlock()
	ix.docs[doc.ID] = doc
	return nil
}

func (ix *FakeIndexer) RemovePost(_ context.Context, id string) error {
	ix.lock.Lock()
	defer ix.lock.Unlock()
	delete(ix.docs, id)
	return nil
}

// Search does naive substring matching over title, content and tags.
func (ix *FakeIndexer) Search(_ context.Context, query string, limit int) ([]search.Document, error) {
	ix.lock.RLock()
	defer ix.lock.RUnlock()

	query = strings.ToLower(query)
	var out []search.Document
	for _, doc := range ix.docs {
		if len(out) >= limit {
			break
		}
		if strings.Contains(strings.ToLower(doc.Title), query) ||
			strings.Contains(strings.ToLower(doc.Content), query) ||
			strings.Contains(strings.ToLower(strings.Join(doc.Tags, " ")), query) {
			out = append(out, doc)
		}
	}
	return out, nil
}

// Indexed reports whether a document is currently in the index.
func (ix *FakeIndexer) Indexed(id string) bool {
	ix.lock.RLock()
	defer ix.lock.RUnlock()
	_, ok := ix.docs[id]
	return ok
}
