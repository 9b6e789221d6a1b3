// Package fakepostrepo provides an in-memory blog.PostRepo for tests.
package fakepostrepo

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-blog-server/blog"
)

var _ blog.PostRepo = (*FakePostRepo)(nil)

type FakePostRepo struct {
	lock  sync.RWMutex
	posts map[string]*blog.Post
	slugs map[string]string // slug to post id
}

func NewFakePostRepo() *FakePostRepo {
	return &FakePostRepo{
		posts: make(map[string]*blog.Post),
		slugs: make(map[string]string),
	}
}

func (pr *FakePostRepo) Create(_ context.Context, post *blog.Post) (*blog.Post, error) {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	stored := *post
	if stored.ID == "" {
		stored.ID = uuid.New().String()
	}
	now := time.Now()
	stored.CreatedAt = now
	stored.UpdatedAt = now

	pr.posts[stored.ID] = &stored
	pr.slugs[stored.Slug] = stored.ID
	return &stored, nil
}

func (pr *FakePostRepo) GetByID(_ context.Context, id string) (*blog.Post, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	post, ok := pr.posts[id]
	if !ok {
		return nil, nil
	}
	return post, nil
}

func (pr *FakePostRepo) GetBySlug(_ context.Context, slug string) (*blog.Post, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	id, ok := pr.slugs[slug]
	if !ok {
		return nil, nil
	}
	return pr.posts[id], nil
}

func (pr *FakePostRepo) List(_ context.Context, cursor string, limit int) ([]*blog.Post, string, error) {
	pr.lock.RLock()
	defer pr.lock.RUnlock()

	ids := make([]string, 0, len(pr.posts))
	for id := range pr.posts {
		if cursor == "" || id > cursor {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	nextCursor := ""
	if len(ids) > limit {
		ids = ids[:limit]
		nextCursor = ids[limit-1]
	}

	posts := make([]*blog.Post, 0, len(ids))
	for _, id := range ids {
		posts = append(posts, pr.posts[id])
	}
	return posts, nextCursor, nil
}

func (pr *FakePostRepo) Update(_ context.Context, post *blog.Post) (*blog.Post, error) {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	existing, ok := pr.posts[post.ID]
	if !ok {
		return nil, nil
	}
	delete(pr.slugs, existing.Slug)

	stored := *post
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = time.Now()
	pr.posts[stored.ID] = &stored
	pr.slugs[stored.Slug] = stored.ID
	return &stored, nil
}

func (pr *FakePostRepo) Delete(_ context.Context, id string) error {
	pr.lock.Lock()
	defer pr.lock.Unlock()

	post, ok := pr.posts[id]
	if !ok {
		return nil
	}
	delete(pr.slugs, post.Slug)
	delete(pr.posts, id)
	return nil
}
