// Package pgrepo implements the blog.PostRepo interface on PostgreSQL.
package pgrepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jrsteele09/go-blog-server/blog"
)

var _ blog.PostRepo = (*PostRepo)(nil)

const postColumns = `id, title, slug, content, author_id, tags, created_at, updated_at`

type PostRepo struct {
	pool *pgxpool.Pool
}

func NewPostRepo(pool *pgxpool.Pool) *PostRepo {
	return &PostRepo{pool: pool}
}

func (pr *PostRepo) Create(ctx context.Context, post *blog.Post) (*blog.Post, error) {
	id := post.ID
	if id == "" {
		id = uuid.New().String()
	}

	now := time.Now().UTC()
	row := pr.pool.QueryRow(ctx, `
		INSERT INTO posts (id, title, slug, content, author_id, tags, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $7)
		RETURNING `+postColumns,
		id, post.Title, post.Slug, post.Content, post.AuthorID, post.Tags, now)

	created, err := scanPost(row)
	if err != nil {
		return nil, fmt.Errorf("[PostRepo.Create] insert post: %w", err)
	}
	return created, nil
}

func (pr *PostRepo) GetByID(ctx context.Context, id string) (*blog.Post, error) {
	return pr.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id)
}

func (pr *PostRepo) GetBySlug(ctx context.Context, slug string) (*blog.Post, error) {
	return pr.getOne(ctx, `SELECT `+postColumns+` FROM posts WHERE slug = $1`, slug)
}

// List pages through posts by id, fetching one row beyond the limit to decide
// whether a next page exists.
func (pr *PostRepo) List(ctx context.Context, cursor string, limit int) ([]*blog.Post, string, error) {
	rows, err := pr.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE ($1 = '' OR id > $1)
		ORDER BY id
		LIMIT $2`,
		cursor, limit+1)
	if err != nil {
		return nil, "", fmt.Errorf("[PostRepo.List] query posts: %w", err)
	}
	defer rows.Close()

	var posts []*blog.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, "", fmt.Errorf("[PostRepo.List] scan post: %w", err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, "", fmt.Errorf("[PostRepo.List] iterate posts: %w", err)
	}

	nextCursor := ""
	if len(posts) > limit {
		posts = posts[:limit]
		nextCursor = posts[limit-1].ID
	}
	return posts, nextCursor, nil
}

func (pr *PostRepo) Update(ctx context.Context, post *blog.Post) (*blog.Post, error) {
	row := pr.pool.QueryRow(ctx, `
		UPDATE posts
		SET title = $2, slug = $3, content = $4, tags = $5, updated_at = $6
		WHERE id = $1
		RETURNING `+postColumns,
		post.ID, post.Title, post.Slug, post.Content, post.Tags, time.Now().UTC())

	updated, err := scanPost(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("[PostRepo.Update] update post: %w", err)
	}
	return updated, nil
}

func (pr *PostRepo) Delete(ctx context.Context, id string) error {
	if _, err := pr.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id); err != nil {
		return fmt.Errorf("[PostRepo.Delete] delete post: %w", err)
	}
	return nil
}

func (pr *PostRepo) getOne(ctx context.Context, query string, arg any) (*blog.Post, error) {
	post, err := scanPost(pr.pool.QueryRow(ctx, query, arg))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("[PostRepo] query post: %w", err)
	}
	return post, nil
}

func scanPost(row pgx.Row) (*blog.Post, error) {
	var post blog.Post
	err := row.Scan(&post.ID, &post.Title, &post.Slug, &post.Content, &post.AuthorID,
		&post.Tags, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &post, nil
}
