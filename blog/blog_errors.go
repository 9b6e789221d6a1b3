package blog

import "errors"

var (
	PostNotFoundErr  = errors.New("post not found")
	NotPostAuthorErr = errors.New("not the author of this post")
	DuplicateSlugErr = errors.New("post with this slug already exists")
)
