// Package blog provides the post content model and CRUD service. The only
// non-trivial behavior here is HTML sanitisation, author-ownership checks and
// mirroring writes into the search index; everything else is data-access glue.
package blog

import (
	"strings"
	"time"
	"unicode"
)

type Post struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Slug      string    `json:"slug"`
	Content   string    `json:"content"`
	AuthorID  string    `json:"author_id"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// Slugify derives a URL slug from a title: lowercase, non-alphanumerics
// collapsed into single hyphens.
func Slugify(title string) string {
	var b strings.Builder
	lastHyphen := true // suppress leading hyphen
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteRune('-')
			lastHyphen = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
