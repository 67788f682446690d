package interfaces

import "time"

// PostMeta is the front-matter metadata of a post.
type PostMeta struct {
	Slug        Slug      `json:"slug"`
	Title       string    `json:"title"`
	Date        time.Time `json:"date"`
	Description string    `json:"description,omitempty"`
	Tags        []string  `json:"tags"`
}

// PostDetail is a full post: metadata plus the raw markdown body.
// Immutable once constructed; rebuilt from storage on every cache miss.
type PostDetail struct {
	Meta PostMeta `json:"meta"`
	Body string   `json:"content"`
}

// PostList is a paginated window over post summaries, sorted by
// publication date descending with ties broken by slug ascending so
// consecutive windows never skip or duplicate an entry.
type PostList struct {
	Posts  []PostMeta `json:"posts"`
	Total  int        `json:"total"`
	Limit  int        `json:"limit"`
	Offset int        `json:"offset"`
}
