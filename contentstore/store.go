package contentstore

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/aacecandev/blog/cache"
	"github.com/aacecandev/blog/content"
	"github.com/aacecandev/blog/interfaces"
)

// Pagination bounds for ListPosts.
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// listingKey is the single key under which the full sorted listing is
// cached.
const listingKey = "listing"

// Stats reports cache behavior for observability.
type Stats struct {
	Posts      cache.Stats `json:"posts"`
	Listing    cache.Stats `json:"listing"`
	TTLSeconds float64     `json:"ttl_seconds"`
	Backend    string      `json:"backend"`
}

// Store orchestrates slug validation, caching, backend loads, and front
// matter parsing behind the two read operations of the service.
type Store struct {
	backend interfaces.StorageBackend
	ttl     time.Duration
	log     *slog.Logger

	posts   *cache.Cache[interfaces.PostDetail]
	listing *cache.Cache[[]interfaces.PostMeta]

	listGroup singleflight.Group
}

// New creates a content store over the given backend. Parsed posts and the
// full listing are cached for ttl; a zero ttl disables caching so every
// request goes to the backend.
func New(backend interfaces.StorageBackend, ttl time.Duration, log *slog.Logger) *Store {
	return &Store{
		backend: backend,
		ttl:     ttl,
		log:     log,
		posts:   cache.New[interfaces.PostDetail](ttl),
		listing: cache.New[[]interfaces.PostMeta](ttl),
	}
}

// GetPost returns the post identified by rawSlug. The identifier is
// validated before any I/O; a fresh cache entry short-circuits the
// backend; otherwise the raw document is loaded, parsed, cached, and
// returned. Errors carry one of the interfaces sentinel errors and are
// never cached.
func (s *Store) GetPost(ctx context.Context, rawSlug string) (interfaces.PostDetail, error) {
	slug, err := interfaces.ParseSlug(rawSlug)
	if err != nil {
		return interfaces.PostDetail{}, err
	}

	if post, ok := s.posts.Get(slug.String()); ok {
		s.log.Debug("Cache hit for post", slog.String("slug", slug.String()))
		return post, nil
	}

	raw, err := s.backend.Load(ctx, slug)
	if err != nil {
		return interfaces.PostDetail{}, err
	}

	post, err := content.Parse(raw, slug)
	if err != nil {
		s.log.Error("Failed to parse post",
			slog.String("slug", slug.String()),
			"err", err)
		return interfaces.PostDetail{}, err
	}

	s.posts.Set(slug.String(), post)

	return post, nil
}

// ListPosts returns one page of post summaries, sorted by publication date
// descending with ties broken by slug ascending. The full sorted listing
// is cached as a unit and pagination is applied after sorting, so
// consecutive windows over an unchanged set never skip or duplicate an
// entry. limit is clamped to [1, MaxPageLimit] with DefaultPageLimit for
// zero; a negative offset counts as zero.
func (s *Store) ListPosts(ctx context.Context, limit, offset int) (interfaces.PostList, error) {
	switch {
	case limit <= 0:
		limit = DefaultPageLimit
	case limit > MaxPageLimit:
		limit = MaxPageLimit
	}
	if offset < 0 {
		offset = 0
	}

	summaries, ok := s.listing.Get(listingKey)
	if !ok {
		var err error
		summaries, err = s.rebuildListing(ctx)
		if err != nil {
			return interfaces.PostList{}, err
		}
	}

	total := len(summaries)
	page := summaries[min(offset, total):min(offset+limit, total)]

	return interfaces.PostList{
		Posts:  page,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	}, nil
}

// rebuildListing loads and parses every post, sorts the summaries, and
// populates the listing cache. Concurrent rebuilds are collapsed into one
// backend pass via singleflight; the deduplication changes cost, not
// observable behavior.
func (s *Store) rebuildListing(ctx context.Context) ([]interfaces.PostMeta, error) {
	result, err, _ := s.listGroup.Do(listingKey, func() (any, error) {
		slugs, err := s.backend.List(ctx)
		if err != nil {
			return nil, err
		}

		summaries := make([]interfaces.PostMeta, 0, len(slugs))
		for _, slug := range slugs {
			raw, err := s.backend.Load(ctx, slug)
			if err != nil {
				if errors.Is(err, interfaces.ErrPostNotFound) {
					// Listed but vanished before the load; skip it.
					continue
				}
				return nil, err
			}
			post, err := content.Parse(raw, slug)
			if err != nil {
				// One malformed document must not take down the whole
				// listing.
				s.log.Warn("Skipping malformed post in listing",
					slog.String("slug", slug.String()),
					"err", err)
				continue
			}
			summaries = append(summaries, post.Meta)
		}

		sort.Slice(summaries, func(i, j int) bool {
			if !summaries[i].Date.Equal(summaries[j].Date) {
				return summaries[i].Date.After(summaries[j].Date)
			}
			return summaries[i].Slug < summaries[j].Slug
		})

		s.listing.Set(listingKey, summaries)
		s.log.Debug("Rebuilt post listing", slog.Int("count", len(summaries)))

		return summaries, nil
	})
	if err != nil {
		return nil, err
	}
	return result.([]interfaces.PostMeta), nil
}

// CacheStats returns hit/miss counters and sizes for both caches.
func (s *Store) CacheStats() Stats {
	return Stats{
		Posts:      s.posts.Stats(),
		Listing:    s.listing.Stats(),
		TTLSeconds: s.ttl.Seconds(),
		Backend:    s.backend.Name(),
	}
}

// ClearCaches drops both caches outright. Used by the explicit
// cache-busting endpoint and for test isolation.
func (s *Store) ClearCaches() {
	s.posts.Clear()
	s.listing.Clear()
	s.log.Info("Content caches cleared")
}

// TTL returns the configured cache TTL.
func (s *Store) TTL() time.Duration {
	return s.ttl
}
