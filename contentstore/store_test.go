package contentstore

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/aacecandev/blog/interfaces"
)

// MockStorageBackend implements interfaces.StorageBackend for testing.
type MockStorageBackend struct {
	mock.Mock
}

func (m *MockStorageBackend) Load(ctx context.Context, slug interfaces.Slug) ([]byte, error) {
	args := m.Called(ctx, slug)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockStorageBackend) List(ctx context.Context) ([]interfaces.Slug, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]interfaces.Slug), args.Error(1)
}

func (m *MockStorageBackend) Name() string {
	return "mock"
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func makeDoc(title, date string, tags ...string) []byte {
	doc := fmt.Sprintf("---\ntitle: %q\ndate: %q\n", title, date)
	for i, tag := range tags {
		if i == 0 {
			doc += "tags:\n"
		}
		doc += fmt.Sprintf("  - %q\n", tag)
	}
	doc += "---\nbody of " + title + "\n"
	return []byte(doc)
}

func TestGetPostCachesWithinTTL(t *testing.T) {
	backend := new(MockStorageBackend)
	backend.On("Load", mock.Anything, interfaces.Slug("hello-world")).
		Return(makeDoc("Hello, World", "2025-10-10", "intro", "setup"), nil).Once()

	store := New(backend, time.Minute, testLogger())

	first, err := store.GetPost(context.Background(), "hello-world")
	require.NoError(t, err)
	assert.Equal(t, "Hello, World", first.Meta.Title)
	assert.Equal(t, time.Date(2025, 10, 10, 0, 0, 0, 0, time.UTC), first.Meta.Date)
	assert.Equal(t, []string{"intro", "setup"}, first.Meta.Tags)

	// Second call within TTL must come from cache, byte-identical.
	second, err := store.GetPost(context.Background(), "hello-world")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	backend.AssertExpectations(t)

	stats := store.CacheStats()
	assert.Equal(t, int64(1), stats.Posts.Hits)
	assert.Equal(t, int64(1), stats.Posts.Misses)
}

func TestGetPostZeroTTLAlwaysLoads(t *testing.T) {
	backend := new(MockStorageBackend)
	backend.On("Load", mock.Anything, interfaces.Slug("hello-world")).
		Return(makeDoc("Hello", "2025-01-01"), nil).Times(3)

	store := New(backend, 0, testLogger())

	for i := 0; i < 3; i++ {
		_, err := store.GetPost(context.Background(), "hello-world")
		require.NoError(t, err)
	}

	backend.AssertExpectations(t)
}

func TestGetPostRejectsInvalidSlugBeforeBackend(t *testing.T) {
	backend := new(MockStorageBackend)
	store := New(backend, time.Minute, testLogger())

	for _, raw := range []string{"../../etc/passwd", "a/b", "a b", "..", "", "post.md"} {
		_, err := store.GetPost(context.Background(), raw)
		assert.ErrorIs(t, err, interfaces.ErrInvalidSlug, "input %q", raw)
	}

	backend.AssertNotCalled(t, "Load", mock.Anything, mock.Anything)
}

func TestGetPostNotFound(t *testing.T) {
	backend := new(MockStorageBackend)
	backend.On("Load", mock.Anything, interfaces.Slug("missing-slug")).
		Return(nil, fmt.Errorf("%w: missing-slug", interfaces.ErrPostNotFound))

	store := New(backend, time.Minute, testLogger())

	_, err := store.GetPost(context.Background(), "missing-slug")
	assert.ErrorIs(t, err, interfaces.ErrPostNotFound)
}

func TestGetPostBackendFaultPropagated(t *testing.T) {
	backend := new(MockStorageBackend)
	backend.On("Load", mock.Anything, interfaces.Slug("hello-world")).
		Return(nil, fmt.Errorf("%w: connection refused", interfaces.ErrStorageUnavailable))

	store := New(backend, time.Minute, testLogger())

	_, err := store.GetPost(context.Background(), "hello-world")
	assert.ErrorIs(t, err, interfaces.ErrStorageUnavailable)
}

func TestGetPostMalformedNeverCached(t *testing.T) {
	backend := new(MockStorageBackend)
	backend.On("Load", mock.Anything, interfaces.Slug("broken-post")).
		Return([]byte("no front matter here"), nil).Times(2)

	store := New(backend, time.Minute, testLogger())

	for i := 0; i < 2; i++ {
		_, err := store.GetPost(context.Background(), "broken-post")
		assert.ErrorIs(t, err, interfaces.ErrMalformedPost)
	}

	// Both calls hit the backend: the failure was not cached.
	backend.AssertExpectations(t)
}

func TestGetPostNotFoundNotCached(t *testing.T) {
	backend := new(MockStorageBackend)
	notFound := backend.On("Load", mock.Anything, interfaces.Slug("late-post")).
		Return(nil, fmt.Errorf("%w: late-post", interfaces.ErrPostNotFound)).Once()

	store := New(backend, time.Minute, testLogger())

	_, err := store.GetPost(context.Background(), "late-post")
	require.ErrorIs(t, err, interfaces.ErrPostNotFound)

	// The post appears; it must be visible immediately, with no stale
	// negative entry in the way.
	notFound.Unset()
	backend.On("Load", mock.Anything, interfaces.Slug("late-post")).
		Return(makeDoc("Late", "2025-05-05"), nil).Once()

	post, err := store.GetPost(context.Background(), "late-post")
	require.NoError(t, err)
	assert.Equal(t, "Late", post.Meta.Title)
}

func listingFixture(backend *MockStorageBackend) {
	backend.On("List", mock.Anything).Return([]interfaces.Slug{
		"zebra", "april", "march", "banana",
	}, nil)
	backend.On("Load", mock.Anything, interfaces.Slug("zebra")).
		Return(makeDoc("Zebra", "2025-03-01"), nil)
	backend.On("Load", mock.Anything, interfaces.Slug("april")).
		Return(makeDoc("April", "2025-04-01"), nil)
	backend.On("Load", mock.Anything, interfaces.Slug("march")).
		Return(makeDoc("March", "2025-03-01"), nil)
	backend.On("Load", mock.Anything, interfaces.Slug("banana")).
		Return(makeDoc("Banana", "2025-03-01"), nil)
}

func TestListPostsSortedByDateDescSlugAsc(t *testing.T) {
	backend := new(MockStorageBackend)
	listingFixture(backend)

	store := New(backend, time.Minute, testLogger())

	list, err := store.ListPosts(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Equal(t, 4, list.Total)

	var order []string
	for _, meta := range list.Posts {
		order = append(order, meta.Slug.String())
	}
	// april is newest; the three 2025-03-01 posts tie and fall back to
	// slug ascending.
	assert.Equal(t, []string{"april", "banana", "march", "zebra"}, order)
}

func TestListPostsPaginationCoversSetExactly(t *testing.T) {
	backend := new(MockStorageBackend)
	listingFixture(backend)

	store := New(backend, time.Minute, testLogger())

	seen := map[string]int{}
	for offset := 0; ; offset += 2 {
		list, err := store.ListPosts(context.Background(), 2, offset)
		require.NoError(t, err)
		for _, meta := range list.Posts {
			seen[meta.Slug.String()]++
		}
		if offset+2 >= list.Total {
			break
		}
	}

	require.Len(t, seen, 4)
	for slug, count := range seen {
		assert.Equal(t, 1, count, "slug %s duplicated across windows", slug)
	}
}

func TestListPostsUsesListingCache(t *testing.T) {
	backend := new(MockStorageBackend)
	backend.On("List", mock.Anything).Return([]interfaces.Slug{"only"}, nil).Once()
	backend.On("Load", mock.Anything, interfaces.Slug("only")).
		Return(makeDoc("Only", "2025-01-01"), nil).Once()

	store := New(backend, time.Minute, testLogger())

	_, err := store.ListPosts(context.Background(), 10, 0)
	require.NoError(t, err)
	_, err = store.ListPosts(context.Background(), 10, 0)
	require.NoError(t, err)

	backend.AssertExpectations(t)

	stats := store.CacheStats()
	assert.Equal(t, int64(1), stats.Listing.Hits)
}

func TestListPostsSkipsMalformed(t *testing.T) {
	backend := new(MockStorageBackend)
	backend.On("List", mock.Anything).Return([]interfaces.Slug{"good", "bad"}, nil)
	backend.On("Load", mock.Anything, interfaces.Slug("good")).
		Return(makeDoc("Good", "2025-01-01"), nil)
	backend.On("Load", mock.Anything, interfaces.Slug("bad")).
		Return([]byte("not a post"), nil)

	store := New(backend, time.Minute, testLogger())

	list, err := store.ListPosts(context.Background(), 10, 0)
	require.NoError(t, err)
	require.Equal(t, 1, list.Total)
	assert.Equal(t, interfaces.Slug("good"), list.Posts[0].Slug)
}

func TestListPostsBackendFault(t *testing.T) {
	backend := new(MockStorageBackend)
	backend.On("List", mock.Anything).
		Return(nil, fmt.Errorf("%w: listing failed", interfaces.ErrStorageUnavailable))

	store := New(backend, time.Minute, testLogger())

	_, err := store.ListPosts(context.Background(), 10, 0)
	assert.ErrorIs(t, err, interfaces.ErrStorageUnavailable)

	// Failures are not cached; the next call retries the backend.
	_, err = store.ListPosts(context.Background(), 10, 0)
	assert.ErrorIs(t, err, interfaces.ErrStorageUnavailable)
	backend.AssertNumberOfCalls(t, "List", 2)
}

func TestListPostsLimitClamping(t *testing.T) {
	backend := new(MockStorageBackend)
	listingFixture(backend)

	store := New(backend, time.Minute, testLogger())

	list, err := store.ListPosts(context.Background(), 0, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPageLimit, list.Limit)

	list, err = store.ListPosts(context.Background(), 1000, 0)
	require.NoError(t, err)
	assert.Equal(t, MaxPageLimit, list.Limit)

	list, err = store.ListPosts(context.Background(), 10, -5)
	require.NoError(t, err)
	assert.Equal(t, 0, list.Offset)

	// Offset beyond the end yields an empty page, not an error.
	list, err = store.ListPosts(context.Background(), 10, 100)
	require.NoError(t, err)
	assert.Empty(t, list.Posts)
	assert.Equal(t, 4, list.Total)
}

func TestClearCaches(t *testing.T) {
	backend := new(MockStorageBackend)
	backend.On("Load", mock.Anything, interfaces.Slug("hello-world")).
		Return(makeDoc("Hello", "2025-01-01"), nil).Times(2)

	store := New(backend, time.Minute, testLogger())

	_, err := store.GetPost(context.Background(), "hello-world")
	require.NoError(t, err)

	store.ClearCaches()

	_, err = store.GetPost(context.Background(), "hello-world")
	require.NoError(t, err)

	backend.AssertExpectations(t)
}
