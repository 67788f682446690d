package storage

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aacecandev/blog/interfaces"
)

// LocalBackend serves post documents from a directory on the local
// filesystem, one {slug}.md file per post.
type LocalBackend struct {
	root    string
	timeout time.Duration
	log     *slog.Logger
}

// NewLocalBackend creates a filesystem backend rooted at root. The
// directory must already exist; content authoring happens out of band.
func NewLocalBackend(root string, timeout time.Duration, log *slog.Logger) (*LocalBackend, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("content directory %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("content directory %s is not a directory", root)
	}

	return &LocalBackend{
		root:    root,
		timeout: timeout,
		log:     log,
	}, nil
}

// Load reads {root}/{slug}.md. Returns interfaces.ErrPostNotFound when the
// file does not exist and interfaces.ErrStorageUnavailable for any other
// I/O failure.
func (b *LocalBackend) Load(ctx context.Context, slug interfaces.Slug) ([]byte, error) {
	// Re-validate before building a path from externally supplied input.
	if err := slug.Validate(); err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}

	path := filepath.Join(b.root, slug.String()+markdownExt)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			b.log.Debug("Post not found locally", slog.String("slug", slug.String()))
			return nil, fmt.Errorf("%w: %s", interfaces.ErrPostNotFound, slug)
		}
		b.log.Error("Failed to read local post",
			slog.String("path", path),
			"err", err)
		return nil, fmt.Errorf("%w: read %s: %v", interfaces.ErrStorageUnavailable, path, err)
	}

	b.log.Debug("Loaded post from local file",
		slog.String("path", path),
		slog.Int("size", len(data)))

	return data, nil
}

// List enumerates the slugs of every markdown file directly under the
// content root. Files whose stem is not a valid slug are skipped with a
// warning rather than failing the whole listing.
func (b *LocalBackend) List(ctx context.Context) ([]interfaces.Slug, error) {
	ctx, cancel := context.WithTimeout(ctx, b.timeout)
	defer cancel()
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}

	dirents, err := os.ReadDir(b.root)
	if err != nil {
		b.log.Error("Failed to list content directory",
			slog.String("root", b.root),
			"err", err)
		return nil, fmt.Errorf("%w: list %s: %v", interfaces.ErrStorageUnavailable, b.root, err)
	}

	slugs := make([]interfaces.Slug, 0, len(dirents))
	for _, dirent := range dirents {
		name := dirent.Name()
		if dirent.IsDir() || !strings.HasSuffix(strings.ToLower(name), markdownExt) {
			continue
		}
		slug, err := interfaces.ParseSlug(name[:len(name)-len(markdownExt)])
		if err != nil {
			b.log.Warn("Skipping file with invalid slug", slog.String("file", name))
			continue
		}
		slugs = append(slugs, slug)
	}

	b.log.Debug("Listed local posts", slog.Int("count", len(slugs)))

	return slugs, nil
}

// Name returns a unique identifier for this backend.
func (b *LocalBackend) Name() string {
	return fmt.Sprintf("local-%s", filepath.Base(b.root))
}
