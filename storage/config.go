package storage

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aacecandev/blog/interfaces"
)

// markdownExt is the document suffix shared by both backends.
const markdownExt = ".md"

// defaultRequestTimeout bounds backend I/O when the config leaves
// RequestTimeout unset.
const defaultRequestTimeout = 10 * time.Second

// Config selects and parameterizes the content backend. Bucket takes
// precedence over ContentDir; configuring neither is a startup error.
type Config struct {
	// ContentDir is the local directory holding {slug}.md files.
	ContentDir string

	// Bucket is the S3 bucket holding post objects. When set, the S3
	// backend is used regardless of ContentDir.
	Bucket string

	// Prefix is the object key prefix under which posts live, for
	// example "posts/".
	Prefix string

	// Region is the AWS region of the bucket.
	Region string

	// Endpoint overrides the S3 endpoint for S3-compatible stores.
	Endpoint string

	// AccessKey and SecretKey are optional static credentials. When
	// empty the SDK's default credential chain is used.
	AccessKey string
	SecretKey string

	// RequestTimeout bounds every individual backend call. Zero means
	// defaultRequestTimeout.
	RequestTimeout time.Duration
}

func (c Config) requestTimeout() time.Duration {
	if c.RequestTimeout > 0 {
		return c.RequestTimeout
	}
	return defaultRequestTimeout
}

// NewBackend creates the content backend selected by cfg. Called exactly
// once at process initialization; the returned backend is used for the
// lifetime of the process.
func NewBackend(cfg Config, log *slog.Logger) (interfaces.StorageBackend, error) {
	switch {
	case cfg.Bucket != "":
		return NewS3Backend(cfg, log)
	case cfg.ContentDir != "":
		return NewLocalBackend(cfg.ContentDir, cfg.requestTimeout(), log)
	default:
		return nil, fmt.Errorf("no content backend configured: set a bucket or a content directory")
	}
}
