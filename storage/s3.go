package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"

	"github.com/aacecandev/blog/interfaces"
)

// s3API is the slice of the S3 client surface the backend uses. *s3.S3
// satisfies it; tests substitute a fake.
type s3API interface {
	GetObjectWithContext(ctx aws.Context, input *s3.GetObjectInput, opts ...request.Option) (*s3.GetObjectOutput, error)
	ListObjectsV2PagesWithContext(ctx aws.Context, input *s3.ListObjectsV2Input, fn func(*s3.ListObjectsV2Output, bool) bool, opts ...request.Option) error
}

// S3Backend serves post documents from Amazon S3 or a compatible object
// store, one {prefix}{slug}.md object per post.
//
// The underlying network client is built lazily on first use, guarded so
// that exactly one client is created even when the first use arrives from
// many concurrent requests. The backend also keeps a slug-to-object-key
// index so repeated loads avoid re-listing the bucket; the index is a
// cache, rebuilt wholesale from a full listing on a lookup miss and
// swapped in atomically.
type S3Backend struct {
	cfg Config
	log *slog.Logger

	initOnce sync.Once
	initErr  error
	client   s3API

	indexMu sync.RWMutex
	index   map[interfaces.Slug]string
}

// NewS3Backend creates an S3 backend for the bucket and prefix in cfg.
// No network I/O happens here; the S3 client is constructed on first use.
func NewS3Backend(cfg Config, log *slog.Logger) (*S3Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 backend requires a bucket")
	}

	return &S3Backend{
		cfg: cfg,
		log: log,
	}, nil
}

// api returns the S3 client, constructing it on first call. Subsequent
// calls, concurrent ones included, reuse the same client.
func (b *S3Backend) api() (s3API, error) {
	b.initOnce.Do(func() {
		if b.client != nil {
			// Pre-wired by tests.
			return
		}

		awsCfg := aws.Config{
			Region: aws.String(b.cfg.Region),
		}
		if b.cfg.Endpoint != "" {
			awsCfg.Endpoint = aws.String(b.cfg.Endpoint)
		}
		if b.cfg.AccessKey != "" && b.cfg.SecretKey != "" {
			awsCfg.Credentials = credentials.NewStaticCredentials(b.cfg.AccessKey, b.cfg.SecretKey, "")
		}

		sess, err := session.NewSession(&awsCfg)
		if err != nil {
			b.initErr = fmt.Errorf("failed to create AWS session: %w", err)
			return
		}

		b.log.Debug("Created S3 client",
			slog.String("bucket", b.cfg.Bucket),
			slog.String("region", b.cfg.Region))

		b.client = s3.New(sess)
	})

	return b.client, b.initErr
}

// Load resolves the slug to an object key and fetches the object body.
// Returns interfaces.ErrPostNotFound when no object exists for the slug,
// including the index/storage inconsistency where the key resolves but the
// fetch comes back NoSuchKey, and interfaces.ErrStorageUnavailable for any
// other fault.
func (b *S3Backend) Load(ctx context.Context, slug interfaces.Slug) ([]byte, error) {
	// Re-validate before building an object key from externally supplied
	// input.
	if err := slug.Validate(); err != nil {
		return nil, err
	}

	key, err := b.resolveKey(ctx, slug)
	if err != nil {
		return nil, err
	}

	client, err := b.api()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.requestTimeout())
	defer cancel()

	start := time.Now()
	result, err := client.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(b.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNoSuchKey(err) {
			// The index pointed at an object that has since vanished.
			b.log.Warn("S3 object missing for indexed slug",
				slog.String("slug", slug.String()),
				slog.String("key", key))
			return nil, fmt.Errorf("%w: %s", interfaces.ErrPostNotFound, slug)
		}
		b.log.Error("Failed to get object from S3",
			slog.String("bucket", b.cfg.Bucket),
			slog.String("key", key),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: get s3://%s/%s: %v", interfaces.ErrStorageUnavailable, b.cfg.Bucket, key, err)
	}
	defer result.Body.Close()

	data, err := io.ReadAll(result.Body)
	if err != nil {
		b.log.Error("Failed to read object body",
			slog.String("key", key),
			"err", err)
		return nil, fmt.Errorf("%w: read s3://%s/%s: %v", interfaces.ErrStorageUnavailable, b.cfg.Bucket, key, err)
	}

	b.log.Debug("Fetched post from S3",
		slog.String("key", key),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// List enumerates every post slug under the configured prefix, rebuilding
// the slug-to-key index as a side effect.
func (b *S3Backend) List(ctx context.Context) ([]interfaces.Slug, error) {
	index, err := b.rebuildIndex(ctx)
	if err != nil {
		return nil, err
	}

	slugs := make([]interfaces.Slug, 0, len(index))
	for slug := range index {
		slugs = append(slugs, slug)
	}
	return slugs, nil
}

// Name returns a unique identifier for this backend.
func (b *S3Backend) Name() string {
	return fmt.Sprintf("s3-%s", b.cfg.Bucket)
}

// resolveKey looks the slug up in the index. On a miss the index is
// rebuilt from a full listing and the lookup retried once; a second miss
// means the post does not exist.
func (b *S3Backend) resolveKey(ctx context.Context, slug interfaces.Slug) (string, error) {
	b.indexMu.RLock()
	key, ok := b.index[slug]
	b.indexMu.RUnlock()
	if ok {
		return key, nil
	}

	index, err := b.rebuildIndex(ctx)
	if err != nil {
		return "", err
	}

	key, ok = index[slug]
	if !ok {
		b.log.Debug("Post not found in S3", slog.String("slug", slug.String()))
		return "", fmt.Errorf("%w: %s", interfaces.ErrPostNotFound, slug)
	}
	return key, nil
}

// rebuildIndex lists every markdown object under the prefix and replaces
// the index with a freshly built mapping. The swap is atomic under the
// write lock; readers see either the old or the new index, never a partial
// one. The new index is returned so callers can consult it without racing
// a concurrent rebuild.
func (b *S3Backend) rebuildIndex(ctx context.Context) (map[interfaces.Slug]string, error) {
	client, err := b.api()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", interfaces.ErrStorageUnavailable, err)
	}

	ctx, cancel := context.WithTimeout(ctx, b.cfg.requestTimeout())
	defer cancel()

	start := time.Now()
	index := make(map[interfaces.Slug]string)

	err = client.ListObjectsV2PagesWithContext(ctx, &s3.ListObjectsV2Input{
		Bucket: aws.String(b.cfg.Bucket),
		Prefix: aws.String(b.cfg.Prefix),
	}, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
		for _, obj := range page.Contents {
			key := aws.StringValue(obj.Key)
			name := path.Base(key)
			if !strings.HasSuffix(strings.ToLower(name), markdownExt) {
				continue
			}
			slug, err := interfaces.ParseSlug(name[:len(name)-len(markdownExt)])
			if err != nil {
				b.log.Warn("Skipping object with invalid slug", slog.String("key", key))
				continue
			}
			index[slug] = key
		}
		return true
	})
	if err != nil {
		b.log.Error("Failed to list S3 objects",
			slog.String("bucket", b.cfg.Bucket),
			slog.String("prefix", b.cfg.Prefix),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: list s3://%s/%s: %v", interfaces.ErrStorageUnavailable, b.cfg.Bucket, b.cfg.Prefix, err)
	}

	b.indexMu.Lock()
	b.index = index
	b.indexMu.Unlock()

	b.log.Debug("Rebuilt slug index from S3 listing",
		slog.Int("count", len(index)),
		slog.Duration("duration", time.Since(start)))

	return index, nil
}

func isNoSuchKey(err error) bool {
	if aerr, ok := err.(awserr.Error); ok {
		return aerr.Code() == s3.ErrCodeNoSuchKey || aerr.Code() == "NotFound"
	}
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "404")
}
