package interfaces

import "context"

// StorageBackend retrieves raw post documents from wherever content lives.
// Exactly one backend is selected at startup; there is no runtime
// switching. Implementations must be safe for concurrent use and must
// bound every call by the caller's context.
type StorageBackend interface {
	// Load returns the raw document for the slug, front matter included.
	// Returns an error wrapping ErrPostNotFound when the slug does not
	// exist and ErrStorageUnavailable for any other I/O failure.
	Load(ctx context.Context, slug Slug) ([]byte, error)

	// List enumerates every slug with a document in this backend.
	// Returns an error wrapping ErrStorageUnavailable on I/O failure.
	List(ctx context.Context) ([]Slug, error)

	// Name returns a short identifier for the backend, used in logs.
	Name() string
}
