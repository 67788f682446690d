package interfaces

import "errors"

var (
	// ErrInvalidSlug indicates an externally supplied identifier failed
	// slug validation. Caller fault, mapped to 400 at the HTTP boundary.
	ErrInvalidSlug = errors.New("invalid slug")

	// ErrPostNotFound indicates no post exists for the requested slug.
	ErrPostNotFound = errors.New("post not found")

	// ErrMalformedPost indicates the post document exists but its front
	// matter cannot be parsed. Authoring fault, not a caller fault.
	// Malformed content is never cached so a fixed document is picked up
	// on the next request.
	ErrMalformedPost = errors.New("malformed post content")

	// ErrStorageUnavailable indicates a backend I/O failure (network,
	// credentials, filesystem). Transient; mapped to 503 at the HTTP
	// boundary and never cached.
	ErrStorageUnavailable = errors.New("storage unavailable")
)
