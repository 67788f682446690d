// Package interfaces defines core interfaces and types for the blog content
// service, separating interface definitions from implementations.
//
// The package provides the building blocks shared by every other package:
//
// # Identifiers
//
// Slug is the validated, URL-safe identifier for a post. ParseSlug is the
// single validation routine for externally supplied identifiers and is
// invoked at every boundary where an identifier enters the system: at the
// HTTP route, inside the content store, and again inside each storage
// backend before a filesystem path or object key is built from it. Each
// call is independently sufficient to block path traversal and object-key
// injection; the redundancy is deliberate.
//
// # Content Types
//
// PostMeta carries a post's front-matter metadata (title, date, description,
// tags). PostDetail is PostMeta plus the raw markdown body. PostList is a
// paginated window over post summaries.
//
// # Storage Interfaces
//
// StorageBackend abstracts where raw post documents live. Two
// implementations exist, local filesystem and S3-compatible object storage,
// selected once at startup; the rest of the system is backend-agnostic.
//
// # Error Taxonomy
//
// Four sentinel errors cover every failure the service surfaces:
// ErrInvalidSlug (caller fault), ErrPostNotFound (no such post),
// ErrMalformedPost (content exists but fails parsing, an authoring fault),
// and ErrStorageUnavailable (backend I/O failure). Implementations wrap
// these with context via fmt.Errorf and %w; callers match with errors.Is.
package interfaces
