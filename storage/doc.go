// Package storage provides the two content backends for post documents.
//
// Both backends serve the same on-disk/on-object document format: a file
// per post named {slug}.md whose body is YAML front matter followed by
// markdown. The slug is always recoverable from the file or object name,
// which is the contract an external authoring workflow must honor.
//
//   - LocalBackend reads {root}/{slug}.md from a configured directory.
//     Used for local development and tests.
//   - S3Backend reads s3://{bucket}/{prefix}{slug}.md from an S3-compatible
//     object store. The underlying network client is constructed lazily,
//     exactly once, on first use, even under concurrent first access. The
//     backend keeps a slug-to-object-key index built from a full listing of
//     the prefix; the index is a cache, rebuilt wholesale on a lookup miss
//     and replaced atomically so concurrent readers never observe a
//     partially rebuilt mapping.
//
// NewBackend selects exactly one backend at startup: a configured bucket
// wins over a local content directory, and configuring neither is a
// startup error. There is no runtime switching.
//
// Every backend call is bounded by the caller's context plus the
// configured request timeout, and every slug is re-validated here before
// a filesystem path or object key is built from it, independently of the
// validation upstream callers already performed.
package storage
