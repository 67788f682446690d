// Package contentstore is the public entry point of the content subsystem.
//
// A Store resolves a post request through three layers, in order: the
// identifier validator, the TTL cache, and the active storage backend
// followed by the front-matter parser. Parsed results populate the cache;
// failures of any kind never do, so malformed content, backend outages,
// and missing posts all self-heal on the next request once the underlying
// condition clears.
//
// The Store owns its two caches (individual posts and the full listing)
// exclusively. Concurrent misses for the same post may each hit the
// backend, which is harmless since backend reads are idempotent; the far
// more expensive listing rebuild is collapsed with singleflight instead.
package contentstore
