/*
Package httpserver implements the HTTP surface of the blog content service.

It is thin glue over the content store: route wiring, request and response
shaping, request logging, and error mapping. All content semantics live in
the contentstore package.

# API Endpoints

  - GET /api/posts?limit=&offset= — paginated post listing, newest first
  - GET /api/posts/{slug} — a single post with its markdown body
  - GET /api/cache/stats — cache hit/miss counters (internal)
  - POST /api/cache/purge — drop all caches (internal)

# Health and Diagnostics

  - GET /livez — process liveness
  - GET /readyz — readiness, reflecting the drain state
  - GET /drain, /undrain — flip readiness for rolling deploys

# Error Mapping

Content errors map onto status codes by their sentinel:
invalid slug to 400, post not found to 404, malformed content to 500,
storage unavailable to 503. Error bodies are JSON: {"error": ..., "code": ...}.
*/
package httpserver
