// Package httputil downloads reference sprites over HTTP.
//
// # Overview
//
// Reference images may be given as http:// or https:// URLs instead of
// local paths. [Fetcher] downloads them with:
//
//   - [Cache]: file-based body caching with a TTL
//   - [Retry]: retries with exponential backoff for transient failures
//
// # Caching
//
// [Cache] stores response bodies under the cache directory
// (~/.cache/spritestyle/downloads by default), one file per URL named by
// the SHA-256 of the key. Entries older than the TTL are reported as
// [ErrExpired] and refetched.
//
//	c, err := httputil.NewCache(dir, 24*time.Hour)
//	f := httputil.NewFetcher(c)
//	body, err := f.Fetch(ctx, "https://example.com/hero.png")
//
// # Retry
//
// Network errors, 5xx responses and 429 rate limits are retried. Other
// statuses fail immediately: 404 as FILE_NOT_FOUND, the rest as
// INVALID_INPUT.
package httputil
