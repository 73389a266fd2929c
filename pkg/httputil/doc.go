// Package httputil downloads images into a local cache.
//
// # Overview
//
//   - [ImageCache]: a directory of downloaded images keyed by URL
//   - [FromURLWithCache]: one-call access through the configured cache
//   - [Retry]: retry with exponential backoff for transient failures
//
// # Caching
//
// [ImageCache] stores each image under a filename derived from its URL
// (see [DeriveFilename]) or chosen by the caller. A sibling file with the
// ".url" suffix records the source URL; when two URLs map to the same name
// the later one gets a short hash suffix. Files are written to a temporary
// name, synced and renamed, so a crash never leaves a half-written image.
//
//	cache, err := httputil.NewImageCache("", httputil.WithRateLimit(time.Second, httputil.RatePerHost))
//	flag, err := cache.FromURL(ctx, "https://upload.wikimedia.org/.../Flag_of_Peru.png", httputil.FetchOptions{})
//
// Concurrent requests for the same file are collapsed into one download.
// Rate limits apply only to real downloads; cache hits never wait.
//
// # Retry
//
// The cache itself never retries. Network errors, 5xx and 429 responses are
// wrapped in [RetryableError] so callers can opt in:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    _, err := cache.FromURL(ctx, url, httputil.FetchOptions{})
//	    return err
//	})
//
// # Configuration
//
// [NewFromConfig] reads the cache directory, User-Agent, Referer, timeout
// and rate limit from a [config.Config]. The cache can be emptied with
// `chartkit cache clear` or by deleting the directory.
package httputil
