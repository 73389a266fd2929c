package httputil

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"image"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/time/rate"

	"github.com/matzehuels/chartkit/pkg/config"
	"github.com/matzehuels/chartkit/pkg/errors"
	"github.com/matzehuels/chartkit/pkg/observability"
	"github.com/matzehuels/chartkit/pkg/raster"
)

// RateScope selects how download delays are shared.
type RateScope string

const (
	// RateGlobal spaces out every download made through the cache.
	RateGlobal RateScope = config.ScopeGlobal
	// RatePerHost spaces out downloads from the same host only.
	RatePerHost RateScope = config.ScopeHost
)

const (
	// sidecarExt is appended to a cached file's name to record its source URL.
	sidecarExt = ".url"
	tmpPrefix  = ".tmp-"
	hashExt    = ".img"
	maxNameLen = 200
)

// ImageCache downloads images once and serves them from a directory.
//
// Each cached URL is one file in the directory, plus a sibling file with
// the ".url" suffix recording where it came from. Files are published by
// renaming a fully written temporary file, so readers never observe a
// partial image. Concurrent requests for the same destination file share a
// single download.
//
// An ImageCache is safe for concurrent use. Several caches, even in
// different processes, may share a directory.
type ImageCache struct {
	dir     string
	client  *http.Client
	headers http.Header
	delay   time.Duration
	scope   RateScope
	logger  *log.Logger
	hooks   observability.CacheHooks

	group singleflight.Group

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	// claimMu guards claims, the destinations being downloaded into and the
	// URL each one belongs to.
	claimMu sync.Mutex
	claims  map[string]string
}

// Option configures an ImageCache.
type Option func(*ImageCache)

// WithHTTPClient sets the client used for downloads.
func WithHTTPClient(client *http.Client) Option {
	return func(c *ImageCache) {
		if client != nil {
			c.client = client
		}
	}
}

// WithHeaders adds headers sent with every download.
func WithHeaders(h http.Header) Option {
	return func(c *ImageCache) {
		for k, vs := range h {
			for _, v := range vs {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithRateLimit sets the minimum delay between downloads in the given scope.
func WithRateLimit(delay time.Duration, scope RateScope) Option {
	return func(c *ImageCache) {
		c.delay = delay
		c.scope = scope
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(c *ImageCache) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHooks sets the cache hooks. The default is [observability.Cache].
func WithHooks(h observability.CacheHooks) Option {
	return func(c *ImageCache) {
		if h != nil {
			c.hooks = h
		}
	}
}

// NewImageCache creates a cache rooted at dir, creating the directory if
// needed. An empty dir means the configured default cache directory.
func NewImageCache(dir string, opts ...Option) (*ImageCache, error) {
	if dir == "" {
		dir = config.Current().CacheDir
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "could not create cache directory %s", dir)
	}
	c := &ImageCache{
		dir:      dir,
		client:   &http.Client{Timeout: 30 * time.Second},
		headers:  http.Header{},
		scope:    RatePerHost,
		logger:   log.New(io.Discard),
		hooks:    observability.Cache(),
		limiters: map[string]*rate.Limiter{},
		claims:   map[string]string{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// NewFromConfig creates a cache using the directory, HTTP identity, timeout
// and rate limit of cfg. A nil cfg means [config.Current].
func NewFromConfig(cfg *config.Config) (*ImageCache, error) {
	cfg = config.Or(cfg)
	h := http.Header{}
	if cfg.UserAgent != "" {
		h.Set("User-Agent", cfg.UserAgent)
	}
	if cfg.Referer != "" {
		h.Set("Referer", cfg.Referer)
	}
	return NewImageCache(cfg.CacheDir,
		WithHTTPClient(&http.Client{Timeout: cfg.HTTPTimeout.Duration}),
		WithHeaders(h),
		WithRateLimit(cfg.RateLimit.Duration, RateScope(cfg.RateScope)),
		WithLogger(cfg.Log()),
	)
}

// FetchOptions tune a single FromURL call.
type FetchOptions struct {
	// Filename overrides the derived cache filename.
	Filename string

	// Headers are added to the cache-wide headers, replacing same-named ones.
	Headers http.Header

	// Delay and Scope override the cache's rate limit when Delay is non-zero.
	Delay time.Duration
	Scope RateScope
}

// Dir returns the cache directory.
func (c *ImageCache) Dir() string { return c.dir }

// Path returns the file a URL is (or would be) cached under.
//
// A name already recorded for another URL, or being downloaded for one, is
// not reused: the URL gets the name with a short hash of itself appended.
func (c *ImageCache) Path(rawURL, filename string) (string, error) {
	return c.resolve(rawURL, filename, false)
}

// resolve implements Path. With claim set, a free name is reserved for
// rawURL until [ImageCache.release].
func (c *ImageCache) resolve(rawURL, filename string, claim bool) (string, error) {
	if err := errors.ValidateURL(rawURL); err != nil {
		return "", err
	}
	if filename == "" {
		filename = DeriveFilename(rawURL)
	} else if err := errors.ValidateFilename(filename); err != nil {
		return "", err
	}
	p := filepath.Join(c.dir, filename)

	c.claimMu.Lock()
	defer c.claimMu.Unlock()
	owner, owned := readSidecar(p)
	if !owned {
		owner, owned = c.claims[p]
	}
	switch {
	case owned && owner != rawURL:
		ext := filepath.Ext(filename)
		p = filepath.Join(c.dir, strings.TrimSuffix(filename, ext)+"-"+urlHash(rawURL)[:8]+ext)
	case claim && !owned && !exists(p):
		c.claims[p] = rawURL
	}
	return p, nil
}

func (c *ImageCache) release(dest, rawURL string) {
	c.claimMu.Lock()
	if c.claims[dest] == rawURL {
		delete(c.claims, dest)
	}
	c.claimMu.Unlock()
}

// cached reports whether dest holds the image of rawURL. Files without a
// source record are trusted.
func cached(dest, rawURL string) bool {
	if !exists(dest) {
		return false
	}
	owner, ok := readSidecar(dest)
	return !ok || owner == rawURL
}

// FromURL returns the image at rawURL, downloading it into the cache on
// first use.
//
// Only one download runs per URL and destination file; concurrent callers
// wait for it and receive their own copy of the result. Network failures
// and 5xx responses are FETCH_FAILURE errors wrapping a [RetryableError]. A
// body that does not decode is a DECODE_FAILURE and nothing is written.
func (c *ImageCache) FromURL(ctx context.Context, rawURL string, opts FetchOptions) (*image.NRGBA, error) {
	dest, err := c.Path(rawURL, opts.Filename)
	if err != nil {
		return nil, err
	}
	name := filepath.Base(dest)

	if cached(dest, rawURL) {
		c.hooks.OnCacheHit(ctx, name)
		c.logger.Debug("image cache hit", "file", name)
		return raster.Load(dest)
	}
	c.hooks.OnCacheMiss(ctx, name)

	v, err, shared := c.group.Do(rawURL+"\x00"+dest, func() (any, error) {
		// Ownership may have changed since Path, and a previous flight may
		// have published the file already.
		dest, err := c.resolve(rawURL, opts.Filename, true)
		if err != nil {
			return nil, err
		}
		defer c.release(dest, rawURL)
		if cached(dest, rawURL) {
			return raster.Load(dest)
		}
		return c.fetch(ctx, rawURL, dest, opts)
	})
	if err != nil {
		return nil, err
	}
	img := v.(*image.NRGBA)
	if shared {
		img = raster.Clone(img)
	}
	return img, nil
}

// Clear removes every file in the cache directory.
func (c *ImageCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "could not read cache directory %s", c.dir)
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(errors.ErrCodeInternal, err, "could not remove %s", e.Name())
		}
	}
	c.logger.Info("image cache cleared", "dir", c.dir, "files", len(entries))
	return nil
}

func (c *ImageCache) fetch(ctx context.Context, rawURL, dest string, opts FetchOptions) (*image.NRGBA, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL %s", rawURL)
	}
	if err := c.wait(ctx, u.Host, opts); err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, err, "cancelled before fetching %s", rawURL)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid URL %s", rawURL)
	}
	for k, vs := range c.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	for k, vs := range opts.Headers {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	httpHooks := observability.HTTP()
	httpHooks.OnRequest(ctx, req.Method, u.Host, u.Path)
	c.logger.Debug("downloading image", "url", rawURL)
	start := time.Now()

	resp, err := c.client.Do(req)
	if err != nil {
		httpHooks.OnError(ctx, req.Method, u.Host, u.Path, err)
		return nil, errors.Wrap(errors.ErrCodeFetch, &RetryableError{Err: err}, "could not fetch %s", rawURL)
	}
	defer resp.Body.Close()
	httpHooks.OnResponse(ctx, req.Method, u.Host, u.Path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var cause error = &errors.StatusError{URL: rawURL, StatusCode: resp.StatusCode}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			cause = &RetryableError{Err: cause}
		}
		return nil, errors.Wrap(errors.ErrCodeFetch, cause, "could not fetch %s", rawURL)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFetch, &RetryableError{Err: err}, "could not read %s", rawURL)
	}
	img, _, err := raster.DecodeBytes(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeDecode, err, "%s is not an image", rawURL)
	}
	if err := c.store(dest, rawURL, data); err != nil {
		return nil, err
	}
	c.hooks.OnCacheSet(ctx, filepath.Base(dest), len(data))
	c.logger.Info("cached image", "file", filepath.Base(dest), "bytes", len(data))
	return img, nil
}

// wait blocks until the rate limiter for host admits a request.
func (c *ImageCache) wait(ctx context.Context, host string, opts FetchOptions) error {
	delay, scope := c.delay, c.scope
	if opts.Delay > 0 {
		delay, scope = opts.Delay, opts.Scope
	}
	if delay <= 0 {
		return nil
	}
	key := ""
	if scope != RateGlobal {
		key = host
	}
	key += "|" + delay.String()

	c.mu.Lock()
	lim, ok := c.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(delay), 1)
		c.limiters[key] = lim
	}
	c.mu.Unlock()
	return lim.Wait(ctx)
}

// store records the source URL of dest, then publishes data there. The
// record is removed again if the image cannot be written.
func (c *ImageCache) store(dest, rawURL string, data []byte) error {
	if err := writeAtomic(dest+sidecarExt, []byte(rawURL+"\n")); err != nil {
		return err
	}
	if err := writeAtomic(dest, data); err != nil {
		if rmErr := os.Remove(dest + sidecarExt); rmErr != nil && !os.IsNotExist(rmErr) {
			c.logger.Warn("could not remove image source record", "file", filepath.Base(dest), "err", rmErr)
		}
		return err
	}
	return nil
}

// writeAtomic writes data to a temporary file next to path, syncs it and
// renames it into place. The temporary file is removed on any failure.
func writeAtomic(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "could not create %s", dir)
	}
	tmp := filepath.Join(dir, tmpPrefix+uuid.NewString())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "could not create temporary file in %s", dir)
	}
	defer func() {
		if err != nil {
			f.Close()
			os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "could not write %s", tmp)
	}
	if err = f.Sync(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "could not sync %s", tmp)
	}
	if err = f.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "could not close %s", tmp)
	}
	if err = os.Rename(tmp, path); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "could not publish %s", path)
	}
	return nil
}

// DeriveFilename returns the default cache filename for a URL: the
// percent-decoded, NFC-normalised basename of its path with unsafe
// characters replaced, or a hash of the URL when that is empty.
func DeriveFilename(rawURL string) string {
	var base string
	if u, err := url.Parse(rawURL); err == nil {
		base = path.Base(u.EscapedPath())
		if dec, err := url.PathUnescape(base); err == nil {
			base = dec
		}
		if base == "/" || base == "." {
			base = ""
		}
	}
	base = sanitize(norm.NFC.String(base))
	if base == "" || len(base) > maxNameLen {
		return urlHash(rawURL)[:16] + hashExt
	}
	return base
}

func sanitize(name string) string {
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, name)
	return strings.TrimLeft(name, ".")
}

func urlHash(rawURL string) string {
	h := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(h[:])
}

func readSidecar(p string) (string, bool) {
	data, err := os.ReadFile(p + sidecarExt)
	if err != nil {
		return "", false
	}
	return strings.TrimSpace(string(data)), true
}

func exists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}

var (
	sharedMu     sync.Mutex
	sharedCaches = map[*config.Config]*ImageCache{}
)

// FromURLWithCache fetches rawURL through the cache described by cfg (nil
// means [config.Current]). Caches are shared per configuration value, so
// concurrent calls coordinate their downloads.
func FromURLWithCache(ctx context.Context, cfg *config.Config, rawURL, filename string) (*image.NRGBA, error) {
	cfg = config.Or(cfg)
	sharedMu.Lock()
	c, ok := sharedCaches[cfg]
	if !ok {
		var err error
		if c, err = NewFromConfig(cfg); err != nil {
			sharedMu.Unlock()
			return nil, err
		}
		sharedCaches[cfg] = c
	}
	sharedMu.Unlock()
	return c.FromURL(ctx, rawURL, FetchOptions{Filename: filename})
}
