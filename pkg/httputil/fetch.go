package httputil

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/matzehuels/spritestyle/pkg/errors"
)

// Fetch defaults.
const (
	DefaultMaxSize  = 8 << 20
	DefaultAttempts = 3
	DefaultDelay    = time.Second
	DefaultTimeout  = 30 * time.Second
)

// Fetcher downloads bodies over HTTP, consulting an optional [Cache] first.
type Fetcher struct {
	Client   *http.Client
	Cache    *Cache // nil disables caching
	MaxSize  int64  // larger bodies are rejected
	Attempts int
	Delay    time.Duration // first retry delay, doubled after each retry
}

// NewFetcher returns a Fetcher with the package defaults. c may be nil.
func NewFetcher(c *Cache) *Fetcher {
	return &Fetcher{
		Client:   &http.Client{Timeout: DefaultTimeout},
		Cache:    c,
		MaxSize:  DefaultMaxSize,
		Attempts: DefaultAttempts,
		Delay:    DefaultDelay,
	}
}

// IsURL reports whether s is an http or https URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

// Fetch returns the body at url. A fresh cache entry is returned without a
// request; a stale one is refetched and only served if the refetch fails.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	var stale []byte
	if f.Cache != nil {
		body, ok, err := f.Cache.Get(url)
		if ok {
			return body, nil
		}
		if stderrors.Is(err, ErrExpired) {
			stale = body
		}
	}

	var body []byte
	err := Retry(ctx, f.Attempts, f.Delay, func() error {
		var err error
		body, err = f.get(ctx, url)
		return err
	})
	if err != nil {
		if stale != nil && !errors.Is(err, errors.ErrCodeFileNotFound) {
			return stale, nil
		}
		return nil, unwrapRetryable(err)
	}

	if f.Cache != nil {
		_ = f.Cache.Set(url, body)
	}
	return body, nil
}

func (f *Fetcher) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "bad url %q", url)
	}
	resp, err := f.Client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, &RetryableError{Err: fmt.Errorf("fetch %s: %w", url, err)}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, errors.New(errors.ErrCodeFileNotFound, "%s not found", url)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &RetryableError{Err: fmt.Errorf("fetch %s: %s", url, resp.Status)}
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "fetch %s: %s", url, resp.Status)
	}

	limit := f.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("read %s: %w", url, err)}
	}
	if int64(len(body)) > limit {
		return nil, errors.New(errors.ErrCodeInvalidInput, "%s is larger than %d bytes", url, limit)
	}
	return body, nil
}

// unwrapRetryable turns an exhausted transient failure into a coded error.
func unwrapRetryable(err error) error {
	var re *RetryableError
	if stderrors.As(err, &re) {
		return errors.Wrap(errors.ErrCodeInvalidInput, re.Err, "download failed")
	}
	return err
}
