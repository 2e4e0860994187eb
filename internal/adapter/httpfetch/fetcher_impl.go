// Package httpfetch implements PageFetcher over net/http.
package httpfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/http/cookiejar"
	"time"

	"golang.org/x/time/rate"

	"github.com/user/imagewatch/internal/repository"
)

const (
	// DefaultUserAgent is sent when no user agent is configured.
	DefaultUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_12_6) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/71.0.3578.98 Safari/537.36"
	DefaultTimeout = 10 * time.Second

	maxBodyBytes = 64 << 20
)

// Options configures a Fetcher.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// RateLimit caps requests per second across all callers. Zero disables limiting.
	RateLimit float64
}

// Fetcher issues GET requests with a shared cookie jar and a politeness limiter.
type Fetcher struct {
	client    *http.Client
	limiter   *rate.Limiter
	userAgent string
	timeout   time.Duration
}

// NewFetcher creates a Fetcher. The transport negotiates gzip on its own.
func NewFetcher(opts Options) (*Fetcher, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return newFetcher(&http.Client{Jar: jar}, opts), nil
}

func newFetcher(client *http.Client, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if opts.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), 1)
	}

	return &Fetcher{
		client:    client,
		limiter:   limiter,
		userAgent: opts.UserAgent,
		timeout:   opts.Timeout,
	}
}

// Fetch returns the body of url. Non-2xx responses, transport errors and
// timeouts come back as *repository.FetchError.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	if err := f.limiter.Wait(ctx); err != nil {
		return nil, classify(url, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, &repository.FetchError{Kind: repository.FetchErrorNetwork, URL: url, Cause: err}
	}
	req.Header.Set("User-Agent", f.userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, classify(url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, &repository.FetchError{
			Kind:       repository.FetchErrorHTTPStatus,
			URL:        url,
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, classify(url, err)
	}
	return body, nil
}

func classify(url string, err error) *repository.FetchError {
	kind := repository.FetchErrorNetwork

	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = repository.FetchErrorTimeout
	}
	return &repository.FetchError{Kind: kind, URL: url, Cause: err}
}
