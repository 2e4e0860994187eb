package chromedp_crawler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/user/imagewatch/internal/repository"
)

// ChromedpFetcher renders pages in headless Chrome before returning their HTML.
// It is used for sources whose galleries are built client-side.
type ChromedpFetcher struct {
	allocCtx    context.Context
	cancelAlloc context.CancelFunc
	timeout     time.Duration
	logger      *zap.Logger
}

// NewChromedpFetcher starts a shared browser allocator.
func NewChromedpFetcher(userAgent string, pageLoadTimeout time.Duration, logger *zap.Logger) *ChromedpFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &ChromedpFetcher{
		allocCtx:    allocCtx,
		cancelAlloc: cancel,
		timeout:     pageLoadTimeout,
		logger:      logger,
	}
}

// Fetch navigates to url and returns the rendered document.
func (c *ChromedpFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	taskCtx, cancel := chromedp.NewContext(c.allocCtx, chromedp.WithLogf(c.logger.Sugar().Debugf))
	defer cancel()

	taskCtx, cancel = context.WithTimeout(taskCtx, c.timeout)
	defer cancel()

	// Abort the browser tab when the caller gives up.
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	var (
		mu         sync.Mutex
		statusCode int64
	)
	chromedp.ListenTarget(taskCtx, func(ev interface{}) {
		if resp, ok := ev.(*network.EventResponseReceived); ok && resp.Type == network.ResourceTypeDocument {
			mu.Lock()
			if statusCode == 0 {
				statusCode = resp.Response.Status
			}
			mu.Unlock()
		}
	})

	var html string
	err := chromedp.Run(taskCtx,
		chromedp.Navigate(url),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		kind := repository.FetchErrorNetwork
		if taskCtx.Err() == context.DeadlineExceeded {
			kind = repository.FetchErrorTimeout
		}
		c.logger.Debug("Failed to render URL", zap.String("url", url), zap.Error(err))
		return nil, &repository.FetchError{Kind: kind, URL: url, Cause: fmt.Errorf("render: %w", err)}
	}

	mu.Lock()
	status := int(statusCode)
	mu.Unlock()
	if status >= 400 {
		return nil, &repository.FetchError{Kind: repository.FetchErrorHTTPStatus, URL: url, StatusCode: status}
	}

	c.logger.Debug("Rendered URL", zap.String("url", url), zap.Int("bytes", len(html)))
	return []byte(html), nil
}

// Close shuts the browser down.
func (c *ChromedpFetcher) Close() {
	c.cancelAlloc()
}
