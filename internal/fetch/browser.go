package fetch

import (
	"context"
	"errors"

	"github.com/cenkalti/backoff/v4"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
)

// Fetcher renders a URL to a stable DOM snapshot.
type Fetcher interface {
	FetchRendered(ctx context.Context, url string, opts Options) (*RenderedPage, error)
}

// Browser owns the headless-browser allocator for the process. One browser is
// started per run; tabs are cheap, browser startup is not.
type Browser struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	userAgent   string
	log         logger.Interface
}

// NewBrowser creates the process-wide browser allocator.
func NewBrowser(userAgent string, log logger.Interface) *Browser {
	opts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("lang", "zh-TW"),
		chromedp.UserAgent(userAgent),
	)
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)

	return &Browser{
		allocCtx:    allocCtx,
		allocCancel: cancel,
		userAgent:   userAgent,
		log:         log.WithComponent("browser"),
	}
}

// Close shuts the allocator down.
func (b *Browser) Close() {
	b.allocCancel()
}

// Session is one browser tab, held for the duration of a single source crawl
// and reused across its page fetches. Callers must Close it on every path.
type Session struct {
	ctx    context.Context
	cancel context.CancelFunc
	log    logger.Interface
}

// NewSession opens a tab against the shared allocator.
func (b *Browser) NewSession() *Session {
	ctx, cancel := chromedp.NewContext(b.allocCtx)
	return &Session{ctx: ctx, cancel: cancel, log: b.log}
}

// Close releases the tab.
func (s *Session) Close() {
	s.cancel()
}

// FetchRendered navigates the session's tab to url, waits for the document
// plus the settle delay, and snapshots the DOM. Failures are retried exactly
// once, then surfaced as a *FetchError for the caller to skip.
func (s *Session) FetchRendered(ctx context.Context, url string, opts Options) (*RenderedPage, error) {
	opts = opts.withDefaults()

	var page *RenderedPage
	attempt := func() error {
		p, err := s.navigate(ctx, url, opts)
		if err != nil {
			s.log.Warn("page fetch attempt failed", "url", url, "error", err)
			return err
		}
		page = p
		return nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(opts.RetryDelay), maxAttempts-1),
		ctx,
	)
	if err := backoff.Retry(attempt, policy); err != nil {
		return nil, classify(url, err)
	}
	return page, nil
}

// navigate performs one render attempt.
func (s *Session) navigate(ctx context.Context, url string, opts Options) (*RenderedPage, error) {
	navCtx, cancel := context.WithTimeout(s.ctx, opts.Timeout)
	defer cancel()

	// Propagate caller cancellation into the tab context.
	if done := ctx.Done(); done != nil {
		go func() {
			select {
			case <-done:
				cancel()
			case <-navCtx.Done():
			}
		}()
	}

	// Wait strategy: document-ready plus the fixed settle delay. There is no
	// network-idle detection; SettleDelay is the knob that absorbs late
	// painting on slow sources.
	var html string
	actions := []chromedp.Action{
		setCookies(opts.Cookies),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(opts.SettleDelay),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(navCtx, actions...); err != nil {
		return nil, err
	}

	return newPage(url, html)
}

// setCookies injects session cookies before navigation.
func setCookies(cookies []Cookie) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		for _, c := range cookies {
			err := network.SetCookie(c.Name, c.Value).
				WithDomain(c.Domain).
				WithPath("/").
				WithExpires(nil).
				Do(ctx)
			if err != nil {
				return err
			}
		}
		return nil
	})
}

// classify wraps a navigation failure in a typed FetchError.
func classify(url string, err error) *FetchError {
	kind := KindNavigation
	if errors.Is(err, context.DeadlineExceeded) {
		kind = KindTimeout
	}
	var nErr interface{ Timeout() bool }
	if errors.As(err, &nErr) && nErr.Timeout() {
		kind = KindTimeout
	}
	return &FetchError{URL: url, Kind: kind, Err: err}
}

var _ Fetcher = (*Session)(nil)
