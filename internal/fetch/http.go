package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/cenkalti/backoff/v4"
	colly "github.com/gocolly/colly/v2"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
)

// HTTPFetcher fetches sources that render server-side, without the cost of a
// browser tab. Same contract and retry policy as the browser session.
type HTTPFetcher struct {
	userAgent string
	log       logger.Interface
}

// NewHTTPFetcher creates a plain-HTTP fetcher.
func NewHTTPFetcher(userAgent string, log logger.Interface) *HTTPFetcher {
	return &HTTPFetcher{
		userAgent: userAgent,
		log:       log.WithComponent("http_fetcher"),
	}
}

// FetchRendered fetches url over HTTP and parses the response body. The name
// keeps the Fetcher contract: for static sources the served HTML is the
// rendered document.
func (f *HTTPFetcher) FetchRendered(ctx context.Context, pageURL string, opts Options) (*RenderedPage, error) {
	opts = opts.withDefaults()

	var page *RenderedPage
	attempt := func() error {
		p, err := f.visit(ctx, pageURL, opts)
		if err != nil {
			f.log.Warn("page fetch attempt failed", "url", pageURL, "error", err)
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
		return nil, classify(pageURL, err)
	}
	return page, nil
}

// visit performs one fetch attempt through a fresh collector.
func (f *HTTPFetcher) visit(ctx context.Context, pageURL string, opts Options) (*RenderedPage, error) {
	c := colly.NewCollector(
		colly.UserAgent(f.userAgent),
		colly.AllowURLRevisit(),
		colly.StdlibContext(ctx),
	)
	c.SetRequestTimeout(opts.Timeout)

	if len(opts.Cookies) > 0 {
		if err := f.setCookies(c, pageURL, opts.Cookies); err != nil {
			return nil, err
		}
	}

	var (
		body     []byte
		finalURL string
	)
	c.OnResponse(func(r *colly.Response) {
		body = r.Body
		finalURL = r.Request.URL.String()
	})

	if err := c.Visit(pageURL); err != nil {
		return nil, err
	}
	c.Wait()

	if len(body) == 0 {
		return nil, errors.New("empty response body")
	}
	return newPage(finalURL, string(body))
}

// setCookies registers cookies with the collector's cookie jar.
func (f *HTTPFetcher) setCookies(c *colly.Collector, pageURL string, cookies []Cookie) error {
	u, err := url.Parse(pageURL)
	if err != nil {
		return err
	}
	httpCookies := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		httpCookies = append(httpCookies, &http.Cookie{
			Name:   ck.Name,
			Value:  ck.Value,
			Domain: ck.Domain,
			Path:   "/",
		})
	}
	return c.SetCookies(u.Scheme+"://"+u.Host, httpCookies)
}

var _ Fetcher = (*HTTPFetcher)(nil)
