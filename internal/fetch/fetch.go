// Package fetch renders source pages to stable DOM snapshots. JavaScript
// sources go through a headless browser session; static sources go through a
// plain HTTP collector. Both paths share one contract and one retry policy.
package fetch

import (
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// Default fetch settings.
const (
	// DefaultTimeout bounds a single page navigation.
	DefaultTimeout = 30 * time.Second
	// DefaultSettleDelay is the extra wait after the page is ready. Dynamic
	// content on these sources often finishes painting after the network
	// looks idle, so content is read only after this delay.
	DefaultSettleDelay = 2 * time.Second
	// DefaultRetryDelay is the wait before the single per-page retry.
	DefaultRetryDelay = 2 * time.Second
	// maxAttempts is navigation attempts per page: one try plus one retry.
	maxAttempts = 2
)

// Cookie is injected into the session before navigation.
type Cookie struct {
	Name   string
	Value  string
	Domain string
}

// Options control a single page fetch.
type Options struct {
	// Timeout bounds navigation and settle together.
	Timeout time.Duration
	// SettleDelay is the post-ready wait before the DOM is read.
	SettleDelay time.Duration
	// RetryDelay is the wait before the one retry on failure.
	RetryDelay time.Duration
	// Cookies are injected before navigation (session-authenticated sources).
	Cookies []Cookie
}

// withDefaults fills unset options.
func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.SettleDelay <= 0 {
		o.SettleDelay = DefaultSettleDelay
	}
	if o.RetryDelay <= 0 {
		o.RetryDelay = DefaultRetryDelay
	}
	return o
}

// RenderedPage is a stable DOM snapshot of a fetched page.
type RenderedPage struct {
	// URL is the final URL after redirects.
	URL string
	// Doc is the parsed document.
	Doc *goquery.Document
}

// VisibleText returns the page's rendered text with script, style and
// noscript content removed.
func (p *RenderedPage) VisibleText() string {
	body := p.Doc.Find("body").Clone()
	if body.Length() == 0 {
		return ""
	}
	body.Find("script, style, noscript").Remove()
	return strings.TrimSpace(body.Text())
}

// ErrorKind classifies fetch failures.
type ErrorKind string

const (
	// KindTimeout marks a navigation that exceeded its deadline.
	KindTimeout ErrorKind = "timeout"
	// KindNavigation marks any other navigation failure.
	KindNavigation ErrorKind = "navigation"
)

// FetchError is the typed result for expected fetch failures. The caller
// decides whether to skip the page; the single retry already happened inside
// the fetcher.
type FetchError struct {
	URL  string
	Kind ErrorKind
	Err  error
}

// Error implements the error interface.
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %s: %v", e.URL, e.Kind, e.Err)
}

// Unwrap returns the underlying error.
func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the failure was a deadline expiry.
func (e *FetchError) Timeout() bool { return e.Kind == KindTimeout }

// newPage parses rendered HTML into a RenderedPage.
func newPage(finalURL, html string) (*RenderedPage, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse rendered html: %w", err)
	}
	return &RenderedPage{URL: finalURL, Doc: doc}, nil
}
