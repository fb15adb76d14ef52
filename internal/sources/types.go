// Package sources manages the registry of event sources the crawler visits.
// Each source carries a declarative adapter spec describing how its pages are
// scraped, so per-source behavior lives in configuration rather than code.
package sources

import (
	"errors"
	"fmt"
	"net/url"
)

// Kind classifies how a source publishes events.
type Kind string

const (
	// KindWeb is a JavaScript-rendered institutional site.
	KindWeb Kind = "web"
	// KindSocial is a social-media feed.
	KindSocial Kind = "social"
	// KindSearch is an image-search result page.
	KindSearch Kind = "search"
)

// Cookie is a cookie injected into the browser session before navigation.
// Social sources require a logged-in session to render post content.
type Cookie struct {
	Name   string `mapstructure:"name" yaml:"name"`
	Value  string `mapstructure:"value" yaml:"value"`
	Domain string `mapstructure:"domain" yaml:"domain"`
}

// TextAnchors are the CSS selectors used to locate textual event fields on a
// detail page. Empty anchors leave the field absent; fields are never guessed.
type TextAnchors struct {
	Title     string `mapstructure:"title" yaml:"title"`
	Time      string `mapstructure:"time" yaml:"time"`
	Organizer string `mapstructure:"organizer" yaml:"organizer"`
	Gift      string `mapstructure:"gift" yaml:"gift"`
}

// AdapterSpec is the declarative scraping descriptor for one source: marker
// and denylist phrases for link discovery, the poster selector chain, and the
// text anchors for field extraction.
type AdapterSpec struct {
	// Markers are phrases at least one of which must appear in a link's
	// combined text for it to qualify as an event candidate.
	Markers []string `mapstructure:"markers" yaml:"markers"`
	// Denylist phrases disqualify a link outright (summary tables, press
	// releases, paused notices). Sources may extend the base list.
	Denylist []string `mapstructure:"denylist" yaml:"denylist"`
	// PosterSelectors is the ordered selector chain for poster images, most
	// specific container first. The final entry is the any-image fallback.
	PosterSelectors []string `mapstructure:"poster_selectors" yaml:"poster_selectors"`
	// Anchors locate textual fields on detail pages.
	Anchors TextAnchors `mapstructure:"anchors" yaml:"anchors"`
	// MaxCandidates caps the number of detail pages visited per crawl.
	MaxCandidates int `mapstructure:"max_candidates" yaml:"max_candidates"`
}

// Source describes one external site or platform crawled for events.
// Immutable configuration; created at process start, never mutated.
type Source struct {
	ID         string      `mapstructure:"id" yaml:"id"`
	Kind       Kind        `mapstructure:"kind" yaml:"kind"`
	Name       string      `mapstructure:"name" yaml:"name"`
	EntryURL   string      `mapstructure:"entry_url" yaml:"entry_url"`
	BaseURL    string      `mapstructure:"base_url" yaml:"base_url"`
	City       string      `mapstructure:"city" yaml:"city"`
	RequiresJS bool        `mapstructure:"requires_js" yaml:"requires_js"`
	Cookies    []Cookie    `mapstructure:"cookies" yaml:"cookies"`
	Adapter    AdapterSpec `mapstructure:"adapter" yaml:"adapter"`
}

// Default discovery and extraction settings applied when a source omits them.
var (
	DefaultMarkers         = []string{"捐血"}
	DefaultDenylist        = []string{"彙整", "如何回應", "新聞稿", "暫停"}
	DefaultPosterSelectors = []string{
		".activity-content img",
		".post-content img",
		"article img",
		".content img",
		"img",
	}
)

// DefaultMaxCandidates bounds the per-crawl batch size when unset.
const DefaultMaxCandidates = 30

// Validate checks that the source configuration is usable.
func (s *Source) Validate() error {
	if s.ID == "" {
		return errors.New("id is required")
	}
	if s.Name == "" {
		return errors.New("name is required")
	}
	switch s.Kind {
	case KindWeb, KindSocial, KindSearch:
	default:
		return fmt.Errorf("unknown source kind %q", s.Kind)
	}
	if s.EntryURL == "" {
		return errors.New("entry_url is required")
	}
	if _, err := url.ParseRequestURI(s.EntryURL); err != nil {
		return fmt.Errorf("invalid entry_url: %w", err)
	}
	if s.BaseURL != "" {
		if _, err := url.ParseRequestURI(s.BaseURL); err != nil {
			return fmt.Errorf("invalid base_url: %w", err)
		}
	}
	return nil
}

// applyDefaults fills unset adapter fields with the package defaults.
func (s *Source) applyDefaults() {
	if len(s.Adapter.Markers) == 0 {
		s.Adapter.Markers = DefaultMarkers
	}
	if len(s.Adapter.Denylist) == 0 {
		s.Adapter.Denylist = DefaultDenylist
	} else {
		s.Adapter.Denylist = append(append([]string{}, DefaultDenylist...), s.Adapter.Denylist...)
	}
	if len(s.Adapter.PosterSelectors) == 0 {
		s.Adapter.PosterSelectors = DefaultPosterSelectors
	}
	if s.Adapter.MaxCandidates <= 0 {
		s.Adapter.MaxCandidates = DefaultMaxCandidates
	}
	if s.BaseURL == "" {
		if u, err := url.Parse(s.EntryURL); err == nil {
			s.BaseURL = u.Scheme + "://" + u.Host
		}
	}
}
