// Package extract decides whether a rendered detail page describes a single
// genuine event and pulls out its poster image and textual metadata.
package extract

import (
	"errors"
	"time"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/fetch"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/normalize"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/sources"
)

// MaxDatesOnDetailPage is the summary-page threshold: a page describing one
// occasion should not mention more distinct calendar dates than this.
const MaxDatesOnDetailPage = 6

// Extraction rejections. All are skip-and-log conditions, never retried.
var (
	// ErrLooksLikeListing marks a detail URL that renders as a disguised
	// listing or summary page.
	ErrLooksLikeListing = errors.New("page looks like a listing, not a single event")
	// ErrNoPoster marks a page with no acceptable poster image.
	ErrNoPoster = errors.New("no acceptable poster image found")
	// ErrNoDate marks a page whose date could not be resolved.
	ErrNoDate = errors.New("no resolvable event date")
)

// Extractor extracts events from rendered detail pages.
type Extractor struct {
	log logger.Interface
}

// New creates an extractor.
func New(log logger.Interface) *Extractor {
	return &Extractor{log: log.WithComponent("extractor")}
}

// Extract turns a rendered detail page into an ExtractedEvent, or reports
// why the page was rejected. asOf anchors short-form date resolution.
func (e *Extractor) Extract(
	page *fetch.RenderedPage,
	candidate domain.CandidateLink,
	src *sources.Source,
	asOf time.Time,
) (*domain.ExtractedEvent, error) {
	text := page.VisibleText()

	if n := normalize.CountDistinctDates(text, asOf); n > MaxDatesOnDetailPage {
		e.log.Debug("rejecting disguised listing page",
			"source", src.ID, "url", page.URL, "distinct_dates", n)
		return nil, ErrLooksLikeListing
	}

	date, ok := resolveEventDate(candidate, text, asOf)
	if !ok {
		return nil, ErrNoDate
	}

	poster, ok := selectPoster(page, src.Adapter.PosterSelectors)
	if !ok {
		return nil, ErrNoPoster
	}

	event := &domain.ExtractedEvent{
		Date:      date.Format(normalize.ISODateLayout),
		City:      src.City,
		PosterURL: poster,
		SourceURL: page.URL,
	}
	fillTextFields(event, page, candidate, src, text)

	e.log.Debug("extracted event",
		"source", src.ID, "url", page.URL, "date", event.Date, "title", event.Title)
	return event, nil
}

// resolveEventDate prefers the candidate link's date tokens (the listing row
// is usually authoritative) and falls back to tokens found in the page text.
// A record with no resolvable date is dropped, never defaulted.
func resolveEventDate(candidate domain.CandidateLink, text string, asOf time.Time) (time.Time, bool) {
	for _, tok := range candidate.RawDateTokens {
		if d, ok := normalize.ParseFlexibleDate(tok, asOf); ok {
			return d, true
		}
	}
	for _, tok := range normalize.ExtractDateTokens(text) {
		if d, ok := normalize.ParseFlexibleDate(tok, asOf); ok {
			return d, true
		}
	}
	return time.Time{}, false
}
