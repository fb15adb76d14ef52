// Package pipeline orchestrates a crawl: fetch the source's listing, discover
// candidate links, extract events from detail pages, reconcile them against
// the persisted set, enrich with coordinates, and persist the outcome.
package pipeline

import (
	"context"
	"time"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/dedup"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/discover"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/extract"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/fetch"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/geocode"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/normalize"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/sources"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/storage"
)

// DefaultDateWindow bounds the persisted-set window loaded for reconciliation.
const DefaultDateWindow = 90 * 24 * time.Hour

// EventStore is the persistence surface the pipeline needs.
type EventStore interface {
	Upsert(ctx context.Context, events []domain.PersistedEvent) error
	DeleteByIDs(ctx context.Context, ids []string) error
	ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.PersistedEvent, error)
	FindByPosterURL(ctx context.Context, posterURL string) ([]domain.PersistedEvent, error)
}

// Geocoder resolves an address to coordinates, best effort.
type Geocoder interface {
	Resolve(ctx context.Context, address string) (*geocode.Coordinate, error)
}

// VisionClient extracts events from a poster image.
type VisionClient interface {
	Extract(ctx context.Context, imageURL string) ([]domain.ExtractedEvent, error)
}

// PageSession is a scoped fetcher, released when the source crawl ends.
type PageSession interface {
	fetch.Fetcher
	Close()
}

// SessionOpener hands out one PageSession per source crawl.
type SessionOpener interface {
	NewSession() PageSession
}

// BrowserOpener adapts the shared browser allocator to SessionOpener.
type BrowserOpener struct {
	Browser *fetch.Browser
}

// NewSession opens a browser tab.
func (b BrowserOpener) NewSession() PageSession {
	return b.Browser.NewSession()
}

// Config tunes a Runner.
type Config struct {
	// FetchOptions apply to every page fetch; source cookies are added per
	// source.
	FetchOptions fetch.Options
	// DateWindow bounds how far around asOf the persisted set is loaded for
	// reconciliation.
	DateWindow time.Duration
}

// Deps are the collaborators a Runner drives.
type Deps struct {
	Sessions SessionOpener
	Static   fetch.Fetcher
	Store    EventStore
	Geocoder Geocoder
	Vision   VisionClient
	Logger   logger.Interface
}

// Runner executes crawls for configured sources, strictly sequentially.
type Runner struct {
	deps      Deps
	cfg       Config
	extractor *extract.Extractor
	log       logger.Interface
}

// New creates a Runner.
func New(deps Deps, cfg Config) *Runner {
	if cfg.DateWindow <= 0 {
		cfg.DateWindow = DefaultDateWindow
	}
	return &Runner{
		deps:      deps,
		cfg:       cfg,
		extractor: extract.New(deps.Logger),
		log:       deps.Logger.WithComponent("pipeline"),
	}
}

// CrawlAll crawls every source in order. A failing source contributes zero
// events and an error count; it never aborts the run.
func (r *Runner) CrawlAll(ctx context.Context, list []sources.Source, asOf time.Time) []domain.CrawlSummary {
	summaries := make([]domain.CrawlSummary, 0, len(list))
	for i := range list {
		src := &list[i]
		batch, err := r.CrawlSource(ctx, src, asOf)
		if err != nil {
			r.log.Error("source crawl failed", "source", src.ID, "error", err)
		}
		summaries = append(summaries, batch.Summary)
	}
	return summaries
}

// CrawlSource runs the full pipeline for one source. The returned batch is
// valid even on error; its summary carries whatever was counted before the
// failure.
func (r *Runner) CrawlSource(ctx context.Context, src *sources.Source, asOf time.Time) (domain.CrawlBatch, error) {
	batch := domain.CrawlBatch{SourceID: src.ID}
	batch.Summary.SourceID = src.ID
	log := r.log.WithSource(src.ID)

	fetcher, release := r.acquireFetcher(src)
	defer release()

	opts := r.cfg.FetchOptions
	opts.Cookies = toFetchCookies(src.Cookies)

	listing, err := fetcher.FetchRendered(ctx, src.EntryURL, opts)
	if err != nil {
		batch.Summary.Failed++
		return batch, err
	}

	candidates := discover.Discover(listing, src, asOf, log)
	batch.Summary.Discovered = len(candidates)

	for _, candidate := range candidates {
		events, ok := r.processCandidate(ctx, fetcher, opts, candidate, src, asOf, log)
		if !ok {
			batch.Summary.Failed++
			continue
		}
		batch.Summary.Extracted += len(events)
		batch.Events = append(batch.Events, events...)
	}

	if err := r.persist(ctx, &batch, asOf, log); err != nil {
		batch.Summary.Failed++
		return batch, err
	}

	log.Info("source crawl complete",
		"discovered", batch.Summary.Discovered,
		"extracted", batch.Summary.Extracted,
		"merged", batch.Summary.Merged,
		"inserted", batch.Summary.Inserted,
		"replaced", batch.Summary.Replaced,
		"failed", batch.Summary.Failed)
	return batch, nil
}

// acquireFetcher picks the rendering path for the source. JS sources get a
// dedicated browser session that must be released on every path; static
// sources share the HTTP fetcher.
func (r *Runner) acquireFetcher(src *sources.Source) (fetch.Fetcher, func()) {
	if src.RequiresJS {
		session := r.deps.Sessions.NewSession()
		return session, session.Close
	}
	return r.deps.Static, func() {}
}

// processCandidate turns one candidate link into zero or more events. A false
// return means the page failed and counts against the source; an empty slice
// with true means the page was legitimately skipped.
func (r *Runner) processCandidate(
	ctx context.Context,
	fetcher fetch.Fetcher,
	opts fetch.Options,
	candidate domain.CandidateLink,
	src *sources.Source,
	asOf time.Time,
	log logger.Interface,
) ([]domain.ExtractedEvent, bool) {
	if src.Kind == sources.KindSearch {
		return r.extractFromImage(ctx, candidate, src, log)
	}

	page, err := fetcher.FetchRendered(ctx, candidate.URL, opts)
	if err != nil {
		log.Warn("skipping unreachable detail page", "url", candidate.URL, "error", err)
		return nil, false
	}

	event, err := r.extractor.Extract(page, candidate, src, asOf)
	if err != nil {
		// Rejections are expected outcomes, not failures.
		log.Debug("detail page rejected", "url", candidate.URL, "reason", err)
		return nil, true
	}
	return []domain.ExtractedEvent{*event}, true
}

// extractFromImage handles search-kind sources, where the discovered link is
// the poster itself and a vision service reads the event details out of it.
func (r *Runner) extractFromImage(
	ctx context.Context,
	candidate domain.CandidateLink,
	src *sources.Source,
	log logger.Interface,
) ([]domain.ExtractedEvent, bool) {
	events, err := r.deps.Vision.Extract(ctx, candidate.URL)
	if err != nil {
		log.Warn("vision extraction failed", "image_url", candidate.URL, "error", err)
		return nil, false
	}
	for i := range events {
		if events[i].City == "" {
			events[i].City = src.City
		}
	}
	return events, true
}

// persist reconciles the batch against the store's current window, geocodes
// records missing coordinates, and applies the resulting plan.
func (r *Runner) persist(ctx context.Context, batch *domain.CrawlBatch, asOf time.Time, log logger.Interface) error {
	from := asOf.AddDate(0, 0, -1)
	to := asOf.Add(r.cfg.DateWindow)
	existing, err := r.deps.Store.ListByDateRange(ctx, from, to)
	if err != nil {
		return err
	}
	existing, err = r.addPosterMatches(ctx, batch.Events, existing)
	if err != nil {
		return err
	}

	plan := dedup.Reconcile(batch.Events, existing)
	batch.Summary.Merged = len(plan.ToDrop)
	batch.Summary.Inserted = len(plan.ToInsert)
	batch.Summary.Replaced = len(plan.ToReplace)

	rows := make([]domain.PersistedEvent, 0, len(plan.ToInsert)+len(plan.ToReplace))
	for _, e := range plan.ToInsert {
		rows = append(rows, domain.PersistedEvent{ID: storage.NewEventID(), ExtractedEvent: e})
	}
	for _, rep := range plan.ToReplace {
		rows = append(rows, domain.PersistedEvent{ID: rep.ExistingID, ExtractedEvent: rep.Event})
	}
	r.geocodeMissing(ctx, rows, log)

	if len(rows) > 0 {
		if err := r.deps.Store.Upsert(ctx, rows); err != nil {
			return err
		}
	}
	if len(plan.ToDelete) > 0 {
		if err := r.deps.Store.DeleteByIDs(ctx, plan.ToDelete); err != nil {
			return err
		}
	}
	return nil
}

// addPosterMatches pulls in persisted records that share a poster reference
// with an incoming event but whose stored date fell outside the window. An
// identical poster identifies the same occasion even when its stored text
// extraction diverged, so such records must reach the reconciler too.
func (r *Runner) addPosterMatches(
	ctx context.Context,
	events []domain.ExtractedEvent,
	existing []domain.PersistedEvent,
) ([]domain.PersistedEvent, error) {
	have := make(map[string]struct{}, len(existing))
	for _, ex := range existing {
		have[ex.ID] = struct{}{}
	}

	queried := make(map[string]struct{})
	for _, e := range events {
		if e.PosterURL == "" {
			continue
		}
		if _, done := queried[e.PosterURL]; done {
			continue
		}
		queried[e.PosterURL] = struct{}{}

		matches, err := r.deps.Store.FindByPosterURL(ctx, e.PosterURL)
		if err != nil {
			return nil, err
		}
		for _, m := range matches {
			if _, dup := have[m.ID]; dup {
				continue
			}
			have[m.ID] = struct{}{}
			existing = append(existing, m)
		}
	}
	return existing, nil
}

// geocodeMissing fills coordinates where absent. Lookup failures and misses
// leave coordinates nil; the event persists regardless.
func (r *Runner) geocodeMissing(ctx context.Context, rows []domain.PersistedEvent, log logger.Interface) {
	for i := range rows {
		if rows[i].HasCoordinates() || rows[i].Location == "" {
			continue
		}
		address := normalize.BuildFullAddress(rows[i].City, rows[i].District, rows[i].Location)
		coord, err := r.deps.Geocoder.Resolve(ctx, address)
		if err != nil || coord == nil {
			continue
		}
		rows[i].Latitude = &coord.Latitude
		rows[i].Longitude = &coord.Longitude
	}
}

// toFetchCookies converts source cookie config to fetch cookies.
func toFetchCookies(cookies []sources.Cookie) []fetch.Cookie {
	if len(cookies) == 0 {
		return nil
	}
	out := make([]fetch.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, fetch.Cookie{Name: c.Name, Value: c.Value, Domain: c.Domain})
	}
	return out
}
