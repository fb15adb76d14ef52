// Package discover scans rendered listing pages for candidate detail-page
// links that look like live, still-relevant events.
package discover

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/fetch"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/normalize"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/sources"
)

// Discover returns the ordered, URL-deduplicated set of candidate links on a
// listing page, capped at the source's batch size.
//
// An anchor qualifies when its combined text carries an event marker and no
// denylisted phrase. Date tokens in the text decide recency: at least one
// token resolving to >= asOf keeps the link, tokens that are all past drop
// it, and no resolvable token keeps it for the detail page to confirm.
func Discover(page *fetch.RenderedPage, src *sources.Source, asOf time.Time, log logger.Interface) []domain.CandidateLink {
	base, err := url.Parse(src.BaseURL)
	if err != nil {
		log.Error("invalid source base url", "source", src.ID, "base_url", src.BaseURL, "error", err)
		return nil
	}

	var (
		candidates []domain.CandidateLink
		seen       = make(map[string]struct{})
	)

	page.Doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		if len(candidates) >= src.Adapter.MaxCandidates {
			return false
		}

		combined := combinedText(sel)
		if !qualifies(combined, src) {
			return true
		}

		tokens, keep := recencyFilter(combined, asOf)
		if !keep {
			log.Debug("dropping stale candidate", "source", src.ID, "text", combined)
			return true
		}

		href, _ := sel.Attr("href")
		resolved := resolveHref(base, href)
		if resolved == "" {
			return true
		}
		if _, dup := seen[resolved]; dup {
			return true
		}
		seen[resolved] = struct{}{}

		candidates = append(candidates, domain.CandidateLink{
			URL:           resolved,
			DisplayText:   combined,
			RawDateTokens: tokens,
		})
		return true
	})

	log.Info("link discovery finished", "source", src.ID, "candidates", len(candidates))
	return candidates
}

// combinedText merges the anchor's visible text with its title attribute and
// any nested image alt text, the signals sources spread a link's label over.
func combinedText(sel *goquery.Selection) string {
	parts := []string{strings.TrimSpace(sel.Text())}
	if title, ok := sel.Attr("title"); ok {
		parts = append(parts, strings.TrimSpace(title))
	}
	sel.Find("img[alt]").Each(func(_ int, img *goquery.Selection) {
		if alt, ok := img.Attr("alt"); ok {
			parts = append(parts, strings.TrimSpace(alt))
		}
	})
	return strings.TrimSpace(strings.Join(parts, " "))
}

// qualifies applies the marker requirement and the denylist.
func qualifies(text string, src *sources.Source) bool {
	if text == "" {
		return false
	}
	marked := false
	for _, marker := range src.Adapter.Markers {
		if strings.Contains(text, marker) {
			marked = true
			break
		}
	}
	if !marked {
		return false
	}
	for _, phrase := range src.Adapter.Denylist {
		if strings.Contains(text, phrase) {
			return false
		}
	}
	return true
}

// recencyFilter resolves the date tokens in text against asOf. It returns the
// raw tokens and whether the link should be kept.
func recencyFilter(text string, asOf time.Time) ([]string, bool) {
	tokens := normalize.ExtractDateTokens(text)
	if len(tokens) == 0 {
		// no date on the listing row; the detail page must confirm
		return nil, true
	}

	// Parsed tokens are UTC calendar dates, so the cutoff is asOf's calendar
	// day in UTC; truncating the instant instead would shift the boundary by
	// the zone offset around midnight.
	day := time.Date(asOf.Year(), asOf.Month(), asOf.Day(), 0, 0, 0, 0, time.UTC)
	resolvedAny := false
	for _, tok := range tokens {
		d, ok := normalize.ParseFlexibleDate(tok, asOf)
		if !ok {
			continue
		}
		resolvedAny = true
		if !d.Before(day) {
			return tokens, true
		}
	}
	if !resolvedAny {
		return tokens, true
	}
	return tokens, false
}

// resolveHref resolves href against the source base URL and filters out
// non-page references.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
