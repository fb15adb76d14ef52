package extract

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/fetch"
)

// minPosterDimension rejects images that declare themselves smaller than a
// plausible poster (icons, avatars, spacers).
const minPosterDimension = 120

// uploadPathTokens mark user-uploaded media on the sources we crawl. Images
// outside these paths are almost always site chrome.
var uploadPathTokens = []string{
	"file_pool", "upload", "uploads", "media", "files", "attach",
}

// rejectPathTokens mark site chrome regardless of where the image lives.
var rejectPathTokens = []string{"logo", "icon", "favicon", "banner_ad"}

// qrQueryMarkers mark QR-code generator URLs.
var qrQueryMarkers = []string{"qrcode", "qr_code", "chl="}

// selectPoster walks the source's ordered selector chain and returns the
// first accepted image under the first selector that yields one. Selectors
// are never combined: a hit in a specific content container wins outright
// over anything a broader selector would find.
func selectPoster(page *fetch.RenderedPage, selectors []string) (string, bool) {
	pageURL, err := url.Parse(page.URL)
	if err != nil {
		return "", false
	}

	// The upload-path requirement is waived while no selector has matched any
	// image yet: the first selector to hit is the strongest structural
	// evidence available, and later fallbacks must make up for their breadth
	// by pointing into an upload path.
	anyMatched := false
	for _, selector := range selectors {
		imgs := page.Doc.Find(selector)
		requireUploadToken := anyMatched
		if imgs.Length() > 0 {
			anyMatched = true
		}

		var found string
		imgs.EachWithBreak(func(_ int, img *goquery.Selection) bool {
			src, ok := img.Attr("src")
			if !ok {
				return true
			}
			if acceptImage(src, img, requireUploadToken) {
				found = src
				return false
			}
			return true
		})
		if found != "" {
			return resolveImageURL(pageURL, found), true
		}
	}
	return "", false
}

// acceptImage applies the poster filter to a single image.
func acceptImage(src string, img *goquery.Selection, requireUploadToken bool) bool {
	lower := strings.ToLower(src)

	path := lower
	query := ""
	if i := strings.IndexByte(lower, '?'); i >= 0 {
		path = lower[:i]
		query = lower[i+1:]
	}

	// vector formats are never posters
	if strings.HasSuffix(path, ".svg") {
		return false
	}
	for _, marker := range qrQueryMarkers {
		if strings.Contains(query, marker) {
			return false
		}
	}
	for _, tok := range rejectPathTokens {
		if strings.Contains(path, tok) {
			return false
		}
	}

	if requireUploadToken && !containsAny(path, uploadPathTokens) {
		return false
	}

	if tooSmall(img) {
		return false
	}
	return true
}

// tooSmall rejects images whose explicit width/height attributes fall under
// the poster minimum. Missing attributes are not held against the image.
func tooSmall(img *goquery.Selection) bool {
	for _, attr := range []string{"width", "height"} {
		if v, ok := img.Attr(attr); ok {
			if n, err := strconv.Atoi(strings.TrimSuffix(strings.TrimSpace(v), "px")); err == nil && n < minPosterDimension {
				return true
			}
		}
	}
	return false
}

func containsAny(s string, tokens []string) bool {
	for _, tok := range tokens {
		if strings.Contains(s, tok) {
			return true
		}
	}
	return false
}

// resolveImageURL makes relative image paths absolute against the page URL.
func resolveImageURL(pageURL *url.URL, src string) string {
	ref, err := url.Parse(strings.TrimSpace(src))
	if err != nil {
		return src
	}
	return pageURL.ResolveReference(ref).String()
}
