package extract_test

import (
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/extract"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/fetch"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/sources"
)

var asOf = time.Date(2025, time.September, 1, 0, 0, 0, 0, time.UTC)

const detailPageHTML = `<!DOCTYPE html>
<html>
<head><title>捐血活動</title></head>
<body>
  <img src="/images/icons/logo.png" width="40" height="40">
  <h1>週末捐血送好禮</h1>
  <div class="content">
    <img src="/Internet/file_pool/poster123.jpg" width="800" height="1200">
    <p>活動時間：09:00-17:00</p>
    <p>活動地點：火車站前廣場</p>
    <p>主辦單位：市政府衛生局</p>
    <p>贈品：限量紀念毛巾</p>
    <p>日期 114/11/23</p>
  </div>
</body>
</html>`

const listingLikeHTML = `<!DOCTYPE html>
<html>
<body>
  <div class="content">
    <img src="/Internet/file_pool/summary.jpg">
    <p>114/11/01 場次一</p>
    <p>114/11/02 場次二</p>
    <p>114/11/03 場次三</p>
    <p>114/11/04 場次四</p>
    <p>114/11/05 場次五</p>
    <p>114/11/06 場次六</p>
    <p>114/11/07 場次七</p>
  </div>
</body>
</html>`

const noPosterHTML = `<!DOCTYPE html>
<html>
<body>
  <h1>捐血活動 114/11/23</h1>
  <img src="/assets/sitemap.svg">
  <img src="/images/icons/logo.png" width="40" height="40">
</body>
</html>`

func testSource() *sources.Source {
	src := &sources.Source{
		ID:       "test-blood",
		Kind:     sources.KindWeb,
		Name:     "Test Blood Center",
		EntryURL: "https://blood.example.org/events",
		BaseURL:  "https://blood.example.org",
		City:     "新竹市",
		Adapter: sources.AdapterSpec{
			Markers:         sources.DefaultMarkers,
			Denylist:        sources.DefaultDenylist,
			PosterSelectors: sources.DefaultPosterSelectors,
			MaxCandidates:   sources.DefaultMaxCandidates,
		},
	}
	return src
}

func renderedPage(t *testing.T, html string) *fetch.RenderedPage {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return &fetch.RenderedPage{URL: "https://blood.example.org/event/101", Doc: doc}
}

func TestExtractEvent(t *testing.T) {
	e := extract.New(logger.NewNoOp())
	candidate := domain.CandidateLink{
		URL:           "https://blood.example.org/event/101",
		DisplayText:   "11/23 捐血活動 火車站前廣場",
		RawDateTokens: []string{"11/23"},
	}

	event, err := e.Extract(renderedPage(t, detailPageHTML), candidate, testSource(), asOf)
	require.NoError(t, err)

	assert.Equal(t, "2025-11-23", event.Date)
	assert.Equal(t, "週末捐血送好禮", event.Title)
	assert.Equal(t, "09:00-17:00", event.Time)
	assert.Equal(t, "火車站前廣場", event.Location)
	assert.Equal(t, "市政府衛生局", event.Organizer)
	assert.Equal(t, "限量紀念毛巾", event.Gift.Name)
	assert.Equal(t, "新竹市", event.City)
	assert.Equal(t, "https://blood.example.org/Internet/file_pool/poster123.jpg", event.PosterURL)
	assert.Equal(t, "https://blood.example.org/event/101", event.SourceURL)
}

func TestExtractPosterPrefersContentImageOverIcon(t *testing.T) {
	e := extract.New(logger.NewNoOp())
	candidate := domain.CandidateLink{RawDateTokens: []string{"11/23"}}

	event, err := e.Extract(renderedPage(t, detailPageHTML), candidate, testSource(), asOf)
	require.NoError(t, err)

	assert.Contains(t, event.PosterURL, "file_pool/poster123.jpg")
	assert.NotContains(t, event.PosterURL, "logo")
}

func TestExtractRejectsListingPage(t *testing.T) {
	e := extract.New(logger.NewNoOp())
	candidate := domain.CandidateLink{RawDateTokens: []string{"11/23"}}

	_, err := e.Extract(renderedPage(t, listingLikeHTML), candidate, testSource(), asOf)
	assert.ErrorIs(t, err, extract.ErrLooksLikeListing)
}

func TestExtractRejectsPageWithoutPoster(t *testing.T) {
	e := extract.New(logger.NewNoOp())
	candidate := domain.CandidateLink{RawDateTokens: []string{"11/23"}}

	_, err := e.Extract(renderedPage(t, noPosterHTML), candidate, testSource(), asOf)
	assert.ErrorIs(t, err, extract.ErrNoPoster)
}

func TestExtractDropsUndatedPage(t *testing.T) {
	html := `<html><body><h1>捐血活動</h1>
	<img src="/Internet/file_pool/poster.jpg"></body></html>`

	e := extract.New(logger.NewNoOp())
	_, err := e.Extract(renderedPage(t, html), domain.CandidateLink{}, testSource(), asOf)
	assert.ErrorIs(t, err, extract.ErrNoDate)
}

func TestExtractDateFallsBackToPageText(t *testing.T) {
	e := extract.New(logger.NewNoOp())
	// candidate carries no tokens; the page body has the date
	event, err := e.Extract(renderedPage(t, detailPageHTML), domain.CandidateLink{}, testSource(), asOf)
	require.NoError(t, err)
	assert.Equal(t, "2025-11-23", event.Date)
}
