package extract

import (
	"strings"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/fetch"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/sources"
)

// Label prefixes scanned in page text when a source has no CSS anchor for a
// field. Pages on these sources label fields inline, e.g. "時間：09:00-17:00".
var (
	timeLabels      = []string{"活動時間", "時間"}
	locationLabels  = []string{"活動地點", "地點"}
	organizerLabels = []string{"主辦單位", "主辦"}
	giftLabels      = []string{"贈品", "好禮", "紀念品"}
)

// fillTextFields populates the event's textual fields from the source's CSS
// anchors, falling back to inline label scanning. Fields that cannot be
// located stay empty; nothing is guessed.
func fillTextFields(
	event *domain.ExtractedEvent,
	page *fetch.RenderedPage,
	candidate domain.CandidateLink,
	src *sources.Source,
	text string,
) {
	anchors := src.Adapter.Anchors
	lines := splitLines(text)

	event.Title = firstNonEmpty(
		selectText(page, anchors.Title),
		selectText(page, "h1"),
		strings.TrimSpace(candidate.DisplayText),
	)
	event.Time = firstNonEmpty(
		selectText(page, anchors.Time),
		labeledValue(lines, timeLabels),
	)
	event.Location = labeledValue(lines, locationLabels)
	event.Organizer = firstNonEmpty(
		selectText(page, anchors.Organizer),
		labeledValue(lines, organizerLabels),
	)
	if gift := firstNonEmpty(selectText(page, anchors.Gift), labeledValue(lines, giftLabels)); gift != "" {
		event.Gift = domain.Gift{Name: gift}
	}
}

// selectText returns the trimmed text of the first element matching selector.
func selectText(page *fetch.RenderedPage, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(page.Doc.Find(selector).First().Text())
}

// labeledValue scans text lines for the first "label：value" or "label: value"
// occurrence of any of the given labels.
func labeledValue(lines []string, labels []string) string {
	for _, line := range lines {
		for _, label := range labels {
			idx := strings.Index(line, label)
			if idx < 0 {
				continue
			}
			rest := line[idx+len(label):]
			rest = strings.TrimLeft(rest, "：: 　\t")
			if rest != "" {
				return strings.TrimSpace(rest)
			}
		}
	}
	return ""
}

func splitLines(text string) []string {
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
