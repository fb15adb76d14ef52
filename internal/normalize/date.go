// Package normalize provides pure helpers that canonicalize the
// inconsistent date and address notations found on event sources.
package normalize

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ISODateLayout is the canonical calendar-date form used across the pipeline.
const ISODateLayout = "2006-01-02"

// rocYearOffset converts a Republic-of-China calendar year to a Gregorian
// year. Blood-center pages mix both calendars freely (e.g. 113/5/20 and
// 2024/5/20 describe the same day).
const rocYearOffset = 1911

var (
	// longDatePattern matches year-month-day with -, /, . or CJK separators.
	longDatePattern = regexp.MustCompile(`(\d{2,4})\s*[年/.\-]\s*(\d{1,2})\s*[月/.\-]\s*(\d{1,2})日?`)

	// shortDatePattern matches month-day only; the year is resolved against
	// the crawl's reference date.
	shortDatePattern = regexp.MustCompile(`(\d{1,2})\s*[月/.\-]\s*(\d{1,2})日?`)
)

// ParseFlexibleDate parses a single date token in any of the notations the
// sources use and resolves it to a calendar date. Two and three digit years
// are Republic-of-China years and are shifted by 1911. A bare month-day token
// is resolved against asOf: it gets asOf's year unless that would place it
// before the start of asOf's month, in which case it rolls forward one year.
// Returns false for anything that does not resolve to a real calendar date.
func ParseFlexibleDate(token string, asOf time.Time) (time.Time, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return time.Time{}, false
	}

	if m := longDatePattern.FindStringSubmatch(token); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if len(m[1]) <= 3 {
			year += rocYearOffset
		}
		return makeDate(year, month, day)
	}

	if m := shortDatePattern.FindStringSubmatch(token); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		d, ok := makeDate(asOf.Year(), month, day)
		if !ok {
			return time.Time{}, false
		}
		monthStart := time.Date(asOf.Year(), asOf.Month(), 1, 0, 0, 0, 0, time.UTC)
		if d.Before(monthStart) {
			return makeDate(asOf.Year()+1, month, day)
		}
		return d, true
	}

	return time.Time{}, false
}

// makeDate builds a UTC calendar date and rejects values that time.Date
// would silently roll over (e.g. 2/30).
func makeDate(year, month, day int) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// ExtractDateTokens returns the raw date-shaped substrings found in text,
// long form first. Short-form matches inside a long-form span are not
// reported twice.
func ExtractDateTokens(text string) []string {
	var tokens []string
	covered := make([][2]int, 0)

	for _, loc := range longDatePattern.FindAllStringIndex(text, -1) {
		tokens = append(tokens, text[loc[0]:loc[1]])
		covered = append(covered, [2]int{loc[0], loc[1]})
	}

	for _, loc := range shortDatePattern.FindAllStringIndex(text, -1) {
		if overlaps(loc, covered) {
			continue
		}
		tokens = append(tokens, text[loc[0]:loc[1]])
	}

	return tokens
}

// CountDistinctDates counts the distinct calendar dates mentioned in text.
// Listing pages describe many occasions; genuine detail pages describe one,
// so a high count marks a disguised listing page. Only tokens that resolve to
// a real calendar date count: the short-form pattern also matches fragments
// of time ranges and phone numbers (the "00-17" inside "09:00-17:00").
func CountDistinctDates(text string, asOf time.Time) int {
	seen := make(map[string]struct{})
	for _, tok := range ExtractDateTokens(text) {
		d, ok := ParseFlexibleDate(tok, asOf)
		if !ok {
			continue
		}
		seen[d.Format(ISODateLayout)] = struct{}{}
	}
	return len(seen)
}

func overlaps(loc []int, covered [][2]int) bool {
	for _, c := range covered {
		if loc[0] < c[1] && loc[1] > c[0] {
			return true
		}
	}
	return false
}
