package normalize

import (
	"strings"
	"unicode"
)

// parenthesisReplacer strips ASCII and full-width parentheses.
var parenthesisReplacer = strings.NewReplacer("(", "", ")", "", "（", "", "）", "")

// BuildFullAddress concatenates the present address parts in fixed order with
// no separator. The downstream geocoder tolerates the concatenated form.
func BuildFullAddress(city, district, location string) string {
	var b strings.Builder
	b.WriteString(strings.TrimSpace(city))
	b.WriteString(strings.TrimSpace(district))
	b.WriteString(strings.TrimSpace(location))
	return b.String()
}

// NormalizeLocation reduces a venue string to the comparison key used by the
// dedup engine: whitespace and parentheses removed, lowercased. Venue names
// appear with and without address suffixes and annotations; the substring
// comparison downstream is deliberately tolerant of that.
func NormalizeLocation(s string) string {
	s = parenthesisReplacer.Replace(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
	return strings.ToLower(s)
}
