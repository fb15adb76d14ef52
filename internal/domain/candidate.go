package domain

// CandidateLink is a detail-page link discovered on a listing page. It is
// produced by link discovery, consumed once by the detail extractor, then
// discarded.
type CandidateLink struct {
	URL           string
	DisplayText   string
	RawDateTokens []string
}
