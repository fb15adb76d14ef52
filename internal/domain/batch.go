package domain

// CrawlBatch accumulates the results of crawling a single source. It is an
// explicit value threaded through the orchestrator and returned, never
// mutated from nested calls through shared state.
type CrawlBatch struct {
	SourceID string
	Events   []ExtractedEvent
	Summary  CrawlSummary
}

// CrawlSummary holds per-source counters for observability.
type CrawlSummary struct {
	SourceID   string
	Discovered int
	Extracted  int
	Merged     int
	Inserted   int
	Replaced   int
	Failed     int
}

// Add accumulates another summary's counters into s.
func (s *CrawlSummary) Add(other CrawlSummary) {
	s.Discovered += other.Discovered
	s.Extracted += other.Extracted
	s.Merged += other.Merged
	s.Inserted += other.Inserted
	s.Replaced += other.Replaced
	s.Failed += other.Failed
}
