// Package domain defines the core value types shared across the crawl pipeline.
package domain

import "time"

// Gift describes the incentive offered to donors at an event.
type Gift struct {
	Name     string `json:"name"`
	Value    int    `json:"value,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// ExtractedEvent is the canonical in-flight record produced by the detail
// extractor. Date is always a valid ISO-8601 calendar date (YYYY-MM-DD) once
// it leaves the normalizer; a record with an unparseable date is dropped,
// never defaulted.
type ExtractedEvent struct {
	Title     string   `json:"title"`
	Date      string   `json:"date"`
	Time      string   `json:"time,omitempty"`
	Location  string   `json:"location,omitempty"`
	City      string   `json:"city,omitempty"`
	District  string   `json:"district,omitempty"`
	Organizer string   `json:"organizer,omitempty"`
	Gift      Gift     `json:"gift"`
	PosterURL string   `json:"poster_url,omitempty"`
	SourceURL string   `json:"source_url"`
	Tags      []string `json:"tags,omitempty"`
}

// HasPoster reports whether the event carries a poster image reference.
func (e *ExtractedEvent) HasPoster() bool {
	return e.PosterURL != ""
}

// AddTag appends a tag if it is not already present, preserving order.
func (e *ExtractedEvent) AddTag(tag string) {
	for _, t := range e.Tags {
		if t == tag {
			return
		}
	}
	e.Tags = append(e.Tags, tag)
}

// PersistedEvent is an ExtractedEvent as stored in the row-store. The
// pipeline reads it for dedup comparison and writes it through the
// persistence adapter only; it never holds a long-lived reference.
type PersistedEvent struct {
	ID        string    `json:"id" db:"id"`
	ExtractedEvent
	Latitude  *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64  `json:"longitude,omitempty" db:"longitude"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// HasCoordinates reports whether the event has been geocoded.
func (e *PersistedEvent) HasCoordinates() bool {
	return e.Latitude != nil && e.Longitude != nil
}
