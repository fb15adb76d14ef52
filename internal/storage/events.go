package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/normalize"
)

// EventRepository handles database operations for canonical event records.
// There is no uniqueness constraint beyond the primary key: duplicate
// suppression happens in the dedup engine before rows get here.
type EventRepository struct {
	db *sqlx.DB
}

// NewEventRepository creates a new event repository.
func NewEventRepository(db *sqlx.DB) *EventRepository {
	return &EventRepository{db: db}
}

// eventRow is the flat database shape of a PersistedEvent. The embedded
// struct and nested gift don't map cleanly through sqlx tags, so the
// conversion is explicit.
type eventRow struct {
	ID           string         `db:"id"`
	Title        string         `db:"title"`
	EventDate    string         `db:"event_date"`
	EventTime    string         `db:"event_time"`
	Location     string         `db:"location"`
	City         string         `db:"city"`
	District     string         `db:"district"`
	Organizer    string         `db:"organizer"`
	GiftName     string         `db:"gift_name"`
	GiftValue    int            `db:"gift_value"`
	GiftQuantity int            `db:"gift_quantity"`
	GiftImageURL string         `db:"gift_image_url"`
	PosterURL    string         `db:"poster_url"`
	SourceURL    string         `db:"source_url"`
	Tags         pq.StringArray `db:"tags"`
	Latitude     *float64       `db:"latitude"`
	Longitude    *float64       `db:"longitude"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
}

func toRow(e domain.PersistedEvent) eventRow {
	return eventRow{
		ID:           e.ID,
		Title:        e.Title,
		EventDate:    e.Date,
		EventTime:    e.Time,
		Location:     e.Location,
		City:         e.City,
		District:     e.District,
		Organizer:    e.Organizer,
		GiftName:     e.Gift.Name,
		GiftValue:    e.Gift.Value,
		GiftQuantity: e.Gift.Quantity,
		GiftImageURL: e.Gift.ImageURL,
		PosterURL:    e.PosterURL,
		SourceURL:    e.SourceURL,
		Tags:         pq.StringArray(e.Tags),
		Latitude:     e.Latitude,
		Longitude:    e.Longitude,
		CreatedAt:    e.CreatedAt,
		UpdatedAt:    e.UpdatedAt,
	}
}

func fromRow(r eventRow) domain.PersistedEvent {
	return domain.PersistedEvent{
		ID: r.ID,
		ExtractedEvent: domain.ExtractedEvent{
			Title:     r.Title,
			Date:      r.EventDate,
			Time:      r.EventTime,
			Location:  r.Location,
			City:      r.City,
			District:  r.District,
			Organizer: r.Organizer,
			Gift: domain.Gift{
				Name:     r.GiftName,
				Value:    r.GiftValue,
				Quantity: r.GiftQuantity,
				ImageURL: r.GiftImageURL,
			},
			PosterURL: r.PosterURL,
			SourceURL: r.SourceURL,
			Tags:      []string(r.Tags),
		},
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

// NewEventID generates an id for a freshly inserted event.
func NewEventID() string {
	return uuid.NewString()
}

const upsertQuery = `
	INSERT INTO donation_events (
		id, title, event_date, event_time, location, city, district,
		organizer, gift_name, gift_value, gift_quantity, gift_image_url,
		poster_url, source_url, tags, latitude, longitude, created_at, updated_at
	) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		$11, $12, $13, $14, $15, $16, $17, NOW(), NOW()
	)
	ON CONFLICT (id) DO UPDATE SET
		title = EXCLUDED.title,
		event_date = EXCLUDED.event_date,
		event_time = EXCLUDED.event_time,
		location = EXCLUDED.location,
		city = EXCLUDED.city,
		district = EXCLUDED.district,
		organizer = EXCLUDED.organizer,
		gift_name = EXCLUDED.gift_name,
		gift_value = EXCLUDED.gift_value,
		gift_quantity = EXCLUDED.gift_quantity,
		gift_image_url = EXCLUDED.gift_image_url,
		poster_url = EXCLUDED.poster_url,
		source_url = EXCLUDED.source_url,
		tags = EXCLUDED.tags,
		latitude = EXCLUDED.latitude,
		longitude = EXCLUDED.longitude,
		updated_at = NOW()
`

// Upsert writes events by id, inserting new rows and overwriting existing
// ones.
func (r *EventRepository) Upsert(ctx context.Context, events []domain.PersistedEvent) error {
	for _, e := range events {
		row := toRow(e)
		_, err := r.db.ExecContext(ctx, upsertQuery,
			row.ID, row.Title, row.EventDate, row.EventTime, row.Location,
			row.City, row.District, row.Organizer, row.GiftName, row.GiftValue,
			row.GiftQuantity, row.GiftImageURL, row.PosterURL, row.SourceURL,
			row.Tags, row.Latitude, row.Longitude,
		)
		if err != nil {
			return fmt.Errorf("upsert event %s: %w", e.ID, err)
		}
	}
	return nil
}

// DeleteByIDs removes events collapsed away during reconciliation.
func (r *EventRepository) DeleteByIDs(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	query := `DELETE FROM donation_events WHERE id = ANY($1)`
	if _, err := r.db.ExecContext(ctx, query, pq.Array(ids)); err != nil {
		return fmt.Errorf("delete events: %w", err)
	}
	return nil
}

// ListByDateRange returns events whose date falls inside [from, to],
// inclusive, ordered by date.
func (r *EventRepository) ListByDateRange(ctx context.Context, from, to time.Time) ([]domain.PersistedEvent, error) {
	query := `
		SELECT id, title, event_date, event_time, location, city, district,
		       organizer, gift_name, gift_value, gift_quantity, gift_image_url,
		       poster_url, source_url, tags, latitude, longitude,
		       created_at, updated_at
		FROM donation_events
		WHERE event_date >= $1 AND event_date <= $2
		ORDER BY event_date, id
	`

	var rows []eventRow
	err := r.db.SelectContext(ctx, &rows, query,
		from.Format(normalize.ISODateLayout), to.Format(normalize.ISODateLayout))
	if err != nil {
		return nil, fmt.Errorf("list events by date range: %w", err)
	}

	events := make([]domain.PersistedEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, fromRow(row))
	}
	return events, nil
}

// FindByPosterURL returns events referencing the given poster image.
func (r *EventRepository) FindByPosterURL(ctx context.Context, posterURL string) ([]domain.PersistedEvent, error) {
	query := `
		SELECT id, title, event_date, event_time, location, city, district,
		       organizer, gift_name, gift_value, gift_quantity, gift_image_url,
		       poster_url, source_url, tags, latitude, longitude,
		       created_at, updated_at
		FROM donation_events
		WHERE poster_url = $1
	`

	var rows []eventRow
	if err := r.db.SelectContext(ctx, &rows, query, posterURL); err != nil {
		return nil, fmt.Errorf("find events by poster url: %w", err)
	}

	events := make([]domain.PersistedEvent, 0, len(rows))
	for _, row := range rows {
		events = append(events, fromRow(row))
	}
	return events, nil
}
