package storage

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
)

func TestRowConversionPreservesEvent(t *testing.T) {
	lat, lng := 24.8015, 120.9718
	event := domain.PersistedEvent{
		ID: NewEventID(),
		ExtractedEvent: domain.ExtractedEvent{
			Title:     "週末捐血送好禮",
			Date:      "2025-11-23",
			Time:      "09:00-17:00",
			Location:  "火車站前廣場",
			City:      "新竹市",
			Organizer: "市政府衛生局",
			Gift:      domain.Gift{Name: "限量紀念毛巾", Quantity: 200},
			PosterURL: "https://blood.example.org/file_pool/p.jpg",
			SourceURL: "https://blood.example.org/event/101",
			Tags:      []string{"blood", "hsinchu"},
		},
		Latitude:  &lat,
		Longitude: &lng,
	}

	got := fromRow(toRow(event))
	assert.Equal(t, event, got)
}

func TestRowConversionNilCoordinates(t *testing.T) {
	event := domain.PersistedEvent{
		ID:             NewEventID(),
		ExtractedEvent: domain.ExtractedEvent{Title: "捐血活動", Date: "2025-11-23", SourceURL: "https://blood.example.org/e/1"},
	}

	got := fromRow(toRow(event))
	assert.Nil(t, got.Latitude)
	assert.Nil(t, got.Longitude)
	assert.False(t, got.HasCoordinates())
}

func TestNewEventID(t *testing.T) {
	id := NewEventID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewEventID())
}
