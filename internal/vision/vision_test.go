package vision_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/vision"
)

func newClient(t *testing.T, handler http.HandlerFunc) *vision.HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return vision.NewHTTPClient(vision.Config{Endpoint: srv.URL, APIKey: "test-key"}, logger.NewNoOp())
}

func TestExtract(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "https://img.example.org/poster.jpg", req["image_url"])

		_, _ = w.Write([]byte(`{"events":[{
			"title":"捐血送好禮","date":"2025-11-23","time":"09:00-17:00",
			"location":"火車站前廣場","city":"新竹市","organizer":"衛生局","gift":"紀念毛巾"
		}]}`))
	})

	events, err := client.Extract(context.Background(), "https://img.example.org/poster.jpg")
	require.NoError(t, err)
	require.Len(t, events, 1)

	e := events[0]
	assert.Equal(t, "捐血送好禮", e.Title)
	assert.Equal(t, "2025-11-23", e.Date)
	assert.Equal(t, "火車站前廣場", e.Location)
	assert.Equal(t, "紀念毛巾", e.Gift.Name)
	assert.Equal(t, "https://img.example.org/poster.jpg", e.PosterURL)
}

func TestExtractDiscardsMalformedResponse(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `<html>error</html>`},
		{"invalid date", `{"events":[{"title":"x","date":"11/23"}]}`},
		{"missing date", `{"events":[{"title":"x"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(tt.body))
			})

			events, err := client.Extract(context.Background(), "https://img.example.org/poster.jpg")
			require.NoError(t, err)
			assert.Empty(t, events, "malformed responses are discarded wholesale")
		})
	}
}

func TestExtractServerError(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.Extract(context.Background(), "https://img.example.org/poster.jpg")
	assert.Error(t, err)
}

func TestExtractEmptyEventList(t *testing.T) {
	client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"events":[]}`))
	})

	events, err := client.Extract(context.Background(), "https://img.example.org/poster.jpg")
	require.NoError(t, err)
	assert.Empty(t, events)
}
