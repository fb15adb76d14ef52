// Package vision is the boundary to an external vision extraction service
// that reads event details out of a poster image. The service is opaque: we
// post an image URL and either trust the whole response or discard it.
package vision

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/domain"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
	"github.com/youngboyhey/blood-donation-helper-sub000/internal/normalize"
)

const DefaultTimeout = 60 * time.Second

// Client extracts structured events from a poster image.
type Client interface {
	Extract(ctx context.Context, imageURL string) ([]domain.ExtractedEvent, error)
}

// Config configures the HTTP vision client.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// HTTPClient posts poster URLs to a configured extraction endpoint.
type HTTPClient struct {
	cfg        Config
	httpClient *http.Client
	log        logger.Interface
}

// NewHTTPClient creates a vision client for the configured endpoint.
func NewHTTPClient(cfg Config, log logger.Interface) *HTTPClient {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &HTTPClient{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.WithComponent("vision"),
	}
}

type extractRequest struct {
	ImageURL string `json:"image_url"`
}

type extractResponse struct {
	Events []eventPayload `json:"events"`
}

type eventPayload struct {
	Title     string `json:"title"`
	Date      string `json:"date"`
	Time      string `json:"time"`
	Location  string `json:"location"`
	City      string `json:"city"`
	District  string `json:"district"`
	Organizer string `json:"organizer"`
	Gift      string `json:"gift"`
}

// Extract sends the image URL for analysis. Malformed responses are discarded
// wholesale: a response that cannot be decoded, or whose events carry
// unparseable dates, contributes nothing rather than partial records.
func (c *HTTPClient) Extract(ctx context.Context, imageURL string) ([]domain.ExtractedEvent, error) {
	payload, err := json.Marshal(extractRequest{ImageURL: imageURL})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("vision service returned status %d", resp.StatusCode)
	}

	var decoded extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		c.log.Warn("discarding malformed vision response", "image_url", imageURL, "error", err)
		return nil, nil
	}

	events := make([]domain.ExtractedEvent, 0, len(decoded.Events))
	for _, p := range decoded.Events {
		e, ok := c.toEvent(p, imageURL)
		if !ok {
			c.log.Warn("discarding vision response with invalid event", "image_url", imageURL, "date", p.Date)
			return nil, nil
		}
		events = append(events, e)
	}
	return events, nil
}

// toEvent validates one payload entry. The date must already be a valid ISO
// calendar date; the service does not get the ROC leniency page text does.
func (c *HTTPClient) toEvent(p eventPayload, imageURL string) (domain.ExtractedEvent, bool) {
	if _, err := time.Parse(normalize.ISODateLayout, p.Date); err != nil {
		return domain.ExtractedEvent{}, false
	}
	e := domain.ExtractedEvent{
		Title:     p.Title,
		Date:      p.Date,
		Time:      p.Time,
		Location:  p.Location,
		City:      p.City,
		District:  p.District,
		Organizer: p.Organizer,
		PosterURL: imageURL,
		SourceURL: imageURL,
	}
	if p.Gift != "" {
		e.Gift = domain.Gift{Name: p.Gift}
	}
	return e, true
}
