// Package geocode resolves event addresses to coordinates through a
// Nominatim-compatible endpoint. Resolution is best-effort enrichment: a miss
// or a transient failure never blocks persistence.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/youngboyhey/blood-donation-helper-sub000/internal/logger"
)

// Defaults for the public Nominatim instance.
const (
	DefaultBaseURL = "https://nominatim.openstreetmap.org/search"
	// DefaultDelay is the fixed inter-call delay honoring the usage policy.
	DefaultDelay   = time.Second
	DefaultTimeout = 10 * time.Second
)

// Coordinate is a resolved latitude/longitude pair.
type Coordinate struct {
	Latitude  float64
	Longitude float64
}

// Config configures the geocoding client.
type Config struct {
	BaseURL   string
	UserAgent string
	// Email identifies the operator to the geocoding provider.
	Email string
	// Delay is the fixed wait between consecutive calls.
	Delay   time.Duration
	Timeout time.Duration
}

// Client is a rate-limited geocoding client with an in-memory cache. Calls
// are serialized; the cache spares repeat addresses within one run.
type Client struct {
	cfg        Config
	httpClient *http.Client
	log        logger.Interface

	mu       sync.Mutex
	cache    map[string]*Coordinate
	lastCall time.Time
}

// New creates a geocoding client.
func New(cfg Config, log logger.Interface) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Delay <= 0 {
		cfg.Delay = DefaultDelay
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		log:        log.WithComponent("geocoder"),
		cache:      make(map[string]*Coordinate),
	}
}

// nominatimResult is the subset of the search response we read.
type nominatimResult struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}

// Resolve geocodes an address. A nil Coordinate with a nil error means the
// provider had no match; errors are transient failures. Both leave the event
// without coordinates and are never fatal to the caller.
func (c *Client) Resolve(ctx context.Context, address string) (*Coordinate, error) {
	if address == "" {
		return nil, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if coord, hit := c.cache[address]; hit {
		return coord, nil
	}

	if wait := c.cfg.Delay - time.Since(c.lastCall); wait > 0 {
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	c.lastCall = time.Now()

	coord, err := c.query(ctx, address)
	if err != nil {
		c.log.Warn("geocode request failed", "address", address, "error", err)
		return nil, err
	}

	c.cache[address] = coord
	if coord == nil {
		c.log.Debug("address not found", "address", address)
	}
	return coord, nil
}

// query performs one search request.
func (c *Client) query(ctx context.Context, address string) (*Coordinate, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")
	if c.cfg.Email != "" {
		params.Set("email", c.cfg.Email)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, err
	}
	if c.cfg.UserAgent != "" {
		req.Header.Set("User-Agent", c.cfg.UserAgent)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("geocoder returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var results []nominatimResult
	if err := json.Unmarshal(body, &results); err != nil {
		return nil, fmt.Errorf("malformed geocoder response: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed latitude %q: %w", results[0].Lat, err)
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("malformed longitude %q: %w", results[0].Lon, err)
	}

	return &Coordinate{Latitude: lat, Longitude: lon}, nil
}
