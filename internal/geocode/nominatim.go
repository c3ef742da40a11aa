// Package geocode turns free-text locations into coordinates using
// OpenStreetMap's Nominatim search API.
package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/sakif/mushroom-tracker/internal/model"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// DefaultUserAgent identifies us to Nominatim, whose usage policy requires one.
const DefaultUserAgent = "mushroom-tracker/1.0"

// ErrLocationNotFound is returned when Nominatim has no match for the query.
var ErrLocationNotFound = errors.New("geocode: location not found")

// Options configures a Nominatim client. Zero values get defaults.
type Options struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	// Limit caps outgoing requests per second. The public instance allows 1.
	Limit rate.Limit
}

// Nominatim is a rate-limited client for the /search endpoint.
// It is safe for concurrent use.
type Nominatim struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// New creates a Nominatim client.
func New(opts Options, logger *slog.Logger) *Nominatim {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Limit <= 0 {
		opts.Limit = rate.Limit(1)
	}
	return &Nominatim{
		httpClient: &http.Client{Timeout: opts.Timeout},
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		userAgent:  opts.UserAgent,
		limiter:    rate.NewLimiter(opts.Limit, 1),
		logger:     logger.With(slog.String("component", "geocoder")),
	}
}

// searchResult is the subset of a Nominatim result we read.
// Nominatim encodes coordinates as JSON strings.
type searchResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// Geocode returns the coordinates of the best match for location.
// GET {base}/search?format=json&q=<location>&limit=1
func (n *Nominatim) Geocode(ctx context.Context, location string) (model.Coordinates, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return model.Coordinates{}, ErrLocationNotFound
	}

	if err := n.limiter.Wait(ctx); err != nil {
		return model.Coordinates{}, fmt.Errorf("geocode: waiting for rate limiter: %w", err)
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("q", location)
	q.Set("limit", "1")
	reqURL := n.baseURL + "/search?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geocode: building request: %w", err)
	}
	req.Header.Set("User-Agent", n.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geocode: requesting %s: %w", n.baseURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return model.Coordinates{}, fmt.Errorf("geocode: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return model.Coordinates{}, fmt.Errorf("geocode: decoding response: %w", err)
	}
	if len(results) == 0 {
		return model.Coordinates{}, ErrLocationNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geocode: bad latitude %q: %w", results[0].Lat, err)
	}
	lng, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return model.Coordinates{}, fmt.Errorf("geocode: bad longitude %q: %w", results[0].Lon, err)
	}

	n.logger.Debug("location geocoded",
		slog.String("query", location),
		slog.String("match", results[0].DisplayName),
	)
	return model.Coordinates{Lat: lat, Lng: lng}, nil
}
