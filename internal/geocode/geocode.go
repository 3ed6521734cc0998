// Package geocode resolves free-text place descriptions to coordinates via
// a Nominatim-compatible search endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nitesh/gastronomos/internal/fetch"
)

const (
	DefaultEndpoint  = "https://nominatim.openstreetmap.org/search"
	DefaultUserAgent = "Gastronomos-Web-App"
)

// Result is the best match for a query. Map URLs are always built from
// the returned coordinates.
type Result struct {
	Lat           float64
	Lng           float64
	Address       string
	GoogleMapsURL string
	AppleMapsURL  string
	Website       string
}

// Fetcher is the subset of fetch.Fetcher the client needs.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, headers http.Header) (*fetch.Result, error)
}

// Client queries the geocoding endpoint.
type Client struct {
	endpoint string
	fetcher  Fetcher
	log      logrus.FieldLogger
}

// NewClient creates a Client. An empty endpoint selects the public Nominatim instance.
func NewClient(endpoint string, fetcher Fetcher, log logrus.FieldLogger) *Client {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	return &Client{
		endpoint: endpoint,
		fetcher:  fetcher,
		log:      log.WithField("component", "geocode"),
	}
}

type nominatimPlace struct {
	Lat         string            `json:"lat"`
	Lon         string            `json:"lon"`
	DisplayName string            `json:"display_name"`
	ExtraTags   map[string]string `json:"extratags"`
}

// Geocode returns the single best match for query, or nil when there is no
// match or the upstream is unavailable.
func (c *Client) Geocode(ctx context.Context, query string) *Result {
	if query == "" {
		return nil
	}
	res, err := c.lookup(ctx, query)
	if err != nil {
		c.log.WithError(err).WithField("query", query).Warn("geocoding failed")
		return nil
	}
	return res
}

func (c *Client) lookup(ctx context.Context, query string) (*Result, error) {
	values := url.Values{}
	values.Set("format", "json")
	values.Set("q", query)
	values.Set("limit", "1")
	values.Set("addressdetails", "1")
	values.Set("extratags", "1")

	headers := http.Header{}
	headers.Set("User-Agent", DefaultUserAgent)
	headers.Set("Accept", "application/json")

	resp, err := c.fetcher.Fetch(ctx, c.endpoint+"?"+values.Encode(), headers)
	if err != nil {
		return nil, err
	}

	var places []nominatimPlace
	if err := json.Unmarshal([]byte(resp.Body), &places); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}
	if len(places) == 0 {
		return nil, nil
	}

	place := places[0]
	lat, err := strconv.ParseFloat(place.Lat, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lat %q: %w", place.Lat, err)
	}
	lng, err := strconv.ParseFloat(place.Lon, 64)
	if err != nil {
		return nil, fmt.Errorf("parse lon %q: %w", place.Lon, err)
	}

	website := place.ExtraTags["website"]
	if website == "" {
		website = place.ExtraTags["url"]
	}

	return &Result{
		Lat:           lat,
		Lng:           lng,
		Address:       place.DisplayName,
		GoogleMapsURL: GoogleMapsURL(lat, lng),
		AppleMapsURL:  AppleMapsURL(query, lat, lng),
		Website:       website,
	}, nil
}

// GoogleMapsURL builds a coordinate link.
func GoogleMapsURL(lat, lng float64) string {
	return fmt.Sprintf("https://www.google.com/maps?q=%s,%s", formatCoord(lat), formatCoord(lng))
}

// AppleMapsURL builds a coordinate link, labelled with name when given.
func AppleMapsURL(name string, lat, lng float64) string {
	ll := formatCoord(lat) + "," + formatCoord(lng)
	if name == "" {
		return "https://maps.apple.com/?ll=" + ll
	}
	return "https://maps.apple.com/?q=" + escapeComponent(name) + "&ll=" + ll
}

// escapeComponent escapes like QueryEscape but encodes spaces as %20.
func escapeComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
