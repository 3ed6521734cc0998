// Package places is a small client for the Google Places API (v1) text
// search, used as the external branch of the hybrid search.
package places

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/nitesh/gastronomos/pkg/models"
)

const (
	DefaultBaseURL   = "https://places.googleapis.com"
	DefaultLanguage  = "es"
	DefaultMaxResult = 5

	searchFieldMask = "places.displayName,places.formattedAddress,places.types,places.rating," +
		"places.userRatingCount,places.priceLevel,places.googleMapsUri,places.websiteUri,places.photos"

	maxResponseBytes = 2 << 20
	photoWorkers     = 5
)

// Client talks to the Places API. A client without an API key is disabled
// and returns no results.
type Client struct {
	baseURL string
	apiKey  string
	hc      *http.Client
	cache   PhotoCache
	log     logrus.FieldLogger
}

// NewClient creates a new client. If httpClient is nil, a default with timeout is used.
// cache may be nil.
func NewClient(baseURL, apiKey string, httpClient *http.Client, cache PhotoCache, log logrus.FieldLogger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		hc:      httpClient,
		cache:   cache,
		log:     log.WithField("component", "places"),
	}
}

// Enabled reports whether an API key is configured.
func (c *Client) Enabled() bool {
	return c != nil && c.apiKey != ""
}

type searchRequest struct {
	TextQuery      string `json:"textQuery"`
	MaxResultCount int    `json:"maxResultCount"`
	LanguageCode   string `json:"languageCode"`
}

type place struct {
	DisplayName struct {
		Text string `json:"text"`
	} `json:"displayName"`
	FormattedAddress string   `json:"formattedAddress"`
	Types            []string `json:"types"`
	Rating           *float64 `json:"rating"`
	UserRatingCount  *int     `json:"userRatingCount"`
	PriceLevel       string   `json:"priceLevel"`
	GoogleMapsURI    string   `json:"googleMapsUri"`
	WebsiteURI       string   `json:"websiteUri"`
	Photos           []struct {
		Name string `json:"name"`
	} `json:"photos"`
}

type searchResponse struct {
	Places []place `json:"places"`
}

// SearchText runs a free-text place search and maps each hit to an
// ExternalPlace, resolving the first photo of every place concurrently.
func (c *Client) SearchText(ctx context.Context, query string, limit int) ([]models.ExternalPlace, error) {
	if !c.Enabled() {
		return []models.ExternalPlace{}, nil
	}
	if limit <= 0 {
		limit = DefaultMaxResult
	}

	b, err := json.Marshal(searchRequest{
		TextQuery:      query,
		MaxResultCount: limit,
		LanguageCode:   DefaultLanguage,
	})
	if err != nil {
		return nil, fmt.Errorf("places marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/places:searchText", bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("places new request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Goog-Api-Key", c.apiKey)
	req.Header.Set("X-Goog-FieldMask", searchFieldMask)

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		return nil, fmt.Errorf("places request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	c.log.WithFields(logrus.Fields{"status": resp.StatusCode, "latency": time.Since(start)}).Debug("places search")
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("places request failed: status=%d body=%s", resp.StatusCode, string(body))
	}

	var parsed searchResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("places decode response: %w", err)
	}

	out := make([]models.ExternalPlace, len(parsed.Places))
	var g errgroup.Group
	g.SetLimit(photoWorkers)
	for i, p := range parsed.Places {
		out[i] = toExternalPlace(p)
		if len(p.Photos) == 0 || p.Photos[0].Name == "" {
			continue
		}
		i, p := i, p
		g.Go(func() error {
			out[i].PhotoURL = c.PhotoURL(ctx, p.Photos[0].Name)
			return nil
		})
	}
	_ = g.Wait()

	return out, nil
}

func toExternalPlace(p place) models.ExternalPlace {
	return models.ExternalPlace{
		Name:          p.DisplayName.Text,
		Address:       p.FormattedAddress,
		CuisineLabel:  CuisineLabel(p.Types),
		PriceLevel:    PriceLevel(p.PriceLevel),
		Rating:        nonZero(p.Rating),
		RatingCount:   nonZero(p.UserRatingCount),
		GoogleMapsURL: p.GoogleMapsURI,
		Website:       p.WebsiteURI,
		Source:        models.SourceGoogle,
	}
}

// nonZero treats a zero value as absent.
func nonZero[T int | float64](v *T) *T {
	if v == nil || *v == 0 {
		return nil
	}
	return v
}
