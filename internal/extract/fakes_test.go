package extract

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"

	"github.com/sirupsen/logrus/hooks/test"

	"github.com/nitesh/gastronomos/internal/fetch"
	"github.com/nitesh/gastronomos/internal/geocode"
)

type fakeFetcher struct {
	mu        sync.Mutex
	pages     map[string]string
	redirects map[string]string
	fetched   []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string, _ http.Header) (*fetch.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, rawURL)
	if body, ok := f.pages[rawURL]; ok {
		return &fetch.Result{Body: body, FinalURL: rawURL, StatusCode: http.StatusOK}, nil
	}
	return nil, &fetch.Error{URL: rawURL, StatusCode: http.StatusNotFound}
}

func (f *fakeFetcher) Resolve(_ context.Context, rawURL string) (string, error) {
	if to, ok := f.redirects[rawURL]; ok {
		return to, nil
	}
	return "", &fetch.Error{URL: rawURL, Err: errors.New("connection refused")}
}

type fakeGeocoder struct {
	mu      sync.Mutex
	results map[string]*geocode.Result
	queries []string
	panics  bool
}

func (g *fakeGeocoder) Geocode(_ context.Context, query string) *geocode.Result {
	if g.panics {
		panic("geocoder exploded")
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, query)
	return g.results[query]
}

type geoEntry struct {
	lat, lng         float64
	address, website string
}

func geoTable(entries map[string]geoEntry) map[string]*geocode.Result {
	out := make(map[string]*geocode.Result, len(entries))
	for q, e := range entries {
		out[q] = &geocode.Result{
			Lat:           e.lat,
			Lng:           e.lng,
			Address:       e.address,
			Website:       e.website,
			GoogleMapsURL: geocode.GoogleMapsURL(e.lat, e.lng),
			AppleMapsURL:  geocode.AppleMapsURL(q, e.lat, e.lng),
		}
	}
	return out
}

func newTestPipeline(t *testing.T, f *fakeFetcher, g *fakeGeocoder) *Pipeline {
	t.Helper()
	if f == nil {
		f = &fakeFetcher{}
	}
	logger, _ := test.NewNullLogger()
	if g == nil {
		return NewPipeline(f, nil, logger, nil)
	}
	return NewPipeline(f, g, logger, nil)
}
