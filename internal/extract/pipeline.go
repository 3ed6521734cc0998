// Package extract turns a pasted URL into a restaurant candidate.
//
// A URL is classified by host (see ResolveStrategy), handed to the matching
// extractor, and the result is backfilled through geocoding. Facts read from
// the URL itself always win over geocoded ones. Nothing in this package
// returns an error to its caller: missing data is reported as a nil candidate.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/nitesh/gastronomos/internal/fetch"
	"github.com/nitesh/gastronomos/internal/geocode"
	"github.com/nitesh/gastronomos/internal/metrics"
	"github.com/nitesh/gastronomos/pkg/models"
)

// Fetcher is the page-fetch capability the extractors use.
type Fetcher interface {
	Fetch(ctx context.Context, rawURL string, headers http.Header) (*fetch.Result, error)
	Resolve(ctx context.Context, rawURL string) (string, error)
}

// Geocoder resolves a free-text query; nil means no data.
type Geocoder interface {
	Geocode(ctx context.Context, query string) *geocode.Result
}

type extractorFunc func(ctx context.Context, raw string, u *url.URL) (*models.Candidate, error)

// Pipeline is the extraction orchestrator shared by the web API and the bot.
type Pipeline struct {
	fetcher  Fetcher
	geocoder Geocoder
	log      logrus.FieldLogger
	metrics  *metrics.Metrics
}

// NewPipeline creates a Pipeline. m may be nil.
func NewPipeline(fetcher Fetcher, geocoder Geocoder, log logrus.FieldLogger, m *metrics.Metrics) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		geocoder: geocoder,
		log:      log.WithField("component", "extract"),
		metrics:  m,
	}
}

// ExtractFromURL returns the candidate for rawURL, or nil when the input is
// not an http(s) URL or nothing usable could be extracted.
func (p *Pipeline) ExtractFromURL(ctx context.Context, rawURL string) (cand *models.Candidate) {
	raw := strings.TrimSpace(rawURL)
	u, ok := parseHTTPURL(raw)
	if !ok {
		p.metrics.ObserveExtraction(string(StrategyNone), "invalid")
		return nil
	}

	strategy := strategyFor(u)
	log := p.log.WithFields(logrus.Fields{"strategy": strategy, "url": raw})

	defer func() {
		if r := recover(); r != nil {
			log.WithField("panic", r).Error("extraction panicked")
			p.metrics.ObserveExtraction(string(strategy), "panic")
			cand = nil
		}
	}()

	cand = bestEffort[*models.Candidate](log, "extraction", nil, func() (*models.Candidate, error) {
		return p.extractorFor(strategy)(ctx, raw, u)
	})

	switch {
	case cand == nil:
		p.metrics.ObserveExtraction(string(strategy), "empty")
	case cand.Named():
		p.metrics.ObserveExtraction(string(strategy), "found")
	default:
		p.metrics.ObserveExtraction(string(strategy), "unnamed")
	}
	return cand
}

func (p *Pipeline) extractorFor(s Strategy) extractorFunc {
	switch s {
	case StrategyGoogleMaps:
		return p.extractGoogleMaps
	case StrategyAppleMaps:
		return p.extractAppleMaps
	case StrategyTheFork, StrategyTripAdvisor:
		return p.pageExtractor(aggregatorPage)
	default:
		return p.pageExtractor(genericPage)
	}
}

// geocode wraps the geocoder so a nil geocoder behaves as "no data".
func (p *Pipeline) geocode(ctx context.Context, query string) *geocode.Result {
	if p.geocoder == nil || query == "" {
		return nil
	}
	return p.geocoder.Geocode(ctx, query)
}

func coordinateAddress(ll *models.LatLng) string {
	return fmt.Sprintf("%v, %v", ll.Lat, ll.Lng)
}

func geoLocation(geo *geocode.Result) *models.LatLng {
	if geo == nil {
		return nil
	}
	return &models.LatLng{Lat: geo.Lat, Lng: geo.Lng}
}

// firstSegment keeps the part of a place query before the first comma.
func firstSegment(s string) string {
	name, _, _ := strings.Cut(s, ",")
	return strings.TrimSpace(name)
}
