package extract

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/nitesh/gastronomos/internal/geocode"
	"github.com/nitesh/gastronomos/pkg/models"
)

// coordPatterns are tried in order; the first match wins.
var coordPatterns = []*regexp.Regexp{
	regexp.MustCompile(`@(-?\d+\.\d+),(-?\d+\.\d+)`),
	regexp.MustCompile(`\?q=(-?\d+\.\d+),(-?\d+\.\d+)`),
	regexp.MustCompile(`/(-?\d+\.\d+),(-?\d+\.\d+)`),
}

var (
	placePathPattern = regexp.MustCompile(`/maps/(?:place|search)/([^/@?]+)`)
	coordPairPattern = regexp.MustCompile(`^\s*-?\d+\.\d+\s*,\s*-?\d+\.\d+\s*$`)
)

// parseMapsCoords extracts an explicit coordinate pair from a Maps URL.
func parseMapsCoords(rawURL string) *models.LatLng {
	for _, p := range coordPatterns {
		m := p.FindStringSubmatch(rawURL)
		if m == nil {
			continue
		}
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lng, errLng := strconv.ParseFloat(m[2], 64)
		if errLat != nil || errLng != nil {
			continue
		}
		return &models.LatLng{Lat: lat, Lng: lng}
	}
	return nil
}

// parseMapsPlaceName reads the place query from a /maps/place/<name> or
// /maps/search/<name> segment, falling back to the q parameter. Bare
// coordinate pairs are not names.
func parseMapsPlaceName(rawURL string) string {
	name := firstNonEmpty(
		func() string {
			m := placePathPattern.FindStringSubmatch(rawURL)
			if m == nil {
				return ""
			}
			seg := strings.ReplaceAll(m[1], "+", " ")
			if decoded, err := url.PathUnescape(seg); err == nil {
				seg = decoded
			}
			return strings.TrimSpace(seg)
		},
		func() string {
			u, err := url.Parse(rawURL)
			if err != nil {
				return ""
			}
			return strings.TrimSpace(u.Query().Get("q"))
		},
	)
	if coordPairPattern.MatchString(name) {
		return ""
	}
	return name
}

func (p *Pipeline) extractGoogleMaps(ctx context.Context, raw string, u *url.URL) (*models.Candidate, error) {
	fullURL := raw
	if isShortLink(u) {
		fullURL = bestEffort(p.log, "short link expansion", raw, func() (string, error) {
			return p.fetcher.Resolve(ctx, raw)
		})
	}

	placeName := parseMapsPlaceName(fullURL)
	urlCoords := parseMapsCoords(fullURL)

	if placeName == "" {
		if urlCoords == nil {
			return nil, nil
		}
		return &models.Candidate{
			Address:       coordinateAddress(urlCoords),
			Location:      urlCoords,
			GoogleMapsURL: geocode.GoogleMapsURL(urlCoords.Lat, urlCoords.Lng),
			AppleMapsURL:  geocode.AppleMapsURL("", urlCoords.Lat, urlCoords.Lng),
		}, nil
	}

	geo := p.geocode(ctx, placeName)
	cand := &models.Candidate{
		Name: firstSegment(placeName),
		Location: firstNonNil(
			func() *models.LatLng { return urlCoords },
			func() *models.LatLng { return geoLocation(geo) },
		),
	}
	if geo != nil {
		cand.Address = geo.Address
		cand.Website = geo.Website
		cand.GoogleMapsURL = geo.GoogleMapsURL
		cand.AppleMapsURL = geo.AppleMapsURL
	}
	if urlCoords != nil {
		cand.GoogleMapsURL = geocode.GoogleMapsURL(urlCoords.Lat, urlCoords.Lng)
		cand.AppleMapsURL = geocode.AppleMapsURL(placeName, urlCoords.Lat, urlCoords.Lng)
		if cand.Address == "" {
			cand.Address = coordinateAddress(urlCoords)
		}
	}
	return cand, nil
}

func (p *Pipeline) extractAppleMaps(ctx context.Context, raw string, u *url.URL) (*models.Candidate, error) {
	q := strings.TrimSpace(u.Query().Get("q"))
	if q == "" {
		return nil, nil
	}

	geo := p.geocode(ctx, q)
	cand := &models.Candidate{
		Name:         firstSegment(q),
		Location:     geoLocation(geo),
		AppleMapsURL: raw,
	}
	if geo != nil {
		cand.Address = geo.Address
		cand.GoogleMapsURL = geo.GoogleMapsURL
		cand.Website = geo.Website
	}
	return cand, nil
}
