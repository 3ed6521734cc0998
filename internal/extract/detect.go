package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/nitesh/gastronomos/pkg/models"
)

var urlPattern = regexp.MustCompile(`(?i)https?://[^\s<>"]+`)

// restaurantDomains are tried before any other link in a message.
var restaurantDomains = []string{
	"google.com/maps", "maps.google", "goo.gl", "maps.app.goo.gl",
	"maps.apple.com",
	"thefork.", "tripadvisor.", "yelp.com",
	"restaurantes.com", "eltenedor.", "opentable.",
	"michelin.", "zagat.",
}

// Detection pairs the link that produced a named candidate with the candidate.
type Detection struct {
	URL  string            `json:"url"`
	Info *models.Candidate `json:"info"`
}

// ExtractURLs returns the http(s) URLs in text, in message order.
func ExtractURLs(text string) []string {
	var urls []string
	for _, m := range urlPattern.FindAllString(text, -1) {
		if _, ok := parseHTTPURL(m); ok {
			urls = append(urls, m)
		}
	}
	return urls
}

func isRestaurantDomain(rawURL string) bool {
	lower := strings.ToLower(rawURL)
	for _, d := range restaurantDomains {
		if strings.Contains(lower, d) {
			return true
		}
	}
	return false
}

// prioritizeURLs puts known restaurant-listing links first, keeping the
// original order inside each group.
func prioritizeURLs(urls []string) []string {
	known := make([]string, 0, len(urls))
	var rest []string
	for _, u := range urls {
		if isRestaurantDomain(u) {
			known = append(known, u)
		} else {
			rest = append(rest, u)
		}
	}
	return append(known, rest...)
}

// DetectInMessage returns the first link in text that yields a named
// candidate, or nil.
func (p *Pipeline) DetectInMessage(ctx context.Context, text string) *Detection {
	for _, u := range prioritizeURLs(ExtractURLs(text)) {
		if ctx.Err() != nil {
			return nil
		}
		if info := p.ExtractFromURL(ctx, u); info.Named() {
			return &Detection{URL: u, Info: info}
		}
	}
	return nil
}
