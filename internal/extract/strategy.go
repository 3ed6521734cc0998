package extract

import (
	"net/url"
	"slices"
	"strings"
)

// Strategy names the source-specific extraction algorithm for a URL.
type Strategy string

const (
	StrategyNone        Strategy = "none"
	StrategyGoogleMaps  Strategy = "google_maps"
	StrategyAppleMaps   Strategy = "apple_maps"
	StrategyTheFork     Strategy = "thefork"
	StrategyTripAdvisor Strategy = "tripadvisor"
	StrategyGeneric     Strategy = "generic"
)

// shortLinkHosts redirect to a canonical Google Maps URL.
var shortLinkHosts = []string{"goo.gl", "maps.app.goo.gl"}

// ResolveStrategy classifies rawURL by host. Unparseable or non-http(s)
// input yields StrategyNone.
func ResolveStrategy(rawURL string) Strategy {
	u, ok := parseHTTPURL(strings.TrimSpace(rawURL))
	if !ok {
		return StrategyNone
	}
	return strategyFor(u)
}

// strategyFor dispatches on the host alone. The path is only consulted once
// the host is known to be Google's.
func strategyFor(u *url.URL) Strategy {
	host := normalizedHost(u)
	switch {
	case isGoogleHost(host) && strings.HasPrefix(u.Path, "/maps"),
		slices.Contains(shortLinkHosts, host),
		strings.HasPrefix(host, "maps.google."):
		return StrategyGoogleMaps
	case host == "maps.apple.com":
		return StrategyAppleMaps
	case hasDomainLabel(host, "thefork"):
		return StrategyTheFork
	case hasDomainLabel(host, "tripadvisor"):
		return StrategyTripAdvisor
	default:
		return StrategyGeneric
	}
}

func isGoogleHost(host string) bool {
	return host == "google.com" || strings.HasSuffix(host, ".google.com")
}

// hasDomainLabel reports whether name is a whole label of host other than
// the TLD, so "thefork.es" and "m.thefork.com" match but "notthefork.es"
// does not.
func hasDomainLabel(host, name string) bool {
	labels := strings.Split(host, ".")
	return slices.Contains(labels[:len(labels)-1], name)
}

// normalizedHost lower-cases the host and drops a leading "www.".
func normalizedHost(u *url.URL) string {
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

func isShortLink(u *url.URL) bool {
	return slices.Contains(shortLinkHosts, normalizedHost(u))
}

func parseHTTPURL(raw string) (*url.URL, bool) {
	if raw == "" {
		return nil, false
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Hostname() == "" {
		return nil, false
	}
	return u, true
}
