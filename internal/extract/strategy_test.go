package extract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResolveStrategy(t *testing.T) {
	tests := []struct {
		url  string
		want Strategy
	}{
		{"https://www.google.com/maps/place/X", StrategyGoogleMaps},
		{"https://google.com/maps/search/pizza", StrategyGoogleMaps},
		{"https://maps.google.es/?q=Casa+Lucio", StrategyGoogleMaps},
		{"https://goo.gl/maps/abc123", StrategyGoogleMaps},
		{"https://maps.app.goo.gl/xyz", StrategyGoogleMaps},
		{"https://maps.apple.com?q=Y", StrategyAppleMaps},
		{"https://maps.apple.com/?q=Y&ll=1.0,2.0", StrategyAppleMaps},
		{"https://thefork.es/restaurant/z", StrategyTheFork},
		{"https://www.thefork.com/restaurant/z?x=google.com/maps", StrategyTheFork},
		{"https://tripadvisor.com/Restaurant_Review-z", StrategyTripAdvisor},
		{"https://www.tripadvisor.es/Restaurant_Review-z", StrategyTripAdvisor},
		{"https://example.com/page", StrategyGeneric},
		{"https://example.com/page?q=maps.apple.com", StrategyGeneric},
		{"HTTPS://WWW.THEFORK.ES/x", StrategyTheFork},
		{"  https://example.com/page  ", StrategyGeneric},
		{"https://thefork.es/restaurant/google.com/maps-guide", StrategyTheFork},
		{"https://example.com/blog/google.com/maps", StrategyGeneric},
		{"https://notgoogle.com/maps/place/X", StrategyGeneric},
		{"https://www.google.com/search?q=maps", StrategyGeneric},
		{"https://notthefork.es/restaurant/z", StrategyGeneric},
		{"https://m.tripadvisor.co.uk/Restaurant_Review-z", StrategyTripAdvisor},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			require.Equal(t, tt.want, ResolveStrategy(tt.url))
		})
	}
}

func TestResolveStrategy_Malformed(t *testing.T) {
	for _, raw := range []string{"", "not a url", "http://", "ftp://example.com/file", "mailto:a@b.c", "://missing-scheme", "http://[::1"} {
		require.Equal(t, StrategyNone, ResolveStrategy(raw), raw)
	}
}
