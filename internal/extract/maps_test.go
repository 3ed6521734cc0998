package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nitesh/gastronomos/pkg/models"
)

func TestParseMapsCoords(t *testing.T) {
	tests := []struct {
		url  string
		want *models.LatLng
	}{
		{"https://www.google.com/maps/place/Casa+Lucio/@40.4125,-3.7089,17z", &models.LatLng{Lat: 40.4125, Lng: -3.7089}},
		{"https://maps.google.com/?q=41.3851,2.1734", &models.LatLng{Lat: 41.3851, Lng: 2.1734}},
		{"https://www.google.com/maps/search/39.4699,-0.3763", &models.LatLng{Lat: 39.4699, Lng: -0.3763}},
		{"https://www.google.com/maps/place/Casa+Lucio", nil},
		{"https://www.google.com/maps/@40,3", nil},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			require.Equal(t, tt.want, parseMapsCoords(tt.url))
		})
	}
}

func TestParseMapsPlaceName(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.google.com/maps/place/Casa+Lucio/@40.4,-3.7,17z", "Casa Lucio"},
		{"https://www.google.com/maps/place/Caf%C3%A9+de+Oriente,+Madrid/data=x", "Café de Oriente, Madrid"},
		{"https://www.google.com/maps/search/sushi+bar?hl=es", "sushi bar"},
		{"https://maps.google.com/?q=Bar+Pepe", "Bar Pepe"},
		{"https://maps.google.com/?q=41.3851,2.1734", ""},
		{"https://www.google.com/maps/@40.4,-3.7,17z", ""},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			require.Equal(t, tt.want, parseMapsPlaceName(tt.url))
		})
	}
}

func TestExtractGoogleMaps(t *testing.T) {
	ctx := context.Background()

	t.Run("url coordinates win over geocoder coordinates", func(t *testing.T) {
		geo := &fakeGeocoder{results: geoTable(map[string]geoEntry{
			"Casa Lucio": {lat: 1, lng: 2, address: "Cava Baja 35, Madrid", website: "https://casalucio.es"},
		})}
		p := newTestPipeline(t, nil, geo)

		cand := p.ExtractFromURL(ctx, "https://www.google.com/maps/place/Casa+Lucio/@40.4125,-3.7089,17z")
		require.NotNil(t, cand)
		require.Equal(t, "Casa Lucio", cand.Name)
		require.Equal(t, &models.LatLng{Lat: 40.4125, Lng: -3.7089}, cand.Location)
		require.Equal(t, "Cava Baja 35, Madrid", cand.Address)
		require.Equal(t, "https://casalucio.es", cand.Website)
		require.Equal(t, "https://www.google.com/maps?q=40.4125,-3.7089", cand.GoogleMapsURL)
		require.Equal(t, "https://maps.apple.com/?q=Casa%20Lucio&ll=40.4125,-3.7089", cand.AppleMapsURL)
	})

	t.Run("geocoder fills coordinates when the url has none", func(t *testing.T) {
		geo := &fakeGeocoder{results: geoTable(map[string]geoEntry{
			"Casa Lucio, Madrid": {lat: 40.41, lng: -3.71, address: "Madrid"},
		})}
		p := newTestPipeline(t, nil, geo)

		cand := p.ExtractFromURL(ctx, "https://www.google.com/maps/place/Casa+Lucio,+Madrid")
		require.NotNil(t, cand)
		require.Equal(t, "Casa Lucio", cand.Name)
		require.Equal(t, &models.LatLng{Lat: 40.41, Lng: -3.71}, cand.Location)
		require.Equal(t, "https://www.google.com/maps?q=40.41,-3.71", cand.GoogleMapsURL)
	})

	t.Run("coordinates only yields an unnamed candidate", func(t *testing.T) {
		geo := &fakeGeocoder{}
		p := newTestPipeline(t, nil, geo)

		cand := p.ExtractFromURL(ctx, "https://www.google.com/maps/@40.4125,-3.7089,17z")
		require.NotNil(t, cand)
		require.Empty(t, cand.Name)
		require.False(t, cand.Named())
		require.Equal(t, "40.4125, -3.7089", cand.Address)
		require.Equal(t, "https://maps.apple.com/?ll=40.4125,-3.7089", cand.AppleMapsURL)
		require.Empty(t, geo.queries)
	})

	t.Run("name without any geodata keeps the name", func(t *testing.T) {
		p := newTestPipeline(t, nil, &fakeGeocoder{})
		cand := p.ExtractFromURL(ctx, "https://maps.google.com/?q=Bar+Pepe")
		require.NotNil(t, cand)
		require.Equal(t, "Bar Pepe", cand.Name)
		require.Nil(t, cand.Location)
		require.Empty(t, cand.Address)
	})

	t.Run("neither name nor coordinates is nil", func(t *testing.T) {
		p := newTestPipeline(t, nil, &fakeGeocoder{})
		require.Nil(t, p.ExtractFromURL(ctx, "https://www.google.com/maps"))
	})

	t.Run("short link is expanded", func(t *testing.T) {
		f := &fakeFetcher{redirects: map[string]string{
			"https://maps.app.goo.gl/abc": "https://www.google.com/maps/place/Botin/@40.4142,-3.7081,17z",
		}}
		p := newTestPipeline(t, f, &fakeGeocoder{})
		cand := p.ExtractFromURL(ctx, "https://maps.app.goo.gl/abc")
		require.NotNil(t, cand)
		require.Equal(t, "Botin", cand.Name)
		require.Equal(t, &models.LatLng{Lat: 40.4142, Lng: -3.7081}, cand.Location)
	})

	t.Run("short link expansion failure retries the original url", func(t *testing.T) {
		p := newTestPipeline(t, &fakeFetcher{}, &fakeGeocoder{})
		require.Nil(t, p.ExtractFromURL(ctx, "https://goo.gl/maps/unreachable"))
	})
}

func TestExtractAppleMaps(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps the source link verbatim", func(t *testing.T) {
		geo := &fakeGeocoder{results: geoTable(map[string]geoEntry{
			"Lhardy, Madrid": {lat: 40.4167, lng: -3.7033, address: "Carrera de San Jerónimo 8", website: "https://lhardy.com"},
		})}
		p := newTestPipeline(t, nil, geo)

		raw := "https://maps.apple.com/?q=Lhardy,+Madrid&ll=40.41,-3.70"
		cand := p.ExtractFromURL(ctx, raw)
		require.NotNil(t, cand)
		require.Equal(t, "Lhardy", cand.Name)
		require.Equal(t, raw, cand.AppleMapsURL)
		require.Equal(t, "https://www.google.com/maps?q=40.4167,-3.7033", cand.GoogleMapsURL)
		require.Equal(t, "https://lhardy.com", cand.Website)
		require.Equal(t, &models.LatLng{Lat: 40.4167, Lng: -3.7033}, cand.Location)
	})

	t.Run("without q is nil", func(t *testing.T) {
		p := newTestPipeline(t, nil, &fakeGeocoder{})
		require.Nil(t, p.ExtractFromURL(ctx, "https://maps.apple.com/?ll=40.41,-3.70"))
	})
}

func TestCoordinatePairing(t *testing.T) {
	ctx := context.Background()
	geo := &fakeGeocoder{results: geoTable(map[string]geoEntry{
		"Casa Lucio": {lat: 40.4, lng: -3.7, address: "Madrid"},
		"Lhardy":     {lat: 40.4, lng: -3.7, address: "Madrid"},
	})}
	f := &fakeFetcher{pages: map[string]string{
		"https://thefork.es/r/1": `<html><head><meta property="og:title" content="Casa Lucio - TheFork"></head></html>`,
		"https://example.com/":   `<html><head><title>Unknown Place</title></head></html>`,
	}}
	p := newTestPipeline(t, f, geo)

	urls := []string{
		"https://www.google.com/maps/place/Casa+Lucio/@40.1,-3.1,17z",
		"https://www.google.com/maps/place/Casa+Lucio",
		"https://www.google.com/maps/@40.1,-3.1,17z",
		"https://maps.apple.com/?q=Lhardy",
		"https://maps.apple.com/?q=Nowhere",
		"https://thefork.es/r/1",
		"https://example.com/",
	}
	for _, u := range urls {
		cand := p.ExtractFromURL(ctx, u)
		require.NotNil(t, cand, u)
		if cand.Location != nil {
			require.NotEmpty(t, cand.Address, u)
		}
	}
}
