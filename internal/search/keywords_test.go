package search

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nitesh/gastronomos/internal/textnorm"
)

func TestExtractKeywords(t *testing.T) {
	t.Run("cuisine, city and feature", func(t *testing.T) {
		got := ExtractKeywords("sushi barato en Madrid")
		require.Equal(t, []string{"Japonesa"}, got.Cuisines)
		require.Equal(t, "madrid", got.City)
		require.Contains(t, got.Features, "barato")
		require.NotContains(t, got.RawWords, "madrid")
		require.NotContains(t, got.RawWords, "sushi")
		require.NotContains(t, got.RawWords, "barato")
	})

	t.Run("accents are optional", func(t *testing.T) {
		withAccent := ExtractKeywords("comida japonesa en Málaga")
		without := ExtractKeywords("comida japonesa en malaga")
		require.Equal(t, []string{"Japonesa"}, withAccent.Cuisines)
		require.Equal(t, withAccent.Cuisines, without.Cuisines)
		require.Equal(t, "málaga", withAccent.City)
		require.Equal(t, withAccent.City, without.City)
	})

	t.Run("labels deduplicated in trigger order", func(t *testing.T) {
		got := ExtractKeywords("pizza y sushi, más pasta y ramen")
		require.Equal(t, []string{"Japonesa", "Italiana"}, got.Cuisines)
	})

	t.Run("city table order wins", func(t *testing.T) {
		got := ExtractKeywords("entre barcelona y madrid")
		require.Equal(t, "madrid", got.City)
	})

	t.Run("all features kept", func(t *testing.T) {
		got := ExtractKeywords("terraza romántica para cena")
		require.Equal(t, []string{"terraza", "romántica", "cena"}, got.Features)
	})

	t.Run("raw words", func(t *testing.T) {
		got := ExtractKeywords("algo rico para celebrar con amigos amigos")
		require.Equal(t, []string{"algo", "rico", "celebrar", "amigos"}, got.RawWords)
		require.Empty(t, got.Cuisines)
		require.Empty(t, got.City)
	})

	t.Run("empty query", func(t *testing.T) {
		got := ExtractKeywords("")
		require.NotNil(t, got.Cuisines)
		require.NotNil(t, got.Features)
		require.NotNil(t, got.RawWords)
		require.True(t, got.Empty())
	})
}

func TestKeywordTermsPrecomputed(t *testing.T) {
	require.Len(t, cuisineTerms, len(cuisineKeywords))
	for i, ck := range cuisineKeywords {
		require.Equal(t, ck.keyword, cuisineTerms[i].literal)
		require.Equal(t, textnorm.Normalize(ck.keyword), cuisineTerms[i].norm)
	}
	for i, c := range knownCities {
		require.Equal(t, term{literal: c, norm: textnorm.Normalize(c)}, cityTerms[i])
	}
	for i, f := range featureKeywords {
		require.Equal(t, term{literal: f, norm: textnorm.Normalize(f)}, featureTerms[i])
	}
}
