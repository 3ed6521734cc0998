package search

import (
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/nitesh/gastronomos/internal/textnorm"
	"github.com/nitesh/gastronomos/pkg/models"
)

type cuisineKeyword struct {
	keyword string
	label   string
}

// cuisineKeywords is scanned in order; a label's position in the result is
// the position of its first triggering keyword.
var cuisineKeywords = []cuisineKeyword{
	{"japonés", "Japonesa"}, {"japonesa", "Japonesa"}, {"japones", "Japonesa"},
	{"sushi", "Japonesa"}, {"ramen", "Japonesa"}, {"sashimi", "Japonesa"}, {"tempura", "Japonesa"},

	{"italiana", "Italiana"}, {"italiano", "Italiana"},
	{"pizza", "Italiana"}, {"pasta", "Italiana"}, {"risotto", "Italiana"},

	{"mexicana", "Mexicana"}, {"mexicano", "Mexicana"},
	{"tacos", "Mexicana"}, {"burrito", "Mexicana"}, {"guacamole", "Mexicana"},

	{"española", "Española"}, {"español", "Española"}, {"espanola", "Española"},
	{"cocido", "Española"}, {"paella", "Española"}, {"gazpacho", "Española"},

	{"tapas", "Tapas"}, {"pinchos", "Tapas"}, {"pintxos", "Tapas"},
	{"vermut", "Tapas"}, {"vermú", "Tapas"},

	{"china", "China"}, {"chino", "China"}, {"dimsum", "China"}, {"dim sum", "China"},

	{"francesa", "Francesa"}, {"francés", "Francesa"}, {"frances", "Francesa"},
	{"brasserie", "Francesa"}, {"bistrot", "Francesa"},

	{"india", "India"}, {"indio", "India"}, {"curry", "India"}, {"naan", "India"},

	{"tailandesa", "Tailandesa"}, {"tailandés", "Tailandesa"}, {"thai", "Tailandesa"},

	{"mediterránea", "Mediterránea"}, {"mediterranea", "Mediterránea"},

	{"americana", "Americana"}, {"americano", "Americana"},
	{"hamburguesa", "Americana"}, {"burger", "Americana"}, {"barbacoa", "Americana"},

	{"peruana", "Peruana"}, {"peruano", "Peruana"}, {"cebiche", "Peruana"}, {"ceviche", "Peruana"},

	{"árabe", "Árabe"}, {"arabe", "Árabe"}, {"libanesa", "Árabe"},
	{"falafel", "Árabe"}, {"hummus", "Árabe"}, {"kebab", "Árabe"},

	{"griega", "Griega"}, {"griego", "Griega"}, {"gyros", "Griega"},

	{"coreana", "Coreana"}, {"coreano", "Coreana"},

	{"vietnamita", "Vietnamita"}, {"pho", "Vietnamita"},

	{"marisquería", "Marisquería"}, {"marisco", "Marisquería"}, {"mariscos", "Marisquería"},
	{"pescado", "Marisquería"}, {"pescadería", "Marisquería"},
	{"ostras", "Marisquería"}, {"mejillones", "Marisquería"},

	{"asador", "Asador"}, {"carne", "Asador"}, {"parrilla", "Asador"},
	{"brasa", "Asador"}, {"churrasco", "Asador"},

	{"vegetariana", "Vegetariana"}, {"vegetariano", "Vegetariana"},
	{"vegano", "Vegetariana"}, {"vegana", "Vegetariana"}, {"vegan", "Vegetariana"},

	{"fusión", "Fusión"}, {"fusion", "Fusión"}, {"moderno", "Fusión"},
}

// knownCities is scanned in order; only the first match is kept.
var knownCities = []string{
	"madrid", "barcelona", "valencia", "sevilla", "bilbao", "málaga", "malaga",
	"granada", "zaragoza", "murcia", "palma", "alicante", "córdoba", "cordoba",
	"valladolid", "vigo", "gijón", "gijon", "vitoria", "coruña", "donostia",
	"san sebastián", "san sebastian", "pamplona", "toledo", "burgos", "salamanca",
	"logroño", "logronyo", "santander", "oviedo", "badajoz", "albacete",
	"tarragona", "lleida", "girona", "castellón", "castellon",
}

var featureKeywords = []string{
	"sin gluten", "gluten", "celíaco", "celiaco",
	"terraza", "vistas", "rooftop", "azotea",
	"romántico", "romantico", "romántica",
	"familiar", "niños", "niñas",
	"grupos", "grupo",
	"barato", "económico", "economico", "precio bajo",
	"de moda", "trendy", "moderno", "moderna",
	"íntimo", "intimo",
	"brunch", "desayuno", "almuerzo", "cena",
	"coctel", "cóctel", "cocktail",
	"reservar", "reservas",
}

var stopwords = []string{"para", "con", "que", "una", "unos", "unas", "los", "las", "del", "por", "sin", "muy"}

// term pairs a table keyword with its accent-stripped form.
type term struct {
	literal string
	norm    string
}

func newTerms(in []string) []term {
	out := make([]term, len(in))
	for i, s := range in {
		out[i] = term{literal: s, norm: textnorm.Normalize(s)}
	}
	return out
}

// Normalized forms, built once from the tables above.
var (
	cuisineTerms = newTerms(cuisineKeys())
	cityTerms    = newTerms(knownCities)
	featureTerms = newTerms(featureKeywords)

	normCities   = normalizeAll(knownCities)
	normCuisines = normalizeAll(cuisineKeys())
	normFeatures = normalizeAll(featureKeywords)
)

func cuisineKeys() []string {
	keys := make([]string, len(cuisineKeywords))
	for i, ck := range cuisineKeywords {
		keys[i] = ck.keyword
	}
	return keys
}

func normalizeAll(in []string) map[string]struct{} {
	out := make(map[string]struct{}, len(in))
	for _, s := range in {
		out[textnorm.Normalize(s)] = struct{}{}
	}
	return out
}

// ExtractKeywords partitions a free-text query into cuisine labels, a city,
// feature phrases and leftover words. Matching is substring-based against
// both the accent-stripped and the literal lower-cased query, so a keyword
// embedded in a longer word still matches.
func ExtractKeywords(query string) models.QueryIntent {
	normalized := textnorm.Normalize(query)
	literal := strings.ToLower(query)
	matches := func(t term) bool {
		return strings.Contains(normalized, t.norm) || strings.Contains(literal, t.literal)
	}

	intent := models.QueryIntent{
		Cuisines: []string{},
		Features: []string{},
		RawWords: []string{},
	}

	for i, ck := range cuisineKeywords {
		if matches(cuisineTerms[i]) && !slices.Contains(intent.Cuisines, ck.label) {
			intent.Cuisines = append(intent.Cuisines, ck.label)
		}
	}

	for _, c := range cityTerms {
		if matches(c) {
			intent.City = c.literal
			break
		}
	}

	for _, f := range featureTerms {
		if matches(f) {
			intent.Features = append(intent.Features, f.literal)
		}
	}

	for _, w := range strings.Fields(normalized) {
		if utf8.RuneCountInString(w) <= 3 || slices.Contains(stopwords, w) || slices.Contains(intent.RawWords, w) {
			continue
		}
		if _, ok := normCities[w]; ok {
			continue
		}
		if _, ok := normCuisines[w]; ok {
			continue
		}
		if _, ok := normFeatures[w]; ok {
			continue
		}
		intent.RawWords = append(intent.RawWords, w)
	}

	return intent
}
