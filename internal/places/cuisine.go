package places

// typeCuisines maps Places API primary types to the cuisine labels used by
// the keyword extractor.
var typeCuisines = map[string]string{
	"japanese_restaurant":       "Japonesa",
	"sushi_restaurant":          "Japonesa",
	"ramen_restaurant":          "Japonesa",
	"italian_restaurant":        "Italiana",
	"pizza_restaurant":          "Italiana",
	"mexican_restaurant":        "Mexicana",
	"spanish_restaurant":        "Española",
	"chinese_restaurant":        "China",
	"french_restaurant":         "Francesa",
	"indian_restaurant":         "India",
	"thai_restaurant":           "Tailandesa",
	"mediterranean_restaurant":  "Mediterránea",
	"american_restaurant":       "Americana",
	"hamburger_restaurant":      "Americana",
	"barbecue_restaurant":       "Americana",
	"steak_house":               "Asador",
	"seafood_restaurant":        "Marisquería",
	"vegetarian_restaurant":     "Vegetariana",
	"vegan_restaurant":          "Vegetariana",
	"greek_restaurant":          "Griega",
	"korean_restaurant":         "Coreana",
	"vietnamese_restaurant":     "Vietnamita",
	"lebanese_restaurant":       "Árabe",
	"middle_eastern_restaurant": "Árabe",
	"turkish_restaurant":        "Árabe",
}

var priceLevels = map[string]int{
	"PRICE_LEVEL_FREE":           1,
	"PRICE_LEVEL_INEXPENSIVE":    1,
	"PRICE_LEVEL_MODERATE":       2,
	"PRICE_LEVEL_EXPENSIVE":      3,
	"PRICE_LEVEL_VERY_EXPENSIVE": 4,
}

// CuisineLabel returns the label of the first mapped type, or "".
func CuisineLabel(types []string) string {
	for _, t := range types {
		if label, ok := typeCuisines[t]; ok {
			return label
		}
	}
	return ""
}

// PriceLevel maps a Places price enum to 1..4; 0 means unknown.
func PriceLevel(level string) int {
	return priceLevels[level]
}
