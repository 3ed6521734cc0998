// Package textnorm folds text for accent- and case-insensitive matching.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize lower-cases s and strips diacritics, so "Café" and "cafe" compare equal.
func Normalize(s string) string {
	lower := strings.ToLower(s)
	// Chains keep internal buffers; build one per call so Normalize is safe for concurrent use.
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, lower)
	if err != nil {
		return lower
	}
	return out
}
