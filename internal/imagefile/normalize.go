package imagefile

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName prepares a person name for object metadata, which only carries ASCII.
// Whitespace runs collapse to one space; diacritics are dropped.
func NormalizeName(name string) string {
	name = RemoveDiacritics(name)
	return strings.Join(strings.Fields(name), " ")
}
