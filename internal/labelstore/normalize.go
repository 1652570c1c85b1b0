package labelstore

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// canonicalName returns the NFC form of a filename. macOS lists decomposed
// names, so the same file can appear under two byte sequences.
func canonicalName(name string) string {
	return norm.NFC.String(name)
}

// removeDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// MatchName reports whether name contains query, ignoring case and diacritics.
func MatchName(name, query string) bool {
	fold := func(s string) string { return strings.ToLower(removeDiacritics(s)) }
	return strings.Contains(fold(name), fold(query))
}
