package attendance

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// NormalizeID returns the canonical form of a user ID: NFC, no surrounding space.
// IDs are compared in this form, so "Jiří" typed as decomposed runes equals the composed one.
func NormalizeID(id string) string {
	return norm.NFC.String(strings.TrimSpace(id))
}

// RemoveDiacritics removes diacritical marks from a string (e.g., "Jiří" -> "Jiri").
func RemoveDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// NormalizeName normalizes a name for lookups (lowercase, no diacritics, spaces for dashes,
// collapsed whitespace).
func NormalizeName(name string) string {
	name = RemoveDiacritics(name)
	name = strings.ToLower(name)
	name = strings.ReplaceAll(name, "-", " ")
	return strings.Join(strings.Fields(name), " ")
}

// FindUser looks a user up by ID, falling back to a normalized name match.
func FindUser(roster []User, query string) (User, bool) {
	id := NormalizeID(query)
	for _, u := range roster {
		if NormalizeID(u.ID) == id {
			return u, true
		}
	}
	name := NormalizeName(query)
	if name == "" {
		return User{}, false
	}
	for _, u := range roster {
		if NormalizeName(u.Name) == name {
			return u, true
		}
	}
	return User{}, false
}
