package service

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// removeDiacritics strips diacritical marks ("Jiří" -> "Jiri").
func removeDiacritics(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	result, _, _ := transform.String(t, s)
	return result
}

// identitySlug normalizes a display name into the identity-id prefix:
// lowercase, diacritics stripped, spaces replaced with underscores. Keeps the
// generated id filesystem- and URL-safe.
func identitySlug(name string) string {
	name = removeDiacritics(name)
	name = strings.ToLower(name)
	return strings.ReplaceAll(name, " ", "_")
}

// identityID derives the record id from the name and registration timestamp.
// Colons in the timestamp are replaced so the id stays path-safe. Collisions
// would need two registrations of one name in the same instant; accepted risk.
func identityID(name, timestamp string) string {
	return identitySlug(name) + "_" + strings.ReplaceAll(timestamp, ":", "-")
}
