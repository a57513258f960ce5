// Package slug derives stable identifiers from display names.
//
// Category and subcategory ids are slugs of the name they were created with.
// Renames never re-derive the slug: the id is referenced by business records
// and must stay stable for the lifetime of the node.
package slug

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)
)

// Make converts a display name to a URL-safe slug.
// "LOCAL BUSINESSES" -> "local-businesses".
// "Café & Sweets" -> "cafe-sweets".
//
// Two different names can derive the same slug; callers must treat the
// result as a candidate identifier and check for sibling collisions
// explicitly rather than relying on store upsert semantics.
func Make(name string) string {
	// Normalize unicode (decompose accented characters).
	s := norm.NFKD.String(name)

	// Remove non-ASCII characters.
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	// Lowercase.
	s = strings.ToLower(s)

	// Replace non-alphanumeric with hyphens.
	s = nonAlphanumeric.ReplaceAllString(s, "-")

	// Collapse multiple hyphens.
	s = multipleHyphens.ReplaceAllString(s, "-")

	// Trim leading/trailing hyphens.
	s = strings.Trim(s, "-")

	return s
}
