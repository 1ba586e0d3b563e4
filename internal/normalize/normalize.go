// Package normalize provides utilities for normalizing and sanitizing user-entered text.
package normalize

import (
	"html"
	"regexp"
	"strings"
	"unicode"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var (
	// Matches any non-alphanumeric character.
	nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)
	// Matches multiple hyphens.
	multipleHyphens = regexp.MustCompile(`-+`)

	folder = cases.Fold()

	//nolint:gochecknoglobals // bluemonday policies are safe for concurrent use
	plainText = bluemonday.StrictPolicy()
)

// TagName trims a tag name and collapses every internal whitespace run to a single space.
// "  Italian   Food  " -> "Italian Food". All-whitespace input yields "".
func TagName(text string) string {
	return strings.Join(strings.Fields(sanitizeString(text)), " ")
}

// TagKey is the equality key for tag names: TagName followed by Unicode case folding.
// Two tags are the same tag exactly when their keys are equal.
func TagKey(text string) string {
	return folder.String(TagName(text))
}

// SameTag reports whether two raw tag names refer to the same tag.
func SameTag(a, b string) bool {
	return TagKey(a) == TagKey(b)
}

// Slugify converts a string to a URL-safe slug.
// "Comfort Food" -> "comfort-food".
// "Crème Brûlée" -> "creme-brulee".
func Slugify(s string) string {
	// Decompose accented characters, then drop what isn't ASCII.
	s = norm.NFKD.String(s)
	s = strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, s)

	s = strings.ToLower(s)
	s = nonAlphanumeric.ReplaceAllString(s, "-")
	s = multipleHyphens.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// PlainText strips all markup from user-supplied text and trims the result.
// Used for descriptions, bios and comments, which templates escape on output,
// so the entities bluemonday emits are decoded again.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(plainText.Sanitize(sanitizeString(s))))
}

// sanitizeString removes null bytes, which SQLite and JSON handle badly.
func sanitizeString(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 {
			return -1
		}
		return r
	}, s)
}
