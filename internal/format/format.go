// Package format prettifies raw tag strings for display.
package format

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// tagPattern splits "prefix:suffix" greedily, so a value with several colons
// keeps everything up to the last colon in the prefix. Category extraction
// elsewhere splits at the first colon; this greedy form is display-only and
// matches the feeds already in circulation.
var tagPattern = regexp.MustCompile(`^(.+):(.+)$`)

// Tag formats a raw "category:tagname" string as "Category: tagname".
// The prefix gets an uppercase first rune and a lowered remainder; the suffix
// is preserved as-is. Input without a matching colon is returned unchanged.
func Tag(s string) string {
	m := tagPattern.FindStringSubmatch(s)
	if m == nil {
		return s
	}
	return capitalize(m[1]) + ": " + m[2]
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
