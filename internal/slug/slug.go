// Package slug derives filesystem-safe ASCII names from titles.
package slug

import (
	"strings"

	"github.com/gosimple/unidecode"
	"golang.org/x/text/unicode/norm"
)

const placeholder = '_'

// Make transliterates s to ASCII, keeps letters, digits and hyphens, and
// collapses every other run of characters into a single underscore.
// Leading and trailing underscores are trimmed.
func Make(s string) string {
	ascii := unidecode.Unidecode(norm.NFC.String(s))

	var b strings.Builder
	b.Grow(len(ascii))
	replacing := false
	for i := 0; i < len(ascii); i++ {
		c := ascii[i]
		if isAlnum(c) || c == '-' {
			b.WriteByte(c)
			replacing = false
			continue
		}
		if !replacing {
			b.WriteByte(placeholder)
			replacing = true
		}
	}
	return strings.Trim(b.String(), string(placeholder))
}

// Humanize turns a slug back into a display title.
func Humanize(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, string(placeholder), " "))
}

// Title normalizes a title read from tags: NFC form, surrounding space trimmed.
func Title(s string) string {
	return strings.TrimSpace(norm.NFC.String(s))
}

func isAlnum(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9'
}
