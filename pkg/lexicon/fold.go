// Package lexicon loads polarity dictionaries and aspect gazetteers and applies
// them to documents.
package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Key normalises a dictionary entry or lookup text: NFC composition and
// collapsed whitespace. Case is preserved.
func Key(s string) string {
	return strings.Join(strings.Fields(norm.NFC.String(s)), " ")
}

// Fold is the case-insensitive matching form used by the gazetteer. Curly
// apostrophes and long dashes fold to their ASCII forms.
func Fold(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	for _, ch := range norm.NFC.String(s) {
		c := unicode.ToLower(ch)
		switch c {
		case '’', '‘':
			c = '\''
		case '–', '—':
			c = '-'
		}
		if unicode.IsSpace(c) {
			c = ' '
		}
		out.WriteRune(c)
	}
	return strings.Join(strings.Fields(out.String()), " ")
}
