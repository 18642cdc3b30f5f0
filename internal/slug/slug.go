// Package slug turns free-form labels into Go identifiers.
package slug

import (
	"go/token"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

func removeAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	output, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return output
}

// Make converts a label into a lower snake_case identifier:
//
//	"Adds two numbers" -> adds_two_numbers
//	"résumé parsing"   -> resume_parsing
//	"404 page"         -> _404_page
//
// Runs of anything that is not a letter or digit collapse to a single
// underscore. A label with no letters or digits becomes "_". Go keywords get
// a trailing underscore.
func Make(label string) string {
	var b strings.Builder
	pending := false
	for _, r := range removeAccents(label) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			if pending && b.Len() > 0 {
				b.WriteByte('_')
			}
			pending = false
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		pending = true
	}

	s := b.String()
	if s == "" {
		return "_"
	}
	if unicode.IsDigit([]rune(s)[0]) {
		s = "_" + s
	}
	if token.IsKeyword(s) {
		s += "_"
	}
	return s
}

// Pascal converts an identifier into an exported CamelCase form suitable for
// following a Test prefix: adds_two -> AddsTwo, outerScope -> OuterScope.
// Underscores between digits are kept so _1_2 does not collapse into 12.
func Pascal(ident string) string {
	parts := strings.Split(ident, "_")
	var b strings.Builder
	prevDigit := false
	for _, part := range parts {
		if part == "" {
			continue
		}
		rs := []rune(part)
		if unicode.IsDigit(rs[0]) && prevDigit {
			b.WriteByte('_')
		}
		rs[0] = unicode.ToUpper(rs[0])
		b.WriteString(string(rs))
		prevDigit = unicode.IsDigit(rs[len(rs)-1])
	}
	if b.Len() == 0 {
		return "_"
	}
	return b.String()
}
