package lexer

import (
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// classes of ASCII bytes
const (
	cIdentStart uint8 = 1 << iota
	cIdentPart
	cDec
	cHex
	cBlank
)

var asciiClass = func() (t [utf8.RuneSelf]uint8) {
	for b := range t {
		switch {
		case b == '_' || 'a' <= b && b <= 'z' || 'A' <= b && b <= 'Z':
			t[b] = cIdentStart | cIdentPart
			if 'a' <= b && b <= 'f' || 'A' <= b && b <= 'F' {
				t[b] |= cHex
			}
		case '0' <= b && b <= '9':
			t[b] = cIdentPart | cDec | cHex
		case b == ' ' || b == '\t' || b == '\r' || b == '\f' || b == '\v':
			t[b] = cBlank
		}
	}
	return t
}()

func hasClass(b byte, c uint8) bool { return b < utf8.RuneSelf && asciiClass[b]&c != 0 }

func isDec(b byte) bool   { return hasClass(b, cDec) }
func isHex(b byte) bool   { return hasClass(b, cHex) }
func isBlank(b byte) bool { return hasClass(b, cBlank) }

// mayStartIdent reports whether an identifier can begin with byte b. A
// non-ASCII lead byte is decided on the decoded rune.
func mayStartIdent(b byte) bool { return b >= utf8.RuneSelf || hasClass(b, cIdentStart) }

// Identifier characters of C#: letters start an identifier; digits,
// connectors, combining marks and format characters may follow.
var (
	identStart = []*unicode.RangeTable{unicode.Lu, unicode.Ll, unicode.Lt, unicode.Lm, unicode.Lo, unicode.Nl}
	identPart  = append(slices.Clip(identStart), unicode.Nd, unicode.Pc, unicode.Mn, unicode.Mc, unicode.Cf)
)

func isIdentStart(r rune) bool {
	if r < utf8.RuneSelf {
		return hasClass(byte(r), cIdentStart)
	}
	return unicode.In(r, identStart...)
}

func isIdentPart(r rune) bool {
	if r < utf8.RuneSelf {
		return hasClass(byte(r), cIdentPart)
	}
	return unicode.In(r, identPart...)
}

// IdentName returns the name an identifier token binds to: the verbatim '@'
// is dropped, format characters are removed and the rest is NFC-normalised,
// so canonically equivalent spellings name the same symbol.
func IdentName(text string) string {
	text = strings.TrimPrefix(text, "@")
	for i := range len(text) {
		if text[i] >= utf8.RuneSelf {
			text = strings.Map(func(r rune) rune {
				if unicode.Is(unicode.Cf, r) {
					return -1
				}
				return r
			}, text)
			return norm.NFC.String(text)
		}
	}
	return text
}
