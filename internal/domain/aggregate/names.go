package aggregate

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Letters that do not decompose into an ASCII base plus marks.
var foldSpecial = strings.NewReplacer(
	"ø", "o", "Ø", "O",
	"ß", "ss",
	"ł", "l", "Ł", "L",
	"æ", "ae", "Æ", "AE",
	"œ", "oe", "Œ", "OE",
	"đ", "d", "Đ", "D",
	"ð", "d", "Ð", "D",
	"þ", "th", "Þ", "TH",
	"ı", "i",
)

// ToASCII strips diacritics and folds the remaining non-ASCII letters to
// their closest ASCII spelling. Anything left without an equivalent is dropped.
func ToASCII(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, foldSpecial.Replace(s))
	if err != nil {
		out = s
	}
	return strings.Map(func(r rune) rune {
		if r > unicode.MaxASCII {
			return -1
		}
		return r
	}, out)
}

// DisplayName turns "Last, First" into "First Last" in ASCII. Names without
// a comma are only transliterated.
func DisplayName(raw string) string {
	last, first, ok := strings.Cut(raw, ",")
	name := strings.TrimSpace(raw)
	if ok {
		name = strings.TrimSpace(strings.TrimSpace(first) + " " + strings.TrimSpace(last))
	}
	return ToASCII(name)
}
