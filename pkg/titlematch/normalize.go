// Package titlematch ranks catalogue titles against free-text queries.
package titlematch

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// romanRegex matches II-IX after a space. Standalone I and X are left alone
// ("I Robot", "American History X").
var romanRegex = regexp.MustCompile(`(?i) (ii|iii|iv|v|vi|vii|viii|ix)\b`)

var romanToArabic = map[string]string{
	"ii": "2", "iii": "3", "iv": "4", "v": "5",
	"vi": "6", "vii": "7", "viii": "8", "ix": "9",
}

var articles = []string{"the ", "a ", "an "}

// Normalize folds a title into a comparable form: lowercase, no accents or
// punctuation, leading articles dropped per subtitle part, Roman numerals
// II-IX as digits, single spaces.
func Normalize(title string) string {
	s := strings.ToLower(title)
	s = romanRegex.ReplaceAllStringFunc(s, func(m string) string {
		if arabic, ok := romanToArabic[strings.TrimSpace(m)]; ok {
			return " " + arabic
		}
		return m
	})
	s = foldAccents(s)

	s = strings.NewReplacer("&", " and ", "-", " ", "_", " ", ".", " ", "'", "").Replace(s)

	parts := strings.Split(s, ":")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		for _, a := range articles {
			if strings.HasPrefix(p, a) {
				p = strings.TrimPrefix(p, a)
				break
			}
		}
		parts[i] = p
	}
	s = strings.Join(parts, " ")

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, _ := transform.String(t, s)
	return out
}
