package normalize

import (
	"strings"
	"unicode/utf8"
)

// dropRune reports runes that Postgres text columns or spreadsheet cells reject:
// NUL, C0 controls other than tab/newline/CR, DEL and the C1 block
func dropRune(r rune) bool {
	switch {
	case r == '\t', r == '\n', r == '\r':
		return false
	case r < 0x20, r == 0x7F:
		return true
	case r >= 0x80 && r <= 0x9F:
		return true
	}
	return false
}

// Sanitize strips rejected runes and invalid UTF-8 from dump and scrape text.
// Clean input is returned as is without allocating.
func Sanitize(s string) string {
	if clean(s) {
		return s
	}
	s = strings.ToValidUTF8(s, "")
	return strings.Map(func(r rune) rune {
		if dropRune(r) {
			return -1
		}
		return r
	}, s)
}

func clean(s string) bool {
	for i := 0; i < len(s); {
		if c := s[i]; c < utf8.RuneSelf {
			if dropRune(rune(c)) {
				return false
			}
			i++
			continue
		}
		r, size := utf8.DecodeRuneInString(s[i:])
		if (r == utf8.RuneError && size == 1) || dropRune(r) {
			return false
		}
		i += size
	}
	return true
}
