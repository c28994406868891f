// Package normalize folds free text into the form the lexicon matcher scans.
// Pipeline order
// 1 Sanitize control runes and drop invalid UTF-8
// 2 Unicode NFKD decomposition so accents split off their base letters
// 3 Case folding
// 4 Remove combining marks and format characters (zero-widths, BOM)
// 5 Width fold fullwidth to ASCII, then recompose with NFC
// 6 Fold typographic apostrophes and dashes to ASCII
// 7 Collapse whitespace runs to single spaces and trim
package normalize

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Normalizer is concurrency safe; chains come from a pool
type Normalizer struct{}

var chainPool = sync.Pool{
	New: func() any {
		return transform.Chain(
			norm.NFKD,
			cases.Fold(),
			runes.Remove(runes.In(unicode.Mn)),
			runes.Remove(runes.In(unicode.Cf)),
			width.Fold,
			norm.NFC,
		)
	},
}

// New constructs a Normalizer
func New() *Normalizer { return &Normalizer{} }

// Normalize returns the folded form of s following the pipeline above
func (n *Normalizer) Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = Sanitize(s)

	tr := chainPool.Get().(transform.Transformer)
	ns, _, _ := transform.String(tr, s)
	tr.Reset()
	chainPool.Put(tr)

	ns = punctFold(ns)
	return collapseSpaces(ns)
}

// punctFold maps curly quotes and dashes so "don’t" and "self–harm" match lexicon entries
func punctFold(s string) string {
	return punctReplacer.Replace(s)
}

var punctReplacer = strings.NewReplacer(
	"‘", "'", "’", "'", "‛", "'", "′", "'",
	"“", `"`, "”", `"`,
	"‐", "-", "‑", "-", "‒", "-", "–", "-", "—", "-",
)

// collapseSpaces converts every whitespace run, newlines included, to one ASCII space and trims
func collapseSpaces(s string) string {
	if s == "" {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inWS := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			inWS = true
			continue
		}
		if inWS && b.Len() > 0 {
			b.WriteByte(' ')
		}
		inWS = false
		b.WriteRune(r)
	}
	return b.String()
}
