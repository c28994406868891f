// Package lexicon holds the embedded keyword sets and emotion categories and
// matches them as whole words or phrases over normalized text
package lexicon

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"subshift/internal/core/normalize"
)

//go:embed lexicon.json
var embedded []byte

// Category names scored by the emotions report
const (
	PositiveEmotion = "positive_emotion"
	NegativeEmotion = "negative_emotion"
)

// DefaultKeywords is the keyword set the filter uses when none is named
const DefaultKeywords = "depression"

// Lexicon is the decoded word list file
type Lexicon struct {
	Version    int                 `json:"version"`
	Keywords   map[string][]string `json:"keywords"`
	Categories map[string][]string `json:"categories"`
}

var (
	defaultOnce sync.Once
	defaultLex  *Lexicon
	defaultErr  error
)

// Default returns the embedded lexicon, decoded once
func Default() (*Lexicon, error) {
	defaultOnce.Do(func() {
		defaultLex, defaultErr = Parse(embedded)
	})
	return defaultLex, defaultErr
}

// Parse decodes and checks a lexicon document
func Parse(b []byte) (*Lexicon, error) {
	var lx Lexicon
	if err := json.Unmarshal(b, &lx); err != nil {
		return nil, fmt.Errorf("lexicon: decode: %w", err)
	}
	for name, terms := range lx.Keywords {
		if len(terms) == 0 {
			return nil, fmt.Errorf("lexicon: keyword set %q is empty", name)
		}
	}
	for name, terms := range lx.Categories {
		if len(terms) == 0 {
			return nil, fmt.Errorf("lexicon: category %q is empty", name)
		}
	}
	return &lx, nil
}

// KeywordSet returns the named keyword list
func (lx *Lexicon) KeywordSet(name string) ([]string, error) {
	terms, ok := lx.Keywords[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("lexicon: unknown keyword set %q (have %s)", name, strings.Join(sortedKeys(lx.Keywords), ", "))
	}
	return terms, nil
}

// Category returns the named category list
func (lx *Lexicon) Category(name string) ([]string, error) {
	terms, ok := lx.Categories[name]
	if !ok {
		return nil, fmt.Errorf("lexicon: unknown category %q (have %s)", name, strings.Join(sortedKeys(lx.Categories), ", "))
	}
	return terms, nil
}

func sortedKeys(m map[string][]string) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Match is one bounded occurrence of a term in the normalized text
type Match struct {
	Term       string
	Start, End int
}

// Matcher finds whole-word occurrences of a fixed term list. Safe for concurrent use
type Matcher struct {
	ac    *automaton
	terms []string
	norm  *normalize.Normalizer
}

// NewMatcher compiles terms; each term is normalized the same way as scanned text
func NewMatcher(terms []string) *Matcher {
	n := normalize.New()
	m := &Matcher{ac: newAutomaton(), norm: n}
	seen := map[string]bool{}
	for _, t := range terms {
		t = n.Normalize(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		m.ac.add(t, len(m.terms))
		m.terms = append(m.terms, t)
	}
	m.ac.build()
	return m
}

// Terms returns the normalized, deduplicated term list
func (m *Matcher) Terms() []string { return slices.Clone(m.terms) }

// Find returns every bounded match in text, in scan order. Overlapping terms
// ("panic" inside "panic attack") each report their own match.
func (m *Matcher) Find(text string) []Match {
	s := m.norm.Normalize(text)
	var out []Match
	m.ac.scan(s, func(start, end, id int) bool {
		if bounded(s, start, end) {
			out = append(out, Match{Term: m.terms[id], Start: start, End: end})
		}
		return true
	})
	return out
}

// Any reports whether text contains at least one term
func (m *Matcher) Any(text string) bool {
	s := m.norm.Normalize(text)
	found := false
	m.ac.scan(s, func(start, end, _ int) bool {
		found = bounded(s, start, end)
		return !found
	})
	return found
}

// Count returns the number of bounded matches in text
func (m *Matcher) Count(text string) int {
	s := m.norm.Normalize(text)
	n := 0
	m.ac.scan(s, func(start, end, _ int) bool {
		if bounded(s, start, end) {
			n++
		}
		return true
	})
	return n
}

// CategoryCounter counts category hits per text
type CategoryCounter struct {
	names    []string
	matchers []*Matcher
}

// NewCategoryCounter compiles the named categories from lx
func NewCategoryCounter(lx *Lexicon, names ...string) (*CategoryCounter, error) {
	cc := &CategoryCounter{}
	for _, name := range names {
		terms, err := lx.Category(name)
		if err != nil {
			return nil, err
		}
		cc.names = append(cc.names, name)
		cc.matchers = append(cc.matchers, NewMatcher(terms))
	}
	return cc, nil
}

// Names returns the category names in construction order
func (cc *CategoryCounter) Names() []string { return slices.Clone(cc.names) }

// Count returns one hit count per category, in Names order
func (cc *CategoryCounter) Count(text string) []int {
	out := make([]int, len(cc.matchers))
	for i, m := range cc.matchers {
		out[i] = m.Count(text)
	}
	return out
}
