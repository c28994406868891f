// Package sentiment scores text with a rule-based valence model in the style
// of VADER: a word valence lexicon adjusted for negation, degree boosters,
// ALL-CAPS emphasis, a contrastive "but", and trailing punctuation.
package sentiment

import (
	"bufio"
	"bytes"
	_ "embed"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode"
)

//go:embed valence.txt
var embeddedValence []byte

const (
	boostIncr = 0.293
	boostDecr = -0.293
	capsIncr  = 0.733
	negScalar = -0.74

	// alpha in compound = x / sqrt(x^2 + alpha)
	normAlpha = 15.0
)

var negations = map[string]bool{
	"aint": true, "arent": true, "cannot": true, "cant": true, "couldnt": true, "darent": true,
	"didnt": true, "doesnt": true, "ain't": true, "aren't": true, "can't": true, "couldn't": true,
	"daren't": true, "didn't": true, "doesn't": true, "dont": true, "hadnt": true, "hasnt": true,
	"havent": true, "isnt": true, "mightnt": true, "mustnt": true, "neither": true, "don't": true,
	"hadn't": true, "hasn't": true, "haven't": true, "isn't": true, "mightn't": true, "mustn't": true,
	"neednt": true, "needn't": true, "never": true, "none": true, "nope": true, "nor": true, "not": true,
	"nothing": true, "nowhere": true, "oughtnt": true, "shant": true, "shouldnt": true, "uhuh": true,
	"wasnt": true, "werent": true, "oughtn't": true, "shan't": true, "shouldn't": true, "uh-uh": true,
	"wasn't": true, "weren't": true, "without": true, "wont": true, "wouldnt": true, "won't": true,
	"wouldn't": true, "rarely": true, "seldom": true, "despite": true,
}

var boosters = map[string]float64{
	"absolutely": boostIncr, "amazingly": boostIncr, "awfully": boostIncr, "completely": boostIncr,
	"considerably": boostIncr, "decidedly": boostIncr, "deeply": boostIncr, "enormously": boostIncr,
	"entirely": boostIncr, "especially": boostIncr, "exceptionally": boostIncr, "extremely": boostIncr,
	"fabulously": boostIncr, "fully": boostIncr, "greatly": boostIncr, "hella": boostIncr,
	"highly": boostIncr, "hugely": boostIncr, "incredibly": boostIncr, "intensely": boostIncr,
	"majorly": boostIncr, "more": boostIncr, "most": boostIncr, "particularly": boostIncr,
	"purely": boostIncr, "quite": boostIncr, "really": boostIncr, "remarkably": boostIncr,
	"so": boostIncr, "substantially": boostIncr, "thoroughly": boostIncr, "totally": boostIncr,
	"tremendously": boostIncr, "uber": boostIncr, "unbelievably": boostIncr, "unusually": boostIncr,
	"utterly": boostIncr, "very": boostIncr,
	"almost": boostDecr, "barely": boostDecr, "hardly": boostDecr, "just enough": boostDecr,
	"kind of": boostDecr, "kinda": boostDecr, "kindof": boostDecr, "kind-of": boostDecr,
	"less": boostDecr, "little": boostDecr, "marginally": boostDecr, "occasionally": boostDecr,
	"partly": boostDecr, "scarcely": boostDecr, "slightly": boostDecr, "somewhat": boostDecr,
	"sort of": boostDecr, "sorta": boostDecr, "sortof": boostDecr, "sort-of": boostDecr,
}

// Scores are the four VADER outputs. Neg, Neu and Pos are proportions that
// sum to about 1; Compound is normalized to [-1, 1].
type Scores struct {
	Neg      float64
	Neu      float64
	Pos      float64
	Compound float64
}

// Analyzer scores text against a valence lexicon. Safe for concurrent use
type Analyzer struct {
	lex map[string]float64
}

var (
	defaultOnce sync.Once
	defaultA    *Analyzer
	defaultErr  error
)

// Default returns the analyzer over the embedded lexicon
func Default() (*Analyzer, error) {
	defaultOnce.Do(func() {
		var lex map[string]float64
		lex, defaultErr = ParseLexicon(embeddedValence)
		if defaultErr == nil {
			defaultA = New(lex)
		}
	})
	return defaultA, defaultErr
}

// New builds an analyzer over lex; keys must be lower case
func New(lex map[string]float64) *Analyzer { return &Analyzer{lex: lex} }

// ParseLexicon reads "word<TAB>valence[<TAB>...]" lines; # starts a comment
func ParseLexicon(b []byte) (map[string]float64, error) {
	out := map[string]float64{}
	sc := bufio.NewScanner(bytes.NewReader(b))
	line := 0
	for sc.Scan() {
		line++
		s := strings.TrimSpace(sc.Text())
		if s == "" || strings.HasPrefix(s, "#") {
			continue
		}
		parts := strings.Split(s, "\t")
		if len(parts) < 2 {
			return nil, fmt.Errorf("sentiment: lexicon line %d: want word<TAB>valence", line)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("sentiment: lexicon line %d: %w", line, err)
		}
		out[strings.ToLower(strings.TrimSpace(parts[0]))] = v
	}
	return out, sc.Err()
}

// Polarity scores one text
func (a *Analyzer) Polarity(text string) Scores {
	words := tokens(text)
	if len(words) == 0 {
		return Scores{}
	}
	lower := make([]string, len(words))
	for i, w := range words {
		lower[i] = strings.ToLower(w)
	}
	capDiff := allCapDifferential(words)

	sentiments := make([]float64, 0, len(words))
	for i, w := range lower {
		if _, ok := boosters[w]; ok {
			sentiments = append(sentiments, 0)
			continue
		}
		if w == "kind" && i+1 < len(lower) && lower[i+1] == "of" {
			sentiments = append(sentiments, 0)
			continue
		}
		sentiments = append(sentiments, a.valence(words, lower, i, capDiff))
	}
	sentiments = butCheck(lower, sentiments)
	return scoreValence(sentiments, text)
}

func (a *Analyzer) valence(words, lower []string, i int, capDiff bool) float64 {
	v, ok := a.lex[lower[i]]
	if !ok {
		return 0
	}
	// "no" only counts on its own, not as a determiner ahead of a rated word
	if lower[i] == "no" && i+1 < len(lower) {
		if _, rated := a.lex[lower[i+1]]; rated {
			return 0
		}
	}
	if capDiff && isUpper(words[i]) {
		if v > 0 {
			v += capsIncr
		} else {
			v -= capsIncr
		}
	}
	for back := range 3 {
		j := i - (back + 1)
		if j < 0 {
			break
		}
		if _, rated := a.lex[lower[j]]; rated {
			continue
		}
		s := boost(words[j], lower[j], v, capDiff)
		switch back {
		case 1:
			s *= 0.95
		case 2:
			s *= 0.9
		}
		v += s
		v = negationCheck(v, lower, back, i)
	}
	return v
}

// boost is the scalar a preceding degree word adds, signed to match v
func boost(word, lower string, v float64, capDiff bool) float64 {
	s, ok := boosters[lower]
	if !ok {
		return 0
	}
	if v < 0 {
		s = -s
	}
	if capDiff && isUpper(word) {
		if v > 0 {
			s += capsIncr
		} else {
			s -= capsIncr
		}
	}
	return s
}

func negationCheck(v float64, lower []string, back, i int) float64 {
	switch back {
	case 0:
		if negated(lower[i-1]) {
			v *= negScalar
		}
	case 1:
		switch {
		case lower[i-2] == "never" && (lower[i-1] == "so" || lower[i-1] == "this"):
			v *= 1.25
		case lower[i-2] == "without" && lower[i-1] == "doubt":
		case negated(lower[i-2]):
			v *= negScalar
		}
	case 2:
		switch {
		case lower[i-3] == "never" && (lower[i-2] == "so" || lower[i-2] == "this" || lower[i-1] == "so" || lower[i-1] == "this"):
			v *= 1.25
		case lower[i-3] == "without" && (lower[i-2] == "doubt" || lower[i-1] == "doubt"):
		case negated(lower[i-3]):
			v *= negScalar
		}
	}
	return v
}

func negated(w string) bool {
	return negations[w] || strings.Contains(w, "n't")
}

// butCheck halves sentiment before "but" and boosts it by half after
func butCheck(lower []string, s []float64) []float64 {
	bi := -1
	for i, w := range lower {
		if w == "but" {
			bi = i
			break
		}
	}
	if bi < 0 {
		return s
	}
	for i := range s {
		switch {
		case i < bi:
			s[i] *= 0.5
		case i > bi:
			s[i] *= 1.5
		}
	}
	return s
}

func scoreValence(s []float64, text string) Scores {
	if len(s) == 0 {
		return Scores{}
	}
	var sum float64
	for _, v := range s {
		sum += v
	}
	punct := punctuationEmphasis(text)
	switch {
	case sum > 0:
		sum += punct
	case sum < 0:
		sum -= punct
	}
	compound := normalize(sum)

	var pos, neg, neu float64
	for _, v := range s {
		switch {
		case v > 0:
			pos += v + 1
		case v < 0:
			neg += v - 1
		default:
			neu++
		}
	}
	switch {
	case pos > math.Abs(neg):
		pos += punct
	case pos < math.Abs(neg):
		neg -= punct
	}
	total := pos + math.Abs(neg) + neu
	if total == 0 {
		return Scores{Compound: round(compound, 4)}
	}
	return Scores{
		Neg:      round(math.Abs(neg/total), 3),
		Neu:      round(math.Abs(neu/total), 3),
		Pos:      round(math.Abs(pos/total), 3),
		Compound: round(compound, 4),
	}
}

func punctuationEmphasis(text string) float64 {
	ep := min(strings.Count(text, "!"), 4)
	qm := strings.Count(text, "?")
	var qmAmp float64
	if qm > 1 {
		if qm <= 3 {
			qmAmp = float64(qm) * 0.18
		} else {
			qmAmp = 0.96
		}
	}
	return float64(ep)*0.292 + qmAmp
}

func normalize(score float64) float64 {
	n := score / math.Sqrt(score*score+normAlpha)
	return max(-1, min(1, n))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// tokens splits on whitespace and strips surrounding punctuation when what
// remains is longer than two characters, so emoticons like ":)" survive
func tokens(text string) []string {
	fields := strings.Fields(text)
	out := fields[:0]
	for _, f := range fields {
		stripped := strings.TrimFunc(f, unicode.IsPunct)
		if len([]rune(stripped)) > 2 {
			f = stripped
		}
		out = append(out, f)
	}
	return out
}

func isUpper(w string) bool {
	hasLetter := false
	for _, r := range w {
		if unicode.IsLetter(r) {
			hasLetter = true
			if !unicode.IsUpper(r) {
				return false
			}
		}
	}
	return hasLetter
}

// allCapDifferential reports whether some but not all words are shouted
func allCapDifferential(words []string) bool {
	caps := 0
	for _, w := range words {
		if isUpper(w) {
			caps++
		}
	}
	return caps > 0 && caps < len(words)
}
