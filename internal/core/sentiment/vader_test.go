package sentiment

import (
	"math"
	"testing"
)

func analyzer(t *testing.T) *Analyzer {
	t.Helper()
	a, err := Default()
	if err != nil {
		t.Fatalf("Default: %v", err)
	}
	return a
}

func TestPolarity_KnownValues(t *testing.T) {
	a := analyzer(t)
	cases := []struct {
		text string
		want Scores
	}{
		{"I am happy", Scores{Neg: 0, Neu: 0.351, Pos: 0.649, Compound: 0.5719}},
		{"I am not happy", Scores{Neg: 0.5, Neu: 0.5, Pos: 0, Compound: -0.4585}},
		{"I am very happy", Scores{Neg: 0, Neu: 0.429, Pos: 0.571, Compound: 0.6115}},
		{"I am VERY HAPPY today", Scores{Neg: 0, Neu: 0.423, Pos: 0.577, Compound: 0.755}},
		{"I am happy!!!", Scores{Neg: 0, Neu: 0.304, Pos: 0.696, Compound: 0.6784}},
		{"The food was good but the service was terrible", Scores{Neg: 0.317, Neu: 0.534, Pos: 0.149, Compound: -0.4939}},
		{"I feel sad and alone", Scores{Neg: 0.63, Neu: 0.37, Pos: 0, Compound: -0.6249}},
		{"no problems here", Scores{Neg: 0.574, Neu: 0.426, Pos: 0, Compound: -0.4019}},
		{"the sky is blue", Scores{Neu: 1}},
	}
	for _, tc := range cases {
		got := a.Polarity(tc.text)
		if !closeScores(got, tc.want) {
			t.Errorf("Polarity(%q) = %+v, want %+v", tc.text, got, tc.want)
		}
	}
}

func TestPolarity_Emphasis(t *testing.T) {
	a := analyzer(t)
	base := a.Polarity("this is good").Compound
	if boosted := a.Polarity("this is really good").Compound; boosted <= base {
		t.Fatalf("booster did not raise compound: %v <= %v", boosted, base)
	}
	if shouted := a.Polarity("this is GOOD").Compound; shouted <= base {
		t.Fatalf("caps did not raise compound: %v <= %v", shouted, base)
	}
	if bang := a.Polarity("this is good!!").Compound; bang <= base {
		t.Fatalf("exclamation did not raise compound: %v <= %v", bang, base)
	}
	if neg := a.Polarity("this is not good").Compound; neg >= 0 {
		t.Fatalf("negation did not flip sign: %v", neg)
	}
}

func TestPolarity_EmptyAndBounds(t *testing.T) {
	a := analyzer(t)
	if got := a.Polarity("   "); got != (Scores{}) {
		t.Fatalf("empty text = %+v", got)
	}
	got := a.Polarity("LOVE LOVE LOVE best best awesome amazing wonderful great!!!! lol")
	if got.Compound > 1 || got.Compound < 0.9 {
		t.Fatalf("compound out of range: %v", got.Compound)
	}
	if sum := got.Neg + got.Neu + got.Pos; math.Abs(sum-1) > 0.01 {
		t.Fatalf("proportions sum to %v", sum)
	}
}

func TestParseLexicon(t *testing.T) {
	lex, err := ParseLexicon([]byte("# comment\nGood\t1.9\t0.9\n\nbad\t-2.5\n"))
	if err != nil {
		t.Fatal(err)
	}
	if lex["good"] != 1.9 || lex["bad"] != -2.5 || len(lex) != 2 {
		t.Fatalf("lexicon = %v", lex)
	}
	if _, err := ParseLexicon([]byte("word only\n")); err == nil {
		t.Fatalf("expected missing valence error")
	}
	if _, err := ParseLexicon([]byte("w\tx\n")); err == nil {
		t.Fatalf("expected bad float error")
	}
}

func TestClassify(t *testing.T) {
	cases := map[float64]Class{
		0.06:   Positive,
		0.05:   Neutral,
		0:      Neutral,
		-0.05:  Neutral,
		-0.051: Negative,
		0.9:    Positive,
	}
	for in, want := range cases {
		if got := Classify(in); got != want {
			t.Errorf("Classify(%v) = %s, want %s", in, got, want)
		}
	}
}

func TestProportions(t *testing.T) {
	got := Proportions([]Class{Positive, Negative, Positive, Neutral})
	want := []Proportion{{Positive, 2, 0.5}, {Neutral, 1, 0.25}, {Negative, 1, 0.25}}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Proportions[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
	for _, p := range Proportions(nil) {
		if p.Share != 0 || p.Count != 0 {
			t.Fatalf("empty proportions = %+v", p)
		}
	}
}

func closeScores(a, b Scores) bool {
	const eps = 1e-9
	return math.Abs(a.Neg-b.Neg) < eps && math.Abs(a.Neu-b.Neu) < eps &&
		math.Abs(a.Pos-b.Pos) < eps && math.Abs(a.Compound-b.Compound) < eps
}
