package service

import (
	"context"

	"subshift/internal/core/sentiment"
	"subshift/internal/core/stats"
	"subshift/internal/platform/tabular"
	"subshift/internal/services/textstats/domain"
)

var scoreColumns = []string{ColNeg, ColNeu, ColPos, ColCompound}

// Sentiment appends neg, neu, pos and compound. Missing text gives empty cells.
func (s *Service) Sentiment(ctx context.Context) (domain.Report, error) {
	in, err := s.input("textstats.sentiment")
	if err != nil {
		return domain.Report{}, err
	}
	texts, err := s.texts(in)
	if err != nil {
		return domain.Report{}, err
	}
	rep := domain.Report{Rows: in.Len()}
	out := in.WithColumns(scoreColumns, func(i int) []any {
		if blank(texts[i]) {
			rep.Dropped++
			return make([]any, len(scoreColumns))
		}
		sc := s.Analyzer.Polarity(texts[i])
		rep.Kept++
		return []any{sc.Neg, sc.Neu, sc.Pos, sc.Compound}
	})
	if rep.Path, err = s.write(ctx, out, s.Cfg.Out); err != nil {
		return rep, err
	}
	return rep, nil
}

// scores returns the four scores per row, read from existing columns when the
// table already carries them and computed from text otherwise. ok is false
// for rows with nothing to score.
func (s *Service) scores(t *tabular.Table) (out []sentiment.Scores, ok []bool, err error) {
	out = make([]sentiment.Scores, t.Len())
	ok = make([]bool, t.Len())

	idx := make([]int, len(scoreColumns))
	have := true
	for j, c := range scoreColumns {
		if idx[j] = t.Index(c); idx[j] < 0 {
			have = false
		}
	}
	if have {
		for i := range t.Len() {
			var v [4]float64
			good := true
			for j := range v {
				if v[j], good = parseFloat(t.String(i, idx[j])); !good {
					break
				}
			}
			if good {
				out[i] = sentiment.Scores{Neg: v[0], Neu: v[1], Pos: v[2], Compound: v[3]}
				ok[i] = true
			}
		}
		return out, ok, nil
	}

	texts, err := s.texts(t)
	if err != nil {
		return nil, nil, err
	}
	for i, text := range texts {
		if !blank(text) {
			out[i], ok[i] = s.Analyzer.Polarity(text), true
		}
	}
	return out, ok, nil
}

// Classify writes the table with a sentiment_category column and a second
// table of class proportions next to it. Unscored rows get an empty label
// and stay out of the proportions.
func (s *Service) Classify(ctx context.Context) (domain.Report, error) {
	in, err := s.input("textstats.classify")
	if err != nil {
		return domain.Report{}, err
	}
	sc, ok, err := s.scores(in)
	if err != nil {
		return domain.Report{}, err
	}
	rep := domain.Report{Rows: in.Len()}
	var labels []sentiment.Class
	out := in.WithColumns([]string{ColCategory}, func(i int) []any {
		if !ok[i] {
			rep.Dropped++
			return []any{nil}
		}
		c := sentiment.Classify(sc[i].Compound)
		labels = append(labels, c)
		rep.Kept++
		return []any{string(c)}
	})
	rep.Proportions = sentiment.Proportions(labels)

	if rep.Path, err = s.write(ctx, out, s.Cfg.Out); err != nil {
		return rep, err
	}
	props := tabular.New(ColCategory, "count", "proportion")
	for _, p := range rep.Proportions {
		props.Append(string(p.Class), p.Count, p.Share)
	}
	if _, err := s.write(ctx, props, SiblingPath(s.Cfg.Out, "proportions")); err != nil {
		return rep, err
	}
	return rep, nil
}

// Histogram writes binned counts for neg, neu and pos over [0, 1] and for
// compound over [-1, 1], one row per bin.
func (s *Service) Histogram(ctx context.Context) (domain.Report, error) {
	in, err := s.input("textstats.histogram")
	if err != nil {
		return domain.Report{}, err
	}
	sc, ok, err := s.scores(in)
	if err != nil {
		return domain.Report{}, err
	}
	series := make([][]float64, len(scoreColumns))
	rep := domain.Report{Rows: in.Len()}
	for i, good := range ok {
		if !good {
			rep.Dropped++
			continue
		}
		rep.Kept++
		v := sc[i]
		for j, x := range []float64{v.Neg, v.Neu, v.Pos, v.Compound} {
			series[j] = append(series[j], x)
		}
	}

	out := tabular.New("score", "bin_lo", "bin_hi", "count")
	for j, name := range scoreColumns {
		lo := 0.0
		if name == ColCompound {
			lo = -1
		}
		bins, _, err := stats.Histogram(series[j], lo, 1, s.Cfg.Bins)
		if err != nil {
			return rep, err
		}
		for _, b := range bins {
			out.Append(name, b.Lo, b.Hi, b.Count)
		}
	}
	if rep.Path, err = s.write(ctx, out, s.Cfg.Out); err != nil {
		return rep, err
	}
	return rep, nil
}
