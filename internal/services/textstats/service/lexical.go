package service

import (
	"context"

	"subshift/internal/core/lexicon"
	"subshift/internal/services/textstats/domain"
)

// Filter keeps rows whose text holds any keyword of the configured set.
// Keywords match as whole words; multi-word keywords match as phrases.
func (s *Service) Filter(ctx context.Context) (domain.Report, error) {
	terms, err := s.Lexicon.KeywordSet(s.Cfg.Keywords)
	if err != nil {
		return domain.Report{}, err
	}
	in, err := s.input("textstats.filter")
	if err != nil {
		return domain.Report{}, err
	}
	texts, err := s.texts(in)
	if err != nil {
		return domain.Report{}, err
	}
	m := lexicon.NewMatcher(terms)
	out := in.Filter(func(i int) bool { return m.Any(texts[i]) })

	rep := domain.Report{Rows: in.Len(), Kept: out.Len(), Dropped: in.Len() - out.Len()}
	if rep.Path, err = s.write(ctx, out, s.Cfg.Out); err != nil {
		return rep, err
	}
	return rep, nil
}

// Emotions appends one count column per emotion category. Missing text
// gives empty cells.
func (s *Service) Emotions(ctx context.Context) (domain.Report, error) {
	cc, err := lexicon.NewCategoryCounter(s.Lexicon, lexicon.PositiveEmotion, lexicon.NegativeEmotion)
	if err != nil {
		return domain.Report{}, err
	}
	in, err := s.input("textstats.emotions")
	if err != nil {
		return domain.Report{}, err
	}
	texts, err := s.texts(in)
	if err != nil {
		return domain.Report{}, err
	}
	rep := domain.Report{Rows: in.Len()}
	out := in.WithColumns(cc.Names(), func(i int) []any {
		cells := make([]any, len(cc.Names()))
		if blank(texts[i]) {
			rep.Dropped++
			return cells
		}
		for j, n := range cc.Count(texts[i]) {
			cells[j] = n
		}
		rep.Kept++
		return cells
	})
	if rep.Path, err = s.write(ctx, out, s.Cfg.Out); err != nil {
		return rep, err
	}
	return rep, nil
}
