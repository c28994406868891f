// Package service implements the table post-processing reports: keyword
// filter, emotion counts, sentiment intensity, classification, histograms
// and inter-rater reliability
package service

import (
	"context"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"subshift/internal/core/lexicon"
	"subshift/internal/core/sentiment"
	"subshift/internal/modkit"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"
	"subshift/internal/platform/tabular"
)

// Output columns
const (
	ColNeg      = "neg"
	ColNeu      = "neu"
	ColPos      = "pos"
	ColCompound = "compound"
	ColCategory = "sentiment_category"
)

// ReadFunc loads the input table
type ReadFunc func(path string) (*tabular.Table, error)

// Config for the statistics reports
type Config struct {
	In       string
	Out      string
	Column   string
	Keywords string
	Bins     int
	RaterA   string
	RaterB   string
}

// Service implements domain.StatsPort
type Service struct {
	Lexicon  *lexicon.Lexicon
	Analyzer *sentiment.Analyzer
	Sink     modkit.TableSink
	Read     ReadFunc
	Cfg      Config
}

// New constructs the statistics service
func New(lx *lexicon.Lexicon, an *sentiment.Analyzer, sink modkit.TableSink, cfg Config) *Service {
	if lx == nil || an == nil || sink == nil {
		panic("textstats service: nil lexicon, analyzer or sink")
	}
	return &Service{Lexicon: lx, Analyzer: an, Sink: sink, Read: tabular.Read, Cfg: cfg}
}

func (s *Service) input(op string) (*tabular.Table, error) {
	t, err := s.Read(s.Cfg.In)
	if err != nil {
		return nil, perr.WithOp(err, op)
	}
	return t, nil
}

func (s *Service) texts(t *tabular.Table) ([]string, error) {
	col, ok := t.Column(s.Cfg.Column)
	if !ok {
		return nil, perr.WithField(perr.InvalidArgf("textstats: input %s has no %q column", s.Cfg.In, s.Cfg.Column), "COLUMN")
	}
	return col, nil
}

func (s *Service) write(ctx context.Context, t *tabular.Table, path string) (string, error) {
	p, err := s.Sink.Write(ctx, t, path)
	if err != nil {
		return "", err
	}
	logger.C(ctx).Info().Str("component", "textstats").Str("path", p).Int("rows", t.Len()).Msg("report written")
	return p, nil
}

// SiblingPath derives "<base>_<suffix><ext>" next to p
func SiblingPath(p, suffix string) string {
	ext := filepath.Ext(p)
	return strings.TrimSuffix(p, ext) + "_" + suffix + ext
}

func blank(s string) bool { return strings.TrimSpace(s) == "" }

func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// finite maps NaN and Inf to an empty cell
func finite(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}
