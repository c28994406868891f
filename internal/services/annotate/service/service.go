// Package service implements rubric annotation of a text column through a chat model
package service

import (
	"context"
	"strings"

	"subshift/internal/core/rubric"
	"subshift/internal/modkit"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"
	"subshift/internal/platform/retry"
	"subshift/internal/platform/tabular"
	"subshift/internal/services/annotate/domain"
)

// ColComment holds the annotated text in the output table
const ColComment = "comment"

const progressEvery = 25

// ReadFunc loads the input table
type ReadFunc func(path string) (*tabular.Table, error)

// Config for one annotation batch
type Config struct {
	In     string
	Out    string
	Column string
	// Head limits the batch to the first n rows, 0 is all
	Head int
}

// Service implements domain.AnnotatorPort
type Service struct {
	LLM    domain.Completer
	Rubric rubric.Rubric
	Retry  retry.Policy
	Sink   modkit.TableSink
	Read   ReadFunc
	Cfg    Config
}

// New constructs the annotation service
func New(llm domain.Completer, r rubric.Rubric, policy retry.Policy, sink modkit.TableSink, cfg Config) *Service {
	if llm == nil || sink == nil {
		panic("annotate service: nil LLM or sink")
	}
	return &Service{LLM: llm, Rubric: r, Retry: policy, Sink: sink, Read: tabular.Read, Cfg: cfg}
}

// Score runs one text through the model and the strict reply parser.
// The error is non-nil only for upstream failures; a malformed reply is a
// Result with OK false.
func (s *Service) Score(ctx context.Context, text string) (rubric.Result, error) {
	reply, err := retry.Do(ctx, s.Retry, "llm.complete", func(ctx context.Context) (string, error) {
		return s.LLM.Complete(ctx, s.Rubric.System, s.Rubric.Prompt(text))
	})
	if err != nil {
		return rubric.Result{Reason: err.Error()}, err
	}
	return rubric.Parse(s.Rubric, reply), nil
}

// Annotate scores each row's text and writes comment plus the two rubric
// columns. Failed rows get empty score cells; the batch never stops early
// except on cancellation, and then the rows done so far are written.
func (s *Service) Annotate(ctx context.Context) (domain.Summary, error) {
	log := logger.C(ctx).With().Str("component", "annotate").Str("rubric", s.Rubric.Name).Logger()

	in, err := s.Read(s.Cfg.In)
	if err != nil {
		return domain.Summary{}, perr.WithOp(err, "annotate.read_input")
	}
	texts, ok := in.Column(s.Cfg.Column)
	if !ok {
		return domain.Summary{}, perr.WithField(perr.InvalidArgf("annotate: input %s has no %q column", s.Cfg.In, s.Cfg.Column), "COLUMN")
	}
	if s.Cfg.Head > 0 && len(texts) > s.Cfg.Head {
		texts = texts[:s.Cfg.Head]
	}

	out := tabular.New(ColComment, s.Rubric.Columns[0], s.Rubric.Columns[1])
	var sum domain.Summary
	var runErr error
	for i, text := range texts {
		if runErr = ctx.Err(); runErr != nil {
			break
		}
		var a, b *int
		if strings.TrimSpace(text) == "" {
			sum.Failed++
		} else {
			res, err := s.Score(ctx, text)
			if err != nil && ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			if res.OK {
				a, b = &res.Scores[0], &res.Scores[1]
				sum.Scored++
			} else {
				sum.Failed++
				log.Warn().Str("op", "annotate.row").Int("row", i).Str("reason", res.Reason).Msg("annotation failed")
			}
		}
		out.Append(text, a, b)
		sum.Rows++
		if (i+1)%progressEvery == 0 {
			log.Info().Int("processed", i+1).Int("total", len(texts)).Msg("annotate progress")
		}
	}

	path, err := s.Sink.Write(ctx, out, s.Cfg.Out)
	if err != nil {
		return sum, err
	}
	sum.Path = path
	log.Info().Int("rows", sum.Rows).Int("scored", sum.Scored).Int("failed", sum.Failed).Str("path", path).Msg("annotate done")
	return sum, runErr
}
