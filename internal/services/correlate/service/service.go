// Package service implements the correlate service: index a source community,
// pull each user's target-community history and split their source activity
// around the first target item
package service

import (
	"context"
	"time"

	"subshift/internal/core/activity"
	"subshift/internal/modkit"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"
	"subshift/internal/platform/tabular"
	"subshift/internal/services/correlate/domain"
	scrapedom "subshift/internal/services/scrape/domain"
)

const progressEvery = 25

// SleepFunc pauses for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config for the correlate service
type Config struct {
	Source    string
	Target    string
	Limit     int
	TargetCap int
	UserDelay time.Duration
	Out       string

	// SourceHistory replaces indexed items with the user's full source history
	SourceHistory bool
	// IncludeRates appends per-day rate columns
	IncludeRates bool
	// SourceThenTarget keeps only users whose target join does not precede their source activity
	SourceThenTarget bool

	// membership mode
	Targets        []string
	MembershipCap  int
	MembershipOut  string
	MembershipWait time.Duration
}

// Service implements domain.RunnerPort
type Service struct {
	Indexer scrapedom.IndexerPort
	History scrapedom.History
	Sink    modkit.TableSink
	Sleep   SleepFunc
	Cfg     Config
}

// New constructs a new correlate service
func New(ports domain.Ports, sink modkit.TableSink, sleep SleepFunc, cfg Config) *Service {
	if ports.Indexer == nil || ports.History == nil {
		panic("correlate service: Ports missing Indexer or History")
	}
	if sink == nil || sleep == nil {
		panic("correlate service: nil sink or sleep")
	}
	return &Service{Indexer: ports.Indexer, History: ports.History, Sink: sink, Sleep: sleep, Cfg: cfg}
}

// Run builds the index, correlates each user and writes one row per kept user.
// Per-user upstream failures degrade to an empty history. Cancellation stops
// the loop and the rows gathered so far are still written.
func (s *Service) Run(ctx context.Context) (domain.Summary, error) {
	log := logger.C(ctx).With().Str("component", "correlate").
		Str("source", s.Cfg.Source).Str("target", s.Cfg.Target).Logger()

	idx, runErr := s.Indexer.BuildIndex(ctx, s.Cfg.Source, s.Cfg.Limit)
	if idx == nil {
		return domain.Summary{}, runErr
	}

	table := tabular.New(activity.TransitionColumns(s.Cfg.IncludeRates)...)
	sum := domain.Summary{Users: idx.Len()}

	i := 0
	for rec := range idx.Records() {
		if runErr != nil || ctx.Err() != nil {
			break
		}
		if i > 0 {
			if err := s.Sleep(ctx, s.Cfg.UserDelay); err != nil {
				break
			}
		}
		i++

		source := *rec
		if s.Cfg.SourceHistory {
			if items, err := s.history(ctx, rec.UserID, s.Cfg.Source, 0); err == nil {
				source.Items = items
			}
		}
		target, err := s.history(ctx, rec.UserID, s.Cfg.Target, s.Cfg.TargetCap)
		if err != nil {
			target = nil
		}

		tr := activity.Correlate(rec.UserID, source, target)
		if s.Cfg.SourceThenTarget && !tr.SourceThenTarget() {
			sum.Skipped++
			continue
		}
		var rates *activity.Rates
		if s.Cfg.IncludeRates {
			r := activity.RatesOf(tr, target)
			rates = &r
		}
		table.Append(tr.Row(rates)...)
		sum.Rows++
		if tr.Transitioned() {
			sum.Transitioned++
		}
		if i%progressEvery == 0 {
			log.Info().Int("processed", i).Int("total", sum.Users).Msg("correlate progress")
		}
	}
	if runErr == nil {
		runErr = ctx.Err()
	}
	if runErr != nil {
		log.Warn().Err(runErr).Int("rows", sum.Rows).Msg("interrupted, writing partial table")
	}

	path, err := s.Sink.Write(ctx, table, s.Cfg.Out)
	if err != nil {
		return sum, err
	}
	sum.Path = path
	log.Info().Int("users", sum.Users).Int("rows", sum.Rows).Int("transitioned", sum.Transitioned).
		Int("skipped", sum.Skipped).Str("path", path).Msg("correlate done")
	return sum, runErr
}

// history drains a user's items in community, capped by limit per listing.
// Failures are logged with the partial count; callers decide what to keep.
func (s *Service) history(ctx context.Context, user, community string, limit int) ([]activity.Item, error) {
	var items []activity.Item
	for it, err := range s.History.UserHistory(ctx, user, community, limit) {
		if err != nil {
			ev := logger.C(ctx).Warn()
			if perr.IsCode(err, perr.ErrorCodeNotFound) {
				ev = logger.C(ctx).Debug()
			}
			ev.Err(err).Str("op", "user_history").Str("user", user).Str("community", community).
				Int("partial", len(items)).Msg("history fetch failed")
			return items, err
		}
		items = append(items, it)
	}
	return items, nil
}
