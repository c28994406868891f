// Package service implements the scrape service
package service

import (
	"context"
	"time"

	"subshift/internal/core/activity"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"
	"subshift/internal/services/scrape/domain"
)

// progressEvery controls how often a progress line is logged, in submissions
const progressEvery = 25

// SleepFunc pauses for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// Config for the scrape service
type Config struct {
	SubmissionDelay time.Duration
	CommentDelay    time.Duration
}

// Service implements domain.IndexerPort
type Service struct {
	Src   domain.Source
	Cfg   Config
	Sleep SleepFunc
}

// New constructs a new scrape service
func New(src domain.Source, cfg Config, sleep SleepFunc) *Service {
	if src == nil {
		panic("scrape service: nil source")
	}
	if sleep == nil {
		panic("scrape service: nil sleep")
	}
	return &Service{Src: src, Cfg: cfg, Sleep: sleep}
}

// BuildIndex walks the newest limit submissions of community and their comment
// trees, grouping every item under its author. The first time a user shows up
// their profile creation time is fetched once and cached on the record.
//
// Upstream errors are logged and skipped; the index built so far is returned.
// Only cancellation surfaces as an error, alongside the partial index.
func (s *Service) BuildIndex(ctx context.Context, community string, limit int) (*activity.Index, error) {
	log := logger.C(ctx).With().Str("component", "scrape").Str("community", community).Logger()
	idx := activity.NewIndex()

	var posts, comments, failures int
	for it, err := range s.Src.Recent(ctx, community, limit) {
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			failures++
			log.Warn().Err(err).Str("op", perr.OpOf(err)).Str("id", fieldOf(err)).Msg("scrape item failed, skipping")
			continue
		}

		rec, created := idx.Add(it)
		if rec != nil && created {
			rec.JoinTime = s.joinTime(ctx, it.Author)
		}

		delay := s.Cfg.CommentDelay
		if it.Kind == activity.KindPost {
			posts++
			delay = s.Cfg.SubmissionDelay
			if posts%progressEvery == 0 {
				log.Info().Int("submissions", posts).Int("comments", comments).Int("users", idx.Len()).Msg("scrape progress")
			}
		} else {
			comments++
		}
		if err := s.Sleep(ctx, delay); err != nil {
			break
		}
	}

	log.Info().Int("submissions", posts).Int("comments", comments).Int("users", idx.Len()).
		Int("failures", failures).Msg("index built")
	if err := ctx.Err(); err != nil {
		return idx, err
	}
	return idx, nil
}

// joinTime is called once per distinct user; a failure leaves the join time unknown
func (s *Service) joinTime(ctx context.Context, user string) *time.Time {
	t, err := s.Src.ProfileCreatedAt(ctx, user)
	if err != nil {
		logger.C(ctx).Warn().Err(err).Str("op", "profile_created_at").Str("user", user).Msg("join time unavailable")
		return nil
	}
	return t
}

func fieldOf(err error) string {
	if e, ok := perr.As(err); ok {
		return e.Field()
	}
	return ""
}
