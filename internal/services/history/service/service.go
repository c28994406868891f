// Package service implements the history export: one row per item for every
// user named in an input table
package service

import (
	"context"
	"strings"
	"time"

	"subshift/internal/core/activity"
	"subshift/internal/modkit"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"
	"subshift/internal/platform/tabular"
	"subshift/internal/services/history/domain"
	scrapedom "subshift/internal/services/scrape/domain"
)

// Export columns
const (
	ColUsername  = "Username"
	ColText      = "Text"
	ColDate      = "Date"
	ColSubreddit = "Subreddit"
	ColType      = "Type"
	ColLink      = "Link"
)

// SleepFunc pauses for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

// ReadFunc loads the input table
type ReadFunc func(path string) (*tabular.Table, error)

// Config for the export
type Config struct {
	In        string
	Out       string
	UserDelay time.Duration
}

// Service implements domain.ExporterPort
type Service struct {
	History scrapedom.History
	Sink    modkit.TableSink
	Read    ReadFunc
	Sleep   SleepFunc
	Cfg     Config
}

// New constructs the export service
func New(hist scrapedom.History, sink modkit.TableSink, sleep SleepFunc, cfg Config) *Service {
	if hist == nil || sink == nil || sleep == nil {
		panic("history service: nil History, sink or sleep")
	}
	return &Service{History: hist, Sink: sink, Read: tabular.Read, Sleep: sleep, Cfg: cfg}
}

// Users returns the non-blank first-column cells of t, deduplicated in order
func Users(t *tabular.Table) []string {
	var out []string
	seen := map[string]bool{}
	for i := range t.Len() {
		u := strings.TrimSpace(t.String(i, 0))
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// Export walks each user's full history. A user whose walk fails is logged
// and left out entirely; the others still land in the table.
func (s *Service) Export(ctx context.Context) (domain.Summary, error) {
	log := logger.C(ctx).With().Str("component", "history").Logger()

	in, err := s.Read(s.Cfg.In)
	if err != nil {
		return domain.Summary{}, perr.WithOp(err, "history.read_input")
	}
	users := Users(in)
	sum := domain.Summary{Users: len(users)}
	table := tabular.New(ColUsername, ColText, ColDate, ColSubreddit, ColType, ColLink)

	var runErr error
	for i, user := range users {
		if i > 0 {
			if runErr = s.Sleep(ctx, s.Cfg.UserDelay); runErr != nil {
				break
			}
		}
		items, err := s.userItems(ctx, user)
		if err != nil {
			if ctx.Err() != nil {
				runErr = ctx.Err()
				break
			}
			sum.Failed++
			log.Warn().Err(err).Str("op", "user_history").Str("user", user).Msg("history export failed, skipping user")
			continue
		}
		for _, it := range items {
			table.Append(user, it.Text, it.CreatedAt, it.Community, string(it.Kind), it.Link)
		}
		sum.Rows += len(items)
		log.Debug().Str("user", user).Int("items", len(items)).Msg("user exported")
	}

	path, err := s.Sink.Write(ctx, table, s.Cfg.Out)
	if err != nil {
		return sum, err
	}
	sum.Path = path
	log.Info().Int("users", sum.Users).Int("failed", sum.Failed).Int("rows", sum.Rows).Str("path", path).Msg("history done")
	return sum, runErr
}

func (s *Service) userItems(ctx context.Context, user string) ([]activity.Item, error) {
	var items []activity.Item
	for it, err := range s.History.UserHistory(ctx, user, "", 0) {
		if err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, nil
}
