// Package service implements the offline dump pipeline: ingest Arctic Shift
// dumps into Postgres, then roll up or correlate the stored items per user
package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"time"

	"subshift/internal/adapters/ingest/arcticshift"
	"subshift/internal/core/activity"
	"subshift/internal/modkit"
	"subshift/internal/modkit/repokit"
	perr "subshift/internal/platform/errors"
	"subshift/internal/platform/logger"
	"subshift/internal/platform/retry"
	"subshift/internal/platform/tabular"
	"subshift/internal/services/dumps/domain"
	"subshift/internal/services/dumps/repo"
)

// Config for the dump pipeline
type Config struct {
	Dir          string
	Source       string
	Target       string
	Out          string
	Batch        int
	IncludeRates bool
	// MaxAttempts bounds retries of a contended batch before it is bisected
	MaxAttempts int
}

// OpenFunc opens one dump file
type OpenFunc func(path string, kind arcticshift.Kind, community string) (*arcticshift.Reader, error)

// Service implements domain.RunnerPort
type Service struct {
	db     repokit.TxRunner
	write  repokit.TxRunner
	binder repokit.Binder[repo.Storage]
	sink   modkit.TableSink
	retry  retry.Policy
	open   OpenFunc
	cfg    Config
}

// New constructs the dump service. Writes run with synchronous_commit off
// and no statement timeout; reads use db directly.
func New(db repokit.TxRunner, binder repokit.Binder[repo.Storage], sink modkit.TableSink, policy retry.Policy, cfg Config) *Service {
	if db == nil || binder == nil || sink == nil {
		panic("dumps service: nil db, binder or sink")
	}
	if cfg.Batch <= 0 || cfg.Batch > repo.MaxBatch {
		cfg.Batch = 1000
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	write := repokit.WithBeginHooks(db,
		repokit.SetLocal("synchronous_commit", "off"),
		repokit.SetLocal("statement_timeout", "0"),
	)
	return &Service{db: db, write: write, binder: binder, sink: sink, retry: policy, open: arcticshift.Open, cfg: cfg}
}

func (s *Service) communities() []string { return []string{s.cfg.Source, s.cfg.Target} }

// Ingest reads every posts and comments dump of the source and target
// communities. A missing dump file is logged and skipped.
func (s *Service) Ingest(ctx context.Context) (domain.IngestSummary, error) {
	log := logger.C(ctx).With().Str("component", "dumps").Logger()
	var sum domain.IngestSummary

	if err := repokit.MustBind(s.binder, s.db).EnsureSchema(ctx); err != nil {
		return sum, err
	}
	for _, community := range s.communities() {
		for _, kind := range []arcticshift.Kind{arcticshift.Posts, arcticshift.Comments} {
			path, err := arcticshift.DumpPath(s.cfg.Dir, community, kind)
			if err != nil {
				log.Warn().Err(err).Str("community", community).Str("kind", string(kind)).Msg("dump missing, skipping")
				continue
			}
			if err := s.ingestFile(ctx, path, kind, community, &sum); err != nil {
				return sum, err
			}
			sum.Files++
		}
	}
	sum.Deduped = sum.Read - sum.Inserted
	tally, err := repokit.MustBind(s.binder, s.db).Tally(ctx)
	if err != nil {
		return sum, err
	}
	sum.Stored = tally.Total
	for c, n := range tally.ByCommunity {
		log.Debug().Str("community", c).Int64("stored", n).Msg("community rows")
	}
	log.Info().Int("files", sum.Files).Int("read", sum.Read).Int("inserted", sum.Inserted).
		Int("deduped", sum.Deduped).Int("skipped", sum.Skipped).Int("malformed", sum.Malformed).
		Int64("stored", sum.Stored).Msg("ingest done")
	return sum, nil
}

func (s *Service) ingestFile(ctx context.Context, path string, kind arcticshift.Kind, community string, sum *domain.IngestSummary) (err error) {
	rd, err := s.open(path, kind, community)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := rd.Close(); cerr != nil && err == nil {
			err = perr.Wrapf(cerr, perr.ErrorCodeIO, "close %s", path)
		}
	}()

	log := logger.C(ctx).With().Str("component", "dumps").Str("path", path).Logger()
	batch := make([]activity.Item, 0, s.cfg.Batch)
	flush := func() error {
		n, err := s.insertBatchRobust(ctx, batch)
		sum.Inserted += n
		batch = batch[:0]
		return err
	}
	for {
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return err
		}
		batch = append(batch, rec.Item())
		sum.Read++
		if len(batch) == s.cfg.Batch {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := flush(); err != nil {
				return err
			}
			if sum.Read%(s.cfg.Batch*50) == 0 {
				log.Info().Int("read", sum.Read).Int("inserted", sum.Inserted).Msg("ingest progress")
			}
		}
	}
	if len(batch) > 0 {
		if err := flush(); err != nil {
			return err
		}
	}
	_, skipped, malformed := rd.Stats()
	sum.Skipped += skipped
	sum.Malformed += malformed
	log.Debug().Int("skipped", skipped).Int("malformed", malformed).Msg("dump file done")
	return nil
}

func (s *Service) insertOnce(ctx context.Context, batch []activity.Item) (int, error) {
	var n int
	err := repokit.WithTx(ctx, s.write, func(q repokit.Queryer) error {
		var err error
		n, err = repokit.MustBind(s.binder, q).InsertItems(ctx, batch)
		return err
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

// insertBatchRobust retries contended batches, then splits a batch that keeps failing
func (s *Service) insertBatchRobust(ctx context.Context, batch []activity.Item) (int, error) {
	var last error
	for attempt := range s.cfg.MaxAttempts {
		n, err := s.insertOnce(ctx, batch)
		if err == nil {
			return n, nil
		}
		last = err
		if !perr.IsRetryable(err) || attempt == s.cfg.MaxAttempts-1 {
			break
		}
		if err := s.sleep(ctx, s.retry.Backoff(attempt)); err != nil {
			return 0, err
		}
	}
	if !perr.IsRetryable(last) || len(batch) == 1 {
		return 0, last
	}
	mid := len(batch) / 2
	left, err := s.insertBatchRobust(ctx, batch[:mid])
	if err != nil {
		return left, err
	}
	right, err := s.insertBatchRobust(ctx, batch[mid:])
	return left + right, err
}

func (s *Service) sleep(ctx context.Context, d time.Duration) error {
	if s.retry.Sleep != nil {
		return s.retry.Sleep(ctx, d)
	}
	return retry.SleepCtx(ctx, d)
}

// eachUser streams stored items grouped by author, split into source and
// target lists. Items arrive ordered by author so only one user is held at a time.
func (s *Service) eachUser(ctx context.Context, fn func(user string, source, target []activity.Item) error) error {
	var (
		cur            string
		source, target []activity.Item
		started        bool
	)
	emit := func() error {
		if !started {
			return nil
		}
		return fn(cur, source, target)
	}
	err := repokit.MustBind(s.binder, s.db).Stream(ctx, s.communities(), func(it activity.Item) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !started || it.Author != cur {
			if err := emit(); err != nil {
				return err
			}
			cur, source, target, started = it.Author, nil, nil, true
		}
		switch {
		case it.InCommunity(s.cfg.Source):
			source = append(source, it)
		case it.InCommunity(s.cfg.Target):
			target = append(target, it)
		}
		return nil
	})
	if err != nil {
		return err
	}
	return emit()
}

// RollupColumns returns the rollup header for a source and target community
func RollupColumns(source, target string) []string {
	src, tgt := strings.ToLower(source), strings.ToLower(target)
	return []string{
		"user",
		"count_" + tgt, "count_" + src,
		"first_" + tgt, "first_" + src,
		"flag",
		tgt + "_bins", src + "_bins",
	}
}

// Rollup writes one row per user found in either community
func (s *Service) Rollup(ctx context.Context) (domain.Summary, error) {
	table := tabular.New(RollupColumns(s.cfg.Source, s.cfg.Target)...)
	var sum domain.Summary
	err := s.eachUser(ctx, func(user string, source, target []activity.Item) error {
		r := activity.RollupOf(user, source, target)
		flag := 0
		if r.SourceFirst {
			flag = 1
			sum.Transitioned++
		}
		table.Append(r.UserID, r.TargetCount, r.SourceCount, r.FirstTarget, r.FirstSource, flag, r.TargetBins, r.SourceBins)
		sum.Users++
		return nil
	})
	sum.Rows = table.Len()
	return s.finish(ctx, "rollup", table, sum, err)
}

// Correlate splits each source user's stored items around their first
// stored target item, in the same table layout as the live correlator
func (s *Service) Correlate(ctx context.Context) (domain.Summary, error) {
	table := tabular.New(activity.TransitionColumns(s.cfg.IncludeRates)...)
	var sum domain.Summary
	err := s.eachUser(ctx, func(user string, source, target []activity.Item) error {
		sum.Users++
		if len(source) == 0 {
			return nil
		}
		tr := activity.Correlate(user, activity.Record{UserID: user, Items: source}, target)
		var rates *activity.Rates
		if s.cfg.IncludeRates {
			r := activity.RatesOf(tr, target)
			rates = &r
		}
		table.Append(tr.Row(rates)...)
		if tr.Transitioned() {
			sum.Transitioned++
		}
		return nil
	})
	sum.Rows = table.Len()
	return s.finish(ctx, "correlate", table, sum, err)
}

// finish writes the table even after a cancelled stream; other stream errors are fatal
func (s *Service) finish(ctx context.Context, op string, table *tabular.Table, sum domain.Summary, runErr error) (domain.Summary, error) {
	log := logger.C(ctx).With().Str("component", "dumps").Str("op", op).Logger()
	if runErr != nil && ctx.Err() == nil {
		return sum, runErr
	}
	path, err := s.sink.Write(ctx, table, s.cfg.Out)
	if err != nil {
		return sum, err
	}
	sum.Path = path
	log.Info().Int("users", sum.Users).Int("rows", sum.Rows).Int("transitioned", sum.Transitioned).Str("path", path).Msg("dumps report done")
	return sum, runErr
}
