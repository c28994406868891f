package main

import (
	"context"

	"subshift/internal/modkit/module"
	"subshift/internal/platform/logger"

	dumpsdom "subshift/internal/services/dumps/domain"
	dumpsmod "subshift/internal/services/dumps/module"

	"github.com/spf13/cobra"
)

var dumpsFlags = map[string]string{
	"dir":           "DIR",
	"source":        "SOURCE",
	"target":        "TARGET",
	"out":           "OUT",
	"batch":         "BATCH",
	"include-rates": "INCLUDE_RATES",
}

// withDumps opens the store, builds the dumps module and hands its runner to fn
func withDumps(cmd *cobra.Command, fn func(context.Context, dumpsdom.RunnerPort) error) error {
	surface(cmd, "CORE_DUMPS_", dumpsFlags)
	ctx := cmd.Context()
	st, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.C(ctx).Error().Err(err).Msg("failed to close store")
		}
	}()

	deps := baseDeps()
	deps.PG = st.PG
	m, err := dumpsmod.New(deps)
	if err != nil {
		return err
	}
	module.Register(m)
	return fn(ctx, module.MustPortsOf[dumpsdom.RunnerPort](m))
}

func logSummary(ctx context.Context, msg string, sum dumpsdom.Summary) {
	logger.C(ctx).Info().
		Int("users", sum.Users).Int("rows", sum.Rows).Int("transitioned", sum.Transitioned).
		Str("path", sum.Path).Msg(msg)
}

func init() {
	dumps := &cobra.Command{
		Use:   "dumps",
		Short: "Offline pipeline over arcticshift community dumps",
	}
	f := dumps.PersistentFlags()
	f.String("dir", "", "directory holding r_<community>_<posts|comments>.jsonl[.gz|.zst]")
	f.String("source", "", "source community")
	f.String("target", "", "target community")
	f.String("out", "", "output table")
	f.Int("batch", 0, "rows per insert transaction")
	f.Bool("include-rates", false, "append per-day activity rates to correlate output")

	ingest := &cobra.Command{
		Use:   "ingest",
		Short: "Load the source and target dumps into Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDumps(cmd, func(ctx context.Context, r dumpsdom.RunnerPort) error {
				sum, err := r.Ingest(ctx)
				logger.C(ctx).Info().
					Int("files", sum.Files).Int("read", sum.Read).Int("inserted", sum.Inserted).
					Int("deduped", sum.Deduped).Int("skipped", sum.Skipped).Int("malformed", sum.Malformed).
					Msg("ingest done")
				return err
			})
		},
	}
	rollup := &cobra.Command{
		Use:   "rollup",
		Short: "Per-user counts, first timestamps and monthly bins",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDumps(cmd, func(ctx context.Context, r dumpsdom.RunnerPort) error {
				sum, err := r.Rollup(ctx)
				logSummary(ctx, "rollup done", sum)
				return err
			})
		},
	}
	correlate := &cobra.Command{
		Use:   "correlate",
		Short: "Transition split over stored dump items",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDumps(cmd, func(ctx context.Context, r dumpsdom.RunnerPort) error {
				sum, err := r.Correlate(ctx)
				logSummary(ctx, "dumps correlate done", sum)
				return err
			})
		},
	}
	dumps.AddCommand(ingest, rollup, correlate)
	rootCmd.AddCommand(dumps)
}
