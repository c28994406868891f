package main

import (
	"context"

	"subshift/internal/modkit/module"
	"subshift/internal/platform/logger"

	annotatedom "subshift/internal/services/annotate/domain"
	annotatemod "subshift/internal/services/annotate/module"
	statsdom "subshift/internal/services/textstats/domain"
	statsmod "subshift/internal/services/textstats/module"

	"github.com/spf13/cobra"
)

var statsFlags = map[string]string{
	"in":       "IN",
	"out":      "OUT",
	"column":   "COLUMN",
	"keywords": "KEYWORDS",
	"bins":     "BINS",
	"rater-a":  "RATER_A",
	"rater-b":  "RATER_B",
}

// statsCommand builds one post-processing subcommand over the textstats port
func statsCommand(use, short string, run func(statsdom.StatsPort, context.Context) (statsdom.Report, error)) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, _ []string) error {
			surface(cmd, "CORE_STATS_", statsFlags)
			m, err := statsmod.New(baseDeps())
			if err != nil {
				return err
			}
			module.Register(m)

			rep, err := run(module.MustPortsOf[statsdom.StatsPort](m), cmd.Context())
			ev := logger.C(cmd.Context()).Info().
				Int("rows", rep.Rows).Int("kept", rep.Kept).Int("dropped", rep.Dropped).
				Str("path", rep.Path)
			for _, p := range rep.Proportions {
				ev = ev.Float64(string(p.Class), p.Share)
			}
			if rep.ICC != nil {
				ev = ev.Float64("icc", rep.ICC.Value).Float64("pval", rep.ICC.P)
			}
			ev.Msg(use + " done")
			return err
		},
	}
	f := cmd.Flags()
	f.String("in", "", "input table")
	f.String("out", "", "output table")
	f.String("column", "", "text column")
	f.StringSlice("keywords", nil, "filter keywords")
	f.Int("bins", 0, "histogram bins")
	f.String("rater-a", "", "first rating column")
	f.String("rater-b", "", "second rating column")
	return cmd
}

func init() {
	annotate := &cobra.Command{
		Use:   "annotate",
		Short: "Score every comment of a table with an LLM rubric",
		RunE: func(cmd *cobra.Command, _ []string) error {
			surface(cmd, "CORE_ANNOTATE_", map[string]string{
				"in": "IN", "out": "OUT", "rubric": "RUBRIC", "rubric-file": "RUBRIC_FILE",
				"column": "COLUMN", "head": "HEAD",
			})
			m, err := annotatemod.New(baseDeps())
			if err != nil {
				return err
			}
			module.Register(m)

			sum, err := module.MustPortsOf[annotatedom.AnnotatorPort](m).Annotate(cmd.Context())
			logger.C(cmd.Context()).Info().
				Int("rows", sum.Rows).Int("scored", sum.Scored).Int("failed", sum.Failed).
				Str("path", sum.Path).Msg("annotate done")
			return err
		},
	}
	f := annotate.Flags()
	f.String("in", "", "input table")
	f.String("out", "", "output table")
	f.String("rubric", "", "built-in rubric: humor-binary, humor-scale or depression")
	f.String("rubric-file", "", "YAML rubric overriding --rubric")
	f.String("column", "", "text column")
	f.Int("head", 0, "score only the first N rows (0 = all)")

	rootCmd.AddCommand(
		annotate,
		statsCommand("filter", "Keep rows whose text mentions a keyword", statsdom.StatsPort.Filter),
		statsCommand("emotions", "Count positive and negative emotion words per row", statsdom.StatsPort.Emotions),
		statsCommand("sentiment", "Append neg, neu, pos and compound scores", statsdom.StatsPort.Sentiment),
		statsCommand("classify", "Label rows by compound score and report proportions", statsdom.StatsPort.Classify),
		statsCommand("histogram", "Bin the sentiment scores", statsdom.StatsPort.Histogram),
		statsCommand("reliability", "ICC(2,1) between two rating columns", statsdom.StatsPort.Reliability),
	)
}
