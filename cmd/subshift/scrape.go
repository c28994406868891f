package main

import (
	"subshift/internal/modkit"
	"subshift/internal/modkit/module"
	"subshift/internal/platform/logger"

	correlatedom "subshift/internal/services/correlate/domain"
	correlatemod "subshift/internal/services/correlate/module"
	historydom "subshift/internal/services/history/domain"
	historymod "subshift/internal/services/history/module"
	scrapemod "subshift/internal/services/scrape/module"

	"github.com/spf13/cobra"
)

var correlateFlags = map[string]string{
	"source":             "SOURCE",
	"target":             "TARGET",
	"limit":              "LIMIT",
	"target-cap":         "TARGET_CAP",
	"user-delay":         "USER_DELAY",
	"out":                "OUT",
	"source-history":     "SOURCE_HISTORY",
	"include-rates":      "INCLUDE_RATES",
	"source-then-target": "SOURCE_THEN_TARGET",
	"targets":            "TARGETS",
	"membership-cap":     "MEMBERSHIP_CAP",
	"membership-out":     "MEMBERSHIP_OUT",
	"membership-delay":   "MEMBERSHIP_DELAY",
}

// correlateRunner wires scrape into correlate and registers both
func correlateRunner() (correlatedom.RunnerPort, error) {
	deps := baseDeps()
	sm, err := scrapemod.New(deps)
	if err != nil {
		return nil, err
	}
	sp := sm.Ports().(scrapemod.Ports)
	cm, err := correlatemod.New(deps, modkit.WithPorts(correlatedom.Ports{
		Indexer: sp.Indexer,
		History: sp.History,
	}))
	if err != nil {
		return nil, err
	}
	module.Register(sm, cm)
	return module.MustPortsOf[correlatedom.RunnerPort](cm), nil
}

func addCorrelateFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("source", "", "community whose newest items seed the user index")
	f.String("target", "", "community whose history is compared against the source")
	f.Int("limit", 0, "newest submissions to index from the source")
	f.Int("target-cap", 0, "max history items scanned per user across comments and submissions (0 = unbounded)")
	f.Duration("user-delay", 0, "pause between users")
	f.String("out", "", "output table (.xlsx, falls back to .csv)")
	f.Bool("source-history", false, "replace indexed source items with the user's full source history")
	f.Bool("include-rates", false, "append per-day activity rates")
	f.Bool("source-then-target", false, "keep only users who were active in the source before the target")
	f.StringSlice("targets", nil, "communities checked by membership")
	f.Int("membership-cap", 0, "max history items scanned per user by membership")
	f.String("membership-out", "", "membership output table")
	f.Duration("membership-delay", 0, "pause between users in membership")
}

func init() {
	correlate := &cobra.Command{
		Use:   "correlate",
		Short: "Split each source user's activity around their first target activity",
		RunE: func(cmd *cobra.Command, _ []string) error {
			surface(cmd, "CORE_CORRELATE_", correlateFlags)
			r, err := correlateRunner()
			if err != nil {
				return err
			}
			sum, err := r.Run(cmd.Context())
			logger.C(cmd.Context()).Info().
				Int("users", sum.Users).Int("rows", sum.Rows).
				Int("transitioned", sum.Transitioned).Int("skipped", sum.Skipped).
				Str("path", sum.Path).Msg("correlate done")
			return err
		},
	}
	addCorrelateFlags(correlate)

	membership := &cobra.Command{
		Use:   "membership",
		Short: "List which target communities each indexed user is active in",
		RunE: func(cmd *cobra.Command, _ []string) error {
			surface(cmd, "CORE_CORRELATE_", correlateFlags)
			r, err := correlateRunner()
			if err != nil {
				return err
			}
			sum, err := r.Membership(cmd.Context())
			logger.C(cmd.Context()).Info().
				Int("users", sum.Users).Int("rows", sum.Rows).Int("skipped", sum.Skipped).
				Str("path", sum.Path).Msg("membership done")
			return err
		},
	}
	addCorrelateFlags(membership)

	history := &cobra.Command{
		Use:   "history",
		Short: "Export the full history of every username in a table",
		RunE: func(cmd *cobra.Command, _ []string) error {
			surface(cmd, "CORE_HISTORY_", map[string]string{"in": "IN", "out": "OUT", "user-delay": "USER_DELAY"})
			deps := baseDeps()
			sm, err := scrapemod.New(deps)
			if err != nil {
				return err
			}
			hm, err := historymod.New(deps, modkit.WithPorts(historydom.Ports{
				History: sm.Ports().(scrapemod.Ports).History,
			}))
			if err != nil {
				return err
			}
			module.Register(sm, hm)

			sum, err := module.MustPortsOf[historydom.ExporterPort](hm).Export(cmd.Context())
			logger.C(cmd.Context()).Info().
				Int("users", sum.Users).Int("failed", sum.Failed).Int("rows", sum.Rows).
				Str("path", sum.Path).Msg("history done")
			return err
		},
	}
	history.Flags().String("in", "", "table whose first column holds usernames")
	history.Flags().String("out", "", "output table")
	history.Flags().Duration("user-delay", 0, "pause between users")

	rootCmd.AddCommand(correlate, membership, history)
}
