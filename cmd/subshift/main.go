// Command subshift scrapes community activity and correlates users who move
// from one community to another, plus the annotation and statistics passes
// that run over the resulting tables
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"subshift/internal/modkit"
	"subshift/internal/modkit/module"
	"subshift/internal/platform/config"
	"subshift/internal/platform/logger"
	"subshift/internal/platform/store"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:           "subshift",
	Short:         "Cross-community activity correlation for Reddit users",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.LoadDotEnv(envFiles...); err != nil {
			return err
		}
		runID := uuid.NewString()
		cmd.SetContext(logger.WithRun(cmd.Context(), runID, cmd.CommandPath()))
		logger.C(cmd.Context()).Debug().Msg("run started")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		logger.C(cmd.Context()).Debug().Strs("modules", module.Names()).Msg("run finished")
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", []string{".env"}, "dotenv files read before the environment (existing vars win)")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

// surface copies explicitly passed flags into prefix+env so module options
// read them through FromConfig; untouched flags leave the environment alone
func surface(cmd *cobra.Command, prefix string, envByFlag map[string]string) {
	cmd.Flags().Visit(func(f *pflag.Flag) {
		env, ok := envByFlag[f.Name]
		if !ok {
			return
		}
		val := f.Value.String()
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			val = strings.Join(sv.GetSlice(), ",")
		}
		mustSetEnv(prefix+env, val)
	})
}

// baseDeps are the shared deps every module is built from
func baseDeps() modkit.Deps {
	return modkit.Deps{Log: *logger.Get(), Cfg: config.New()}
}

// openStore connects the dump store; the caller closes it
func openStore(ctx context.Context) (*store.Store, error) {
	pg := store.PGFromConfig(config.New())
	if !pg.Enabled {
		return nil, fmt.Errorf("SERVICE_PGSQL_DBURL is not set")
	}
	st, err := store.Open(ctx, store.Config{AppName: "subshift", PG: pg}, store.WithLogger(*logger.Named("store")))
	if err != nil {
		return nil, err
	}
	if err := st.Guard(ctx); err != nil {
		_ = st.Close()
		return nil, err
	}
	return st, nil
}
