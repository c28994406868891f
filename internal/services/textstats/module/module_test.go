package module

import (
	"context"
	"testing"

	"subshift/internal/modkit"
	"subshift/internal/platform/config"
	perr "subshift/internal/platform/errors"
	kit "subshift/internal/platform/testkit"

	"github.com/stretchr/testify/require"
)

func TestNew_FilterEndToEnd(t *testing.T) {
	in := kit.WriteFile(t, "final.csv", "Username,Text\nalice,so lonely lately\nbob,great game\n")
	t.Setenv("CORE_STATS_IN", in)
	t.Setenv("CORE_STATS_OUT", t.TempDir()+"/filtered.csv")

	m, err := New(modkit.Deps{Cfg: config.New()})
	require.NoError(t, err)
	require.Equal(t, "textstats", m.Name())

	rep, err := m.Ports().(Ports).Stats.Filter(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, rep.Kept)
}

func TestNew_RejectsSameRaters(t *testing.T) {
	t.Setenv("CORE_STATS_RATER_B", "depression_score")
	_, err := New(modkit.Deps{Cfg: config.New()})
	require.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
}

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	require.Equal(t, 20, o.Bins)
	require.Equal(t, "depression", o.Keywords)
}
