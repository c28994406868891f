package module

import (
	"context"
	"iter"
	"testing"
	"time"

	"subshift/internal/core/activity"
	"subshift/internal/modkit"
	"subshift/internal/platform/config"
	perr "subshift/internal/platform/errors"
	kit "subshift/internal/platform/testkit"
	"subshift/internal/services/history/domain"

	"github.com/stretchr/testify/require"
)

type stubHistory struct{}

func (stubHistory) UserHistory(context.Context, string, string, int) iter.Seq2[activity.Item, error] {
	return func(func(activity.Item, error) bool) {}
}

func TestNew_WiresExporter(t *testing.T) {
	in := kit.WriteFile(t, "u.csv", "username\nalice\n")
	t.Setenv("CORE_HISTORY_IN", in)
	t.Setenv("CORE_HISTORY_OUT", t.TempDir()+"/out.csv")

	m, err := New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts(domain.Ports{History: stubHistory{}}))
	require.NoError(t, err)
	require.Equal(t, "history", m.Name())

	sum, err := m.Ports().(Ports).Exporter.Export(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sum.Users)
	require.Zero(t, sum.Rows)
}

func TestNew_PanicsWithoutHistory(t *testing.T) {
	kit.MustPanic(t, func() { _, _ = New(modkit.Deps{Cfg: config.New()}) })
}

func TestNew_RejectsNegativeDelay(t *testing.T) {
	t.Setenv("CORE_HISTORY_USER_DELAY", "-2s")
	_, err := New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts(domain.Ports{History: stubHistory{}}))
	require.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
}

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	require.Equal(t, time.Second, o.UserDelay)
	require.Equal(t, "user_history.csv", o.Out)
}
