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
	"subshift/internal/services/correlate/domain"

	"github.com/stretchr/testify/require"
)

type stubIndexer struct{}

func (stubIndexer) BuildIndex(context.Context, string, int) (*activity.Index, error) {
	return activity.NewIndex(), nil
}

type stubHistory struct{}

func (stubHistory) UserHistory(context.Context, string, string, int) iter.Seq2[activity.Item, error] {
	return func(func(activity.Item, error) bool) {}
}

func ports() modkit.Option {
	return modkit.WithPorts(domain.Ports{Indexer: stubIndexer{}, History: stubHistory{}})
}

func TestNew_PanicsWithoutPorts(t *testing.T) {
	kit.MustPanic(t, func() { _, _ = New(modkit.Deps{Cfg: config.New()}) })
	kit.MustPanic(t, func() {
		_, _ = New(modkit.Deps{Cfg: config.New()}, modkit.WithPorts(domain.Ports{Indexer: stubIndexer{}}))
	})
}

func TestNew_WiresRunner(t *testing.T) {
	m, err := New(modkit.Deps{Cfg: config.New()}, ports())
	require.NoError(t, err)
	require.Equal(t, "correlate", m.Name())
	require.NotNil(t, m.Ports().(Ports).Runner)
}

func TestNew_RunsAgainstEmptyIndex(t *testing.T) {
	t.Setenv("CORE_CORRELATE_OUT", t.TempDir()+"/empty.csv")
	m, err := New(modkit.Deps{Cfg: config.New()}, ports())
	require.NoError(t, err)

	sum, err := m.Ports().(Ports).Runner.Run(context.Background())
	require.NoError(t, err)
	require.Zero(t, sum.Users)
	require.NotEmpty(t, sum.Path)
}

func TestNew_RejectsSameSourceAndTarget(t *testing.T) {
	t.Setenv("CORE_CORRELATE_SOURCE", "funny")
	_, err := New(modkit.Deps{Cfg: config.New()}, ports())
	require.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
	e, _ := perr.As(err)
	require.Equal(t, "TARGET", e.Field())
}

func TestNew_RejectsSameCommunityInOtherCase(t *testing.T) {
	t.Setenv("CORE_CORRELATE_SOURCE", "Funny")
	t.Setenv("CORE_CORRELATE_TARGET", "funny")
	_, err := New(modkit.Deps{Cfg: config.New()}, ports())
	require.True(t, perr.IsCode(err, perr.ErrorCodeValidation))
	e, _ := perr.As(err)
	require.Equal(t, "TARGET", e.Field())
}

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	require.Equal(t, "depression", o.Source)
	require.Equal(t, "funny", o.Target)
	require.Equal(t, 1000, o.Limit)
	require.Equal(t, 2*time.Second, o.UserDelay)
	require.Equal(t, []string{"depression", "mentalhealth", "depression_help"}, o.Targets)
	require.Equal(t, 100*time.Millisecond, o.MembershipWait)
	require.False(t, o.IncludeRates)
}

func TestFromConfig_Overrides(t *testing.T) {
	t.Setenv("CORE_CORRELATE_TARGETS", "anxiety, adhd")
	t.Setenv("CORE_CORRELATE_INCLUDE_RATES", "true")
	t.Setenv("CORE_CORRELATE_USER_DELAY", "0")
	o := FromConfig(config.New())
	require.Equal(t, []string{"anxiety", "adhd"}, o.Targets)
	require.True(t, o.IncludeRates)
	require.Zero(t, o.UserDelay)
}
