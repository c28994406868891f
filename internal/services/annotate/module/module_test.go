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

type echo struct{}

func (echo) Complete(context.Context, string, string) (string, error) {
	return "Depression/Sadness: 2\nEmotional Well-being: 1", nil
}

func TestNew_WithCompleterOverride(t *testing.T) {
	in := kit.WriteFile(t, "c.csv", "Text\nnothing matters\n")
	t.Setenv("CORE_ANNOTATE_IN", in)
	t.Setenv("CORE_ANNOTATE_OUT", t.TempDir()+"/scored.csv")
	t.Setenv("CORE_ANNOTATE_RUBRIC", "depression")

	m, err := New(modkit.Deps{Cfg: config.New()}, modkit.WithOverride(echo{}))
	require.NoError(t, err)
	require.Equal(t, "annotate", m.Name())

	sum, err := m.Ports().(Ports).Annotator.Annotate(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, sum.Scored)
}

func TestNew_MissingKeyWithoutOverride(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := New(modkit.Deps{Cfg: config.New()})
	require.True(t, perr.IsCode(err, perr.ErrorCodeUnauthorized))
}

func TestNew_UnknownRubric(t *testing.T) {
	t.Setenv("CORE_ANNOTATE_RUBRIC", "poetry")
	_, err := New(modkit.Deps{Cfg: config.New()}, modkit.WithOverride(echo{}))
	require.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestFromConfig_Defaults(t *testing.T) {
	o := FromConfig(config.New())
	require.Equal(t, "Text", o.Column)
	require.Equal(t, "humor-binary", o.Rubric)
	require.Zero(t, o.Head)
}
