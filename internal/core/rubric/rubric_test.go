package rubric

import (
	"strings"
	"testing"

	perr "subshift/internal/platform/errors"
	kit "subshift/internal/platform/testkit"

	"github.com/stretchr/testify/require"
)

func TestBuiltins(t *testing.T) {
	all, err := Builtins()
	require.NoError(t, err)
	require.Equal(t, []string{"depression", "humor-binary", "humor-scale"}, Names())

	dep := all["depression"]
	require.Equal(t, [2]string{"Depression/Sadness", "Emotional Well-being"}, dep.Labels)
	require.Equal(t, [2]string{"depression_score", "emotional_well_being_score"}, dep.Columns)
	require.Equal(t, 0, dep.Min)
	require.Equal(t, 3, dep.Max)

	require.Equal(t, 1, all["humor-binary"].Max)
	require.Equal(t, 5, all["humor-scale"].Max)
	require.Equal(t, [2]string{"Humor_intent", "Commenter's Amusement"}, all["humor-binary"].Columns)
}

func TestPrompt(t *testing.T) {
	r, err := Resolve("depression", "")
	require.NoError(t, err)
	p := r.Prompt("I can't sleep again")
	require.Contains(t, p, `Comment: "I can't sleep again"`)
	require.NotContains(t, p, Placeholder)
	require.True(t, strings.HasSuffix(strings.TrimSpace(p), "Emotional Well-being: [number between 0 and 3]"))
}

func TestResolve_UnknownAndFile(t *testing.T) {
	_, err := Resolve("poetry", "")
	require.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))

	p := kit.WriteFile(t, "custom.yaml", `
name: anxiety
system: rate anxiety
template: "Comment: {comment}"
labels: ["Anxiety", "Stress"]
columns: ["anxiety", "stress"]
min: 1
max: 4
`)
	r, err := Resolve("depression", p)
	require.NoError(t, err)
	require.Equal(t, "anxiety", r.Name)
	require.Equal(t, 4, r.Max)
}

func TestDecode_Rejects(t *testing.T) {
	cases := map[string]string{
		"min not below max": `{name: x, system: s, template: "{comment}", labels: [a, b], columns: [c, d], min: 3, max: 3}`,
		"no placeholder":    `{name: x, system: s, template: "nothing", labels: [a, b], columns: [c, d], min: 0, max: 1}`,
		"blank label":       `{name: x, system: s, template: "{comment}", labels: [a, " "], columns: [c, d], min: 0, max: 1}`,
		"same labels":       `{name: x, system: s, template: "{comment}", labels: [a, A], columns: [c, d], min: 0, max: 1}`,
		"three labels":      `{name: x, system: s, template: "{comment}", labels: [a, b, c], columns: [c, d], min: 0, max: 1}`,
		"unknown key":       `{name: x, system: s, template: "{comment}", labels: [a, b], columns: [c, d], min: 0, max: 1, temp: 2}`,
		"negative min":      `{name: x, system: s, template: "{comment}", labels: [a, b], columns: [c, d], min: -1, max: 1}`,
		"missing name":      `{system: s, template: "{comment}", labels: [a, b], columns: [c, d], min: 0, max: 1}`,
	}
	for name, doc := range cases {
		_, err := Decode(strings.NewReader(doc))
		require.Error(t, err, name)
		require.True(t, perr.IsCode(err, perr.ErrorCodeValidation), "%s: %v", name, err)
	}
}

func TestParse(t *testing.T) {
	r, err := Resolve("depression", "")
	require.NoError(t, err)

	ok := Parse(r, "Depression/Sadness: 2\nEmotional Well-being: 3")
	require.True(t, ok.OK)
	require.Equal(t, [2]int{2, 3}, ok.Scores)
	require.Empty(t, ok.Reason)

	tolerant := Parse(r, "\n  depression/sadness : 0 \r\n\nEmotional Well-being:1\n")
	require.True(t, tolerant.OK, tolerant.Reason)
	require.Equal(t, [2]int{0, 1}, tolerant.Scores)

	bad := map[string]string{
		"one line":      "Depression/Sadness: 2",
		"three lines":   "Depression/Sadness: 2\nEmotional Well-being: 3\nNote: fine",
		"swapped order": "Emotional Well-being: 3\nDepression/Sadness: 2",
		"no colon":      "Depression/Sadness 2\nEmotional Well-being: 3",
		"not integer":   "Depression/Sadness: two\nEmotional Well-being: 3",
		"bracketed":     "Depression/Sadness: [2]\nEmotional Well-being: 3",
		"out of scale":  "Depression/Sadness: 4\nEmotional Well-being: 3",
		"below scale":   "Depression/Sadness: -1\nEmotional Well-being: 3",
		"prose":         "I'm sorry, I can't rate this comment.",
		"empty":         "",
	}
	for name, reply := range bad {
		res := Parse(r, reply)
		require.False(t, res.OK, name)
		require.NotEmpty(t, res.Reason, name)
		require.Equal(t, [2]int{}, res.Scores, name)
	}
}

func TestParse_BinaryScale(t *testing.T) {
	r, err := Resolve("humor-binary", "")
	require.NoError(t, err)
	require.True(t, Parse(r, "Humor Intent: 1\nCommenter's Amusement: 0").OK)
	require.False(t, Parse(r, "Humor Intent: 2\nCommenter's Amusement: 0").OK)
}
