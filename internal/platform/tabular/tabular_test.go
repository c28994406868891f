package tabular

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	perr "subshift/internal/platform/errors"

	"github.com/stretchr/testify/require"
)

func sampleTable() *Table {
	join := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	t := New("user_id", "target_join_time", "pre_transition_count", "pre_transition_texts")
	t.Append("alice", &join, 2, []string{"first", "second, with comma"})
	t.Append("bob", (*time.Time)(nil), 0, []string(nil))
	return t
}

func TestFormatCell(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 0, time.FixedZone("x", 3600))
	n := 4
	cases := []struct {
		in   any
		want string
	}{
		{nil, ""},
		{"hi", "hi"},
		{3, "3"},
		{int64(9), "9"},
		{0.25, "0.25"},
		{true, "true"},
		{ts, "2024-01-02T02:04:05Z"},
		{&ts, "2024-01-02T02:04:05Z"},
		{(*time.Time)(nil), ""},
		{&n, "4"},
		{(*int)(nil), ""},
		{[]string{"a", "b"}, `["a","b"]`},
		{[]string(nil), `[]`},
	}
	for _, c := range cases {
		if got := FormatCell(c.in); got != c.want {
			t.Fatalf("FormatCell(%#v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestTableHelpers(t *testing.T) {
	tb := sampleTable()
	require.Equal(t, 2, tb.Len())
	require.Equal(t, 0, tb.Index("USER_ID"))
	require.Equal(t, -1, tb.Index("missing"))

	ids, ok := tb.Column("user_id")
	require.True(t, ok)
	require.Equal(t, []string{"alice", "bob"}, ids)
	require.Equal(t, "", tb.String(5, 0))

	tb.Append("carol")
	require.Len(t, tb.Rows[2], 4)

	wide := tb.WithColumns([]string{"flag"}, func(row int) []any { return []any{row == 0} })
	require.Equal(t, "flag", wide.Header[4])
	require.Equal(t, "true", wide.String(0, 4))
	require.Equal(t, "false", wide.String(2, 4))

	only := tb.Filter(func(row int) bool { return row != 1 })
	require.Equal(t, 2, only.Len())
	require.Equal(t, "carol", only.String(1, 0))
}

func TestParseHelpers(t *testing.T) {
	for _, s := range []string{"2024-05-01T12:00:00Z", "2024-05-01 12:00:00", "1714564800"} {
		got, ok := ParseTime(s)
		require.True(t, ok, s)
		require.Equal(t, time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), got, s)
	}
	_, ok := ParseTime("")
	require.False(t, ok)

	texts, err := ParseTexts(`["a","b"]`)
	require.NoError(t, err)
	require.Equal(t, []string{"a", "b"}, texts)
	texts, err = ParseTexts("")
	require.NoError(t, err)
	require.Nil(t, texts)
	_, err = ParseTexts("not json")
	require.Error(t, err)
}

func TestSink_XLSXRoundTrip(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "out", "transitions.xlsx")
	got, err := NewSink().Write(context.Background(), sampleTable(), p)
	require.NoError(t, err)
	require.Equal(t, p, got)

	back, err := Read(p)
	require.NoError(t, err)
	require.Equal(t, sampleTable().Header, back.Header)
	require.Equal(t, "alice", back.String(0, 0))
	require.Equal(t, "2024-05-01T12:00:00Z", back.String(0, 1))
	require.Equal(t, "2", back.String(0, 2))
	texts, err := ParseTexts(back.String(0, 3))
	require.NoError(t, err)
	require.Equal(t, []string{"first", "second, with comma"}, texts)
	require.Equal(t, "", back.String(1, 1))
}

func TestSink_FallsBackToCSV(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "transitions.xlsx")
	s := &Sink{
		Primary:  WriterFunc(func(string, *Table) error { return errors.New("disk says no") }),
		Fallback: CSV{},
	}
	got, err := s.Write(context.Background(), sampleTable(), p)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "transitions.csv"), got)

	_, statErr := os.Stat(p)
	require.True(t, os.IsNotExist(statErr))

	back, err := Read(got)
	require.NoError(t, err)
	require.Equal(t, 2, back.Len())
	require.Equal(t, `["first","second, with comma"]`, back.String(0, 3))
	require.Equal(t, "[]", back.String(1, 3))
}

func TestSink_OversizedCellTriggersFallback(t *testing.T) {
	dir := t.TempDir()
	tb := New("user_id", "pre_transition_texts")
	tb.Append("alice", []string{strings.Repeat("x", 40000)})

	got, err := NewSink().Write(context.Background(), tb, filepath.Join(dir, "big.xlsx"))
	require.NoError(t, err)
	require.Equal(t, filepath.Join(dir, "big.csv"), got)

	_, statErr := os.Stat(filepath.Join(dir, "big.xlsx"))
	require.True(t, os.IsNotExist(statErr))

	back, err := Read(got)
	require.NoError(t, err)
	require.Equal(t, `["`+strings.Repeat("x", 40000)+`"]`, back.String(0, 1))
}

func TestXLSX_RejectsOversizedCell(t *testing.T) {
	p := filepath.Join(t.TempDir(), "big.xlsx")
	tb := New("user_id", "note")
	tb.Append("alice", strings.Repeat("x", 32768))

	err := XLSX{}.Write(p, tb)
	require.Error(t, err)
	require.Contains(t, err.Error(), "B2")

	tb = New("user_id", "note")
	tb.Append("alice", strings.Repeat("x", 32767))
	require.NoError(t, XLSX{}.Write(p, tb))
}

func TestSink_BothFail(t *testing.T) {
	fail := WriterFunc(func(string, *Table) error { return errors.New("nope") })
	s := &Sink{Primary: fail, Fallback: fail}
	_, err := s.Write(context.Background(), sampleTable(), filepath.Join(t.TempDir(), "x.xlsx"))
	require.Error(t, err)
	require.True(t, perr.IsCode(err, perr.ErrorCodeIO))
}

func TestSink_CSVPrimary(t *testing.T) {
	p := filepath.Join(t.TempDir(), "labels.csv")
	calls := 0
	s := &Sink{
		Primary: WriterFunc(func(string, *Table) error { calls++; return nil }),
		Fallback: CSV{},
	}
	got, err := s.Write(context.Background(), sampleTable(), p)
	require.NoError(t, err)
	require.Equal(t, p, got)
	require.Zero(t, calls)
}

func TestRead_Unsupported(t *testing.T) {
	_, err := Read("data.parquet")
	require.True(t, perr.IsCode(err, perr.ErrorCodeInvalidArgument))
}

func TestFallbackPath(t *testing.T) {
	require.Equal(t, "a/b/out.csv", FallbackPath("a/b/out.xlsx"))
	require.Equal(t, "out.csv", FallbackPath("out"))
}
