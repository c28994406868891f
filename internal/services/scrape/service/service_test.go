package service

import (
	"context"
	"iter"
	"testing"
	"time"

	"subshift/internal/core/activity"
	perr "subshift/internal/platform/errors"
	kit "subshift/internal/platform/testkit"

	"github.com/stretchr/testify/require"
)

type step struct {
	it  activity.Item
	err error
}

type fakeSource struct {
	steps    []step
	profiles map[string]*time.Time
	lookups  map[string]int
	cancel   func()
	cancelAt int
}

func (f *fakeSource) Recent(ctx context.Context, _ string, _ int) iter.Seq2[activity.Item, error] {
	return func(yield func(activity.Item, error) bool) {
		for i, s := range f.steps {
			if f.cancel != nil && i == f.cancelAt {
				f.cancel()
			}
			if !yield(s.it, s.err) {
				return
			}
		}
	}
}

func (f *fakeSource) ProfileCreatedAt(_ context.Context, user string) (*time.Time, error) {
	f.lookups[user]++
	if user == "ghost" {
		return nil, perr.Unavailablef("about %s: 503", user)
	}
	return f.profiles[user], nil
}

func at(sec int64) time.Time { return time.Unix(sec, 0).UTC() }

func post(author string, sec int64) step {
	return step{it: activity.Item{Author: author, Kind: activity.KindPost, CreatedAt: at(sec), Text: "p"}}
}

func comment(author string, sec int64) step {
	return step{it: activity.Item{Author: author, Kind: activity.KindComment, CreatedAt: at(sec), Text: "c"}}
}

func newFake(steps ...step) *fakeSource {
	joined := at(10)
	return &fakeSource{
		steps:    steps,
		profiles: map[string]*time.Time{"alice": &joined},
		lookups:  map[string]int{},
	}
}

func TestBuildIndex_GroupsAndCachesProfiles(t *testing.T) {
	src := newFake(
		post("alice", 100),
		comment("bob", 110),
		comment("alice", 120),
		step{err: perr.WithField(perr.Unavailablef("comments 503"), "t3_x")},
		post("bob", 130),
		comment("alice", 140),
	)
	var sl kit.Sleeps
	svc := New(src, Config{SubmissionDelay: time.Second, CommentDelay: time.Millisecond}, sl.Sleep)

	idx, err := svc.BuildIndex(context.Background(), "depression", 10)
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, idx.Users())

	alice, ok := idx.Get("alice")
	require.True(t, ok)
	require.Len(t, alice.Items, 3)
	require.NotNil(t, alice.JoinTime)
	require.Equal(t, at(10), *alice.JoinTime)

	bob, _ := idx.Get("bob")
	require.Len(t, bob.Items, 2)
	require.Nil(t, bob.JoinTime)

	require.Equal(t, map[string]int{"alice": 1, "bob": 1}, src.lookups, "one profile lookup per distinct user")

	want := []time.Duration{time.Second, time.Millisecond, time.Millisecond, time.Second, time.Millisecond}
	require.Equal(t, want, sl.All())
}

func TestBuildIndex_ProfileFailureLeavesJoinTimeNil(t *testing.T) {
	src := newFake(comment("ghost", 1), comment("ghost", 2))
	var sl kit.Sleeps
	idx, err := New(src, Config{}, sl.Sleep).BuildIndex(context.Background(), "funny", 0)
	require.NoError(t, err)
	rec, _ := idx.Get("ghost")
	require.Nil(t, rec.JoinTime)
	require.Len(t, rec.Items, 2)
	require.Equal(t, 1, src.lookups["ghost"])
}

func TestBuildIndex_DeletedAuthorsDropped(t *testing.T) {
	src := newFake(comment("[deleted]", 1), comment("", 2), post("alice", 3))
	var sl kit.Sleeps
	idx, err := New(src, Config{}, sl.Sleep).BuildIndex(context.Background(), "funny", 0)
	require.NoError(t, err)
	require.Equal(t, []string{"alice"}, idx.Users())
	require.Empty(t, src.lookups["[deleted]"])
}

func TestBuildIndex_CancelReturnsPartialIndex(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	src := newFake(post("alice", 1), post("bob", 2), post("carol", 3))
	src.cancel, src.cancelAt = cancel, 1

	var sl kit.Sleeps
	idx, err := New(src, Config{}, sl.Sleep).BuildIndex(ctx, "funny", 0)
	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, idx)
	require.LessOrEqual(t, idx.Len(), 2)
	require.Contains(t, idx.Users(), "alice")
}

func TestNew_PanicsOnMissingDeps(t *testing.T) {
	var sl kit.Sleeps
	kit.MustPanic(t, func() { New(nil, Config{}, sl.Sleep) })
	kit.MustPanic(t, func() { New(newFake(), Config{}, nil) })
}
