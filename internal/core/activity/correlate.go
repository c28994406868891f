package activity

import "time"

// Transition is the per-user output of Correlate. Nil target times mean the
// user never appeared in the target community.
type Transition struct {
	UserID         string
	SourceJoinTime *time.Time
	TargetJoinTime *time.Time
	PreCount       int
	PostCount      int
	PreTexts       []string
	PostTexts      []string
	TargetCount    int
	TargetTexts    []string

	pre, post []Item
}

// Transitioned reports whether a target join time was found
func (t Transition) Transitioned() bool { return t.TargetJoinTime != nil }

// Correlate splits source activity around the user's first target item.
//
// Items created strictly before the target join time are "pre"; the join
// instant itself and everything later are "post". With no target history every
// source item is pre. Target activity preceding all source activity is still
// reported as a transition.
func Correlate(userID string, source Record, target []Item) Transition {
	src := append([]Item(nil), source.Items...)
	SortItems(src)

	res := Transition{
		UserID:         userID,
		SourceJoinTime: source.JoinTime,
	}

	tgt := append([]Item(nil), target...)
	SortItems(tgt)
	if len(tgt) == 0 {
		res.pre = src
		res.PreCount = len(src)
		res.PreTexts = Texts(src)
		res.PostTexts = []string{}
		res.TargetTexts = []string{}
		return res
	}

	join := tgt[0].CreatedAt
	res.TargetJoinTime = &join
	res.TargetCount = len(tgt)
	res.TargetTexts = Texts(tgt)

	for _, it := range src {
		if it.CreatedAt.Before(join) {
			res.pre = append(res.pre, it)
		} else {
			res.post = append(res.post, it)
		}
	}
	res.PreCount, res.PostCount = len(res.pre), len(res.post)
	res.PreTexts, res.PostTexts = Texts(res.pre), Texts(res.post)
	return res
}

// SourceThenTarget reports whether the target join does not precede the
// user's earliest source item. Used as a downstream filter only.
func (t Transition) SourceThenTarget() bool {
	if t.TargetJoinTime == nil {
		return false
	}
	first, _, ok := Span(append(append([]Item(nil), t.pre...), t.post...))
	if !ok {
		return true
	}
	return !t.TargetJoinTime.Before(first)
}
