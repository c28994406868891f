package activity

import "time"

// Epsilon is the smallest window, in days, used as a rate denominator
const Epsilon = 1e-9

// Rates is activity per day in each bucket
type Rates struct {
	PrePerDay    float64
	PostPerDay   float64
	TargetPerDay float64
}

// Rate is count / max(days, Epsilon); a zero-length window yields zero
func Rate(count int, from, to time.Time) float64 {
	if count == 0 || !to.After(from) {
		return 0
	}
	days := to.Sub(from).Hours() / 24
	return float64(count) / max(days, Epsilon)
}

// RatesOf derives per-day rates from a Transition.
// The pre window runs from the earliest pre item to the target join (or to the
// latest item when the user never transitioned); the post window runs from the
// join to the latest post item; the target window spans the target history.
func RatesOf(t Transition, target []Item) Rates {
	var r Rates
	if first, last, ok := Span(t.pre); ok {
		end := last
		if t.TargetJoinTime != nil {
			end = *t.TargetJoinTime
		}
		r.PrePerDay = Rate(len(t.pre), first, end)
	}
	if t.TargetJoinTime != nil {
		if _, last, ok := Span(t.post); ok {
			r.PostPerDay = Rate(len(t.post), *t.TargetJoinTime, last)
		}
	}
	if first, last, ok := Span(target); ok {
		r.TargetPerDay = Rate(len(target), first, last)
	}
	return r
}
