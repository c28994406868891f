package activity

import (
	"sort"
	"time"
)

// MonthlyBins counts items per calendar month (UTC), keyed "YYYY-MM"
func MonthlyBins(items []Item) map[string]int {
	bins := make(map[string]int, len(items))
	for _, it := range items {
		bins[it.CreatedAt.UTC().Format("2006-01")]++
	}
	return bins
}

// SortedMonths returns the bin keys in calendar order
func SortedMonths(bins map[string]int) []string {
	keys := make([]string, 0, len(bins))
	for k := range bins {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Rollup summarises one user's activity in a source and a target community
type Rollup struct {
	UserID      string
	SourceCount int
	TargetCount int
	FirstSource *time.Time
	FirstTarget *time.Time

	// SourceFirst is set when the user was active in the source community
	// strictly before their first target item
	SourceFirst bool

	SourceBins map[string]int
	TargetBins map[string]int
}

// RollupOf builds the per-user summary from raw community items
func RollupOf(user string, source, target []Item) Rollup {
	r := Rollup{
		UserID:      user,
		SourceCount: len(source),
		TargetCount: len(target),
		SourceBins:  MonthlyBins(source),
		TargetBins:  MonthlyBins(target),
	}
	if first, _, ok := Span(source); ok {
		r.FirstSource = &first
	}
	if first, _, ok := Span(target); ok {
		r.FirstTarget = &first
	}
	r.SourceFirst = r.FirstSource != nil && r.FirstTarget != nil && r.FirstSource.Before(*r.FirstTarget)
	return r
}
