// Package stats holds the small numeric routines the reports need: fixed-range
// histograms and the ICC(2,1) inter-rater reliability estimate
package stats

import (
	"fmt"
	"math"
)

// Bin is one half-open histogram bucket [Lo, Hi); the last bucket also holds Hi
type Bin struct {
	Lo, Hi float64
	Count  int
}

// Histogram buckets values into bins equal-width buckets over [lo, hi].
// NaN and out-of-range values are skipped and counted in dropped.
func Histogram(values []float64, lo, hi float64, bins int) (out []Bin, dropped int, err error) {
	if bins <= 0 {
		return nil, 0, fmt.Errorf("stats: bins must be positive, got %d", bins)
	}
	if !(hi > lo) {
		return nil, 0, fmt.Errorf("stats: empty range [%v, %v]", lo, hi)
	}
	width := (hi - lo) / float64(bins)
	out = make([]Bin, bins)
	for i := range out {
		out[i].Lo = lo + float64(i)*width
		out[i].Hi = lo + float64(i+1)*width
	}
	out[bins-1].Hi = hi

	for _, v := range values {
		if math.IsNaN(v) || v < lo || v > hi {
			dropped++
			continue
		}
		i := int((v - lo) / width)
		if i >= bins {
			i = bins - 1
		}
		out[i].Count++
	}
	return out, dropped, nil
}
