package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"
)

// ICC is the two-way random effects, absolute agreement, single rater
// intraclass correlation, reported the way pingouin reports its ICC2 row
type ICC struct {
	Value float64
	F     float64
	DF1   int
	DF2   int
	P     float64
	// CI95 is the 95% confidence interval; NaN bounds when undefined
	CI95 [2]float64
	// N targets by K raters
	N, K int
}

// ICC2 computes ICC(2,1) over a complete targets x raters matrix.
// Every row must hold at least two ratings and the same count.
func ICC2(ratings [][]float64) (ICC, error) {
	n := len(ratings)
	if n < 2 {
		return ICC{}, fmt.Errorf("stats: icc needs at least 2 targets, got %d", n)
	}
	k := len(ratings[0])
	if k < 2 {
		return ICC{}, fmt.Errorf("stats: icc needs at least 2 raters, got %d", k)
	}
	for i, row := range ratings {
		if len(row) != k {
			return ICC{}, fmt.Errorf("stats: row %d has %d ratings, want %d", i, len(row), k)
		}
		for _, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return ICC{}, fmt.Errorf("stats: row %d has a non-finite rating", i)
			}
		}
	}

	nf, kf := float64(n), float64(k)
	var grand float64
	rowMean := make([]float64, n)
	colMean := make([]float64, k)
	for i, row := range ratings {
		for j, v := range row {
			grand += v
			rowMean[i] += v
			colMean[j] += v
		}
	}
	grand /= nf * kf
	for i := range rowMean {
		rowMean[i] /= kf
	}
	for j := range colMean {
		colMean[j] /= nf
	}

	var ssr, ssc, sst float64
	for _, m := range rowMean {
		ssr += (m - grand) * (m - grand)
	}
	ssr *= kf
	for _, m := range colMean {
		ssc += (m - grand) * (m - grand)
	}
	ssc *= nf
	for _, row := range ratings {
		for _, v := range row {
			sst += (v - grand) * (v - grand)
		}
	}
	sse := sst - ssr - ssc

	df1 := n - 1
	df2 := (n - 1) * (k - 1)
	msr := ssr / float64(df1)
	msc := ssc / (kf - 1)
	mse := sse / float64(df2)

	out := ICC{N: n, K: k, DF1: df1, DF2: df2, CI95: [2]float64{math.NaN(), math.NaN()}}
	den := msr + (kf-1)*mse + kf*(msc-mse)/nf
	if den == 0 {
		return out, fmt.Errorf("stats: icc undefined, ratings have no variance")
	}
	out.Value = (msr - mse) / den

	if mse <= 0 {
		// perfect agreement: the F ratio diverges
		out.F = math.Inf(1)
		out.P = 0
		return out, nil
	}
	out.F = msr / mse
	out.P = distuv.F{D1: float64(df1), D2: float64(df2)}.Survival(out.F)
	out.CI95 = icc2Interval(out.Value, msr, msc, mse, nf, kf, 0.05)
	return out, nil
}

// icc2Interval is the Satterthwaite-style interval for ICC(2,1)
func icc2Interval(icc, msr, msc, mse, n, k, alpha float64) [2]float64 {
	fc := msc / mse
	a := k*icc*fc + n*(1+(k-1)*icc) - k*icc
	vn := (k - 1) * (n - 1) * a * a
	b := n*(1+(k-1)*icc) - k*icc
	vd := (n-1)*k*k*icc*icc*fc*fc + b*b
	if vd == 0 {
		return [2]float64{math.NaN(), math.NaN()}
	}
	v := vn / vd
	if !(v > 0) {
		return [2]float64{math.NaN(), math.NaN()}
	}
	q := 1 - alpha/2
	f2u := distuv.F{D1: n - 1, D2: v}.Quantile(q)
	f2l := distuv.F{D1: v, D2: n - 1}.Quantile(q)

	mix := k*msc + (k*n-k-n)*mse
	lb := n * (msr - f2u*mse) / (f2u*mix + n*msr)
	ub := n * (f2l*msr - mse) / (mix + n*f2l*msr)
	return [2]float64{lb, ub}
}
