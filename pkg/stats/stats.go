// Package stats provides the pure numeric primitives the pattern detectors
// and the phenotype classifier are built on. Every function degrades to a
// neutral default on insufficient or degenerate input instead of returning
// an error or producing NaN/Inf.
package stats

import (
	"math"
	"sort"
)

// Average returns the arithmetic mean, or 0 for an empty slice.
func Average(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sum := 0.0
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// StdDev returns the population standard deviation, or 0 below 2 samples.
func StdDev(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Average(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(xs)))
}

// variance returns the sample variance (n-1 denominator), 0 below 2 samples.
func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := Average(xs)
	ss := 0.0
	for _, x := range xs {
		d := x - mean
		ss += d * d
	}
	return ss / float64(len(xs)-1)
}

// PearsonCorrelation returns the correlation coefficient of two equal-length
// series of at least 3 points, 0 otherwise or when either series has no
// variance. Output is always in [-1, 1].
func PearsonCorrelation(x, y []float64) float64 {
	if len(x) != len(y) || len(x) < 3 {
		return 0
	}
	meanX := Average(x)
	meanY := Average(y)
	var cov, varX, varY float64
	for i := range x {
		dx := x[i] - meanX
		dy := y[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	denom := math.Sqrt(varX * varY)
	if denom == 0 {
		return 0
	}
	return Clamp(cov/denom, -1, 1)
}

// LinearTrend returns the ordinary-least-squares slope of xs against its
// index, 0 below 2 points or when the index variance is 0.
func LinearTrend(xs []float64) float64 {
	n := len(xs)
	if n < 2 {
		return 0
	}
	var sumI, sumX, sumIX, sumII float64
	for i, x := range xs {
		fi := float64(i)
		sumI += fi
		sumX += x
		sumIX += fi * x
		sumII += fi * fi
	}
	fn := float64(n)
	denom := fn*sumII - sumI*sumI
	if denom == 0 {
		return 0
	}
	return (fn*sumIX - sumI*sumX) / denom
}

// R2 returns the coefficient of determination 1 - SSres/SStot, or 0 when
// the inputs are mismatched, shorter than 2 points, or SStot is 0.
func R2(actual, predicted []float64) float64 {
	if len(actual) != len(predicted) || len(actual) < 2 {
		return 0
	}
	mean := Average(actual)
	var ssRes, ssTot float64
	for i := range actual {
		dr := actual[i] - predicted[i]
		dt := actual[i] - mean
		ssRes += dr * dr
		ssTot += dt * dt
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

// Percentile returns the p-th percentile (0-100) using nearest-rank
// interpolation, 0 for an empty slice.
func Percentile(xs []float64, p float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	if p <= 0 {
		return sorted[0]
	}
	if p >= 100 {
		return sorted[len(sorted)-1]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lo := int(math.Floor(rank))
	hi := int(math.Ceil(rank))
	if lo == hi {
		return sorted[lo]
	}
	frac := rank - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// MovingAverage returns the trailing window mean at each index. Windows
// shorter than size at the head use what is available. Empty input returns
// an empty slice.
func MovingAverage(xs []float64, size int) []float64 {
	if len(xs) == 0 || size <= 0 {
		return nil
	}
	out := make([]float64, len(xs))
	sum := 0.0
	for i, x := range xs {
		sum += x
		if i >= size {
			sum -= xs[i-size]
			out[i] = sum / float64(size)
		} else {
			out[i] = sum / float64(i+1)
		}
	}
	return out
}

// EMA returns the exponential moving average with smoothing factor
// 2/(span+1). Empty input returns an empty slice.
func EMA(xs []float64, span int) []float64 {
	if len(xs) == 0 || span <= 0 {
		return nil
	}
	alpha := 2.0 / (float64(span) + 1.0)
	out := make([]float64, len(xs))
	out[0] = xs[0]
	for i := 1; i < len(xs); i++ {
		out[i] = alpha*xs[i] + (1-alpha)*out[i-1]
	}
	return out
}

// ConfidenceInterval holds a symmetric interval around the mean.
type ConfidenceInterval struct {
	Mean  float64 `json:"mean"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Level float64 `json:"level"`
}

// MeanConfidenceInterval returns a normal-approximation interval at level
// 0.95 or 0.99 (anything else falls back to 0.95). Below 2 samples the
// interval collapses to the mean.
func MeanConfidenceInterval(xs []float64, level float64) ConfidenceInterval {
	mean := Average(xs)
	ci := ConfidenceInterval{Mean: mean, Lower: mean, Upper: mean, Level: level}
	if len(xs) < 2 {
		return ci
	}
	z := 1.96
	if level == 0.99 {
		z = 2.576
	} else {
		ci.Level = 0.95
	}
	margin := z * StdDev(xs) / math.Sqrt(float64(len(xs)))
	ci.Lower = mean - margin
	ci.Upper = mean + margin
	return ci
}

// Clamp restricts v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Normalize maps v from [lo, hi] onto [0, 1], clamped; 0 when the range is
// degenerate.
func Normalize(v, lo, hi float64) float64 {
	if hi <= lo {
		return 0
	}
	return Clamp((v-lo)/(hi-lo), 0, 1)
}

// CheckMinN reports whether arr carries at least minN samples.
func CheckMinN(arr []float64, minN int) bool {
	return len(arr) >= minN
}

// ApplySmallSamplePenalty scales confidence down linearly when fewer than
// minN samples back it: confidence * n/minN. Zero or negative n zeroes the
// confidence; n >= minN leaves it untouched.
func ApplySmallSamplePenalty(confidence float64, n, minN int) float64 {
	if n <= 0 {
		return 0
	}
	if minN <= 0 || n >= minN {
		return confidence
	}
	return confidence * float64(n) / float64(minN)
}
