package stats

import (
	"math"
	"testing"
)

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}

func TestAverageEmptyInput(t *testing.T) {
	if got := Average(nil); got != 0 {
		t.Errorf("Average(nil) = %v, want 0", got)
	}
	if got := Average([]float64{}); got != 0 {
		t.Errorf("Average([]) = %v, want 0", got)
	}
	if got := Average([]float64{2, 4, 6}); got != 4 {
		t.Errorf("Average([2,4,6]) = %v, want 4", got)
	}
}

func TestStdDevGuards(t *testing.T) {
	if got := StdDev([]float64{1}); got != 0 {
		t.Errorf("StdDev([1]) = %v, want 0 (below minimum length)", got)
	}
	// Population stddev of [2,4,4,4,5,5,7,9] is exactly 2.
	got := StdDev([]float64{2, 4, 4, 4, 5, 5, 7, 9})
	if !almostEqual(got, 2, 1e-9) {
		t.Errorf("StdDev = %v, want 2", got)
	}
}

func TestPearsonCorrelationGuards(t *testing.T) {
	if got := PearsonCorrelation([]float64{1, 2}, []float64{1, 2}); got != 0 {
		t.Errorf("length-2 input should return 0, got %v", got)
	}
	if got := PearsonCorrelation([]float64{1, 2, 3}, []float64{1, 2}); got != 0 {
		t.Errorf("mismatched lengths should return 0, got %v", got)
	}
	// Constant series has zero variance in the denominator.
	if got := PearsonCorrelation([]float64{5, 5, 5}, []float64{1, 2, 3}); got != 0 {
		t.Errorf("zero-variance input should return 0, got %v", got)
	}
}

func TestPearsonCorrelationValues(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{2, 4, 6, 8}
	if got := PearsonCorrelation(x, y); !almostEqual(got, 1, 1e-9) {
		t.Errorf("perfect positive correlation = %v, want 1", got)
	}
	inv := []float64{8, 6, 4, 2}
	if got := PearsonCorrelation(x, inv); !almostEqual(got, -1, 1e-9) {
		t.Errorf("perfect negative correlation = %v, want -1", got)
	}
}

func TestPearsonCorrelationSymmetry(t *testing.T) {
	x := []float64{3, 7, 1, 9, 4, 6}
	y := []float64{2, 8, 0, 7, 5, 5}
	if PearsonCorrelation(x, y) != PearsonCorrelation(y, x) {
		t.Error("PearsonCorrelation should be symmetric in its arguments")
	}
}

func TestLinearTrend(t *testing.T) {
	if got := LinearTrend([]float64{5}); got != 0 {
		t.Errorf("single point trend = %v, want 0", got)
	}
	if got := LinearTrend([]float64{1, 2, 3, 4}); !almostEqual(got, 1, 1e-9) {
		t.Errorf("slope of [1,2,3,4] = %v, want 1", got)
	}
	if got := LinearTrend([]float64{7, 7, 7}); !almostEqual(got, 0, 1e-9) {
		t.Errorf("flat series slope = %v, want 0", got)
	}
}

func TestR2(t *testing.T) {
	actual := []float64{1, 2, 3}
	if got := R2(actual, actual); !almostEqual(got, 1, 1e-9) {
		t.Errorf("perfect prediction R2 = %v, want 1", got)
	}
	if got := R2([]float64{4, 4, 4}, []float64{4, 4, 4}); got != 0 {
		t.Errorf("zero SStot should return 0, got %v", got)
	}
	if got := R2([]float64{1, 2}, []float64{1}); got != 0 {
		t.Errorf("mismatched input should return 0, got %v", got)
	}
}

func TestPercentile(t *testing.T) {
	xs := []float64{10, 20, 30, 40}
	if got := Percentile(nil, 50); got != 0 {
		t.Errorf("Percentile(nil) = %v, want 0", got)
	}
	if got := Percentile(xs, 0); got != 10 {
		t.Errorf("p0 = %v, want 10", got)
	}
	if got := Percentile(xs, 100); got != 40 {
		t.Errorf("p100 = %v, want 40", got)
	}
	if got := Percentile(xs, 50); !almostEqual(got, 25, 1e-9) {
		t.Errorf("p50 = %v, want 25", got)
	}
}

func TestEMA(t *testing.T) {
	got := EMA([]float64{10, 10, 10}, 3)
	for i, v := range got {
		if !almostEqual(v, 10, 1e-9) {
			t.Errorf("EMA of constant series at %d = %v, want 10", i, v)
		}
	}
	// Smoothing factor 2/(span+1) = 0.5 at span 3.
	got = EMA([]float64{0, 8}, 3)
	if !almostEqual(got[1], 4, 1e-9) {
		t.Errorf("EMA second value = %v, want 4", got[1])
	}
}

func TestMovingAverage(t *testing.T) {
	got := MovingAverage([]float64{1, 2, 3, 4}, 2)
	want := []float64{1, 1.5, 2.5, 3.5}
	for i := range want {
		if !almostEqual(got[i], want[i], 1e-9) {
			t.Errorf("MovingAverage[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMeanConfidenceInterval(t *testing.T) {
	ci := MeanConfidenceInterval([]float64{5}, 0.95)
	if ci.Lower != ci.Mean || ci.Upper != ci.Mean {
		t.Errorf("single-sample interval should collapse to the mean, got %+v", ci)
	}
	ci = MeanConfidenceInterval([]float64{4, 6, 4, 6, 4, 6}, 0.99)
	if ci.Lower >= ci.Mean || ci.Upper <= ci.Mean {
		t.Errorf("interval should bracket the mean, got %+v", ci)
	}
	if ci.Level != 0.99 {
		t.Errorf("level = %v, want 0.99", ci.Level)
	}
}

func TestCheckMinN(t *testing.T) {
	if CheckMinN([]float64{1, 2}, 3) {
		t.Error("CheckMinN([1,2], 3) should be false")
	}
	if !CheckMinN([]float64{1, 2, 3}, 3) {
		t.Error("CheckMinN([1,2,3], 3) should be true")
	}
}

func TestApplySmallSamplePenalty(t *testing.T) {
	got := ApplySmallSamplePenalty(0.8, 5, 7)
	if !almostEqual(got, 0.5714, 1e-4) {
		t.Errorf("penalty at n=5 = %v, want ~0.5714", got)
	}
	if got := ApplySmallSamplePenalty(0.8, 10, 7); got != 0.8 {
		t.Errorf("no penalty above minN, got %v", got)
	}
	if got := ApplySmallSamplePenalty(0.8, 0, 7); got != 0 {
		t.Errorf("zero samples should zero confidence, got %v", got)
	}
}

func TestClampAndNormalize(t *testing.T) {
	if got := Clamp(150, 0, 100); got != 100 {
		t.Errorf("Clamp(150) = %v, want 100", got)
	}
	if got := Clamp(-5, 0, 100); got != 0 {
		t.Errorf("Clamp(-5) = %v, want 0", got)
	}
	if got := Normalize(5, 0, 10); !almostEqual(got, 0.5, 1e-9) {
		t.Errorf("Normalize(5, 0, 10) = %v, want 0.5", got)
	}
	if got := Normalize(5, 10, 10); got != 0 {
		t.Errorf("degenerate range should return 0, got %v", got)
	}
}
