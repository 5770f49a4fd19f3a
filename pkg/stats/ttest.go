package stats

import "math"

// EffectSize is a standardized mean difference with its interpretation.
type EffectSize struct {
	D              float64 `json:"d"`
	Interpretation string  `json:"interpretation"`
}

// CohenD returns the pooled-standard-deviation effect size between two
// groups. Below 2 samples per group the result is {0, "insufficient_data"};
// a pooled standard deviation of 0 yields {0, "no_variance"}.
func CohenD(g1, g2 []float64) EffectSize {
	if len(g1) < 2 || len(g2) < 2 {
		return EffectSize{D: 0, Interpretation: "insufficient_data"}
	}
	n1 := float64(len(g1))
	n2 := float64(len(g2))
	v1 := variance(g1)
	v2 := variance(g2)
	pooled := math.Sqrt(((n1-1)*v1 + (n2-1)*v2) / (n1 + n2 - 2))
	if pooled == 0 {
		return EffectSize{D: 0, Interpretation: "no_variance"}
	}
	d := (Average(g2) - Average(g1)) / pooled
	return EffectSize{D: d, Interpretation: interpretEffect(math.Abs(d))}
}

func interpretEffect(absD float64) string {
	switch {
	case absD < 0.2:
		return "negligible"
	case absD < 0.5:
		return "small"
	case absD < 0.8:
		return "medium"
	default:
		return "large"
	}
}

// TTestResult holds a Welch two-sample t-test outcome.
type TTestResult struct {
	T             float64 `json:"t"`
	DF            float64 `json:"df"`
	MeanDiff      float64 `json:"meanDiff"`
	IsSignificant bool    `json:"isSignificant"`
	Direction     string  `json:"direction"` // increase, decrease, no_change
	Warning       string  `json:"warning,omitempty"`
}

// TwoSampleTTest runs Welch's t-test of g2 against g1 with
// Welch-Satterthwaite degrees of freedom. Significance compares |t| against
// a df-bucketed critical-value table rather than computing an exact
// p-value; that coarse gate is all the downstream confidence logic needs.
// Only the two-sided 0.05 level is supported: the critical-value table is
// the 95% set, so any other alpha sets Warning and is evaluated at 0.05.
// Degenerate input (under 2 samples per group, zero standard error) sets
// Warning and reports not significant.
func TwoSampleTTest(g1, g2 []float64, alpha float64) TTestResult {
	result := TTestResult{Direction: "no_change"}
	if alpha != 0 && alpha != 0.05 {
		result.Warning = "only the 0.05 significance level is supported; evaluating at 0.05"
	}
	if len(g1) < 2 || len(g2) < 2 {
		result.Warning = "sample size below 2; test not run"
		return result
	}
	n1 := float64(len(g1))
	n2 := float64(len(g2))
	m1 := Average(g1)
	m2 := Average(g2)
	v1 := variance(g1)
	v2 := variance(g2)

	se := math.Sqrt(v1/n1 + v2/n2)
	result.MeanDiff = m2 - m1
	if se == 0 {
		result.Warning = "zero standard error; no variance in either group"
		return result
	}
	result.T = result.MeanDiff / se

	// Welch-Satterthwaite degrees of freedom.
	num := math.Pow(v1/n1+v2/n2, 2)
	den := math.Pow(v1/n1, 2)/(n1-1) + math.Pow(v2/n2, 2)/(n2-1)
	if den == 0 {
		result.Warning = "degenerate degrees of freedom"
		return result
	}
	result.DF = num / den

	result.IsSignificant = math.Abs(result.T) > tCritical(result.DF)
	if result.IsSignificant {
		if result.MeanDiff > 0 {
			result.Direction = "increase"
		} else {
			result.Direction = "decrease"
		}
	}
	return result
}

// tCritical returns the two-sided 95% critical value for the given degrees
// of freedom, bucketed coarsely.
func tCritical(df float64) float64 {
	switch {
	case df >= 30:
		return 1.96
	case df >= 20:
		return 2.086
	case df >= 10:
		return 2.228
	case df >= 5:
		return 2.571
	default:
		return 3.182
	}
}
