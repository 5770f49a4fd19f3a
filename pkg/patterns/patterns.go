// Package patterns implements the behavioral pattern detectors: meal
// timing, insulin-wave overlap, late eating, circadian distribution, and
// nutrient timing. Every detector is a pure function of its input and
// degrades to Available=false instead of failing on thin or malformed data.
package patterns

import (
	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/thresholds"
)

// Detector ids. The registry below is the closed set; there is no runtime
// string dispatch.
const (
	IDMealTiming     = "meal_timing"
	IDWaveOverlap    = "wave_overlap"
	IDLateEating     = "late_eating"
	IDCircadian      = "circadian"
	IDNutrientTiming = "nutrient_timing"
)

// Input is the read-only bundle every detector consumes.
type Input struct {
	History    []record.DailyRecord
	Profile    record.Profile
	Products   record.ProductIndex
	Thresholds thresholds.Set
}

// Result is one detector's outcome. When Available is false no other field
// is load-bearing: Score and Metrics must not be read.
type Result struct {
	Pattern    string             `json:"pattern"`
	Available  bool               `json:"available"`
	Score      float64            `json:"score"`      // 0-100 when Available
	Confidence float64            `json:"confidence"` // 0-1, from sample size
	Insight    string             `json:"insight"`
	Metrics    map[string]float64 `json:"metrics,omitempty"`
}

// unavailable builds the canonical insufficient-data result.
func unavailable(id, insight string) Result {
	return Result{Pattern: id, Available: false, Insight: insight}
}

// Detector is one pattern analyzer. Implementations are enumerated in
// Registry; hosts may also run one directly.
type Detector interface {
	ID() string
	Detect(in Input) Result
}

// Registry returns the full detector set in a stable order. The slice is
// freshly allocated so callers can filter it without affecting others.
func Registry() []Detector {
	return []Detector{
		MealTiming{},
		WaveOverlap{},
		LateEating{},
		Circadian{},
		NutrientTiming{},
	}
}

// RunAll executes every registered detector and returns one result per id,
// in registry order.
func RunAll(in Input) []Result {
	detectors := Registry()
	results := make([]Result, 0, len(detectors))
	for _, d := range detectors {
		results = append(results, d.Detect(in))
	}
	return results
}

// sampleConfidence is the shared sample-size confidence rule: 0.8 with a
// week or more of qualifying days, 0.5 below that. Detector confidence
// reflects data volume, not statistical significance.
func sampleConfidence(qualifyingDays int) float64 {
	if qualifyingDays >= 7 {
		return 0.8
	}
	return 0.5
}
