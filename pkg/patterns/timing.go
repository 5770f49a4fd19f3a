package patterns

import (
	"fmt"

	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/stats"
	"github.com/mealwise/insight/pkg/thresholds"
)

// defaultWaveMinutes is used when the profile carries no insulin-wave
// setting.
const defaultWaveMinutes = 180.0

// gapAnalysis is the shared meal-gap scan both the timing and the
// wave-overlap detectors are built on.
type gapAnalysis struct {
	gaps          []float64 // successive same-day gaps, minutes
	overlapPcts   []float64 // percent of the wave window cut short, per overlap
	waveMinutes   float64
	daysWithMeals int
}

// analyzeGaps walks each day's meals in time order and collects successive
// gaps. Meals with malformed times are skipped, not counted against the
// day. A gap shorter than the insulin-wave window is recorded as a wave
// overlap.
func analyzeGaps(in Input) gapAnalysis {
	wave := in.Profile.InsulinWaveHours * 60
	if wave <= 0 {
		wave = defaultWaveMinutes
	}
	ga := gapAnalysis{waveMinutes: wave}
	for _, day := range in.History {
		times := record.SortedMealTimes(day)
		if len(times) == 0 {
			continue
		}
		ga.daysWithMeals++
		for i := 1; i < len(times); i++ {
			gap := float64(times[i] - times[i-1])
			if gap <= 0 {
				// Duplicate timestamps carry no gap information.
				continue
			}
			ga.gaps = append(ga.gaps, gap)
			if gap < wave {
				ga.overlapPcts = append(ga.overlapPcts, (wave-gap)/wave*100)
			}
		}
	}
	return ga
}

// MealTiming scores how well meal spacing matches the ideal gap.
type MealTiming struct{}

// ID implements Detector.
func (MealTiming) ID() string { return IDMealTiming }

// Detect implements Detector.
//
// Known inconsistency, kept deliberately: the score is clamped at 100 on
// the high side, so a history with pathologically large gaps can report
// score 100 while the insight warns about sparse eating. The insight and
// the overlap metrics carry the actionable signal in that case.
func (MealTiming) Detect(in Input) Result {
	ga := analyzeGaps(in)
	if len(ga.gaps) == 0 {
		return unavailable(IDMealTiming, "Not enough multi-meal days to assess meal spacing yet.")
	}

	idealGap := in.Thresholds.Value(thresholds.IdealMealGapMin, ga.waveMinutes)
	if idealGap <= 0 {
		idealGap = ga.waveMinutes
	}
	avgGap := stats.Average(ga.gaps)
	score := stats.Clamp(avgGap/idealGap*100, 0, 100)

	var insight string
	switch {
	case avgGap < idealGap*0.7:
		insight = fmt.Sprintf("Meals come every %.0f min on average; your target gap is %.0f min. Eating this often keeps insulin elevated.", avgGap, idealGap)
	case avgGap > idealGap*1.3:
		insight = fmt.Sprintf("Average gap of %.0f min is well past your %.0f min target; long gaps invite oversized evening meals.", avgGap, idealGap)
	default:
		insight = fmt.Sprintf("Meal spacing averages %.0f min against a %.0f min target. Good timing.", avgGap, idealGap)
	}

	return Result{
		Pattern:    IDMealTiming,
		Available:  true,
		Score:      score,
		Confidence: sampleConfidence(ga.daysWithMeals),
		Insight:    insight,
		Metrics: map[string]float64{
			"avgGapMin":     avgGap,
			"idealGapMin":   idealGap,
			"gapCount":      float64(len(ga.gaps)),
			"overlapCount":  float64(len(ga.overlapPcts)),
			"avgOverlapPct": stats.Average(ga.overlapPcts),
		},
	}
}

// WaveOverlap scores how often a meal lands inside the previous meal's
// insulin wave.
type WaveOverlap struct{}

// ID implements Detector.
func (WaveOverlap) ID() string { return IDWaveOverlap }

// Detect implements Detector.
func (WaveOverlap) Detect(in Input) Result {
	ga := analyzeGaps(in)
	if len(ga.gaps) == 0 {
		return unavailable(IDWaveOverlap, "Not enough multi-meal days to assess insulin-wave overlaps yet.")
	}

	overlapCount := len(ga.overlapPcts)
	avgOverlapPct := stats.Average(ga.overlapPcts)
	score := 100.0
	if overlapCount > 0 {
		score = stats.Clamp(100-avgOverlapPct, 0, 100)
	}

	var insight string
	if overlapCount == 0 {
		insight = fmt.Sprintf("No meal landed inside the %.0f-minute insulin wave. Clean spacing.", ga.waveMinutes)
	} else {
		insight = fmt.Sprintf("%d meals cut into the previous insulin wave by %.0f%% on average. Pushing those meals later flattens the curve.", overlapCount, avgOverlapPct)
	}

	return Result{
		Pattern:    IDWaveOverlap,
		Available:  true,
		Score:      score,
		Confidence: sampleConfidence(ga.daysWithMeals),
		Insight:    insight,
		Metrics: map[string]float64{
			"overlapCount":  float64(overlapCount),
			"avgOverlapPct": avgOverlapPct,
			"waveMinutes":   ga.waveMinutes,
			"gapCount":      float64(len(ga.gaps)),
		},
	}
}
