package patterns

import (
	"fmt"

	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/stats"
	"github.com/mealwise/insight/pkg/thresholds"
)

// LateEating scores the share of meals taken at or after the adaptive
// late-eating hour.
type LateEating struct{}

// ID implements Detector.
func (LateEating) ID() string { return IDLateEating }

// Detect implements Detector.
func (LateEating) Detect(in Input) Result {
	lateHour := in.Thresholds.Value(thresholds.LateEatingHour, 21)
	// Adapted thresholds carry fractional hours (e.g. 17.9 after an
	// insulin-resistant multiplier), so compare in minutes.
	lateMin := lateHour * 60

	totalMeals := 0
	lateCount := 0
	daysWithMeals := 0
	for _, day := range in.History {
		dayMeals := 0
		for _, meal := range day.Meals {
			t, ok := record.ParseClock(meal.Time)
			if !ok {
				continue
			}
			dayMeals++
			if float64(t) >= lateMin {
				lateCount++
			}
		}
		if dayMeals > 0 {
			daysWithMeals++
			totalMeals += dayMeals
		}
	}
	if totalMeals == 0 {
		return unavailable(IDLateEating, "No timed meals logged yet; late-eating analysis needs meal times.")
	}

	latePct := float64(lateCount) / float64(totalMeals) * 100
	score := stats.Clamp(100-latePct*2, 0, 100)

	var insight string
	switch {
	case lateCount == 0:
		insight = fmt.Sprintf("Nothing eaten after %s. Your evenings are clear.", record.FormatClock(int(lateMin)))
	case latePct >= 30:
		insight = fmt.Sprintf("%.0f%% of meals land after %s. Late calories are the fastest lever on this score.", latePct, record.FormatClock(int(lateMin)))
	default:
		insight = fmt.Sprintf("%d of %d meals came after %s. Occasional, but worth watching.", lateCount, totalMeals, record.FormatClock(int(lateMin)))
	}

	return Result{
		Pattern:    IDLateEating,
		Available:  true,
		Score:      score,
		Confidence: sampleConfidence(daysWithMeals),
		Insight:    insight,
		Metrics: map[string]float64{
			"lateCount":  float64(lateCount),
			"totalMeals": float64(totalMeals),
			"latePct":    latePct,
			"lateHour":   lateHour,
		},
	}
}
