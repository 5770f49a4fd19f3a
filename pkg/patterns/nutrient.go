package patterns

import (
	"fmt"

	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/stats"
	"github.com/mealwise/insight/pkg/thresholds"
)

// minNutrientDays is the availability floor for the nutrient-timing
// detector.
const minNutrientDays = 3

// postWorkoutWindowMin is how long after a training start a meal still
// counts as post-workout fueling.
const postWorkoutWindowMin = 120

// NutrientTiming scores when protein, carbs and fat are taken across the
// day: protein front-loaded, carbs around training, fat kept out of the
// evening.
type NutrientTiming struct{}

// ID implements Detector.
func (NutrientTiming) ID() string { return IDNutrientTiming }

// Detect implements Detector.
func (NutrientTiming) Detect(in Input) Result {
	var morningProtein, eveningProtein, eveningFatPct, postWorkoutCarbs []float64
	trainedDays := 0

	for _, day := range in.History {
		var mp, ep, dayFat, eveFat float64
		timedMeals := 0
		for _, meal := range day.Meals {
			t, ok := record.ParseClock(meal.Time)
			if !ok {
				continue
			}
			timedMeals++
			m := in.Products.MealMacros(meal)
			if t < 12*60 {
				mp += m.Protein
			}
			if t >= 18*60 {
				ep += m.Protein
				eveFat += m.Fat()
			}
			dayFat += m.Fat()
		}
		if timedMeals == 0 {
			continue
		}
		morningProtein = append(morningProtein, mp)
		eveningProtein = append(eveningProtein, ep)
		if dayFat > 0 {
			eveningFatPct = append(eveningFatPct, eveFat/dayFat*100)
		}

		if carbs, trained := postWorkoutCarbsForDay(day, in.Products); trained {
			trainedDays++
			postWorkoutCarbs = append(postWorkoutCarbs, carbs)
		}
	}

	if len(morningProtein) < minNutrientDays {
		return unavailable(IDNutrientTiming,
			fmt.Sprintf("Nutrient-timing analysis needs %d days with timed meals; found %d.", minNutrientDays, len(morningProtein)))
	}

	avgMorningProtein := stats.Average(morningProtein)
	avgEveningProtein := stats.Average(eveningProtein)
	avgEveningFatPct := stats.Average(eveningFatPct)
	avgPostWorkoutCarbs := stats.Average(postWorkoutCarbs)

	proteinTarget := in.Thresholds.Value(thresholds.MorningProteinG, 25)
	proteinFloor := in.Thresholds.Value(thresholds.MorningProteinLowG, 15)
	carbsTarget := in.Thresholds.Value(thresholds.PostWorkoutCarbsG, 40)
	fatCeiling := in.Thresholds.Value(thresholds.EveningFatMaxPct, 35)

	// Additive scoring from a base of 50, capped at 100.
	score := 50.0
	var wins, gaps []string
	switch {
	case avgMorningProtein >= proteinTarget:
		score += 10
		wins = append(wins, "morning protein on target")
	case avgMorningProtein >= proteinFloor:
		score += 5
		gaps = append(gaps, fmt.Sprintf("morning protein %.0fg of %.0fg", avgMorningProtein, proteinTarget))
	default:
		gaps = append(gaps, fmt.Sprintf("morning protein only %.0fg", avgMorningProtein))
	}
	if trainedDays > 0 && avgPostWorkoutCarbs >= carbsTarget {
		score += 15
		wins = append(wins, "post-workout carbs covered")
	} else if trainedDays > 0 {
		gaps = append(gaps, fmt.Sprintf("post-workout carbs %.0fg of %.0fg", avgPostWorkoutCarbs, carbsTarget))
	}
	if len(eveningFatPct) > 0 && avgEveningFatPct <= fatCeiling {
		score += 10
		wins = append(wins, "evening fat kept low")
	} else if len(eveningFatPct) > 0 {
		gaps = append(gaps, fmt.Sprintf("%.0f%% of fat eaten in the evening", avgEveningFatPct))
	}
	if avgEveningProtein > 0 && avgMorningProtein >= avgEveningProtein*0.8 {
		score += 10
		wins = append(wins, "protein balanced across the day")
	}
	score = stats.Clamp(score, 0, 100)

	insight := "Nutrient timing looks solid"
	if len(wins) > 0 {
		insight = "Working: " + joinList(wins)
	}
	if len(gaps) > 0 {
		insight += ". Next: " + joinList(gaps)
	}
	insight += "."

	return Result{
		Pattern:    IDNutrientTiming,
		Available:  true,
		Score:      score,
		Confidence: sampleConfidence(len(morningProtein)),
		Insight:    insight,
		Metrics: map[string]float64{
			"avgMorningProteinG":  avgMorningProtein,
			"avgEveningProteinG":  avgEveningProtein,
			"avgEveningFatPct":    avgEveningFatPct,
			"avgPostWorkoutCarbs": avgPostWorkoutCarbs,
			"trainedDays":         float64(trainedDays),
			"qualifyingDays":      float64(len(morningProtein)),
		},
	}
}

// postWorkoutCarbsForDay sums carbs eaten within the post-workout window
// after any training with a usable start time. trained is false when the
// day has no timed training, keeping untrained days out of the average.
func postWorkoutCarbsForDay(day record.DailyRecord, products record.ProductIndex) (carbs float64, trained bool) {
	var starts []int
	for _, tr := range day.Trainings {
		if t, ok := record.ParseClock(tr.Time); ok {
			starts = append(starts, t)
		}
	}
	if len(starts) == 0 {
		return 0, false
	}
	for _, meal := range day.Meals {
		t, ok := record.ParseClock(meal.Time)
		if !ok {
			continue
		}
		for _, start := range starts {
			if t >= start && t <= start+postWorkoutWindowMin {
				carbs += products.MealMacros(meal).Carbs()
				break
			}
		}
	}
	return carbs, true
}

func joinList(items []string) string {
	out := ""
	for i, s := range items {
		if i > 0 {
			out += ", "
		}
		out += s
	}
	return out
}
