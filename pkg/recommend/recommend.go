// Package recommend turns the current-time context, the pattern results
// and the adapted thresholds into a concrete next-meal recommendation:
// a timing window, macro targets, and product suggestions.
package recommend

import (
	"fmt"
	"sort"

	"github.com/mealwise/insight/pkg/patterns"
	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/stats"
	"github.com/mealwise/insight/pkg/thresholds"
)

// MinHistoryDays is the recommendation floor. Below a week of history the
// recommender reports Available=false and nothing else.
const MinHistoryDays = 7

// Context is the moment the recommendation is for. Times are minutes since
// midnight; negative means unknown.
type Context struct {
	CurrentTime         int
	LastMealTime        int
	HasTrainingToday    bool
	TrainingTime        int
	SleepHoursLastNight float64
}

// Window is the suggested eating window, minutes since midnight.
type Window struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// MacroTargets is the suggested macro range for the next meal, grams.
type MacroTargets struct {
	ProteinG float64 `json:"proteinG"`
	CarbsG   float64 `json:"carbsG"`
	FatG     float64 `json:"fatG"`
	Kcal     float64 `json:"kcal"`
}

// Suggestion is one ranked product pick.
type Suggestion struct {
	ProductID string  `json:"productId"`
	Name      string  `json:"name,omitempty"`
	Grams     float64 `json:"grams"`
	Reason    string  `json:"reason"`
}

// Recommendation is the full recommender output.
type Recommendation struct {
	Available   bool         `json:"available"`
	Insight     string       `json:"insight,omitempty"`
	Window      Window       `json:"window,omitempty"`
	WindowFrom  string       `json:"windowFrom,omitempty"`
	WindowTo    string       `json:"windowTo,omitempty"`
	Targets     MacroTargets `json:"targets,omitempty"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
}

// Next derives the next-meal recommendation. th should be the adapted
// threshold set; passing the base set simply yields an unpersonalized
// recommendation.
func Next(ctx Context, history []record.DailyRecord, profile record.Profile,
	products record.ProductIndex, th thresholds.Set,
) Recommendation {
	if len(history) < MinHistoryDays {
		return Recommendation{
			Available: false,
			Insight:   fmt.Sprintf("Meal recommendations unlock after %d days of history.", MinHistoryDays),
		}
	}

	// The detectors are consumed as black boxes: a history of wave
	// overlaps pads the window start, chronic late eating tightens its
	// end.
	in := patterns.Input{History: history, Profile: profile, Products: products, Thresholds: th}
	overlap := patterns.WaveOverlap{}.Detect(in)
	late := patterns.LateEating{}.Detect(in)

	window := mealWindow(ctx, profile, th)
	if overlap.Available && overlap.Metrics["overlapCount"] > 0 {
		window.From += 15
	}
	if late.Available && late.Score < 60 && window.To-window.From > 45 {
		window.To -= 30
	}
	if window.From >= window.To {
		window.From = window.To - 30
	}
	targets := macroTargets(ctx, history, profile, products, th)
	suggestions := rankProducts(products, targets)

	insight := fmt.Sprintf("Next meal fits best between %s and %s.",
		record.FormatClock(window.From), record.FormatClock(window.To))
	if ctx.HasTrainingToday && ctx.TrainingTime >= 0 && ctx.TrainingTime <= window.To {
		insight += " Keep carbs close to the workout."
	}

	return Recommendation{
		Available:   true,
		Insight:     insight,
		Window:      window,
		WindowFrom:  record.FormatClock(window.From),
		WindowTo:    record.FormatClock(window.To),
		Targets:     targets,
		Suggestions: suggestions,
	}
}

// mealWindow opens at the end of the current insulin wave and closes
// before the adapted late-eating hour.
func mealWindow(ctx Context, profile record.Profile, th thresholds.Set) Window {
	wave := int(profile.InsulinWaveHours * 60)
	if wave <= 0 {
		wave = 180
	}
	from := ctx.CurrentTime
	if ctx.LastMealTime >= 0 {
		if waveEnd := ctx.LastMealTime + wave; waveEnd > from {
			from = waveEnd
		}
	}
	lateMin := int(th.Value(thresholds.LateEatingHour, 21) * 60)
	to := from + 90
	if to > lateMin {
		to = lateMin
	}
	if from >= to {
		// Already inside or past the late window; suggest the earliest
		// reasonable slot rather than an inverted range.
		from = to - 30
		if from < 0 {
			from = 0
		}
	}
	return Window{From: from, To: to}
}

// macroTargets splits the remaining daily targets over the meals left in
// the day. Targets come from the profile with bodyweight-based fallbacks.
func macroTargets(ctx Context, history []record.DailyRecord, profile record.Profile,
	products record.ProductIndex, th thresholds.Set,
) MacroTargets {
	proteinDay := profile.ProteinTargetG
	if proteinDay <= 0 && profile.Weight > 0 {
		proteinDay = profile.Weight * 1.6
	}
	if proteinDay <= 0 {
		proteinDay = 100
	}
	kcalDay := profile.KcalTarget
	if kcalDay <= 0 {
		kcalDay = avgDailyKcal(history, products)
	}
	if kcalDay <= 0 {
		kcalDay = 2000
	}
	carbsDay := profile.CarbsTargetG
	if carbsDay <= 0 {
		carbsDay = kcalDay * 0.4 / 4
	}
	fatDay := profile.FatTargetG
	if fatDay <= 0 {
		fatDay = kcalDay * 0.3 / 9
	}

	mealsLeft := mealsRemaining(ctx, th)
	targets := MacroTargets{
		ProteinG: proteinDay / float64(mealsLeft),
		CarbsG:   carbsDay / float64(mealsLeft),
		FatG:     fatDay / float64(mealsLeft),
		Kcal:     kcalDay / float64(mealsLeft),
	}
	if ctx.HasTrainingToday {
		// Bias the post-training meal toward carbs.
		targets.CarbsG *= 1.25
		targets.FatG *= 0.8
	}
	if ctx.SleepHoursLastNight > 0 && profile.SleepHours > 0 &&
		ctx.SleepHoursLastNight < profile.SleepHours-1 {
		// Short sleep amplifies cravings for simple carbs; lean on protein.
		targets.ProteinG *= 1.15
	}
	return targets
}

// mealsRemaining estimates how many meals are still ahead today, always at
// least 1.
func mealsRemaining(ctx Context, th thresholds.Set) int {
	lateMin := th.Value(thresholds.LateEatingHour, 21) * 60
	gap := th.Value(thresholds.IdealMealGapMin, 240)
	if gap <= 0 {
		gap = 240
	}
	left := int((lateMin - float64(ctx.CurrentTime)) / gap)
	if left < 1 {
		left = 1
	}
	maxMeals := int(th.Value(thresholds.MealsPerDayMax, 5))
	if maxMeals >= 1 && left > maxMeals {
		left = maxMeals
	}
	return left
}

// rankProducts orders products by how well 100g closes the largest macro
// gap, protein first. Only the top three picks are returned.
func rankProducts(products record.ProductIndex, targets MacroTargets) []Suggestion {
	type scored struct {
		id    string
		p     record.Product
		score float64
	}
	// Protein is the gap the recommender optimizes hardest; carbs and fat
	// density trade off against empty calories.
	var ranked []scored
	for id, p := range products {
		if p.Kcal100 <= 0 {
			continue
		}
		score := p.Protein100 * 4
		score += (p.CarbsComplex100 - p.CarbsSimple100) * 1.5
		score += p.FatGood100 - p.FatBad100*2
		ranked = append(ranked, scored{id: id, p: p, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].id < ranked[j].id // deterministic order on ties
	})

	var out []Suggestion
	for _, s := range ranked {
		if len(out) == 3 {
			break
		}
		grams := 100.0
		if s.p.Protein100 > 0 {
			grams = stats.Clamp(targets.ProteinG/s.p.Protein100*100, 50, 400)
		}
		out = append(out, Suggestion{
			ProductID: s.id,
			Name:      s.p.Name,
			Grams:     grams,
			Reason:    fmt.Sprintf("%.0fg protein per 100g closes today's biggest gap", s.p.Protein100),
		})
	}
	return out
}

func avgDailyKcal(history []record.DailyRecord, products record.ProductIndex) float64 {
	var kcal []float64
	for _, day := range history {
		if k := products.DayMacros(day).Kcal; k > 0 {
			kcal = append(kcal, k)
		}
	}
	return stats.Average(kcal)
}
