// Package histogram renders a colored terminal view of when calories land
// across the day, with the late-eating window and wave overlaps marked.
package histogram

import (
	"fmt"
	"strings"

	"github.com/fatih/color"

	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/thresholds"
)

// maxBarWidth keeps a heavy bucket from wrapping the terminal.
const maxBarWidth = 40

// Render builds the half-hour intake histogram for a history. Each bucket
// line shows average kcal across days, an L marker inside the (adapted)
// late-eating window, and a ! marker where meals landed inside the
// previous meal's insulin wave.
func Render(history []record.DailyRecord, products record.ProductIndex,
	profile record.Profile, th thresholds.Set,
) string {
	var out strings.Builder
	out.WriteString("🍽  Intake Pattern (30-minute resolution)\n")
	out.WriteString(strings.Repeat("─", 50) + "\n")

	if len(history) == 0 {
		return out.String() + "No history to render\n"
	}

	kcalBuckets, overlapBuckets := bucketize(history, products, profile)
	days := float64(len(history))

	maxKcal := 0.0
	for _, k := range kcalBuckets {
		if k > maxKcal {
			maxKcal = k
		}
	}
	if maxKcal == 0 {
		return out.String() + "No resolvable meals to render\n"
	}

	lateFrom := th.Value(thresholds.LateEatingHour, 21) * 60

	blue := color.New(color.FgBlue)
	red := color.New(color.FgRed)
	grey := color.New(color.FgHiBlack)

	for bucket := 0; bucket < 48; bucket++ {
		minute := bucket * 30
		avgKcal := kcalBuckets[bucket] / days

		marker := "  "
		switch {
		case overlapBuckets[bucket] > 0:
			marker = red.Sprint("!") + " "
		case float64(minute) >= lateFrom:
			marker = blue.Sprint("L") + " "
		}

		line := fmt.Sprintf("%s %s", record.FormatClock(minute), marker)
		if avgKcal >= 1 {
			line += fmt.Sprintf("(%4.0f) ", avgKcal)
			barLen := int(kcalBuckets[bucket] / maxKcal * maxBarWidth)
			switch {
			case barLen < 1:
				line += grey.Sprint("·")
			case overlapBuckets[bucket] > 0:
				line += red.Sprint(strings.Repeat("█", barLen))
			default:
				line += grey.Sprint(strings.Repeat("█", barLen))
			}
		}
		out.WriteString(line + "\n")
	}

	out.WriteString(strings.Repeat("─", 50) + "\n")
	out.WriteString(fmt.Sprintf("%s meals inside the insulin wave   %s after the late-eating hour\n",
		red.Sprint("!"), blue.Sprint("L")))
	return out.String()
}

// bucketize folds every day's meals into 48 half-hour buckets: summed kcal
// and a count of wave-overlapping meals per bucket. Malformed meal times
// are skipped.
func bucketize(history []record.DailyRecord, products record.ProductIndex,
	profile record.Profile,
) (kcal [48]float64, overlaps [48]int) {
	wave := int(profile.InsulinWaveHours * 60)
	if wave <= 0 {
		wave = 180
	}
	for _, day := range history {
		prev := -1
		for _, meal := range sortedMeals(day) {
			t, ok := record.ParseClock(meal.Time)
			if !ok {
				continue
			}
			bucket := t / 30
			if bucket < 0 || bucket > 47 {
				continue
			}
			kcal[bucket] += products.MealMacros(meal).Kcal
			if prev >= 0 && t-prev > 0 && t-prev < wave {
				overlaps[bucket]++
			}
			prev = t
		}
	}
	return kcal, overlaps
}

// sortedMeals returns the day's meals ordered by parseable time; meals
// without one sort last and are skipped by the caller anyway.
func sortedMeals(day record.DailyRecord) []record.Meal {
	meals := append([]record.Meal(nil), day.Meals...)
	for i := 1; i < len(meals); i++ {
		for j := i; j > 0; j-- {
			tj, okJ := record.ParseClock(meals[j].Time)
			tp, okP := record.ParseClock(meals[j-1].Time)
			if okJ && (!okP || tj < tp) {
				meals[j], meals[j-1] = meals[j-1], meals[j]
			} else {
				break
			}
		}
	}
	return meals
}
