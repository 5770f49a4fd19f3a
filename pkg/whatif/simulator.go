// Package whatif projects how a hypothetical behavior change would move
// the pattern scores and an aggregate health score. The simulation is a
// pure diff pipeline: snapshot the unmodified history, apply the action's
// effect model to a copy, snapshot again, and compare.
package whatif

import (
	"fmt"
	"math"
	"sort"

	"github.com/mealwise/insight/pkg/patterns"
	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/stats"
	"github.com/mealwise/insight/pkg/thresholds"
)

// Action types.
const (
	ActionAddProtein    = "add_protein"
	ActionIncreaseSleep = "increase_sleep"
	ActionIncreaseSteps = "increase_steps"
	ActionShiftLastMeal = "shift_last_meal"
)

// Action parameter keys.
const (
	ParamProteinGrams  = "proteinGrams"
	ParamMealIndex     = "mealIndex"
	ParamSleepIncrease = "sleepIncrease" // hours
	ParamStepsIncrease = "stepsIncrease"
	ParamShiftMinutes  = "shiftMinutes" // positive shifts the last meal earlier
)

// Aggregate metric ids. These sit beside the pattern ids in snapshots so an
// action's direct effect is visible even when no detector tracks it.
const (
	MetricAvgProtein = "avg_protein_g"
	MetricAvgSleep   = "avg_sleep_h"
	MetricAvgSteps   = "avg_steps"
)

// virtualProteinID is the synthetic product injected by add_protein so the
// detectors keep seeing ordinary meals.
const virtualProteinID = "__added_protein"

// Impact is one metric's baseline/predicted pair.
type Impact struct {
	Pattern       string  `json:"pattern"`
	Baseline      float64 `json:"baseline"`
	Predicted     float64 `json:"predicted"`
	Delta         float64 `json:"delta"`
	PercentChange float64 `json:"percentChange"`
	Significance  string  `json:"significance"` // high | medium
}

// HealthScoreChange is the weighted aggregate of per-pattern deltas.
type HealthScoreChange struct {
	Delta   float64 `json:"delta"`
	Percent float64 `json:"percent"`
}

// Result is the full simulation outcome.
type Result struct {
	ActionType        string             `json:"actionType"`
	ActionParams      map[string]float64 `json:"actionParams"`
	Baseline          map[string]float64 `json:"baseline"`
	Predicted         map[string]float64 `json:"predicted"`
	Impact            []Impact           `json:"impact"`
	SideBenefits      []Impact           `json:"sideBenefits"`
	HealthScoreChange HealthScoreChange  `json:"healthScoreChange"`
	PracticalTips     []string           `json:"practicalTips"`
}

// patternWeights drives the aggregate health-score delta. Versioned
// configuration: changing a weight changes every simulation outcome.
var patternWeights = map[string]float64{
	patterns.IDMealTiming:     0.15,
	patterns.IDWaveOverlap:    0.2,
	patterns.IDLateEating:     0.25,
	patterns.IDCircadian:      0.2,
	patterns.IDNutrientTiming: 0.2,
}

// targetedMetrics names the metrics each action aims at; improvements
// elsewhere are surfaced as side benefits.
var targetedMetrics = map[string]map[string]bool{
	ActionAddProtein:    {patterns.IDNutrientTiming: true, MetricAvgProtein: true},
	ActionIncreaseSleep: {MetricAvgSleep: true},
	ActionIncreaseSteps: {MetricAvgSteps: true},
	ActionShiftLastMeal: {patterns.IDLateEating: true, patterns.IDCircadian: true},
}

// practicalTips is a static lookup, not derived numerically.
var practicalTips = map[string][]string{
	ActionAddProtein: {
		"Prep the protein portion the evening before so the morning meal doesn't slip.",
		"Eggs, skyr or a shake all work; pick the one you will actually repeat.",
	},
	ActionIncreaseSleep: {
		"Move bedtime, not wake time; the morning anchor stabilizes the whole rhythm.",
		"Screens off 30 minutes before the new bedtime makes the change stick.",
	},
	ActionIncreaseSteps: {
		"Split the extra steps into two walks; a post-dinner walk also blunts the glucose curve.",
		"Tie the walk to an existing habit so it survives busy days.",
	},
	ActionShiftLastMeal: {
		"Shift in 15-minute increments per week instead of all at once.",
		"A planned evening tea ritual makes the earlier kitchen close feel less like a restriction.",
	},
}

// sideBenefitMinDelta is the minimum absolute improvement for a
// non-targeted metric to be reported as a side benefit.
const sideBenefitMinDelta = 1.0

// Simulate projects actionType over the history and diffs the pattern
// snapshots. It is deterministic: identical inputs always produce an
// identical Result. Unknown action types simulate a no-op and say so in
// the tips.
func Simulate(actionType string, params map[string]float64, history []record.DailyRecord,
	profile record.Profile, products record.ProductIndex, th thresholds.Set,
) Result {
	modHistory, modProducts := applyAction(actionType, params, history, products)

	baseline := snapshot(history, profile, products, th)
	predicted := snapshot(modHistory, profile, modProducts, th)

	targeted := targetedMetrics[actionType]
	var impact, side []Impact
	for _, key := range sortedKeys(baseline) {
		base := baseline[key]
		pred, ok := predicted[key]
		if !ok {
			continue
		}
		delta := pred - base
		pct := 0.0
		if base != 0 {
			pct = delta / base * 100
		}
		entry := Impact{
			Pattern:       key,
			Baseline:      base,
			Predicted:     pred,
			Delta:         delta,
			PercentChange: pct,
			Significance:  significance(pct),
		}
		switch {
		case targeted[key]:
			impact = append(impact, entry)
		case delta >= sideBenefitMinDelta:
			side = append(side, entry)
		default:
			// Every metric present in both snapshots gets an entry, zero
			// deltas included: regressions and unmoved metrics both belong
			// in the impact list so the tradeoff is visible.
			impact = append(impact, entry)
		}
	}

	tips := practicalTips[actionType]
	if tips == nil {
		tips = []string{fmt.Sprintf("No effect model for action %q; showing an unchanged projection.", actionType)}
	}

	return Result{
		ActionType:        actionType,
		ActionParams:      cloneParams(params),
		Baseline:          baseline,
		Predicted:         predicted,
		Impact:            impact,
		SideBenefits:      side,
		HealthScoreChange: healthDelta(baseline, predicted),
		PracticalTips:     tips,
	}
}

// snapshot runs every detector plus the derived aggregates over one
// history and flattens the scores into a metric map. Unavailable patterns
// are left out rather than recorded as zero.
func snapshot(history []record.DailyRecord, profile record.Profile,
	products record.ProductIndex, th thresholds.Set,
) map[string]float64 {
	snap := make(map[string]float64)
	in := patterns.Input{History: history, Profile: profile, Products: products, Thresholds: th}
	for _, res := range patterns.RunAll(in) {
		if res.Available {
			snap[res.Pattern] = res.Score
		}
	}

	var protein, sleep, steps []float64
	for _, day := range history {
		protein = append(protein, products.DayMacros(day).Protein)
		if day.SleepHours > 0 {
			sleep = append(sleep, day.SleepHours)
		}
		if day.Steps > 0 {
			steps = append(steps, float64(day.Steps))
		}
	}
	snap[MetricAvgProtein] = stats.Average(protein)
	if len(sleep) > 0 {
		snap[MetricAvgSleep] = stats.Average(sleep)
	}
	if len(steps) > 0 {
		snap[MetricAvgSteps] = stats.Average(steps)
	}
	return snap
}

// applyAction returns a modified deep copy of the history (and, for
// add_protein, an extended product index). The originals are never
// touched.
func applyAction(actionType string, params map[string]float64,
	history []record.DailyRecord, products record.ProductIndex,
) ([]record.DailyRecord, record.ProductIndex) {
	mod := cloneHistory(history)
	switch actionType {
	case ActionAddProtein:
		grams := params[ParamProteinGrams]
		if grams <= 0 {
			return mod, products
		}
		mealIndex := int(params[ParamMealIndex])
		extended := cloneIndex(products)
		extended[virtualProteinID] = record.Product{
			Name:       "added protein",
			Kcal100:    400,
			Protein100: 100,
		}
		for i := range mod {
			meals := mod[i].Meals
			if len(meals) == 0 {
				continue
			}
			idx := mealIndex
			if idx < 0 || idx >= len(meals) {
				idx = 0
			}
			meals[idx].Items = append(meals[idx].Items, record.MealItem{
				ProductID: virtualProteinID,
				Grams:     grams,
			})
		}
		return mod, extended

	case ActionIncreaseSleep:
		inc := params[ParamSleepIncrease]
		for i := range mod {
			if mod[i].SleepHours > 0 {
				mod[i].SleepHours += inc
			}
		}

	case ActionIncreaseSteps:
		inc := int(params[ParamStepsIncrease])
		for i := range mod {
			if mod[i].Steps > 0 {
				mod[i].Steps += inc
			}
		}

	case ActionShiftLastMeal:
		shift := int(params[ParamShiftMinutes])
		for i := range mod {
			shiftLastMeal(&mod[i], shift)
		}
	}
	return mod, products
}

// shiftLastMeal moves the day's latest meal earlier by shift minutes,
// without crossing the previous meal's time.
func shiftLastMeal(day *record.DailyRecord, shift int) {
	if shift <= 0 || len(day.Meals) == 0 {
		return
	}
	lastIdx := -1
	lastT := -1
	prevT := -1
	for i, meal := range day.Meals {
		t, ok := record.ParseClock(meal.Time)
		if !ok {
			continue
		}
		if t > lastT {
			prevT = lastT
			lastT = t
			lastIdx = i
		} else if t > prevT {
			prevT = t
		}
	}
	if lastIdx < 0 {
		return
	}
	shifted := lastT - shift
	if prevT >= 0 && shifted <= prevT {
		shifted = prevT + 1
	}
	if shifted < 0 {
		shifted = 0
	}
	day.Meals[lastIdx].Time = record.FormatClock(shifted)
}

// healthDelta aggregates per-pattern deltas with the fixed weight table.
// Only pattern scores participate; raw aggregates like steps would swamp
// the 0-100 scale. Accumulation walks the weight table in sorted key order:
// float addition is not associative, so map-order iteration would make the
// sums drift in the last bits between runs of identical inputs.
func healthDelta(baseline, predicted map[string]float64) HealthScoreChange {
	var weightedBase, weightedDelta float64
	for _, id := range sortedKeys(patternWeights) {
		weight := patternWeights[id]
		base, okB := baseline[id]
		pred, okP := predicted[id]
		if !okB || !okP {
			continue
		}
		weightedBase += base * weight
		weightedDelta += (pred - base) * weight
	}
	change := HealthScoreChange{Delta: weightedDelta}
	if weightedBase != 0 {
		change.Percent = weightedDelta / weightedBase * 100
	}
	return change
}

func significance(pct float64) string {
	if math.Abs(pct) >= 20 {
		return "high"
	}
	return "medium"
}

func cloneHistory(history []record.DailyRecord) []record.DailyRecord {
	out := make([]record.DailyRecord, len(history))
	for i, day := range history {
		out[i] = day
		out[i].Meals = make([]record.Meal, len(day.Meals))
		for j, meal := range day.Meals {
			out[i].Meals[j] = meal
			out[i].Meals[j].Items = append([]record.MealItem(nil), meal.Items...)
		}
		out[i].Trainings = append([]record.Training(nil), day.Trainings...)
	}
	return out
}

func cloneIndex(products record.ProductIndex) record.ProductIndex {
	out := make(record.ProductIndex, len(products)+1)
	for id, p := range products {
		out[id] = p
	}
	return out
}

func cloneParams(params map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
