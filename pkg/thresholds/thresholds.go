// Package thresholds defines the named behavioral thresholds the pattern
// detectors score against, plus the composition of the base table with
// phenotype multipliers into a personalized set.
package thresholds

// Set is a named map of behavioral thresholds. Two variants circulate: the
// base set (fixed defaults, below) and an adapted set derived per profile.
// Adapted sets are always freshly allocated, never patched in place.
type Set map[string]float64

// Threshold keys. Scores change whenever these defaults change, so treat
// the table as versioned configuration.
const (
	IdealMealGapMin    = "idealMealGapMin"   // minutes between meals
	LateEatingHour     = "lateEatingHour"    // local hour after which a meal counts as late
	MorningProteinG    = "morningProteinG"   // grams of protein before noon
	MorningProteinLowG = "morningProteinLowG"
	PostWorkoutCarbsG  = "postWorkoutCarbsG" // grams of carbs within the post-training window
	EveningFatMaxPct   = "eveningFatMaxPct"  // max share of daily fat eaten after 18:00
	FirstMealHour      = "firstMealHour"
	LastMealHour       = "lastMealHour"
	MealsPerDayMax     = "mealsPerDayMax"
	WaterPerKgMl       = "waterPerKgMl"
)

// Base returns a fresh copy of the default threshold table.
func Base() Set {
	return Set{
		IdealMealGapMin:    240,
		LateEatingHour:     21,
		MorningProteinG:    25,
		MorningProteinLowG: 15,
		PostWorkoutCarbsG:  40,
		EveningFatMaxPct:   35,
		FirstMealHour:      9,
		LastMealHour:       20,
		MealsPerDayMax:     5,
		WaterPerKgMl:       30,
	}
}

// Value returns the named threshold, falling back to def when the set is
// nil or the key is absent.
func (s Set) Value(key string, def float64) float64 {
	if s == nil {
		return def
	}
	if v, ok := s[key]; ok {
		return v
	}
	return def
}

// Clone returns a copy of the set. A nil set clones to an empty set.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Multiplier applies phenotype multipliers to a base set. It lives here as
// a function value so the adapt step stays a thin composition without this
// package importing the classifier.
type Multiplier func(base Set) Set

// Adapt derives a personalized set. With no multiplier (no phenotype, e.g.
// under 30 days of history) the adapted set equals the base set. The result
// is always a fresh copy; the base set is never written to.
func Adapt(base Set, apply Multiplier) Set {
	if apply == nil {
		return base.Clone()
	}
	return apply(base)
}
