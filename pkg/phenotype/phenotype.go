// Package phenotype classifies a user's behavioral/metabolic phenotype from
// at least 30 days of history and scales the base thresholds by
// phenotype-specific multipliers.
package phenotype

import (
	"errors"
	"math"

	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/stats"
	"github.com/mealwise/insight/pkg/thresholds"
)

// MinHistoryDays is the floor below which no phenotype is derived. Callers
// must treat a nil profile as "not personalized", never as a neutral guess.
const MinHistoryDays = 30

// Category labels. One label per category, drawn from a fixed taxonomy.
const (
	CategoryMetabolic = "metabolic"
	CategoryCircadian = "circadian"
	CategorySatiety   = "satiety"
	CategoryStress    = "stress"
)

// Metabolic labels.
const (
	InsulinResistant  = "insulin_resistant"
	InsulinSensitive  = "insulin_sensitive"
	MetabolicBalanced = "balanced"
)

// Circadian labels.
const (
	MorningType      = "morning_type"
	EveningType      = "evening_type"
	IntermediateType = "intermediate"
)

// Satiety labels.
const (
	Grazer          = "grazer"
	VolumeEater     = "volume_eater"
	SatietyBalanced = "balanced_eater"
)

// Stress labels.
const (
	StressEater   = "stress_eater"
	StressSkipper = "stress_skipper"
	StressNeutral = "neutral"
)

// Classification is one category's outcome. Degraded marks the case where
// the sub-analysis itself failed and the label fell back to neutral, as
// opposed to a genuine low-signal result.
type Classification struct {
	Label      string  `json:"label"`
	Confidence float64 `json:"confidence"` // 0-1
	Degraded   bool    `json:"degraded,omitempty"`
}

// Profile is one label per category with its own confidence. Categories are
// classified independently; this is not a joint distribution.
type Profile struct {
	Metabolic Classification `json:"metabolic"`
	Circadian Classification `json:"circadian"`
	Satiety   Classification `json:"satiety"`
	Stress    Classification `json:"stress"`
	Days      int            `json:"days"` // history length the profile was derived from
}

// labels returns the four category labels in a fixed order.
func (p *Profile) labels() [4]string {
	return [4]string{p.Metabolic.Label, p.Circadian.Label, p.Satiety.Label, p.Stress.Label}
}

// AutoDetect derives a phenotype from history. It returns nil below
// MinHistoryDays. Each category is classified independently with its own
// confidence; a failing sub-analysis degrades that one category to neutral
// with confidence 0.3 instead of failing the whole detection.
func AutoDetect(history []record.DailyRecord, profile record.Profile, products record.ProductIndex) *Profile {
	if len(history) < MinHistoryDays {
		return nil
	}
	p := &Profile{Days: len(history)}
	p.Metabolic = classifyMetabolic(history, products)
	p.Circadian = classifyCircadian(history)
	p.Satiety = classifySatiety(history)

	label, conf, err := stressSignal(history, products)
	if err != nil {
		// No signal and analysis failure are different things; keep them
		// apart via Degraded so hosts can show distinct diagnostics.
		p.Stress = Classification{Label: StressNeutral, Confidence: 0.3, Degraded: true}
	} else {
		p.Stress = Classification{Label: label, Confidence: conf}
	}
	return p
}

// classifyMetabolic combines the simple-carb share of intake, the morning
// weight trend, and the reported energy level.
func classifyMetabolic(history []record.DailyRecord, products record.ProductIndex) Classification {
	var carbShares, weights, energy []float64
	for _, day := range history {
		m := products.DayMacros(day)
		if m.Kcal > 0 {
			carbShares = append(carbShares, m.CarbsSimple*4/m.Kcal)
		}
		if day.WeightMorning > 0 {
			weights = append(weights, day.WeightMorning)
		}
		if day.WellbeingAvg > 0 {
			energy = append(energy, day.WellbeingAvg)
		}
	}
	if len(carbShares) == 0 {
		return Classification{Label: MetabolicBalanced, Confidence: 0.3}
	}

	carbShare := stats.Average(carbShares)
	weightTrend := stats.LinearTrend(weights) // kg per day
	avgEnergy := stats.Average(energy)

	switch {
	case carbShare > 0.25 && (weightTrend > 0.01 || (avgEnergy > 0 && avgEnergy < 5)):
		conf := 0.5 + stats.Normalize(carbShare, 0.25, 0.5)*0.4
		return Classification{Label: InsulinResistant, Confidence: confWithN(conf, len(carbShares))}
	case carbShare < 0.15 && weightTrend <= 0.005:
		conf := 0.5 + stats.Normalize(0.15-carbShare, 0, 0.15)*0.3
		return Classification{Label: InsulinSensitive, Confidence: confWithN(conf, len(carbShares))}
	default:
		return Classification{Label: MetabolicBalanced, Confidence: confWithN(0.6, len(carbShares))}
	}
}

// classifyCircadian looks at when eating starts and ends.
func classifyCircadian(history []record.DailyRecord) Classification {
	var firsts, lasts []float64
	for _, day := range history {
		times := record.SortedMealTimes(day)
		if len(times) == 0 {
			continue
		}
		firsts = append(firsts, float64(times[0])/60.0)
		lasts = append(lasts, float64(times[len(times)-1])/60.0)
	}
	if len(firsts) == 0 {
		return Classification{Label: IntermediateType, Confidence: 0.3}
	}
	first := stats.Average(firsts)
	last := stats.Average(lasts)
	switch {
	case first < 7.5 && last < 20:
		conf := 0.5 + stats.Normalize(7.5-first, 0, 2.5)*0.4
		return Classification{Label: MorningType, Confidence: confWithN(conf, len(firsts))}
	case last > 21.5 || first > 10.5:
		conf := 0.5 + stats.Normalize(last-21.5, 0, 2.5)*0.4
		return Classification{Label: EveningType, Confidence: confWithN(conf, len(firsts))}
	default:
		return Classification{Label: IntermediateType, Confidence: confWithN(0.6, len(firsts))}
	}
}

// classifySatiety looks at meal frequency versus portion size.
func classifySatiety(history []record.DailyRecord) Classification {
	var mealsPerDay, gramsPerMeal []float64
	for _, day := range history {
		n := 0
		grams := 0.0
		for _, meal := range day.Meals {
			if _, ok := record.ParseClock(meal.Time); !ok {
				continue
			}
			n++
			for _, item := range meal.Items {
				if item.Grams > 0 {
					grams += item.Grams
				}
			}
		}
		if n == 0 {
			continue
		}
		mealsPerDay = append(mealsPerDay, float64(n))
		gramsPerMeal = append(gramsPerMeal, grams/float64(n))
	}
	if len(mealsPerDay) == 0 {
		return Classification{Label: SatietyBalanced, Confidence: 0.3}
	}
	freq := stats.Average(mealsPerDay)
	portion := stats.Average(gramsPerMeal)
	switch {
	case freq >= 5 && portion < 300:
		conf := 0.5 + stats.Normalize(freq, 5, 8)*0.4
		return Classification{Label: Grazer, Confidence: confWithN(conf, len(mealsPerDay))}
	case freq <= 2.5 && portion > 400:
		conf := 0.5 + stats.Normalize(portion, 400, 800)*0.4
		return Classification{Label: VolumeEater, Confidence: confWithN(conf, len(mealsPerDay))}
	default:
		return Classification{Label: SatietyBalanced, Confidence: confWithN(0.6, len(mealsPerDay))}
	}
}

var errInsufficientSignal = errors.New("phenotype: not enough paired stress/intake days")

// stressSignal correlates reported stress with caloric intake. It returns
// an error instead of guessing when the paired series is too short or the
// correlation degenerates; the caller downgrades that to neutral/0.3.
func stressSignal(history []record.DailyRecord, products record.ProductIndex) (label string, confidence float64, err error) {
	var stress, kcal []float64
	for _, day := range history {
		if day.StressAvg <= 0 {
			continue
		}
		m := products.DayMacros(day)
		if m.Kcal <= 0 {
			continue
		}
		stress = append(stress, day.StressAvg)
		kcal = append(kcal, m.Kcal)
	}
	if len(stress) < 7 {
		return "", 0, errInsufficientSignal
	}
	r := stats.PearsonCorrelation(stress, kcal)
	if math.IsNaN(r) {
		return "", 0, errors.New("phenotype: degenerate stress correlation")
	}
	abs := math.Abs(r)
	if abs < 0.3 {
		// Genuine low-signal outcome, not a failure.
		return StressNeutral, 0.5, nil
	}
	conf := stats.ApplySmallSamplePenalty(0.4+abs*0.5, len(stress), 14)
	if r > 0 {
		return StressEater, conf, nil
	}
	return StressSkipper, conf, nil
}

// confWithN folds the sample-size penalty into a rule confidence and keeps
// it inside [0, 1].
func confWithN(conf float64, n int) float64 {
	return stats.Clamp(stats.ApplySmallSamplePenalty(conf, n, 14), 0, 1)
}

// multipliers maps threshold key -> phenotype label -> scale factor. A
// label absent for a key contributes factor 1. Values here are versioned
// configuration: changing them changes every downstream score.
var multipliers = map[string]map[string]float64{
	thresholds.LateEatingHour: {
		InsulinResistant: 0.85,
		EveningType:      1.1,
		MorningType:      0.95,
	},
	thresholds.IdealMealGapMin: {
		InsulinResistant: 1.15,
		Grazer:           0.9,
		VolumeEater:      1.1,
	},
	thresholds.MorningProteinG: {
		MorningType: 1.1,
		EveningType: 0.9,
		StressEater: 1.1,
	},
	thresholds.PostWorkoutCarbsG: {
		InsulinResistant: 0.85,
		InsulinSensitive: 1.1,
	},
	thresholds.EveningFatMaxPct: {
		InsulinResistant: 0.9,
		EveningType:      1.05,
	},
	thresholds.LastMealHour: {
		InsulinResistant: 0.9,
		EveningType:      1.05,
		MorningType:      0.95,
	},
	thresholds.MealsPerDayMax: {
		Grazer:      1.2,
		VolumeEater: 0.8,
		StressEater: 0.9,
	},
}

// ApplyMultipliers scales base thresholds by the product of the
// per-category multipliers for each key and rounds to 1 decimal place. A
// nil phenotype returns an unmodified copy of the base set. The function is
// pure: identical inputs always produce identical output.
func ApplyMultipliers(base thresholds.Set, p *Profile) thresholds.Set {
	adapted := base.Clone()
	if p == nil {
		return adapted
	}
	labels := p.labels()
	for key, byLabel := range multipliers {
		baseVal, ok := adapted[key]
		if !ok {
			continue
		}
		factor := 1.0
		for _, label := range labels {
			if m, ok := byLabel[label]; ok {
				factor *= m
			}
		}
		adapted[key] = math.Round(baseVal*factor*10) / 10
	}
	return adapted
}

// Multiplier adapts a profile into the thresholds.Multiplier shape used by
// the adaptive threshold step.
func (p *Profile) Multiplier() thresholds.Multiplier {
	if p == nil {
		return nil
	}
	return func(base thresholds.Set) thresholds.Set {
		return ApplyMultipliers(base, p)
	}
}
