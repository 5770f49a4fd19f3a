package phenotype

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/thresholds"
)

var testProducts = record.ProductIndex{
	"oats": {Kcal100: 380, Protein100: 13, CarbsSimple100: 5, CarbsComplex100: 60, FatGood100: 7},
	"soda": {Kcal100: 42, CarbsSimple100: 10.5},
}

// buildHistory produces days of three oat meals with mild day-to-day
// variation in the logged wellbeing signals.
func buildHistory(days int) []record.DailyRecord {
	history := make([]record.DailyRecord, 0, days)
	for i := 0; i < days; i++ {
		history = append(history, record.DailyRecord{
			Date: fmt.Sprintf("2026-07-%02d", i%28+1),
			Meals: []record.Meal{
				{Time: "08:00", Items: []record.MealItem{{ProductID: "oats", Grams: 100}}},
				{Time: "13:00", Items: []record.MealItem{{ProductID: "oats", Grams: 120}}},
				{Time: "19:00", Items: []record.MealItem{{ProductID: "oats", Grams: 100}}},
			},
			SleepHours:    7.5,
			Steps:         8000,
			WeightMorning: 80,
			StressAvg:     float64(3 + i%4),
			WellbeingAvg:  7,
		})
	}
	return history
}

func TestAutoDetectBelowThirtyDays(t *testing.T) {
	for _, days := range []int{0, 1, 15, 29} {
		if got := AutoDetect(buildHistory(days), record.Profile{}, testProducts); got != nil {
			t.Errorf("AutoDetect with %d days = %+v, want nil", days, got)
		}
	}
}

func TestAutoDetectFullProfile(t *testing.T) {
	p := AutoDetect(buildHistory(35), record.Profile{}, testProducts)
	if p == nil {
		t.Fatal("AutoDetect with 35 days returned nil")
	}
	if p.Days != 35 {
		t.Errorf("Days = %d, want 35", p.Days)
	}
	for name, c := range map[string]Classification{
		"metabolic": p.Metabolic,
		"circadian": p.Circadian,
		"satiety":   p.Satiety,
		"stress":    p.Stress,
	} {
		if c.Label == "" {
			t.Errorf("%s label is empty", name)
		}
		if c.Confidence < 0 || c.Confidence > 1 {
			t.Errorf("%s confidence %v outside [0,1]", name, c.Confidence)
		}
	}

	// The oat history eats 08:00-19:00 with modest simple carbs: an
	// intermediate eater with low simple-carb share.
	if p.Circadian.Label != IntermediateType {
		t.Errorf("circadian label = %s, want %s", p.Circadian.Label, IntermediateType)
	}
	if p.Metabolic.Label != InsulinSensitive {
		t.Errorf("metabolic label = %s, want %s", p.Metabolic.Label, InsulinSensitive)
	}
}

func TestStressDegradationPath(t *testing.T) {
	// Meals but no stress signal at all: the stress sub-analysis cannot
	// run and the category must degrade, not guess.
	history := buildHistory(30)
	for i := range history {
		history[i].StressAvg = 0
	}
	p := AutoDetect(history, record.Profile{}, testProducts)
	if p == nil {
		t.Fatal("AutoDetect returned nil")
	}
	if p.Stress.Label != StressNeutral {
		t.Errorf("stress label = %s, want %s", p.Stress.Label, StressNeutral)
	}
	if p.Stress.Confidence != 0.3 {
		t.Errorf("degraded stress confidence = %v, want 0.3", p.Stress.Confidence)
	}
	if !p.Stress.Degraded {
		t.Error("Degraded flag not set on failed stress analysis")
	}
}

func TestApplyMultipliersNilPhenotype(t *testing.T) {
	base := thresholds.Base()
	adapted := ApplyMultipliers(base, nil)
	if !reflect.DeepEqual(map[string]float64(adapted), map[string]float64(base)) {
		t.Errorf("nil phenotype must return the base set unchanged: %v vs %v", adapted, base)
	}
	adapted[thresholds.LateEatingHour] = 1
	if base[thresholds.LateEatingHour] == 1 {
		t.Error("ApplyMultipliers must not alias the base set")
	}
}

func TestApplyMultipliersInsulinResistant(t *testing.T) {
	base := thresholds.Set{thresholds.LateEatingHour: 21}
	p := &Profile{
		Metabolic: Classification{Label: InsulinResistant, Confidence: 0.7},
		Circadian: Classification{Label: IntermediateType, Confidence: 0.6},
		Satiety:   Classification{Label: SatietyBalanced, Confidence: 0.6},
		Stress:    Classification{Label: StressNeutral, Confidence: 0.5},
	}
	adapted := ApplyMultipliers(base, p)
	if got := adapted[thresholds.LateEatingHour]; got != 17.9 {
		t.Errorf("lateEatingHour = %v, want 17.9 (21 * 0.85 rounded to 1 decimal)", got)
	}
}

func TestApplyMultipliersDeterministic(t *testing.T) {
	base := thresholds.Base()
	p := &Profile{
		Metabolic: Classification{Label: InsulinResistant, Confidence: 0.7},
		Circadian: Classification{Label: EveningType, Confidence: 0.8},
		Satiety:   Classification{Label: Grazer, Confidence: 0.6},
		Stress:    Classification{Label: StressEater, Confidence: 0.5},
	}
	first := ApplyMultipliers(base, p)
	second := ApplyMultipliers(base, p)
	if !reflect.DeepEqual(first, second) {
		t.Errorf("ApplyMultipliers is not deterministic: %v vs %v", first, second)
	}
}

func TestApplyMultipliersStacksCategories(t *testing.T) {
	base := thresholds.Set{thresholds.LateEatingHour: 21}
	p := &Profile{
		Metabolic: Classification{Label: InsulinResistant},
		Circadian: Classification{Label: EveningType},
		Satiety:   Classification{Label: SatietyBalanced},
		Stress:    Classification{Label: StressNeutral},
	}
	// 21 * 0.85 * 1.1 = 19.635 -> 19.6
	adapted := ApplyMultipliers(base, p)
	if got := adapted[thresholds.LateEatingHour]; got != 19.6 {
		t.Errorf("stacked lateEatingHour = %v, want 19.6", got)
	}
}
