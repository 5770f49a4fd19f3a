// Package record defines the immutable input model for the insight engine:
// daily records, the user profile, and the product index.
package record

import (
	"fmt"
	"strconv"
	"strings"
)

// MealItem is one logged portion of a product.
type MealItem struct {
	ProductID string  `json:"productId"`
	Grams     float64 `json:"grams"`
}

// Meal is one eating event at a clock time ("HH:MM").
type Meal struct {
	Time  string     `json:"time"`
	Items []MealItem `json:"items"`
}

// Training is one workout session. ZoneMinutes holds minutes spent in each
// of the four intensity zones.
type Training struct {
	Type        string `json:"type"`
	Time        string `json:"time,omitempty"`
	ZoneMinutes [4]int `json:"zoneMinutes"`
}

// DailyRecord is one calendar day of logged data. The engine never mutates
// a DailyRecord it receives; ownership stays with the caller.
type DailyRecord struct {
	Date          string     `json:"date"` // ISO day, e.g. "2026-08-29"
	Meals         []Meal     `json:"meals,omitempty"`
	Trainings     []Training `json:"trainings,omitempty"`
	SleepStart    string     `json:"sleepStart,omitempty"` // "HH:MM", empty when unknown
	SleepEnd      string     `json:"sleepEnd,omitempty"`
	SleepHours    float64    `json:"sleepHours,omitempty"`
	SleepQuality  float64    `json:"sleepQuality,omitempty"` // 0-10
	Steps         int        `json:"steps,omitempty"`
	WaterMl       float64    `json:"waterMl,omitempty"`
	WeightMorning float64    `json:"weightMorning,omitempty"`
	MoodAvg       float64    `json:"moodAvg,omitempty"`      // 0-10
	StressAvg     float64    `json:"stressAvg,omitempty"`    // 0-10
	WellbeingAvg  float64    `json:"wellbeingAvg,omitempty"` // 0-10
	DayScore      float64    `json:"dayScore,omitempty"`     // 0-10
}

// Profile holds per-user constants. All fields are read-only inputs.
type Profile struct {
	Age              int     `json:"age,omitempty"`
	Weight           float64 `json:"weight,omitempty"` // kg
	Height           float64 `json:"height,omitempty"` // cm
	SleepHours       float64 `json:"sleepHours,omitempty"`
	InsulinWaveHours float64 `json:"insulinWaveHours,omitempty"`
	StepsGoal        int     `json:"stepsGoal,omitempty"`
	KcalTarget       float64 `json:"kcalTarget,omitempty"`
	ProteinTargetG   float64 `json:"proteinTargetG,omitempty"`
	CarbsTargetG     float64 `json:"carbsTargetG,omitempty"`
	FatTargetG       float64 `json:"fatTargetG,omitempty"`
}

// Product holds macros per 100 grams.
type Product struct {
	Name            string  `json:"name,omitempty"`
	Kcal100         float64 `json:"kcal100"`
	Protein100      float64 `json:"protein100"`
	CarbsSimple100  float64 `json:"carbsSimple100"`
	CarbsComplex100 float64 `json:"carbsComplex100"`
	FatBad100       float64 `json:"fatBad100"`
	FatGood100      float64 `json:"fatGood100"`
}

// ProductIndex maps product ids to their per-100g macros.
type ProductIndex map[string]Product

// Macros is an absolute macro total in grams (kcal in kcal).
type Macros struct {
	Kcal         float64 `json:"kcal"`
	Protein      float64 `json:"protein"`
	CarbsSimple  float64 `json:"carbsSimple"`
	CarbsComplex float64 `json:"carbsComplex"`
	FatBad       float64 `json:"fatBad"`
	FatGood      float64 `json:"fatGood"`
}

// Carbs returns total carbohydrates.
func (m Macros) Carbs() float64 { return m.CarbsSimple + m.CarbsComplex }

// Fat returns total fat.
func (m Macros) Fat() float64 { return m.FatBad + m.FatGood }

// Add accumulates other into m.
func (m *Macros) Add(other Macros) {
	m.Kcal += other.Kcal
	m.Protein += other.Protein
	m.CarbsSimple += other.CarbsSimple
	m.CarbsComplex += other.CarbsComplex
	m.FatBad += other.FatBad
	m.FatGood += other.FatGood
}

// ItemMacros resolves one meal item against the index. Unknown products and
// non-positive gram amounts contribute zero macros; bad data degrades, it
// never errors.
func (idx ProductIndex) ItemMacros(item MealItem) Macros {
	p, ok := idx[item.ProductID]
	if !ok || item.Grams <= 0 {
		return Macros{}
	}
	f := item.Grams / 100.0
	return Macros{
		Kcal:         p.Kcal100 * f,
		Protein:      p.Protein100 * f,
		CarbsSimple:  p.CarbsSimple100 * f,
		CarbsComplex: p.CarbsComplex100 * f,
		FatBad:       p.FatBad100 * f,
		FatGood:      p.FatGood100 * f,
	}
}

// MealMacros sums the macros of every item in a meal.
func (idx ProductIndex) MealMacros(meal Meal) Macros {
	var total Macros
	for _, item := range meal.Items {
		total.Add(idx.ItemMacros(item))
	}
	return total
}

// DayMacros sums the macros of every meal in a day.
func (idx ProductIndex) DayMacros(day DailyRecord) Macros {
	var total Macros
	for _, meal := range day.Meals {
		total.Add(idx.MealMacros(meal))
	}
	return total
}

// ParseClock parses "HH:MM" into minutes since midnight. ok is false for
// anything malformed or out of range; callers skip such entries.
func ParseClock(clock string) (minutes int, ok bool) {
	h, m, found := strings.Cut(clock, ":")
	if !found {
		return 0, false
	}
	hour, err := strconv.Atoi(h)
	if err != nil || hour < 0 || hour > 23 {
		return 0, false
	}
	minute, err := strconv.Atoi(m)
	if err != nil || minute < 0 || minute > 59 {
		return 0, false
	}
	return hour*60 + minute, true
}

// FormatClock renders minutes since midnight as "HH:MM", wrapping past
// midnight.
func FormatClock(minutes int) string {
	for minutes < 0 {
		minutes += 24 * 60
	}
	minutes %= 24 * 60
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SortedMealTimes returns the parsed meal times of a day in ascending
// order, skipping meals with malformed times.
func SortedMealTimes(day DailyRecord) []int {
	times := make([]int, 0, len(day.Meals))
	for _, meal := range day.Meals {
		if t, ok := ParseClock(meal.Time); ok {
			times = append(times, t)
		}
	}
	// Insertion sort: meal lists are tiny and usually already ordered.
	for i := 1; i < len(times); i++ {
		for j := i; j > 0 && times[j] < times[j-1]; j-- {
			times[j], times[j-1] = times[j-1], times[j]
		}
	}
	return times
}
