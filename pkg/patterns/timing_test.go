package patterns

import (
	"strings"
	"testing"

	"github.com/mealwise/insight/pkg/record"
)

func mealsAt(times ...string) []record.Meal {
	meals := make([]record.Meal, 0, len(times))
	for _, tm := range times {
		meals = append(meals, record.Meal{Time: tm})
	}
	return meals
}

func TestMealTimingLargeGapClampsToHundred(t *testing.T) {
	// One day eating 08:00, 13:00, 19:00 with a 3h insulin wave: gaps are
	// 300 and 360 minutes against an ideal of 180, so the raw ratio is
	// 183%. The score clamps to 100 while the insight warns about sparse
	// meals. That contradiction is documented behavior.
	in := Input{
		History: []record.DailyRecord{
			{Date: "2026-08-01", Meals: mealsAt("08:00", "13:00", "19:00")},
		},
		Profile: record.Profile{InsulinWaveHours: 3},
	}
	res := MealTiming{}.Detect(in)
	if !res.Available {
		t.Fatalf("expected available result, got %+v", res)
	}
	if res.Score != 100 {
		t.Errorf("score = %v, want 100 (clamped)", res.Score)
	}
	if res.Metrics["avgGapMin"] != 330 {
		t.Errorf("avgGapMin = %v, want 330", res.Metrics["avgGapMin"])
	}
	if !strings.Contains(res.Insight, "past") {
		t.Errorf("insight should warn about large gaps, got %q", res.Insight)
	}
	if res.Confidence != 0.5 {
		t.Errorf("single-day confidence = %v, want 0.5", res.Confidence)
	}
}

func TestMealTimingConfidenceAtSevenDays(t *testing.T) {
	var history []record.DailyRecord
	for i := 0; i < 7; i++ {
		history = append(history, record.DailyRecord{Meals: mealsAt("08:00", "12:00", "16:00", "20:00")})
	}
	res := MealTiming{}.Detect(Input{History: history, Profile: record.Profile{InsulinWaveHours: 3}})
	if res.Confidence != 0.8 {
		t.Errorf("7-day confidence = %v, want 0.8", res.Confidence)
	}
	// 240-minute gaps against the 180-minute default ideal: good timing.
	if res.Metrics["overlapCount"] != 0 {
		t.Errorf("overlapCount = %v, want 0", res.Metrics["overlapCount"])
	}
}

func TestMealTimingSkipsMalformedMeals(t *testing.T) {
	in := Input{
		History: []record.DailyRecord{
			{Meals: []record.Meal{{Time: ""}, {Time: "nope"}, {Time: "08:00"}, {Time: "12:00"}}},
		},
		Profile: record.Profile{InsulinWaveHours: 3},
	}
	res := MealTiming{}.Detect(in)
	if !res.Available {
		t.Fatalf("valid pair should make the detector available: %+v", res)
	}
	if res.Metrics["gapCount"] != 1 {
		t.Errorf("gapCount = %v, want 1 (malformed meals skipped)", res.Metrics["gapCount"])
	}
}

func TestMealTimingUnavailableWithoutGaps(t *testing.T) {
	res := MealTiming{}.Detect(Input{History: []record.DailyRecord{{Meals: mealsAt("08:00")}}})
	if res.Available {
		t.Errorf("single-meal days carry no gaps; got %+v", res)
	}
	if res.Insight == "" {
		t.Error("unavailable result should still explain itself")
	}
}

func TestWaveOverlapScoring(t *testing.T) {
	// Gaps of 60 and 240 minutes against a 180-minute wave: one overlap
	// cutting (180-60)/180 = 66.7% into the wave.
	in := Input{
		History: []record.DailyRecord{
			{Meals: mealsAt("08:00", "09:00", "13:00")},
		},
		Profile: record.Profile{InsulinWaveHours: 3},
	}
	res := WaveOverlap{}.Detect(in)
	if !res.Available {
		t.Fatalf("expected available result, got %+v", res)
	}
	if res.Metrics["overlapCount"] != 1 {
		t.Errorf("overlapCount = %v, want 1", res.Metrics["overlapCount"])
	}
	wantScore := 100 - (180.0-60.0)/180.0*100
	if diff := res.Score - wantScore; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("score = %v, want %v", res.Score, wantScore)
	}
}

func TestWaveOverlapCleanSpacing(t *testing.T) {
	in := Input{
		History: []record.DailyRecord{{Meals: mealsAt("08:00", "12:00", "16:00")}},
		Profile: record.Profile{InsulinWaveHours: 3},
	}
	res := WaveOverlap{}.Detect(in)
	if res.Score != 100 {
		t.Errorf("no overlaps should score 100, got %v", res.Score)
	}
}
