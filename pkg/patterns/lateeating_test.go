package patterns

import (
	"testing"

	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/thresholds"
)

func TestLateEatingHalfLate(t *testing.T) {
	// One day, meals at 20:00 and 22:30 against a 21:00 threshold: one of
	// two meals is late, latePct 50, score max(0, 100-100) = 0.
	in := Input{
		History:    []record.DailyRecord{{Meals: mealsAt("20:00", "22:30")}},
		Thresholds: thresholds.Set{thresholds.LateEatingHour: 21},
	}
	res := LateEating{}.Detect(in)
	if !res.Available {
		t.Fatalf("expected available result, got %+v", res)
	}
	if res.Metrics["lateCount"] != 1 || res.Metrics["totalMeals"] != 2 {
		t.Errorf("counts = %v/%v, want 1/2", res.Metrics["lateCount"], res.Metrics["totalMeals"])
	}
	if res.Metrics["latePct"] != 50 {
		t.Errorf("latePct = %v, want 50", res.Metrics["latePct"])
	}
	if res.Score != 0 {
		t.Errorf("score = %v, want 0", res.Score)
	}
}

func TestLateEatingFractionalThreshold(t *testing.T) {
	// An adapted threshold of 17.9 means 17:54; an 18:00 meal is late.
	in := Input{
		History:    []record.DailyRecord{{Meals: mealsAt("12:00", "18:00")}},
		Thresholds: thresholds.Set{thresholds.LateEatingHour: 17.9},
	}
	res := LateEating{}.Detect(in)
	if res.Metrics["lateCount"] != 1 {
		t.Errorf("lateCount = %v, want 1 (18:00 is past 17:54)", res.Metrics["lateCount"])
	}
}

func TestLateEatingNoMeals(t *testing.T) {
	res := LateEating{}.Detect(Input{History: []record.DailyRecord{{}, {}}})
	if res.Available {
		t.Errorf("no timed meals should be unavailable, got %+v", res)
	}
}

func TestLateEatingCleanEvenings(t *testing.T) {
	var history []record.DailyRecord
	for i := 0; i < 8; i++ {
		history = append(history, record.DailyRecord{Meals: mealsAt("08:00", "13:00", "18:30")})
	}
	res := LateEating{}.Detect(Input{History: history, Thresholds: thresholds.Set{thresholds.LateEatingHour: 21}})
	if res.Score != 100 {
		t.Errorf("no late meals should score 100, got %v", res.Score)
	}
	if res.Confidence != 0.8 {
		t.Errorf("8-day confidence = %v, want 0.8", res.Confidence)
	}
}
