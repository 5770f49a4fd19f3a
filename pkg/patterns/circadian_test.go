package patterns

import (
	"testing"

	"github.com/mealwise/insight/pkg/record"
)

var circadianProducts = record.ProductIndex{
	"meal": {Kcal100: 200},
}

func dayEatingAt(times ...string) record.DailyRecord {
	day := record.DailyRecord{}
	for _, tm := range times {
		day.Meals = append(day.Meals, record.Meal{
			Time:  tm,
			Items: []record.MealItem{{ProductID: "meal", Grams: 150}},
		})
	}
	return day
}

func TestCircadianBelowFloor(t *testing.T) {
	in := Input{
		History:  []record.DailyRecord{dayEatingAt("08:00"), dayEatingAt("08:00")},
		Products: circadianProducts,
	}
	res := Circadian{}.Detect(in)
	if res.Available {
		t.Errorf("2 qualifying days is below the 3-day floor, got %+v", res)
	}
}

func TestCircadianMorningEaterScoresHundred(t *testing.T) {
	// All calories in the morning bucket: raw weighted score 110, clamped.
	in := Input{
		History: []record.DailyRecord{
			dayEatingAt("07:00", "10:00"),
			dayEatingAt("08:00"),
			dayEatingAt("09:30", "11:00"),
		},
		Products: circadianProducts,
	}
	res := Circadian{}.Detect(in)
	if !res.Available {
		t.Fatalf("expected available result, got %+v", res)
	}
	if res.Score != 100 {
		t.Errorf("morning eater score = %v, want 100", res.Score)
	}
	if res.Confidence != 0.5 {
		t.Errorf("3-day confidence = %v, want 0.5", res.Confidence)
	}
}

func TestCircadianNightEaterScoresSeventy(t *testing.T) {
	// All calories in the night bucket (weight 0.7): 70 per day.
	in := Input{
		History: []record.DailyRecord{
			dayEatingAt("23:00"),
			dayEatingAt("22:30"),
			dayEatingAt("01:00"),
		},
		Products: circadianProducts,
	}
	res := Circadian{}.Detect(in)
	if !res.Available {
		t.Fatalf("expected available result, got %+v", res)
	}
	if res.Score != 70 {
		t.Errorf("night eater score = %v, want 70", res.Score)
	}
}

func TestCircadianIgnoresUnresolvableMeals(t *testing.T) {
	// Meals with unknown products carry no calories, so a day of them
	// does not qualify.
	day := record.DailyRecord{Meals: []record.Meal{
		{Time: "08:00", Items: []record.MealItem{{ProductID: "mystery", Grams: 100}}},
	}}
	in := Input{
		History:  []record.DailyRecord{day, day, day},
		Products: circadianProducts,
	}
	res := Circadian{}.Detect(in)
	if res.Available {
		t.Errorf("zero-calorie days must not qualify, got %+v", res)
	}
}
