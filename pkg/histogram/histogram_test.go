package histogram

import (
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/mealwise/insight/pkg/record"
	"github.com/mealwise/insight/pkg/thresholds"
)

var histProducts = record.ProductIndex{
	"oats": {Kcal100: 380, Protein100: 13},
}

func TestRenderEmptyHistory(t *testing.T) {
	out := Render(nil, histProducts, record.Profile{}, thresholds.Base())
	if !strings.Contains(out, "No history to render") {
		t.Errorf("empty history output:\n%s", out)
	}
}

func TestRenderUnresolvableMeals(t *testing.T) {
	history := []record.DailyRecord{
		{Meals: []record.Meal{{Time: "08:00", Items: []record.MealItem{{ProductID: "mystery", Grams: 100}}}}},
	}
	out := Render(history, histProducts, record.Profile{}, thresholds.Base())
	if !strings.Contains(out, "No resolvable meals to render") {
		t.Errorf("zero-kcal history output:\n%s", out)
	}
}

func TestRenderMarksBucketsAndLegend(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	history := []record.DailyRecord{
		{Meals: []record.Meal{
			{Time: "08:00", Items: []record.MealItem{{ProductID: "oats", Grams: 100}}},
			{Time: "09:00", Items: []record.MealItem{{ProductID: "oats", Grams: 100}}}, // inside the 3h wave
			{Time: "21:30", Items: []record.MealItem{{ProductID: "oats", Grams: 50}}},
		}},
	}
	out := Render(history, histProducts, record.Profile{InsulinWaveHours: 3}, thresholds.Base())

	if !strings.Contains(out, "08:00") || !strings.Contains(out, "23:30") {
		t.Fatalf("missing bucket labels:\n%s", out)
	}
	if !strings.Contains(out, "09:00 ! ") {
		t.Errorf("09:00 meal inside the wave should carry the overlap marker:\n%s", out)
	}
	if !strings.Contains(out, "21:30 L ") {
		t.Errorf("21:30 bucket should carry the late marker:\n%s", out)
	}
	if !strings.Contains(out, "( 380)") {
		t.Errorf("08:00 bucket should show its average kcal:\n%s", out)
	}
	if !strings.Contains(out, "late-eating hour") {
		t.Errorf("legend missing:\n%s", out)
	}
}

func TestRenderAveragesAcrossDays(t *testing.T) {
	prev := color.NoColor
	color.NoColor = true
	defer func() { color.NoColor = prev }()

	day := record.DailyRecord{Meals: []record.Meal{
		{Time: "12:00", Items: []record.MealItem{{ProductID: "oats", Grams: 100}}},
	}}
	out := Render([]record.DailyRecord{day, {}}, histProducts, record.Profile{}, thresholds.Base())
	// 380 kcal on one of two days averages to 190.
	if !strings.Contains(out, "( 190)") {
		t.Errorf("two-day average missing:\n%s", out)
	}
}
