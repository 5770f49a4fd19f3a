package record

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in     string
		want   int
		wantOK bool
	}{
		{"00:00", 0, true},
		{"08:30", 510, true},
		{"23:59", 1439, true},
		{"24:00", 0, false},
		{"12:60", 0, false},
		{"noon", 0, false},
		{"", 0, false},
		{"7:5", 425, true},
	}
	for _, tc := range cases {
		got, ok := ParseClock(tc.in)
		if ok != tc.wantOK || got != tc.want {
			t.Errorf("ParseClock(%q) = (%d, %v), want (%d, %v)", tc.in, got, ok, tc.want, tc.wantOK)
		}
	}
}

func TestFormatClockWraps(t *testing.T) {
	if got := FormatClock(510); got != "08:30" {
		t.Errorf("FormatClock(510) = %q, want 08:30", got)
	}
	if got := FormatClock(25 * 60); got != "01:00" {
		t.Errorf("FormatClock past midnight = %q, want 01:00", got)
	}
	if got := FormatClock(-60); got != "23:00" {
		t.Errorf("FormatClock(-60) = %q, want 23:00", got)
	}
}

func TestProductIndexMissingProduct(t *testing.T) {
	idx := ProductIndex{
		"oats": {Kcal100: 380, Protein100: 13, CarbsComplex100: 60},
	}
	m := idx.ItemMacros(MealItem{ProductID: "unknown", Grams: 100})
	if m.Kcal != 0 || m.Protein != 0 {
		t.Errorf("missing product must degrade to zero macros, got %+v", m)
	}
	m = idx.ItemMacros(MealItem{ProductID: "oats", Grams: 0})
	if m.Kcal != 0 {
		t.Errorf("zero grams must contribute nothing, got %+v", m)
	}
	m = idx.ItemMacros(MealItem{ProductID: "oats", Grams: 50})
	if m.Kcal != 190 || m.Protein != 6.5 {
		t.Errorf("50g oats = %+v, want 190 kcal / 6.5g protein", m)
	}
}

func TestDayMacrosSkipsBadItems(t *testing.T) {
	idx := ProductIndex{"egg": {Kcal100: 155, Protein100: 13}}
	day := DailyRecord{
		Meals: []Meal{
			{Time: "08:00", Items: []MealItem{{ProductID: "egg", Grams: 100}}},
			{Time: "13:00", Items: []MealItem{{ProductID: "gone", Grams: 200}, {ProductID: "egg", Grams: -5}}},
		},
	}
	m := idx.DayMacros(day)
	if m.Kcal != 155 {
		t.Errorf("day kcal = %v, want 155 (only the valid item counts)", m.Kcal)
	}
}

func TestSortedMealTimes(t *testing.T) {
	day := DailyRecord{Meals: []Meal{
		{Time: "19:00"},
		{Time: "bogus"},
		{Time: "08:00"},
		{Time: "13:00"},
	}}
	got := SortedMealTimes(day)
	want := []int{480, 780, 1140}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("times[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
