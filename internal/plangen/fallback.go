package plangen

import (
	"fmt"
	"strings"
)

func intPtr(v int) *int          { return &v }
func strPtr(v string) *string    { return &v }
func floatPtr(v float64) *float64 { return &v }

// Fallback builds the deterministic local plan pair. It is a pure function
// of (goal, level): the same inputs always yield the same documents, so the
// pipeline can be exercised without any external dependency.
//
// Level maps to circuit rounds: base=2, intermediate=3, advanced=4; any
// unrecognized level counts as base.
func Fallback(goal, level string) *Document {
	g := strings.TrimSpace(goal)
	if g == "" {
		g = "Full Body"
	}
	lvl := strings.ToLower(strings.TrimSpace(level))
	if lvl == "" {
		lvl = "base"
	}

	rounds := 2
	switch lvl {
	case "advanced":
		rounds = 4
	case "intermediate":
		rounds = 3
	}

	return &Document{
		Workout: &WorkoutDoc{
			Title: fmt.Sprintf("Circuito %s (%s)", g, lvl),
			Notes: fmt.Sprintf("Esegui %d giri. Recupero breve, tecnica pulita.", rounds),
			Days: []WorkoutDay{
				{
					Label: "Circuito",
					Exercises: []WorkoutExercise{
						{Name: "Squat", Sets: intPtr(rounds), Reps: strPtr("12-15"), Rest: strPtr("20s")},
						{Name: "Push-up", Sets: intPtr(rounds), Reps: strPtr("10-12"), Rest: strPtr("20s")},
						{Name: "Rematore elastico", Sets: intPtr(rounds), Reps: strPtr("12-15"), Rest: strPtr("20s")},
						{Name: "Plank", Sets: intPtr(rounds), Reps: strPtr("30-45s"), Rest: strPtr("30s")},
					},
				},
			},
		},
		Nutrition: &NutritionDoc{
			Title: fmt.Sprintf("Piano %s (%s)", g, lvl),
			Notes: "Esempio base. Personalizza su kcal e preferenze.",
			Meals: []NutritionMeal{
				{
					Label: "Colazione",
					Items: []NutritionMealItem{
						{Item: "Yogurt greco + frutta + miele", Calories: floatPtr(380), ProteinG: floatPtr(25), CarbsG: floatPtr(40), FatsG: floatPtr(10)},
					},
				},
				{
					Label: "Pranzo",
					Items: []NutritionMealItem{
						{Item: "Riso + pollo + verdure", Calories: floatPtr(650), ProteinG: floatPtr(45), CarbsG: floatPtr(75), FatsG: floatPtr(15)},
					},
				},
				{
					Label: "Cena",
					Items: []NutritionMealItem{
						{Item: "Pesce + patate + insalata", Calories: floatPtr(600), ProteinG: floatPtr(40), CarbsG: floatPtr(60), FatsG: floatPtr(18)},
					},
				},
			},
		},
	}
}
