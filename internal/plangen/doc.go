// Package plangen builds workout and nutrition plan documents from a
// natural-language goal/level pair, either through an external
// text-generation call or a deterministic local fallback.
package plangen

// Source tags where a generated document pair came from.
type Source string

const (
	SourceOpenAI   Source = "openai"
	SourceFallback Source = "fallback"
)

// WorkoutExercise is one exercise line inside a workout day.
type WorkoutExercise struct {
	Name string  `json:"name"`
	Sets *int    `json:"sets,omitempty"`
	Reps *string `json:"reps,omitempty"`
	Rest *string `json:"rest,omitempty"`
}

// WorkoutDay groups exercises under a day label.
type WorkoutDay struct {
	Label     string            `json:"label"`
	Exercises []WorkoutExercise `json:"exercises"`
}

// WorkoutDoc is a complete generated workout plan document.
type WorkoutDoc struct {
	Title string       `json:"title"`
	Notes string       `json:"notes,omitempty"`
	Days  []WorkoutDay `json:"days"`
}

// NutritionMealItem is one food line inside a meal.
type NutritionMealItem struct {
	Item     string   `json:"item"`
	Calories *float64 `json:"calories,omitempty"`
	ProteinG *float64 `json:"protein_g,omitempty"`
	CarbsG   *float64 `json:"carbs_g,omitempty"`
	FatsG    *float64 `json:"fats_g,omitempty"`
}

// NutritionMeal groups items under a meal label.
type NutritionMeal struct {
	Label string              `json:"label"`
	Items []NutritionMealItem `json:"items"`
}

// NutritionDoc is a complete generated nutrition plan document.
type NutritionDoc struct {
	Title string          `json:"title"`
	Notes string          `json:"notes,omitempty"`
	Meals []NutritionMeal `json:"meals"`
}

// Document is the generated plan pair. Both halves must be present for a
// document to be usable; a pair missing either half is replaced wholesale by
// the fallback, never merged.
type Document struct {
	Workout   *WorkoutDoc   `json:"workout"`
	Nutrition *NutritionDoc `json:"nutrition"`
}
