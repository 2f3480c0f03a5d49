package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanKind distinguishes the two structurally parallel plan families.
type PlanKind string

const (
	PlanKindWorkout   PlanKind = "workout"
	PlanKindNutrition PlanKind = "nutrition"
)

// MaxPlanTitleLength is enforced on insert; longer titles are truncated.
const MaxPlanTitleLength = 140

// Plan is a reusable plan header, shared by both plan kinds. Plans are
// immutable once created except for superficial title/notes edits.
type Plan struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title     string             `bson:"title" json:"title"`
	Notes     string             `bson:"notes,omitempty" json:"notes,omitempty"`
	CreatedBy primitive.ObjectID `bson:"createdBy" json:"createdBy"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

// WorkoutItem is one exercise line of a workout plan. OrderIndex is 1-based,
// dense, and global across day boundaries within the plan.
type WorkoutItem struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID       primitive.ObjectID `bson:"workoutPlanId" json:"workoutPlanId"`
	DayLabel     string             `bson:"dayLabel,omitempty" json:"dayLabel,omitempty"`
	ExerciseName string             `bson:"exerciseName" json:"exerciseName"`
	Sets         *int               `bson:"sets,omitempty" json:"sets,omitempty"`
	Reps         *string            `bson:"reps,omitempty" json:"reps,omitempty"`
	Rest         *string            `bson:"rest,omitempty" json:"rest,omitempty"`
	OrderIndex   int                `bson:"orderIndex" json:"orderIndex"`
}

// NutritionItem is one food line of a nutrition plan.
type NutritionItem struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	PlanID     primitive.ObjectID `bson:"nutritionPlanId" json:"nutritionPlanId"`
	MealLabel  string             `bson:"mealLabel,omitempty" json:"mealLabel,omitempty"`
	Item       string             `bson:"item" json:"item"`
	Calories   *float64           `bson:"calories,omitempty" json:"calories,omitempty"`
	ProteinG   *float64           `bson:"proteinG,omitempty" json:"proteinG,omitempty"`
	CarbsG     *float64           `bson:"carbsG,omitempty" json:"carbsG,omitempty"`
	FatsG      *float64           `bson:"fatsG,omitempty" json:"fatsG,omitempty"`
	OrderIndex int                `bson:"orderIndex" json:"orderIndex"`
}

// TruncateTitle clamps a plan title to the stored maximum.
func TruncateTitle(title string) string {
	runes := []rune(title)
	if len(runes) <= MaxPlanTitleLength {
		return title
	}
	return string(runes[:MaxPlanTitleLength])
}
