package api

import (
	"errors"
	"net/http"

	"ironclub/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PlanHandler serves the plan library: headers for everyone in scope, full
// item detail per plan.
type PlanHandler struct {
	planService service.PlanService
}

// NewPlanHandler creates a new PlanHandler.
func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

// --- DTOs ---

// WorkoutItemResponse is one exercise row of a workout plan.
type WorkoutItemResponse struct {
	DayLabel     string  `json:"dayLabel,omitempty"`
	ExerciseName string  `json:"exerciseName"`
	Sets         *int    `json:"sets,omitempty"`
	Reps         *string `json:"reps,omitempty"`
	Rest         *string `json:"rest,omitempty"`
	OrderIndex   int     `json:"orderIndex"`
}

// NutritionItemResponse is one food row of a nutrition plan.
type NutritionItemResponse struct {
	MealLabel  string   `json:"mealLabel,omitempty"`
	Item       string   `json:"item"`
	Calories   *float64 `json:"calories,omitempty"`
	ProteinG   *float64 `json:"proteinG,omitempty"`
	CarbsG     *float64 `json:"carbsG,omitempty"`
	FatsG      *float64 `json:"fatsG,omitempty"`
	OrderIndex int      `json:"orderIndex"`
}

// WorkoutPlanDetailsResponse is a plan header with ordered items.
type WorkoutPlanDetailsResponse struct {
	PlanResponse
	Items []WorkoutItemResponse `json:"items"`
}

// NutritionPlanDetailsResponse is a plan header with ordered items.
type NutritionPlanDetailsResponse struct {
	PlanResponse
	Items []NutritionItemResponse `json:"items"`
}

func mapPlanError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPlanNotFound):
		abortWithError(c, http.StatusNotFound, "Plan not found or not accessible.")
	case errors.Is(err, service.ErrNotAuthorized):
		abortWithError(c, http.StatusForbidden, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Failed to load plan.")
	}
}

// --- Handler Methods ---

// ListWorkoutPlans returns the workout plan library visible to the caller.
func (h *PlanHandler) ListWorkoutPlans(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	plans, err := h.planService.ListWorkoutPlans(c.Request.Context(), principal)
	if err != nil {
		mapPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlansToResponse(plans))
}

// GetWorkoutPlan returns one workout plan with its ordered items.
func (h *PlanHandler) GetWorkoutPlan(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	details, err := h.planService.GetWorkoutPlan(c.Request.Context(), principal, planID)
	if err != nil {
		mapPlanError(c, err)
		return
	}

	items := make([]WorkoutItemResponse, len(details.Items))
	for i, it := range details.Items {
		items[i] = WorkoutItemResponse{
			DayLabel:     it.DayLabel,
			ExerciseName: it.ExerciseName,
			Sets:         it.Sets,
			Reps:         it.Reps,
			Rest:         it.Rest,
			OrderIndex:   it.OrderIndex,
		}
	}

	c.JSON(http.StatusOK, WorkoutPlanDetailsResponse{
		PlanResponse: MapPlanToResponse(&details.Plan),
		Items:        items,
	})
}

// ListNutritionPlans returns the nutrition plan library visible to the caller.
func (h *PlanHandler) ListNutritionPlans(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	plans, err := h.planService.ListNutritionPlans(c.Request.Context(), principal)
	if err != nil {
		mapPlanError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapPlansToResponse(plans))
}

// GetNutritionPlan returns one nutrition plan with its ordered items.
func (h *PlanHandler) GetNutritionPlan(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	planID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	details, err := h.planService.GetNutritionPlan(c.Request.Context(), principal, planID)
	if err != nil {
		mapPlanError(c, err)
		return
	}

	items := make([]NutritionItemResponse, len(details.Items))
	for i, it := range details.Items {
		items[i] = NutritionItemResponse{
			MealLabel:  it.MealLabel,
			Item:       it.Item,
			Calories:   it.Calories,
			ProteinG:   it.ProteinG,
			CarbsG:     it.CarbsG,
			FatsG:      it.FatsG,
			OrderIndex: it.OrderIndex,
		}
	}

	c.JSON(http.StatusOK, NutritionPlanDetailsResponse{
		PlanResponse: MapPlanToResponse(&details.Plan),
		Items:        items,
	})
}
