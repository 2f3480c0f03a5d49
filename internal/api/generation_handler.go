package api

import (
	"errors"
	"net/http"

	"ironclub/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GenerationHandler serves the AI plan generation endpoints.
type GenerationHandler struct {
	generationService service.GenerationService
}

// NewGenerationHandler creates a new GenerationHandler.
func NewGenerationHandler(generationService service.GenerationService) *GenerationHandler {
	return &GenerationHandler{generationService: generationService}
}

// --- DTOs ---

// GenerateRequest asks for a plan pair for the target user. Goal and level
// are free text; missing values fall back to the generator defaults.
type GenerateRequest struct {
	UserID string `json:"userId" binding:"required"`
	Goal   string `json:"goal"`
	Level  string `json:"level"`
}

// PreviewRequest asks for a plan pair without persisting it. Malformed
// bodies degrade to empty defaults rather than erroring.
type PreviewRequest struct {
	Goal  string `json:"goal"`
	Level string `json:"level"`
}

// --- Handler Methods ---

// Generate runs the full pipeline: generate, persist both plans, assign both
// to the target user. Generator failure is invisible; the response reports
// which path produced the content.
func (h *GenerationHandler) Generate(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	targetUserID, err := primitive.ObjectIDFromHex(req.UserID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	result, err := h.generationService.GenerateAndAssign(c.Request.Context(), principal, targetUserID, req.Goal, req.Level)
	if err != nil {
		var partial *service.PartialGenerationError
		switch {
		case errors.As(err, &partial):
			// The succeeded half stays in place; report what was created so
			// the caller can retry or clean up.
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":           "Plan generation partially completed.",
				"workoutPlanId":   objectIDOrNil(partial.WorkoutPlanID),
				"nutritionPlanId": objectIDOrNil(partial.NutritionPlanID),
			})
		case errors.Is(err, service.ErrNotAuthorized), errors.Is(err, service.ErrClientNotManaged):
			abortWithError(c, http.StatusForbidden, err.Error())
		default:
			abortWithError(c, http.StatusInternalServerError, "Plan generation failed.")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"ok":              true,
		"source":          result.Source,
		"workoutPlanId":   result.WorkoutPlanID.Hex(),
		"nutritionPlanId": result.NutritionPlanID.Hex(),
	})
}

// Preview generates a plan pair without persisting anything. It always
// responds 200: a malformed body degrades to defaults and generator failure
// degrades to the fallback.
func (h *GenerationHandler) Preview(c *gin.Context) {
	var req PreviewRequest
	_ = c.ShouldBindJSON(&req) // tolerate malformed bodies, keep defaults

	doc, source := h.generationService.Preview(c.Request.Context(), req.Goal, req.Level)

	c.JSON(http.StatusOK, gin.H{
		"ok":        true,
		"source":    source,
		"workout":   doc.Workout,
		"nutrition": doc.Nutrition,
	})
}

func objectIDOrNil(id primitive.ObjectID) interface{} {
	if id == primitive.NilObjectID {
		return nil
	}
	return id.Hex()
}
