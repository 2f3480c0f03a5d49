package api

import (
	"errors"
	"net/http"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssignmentHandler serves coach links and plan assignments for admins and
// coaches.
type AssignmentHandler struct {
	assignmentService service.AssignmentService
}

// NewAssignmentHandler creates a new AssignmentHandler.
func NewAssignmentHandler(assignmentService service.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{assignmentService: assignmentService}
}

// --- DTOs ---

// SetCoachRequest assigns or removes a client's coach. An empty coachId
// removes the link.
type SetCoachRequest struct {
	CoachID string `json:"coachId"`
}

// AssignPlanRequest links a plan to a user.
type AssignPlanRequest struct {
	PlanID string `json:"planId" binding:"required"`
	Kind   string `json:"kind" binding:"required,oneof=workout nutrition"`
}

// PlanResponse is a plan header DTO.
type PlanResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	CreatedBy string `json:"createdBy"`
	CreatedAt string `json:"createdAt"`
}

// AssignmentListResponse groups assigned plan headers by kind.
type AssignmentListResponse struct {
	WorkoutPlans   []PlanResponse `json:"workoutPlans"`
	NutritionPlans []PlanResponse `json:"nutritionPlans"`
}

// MapPlanToResponse converts a domain.Plan to its DTO.
func MapPlanToResponse(p *domain.Plan) PlanResponse {
	return PlanResponse{
		ID:        p.ID.Hex(),
		Title:     p.Title,
		Notes:     p.Notes,
		CreatedBy: p.CreatedBy.Hex(),
		CreatedAt: p.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// MapPlansToResponse converts a slice of plans to DTOs.
func MapPlansToResponse(plans []domain.Plan) []PlanResponse {
	responses := make([]PlanResponse, len(plans))
	for i := range plans {
		responses[i] = MapPlanToResponse(&plans[i])
	}
	return responses
}

func mapAssignmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNotAuthorized), errors.Is(err, service.ErrClientNotManaged):
		abortWithError(c, http.StatusForbidden, err.Error())
	case errors.Is(err, service.ErrPlanNotFound), errors.Is(err, service.ErrAccountNotFound):
		abortWithError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrNotACoach):
		abortWithError(c, http.StatusBadRequest, err.Error())
	default:
		abortWithError(c, http.StatusInternalServerError, "Operation failed.")
	}
}

// --- Handler Methods ---

// SetCoach replaces the client's coach link (admin only route group).
func (h *AssignmentHandler) SetCoach(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	var req SetCoachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}

	var coachID *primitive.ObjectID
	if req.CoachID != "" {
		id, err := primitive.ObjectIDFromHex(req.CoachID)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "Invalid coach ID format.")
			return
		}
		coachID = &id
	}

	effective, err := h.assignmentService.SetCoach(c.Request.Context(), principal, clientID, coachID)
	if err != nil {
		mapAssignmentError(c, err)
		return
	}

	if effective == nil {
		c.JSON(http.StatusOK, gin.H{"coachId": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coachId": effective.Hex()})
}

// GetCoach returns the client's current coach, null when unassigned.
func (h *AssignmentHandler) GetCoach(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	clientID, err := primitive.ObjectIDFromHex(c.Param("clientId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid client ID format.")
		return
	}

	coachID, err := h.assignmentService.GetCoach(c.Request.Context(), principal, clientID)
	if err != nil {
		mapAssignmentError(c, err)
		return
	}

	if coachID == nil {
		c.JSON(http.StatusOK, gin.H{"coachId": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"coachId": coachID.Hex()})
}

// AssignPlan links a plan to the user in the path. Idempotent.
func (h *AssignmentHandler) AssignPlan(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	var req AssignPlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Validation error: "+err.Error())
		return
	}
	planID, err := primitive.ObjectIDFromHex(req.PlanID)
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	err = h.assignmentService.AssignPlan(c.Request.Context(), principal, userID, planID, domain.PlanKind(req.Kind))
	if err != nil {
		mapAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// UnassignPlan removes a plan link; removing a missing link succeeds.
func (h *AssignmentHandler) UnassignPlan(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}
	planID, err := primitive.ObjectIDFromHex(c.Param("planId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid plan ID format.")
		return
	}

	kind := domain.PlanKind(c.Param("kind"))
	if kind != domain.PlanKindWorkout && kind != domain.PlanKindNutrition {
		abortWithError(c, http.StatusBadRequest, "Plan kind must be workout or nutrition.")
		return
	}

	err = h.assignmentService.UnassignPlan(c.Request.Context(), principal, userID, planID, kind)
	if err != nil {
		mapAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// ListUserAssignments returns a user's assigned plans grouped by kind.
func (h *AssignmentHandler) ListUserAssignments(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	userID, err := primitive.ObjectIDFromHex(c.Param("userId"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid user ID format.")
		return
	}

	list, err := h.assignmentService.ListAssignments(c.Request.Context(), principal, userID)
	if err != nil {
		mapAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, AssignmentListResponse{
		WorkoutPlans:   MapPlansToResponse(list.WorkoutPlans),
		NutritionPlans: MapPlansToResponse(list.NutritionPlans),
	})
}

// MyAssignments returns the caller's own assigned plans (the dashboard view).
func (h *AssignmentHandler) MyAssignments(c *gin.Context) {
	principal, err := getPrincipalFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusInternalServerError, "Unable to identify caller.")
		return
	}

	list, err := h.assignmentService.ListAssignments(c.Request.Context(), principal, principal.ID)
	if err != nil {
		mapAssignmentError(c, err)
		return
	}

	c.JSON(http.StatusOK, AssignmentListResponse{
		WorkoutPlans:   MapPlansToResponse(list.WorkoutPlans),
		NutritionPlans: MapPlansToResponse(list.NutritionPlans),
	})
}
