package api

import (
	"net/http"

	"ironclub/gym-portal/internal/domain"
	"ironclub/gym-portal/internal/service"

	"github.com/gin-gonic/gin"
)

// SetupRoutes wires every endpoint. Gate order on protected routes is the
// entitlement contract: missing session, then unprovisioned account, then
// blocked, then expired, then wrong role.
func SetupRoutes(
	router *gin.Engine,
	jwtSecret string,
	resolverService service.ResolverService,
	assignmentService service.AssignmentService,
	planService service.PlanService,
	generationService service.GenerationService,
) {
	accountHandler := NewAccountHandler(resolverService)
	assignmentHandler := NewAssignmentHandler(assignmentService)
	planHandler := NewPlanHandler(planService)
	generationHandler := NewGenerationHandler(generationService)

	authMiddleware := AuthMiddleware(jwtSecret)
	principalMiddleware := PrincipalMiddleware(resolverService)
	entitlementMiddleware := EntitlementMiddleware(resolverService)

	router.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	apiV1 := router.Group("/api/v1")

	// /me is reachable by blocked or expired accounts so they can see why
	// everything else refuses them.
	resolved := apiV1.Group("")
	resolved.Use(authMiddleware, principalMiddleware)
	{
		resolved.GET("/me", func(c *gin.Context) {
			principal, err := getPrincipalFromContext(c)
			if err != nil {
				abortWithError(c, http.StatusInternalServerError, "Failed to get principal.")
				return
			}
			entitled := resolverService.CheckEntitlement(principal) == nil
			c.JSON(http.StatusOK, gin.H{"principal": principal, "entitled": entitled})
		})
	}

	protected := apiV1.Group("")
	protected.Use(authMiddleware, principalMiddleware, entitlementMiddleware)
	{
		// Caller's own assignments (any role).
		protected.GET("/dashboard", assignmentHandler.MyAssignments)

		// Plan library; clients see only what is assigned to them.
		planGroup := protected.Group("/plans")
		{
			planGroup.GET("/workout", planHandler.ListWorkoutPlans)
			planGroup.GET("/workout/:id", planHandler.GetWorkoutPlan)
			planGroup.GET("/nutrition", planHandler.ListNutritionPlans)
			planGroup.GET("/nutrition/:id", planHandler.GetNutritionPlan)
		}

		// Admin-only surface.
		adminGroup := protected.Group("/admin")
		adminGroup.Use(RoleMiddleware(domain.RoleAdmin))
		{
			adminGroup.GET("/accounts", accountHandler.ListAccounts)
			adminGroup.PATCH("/accounts/:id", accountHandler.UpdateAccount)
			adminGroup.PUT("/clients/:clientId/coach", assignmentHandler.SetCoach)
		}

		// Coach-only surface.
		coachGroup := protected.Group("/coach")
		coachGroup.Use(RoleMiddleware(domain.RoleCoach))
		{
			coachGroup.GET("/clients", accountHandler.ListClients)
			coachGroup.PATCH("/clients/:id", accountHandler.UpdateAccount)
		}

		// Shared admin/coach management surface. Per-client scoping is
		// enforced in the services, not re-derived here.
		manageGroup := protected.Group("/manage")
		manageGroup.Use(RoleMiddleware(domain.RoleAdmin, domain.RoleCoach))
		{
			manageGroup.GET("/users/:userId/assignments", assignmentHandler.ListUserAssignments)
			manageGroup.POST("/users/:userId/assignments", assignmentHandler.AssignPlan)
			manageGroup.DELETE("/users/:userId/assignments/:kind/:planId", assignmentHandler.UnassignPlan)
			manageGroup.GET("/clients/:clientId/coach", assignmentHandler.GetCoach)

			manageGroup.POST("/ai/generate", generationHandler.Generate)
			manageGroup.POST("/ai/preview", generationHandler.Preview)
		}
	}
}
