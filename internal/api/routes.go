package api

import (
	"net/http"

	"assse/internal/api/controllers"
	"assse/internal/api/middleware"
	"assse/internal/api/registry"
	"assse/internal/models"
	"assse/internal/routes"
	"assse/internal/services"

	_ "assse/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "ASSSE Survey Portal API")
	})
	// Health check
	// @Summary Health check
	// @Description Check if the server is running
	// @Accept json
	// @Produce json
	// @Success 200 {object} map[string]string "OK"
	// @Router /health [get]
	s.echo.GET("/health", s.healthCheck)
	s.echo.GET("/swagger/*", echoSwagger.WrapHandler)

	// API v1 group
	api := s.echo.Group("/api/v1")
	auth := middleware.NewAuthMiddleware(s.config.JWT.Secret)
	api.Use(auth.Middleware())

	// Stores and domain services
	workflowStore := services.NewGormWorkflowStore(s.db)
	rbacStore := services.NewGormRBACStore(s.db)
	commentStore := services.NewGormCommentStore(s.db)
	surveyStore := services.NewGormSurveyStore(s.db)
	assignmentStore := services.NewGormAssignmentStore(s.db)
	enterpriseStore := services.NewGormEnterpriseStore(s.db)

	workflowService := services.NewWorkflowService(workflowStore, rbacStore)
	menuService := services.NewMenuService(rbacStore, rbacStore, s.config.MockMode)
	policyService := services.NewPolicyService(rbacStore, rbacStore)
	scrutinyService := services.NewScrutinyService(commentStore)
	surveyService := services.NewSurveyService(surveyStore, surveyStore, scrutinyService)
	assignmentService := services.NewAssignmentService(assignmentStore, enterpriseStore)

	// Navigation
	controllers.NewMenuController(menuService).RegisterRoutes(api)

	// Approval workflow definitions, admin only
	workflowGroup := api.Group("/workflows", middleware.RequireRole(models.RoleCodeAdmin))
	controllers.NewWorkflowController(workflowService).RegisterRoutes(workflowGroup)

	// Survey scrutiny lifecycle
	surveyGroup := api.Group("/surveys")
	controllers.NewSurveyController(surveyService, workflowService, scrutinyService).RegisterRoutes(surveyGroup)

	// Enterprise-survey assignments and bulk operations
	assignmentGroup := api.Group("/enterprise-surveys")
	controllers.NewAssignmentController(assignmentService).RegisterRoutes(assignmentGroup)

	// Master-data CRUD
	registry.RegisterCRUDRoutes(api, s.db, policyService)

	routes.SetupUploadRoutes(api, s.config)
}
