package registry

import (
	"github.com/labstack/echo/v4"

	"assse/internal/api/controllers"
	"assse/internal/api/middleware"
	"assse/internal/models"
	"assse/internal/services"

	"gorm.io/gorm"
)

// RegisterCRUDRoutes wires the master-data CRUD surface. Each group is
// gated on the permission rows of its menu entry, so the same rows that
// shape the navigation tree shape the API.
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB, policy *services.PolicyService) {
	guard := func(path string) echo.MiddlewareFunc {
		return middleware.RequireMenuPermission(policy, models.MenuIDByPath(path))
	}

	// Enterprises
	enterpriseService := services.NewBaseService(db, models.Enterprise{})
	enterpriseController := controllers.NewBaseController(enterpriseService)
	enterpriseGroup := g.Group("/enterprises")
	enterpriseGroup.Use(guard("/masters/enterprises"))
	// @Summary List enterprises
	// @Produce json
	// @Success 200 {object} services.Paged[models.Enterprise]
	// @Router /api/v1/enterprises [get]
	enterpriseController.RegisterRoutes(enterpriseGroup, "")

	// Frames
	frameService := services.NewBaseService(db, models.Frame{})
	frameController := controllers.NewBaseController(frameService)
	frameGroup := g.Group("/frames")
	frameGroup.Use(guard("/frames"))
	frameController.RegisterRoutes(frameGroup, "")

	// Frame allocations
	allocationService := services.NewBaseService(db, models.FrameAllocation{})
	allocationController := controllers.NewBaseController(allocationService)
	allocationGroup := g.Group("/frame-allocations")
	allocationGroup.Use(guard("/frames/allocations"))
	allocationController.RegisterRoutes(allocationGroup, "")

	// Survey templates
	templateService := services.NewBaseService(db, models.SurveyTemplate{})
	templateController := controllers.NewBaseController(templateService)
	templateGroup := g.Group("/survey-templates")
	templateGroup.Use(guard("/masters/templates"))
	templateController.RegisterRoutes(templateGroup, "")

	// Survey schedules with their block structure
	scheduleService := services.NewBaseService(db, models.SurveySchedule{})
	scheduleController := controllers.NewBaseController(scheduleService)
	scheduleGroup := g.Group("/schedules")
	scheduleGroup.Use(guard("/masters/schedules"))
	scheduleController.RegisterRoutes(scheduleGroup, "")

	blockService := services.NewBaseService(db, models.SurveyBlock{})
	blockController := controllers.NewBaseController(blockService)
	blockController.RegisterRoutes(scheduleGroup, "/blocks")

	// Notices
	noticeService := services.NewBaseService(db, models.Notice{})
	noticeController := controllers.NewBaseController(noticeService)
	noticeGroup := g.Group("/notices")
	noticeGroup.Use(guard("/notices"))
	noticeController.RegisterRoutes(noticeGroup, "")

	// Survey responses; compilers write these during data entry
	responseService := services.NewBaseService(db, models.SurveyResponse{})
	responseController := controllers.NewBaseController(responseService)
	responseGroup := g.Group("/survey-responses")
	responseGroup.Use(guard("/surveys/entry"))
	responseController.RegisterRoutes(responseGroup, "")

	// Administration: users, roles, menu items, permission rows
	adminGroup := g.Group("/admin", middleware.RequireRole(models.RoleCodeAdmin))

	userService := services.NewBaseService(db, models.User{})
	userController := controllers.NewBaseController(userService)
	userController.RegisterRoutes(adminGroup, "/users")

	roleService := services.NewBaseService(db, models.Role{})
	roleController := controllers.NewBaseController(roleService)
	roleController.RegisterRoutes(adminGroup, "/roles")

	menuItemService := services.NewBaseService(db, models.MenuItem{})
	menuItemController := controllers.NewBaseController(menuItemService)
	menuItemController.RegisterRoutes(adminGroup, "/menu-items")

	permissionService := services.NewBaseService(db, models.RolePermission{})
	permissionController := controllers.NewBaseController(permissionService)
	permissionController.RegisterRoutes(adminGroup, "/role-permissions")

	// Read-only surfaces written by the event subscribers
	auditService := services.NewBaseService(db, models.AuditLog{})
	auditController := controllers.NewBaseController(auditService)
	auditGroup := g.Group("/audit-logs", middleware.RequireRole(models.RoleCodeAdmin, models.RoleCodeRO))
	auditController.RegisterRoutes(auditGroup, "", "GET")

	notificationService := services.NewBaseService(db, models.Notification{})
	notificationController := controllers.NewBaseController(notificationService)
	notificationController.RegisterRoutes(g, "/notifications", "GET", "PUT")
}
