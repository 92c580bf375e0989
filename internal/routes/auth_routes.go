package routes

import (
	"assse/internal/api/middleware"
	"assse/internal/config"
	"assse/internal/handlers"
	"assse/internal/models"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func SetupAuthRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config) {
	authHandler := handlers.NewAuthHandler(db)

	base := e.Group("/api/v1")

	// Public auth routes group
	auth := base.Group("/auth")
	users := base.Group("/users")

	// Public routes (no auth required)
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)

	// Protected user routes (require authentication)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)
	users.Use(authMiddleware.Middleware())

	users.GET("/me", authHandler.GetMe)
	users.PUT("/me/password", authHandler.ChangePassword)

	// Role assignment is admin territory
	users.PUT("/:id/roles", authHandler.AssignRoles, middleware.RequireRole(models.RoleCodeAdmin))
}
