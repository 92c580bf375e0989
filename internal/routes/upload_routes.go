package routes

import (
	"assse/internal/config"
	"assse/internal/handlers"
	"assse/internal/utils/logger"

	"github.com/labstack/echo/v4"
)

func SetupUploadRoutes(api *echo.Group, cfg *config.Config) {
	log := logger.New("upload_routes")

	uploadHandler := handlers.NewUploadHandler()

	fileGroup := api.Group("/files")

	fileGroup.POST("/frames/:id", uploadHandler.UploadFrameDocument)
	fileGroup.POST("/notices/:id", uploadHandler.UploadNoticeDocument)

	log.Success("Upload routes initialized successfully")
}
