package routes

import (
	"leadcrm/internal/api/middleware"
	"leadcrm/internal/handlers"
	"leadcrm/internal/permissions"
	"leadcrm/internal/services"
	"leadcrm/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// SetupUploadRoutes mounts attachment upload and deletion under the
// authenticated API group. Uploads hang off leads, so the leads module
// gates them.
func SetupUploadRoutes(api *echo.Group, db *gorm.DB, s3 *services.S3Service) {
	log := logger.New("upload_routes")

	uploadHandler := handlers.NewUploadHandler(db, s3)

	fileGroup := api.Group("/files")
	fileGroup.POST("/upload", uploadHandler.Upload,
		middleware.RequirePermission(permissions.SectionLeads, permissions.ActionEdit))
	fileGroup.DELETE("/:id", uploadHandler.Delete,
		middleware.RequirePermission(permissions.SectionLeads, permissions.ActionDelete))

	log.Success("Upload routes initialized successfully")
}
