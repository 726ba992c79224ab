package registry

import (
	"github.com/labstack/echo/v4"

	"leadcrm/internal/api/controllers"
	"leadcrm/internal/models"
	"leadcrm/internal/permissions"
	"leadcrm/internal/services"

	"gorm.io/gorm"
)

// RegisterCRUDRoutes registers the CRUD surface for every CRM model.
// The controllers re-check permissions per request against the
// session principal, so no per-group middleware is repeated here.
func RegisterCRUDRoutes(g *echo.Group, db *gorm.DB) {
	// Leads
	leadService := services.NewBaseService(db, models.Lead{})
	leadController := controllers.NewBaseController(leadService, permissions.SectionLeads)
	leadGroup := g.Group("/leads")
	leadGroup.GET("", leadController.List)
	leadGroup.GET("/:id", leadController.Get)
	leadGroup.POST("", leadController.Create)
	leadGroup.PUT("/:id", leadController.Update)
	leadGroup.DELETE("/:id", leadController.Delete)

	// Tasks
	taskService := services.NewBaseService(db, models.Task{})
	taskController := controllers.NewBaseController(taskService, permissions.SectionTasks)
	taskGroup := g.Group("/tasks")
	taskGroup.GET("", taskController.List)
	taskGroup.GET("/:id", taskController.Get)
	taskGroup.POST("", taskController.Create)
	taskGroup.PUT("/:id", taskController.Update)
	taskGroup.DELETE("/:id", taskController.Delete)

	// Quotations
	quotationService := services.NewBaseService(db, models.Quotation{})
	quotationController := controllers.NewBaseController(quotationService, permissions.SectionQuotations)
	quotationGroup := g.Group("/quotations")
	quotationGroup.GET("", quotationController.List)
	quotationGroup.GET("/:id", quotationController.Get)
	quotationGroup.POST("", quotationController.Create)
	quotationGroup.PUT("/:id", quotationController.Update)
	quotationGroup.DELETE("/:id", quotationController.Delete)

	// Reservations
	reservationService := services.NewBaseService(db, models.Reservation{})
	reservationController := controllers.NewBaseController(reservationService, permissions.SectionReservations)
	reservationGroup := g.Group("/reservations")
	reservationGroup.GET("", reservationController.List)
	reservationGroup.GET("/:id", reservationController.Get)
	reservationGroup.POST("", reservationController.Create)
	reservationGroup.PUT("/:id", reservationController.Update)
	reservationGroup.DELETE("/:id", reservationController.Delete)

	// Countries are admin-managed reference data.
	countryService := services.NewBaseService(db, models.Country{})
	countryController := controllers.NewBaseController(countryService, permissions.SectionAdmin)
	countryGroup := g.Group("/countries")
	countryGroup.GET("", countryController.List)
	countryGroup.GET("/:id", countryController.Get)
	countryGroup.POST("", countryController.Create)
	countryGroup.PUT("/:id", countryController.Update)
	countryGroup.DELETE("/:id", countryController.Delete)

	// Users
	userService := services.NewBaseService(db, models.User{})
	userController := controllers.NewBaseController(userService, permissions.SectionUsers)
	userGroup := g.Group("/users")
	userGroup.GET("", userController.List)
	userGroup.GET("/:id", userController.Get)
	userGroup.POST("", userController.Create)
	userGroup.PUT("/:id", userController.Update)
	userGroup.DELETE("/:id", userController.Delete)

	// Per-user permission administration
	permController := controllers.NewPermissionsController(db)
	userGroup.GET("/:id/permissions", permController.Get)
	userGroup.PUT("/:id/permissions", permController.Update)
	userGroup.POST("/:id/permissions/reset", permController.Reset)
}
