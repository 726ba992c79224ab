package api

import (
	"net/http"

	"leadcrm/internal/api/middleware"
	"leadcrm/internal/api/registry"
	"leadcrm/internal/routes"

	_ "leadcrm/docs/swagger"

	"github.com/labstack/echo/v4"
	echoSwagger "github.com/swaggo/echo-swagger"
)

func (s *Server) registerRoutes() {
	s.echo.GET("/", func(c echo.Context) error {
		return c.String(http.StatusOK, "LeadCRM API")
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

	auth := middleware.NewAuthMiddleware(s.config.JWT.Secret, s.sessions)

	// Page navigations go through the route gate; it redirects
	// anonymous visitors to sign-in and denied ones to the access
	// denied page. API routes are excluded and enforce authorization
	// per handler.
	s.echo.Use(auth.Optional())
	s.echo.Use(middleware.RouteGate())

	// API v1 group
	api := s.echo.Group("/api/v1")
	api.Use(auth.Middleware())

	// Register CRUD routes for all models
	registry.RegisterCRUDRoutes(api, s.db)

	routes.SetupUploadRoutes(api, s.db, s.s3)
}
