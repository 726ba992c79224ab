package routes

import (
	"leadcrm/internal/api/middleware"
	"leadcrm/internal/cache"
	"leadcrm/internal/config"
	"leadcrm/internal/handlers"
	"leadcrm/internal/tasks/rate"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

func SetupAuthRoutes(e *echo.Echo, db *gorm.DB, cfg *config.Config, sessions *cache.SessionCache, loginLimiter *rate.SlidingWindowLimiter) {
	authHandler := handlers.NewAuthHandler(db, sessions, loginLimiter)

	base := e.Group("/api/v1")

	auth := base.Group("/auth")

	// Public routes (no auth required)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.RefreshToken)
	auth.POST("/password-reset", authHandler.RequestPasswordReset)
	auth.POST("/password-reset/verify", authHandler.VerifyResetCode)

	// Protected auth routes (require authentication)
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret, sessions)
	session := auth.Group("")
	session.Use(authMiddleware.Middleware())
	session.POST("/logout", authHandler.Logout)
	session.GET("/me", authHandler.GetMe)
}
