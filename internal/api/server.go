package api

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-advanced-admin/admin"
	admingorm "github.com/go-advanced-admin/orm-gorm"
	adminecho "github.com/go-advanced-admin/web-echo"
	"golang.org/x/time/rate"

	"leadcrm/internal/api/validator"
	"leadcrm/internal/cache"
	"leadcrm/internal/config"
	"leadcrm/internal/models"
	"leadcrm/internal/permissions"
	"leadcrm/internal/routes"
	"leadcrm/internal/services"
	taskrate "leadcrm/internal/tasks/rate"

	console "leadcrm/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Server struct {
	echo     *echo.Echo
	config   *config.Config
	db       *gorm.DB
	sessions *cache.SessionCache
	s3       *services.S3Service
}

var log = console.New("API-Server")

// NewServer @title LeadCRM API
// @version 1.0
// @description This is the API documentation for the LeadCRM project.
// @host localhost:8080
// @BasePath /api/v1
func NewServer(cfg *config.Config, db *gorm.DB, rdb *goredis.Client, sessions *cache.SessionCache, s3 *services.S3Service) *Server {
	e := echo.New()

	// Create custom validator
	e.Validator = validator.NewValidator()

	// Configure middleware
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPut, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization, echo.HeaderContentLength},
	}))
	e.Use(middleware.RequestID())
	e.Use(middleware.Secure())
	e.Use(middleware.TimeoutWithConfig(middleware.TimeoutConfig{
		Timeout: 30 * time.Second,
	}))
	e.Use(middleware.GzipWithConfig(middleware.GzipConfig{
		Level: 5,
	}))
	e.Use(middleware.BodyLimit("25M"))

	// Custom error handler
	e.HTTPErrorHandler = customHTTPErrorHandler

	// Create server instance
	s := &Server{
		echo:     e,
		config:   cfg,
		db:       db,
		sessions: sessions,
		s3:       s3,
	}

	if err := models.SeedCountries(db); err != nil {
		log.Warn("Warning: Failed to seed countries: %v", err)
	} else {
		log.Success("Successfully seeded countries")
	}

	if err := models.CreateSuperAdminFromEnv(db); err != nil {
		log.Warn("Warning: Failed to create super admin: %v", err)
	} else {
		log.Success("Successfully created super admin")
	}

	e.Use(middleware.RateLimiter(middleware.NewRateLimiterMemoryStore(rate.Limit(20))))

	// Create a new GORM integrator
	gormIntegrator := admingorm.NewIntegrator(db)
	// Create a new Echo integrator
	echoIntegrator := adminecho.NewIntegrator(e.Group(""))

	// The admin panel is gated by the admin section of the permission
	// model, not by a role check. Panel access requires edit because
	// the panel exposes mutations on every registered model.
	permissionChecker := func(
		request admin.PermissionRequest, ctx interface{},
	) (bool, error) {
		ec, ok := ctx.(echo.Context)
		if !ok {
			return false, nil
		}
		p, ok := ec.Get("principal").(*permissions.Principal)
		if !ok || p == nil {
			return false, nil
		}
		return p.Has(permissions.SectionAdmin, permissions.ActionEdit), nil
	}

	// Create a new admin panel
	adminPanel, err := admin.NewPanel(
		gormIntegrator, echoIntegrator, permissionChecker, nil,
	)
	if err != nil {
		err := log.Error("Failed to create admin panel", err)
		if err != nil {
			return nil
		}
	}

	// Register the admin panel
	_, err = adminPanel.RegisterApp(
		"LeadCRM",
		"LeadCRM Admin Panel",
		nil,
	)
	if err != nil {
		err := log.Error("Failed to create admin panel", err)
		if err != nil {
			return nil
		}
	}

	loginLimiter := taskrate.NewSlidingWindowLimiter(rdb, taskrate.Config{
		Name:  "login",
		Limit: taskrate.Limit{Window: time.Minute, Max: 10},
	})
	routes.SetupAuthRoutes(s.echo, s.db, s.config, s.sessions, loginLimiter)

	// Register routes
	s.registerRoutes()
	return s
}

func (s *Server) Start() error {
	return s.echo.Start(fmt.Sprintf("%s:%d", s.config.Server.Host, s.config.Server.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// Health check endpoint
func (s *Server) healthCheck(c echo.Context) error {
	hits, misses := s.sessions.Stats()
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":  "healthy",
		"version": "1.0.0",
		"time":    time.Now().Format(time.RFC3339),
		"cache": map[string]int64{
			"hits":   hits,
			"misses": misses,
		},
	})
}

// Custom HTTP error handler
func customHTTPErrorHandler(err error, c echo.Context) {
	var (
		code    = http.StatusInternalServerError
		message interface{}
	)

	switch e := err.(type) {
	case *echo.HTTPError:
		code = e.Code
		message = e.Message
	case validator.ValidationErrors:
		code = http.StatusBadRequest
		message = formatValidationErrors(e)
	default:
		message = http.StatusText(code)
	}

	if !c.Response().Committed {
		if c.Request().Method == http.MethodHead {
			err = c.NoContent(code)
		} else {
			err = c.JSON(code, map[string]interface{}{
				"error": message,
				"code":  code,
				"time":  time.Now().Format(time.RFC3339),
			})
		}
		if err != nil {
			c.Echo().Logger.Error(err)
		}
	}
}

// roleHint lists the accepted role values for validation messages,
// derived from the role constants so the hint cannot drift from what
// the validator accepts.
var roleHint = func() string {
	names := make([]string, len(permissions.Roles))
	for i, r := range permissions.Roles {
		names[i] = string(r)
	}
	return strings.Join(names, ", ")
}()

// formatValidationErrors formats validation errors into a map
func formatValidationErrors(errors validator.ValidationErrors) map[string]string {
	errMap := make(map[string]string)
	for _, err := range errors {
		field := err.Field()
		tag := err.Tag()
		param := err.Param()

		switch tag {
		case "required":
			errMap[field] = fmt.Sprintf("%s is required", field)
		case "email":
			errMap[field] = fmt.Sprintf("%s must be a valid email", field)
		case "min":
			errMap[field] = fmt.Sprintf("%s must be at least %s", field, param)
		case "max":
			errMap[field] = fmt.Sprintf("%s must be at most %s", field, param)
		case "uuid":
			errMap[field] = fmt.Sprintf("%s must be a valid UUID", field)
		case "oneof":
			errMap[field] = fmt.Sprintf("%s must be one of [%s]", field, param)
		case "gt":
			errMap[field] = fmt.Sprintf("%s must be greater than %s", field, param)
		case "len":
			errMap[field] = fmt.Sprintf("%s must be exactly %s characters", field, param)
		case "crm_role":
			errMap[field] = fmt.Sprintf("%s must be one of: %s", field, roleHint)
		case "perm_scope":
			errMap[field] = fmt.Sprintf("%s must be one of: self, team, all", field)
		case "lead_status":
			errMap[field] = fmt.Sprintf("%s must be one of: NEW, CONTACTED, QUALIFIED, WON, LOST", field)
		default:
			errMap[field] = fmt.Sprintf("%s failed validation: %s", field, tag)
		}
	}
	return errMap
}
