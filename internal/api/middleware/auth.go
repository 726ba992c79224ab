package middleware

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"leadcrm/internal/cache"
	"leadcrm/internal/db"
	"leadcrm/internal/models"
	"leadcrm/internal/permissions"
	"leadcrm/internal/utils/logger"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

var log = logger.New("auth_middleware")

type AuthMiddleware struct {
	jwtSecret string
	sessions  *cache.SessionCache
}

type Claims struct {
	UserID    string `json:"user_id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	CountryID string `json:"country_id,omitempty"`
	jwt.RegisteredClaims
}

func NewAuthMiddleware(jwtSecret string, sessions *cache.SessionCache) *AuthMiddleware {
	return &AuthMiddleware{
		jwtSecret: jwtSecret,
		sessions:  sessions,
	}
}

func (m *AuthMiddleware) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing authorization header")
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header format")
			}

			if err := m.validateJWT(c, tokenParts[1]); err != nil {
				return err
			}
			return next(c)
		}
	}
}

// Optional populates the session context when a valid token is
// present but never rejects the request. Page navigation uses it so
// the route gate can decide between sign-in redirect and access
// denied.
func (m *AuthMiddleware) Optional() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) == 2 && tokenParts[0] == "Bearer" {
				// A bad token leaves the request anonymous.
				_ = m.validateJWT(c, tokenParts[1])
			}
			return next(c)
		}
	}
}

func (m *AuthMiddleware) validateJWT(c echo.Context, tokenString string) error {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.jwtSecret), nil
	})

	if err != nil || !token.Valid {
		log.Error("Error parsing JWT token: %v", err)
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
	}

	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return echo.NewHTTPError(http.StatusUnauthorized, "Token has expired")
	}

	// The token must correspond to a live auth transaction, so that
	// sign-out and forced revocation take effect immediately.
	transaction := &models.AuthTransaction{}
	if err := db.DB.Where("user_id = ? AND token = ?", claims.UserID, tokenString).
		First(transaction).Error; err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Auth transaction not found")
	}

	user, err := m.resolveUser(c, claims.UserID)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}

	if !user.IsActive || user.IsDeleted {
		return echo.NewHTTPError(http.StatusUnauthorized, "User is disabled")
	}

	c.Set("userID", user.ID)
	c.Set("email", user.Email)
	c.Set("role", string(user.Role))
	c.Set("user", user)
	c.Set("principal", user.Principal())

	return nil
}

// resolveUser loads the session user. The cache is consulted only for
// reads; every mutating request re-reads the authoritative row, since
// the cache is a latency optimization and not a trust boundary.
func (m *AuthMiddleware) resolveUser(c echo.Context, userID string) (*models.User, error) {
	ctx := c.Request().Context()

	if m.sessions != nil && c.Request().Method == http.MethodGet {
		if user, ok := m.sessions.Get(ctx, userID); ok {
			return user, nil
		}
	}

	user, err := models.GetUserWithPermissions(db.DB, userID)
	if err != nil {
		return nil, err
	}

	if m.sessions != nil {
		if err := m.sessions.Put(ctx, user); err != nil {
			log.Warn("failed to refresh session cache for %s: %v", userID, err)
		}
	}
	return user, nil
}

// GetUserID Helper functions to get values from context
func GetUserID(c echo.Context) string {
	if id, ok := c.Get("userID").(string); ok {
		return id
	}
	return ""
}

func GetUserRole(c echo.Context) string {
	if role, ok := c.Get("role").(string); ok {
		return role
	}
	return ""
}

// GetPrincipal returns the resolved authorization context, or nil for
// an unauthenticated request.
func GetPrincipal(c echo.Context) *permissions.Principal {
	if p, ok := c.Get("principal").(*permissions.Principal); ok {
		return p
	}
	return nil
}

// GetUser returns the session user loaded by the auth middleware.
func GetUser(c echo.Context) *models.User {
	if u, ok := c.Get("user").(*models.User); ok {
		return u
	}
	return nil
}
