package middleware

import (
	"net/http"

	"leadcrm/internal/permissions"

	"github.com/labstack/echo/v4"
)

// ActionForMethod maps an HTTP method onto the permission action the
// generic CRUD routes require.
func ActionForMethod(method string) (permissions.Action, bool) {
	switch method {
	case http.MethodGet, http.MethodHead:
		return permissions.ActionView, true
	case http.MethodPost:
		return permissions.ActionCreate, true
	case http.MethodPut, http.MethodPatch:
		return permissions.ActionEdit, true
	case http.MethodDelete:
		return permissions.ActionDelete, true
	default:
		return "", false
	}
}

// RequirePermission gates a route group on a module/action pair. This
// is the coarse check; row-level scope is enforced by the controllers
// against the concrete resource.
func RequirePermission(module string, action permissions.Action) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			p := GetPrincipal(c)
			if p == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "No autenticado")
			}

			if dec := permissions.Check(p, module, action, nil); !dec.Allowed {
				return echo.NewHTTPError(http.StatusForbidden, dec.Reason)
			}
			return next(c)
		}
	}
}

// RequireModule gates a route group on a module, deriving the action
// from the HTTP method.
func RequireModule(module string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			action, ok := ActionForMethod(c.Request().Method)
			if !ok {
				return echo.NewHTTPError(http.StatusForbidden, "Invalid request method")
			}
			return RequirePermission(module, action)(next)(c)
		}
	}
}
