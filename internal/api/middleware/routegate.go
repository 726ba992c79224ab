package middleware

import (
	"net/http"
	"strings"

	"leadcrm/internal/permissions"

	"github.com/labstack/echo/v4"
)

const (
	signInPath       = "/auth/iniciar-sesion"
	accessDeniedPath = "/acceso-denegado"
)

// publicExact and publicPrefixes form the allow-list of paths the
// route gate never touches.
var publicExact = map[string]bool{
	"/":              true,
	"/health":        true,
	accessDeniedPath: true,
}

var publicPrefixes = []string{
	"/auth",
	"/swagger",
	"/static",
}

// protectedRoutes maps a page path prefix onto the permission key the
// route gate evaluates. Every admin subroute is enumerated explicitly,
// including /admin/leads-settings; keys are never synthesized from
// path segments at runtime.
var protectedRoutes = map[string]string{
	"/leads":                permissions.SectionLeads,
	"/tasks":                permissions.SectionTasks,
	"/quotations":           permissions.SectionQuotations,
	"/reservations":         permissions.SectionReservations,
	"/reports":              permissions.SectionReports,
	"/users":                permissions.SectionUsers,
	"/admin":                permissions.SectionAdmin,
	"/admin/roles":          permissions.SectionAdmin + "." + permissions.SubsectionRoles,
	"/admin/products":       permissions.SectionAdmin + "." + permissions.SubsectionProducts,
	"/admin/leads-settings": permissions.SectionAdmin + "." + permissions.SubsectionLeadSettings,
	"/admin/users":          permissions.SectionUsers,
}

// IsPublicPath reports whether the gate must let the path through
// without any permission check.
func IsPublicPath(path string) bool {
	if publicExact[path] {
		return true
	}
	for _, prefix := range publicPrefixes {
		if matchesPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// ResolveRouteKey finds the permission key for a protected page path
// by longest-prefix match over the static route table. Ties break in
// favor of the longest prefix string, so /admin/roles beats /admin.
func ResolveRouteKey(path string) (string, bool) {
	best := ""
	key := ""
	for prefix, permKey := range protectedRoutes {
		if matchesPrefix(path, prefix) && len(prefix) > len(best) {
			best = prefix
			key = permKey
		}
	}
	return key, best != ""
}

// matchesPrefix is a segment-aware prefix test: /leads matches /leads
// and /leads/123 but not /leadsettings.
func matchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// RouteGate guards page navigations. API routes are excluded from the
// gate entirely; each handler enforces authorization itself.
func RouteGate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path

			if strings.HasPrefix(path, "/api/") || IsPublicPath(path) {
				return next(c)
			}

			key, ok := ResolveRouteKey(path)
			if !ok {
				// Unknown pages are not gated; they 404 downstream.
				return next(c)
			}

			p := GetPrincipal(c)
			if p == nil {
				return c.Redirect(http.StatusFound, signInPath)
			}

			if dec := permissions.Check(p, key, permissions.ActionView, nil); !dec.Allowed {
				return c.Redirect(http.StatusFound, accessDeniedPath)
			}
			return next(c)
		}
	}
}
