package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"leadcrm/internal/permissions"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPublicPath(t *testing.T) {
	public := []string{"/", "/health", "/acceso-denegado", "/auth", "/auth/iniciar-sesion", "/swagger/index.html"}
	for _, path := range public {
		assert.True(t, IsPublicPath(path), path)
	}

	private := []string{"/leads", "/admin/roles", "/authority", "/healthcheck"}
	for _, path := range private {
		assert.False(t, IsPublicPath(path), path)
	}
}

func TestResolveRouteKeyLongestPrefixWins(t *testing.T) {
	cases := map[string]string{
		"/leads":                   "leads",
		"/leads/123":               "leads",
		"/admin":                   "admin",
		"/admin/anything":          "admin",
		"/admin/roles":             "admin.roles",
		"/admin/roles/42/edit":     "admin.roles",
		"/admin/products":          "admin.products",
		"/admin/leads-settings":    "admin.leads-settings",
		"/admin/leads-settings/x":  "admin.leads-settings",
		"/admin/users":             "users",
		"/reports":                 "reports",
		"/reservations/9/confirm":  "reservations",
	}
	for path, want := range cases {
		key, ok := ResolveRouteKey(path)
		require.True(t, ok, path)
		assert.Equal(t, want, key, path)
	}
}

func TestResolveRouteKeyNoMatch(t *testing.T) {
	for _, path := range []string{"/unknown", "/leadsettings", "/adminpanel"} {
		_, ok := ResolveRouteKey(path)
		assert.False(t, ok, path)
	}
}

func gateRequest(t *testing.T, path string, p *permissions.Principal) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		c.Set("principal", p)
	}

	handler := RouteGate()(func(c echo.Context) error {
		return c.String(http.StatusOK, "page")
	})
	require.NoError(t, handler(c))
	return rec
}

func TestRouteGateRedirectsAnonymousToSignIn(t *testing.T) {
	rec := gateRequest(t, "/leads", nil)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, signInPath, rec.Header().Get(echo.HeaderLocation))
}

func TestRouteGateRedirectsDeniedToAccessDenied(t *testing.T) {
	p := &permissions.Principal{UserID: "u1", Role: permissions.RoleUser, Set: &permissions.Set{}}
	rec := gateRequest(t, "/admin/roles", p)
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, accessDeniedPath, rec.Header().Get(echo.HeaderLocation))
}

func TestRouteGateForwardsAllowed(t *testing.T) {
	p := &permissions.Principal{UserID: "u1", Role: permissions.RoleSuperAdmin}
	rec := gateRequest(t, "/admin/roles", p)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouteGateSkipsAPIAndPublicPaths(t *testing.T) {
	// No principal set, yet both pass straight through.
	rec := gateRequest(t, "/api/v1/leads", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = gateRequest(t, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRouteGateParentViewFallbackAppliesToPages(t *testing.T) {
	set := &permissions.Set{Sections: map[string]permissions.Section{
		"admin": {View: permissions.ScopeAll},
	}}
	p := &permissions.Principal{UserID: "u1", Role: permissions.RoleManager, Set: set}

	// Blanket admin view reads through to the roles page.
	rec := gateRequest(t, "/admin/roles", p)
	assert.Equal(t, http.StatusOK, rec.Code)
}
