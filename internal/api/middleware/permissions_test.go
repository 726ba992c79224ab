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

func TestActionForMethod(t *testing.T) {
	cases := map[string]permissions.Action{
		http.MethodGet:    permissions.ActionView,
		http.MethodHead:   permissions.ActionView,
		http.MethodPost:   permissions.ActionCreate,
		http.MethodPut:    permissions.ActionEdit,
		http.MethodPatch:  permissions.ActionEdit,
		http.MethodDelete: permissions.ActionDelete,
	}
	for method, want := range cases {
		action, ok := ActionForMethod(method)
		require.True(t, ok, method)
		assert.Equal(t, want, action, method)
	}

	_, ok := ActionForMethod(http.MethodOptions)
	assert.False(t, ok)
}

func permRequest(t *testing.T, method string, p *permissions.Principal, mw echo.MiddlewareFunc) error {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/api/v1/leads", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if p != nil {
		c.Set("principal", p)
	}
	return mw(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})(c)
}

func TestRequirePermissionUnauthenticated(t *testing.T) {
	err := permRequest(t, http.MethodGet, nil, RequirePermission("leads", permissions.ActionView))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusUnauthorized, httpErr.Code)
}

func TestRequirePermissionDeniedWithReason(t *testing.T) {
	p := &permissions.Principal{UserID: "u1", Role: permissions.RoleUser, Set: &permissions.Set{}}
	err := permRequest(t, http.MethodGet, p, RequirePermission("leads", permissions.ActionView))

	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
	assert.Equal(t, "No tienes permiso para view en leads", httpErr.Message)
}

func TestRequirePermissionAllowed(t *testing.T) {
	set := &permissions.Set{Sections: map[string]permissions.Section{
		"leads": {View: permissions.ScopeSelf},
	}}
	p := &permissions.Principal{UserID: "u1", Role: permissions.RoleSeller, Set: set}

	err := permRequest(t, http.MethodGet, p, RequirePermission("leads", permissions.ActionView))
	assert.NoError(t, err)
}

func TestRequireModuleDerivesActionFromMethod(t *testing.T) {
	set := &permissions.Set{Sections: map[string]permissions.Section{
		"leads": {View: permissions.ScopeTeam},
	}}
	p := &permissions.Principal{UserID: "u1", Role: permissions.RoleManager, Set: set}

	assert.NoError(t, permRequest(t, http.MethodGet, p, RequireModule("leads")))

	err := permRequest(t, http.MethodDelete, p, RequireModule("leads"))
	var httpErr *echo.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusForbidden, httpErr.Code)
}
