package controllers

import (
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"leadcrm/internal/api/middleware"
	"leadcrm/internal/permissions"
	"leadcrm/internal/services"

	"github.com/labstack/echo/v4"
)

// BaseController provides generic CRUD operations for any model,
// re-checking permissions server-side on every call. The middleware
// gate is advisory for the UI; the controller is the trust boundary.
type BaseController[T any] struct {
	service services.BaseService[T]
	module  string
}

// NewBaseController creates a new base controller for a permission module
func NewBaseController[T any](service services.BaseService[T], module string) *BaseController[T] {
	return &BaseController[T]{
		service: service,
		module:  module,
	}
}

// parseIncludes parses the include query parameter and returns a slice of relationships to preload
func parseIncludes(ctx echo.Context) []string {
	include := ctx.QueryParam("include")
	if include == "" {
		return nil
	}
	return strings.Split(include, ",")
}

// resourceRef extracts the ownership and tenancy identifiers scoped
// checks run against. Models without an AssignedToID are owned by
// their own row id (the users module). Models carrying neither an
// assignee nor a tenancy column are shared reference data; they get a
// nil ref so only the coarse module check applies.
func resourceRef(entity interface{}) *permissions.ResourceRef {
	v := reflect.ValueOf(entity)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	assignee := v.FieldByName("AssignedToID")
	country := v.FieldByName("CountryID")
	if !assignee.IsValid() && !country.IsValid() {
		return nil
	}

	ref := &permissions.ResourceRef{}
	if assignee.IsValid() && assignee.Kind() == reflect.String {
		ref.OwnerID = assignee.String()
	} else if f := v.FieldByName("ID"); f.IsValid() && f.Kind() == reflect.String {
		ref.OwnerID = f.String()
	}

	if country.IsValid() {
		switch country.Kind() {
		case reflect.String:
			ref.CountryID = country.String()
		case reflect.Ptr:
			if !country.IsNil() && country.Elem().Kind() == reflect.String {
				ref.CountryID = country.Elem().String()
			}
		}
	}
	return ref
}

func deny(dec permissions.Decision) error {
	return echo.NewHTTPError(http.StatusForbidden, dec.Reason)
}

// Create handles creation of new entities
func (c *BaseController[T]) Create(ctx echo.Context) error {
	p := middleware.GetPrincipal(ctx)
	if dec := permissions.Check(p, c.module, permissions.ActionCreate, nil); !dec.Allowed {
		return deny(dec)
	}

	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body "+err.Error())
	}

	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	c.stampOwnership(ctx, &entity)

	includes := parseIncludes(ctx)
	if err := c.service.Create(ctx.Request().Context(), &entity, includes...); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusCreated, entity)
}

// stampOwnership defaults the assignee and tenancy of a new record to
// the creator when the request does not set them.
func (c *BaseController[T]) stampOwnership(ctx echo.Context, entity *T) {
	p := middleware.GetPrincipal(ctx)
	if p == nil {
		return
	}

	v := reflect.ValueOf(entity).Elem()
	if f := v.FieldByName("AssignedToID"); f.IsValid() && f.Kind() == reflect.String && f.String() == "" && f.CanSet() {
		f.SetString(p.UserID)
	}
	if p.CountryID == "" {
		return
	}
	if f := v.FieldByName("CountryID"); f.IsValid() && f.Kind() == reflect.Ptr && f.IsNil() && f.CanSet() {
		country := p.CountryID
		f.Set(reflect.ValueOf(&country))
	}
}

// Get handles retrieval of a single entity
func (c *BaseController[T]) Get(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	includes := parseIncludes(ctx)
	entity, err := c.service.Get(ctx.Request().Context(), id, includes...)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}

	p := middleware.GetPrincipal(ctx)
	if dec := permissions.Check(p, c.module, permissions.ActionView, resourceRef(entity)); !dec.Allowed {
		return deny(dec)
	}

	return ctx.JSON(http.StatusOK, entity)
}

// List handles retrieval of multiple entities with pagination,
// filtering, and scope-narrowed visibility.
func (c *BaseController[T]) List(ctx echo.Context) error {
	p := middleware.GetPrincipal(ctx)
	if dec := permissions.Check(p, c.module, permissions.ActionView, nil); !dec.Allowed {
		return deny(dec)
	}

	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	filters := make(map[string]interface{})
	for key, values := range ctx.QueryParams() {
		if key != "page" && key != "limit" && key != "include" && len(values) > 0 {
			filters[key] = values[0]
		}
	}

	scope := services.ScopeClause{
		Scope:     p.Scope(c.module, permissions.ActionView),
		UserID:    p.UserID,
		CountryID: p.CountryID,
	}

	includes := parseIncludes(ctx)
	entities, total, err := c.service.List(ctx.Request().Context(), page, limit, filters, scope, includes...)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"data":  entities,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// Update handles modification of an existing entity
func (c *BaseController[T]) Update(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	existing, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}

	p := middleware.GetPrincipal(ctx)
	if dec := permissions.Check(p, c.module, permissions.ActionEdit, resourceRef(existing)); !dec.Allowed {
		return deny(dec)
	}

	var entity T
	if err := ctx.Bind(&entity); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body "+err.Error())
	}
	if err := ctx.Validate(&entity); err != nil {
		return err
	}

	includes := parseIncludes(ctx)
	if err := c.service.Update(ctx.Request().Context(), id, &entity, includes...); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.JSON(http.StatusOK, entity)
}

// Delete handles removal of an entity
func (c *BaseController[T]) Delete(ctx echo.Context) error {
	id := ctx.Param("id")
	if id == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}

	existing, err := c.service.Get(ctx.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "entity not found")
	}

	p := middleware.GetPrincipal(ctx)
	if dec := permissions.Check(p, c.module, permissions.ActionDelete, resourceRef(existing)); !dec.Allowed {
		return deny(dec)
	}

	if err := c.service.Delete(ctx.Request().Context(), id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ctx.NoContent(http.StatusNoContent)
}
