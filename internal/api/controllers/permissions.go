package controllers

import (
	"io"
	"net/http"

	"leadcrm/internal/api/middleware"
	"leadcrm/internal/models"
	"leadcrm/internal/permissions"
	"leadcrm/internal/utils/logger"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

// PermissionsController administers per-user permission payloads.
// Writes are full-replace and always audited.
type PermissionsController struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPermissionsController(db *gorm.DB) *PermissionsController {
	return &PermissionsController{db: db, log: logger.New("PermissionsController")}
}

const adminRolesModule = permissions.SectionAdmin + "." + permissions.SubsectionRoles

func (pc *PermissionsController) loadTarget(ctx echo.Context) (*models.User, error) {
	id := ctx.Param("id")
	if id == "" {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "missing id parameter")
	}
	user, err := models.GetUserWithPermissions(pc.db, id)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return user, nil
}

// Get returns the target user's effective permission payload: the
// explicit row when one exists, their role defaults otherwise.
func (pc *PermissionsController) Get(ctx echo.Context) error {
	p := middleware.GetPrincipal(ctx)
	if dec := permissions.Check(p, adminRolesModule, permissions.ActionView, nil); !dec.Allowed {
		return deny(dec)
	}

	user, err := pc.loadTarget(ctx)
	if err != nil {
		return err
	}

	if user.UserPermission != nil && len(user.UserPermission.Permissions) > 0 {
		set, decodeErr := permissions.Decode(user.UserPermission.Permissions)
		if decodeErr == nil {
			return ctx.JSON(http.StatusOK, map[string]interface{}{
				"userId":      user.ID,
				"explicit":    true,
				"permissions": set,
			})
		}
		pc.log.Warn("stored payload for %s is unreadable: %v", user.ID, decodeErr)
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"userId":      user.ID,
		"explicit":    false,
		"permissions": permissions.DefaultSet(user.Role),
	})
}

// Update replaces the target user's payload wholesale. Malformed
// payloads are rejected before anything is written.
func (pc *PermissionsController) Update(ctx echo.Context) error {
	p := middleware.GetPrincipal(ctx)
	if dec := permissions.Check(p, adminRolesModule, permissions.ActionEdit, nil); !dec.Allowed {
		return deny(dec)
	}

	user, err := pc.loadTarget(ctx)
	if err != nil {
		return err
	}

	raw, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "unable to read request body")
	}

	perm := models.UserPermission{UserID: user.ID}
	if err := perm.SetPayload(raw); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := pc.db.Where(models.UserPermission{UserID: user.ID}).
		Assign(map[string]interface{}{"permissions": perm.Permissions}).
		FirstOrCreate(&perm).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to store permissions")
	}

	models.LogActivity(pc.db, middleware.GetUserID(ctx), models.ActivityPermissionsUpdate, "user_permissions", user.ID, nil)

	return ctx.JSON(http.StatusOK, map[string]interface{}{"success": true})
}

// Reset discards the explicit payload and writes the role defaults.
func (pc *PermissionsController) Reset(ctx echo.Context) error {
	p := middleware.GetPrincipal(ctx)
	if dec := permissions.Check(p, adminRolesModule, permissions.ActionEdit, nil); !dec.Allowed {
		return deny(dec)
	}

	user, err := pc.loadTarget(ctx)
	if err != nil {
		return err
	}

	if err := models.ResetPermissionsToRoleDefaults(pc.db, user, middleware.GetUserID(ctx)); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to reset permissions")
	}

	return ctx.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"role":    user.Role,
	})
}
