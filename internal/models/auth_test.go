package models

import (
	"testing"

	"leadcrm/internal/permissions"

	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func activeUser(role permissions.Role) *User {
	countryID := "country-es"
	return &User{
		Base:      Base{ID: "user-1"},
		Role:      role,
		CountryID: &countryID,
		IsActive:  true,
	}
}

func TestPrincipalFallsBackToRoleDefaults(t *testing.T) {
	u := activeUser(permissions.RoleSeller)

	p := u.Principal()
	assert.Equal(t, "user-1", p.UserID)
	assert.Equal(t, "country-es", p.CountryID)
	assert.Equal(t, permissions.ScopeSelf, p.Scope(permissions.SectionLeads, permissions.ActionView))
	assert.False(t, p.Has(permissions.SectionLeads, permissions.ActionDelete))
}

func TestPrincipalUsesExplicitPayloadOverDefaults(t *testing.T) {
	u := activeUser(permissions.RoleUser)
	u.UserPermission = &UserPermission{
		UserID:      u.ID,
		Permissions: datatypes.JSON(`{"sections":{"quotations":{"view":"all","delete":"team"}}}`),
	}

	p := u.Principal()
	assert.Equal(t, permissions.ScopeAll, p.Scope("quotations", permissions.ActionView))
	assert.Equal(t, permissions.ScopeTeam, p.Scope("quotations", permissions.ActionDelete))
	// Explicit payloads fully replace defaults; the USER defaults
	// would have granted leads view.
	assert.False(t, p.Has("leads", permissions.ActionView))
}

func TestPrincipalUnreadablePayloadDeniesAll(t *testing.T) {
	u := activeUser(permissions.RoleAdmin)
	u.UserPermission = &UserPermission{
		UserID:      u.ID,
		Permissions: datatypes.JSON(`{{{not json`),
	}

	p := u.Principal()
	assert.False(t, p.Has("leads", permissions.ActionView))
	assert.Equal(t, permissions.ScopeDeny, p.Scope("leads", permissions.ActionView))
}

func TestPrincipalDisabledUsers(t *testing.T) {
	inactive := activeUser(permissions.RoleAdmin)
	inactive.IsActive = false
	assert.False(t, inactive.Principal().Has("leads", permissions.ActionView))

	deleted := activeUser(permissions.RoleAdmin)
	deleted.IsDeleted = true
	assert.False(t, deleted.Principal().Has("leads", permissions.ActionView))

	var nobody *User
	assert.Nil(t, nobody.Principal())
}

func TestSetPayloadValidatesBeforeStoring(t *testing.T) {
	up := &UserPermission{UserID: "user-1"}

	assert.Error(t, up.SetPayload([]byte(`{"sections":{"leads":{"view":"everything"}}}`)))
	assert.Empty(t, up.Permissions)

	assert.NoError(t, up.SetPayload([]byte(`{"sections":{"leads":{"view":"team"}}}`)))
	assert.NotEmpty(t, up.Permissions)
}
