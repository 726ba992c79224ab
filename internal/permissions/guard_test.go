package permissions

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func seller(t *testing.T, payload string) *Principal {
	t.Helper()
	return &Principal{
		UserID:    "user-1",
		CountryID: "country-es",
		Role:      RoleSeller,
		Set:       mustDecode(t, payload),
	}
}

func TestSuperAdminBypass(t *testing.T) {
	// Even an explicit deny-everything payload is ignored.
	p := &Principal{
		UserID: "root",
		Role:   RoleSuperAdmin,
		Set:    mustDecode(t, `{"sections":{"leads":{"view":false,"delete":false}}}`),
	}

	assert.True(t, p.Has("leads", ActionDelete))
	assert.True(t, p.Has("admin.roles", ActionEdit))
	assert.Equal(t, ScopeAll, p.Scope("leads", ActionDelete))

	dec := Check(p, "reservations", ActionDelete, &ResourceRef{OwnerID: "someone-else", CountryID: "country-mx"})
	assert.True(t, dec.Allowed)
}

func TestNilAndDisabledPrincipalsDenyEverything(t *testing.T) {
	var nobody *Principal
	assert.False(t, nobody.Has("leads", ActionView))
	assert.Equal(t, ScopeDeny, nobody.Scope("leads", ActionView))

	gone := seller(t, `{"sections":{"leads":{"view":"all"}}}`)
	gone.Disabled = true
	assert.False(t, gone.Has("leads", ActionView))
	assert.Equal(t, ScopeDeny, gone.Scope("leads", ActionView))

	// The disabled flag also neutralizes a super admin role.
	gone.Role = RoleSuperAdmin
	assert.False(t, gone.Has("leads", ActionView))
}

func TestCanAccessResourceScopes(t *testing.T) {
	p := &Principal{UserID: "user-1", CountryID: "country-es"}

	assert.True(t, CanAccessResource(p, "anyone", "anywhere", ScopeAll))

	assert.True(t, CanAccessResource(p, "anyone", "country-es", ScopeTeam))
	assert.False(t, CanAccessResource(p, "anyone", "country-mx", ScopeTeam))
	assert.False(t, CanAccessResource(p, "anyone", "", ScopeTeam))

	noCountry := &Principal{UserID: "user-1"}
	assert.False(t, CanAccessResource(noCountry, "anyone", "country-es", ScopeTeam))

	assert.True(t, CanAccessResource(p, "user-1", "", ScopeSelf))
	assert.False(t, CanAccessResource(p, "user-2", "", ScopeSelf))

	assert.False(t, CanAccessResource(p, "user-1", "country-es", ScopeDeny))
	assert.False(t, CanAccessResource(nil, "user-1", "country-es", ScopeSelf))
}

func TestCheckCoarseDenialReason(t *testing.T) {
	p := seller(t, `{"sections":{"leads":{"view":"self"}}}`)

	dec := Check(p, "leads", ActionDelete, nil)
	assert.False(t, dec.Allowed)
	assert.Equal(t, "No tienes permiso para delete en leads", dec.Reason)
}

func TestCheckCoarseAllowWithoutResource(t *testing.T) {
	p := seller(t, `{"sections":{"leads":{"view":"self","create":"self"}}}`)

	dec := Check(p, "leads", ActionCreate, nil)
	assert.True(t, dec.Allowed)
	assert.Empty(t, dec.Reason)
}

func TestCheckSelfScopeAgainstResource(t *testing.T) {
	p := seller(t, `{"sections":{"leads":{"view":"self","edit":"self"}}}`)

	own := Check(p, "leads", ActionEdit, &ResourceRef{OwnerID: "user-1"})
	assert.True(t, own.Allowed)

	foreign := Check(p, "leads", ActionEdit, &ResourceRef{OwnerID: "other-user"})
	assert.False(t, foreign.Allowed)
	assert.Equal(t, "No tienes acceso a este recurso con scope 'self'", foreign.Reason)
}

func TestCheckTeamScopeAgainstResource(t *testing.T) {
	p := seller(t, `{"sections":{"quotations":{"edit":"team"}}}`)

	same := Check(p, "quotations", ActionEdit, &ResourceRef{OwnerID: "other", CountryID: "country-es"})
	assert.True(t, same.Allowed)

	other := Check(p, "quotations", ActionEdit, &ResourceRef{OwnerID: "other", CountryID: "country-mx"})
	assert.False(t, other.Allowed)
	assert.Equal(t, "No tienes acceso a este recurso con scope 'team'", other.Reason)
}

func TestDefaultSetsStayInsideTheAllowList(t *testing.T) {
	for _, role := range Roles {
		set := DefaultSet(role)
		for key, section := range set.Sections {
			for _, action := range Actions {
				scope := set.Scope(key, action)
				switch scope {
				case ScopeDeny, ScopeSelf, ScopeTeam, ScopeAll:
				default:
					t.Fatalf("role %s section %s action %s resolves to invalid scope %q", role, key, action, scope)
				}
				_ = section
			}
		}
	}
}

func TestDefaultSetShapes(t *testing.T) {
	admin := DefaultSet(RoleAdmin)
	assert.Equal(t, ScopeAll, admin.Scope("leads", ActionDelete))
	assert.Equal(t, ScopeAll, admin.Scope("admin.roles", ActionEdit))

	manager := DefaultSet(RoleManager)
	assert.Equal(t, ScopeTeam, manager.Scope("leads", ActionEdit))
	assert.False(t, manager.Has("leads", ActionDelete))
	assert.False(t, manager.Has("admin.roles", ActionView))

	sellerSet := DefaultSet(RoleSeller)
	assert.Equal(t, ScopeSelf, sellerSet.Scope("leads", ActionView))
	assert.False(t, sellerSet.Has("reservations", ActionDelete))

	assert.Empty(t, DefaultSet(Role("MADE_UP")).Sections)
}

func TestRoleValidity(t *testing.T) {
	for _, role := range Roles {
		assert.True(t, role.Valid())
	}
	assert.False(t, Role("MANAGER ").Valid())
	assert.False(t, Role("admin").Valid())
	assert.True(t, RoleSuperAdmin.IsSuperAdmin())
	assert.False(t, RoleAdmin.IsSuperAdmin())
}
