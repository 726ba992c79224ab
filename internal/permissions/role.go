package permissions

// Role is the closed set of roles the CRM actually uses. Informal
// string roles are not accepted anywhere; everything funnels through
// these constants.
type Role string

const (
	RoleSuperAdmin   Role = "SUPERADMIN"
	RoleAdmin        Role = "ADMIN"
	RoleCountryAdmin Role = "COUNTRYADMIN"
	RoleManager      Role = "MANAGER"
	RoleSeller       Role = "SELLER"
	RoleUser         Role = "USER"
)

// Roles lists every valid role, in descending order of privilege.
var Roles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleCountryAdmin,
	RoleManager,
	RoleSeller,
	RoleUser,
}

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleAdmin, RoleCountryAdmin, RoleManager, RoleSeller, RoleUser:
		return true
	default:
		return false
	}
}

// IsSuperAdmin reports whether r bypasses every permission check.
func (r Role) IsSuperAdmin() bool {
	return r == RoleSuperAdmin
}
