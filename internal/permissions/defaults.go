package permissions

// Section keys for every CRM module that carries permissions.
const (
	SectionLeads        = "leads"
	SectionTasks        = "tasks"
	SectionQuotations   = "quotations"
	SectionReservations = "reservations"
	SectionReports      = "reports"
	SectionUsers        = "users"
	SectionAdmin        = "admin"

	SubsectionRoles        = "roles"
	SubsectionProducts     = "products"
	SubsectionLeadSettings = "leads-settings"
)

func uniform(scope Scope) Section {
	return Section{View: scope, Create: scope, Edit: scope, Delete: scope}
}

func readWrite(view, write Scope) Section {
	return Section{View: view, Create: write, Edit: write}
}

// DefaultSet returns the code-defined fallback permissions for a role,
// used only when the user has no explicit UserPermission row. Unknown
// roles get an empty set, which denies everything.
func DefaultSet(role Role) *Set {
	switch role {
	case RoleSuperAdmin, RoleAdmin:
		return &Set{Sections: map[string]Section{
			SectionLeads:        uniform(ScopeAll),
			SectionTasks:        uniform(ScopeAll),
			SectionQuotations:   uniform(ScopeAll),
			SectionReservations: uniform(ScopeAll),
			SectionReports:      {View: ScopeAll},
			SectionUsers:        uniform(ScopeAll),
			SectionAdmin: {
				View: ScopeAll,
				Children: map[string]Section{
					SubsectionRoles:        uniform(ScopeAll),
					SubsectionProducts:     uniform(ScopeAll),
					SubsectionLeadSettings: uniform(ScopeAll),
				},
			},
		}}
	case RoleCountryAdmin:
		return &Set{Sections: map[string]Section{
			SectionLeads:        uniform(ScopeTeam),
			SectionTasks:        uniform(ScopeTeam),
			SectionQuotations:   uniform(ScopeTeam),
			SectionReservations: uniform(ScopeTeam),
			SectionReports:      {View: ScopeTeam},
			SectionUsers:        readWrite(ScopeTeam, ScopeTeam),
			SectionAdmin: {
				View: ScopeTeam,
				Children: map[string]Section{
					SubsectionProducts: {View: ScopeTeam},
				},
			},
		}}
	case RoleManager:
		return &Set{Sections: map[string]Section{
			SectionLeads:        readWrite(ScopeTeam, ScopeTeam),
			SectionTasks:        readWrite(ScopeTeam, ScopeTeam),
			SectionQuotations:   readWrite(ScopeTeam, ScopeTeam),
			SectionReservations: readWrite(ScopeTeam, ScopeTeam),
			SectionReports:      {View: ScopeTeam},
		}}
	case RoleSeller:
		return &Set{Sections: map[string]Section{
			SectionLeads:        readWrite(ScopeSelf, ScopeSelf),
			SectionTasks:        readWrite(ScopeSelf, ScopeSelf),
			SectionQuotations:   readWrite(ScopeSelf, ScopeSelf),
			SectionReservations: {View: ScopeSelf, Create: ScopeSelf},
			SectionReports:      {View: ScopeSelf},
		}}
	case RoleUser:
		return &Set{Sections: map[string]Section{
			SectionLeads: {View: ScopeSelf},
			SectionTasks: {View: ScopeSelf},
		}}
	default:
		return &Set{}
	}
}
