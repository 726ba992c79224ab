package permissions

import "fmt"

// Principal is the resolved authorization context of one request: the
// authenticated user plus their decoded permission set. A nil or
// disabled principal denies everything, whatever the payload says.
type Principal struct {
	UserID    string
	CountryID string // empty when the user has no country assigned
	Role      Role
	Disabled  bool // inactive or soft-deleted
	Set       *Set
}

// Has reports whether the principal may perform the action on the
// module at all, ignoring resource scope. Super Administrators pass
// unconditionally.
func (p *Principal) Has(module string, action Action) bool {
	if p == nil || p.Disabled {
		return false
	}
	if p.Role.IsSuperAdmin() {
		return true
	}
	return p.Set.Has(module, action)
}

// Scope resolves the principal's scope for a module action. Super
// Administrators always resolve to all.
func (p *Principal) Scope(module string, action Action) Scope {
	if p == nil || p.Disabled {
		return ScopeDeny
	}
	if p.Role.IsSuperAdmin() {
		return ScopeAll
	}
	return p.Set.Scope(module, action)
}

// ResourceRef identifies the concrete row a scoped check runs against.
type ResourceRef struct {
	OwnerID   string
	CountryID string
}

// CanAccessResource applies an already-resolved scope to a concrete
// resource. The Super Administrator bypass happens in Check before
// this function is reached.
func CanAccessResource(p *Principal, ownerID, countryID string, scope Scope) bool {
	switch scope {
	case ScopeAll:
		return true
	case ScopeTeam:
		return p != nil && p.CountryID != "" && countryID != "" && p.CountryID == countryID
	case ScopeSelf:
		return p != nil && p.UserID != "" && p.UserID == ownerID
	default:
		return false
	}
}

// Decision is the outcome of a permission check. Reason is set only
// on denial and is safe to return to the client.
type Decision struct {
	Allowed bool   `json:"allowed"`
	Reason  string `json:"reason,omitempty"`
}

// Check runs the coarse module/action check and, when ref is non-nil,
// re-checks the resolved scope against the concrete resource. A nil
// ref is the list/create case where no specific row exists yet, so a
// coarse allow suffices.
func Check(p *Principal, module string, action Action, ref *ResourceRef) Decision {
	if !p.Has(module, action) {
		return Decision{Reason: fmt.Sprintf("No tienes permiso para %s en %s", action, module)}
	}
	if ref == nil {
		return Decision{Allowed: true}
	}

	scope := p.Scope(module, action)
	if !CanAccessResource(p, ref.OwnerID, ref.CountryID, scope) {
		return Decision{Reason: fmt.Sprintf("No tienes acceso a este recurso con scope '%s'", scope)}
	}
	return Decision{Allowed: true}
}
