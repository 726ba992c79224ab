package permissions

import (
	"bytes"
	"encoding/json"
)

// Action is one of the four operations a section can grant.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Actions lists every action a section can carry.
var Actions = []Action{ActionView, ActionCreate, ActionEdit, ActionDelete}

// Scope is the breadth of a granted action. The zero value denies.
type Scope string

const (
	ScopeDeny Scope = ""
	ScopeSelf Scope = "self"
	ScopeTeam Scope = "team"
	ScopeAll  Scope = "all"
)

// Allows reports whether the scope grants anything at all.
func (s Scope) Allows() bool {
	return s != ScopeDeny
}

func (s Scope) String() string {
	if s == ScopeDeny {
		return "false"
	}
	return string(s)
}

// UnmarshalJSON accepts the stored scope encodings: false, legacy
// true (normalized to "all"), and the strings "self", "team", "all".
// Anything else decodes to deny; the read path never fails on a
// single bad scope value, the write path rejects it up front via
// ValidatePayload.
func (s *Scope) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)

	var b bool
	if err := json.Unmarshal(data, &b); err == nil {
		if b {
			*s = ScopeAll
		} else {
			*s = ScopeDeny
		}
		return nil
	}

	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		switch Scope(str) {
		case ScopeSelf, ScopeTeam, ScopeAll:
			*s = Scope(str)
		default:
			*s = ScopeDeny
		}
		return nil
	}

	*s = ScopeDeny
	return nil
}

// MarshalJSON writes deny as false and everything else as its string
// form, matching the persisted payload shape.
func (s Scope) MarshalJSON() ([]byte, error) {
	if s == ScopeDeny {
		return json.Marshal(false)
	}
	return json.Marshal(string(s))
}

// validScopeValue is the strict write-path check: a raw JSON value is
// acceptable only if it is a boolean or one of the three scope strings.
func validScopeValue(raw json.RawMessage) bool {
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return true
	}
	var str string
	if err := json.Unmarshal(raw, &str); err == nil {
		switch Scope(str) {
		case ScopeSelf, ScopeTeam, ScopeAll:
			return true
		}
	}
	return false
}
