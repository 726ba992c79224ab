package permissions

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Section holds the per-action scopes of one permission bucket plus
// any nested subsections (e.g. the "roles" and "products" children of
// "admin").
type Section struct {
	View     Scope
	Create   Scope
	Edit     Scope
	Delete   Scope
	Children map[string]Section
}

// ActionScope returns the scope stored for the given action.
func (s Section) ActionScope(action Action) Scope {
	switch action {
	case ActionView:
		return s.View
	case ActionCreate:
		return s.Create
	case ActionEdit:
		return s.Edit
	case ActionDelete:
		return s.Delete
	default:
		return ScopeDeny
	}
}

// UnmarshalJSON reads the persisted section shape: the four action
// keys map to scopes, any other object-valued key is a nested child
// section. Unknown scalar keys are ignored.
func (s *Section) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key, val := range raw {
		switch Action(key) {
		case ActionView:
			if err := json.Unmarshal(val, &s.View); err != nil {
				return err
			}
		case ActionCreate:
			if err := json.Unmarshal(val, &s.Create); err != nil {
				return err
			}
		case ActionEdit:
			if err := json.Unmarshal(val, &s.Edit); err != nil {
				return err
			}
		case ActionDelete:
			if err := json.Unmarshal(val, &s.Delete); err != nil {
				return err
			}
		default:
			if len(val) > 0 && val[0] == '{' {
				var child Section
				if err := json.Unmarshal(val, &child); err != nil {
					return err
				}
				if s.Children == nil {
					s.Children = make(map[string]Section)
				}
				s.Children[key] = child
			}
		}
	}
	return nil
}

// MarshalJSON writes the section back in the stored shape.
func (s Section) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, 4+len(s.Children))
	out[string(ActionView)] = s.View
	out[string(ActionCreate)] = s.Create
	out[string(ActionEdit)] = s.Edit
	out[string(ActionDelete)] = s.Delete
	for key, child := range s.Children {
		out[key] = child
	}
	return json.Marshal(out)
}

// Set is the full permission payload of one user: section key to
// Section. An absent key always denies.
type Set struct {
	Sections map[string]Section
}

type setEnvelope struct {
	Sections map[string]Section `json:"sections"`
}

// Decode parses a stored permission payload. Both the current
// {"sections": {...}} envelope and the legacy flat shape are accepted.
// A decode error means the payload is unreadable; callers treat that
// as deny-all, never as a grant.
func Decode(data []byte) (*Set, error) {
	if len(data) == 0 {
		return &Set{}, nil
	}

	var env setEnvelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("permission payload is not valid JSON: %w", err)
	}
	if env.Sections != nil {
		return &Set{Sections: env.Sections}, nil
	}

	// Legacy flat payloads carry the sections at the top level.
	var flat map[string]Section
	if err := json.Unmarshal(data, &flat); err != nil {
		return nil, fmt.Errorf("permission payload is not valid JSON: %w", err)
	}
	return &Set{Sections: flat}, nil
}

// MarshalJSON always writes the enveloped shape.
func (s *Set) MarshalJSON() ([]byte, error) {
	sections := s.Sections
	if sections == nil {
		sections = map[string]Section{}
	}
	return json.Marshal(setEnvelope{Sections: sections})
}

// Scope resolves the stored scope for a module key and action. Module
// keys may be dotted ("admin.roles"): an explicit nested entry wins,
// otherwise the parent section's view flag answers view lookups only.
// Blanket parent access never implies edit or delete on children.
func (s *Set) Scope(module string, action Action) Scope {
	if s == nil || s.Sections == nil || module == "" {
		return ScopeDeny
	}

	parts := strings.SplitN(module, ".", 2)
	section, ok := s.Sections[parts[0]]
	if !ok {
		return ScopeDeny
	}
	if len(parts) == 1 {
		return section.ActionScope(action)
	}

	if child, ok := section.Children[parts[1]]; ok {
		return child.ActionScope(action)
	}
	if action == ActionView {
		return section.View
	}
	return ScopeDeny
}

// Has reports whether the set grants the action at any scope.
func (s *Set) Has(module string, action Action) bool {
	return s.Scope(module, action).Allows()
}

// ValidatePayload is the strict write-path check on a raw payload
// before it is persisted: the payload must be a JSON object (with or
// without the "sections" envelope), every section must be an object,
// and every action value must be a boolean or one of "self", "team",
// "all". Malformed payloads are rejected here so readers never have
// to re-validate.
func ValidatePayload(data []byte) error {
	var top map[string]json.RawMessage
	if err := json.Unmarshal(data, &top); err != nil {
		return fmt.Errorf("permissions must be a JSON object: %w", err)
	}

	sections := top
	if raw, ok := top["sections"]; ok {
		if err := json.Unmarshal(raw, &sections); err != nil {
			return fmt.Errorf("\"sections\" must be an object: %w", err)
		}
	}

	for key, raw := range sections {
		if err := validateSection(key, raw); err != nil {
			return err
		}
	}
	return nil
}

func validateSection(key string, raw json.RawMessage) error {
	var section map[string]json.RawMessage
	if err := json.Unmarshal(raw, &section); err != nil {
		return fmt.Errorf("section %q must be an object: %w", key, err)
	}

	for field, val := range section {
		switch Action(field) {
		case ActionView, ActionCreate, ActionEdit, ActionDelete:
			if !validScopeValue(val) {
				return fmt.Errorf("section %q: action %q must be a boolean or one of self/team/all", key, field)
			}
		default:
			if err := validateSection(key+"."+field, val); err != nil {
				return err
			}
		}
	}
	return nil
}
