package entity

import (
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-sync/core"
)

// Specialization configures the generic controller for one entity kind.
type Specialization struct {
	Kind     string // e.g. "notice"
	FormID   string // id of the modal form that submits this kind
	Endpoint string // page endpoint receiving the POST

	KeyFields []string // one field, or several for composite keys
	Fields    []string // visible inputs of the form; hidden key fields are left out
	Rules     map[string]string
	Actions   []Action

	Render    RenderFunc
	Placement Placement

	// Check runs extra client-side checks that need several fields at once.
	Check func(action string, values map[string]string) []core.FieldError
}

// Action returns the named action if it belongs to the entity's enumerated set.
func (s *Specialization) Action(name string) (Action, bool) {
	for _, a := range s.Actions {
		if a.Name == name {
			return a, true
		}
	}
	return Action{}, false
}

// DefaultAction picks "update" when the values carry a key and the entity supports it, else "create".
func (s *Specialization) DefaultAction(values map[string]string) string {
	if _, ok := ValuesKey(s.KeyFields, values); ok {
		if _, ok := s.Action("update"); ok {
			return "update"
		}
	}
	return "create"
}

// RulesFor returns the field rules enforced before sending `action`.
func (s *Specialization) RulesFor(action Action) map[string]string {
	if action.Rules != nil {
		return action.Rules
	}
	if action.Effect == EffectRemove {
		rules := make(map[string]string, len(s.KeyFields))
		for _, f := range s.KeyFields {
			rules[f] = "required"
		}
		return rules
	}
	return s.Rules
}

// NewForm returns an empty form with this entity's inputs.
func (s *Specialization) NewForm() *Form {
	return NewForm(s.FormID, s.Fields...)
}

// RenderRow renders rec and stamps the row with key.
func (s *Specialization) RenderRow(key Key, rec Record) RowView {
	row := s.Render(rec)
	row.Key = key
	return row
}

func (s *Specialization) validate() error {
	switch {
	case s.Kind == "":
		return errors.New("kind is required")
	case s.FormID == "":
		return errors.Errorf("%s: form id is required", s.Kind)
	case s.Endpoint == "":
		return errors.Errorf("%s: endpoint is required", s.Kind)
	case len(s.KeyFields) == 0:
		return errors.Errorf("%s: key fields are required", s.Kind)
	case len(s.Actions) == 0:
		return errors.Errorf("%s: at least one action is required", s.Kind)
	case s.Render == nil:
		return errors.Errorf("%s: row renderer is required", s.Kind)
	}
	seen := make(map[string]bool, len(s.Actions))
	for _, a := range s.Actions {
		if a.Name == "" {
			return errors.Errorf("%s: unnamed action", s.Kind)
		}
		if seen[a.Name] {
			return errors.Errorf("%s: duplicate action %q", s.Kind, a.Name)
		}
		seen[a.Name] = true
	}
	return nil
}
