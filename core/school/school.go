// Package school configures the entity sync client for the pages of the school administration site.
// Wire field names follow the backend (Spanish); entity kinds are English.
package school

import (
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
)

// All returns a fresh specialization for every admin page.
func All() []*entity.Specialization {
	return []*entity.Specialization{
		Users(),
		Notices(),
		Events(),
		Semesters(),
		Subjects(),
		Groups(),
		Generations(),
		Partials(),
		Grades(),
		Requests(),
		Reports(),
	}
}

// NewRegistry maps every admin form id to its specialization.
func NewRegistry() (*entity.Registry, error) {
	return entity.NewRegistry(All()...)
}

// NewValidator returns a validator knowing the core tags and the password policy.
func NewValidator(translator ut.Translator) *validator.Validate {
	validate := core.NewValidator(translator)
	InitValidators(validate, translator)
	return validate
}
