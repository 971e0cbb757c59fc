package entity

// Wire field names shared by every entity form.
const (
	ActionField = "action"
	CSRFField   = "csrf_token"
)

// Effect is what a successful action does to the page.
type Effect int

const (
	// EffectUpsert reconciles the record returned in the envelope's data.
	EffectUpsert Effect = iota
	// EffectRemove removes the record's key from the page.
	EffectRemove
)

// SecretPrompt asks the user for a hidden value sent as Field, e.g. a new password.
type SecretPrompt struct {
	Field  string
	Prompt string
	Rule   string // validator tag checked before sending
}

// Action is one member of an entity's enumerated set of mutations.
type Action struct {
	Name   string
	Effect Effect

	// Destructive actions require a confirmation; Confirm is the question asked.
	Destructive bool
	Confirm     string

	Secret *SecretPrompt

	// Rules overrides the entity rules for this action (field -> validator tag).
	// nil means: entity rules for upserts, required key fields for removals.
	Rules map[string]string

	// SuccessMessage is shown when the envelope carries no message.
	SuccessMessage string
}

func Create(successMsg string) Action {
	return Action{Name: "create", Effect: EffectUpsert, SuccessMessage: successMsg}
}

func Update(successMsg string) Action {
	return Action{Name: "update", Effect: EffectUpsert, SuccessMessage: successMsg}
}

// Delete is the "delete_<entity>" action.
func Delete(entity, confirm, successMsg string) Action {
	return Action{
		Name:           "delete_" + entity,
		Effect:         EffectRemove,
		Destructive:    true,
		Confirm:        confirm,
		SuccessMessage: successMsg,
	}
}

func Deactivate(confirm, successMsg string) Action {
	return Action{
		Name:           "deactivate",
		Effect:         EffectRemove,
		Destructive:    true,
		Confirm:        confirm,
		SuccessMessage: successMsg,
	}
}

// Process is the "process_<entity>" action.
func Process(entity string, effect Effect, confirm, successMsg string) Action {
	return Action{
		Name:           "process_" + entity,
		Effect:         effect,
		Destructive:    confirm != "",
		Confirm:        confirm,
		SuccessMessage: successMsg,
	}
}
