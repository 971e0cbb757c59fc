package stubapi

import (
	"net/http"
	"sort"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
	"github.com/trezcool/masomo-sync/storage/inmem"
)

const csrfContextKey = "csrf"

// envelope messages
const (
	msgInvalid       = "Revisa los campos marcados."
	msgInvalidAction = "Acción no válida."
	msgNotFound      = "El registro no existe o ya fue eliminado."
	msgDuplicate     = "ya existe un registro con este valor"
	msgSaved         = "Cambios guardados."
)

// Fields never sent to the browser, nor trimmed when received.
var secretFields = map[string]bool{
	"contrasena":       true,
	"nueva_contrasena": true,
	"contrasena_hash":  true,
}

// uniqueFields per entity kind
var uniqueFields = map[string][]string{
	"user":       {"usuario", "correo"},
	"subject":    {"clave"},
	"semester":   {"nombre"},
	"generation": {"nombre"},
}

// mutation performs one action and returns the envelope to answer with.
type mutation func(api *pageAPI, action entity.Action, values map[string]string) (*entity.Envelope, error)

// pageAPI serves one admin page: its bootstrap document and its form mutations.
type pageAPI struct {
	spec  *entity.Specialization
	db    *inmemdb.DB
	table *inmemdb.Table
	deps  ServerDeps
	hooks kindHooks
}

func newPageAPI(spec *entity.Specialization, deps ServerDeps) *pageAPI {
	return &pageAPI{
		spec:  spec,
		db:    deps.DB,
		table: OpenTable(deps.DB, spec),
		deps:  deps,
		hooks: hooksFor(spec.Kind),
	}
}

// OpenTable returns the table backing spec's page.
func OpenTable(db *inmemdb.DB, spec *entity.Specialization) *inmemdb.Table {
	return db.Table(spec.Kind, spec.KeyFields, uniqueFields[spec.Kind]...)
}

func (api *pageAPI) bootstrap(ctx echo.Context) error {
	token, _ := ctx.Get(csrfContextKey).(string)
	recs := api.table.Query(api.hooks.listed)
	out := make([]entity.Record, 0, len(recs))
	for _, rec := range recs {
		out = append(out, api.public(rec))
	}
	return ctx.JSON(http.StatusOK, echo.Map{
		entity.CSRFField: token,
		"records":        out,
	})
}

func (api *pageAPI) mutate(ctx echo.Context) error {
	params, err := ctx.FormParams()
	if err != nil {
		return errBadForm
	}
	values := make(map[string]string, len(params))
	for k := range params {
		if k == entity.CSRFField {
			continue
		}
		v := params.Get(k)
		if !secretFields[k] {
			v = core.CleanString(v)
		}
		values[k] = v
	}

	name := values[entity.ActionField]
	if name == "" {
		name = api.spec.DefaultAction(values)
	}
	action, ok := api.spec.Action(name)
	if !ok {
		return ctx.JSON(http.StatusOK, failure(msgInvalidAction))
	}

	fldErrs, err := api.validate(action, values)
	if err != nil {
		return err
	}
	if len(fldErrs) > 0 {
		return ctx.JSON(http.StatusOK, invalid(fldErrs...))
	}

	run := api.hooks.mutations[name]
	if run == nil {
		run = defaultMutation(action)
	}
	env, err := run(api, action, values)
	if err != nil {
		if env = domainFailure(err); env == nil {
			return errors.Wrapf(err, "%s %s", api.spec.Kind, name)
		}
	}
	if env.OK() && env.Message == "" {
		env.Message = action.SuccessMessage
		if env.Message == "" {
			env.Message = msgSaved
		}
	}
	return ctx.JSON(http.StatusOK, env)
}

// validate runs the same rules & checks as the client; the backend stays authoritative.
func (api *pageAPI) validate(action entity.Action, values map[string]string) ([]core.FieldError, error) {
	rules := api.spec.RulesFor(action)
	if action.Secret != nil && action.Secret.Rule != "" {
		merged := make(map[string]string, len(rules)+1)
		for k, v := range rules {
			merged[k] = v
		}
		merged[action.Secret.Field] = action.Secret.Rule
		rules = merged
	}
	fldErrs, err := core.ValidateValues(api.deps.Validate, api.deps.Translator, values, rules)
	if err != nil || len(fldErrs) > 0 {
		return fldErrs, err
	}
	if api.spec.Check != nil {
		fldErrs = api.spec.Check(action.Name, values)
	}
	return fldErrs, nil
}

func defaultMutation(action entity.Action) mutation {
	switch {
	case action.Name == "create":
		return createRecord
	case action.Effect == entity.EffectRemove:
		return deleteRecord
	default:
		return updateRecord
	}
}

func createRecord(api *pageAPI, _ entity.Action, values map[string]string) (*entity.Envelope, error) {
	rec := api.fields(values)
	if err := api.hooks.prepare(rec, true); err != nil {
		return nil, err
	}
	rec, err := api.table.Insert(rec)
	if err != nil {
		return nil, err
	}
	return success(api.public(rec)), nil
}

func updateRecord(api *pageAPI, _ entity.Action, values map[string]string) (*entity.Envelope, error) {
	key, ok := entity.ValuesKey(api.spec.KeyFields, values)
	if !ok {
		return failure(msgNotFound), nil
	}
	rec := api.fields(values)
	if err := api.hooks.prepare(rec, false); err != nil {
		return nil, err
	}
	rec, err := api.table.Update(key, rec)
	if err != nil {
		return nil, err
	}
	return success(api.public(rec)), nil
}

func deleteRecord(api *pageAPI, _ entity.Action, values map[string]string) (*entity.Envelope, error) {
	key, ok := entity.ValuesKey(api.spec.KeyFields, values)
	if !ok {
		return failure(msgNotFound), nil
	}
	if err := api.table.Delete(key); err != nil {
		return nil, err
	}
	return &entity.Envelope{Status: entity.StatusSuccess}, nil
}

// fields picks the form inputs out of values.
func (api *pageAPI) fields(values map[string]string) entity.Record {
	rec := make(entity.Record, len(api.spec.Fields))
	for _, f := range api.spec.Fields {
		if v, ok := values[f]; ok {
			rec[f] = v
		}
	}
	return rec
}

// public returns rec without its secret fields, with the names of the records it references.
func (api *pageAPI) public(rec entity.Record) entity.Record {
	out := make(entity.Record, len(rec))
	for k, v := range rec {
		if !secretFields[k] {
			out[k] = v
		}
	}
	for field, ref := range references {
		id := rec.String(field)
		if id == "" {
			continue
		}
		if name := api.lookupName(ref, id); name != "" {
			out[ref.as] = name
		}
	}
	return out
}

type reference struct {
	kind   string
	fields []string
	as     string
}

// references maps foreign key fields to the display name of the referenced record.
var references = map[string]reference{
	"semestre_id":   {kind: "semester", fields: []string{"nombre"}, as: "semestre"},
	"generacion_id": {kind: "generation", fields: []string{"nombre"}, as: "generacion"},
	"alumno_id":     {kind: "user", fields: []string{"nombre", "apellidos"}, as: "alumno"},
}

func (api *pageAPI) lookupName(ref reference, id string) string {
	table, err := api.tableOf(ref.kind)
	if err != nil {
		return ""
	}
	rec, err := table.Get(entity.Key(id))
	if err != nil {
		return ""
	}
	parts := make([]string, 0, len(ref.fields))
	for _, f := range ref.fields {
		if v := rec.String(f); v != "" {
			parts = append(parts, v)
		}
	}
	return strings.Join(parts, " ")
}

// Envelopes

func success(data entity.Record) *entity.Envelope {
	return &entity.Envelope{Status: entity.StatusSuccess, Data: data}
}

func failure(msg string) *entity.Envelope {
	return &entity.Envelope{Status: entity.StatusError, Message: msg}
}

func invalid(fldErrs ...core.FieldError) *entity.Envelope {
	env := failure(msgInvalid)
	env.Errors = make(map[string]string, len(fldErrs))
	for _, fe := range fldErrs {
		if _, ok := env.Errors[fe.Field]; !ok {
			env.Errors[fe.Field] = fe.Error
		}
	}
	return env
}

// domainFailure turns the store errors users can act on into error envelopes; nil otherwise.
func domainFailure(err error) *entity.Envelope {
	switch origErr := errors.Cause(err).(type) {
	case inmemdb.DuplicateError:
		return invalid(core.FieldError{Field: origErr.Field, Error: msgDuplicate})
	case *core.ValidationError:
		env := invalid(origErr.Fields...)
		if origErr.Err != nil {
			env.Message = origErr.Err.Error()
		}
		return env
	case *core.DomainError:
		return failure(origErr.Message)
	}
	if errors.Cause(err) == inmemdb.ErrNotFound {
		return failure(msgNotFound)
	}
	return nil
}

// sortedBy returns recs sorted by field, descending when desc is set.
func sortedBy(recs []entity.Record, field string, desc bool) []entity.Record {
	sort.SliceStable(recs, func(i, j int) bool {
		if desc {
			return recs[i].String(field) > recs[j].String(field)
		}
		return recs[i].String(field) < recs[j].String(field)
	})
	return recs
}
