package stubapi

import (
	"net/mail"
	"time"

	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
	"github.com/trezcool/masomo-sync/storage/inmem"
)

const dateLayout = "2006-01-02"

var now = time.Now // mockable

// kindHooks customize the generic page API for one entity kind.
type kindHooks struct {
	// listed filters the records of the bootstrap document; nil lists all.
	listed func(entity.Record) bool
	// prepare completes a record before it is stored.
	prepare func(rec entity.Record, create bool) error
	// mutations replace the default behavior of named actions.
	mutations map[string]mutation
}

func hooksFor(kind string) kindHooks {
	h := kindHooks{prepare: func(entity.Record, bool) error { return nil }}
	switch kind {
	case "user":
		h.listed = isActive
		h.prepare = prepareUser
		h.mutations = map[string]mutation{"deactivate": deactivateUser}
	case "request":
		h.mutations = map[string]mutation{
			"process_solicitud": processRequest,
			"reject_solicitud":  rejectRequest,
		}
	case "semester":
		h.prepare = func(rec entity.Record, create bool) error {
			if create {
				rec["activo"] = false
			}
			return nil
		}
		h.mutations = map[string]mutation{"activate_semestre": activateSemester}
	case "notice":
		h.prepare = func(rec entity.Record, create bool) error {
			if create && rec.String("fecha_publicacion") == "" {
				rec["fecha_publicacion"] = now().Format(dateLayout)
			}
			return nil
		}
	case "report":
		h.prepare = func(rec entity.Record, create bool) error {
			rec["fecha"] = now().Format(dateLayout)
			rec["estado"] = "generado"
			return nil
		}
	}
	return h
}

func isActive(rec entity.Record) bool {
	active, _ := rec["activo"].(bool)
	return active
}

// prepareUser replaces the typed password by its hash; an empty password on update keeps the current one.
func prepareUser(rec entity.Record, create bool) error {
	pwd := rec.String("contrasena")
	delete(rec, "contrasena")
	if create {
		rec["activo"] = true
		rec["fecha_alta"] = now().Format(dateLayout)
	}
	if pwd == "" {
		return nil
	}
	hash, err := inmemdb.HashPassword(pwd)
	if err != nil {
		return err
	}
	rec["contrasena_hash"] = hash
	return nil
}

func deactivateUser(api *pageAPI, _ entity.Action, values map[string]string) (*entity.Envelope, error) {
	key, usr, err := api.lookup(values)
	if err != nil {
		return nil, err
	}
	if !isActive(usr) {
		return nil, core.NewDomainError("El usuario ya está inactivo.")
	}
	usr, err = api.table.Update(key, entity.Record{"activo": false})
	if err != nil {
		return nil, err
	}
	return success(api.public(usr)), nil
}

// processRequest sets the new password of the requesting user, closes the request and emails the user.
func processRequest(api *pageAPI, action entity.Action, values map[string]string) (*entity.Envelope, error) {
	key, req, err := api.lookup(values)
	if err != nil {
		return nil, err
	}
	usr, ok, err := api.requester(req)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, core.NewDomainError("El usuario de la solicitud ya no existe.")
	}

	pwd := values[action.Secret.Field]
	if reusedPassword(usr, pwd) {
		return invalid(core.FieldError{Field: action.Secret.Field, Error: "must differ from the current password"}), nil
	}
	hash, err := inmemdb.HashPassword(pwd)
	if err != nil {
		return nil, err
	}
	users, err := api.tableOf("user")
	if err != nil {
		return nil, err
	}
	userKey, _ := entity.RecordKey([]string{"id"}, usr)
	if _, err = users.Update(userKey, entity.Record{"contrasena_hash": hash}); err != nil {
		return nil, err
	}
	if err = api.table.Delete(key); err != nil {
		return nil, err
	}
	api.mailUser(usr, "Contraseña restablecida", "request_processed")
	return &entity.Envelope{Status: entity.StatusSuccess}, nil
}

// rejectRequest closes the request and tells the user, if they still exist.
func rejectRequest(api *pageAPI, _ entity.Action, values map[string]string) (*entity.Envelope, error) {
	key, req, err := api.lookup(values)
	if err != nil {
		return nil, err
	}
	if err = api.table.Delete(key); err != nil {
		return nil, err
	}
	usr, ok, err := api.requester(req)
	if err != nil {
		return nil, err
	}
	if ok {
		api.mailUser(usr, "Solicitud rechazada", "request_rejected")
	}
	return &entity.Envelope{Status: entity.StatusSuccess}, nil
}

// lookup returns the record whose key fields are in values.
func (api *pageAPI) lookup(values map[string]string) (entity.Key, entity.Record, error) {
	key, ok := entity.ValuesKey(api.spec.KeyFields, values)
	if !ok {
		return "", nil, inmemdb.ErrNotFound
	}
	rec, err := api.table.Get(key)
	if err != nil {
		return "", nil, err
	}
	return key, rec, nil
}

// requester returns the user who filed the password request req.
func (api *pageAPI) requester(req entity.Record) (entity.Record, bool, error) {
	users, err := api.tableOf("user")
	if err != nil {
		return nil, false, err
	}
	username := req.String("usuario")
	matches := users.Query(func(u entity.Record) bool { return u.String("usuario") == username })
	if len(matches) == 0 {
		return nil, false, nil
	}
	return matches[0], true, nil
}

func (api *pageAPI) mailUser(usr entity.Record, subject, tmpl string) {
	addr := usr.String("correo")
	if api.deps.Mailer == nil || addr == "" {
		return
	}
	api.deps.Mailer.SendMessages(&core.EmailMessage{
		To:           []mail.Address{{Name: usr.String("nombre"), Address: addr}},
		Subject:      subject,
		TemplateName: tmpl,
		TemplateData: map[string]string{"Name": usr.String("nombre"), "Username": usr.String("usuario")},
	})
}

func reusedPassword(usr entity.Record, pwd string) bool {
	hash := usr.String("contrasena_hash")
	return hash != "" && inmemdb.CheckPassword(hash, pwd) == nil
}

// activateSemester makes the semester at key the only active one.
func activateSemester(api *pageAPI, _ entity.Action, values map[string]string) (*entity.Envelope, error) {
	key, _, err := api.lookup(values)
	if err != nil {
		return nil, err
	}
	for _, sem := range api.table.Query(isActive) {
		k, _ := entity.RecordKey(api.spec.KeyFields, sem)
		if _, err := api.table.Update(k, entity.Record{"activo": false}); err != nil {
			return nil, err
		}
	}
	sem, err := api.table.Update(key, entity.Record{"activo": true})
	if err != nil {
		return nil, err
	}
	return success(api.public(sem)), nil
}

func (api *pageAPI) tableOf(kind string) (*inmemdb.Table, error) {
	spec, err := api.deps.Registry.Kind(kind)
	if err != nil {
		return nil, err
	}
	return OpenTable(api.db, spec), nil
}
