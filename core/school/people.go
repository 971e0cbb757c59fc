package school

import (
	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
)

// Roles
const (
	RoleAdmin   = "admin"
	RoleTeacher = "docente"
	RoleStudent = "alumno"
)

var roleLabels = map[string]string{
	RoleAdmin:   "Administrador",
	RoleTeacher: "Docente",
	RoleStudent: "Alumno",
}

var userRules = map[string]string{
	"nombre":     "required,notblank,max=80",
	"apellidos":  "omitempty,max=120",
	"correo":     "required,email,max=120",
	"usuario":    "required,alphanum_,min=3,max=30",
	"rol":        "required,oneof=admin docente alumno",
	"contrasena": "omitempty," + PasswordRule,
}

// Users lists active accounts; deactivating one takes it off the page.
func Users() *entity.Specialization {
	create := entity.Create("Usuario creado")
	create.Rules = withRule(userRules, "contrasena", "required,"+PasswordRule)

	return &entity.Specialization{
		Kind:      "user",
		FormID:    "formUsuario",
		Endpoint:  "/usuarios",
		KeyFields: []string{"id"},
		Fields:    []string{"nombre", "apellidos", "correo", "usuario", "rol", "contrasena"},
		Rules:     userRules,
		Actions: []entity.Action{
			create,
			entity.Update("Usuario actualizado"),
			entity.Deactivate("¿Desactivar este usuario? Ya no podrá iniciar sesión.", "Usuario desactivado"),
		},
		Render: renderUser,
		Check:  checkUser,
	}
}

func renderUser(rec entity.Record) entity.RowView {
	status := badge("estado", "Inactivo", StyleSecondary)
	if truthy(rec, "activo") {
		status = badge("estado", "Activo", StyleSuccess)
	}
	return row(
		col("nombre", fullName(rec.String("nombre"), rec.String("apellidos"))),
		col("usuario", rec.String("usuario")),
		col("correo", rec.String("correo")),
		col("rol", label(roleLabels, rec.String("rol"))),
		status,
	)
}

func checkUser(action string, values map[string]string) []core.FieldError {
	if action != "create" && action != "update" {
		return nil
	}
	return passwordSimilarity("contrasena", values["contrasena"], values["nombre"], values["usuario"], values["correo"])
}

// Requests are password-reset requests. Processing one sets the new password typed by the admin.
func Requests() *entity.Specialization {
	process := entity.Process("solicitud", entity.EffectRemove, "", "Contraseña restablecida")
	process.Secret = &entity.SecretPrompt{
		Field:  "nueva_contrasena",
		Prompt: "Nueva contraseña para el usuario:",
		Rule:   "required," + PasswordRule,
	}
	reject := entity.Action{
		Name:           "reject_solicitud",
		Effect:         entity.EffectRemove,
		Destructive:    true,
		Confirm:        "¿Rechazar esta solicitud?",
		SuccessMessage: "Solicitud rechazada",
	}

	return &entity.Specialization{
		Kind:      "request",
		FormID:    "formSolicitud",
		Endpoint:  "/solicitudes",
		KeyFields: []string{"id"},
		Fields:    []string{"comentario"},
		Rules:     map[string]string{"comentario": "omitempty,max=255"},
		Actions:   []entity.Action{process, reject},
		Render:    renderRequest,
	}
}

func renderRequest(rec entity.Record) entity.RowView {
	return row(
		col("usuario", rec.String("usuario")),
		col("correo", rec.String("correo")),
		col("motivo", excerpt(rec.String("motivo"), excerptLen)),
		col("fecha", rec.String("fecha")),
		badge("estado", "Pendiente", StyleWarning),
	)
}

// withRule returns a copy of rules with field's rule replaced.
func withRule(rules map[string]string, field, rule string) map[string]string {
	c := make(map[string]string, len(rules)+1)
	for k, v := range rules {
		c[k] = v
	}
	c[field] = rule
	return c
}
