package school

import (
	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
)

// Notice priorities
const (
	PriorityLow    = "baja"
	PriorityMedium = "media"
	PriorityHigh   = "alta"
)

var priorityStyles = map[string]string{
	PriorityLow:    StyleInfo,
	PriorityMedium: StyleWarning,
	PriorityHigh:   StyleDanger,
}

var priorityLabels = map[string]string{
	PriorityLow:    "Baja",
	PriorityMedium: "Media",
	PriorityHigh:   "Alta",
}

var audienceLabels = map[string]string{
	"todos":    "Todos",
	"alumnos":  "Alumnos",
	"docentes": "Docentes",
}

func Notices() *entity.Specialization {
	return &entity.Specialization{
		Kind:      "notice",
		FormID:    "formAviso",
		Endpoint:  "/avisos",
		KeyFields: []string{"id"},
		Fields:    []string{"titulo", "contenido", "prioridad", "dirigido_a", "fecha_publicacion"},
		Rules: map[string]string{
			"titulo":            "required,notblank,max=120",
			"contenido":         "required,notblank",
			"prioridad":         "required,oneof=baja media alta",
			"dirigido_a":        "omitempty,oneof=todos alumnos docentes",
			"fecha_publicacion": "omitempty,isodate",
		},
		Actions: []entity.Action{
			entity.Create("Aviso publicado"),
			entity.Update("Aviso actualizado"),
			entity.Delete("aviso", "¿Eliminar este aviso?", "Aviso eliminado"),
		},
		Render: renderNotice,
	}
}

func renderNotice(rec entity.Record) entity.RowView {
	prio := rec.String("prioridad")
	style, ok := priorityStyles[prio]
	if !ok {
		style = StyleSecondary
	}
	audience := rec.String("dirigido_a")
	if audience == "" {
		audience = "todos"
	}
	return row(
		col("titulo", rec.String("titulo")),
		col("contenido", excerpt(rec.String("contenido"), excerptLen)),
		badge("prioridad", label(priorityLabels, prio), style),
		col("dirigido_a", label(audienceLabels, audience)),
		col("fecha", rec.String("fecha_publicacion")),
	)
}

func Events() *entity.Specialization {
	return &entity.Specialization{
		Kind:      "event",
		FormID:    "formEvento",
		Endpoint:  "/eventos",
		KeyFields: []string{"id"},
		Fields:    []string{"titulo", "descripcion", "fecha", "hora", "lugar"},
		Rules: map[string]string{
			"titulo":      "required,notblank,max=120",
			"descripcion": "omitempty,max=500",
			"fecha":       "required,isodate",
			"hora":        "omitempty,len=5",
			"lugar":       "omitempty,max=120",
		},
		Actions: []entity.Action{
			entity.Create("Evento creado"),
			entity.Update("Evento actualizado"),
			entity.Delete("evento", "¿Eliminar este evento?", "Evento eliminado"),
		},
		Render: renderEvent,
	}
}

func renderEvent(rec entity.Record) entity.RowView {
	when := rec.String("fecha")
	if h := rec.String("hora"); h != "" {
		when += " " + h
	}
	return row(
		col("titulo", rec.String("titulo")),
		col("descripcion", excerpt(rec.String("descripcion"), excerptLen)),
		col("fecha", when),
		col("lugar", rec.String("lugar")),
	)
}

// Semesters. Only one semester is active at a time; the server deactivates the others.
func Semesters() *entity.Specialization {
	activate := entity.Action{
		Name:           "activate_semestre",
		Effect:         entity.EffectUpsert,
		Destructive:    true,
		Confirm:        "¿Activar este semestre? El semestre activo actual se desactivará.",
		Rules:          map[string]string{"id": "required"},
		SuccessMessage: "Semestre activado",
	}
	return &entity.Specialization{
		Kind:      "semester",
		FormID:    "formSemestre",
		Endpoint:  "/semestres",
		KeyFields: []string{"id"},
		Fields:    []string{"nombre", "fecha_inicio", "fecha_fin"},
		Rules: map[string]string{
			"nombre":       "required,notblank,max=60",
			"fecha_inicio": "required,isodate",
			"fecha_fin":    "required,isodate",
		},
		Actions: []entity.Action{
			entity.Create("Semestre creado"),
			entity.Update("Semestre actualizado"),
			entity.Delete("semestre", "¿Eliminar este semestre?", "Semestre eliminado"),
			activate,
		},
		Render: renderSemester,
		Check:  checkDateRange("fecha_inicio", "fecha_fin"),
	}
}

func renderSemester(rec entity.Record) entity.RowView {
	status := badge("estado", "Inactivo", StyleSecondary)
	if truthy(rec, "activo") {
		status = badge("estado", "Activo", StyleSuccess)
	}
	return row(
		col("nombre", rec.String("nombre")),
		col("periodo", dateRange(rec.String("fecha_inicio"), rec.String("fecha_fin"))),
		status,
	)
}

// checkDateRange reports the end field when it falls before the start field.
// ISO dates compare as strings; malformed dates are left to the isodate rule.
func checkDateRange(startField, endField string) func(string, map[string]string) []core.FieldError {
	return func(action string, values map[string]string) []core.FieldError {
		if action != "create" && action != "update" {
			return nil
		}
		start, end := values[startField], values[endField]
		if start != "" && end != "" && end < start {
			return []core.FieldError{{Field: endField, Error: "must be on or after the start date"}}
		}
		return nil
	}
}
