package school

import (
	"strconv"

	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
)

const (
	gradeMin     = 0
	gradeMax     = 10
	passingGrade = 6
)

var shiftLabels = map[string]string{
	"matutino":   "Matutino",
	"vespertino": "Vespertino",
}

var reportTypeLabels = map[string]string{
	"asistencia":     "Asistencia",
	"calificaciones": "Calificaciones",
	"general":        "General",
}

func Subjects() *entity.Specialization {
	return &entity.Specialization{
		Kind:      "subject",
		FormID:    "formMateria",
		Endpoint:  "/materias",
		KeyFields: []string{"id"},
		Fields:    []string{"clave", "nombre", "creditos", "semestre_id"},
		Rules: map[string]string{
			"clave":       "required,alphanum_,max=20",
			"nombre":      "required,notblank,max=120",
			"creditos":    "omitempty,number",
			"semestre_id": "required,number",
		},
		Actions: []entity.Action{
			entity.Create("Materia creada"),
			entity.Update("Materia actualizada"),
			entity.Delete("materia", "¿Eliminar esta materia?", "Materia eliminada"),
		},
		Render: renderSubject,
	}
}

func renderSubject(rec entity.Record) entity.RowView {
	return row(
		col("clave", rec.String("clave")),
		col("nombre", rec.String("nombre")),
		col("creditos", rec.String("creditos")),
		col("semestre", firstOf(rec, "semestre", "semestre_id")),
	)
}

func Groups() *entity.Specialization {
	return &entity.Specialization{
		Kind:      "group",
		FormID:    "formGrupo",
		Endpoint:  "/grupos",
		KeyFields: []string{"id"},
		Fields:    []string{"nombre", "generacion_id", "semestre_id", "turno"},
		Rules: map[string]string{
			"nombre":        "required,notblank,max=30",
			"generacion_id": "required,number",
			"semestre_id":   "required,number",
			"turno":         "omitempty,oneof=matutino vespertino",
		},
		Actions: []entity.Action{
			entity.Create("Grupo creado"),
			entity.Update("Grupo actualizado"),
			entity.Delete("grupo", "¿Eliminar este grupo?", "Grupo eliminado"),
		},
		Render: renderGroup,
	}
}

func renderGroup(rec entity.Record) entity.RowView {
	return row(
		col("nombre", rec.String("nombre")),
		col("generacion", firstOf(rec, "generacion", "generacion_id")),
		col("semestre", firstOf(rec, "semestre", "semestre_id")),
		col("turno", label(shiftLabels, rec.String("turno"))),
	)
}

func Generations() *entity.Specialization {
	return &entity.Specialization{
		Kind:      "generation",
		FormID:    "formGeneracion",
		Endpoint:  "/generaciones",
		KeyFields: []string{"id"},
		Fields:    []string{"nombre", "anio_inicio", "anio_fin"},
		Rules: map[string]string{
			"nombre":      "required,notblank,max=60",
			"anio_inicio": "required,number,len=4",
			"anio_fin":    "required,number,len=4",
		},
		Actions: []entity.Action{
			entity.Create("Generación creada"),
			entity.Update("Generación actualizada"),
			entity.Delete("generacion", "¿Eliminar esta generación?", "Generación eliminada"),
		},
		Render: renderGeneration,
		Check:  checkDateRange("anio_inicio", "anio_fin"),
	}
}

func renderGeneration(rec entity.Record) entity.RowView {
	return row(
		col("nombre", rec.String("nombre")),
		col("periodo", dateRange(rec.String("anio_inicio"), rec.String("anio_fin"))),
	)
}

// Partials are the exam periods of a semester.
func Partials() *entity.Specialization {
	return &entity.Specialization{
		Kind:      "partial",
		FormID:    "formParcial",
		Endpoint:  "/parciales",
		KeyFields: []string{"id"},
		Fields:    []string{"nombre", "numero", "semestre_id", "fecha_inicio", "fecha_fin"},
		Rules: map[string]string{
			"nombre":       "required,notblank,max=60",
			"numero":       "required,oneof=1 2 3 4",
			"semestre_id":  "required,number",
			"fecha_inicio": "omitempty,isodate",
			"fecha_fin":    "omitempty,isodate",
		},
		Actions: []entity.Action{
			entity.Create("Parcial creado"),
			entity.Update("Parcial actualizado"),
			entity.Delete("parcial", "¿Eliminar este parcial?", "Parcial eliminado"),
		},
		Render: renderPartial,
		Check:  checkDateRange("fecha_inicio", "fecha_fin"),
	}
}

func renderPartial(rec entity.Record) entity.RowView {
	return row(
		col("numero", rec.String("numero")),
		col("nombre", rec.String("nombre")),
		col("semestre", firstOf(rec, "semestre", "semestre_id")),
		col("periodo", dateRange(rec.String("fecha_inicio"), rec.String("fecha_fin"))),
	)
}

// Grades are keyed by (alumno_id, examen_id) and listed in entry order.
func Grades() *entity.Specialization {
	return &entity.Specialization{
		Kind:      "grade",
		FormID:    "formCalificacion",
		Endpoint:  "/calificaciones",
		KeyFields: []string{"alumno_id", "examen_id"},
		Fields:    []string{"alumno_id", "examen_id", "calificacion", "observaciones"},
		Rules: map[string]string{
			"alumno_id":     "required,number",
			"examen_id":     "required,number",
			"calificacion":  "required,numeric",
			"observaciones": "omitempty,max=255",
		},
		Actions: []entity.Action{
			entity.Create("Calificación registrada"),
			entity.Update("Calificación actualizada"),
			entity.Delete("calificacion", "¿Eliminar esta calificación?", "Calificación eliminada"),
		},
		Render:    renderGrade,
		Placement: entity.Placement{Insert: entity.EdgeBottom},
		Check:     checkGrade,
	}
}

func renderGrade(rec entity.Record) entity.RowView {
	grade := rec.String("calificacion")
	style := StyleSuccess
	if g, err := strconv.ParseFloat(grade, 64); err == nil && g < passingGrade {
		style = StyleDanger
	}
	return row(
		col("alumno", firstOf(rec, "alumno", "alumno_id")),
		col("examen", firstOf(rec, "examen", "examen_id")),
		badge("calificacion", grade, style),
		col("observaciones", excerpt(rec.String("observaciones"), excerptLen)),
	)
}

func checkGrade(action string, values map[string]string) []core.FieldError {
	if action != "create" && action != "update" {
		return nil
	}
	g, err := strconv.ParseFloat(values["calificacion"], 64)
	if err != nil {
		return nil
	}
	if g < gradeMin || g > gradeMax {
		return []core.FieldError{{Field: "calificacion", Error: "must be between 0 and 10"}}
	}
	return nil
}

// Reports are generated server-side; the client only requests & deletes them.
func Reports() *entity.Specialization {
	return &entity.Specialization{
		Kind:      "report",
		FormID:    "formReporte",
		Endpoint:  "/reportes",
		KeyFields: []string{"id"},
		Fields:    []string{"titulo", "tipo", "semestre_id", "descripcion"},
		Rules: map[string]string{
			"titulo":      "required,notblank,max=120",
			"tipo":        "required,oneof=asistencia calificaciones general",
			"semestre_id": "omitempty,number",
			"descripcion": "omitempty,max=500",
		},
		Actions: []entity.Action{
			entity.Create("Reporte generado"),
			entity.Delete("reporte", "¿Eliminar este reporte?", "Reporte eliminado"),
		},
		Render:    renderReport,
		Placement: entity.Placement{Insert: entity.EdgeBottom},
	}
}

func renderReport(rec entity.Record) entity.RowView {
	return row(
		col("titulo", rec.String("titulo")),
		col("tipo", label(reportTypeLabels, rec.String("tipo"))),
		col("fecha", rec.String("fecha")),
		col("descripcion", excerpt(rec.String("descripcion"), excerptLen)),
	)
}

// firstOf returns the first non-empty field, e.g. a joined name before its raw id.
func firstOf(rec entity.Record, fields ...string) string {
	for _, f := range fields {
		if v := rec.String(f); v != "" {
			return v
		}
	}
	return ""
}
