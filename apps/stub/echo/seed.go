package stubapi

import (
	"github.com/pkg/errors"

	"github.com/trezcool/masomo-sync/core/entity"
	"github.com/trezcool/masomo-sync/storage/inmem"
)

// SeedPassword is the password of every seeded account.
const SeedPassword = "Masomo#2024!"

// Seed fills an empty database with a small school.
func Seed(db *inmemdb.DB, registry *entity.Registry) error {
	s := seeder{db: db, registry: registry}

	hash, err := inmemdb.HashPassword(SeedPassword)
	if err != nil {
		return errors.Wrap(err, "hashing seed password")
	}
	s.insert("user",
		entity.Record{"nombre": "Admin", "apellidos": "Masomo", "usuario": "admin", "correo": "admin@masomo.mx", "rol": "admin", "activo": true, "contrasena_hash": hash, "fecha_alta": "2024-01-08"},
		entity.Record{"nombre": "Laura", "apellidos": "Méndez Ruiz", "usuario": "lmendez", "correo": "lmendez@masomo.mx", "rol": "docente", "activo": true, "contrasena_hash": hash, "fecha_alta": "2024-01-08"},
		entity.Record{"nombre": "Diego", "apellidos": "Soto Pérez", "usuario": "dsoto", "correo": "dsoto@masomo.mx", "rol": "alumno", "activo": true, "contrasena_hash": hash, "fecha_alta": "2024-01-15"},
		entity.Record{"nombre": "Ana", "apellidos": "Ríos Vega", "usuario": "arios", "correo": "arios@masomo.mx", "rol": "alumno", "activo": true, "contrasena_hash": hash, "fecha_alta": "2024-01-15"},
	)
	s.insert("request",
		entity.Record{"usuario": "dsoto", "correo": "dsoto@masomo.mx", "motivo": "Olvidé mi contraseña", "fecha": "2024-03-02"},
	)
	s.insert("semester",
		entity.Record{"nombre": "2024-A", "fecha_inicio": "2024-01-15", "fecha_fin": "2024-06-28", "activo": true},
		entity.Record{"nombre": "2024-B", "fecha_inicio": "2024-08-12", "fecha_fin": "2024-12-20", "activo": false},
	)
	s.insert("generation",
		entity.Record{"nombre": "Generación 2024-2027", "anio_inicio": "2024", "anio_fin": "2027"},
	)
	s.insert("subject",
		entity.Record{"clave": "MAT101", "nombre": "Matemáticas I", "creditos": "8", "semestre_id": "1"},
		entity.Record{"clave": "ESP101", "nombre": "Español I", "creditos": "6", "semestre_id": "1"},
	)
	s.insert("group",
		entity.Record{"nombre": "1A", "generacion_id": "1", "semestre_id": "1", "turno": "matutino"},
	)
	s.insert("partial",
		entity.Record{"nombre": "Primer parcial", "numero": "1", "semestre_id": "1", "fecha_inicio": "2024-02-19", "fecha_fin": "2024-02-23"},
	)
	s.insert("grade",
		entity.Record{"alumno_id": "3", "examen_id": "1", "calificacion": "8.5", "observaciones": ""},
		entity.Record{"alumno_id": "4", "examen_id": "1", "calificacion": "5", "observaciones": "Presentar extraordinario"},
	)
	s.insert("notice",
		entity.Record{"titulo": "Inicio de clases", "contenido": "Las clases inician el 15 de enero.", "prioridad": "alta", "dirigido_a": "todos", "fecha_publicacion": "2024-01-08"},
		entity.Record{"titulo": "Junta de docentes", "contenido": "Sala de maestros, 13:00.", "prioridad": "media", "dirigido_a": "docentes", "fecha_publicacion": "2024-02-01"},
	)
	s.insert("event",
		entity.Record{"titulo": "Feria de ciencias", "descripcion": "Exposición de proyectos", "fecha": "2024-05-17", "hora": "09:00", "lugar": "Patio central"},
	)
	s.insert("report",
		entity.Record{"titulo": "Asistencia febrero", "tipo": "asistencia", "semestre_id": "1", "fecha": "2024-03-01", "estado": "generado"},
	)
	return s.err
}

// seeder stops at the first error.
type seeder struct {
	db       *inmemdb.DB
	registry *entity.Registry
	err      error
}

func (s *seeder) insert(kind string, recs ...entity.Record) {
	if s.err != nil {
		return
	}
	spec, err := s.registry.Kind(kind)
	if err != nil {
		s.err = err
		return
	}
	table := OpenTable(s.db, spec)
	for _, rec := range recs {
		if _, err = table.Insert(rec); err != nil {
			s.err = errors.Wrapf(err, "seeding %s", kind)
			return
		}
	}
}
