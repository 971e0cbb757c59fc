package entity

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/trezcool/masomo-sync/core"
)

type submitterMock struct {
	mu    sync.Mutex
	subs  []Submission
	res   *Response
	err   error
	block bool // wait for ctx to expire
}

func (s *submitterMock) Submit(ctx context.Context, sub Submission) (*Response, error) {
	s.mu.Lock()
	s.subs = append(s.subs, sub)
	s.mu.Unlock()

	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.res, s.err
}

func (s *submitterMock) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.subs)
}

func (s *submitterMock) last() Submission {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subs[len(s.subs)-1]
}

func reply(code int, body string) *submitterMock {
	return &submitterMock{res: &Response{StatusCode: code, Body: []byte(body)}}
}

type shown struct {
	msg      string
	severity core.Severity
	duration time.Duration
}

type sinkMock struct {
	shown []shown
}

func (s *sinkMock) Show(msg string, sev core.Severity, d time.Duration) {
	s.shown = append(s.shown, shown{msg, sev, d})
}

type dialogMock struct {
	confirm bool
	secret  string
	cancel  bool
	prompts []string
}

func (d *dialogMock) Confirm(prompt string) bool {
	d.prompts = append(d.prompts, prompt)
	return d.confirm
}

func (d *dialogMock) Secret(prompt string) (string, bool) {
	d.prompts = append(d.prompts, prompt)
	return d.secret, !d.cancel
}

type loggerMock struct {
	errors []string
}

func (l *loggerMock) Debug(msg string, args ...interface{}) {}
func (l *loggerMock) Info(msg string, args ...interface{})  {}
func (l *loggerMock) Warn(msg string, args ...interface{})  {}
func (l *loggerMock) Fatal(msg string, args ...interface{}) {}
func (l *loggerMock) Error(msg string, args ...interface{}) {
	l.errors = append(l.errors, fmt.Sprint(append([]interface{}{msg}, args...)...))
}

type pagesMock map[string]*Page

func (p pagesMock) Page(kind string) (*Page, error) {
	if page, ok := p[kind]; ok {
		return page, nil
	}
	return nil, ErrUnknownKind
}

func renderNotice(rec Record) RowView {
	return RowView{Columns: []Column{
		{Name: "titulo", Text: rec.String("titulo")},
		{Name: "prioridad", Text: rec.String("prioridad")},
	}}
}

func noticeSpec() *Specialization {
	return &Specialization{
		Kind:      "notice",
		FormID:    "formAviso",
		Endpoint:  "/avisos",
		KeyFields: []string{"id"},
		Fields:    []string{"id", "titulo", "contenido", "prioridad"},
		Rules: map[string]string{
			"titulo":    "required,max=120",
			"prioridad": "omitempty,oneof=baja media alta",
		},
		Actions: []Action{
			Create("Aviso creado"),
			Update("Aviso actualizado"),
			Delete("aviso", "¿Eliminar el aviso?", "Aviso eliminado"),
		},
		Render: renderNotice,
	}
}

func userSpec() *Specialization {
	return &Specialization{
		Kind:      "user",
		FormID:    "formUsuario",
		Endpoint:  "/usuarios",
		KeyFields: []string{"id"},
		Fields:    []string{"id", "nombre", "correo"},
		Actions:   []Action{Create(""), Update(""), Deactivate("¿Desactivar?", "")},
		Render: func(rec Record) RowView {
			return RowView{Columns: []Column{{Name: "nombre", Text: rec.String("nombre")}}}
		},
	}
}

func requestSpec() *Specialization {
	return &Specialization{
		Kind:      "request",
		FormID:    "formSolicitud",
		Endpoint:  "/solicitudes",
		KeyFields: []string{"id"},
		Fields:    []string{"id"},
		Actions: []Action{func() Action {
			a := Process("solicitud", EffectRemove, "", "Contraseña actualizada")
			a.Secret = &SecretPrompt{Field: "nueva_contrasena", Prompt: "Nueva contraseña:", Rule: "required,min=8"}
			return a
		}()},
		Render: func(rec Record) RowView { return RowView{} },
	}
}

func gradeSpec() *Specialization {
	return &Specialization{
		Kind:      "grade",
		FormID:    "formCalificacion",
		Endpoint:  "/calificaciones",
		KeyFields: []string{"alumno_id", "examen_id"},
		Fields:    []string{"alumno_id", "examen_id", "calificacion"},
		Actions:   []Action{Create(""), Update(""), Delete("calificacion", "", "")},
		Render: func(rec Record) RowView {
			return RowView{Columns: []Column{{Name: "calificacion", Text: rec.String("calificacion")}}}
		},
		Placement: Placement{Insert: EdgeBottom},
	}
}

func mustPage(t *testing.T, spec *Specialization, records ...Record) *Page {
	t.Helper()
	page, err := NewPage(spec, "tok", records)
	if err != nil {
		t.Fatalf("NewPage() failed: %v", err)
	}
	return page
}

type fixture struct {
	ctrl   *Controller
	sub    *submitterMock
	sink   *sinkMock
	dialog *dialogMock
	logger *loggerMock
	pages  pagesMock
}

func newFixture(t *testing.T, sub *submitterMock, pages pagesMock) *fixture {
	t.Helper()
	reg, err := NewRegistry(noticeSpec(), userSpec(), requestSpec(), gradeSpec())
	if err != nil {
		t.Fatalf("NewRegistry() failed: %v", err)
	}
	// pages are built from their own spec instances; lookups only need matching kinds
	translator := core.NewTranslator()
	f := &fixture{
		sub:    sub,
		sink:   &sinkMock{},
		dialog: &dialogMock{confirm: true},
		logger: &loggerMock{},
		pages:  pages,
	}
	f.ctrl = NewController(ControllerDeps{
		Registry:   reg,
		Pages:      pages,
		Submitter:  sub,
		Notifier:   f.sink,
		Dialog:     f.dialog,
		Logger:     f.logger,
		Validate:   core.NewValidator(translator),
		Translator: translator,
		Timeout:    time.Second,
		Durations: core.NotifyConfig{
			InfoDuration:    time.Second,
			SuccessDuration: 2 * time.Second,
			ErrorDuration:   3 * time.Second,
		},
	})
	return f
}
