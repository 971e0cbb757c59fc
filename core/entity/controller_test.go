package entity

import (
	"context"
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-sync/core"
)

var (
	traceSuccess  = []State{Idle, Sending, Reconciling, Idle}
	traceRejected = []State{Idle, Sending, Idle}
	traceNotSent  = []State{Idle}
)

func noticeForm() *Form {
	return NewForm("formAviso", "titulo", "contenido", "prioridad")
}

func keysOf(rows []RowView) []Key {
	keys := make([]Key, 0, len(rows))
	for _, r := range rows {
		keys = append(keys, r.Key)
	}
	return keys
}

func TestController_Handle_createNotice(t *testing.T) {
	page := mustPage(t, noticeSpec(), Record{"id": "41", "titulo": "Old"})
	sub := reply(http.StatusOK, `{"status":"success","message":"Aviso creado","data":{"id":42,"titulo":"Reunión","prioridad":"alta"}}`)
	f := newFixture(t, sub, pagesMock{"notice": page})

	form := noticeForm().Set("action", "create").Set("titulo", "Reunión").Set("prioridad", "alta")
	out := f.ctrl.Handle(context.Background(), form)

	if out.Err != nil {
		t.Fatalf("Handle() error = %v", out.Err)
	}
	if !reflect.DeepEqual(out.Trace, traceSuccess) {
		t.Errorf("Trace = %v; want %v", out.Trace, traceSuccess)
	}
	if out.Key != "42" {
		t.Errorf("Key = %q; want %q", out.Key, "42")
	}
	if got, want := keysOf(page.Rows()), []Key{"42", "41"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v; want %v", got, want)
	}
	if got := page.Rows()[0].Text("titulo"); got != "Reunión" {
		t.Errorf("row titulo = %q; want %q", got, "Reunión")
	}
	if page.Len() != 2 {
		t.Errorf("Len() = %d; want 2", page.Len())
	}
	if form.IsOpen() {
		t.Error("form should be closed after success")
	}
	want := []shown{{"Aviso creado", core.SeveritySuccess, 2 * time.Second}}
	if !reflect.DeepEqual(f.sink.shown, want) {
		t.Errorf("notifications = %v; want %v", f.sink.shown, want)
	}

	s := f.sub.last()
	if s.Endpoint != "/avisos" {
		t.Errorf("Endpoint = %q; want /avisos", s.Endpoint)
	}
	if s.Values[ActionField] != "create" || s.Values[CSRFField] != "tok" {
		t.Errorf("sent action/csrf = %q/%q", s.Values[ActionField], s.Values[CSRFField])
	}
	if s.RequestID == "" {
		t.Error("RequestID should be set")
	}
}

func TestController_Handle_updateKeepsPosition(t *testing.T) {
	page := mustPage(t, noticeSpec(),
		Record{"id": "1", "titulo": "A"},
		Record{"id": "2", "titulo": "B"},
		Record{"id": "3", "titulo": "C"},
	)
	sub := reply(http.StatusOK, `{"status":"success","data":{"id":"2","titulo":"B2"}}`)
	f := newFixture(t, sub, pagesMock{"notice": page})

	form := noticeForm().Set("id", "2").Set("titulo", "B2")
	out := f.ctrl.Handle(context.Background(), form)

	if out.Err != nil {
		t.Fatalf("Handle() error = %v", out.Err)
	}
	if out.Action != "update" {
		t.Errorf("Action = %q; want update (defaulted from key)", out.Action)
	}
	if got, want := keysOf(page.Rows()), []Key{"1", "2", "3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v; want %v", got, want)
	}
	if got := page.Rows()[1].Text("titulo"); got != "B2" {
		t.Errorf("row titulo = %q; want B2", got)
	}
	if f.sink.shown[0].msg != "Aviso actualizado" {
		t.Errorf("notification = %q; want fallback success message", f.sink.shown[0].msg)
	}
}

func TestController_Handle_fieldErrors(t *testing.T) {
	usr := Record{"id": "7", "nombre": "Ana", "correo": "ana@x.mx"}
	page := mustPage(t, userSpec(), usr)
	sub := reply(http.StatusOK, `{"status":"error","message":"Revise el formulario","errors":{"correo":"Formato inválido","rfc":"Requerido"}}`)
	f := newFixture(t, sub, pagesMock{"user": page})

	form := NewForm("formUsuario", "nombre", "correo").
		Set("action", "update").Set("id", "7").Set("nombre", "Ana").Set("correo", "ana@")
	before := page.Rows()
	out := f.ctrl.Handle(context.Background(), form)

	if !reflect.DeepEqual(out.Trace, traceRejected) {
		t.Errorf("Trace = %v; want %v", out.Trace, traceRejected)
	}
	vErr, ok := errors.Cause(out.Err).(*core.ValidationError)
	if !ok {
		t.Fatalf("Err = %T %v; want *core.ValidationError", out.Err, out.Err)
	}
	if len(vErr.Fields) != 2 {
		t.Errorf("Fields = %v; want 2 field errors", vErr.Fields)
	}
	if msg, _ := form.Annotation("correo"); msg != "Formato inválido" {
		t.Errorf("correo annotation = %q; want %q", msg, "Formato inválido")
	}
	if _, ok := form.Annotation("rfc"); ok {
		t.Error("rfc has no input and must not be annotated")
	}
	if !form.IsOpen() {
		t.Error("form should stay open")
	}
	if !reflect.DeepEqual(page.Rows(), before) {
		t.Error("rows should not change")
	}
	if rec, _ := page.Record("7"); rec.String("correo") != "ana@x.mx" {
		t.Errorf("record changed: %v", rec)
	}
	want := []shown{{"Revise el formulario", core.SeverityError, 3 * time.Second}}
	if !reflect.DeepEqual(f.sink.shown, want) {
		t.Errorf("notifications = %v; want %v", f.sink.shown, want)
	}
}

func TestController_Handle_domainError(t *testing.T) {
	page := mustPage(t, noticeSpec(), Record{"id": "5", "titulo": "X"})
	sub := reply(http.StatusOK, `{"status":"error","message":"El aviso no existe","errors":[]}`)
	f := newFixture(t, sub, pagesMock{"notice": page})

	form := noticeForm().Set("id", "5").Set("titulo", "Y")
	out := f.ctrl.Handle(context.Background(), form)

	dErr, ok := errors.Cause(out.Err).(*core.DomainError)
	if !ok {
		t.Fatalf("Err = %T; want *core.DomainError", out.Err)
	}
	if dErr.Message != "El aviso no existe" {
		t.Errorf("Message = %q", dErr.Message)
	}
	if len(form.Annotations()) != 0 {
		t.Errorf("Annotations() = %v; want none", form.Annotations())
	}
	if !form.IsOpen() {
		t.Error("form should stay open")
	}
	if len(f.sink.shown) != 1 || f.sink.shown[0].severity != core.SeverityError {
		t.Errorf("notifications = %v; want one error", f.sink.shown)
	}
}

func TestController_Handle_deleteWithoutData(t *testing.T) {
	page := mustPage(t, noticeSpec(), Record{"id": "4"}, Record{"id": "5"}, Record{"id": "6"})
	sub := reply(http.StatusOK, `{"status":"success","message":"Aviso eliminado"}`)
	f := newFixture(t, sub, pagesMock{"notice": page})

	form := noticeForm().Set("action", "delete_aviso").Set("id", "5")
	out := f.ctrl.Handle(context.Background(), form)

	if out.Err != nil {
		t.Fatalf("Handle() error = %v", out.Err)
	}
	if out.Key != "5" {
		t.Errorf("Key = %q; want 5", out.Key)
	}
	if _, ok := page.Record("5"); ok {
		t.Error("record 5 should be removed")
	}
	if got, want := keysOf(page.Rows()), []Key{"4", "6"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v; want %v", got, want)
	}
	if !reflect.DeepEqual(f.dialog.prompts, []string{"¿Eliminar el aviso?"}) {
		t.Errorf("prompts = %v", f.dialog.prompts)
	}
}

func TestController_Handle_deleteTwice(t *testing.T) {
	page := mustPage(t, noticeSpec(), Record{"id": "5"})
	sub := reply(http.StatusOK, `{"status":"success","data":{"id":"5"}}`)
	f := newFixture(t, sub, pagesMock{"notice": page})

	for i := 0; i < 2; i++ {
		out := f.ctrl.Handle(context.Background(), noticeForm().Set("action", "delete_aviso").Set("id", "5"))
		if out.Err != nil {
			t.Fatalf("#%d Handle() error = %v", i, out.Err)
		}
	}
	if page.Len() != 0 || len(page.Rows()) != 0 {
		t.Errorf("page not empty: %v", page.Rows())
	}
}

func TestController_Handle_declinedConfirmation(t *testing.T) {
	page := mustPage(t, noticeSpec(), Record{"id": "5"})
	sub := reply(http.StatusOK, `{"status":"success"}`)
	f := newFixture(t, sub, pagesMock{"notice": page})
	f.dialog.confirm = false

	form := noticeForm().Set("action", "delete_aviso").Set("id", "5")
	form.Annotate(map[string]string{"titulo": "too long"})
	out := f.ctrl.Handle(context.Background(), form)

	if !out.Aborted() {
		t.Errorf("Aborted() = false; Err = %v", out.Err)
	}
	if out.Sent() || f.sub.count() != 0 {
		t.Errorf("requests = %d; want 0", f.sub.count())
	}
	if !reflect.DeepEqual(out.Trace, traceNotSent) {
		t.Errorf("Trace = %v; want %v", out.Trace, traceNotSent)
	}
	if len(f.sink.shown) != 0 {
		t.Errorf("notifications = %v; want none", f.sink.shown)
	}
	if page.Len() != 1 {
		t.Error("record should remain")
	}
	if msg, ok := form.Annotation("titulo"); !ok || msg != "too long" {
		t.Errorf("Annotation(titulo) = %q, %v; earlier field errors should survive a declined confirmation", msg, ok)
	}
}

func TestController_Handle_transportFailures(t *testing.T) {
	tests := []struct {
		name       string
		sub        *submitterMock
		wantStatus int
	}{
		{name: "network error", sub: &submitterMock{err: errors.New("connection refused")}},
		{name: "server error", sub: reply(http.StatusInternalServerError, `oops`), wantStatus: 500},
		{name: "forbidden", sub: reply(http.StatusForbidden, `{"status":"error","message":"csrf"}`), wantStatus: 403},
		{name: "non json", sub: reply(http.StatusOK, `<html>login</html>`), wantStatus: 200},
		{name: "json followed by html", sub: reply(http.StatusOK, `{"status":"success","data":{"id":2,"titulo":"x"}}<br><b>Warning</b>: x`), wantStatus: 200},
		{name: "missing status", sub: reply(http.StatusOK, `{"message":"hi"}`), wantStatus: 200},
		{name: "unknown status", sub: reply(http.StatusOK, `{"status":"ok"}`), wantStatus: 200},
		{name: "success without data", sub: reply(http.StatusOK, `{"status":"success"}`), wantStatus: 200},
		{name: "data without key", sub: reply(http.StatusOK, `{"status":"success","data":{"titulo":"x"}}`), wantStatus: 200},
		{name: "error without message", sub: reply(http.StatusOK, `{"status":"error"}`), wantStatus: 200},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page := mustPage(t, noticeSpec(), Record{"id": "1", "titulo": "A"})
			f := newFixture(t, tc.sub, pagesMock{"notice": page})

			form := noticeForm().Set("action", "create").Set("titulo", "Nuevo")
			out := f.ctrl.Handle(context.Background(), form)

			if !core.IsTransport(out.Err) {
				t.Fatalf("Err = %v; want a transport error", out.Err)
			}
			tErr := errors.Cause(out.Err).(*core.TransportError)
			if tErr.StatusCode != tc.wantStatus {
				t.Errorf("StatusCode = %d; want %d", tErr.StatusCode, tc.wantStatus)
			}
			if tErr.Endpoint != "/avisos" || tErr.RequestID == "" {
				t.Errorf("diagnostic = %+v", tErr)
			}
			if !reflect.DeepEqual(out.Trace, traceRejected) {
				t.Errorf("Trace = %v; want %v", out.Trace, traceRejected)
			}
			if f.sub.count() != 1 {
				t.Errorf("requests = %d; want exactly 1", f.sub.count())
			}
			want := []shown{{msgTransport, core.SeverityError, 3 * time.Second}}
			if !reflect.DeepEqual(f.sink.shown, want) {
				t.Errorf("notifications = %v; want %v", f.sink.shown, want)
			}
			if len(f.logger.errors) != 1 {
				t.Errorf("logged errors = %v; want 1", f.logger.errors)
			}
			if page.Len() != 1 || len(page.Rows()) != 1 {
				t.Error("page should not change")
			}
			if !form.IsOpen() || form.Get("titulo") != "Nuevo" {
				t.Error("form should stay open and untouched")
			}
		})
	}
}

func TestController_Handle_timeout(t *testing.T) {
	page := mustPage(t, noticeSpec())
	f := newFixture(t, &submitterMock{block: true}, pagesMock{"notice": page})
	f.ctrl.timeout = 10 * time.Millisecond

	out := f.ctrl.Handle(context.Background(), noticeForm().Set("action", "create").Set("titulo", "T"))

	if !core.IsTransport(out.Err) {
		t.Fatalf("Err = %v; want a transport error", out.Err)
	}
	if tErr := errors.Cause(out.Err).(*core.TransportError); tErr.Err != context.DeadlineExceeded {
		t.Errorf("cause = %v; want deadline exceeded", tErr.Err)
	}
}

func TestController_Handle_clientValidation(t *testing.T) {
	tests := []struct {
		name      string
		form      *Form
		wantNotes map[string]string
	}{
		{
			name:      "required",
			form:      noticeForm().Set("action", "create").Set("titulo", ""),
			wantNotes: map[string]string{"titulo": "this field is required"},
		},
		{
			name:      "oneof",
			form:      noticeForm().Set("action", "create").Set("titulo", "T").Set("prioridad", "urgente"),
			wantNotes: map[string]string{"prioridad": "must be one of: baja, media, alta"},
		},
		{
			name:      "removal needs key",
			form:      noticeForm().Set("action", "delete_aviso"),
			wantNotes: map[string]string{},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, reply(http.StatusOK, `{}`), pagesMock{"notice": mustPage(t, noticeSpec())})

			out := f.ctrl.Handle(context.Background(), tc.form)

			if _, ok := errors.Cause(out.Err).(*core.ValidationError); !ok {
				t.Fatalf("Err = %v; want *core.ValidationError", out.Err)
			}
			if f.sub.count() != 0 {
				t.Errorf("requests = %d; want 0", f.sub.count())
			}
			if got := tc.form.Annotations(); !reflect.DeepEqual(got, tc.wantNotes) {
				t.Errorf("Annotations() = %v; want %v", got, tc.wantNotes)
			}
			if !tc.form.IsOpen() {
				t.Error("form should stay open")
			}
		})
	}
}

func TestController_Handle_invalidAction(t *testing.T) {
	f := newFixture(t, reply(http.StatusOK, `{}`), pagesMock{"notice": mustPage(t, noticeSpec())})

	out := f.ctrl.Handle(context.Background(), noticeForm().Set("action", "deactivate").Set("id", "1"))

	if errors.Cause(out.Err) != ErrInvalidAction {
		t.Errorf("Err = %v; want ErrInvalidAction", out.Err)
	}
	if f.sub.count() != 0 {
		t.Errorf("requests = %d; want 0", f.sub.count())
	}
}

func TestController_Handle_unknownForm(t *testing.T) {
	f := newFixture(t, reply(http.StatusOK, `{}`), pagesMock{})

	out := f.ctrl.Handle(context.Background(), NewForm("formNada"))

	if errors.Cause(out.Err) != ErrUnknownForm {
		t.Errorf("Err = %v; want ErrUnknownForm", out.Err)
	}
	if len(f.sink.shown) != 1 || f.sink.shown[0].msg != msgUnexpected {
		t.Errorf("notifications = %v", f.sink.shown)
	}
}

func TestController_Handle_processRequest(t *testing.T) {
	tests := []struct {
		name     string
		secret   string
		cancel   bool
		wantSent bool
		wantErr  error
	}{
		{name: "processed", secret: "s3cretPass", wantSent: true},
		{name: "cancelled", cancel: true, wantErr: core.ErrUserAborted},
		{name: "too short", secret: "abc"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			page := mustPage(t, requestSpec(), Record{"id": "9"}, Record{"id": "10"})
			f := newFixture(t, reply(http.StatusOK, `{"status":"success","message":"Listo"}`), pagesMock{"request": page})
			f.dialog.secret, f.dialog.cancel = tc.secret, tc.cancel

			form := NewForm("formSolicitud").Set("action", "process_solicitud").Set("id", "9")
			out := f.ctrl.Handle(context.Background(), form)

			if out.Sent() != tc.wantSent {
				t.Fatalf("Sent() = %v; want %v (err: %v)", out.Sent(), tc.wantSent, out.Err)
			}
			if tc.wantErr != nil && errors.Cause(out.Err) != tc.wantErr {
				t.Errorf("Err = %v; want %v", out.Err, tc.wantErr)
			}
			if form.Get("nueva_contrasena") != "" {
				t.Error("secret must not be stored in the form")
			}
			if !tc.wantSent {
				if page.Len() != 2 {
					t.Error("page should not change")
				}
				return
			}
			if out.Err != nil {
				t.Fatalf("Handle() error = %v", out.Err)
			}
			if got := f.sub.last().Values["nueva_contrasena"]; got != tc.secret {
				t.Errorf("sent secret = %q; want %q", got, tc.secret)
			}
			if got, want := keysOf(page.Rows()), []Key{"10"}; !reflect.DeepEqual(got, want) {
				t.Errorf("rows = %v; want %v", got, want)
			}
		})
	}
}

func TestController_Handle_compositeKey(t *testing.T) {
	page := mustPage(t, gradeSpec(), Record{"alumno_id": "1", "examen_id": "3", "calificacion": "8"})
	sub := reply(http.StatusOK, `{"status":"success","data":{"alumno_id":12,"examen_id":3,"calificacion":9.5}}`)
	f := newFixture(t, sub, pagesMock{"grade": page})

	form := NewForm("formCalificacion", "calificacion").
		Set("action", "create").Set("alumno_id", "12").Set("examen_id", "3").Set("calificacion", "9.5")
	out := f.ctrl.Handle(context.Background(), form)

	if out.Err != nil {
		t.Fatalf("Handle() error = %v", out.Err)
	}
	if got, want := keysOf(page.Rows()), []Key{"1:3", "12:3"}; !reflect.DeepEqual(got, want) {
		t.Errorf("rows = %v; want %v (bottom insert)", got, want)
	}
	if got := out.Row.Text("calificacion"); got != "9.5" {
		t.Errorf("row calificacion = %q; want 9.5", got)
	}
}

func TestController_Submit(t *testing.T) {
	f := newFixture(t, reply(http.StatusOK, `{"status":"success","data":{"id":"3"}}`), pagesMock{})

	env, err := f.ctrl.Submit(context.Background(), noticeForm().Set("action", "update").Set("id", "3"), "/otro", "csrf-1")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if !env.OK() || env.Data.String("id") != "3" {
		t.Errorf("envelope = %+v", env)
	}
	s := f.sub.last()
	if s.Endpoint != "/otro" || s.Values[CSRFField] != "csrf-1" {
		t.Errorf("submission = %+v", s)
	}

	_, err = f.ctrl.Submit(context.Background(), noticeForm().Set("action", "explode"), "/avisos", "")
	if errors.Cause(err) != ErrInvalidAction {
		t.Errorf("Submit() error = %v; want ErrInvalidAction", err)
	}
	if f.sub.count() != 1 {
		t.Errorf("requests = %d; want 1", f.sub.count())
	}
}

func TestController_ConfirmDestructive(t *testing.T) {
	f := newFixture(t, reply(http.StatusOK, `{}`), pagesMock{})

	if !f.ctrl.ConfirmDestructive("") {
		t.Error("ConfirmDestructive() = false; want true")
	}
	if !strings.Contains(f.dialog.prompts[0], "cannot be undone") {
		t.Errorf("default prompt = %q", f.dialog.prompts[0])
	}

	f.ctrl.dialog = nil
	if f.ctrl.ConfirmDestructive("sure?") {
		t.Error("ConfirmDestructive() without dialog = true; want false")
	}
}

func TestState_String(t *testing.T) {
	tests := map[State]string{Idle: "IDLE", Sending: "SENDING", Reconciling: "RECONCILING", State(9): "UNKNOWN"}
	for s, want := range tests {
		if got := s.String(); got != want {
			t.Errorf("%d.String() = %q; want %q", s, got, want)
		}
	}
}
