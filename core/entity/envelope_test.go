package entity

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestParseEnvelope(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    *Envelope
		wantErr bool
	}{
		{
			name: "success with data",
			body: `{"status":"success","message":"ok","data":{"id":42,"titulo":"Hola"}}`,
			want: &Envelope{Status: StatusSuccess, Message: "ok", Data: Record{"id": json.Number("42"), "titulo": "Hola"}},
		},
		{
			name: "error with field errors",
			body: `{"status":"error","errors":{"correo":"Formato inválido"}}`,
			want: &Envelope{Status: StatusError, Errors: map[string]string{"correo": "Formato inválido"}},
		},
		{
			name: "empty arrays are absent",
			body: `{"status":"error","message":"no","data":[],"errors":[]}`,
			want: &Envelope{Status: StatusError, Message: "no"},
		},
		{
			name: "null data",
			body: `{"status":"success","data":null}`,
			want: &Envelope{Status: StatusSuccess},
		},
		{name: "missing status", body: `{"message":"x"}`, wantErr: true},
		{name: "unknown status", body: `{"status":"fail"}`, wantErr: true},
		{name: "not json", body: `<!doctype html>`, wantErr: true},
		{name: "trailing html", body: `{"status":"success","data":{"id":1}}<br><b>Warning</b>: x`, wantErr: true},
		{name: "two values", body: `{"status":"success","data":{"id":1}} {"status":"error"}`, wantErr: true},
		{name: "trailing whitespace", body: "{\"status\":\"error\",\"message\":\"no\"}\n", want: &Envelope{Status: StatusError, Message: "no"}},
		{name: "data not an object", body: `{"status":"success","data":"42"}`, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseEnvelope([]byte(tc.body))
			if (err != nil) != tc.wantErr {
				t.Fatalf("ParseEnvelope() error = %v; wantErr %v", err, tc.wantErr)
			}
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("ParseEnvelope() = %+v; want %+v", got, tc.want)
			}
		})
	}
}

func TestEnvelope_check(t *testing.T) {
	keyed := []string{"alumno_id", "examen_id"}
	tests := []struct {
		name    string
		env     Envelope
		action  Action
		wantErr bool
	}{
		{name: "upsert with key", env: Envelope{Status: StatusSuccess, Data: Record{"alumno_id": "1", "examen_id": "2"}}, action: Create("")},
		{name: "upsert partial key", env: Envelope{Status: StatusSuccess, Data: Record{"alumno_id": "1"}}, action: Update(""), wantErr: true},
		{name: "upsert without data", env: Envelope{Status: StatusSuccess}, action: Create(""), wantErr: true},
		{name: "remove without data", env: Envelope{Status: StatusSuccess}, action: Delete("calificacion", "", "")},
		{name: "error with message", env: Envelope{Status: StatusError, Message: "no"}, action: Create("")},
		{name: "error with fields", env: Envelope{Status: StatusError, Errors: map[string]string{"a": "b"}}, action: Create("")},
		{name: "bare error", env: Envelope{Status: StatusError}, action: Create(""), wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.env.check(tc.action, keyed)
			if (err != nil) != tc.wantErr {
				t.Fatalf("check() error = %v; wantErr %v", err, tc.wantErr)
			}
			if err != nil && errors.Cause(err) != errMalformedEnvelope {
				t.Errorf("cause = %v; want errMalformedEnvelope", errors.Cause(err))
			}
		})
	}
}
