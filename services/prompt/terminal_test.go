package promptsvc

import (
	"bytes"
	"errors"
	"strings"
	"testing"
)

func TestTerminal_Confirm(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		assumeYes bool
		want      bool
	}{
		{name: "si", input: "si\n", want: true},
		{name: "sí with spaces", input: "  Sí \n", want: true},
		{name: "yes", input: "y\n", want: true},
		{name: "no", input: "n\n"},
		{name: "empty", input: "\n"},
		{name: "eof", input: ""},
		{name: "no newline", input: "s", want: true},
		{name: "assume yes", assumeYes: true, want: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			term := NewTerminal(strings.NewReader(tc.input), &out, 0)
			term.AssumeYes = tc.assumeYes

			if got := term.Confirm("¿Eliminar?"); got != tc.want {
				t.Errorf("Confirm() = %v; want %v", got, tc.want)
			}
			if !strings.HasPrefix(out.String(), "¿Eliminar? [s/N]: ") {
				t.Errorf("prompt = %q", out.String())
			}
		})
	}
}

func TestTerminal_Secret(t *testing.T) {
	tests := []struct {
		name   string
		pwd    []byte
		err    error
		want   string
		wantOK bool
	}{
		{name: "typed", pwd: []byte("Vx9#qT2m!pR"), want: "Vx9#qT2m!pR", wantOK: true},
		{name: "empty cancels", pwd: []byte{}},
		{name: "read error", err: errors.New("not a terminal")},
	}

	orig := readPasswordFunc
	defer func() { readPasswordFunc = orig }()

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			readPasswordFunc = func(fd int) ([]byte, error) { return tc.pwd, tc.err }

			var out bytes.Buffer
			got, ok := NewTerminal(strings.NewReader(""), &out, 0).Secret("Nueva contraseña:")
			if got != tc.want || ok != tc.wantOK {
				t.Errorf("Secret() = %q, %v; want %q, %v", got, ok, tc.want, tc.wantOK)
			}
			if out.String() != "Nueva contraseña: \n" {
				t.Errorf("output = %q", out.String())
			}
		})
	}
}
