// Package promptsvc implements core.Dialog on a terminal.
package promptsvc

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/term"

	"github.com/trezcool/masomo-sync/core"
)

var readPasswordFunc = term.ReadPassword // mockable

var yesAnswers = map[string]bool{"s": true, "si": true, "sí": true, "y": true, "yes": true}

// Terminal asks its questions on out and reads the answers from in.
// Secrets are read without echo from the terminal behind fd.
type Terminal struct {
	in  *bufio.Reader
	out io.Writer
	fd  int

	// AssumeYes confirms every question without asking.
	AssumeYes bool
}

var _ core.Dialog = (*Terminal)(nil)

func NewTerminal(in io.Reader, out io.Writer, fd int) *Terminal {
	return &Terminal{in: bufio.NewReader(in), out: out, fd: fd}
}

func (t *Terminal) Confirm(prompt string) bool {
	if t.AssumeYes {
		fmt.Fprintf(t.out, "%s [s/N]: s\n", prompt)
		return true
	}
	fmt.Fprintf(t.out, "%s [s/N]: ", prompt)
	answer, err := t.in.ReadString('\n')
	if err != nil && answer == "" {
		return false
	}
	return yesAnswers[core.CleanString(answer, true)]
}

// Secret reads a hidden value. An empty answer cancels.
func (t *Terminal) Secret(prompt string) (string, bool) {
	fmt.Fprint(t.out, strings.TrimSpace(prompt)+" ")
	secret, err := readPasswordFunc(t.fd)
	fmt.Fprintln(t.out)
	if err != nil || len(secret) == 0 {
		return "", false
	}
	return string(secret), true
}
