package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
)

func (cli *commandLine) loadPage(kind string) (*entity.Page, error) {
	return cli.session.LoadPage(context.Background(), kind)
}

func (cli *commandLine) load(kind string) error {
	page, err := cli.loadPage(kind)
	if err != nil {
		return err
	}
	cli.printRows(page.Rows())
	return nil
}

func (cli *commandLine) printRows(rows []entity.RowView) {
	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	if len(rows) == 0 {
		fmt.Fprintln(w, "(no records)")
		_ = w.Flush()
		return
	}
	fmt.Fprint(w, "KEY")
	for _, c := range rows[0].Columns {
		fmt.Fprintf(w, "\t%s", c.Name)
	}
	fmt.Fprintln(w)
	for _, r := range rows {
		fmt.Fprint(w, r.Key)
		for _, c := range r.Columns {
			fmt.Fprintf(w, "\t%s", c.Text)
		}
		fmt.Fprintln(w)
	}
	_ = w.Flush()
}

func (cli *commandLine) submit(kind, action string, values map[string]string) error {
	page, err := cli.loadPage(kind)
	if err != nil {
		return err
	}
	form := page.Spec().NewForm()
	for k, v := range values {
		form.Set(k, v)
	}
	if action != "" {
		form.Set(entity.ActionField, action)
	}
	return cli.handle(form)
}

// remove runs the first removing action of kind that needs no secret, e.g. delete_aviso or deactivate.
func (cli *commandLine) remove(kind string, key entity.Key) error {
	page, err := cli.loadPage(kind)
	if err != nil {
		return err
	}
	spec := page.Spec()
	var action string
	for _, a := range spec.Actions {
		if a.Effect == entity.EffectRemove && a.Secret == nil {
			action = a.Name
			break
		}
	}
	if action == "" {
		return errors.Errorf("%s records cannot be removed", kind)
	}

	form, err := keyForm(spec, key)
	if err != nil {
		return err
	}
	return cli.handle(form.Set(entity.ActionField, action))
}

func (cli *commandLine) process(key entity.Key, reject bool) error {
	page, err := cli.loadPage("request")
	if err != nil {
		return err
	}
	form, err := keyForm(page.Spec(), key)
	if err != nil {
		return err
	}
	action := "process_solicitud"
	if reject {
		action = "reject_solicitud"
	}
	return cli.handle(form.Set(entity.ActionField, action))
}

// keyForm returns a form of spec with its key fields set from key.
func keyForm(spec *entity.Specialization, key entity.Key) (*entity.Form, error) {
	parts := key.Parts()
	if len(parts) != len(spec.KeyFields) {
		return nil, errors.Errorf("%s keys have %d parts, got %q", spec.Kind, len(spec.KeyFields), key)
	}
	form := spec.NewForm()
	for i, f := range spec.KeyFields {
		form.Set(f, parts[i])
	}
	return form, nil
}

// handle runs the mutation and prints the resulting row or the field errors.
// Declined confirmations are not errors.
func (cli *commandLine) handle(form *entity.Form) error {
	out := cli.ctrl.Handle(context.Background(), form)
	if out.Aborted() {
		fmt.Fprintln(cli.out, "Cancelled.")
		return nil
	}
	if out.Err != nil {
		notes := form.Annotations()
		fields := make([]string, 0, len(notes))
		for f := range notes {
			fields = append(fields, f)
		}
		sort.Strings(fields)
		for _, f := range fields {
			fmt.Fprintf(cli.out, "  %s: %s\n", f, notes[f])
		}
		return out.Err
	}
	if out.Row != nil {
		cli.printRows([]entity.RowView{*out.Row})
	}
	return nil
}

// isUserError reports whether err was already shown to the user as a notification.
func isUserError(err error) bool {
	switch errors.Cause(err).(type) {
	case *core.ValidationError, *core.DomainError, *core.TransportError:
		return true
	}
	return false
}
