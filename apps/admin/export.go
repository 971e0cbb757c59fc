package main

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"
)

func (cli *commandLine) export(kind string) error {
	page, err := cli.loadPage(kind)
	if err != nil {
		return err
	}
	path, err := cli.exporter.Save(page)
	if err != nil {
		return err
	}
	fmt.Fprintf(cli.out, "Exported %d %s records to %s\n", page.Len(), kind, path)
	return nil
}

func (cli *commandLine) dashboard() error {
	dash, err := cli.session.Dashboard(context.Background())
	if err != nil {
		return err
	}

	kinds := make([]string, 0, len(dash.Counts))
	for k := range dash.Counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	for _, k := range kinds {
		fmt.Fprintf(w, "%s\t%d\n", k, dash.Counts[k])
	}
	_ = w.Flush()

	fmt.Fprintln(cli.out, "\nRecent notices:")
	for _, n := range dash.Notices {
		fmt.Fprintf(cli.out, "  %s  %s\n", n.String("fecha_publicacion"), n.String("titulo"))
	}
	fmt.Fprintln(cli.out, "\nUpcoming events:")
	for _, e := range dash.Events {
		fmt.Fprintf(cli.out, "  %s  %s\n", e.String("fecha"), e.String("titulo"))
	}
	return nil
}
