package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
	"github.com/trezcool/masomo-sync/core/session"
	"github.com/trezcool/masomo-sync/services/export"
)

var errHelp = errors.New("help provided")

type commandLine struct {
	session  *session.Session
	registry *entity.Registry
	ctrl     *entity.Controller
	exporter *exportsvc.XLSX
	out      io.Writer
}

func (cli *commandLine) printUsage() {
	fmt.Fprintln(cli.out, "Usage:")
	fmt.Fprintln(cli.out, "  load -kind KIND                                  - print the table of a page")
	fmt.Fprintln(cli.out, "  submit -kind KIND [-action ACTION] FIELD=VALUE.. - create or update a record")
	fmt.Fprintln(cli.out, "  delete -kind KIND -key KEY                       - remove a record (asks for confirmation)")
	fmt.Fprintln(cli.out, "  process -key ID                                  - process a password reset request (prompts for the new password)")
	fmt.Fprintln(cli.out, "  export -kind KIND                                - export the table of a page to an Excel workbook")
	fmt.Fprintln(cli.out, "  dashboard                                        - print the dashboard summary")
	fmt.Fprintf(cli.out, "Kinds: %s\n", strings.Join(cli.kinds(), ", "))
}

func (cli *commandLine) kinds() []string {
	var kinds []string
	for _, spec := range cli.registry.Specs() {
		kinds = append(kinds, spec.Kind)
	}
	return kinds
}

func (cli *commandLine) run(args []string) error {
	if len(args) < 2 {
		cli.printUsage()
		return errHelp
	}

	loadCmd := flag.NewFlagSet("load", flag.ExitOnError)
	loadKind := loadCmd.String("kind", "", "The entity kind of the page, e.g. notice.")

	submitCmd := flag.NewFlagSet("submit", flag.ExitOnError)
	submitKind := submitCmd.String("kind", "", "The entity kind of the form.")
	submitAction := submitCmd.String("action", "", "The action to run. Defaults to update when the key fields are set, create otherwise.")

	deleteCmd := flag.NewFlagSet("delete", flag.ExitOnError)
	deleteKind := deleteCmd.String("kind", "", "The entity kind of the record.")
	deleteKey := deleteCmd.String("key", "", "The record key; composite keys are joined with ':'.")

	processCmd := flag.NewFlagSet("process", flag.ExitOnError)
	processKey := processCmd.String("key", "", "The request id. The new password will be prompted next.")
	processReject := processCmd.Bool("reject", false, "Reject the request instead.")

	exportCmd := flag.NewFlagSet("export", flag.ExitOnError)
	exportKind := exportCmd.String("kind", "", "The entity kind of the page.")

	switch args[1] {
	case "load":
		if err := loadCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *loadKind == "" {
			loadCmd.Usage()
			return errHelp
		}
		return cli.load(*loadKind)
	case "submit":
		if err := submitCmd.Parse(args[2:]); err != nil {
			return err
		}
		values, err := parseValues(submitCmd.Args())
		if *submitKind == "" || err != nil {
			submitCmd.Usage()
			return errHelp
		}
		return cli.submit(*submitKind, *submitAction, values)
	case "delete":
		if err := deleteCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *deleteKind == "" || *deleteKey == "" {
			deleteCmd.Usage()
			return errHelp
		}
		return cli.remove(*deleteKind, entity.Key(*deleteKey))
	case "process":
		if err := processCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *processKey == "" {
			processCmd.Usage()
			return errHelp
		}
		return cli.process(entity.Key(*processKey), *processReject)
	case "export":
		if err := exportCmd.Parse(args[2:]); err != nil {
			return err
		}
		if *exportKind == "" {
			exportCmd.Usage()
			return errHelp
		}
		return cli.export(*exportKind)
	case "dashboard":
		return cli.dashboard()
	default:
		cli.printUsage()
		return errHelp
	}
}

// parseValues reads FIELD=VALUE arguments.
func parseValues(args []string) (map[string]string, error) {
	values := make(map[string]string, len(args))
	for _, arg := range args {
		i := strings.IndexByte(arg, '=')
		if i <= 0 {
			return nil, fmt.Errorf("%q: expected FIELD=VALUE", arg)
		}
		values[arg[:i]] = arg[i+1:]
	}
	return values, nil
}

// consoleSink prints notifications on the command line.
type consoleSink struct {
	out io.Writer
}

var _ core.NotificationSink = consoleSink{}

func (s consoleSink) Show(message string, severity core.Severity, _ time.Duration) {
	fmt.Fprintf(s.out, "[%s] %s\n", strings.ToUpper(string(severity)), message)
}
