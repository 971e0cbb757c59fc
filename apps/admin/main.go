// Command admin is a command line host of the entity sync client: it edits the admin pages of a running backend.
package main

import (
	"log"
	"os"
	"syscall"

	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
	"github.com/trezcool/masomo-sync/core/school"
	"github.com/trezcool/masomo-sync/core/session"
	"github.com/trezcool/masomo-sync/services/export"
	"github.com/trezcool/masomo-sync/services/logger"
	"github.com/trezcool/masomo-sync/services/notify"
	"github.com/trezcool/masomo-sync/services/prompt"
)

func main() {
	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stderr, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)

	registry, err := school.NewRegistry()
	if err != nil {
		logger.Fatal("building registry", err)
	}

	httpClient := entity.NewHTTPClient()
	sess := session.New(registry, session.NewFetcher(conf.Sync.BaseURL, httpClient))
	translator := core.NewTranslator()

	ctrl := entity.NewController(entity.ControllerDeps{
		Registry:   registry,
		Pages:      sess,
		Submitter:  entity.NewRESTSubmitter(conf.Sync.BaseURL, httpClient),
		Notifier:   notifysvc.Tee{consoleSink{out: os.Stdout}, notifysvc.LogSink{Logger: logger}},
		Dialog:     promptsvc.NewTerminal(os.Stdin, os.Stdout, int(syscall.Stdin)),
		Logger:     logger,
		Validate:   school.NewValidator(translator),
		Translator: translator,
		Timeout:    conf.Sync.Timeout,
		Durations:  conf.Notify,
	})

	// start CLI
	cli := commandLine{
		session:  sess,
		registry: registry,
		ctrl:     ctrl,
		exporter: exportsvc.NewXLSX(conf.Export.Dir),
		out:      os.Stdout,
	}
	err = cli.run(os.Args)
	logger.Flush()
	if err != nil {
		if err != errHelp && !isUserError(err) {
			logger.Error(err.Error(), err)
			logger.Flush()
		}
		os.Exit(1)
	}
}
