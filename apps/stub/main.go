// Command stub runs the development backend of the admin pages.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/trezcool/masomo-sync/apps/stub/echo"
	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/school"
	"github.com/trezcool/masomo-sync/services/email"
	"github.com/trezcool/masomo-sync/services/logger"
	"github.com/trezcool/masomo-sync/storage/inmem"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "STUB : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	defer logger.Flush()

	registry, err := school.NewRegistry()
	if err != nil {
		logger.Fatal(fmt.Sprintf("building registry: %v", err), err)
	}

	db := inmemdb.Open()
	if err = stubapi.Seed(db, registry); err != nil {
		logger.Fatal(fmt.Sprintf("seeding database: %v", err), err)
	}

	translator := core.NewTranslator()
	validate := school.NewValidator(translator)

	// =========================================================================
	// Start Stub Service

	logger.Info(fmt.Sprintf("Stub initializing : version %q, listening on %s", conf.Build, conf.Stub.Address))
	defer logger.Info("Stub stopped")

	server := stubapi.NewServer(
		stubapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Mailer:     emailsvc.New(conf, logger),
			Registry:   registry,
			DB:         db,
			Validate:   validate,
			Translator: translator,
		},
	)

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}
