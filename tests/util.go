package testutil

import (
	"io"
	"log"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/trezcool/masomo-sync/apps/stub/echo"
	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
	"github.com/trezcool/masomo-sync/core/school"
	"github.com/trezcool/masomo-sync/services/email"
	"github.com/trezcool/masomo-sync/services/logger"
	"github.com/trezcool/masomo-sync/storage/inmem"
)

// Backend is a seeded development backend listening on a local port.
type Backend struct {
	URL      string
	DB       *inmemdb.DB
	Registry *entity.Registry
	Mailer   *emailsvc.ConsoleService

	srv *httptest.Server
}

// NewConfig returns the configuration used by tests.
func NewConfig() *core.Config {
	return &core.Config{
		Env:      "TEST",
		TestMode: true,
		AppName:  "Masomo",
		Sync:     core.SyncConfig{Timeout: 5 * time.Second},
		Notify: core.NotifyConfig{
			InfoDuration:    time.Second,
			SuccessDuration: time.Second,
			ErrorDuration:   2 * time.Second,
		},
		Stub:  core.StubConfig{CSRFCookie: "_csrf"},
		Email: core.EmailConfig{Backend: "console", DefaultFromName: "Masomo", DefaultFromEmail: "noreply@localhost"},
	}
}

// NewLogger returns a logger discarding everything; reporting is disabled in test mode.
func NewLogger(conf *core.Config) core.Logger {
	return logsvc.NewRollbarLogger(log.New(io.Discard, "", 0), conf)
}

// StartBackend starts a seeded backend, closed when the test ends.
func StartBackend(t *testing.T) *Backend {
	t.Helper()
	conf := NewConfig()
	registry, err := school.NewRegistry()
	if err != nil {
		t.Fatalf("StartBackend() failed: %v", err)
	}
	db := inmemdb.Open()
	if err = stubapi.Seed(db, registry); err != nil {
		t.Fatalf("StartBackend() failed: %v", err)
	}
	translator := core.NewTranslator()
	logger := NewLogger(conf)
	mailer := emailsvc.NewConsoleServiceMock(conf, logger)

	srv := httptest.NewServer(stubapi.NewServer(stubapi.ServerDeps{
		Conf:           conf,
		Logger:         logger,
		Mailer:         mailer,
		Registry:       registry,
		DB:             db,
		Validate:       school.NewValidator(translator),
		Translator:     translator,
		DisableReqLogs: true,
	}))
	t.Cleanup(srv.Close)

	return &Backend{URL: srv.URL, DB: db, Registry: registry, Mailer: mailer, srv: srv}
}

// Close stops the backend before the end of the test, e.g. to simulate a network failure.
func (b *Backend) Close() {
	b.srv.Close()
}

// Table returns the backend table of kind.
func (b *Backend) Table(t *testing.T, kind string) *inmemdb.Table {
	t.Helper()
	spec, err := b.Registry.Kind(kind)
	if err != nil {
		t.Fatalf("Table(%s) failed: %v", kind, err)
	}
	return stubapi.OpenTable(b.DB, spec)
}

// CreateUser stores an active user directly in the backend.
func CreateUser(t *testing.T, b *Backend, name, uname, email, pwd, role string) entity.Record {
	t.Helper()
	usr := entity.Record{
		"nombre":  name,
		"usuario": uname,
		"correo":  email,
		"rol":     role,
		"activo":  true,
	}
	if pwd != "" {
		hash, err := inmemdb.HashPassword(pwd)
		if err != nil {
			t.Fatalf("CreateUser() failed: %v", err)
		}
		usr["contrasena_hash"] = hash
	}
	usr, err := b.Table(t, "user").Insert(usr)
	if err != nil {
		t.Fatalf("CreateUser() failed: %v", err)
	}
	return usr
}
