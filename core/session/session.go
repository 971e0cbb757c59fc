// Package session holds the state of one admin session: one page per entity kind,
// built from the bootstrap document the backend renders with the page.
package session

import (
	"context"
	"net/http"
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/trezcool/masomo-sync/core"
	"github.com/trezcool/masomo-sync/core/entity"
)

// Read-only endpoints
const (
	DashboardPath = "/api/dashboard"
	SemestersPath = "/api/semestres"
	ReportsPath   = "/api/reportes"
)

var ErrPageNotLoaded = errors.New("page not loaded")

// Bootstrap is the initial state of a page: its CSRF token and the records of its table.
type Bootstrap struct {
	CSRFToken string          `json:"csrf_token"`
	Records   []entity.Record `json:"records"`
}

// Dashboard is the summary shown on the admin home page.
type Dashboard struct {
	Counts  map[string]int  `json:"counts"`
	Notices []entity.Record `json:"avisos_recientes"`
	Events  []entity.Record `json:"eventos_proximos"`
}

// Session is safe for concurrent use.
type Session struct {
	mu       sync.RWMutex
	registry *entity.Registry
	fetcher  *Fetcher
	pages    map[string]*entity.Page
}

var _ entity.Pages = (*Session)(nil)

// New returns an empty session. fetcher may be nil when pages are only loaded from JSON.
func New(registry *entity.Registry, fetcher *Fetcher) *Session {
	return &Session{
		registry: registry,
		fetcher:  fetcher,
		pages:    make(map[string]*entity.Page),
	}
}

// Page returns the loaded page of kind.
func (s *Session) Page(kind string) (*entity.Page, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if p, ok := s.pages[kind]; ok {
		return p, nil
	}
	return nil, errors.Wrapf(ErrPageNotLoaded, "kind %q", kind)
}

// Kinds returns the kinds of the loaded pages.
func (s *Session) Kinds() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	kinds := make([]string, 0, len(s.pages))
	for k := range s.pages {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// LoadPageJSON (re)builds the page of kind from its bootstrap document.
func (s *Session) LoadPageJSON(kind string, data []byte) (*entity.Page, error) {
	spec, err := s.registry.Kind(kind)
	if err != nil {
		return nil, err
	}

	var boot Bootstrap
	if err = entity.DecodeJSON(data, &boot); err != nil {
		return nil, errors.Wrapf(err, "decoding %s bootstrap", kind)
	}
	page, err := entity.NewPage(spec, boot.CSRFToken, boot.Records)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.pages[kind] = page
	s.mu.Unlock()
	return page, nil
}

// LoadPage fetches the bootstrap document of kind from its endpoint.
func (s *Session) LoadPage(ctx context.Context, kind string) (*entity.Page, error) {
	spec, err := s.registry.Kind(kind)
	if err != nil {
		return nil, err
	}
	body, err := s.get(ctx, spec.Endpoint)
	if err != nil {
		return nil, err
	}
	return s.LoadPageJSON(kind, body)
}

func (s *Session) Dashboard(ctx context.Context) (*Dashboard, error) {
	var dash Dashboard
	if err := s.getJSON(ctx, DashboardPath, &dash); err != nil {
		return nil, err
	}
	return &dash, nil
}

func (s *Session) Semesters(ctx context.Context) ([]entity.Record, error) {
	var recs []entity.Record
	if err := s.getJSON(ctx, SemestersPath, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Session) Reports(ctx context.Context) ([]entity.Record, error) {
	var recs []entity.Record
	if err := s.getJSON(ctx, ReportsPath, &recs); err != nil {
		return nil, err
	}
	return recs, nil
}

func (s *Session) get(ctx context.Context, path string) ([]byte, error) {
	if s.fetcher == nil {
		return nil, errors.New("session has no fetcher")
	}
	return s.fetcher.Get(ctx, path, nil)
}

func (s *Session) getJSON(ctx context.Context, path string, v interface{}) error {
	body, err := s.get(ctx, path)
	if err != nil {
		return err
	}
	if err = entity.DecodeJSON(body, v); err != nil {
		tErr := core.NewTransportError(path, errors.Wrap(err, "decoding response"))
		tErr.StatusCode = http.StatusOK
		tErr.Body = string(body)
		return tErr
	}
	return nil
}
