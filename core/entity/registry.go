package entity

import (
	"sort"
	"sync"

	"github.com/pkg/errors"
)

var (
	// errors
	ErrUnknownForm   = errors.New("unknown form")
	ErrUnknownKind   = errors.New("unknown entity kind")
	ErrInvalidAction = errors.New("invalid action")
)

// Registry maps form ids (and entity kinds) to their Specialization.
type Registry struct {
	mu     sync.RWMutex
	byForm map[string]*Specialization
	byKind map[string]*Specialization
}

func NewRegistry(specs ...*Specialization) (*Registry, error) {
	reg := &Registry{
		byForm: make(map[string]*Specialization),
		byKind: make(map[string]*Specialization),
	}
	for _, s := range specs {
		if err := reg.Register(s); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

func (r *Registry) Register(s *Specialization) error {
	if err := s.validate(); err != nil {
		return errors.Wrap(err, "invalid specialization")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byForm[s.FormID]; ok {
		return errors.Errorf("form %q already registered", s.FormID)
	}
	if _, ok := r.byKind[s.Kind]; ok {
		return errors.Errorf("kind %q already registered", s.Kind)
	}
	r.byForm[s.FormID] = s
	r.byKind[s.Kind] = s
	return nil
}

// Lookup returns the specialization handling formID.
func (r *Registry) Lookup(formID string) (*Specialization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.byForm[formID]; ok {
		return s, nil
	}
	return nil, errors.Wrapf(ErrUnknownForm, "form %q", formID)
}

func (r *Registry) Kind(kind string) (*Specialization, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.byKind[kind]; ok {
		return s, nil
	}
	return nil, errors.Wrapf(ErrUnknownKind, "kind %q", kind)
}

// Specs returns every registered specialization ordered by kind.
func (r *Registry) Specs() []*Specialization {
	r.mu.RLock()
	defer r.mu.RUnlock()

	specs := make([]*Specialization, 0, len(r.byKind))
	for _, s := range r.byKind {
		specs = append(specs, s)
	}
	sort.Slice(specs, func(i, j int) bool { return specs[i].Kind < specs[j].Kind })
	return specs
}
