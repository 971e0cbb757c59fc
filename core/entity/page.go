package entity

import (
	"sync"

	"github.com/pkg/errors"
)

// Page is the state of one entity kind on one page: the EntityTable and its visual Grid.
// It is safe for concurrent use; concurrent mutations of the same key are not ordered,
// the last one applied wins.
type Page struct {
	mu        sync.RWMutex
	spec      *Specialization
	table     *Table
	grid      Grid
	csrfToken string
}

// NewPage builds a page from its initial records, displayed in the given order.
func NewPage(spec *Specialization, csrfToken string, records []Record) (*Page, error) {
	p := &Page{
		spec:      spec,
		table:     NewTable(),
		csrfToken: csrfToken,
	}
	for i, rec := range records {
		key, ok := RecordKey(spec.KeyFields, rec)
		if !ok {
			return nil, errors.Errorf("%s record #%d has no key", spec.Kind, i)
		}
		if _, dup := p.table.Get(key); dup {
			return nil, errors.Errorf("%s record #%d: duplicate key %q", spec.Kind, i, key)
		}
		p.table.Set(key, rec)
		p.grid.Insert(spec.RenderRow(key, rec), EdgeBottom)
	}
	return p, nil
}

func (p *Page) Spec() *Specialization { return p.spec }

func (p *Page) CSRFToken() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.csrfToken
}

func (p *Page) SetCSRFToken(token string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.csrfToken = token
}

// Reconcile upserts rec at key and updates the visual table.
// An existing row is replaced (in place, unless the placement says otherwise);
// a new row enters at the placement's edge.
func (p *Page) Reconcile(key Key, rec Record) RowView {
	row := p.spec.RenderRow(key, rec)

	p.mu.Lock()
	defer p.mu.Unlock()

	p.table.Set(key, rec)
	if p.spec.Placement.OnUpdate == MoveToEdge && p.grid.Detach(key) {
		p.grid.Insert(row, p.spec.Placement.Insert)
		return row
	}
	if !p.grid.Replace(row) {
		p.grid.Insert(row, p.spec.Placement.Insert)
	}
	return row
}

// Remove deletes key from the table and detaches its row.
// Removing an absent key is a no-op; the result reports whether anything was removed.
func (p *Page) Remove(key Key) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	inTable := p.table.Delete(key)
	inGrid := p.grid.Detach(key)
	return inTable || inGrid
}

func (p *Page) Record(key Key) (Record, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rec, ok := p.table.Get(key)
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Rows returns the visual rows in display order.
func (p *Page) Rows() []RowView {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.grid.Rows()
}

// Records returns the records in display order.
func (p *Page) Records() []Record {
	p.mu.RLock()
	defer p.mu.RUnlock()

	rows := p.grid.Rows()
	recs := make([]Record, 0, len(rows))
	for _, r := range rows {
		if rec, ok := p.table.Get(r.Key); ok {
			recs = append(recs, rec.Clone())
		}
	}
	return recs
}

func (p *Page) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.table.Len()
}
