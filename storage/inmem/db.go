// Package inmemdb is the keyed in-memory store behind the development backend.
package inmemdb

import (
	"strconv"
	"sync"

	"github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/masomo-sync/core/entity"
)

var ErrNotFound = errors.New("record not found")

// DuplicateError reports a value already taken in a unique field.
type DuplicateError struct {
	Field string
	Value string
}

func (err DuplicateError) Error() string {
	return err.Field + " " + strconv.Quote(err.Value) + " already exists"
}

type (
	DB struct {
		mutex  sync.RWMutex
		tables map[string]*Table
	}

	// Table holds the records of one entity kind, in insertion order.
	Table struct {
		mutex     sync.RWMutex
		keyFields []string
		uniques   []string
		pkCount   int
		rows      map[entity.Key]entity.Record
		order     []entity.Key
	}
)

func Open() *DB {
	return &DB{tables: make(map[string]*Table)}
}

// Table returns the table of kind, creating it on first use.
// Single "id" keys are assigned on insert when missing.
func (db *DB) Table(kind string, keyFields []string, uniques ...string) *Table {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if t, ok := db.tables[kind]; ok {
		return t
	}
	t := &Table{
		keyFields: keyFields,
		uniques:   uniques,
		rows:      make(map[entity.Key]entity.Record),
	}
	db.tables[kind] = t
	return t
}

func (t *Table) autoID() bool {
	return len(t.keyFields) == 1 && t.keyFields[0] == "id"
}

// Insert stores a copy of rec and returns it with its assigned key.
func (t *Table) Insert(rec entity.Record) (entity.Record, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	rec = rec.Clone()
	if t.autoID() && !rec.Has("id") {
		t.pkCount++
		rec["id"] = t.pkCount
	}
	key, ok := entity.RecordKey(t.keyFields, rec)
	if !ok {
		return nil, errors.New("record has no key")
	}
	if _, exists := t.rows[key]; exists {
		return nil, DuplicateError{Field: t.keyFields[0], Value: key.String()}
	}
	if err := t.checkUnique(rec, ""); err != nil {
		return nil, err
	}
	if n, err := strconv.Atoi(key.String()); err == nil && t.autoID() && n > t.pkCount {
		t.pkCount = n
	}

	t.rows[key] = rec
	t.order = append(t.order, key)
	return rec.Clone(), nil
}

// Update sets the given fields on the record at key.
func (t *Table) Update(key entity.Key, fields entity.Record) (entity.Record, error) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	rec, ok := t.rows[key]
	if !ok {
		return nil, ErrNotFound
	}
	updated := rec.Clone()
	for k, v := range fields {
		updated[k] = v
	}
	if newKey, _ := entity.RecordKey(t.keyFields, updated); newKey != key {
		return nil, errors.New("key fields cannot change")
	}
	if err := t.checkUnique(updated, key); err != nil {
		return nil, err
	}
	t.rows[key] = updated
	return updated.Clone(), nil
}

func (t *Table) Get(key entity.Key) (entity.Record, error) {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	if rec, ok := t.rows[key]; ok {
		return rec.Clone(), nil
	}
	return nil, ErrNotFound
}

func (t *Table) Delete(key entity.Key) error {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	if _, ok := t.rows[key]; !ok {
		return ErrNotFound
	}
	delete(t.rows, key)
	for i, k := range t.order {
		if k == key {
			t.order = append(t.order[:i], t.order[i+1:]...)
			break
		}
	}
	return nil
}

// Query returns the records matching keep (all when nil), in insertion order.
func (t *Table) Query(keep func(entity.Record) bool) []entity.Record {
	t.mutex.RLock()
	defer t.mutex.RUnlock()

	recs := make([]entity.Record, 0, len(t.order))
	for _, k := range t.order {
		rec := t.rows[k]
		if keep == nil || keep(rec) {
			recs = append(recs, rec.Clone())
		}
	}
	return recs
}

func (t *Table) Count() int {
	t.mutex.RLock()
	defer t.mutex.RUnlock()
	return len(t.rows)
}

// checkUnique must be called with the lock held.
func (t *Table) checkUnique(rec entity.Record, self entity.Key) error {
	for _, field := range t.uniques {
		val := rec.String(field)
		if val == "" {
			continue
		}
		for k, other := range t.rows {
			if k != self && other.String(field) == val {
				return DuplicateError{Field: field, Value: val}
			}
		}
	}
	return nil
}

// HashPassword returns the bcrypt hash of pwd.
func HashPassword(pwd string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, pwd string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pwd))
}
