package entity

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// keySep joins the parts of composite keys, e.g. "12:7" for (alumno_id, examen_id).
const keySep = ":"

// Record is one server-side row, field name -> value.
// Numbers decoded from the wire are kept as json.Number.
type Record map[string]interface{}

// Key identifies a Record within its entity kind.
type Key string

func (k Key) String() string { return string(k) }

// Parts splits a composite key into its field values.
func (k Key) Parts() []string { return strings.Split(string(k), keySep) }

// String returns the field as text; missing & null fields are "".
func (r Record) String(field string) string {
	return formatValue(r[field])
}

func (r Record) Has(field string) bool {
	v, ok := r[field]
	return ok && v != nil
}

func (r Record) Clone() Record {
	c := make(Record, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

// RecordKey builds the key of `rec` from keyFields. ok is false if any key field is empty.
func RecordKey(keyFields []string, rec Record) (Key, bool) {
	return buildKey(keyFields, rec.String)
}

// ValuesKey builds a key from form values.
func ValuesKey(keyFields []string, values map[string]string) (Key, bool) {
	return buildKey(keyFields, func(f string) string { return strings.TrimSpace(values[f]) })
}

func buildKey(keyFields []string, lookup func(string) string) (Key, bool) {
	if len(keyFields) == 0 {
		return "", false
	}
	parts := make([]string, 0, len(keyFields))
	for _, f := range keyFields {
		v := lookup(f)
		if v == "" {
			return "", false
		}
		parts = append(parts, v)
	}
	return Key(strings.Join(parts, keySep)), true
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}
