package entity

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/pkg/errors"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var errMalformedEnvelope = errors.New("malformed response envelope")

// Envelope is the uniform JSON wrapper returned by every mutation endpoint.
type Envelope struct {
	Status  string            `json:"status"`
	Message string            `json:"message,omitempty"`
	Data    Record            `json:"data,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

func (e *Envelope) OK() bool { return e.Status == StatusSuccess }

type wireEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Errors  json.RawMessage `json:"errors"`
}

// ParseEnvelope decodes a response body. Numbers in data are kept as json.Number.
// An empty JSON array stands for an absent data or errors member.
func ParseEnvelope(body []byte) (*Envelope, error) {
	var wire wireEnvelope
	if err := DecodeJSON(body, &wire); err != nil {
		return nil, errors.Wrap(err, "decoding envelope")
	}

	env := Envelope{Status: wire.Status, Message: wire.Message}
	if present(wire.Data) {
		if err := DecodeJSON(wire.Data, &env.Data); err != nil {
			return nil, errors.Wrap(err, "decoding data")
		}
	}
	if present(wire.Errors) {
		if err := DecodeJSON(wire.Errors, &env.Errors); err != nil {
			return nil, errors.Wrap(err, "decoding errors")
		}
	}

	switch env.Status {
	case StatusSuccess, StatusError:
	case "":
		return nil, errors.Wrap(errMalformedEnvelope, "missing status")
	default:
		return nil, errors.Wrapf(errMalformedEnvelope, "unknown status %q", env.Status)
	}
	return &env, nil
}

// check enforces the envelope invariants for the action it answers:
// success on an upsert carries data with the full key; error carries a message or field errors.
func (e *Envelope) check(action Action, keyFields []string) error {
	if e.OK() {
		if action.Effect == EffectUpsert {
			if e.Data == nil {
				return errors.Wrap(errMalformedEnvelope, "success without data")
			}
			if _, ok := RecordKey(keyFields, e.Data); !ok {
				return errors.Wrap(errMalformedEnvelope, "data without key")
			}
		}
		return nil
	}
	if e.Message == "" && len(e.Errors) == 0 {
		return errors.Wrap(errMalformedEnvelope, "error without message")
	}
	return nil
}

// DecodeJSON decodes data, which must hold exactly one JSON value, keeping numbers as json.Number.
func DecodeJSON(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		return errors.New("unexpected data after the JSON value")
	}
	return nil
}

func present(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && !bytes.Equal(trimmed, []byte("null")) && !bytes.Equal(trimmed, []byte("[]"))
}
