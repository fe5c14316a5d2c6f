// Package filter turns the dashboard's structured filter input into a
// store-neutral Predicate. The Predicate is rendered into MongoDB or SQL by
// the repositories and evaluated directly by Match for in-memory callers.
package filter

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
)

// Spec maps a field name to its operator -> value constraints, e.g.
//
//	{"score": {"gt": "10"}, "status": {"equals": "new"}}
type Spec map[string]map[string]any

// MalformedError reports filter input that is not a JSON object of objects
type MalformedError struct {
	Err error
}

func (e *MalformedError) Error() string {
	return "malformed filters: " + e.Err.Error()
}

func (e *MalformedError) Unwrap() error {
	return e.Err
}

// Parse decodes the filters query parameter. Blank input is an empty Spec.
// Anything that is not a JSON object of objects is a *MalformedError.
func Parse(raw string) (Spec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Spec{}, nil
	}

	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	var top map[string]any
	if err := dec.Decode(&top); err != nil {
		return nil, &MalformedError{Err: err}
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, &MalformedError{Err: errors.New("unexpected data after filter object")}
	}

	spec := make(Spec, len(top))
	for field, v := range top {
		switch ops := v.(type) {
		case nil:
			continue
		case map[string]any:
			spec[field] = ops
		default:
			return nil, &MalformedError{Err: fmt.Errorf("filter for %q must be an object, got %T", field, v)}
		}
	}
	return spec, nil
}

// Key returns a canonical encoding of the spec, stable across map ordering.
// Used to build cache keys.
func (s Spec) Key() string {
	if len(s) == 0 {
		return "{}"
	}
	// encoding/json sorts map keys
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Sprintf("%v", map[string]map[string]any(s))
	}
	return string(data)
}
