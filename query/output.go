package query

import (
	"encoding/json"
	"fmt"

	"github.com/goccy/go-yaml"

	"github.com/jacoelho/qarray/tree"
)

// ToArray returns the result as map[string]any and []any containers. Go
// maps drop key order, so a query built over this value sees object keys
// sorted. Use ToMapSlice or Get to keep the order.
func (q *Query) ToArray() (any, error) {
	if err := q.prepare(); err != nil {
		return nil, err
	}
	return tree.ToNative(q.result), nil
}

// ToMapSlice returns the result as yaml.MapSlice and []any containers,
// keeping object key order. New and Collect accept the value as is.
func (q *Query) ToMapSlice() (any, error) {
	if err := q.prepare(); err != nil {
		return nil, err
	}
	return tree.ToMapSlice(q.result), nil
}

// ToJSON encodes the result. Object keys keep their insertion order.
func (q *Query) ToJSON() ([]byte, error) {
	if err := q.prepare(); err != nil {
		return nil, err
	}

	out, err := json.Marshal(q.result)
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}
	return out, nil
}

// ToYAML encodes the result. Mapping keys keep their insertion order.
func (q *Query) ToYAML() ([]byte, error) {
	if err := q.prepare(); err != nil {
		return nil, err
	}

	out, err := yaml.Marshal(tree.ToMapSlice(q.result))
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}
	return out, nil
}

// String renders the result as JSON, or the error that prevented it.
func (q *Query) String() string {
	out, err := q.ToJSON()
	if err != nil {
		return "error: " + err.Error()
	}
	return string(out)
}
