package vals

import (
	"bytes"
	"encoding/json"
)

// Map is a string-keyed mapping that remembers the order keys were first
// added in. Iteration visits keys in that order.
type Map struct {
	keys   []string
	values map[string]any
}

// NewMap returns an empty Map.
func NewMap() *Map {
	return &Map{values: make(map[string]any)}
}

// MapOf builds a Map from alternating keys and values.
func MapOf(kvs ...any) *Map {
	m := NewMap()
	for i := 0; i+1 < len(kvs); i += 2 {
		m.Set(kvs[i].(string), kvs[i+1])
	}
	return m
}

// Set associates a value with a key.
func (m *Map) Set(k string, v any) {
	if _, ok := m.values[k]; !ok {
		m.keys = append(m.keys, k)
	}
	m.values[k] = v
}

// Index returns the value associated with a key.
func (m *Map) Index(k string) (any, bool) {
	v, ok := m.values[k]
	return v, ok
}

// Keys returns the keys in insertion order. The result must not be modified.
func (m *Map) Keys() []string { return m.keys }

// Len returns the number of keys.
func (m *Map) Len() int { return len(m.keys) }

// MarshalJSON encodes the map as a JSON object with keys in order. HTML
// characters are not escaped.
func (m *Map) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	buf.WriteByte('{')
	for i, k := range m.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		// Encode appends a newline, which is valid JSON whitespace.
		if err := enc.Encode(k); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := enc.Encode(m.values[k]); err != nil {
			return nil, err
		}
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
