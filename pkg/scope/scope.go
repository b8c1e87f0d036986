// Package scope contains the data contexts that expressions are evaluated
// against.
package scope

import (
	"reflect"

	"github.com/thistle-tpl/thistle/pkg/vals"
)

// Scope resolves the names used in expressions.
type Scope interface {
	// Lookup returns the value bound to name, and whether there is one.
	Lookup(name string) (any, bool)
}

// Map is a Scope backed by a map.
type Map map[string]any

// Lookup implements Scope.
func (m Map) Lookup(name string) (any, bool) {
	v, ok := m[name]
	return v, ok
}

// Empty is a Scope with no bindings.
var Empty Scope = Map(nil)

// From wraps a Go value as a Scope. Scopes are returned as is, nil becomes
// Empty, and other values are looked up the way member access works on them:
// maps by key, structs by field name or json tag.
func From(data any) Scope {
	switch data := data.(type) {
	case Scope:
		return data
	case nil:
		return Empty
	case map[string]any:
		return Map(data)
	case *vals.Map:
		return indexerScope{data}
	}
	return valueScope{data}
}

type indexerScope struct{ vals.Indexer }

func (s indexerScope) Lookup(name string) (any, bool) { return s.Index(name) }

type valueScope struct{ v any }

func (s valueScope) Lookup(name string) (any, bool) {
	rv := reflect.ValueOf(s.v)
	for rv.Kind() == reflect.Pointer && !rv.IsNil() {
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Map && rv.Kind() != reflect.Struct {
		return nil, false
	}
	v, err := vals.Index(s.v, name)
	if err != nil || vals.IsUndefined(v) {
		return nil, false
	}
	return v, true
}

// Child is a scope that extends a parent with its own local bindings. Lookups
// check the local bindings first and then the parent; Set never affects the
// parent.
type Child struct {
	parent Scope
	locals map[string]any
}

// NewChild returns a child of parent with no local bindings.
func NewChild(parent Scope) *Child {
	return &Child{parent, make(map[string]any)}
}

// Set binds a local name, overwriting any earlier local binding.
func (c *Child) Set(name string, v any) {
	c.locals[name] = v
}

// Lookup implements Scope.
func (c *Child) Lookup(name string) (any, bool) {
	if v, ok := c.locals[name]; ok {
		return v, true
	}
	return c.parent.Lookup(name)
}

// Index lets a child scope be used as a value in expressions.
func (c *Child) Index(k string) (any, bool) { return c.Lookup(k) }

// Recorder is a Scope with no bindings that remembers the names looked up
// through it. It is used to check that an expression is a constant.
type Recorder struct {
	Names []string
}

// Lookup implements Scope.
func (r *Recorder) Lookup(name string) (any, bool) {
	r.Names = append(r.Names, name)
	return nil, false
}
