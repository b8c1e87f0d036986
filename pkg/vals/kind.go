// Package vals contains the value model of the expression language.
//
// Expressions work on plain Go values: nil is null, float64 is the number
// type (other Go numeric types are accepted and converted when used in
// arithmetic), strings, bools, []any and map[string]any for literals, plus
// any Go value reachable from a scope, which is accessed reflectively.
// Undefined stands for a missing value and is distinct from nil.
package vals

import (
	"fmt"
	"reflect"
)

// Undefined is the value of missing scope bindings and properties.
var Undefined = undefined{}

type undefined struct{}

func (undefined) String() string { return "undefined" }

// MarshalJSON renders Undefined as null.
func (undefined) MarshalJSON() ([]byte, error) { return []byte("null"), nil }

// IsUndefined reports whether v is Undefined.
func IsUndefined(v any) bool {
	_, ok := v.(undefined)
	return ok
}

// Kind returns the kind of a value, one of "undefined", "null", "boolean",
// "number", "string", "array", "object" and "function". Kinds correspond to
// what typeof would report in the expression language, except that null has
// its own kind.
func Kind(v any) string {
	switch v := v.(type) {
	case undefined:
		return "undefined"
	case nil:
		return "null"
	case bool:
		return "boolean"
	case string:
		return "string"
	case float64, float32, int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64:
		return "number"
	case []any:
		return "array"
	case map[string]any, *Map:
		return "object"
	default:
		return reflectKind(reflect.ValueOf(v))
	}
}

func reflectKind(rv reflect.Value) string {
	switch rv.Kind() {
	case reflect.Func:
		return "function"
	case reflect.Slice, reflect.Array:
		return "array"
	case reflect.Pointer:
		if rv.IsNil() {
			return "null"
		}
		return reflectKind(rv.Elem())
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "boolean"
	default:
		if _, ok := toFloat(rv); ok {
			return "number"
		}
		return "object"
	}
}

// TypeError is returned for operations applied to values of the wrong kind.
type TypeError struct {
	Op   string
	Kind string
}

func (e *TypeError) Error() string {
	return fmt.Sprintf("cannot %s %s", e.Op, e.Kind)
}
