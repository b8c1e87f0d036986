package vals

import (
	"math"
	"reflect"
)

// Truthy converts a value to a boolean. false, 0, NaN, the empty string, nil
// and Undefined are falsy; everything else, including empty arrays and
// objects, is truthy.
func Truthy(v any) bool {
	switch v := v.(type) {
	case undefined, nil:
		return false
	case bool:
		return v
	case string:
		return v != ""
	case float64:
		return v != 0 && !math.IsNaN(v)
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Func, reflect.Interface:
		return !rv.IsNil()
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return rv.Len() > 0
	}
	if f, ok := toFloat(rv); ok {
		return f != 0 && !math.IsNaN(f)
	}
	return true
}
