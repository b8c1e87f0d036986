package vals

import (
	"fmt"
	"reflect"
	"strings"
)

// ToString converts a value to a string the way string concatenation does.
// Arrays join their elements with commas, objects become "[object Object]".
func ToString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case float64:
		return FormatNumber(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case nil:
		return "null"
	case undefined:
		return "undefined"
	case fmt.Stringer:
		return v.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		parts := make([]string, rv.Len())
		for i := range parts {
			elem := rv.Index(i).Interface()
			if elem != nil && !IsUndefined(elem) {
				parts[i] = ToString(elem)
			}
		}
		return strings.Join(parts, ",")
	case reflect.String:
		return rv.String()
	case reflect.Bool:
		return ToString(rv.Bool())
	case reflect.Func:
		return "function"
	case reflect.Pointer:
		if rv.IsNil() {
			return "null"
		}
	}
	if f, ok := toFloat(rv); ok {
		return FormatNumber(f)
	}
	return "[object Object]"
}
