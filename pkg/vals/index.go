package vals

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
)

// Indexer is implemented by values that look up string keys themselves.
type Indexer interface {
	// Index returns the value associated with k, and whether it exists.
	Index(k string) (any, bool)
}

// Index implements member access: a.k and a[k]. Missing properties yield
// Undefined; reading a property of nil or Undefined is an error.
func Index(a, k any) (any, error) {
	switch a := a.(type) {
	case undefined, nil:
		return nil, &TypeError{fmt.Sprintf("read property %q of", ToString(k)), Kind(a)}
	case map[string]any:
		return found(a[ToString(k)], hasKey(a, ToString(k)))
	case []any:
		if i, ok := ToIndex(k); ok && i < len(a) {
			return a[i], nil
		}
		if ToString(k) == "length" {
			return float64(len(a)), nil
		}
		return Undefined, nil
	case string:
		return indexString(a, k), nil
	case Indexer:
		return found(a.Index(ToString(k)))
	}
	return indexReflect(reflect.ValueOf(a), k)
}

func hasKey(m map[string]any, k string) bool {
	_, ok := m[k]
	return ok
}

func found(v any, ok bool) (any, error) {
	if !ok {
		return Undefined, nil
	}
	return v, nil
}

// ToIndex converts a key to a non-negative integer index. Numbers must be
// integral; strings must be canonical decimal integers.
func ToIndex(k any) (int, bool) {
	switch k := k.(type) {
	case string:
		if k == "" || (len(k) > 1 && k[0] == '0') {
			return 0, false
		}
		i, err := strconv.Atoi(k)
		return i, err == nil && i >= 0
	case float64:
		if k != math.Trunc(k) || k < 0 {
			return 0, false
		}
		i, err := safecast.Convert[int](k)
		return i, err == nil
	case int:
		return k, k >= 0
	}
	if IsNumber(k) {
		return ToIndex(ToNumber(k))
	}
	return 0, false
}

func indexString(s string, k any) any {
	if ToString(k) == "length" {
		return float64(utf8.RuneCountInString(s))
	}
	if i, ok := ToIndex(k); ok {
		for j, r := range []rune(s) {
			if j == i {
				return string(r)
			}
		}
	}
	return Undefined
}

func indexReflect(rv reflect.Value, k any) (any, error) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, &TypeError{fmt.Sprintf("read property %q of", ToString(k)), "null"}
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return Undefined, nil
		}
		v := rv.MapIndex(reflect.ValueOf(ToString(k)).Convert(rv.Type().Key()))
		if !v.IsValid() {
			return Undefined, nil
		}
		return v.Interface(), nil
	case reflect.Slice, reflect.Array:
		if i, ok := ToIndex(k); ok && i < rv.Len() {
			return rv.Index(i).Interface(), nil
		}
		if ToString(k) == "length" {
			return float64(rv.Len()), nil
		}
	case reflect.String:
		return indexString(rv.String(), k), nil
	case reflect.Struct:
		if f, ok := structField(rv, ToString(k)); ok {
			return f.Interface(), nil
		}
	}
	return Undefined, nil
}

// Finds an exported field by its Go name or the name in its json tag.
func structField(rv reflect.Value, name string) (reflect.Value, bool) {
	t := rv.Type()
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		if sf.Name == name || (tag != "" && tag != "-" && tag == name) {
			return rv.Field(i), true
		}
	}
	return reflect.Value{}, false
}
