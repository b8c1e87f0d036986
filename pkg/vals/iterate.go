package vals

import (
	"reflect"
	"sort"
)

// Entry is one element visited when iterating over a collection. For arrays
// Key is the index as a float64; for objects it is the key string.
type Entry struct {
	Key   any
	Value any
}

// Entries returns the entries of an array or object, in order. Arrays are
// visited by index. A *Map is visited in insertion order and other mappings in
// sorted key order; structs are visited in field order.
func Entries(v any) ([]Entry, error) {
	switch v := v.(type) {
	case undefined:
		return nil, &TypeError{"iterate over", "undefined"}
	case []any:
		entries := make([]Entry, len(v))
		for i, elem := range v {
			entries[i] = Entry{float64(i), elem}
		}
		return entries, nil
	case *Map:
		entries := make([]Entry, v.Len())
		for i, k := range v.Keys() {
			entries[i] = Entry{k, v.values[k]}
		}
		return entries, nil
	case map[string]any:
		keys := make([]string, 0, len(v))
		for k := range v {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			entries[i] = Entry{k, v[k]}
		}
		return entries, nil
	case string:
		entries := make([]Entry, 0, len(v))
		for _, r := range v {
			entries = append(entries, Entry{float64(len(entries)), string(r)})
		}
		return entries, nil
	}
	return entriesReflect(reflect.ValueOf(v))
}

func entriesReflect(rv reflect.Value) ([]Entry, error) {
	for rv.Kind() == reflect.Pointer || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, &TypeError{"iterate over", "null"}
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		entries := make([]Entry, rv.Len())
		for i := range entries {
			entries[i] = Entry{float64(i), rv.Index(i).Interface()}
		}
		return entries, nil
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := rv.MapKeys()
		sort.Slice(keys, func(i, j int) bool { return keys[i].String() < keys[j].String() })
		entries := make([]Entry, len(keys))
		for i, k := range keys {
			entries[i] = Entry{k.String(), rv.MapIndex(k).Interface()}
		}
		return entries, nil
	case reflect.Struct:
		t := rv.Type()
		var entries []Entry
		for i := 0; i < t.NumField(); i++ {
			if sf := t.Field(i); sf.IsExported() {
				entries = append(entries, Entry{sf.Name, rv.Field(i).Interface()})
			}
		}
		return entries, nil
	}
	if !rv.IsValid() {
		return nil, &TypeError{"iterate over", "null"}
	}
	return nil, &TypeError{"iterate over", Kind(rv.Interface())}
}
