// Package nodetpl builds constructors for values of a fixed shape.
//
// A skeleton is a JSON-like value (nil, booleans, numbers, strings, []any,
// map[string]any and *vals.Map) in which some leaves are VarRef values.
// Compiling a skeleton resolves the shape once; the resulting Constructor
// only fills in the leaves that vary.
package nodetpl

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/thistle-tpl/thistle/pkg/vals"
)

// VarRef is a reference to a constructor parameter inside a skeleton.
type VarRef string

// Constructor returns a fresh value matching its skeleton, with references
// substituted by the corresponding arguments. Missing arguments are
// undefined.
type Constructor func(args ...any) any

// Compile compiles a skeleton into a Constructor with the given parameters.
// Every VarRef in the skeleton must name one of params.
func Compile(skeleton any, params []string) (Constructor, error) {
	index := make(map[string]int, len(params))
	for i, p := range params {
		if _, dup := index[p]; dup {
			return nil, fmt.Errorf("duplicate parameter %q", p)
		}
		index[p] = i
	}
	b, err := compileBuilder(skeleton, index)
	if err != nil {
		return nil, err
	}
	return func(args ...any) any { return b(args) }, nil
}

type builder func(args []any) any

func compileBuilder(v any, index map[string]int) (builder, error) {
	switch v := v.(type) {
	case VarRef:
		i, ok := index[string(v)]
		if !ok {
			return nil, fmt.Errorf("reference to unknown parameter %q", string(v))
		}
		return func(args []any) any {
			if i < len(args) {
				return args[i]
			}
			return vals.Undefined
		}, nil
	case []any:
		elems, err := compileBuilders(v, index)
		if err != nil {
			return nil, err
		}
		return func(args []any) any {
			l := make([]any, len(elems))
			for i, elem := range elems {
				l[i] = elem(args)
			}
			return l
		}, nil
	case map[string]any:
		keys := sortedKeys(v)
		values, err := compileBuilders(valuesOf(v, keys), index)
		if err != nil {
			return nil, err
		}
		return func(args []any) any {
			m := make(map[string]any, len(keys))
			for i, k := range keys {
				m[k] = values[i](args)
			}
			return m
		}, nil
	case *vals.Map:
		keys := v.Keys()
		fields := make([]any, len(keys))
		for i, k := range keys {
			fields[i], _ = v.Index(k)
		}
		values, err := compileBuilders(fields, index)
		if err != nil {
			return nil, err
		}
		return func(args []any) any {
			m := vals.NewMap()
			for i, k := range keys {
				m.Set(k, values[i](args))
			}
			return m
		}, nil
	case nil, bool, string, float64, int:
		return func([]any) any { return v }, nil
	}
	return nil, fmt.Errorf("unsupported skeleton value of type %T", v)
}

func compileBuilders(vs []any, index map[string]int) ([]builder, error) {
	bs := make([]builder, len(vs))
	for i, v := range vs {
		b, err := compileBuilder(v, index)
		if err != nil {
			return nil, err
		}
		bs[i] = b
	}
	return bs, nil
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func valuesOf(m map[string]any, keys []string) []any {
	values := make([]any, len(keys))
	for i, k := range keys {
		values[i] = m[k]
	}
	return values
}

// Encode writes a skeleton as JSON, extended with bare parameter names for
// references and "undefined". It is meant for debugging.
func Encode(v any) string {
	var sb strings.Builder
	encode(&sb, v)
	return sb.String()
}

func encode(sb *strings.Builder, v any) {
	switch v := v.(type) {
	case VarRef:
		sb.WriteString(string(v))
	case []any:
		sb.WriteByte('[')
		for i, elem := range v {
			if i > 0 {
				sb.WriteByte(',')
			}
			encode(sb, elem)
		}
		sb.WriteByte(']')
	case map[string]any:
		keys := sortedKeys(v)
		encodeObject(sb, keys, valuesOf(v, keys))
	case *vals.Map:
		keys := v.Keys()
		values := make([]any, len(keys))
		for i, k := range keys {
			values[i], _ = v.Index(k)
		}
		encodeObject(sb, keys, values)
	default:
		if vals.IsUndefined(v) {
			sb.WriteString("undefined")
			return
		}
		if vals.IsNumber(v) {
			sb.WriteString(vals.FormatNumber(vals.ToNumber(v)))
			return
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			fmt.Fprintf(sb, "<%T>", v)
			return
		}
		sb.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	}
}

func encodeObject(sb *strings.Builder, keys []string, values []any) {
	sb.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			sb.WriteByte(',')
		}
		encode(sb, k)
		sb.WriteByte(':')
		encode(sb, values[i])
	}
	sb.WriteByte('}')
}
