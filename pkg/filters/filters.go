// Package filters implements the standard filters.
//
// Filters are applied with the pipe operator: {{ name | upper }},
// {{ items | join(", ") }}.
package filters

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"fortio.org/safecast"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/thistle-tpl/thistle/pkg/expr"
	"github.com/thistle-tpl/thistle/pkg/vals"
)

// Standard returns a new map of the standard filters.
func Standard() map[string]expr.Filter {
	return map[string]expr.Filter{
		"upper":   caser(func() cases.Caser { return cases.Upper(language.Und) }),
		"lower":   caser(func() cases.Caser { return cases.Lower(language.Und) }),
		"title":   caser(func() cases.Caser { return cases.Title(language.Und) }),
		"trim":    expr.Simple(func(v any) any { return strings.TrimSpace(str(v)) }),
		"json":    jsonFilter,
		"default": defaultFilter,
		"join":    join,
		"length":  length,
		"limit":   limit,
	}
}

// Like vals.ToString, but undefined and null become "".
func str(v any) string {
	if v == nil || vals.IsUndefined(v) {
		return ""
	}
	return vals.ToString(v)
}

// A Caser keeps state, so each application gets its own.
func caser(mk func() cases.Caser) expr.Filter {
	return expr.Simple(func(v any) any {
		c := mk()
		return c.String(str(v))
	})
}

func jsonFilter(...any) expr.FilterFunc {
	return func(v any) (any, error) {
		var sb strings.Builder
		enc := json.NewEncoder(&sb)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		return strings.TrimSuffix(sb.String(), "\n"), nil
	}
}

// default(x) replaces undefined, null and "" with x.
func defaultFilter(args ...any) expr.FilterFunc {
	var fallback any = ""
	if len(args) > 0 {
		fallback = args[0]
	}
	return func(v any) (any, error) {
		if v == nil || vals.IsUndefined(v) || v == "" {
			return fallback, nil
		}
		return v, nil
	}
}

// join(sep) joins the elements of an array, which default to ",".
func join(args ...any) expr.FilterFunc {
	sep := ","
	if len(args) > 0 {
		sep = str(args[0])
	}
	return func(v any) (any, error) {
		entries, err := vals.Entries(v)
		if err != nil {
			return nil, err
		}
		parts := make([]string, len(entries))
		for i, e := range entries {
			parts[i] = str(e.Value)
		}
		return strings.Join(parts, sep), nil
	}
}

func length(...any) expr.FilterFunc {
	return func(v any) (any, error) {
		switch v := v.(type) {
		case string:
			return float64(utf8.RuneCountInString(v)), nil
		case nil:
			return 0.0, nil
		}
		if vals.IsUndefined(v) {
			return 0.0, nil
		}
		entries, err := vals.Entries(v)
		if err != nil {
			return nil, err
		}
		return float64(len(entries)), nil
	}
}

// limit(n) keeps the first n elements of an array or runes of a string, or
// the last -n when n is negative.
func limit(args ...any) expr.FilterFunc {
	var n int
	var argErr error
	if len(args) == 0 {
		argErr = fmt.Errorf("limit needs an argument")
	} else {
		n, argErr = safecast.Convert[int](vals.ToNumber(args[0]))
		if argErr != nil {
			argErr = fmt.Errorf("limit needs an integer argument, got %s", vals.ToString(args[0]))
		}
	}
	return func(v any) (any, error) {
		if argErr != nil {
			return nil, argErr
		}
		if s, ok := v.(string); ok {
			return string(truncate([]rune(s), n)), nil
		}
		entries, err := vals.Entries(v)
		if err != nil {
			return nil, err
		}
		entries = truncate(entries, n)
		out := make([]any, len(entries))
		for i, e := range entries {
			out[i] = e.Value
		}
		return out, nil
	}
}

func truncate[T any](s []T, n int) []T {
	switch {
	case n >= len(s) || -n >= len(s):
		return s
	case n >= 0:
		return s[:n]
	default:
		return s[len(s)+n:]
	}
}
