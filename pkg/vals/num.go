package vals

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// ToNumber converts a value to a float64 the way arithmetic operators do:
// Go numbers convert directly, booleans become 0 or 1, nil becomes 0, strings
// are parsed (the empty string is 0), and everything else is NaN.
func ToNumber(v any) float64 {
	switch v := v.(type) {
	case float64:
		return v
	case int:
		return float64(v)
	case bool:
		if v {
			return 1
		}
		return 0
	case nil:
		return 0
	case undefined:
		return math.NaN()
	case string:
		return parseNumber(v)
	}
	if f, ok := toFloat(reflect.ValueOf(v)); ok {
		return f
	}
	return math.NaN()
}

// IsNumber reports whether v is a Go numeric value.
func IsNumber(v any) bool {
	switch v.(type) {
	case float64, int:
		return true
	case nil, bool, string, undefined:
		return false
	}
	_, ok := toFloat(reflect.ValueOf(v))
	return ok
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		if i, err := strconv.ParseUint(s[2:], 16, 64); err == nil {
			return float64(i)
		}
		return math.NaN()
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || strings.ContainsAny(s, "_nN") {
		return math.NaN()
	}
	return f
}

func toFloat(rv reflect.Value) (float64, bool) {
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// FormatNumber formats a number as decimal text: integral values have no
// fractional part, very large and very small magnitudes use exponent
// notation, and the special values are "NaN", "Infinity" and "-Infinity".
func FormatNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	if abs := math.Abs(f); abs >= 1e-6 && abs < 1e21 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Exponents are written without leading zeros: 1e-07 becomes 1e-7.
	if i := strings.IndexByte(s, 'e'); i >= 0 {
		mantissa, exp := s[:i], s[i+1:]
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		s = mantissa + "e" + sign + exp
	}
	return s
}
