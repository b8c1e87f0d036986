package vals

import (
	"math"
	"reflect"
)

// Add implements +: string concatenation if either operand is a string,
// numeric addition otherwise.
func Add(a, b any) any {
	if isString(a) || isString(b) {
		return ToString(a) + ToString(b)
	}
	return ToNumber(a) + ToNumber(b)
}

func isString(v any) bool {
	switch v := v.(type) {
	case string:
		return true
	case nil, bool, float64, undefined:
		return false
	default:
		k := reflect.ValueOf(v).Kind()
		return k == reflect.String || k == reflect.Slice || k == reflect.Array ||
			k == reflect.Map || k == reflect.Struct
	}
}

// Sub implements -.
func Sub(a, b any) any { return ToNumber(a) - ToNumber(b) }

// Mul implements *.
func Mul(a, b any) any { return ToNumber(a) * ToNumber(b) }

// Div implements /. Division by zero yields an infinity or NaN.
func Div(a, b any) any { return ToNumber(a) / ToNumber(b) }

// Mod implements %, with the sign of the dividend.
func Mod(a, b any) any { return math.Mod(ToNumber(a), ToNumber(b)) }

// BitAnd implements &, on 32-bit integers.
func BitAnd(a, b any) any { return float64(toInt32(a) & toInt32(b)) }

// BitXor implements ^, on 32-bit integers.
func BitXor(a, b any) any { return float64(toInt32(a) ^ toInt32(b)) }

// ShiftLeft implements <<.
func ShiftLeft(a, b any) any { return float64(toInt32(a) << (toUint32(b) & 31)) }

// ShiftRight implements >>.
func ShiftRight(a, b any) any { return float64(toInt32(a) >> (toUint32(b) & 31)) }

// ShiftRightUnsigned implements >>>.
func ShiftRightUnsigned(a, b any) any { return float64(toUint32(a) >> (toUint32(b) & 31)) }

func toUint32(v any) uint32 {
	f := ToNumber(v)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return uint32(int64(math.Trunc(math.Mod(f, 1<<32))))
}

func toInt32(v any) int32 { return int32(toUint32(v)) }

// Negate implements unary -.
func Negate(a any) any { return -ToNumber(a) }

// Plus implements unary +.
func Plus(a any) any { return ToNumber(a) }

// Not implements !.
func Not(a any) any { return !Truthy(a) }

// BitNot implements ~.
func BitNot(a any) any { return float64(^toInt32(a)) }

// TypeOf implements typeof.
func TypeOf(a any) any {
	if k := Kind(a); k != "null" && k != "array" {
		return k
	}
	return "object"
}

// Less implements <. Two strings compare lexicographically; anything else
// compares numerically, and comparisons involving NaN are false.
func Less(a, b any) any {
	if sa, sb, ok := bothStrings(a, b); ok {
		return sa < sb
	}
	return ToNumber(a) < ToNumber(b)
}

// LessEqual implements <=.
func LessEqual(a, b any) any {
	if sa, sb, ok := bothStrings(a, b); ok {
		return sa <= sb
	}
	return ToNumber(a) <= ToNumber(b)
}

// Greater implements >.
func Greater(a, b any) any { return Less(b, a) }

// GreaterEqual implements >=.
func GreaterEqual(a, b any) any { return LessEqual(b, a) }

func bothStrings(a, b any) (string, string, bool) {
	sa, ok1 := a.(string)
	sb, ok2 := b.(string)
	return sa, sb, ok1 && ok2
}

// StrictEqual implements ===. Numbers of any Go type compare by value;
// scalars of different kinds are never equal; arrays, objects and functions
// are equal only to themselves.
func StrictEqual(a, b any) bool {
	if IsNumber(a) && IsNumber(b) {
		return ToNumber(a) == ToNumber(b)
	}
	ka, kb := Kind(a), Kind(b)
	if ka != kb {
		return false
	}
	switch ka {
	case "undefined", "null":
		return true
	case "string":
		return ToString(a) == ToString(b)
	case "boolean":
		return Truthy(a) == Truthy(b)
	}
	return sameReference(a, b)
}

func sameReference(a, b any) bool {
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	return ra.Comparable() && ra.Equal(rb)
}

// LooseEqual implements ==: nil and Undefined equal each other, and mixed
// scalar comparisons convert to numbers.
func LooseEqual(a, b any) bool {
	ka, kb := Kind(a), Kind(b)
	nullish := func(k string) bool { return k == "null" || k == "undefined" }
	switch {
	case nullish(ka) || nullish(kb):
		return nullish(ka) && nullish(kb)
	case ka == kb:
		return StrictEqual(a, b)
	case isScalarKind(ka) && isScalarKind(kb):
		return ToNumber(a) == ToNumber(b)
	case isScalarKind(ka):
		return LooseEqual(a, ToString(b))
	case isScalarKind(kb):
		return LooseEqual(ToString(a), b)
	}
	return false
}

func isScalarKind(k string) bool {
	return k == "number" || k == "string" || k == "boolean"
}

// In implements the in operator: whether an object has a key, or an array
// has an index.
func In(k, obj any) (any, error) {
	switch Kind(obj) {
	case "object", "array":
	default:
		return nil, &TypeError{"use in operator on", Kind(obj)}
	}
	v, err := Index(obj, k)
	if err != nil {
		return nil, err
	}
	return !IsUndefined(v), nil
}
