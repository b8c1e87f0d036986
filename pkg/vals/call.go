package vals

import (
	"fmt"
	"reflect"
)

var (
	errorType = reflect.TypeOf((*error)(nil)).Elem()
	anyType   = reflect.TypeOf((*any)(nil)).Elem()
)

// Call calls a Go function with arguments from an expression. Arguments are
// converted to the parameter types where possible: numbers convert between
// numeric types, nil and Undefined become zero values. Missing trailing
// arguments are zero values too, and extra arguments are dropped unless the
// function is variadic.
//
// A function returning no values yields Undefined. A trailing error result is
// returned as the error of Call.
func Call(fn any, args []any) (any, error) {
	switch fn := fn.(type) {
	case func(...any) any:
		return fn(args...), nil
	case func(...any) (any, error):
		return fn(args...)
	}
	rv := reflect.ValueOf(fn)
	if rv.Kind() != reflect.Func || rv.IsNil() {
		return nil, &TypeError{"call", Kind(fn)}
	}
	t := rv.Type()
	in, err := convertArgs(t, args)
	if err != nil {
		return nil, err
	}
	outs := rv.Call(in)
	if n := len(outs); n > 0 && t.Out(n-1) == errorType {
		if e := outs[n-1].Interface(); e != nil {
			return nil, e.(error)
		}
		outs = outs[:n-1]
	}
	switch len(outs) {
	case 0:
		return Undefined, nil
	case 1:
		return outs[0].Interface(), nil
	default:
		results := make([]any, len(outs))
		for i, out := range outs {
			results[i] = out.Interface()
		}
		return results, nil
	}
}

func convertArgs(t reflect.Type, args []any) ([]reflect.Value, error) {
	nFixed := t.NumIn()
	if t.IsVariadic() {
		nFixed--
	}
	n := nFixed
	if t.IsVariadic() && len(args) > nFixed {
		n = len(args)
	}
	in := make([]reflect.Value, n)
	for i := range in {
		var pt reflect.Type
		if i < nFixed {
			pt = t.In(i)
		} else {
			pt = t.In(nFixed).Elem()
		}
		var arg any = Undefined
		if i < len(args) {
			arg = args[i]
		}
		v, err := convertArg(arg, pt)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		in[i] = v
	}
	return in, nil
}

func convertArg(arg any, pt reflect.Type) (reflect.Value, error) {
	if arg == nil || (IsUndefined(arg) && pt != anyType) {
		return reflect.Zero(pt), nil
	}
	av := reflect.ValueOf(arg)
	if av.Type().AssignableTo(pt) {
		return av, nil
	}
	if IsNumber(arg) {
		if _, ok := toFloat(reflect.Zero(pt)); ok {
			return reflect.ValueOf(ToNumber(arg)).Convert(pt), nil
		}
	}
	if pt.Kind() == reflect.String {
		return reflect.ValueOf(ToString(arg)).Convert(pt), nil
	}
	if pt.Kind() == reflect.Bool {
		return reflect.ValueOf(Truthy(arg)), nil
	}
	if m, ok := arg.(*Map); ok && pt.Kind() == reflect.Map && pt.Key().Kind() == reflect.String {
		return mapToGo(m, pt)
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", Kind(arg), pt)
}

func mapToGo(m *Map, pt reflect.Type) (reflect.Value, error) {
	out := reflect.MakeMapWithSize(pt, m.Len())
	for _, k := range m.Keys() {
		v, _ := m.Index(k)
		ev, err := convertArg(v, pt.Elem())
		if err != nil {
			return reflect.Value{}, err
		}
		out.SetMapIndex(reflect.ValueOf(k).Convert(pt.Key()), ev)
	}
	return out, nil
}
