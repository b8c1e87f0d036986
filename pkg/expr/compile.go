// Package expr implements the expression language used in interpolations and
// directive attributes.
//
// Expressions are a side-effect-free subset of JavaScript expressions:
// literals, identifiers, unary and binary operators, member access, calls,
// and array and object literals. Identifiers are looked up in the scope an
// expression is evaluated against, never in any global environment. The |
// operator applies a filter: "v | name(args...)" evaluates to
// filters[name](args...)(v).
package expr

import (
	"fmt"
	"math"
	"sort"

	"github.com/thistle-tpl/thistle/pkg/diag"
	"github.com/thistle-tpl/thistle/pkg/scope"
	"github.com/thistle-tpl/thistle/pkg/vals"
)

// Fn evaluates a compiled expression against a scope.
type Fn func(s scope.Scope) (any, error)

// Compiler compiles expressions. Its filters are fixed when it is created,
// and it is safe for concurrent use.
type Compiler struct {
	filters map[string]Filter
}

// NewCompiler creates a Compiler that resolves filter names in filters. The
// map is copied.
func NewCompiler(filters map[string]Filter) *Compiler {
	c := &Compiler{make(map[string]Filter, len(filters))}
	for name, f := range filters {
		c.filters[name] = f
	}
	return c
}

// FilterNames returns the names of all known filters, sorted.
func (c *Compiler) FilterNames() []string {
	names := make([]string, 0, len(c.filters))
	for name := range c.filters {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compile compiles an expression.
func (c *Compiler) Compile(src string) (Fn, error) {
	return c.CompileNamed("[expression]", src)
}

// CompileNamed compiles an expression, using srcName in error messages.
func (c *Compiler) CompileNamed(srcName, src string) (fn Fn, err error) {
	n, err := Parse(srcName, src)
	if err != nil {
		return nil, err
	}
	defer func() {
		if r := recover(); r != nil {
			if perr, ok := r.(*ParseError); ok {
				fn, err = nil, perr
				return
			}
			panic(r)
		}
	}()
	cp := &compiler{c.filters, srcName, src}
	return cp.compile(n), nil
}

type compiler struct {
	filters map[string]Filter
	srcName string
	src     string
}

func (cp *compiler) errorf(r diag.Ranger, format string, args ...any) {
	panic(&ParseError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(cp.srcName, cp.src, r),
	})
}

// compile is the allow-list: every node type without a case here is
// rejected.
func (cp *compiler) compile(n Node) Fn {
	switch n := n.(type) {
	case *Literal:
		v := n.Value
		return func(scope.Scope) (any, error) { return v, nil }
	case *Ident:
		name := n.Name
		return func(s scope.Scope) (any, error) {
			if v, ok := s.Lookup(name); ok {
				return v, nil
			}
			return vals.Undefined, nil
		}
	case *Unary:
		return cp.unary(n)
	case *Binary:
		return cp.binary(n)
	case *Member:
		return cp.member(n)
	case *Call:
		return cp.call(n)
	case *Array:
		return cp.array(n)
	case *Object:
		return cp.object(n)
	}
	cp.errorf(n, "expression may not contain %s", n.describe())
	panic("unreachable")
}

func (cp *compiler) compileAll(ns []Node) []Fn {
	fns := make([]Fn, len(ns))
	for i, n := range ns {
		if n == nil {
			fns[i] = func(scope.Scope) (any, error) { return vals.Undefined, nil }
		} else {
			fns[i] = cp.compile(n)
		}
	}
	return fns
}

func evalAll(s scope.Scope, fns []Fn) ([]any, error) {
	values := make([]any, len(fns))
	for i, fn := range fns {
		v, err := fn(s)
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

var unaryOps = map[string]func(any) any{
	"-":      vals.Negate,
	"+":      vals.Plus,
	"!":      vals.Not,
	"~":      vals.BitNot,
	"typeof": vals.TypeOf,
	"void":   func(any) any { return vals.Undefined },
}

func (cp *compiler) unary(n *Unary) Fn {
	f, ok := unaryOps[n.Op]
	if !ok {
		cp.errorf(n, "expression may not contain %s", n.describe())
	}
	operand := cp.compile(n.Operand)
	return func(s scope.Scope) (any, error) {
		v, err := operand(s)
		if err != nil {
			return nil, err
		}
		return f(v), nil
	}
}

var binaryOps = map[string]func(a, b any) any{
	"+":   vals.Add,
	"-":   vals.Sub,
	"*":   vals.Mul,
	"/":   vals.Div,
	"%":   vals.Mod,
	"**":  func(a, b any) any { return math.Pow(vals.ToNumber(a), vals.ToNumber(b)) },
	"&":   vals.BitAnd,
	"^":   vals.BitXor,
	"<<":  vals.ShiftLeft,
	">>":  vals.ShiftRight,
	">>>": vals.ShiftRightUnsigned,
	"<":   vals.Less,
	"<=":  vals.LessEqual,
	">":   vals.Greater,
	">=":  vals.GreaterEqual,
	"==":  func(a, b any) any { return vals.LooseEqual(a, b) },
	"!=":  func(a, b any) any { return !vals.LooseEqual(a, b) },
	"===": func(a, b any) any { return vals.StrictEqual(a, b) },
	"!==": func(a, b any) any { return !vals.StrictEqual(a, b) },
}

func (cp *compiler) binary(n *Binary) Fn {
	switch n.Op {
	case "|":
		return cp.filter(n)
	case "&&", "||", "??":
		return cp.logical(n)
	}
	var f func(a, b any) (any, error)
	if n.Op == "in" {
		f = vals.In
	} else if op, ok := binaryOps[n.Op]; ok {
		f = func(a, b any) (any, error) { return op(a, b), nil }
	} else {
		cp.errorf(n, "expression may not contain %s", n.describe())
	}
	left, right := cp.compile(n.Left), cp.compile(n.Right)
	return func(s scope.Scope) (any, error) {
		a, err := left(s)
		if err != nil {
			return nil, err
		}
		b, err := right(s)
		if err != nil {
			return nil, err
		}
		return f(a, b)
	}
}

func (cp *compiler) logical(n *Binary) Fn {
	left, right := cp.compile(n.Left), cp.compile(n.Right)
	var useLeft func(any) bool
	switch n.Op {
	case "&&":
		useLeft = func(v any) bool { return !vals.Truthy(v) }
	case "||":
		useLeft = vals.Truthy
	default:
		useLeft = func(v any) bool { return v != nil && !vals.IsUndefined(v) }
	}
	return func(s scope.Scope) (any, error) {
		a, err := left(s)
		if err != nil || useLeft(a) {
			return a, err
		}
		return right(s)
	}
}

func (cp *compiler) filter(n *Binary) Fn {
	var name string
	var argNodes []Node
	switch rhs := n.Right.(type) {
	case *Ident:
		name = rhs.Name
	case *Call:
		callee, ok := rhs.Callee.(*Ident)
		if !ok {
			cp.errorf(rhs.Callee, "filter name must be an identifier")
		}
		name, argNodes = callee.Name, rhs.Args
	default:
		cp.errorf(n.Right, "right operand of | must be a filter call")
	}
	f, ok := cp.filters[name]
	if !ok {
		cp.errorf(n.Right, "unknown filter %q", name)
	}
	input := cp.compile(n.Left)
	args := cp.compileAll(argNodes)
	return func(s scope.Scope) (any, error) {
		v, err := input(s)
		if err != nil {
			return nil, err
		}
		argValues, err := evalAll(s, args)
		if err != nil {
			return nil, err
		}
		return f(argValues...)(v)
	}
}

func (cp *compiler) member(n *Member) Fn {
	object := cp.compile(n.Object)
	var property Fn
	if n.Computed {
		property = cp.compile(n.Property)
	} else {
		name := n.Property.(*Ident).Name
		property = func(scope.Scope) (any, error) { return name, nil }
	}
	optional := n.Optional
	return func(s scope.Scope) (any, error) {
		obj, err := object(s)
		if err != nil {
			return nil, err
		}
		if optional && (obj == nil || vals.IsUndefined(obj)) {
			return vals.Undefined, nil
		}
		key, err := property(s)
		if err != nil {
			return nil, err
		}
		return vals.Index(obj, key)
	}
}

func (cp *compiler) call(n *Call) Fn {
	callee := cp.compile(n.Callee)
	args := cp.compileAll(n.Args)
	return func(s scope.Scope) (any, error) {
		fn, err := callee(s)
		if err != nil {
			return nil, err
		}
		argValues, err := evalAll(s, args)
		if err != nil {
			return nil, err
		}
		return vals.Call(fn, argValues)
	}
}

func (cp *compiler) array(n *Array) Fn {
	elems := cp.compileAll(n.Elems)
	return func(s scope.Scope) (any, error) {
		return evalAll(s, elems)
	}
}

type propertyOp struct {
	key   Fn
	value Fn
}

func (cp *compiler) object(n *Object) Fn {
	props := make([]propertyOp, len(n.Props))
	for i, p := range n.Props {
		if p.Key == nil {
			// Spread property, which is rejected.
			cp.compile(p.Value)
		}
		var key Fn
		switch k := p.Key.(type) {
		case *Ident:
			if !p.Computed {
				name := k.Name
				key = func(scope.Scope) (any, error) { return name, nil }
			}
		case *Literal:
			if !p.Computed {
				name := vals.ToString(k.Value)
				key = func(scope.Scope) (any, error) { return name, nil }
			}
		}
		if key == nil {
			key = cp.compile(p.Key)
		}
		props[i] = propertyOp{key, cp.compile(p.Value)}
	}
	return func(s scope.Scope) (any, error) {
		obj := vals.NewMap()
		for _, p := range props {
			k, err := p.key(s)
			if err != nil {
				return nil, err
			}
			v, err := p.value(s)
			if err != nil {
				return nil, err
			}
			obj.Set(vals.ToString(k), v)
		}
		return obj, nil
	}
}
