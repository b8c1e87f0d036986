package nodetpl

import (
	"strconv"

	"github.com/thistle-tpl/thistle/pkg/interp"
	"github.com/thistle-tpl/thistle/pkg/node"
	"github.com/thistle-tpl/thistle/pkg/scope"
	"github.com/thistle-tpl/thistle/pkg/vals"
)

// Attr is an attribute slot of an element template. When Interp is non-nil
// the value is computed at link time and Value is ignored.
type Attr struct {
	Name   string
	Value  string
	Interp interp.Fn
}

// Element constructs output elements of one shape.
type Element struct {
	name    string
	interps []interp.Fn
	ctor    Constructor
}

// NewElement compiles an element template. Interpolated attributes are
// evaluated in declaration order; an interpolation that yields undefined
// omits its attribute.
func NewElement(name string, attrs []Attr) *Element {
	skeleton := vals.NewMap()
	var params []string
	var interps []interp.Fn
	for _, a := range attrs {
		if a.Interp == nil {
			skeleton.Set(a.Name, a.Value)
			continue
		}
		param := "$" + strconv.Itoa(len(params))
		params = append(params, param)
		interps = append(interps, a.Interp)
		skeleton.Set(a.Name, VarRef(param))
	}
	ctor, err := Compile(skeleton, params)
	if err != nil {
		// The skeleton only references params built above.
		panic(err)
	}
	return &Element{name, interps, ctor}
}

// New builds an element for a scope. The result has no children and no
// parent.
func (e *Element) New(s scope.Scope) *node.Node {
	var args []any
	if len(e.interps) > 0 {
		args = make([]any, len(e.interps))
		for i, fn := range e.interps {
			if v, ok := fn(s); ok {
				args[i] = v
			} else {
				args[i] = vals.Undefined
			}
		}
	}
	m := e.ctor(args...).(*vals.Map)
	n := node.NewElement(e.name)
	if m.Len() > 0 {
		n.Attrs = make([]node.Attr, 0, m.Len())
	}
	for _, k := range m.Keys() {
		v, _ := m.Index(k)
		if str, ok := v.(string); ok {
			n.Attrs = append(n.Attrs, node.Attr{Name: k, Value: str})
		}
	}
	return n
}
