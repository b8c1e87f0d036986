// Package directives implements the standard directives.
//
// thi-if="expr" outputs its element when expr is truthy.
//
// thi-repeat="item in expr" and thi-repeat="(key, value) in expr" output
// their element once for each element of an array or each entry of a
// mapping. Each instance sees the loop variables plus $index, $first,
// $middle, $last, $even and $odd.
//
// thi-switch="expr" on an element selects which of the thi-when="constant"
// children below it are output; thi-else children are output when no
// thi-when matches.
package directives

import (
	"github.com/thistle-tpl/thistle/pkg/compile"
	"github.com/thistle-tpl/thistle/pkg/logutil"
	"github.com/thistle-tpl/thistle/pkg/vals"
)

var logger = logutil.GetLogger("[directives] ")

// Priorities of the standard directives. They only order these directives
// against decorators and other directives on the same element; two
// template directives on one element are a compile error, so a condition
// that uses loop variables goes on a child of a <template thi-repeat>.
const (
	SwitchPriority = 1200
	RepeatPriority = 1000
	IfPriority     = 600
)

// If is the thi-if directive.
var If = compile.Must(compile.NewTemplate(compile.TemplateDef{
	Common: compile.Common{
		Selector: "[thi-if]", Priority: IfPriority, Terminal: true},
	Compile: compileIf,
}))

func compileIf(site *compile.Site) (compile.TemplateLinkFn, error) {
	test, err := site.Expr(site.AttrValue())
	if err != nil {
		return nil, err
	}
	return func(fm *compile.Frame, instance func(*compile.Frame) error) error {
		v, err := test(fm.Scope)
		if err != nil {
			return err
		}
		if vals.Truthy(v) {
			return instance(fm)
		}
		return nil
	}, nil
}

// Standard returns all the standard directives.
func Standard() []*compile.Directive {
	return []*compile.Directive{If, Repeat, Switch, When, Else}
}
