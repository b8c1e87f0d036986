package directives

import (
	"github.com/thistle-tpl/thistle/pkg/compile"
	"github.com/thistle-tpl/thistle/pkg/node"
	"github.com/thistle-tpl/thistle/pkg/scope"
	"github.com/thistle-tpl/thistle/pkg/vals"
)

// SwitchRole is the role the thi-switch directive registers its service
// under.
const SwitchRole = "thi-switch"

// Switch is the thi-switch directive.
var Switch = compile.Must(compile.NewDecorator(compile.DecoratorDef{
	Common:  compile.Common{Selector: "[thi-switch]", Priority: SwitchPriority},
	Compile: compileSwitch,
}))

// When is the thi-when directive.
var When = compile.Must(compile.NewTemplate(compile.TemplateDef{
	Common: compile.Common{
		Selector: "[thi-when]", Priority: SwitchPriority, Terminal: true},
	Compile: compileWhen,
}))

// Else is the thi-else directive.
var Else = compile.Must(compile.NewTemplate(compile.TemplateDef{
	Common: compile.Common{
		Selector: "[thi-else]", Priority: SwitchPriority, Terminal: true},
	Compile: compileElse,
}))

// Index of the case selected when no thi-when matches.
const elseCase = 0

// switchService maps the constant values of the thi-when cases of one
// thi-switch to case indices. It is filled while the element's subtree is
// compiled and only read when linking.
//
// The index of the active case is kept on the Frame stack keyed by the
// service, so nested instances of one switch do not interfere.
type switchService struct {
	cases map[any]int
	n     int
}

// Registers a case, reusing the index of an earlier case with the same
// value.
func (s *switchService) addCase(v any) int {
	key, ok := caseKey(v)
	if ok {
		if i, seen := s.cases[key]; seen {
			return i
		}
	}
	s.n++
	if ok {
		s.cases[key] = s.n
	}
	return s.n
}

func (s *switchService) dispatch(v any) int {
	if key, ok := caseKey(v); ok {
		if i, ok := s.cases[key]; ok {
			return i
		}
	}
	return elseCase
}

// Returns a map key that is equal for values that are ===, or false for
// arrays, objects and functions.
func caseKey(v any) (any, bool) {
	if vals.IsNumber(v) {
		return vals.ToNumber(v), true
	}
	switch v := v.(type) {
	case nil, string, bool:
		return v, true
	}
	if vals.IsUndefined(v) {
		return vals.Undefined, true
	}
	return nil, false
}

func compileSwitch(site *compile.Site) (compile.Decoration, error) {
	discriminant, err := site.Expr(site.AttrValue())
	if err != nil {
		return compile.Decoration{}, err
	}
	svc := &switchService{cases: make(map[any]int)}
	if err := site.AddService(SwitchRole, svc); err != nil {
		return compile.Decoration{}, err
	}
	return compile.Decoration{
		Pre: func(fm *compile.Frame, _ *node.Node) error {
			v, err := discriminant(fm.Scope)
			if err != nil {
				return err
			}
			fm.Push(svc, svc.dispatch(v))
			return nil
		},
		Post: func(fm *compile.Frame, _ *node.Node) error {
			fm.Pop(svc)
			return nil
		},
	}, nil
}

func enclosingSwitch(site *compile.Site) (*switchService, error) {
	svc, ok := site.Context.GetAncestorService(SwitchRole)
	if !ok {
		return nil, site.Errorf("%s must be inside an element with thi-switch", site.AttrName)
	}
	return svc.(*switchService), nil
}

func compileWhen(site *compile.Site) (compile.TemplateLinkFn, error) {
	svc, err := enclosingSwitch(site)
	if err != nil {
		return nil, err
	}
	fn, err := site.Expr(site.AttrValue())
	if err != nil {
		return nil, err
	}
	var rec scope.Recorder
	v, err := fn(&rec)
	if len(rec.Names) > 0 {
		return nil, site.Errorf("thi-when value must be a constant, but it uses %s", rec.Names[0])
	}
	if err != nil {
		return nil, site.Errorf("cannot evaluate thi-when value: %v", err)
	}
	return caseLink(svc, svc.addCase(v)), nil
}

func compileElse(site *compile.Site) (compile.TemplateLinkFn, error) {
	svc, err := enclosingSwitch(site)
	if err != nil {
		return nil, err
	}
	return caseLink(svc, elseCase), nil
}

func caseLink(svc *switchService, index int) compile.TemplateLinkFn {
	return func(fm *compile.Frame, instance func(*compile.Frame) error) error {
		active, ok := fm.Top(svc)
		if !ok {
			logger.Println("case linked outside its switch")
			return nil
		}
		if active == index {
			return instance(fm)
		}
		return nil
	}
}
