package directives

import (
	"regexp"

	"github.com/thistle-tpl/thistle/pkg/compile"
	"github.com/thistle-tpl/thistle/pkg/diag"
	"github.com/thistle-tpl/thistle/pkg/scope"
	"github.com/thistle-tpl/thistle/pkg/vals"
)

// Repeat is the thi-repeat directive.
var Repeat = compile.Must(compile.NewTemplate(compile.TemplateDef{
	Common: compile.Common{
		Selector: "[thi-repeat]", Priority: RepeatPriority, Terminal: true},
	Compile: compileRepeat,
}))

var (
	repeatRegexp   = regexp.MustCompile(`^\s*([\s\S]+?)\s+in\s+([\s\S]+?)\s*$`)
	assigneeRegexp = regexp.MustCompile(`^(?:([\$\w]+)|\(([\$\w]+)\s*,\s*([\$\w]+)\))$`)
)

func compileRepeat(site *compile.Site) (compile.TemplateLinkFn, error) {
	def := site.AttrValue()
	m := repeatRegexp.FindStringSubmatchIndex(def)
	if m == nil {
		return nil, site.SyntaxErrorf(def, diag.Ranging{From: 0, To: len(def)},
			"thi-repeat expects a definition like \"item in collection\"")
	}
	assignee, collection := def[m[2]:m[3]], def[m[4]:m[5]]

	am := assigneeRegexp.FindStringSubmatch(assignee)
	if am == nil {
		return nil, site.SyntaxErrorf(def, diag.Ranging{From: m[2], To: m[3]},
			"thi-repeat expects an identifier or (key, value), got %q", assignee)
	}
	keyVar, valueVar := am[2], am[3]
	if valueVar == "" {
		valueVar = am[1]
	}

	valueFn, err := site.Expr(collection)
	if err != nil {
		return nil, err
	}

	return func(fm *compile.Frame, instance func(*compile.Frame) error) error {
		v, err := valueFn(fm.Scope)
		if err != nil {
			return err
		}
		if v == nil || vals.IsUndefined(v) {
			return nil
		}
		entries, err := vals.Entries(v)
		if err != nil {
			return err
		}
		// One child scope is shared by all iterations.
		child := scope.NewChild(fm.Scope)
		childFm := fm.WithScope(child)
		last := len(entries) - 1
		for i, entry := range entries {
			if keyVar != "" {
				child.Set(keyVar, entry.Key)
			}
			child.Set(valueVar, entry.Value)
			setIterationVars(child, i, last)
			if err := instance(childFm); err != nil {
				return err
			}
		}
		return nil
	}, nil
}

func setIterationVars(s *scope.Child, i, last int) {
	first, isLast := i == 0, i == last
	even := i%2 == 0
	s.Set("$index", float64(i))
	s.Set("$first", first)
	s.Set("$last", isLast)
	s.Set("$middle", !(first || isLast))
	s.Set("$even", even)
	s.Set("$odd", !even)
}
