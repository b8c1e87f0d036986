// Package compile implements the directive compiler and linker.
//
// Compiling a template analyzes its structure once and produces a Template.
// Linking a Template against a scope produces output nodes, and can be done
// any number of times, concurrently with separate Frames.
//
// For each element, the compiler collects the directives whose selector
// matches it, and sorts them by priority (highest first), then by name,
// then by the order they were given to the compiler. At most one template
// directive and at most one component directive may match an element. A
// template directive takes over the element entirely; otherwise a component
// directive replaces the element with its own template; otherwise the
// element is copied, with interpolated attributes. Decorator directives
// modify the resulting element. Once a terminal directive is reached,
// directives with lower priority are skipped.
package compile

import (
	"fmt"
	"math"
	"sort"

	"github.com/thistle-tpl/thistle/pkg/diag"
	"github.com/thistle-tpl/thistle/pkg/expr"
	"github.com/thistle-tpl/thistle/pkg/interp"
	"github.com/thistle-tpl/thistle/pkg/markup"
	"github.com/thistle-tpl/thistle/pkg/node"
	"github.com/thistle-tpl/thistle/pkg/nodetpl"
	"github.com/thistle-tpl/thistle/pkg/scope"
)

// ContentTag is the name of the element that marks where a component
// outputs the content of the element using it.
const ContentTag = "thi-content"

// Source describes the source of a template.
type Source struct {
	Name string
	Code string
}

// Compiler compiles templates with a fixed set of directives. It is safe for
// concurrent use.
type Compiler struct {
	directives []*Directive
	exprs      *expr.Compiler
	interp     *interp.Interpolator
}

// NewCompiler creates a Compiler. A nil expression compiler is replaced by
// one without filters, and a nil interpolator by one with the default
// delimiters.
func NewCompiler(directives []*Directive, exprs *expr.Compiler, ip *interp.Interpolator) *Compiler {
	if exprs == nil {
		exprs = expr.NewCompiler(nil)
	}
	if ip == nil {
		ip = interp.New(exprs, "", "")
	}
	return &Compiler{append([]*Directive(nil), directives...), exprs, ip}
}

// Directives returns the directives of the compiler.
func (c *Compiler) Directives() []*Directive {
	return append([]*Directive(nil), c.directives...)
}

// Exprs returns the expression compiler.
func (c *Compiler) Exprs() *expr.Compiler { return c.exprs }

// Interpolator returns the interpolator.
func (c *Compiler) Interpolator() *interp.Interpolator { return c.interp }

// Compile parses and compiles markup.
func (c *Compiler) Compile(src Source) (*Template, error) {
	root, err := markup.Parse(src.Name, src.Code)
	if err != nil {
		return nil, err
	}
	return c.CompileNodes(src, root.Children, nil)
}

// CompileNodes compiles nodes parsed from src, which is only used for error
// messages. The nodes are not modified. A nil ctx is the same as an empty
// Context.
func (c *Compiler) CompileNodes(src Source, nodes []*node.Node, ctx *Context) (*Template, error) {
	if ctx == nil {
		ctx = NewContext()
	}
	cp := &compiler{
		Compiler:   c,
		src:        src,
		excluded:   make(map[*node.Node]*Directive),
		components: make(map[*Directive]*Template),
	}
	return cp.subTemplate(nodes, ctx)
}

// compiler holds the state of one Compile call.
type compiler struct {
	*Compiler
	src Source
	// Template directives not to apply again to the copy of their element.
	excluded map[*node.Node]*Directive
	// Compiled component templates. A nil entry marks a component being
	// compiled.
	components map[*Directive]*Template
}

// Carries a compile error up to subTemplate.
type compileFailure struct{ err error }

func (cp *compiler) fail(err error) {
	panic(compileFailure{err})
}

func (cp *compiler) nodeContext(n *node.Node) diag.Context {
	return diag.Context{Name: cp.src.Name, Source: cp.src.Code, Ranging: n.Ranging}
}

func (cp *compiler) errorf(n *node.Node, format string, args ...any) {
	cp.fail(&CompileError{
		Message: fmt.Sprintf(format, args...),
		Context: cp.nodeContext(n),
	})
}

func (cp *compiler) subTemplate(nodes []*node.Node, ctx *Context) (t *Template, err error) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(compileFailure); ok {
				t, err = nil, f.err
				return
			}
			panic(r)
		}
	}()
	return &Template{cp.compileNodes(nodes, ctx)}, nil
}

// Each node gets its own child Context of parentCtx, so registrations on one
// node are not visible to its siblings.
func (cp *compiler) compileNodes(nodes []*node.Node, parentCtx *Context) Seq {
	linkers := make([]Linker, len(nodes))
	for i, n := range nodes {
		linkers[i] = cp.compileNode(n, parentCtx)
	}
	return Combine(linkers...)
}

func (cp *compiler) compileNode(n *node.Node, parentCtx *Context) Linker {
	switch n.Type {
	case node.Element:
		if n.Name == ContentTag {
			return contentLinker
		}
		return cp.compileElement(n, parentCtx)
	case node.Text:
		return cp.compileText(n)
	case node.Root:
		return cp.compileNodes(n.Children, parentCtx)
	default:
		return constLinker(n)
	}
}

var contentLinker = LinkerFunc(func(fm *Frame, parent *node.Node, content ContentFn) error {
	if content == nil {
		return nil
	}
	return content(fm, parent)
})

// Doctypes and comments are copied as is.
func constLinker(n *node.Node) Linker {
	return LinkerFunc(func(_ *Frame, parent *node.Node, _ ContentFn) error {
		parent.AppendChild(n.Clone())
		return nil
	})
}

// Text nodes with embedded expressions get an implicit interpolation.
func (cp *compiler) compileText(n *node.Node) Linker {
	fn, err := cp.interp.InterpolateNamed(cp.src.Name, n.Data, interp.Options{OnlyIfExpression: true})
	if err != nil {
		cp.fail(wrapNodeError(cp.nodeContext(n), err))
	}
	if fn == nil {
		return constLinker(n)
	}
	return LinkerFunc(func(fm *Frame, parent *node.Node, _ ContentFn) error {
		s, _ := fn(fm.Scope)
		parent.AppendChild(node.NewText(s))
		return nil
	})
}

type match struct {
	d       *Directive
	trigger string
	index   int
}

func (cp *compiler) collect(n *node.Node) []match {
	var matches []match
	for i, d := range cp.directives {
		if cp.excluded[n] == d {
			continue
		}
		if t, ok := d.selector.Match(n); ok {
			matches = append(matches, match{d, t.AttrName(), i})
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		switch {
		case a.d.priority != b.d.priority:
			return a.d.priority > b.d.priority
		case a.d.name != b.d.name:
			return a.d.name < b.d.name
		default:
			return a.index < b.index
		}
	})
	return matches
}

func (cp *compiler) checkConflicts(n *node.Node, matches []match) {
	var template, component *Directive
	for _, m := range matches {
		var seen **Directive
		switch m.d.kind {
		case TemplateKind:
			seen = &template
		case ComponentKind:
			seen = &component
		default:
			continue
		}
		if *seen != nil {
			cp.errorf(n, "conflicting %s directives %s and %s on <%s>", m.d.kind, (*seen).name, m.d.name, n.Name)
		}
		*seen = m.d
	}
}

// Drops directives with a priority lower than that of a terminal directive.
func applyTerminal(matches []match) []match {
	terminal := math.MinInt
	for i, m := range matches {
		if m.d.priority < terminal {
			return matches[:i]
		}
		if m.d.terminal {
			terminal = max(terminal, m.d.priority)
		}
	}
	return matches
}

func (cp *compiler) site(n *node.Node, m match, ctx *Context) *Site {
	return &Site{Node: n, AttrName: m.trigger, Context: ctx, cp: cp}
}

func (cp *compiler) compileElement(n *node.Node, parentCtx *Context) Linker {
	ctx := parentCtx.MakeChildNodeContext()
	matches := cp.collect(n)
	cp.checkConflicts(n, matches)
	matches = applyTerminal(matches)

	for _, m := range matches {
		if m.d.kind == TemplateKind {
			return cp.compileTemplate(n, m, ctx, parentCtx)
		}
	}

	var decorations []Decoration
	var component *match
	var componentLink ComponentLinkFn
	for i, m := range matches {
		site := cp.site(n, m, ctx)
		switch m.d.kind {
		case DecoratorKind:
			dec, err := m.d.decorator(site)
			if err != nil {
				cp.fail(wrapNodeError(cp.nodeContext(n), err))
			}
			decorations = append(decorations, dec)
		case ComponentKind:
			link, err := m.d.component.compile(site)
			if err != nil {
				cp.fail(wrapNodeError(cp.nodeContext(n), err))
			}
			component, componentLink = &matches[i], link
		}
	}
	if component != nil {
		return cp.linkComponent(n, *component, componentLink, decorations, ctx)
	}
	return cp.linkElement(n, decorations, ctx)
}

func (cp *compiler) compileTemplate(n *node.Node, m match, ctx, parentCtx *Context) Linker {
	link, err := m.d.template(cp.site(n, m, ctx))
	if err != nil {
		cp.fail(wrapNodeError(cp.nodeContext(n), err))
	}
	var content Seq
	if n.Name == "template" {
		content = cp.compileNodes(n.Children, ctx)
	} else {
		c := n.Clone()
		if m.trigger != "" {
			c.RemoveAttr(m.trigger)
		}
		cp.excluded[c] = m.d
		content = cp.compileNodes([]*node.Node{c}, parentCtx)
	}
	return LinkerFunc(func(fm *Frame, parent *node.Node, contentFn ContentFn) error {
		return link(fm, func(fm *Frame) error {
			return content.Link(fm, parent, contentFn)
		})
	})
}

// Interpolated attributes that evaluate to undefined are left out.
func (cp *compiler) elementTemplate(n *node.Node, skipAttr string) *nodetpl.Element {
	attrs := make([]nodetpl.Attr, 0, len(n.Attrs))
	for _, a := range n.Attrs {
		if a.Name == skipAttr {
			continue
		}
		fn, err := cp.interp.InterpolateNamed(a.Name+" attribute", a.Value,
			interp.Options{OnlyIfExpression: true, AllOrNothing: true})
		if err != nil {
			cp.fail(wrapNodeError(cp.nodeContext(n), err))
		}
		attrs = append(attrs, nodetpl.Attr{Name: a.Name, Value: a.Value, Interp: fn})
	}
	return nodetpl.NewElement(n.Name, attrs)
}

func (cp *compiler) linkElement(n *node.Node, decorations []Decoration, ctx *Context) Linker {
	el := cp.elementTemplate(n, "")
	children := cp.compileNodes(n.Children, ctx)
	return LinkerFunc(func(fm *Frame, parent *node.Node, content ContentFn) error {
		out := el.New(fm.Scope)
		if err := decorate(fm, out, decorations, true); err != nil {
			return err
		}
		if err := children.Link(fm, out, content); err != nil {
			return err
		}
		if err := decorate(fm, out, decorations, false); err != nil {
			return err
		}
		parent.AppendChild(out)
		return nil
	})
}

// AttrsVar is bound in the scope of component templates to the attributes of
// the element using the component.
const AttrsVar = "$attrs"

func (cp *compiler) linkComponent(n *node.Node, m match, link ComponentLinkFn, decorations []Decoration, ctx *Context) Linker {
	tpl := cp.componentTemplate(n, m.d)
	el := cp.elementTemplate(n, m.trigger)
	children := cp.compileNodes(n.Children, ctx)
	return LinkerFunc(func(fm *Frame, parent *node.Node, content ContentFn) error {
		// Decorators act on the calling element, which brackets the linking
		// of the component. Its final attributes are then copied to the
		// top-level elements of the result.
		caller := el.New(fm.Scope)
		attrMap := make(map[string]any, len(caller.Attrs))
		for _, a := range caller.Attrs {
			attrMap[a.Name] = a.Value
		}
		inner := scope.NewChild(fm.Scope)
		inner.Set(AttrsVar, attrMap)

		if err := decorate(fm, caller, decorations, true); err != nil {
			return err
		}
		bound := func(_ *Frame, p *node.Node) error { return children.Link(fm, p, content) }
		scratch := node.NewRoot()
		err := link(fm.WithScope(inner), func(fm *Frame) error {
			return tpl.AppendTo(fm, scratch, bound)
		})
		if err != nil {
			return err
		}
		if err := decorate(fm, caller, decorations, false); err != nil {
			return err
		}
		for _, out := range scratch.Children {
			if out.Type == node.Element {
				for _, a := range caller.Attrs {
					if !out.HasAttr(a.Name) {
						out.Attrs = append(out.Attrs, a)
					}
				}
			}
			parent.AppendChild(out)
		}
		return nil
	})
}

// Runs the Pre hooks of decorations, or the Post hooks if pre is false.
func decorate(fm *Frame, n *node.Node, decorations []Decoration, pre bool) error {
	for _, d := range decorations {
		hook := d.Post
		if pre {
			hook = d.Pre
		}
		if hook != nil {
			if err := hook(fm, n); err != nil {
				return err
			}
		}
	}
	return nil
}

// Component templates are compiled in an empty Context, once per compile
// call.
func (cp *compiler) componentTemplate(n *node.Node, d *Directive) *Template {
	if t, ok := cp.components[d]; ok {
		if t == nil {
			cp.errorf(n, "component %s uses itself", d.name)
		}
		return t
	}
	cp.components[d] = nil
	sub := &compiler{
		Compiler:   cp.Compiler,
		src:        d.component.src,
		excluded:   cp.excluded,
		components: cp.components,
	}
	t := &Template{sub.compileNodes(d.component.root.Children, NewContext())}
	cp.components[d] = t
	return t
}
