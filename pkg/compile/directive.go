package compile

import (
	"fmt"

	"github.com/thistle-tpl/thistle/pkg/diag"
	"github.com/thistle-tpl/thistle/pkg/expr"
	"github.com/thistle-tpl/thistle/pkg/interp"
	"github.com/thistle-tpl/thistle/pkg/markup"
	"github.com/thistle-tpl/thistle/pkg/node"
	"github.com/thistle-tpl/thistle/pkg/selector"
)

// Kind is the kind of a directive.
type Kind uint8

// Possible values of Kind.
const (
	// A template directive owns its element: it decides how many times, and
	// with what scopes, the element is linked.
	TemplateKind Kind = iota
	// A component directive replaces its element with the output of its own
	// template.
	ComponentKind
	// A decorator directive modifies the output element.
	DecoratorKind
)

var kindNames = [...]string{"template", "component", "decorator"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Directive is a directive definition. Directives are created with
// NewTemplate, NewComponent or NewDecorator, and are immutable.
type Directive struct {
	name     string
	selector *selector.Selector
	priority int
	terminal bool
	kind     Kind

	template  func(*Site) (TemplateLinkFn, error)
	component *componentDef
	decorator func(*Site) (Decoration, error)
}

// Name returns the name of the directive, which defaults to its selector.
func (d *Directive) Name() string { return d.name }

// Selector returns the compiled selector of the directive.
func (d *Directive) Selector() *selector.Selector { return d.selector }

// Priority returns the priority of the directive.
func (d *Directive) Priority() int { return d.priority }

// Terminal returns whether directives with lower priority on the same node
// are skipped once this one applies.
func (d *Directive) Terminal() bool { return d.terminal }

// Kind returns the kind of the directive.
func (d *Directive) Kind() Kind { return d.kind }

func (d *Directive) String() string {
	return fmt.Sprintf("%s directive %s", d.kind, d.name)
}

// Common contains the fields shared by all directive definitions.
type Common struct {
	// Selector source, such as "[thi-if]".
	Selector string
	// If nonzero, only selector alternatives triggering through one of
	// these ways are used.
	Restrict selector.Restrict
	// Name shown in error messages; defaults to Selector.
	Name string
	// Directives with higher priority are compiled first.
	Priority int
	// Skip directives with lower priority on the same node.
	Terminal bool
}

func (c Common) directive(kind Kind) (*Directive, error) {
	sel, err := selector.Compile(c.Selector)
	if err != nil {
		return nil, err
	}
	if c.Restrict != 0 {
		sel = sel.Restrict(c.Restrict)
	}
	name := c.Name
	if name == "" {
		name = c.Selector
	}
	return &Directive{name: name, selector: sel, priority: c.Priority, terminal: c.Terminal, kind: kind}, nil
}

// TemplateLinkFn links a template directive. It calls instance once for
// each copy of the element that should be output, possibly with a forked
// Frame.
type TemplateLinkFn func(fm *Frame, instance func(fm *Frame) error) error

// TemplateDef defines a template directive.
type TemplateDef struct {
	Common
	// Compile is called once per matched element. A nil Compile outputs the
	// element once.
	Compile func(site *Site) (TemplateLinkFn, error)
}

// NewTemplate creates a template directive.
//
// The element a template directive matches, without the directive's
// trigger attribute, is compiled again as the directive's content. When the
// element is a <template> element, its children form the content instead.
func NewTemplate(def TemplateDef) (*Directive, error) {
	d, err := def.Common.directive(TemplateKind)
	if err != nil {
		return nil, err
	}
	d.template = def.Compile
	if d.template == nil {
		d.template = func(*Site) (TemplateLinkFn, error) {
			return func(fm *Frame, instance func(*Frame) error) error { return instance(fm) }, nil
		}
	}
	return d, nil
}

// ComponentLinkFn links a component directive. It calls render to link the
// component's template, usually once, possibly with a forked Frame.
type ComponentLinkFn func(fm *Frame, render func(fm *Frame) error) error

// ComponentDef defines a component directive.
type ComponentDef struct {
	Common
	// Markup of the component's template. Ignored if Nodes is set.
	Template string
	// Parsed template of the component, as a root node.
	Nodes *node.Node
	// Compile is called once per matched element. A nil Compile renders the
	// template once.
	Compile func(site *Site) (ComponentLinkFn, error)
}

type componentDef struct {
	src     Source
	root    *node.Node
	compile func(*Site) (ComponentLinkFn, error)
}

// NewComponent creates a component directive.
//
// The template is compiled with an empty Context for every element that
// uses the component, so the component behaves the same wherever it is
// used. A <thi-content> element in the template outputs the children of the
// element that uses the component. The attributes of that element, except
// the trigger attribute, are copied to top-level output elements that do not
// set them, and the element's decorators are applied to those elements.
func NewComponent(def ComponentDef) (*Directive, error) {
	d, err := def.Common.directive(ComponentKind)
	if err != nil {
		return nil, err
	}
	src := Source{Name: "[component " + d.name + "]", Code: def.Template}
	root := def.Nodes
	if root == nil {
		root, err = markup.Parse(src.Name, src.Code)
		if err != nil {
			return nil, err
		}
	} else {
		src.Code = ""
	}
	link := def.Compile
	if link == nil {
		link = func(*Site) (ComponentLinkFn, error) {
			return func(fm *Frame, render func(*Frame) error) error { return render(fm) }, nil
		}
	}
	d.component = &componentDef{src, root, link}
	return d, nil
}

// Decoration is the result of compiling a decorator directive. Pre is
// called before the children of the output element are linked, and Post
// after. Either may be nil.
type Decoration struct {
	Pre  func(fm *Frame, n *node.Node) error
	Post func(fm *Frame, n *node.Node) error
}

// DecoratorDef defines a decorator directive.
type DecoratorDef struct {
	Common
	Compile func(site *Site) (Decoration, error)
}

// NewDecorator creates a decorator directive.
func NewDecorator(def DecoratorDef) (*Directive, error) {
	d, err := def.Common.directive(DecoratorKind)
	if err != nil {
		return nil, err
	}
	d.decorator = def.Compile
	if d.decorator == nil {
		d.decorator = func(*Site) (Decoration, error) { return Decoration{}, nil }
	}
	return d, nil
}

// Must panics if err is non-nil, and returns d otherwise. It is meant for
// package-level directive definitions.
func Must(d *Directive, err error) *Directive {
	if err != nil {
		panic(err)
	}
	return d
}

// Site is where a directive is applied. It is passed to the compile hooks
// of directives.
type Site struct {
	// The element the directive matched. Hooks must not modify it.
	Node *node.Node
	// The attribute that triggered the directive, or "" if the directive was
	// triggered by the tag name or a class.
	AttrName string
	// Context of the element.
	Context *Context

	cp *compiler
}

// AttrValue returns the value of the trigger attribute.
func (s *Site) AttrValue() string {
	v, _ := s.Node.Attr(s.AttrName)
	return v
}

func (s *Site) srcName() string {
	if s.AttrName != "" {
		return s.AttrName + " attribute"
	}
	return "<" + s.Node.Name + ">"
}

// Expr compiles an expression.
func (s *Site) Expr(src string) (expr.Fn, error) {
	return s.cp.exprs.CompileNamed(s.srcName(), src)
}

// Interpolate compiles text with embedded expressions.
func (s *Site) Interpolate(text string, opts interp.Options) (interp.Fn, error) {
	return s.cp.interp.InterpolateNamed(s.srcName(), text, opts)
}

// Compile compiles nodes as a template in a child Context of the element.
func (s *Site) Compile(nodes ...*node.Node) (*Template, error) {
	return s.cp.subTemplate(nodes, s.Context.MakeChildNodeContext())
}

// AddService registers a service in the element's Context.
func (s *Site) AddService(role string, service any) error {
	if err := s.Context.AddService(role, service); err != nil {
		return s.Errorf("%s", err.(*CompileError).Message)
	}
	return nil
}

// Errorf returns a CompileError pointing at the element.
func (s *Site) Errorf(format string, args ...any) error {
	return &CompileError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(s.cp.src.Name, s.cp.src.Code, s.Node),
	}
}

// SyntaxErrorf returns a SyntaxError whose context is text, with r covering
// the offending part.
func (s *Site) SyntaxErrorf(text string, r diag.Ranger, format string, args ...any) error {
	return &SyntaxError{
		Message: fmt.Sprintf(format, args...),
		Context: *diag.NewContext(s.srcName(), text, r),
	}
}
